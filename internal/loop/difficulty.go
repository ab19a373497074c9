package loop

import (
	"math"

	"github.com/tomz197/lunardefender/internal/loop/config"
)

// Difficulty is derived from elapsed mission time; it is never set directly.
type Difficulty struct {
	Level         int
	GameSpeed     float64
	SpawnInterval int64 // Milliseconds
	MaxEnemies    int   // Advisory unless the enemy cap is enforced
}

// DifficultyAt returns the difficulty after elapsedMs of mission time.
func DifficultyAt(elapsedMs int64) Difficulty {
	if elapsedMs < 0 {
		elapsedMs = 0
	}
	elapsed := float64(elapsedMs) / 1000

	level := 1 + int(math.Floor(elapsed/config.DifficultyStepSeconds))
	if level > config.MaxDifficulty {
		level = config.MaxDifficulty
	}

	interval := int64(config.BaseSpawnIntervalMs - level*config.SpawnIntervalStepMs)
	if interval < config.MinSpawnIntervalMs {
		interval = config.MinSpawnIntervalMs
	}

	return Difficulty{
		Level:         level,
		GameSpeed:     1 + float64(level)*config.GameSpeedPerDifficulty,
		SpawnInterval: interval,
		MaxEnemies:    config.BaseMaxEnemies + level/2,
	}
}
