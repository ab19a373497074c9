package loop

import (
	"math/rand"

	"github.com/tomz197/lunardefender/internal/loop/config"
	"github.com/tomz197/lunardefender/internal/object"
)

// Spawner creates landers at the field boundary on a timer.
type Spawner struct {
	rng      *rand.Rand
	speed    float64
	descent  float64
	altitude float64
}

// NewSpawner creates a spawner drawing positions from rng.
func NewSpawner(rng *rand.Rand, tun config.Tuning) *Spawner {
	return &Spawner{
		rng:      rng,
		speed:    tun.LanderSpeed,
		descent:  tun.LanderDescentRate,
		altitude: tun.LanderSpawnAltitude,
	}
}

// MaybeSpawnLander returns a new lander once more than interval ms have
// passed since lastSpawn. The lander enters at the +X boundary at a random
// depth. The caller assigns its ID, inserts it and records the spawn time.
func (s *Spawner) MaybeSpawnLander(now, lastSpawn, interval int64, scroll float64) (*object.Lander, bool) {
	if now-lastSpawn <= interval {
		return nil, false
	}
	z := (s.rng.Float64()*2 - 1) * config.FieldHalfDepth
	pos := object.Vec3{X: config.FieldHalfWidth, Y: s.altitude, Z: z}
	return object.NewLander(0, pos, scroll, s.speed, s.descent), true
}
