// Package config centralizes all tunable game parameters.
package config

import (
	"errors"
	"fmt"
	"time"

	envcfg "github.com/tomz197/lunardefender/internal/config"
)

// Field geometry in world units.
const (
	FieldHalfWidth    = 400.0 // Landers enter at x = +FieldHalfWidth
	FieldHalfDepth    = 400.0 // Lander spawn z range is ±FieldHalfDepth
	TerrainHalfExtent = 500.0 // Ground exists for |z| <= this
	VoidHeight        = -1000.0
	LanderCullZ       = -500.0
	FallCullY         = -100.0
)

// Player
const (
	MaxHealth      = 100.0
	MaxEnergy      = 100.0
	PlayerAltitude = 10.0
	MinAltitude    = 2.0
	MaxAltitude    = 80.0
)

// Scoring
const (
	ScoreLanderDestroyed = 50
	ScoreAstronautLost   = -50
	ScoreAstronautSaved  = 100
)

// Difficulty curve
const (
	MaxDifficulty          = 10
	DifficultyStepSeconds  = 30
	BaseSpawnIntervalMs    = 3000
	SpawnIntervalStepMs    = 200
	MinSpawnIntervalMs     = 1000
	BaseMaxEnemies         = 5
	GameSpeedPerDifficulty = 0.1
)

// Server tick rate
const (
	TargetFPS       = 60
	TargetFrameTime = time.Second / TargetFPS
)

// Client rendering
const (
	ClientTargetFPS       = 60
	ClientTargetFrameTime = time.Second / ClientTargetFPS
	MaxTermWidth          = 160
	MaxTermHeight         = 50
	MaxUsernameLength     = 16
	PopupSeconds          = 1.2 // Lifetime of a floating score popup
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Tuning holds the per-game parameters that may be overridden at startup.
// Rates are per tick.
type Tuning struct {
	AstronautCount int

	LaserSpeed       float64
	LaserEnergyCost  float64
	MaxLaserDistance float64
	ShootCooldownMs  int64

	EnergyRechargeRate float64
	ThrustEnergyDrain  float64

	MoveSpeed     float64 // Player forward/strafe distance per tick
	ClimbSpeed    float64 // Player vertical distance per tick
	LookSpeed     float64 // Radians per unit of pointer delta
	LookKeyRadian float64 // Radians per tick for keyboard look

	LanderSpeed         float64
	LanderDescentRate   float64
	LanderSpawnAltitude float64

	HitRadius       float64 // Laser × Lander
	PlayerHitRadius float64 // Lander × Player
	CaptureRadius   float64 // Lander × Astronaut
	RescueRadius    float64 // Player × Astronaut
	RescueAltitude  float64 // Max height above an astronaut for a pickup
	LanderHitDamage float64

	// ResolveAllHits resolves every laser hit in a tick instead of stopping
	// at the first one.
	ResolveAllHits bool
	// EnforceEnemyCap holds spawning while live landers >= MaxEnemies.
	EnforceEnemyCap bool

	RandomSeed       int64
	RandomSeedPinned bool
}

// Default returns the standard tuning.
func Default() Tuning {
	return Tuning{
		AstronautCount: 10,

		LaserSpeed:       8,
		LaserEnergyCost:  10,
		MaxLaserDistance: 600,
		ShootCooldownMs:  200,

		EnergyRechargeRate: 0.5,
		ThrustEnergyDrain:  0.2,

		MoveSpeed:     1.5,
		ClimbSpeed:    0.8,
		LookSpeed:     0.003,
		LookKeyRadian: 0.03,

		LanderSpeed:         0.6,
		LanderDescentRate:   0.05,
		LanderSpawnAltitude: 30,

		HitRadius:       2.5,
		PlayerHitRadius: 3,
		CaptureRadius:   3,
		RescueRadius:    6,
		RescueAltitude:  8,
		LanderHitDamage: 20,
	}
}

// FromEnv returns Default overridden by DEFENDER_* environment variables.
func FromEnv() (Tuning, error) {
	t := Default()
	var errs []error

	intVar := func(key string, dst *int) {
		v, err := envcfg.GetEnvInt(key, *dst)
		errs = append(errs, err)
		*dst = v
	}
	floatVar := func(key string, dst *float64) {
		v, err := envcfg.GetEnvFloat(key, *dst)
		errs = append(errs, err)
		*dst = v
	}
	boolVar := func(key string, dst *bool) {
		v, err := envcfg.GetEnvBool(key, *dst)
		errs = append(errs, err)
		*dst = v
	}

	intVar("DEFENDER_ASTRONAUTS", &t.AstronautCount)
	floatVar("DEFENDER_LASER_SPEED", &t.LaserSpeed)
	floatVar("DEFENDER_LASER_COST", &t.LaserEnergyCost)
	floatVar("DEFENDER_LASER_RANGE", &t.MaxLaserDistance)
	floatVar("DEFENDER_ENERGY_RECHARGE", &t.EnergyRechargeRate)
	floatVar("DEFENDER_THRUST_DRAIN", &t.ThrustEnergyDrain)
	floatVar("DEFENDER_LANDER_SPEED", &t.LanderSpeed)
	floatVar("DEFENDER_LANDER_DAMAGE", &t.LanderHitDamage)
	boolVar("DEFENDER_RESOLVE_ALL_HITS", &t.ResolveAllHits)
	boolVar("DEFENDER_ENFORCE_ENEMY_CAP", &t.EnforceEnemyCap)

	cooldown := int(t.ShootCooldownMs)
	intVar("DEFENDER_SHOOT_COOLDOWN_MS", &cooldown)
	t.ShootCooldownMs = int64(cooldown)

	seed := 0
	intVar("DEFENDER_SEED", &seed)
	if seed != 0 {
		t.RandomSeed = int64(seed)
		t.RandomSeedPinned = true
	}

	if err := errors.Join(errs...); err != nil {
		return Default(), err
	}
	return t, t.Validate()
}

// ErrInvalidTuning is returned by Validate.
var ErrInvalidTuning = errors.New("invalid tuning")

// Validate rejects parameter combinations the simulation cannot run with.
func (t Tuning) Validate() error {
	switch {
	case t.AstronautCount < 0:
		return fmt.Errorf("%w: astronaut count %d", ErrInvalidTuning, t.AstronautCount)
	case t.LaserSpeed <= 0:
		return fmt.Errorf("%w: laser speed %v", ErrInvalidTuning, t.LaserSpeed)
	case t.LaserEnergyCost < 0 || t.LaserEnergyCost > MaxEnergy:
		return fmt.Errorf("%w: laser cost %v", ErrInvalidTuning, t.LaserEnergyCost)
	case t.ShootCooldownMs < 0:
		return fmt.Errorf("%w: shoot cooldown %d", ErrInvalidTuning, t.ShootCooldownMs)
	case t.EnergyRechargeRate < 0 || t.ThrustEnergyDrain < 0:
		return fmt.Errorf("%w: negative energy rate", ErrInvalidTuning)
	case t.HitRadius <= 0 || t.PlayerHitRadius <= 0 || t.CaptureRadius <= 0:
		return fmt.Errorf("%w: collision radius must be positive", ErrInvalidTuning)
	case t.LanderHitDamage < 0:
		return fmt.Errorf("%w: lander damage %v", ErrInvalidTuning, t.LanderHitDamage)
	}
	return nil
}
