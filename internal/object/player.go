package object

import "math"

// Player is the defender craft. There is exactly one per game; it survives
// game over so the final tallies stay readable.
type Player struct {
	Pos    Vec3
	Yaw    float64 // Radians, 0 looks down +Z
	Pitch  float64 // Radians, clamped to ±MaxPitch
	Health float64
	Energy float64
	Score  int

	AstronautsSaved  int
	LandersDestroyed int

	// Milliseconds on the game clock.
	MissionStart  int64
	LastShotTime  int64
	LastSpawnTime int64

	shotTaken bool
}

// MaxPitch limits how far the view can tilt up or down.
const MaxPitch = math.Pi / 3

// NewPlayer creates a player at pos with full pools.
func NewPlayer(pos Vec3, health, energy float64) *Player {
	return &Player{
		Pos:    pos,
		Health: health,
		Energy: energy,
	}
}

// Kind implements Entity.
func (p *Player) Kind() Kind { return KindPlayer }

// EntityID implements Entity. The player always has ID 0.
func (p *Player) EntityID() ID { return 0 }

// Position implements Entity.
func (p *Player) Position() Vec3 { return p.Pos }

// Forward returns the unit view direction.
func (p *Player) Forward() Vec3 {
	return ForwardVector(p.Yaw, p.Pitch)
}

// Look rotates the view by the given yaw/pitch deltas (radians).
func (p *Player) Look(dYaw, dPitch float64) {
	p.Yaw = math.Mod(p.Yaw+dYaw, 2*math.Pi)
	p.Pitch += dPitch
	if p.Pitch > MaxPitch {
		p.Pitch = MaxPitch
	}
	if p.Pitch < -MaxPitch {
		p.Pitch = -MaxPitch
	}
}

// CanShoot reports whether the cooldown since the last shot has elapsed.
// The first shot of a mission is never gated.
func (p *Player) CanShoot(now, cooldown int64) bool {
	return !p.shotTaken || now-p.LastShotTime >= cooldown
}

// RecordShot stamps the shot time for cooldown tracking.
func (p *Player) RecordShot(now int64) {
	p.LastShotTime = now
	p.shotTaken = true
}

// IsDead reports whether health is exhausted.
func (p *Player) IsDead() bool {
	return p.Health <= 0
}
