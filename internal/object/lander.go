package object

import (
	"math"

	"github.com/tomz197/lunardefender/internal/physics"
)

// Lander is a hostile craft hunting astronauts.
// Z is always InitialZ plus the current scroll offset.
type Lander struct {
	ID        ID
	Pos       Vec3
	InitialZ  float64
	Speed     float64 // Lateral distance per tick at game speed 1
	Descent   float64 // Vertical distance per tick at game speed 1
	destroyed bool
}

// NewLander creates a lander at pos relative to the given scroll offset.
func NewLander(id ID, pos Vec3, scroll, speed, descent float64) *Lander {
	return &Lander{
		ID:       id,
		Pos:      pos,
		InitialZ: pos.Z - scroll,
		Speed:    speed,
		Descent:  descent,
	}
}

// Kind implements Entity.
func (l *Lander) Kind() Kind { return KindLander }

// EntityID implements Entity.
func (l *Lander) EntityID() ID { return l.ID }

// Position implements Entity.
func (l *Lander) Position() Vec3 { return l.Pos }

// Nearest returns the live astronaut closest to the lander on the ground
// plane. The first of several equally close astronauts wins. Returns nil
// when none are alive.
func (l *Lander) Nearest(astronauts []*Astronaut) *Astronaut {
	var best *Astronaut
	bestDist := math.Inf(1)
	for _, a := range astronauts {
		if a.IsDestroyed() {
			continue
		}
		d := physics.PlanarDistance(l.Pos.X, l.Pos.Z, a.Pos.X, a.Pos.Z)
		if d < bestDist {
			best = a
			bestDist = d
		}
	}
	return best
}

// Steer scrolls the lander with the ground and moves it toward the nearest
// astronaut. Only X is steered; Z comes from the scroll offset. Without a
// target the lander holds its position.
func (l *Lander) Steer(astronauts []*Astronaut, scroll, gameSpeed float64) {
	l.Pos.Z = l.InitialZ + scroll

	target := l.Nearest(astronauts)
	if target == nil {
		return
	}

	dx := target.Pos.X - l.Pos.X
	dz := target.Pos.Z - l.Pos.Z
	dist := math.Sqrt(dx*dx + dz*dz)
	if dist > 0 {
		step := l.Speed * gameSpeed * dx / dist
		// Never overshoot the target column.
		if math.Abs(step) > math.Abs(dx) {
			step = dx
		}
		l.Pos.X += step
	}

	if l.Pos.Y > target.Pos.Y {
		l.Pos.Y = math.Max(target.Pos.Y, l.Pos.Y-l.Descent*gameSpeed)
	}
}

// MarkDestroyed marks the lander for removal.
func (l *Lander) MarkDestroyed() {
	l.destroyed = true
}

// IsDestroyed returns true if the lander is marked for destruction.
func (l *Lander) IsDestroyed() bool {
	return l.destroyed
}
