package object

// Astronaut is a stranded crew member waiting on the surface.
// Z is always InitialZ plus the current scroll offset.
type Astronaut struct {
	ID        ID
	Pos       Vec3
	InitialZ  float64
	destroyed bool
}

// NewAstronaut places an astronaut at (x, y, z) relative to the given scroll offset.
func NewAstronaut(id ID, x, y, z, scroll float64) *Astronaut {
	return &Astronaut{
		ID:       id,
		Pos:      Vec3{X: x, Y: y, Z: z},
		InitialZ: z - scroll,
	}
}

// Kind implements Entity.
func (a *Astronaut) Kind() Kind { return KindAstronaut }

// EntityID implements Entity.
func (a *Astronaut) EntityID() ID { return a.ID }

// Position implements Entity.
func (a *Astronaut) Position() Vec3 { return a.Pos }

// Follow re-anchors the astronaut to the scrolled ground.
func (a *Astronaut) Follow(scroll float64, heightAt func(x, z float64) float64) {
	a.Pos.Z = a.InitialZ + scroll
	if heightAt != nil {
		a.Pos.Y = heightAt(a.Pos.X, a.Pos.Z)
	}
}

// MarkDestroyed marks the astronaut for removal.
func (a *Astronaut) MarkDestroyed() {
	a.destroyed = true
}

// IsDestroyed returns true if the astronaut is marked for destruction.
func (a *Astronaut) IsDestroyed() bool {
	return a.destroyed
}
