// Package object defines the entities of the lunar field.
package object

import "github.com/tomz197/lunardefender/internal/physics"

// Kind identifies the concrete type behind an Entity.
type Kind int

const (
	KindPlayer Kind = iota
	KindLander
	KindAstronaut
	KindLaser
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindLander:
		return "lander"
	case KindAstronaut:
		return "astronaut"
	case KindLaser:
		return "laser"
	default:
		return "unknown"
	}
}

// ID is a stable entity handle, unique within one game.
type ID uint64

// Entity is the behaviour shared by everything placed on the field.
type Entity interface {
	Kind() Kind
	EntityID() ID
	Position() Vec3
}

// Destructible is implemented by entities that can be marked for removal.
type Destructible interface {
	// MarkDestroyed marks the entity for removal at the end of the step.
	MarkDestroyed()
	// IsDestroyed returns true if the entity is marked for destruction.
	IsDestroyed() bool
}

// Collides reports whether two entities are closer than threshold.
func Collides(a, b Entity, threshold float64) bool {
	pa, pb := a.Position(), b.Position()
	return physics.Within(pa.X, pa.Y, pa.Z, pb.X, pb.Y, pb.Z, threshold)
}

// Compact removes destroyed entries in place, keeping order.
// removed is called for each dropped entry before it is discarded.
func Compact[T Destructible](items []T, removed func(T)) []T {
	kept := items[:0] // reuse backing array
	for _, it := range items {
		if it.IsDestroyed() {
			if removed != nil {
				removed(it)
			}
			continue
		}
		kept = append(kept, it)
	}
	var zero T
	for i := len(kept); i < len(items); i++ {
		items[i] = zero
	}
	return kept
}
