package object

// Laser is a bolt fired by the player. Its direction is fixed at spawn.
type Laser struct {
	ID        ID
	Pos       Vec3
	Dir       Vec3    // Unit vector
	Speed     float64 // Distance per tick
	Travelled float64 // Distance covered since spawn
	destroyed bool
}

// NewLaser creates a laser at pos travelling along dir.
func NewLaser(id ID, pos, dir Vec3, speed float64) *Laser {
	return &Laser{
		ID:    id,
		Pos:   pos,
		Dir:   dir.Normalize(),
		Speed: speed,
	}
}

// Kind implements Entity.
func (l *Laser) Kind() Kind { return KindLaser }

// EntityID implements Entity.
func (l *Laser) EntityID() ID { return l.ID }

// Position implements Entity.
func (l *Laser) Position() Vec3 { return l.Pos }

// Advance moves the laser one tick along its direction.
func (l *Laser) Advance() {
	l.Pos = l.Pos.Add(l.Dir.Scale(l.Speed))
	l.Travelled += l.Speed
}

// Expired reports whether the laser has flown past maxDistance.
func (l *Laser) Expired(maxDistance float64) bool {
	return l.Travelled > maxDistance
}

// MarkDestroyed marks the laser for removal.
func (l *Laser) MarkDestroyed() {
	l.destroyed = true
}

// IsDestroyed returns true if the laser is marked for destruction.
func (l *Laser) IsDestroyed() bool {
	return l.destroyed
}
