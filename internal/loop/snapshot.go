package loop

import "github.com/tomz197/lunardefender/internal/object"

// EntityView is a read-only copy of one entity.
type EntityView struct {
	ID  object.ID   `json:"id"`
	Pos object.Vec3 `json:"pos"`
}

// PlayerView is a read-only copy of the player.
type PlayerView struct {
	Pos              object.Vec3 `json:"pos"`
	Yaw              float64     `json:"yaw"`
	Pitch            float64     `json:"pitch"`
	Health           float64     `json:"health"`
	Energy           float64     `json:"energy"`
	Score            int         `json:"score"`
	AstronautsSaved  int         `json:"astronautsSaved"`
	LandersDestroyed int         `json:"landersDestroyed"`
}

// Snapshot is an immutable copy of a game for rendering on another
// goroutine.
type Snapshot struct {
	State      string       `json:"state"`
	Tick       uint64       `json:"tick"`
	Scroll     float64      `json:"scroll"`
	Level      int          `json:"level"`
	MaxEnemies int          `json:"maxEnemies"`
	MissionMs  int64        `json:"missionMs"`
	Halted     bool         `json:"halted"`
	Player     PlayerView   `json:"player"`
	Landers    []EntityView `json:"landers"`
	Astronauts []EntityView `json:"astronauts"`
	Lasers     []EntityView `json:"lasers"`

	phase GameState
}

// Phase returns the lifecycle phase the snapshot was taken in.
func (s *Snapshot) Phase() GameState { return s.phase }

// Snapshot copies the current mission for rendering.
func (g *Game) Snapshot() *Snapshot {
	p := g.sim.Player
	s := &Snapshot{
		State:      g.state.String(),
		Tick:       g.sim.Tick,
		Scroll:     g.sim.Scroll,
		Level:      g.sim.Difficulty.Level,
		MaxEnemies: g.sim.Difficulty.MaxEnemies,
		MissionMs:  g.elapsed(),
		Halted:     g.halted != nil,
		Player: PlayerView{
			Pos:              p.Pos,
			Yaw:              p.Yaw,
			Pitch:            p.Pitch,
			Health:           p.Health,
			Energy:           p.Energy,
			Score:            p.Score,
			AstronautsSaved:  p.AstronautsSaved,
			LandersDestroyed: p.LandersDestroyed,
		},
		Landers:    make([]EntityView, 0, len(g.sim.Landers)),
		Astronauts: make([]EntityView, 0, len(g.sim.Astronauts)),
		Lasers:     make([]EntityView, 0, len(g.sim.Lasers)),
		phase:      g.state,
	}
	for _, l := range g.sim.Landers {
		s.Landers = append(s.Landers, EntityView{ID: l.ID, Pos: l.Pos})
	}
	for _, a := range g.sim.Astronauts {
		s.Astronauts = append(s.Astronauts, EntityView{ID: a.ID, Pos: a.Pos})
	}
	for _, l := range g.sim.Lasers {
		s.Lasers = append(s.Lasers, EntityView{ID: l.ID, Pos: l.Pos})
	}
	return s
}
