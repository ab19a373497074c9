package loop

import "github.com/tomz197/lunardefender/internal/object"

// GameState is the mission lifecycle phase.
type GameState int

const (
	StateNotStarted GameState = iota // Title screen
	StateRunning                     // Simulation advances every tick
	StatePaused                      // Frozen, may resume
	StateGameOver                    // Terminal for the mission
)

func (s GameState) String() string {
	switch s {
	case StateNotStarted:
		return "not started"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateGameOver:
		return "game over"
	default:
		return "unknown"
	}
}

// SimulationState owns every entity of one mission.
type SimulationState struct {
	Player     *object.Player
	Landers    []*object.Lander
	Astronauts []*object.Astronaut
	Lasers     []*object.Laser

	Scroll     float64 // Virtual forward displacement of the ground
	Difficulty Difficulty
	Tick       uint64

	nextID object.ID
}

// NewID allocates an entity ID. IDs start at 1; 0 is the player.
func (s *SimulationState) NewID() object.ID {
	s.nextID++
	return s.nextID
}

// LiveLanders counts landers not marked for destruction.
func (s *SimulationState) LiveLanders() int {
	n := 0
	for _, l := range s.Landers {
		if !l.IsDestroyed() {
			n++
		}
	}
	return n
}

// LiveAstronauts counts astronauts not marked for destruction.
func (s *SimulationState) LiveAstronauts() int {
	n := 0
	for _, a := range s.Astronauts {
		if !a.IsDestroyed() {
			n++
		}
	}
	return n
}
