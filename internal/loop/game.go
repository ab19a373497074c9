// Package loop runs the lunar defender simulation: spawning, movement,
// collisions, the energy economy and the difficulty curve, advanced one
// tick at a time by a frame driver.
package loop

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/tomz197/lunardefender/internal/input"
	"github.com/tomz197/lunardefender/internal/logger"
	"github.com/tomz197/lunardefender/internal/loop/config"
	"github.com/tomz197/lunardefender/internal/object"
	"github.com/tomz197/lunardefender/internal/physics"
)

// minGridCell bounds the broad-phase cell count for small hit radii.
const minGridCell = 25.0

var (
	ErrMissingCollaborator = errors.New("missing required collaborator")
	ErrInvalidTransition   = errors.New("invalid state transition")
	ErrHalted              = errors.New("simulation halted")
)

// TickError wraps a fault raised while a tick was executing.
type TickError struct {
	Tick  uint64
	Cause error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("tick %d: %v", e.Tick, e.Cause)
}

func (e *TickError) Unwrap() error {
	return e.Cause
}

// Game owns one mission and the collaborators it reports to.
// It is not safe for concurrent use; only the frame driver calls into it.
type Game struct {
	tun       config.Tuning
	clock     Clock
	terrain   Terrain
	scene     Scene
	presenter Presenter
	log       *zap.SugaredLogger
	rng       *rand.Rand
	spawner   *Spawner
	grid      *physics.SpatialGrid // Lander broad phase for laser hits

	state   GameState
	sim     *SimulationState
	handles map[object.ID]Handle

	pausedAt   int64
	endedAt    int64
	isGameOver bool
	halted     error
}

// Option configures a Game.
type Option func(*Game)

// WithTuning replaces the default tuning.
func WithTuning(t config.Tuning) Option {
	return func(g *Game) { g.tun = t }
}

// WithScene mirrors entity lifetimes into s.
func WithScene(s Scene) Option {
	return func(g *Game) { g.scene = s }
}

// WithPresenter routes gameplay notifications to p.
func WithPresenter(p Presenter) Option {
	return func(g *Game) { g.presenter = p }
}

// WithLogger replaces the process logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(g *Game) { g.log = l }
}

// WithRand sets the random source used for spawn and setup positions.
func WithRand(r *rand.Rand) Option {
	return func(g *Game) { g.rng = r }
}

// NewGame builds a game in the NotStarted state. Clock and terrain are
// required; everything else has a no-op default.
func NewGame(clock Clock, terrain Terrain, opts ...Option) (*Game, error) {
	if clock == nil {
		return nil, fmt.Errorf("%w: clock", ErrMissingCollaborator)
	}
	if terrain == nil {
		return nil, fmt.Errorf("%w: terrain", ErrMissingCollaborator)
	}

	g := &Game{
		tun:       config.Default(),
		clock:     clock,
		terrain:   terrain,
		scene:     NopScene{},
		presenter: NopPresenter{},
		log:       logger.Log,
		handles:   make(map[object.ID]Handle),
	}
	for _, opt := range opts {
		opt(g)
	}
	if err := g.tun.Validate(); err != nil {
		return nil, err
	}
	if g.scene == nil {
		return nil, fmt.Errorf("%w: scene", ErrMissingCollaborator)
	}
	if g.presenter == nil {
		return nil, fmt.Errorf("%w: presenter", ErrMissingCollaborator)
	}
	if g.rng == nil {
		seed := time.Now().UnixNano()
		if g.tun.RandomSeedPinned {
			seed = g.tun.RandomSeed
		}
		g.rng = rand.New(rand.NewSource(seed))
	}
	g.spawner = NewSpawner(g.rng, g.tun)
	g.grid = physics.NewSpatialGrid(
		-config.FieldHalfWidth, -config.TerrainHalfExtent,
		2*config.FieldHalfWidth, 2*config.TerrainHalfExtent,
		math.Max(g.tun.HitRadius, minGridCell),
	)

	g.resetMission(clock.Now())
	return g, nil
}

// State returns the lifecycle phase.
func (g *Game) State() GameState { return g.state }

// Sim exposes the mission state. Callers must not retain entity pointers
// across ticks.
func (g *Game) Sim() *SimulationState { return g.sim }

// Tuning returns the parameters the game runs with.
func (g *Game) Tuning() config.Tuning { return g.tun }

// Halted reports whether a tick fault stopped the simulation.
func (g *Game) Halted() bool { return g.halted != nil }

// Err returns the fault that halted the simulation, if any.
func (g *Game) Err() error { return g.halted }

// resetMission discards all entities and lays out a fresh field.
func (g *Game) resetMission(now int64) {
	for id, h := range g.handles {
		g.scene.DestroyEntity(h)
		delete(g.handles, id)
	}

	g.sim = &SimulationState{}
	p := object.NewPlayer(object.Vec3{Y: config.PlayerAltitude}, config.MaxHealth, config.MaxEnergy)
	p.MissionStart = now
	p.LastSpawnTime = now
	g.sim.Player = p
	g.sim.Difficulty = DifficultyAt(0)

	for i := 0; i < g.tun.AstronautCount; i++ {
		x := (g.rng.Float64()*2 - 1) * config.FieldHalfWidth * 0.9
		z := (g.rng.Float64()*2 - 1) * config.FieldHalfDepth
		a := object.NewAstronaut(g.sim.NewID(), x, g.terrain.HeightAt(x, z), z, g.sim.Scroll)
		g.sim.Astronauts = append(g.sim.Astronauts, a)
		g.track(a)
	}

	g.isGameOver = false
	g.pausedAt = 0
	g.endedAt = 0
}

// Start begins a mission from NotStarted, or continues from Paused.
// Either way the mission clock restarts.
func (g *Game) Start() error {
	now := g.clock.Now()
	switch g.state {
	case StateNotStarted:
		g.resetMission(now)
	case StatePaused:
		g.sim.Player.MissionStart = now
	default:
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, g.state)
	}
	g.state = StateRunning
	g.announce()
	g.log.Infow("mission started", "astronauts", len(g.sim.Astronauts))
	return nil
}

// Pause freezes a running mission.
func (g *Game) Pause() error {
	if g.state != StateRunning {
		return fmt.Errorf("%w: pause from %s", ErrInvalidTransition, g.state)
	}
	g.pausedAt = g.clock.Now()
	g.state = StatePaused
	g.log.Debugw("mission paused", "tick", g.sim.Tick)
	return nil
}

// Resume continues a paused mission. Time spent paused does not count
// toward difficulty or cooldowns.
func (g *Game) Resume() error {
	if g.state != StatePaused {
		return fmt.Errorf("%w: resume from %s", ErrInvalidTransition, g.state)
	}
	shift := g.clock.Now() - g.pausedAt
	p := g.sim.Player
	p.MissionStart += shift
	p.LastSpawnTime += shift
	p.LastShotTime += shift
	g.state = StateRunning
	g.log.Debugw("mission resumed", "tick", g.sim.Tick, "pausedMs", shift)
	return nil
}

// Restart lays out a fresh mission after game over and runs it. The
// finished mission stays over; this starts a new one.
func (g *Game) Restart() error {
	if g.halted != nil {
		return ErrHalted
	}
	if g.state != StateGameOver {
		return fmt.Errorf("%w: restart from %s", ErrInvalidTransition, g.state)
	}
	g.resetMission(g.clock.Now())
	g.state = StateRunning
	g.announce()
	g.log.Infow("mission restarted", "astronauts", len(g.sim.Astronauts))
	return nil
}

// announce pushes the initial pool values to the presenter.
func (g *Game) announce() {
	p := g.sim.Player
	g.presenter.OnScoreChanged(p.Score)
	g.presenter.OnHealthChanged(percent(p.Health, config.MaxHealth))
	g.presenter.OnEnergyChanged(percent(p.Energy, config.MaxEnergy))
}

// HandleCommands applies the discrete lifecycle keys of in.
func (g *Game) HandleCommands(in input.Input) {
	if in.Start {
		switch g.state {
		case StateNotStarted:
			_ = g.Start()
		case StatePaused:
			_ = g.Resume()
		case StateGameOver:
			_ = g.Restart()
		}
	}
	if in.Pause {
		switch g.state {
		case StateRunning:
			_ = g.Pause()
		case StatePaused:
			_ = g.Resume()
		}
	}
}

// Tick advances the mission by one step. Outside Running it only handles
// lifecycle commands. A fault inside the step halts the simulation; it is
// returned once as a *TickError and every later call returns ErrHalted.
func (g *Game) Tick(in input.Input) (err error) {
	if g.halted != nil {
		return ErrHalted
	}
	// Lifecycle commands lay out missions and notify presenters, so they
	// run inside the same boundary as the step.
	defer func() {
		if r := recover(); r != nil {
			err = g.halt(&TickError{Tick: g.sim.Tick, Cause: fmt.Errorf("panic: %v", r)})
		}
	}()

	g.HandleCommands(in)
	if g.state != StateRunning {
		return nil
	}

	now := g.clock.Now()
	if err := g.step(now, in); err != nil {
		return g.halt(&TickError{Tick: g.sim.Tick, Cause: err})
	}
	return nil
}

// step runs the fixed per-tick pipeline.
func (g *Game) step(now int64, in input.Input) error {
	g.sim.Tick++

	g.applyControl(now, in)
	g.spawnLanders(now)
	g.advance()
	g.resolveCollisions()
	if g.state != StateRunning {
		return nil
	}
	g.updateEconomy(in.Thrusting())
	g.sim.Difficulty = DifficultyAt(now - g.sim.Player.MissionStart)

	return g.checkInvariants()
}

func (g *Game) halt(err error) error {
	g.halted = err
	g.log.Errorw("simulation halted", "error", err)
	return err
}

func (g *Game) checkInvariants() error {
	p := g.sim.Player
	for _, v := range []float64{p.Pos.X, p.Pos.Y, p.Pos.Z, p.Health, p.Energy} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite player state: pos=%+v health=%v energy=%v", p.Pos, p.Health, p.Energy)
		}
	}
	return nil
}

// ApplyDamage removes health from the player while the mission is running.
// Reaching zero ends the mission; the game-over notification fires exactly
// once.
func (g *Game) ApplyDamage(amount float64) {
	if amount <= 0 || g.state != StateRunning {
		return
	}
	p := g.sim.Player
	p.Health = math.Max(0, math.Min(config.MaxHealth, p.Health-amount))
	g.presenter.OnHealthChanged(percent(p.Health, config.MaxHealth))
	if p.IsDead() {
		g.endMission(g.clock.Now())
	}
}

func (g *Game) endMission(now int64) {
	if g.isGameOver {
		return
	}
	g.isGameOver = true
	g.endedAt = now
	g.state = StateGameOver

	s := g.Summary()
	g.log.Infow("mission over",
		"score", s.Score,
		"landersDestroyed", s.LandersDestroyed,
		"astronautsSaved", s.AstronautsSaved,
		"difficulty", s.Difficulty,
		"missionMs", s.MissionMs,
	)
	g.presenter.OnGameOver(s)
}

// Summary reports the mission tallies.
func (g *Game) Summary() Summary {
	p := g.sim.Player
	return Summary{
		Score:               p.Score,
		AstronautsSaved:     p.AstronautsSaved,
		AstronautsRemaining: g.sim.LiveAstronauts(),
		LandersDestroyed:    p.LandersDestroyed,
		Difficulty:          g.sim.Difficulty.Level,
		MissionMs:           g.elapsed(),
	}
}

// elapsed returns mission time, frozen while paused or over.
func (g *Game) elapsed() int64 {
	start := g.sim.Player.MissionStart
	switch g.state {
	case StateRunning:
		return g.clock.Now() - start
	case StatePaused:
		return g.pausedAt - start
	case StateGameOver:
		return g.endedAt - start
	default:
		return 0
	}
}

func (g *Game) addScore(n int) {
	g.sim.Player.Score += n
	g.presenter.OnScoreChanged(g.sim.Player.Score)
}

func (g *Game) track(e object.Entity) {
	g.handles[e.EntityID()] = g.scene.CreateEntity(e.Kind(), Transform{Pos: e.Position()})
}

func (g *Game) untrack(id object.ID) {
	if h, ok := g.handles[id]; ok {
		g.scene.DestroyEntity(h)
		delete(g.handles, id)
	}
}

func percent(v, limit float64) float64 {
	return 100 * v / limit
}
