package loop

import (
	"math/rand"
	"testing"

	"github.com/tomz197/lunardefender/internal/loop/config"
	"github.com/tomz197/lunardefender/internal/object"
)

var flatTerrain = TerrainFunc(func(x, z float64) float64 { return 0 })

// recorder counts presenter notifications.
type recorder struct {
	scores  []int
	health  []float64
	energy  []float64
	summary Summary

	landersDestroyed int
	astronautsLost   int
	lasersFired      int
	gameOvers        int
	explosions       int
	popups           []int
}

func (r *recorder) OnScoreChanged(total int)            { r.scores = append(r.scores, total) }
func (r *recorder) OnHealthChanged(pct float64)         { r.health = append(r.health, pct) }
func (r *recorder) OnEnergyChanged(pct float64)         { r.energy = append(r.energy, pct) }
func (r *recorder) OnLanderDestroyed()                  { r.landersDestroyed++ }
func (r *recorder) OnAstronautLost()                    { r.astronautsLost++ }
func (r *recorder) OnLaserFired(object.Vec3)            { r.lasersFired++ }
func (r *recorder) SpawnExplosionEffect(object.Vec3)    { r.explosions++ }
func (r *recorder) ShowScorePopup(_ object.Vec3, n int) { r.popups = append(r.popups, n) }
func (r *recorder) OnGameOver(s Summary) {
	r.gameOvers++
	r.summary = s
}

// sceneRecorder tracks live scene handles.
type sceneRecorder struct {
	next    Handle
	live    map[Handle]object.Kind
	player  Transform
	created int
}

func newSceneRecorder() *sceneRecorder {
	return &sceneRecorder{live: make(map[Handle]object.Kind)}
}

func (s *sceneRecorder) CreateEntity(kind object.Kind, _ Transform) Handle {
	s.next++
	s.live[s.next] = kind
	s.created++
	return s.next
}

func (s *sceneRecorder) DestroyEntity(h Handle)         { delete(s.live, h) }
func (s *sceneRecorder) SetPlayerTransform(t Transform) { s.player = t }

// quietTuning disables astronauts and energy regen so tests control the field.
func quietTuning() config.Tuning {
	t := config.Default()
	t.AstronautCount = 0
	t.EnergyRechargeRate = 0
	return t
}

type testGame struct {
	*Game
	clock *ManualClock
	rec   *recorder
}

func newTestGame(t *testing.T, tun config.Tuning, terrain Terrain, opts ...Option) testGame {
	t.Helper()
	clock := NewManualClock(0)
	rec := &recorder{}
	opts = append([]Option{
		WithTuning(tun),
		WithPresenter(rec),
		WithRand(rand.New(rand.NewSource(1))),
	}, opts...)
	g, err := NewGame(clock, terrain, opts...)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	return testGame{Game: g, clock: clock, rec: rec}
}

func (tg testGame) mustStart(t *testing.T) {
	t.Helper()
	if err := tg.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
}

func (tg testGame) addLander(pos object.Vec3) *object.Lander {
	sim := tg.Sim()
	l := object.NewLander(sim.NewID(), pos, sim.Scroll, 0, 0)
	sim.Landers = append(sim.Landers, l)
	return l
}

func (tg testGame) addAstronaut(x, y, z float64) *object.Astronaut {
	sim := tg.Sim()
	a := object.NewAstronaut(sim.NewID(), x, y, z, sim.Scroll)
	sim.Astronauts = append(sim.Astronauts, a)
	return a
}

func (tg testGame) addLaser(pos, dir object.Vec3) *object.Laser {
	sim := tg.Sim()
	l := object.NewLaser(sim.NewID(), pos, dir, tg.Tuning().LaserSpeed)
	sim.Lasers = append(sim.Lasers, l)
	return l
}
