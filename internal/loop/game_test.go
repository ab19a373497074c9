package loop

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/tomz197/lunardefender/internal/input"
	"github.com/tomz197/lunardefender/internal/loop/config"
	"github.com/tomz197/lunardefender/internal/object"
)

func TestNewGameMissingCollaborator(t *testing.T) {
	clock := NewManualClock(0)
	tests := []struct {
		name    string
		clock   Clock
		terrain Terrain
		opts    []Option
	}{
		{"no clock", nil, flatTerrain, nil},
		{"no terrain", clock, nil, nil},
		{"nil scene", clock, flatTerrain, []Option{WithScene(nil)}},
		{"nil presenter", clock, flatTerrain, []Option{WithPresenter(nil)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGame(tt.clock, tt.terrain, tt.opts...)
			if !errors.Is(err, ErrMissingCollaborator) {
				t.Fatalf("got %v, want ErrMissingCollaborator", err)
			}
		})
	}
}

func TestNewGameRejectsInvalidTuning(t *testing.T) {
	tun := config.Default()
	tun.LaserSpeed = 0
	_, err := NewGame(NewManualClock(0), flatTerrain, WithTuning(tun))
	if !errors.Is(err, config.ErrInvalidTuning) {
		t.Fatalf("got %v, want ErrInvalidTuning", err)
	}
}

func TestStateMachine(t *testing.T) {
	g := newTestGame(t, quietTuning(), flatTerrain)

	if g.State() != StateNotStarted {
		t.Fatalf("initial state = %s, want not started", g.State())
	}
	if err := g.Pause(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Pause from not started: got %v, want ErrInvalidTransition", err)
	}
	if err := g.Resume(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Resume from not started: got %v, want ErrInvalidTransition", err)
	}

	g.mustStart(t)
	if g.State() != StateRunning {
		t.Fatalf("state = %s, want running", g.State())
	}
	if err := g.Start(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Start while running: got %v, want ErrInvalidTransition", err)
	}
	if err := g.Pause(); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if err := g.Resume(); err != nil {
		t.Fatalf("Resume: %v", err)
	}

	// Pause key toggles.
	if err := g.Tick(input.Input{Pause: true}); err != nil {
		t.Fatal(err)
	}
	if g.State() != StatePaused {
		t.Fatalf("state = %s, want paused", g.State())
	}
	if err := g.Tick(input.Input{Pause: true}); err != nil {
		t.Fatal(err)
	}
	if g.State() != StateRunning {
		t.Fatalf("state = %s, want running", g.State())
	}
}

func TestStartFromPausedResetsMissionClock(t *testing.T) {
	g := newTestGame(t, quietTuning(), flatTerrain)
	g.mustStart(t)
	g.clock.Set(90_000)
	if err := g.Pause(); err != nil {
		t.Fatal(err)
	}
	g.clock.Set(95_000)
	g.mustStart(t)
	if got := g.Sim().Player.MissionStart; got != 95_000 {
		t.Fatalf("MissionStart = %d, want 95000", got)
	}
}

func TestTickOnlyAdvancesWhileRunning(t *testing.T) {
	g := newTestGame(t, quietTuning(), flatTerrain)

	if err := g.Tick(input.Input{Forward: true}); err != nil {
		t.Fatal(err)
	}
	if g.Sim().Tick != 0 || g.Sim().Scroll != 0 {
		t.Fatalf("simulation advanced before start: tick=%d scroll=%v", g.Sim().Tick, g.Sim().Scroll)
	}

	if err := g.Tick(input.Input{Start: true}); err != nil {
		t.Fatal(err)
	}
	if g.Sim().Tick != 1 {
		t.Fatalf("tick = %d, want 1 after start", g.Sim().Tick)
	}

	_ = g.Pause()
	for i := 0; i < 5; i++ {
		_ = g.Tick(input.Input{Forward: true})
	}
	if g.Sim().Tick != 1 || g.Sim().Scroll != 0 {
		t.Fatalf("simulation advanced while paused: tick=%d scroll=%v", g.Sim().Tick, g.Sim().Scroll)
	}
}

func TestPausedTimeDoesNotCountTowardDifficulty(t *testing.T) {
	g := newTestGame(t, quietTuning(), flatTerrain)
	g.mustStart(t)

	g.clock.Set(1_000)
	_ = g.Pause()
	g.clock.Set(61_000)
	_ = g.Resume()
	if err := g.Tick(input.Input{}); err != nil {
		t.Fatal(err)
	}
	if got := g.Sim().Difficulty.Level; got != 1 {
		t.Fatalf("level = %d, want 1 (paused minute excluded)", got)
	}
	if got := g.Summary().MissionMs; got != 1_000 {
		t.Fatalf("mission time = %d, want 1000", got)
	}
}

func TestTenShotsDrainEnergy(t *testing.T) {
	tun := quietTuning()
	tun.ShootCooldownMs = 0
	g := newTestGame(t, tun, flatTerrain)
	g.mustStart(t)

	for i := 0; i < 10; i++ {
		if got := g.TryFire(0); got != FireOK {
			t.Fatalf("shot %d: got %s, want fired", i+1, got)
		}
	}
	p := g.Sim().Player
	if p.Energy != 0 {
		t.Fatalf("energy = %v, want 0", p.Energy)
	}
	if len(g.Sim().Lasers) != 10 {
		t.Fatalf("lasers = %d, want 10", len(g.Sim().Lasers))
	}

	if got := g.TryFire(0); got != FireNoEnergy {
		t.Fatalf("11th shot: got %s, want no energy", got)
	}
	if p.Energy != 0 || len(g.Sim().Lasers) != 10 {
		t.Fatalf("refused shot changed state: energy=%v lasers=%d", p.Energy, len(g.Sim().Lasers))
	}
	if g.rec.lasersFired != 10 {
		t.Fatalf("laser notifications = %d, want 10", g.rec.lasersFired)
	}
}

func TestFireWithoutEnergyIsNoOp(t *testing.T) {
	g := newTestGame(t, quietTuning(), flatTerrain)
	g.mustStart(t)
	p := g.Sim().Player
	p.Energy = 9.5

	if got := g.TryFire(0); got != FireNoEnergy {
		t.Fatalf("got %s, want no energy", got)
	}
	if p.Energy != 9.5 || len(g.Sim().Lasers) != 0 {
		t.Fatalf("energy=%v lasers=%d, want unchanged", p.Energy, len(g.Sim().Lasers))
	}
}

func TestFireCooldown(t *testing.T) {
	g := newTestGame(t, quietTuning(), flatTerrain)

	if got := g.TryFire(0); got != FireInactive {
		t.Fatalf("before start: got %s, want inactive", got)
	}
	g.mustStart(t)

	steps := []struct {
		now  int64
		want FireResult
	}{
		{0, FireOK},
		{100, FireCooldown},
		{199, FireCooldown},
		{200, FireOK},
	}
	for _, s := range steps {
		if got := g.TryFire(s.now); got != s.want {
			t.Fatalf("TryFire(%d) = %s, want %s", s.now, got, s.want)
		}
	}
}

func TestFiredLaserFollowsView(t *testing.T) {
	g := newTestGame(t, quietTuning(), flatTerrain)
	g.mustStart(t)
	p := g.Sim().Player
	p.Look(math.Pi/2, 0)

	g.TryFire(0)
	l := g.Sim().Lasers[0]
	if math.Abs(l.Dir.X-1) > 1e-9 || math.Abs(l.Dir.Z) > 1e-9 {
		t.Fatalf("laser dir = %+v, want +X", l.Dir)
	}
	if l.Pos != p.Pos {
		t.Fatalf("laser pos = %+v, want player pos %+v", l.Pos, p.Pos)
	}
}

func TestDamageEndsMissionOnce(t *testing.T) {
	g := newTestGame(t, quietTuning(), flatTerrain)
	g.mustStart(t)

	for i := 0; i < 5; i++ {
		g.ApplyDamage(20)
	}
	p := g.Sim().Player
	if p.Health != 0 {
		t.Fatalf("health = %v, want 0", p.Health)
	}
	if g.State() != StateGameOver {
		t.Fatalf("state = %s, want game over", g.State())
	}

	g.ApplyDamage(20)
	g.ApplyDamage(20)
	if p.Health != 0 {
		t.Fatalf("health = %v after extra damage, want 0", p.Health)
	}
	if g.rec.gameOvers != 1 {
		t.Fatalf("game over notifications = %d, want 1", g.rec.gameOvers)
	}
	if err := g.Resume(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Resume after game over: got %v, want ErrInvalidTransition", err)
	}
}

func TestRamStopsAtFatalHit(t *testing.T) {
	g := newTestGame(t, quietTuning(), flatTerrain)
	g.mustStart(t)
	p := g.Sim().Player
	p.Health = g.tun.LanderHitDamage

	first := g.addLander(p.Pos)
	second := g.addLander(p.Pos)
	g.checkPlayerHits()

	if !first.IsDestroyed() || second.IsDestroyed() {
		t.Fatalf("destroyed = %v/%v, want only the first lander spent", first.IsDestroyed(), second.IsDestroyed())
	}
	if g.State() != StateGameOver || g.rec.gameOvers != 1 {
		t.Fatalf("state=%s gameOvers=%d, want one game over", g.State(), g.rec.gameOvers)
	}
	if g.rec.explosions != 1 {
		t.Fatalf("explosions = %d, want 1", g.rec.explosions)
	}
}

func TestRestartAfterGameOver(t *testing.T) {
	tun := quietTuning()
	tun.AstronautCount = 3
	scene := newSceneRecorder()
	g := newTestGame(t, tun, flatTerrain, WithScene(scene))
	g.mustStart(t)
	g.Sim().Player.Score = 300
	g.ApplyDamage(config.MaxHealth)

	if err := g.Tick(input.Input{Start: true}); err != nil {
		t.Fatal(err)
	}
	if g.State() != StateRunning {
		t.Fatalf("state = %s, want running", g.State())
	}
	p := g.Sim().Player
	if p.Score != 0 || p.Health != config.MaxHealth || p.Energy != config.MaxEnergy {
		t.Fatalf("player not reset: %+v", p)
	}
	if n := len(scene.live); n != 3 {
		t.Fatalf("live scene entities = %d, want 3 astronauts", n)
	}
}

func TestRestartRefusedOutsideGameOver(t *testing.T) {
	g := newTestGame(t, quietTuning(), flatTerrain)

	if err := g.Restart(); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Restart from not started: got %v, want ErrInvalidTransition", err)
	}
	if g.State() != StateNotStarted {
		t.Fatalf("state = %s, want not started", g.State())
	}

	g.mustStart(t)
	g.Sim().Player.Score = 300
	for _, state := range []GameState{StateRunning, StatePaused} {
		if state == StatePaused {
			if err := g.Pause(); err != nil {
				t.Fatal(err)
			}
		}
		if err := g.Restart(); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("Restart from %s: got %v, want ErrInvalidTransition", state, err)
		}
		if g.State() != state || g.Sim().Player.Score != 300 {
			t.Fatalf("Restart from %s changed the mission: state=%s score=%d", state, g.State(), g.Sim().Player.Score)
		}
	}
}

func TestDamageIgnoredOutsideRunning(t *testing.T) {
	g := newTestGame(t, quietTuning(), flatTerrain)

	g.ApplyDamage(config.MaxHealth)
	if g.State() != StateNotStarted || g.Sim().Player.Health != config.MaxHealth {
		t.Fatalf("damage before start: state=%s health=%v", g.State(), g.Sim().Player.Health)
	}

	g.mustStart(t)
	if err := g.Pause(); err != nil {
		t.Fatal(err)
	}
	g.ApplyDamage(config.MaxHealth)
	if g.State() != StatePaused || g.Sim().Player.Health != config.MaxHealth {
		t.Fatalf("damage while paused: state=%s health=%v", g.State(), g.Sim().Player.Health)
	}
	if g.rec.gameOvers != 0 || len(g.rec.health) != 0 {
		t.Fatalf("notifications outside running: gameOvers=%d health=%v", g.rec.gameOvers, g.rec.health)
	}
}

// faultyPresenter panics on score updates once armed.
type faultyPresenter struct {
	*recorder
	armed bool
}

func (p *faultyPresenter) OnScoreChanged(total int) {
	if p.armed {
		panic("hud unavailable")
	}
	p.recorder.OnScoreChanged(total)
}

func TestLifecycleFaultHaltsGame(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, g testGame, fp *faultyPresenter)
	}{
		{"start", func(t *testing.T, g testGame, fp *faultyPresenter) {}},
		{"restart", func(t *testing.T, g testGame, fp *faultyPresenter) {
			g.mustStart(t)
			g.ApplyDamage(config.MaxHealth)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := &faultyPresenter{recorder: &recorder{}}
			g := newTestGame(t, quietTuning(), flatTerrain, WithPresenter(fp))
			tt.setup(t, g, fp)

			fp.armed = true
			var err error
			func() {
				defer func() {
					if r := recover(); r != nil {
						t.Fatalf("panic escaped Tick: %v", r)
					}
				}()
				err = g.Tick(input.Input{Start: true})
			}()

			var te *TickError
			if !errors.As(err, &te) {
				t.Fatalf("got %v, want *TickError", err)
			}
			if !g.Halted() {
				t.Fatal("game not halted")
			}
			if err := g.Tick(input.Input{}); !errors.Is(err, ErrHalted) {
				t.Fatalf("next tick: got %v, want ErrHalted", err)
			}
		})
	}
}

func TestStartLayoutFaultHaltsGame(t *testing.T) {
	var explode bool
	terrain := TerrainFunc(func(x, z float64) float64 {
		if explode {
			panic("terrain fault")
		}
		return 0
	})
	tun := quietTuning()
	tun.AstronautCount = 2
	g := newTestGame(t, tun, terrain)

	explode = true
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("panic escaped Tick: %v", r)
			}
		}()
		err = g.Tick(input.Input{Start: true})
	}()

	var te *TickError
	if !errors.As(err, &te) || te.Tick != 0 {
		t.Fatalf("got %v, want *TickError at tick 0", err)
	}
	if !g.Halted() {
		t.Fatal("game not halted")
	}
}

func TestLanderWithoutAstronautsHoldsX(t *testing.T) {
	g := newTestGame(t, quietTuning(), flatTerrain)
	g.mustStart(t)

	g.clock.Set(3_000)
	if err := g.Tick(input.Input{}); err != nil {
		t.Fatal(err)
	}
	if len(g.Sim().Landers) != 1 {
		t.Fatalf("landers = %d, want 1 spawned", len(g.Sim().Landers))
	}
	l := g.Sim().Landers[0]
	for i := 0; i < 50; i++ {
		g.clock.Advance(16)
		if err := g.Tick(input.Input{}); err != nil {
			t.Fatal(err)
		}
		if l.Pos.X != config.FieldHalfWidth {
			t.Fatalf("tick %d: lander x = %v, want %v", i, l.Pos.X, config.FieldHalfWidth)
		}
	}
}

func TestSpawnerRespectsInterval(t *testing.T) {
	g := newTestGame(t, quietTuning(), flatTerrain)
	g.mustStart(t)

	// Level 1 interval is 2800 ms.
	g.clock.Set(2_800)
	_ = g.Tick(input.Input{})
	if len(g.Sim().Landers) != 0 {
		t.Fatal("spawned at exactly the interval")
	}
	g.clock.Set(2_801)
	_ = g.Tick(input.Input{})
	if len(g.Sim().Landers) != 1 {
		t.Fatalf("landers = %d, want 1", len(g.Sim().Landers))
	}
	if got := g.Sim().Player.LastSpawnTime; got != 2_801 {
		t.Fatalf("LastSpawnTime = %d, want 2801", got)
	}
	l := g.Sim().Landers[0]
	if l.ID == 0 || math.Abs(l.Pos.Z) > config.FieldHalfDepth {
		t.Fatalf("bad spawn: %+v", l)
	}
}

func TestEnemyCapIsAdvisoryByDefault(t *testing.T) {
	for _, enforce := range []bool{false, true} {
		tun := quietTuning()
		tun.EnforceEnemyCap = enforce
		g := newTestGame(t, tun, flatTerrain)
		g.mustStart(t)
		for i := 0; i < 10; i++ {
			g.addLander(object.Vec3{X: 300, Y: 30, Z: float64(i * 20)})
		}

		g.clock.Set(3_000)
		_ = g.Tick(input.Input{})
		got := len(g.Sim().Landers)
		want := 11
		if enforce {
			want = 10
		}
		if got != want {
			t.Fatalf("enforce=%v: landers = %d, want %d", enforce, got, want)
		}
	}
}

func TestLaserHitResolvesFirstPairOnly(t *testing.T) {
	for _, all := range []bool{false, true} {
		tun := quietTuning()
		tun.ResolveAllHits = all
		g := newTestGame(t, tun, flatTerrain)
		g.mustStart(t)

		dir := object.Vec3{Z: 1}
		step := tun.LaserSpeed
		g.addLander(object.Vec3{X: 0, Y: 30, Z: 100})
		g.addLander(object.Vec3{X: 50, Y: 30, Z: 100})
		g.addLaser(object.Vec3{X: 0, Y: 30, Z: 100 - step}, dir)
		g.addLaser(object.Vec3{X: 50, Y: 30, Z: 100 - step}, dir)

		if err := g.Tick(input.Input{}); err != nil {
			t.Fatal(err)
		}

		hits := 1
		if all {
			hits = 2
		}
		p := g.Sim().Player
		if p.LandersDestroyed != hits || p.Score != hits*config.ScoreLanderDestroyed {
			t.Fatalf("all=%v: destroyed=%d score=%d, want %d hits", all, p.LandersDestroyed, p.Score, hits)
		}
		if got := len(g.Sim().Landers); got != 2-hits {
			t.Fatalf("all=%v: landers left = %d, want %d", all, got, 2-hits)
		}
		if g.rec.explosions != hits || len(g.rec.popups) != hits || g.rec.landersDestroyed != hits {
			t.Fatalf("all=%v: explosions=%d popups=%v destroyed=%d", all, g.rec.explosions, g.rec.popups, g.rec.landersDestroyed)
		}
		if g.rec.popups[0] != config.ScoreLanderDestroyed {
			t.Fatalf("popup = %d, want %d", g.rec.popups[0], config.ScoreLanderDestroyed)
		}
	}
}

func TestLaserHitPrefersEarlierLanderAcrossCells(t *testing.T) {
	g := newTestGame(t, quietTuning(), flatTerrain)
	g.mustStart(t)

	// Both landers are in range but sit in neighboring broad-phase cells.
	first := g.addLander(object.Vec3{X: 25.5, Y: 30, Z: 100})
	second := g.addLander(object.Vec3{X: 24.5, Y: 30, Z: 100})
	g.addLaser(object.Vec3{X: 25, Y: 30, Z: 100 - g.Tuning().LaserSpeed}, object.Vec3{Z: 1})

	if err := g.Tick(input.Input{}); err != nil {
		t.Fatal(err)
	}
	landers := g.Sim().Landers
	if len(landers) != 1 || landers[0] != second {
		t.Fatalf("survivors = %v, want only lander %d", landers, second.ID)
	}
	if !first.IsDestroyed() {
		t.Fatal("earlier lander was not the one hit")
	}
}

func TestLanderRamsPlayer(t *testing.T) {
	g := newTestGame(t, quietTuning(), flatTerrain)
	g.mustStart(t)
	g.addLander(g.Sim().Player.Pos)

	if err := g.Tick(input.Input{}); err != nil {
		t.Fatal(err)
	}
	p := g.Sim().Player
	if p.Health != 80 {
		t.Fatalf("health = %v, want 80", p.Health)
	}
	if len(g.Sim().Landers) != 0 {
		t.Fatal("ramming lander not removed")
	}
	if last := g.rec.health[len(g.rec.health)-1]; last != 80 {
		t.Fatalf("health notification = %v, want 80", last)
	}
}

func TestCaptureRemovesAstronautWithoutScore(t *testing.T) {
	g := newTestGame(t, quietTuning(), flatTerrain)
	g.mustStart(t)
	g.addAstronaut(100, 0, 100)
	g.addLander(object.Vec3{X: 100, Y: 0, Z: 100})

	if err := g.Tick(input.Input{}); err != nil {
		t.Fatal(err)
	}
	if len(g.Sim().Astronauts) != 0 || len(g.Sim().Landers) != 0 {
		t.Fatalf("astronauts=%d landers=%d, want both removed", len(g.Sim().Astronauts), len(g.Sim().Landers))
	}
	if g.Sim().Player.Score != 0 {
		t.Fatalf("score = %d, want 0", g.Sim().Player.Score)
	}
	if g.rec.astronautsLost != 1 {
		t.Fatalf("astronaut lost notifications = %d, want 1", g.rec.astronautsLost)
	}
}

func TestAstronautPastFieldEdgeIsPenalized(t *testing.T) {
	g := newTestGame(t, quietTuning(), NewLunarTerrain())
	g.mustStart(t)
	g.addAstronaut(0, 0, 495)
	g.Sim().Scroll = 10

	if err := g.Tick(input.Input{}); err != nil {
		t.Fatal(err)
	}
	if len(g.Sim().Astronauts) != 0 {
		t.Fatal("fallen astronaut not removed")
	}
	if got := g.Sim().Player.Score; got != config.ScoreAstronautLost {
		t.Fatalf("score = %d, want %d", got, config.ScoreAstronautLost)
	}
	if g.rec.astronautsLost != 1 {
		t.Fatalf("astronaut lost notifications = %d, want 1", g.rec.astronautsLost)
	}
}

func TestLanderLeftBehindIsCulledSilently(t *testing.T) {
	g := newTestGame(t, quietTuning(), flatTerrain)
	g.mustStart(t)
	g.addLander(object.Vec3{X: 200, Y: 30, Z: -499})
	g.Sim().Scroll = -2

	if err := g.Tick(input.Input{}); err != nil {
		t.Fatal(err)
	}
	if len(g.Sim().Landers) != 0 {
		t.Fatal("lander behind the field not culled")
	}
	if g.Sim().Player.Score != 0 || g.Sim().Player.LandersDestroyed != 0 {
		t.Fatal("culled lander changed the tallies")
	}
}

func TestRescueNeedsLowHover(t *testing.T) {
	g := newTestGame(t, quietTuning(), flatTerrain)
	g.mustStart(t)
	g.addAstronaut(0, 0, 3)

	if err := g.Tick(input.Input{}); err != nil {
		t.Fatal(err)
	}
	if len(g.Sim().Astronauts) != 1 {
		t.Fatal("rescued from cruising altitude")
	}

	for i := 0; i < 4; i++ {
		if err := g.Tick(input.Input{Descend: true}); err != nil {
			t.Fatal(err)
		}
	}
	p := g.Sim().Player
	if len(g.Sim().Astronauts) != 0 {
		t.Fatalf("not rescued at altitude %v", p.Pos.Y)
	}
	if p.AstronautsSaved != 1 || p.Score != config.ScoreAstronautSaved {
		t.Fatalf("saved=%d score=%d, want 1 and %d", p.AstronautsSaved, p.Score, config.ScoreAstronautSaved)
	}
}

func TestForwardMotionScrollsGround(t *testing.T) {
	g := newTestGame(t, quietTuning(), flatTerrain)
	g.mustStart(t)
	a := g.addAstronaut(20, 0, 200)

	for i := 0; i < 10; i++ {
		if err := g.Tick(input.Input{Forward: true}); err != nil {
			t.Fatal(err)
		}
	}
	sim := g.Sim()
	want := -10 * g.Tuning().MoveSpeed
	if math.Abs(sim.Scroll-want) > 1e-9 {
		t.Fatalf("scroll = %v, want %v", sim.Scroll, want)
	}
	if sim.Player.Pos.Z != 0 {
		t.Fatalf("player z = %v, want 0", sim.Player.Pos.Z)
	}
	if a.Pos.Z != a.InitialZ+sim.Scroll {
		t.Fatalf("astronaut z = %v, want %v", a.Pos.Z, a.InitialZ+sim.Scroll)
	}
}

func TestStrafeClampsToField(t *testing.T) {
	g := newTestGame(t, quietTuning(), flatTerrain)
	g.mustStart(t)
	g.Sim().Player.Pos.X = config.FieldHalfWidth - 0.5

	_ = g.Tick(input.Input{Right: true})
	if got := g.Sim().Player.Pos.X; got != config.FieldHalfWidth {
		t.Fatalf("x = %v, want clamp at %v", got, config.FieldHalfWidth)
	}
}

func TestThrustDrainsEnergy(t *testing.T) {
	g := newTestGame(t, quietTuning(), flatTerrain)
	g.mustStart(t)
	p := g.Sim().Player

	for i := 0; i < 10; i++ {
		_ = g.Tick(input.Input{Ascend: true})
	}
	if math.Abs(p.Energy-98) > 1e-9 {
		t.Fatalf("energy = %v, want 98", p.Energy)
	}
	if math.Abs(p.Pos.Y-(config.PlayerAltitude+10*g.Tuning().ClimbSpeed)) > 1e-9 {
		t.Fatalf("altitude = %v", p.Pos.Y)
	}

	p.Energy = 0
	y := p.Pos.Y
	_ = g.Tick(input.Input{Ascend: true})
	if p.Pos.Y != y || p.Energy != 0 {
		t.Fatalf("climbed without energy: y=%v energy=%v", p.Pos.Y, p.Energy)
	}
}

func TestEnergyRegenCaps(t *testing.T) {
	tun := quietTuning()
	tun.EnergyRechargeRate = 0.5
	g := newTestGame(t, tun, flatTerrain)
	g.mustStart(t)
	p := g.Sim().Player
	p.Energy = 99.8

	_ = g.Tick(input.Input{})
	if p.Energy != config.MaxEnergy {
		t.Fatalf("energy = %v, want %v", p.Energy, config.MaxEnergy)
	}
}

func TestBoundsHoldOverRandomPlay(t *testing.T) {
	tun := config.Default()
	tun.LanderSpeed = 3
	g := newTestGame(t, tun, NewLunarTerrain())
	g.mustStart(t)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 5000; i++ {
		in := input.Input{
			Forward:   rng.Intn(3) == 0,
			Back:      rng.Intn(5) == 0,
			Left:      rng.Intn(4) == 0,
			Right:     rng.Intn(4) == 0,
			Ascend:    rng.Intn(3) == 0,
			Descend:   rng.Intn(3) == 0,
			Fire:      rng.Intn(2) == 0,
			LookDX:    rng.Float64()*20 - 10,
			LookDY:    rng.Float64()*20 - 10,
			Start:     g.State() == StateGameOver,
			LookRight: rng.Intn(6) == 0,
		}
		g.clock.Advance(16)
		if err := g.Tick(in); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}

		sim := g.Sim()
		p := sim.Player
		if p.Health < 0 || p.Health > config.MaxHealth {
			t.Fatalf("tick %d: health %v out of range", i, p.Health)
		}
		if p.Energy < 0 || p.Energy > config.MaxEnergy {
			t.Fatalf("tick %d: energy %v out of range", i, p.Energy)
		}
		if math.Abs(p.Pos.X) > config.FieldHalfWidth {
			t.Fatalf("tick %d: player x %v out of field", i, p.Pos.X)
		}
		for _, a := range sim.Astronauts {
			if a.Pos.Z != a.InitialZ+sim.Scroll {
				t.Fatalf("tick %d: astronaut %d off scroll", i, a.ID)
			}
		}
		for _, l := range sim.Landers {
			if l.Pos.Z != l.InitialZ+sim.Scroll {
				t.Fatalf("tick %d: lander %d off scroll", i, l.ID)
			}
		}
	}
}

func TestSceneMirrorsEntityLifetimes(t *testing.T) {
	tun := quietTuning()
	tun.AstronautCount = 2
	tun.ShootCooldownMs = 0
	scene := newSceneRecorder()
	g := newTestGame(t, tun, flatTerrain, WithScene(scene))
	g.mustStart(t)

	if len(scene.live) != 2 {
		t.Fatalf("live = %d, want 2 astronauts", len(scene.live))
	}
	g.TryFire(0)
	if len(scene.live) != 3 {
		t.Fatalf("live = %d, want laser added", len(scene.live))
	}

	// Let the laser run out of range.
	ticks := int(tun.MaxLaserDistance/tun.LaserSpeed) + 2
	for i := 0; i < ticks; i++ {
		_ = g.Tick(input.Input{})
	}
	if len(g.Sim().Lasers) != 0 {
		t.Fatal("expired laser still live")
	}
	if len(scene.live) != len(g.Sim().Astronauts) {
		t.Fatalf("scene has %d entities, simulation %d", len(scene.live), len(g.Sim().Astronauts))
	}
}

func TestTickHaltsOnPanic(t *testing.T) {
	var explode bool
	terrain := TerrainFunc(func(x, z float64) float64 {
		if explode {
			panic("heightmap unavailable")
		}
		return 0
	})
	tun := quietTuning()
	tun.AstronautCount = 1
	g := newTestGame(t, tun, terrain)
	g.mustStart(t)

	explode = true
	err := g.Tick(input.Input{})
	var te *TickError
	if !errors.As(err, &te) {
		t.Fatalf("got %v, want *TickError", err)
	}
	if te.Tick != 1 {
		t.Fatalf("tick = %d, want 1", te.Tick)
	}
	if !g.Halted() || g.Err() != err {
		t.Fatal("game not halted")
	}

	explode = false
	if err := g.Tick(input.Input{}); !errors.Is(err, ErrHalted) {
		t.Fatalf("got %v, want ErrHalted", err)
	}
	if err := g.Restart(); !errors.Is(err, ErrHalted) {
		t.Fatalf("Restart: got %v, want ErrHalted", err)
	}
}

func TestSummaryAtGameOver(t *testing.T) {
	tun := quietTuning()
	tun.AstronautCount = 4
	g := newTestGame(t, tun, flatTerrain)
	g.mustStart(t)
	g.Sim().Player.LandersDestroyed = 7
	g.clock.Set(42_000)
	g.ApplyDamage(config.MaxHealth)

	s := g.rec.summary
	if s.LandersDestroyed != 7 || s.AstronautsRemaining != 4 || s.MissionMs != 42_000 {
		t.Fatalf("summary = %+v", s)
	}
	g.clock.Set(99_000)
	if got := g.Summary().MissionMs; got != 42_000 {
		t.Fatalf("mission time kept running after game over: %d", got)
	}
}

func TestSnapshotCopiesState(t *testing.T) {
	tun := quietTuning()
	tun.AstronautCount = 3
	g := newTestGame(t, tun, flatTerrain)
	g.mustStart(t)
	g.TryFire(0)

	s := g.Snapshot()
	if s.Phase() != StateRunning || s.State != "running" {
		t.Fatalf("phase = %s / %q", s.Phase(), s.State)
	}
	if len(s.Astronauts) != 3 || len(s.Lasers) != 1 {
		t.Fatalf("astronauts=%d lasers=%d", len(s.Astronauts), len(s.Lasers))
	}
	g.Sim().Astronauts[0].Pos.X = 12345
	if s.Astronauts[0].Pos.X == 12345 {
		t.Fatal("snapshot aliases live entity")
	}
}
