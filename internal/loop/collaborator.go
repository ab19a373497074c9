package loop

import (
	"math"
	"sync"
	"time"

	"github.com/tomz197/lunardefender/internal/loop/config"
	"github.com/tomz197/lunardefender/internal/object"
)

// Clock supplies monotonic milliseconds.
type Clock interface {
	Now() int64
}

// SystemClock reads the wall clock's monotonic component.
type SystemClock struct {
	start time.Time
}

// NewSystemClock returns a clock whose zero is the moment of creation.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Now implements Clock.
func (c *SystemClock) Now() int64 {
	return time.Since(c.start).Milliseconds()
}

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now int64
}

// NewManualClock returns a clock reading start.
func NewManualClock(start int64) *ManualClock {
	return &ManualClock{now: start}
}

// Now implements Clock.
func (c *ManualClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to ms.
func (c *ManualClock) Set(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = ms
}

// Advance moves the clock forward by ms.
func (c *ManualClock) Advance(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += ms
}

// Terrain answers ground height queries.
type Terrain interface {
	HeightAt(x, z float64) float64
}

// TerrainFunc adapts a function to Terrain.
type TerrainFunc func(x, z float64) float64

// HeightAt implements Terrain.
func (f TerrainFunc) HeightAt(x, z float64) float64 { return f(x, z) }

// LunarTerrain is a gently rolling surface that ends at HalfExtent along Z.
// Past the edge there is no ground and HeightAt returns VoidHeight.
type LunarTerrain struct {
	HalfExtent float64
	Amplitude  float64
}

// NewLunarTerrain returns the default surface.
func NewLunarTerrain() LunarTerrain {
	return LunarTerrain{HalfExtent: config.TerrainHalfExtent, Amplitude: 1.5}
}

// HeightAt implements Terrain.
func (t LunarTerrain) HeightAt(x, z float64) float64 {
	if math.Abs(z) > t.HalfExtent {
		return config.VoidHeight
	}
	return t.Amplitude * math.Sin(x*0.02) * math.Cos(z*0.015)
}

// Handle is an opaque reference to a presentation-side entity.
type Handle uint64

// Transform places an entity in the scene.
type Transform struct {
	Pos        object.Vec3
	Yaw, Pitch float64
}

// Scene mirrors the entity set into a renderer.
type Scene interface {
	CreateEntity(kind object.Kind, t Transform) Handle
	DestroyEntity(h Handle)
	SetPlayerTransform(t Transform)
}

// NopScene discards scene updates.
type NopScene struct{}

func (NopScene) CreateEntity(object.Kind, Transform) Handle { return 0 }
func (NopScene) DestroyEntity(Handle)                       {}
func (NopScene) SetPlayerTransform(Transform)               {}

// Summary is the end-of-mission report.
type Summary struct {
	Score               int   `json:"score"`
	AstronautsSaved     int   `json:"astronautsSaved"`
	AstronautsRemaining int   `json:"astronautsRemaining"`
	LandersDestroyed    int   `json:"landersDestroyed"`
	Difficulty          int   `json:"difficulty"`
	MissionMs           int64 `json:"missionMs"`
}

// Presenter receives gameplay notifications. Calls are made from the tick
// and must not block.
type Presenter interface {
	OnScoreChanged(total int)
	OnHealthChanged(pct float64)
	OnEnergyChanged(pct float64)
	OnLanderDestroyed()
	OnAstronautLost()
	OnLaserFired(pos object.Vec3)
	OnGameOver(s Summary)
	SpawnExplosionEffect(pos object.Vec3)
	ShowScorePopup(pos object.Vec3, amount int)
}

// NopPresenter ignores every notification. Embed it to implement a subset.
type NopPresenter struct{}

func (NopPresenter) OnScoreChanged(int)               {}
func (NopPresenter) OnHealthChanged(float64)          {}
func (NopPresenter) OnEnergyChanged(float64)          {}
func (NopPresenter) OnLanderDestroyed()               {}
func (NopPresenter) OnAstronautLost()                 {}
func (NopPresenter) OnLaserFired(object.Vec3)         {}
func (NopPresenter) OnGameOver(Summary)               {}
func (NopPresenter) SpawnExplosionEffect(object.Vec3) {}
func (NopPresenter) ShowScorePopup(object.Vec3, int)  {}

// Presenters fans every notification out to each element in order.
type Presenters []Presenter

func (ps Presenters) OnScoreChanged(total int) {
	for _, p := range ps {
		p.OnScoreChanged(total)
	}
}

func (ps Presenters) OnHealthChanged(pct float64) {
	for _, p := range ps {
		p.OnHealthChanged(pct)
	}
}

func (ps Presenters) OnEnergyChanged(pct float64) {
	for _, p := range ps {
		p.OnEnergyChanged(pct)
	}
}

func (ps Presenters) OnLanderDestroyed() {
	for _, p := range ps {
		p.OnLanderDestroyed()
	}
}

func (ps Presenters) OnAstronautLost() {
	for _, p := range ps {
		p.OnAstronautLost()
	}
}

func (ps Presenters) OnLaserFired(pos object.Vec3) {
	for _, p := range ps {
		p.OnLaserFired(pos)
	}
}

func (ps Presenters) OnGameOver(s Summary) {
	for _, p := range ps {
		p.OnGameOver(s)
	}
}

func (ps Presenters) SpawnExplosionEffect(pos object.Vec3) {
	for _, p := range ps {
		p.SpawnExplosionEffect(pos)
	}
}

func (ps Presenters) ShowScorePopup(pos object.Vec3, amount int) {
	for _, p := range ps {
		p.ShowScorePopup(pos, amount)
	}
}

// Compile-time checks.
var (
	_ Presenter = NopPresenter{}
	_ Presenter = Presenters(nil)
	_ Scene     = NopScene{}
	_ Terrain   = LunarTerrain{}
	_ Clock     = (*ManualClock)(nil)
)
