// Package audio synthesizes short sound cues for gameplay events.
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/tomz197/lunardefender/internal/loop"
	"github.com/tomz197/lunardefender/internal/loop/config"
	"github.com/tomz197/lunardefender/internal/object"
)

// SampleRate is the output rate of every cue.
const SampleRate = beep.SampleRate(44100)

// Sink plays a finished streamer. Play must not block.
type Sink interface {
	Play(s beep.Streamer)
}

// Presenter turns gameplay notifications into cues on a Sink.
type Presenter struct {
	loop.NopPresenter
	sink Sink
	gain float64
	rate beep.SampleRate
}

// NewPresenter returns a presenter playing cues at gain on sink.
func NewPresenter(sink Sink, gain float64) *Presenter {
	return &Presenter{sink: sink, gain: gain, rate: SampleRate}
}

func (p *Presenter) play(c Cue) {
	if s := c.Streamer(p.rate, p.gain); s != nil {
		p.sink.Play(s)
	}
}

func (p *Presenter) OnLaserFired(object.Vec3) { p.play(CueLaser) }

func (p *Presenter) SpawnExplosionEffect(object.Vec3) { p.play(CueExplosion) }

func (p *Presenter) OnAstronautLost() { p.play(CueAstronautLost) }

func (p *Presenter) OnGameOver(loop.Summary) { p.play(CueGameOver) }

func (p *Presenter) ShowScorePopup(_ object.Vec3, amount int) {
	if amount == config.ScoreAstronautSaved {
		p.play(CueRescue)
	}
}

var _ loop.Presenter = (*Presenter)(nil)

// Speaker is a Sink on the default audio device. All cues share one mixer.
type Speaker struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewSpeaker returns an uninitialized speaker.
func NewSpeaker() *Speaker {
	return &Speaker{mixer: &beep.Mixer{}}
}

// Init opens the audio device.
func (s *Speaker) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(50*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(s.mixer)
	s.initialized = true
	return nil
}

// Play implements Sink. Cues before Init are dropped.
func (s *Speaker) Play(st beep.Streamer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	speaker.Lock()
	s.mixer.Add(st)
	speaker.Unlock()
}

// Close silences everything and releases the device.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	s.initialized = false
}
