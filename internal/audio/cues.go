package audio

import (
	"time"

	"github.com/gopxl/beep"
)

// Cue names a sound effect.
type Cue int

const (
	CueLaser Cue = iota
	CueExplosion
	CueRescue
	CueAstronautLost
	CueGameOver
)

func (c Cue) String() string {
	switch c {
	case CueLaser:
		return "laser"
	case CueExplosion:
		return "explosion"
	case CueRescue:
		return "rescue"
	case CueAstronautLost:
		return "astronautLost"
	case CueGameOver:
		return "gameOver"
	default:
		return "unknown"
	}
}

// Cue lengths.
const (
	laserDuration     = 120 * time.Millisecond
	explosionDuration = 350 * time.Millisecond
	chimeNoteDuration = 90 * time.Millisecond
	lostDuration      = 400 * time.Millisecond
	gameOverNote      = 250 * time.Millisecond
)

// Streamer synthesizes c at rate, scaled by gain.
func (c Cue) Streamer(rate beep.SampleRate, gain float64) beep.Streamer {
	var s beep.Streamer
	switch c {
	case CueLaser:
		// Falling square zap
		osc := NewSweep(1400, 300, laserDuration, WaveSquare, rate)
		s = withVolume(NewEnvelope(osc, laserDuration, 5*time.Millisecond, 60*time.Millisecond, rate), 0.4)
	case CueExplosion:
		noise := NewOscillator(0, explosionDuration, WaveNoise, rate)
		rumble := NewSweep(120, 40, explosionDuration, WaveSaw, rate)
		s = beep.Mix(
			NewEnvelope(noise, explosionDuration, 2*time.Millisecond, 300*time.Millisecond, rate),
			withVolume(NewEnvelope(rumble, explosionDuration, 2*time.Millisecond, 300*time.Millisecond, rate), 0.6),
		)
	case CueRescue:
		// Rising two-note chime (B5, E6)
		n1 := NewOscillator(987.77, chimeNoteDuration, WaveSine, rate)
		n2 := NewOscillator(1318.51, chimeNoteDuration*2, WaveSine, rate)
		s = beep.Seq(
			NewEnvelope(n1, chimeNoteDuration, 5*time.Millisecond, 30*time.Millisecond, rate),
			NewEnvelope(n2, chimeNoteDuration*2, 5*time.Millisecond, 120*time.Millisecond, rate),
		)
	case CueAstronautLost:
		osc := NewSweep(600, 150, lostDuration, WaveSaw, rate)
		s = withVolume(NewEnvelope(osc, lostDuration, 10*time.Millisecond, 150*time.Millisecond, rate), 0.5)
	case CueGameOver:
		// Descending three-note phrase
		var notes []beep.Streamer
		for _, f := range []float64{392, 311.13, 196} {
			osc := NewOscillator(f, gameOverNote, WaveSquare, rate)
			notes = append(notes, NewEnvelope(osc, gameOverNote, 10*time.Millisecond, 120*time.Millisecond, rate))
		}
		s = withVolume(beep.Seq(notes...), 0.5)
	default:
		return nil
	}
	return withVolume(s, gain)
}
