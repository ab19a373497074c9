package client

import (
	"time"

	"github.com/tomz197/lunardefender/internal/input"
	"github.com/tomz197/lunardefender/internal/loop"
	"github.com/tomz197/lunardefender/internal/object"
)

// effect is a short-lived marker drawn over the field.
type effect struct {
	Pos  object.Vec3
	Text string  // Empty for an explosion flash
	TTL  float64 // Seconds left
}

// ClientState holds per-connection view state (input, effects, banners).
// Each client has their own instance, managed by the Client.
type ClientState struct {
	Input   input.Input
	Running bool // Client loop running

	Effects []effect
	Message string  // Transient banner, e.g. "ASTRONAUT LOST"
	msgTTL  float64 // Seconds left on Message

	Summary *loop.Summary // Set when the mission ends
	Halted  error         // Set when the server stopped this mission

	Shutdown      bool
	shutdownTimer float64 // Countdown before auto-disconnect on shutdown
	isInactive    bool    // Whether the client is in inactive warning state
	wasInactive   bool

	prevPhase loop.GameState
	delta     time.Duration // Frame delta time (client-side)
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		Running:   true,
		prevPhase: loop.StateNotStarted,
	}
}

// addEffect queues a floating marker.
func (s *ClientState) addEffect(pos object.Vec3, text string, ttl float64) {
	s.Effects = append(s.Effects, effect{Pos: pos, Text: text, TTL: ttl})
}

// flash shows a banner for a few seconds.
func (s *ClientState) flash(msg string) {
	s.Message = msg
	s.msgTTL = 2
}

// age decays effects and banners by dt seconds.
func (s *ClientState) age(dt float64) {
	kept := s.Effects[:0]
	for _, e := range s.Effects {
		e.TTL -= dt
		if e.TTL > 0 {
			kept = append(kept, e)
		}
	}
	s.Effects = kept

	if s.msgTTL > 0 {
		s.msgTTL -= dt
		if s.msgTTL <= 0 {
			s.Message = ""
		}
	}
}
