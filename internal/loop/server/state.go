package server

import (
	"sync/atomic"

	"github.com/tomz197/lunardefender/internal/input"
	"github.com/tomz197/lunardefender/internal/loop"
	"github.com/tomz197/lunardefender/internal/object"
)

// ClientHandle represents a client's connection to the server.
type ClientHandle struct {
	ID       int
	Username string           // Display name for this client
	EventsCh chan ClientEvent // Events sent to client (explosions, game over, etc.)

	snapshot atomic.Pointer[loop.Snapshot]
}

// Snapshot returns the latest published state of this client's mission.
func (h *ClientHandle) Snapshot() *loop.Snapshot {
	return h.snapshot.Load()
}

// ClientInput represents input from a specific client.
type ClientInput struct {
	ClientID int
	Input    input.Input
}

// ClientEvent represents an event sent from server to client.
type ClientEvent struct {
	Type    ClientEventType
	Pos     object.Vec3  // Where the event happened
	Amount  int          // Score delta for popups
	Summary loop.Summary // For game over
	Err     error        // For halts
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventLaserFired ClientEventType = iota
	EventExplosion
	EventScorePopup
	EventLanderDestroyed
	EventAstronautLost
	EventGameOver
	EventHalted
	EventServerShutdown
)

func (t ClientEventType) String() string {
	switch t {
	case EventLaserFired:
		return "laser"
	case EventExplosion:
		return "explosion"
	case EventScorePopup:
		return "popup"
	case EventLanderDestroyed:
		return "landerDestroyed"
	case EventAstronautLost:
		return "astronautLost"
	case EventGameOver:
		return "gameOver"
	case EventHalted:
		return "halted"
	case EventServerShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// session is one client's mission. Only the server goroutine touches it.
type session struct {
	handle *ClientHandle
	game   *loop.Game
	input  input.Input
	halted bool
}

// eventPresenter forwards gameplay notifications to the client as events.
// Pool values travel in snapshots, so those callbacks are ignored.
type eventPresenter struct {
	loop.NopPresenter
	handle *ClientHandle
}

func (p eventPresenter) send(ev ClientEvent) {
	select {
	case p.handle.EventsCh <- ev:
	default:
		// Client not draining, drop event
	}
}

func (p eventPresenter) OnLaserFired(pos object.Vec3) {
	p.send(ClientEvent{Type: EventLaserFired, Pos: pos})
}

func (p eventPresenter) SpawnExplosionEffect(pos object.Vec3) {
	p.send(ClientEvent{Type: EventExplosion, Pos: pos})
}

func (p eventPresenter) ShowScorePopup(pos object.Vec3, amount int) {
	p.send(ClientEvent{Type: EventScorePopup, Pos: pos, Amount: amount})
}

func (p eventPresenter) OnLanderDestroyed() {
	p.send(ClientEvent{Type: EventLanderDestroyed})
}

func (p eventPresenter) OnAstronautLost() {
	p.send(ClientEvent{Type: EventAstronautLost})
}

func (p eventPresenter) OnGameOver(s loop.Summary) {
	p.send(ClientEvent{Type: EventGameOver, Summary: s})
}

var _ loop.Presenter = eventPresenter{}
