package input

import (
	"strings"
	"sync"
)

// KeyState tracks discrete key down/up events, as delivered by a browser,
// and folds them into an Input per tick. Safe for concurrent use: events
// arrive on a network goroutine while the frame driver snapshots.
type KeyState struct {
	mu     sync.Mutex
	held   map[string]bool
	edges  map[string]bool // Keys pressed since the last Snapshot
	lookDX float64
	lookDY float64
	quit   bool
}

// NewKeyState returns an empty tracker.
func NewKeyState() *KeyState {
	return &KeyState{
		held:  make(map[string]bool),
		edges: make(map[string]bool),
	}
}

// normalizeKey maps browser KeyboardEvent.key values onto the terminal layout.
func normalizeKey(key string) string {
	switch key {
	case " ", "Spacebar":
		return "space"
	case "ArrowLeft":
		return "j"
	case "ArrowRight":
		return "l"
	case "ArrowUp":
		return "i"
	case "ArrowDown":
		return "k"
	case "Enter":
		return "enter"
	case "Escape":
		return "p"
	}
	return strings.ToLower(key)
}

// Down records a key press.
func (k *KeyState) Down(key string) {
	key = normalizeKey(key)
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.held[key] {
		k.edges[key] = true
	}
	k.held[key] = true
}

// Up records a key release.
func (k *KeyState) Up(key string) {
	key = normalizeKey(key)
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.held, key)
}

// Look accumulates a pointer movement.
func (k *KeyState) Look(dx, dy float64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.lookDX += dx
	k.lookDY += dy
}

// Close marks the source as finished; the next Snapshot reports Quit.
func (k *KeyState) Close() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.quit = true
}

// Snapshot returns the Input for this tick and clears the discrete events
// and pointer delta.
func (k *KeyState) Snapshot() Input {
	k.mu.Lock()
	defer k.mu.Unlock()

	in := Input{
		Quit:      k.quit || k.edges["q"],
		Pause:     k.edges["p"],
		Start:     k.edges["enter"],
		Forward:   k.held["w"],
		Back:      k.held["s"],
		Left:      k.held["a"],
		Right:     k.held["d"],
		Ascend:    k.held["r"],
		Descend:   k.held["f"],
		Fire:      k.held["space"] || k.held["mouse0"],
		LookLeft:  k.held["j"],
		LookRight: k.held["l"],
		LookUp:    k.held["i"],
		LookDown:  k.held["k"],
		LookDX:    k.lookDX,
		LookDY:    k.lookDY,
	}

	clear(k.edges)
	k.lookDX, k.lookDY = 0, 0
	return in
}
