// Package server hosts one independent mission per connected client and
// advances all of them from a single goroutine.
package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tomz197/lunardefender/internal/input"
	"github.com/tomz197/lunardefender/internal/logger"
	"github.com/tomz197/lunardefender/internal/loop"
	"github.com/tomz197/lunardefender/internal/loop/config"
)

// ErrShuttingDown is returned by RegisterClient once Shutdown has begun.
var ErrShuttingDown = errors.New("server shutting down")

// GameServer is the interface clients use to communicate with the game server.
// Decouples the Client from the concrete Server implementation, enabling
// testing and alternative front-ends.
type GameServer interface {
	RegisterClient(username string) (*ClientHandle, error)
	UnregisterClient(clientID int)
	SendInput(clientID int, in input.Input)
	Sessions() int
}

// Options configures the missions a server creates.
type Options struct {
	Tuning  config.Tuning
	Terrain loop.Terrain
	Clock   loop.Clock
	Logger  *zap.SugaredLogger

	// Presenter, if set, adds a presenter to each new session.
	Presenter func(h *ClientHandle) loop.Presenter
}

// Server manages per-client missions and processes inputs from all clients.
type Server struct {
	opts         Options
	log          *zap.SugaredLogger
	sessions     map[int]*session // Owned by the Run goroutine
	clients      map[int]*ClientHandle
	nextClientID int
	closing      bool
	inputChan    chan ClientInput
	registerCh   chan *session
	unregisterCh chan int
	departed     map[int]bool  // Unregistered before their session drained; owned by Run
	stopped      chan struct{} // Closed when Run returns
	mu           sync.RWMutex
}

// Compile-time check that Server implements GameServer.
var _ GameServer = (*Server)(nil)

// NewServer creates a new game server.
func NewServer(opts Options) *Server {
	if opts.Tuning == (config.Tuning{}) {
		opts.Tuning = config.Default()
	}
	if opts.Terrain == nil {
		opts.Terrain = loop.NewLunarTerrain()
	}
	if opts.Clock == nil {
		opts.Clock = loop.NewSystemClock()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Log
	}

	return &Server{
		opts:         opts,
		log:          opts.Logger,
		sessions:     make(map[int]*session),
		clients:      make(map[int]*ClientHandle),
		nextClientID: 1,
		inputChan:    make(chan ClientInput, 256),
		registerCh:   make(chan *session, 16),
		unregisterCh: make(chan int, 16),
		departed:     make(map[int]bool),
		stopped:      make(chan struct{}),
	}
}

// Run starts the server loop. Blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) {
	defer close(s.stopped)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		frameStart := time.Now()

		// Process registrations/unregistrations
		s.processRegistrations()

		// Collect all pending inputs
		s.collectInputs()

		// Advance every mission and publish snapshots
		s.tickSessions()

		// Frame timing
		elapsed := time.Since(frameStart)
		if elapsed < config.TargetFrameTime {
			time.Sleep(config.TargetFrameTime - elapsed)
		}
	}
}

// Shutdown gracefully shuts down the server by notifying all connected clients
// and waiting for them to disconnect (up to the given timeout).
// The caller should cancel the server context after Shutdown returns.
func (s *Server) Shutdown(timeout time.Duration) {
	s.mu.Lock()
	s.closing = true
	for _, handle := range s.clients {
		select {
		case handle.EventsCh <- ClientEvent{Type: EventServerShutdown}:
		default:
		}
	}
	s.mu.Unlock()

	// Wait for all clients to disconnect, or timeout
	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return
		case <-ticker.C:
			if s.Sessions() == 0 {
				return
			}
		}
	}
}

// RegisterClient creates a mission for a new client and returns its handle.
func (s *Server) RegisterClient(username string) (*ClientHandle, error) {
	select {
	case <-s.stopped:
		return nil, ErrShuttingDown
	default:
	}

	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return nil, ErrShuttingDown
	}
	id := s.nextClientID
	s.nextClientID++
	s.mu.Unlock()

	if len(username) > config.MaxUsernameLength {
		username = username[:config.MaxUsernameLength]
	}
	handle := &ClientHandle{
		ID:       id,
		Username: username,
		EventsCh: make(chan ClientEvent, 64),
	}

	presenters := loop.Presenters{eventPresenter{handle: handle}}
	if s.opts.Presenter != nil {
		if p := s.opts.Presenter(handle); p != nil {
			presenters = append(presenters, p)
		}
	}

	game, err := loop.NewGame(s.opts.Clock, s.opts.Terrain,
		loop.WithTuning(s.opts.Tuning),
		loop.WithPresenter(presenters),
		loop.WithLogger(s.log.With("client", id, "user", username)),
	)
	if err != nil {
		return nil, fmt.Errorf("register %q: %w", username, err)
	}
	handle.snapshot.Store(game.Snapshot())

	s.mu.Lock()
	s.clients[id] = handle
	s.mu.Unlock()

	select {
	case s.registerCh <- &session{handle: handle, game: game}:
	case <-s.stopped:
		s.mu.Lock()
		delete(s.clients, id)
		s.mu.Unlock()
		return nil, fmt.Errorf("register %q: %w", username, ErrShuttingDown)
	}
	s.log.Infow("client registered", "client", id, "user", username)
	return handle, nil
}

// UnregisterClient removes a client from the server. It returns at once
// when the server loop has already stopped.
func (s *Server) UnregisterClient(clientID int) {
	select {
	case s.unregisterCh <- clientID:
	case <-s.stopped:
	}
}

// SendInput sends input from a client to the server.
func (s *Server) SendInput(clientID int, in input.Input) {
	select {
	case s.inputChan <- ClientInput{ClientID: clientID, Input: in}:
	default:
		// Input channel full, drop input
	}
}

// Sessions returns the number of connected clients.
func (s *Server) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// processRegistrations handles pending client registrations/unregistrations.
// A removal can arrive before its registration has drained (the client
// registered after the register drain of this frame); it is remembered and
// applied when the session shows up.
func (s *Server) processRegistrations() {
drain:
	for {
		select {
		case sess := <-s.registerCh:
			s.addSession(sess)
		default:
			break drain
		}
	}

	for {
		select {
		case clientID := <-s.unregisterCh:
			if _, ok := s.sessions[clientID]; !ok {
				s.mu.RLock()
				_, pending := s.clients[clientID]
				s.mu.RUnlock()
				if pending {
					s.departed[clientID] = true
				}
				continue
			}
			s.removeSession(clientID)
		default:
			return
		}
	}
}

func (s *Server) addSession(sess *session) {
	id := sess.handle.ID
	s.sessions[id] = sess
	if s.departed[id] {
		delete(s.departed, id)
		s.removeSession(id)
	}
}

func (s *Server) removeSession(clientID int) {
	sess, ok := s.sessions[clientID]
	if !ok {
		return
	}
	delete(s.sessions, clientID)
	s.mu.Lock()
	delete(s.clients, clientID)
	s.mu.Unlock()
	close(sess.handle.EventsCh)

	sum := sess.game.Summary()
	s.log.Infow("client unregistered", "client", clientID, "score", sum.Score, "state", sess.game.State())
}

// collectInputs gathers all pending inputs from clients.
func (s *Server) collectInputs() {
	for {
		select {
		case ci := <-s.inputChan:
			if sess, ok := s.sessions[ci.ClientID]; ok {
				sess.input = sess.input.Merge(ci.Input)
			}
		default:
			return
		}
	}
}

// tickSessions advances each mission one step and publishes its snapshot.
func (s *Server) tickSessions() {
	for id, sess := range s.sessions {
		if !sess.halted {
			if err := sess.game.Tick(sess.input); err != nil {
				sess.halted = true
				s.log.Errorw("mission halted", "client", id, "error", err)
				select {
				case sess.handle.EventsCh <- ClientEvent{Type: EventHalted, Err: err}:
				default:
				}
			}
		}
		sess.input = sess.input.Held()
		sess.handle.snapshot.Store(sess.game.Snapshot())
	}
}
