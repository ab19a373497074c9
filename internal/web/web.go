// Package web serves missions to browsers over a websocket.
//
// Each connection registers one session with the game server. The browser
// sends key and pointer events; the server pushes a JSON snapshot every
// frame plus gameplay events as they happen.
package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tomz197/lunardefender/internal/input"
	"github.com/tomz197/lunardefender/internal/logger"
	"github.com/tomz197/lunardefender/internal/loop"
	"github.com/tomz197/lunardefender/internal/loop/server"
	"github.com/tomz197/lunardefender/internal/object"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4 << 10
	frameInterval  = time.Second / 30
)

// InputMessage is a browser control event.
//
//	{"type":"key","key":"w","down":true}
//	{"type":"look","dx":4,"dy":-1}
type InputMessage struct {
	Type string  `json:"type"`
	Key  string  `json:"key,omitempty"`
	Down bool    `json:"down,omitempty"`
	DX   float64 `json:"dx,omitempty"`
	DY   float64 `json:"dy,omitempty"`
}

// SnapshotMessage carries one rendered frame.
type SnapshotMessage struct {
	Type     string         `json:"type"` // "snapshot"
	Snapshot *loop.Snapshot `json:"snapshot"`
}

// EventMessage carries one gameplay event.
type EventMessage struct {
	Type    string        `json:"type"` // "event"
	Event   string        `json:"event"`
	Pos     *object.Vec3  `json:"pos,omitempty"`
	Amount  int           `json:"amount,omitempty"`
	Summary *loop.Summary `json:"summary,omitempty"`
	Error   string        `json:"error,omitempty"`
}

func eventMessage(ev server.ClientEvent) EventMessage {
	msg := EventMessage{Type: "event", Event: ev.Type.String()}
	switch ev.Type {
	case server.EventLaserFired, server.EventExplosion:
		pos := ev.Pos
		msg.Pos = &pos
	case server.EventScorePopup:
		pos := ev.Pos
		msg.Pos = &pos
		msg.Amount = ev.Amount
	case server.EventGameOver:
		sum := ev.Summary
		msg.Summary = &sum
	case server.EventHalted:
		if ev.Err != nil {
			msg.Error = ev.Err.Error()
		}
	}
	return msg
}

// applyMessage folds one inbound message into keys. Unknown messages are
// ignored.
func applyMessage(keys *input.KeyState, im InputMessage) {
	switch strings.ToLower(im.Type) {
	case "key":
		if im.Key == "" {
			return
		}
		if im.Down {
			keys.Down(im.Key)
		} else {
			keys.Up(im.Key)
		}
	case "look":
		keys.Look(im.DX, im.DY)
	}
}

// Handler upgrades requests to websocket sessions.
type Handler struct {
	server   server.GameServer
	log      *zap.SugaredLogger
	upgrader websocket.Upgrader
}

// NewHandler returns a handler registering sessions with gs.
// checkOrigin may be nil to accept every origin.
func NewHandler(gs server.GameServer, checkOrigin func(*http.Request) bool) *Handler {
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Handler{
		server: gs,
		log:    logger.Log.Named("web"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
	}
}

// ServeHTTP handles /ws?name=<pilot>.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "pilot"
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnw("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	handle, err := h.server.RegisterClient(name)
	if err != nil {
		h.log.Warnw("register failed", "remote", r.RemoteAddr, "error", err)
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(writeWait))
		_ = ws.Close()
		return
	}
	h.log.Infow("browser connected", "client", handle.ID, "user", handle.Username, "remote", r.RemoteAddr)

	c := &conn{
		ws:     ws,
		server: h.server,
		handle: handle,
		keys:   input.NewKeyState(),
		done:   make(chan struct{}),
		log:    h.log.With("client", handle.ID),
	}
	go c.writePump()
	go c.readPump()
}

// conn is one browser session.
type conn struct {
	ws     *websocket.Conn
	server server.GameServer
	handle *server.ClientHandle
	keys   *input.KeyState
	done   chan struct{} // Closed when the read side ends
	log    *zap.SugaredLogger
}

// readPump feeds browser messages into the key state until the socket
// closes.
func (c *conn) readPump() {
	defer close(c.done)
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debugw("read ended", "error", err)
			}
			return
		}
		var im InputMessage
		if err := json.Unmarshal(payload, &im); err != nil {
			continue
		}
		applyMessage(c.keys, im)
	}
}

// writePump is the only writer on the socket. Each frame it forwards the
// folded input to the server and pushes the latest snapshot; events are
// pushed as they arrive.
func (c *conn) writePump() {
	frames := time.NewTicker(frameInterval)
	pings := time.NewTicker(pingPeriod)
	defer func() {
		frames.Stop()
		pings.Stop()
		c.server.UnregisterClient(c.handle.ID)
		_ = c.ws.Close()
		c.log.Infow("browser disconnected")
	}()

	var last *loop.Snapshot
	for {
		select {
		case <-c.done:
			return
		case ev, ok := <-c.handle.EventsCh:
			if !ok {
				_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.writeJSON(eventMessage(ev)); err != nil {
				return
			}
		case <-frames.C:
			in := c.keys.Snapshot()
			if in.Quit {
				return
			}
			c.server.SendInput(c.handle.ID, in)

			snap := c.handle.Snapshot()
			if snap == nil || snap == last {
				continue
			}
			if err := c.writeJSON(SnapshotMessage{Type: "snapshot", Snapshot: snap}); err != nil {
				return
			}
			last = snap
		case <-pings.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *conn) write(messageType int, data []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(messageType, data)
}

func (c *conn) writeJSON(v any) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(v)
}
