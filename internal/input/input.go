// Package input turns raw terminal bytes and browser key events into
// per-tick control state.
package input

import (
	"bufio"
	"time"
)

// keyHoldDuration is how long a key is considered "held" after its last press.
// Terminals only report repeats, never key-up, so holds are inferred.
const keyHoldDuration = 60 * time.Millisecond

// Input represents the current tick's control state.
// Movement, look and fire are held signals. Pause, Start and Quit are
// discrete: true only on the tick the key was pressed.
type Input struct {
	Quit  bool
	Pause bool
	Start bool

	Forward bool
	Back    bool
	Left    bool // Strafe
	Right   bool // Strafe
	Ascend  bool
	Descend bool
	Fire    bool

	LookLeft  bool
	LookRight bool
	LookUp    bool
	LookDown  bool

	// Pointer delta accumulated since the previous tick.
	LookDX float64
	LookDY float64

	Pressed []byte
}

// Thrusting reports whether vertical thrust is held.
func (in Input) Thrusting() bool {
	return in.Ascend || in.Descend
}

// Merge folds a later reading into in. Held keys follow next; discrete
// commands and pointer deltas accumulate so none are lost between ticks.
func (in Input) Merge(next Input) Input {
	merged := next
	merged.Quit = in.Quit || next.Quit
	merged.Pause = in.Pause || next.Pause
	merged.Start = in.Start || next.Start
	merged.LookDX = in.LookDX + next.LookDX
	merged.LookDY = in.LookDY + next.LookDY
	merged.Pressed = append(in.Pressed[:len(in.Pressed):len(in.Pressed)], next.Pressed...)
	return merged
}

// Held returns in with the discrete commands and pointer delta consumed.
func (in Input) Held() Input {
	in.Quit, in.Pause, in.Start = false, false, false
	in.LookDX, in.LookDY = 0, 0
	in.Pressed = nil
	return in
}

// keyState tracks the last time each held key was seen.
type keyState struct {
	forward   time.Time
	back      time.Time
	left      time.Time
	right     time.Time
	ascend    time.Time
	descend   time.Time
	fire      time.Time
	lookLeft  time.Time
	lookRight time.Time
	lookUp    time.Time
	lookDown  time.Time
}

// Stream delivers input bytes via a channel and tracks key state for combinations.
type Stream struct {
	ch    chan byte
	state keyState
	now   func() time.Time
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := newStream(time.Now)
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

func newStream(now func() time.Time) *Stream {
	return &Stream{
		ch:  make(chan byte, 128),
		now: now,
	}
}

// ReadInput drains all available bytes from the stream (non-blocking).
// Handles escape sequences for arrow keys and accumulates all pressed keys.
// A closed stream reports Quit.
func ReadInput(s *Stream) Input {
	now := s.now()
	var buf []byte
	closed := false

drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	return s.parse(buf, now, closed)
}

func (s *Stream) parse(buf []byte, now time.Time, closed bool) Input {
	in := Input{Quit: closed, Pressed: buf}

	for i := 0; i < len(buf); i++ {
		b := buf[i]

		// CSI sequence: ESC [ <code>
		if b == '\x1b' && i+2 < len(buf) && buf[i+1] == '[' {
			switch buf[i+2] {
			case 'A':
				s.state.lookUp = now
			case 'B':
				s.state.lookDown = now
			case 'C':
				s.state.lookRight = now
			case 'D':
				s.state.lookLeft = now
			}
			i += 2
			continue
		}

		switch b {
		case 'q', 'Q', 0x03: // Ctrl+C arrives as a byte in raw mode
			in.Quit = true
		case 'p', 'P':
			in.Pause = true
		case '\n', '\r':
			in.Start = true
		default:
			applyByteToState(&s.state, b, now)
		}
	}

	held := func(t time.Time) bool { return now.Sub(t) < keyHoldDuration }
	in.Forward = held(s.state.forward)
	in.Back = held(s.state.back)
	in.Left = held(s.state.left)
	in.Right = held(s.state.right)
	in.Ascend = held(s.state.ascend)
	in.Descend = held(s.state.descend)
	in.Fire = held(s.state.fire)
	in.LookLeft = held(s.state.lookLeft)
	in.LookRight = held(s.state.lookRight)
	in.LookUp = held(s.state.lookUp)
	in.LookDown = held(s.state.lookDown)
	return in
}

// applyByteToState updates the key state timestamps based on the pressed byte.
func applyByteToState(state *keyState, b byte, now time.Time) {
	switch b {
	case 'w', 'W':
		state.forward = now
	case 's', 'S':
		state.back = now
	case 'a', 'A':
		state.left = now
	case 'd', 'D':
		state.right = now
	case 'r', 'R':
		state.ascend = now
	case 'f', 'F':
		state.descend = now
	case ' ':
		state.fire = now
	case 'j', 'J':
		state.lookLeft = now
	case 'l', 'L':
		state.lookRight = now
	case 'i', 'I':
		state.lookUp = now
	case 'k', 'K':
		state.lookDown = now
	}
}
