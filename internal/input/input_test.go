package input

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func feed(s *Stream, bytes string) {
	for i := 0; i < len(bytes); i++ {
		s.ch <- bytes[i]
	}
}

func TestReadInputHeldKeys(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	s := newStream(clk.now)

	feed(s, "wd ")
	in := ReadInput(s)
	if !in.Forward || !in.Right || !in.Fire {
		t.Fatalf("got %+v, want Forward, Right and Fire held", in)
	}
	if in.Back || in.Left || in.Ascend {
		t.Fatalf("unexpected held keys in %+v", in)
	}

	// Still held inside the hold window without new bytes.
	clk.t = clk.t.Add(keyHoldDuration / 2)
	if in := ReadInput(s); !in.Forward {
		t.Fatal("Forward released inside hold window")
	}

	clk.t = clk.t.Add(keyHoldDuration)
	if in := ReadInput(s); in.Forward || in.Fire {
		t.Fatalf("keys still held after hold window: %+v", in)
	}
}

func TestReadInputArrowKeysLook(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	s := newStream(clk.now)

	feed(s, "\x1b[A\x1b[D")
	in := ReadInput(s)
	if !in.LookUp || !in.LookLeft {
		t.Fatalf("got %+v, want LookUp and LookLeft", in)
	}
	if in.Pause {
		t.Fatal("escape sequence should not register as a command")
	}
}

func TestReadInputDiscreteCommands(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	s := newStream(clk.now)

	feed(s, "p\r")
	in := ReadInput(s)
	if !in.Pause || !in.Start {
		t.Fatalf("got %+v, want Pause and Start", in)
	}

	if in := ReadInput(s); in.Pause || in.Start {
		t.Fatalf("discrete commands repeated without new bytes: %+v", in)
	}
}

func TestReadInputClosedStreamQuits(t *testing.T) {
	s := newStream(time.Now)
	close(s.ch)
	if in := ReadInput(s); !in.Quit {
		t.Fatal("closed stream did not report Quit")
	}
}

func TestKeyStateSnapshot(t *testing.T) {
	k := NewKeyState()
	k.Down("W")
	k.Down(" ")
	k.Down("Enter")
	k.Look(3, -2)
	k.Look(1, 0)

	in := k.Snapshot()
	if !in.Forward || !in.Fire || !in.Start {
		t.Fatalf("got %+v, want Forward, Fire and Start", in)
	}
	if in.LookDX != 4 || in.LookDY != -2 {
		t.Fatalf("look delta = (%v, %v), want (4, -2)", in.LookDX, in.LookDY)
	}

	in = k.Snapshot()
	if in.Start || in.LookDX != 0 {
		t.Fatalf("edges not cleared: %+v", in)
	}
	if !in.Forward {
		t.Fatal("held key dropped between snapshots")
	}

	k.Up("w")
	if in := k.Snapshot(); in.Forward {
		t.Fatal("released key still held")
	}
}

func TestKeyStateRepeatDoesNotRetrigger(t *testing.T) {
	k := NewKeyState()
	k.Down("p")
	if in := k.Snapshot(); !in.Pause {
		t.Fatal("first press did not register")
	}
	k.Down("p") // auto-repeat while held
	if in := k.Snapshot(); in.Pause {
		t.Fatal("auto-repeat retriggered a discrete command")
	}
}

func TestKeyStateClose(t *testing.T) {
	k := NewKeyState()
	k.Close()
	if in := k.Snapshot(); !in.Quit {
		t.Fatal("closed key state did not report Quit")
	}
}

func TestMergeKeepsDiscreteCommands(t *testing.T) {
	first := Input{Start: true, Forward: true, LookDX: 2, Pressed: []byte("w")}
	second := Input{Fire: true, LookDX: 3, LookDY: -1, Pressed: []byte(" ")}

	in := first.Merge(second)
	if !in.Start || !in.Fire {
		t.Fatalf("got %+v, want Start and Fire", in)
	}
	if in.Forward {
		t.Fatal("held key should follow the later reading")
	}
	if in.LookDX != 5 || in.LookDY != -1 {
		t.Fatalf("look delta = (%v, %v), want (5, -1)", in.LookDX, in.LookDY)
	}
	if string(in.Pressed) != "w " {
		t.Fatalf("pressed = %q, want %q", in.Pressed, "w ")
	}
	if string(first.Pressed) != "w" {
		t.Fatalf("merge mutated the receiver: %q", first.Pressed)
	}

	held := in.Held()
	if held.Start || held.LookDX != 0 || held.Pressed != nil {
		t.Fatalf("Held kept discrete state: %+v", held)
	}
	if !held.Fire {
		t.Fatal("Held dropped a held key")
	}
}
