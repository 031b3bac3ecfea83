// Package input turns raw terminal bytes into key and mouse state.
package input

import (
	"bufio"
	"io"
	"time"
)

// keyHoldDuration is how long a key is considered "held" after its last press.
// Terminals only report repeats, so held keys are inferred from recent presses.
const keyHoldDuration = 60 * time.Millisecond

// Mouse reporting: any-motion tracking with SGR extended coordinates.
const (
	mouseOn  = "\x1b[?1003h\x1b[?1006h"
	mouseOff = "\x1b[?1006l\x1b[?1003l"
)

// Input represents the current frame's input state.
type Input struct {
	Quit    bool
	Left    bool
	Right   bool
	Up      bool
	Down    bool
	Laser   bool
	Tractor bool
	Brake   bool

	// Taps: set only on the frame the key arrived.
	Enter  bool
	Escape bool
	Mine   bool
	Number int // Digit pressed this frame, -1 when none
	Scroll int // Zoom notches this frame, positive zooms in

	Mouse   Mouse
	Pressed []byte
	Closed  bool // The underlying reader hit EOF
}

// Mouse is the last reported pointer state. X and Y are 0-based terminal
// cells and only meaningful once Seen is set.
type Mouse struct {
	X, Y  int
	Seen  bool
	Left  bool
	Right bool
}

// Tapped reports whether any of keys arrived this frame.
func (in Input) Tapped(keys ...byte) bool {
	for _, b := range in.Pressed {
		for _, k := range keys {
			if b == k {
				return true
			}
		}
	}
	return false
}

// keyState tracks the last time each held key was pressed.
type keyState struct {
	quit    time.Time
	left    time.Time
	right   time.Time
	up      time.Time
	down    time.Time
	laser   time.Time
	tractor time.Time
	brake   time.Time
}

// Stream delivers input bytes via a channel and tracks key state for combinations.
type Stream struct {
	ch     chan byte
	state  keyState
	mouse  Mouse
	closed bool
}

func newStream() *Stream {
	return &Stream{ch: make(chan byte, 256)}
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := newStream()
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

// EnableMouse asks the terminal to report pointer motion and buttons.
func EnableMouse(w io.Writer) {
	io.WriteString(w, mouseOn)
}

// DisableMouse turns pointer reporting off again.
func DisableMouse(w io.Writer) {
	io.WriteString(w, mouseOff)
}

// ReadInput drains all available bytes from the stream (non-blocking).
func ReadInput(s *Stream) Input {
	var buf []byte
drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}
	return s.apply(buf, time.Now())
}

// Reset forgets every held key, so a key used to leave a screen does not
// leak into the next one.
func (s *Stream) Reset() {
	s.state = keyState{}
	s.mouse.Left = false
	s.mouse.Right = false
}

// apply parses buf, updates the held-key and mouse state and builds the
// frame's Input.
func (s *Stream) apply(buf []byte, now time.Time) Input {
	in := Input{Number: -1, Closed: s.closed}
	var pressed []byte

	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' && i+1 < len(buf) && buf[i+1] == '[' {
			if i+2 < len(buf) && buf[i+2] == '<' {
				n, ev, ok := parseSGRMouse(buf[i:])
				if n == 0 {
					break // Incomplete report, drop the tail
				}
				if ok {
					s.applyMouse(ev, &in)
				}
				i += n - 1
				continue
			}
			if i+2 < len(buf) {
				switch buf[i+2] {
				case 'A':
					s.state.up = now
				case 'B':
					s.state.down = now
				case 'C':
					s.state.right = now
				case 'D':
					s.state.left = now
				default:
					in.Escape = true
				}
				i += 2
				continue
			}
		}

		pressed = append(pressed, b)
		applyByte(&s.state, &in, b, now)
	}

	in.Quit = now.Sub(s.state.quit) < keyHoldDuration
	in.Left = now.Sub(s.state.left) < keyHoldDuration
	in.Right = now.Sub(s.state.right) < keyHoldDuration
	in.Up = now.Sub(s.state.up) < keyHoldDuration
	in.Down = now.Sub(s.state.down) < keyHoldDuration
	in.Laser = now.Sub(s.state.laser) < keyHoldDuration
	in.Tractor = now.Sub(s.state.tractor) < keyHoldDuration
	in.Brake = now.Sub(s.state.brake) < keyHoldDuration
	in.Mouse = s.mouse
	in.Pressed = pressed
	return in
}

// applyByte updates key state timestamps and taps for a single byte.
func applyByte(state *keyState, in *Input, b byte, now time.Time) {
	switch b {
	case 'q', 'Q', 0x03:
		state.quit = now
	case 'a', 'A', 'j', 'J':
		state.left = now
	case 'd', 'D', 'l', 'L':
		state.right = now
	case 'w', 'W', 'i', 'I':
		state.up = now
	case 's', 'S', 'k', 'K':
		state.down = now
	case ' ':
		state.laser = now
	case 't', 'T', 'f', 'F':
		state.tractor = now
	case 'x', 'X', 'b', 'B':
		state.brake = now
	case 'e', 'E', 'm', 'M':
		in.Mine = true
	case '+', '=':
		in.Scroll++
	case '-', '_':
		in.Scroll--
	case '\n', '\r':
		in.Enter = true
	case '\x1b':
		in.Escape = true
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		in.Number = int(b - '0')
	}
}

// mouseEvent is one decoded SGR report.
type mouseEvent struct {
	button  int // 0 left, 1 middle, 2 right
	x, y    int // 0-based cell
	motion  bool
	scroll  int // +1 wheel up, -1 wheel down
	release bool
}

func (s *Stream) applyMouse(ev mouseEvent, in *Input) {
	s.mouse.X, s.mouse.Y, s.mouse.Seen = ev.x, ev.y, true
	if ev.scroll != 0 {
		in.Scroll += ev.scroll
		return
	}
	if ev.motion {
		return
	}
	switch ev.button {
	case 0:
		s.mouse.Left = !ev.release
	case 2:
		s.mouse.Right = !ev.release
	}
}

// parseSGRMouse decodes ESC [ < Btn ; X ; Y (M|m) at the start of data. It
// returns the bytes consumed, or 0 when the report is incomplete.
func parseSGRMouse(data []byte) (int, mouseEvent, bool) {
	end := 3
	for end < len(data) && end < 32 && data[end] != 'M' && data[end] != 'm' {
		end++
	}
	if end >= len(data) || (data[end] != 'M' && data[end] != 'm') {
		if end >= 32 {
			return end, mouseEvent{}, false
		}
		return 0, mouseEvent{}, false
	}

	var params [3]int
	idx := 0
	for _, c := range data[3:end] {
		switch {
		case c >= '0' && c <= '9':
			params[idx] = params[idx]*10 + int(c-'0')
		case c == ';' && idx < 2:
			idx++
		default:
			return end + 1, mouseEvent{}, false
		}
	}
	if idx != 2 {
		return end + 1, mouseEvent{}, false
	}

	btn := params[0]
	ev := mouseEvent{
		button:  btn & 0x03,
		x:       params[1] - 1,
		y:       params[2] - 1,
		motion:  btn&32 != 0,
		release: data[end] == 'm',
	}
	if btn&64 != 0 {
		ev.scroll = 1
		if btn&0x03 == 1 {
			ev.scroll = -1
		}
	}
	return end + 1, ev, true
}
