package input

import (
	"testing"
	"time"
)

func TestHeldKeysExpire(t *testing.T) {
	s := newStream()
	now := time.Now()

	in := s.apply([]byte("w d"), now)
	if !in.Up || !in.Right || !in.Laser {
		t.Fatalf("held keys missing: %+v", in)
	}
	if in.Left || in.Down {
		t.Errorf("unexpected keys: %+v", in)
	}

	in = s.apply(nil, now.Add(keyHoldDuration/2))
	if !in.Up {
		t.Errorf("key released before hold duration")
	}
	in = s.apply(nil, now.Add(2*keyHoldDuration))
	if in.Up || in.Laser {
		t.Errorf("key still held after hold duration")
	}
}

func TestArrowKeys(t *testing.T) {
	s := newStream()
	in := s.apply([]byte("\x1b[A\x1b[D"), time.Now())
	if !in.Up || !in.Left {
		t.Errorf("arrows not decoded: %+v", in)
	}
	if in.Escape {
		t.Errorf("arrow sequence reported as escape")
	}
	if len(in.Pressed) != 0 {
		t.Errorf("arrow bytes leaked into Pressed: %q", in.Pressed)
	}
}

func TestTapsLastOneFrame(t *testing.T) {
	s := newStream()
	now := time.Now()

	in := s.apply([]byte("e7\r+"), now)
	if !in.Mine || in.Number != 7 || !in.Enter || in.Scroll != 1 {
		t.Fatalf("taps = %+v", in)
	}
	in = s.apply(nil, now)
	if in.Mine || in.Number != -1 || in.Enter || in.Scroll != 0 {
		t.Errorf("taps repeated: %+v", in)
	}
}

func TestTapped(t *testing.T) {
	in := Input{Pressed: []byte("ab ")}
	if !in.Tapped(' ') || !in.Tapped('z', 'a') {
		t.Errorf("Tapped missed a key")
	}
	if in.Tapped('q') {
		t.Errorf("Tapped reported a missing key")
	}
}

func TestMouseReports(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantX     int
		wantY     int
		wantLeft  bool
		wantRight bool
		scroll    int
	}{
		{"left press", "\x1b[<0;10;5M", 9, 4, true, false, 0},
		{"right press", "\x1b[<2;3;4M", 2, 3, false, true, 0},
		{"motion", "\x1b[<35;20;8M", 19, 7, false, false, 0},
		{"wheel up", "\x1b[<64;1;1M", 0, 0, false, false, 1},
		{"wheel down", "\x1b[<65;1;1M", 0, 0, false, false, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStream()
			in := s.apply([]byte(tt.data), time.Now())
			m := in.Mouse
			if !m.Seen || m.X != tt.wantX || m.Y != tt.wantY {
				t.Errorf("position = (%d,%d) seen=%v, want (%d,%d)", m.X, m.Y, m.Seen, tt.wantX, tt.wantY)
			}
			if m.Left != tt.wantLeft || m.Right != tt.wantRight {
				t.Errorf("buttons = %v/%v, want %v/%v", m.Left, m.Right, tt.wantLeft, tt.wantRight)
			}
			if in.Scroll != tt.scroll {
				t.Errorf("scroll = %d, want %d", in.Scroll, tt.scroll)
			}
			if len(in.Pressed) != 0 {
				t.Errorf("mouse bytes leaked into Pressed: %q", in.Pressed)
			}
		})
	}
}

func TestMouseButtonHeldUntilRelease(t *testing.T) {
	s := newStream()
	now := time.Now()
	s.apply([]byte("\x1b[<0;5;5M"), now)

	in := s.apply(nil, now.Add(time.Second))
	if !in.Mouse.Left {
		t.Fatalf("left button dropped without a release")
	}
	in = s.apply([]byte("\x1b[<0;6;5m"), now.Add(time.Second))
	if in.Mouse.Left {
		t.Errorf("left button still held after release")
	}
}

func TestIncompleteMouseReportDropped(t *testing.T) {
	s := newStream()
	in := s.apply([]byte("w\x1b[<0;1"), time.Now())
	if !in.Up {
		t.Errorf("bytes before the partial report lost")
	}
	if in.Mouse.Seen {
		t.Errorf("partial report decoded")
	}
}

func TestReset(t *testing.T) {
	s := newStream()
	now := time.Now()
	s.apply([]byte(" \x1b[<2;1;1M"), now)
	s.Reset()
	in := s.apply(nil, now)
	if in.Laser || in.Mouse.Right {
		t.Errorf("state kept after reset: %+v", in)
	}
}
