package object

import "gonum.org/v1/gonum/spatial/r2"

// MineState is the phase of a planted charge.
type MineState int

const (
	MineArmed      MineState = iota // Counting down
	MinePucker                      // Final window, pulling objects inward
	MineDetonating                  // Exploded this frame, removed next pass
)

func (s MineState) String() string {
	switch s {
	case MineArmed:
		return "armed"
	case MinePucker:
		return "pucker"
	case MineDetonating:
		return "detonating"
	default:
		return "unknown"
	}
}

// Mine is a timed explosive charge. It does not move after being dropped.
type Mine struct {
	Pos        r2.Vec
	Timer      int // Frames until detonation
	State      MineState
	ArmedCueIn int // Frames until the armed cue plays; 0 once played
}

// NewMine creates an armed mine at pos.
func NewMine(pos r2.Vec, timer, armedCueDelay int) *Mine {
	return &Mine{
		Pos:        pos,
		Timer:      timer,
		State:      MineArmed,
		ArmedCueIn: armedCueDelay,
	}
}

// Advance counts the mine down one frame and reports the state it entered,
// if it changed. A detonating mine no longer advances.
func (m *Mine) Advance(puckerWindow int) (MineState, bool) {
	switch m.State {
	case MineDetonating:
		return m.State, false
	case MineArmed, MinePucker:
	}

	m.Timer--
	if m.Timer <= 0 {
		m.Timer = 0
		m.State = MineDetonating
		return m.State, true
	}
	if m.Timer <= puckerWindow && m.State == MineArmed {
		m.State = MinePucker
		return m.State, true
	}
	return m.State, false
}

// TickArmedCue counts down the delayed armed cue and reports when it fires.
func (m *Mine) TickArmedCue() bool {
	if m.ArmedCueIn <= 0 {
		return false
	}
	m.ArmedCueIn--
	return m.ArmedCueIn == 0
}
