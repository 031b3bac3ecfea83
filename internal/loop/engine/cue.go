package engine

// Cue is a one-shot sound request.
type Cue int

const (
	CuePickup Cue = iota
	CueExplosionSmall
	CueExplosionLarge
	CueMineArmed
	CueMinePucker
	CueClick
	CueBuy
	CueError
	CueHover
)

// Cues lists every cue in declaration order.
var Cues = [...]Cue{
	CuePickup, CueExplosionSmall, CueExplosionLarge, CueMineArmed,
	CueMinePucker, CueClick, CueBuy, CueError, CueHover,
}

func (c Cue) String() string {
	switch c {
	case CuePickup:
		return "pickup"
	case CueExplosionSmall:
		return "explosion-small"
	case CueExplosionLarge:
		return "explosion-large"
	case CueMineArmed:
		return "mine-armed"
	case CueMinePucker:
		return "mine-pucker"
	case CueClick:
		return "click"
	case CueBuy:
		return "buy"
	case CueError:
		return "error"
	case CueHover:
		return "hover"
	default:
		return "unknown"
	}
}

// Loop is a continuous sound toggled on or off every tick.
type Loop int

const (
	LoopThrust Loop = iota
	LoopLaser
	LoopTractor
)

// Loops lists every loop in declaration order.
var Loops = [...]Loop{LoopThrust, LoopLaser, LoopTractor}

func (l Loop) String() string {
	switch l {
	case LoopThrust:
		return "thrust"
	case LoopLaser:
		return "laser"
	case LoopTractor:
		return "tractor"
	default:
		return "unknown"
	}
}

// AudioSink receives sound requests from the simulation. SetLoop is called
// every tick and must be idempotent.
type AudioSink interface {
	Play(c Cue)
	SetLoop(l Loop, on bool)
}

type nopAudio struct{}

func (nopAudio) Play(Cue)           {}
func (nopAudio) SetLoop(Loop, bool) {}
