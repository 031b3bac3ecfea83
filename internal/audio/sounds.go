package audio

import (
	"time"

	"github.com/gopxl/beep"

	"github.com/tomz197/voidminer/internal/loop/engine"
)

// cueSound synthesises the one-shot sound of c.
func cueSound(c engine.Cue, rate beep.SampleRate) beep.Streamer {
	switch c {
	case engine.CuePickup:
		return beep.Seq(
			note(WaveSquare, 988, 988, 50*time.Millisecond, rate),
			note(WaveSquare, 1319, 1319, 90*time.Millisecond, rate),
		)
	case engine.CueExplosionSmall:
		return beep.Mix(
			gain(note(WaveNoise, 1, 1, 180*time.Millisecond, rate), 0.6),
			gain(note(WaveSine, 120, 50, 180*time.Millisecond, rate), 0.5),
		)
	case engine.CueExplosionLarge:
		return beep.Mix(
			gain(note(WaveNoise, 1, 1, 600*time.Millisecond, rate), 0.8),
			gain(note(WaveSine, 80, 30, 600*time.Millisecond, rate), 0.7),
		)
	case engine.CueMineArmed:
		return beep.Seq(
			note(WaveSquare, 660, 660, 40*time.Millisecond, rate),
			note(WaveSquare, 880, 880, 40*time.Millisecond, rate),
		)
	case engine.CueMinePucker:
		return gain(note(WaveSaw, 200, 900, 900*time.Millisecond, rate), 0.5)
	case engine.CueClick:
		return gain(note(WaveSquare, 1200, 1200, 20*time.Millisecond, rate), 0.4)
	case engine.CueBuy:
		return beep.Seq(
			note(WaveSine, 523, 523, 60*time.Millisecond, rate),
			note(WaveSine, 659, 659, 60*time.Millisecond, rate),
			note(WaveSine, 784, 784, 120*time.Millisecond, rate),
		)
	case engine.CueError:
		return gain(note(WaveSaw, 110, 90, 150*time.Millisecond, rate), 0.6)
	case engine.CueHover:
		return gain(note(WaveSine, 1500, 1500, 15*time.Millisecond, rate), 0.25)
	default:
		return nil
	}
}

// loopSound is the endless streamer behind l.
func loopSound(l engine.Loop, rate beep.SampleRate) beep.Streamer {
	switch l {
	case engine.LoopThrust:
		return gain(Tone(WaveNoise, 1, 1, 0, rate), 0.15)
	case engine.LoopLaser:
		return beep.Mix(
			gain(Tone(WaveSaw, 440, 440, 0, rate), 0.12),
			gain(Tone(WaveSine, 447, 447, 0, rate), 0.12),
		)
	case engine.LoopTractor:
		return gain(Tone(WaveSine, 180, 180, 0, rate), 0.2)
	default:
		return nil
	}
}
