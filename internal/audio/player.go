// Package audio synthesises the game's cues and loops with beep. A Player
// implements engine.AudioSink and is itself a beep.Streamer, so it can be
// handed to the speaker or to any other sink.
package audio

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/tomz197/voidminer/internal/loop/engine"
)

// SampleRate is the output rate of every synthesised sound.
const SampleRate = beep.SampleRate(44100)

// Player mixes cues and loops. Safe for concurrent use.
type Player struct {
	mu     sync.Mutex
	rate   beep.SampleRate
	mixer  *beep.Mixer
	loops  [len(engine.Loops)]*beep.Ctrl
	volume float64
	muted  bool
}

// NewPlayer returns a Player at the given linear master volume.
func NewPlayer(volume float64) *Player {
	p := &Player{
		rate:   SampleRate,
		mixer:  &beep.Mixer{},
		volume: volume,
	}
	for _, l := range engine.Loops {
		ctrl := &beep.Ctrl{Streamer: gain(loopSound(l, p.rate), volume), Paused: true}
		p.loops[l] = ctrl
		p.mixer.Add(ctrl)
	}
	return p
}

// Play starts a one-shot cue.
func (p *Player) Play(c engine.Cue) {
	s := cueSound(c, p.rate)
	if s == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.muted {
		return
	}
	p.mixer.Add(gain(s, p.volume))
}

// SetLoop toggles a loop. Repeating the current state is a no-op.
func (p *Player) SetLoop(l engine.Loop, on bool) {
	if int(l) < 0 || int(l) >= len(p.loops) {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loops[l].Paused = !on || p.muted
}

// Looping reports whether l is currently audible.
func (p *Player) Looping(l engine.Loop) bool {
	if int(l) < 0 || int(l) >= len(p.loops) {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.loops[l].Paused
}

// SetMuted silences the player and drops pending one-shots.
func (p *Player) SetMuted(muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = muted
	if muted {
		p.mixer.Clear()
		for _, ctrl := range p.loops {
			ctrl.Paused = true
			p.mixer.Add(ctrl)
		}
	}
}

// Pending is the number of streamers in the mix, loops included.
func (p *Player) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mixer.Len()
}

// Stream implements beep.Streamer.
func (p *Player) Stream(samples [][2]float64) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mixer.Stream(samples)
}

// Err implements beep.Streamer.
func (p *Player) Err() error { return nil }

// Start opens the default output device and plays p on it.
func Start(p *Player, logger *log.Logger) error {
	if err := speaker.Init(p.rate, p.rate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(p)
	logger.Debug("audio started", "rate", int(p.rate))
	return nil
}

// Stop closes the output device.
func Stop() {
	speaker.Clear()
	speaker.Close()
}
