package engine

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tomz197/voidminer/internal/object"
)

// Phase is the top-level game phase.
type Phase int

const (
	PhaseMenu          Phase = iota // Title screen
	PhasePlaying                    // Active simulation
	PhaseDocked                     // At the station, shop open
	PhaseSectorCleared              // Sector threshold reached
	PhaseGameOver                   // Hull destroyed
)

func (p Phase) String() string {
	switch p {
	case PhaseMenu:
		return "menu"
	case PhasePlaying:
		return "playing"
	case PhaseDocked:
		return "docked"
	case PhaseSectorCleared:
		return "sector-cleared"
	case PhaseGameOver:
		return "game-over"
	default:
		return "unknown"
	}
}

// Stats is the sector progress carried by a sector-cleared transition.
type Stats struct {
	PercentDestroyed int // 0-100
	OreCollected     int
}

// Transition describes a phase change.
type Transition struct {
	From, To Phase
	Sector   int
	Stats    Stats
}

// Input is the control set read once per tick.
type Input struct {
	Thrust  bool
	Reverse bool
	Left    bool
	Right   bool
	Brake   bool

	Primary   bool   // Mining laser
	Secondary bool   // Tractor beam
	Pointer   r2.Vec // Pointer offset from the viewport centre, in viewport units
	Scroll    float64
}

// Beam is the laser geometry exposed for rendering.
type Beam struct {
	Origin r2.Vec
	Angle  float64
	Length float64 // Clamped to the impact point when a target is hit
	Active bool
	OnRock bool // A target was hit this frame
}

// World holds the four entity collections. Spawns are queued and removals are
// marked during a pass, both applied by flush at the end of the tick.
type World struct {
	Ship      *object.Ship
	Asteroids []*object.Asteroid
	Mines     []*object.Mine
	Particles []*object.Particle

	toSpawn    []*object.Asteroid
	toParticle []*object.Particle
}

// SpawnAsteroid queues an asteroid to be added after the current pass.
func (w *World) SpawnAsteroid(a *object.Asteroid) {
	w.toSpawn = append(w.toSpawn, a)
}

// AddParticle queues a particle. Implements object.ParticleSink.
func (w *World) AddParticle(p *object.Particle) {
	w.toParticle = append(w.toParticle, p)
}

// flush drops dead asteroids and adds everything queued during the tick.
func (w *World) flush() {
	kept := w.Asteroids[:0]
	for _, a := range w.Asteroids {
		if !a.Dead {
			kept = append(kept, a)
		}
	}
	clear(w.Asteroids[len(kept):])
	w.Asteroids = append(kept, w.toSpawn...)
	clear(w.toSpawn)
	w.toSpawn = w.toSpawn[:0]

	w.Particles = append(w.Particles, w.toParticle...)
	clear(w.toParticle)
	w.toParticle = w.toParticle[:0]
}

// reset empties every collection except the ship.
func (w *World) reset() {
	for _, p := range w.Particles {
		p.Release()
	}
	for _, p := range w.toParticle {
		p.Release()
	}
	w.Asteroids = nil
	w.Mines = nil
	w.Particles = nil
	w.toSpawn = nil
	w.toParticle = nil
}

// Sources counts surviving titan and volatile asteroids.
func (w *World) Sources() int {
	n := 0
	for _, a := range w.Asteroids {
		if !a.Dead && a.Tier.Source() {
			n++
		}
	}
	return n
}

// Snapshot is a read-only copy of the state needed by renderers and HUDs.
type Snapshot struct {
	Tick      uint64
	Phase     Phase
	Sector    int
	Ship      object.Ship
	Asteroids []object.Asteroid
	Mines     []object.Mine
	Particles []object.Particle
	Camera    object.Camera
	View      r2.Vec
	Beam      Beam
	Shake     float64
	Upgrades  Upgrades

	Progress       Stats
	Sources        int
	InitialSources int
}
