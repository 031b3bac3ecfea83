// Package engine is the per-frame simulation core. It owns the ship, asteroid,
// mine and particle collections and advances them one fixed step per Tick.
// Collaborators read state through Snapshot and act through the named entry
// points (DropMine, Undock, shop actions, ...).
package engine

import (
	"io"
	"math"
	"math/rand"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tomz197/voidminer/internal/config"
	"github.com/tomz197/voidminer/internal/object"
)

// Options configures a new Engine. Every field is optional.
type Options struct {
	Tuning       *config.Tuning
	Seed         int64
	Audio        AudioSink
	OnTransition func(Transition)
	Logger       *log.Logger
}

// Engine advances the simulation. It is not safe for concurrent use.
type Engine struct {
	tun          *config.Tuning
	rng          *rand.Rand
	audio        AudioSink
	onTransition func(Transition)
	logger       *log.Logger

	phase  Phase
	sector int
	tick   uint64

	world    World
	upgrades Upgrades
	camera   object.Camera
	view     r2.Vec
	beam     Beam
	shake    float64

	initialSources int
	oreCollected   int
	clearedSector  int  // Last sector that emitted a cleared transition
	dockArmed      bool // Set once the ship has left the station radius
	thrustFrames   int
}

// New creates an engine in the menu phase.
func New(opts Options) *Engine {
	tun := opts.Tuning
	if tun == nil {
		tun = config.Default()
	}
	audio := opts.Audio
	if audio == nil {
		audio = nopAudio{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	e := &Engine{
		tun:          tun,
		rng:          rand.New(rand.NewSource(opts.Seed)),
		audio:        audio,
		onTransition: opts.OnTransition,
		logger:       logger,
		phase:        PhaseMenu,
		sector:       1,
		camera:       object.Camera{Zoom: 1},
		view:         r2.Vec{X: tun.Camera.ViewWidth, Y: tun.Camera.ViewHeight},
	}
	e.newRun()
	return e
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	return e.phase
}

// Sector returns the current sector number, starting at 1.
func (e *Engine) Sector() int {
	return e.sector
}

// Tuning returns the tuning the engine runs with.
func (e *Engine) Tuning() *config.Tuning {
	return e.tun
}

// SetView sets the viewport size in world units at zoom 1.
func (e *Engine) SetView(w, h float64) {
	if w <= 0 || h <= 0 {
		return
	}
	e.view = r2.Vec{X: w, Y: h}
	e.camera.Follow(e.world.Ship.Pos, e.view)
}

// Tick advances the simulation by one frame.
func (e *Engine) Tick(in Input) {
	e.tick++
	if e.phase != PhasePlaying {
		e.idle()
		return
	}

	ctx := e.newContext(in)
	ctx.ship.TickTimers()

	stepControl(ctx)
	stepMining(ctx)
	stepMines(ctx)
	stepAsteroids(ctx)
	resolveCollisions(ctx)
	stepParticles(ctx)

	e.world.flush()
	e.regenShield()
	e.world.Ship.ClampStats()

	e.beam = ctx.beam
	e.oreCollected += ctx.oreCollected
	e.shake = math.Max(e.shake, ctx.shake)

	e.checkPhase()
	e.decayShake()
}

// idle runs while the simulation is paused: particles fade and loops stop.
func (e *Engine) idle() {
	for _, l := range Loops {
		e.audio.SetLoop(l, false)
	}
	e.beam = Beam{}
	ctx := e.newContext(Input{})
	stepParticles(ctx)
	e.world.flush()
	e.decayShake()
}

func (e *Engine) regenShield() {
	ship := e.world.Ship
	if ship.Invuln == 0 && ship.Shield < ship.MaxShield {
		ship.Shield += e.tun.Ship.ShieldRegen
	}
}

func (e *Engine) decayShake() {
	e.shake *= e.tun.Camera.ShakeDecay
	if e.shake < 0.1 {
		e.shake = 0
	}
}

// DropMine plants a mine at the ship's position.
func (e *Engine) DropMine() error {
	if e.phase != PhasePlaying {
		return e.decline(ErrWrongPhase)
	}
	ship := e.world.Ship
	if ship.Ammo <= 0 {
		return e.decline(ErrNoAmmo)
	}

	ship.Ammo--
	m := object.NewMine(ship.Pos, e.tun.Mine.Timer, e.tun.Mine.ArmedCueDelay)
	if m.ArmedCueIn <= 0 {
		e.audio.Play(CueMineArmed)
	}
	e.world.Mines = append(e.world.Mines, m)
	return nil
}

// Start begins a new run from the menu.
func (e *Engine) Start() error {
	if e.phase != PhaseMenu {
		return e.decline(ErrWrongPhase)
	}
	e.newRun()
	e.seedSector()
	e.transition(PhasePlaying, Stats{})
	return nil
}

// Restart begins a new run after game over.
func (e *Engine) Restart() error {
	if e.phase != PhaseGameOver {
		return e.decline(ErrWrongPhase)
	}
	e.newRun()
	e.seedSector()
	e.transition(PhasePlaying, Stats{})
	return nil
}

// ToMenu returns to the menu after game over.
func (e *Engine) ToMenu() error {
	if e.phase != PhaseGameOver {
		return e.decline(ErrWrongPhase)
	}
	e.transition(PhaseMenu, Stats{})
	return nil
}

// Undock launches the ship from the station without re-seeding the sector.
func (e *Engine) Undock() error {
	if e.phase != PhaseDocked {
		return e.decline(ErrWrongPhase)
	}
	ship := e.world.Ship
	ship.Vel = r2.Scale(e.tun.Ship.LaunchSpeed, ship.Forward())
	e.dockArmed = false
	e.transition(PhasePlaying, Stats{})
	return nil
}

// AdvanceSector moves on to the next, harder sector.
func (e *Engine) AdvanceSector() error {
	if e.phase != PhaseSectorCleared {
		return e.decline(ErrWrongPhase)
	}
	e.sector++
	e.seedSector()
	e.transition(PhasePlaying, Stats{})
	return nil
}

// Snapshot returns a copy of the state for rendering.
func (e *Engine) Snapshot() Snapshot {
	w := &e.world
	snap := Snapshot{
		Tick:           e.tick,
		Phase:          e.phase,
		Sector:         e.sector,
		Ship:           *w.Ship,
		Asteroids:      make([]object.Asteroid, 0, len(w.Asteroids)),
		Mines:          make([]object.Mine, 0, len(w.Mines)),
		Particles:      make([]object.Particle, 0, len(w.Particles)),
		Camera:         e.camera,
		View:           e.view,
		Beam:           e.beam,
		Shake:          e.shake,
		Upgrades:       e.upgrades,
		Progress:       e.stats(),
		Sources:        w.Sources(),
		InitialSources: e.initialSources,
	}
	for _, a := range w.Asteroids {
		snap.Asteroids = append(snap.Asteroids, *a)
	}
	for _, m := range w.Mines {
		snap.Mines = append(snap.Mines, *m)
	}
	for _, p := range w.Particles {
		snap.Particles = append(snap.Particles, *p)
	}
	return snap
}

// PlayCue forwards a UI cue to the audio sink.
func (e *Engine) PlayCue(c Cue) {
	e.audio.Play(c)
}
