package object

import (
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tomz197/voidminer/internal/physics"
)

// particlePool is a sync.Pool for reusing Particle objects to reduce allocations.
var particlePool = sync.Pool{
	New: func() any {
		return &Particle{}
	},
}

// Particle colours.
const (
	ColorSpark   = "#ffd166"
	ColorExhaust = "#7fdbff"
	ColorPucker  = "#c77dff"
	ColorDebris  = "#b0a8a0"
)

// Particle is a short-lived visual effect. It never collides.
type Particle struct {
	Pos, Vel r2.Vec
	Radius   float64
	Color    string
	Life     int // Frames remaining
	MaxLife  int
	Drag     float64 // Velocity multiplier per frame
}

// ParticleSink accepts newly created particles.
type ParticleSink interface {
	AddParticle(p *Particle)
}

// NewParticle creates a single particle from the pool.
func NewParticle(pos, vel r2.Vec, life int, radius float64, color string) *Particle {
	p := particlePool.Get().(*Particle)
	p.Pos = pos
	p.Vel = vel
	p.Radius = radius
	p.Color = color
	p.Life = life
	p.MaxLife = life
	p.Drag = 0.96
	return p
}

// Release returns the particle to the pool for reuse.
// Should be called when the particle is removed from the game.
func (p *Particle) Release() {
	particlePool.Put(p)
}

// Update moves the particle and reports whether its life is over.
func (p *Particle) Update() bool {
	p.Life--
	if p.Life <= 0 {
		return true
	}
	p.Vel = r2.Scale(p.Drag, p.Vel)
	p.Pos = r2.Add(p.Pos, p.Vel)
	return false
}

// Alpha is the remaining life fraction, fading linearly from 1 to 0.
func (p *Particle) Alpha() float64 {
	if p.MaxLife <= 0 {
		return 0
	}
	return float64(p.Life) / float64(p.MaxLife)
}

// SpawnExplosion creates particles in a circular burst pattern.
func SpawnExplosion(rng *rand.Rand, sink ParticleSink, pos r2.Vec, count int, speed float64, life int, color string) {
	if sink == nil {
		return
	}
	for i := 0; i < count; i++ {
		angle := rng.Float64() * 2 * math.Pi
		// 50% to 150% speed, 50% to 100% lifetime
		spd := speed * (0.5 + rng.Float64())
		l := max(1, int(float64(life)*(0.5+rng.Float64()*0.5)))
		sink.AddParticle(NewParticle(pos, physics.FromAngle(angle, spd), l, 1.5, color))
	}
}

// SpawnThrust creates exhaust particles behind a thrusting ship.
func SpawnThrust(rng *rand.Rand, sink ParticleSink, pos r2.Vec, heading float64) {
	if sink == nil {
		return
	}
	count := 1 + rng.Intn(2)
	for i := 0; i < count; i++ {
		// Opposite direction of ship facing, with spread
		angle := heading + math.Pi + (rng.Float64()-0.5)*0.5
		speed := 2 + rng.Float64()
		life := 10 + rng.Intn(10)
		p := NewParticle(pos, physics.FromAngle(angle, speed), life, 1, ColorExhaust)
		p.Drag = 0.85
		sink.AddParticle(p)
	}
}

// SpawnImplosion creates particles on a ring that converge on center.
func SpawnImplosion(rng *rand.Rand, sink ParticleSink, center r2.Vec, radius float64, count int) {
	if sink == nil {
		return
	}
	const life = 20
	for i := 0; i < count; i++ {
		angle := rng.Float64() * 2 * math.Pi
		dist := radius * (0.5 + rng.Float64()*0.5)
		start := r2.Add(center, physics.FromAngle(angle, dist))
		// Reaches the centre in roughly its lifetime.
		vel := physics.FromAngle(angle+math.Pi, dist/life)
		p := NewParticle(start, vel, life, 1, ColorPucker)
		p.Drag = 1
		sink.AddParticle(p)
	}
}
