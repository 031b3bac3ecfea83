package object

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tomz197/voidminer/internal/config"
	"github.com/tomz197/voidminer/internal/physics"
)

// Asteroid is a destructible space rock.
type Asteroid struct {
	Pos, Vel r2.Vec
	Radius   float64
	Angle    float64 // Current rotation angle
	Spin     float64 // Radians per frame
	Color    string
	Tier     Tier
	HP       float64
	Shape    []float64 // Per-vertex radius multipliers, fixed at creation
	Dead     bool      // Marked for removal at the end of the tick
}

// NewAsteroid creates an asteroid of the given tier. Size, hit points and
// silhouette come from the tier table.
func NewAsteroid(rng *rand.Rand, tiers config.TierConfigs, tier Tier, pos, vel r2.Vec) *Asteroid {
	spec := TierSpec(tiers, tier)
	return &Asteroid{
		Pos:    pos,
		Vel:    vel,
		Radius: spec.Radius,
		Angle:  rng.Float64() * 2 * math.Pi,
		Spin:   physics.RandRange(rng, -0.02, 0.02),
		Color:  spec.Color,
		Tier:   tier,
		HP:     spec.HP,
		Shape:  physics.PolygonOffsets(rng, spec.Vertices, spec.Jaggedness),
	}
}

// Update drifts, spins and damps the asteroid.
func (a *Asteroid) Update(damping float64) {
	a.Angle += a.Spin
	a.Pos = r2.Add(a.Pos, a.Vel)
	a.Vel = r2.Scale(damping, a.Vel)
}

// Damage removes hit points and reports whether this hit destroyed the rock.
// Only the hit that crosses from positive to non-positive reports true.
func (a *Asteroid) Damage(amount float64) bool {
	if a.Dead || a.HP <= 0 {
		return false
	}
	a.HP -= amount
	return a.HP <= 0
}

// Push adds an impulse to the asteroid's velocity.
func (a *Asteroid) Push(impulse r2.Vec) {
	a.Vel = r2.Add(a.Vel, impulse)
}

// Outline returns the silhouette vertices in world space.
func (a *Asteroid) Outline() []r2.Vec {
	n := len(a.Shape)
	points := make([]r2.Vec, n)
	for i, mul := range a.Shape {
		vertAngle := a.Angle + float64(i)*2*math.Pi/float64(n)
		points[i] = r2.Add(a.Pos, physics.FromAngle(vertAngle, a.Radius*mul))
	}
	return points
}
