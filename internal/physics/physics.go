// Package physics provides collision detection, distance and vector utilities.
package physics

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// Distance calculates the Euclidean distance between two points.
func Distance(p, q r2.Vec) float64 {
	return r2.Norm(r2.Sub(q, p))
}

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(p, q r2.Vec) float64 {
	return r2.Norm2(r2.Sub(q, p))
}

// PointInCircle checks if a point is within radius of a target position.
func PointInCircle(p, center r2.Vec, radius float64) bool {
	return DistanceSquared(p, center) <= radius*radius
}

// CirclesOverlap checks if two circles overlap.
func CirclesOverlap(p1 r2.Vec, rad1 float64, p2 r2.Vec, rad2 float64) bool {
	minDist := rad1 + rad2
	return DistanceSquared(p1, p2) < minDist*minDist
}

// Normalize returns the unit vector of v, or the zero vector when v has no length.
func Normalize(v r2.Vec) r2.Vec {
	n := r2.Norm(v)
	if n == 0 {
		return r2.Vec{}
	}
	return r2.Scale(1/n, v)
}

// FromAngle returns a vector of the given length pointing along angle.
func FromAngle(angle, length float64) r2.Vec {
	return r2.Vec{X: math.Cos(angle) * length, Y: math.Sin(angle) * length}
}

// Angle returns the heading of v in radians.
func Angle(v r2.Vec) float64 {
	return math.Atan2(v.Y, v.X)
}

// RotatePoint rotates p around center by angle radians.
func RotatePoint(p, center r2.Vec, angle float64) r2.Vec {
	return r2.Rotate(p, angle, center)
}

// AngleDiff returns the absolute smallest difference between two headings.
func AngleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 2*math.Pi)
	if d < -math.Pi {
		d += 2 * math.Pi
	} else if d > math.Pi {
		d -= 2 * math.Pi
	}
	return math.Abs(d)
}

// ClampSpeed rescales v to max if it is longer, keeping its direction.
func ClampSpeed(v r2.Vec, max float64) r2.Vec {
	speed := r2.Norm(v)
	if speed <= max || speed == 0 {
		return v
	}
	return r2.Scale(max/speed, v)
}

// RandRange returns a uniform value in [min, max).
func RandRange(rng *rand.Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}

// PolygonOffsets returns n per-vertex radius multipliers in [1-jag, 1+jag]
// for an irregular rock silhouette.
func PolygonOffsets(rng *rand.Rand, n int, jag float64) []float64 {
	if n < 3 {
		n = 3
	}
	offsets := make([]float64, n)
	for i := range offsets {
		offsets[i] = RandRange(rng, 1-jag, 1+jag)
	}
	return offsets
}
