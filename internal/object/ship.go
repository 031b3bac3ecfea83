package object

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Ship is the player-controlled mining vessel.
type Ship struct {
	Pos, Vel r2.Vec
	Heading  float64 // Radians, 0 = +X, increases clockwise on screen
	Radius   float64

	Hull, MaxHull     float64
	Shield, MaxShield float64
	Cargo, MaxCargo   int
	Credits           int
	Ammo, MaxAmmo     int
	Invuln            int // Frames of invulnerability remaining

	// Control flags, derived every tick from input.
	Thrusting  bool
	Reversing  bool
	Braking    bool
	Firing     bool
	Tractoring bool
}

// Speed returns the magnitude of the ship's velocity.
func (s *Ship) Speed() float64 {
	return r2.Norm(s.Vel)
}

// Alive reports whether the hull is intact.
func (s *Ship) Alive() bool {
	return s.Hull > 0
}

// Forward returns the unit heading vector.
func (s *Ship) Forward() r2.Vec {
	return r2.Vec{X: math.Cos(s.Heading), Y: math.Sin(s.Heading)}
}

// Nose returns the world position of the ship's tip.
func (s *Ship) Nose() r2.Vec {
	return r2.Add(s.Pos, r2.Scale(s.Radius, s.Forward()))
}

// Tail returns the world position behind the ship where exhaust appears.
func (s *Ship) Tail() r2.Vec {
	return r2.Sub(s.Pos, r2.Scale(s.Radius*0.8, s.Forward()))
}

// Push adds an impulse to the ship's velocity.
func (s *Ship) Push(impulse r2.Vec) {
	s.Vel = r2.Add(s.Vel, impulse)
}

// TickTimers decrements per-frame timers, flooring at zero.
func (s *Ship) TickTimers() {
	if s.Invuln > 0 {
		s.Invuln--
	}
}

// ClampStats forces every resource into [0, max].
func (s *Ship) ClampStats() {
	s.Hull = math.Max(0, math.Min(s.Hull, s.MaxHull))
	s.Shield = math.Max(0, math.Min(s.Shield, s.MaxShield))
	s.Cargo = max(0, min(s.Cargo, s.MaxCargo))
	s.Ammo = max(0, min(s.Ammo, s.MaxAmmo))
	s.Credits = max(0, s.Credits)
	s.Invuln = max(0, s.Invuln)
}

// Outline returns the ship triangle in world space.
func (s *Ship) Outline() [3]r2.Vec {
	// Wings sit ~143° either side of the nose.
	const wing = 2.5
	left := s.Heading + wing
	right := s.Heading - wing
	return [3]r2.Vec{
		s.Nose(),
		r2.Add(s.Pos, r2.Vec{X: math.Cos(left) * s.Radius * 0.8, Y: math.Sin(left) * s.Radius * 0.8}),
		r2.Add(s.Pos, r2.Vec{X: math.Cos(right) * s.Radius * 0.8, Y: math.Sin(right) * s.Radius * 0.8}),
	}
}
