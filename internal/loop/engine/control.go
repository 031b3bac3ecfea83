package engine

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tomz197/voidminer/internal/config"
	"github.com/tomz197/voidminer/internal/object"
	"github.com/tomz197/voidminer/internal/physics"
)

// tickContext carries the per-tick inputs, collaborators and accumulated
// outputs through the component steps.
type tickContext struct {
	in       Input
	tun      *config.Tuning
	rng      *rand.Rand
	audio    AudioSink
	world    *World
	ship     *object.Ship
	upgrades Upgrades
	camera   *object.Camera
	view     r2.Vec
	thrustN  *int

	// Outputs merged back into the engine after the pass.
	beam         Beam
	shake        float64
	oreCollected int
}

func (e *Engine) newContext(in Input) *tickContext {
	return &tickContext{
		in:       in,
		tun:      e.tun,
		rng:      e.rng,
		audio:    e.audio,
		world:    &e.world,
		ship:     e.world.Ship,
		upgrades: e.upgrades,
		camera:   &e.camera,
		view:     e.view,
		thrustN:  &e.thrustFrames,
	}
}

func (ctx *tickContext) addShake(amount float64) {
	ctx.shake = math.Max(ctx.shake, amount)
}

// aimAngle returns the direction the pointer points at relative to the view
// centre, or the ship heading when the pointer is centred.
func (ctx *tickContext) aimAngle() float64 {
	if ctx.in.Pointer.X == 0 && ctx.in.Pointer.Y == 0 {
		return ctx.ship.Heading
	}
	return physics.Angle(ctx.in.Pointer)
}

// stepControl applies input to the ship, integrates its motion and moves the
// camera.
func stepControl(ctx *tickContext) {
	ship := ctx.ship
	in := ctx.in
	s := ctx.tun.Ship
	cam := ctx.tun.Camera

	if in.Scroll != 0 {
		ctx.camera.Zoom = math.Max(cam.MinZoom, math.Min(cam.MaxZoom, ctx.camera.Zoom+cam.ZoomStep*in.Scroll))
	}

	rot := rotationFor(s, ctx.upgrades)
	if in.Left {
		ship.Heading -= rot
	}
	if in.Right {
		ship.Heading += rot
	}
	ship.Heading = math.Remainder(ship.Heading, 2*math.Pi)

	ship.Thrusting = in.Thrust
	ship.Reversing = in.Reverse && !in.Thrust
	ship.Braking = in.Brake

	accel := thrustFor(s, ctx.upgrades)
	switch {
	case ship.Thrusting:
		ship.Push(r2.Scale(accel, ship.Forward()))
	case ship.Reversing:
		ship.Push(r2.Scale(-accel/2, ship.Forward()))
	}
	if ship.Braking {
		ship.Vel = r2.Scale(s.BrakeFactor, ship.Vel)
		if ship.Speed() < s.BrakeSnap {
			ship.Vel = r2.Vec{}
		}
	}

	ship.Vel = r2.Scale(s.Friction, ship.Vel)
	ship.Vel = physics.ClampSpeed(ship.Vel, maxSpeedFor(s, ctx.upgrades))
	ship.Pos = r2.Add(ship.Pos, ship.Vel)

	engineOn := ship.Thrusting || ship.Reversing
	ctx.audio.SetLoop(LoopThrust, engineOn)
	if engineOn {
		*ctx.thrustN++
		if every := max(1, s.ThrustParticleEvery); *ctx.thrustN%every == 0 {
			heading := ship.Heading
			if ship.Reversing {
				heading += math.Pi
			}
			object.SpawnThrust(ctx.rng, ctx.world, ship.Tail(), heading)
		}
	} else {
		*ctx.thrustN = 0
	}

	ctx.camera.Follow(ship.Pos, ctx.view)
}
