package engine

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tomz197/voidminer/internal/object"
	"github.com/tomz197/voidminer/internal/physics"
)

// findTarget returns the nearest mineable asteroid inside the laser cone, or
// nil. Ties keep the earlier asteroid.
func findTarget(origin r2.Vec, aim, laserRange, halfAngle float64, asteroids []*object.Asteroid) *object.Asteroid {
	var best *object.Asteroid
	bestDist := 0.0
	for _, a := range asteroids {
		if a.Dead || !a.Tier.Mineable() {
			continue
		}
		d := physics.Distance(origin, a.Pos)
		if d > laserRange+a.Radius {
			continue
		}
		if d > 0 && physics.AngleDiff(physics.Angle(r2.Sub(a.Pos, origin)), aim) > halfAngle {
			continue
		}
		if best == nil || d < bestDist {
			best, bestDist = a, d
		}
	}
	return best
}

// stepMining runs the mining laser and the tractor beam.
func stepMining(ctx *tickContext) {
	ship := ctx.ship
	ship.Firing = ctx.in.Primary
	ship.Tractoring = ctx.in.Secondary
	ctx.audio.SetLoop(LoopLaser, ship.Firing)
	ctx.audio.SetLoop(LoopTractor, ship.Tractoring)

	if ship.Firing {
		fireLaser(ctx)
	}
	if ship.Tractoring {
		pullOre(ctx)
	}
}

func fireLaser(ctx *tickContext) {
	ship := ctx.ship
	laser := ctx.tun.Laser
	aim := ctx.aimAngle()

	ctx.beam = Beam{Origin: ship.Pos, Angle: aim, Length: laser.Range, Active: true}

	target := findTarget(ship.Pos, aim, laser.Range, laser.HalfAngle, ctx.world.Asteroids)
	if target == nil {
		return
	}
	dist := physics.Distance(ship.Pos, target.Pos)
	ctx.beam.Length = max(0, dist-target.Radius)
	ctx.beam.OnRock = true

	if ctx.rng.Float64() < 0.3 {
		hit := r2.Add(ship.Pos, physics.FromAngle(aim, ctx.beam.Length))
		object.SpawnExplosion(ctx.rng, ctx.world, hit, 1, 1.5, 12, object.ColorSpark)
	}

	if target.Damage(laserDamageFor(laser, ctx.upgrades)) {
		destroy(ctx, target, target.Vel)
	}
}

// pullOre drags every ore inside the tractor radius toward the ship.
func pullOre(ctx *tickContext) {
	ship := ctx.ship
	tr := ctx.tun.Tractor
	for _, a := range ctx.world.Asteroids {
		if a.Dead || a.Tier != object.TierOre {
			continue
		}
		if !physics.PointInCircle(a.Pos, ship.Pos, tr.Radius) {
			continue
		}
		pull := r2.Scale(tr.Force, physics.Normalize(r2.Sub(ship.Pos, a.Pos)))
		jitter := r2.Vec{
			X: physics.RandRange(ctx.rng, -tr.Jitter, tr.Jitter),
			Y: physics.RandRange(ctx.rng, -tr.Jitter, tr.Jitter),
		}
		a.Push(r2.Add(pull, jitter))
	}
}
