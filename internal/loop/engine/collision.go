package engine

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tomz197/voidminer/internal/object"
	"github.com/tomz197/voidminer/internal/physics"
)

// stepAsteroids drifts every asteroid and keeps rocks out of the station
// force field.
func stepAsteroids(ctx *tickContext) {
	damping := ctx.tun.Collision.AsteroidDamping
	for _, a := range ctx.world.Asteroids {
		if a.Dead {
			continue
		}
		a.Update(damping)
		if a.Tier != object.TierOre {
			repelFromStation(ctx, a)
		}
	}
}

// repelFromStation reflects an asteroid that entered the field back outside
// its edge and damps it.
func repelFromStation(ctx *tickContext, a *object.Asteroid) {
	st := ctx.tun.Station
	limit := st.FieldRadius + a.Radius
	dist := r2.Norm(a.Pos)
	if dist >= limit {
		return
	}
	n := physics.Normalize(a.Pos)
	if dist == 0 {
		n = r2.Vec{X: 1}
	}
	if vn := r2.Dot(a.Vel, n); vn < 0 {
		a.Vel = r2.Scale(st.FieldDamping, r2.Sub(a.Vel, r2.Scale(2*vn, n)))
	}
	a.Pos = r2.Scale(limit, n)
}

// resolveCollisions handles ship contact with every overlapping asteroid.
func resolveCollisions(ctx *tickContext) {
	ship := ctx.ship
	for _, a := range ctx.world.Asteroids {
		if a.Dead {
			continue
		}
		if !physics.CirclesOverlap(ship.Pos, ship.Radius, a.Pos, a.Radius) {
			continue
		}
		switch a.Tier {
		case object.TierOre:
			collectOre(ctx, a)
		case object.TierTitan, object.TierChunk, object.TierVolatile:
			impact(ctx, a)
		}
	}
}

// collectOre moves the ore into the cargo hold if there is room.
func collectOre(ctx *tickContext, a *object.Asteroid) {
	ship := ctx.ship
	if ship.Cargo >= ship.MaxCargo {
		return
	}
	ship.Cargo++
	a.Dead = true
	ctx.oreCollected++
	ctx.audio.Play(CuePickup)
}

// impact damages and bounces the ship off a rock. Volatile rocks always hit
// and detonate on contact.
func impact(ctx *tickContext, a *object.Asteroid) {
	ship := ctx.ship
	cfg := ctx.tun.Collision
	if ship.Invuln > 0 {
		return
	}
	rel := r2.Norm(r2.Sub(ship.Vel, a.Vel))
	if rel <= cfg.DamageSpeedThreshold && a.Tier != object.TierVolatile {
		return
	}

	if ship.Shield > 0 {
		ship.Shield = 0
	} else {
		ship.Hull -= object.TierSpec(ctx.tun.Tiers, a.Tier).CollisionDamage
	}
	ship.Invuln = cfg.Invuln

	away := physics.Normalize(r2.Sub(ship.Pos, a.Pos))
	if away.X == 0 && away.Y == 0 {
		away = r2.Scale(-1, ship.Forward())
	}
	ship.Push(r2.Scale(cfg.BounceImpulse, away))

	ctx.addShake(ctx.tun.Fragment.ChunkShake * 2)
	ctx.audio.Play(CueExplosionSmall)

	if a.Tier == object.TierVolatile {
		a.HP = 0
		destroy(ctx, a, ship.Vel)
	}
}

// stepParticles ages every particle and returns expired ones to the pool.
func stepParticles(ctx *tickContext) {
	kept := ctx.world.Particles[:0]
	for _, p := range ctx.world.Particles {
		if p.Update() {
			p.Release()
			continue
		}
		kept = append(kept, p)
	}
	clear(ctx.world.Particles[len(kept):])
	ctx.world.Particles = kept
}
