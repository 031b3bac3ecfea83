package engine

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tomz197/voidminer/internal/object"
	"github.com/tomz197/voidminer/internal/physics"
)

// stepMines advances every mine once. A mine that detonated on the previous
// tick is purged first, so each blast is applied exactly once.
func stepMines(ctx *tickContext) {
	kept := ctx.world.Mines[:0]
	for _, m := range ctx.world.Mines {
		if m.State == object.MineDetonating {
			continue
		}
		if m.TickArmedCue() {
			ctx.audio.Play(CueMineArmed)
		}

		state, changed := m.Advance(ctx.tun.Mine.PuckerWindow)
		switch state {
		case object.MineArmed:
		case object.MinePucker:
			if changed {
				ctx.audio.Play(CueMinePucker)
			}
			pucker(ctx, m)
		case object.MineDetonating:
			detonate(ctx, m)
		}
		kept = append(kept, m)
	}
	clear(ctx.world.Mines[len(kept):])
	ctx.world.Mines = kept
}

// pucker pulls nearby asteroids and the ship toward the mine.
func pucker(ctx *tickContext, m *object.Mine) {
	cfg := ctx.tun.Mine
	reach := 1.5 * cfg.BlastRadius

	for _, a := range ctx.world.Asteroids {
		if a.Dead || !physics.PointInCircle(a.Pos, m.Pos, reach) {
			continue
		}
		a.Push(r2.Scale(cfg.PuckerForce, physics.Normalize(r2.Sub(m.Pos, a.Pos))))
	}
	ship := ctx.ship
	if physics.PointInCircle(ship.Pos, m.Pos, reach) {
		ship.Push(r2.Scale(cfg.PuckerForce/2, physics.Normalize(r2.Sub(m.Pos, ship.Pos))))
	}

	object.SpawnImplosion(ctx.rng, ctx.world, m.Pos, cfg.BlastRadius, 2)
}

// detonate applies the blast of m to everything inside the blast radius.
func detonate(ctx *tickContext, m *object.Mine) {
	cfg := ctx.tun.Mine
	ctx.audio.Play(CueExplosionLarge)
	ctx.addShake(cfg.Shake)
	object.SpawnExplosion(ctx.rng, ctx.world, m.Pos, 40, 6, 45, object.ColorSpark)

	for _, a := range ctx.world.Asteroids {
		if a.Dead {
			continue
		}
		falloff, dir, ok := blastFalloff(ctx, m.Pos, a.Pos, cfg.BlastRadius)
		if !ok {
			continue
		}
		impulse := r2.Scale(cfg.BlastImpulse*falloff, dir)
		a.Push(impulse)

		switch a.Tier {
		case object.TierTitan, object.TierVolatile:
			a.HP = 0
			destroy(ctx, a, impulse)
		case object.TierChunk:
			if a.Damage(cfg.BlastDamage) {
				destroy(ctx, a, impulse)
			}
		case object.TierOre:
		}
	}

	ship := ctx.ship
	falloff, dir, ok := blastFalloff(ctx, m.Pos, ship.Pos, cfg.BlastRadius)
	if !ok {
		return
	}
	ship.Push(r2.Scale(1.5*cfg.BlastImpulse*falloff, dir))
	if ship.Invuln > 0 {
		return
	}
	if ship.Shield > 0 {
		ship.Shield = 0
		ship.Invuln = cfg.ShieldInvuln
	} else {
		ship.Hull -= cfg.BlastShipDamage * falloff
		ship.Invuln = cfg.HullInvuln
	}
}

// blastFalloff returns 1 - d/radius and the outward direction for a point
// strictly inside the blast. A point on the centre gets a random direction.
func blastFalloff(ctx *tickContext, center, p r2.Vec, radius float64) (float64, r2.Vec, bool) {
	d := physics.Distance(center, p)
	if d >= radius {
		return 0, r2.Vec{}, false
	}
	dir := physics.Normalize(r2.Sub(p, center))
	if d == 0 {
		dir = physics.FromAngle(ctx.rng.Float64()*2*math.Pi, 1)
	}
	return 1 - d/radius, dir, true
}
