package engine

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tomz197/voidminer/internal/object"
	"github.com/tomz197/voidminer/internal/physics"
)

// destroy marks a live asteroid dead and fragments it. Calling it on an
// already dead asteroid does nothing.
func destroy(ctx *tickContext, a *object.Asteroid, impact r2.Vec) {
	if a.Dead {
		return
	}
	a.Dead = true
	fragment(ctx, a, impact)
}

// fragment queues the children and effects of a destroyed asteroid.
func fragment(ctx *tickContext, a *object.Asteroid, impact r2.Vec) {
	cfg := ctx.tun.Fragment
	switch a.Tier {
	case object.TierTitan:
		spawnChildren(ctx, a, object.TierChunk, cfg.TitanChunks, cfg.RadialSpeed, impact)
		object.SpawnExplosion(ctx.rng, ctx.world, a.Pos, 24, 3, 40, object.ColorDebris)
		ctx.addShake(cfg.TitanShake)
		ctx.audio.Play(CueExplosionLarge)
	case object.TierVolatile:
		spawnChildren(ctx, a, object.TierChunk, cfg.VolatileChunks, cfg.VolatileShrapnelSpeed, impact)
		object.SpawnExplosion(ctx.rng, ctx.world, a.Pos, 48, 5, 50, object.ColorSpark)
		object.SpawnExplosion(ctx.rng, ctx.world, a.Pos, 16, 2, 40, a.Color)
		ctx.addShake(cfg.VolatileShake)
		ctx.audio.Play(CueExplosionLarge)
	case object.TierChunk:
		spawnChildren(ctx, a, object.TierOre, cfg.ChunkOre, cfg.RadialSpeed, impact)
		object.SpawnExplosion(ctx.rng, ctx.world, a.Pos, 12, 2, 30, object.ColorDebris)
		ctx.addShake(cfg.ChunkShake)
		ctx.audio.Play(CueExplosionSmall)
	case object.TierOre:
		object.SpawnExplosion(ctx.rng, ctx.world, a.Pos, 4, 1, 15, a.Color)
	}
}

// spawnChildren queues count asteroids of tier spread evenly around parent.
func spawnChildren(ctx *tickContext, parent *object.Asteroid, tier object.Tier, count int, radial float64, impact r2.Vec) {
	if count <= 0 {
		return
	}
	carry := r2.Scale(ctx.tun.Fragment.ImpactCarry, impact)
	base := ctx.rng.Float64() * 2 * math.Pi
	step := 2 * math.Pi / float64(count)
	for i := 0; i < count; i++ {
		angle := base + float64(i)*step + physics.RandRange(ctx.rng, -step/4, step/4)
		pos := r2.Add(parent.Pos, physics.FromAngle(angle, parent.Radius*0.5))
		vel := r2.Add(carry, physics.FromAngle(angle, radial*(0.5+ctx.rng.Float64())))
		ctx.world.SpawnAsteroid(object.NewAsteroid(ctx.rng, ctx.tun.Tiers, tier, pos, vel))
	}
}
