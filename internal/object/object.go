// Package object defines the entity records the simulation owns: the ship,
// asteroids, mines and particles, plus the camera transform.
package object

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tomz197/voidminer/internal/config"
)

// Tier is the category of an asteroid.
type Tier int

const (
	TierTitan    Tier = iota // Large terminal source, needs explosives
	TierChunk                // Laser-mineable fragment
	TierOre                  // Collectable loot
	TierVolatile             // Dangerous terminal source
)

// Tiers lists every tier in declaration order.
var Tiers = [...]Tier{TierTitan, TierChunk, TierOre, TierVolatile}

func (t Tier) String() string {
	switch t {
	case TierTitan:
		return "titan"
	case TierChunk:
		return "chunk"
	case TierOre:
		return "ore"
	case TierVolatile:
		return "volatile"
	default:
		return "unknown"
	}
}

// Mineable reports whether the mining laser may target the tier.
func (t Tier) Mineable() bool {
	switch t {
	case TierChunk:
		return true
	case TierTitan, TierOre, TierVolatile:
		return false
	default:
		return false
	}
}

// Source reports whether the tier counts toward sector completion.
func (t Tier) Source() bool {
	switch t {
	case TierTitan, TierVolatile:
		return true
	case TierChunk, TierOre:
		return false
	default:
		return false
	}
}

// TierSpec returns the configured properties of a tier.
func TierSpec(tiers config.TierConfigs, t Tier) config.TierConfig {
	switch t {
	case TierTitan:
		return tiers.Titan
	case TierChunk:
		return tiers.Chunk
	case TierOre:
		return tiers.Ore
	case TierVolatile:
		return tiers.Volatile
	default:
		return tiers.Ore
	}
}

// Camera maps world space to the viewport. Pos is the world position of the
// viewport's top-left corner.
type Camera struct {
	Pos  r2.Vec
	Zoom float64
}

// Follow recenters the camera so the viewport centre maps exactly to target.
// view is the viewport size in world units at zoom 1.
func (c *Camera) Follow(target, view r2.Vec) {
	zoom := c.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	c.Pos = r2.Sub(target, r2.Scale(0.5/zoom, view))
}

// WorldToScreen converts a world position to viewport coordinates.
func (c Camera) WorldToScreen(p r2.Vec) r2.Vec {
	return r2.Scale(c.Zoom, r2.Sub(p, c.Pos))
}

// ScreenToWorld converts viewport coordinates to a world position.
func (c Camera) ScreenToWorld(p r2.Vec) r2.Vec {
	if c.Zoom <= 0 {
		return r2.Add(c.Pos, p)
	}
	return r2.Add(c.Pos, r2.Scale(1/c.Zoom, p))
}
