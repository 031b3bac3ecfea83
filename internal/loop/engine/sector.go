package engine

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tomz197/voidminer/internal/object"
	"github.com/tomz197/voidminer/internal/physics"
)

// newRun resets the ship, upgrades and sector counter for a fresh game.
func (e *Engine) newRun() {
	s := e.tun.Ship
	e.upgrades = NewUpgrades()
	e.sector = 1
	e.clearedSector = 0
	e.world.Ship = &object.Ship{
		Radius:  s.Radius,
		Heading: -math.Pi / 2,
		Ammo:    s.StartAmmo,
		Credits: s.StartCredits,
	}
	e.applyCaps()
	e.world.reset()
	e.placeShip()
}

// placeShip puts the ship at the station with launch velocity and spawn
// protection. Docking stays disarmed until it leaves the station radius.
func (e *Engine) placeShip() {
	ship := e.world.Ship
	ship.Pos = r2.Vec{}
	ship.Vel = r2.Scale(e.tun.Ship.LaunchSpeed, ship.Forward())
	ship.Invuln = e.tun.Ship.SpawnInvuln
	e.dockArmed = false
	e.camera.Follow(ship.Pos, e.view)
}

// seedSector clears the world and populates the current sector.
func (e *Engine) seedSector() {
	cfg := e.tun.Sector
	e.world.reset()
	e.placeShip()
	e.oreCollected = 0
	e.shake = 0

	n := e.sector - 1
	count := cfg.BaseCount + cfg.PerSector*n
	if extra := e.sector * cfg.RandomPerSector; extra > 0 {
		count += e.rng.Intn(extra + 1)
	}
	share := math.Min(cfg.VolatileMax, cfg.VolatileShare+cfg.VolatilePerSector*float64(n))
	spread := cfg.SpawnSpread + cfg.SpreadPerSector*float64(n)

	for i := 0; i < count; i++ {
		tier := object.TierTitan
		if e.rng.Float64() < share {
			tier = object.TierVolatile
		}
		dist := cfg.MinSpawnRadius + e.rng.Float64()*spread
		pos := physics.FromAngle(e.rng.Float64()*2*math.Pi, dist)
		speed := e.rng.Float64() * cfg.MaxDriftSpeed * object.TierSpec(e.tun.Tiers, tier).Speed
		vel := physics.FromAngle(e.rng.Float64()*2*math.Pi, speed)
		e.world.Asteroids = append(e.world.Asteroids, object.NewAsteroid(e.rng, e.tun.Tiers, tier, pos, vel))
	}

	for i := 0; i < cfg.AmbientOre; i++ {
		dist := physics.RandRange(e.rng, cfg.AmbientOreMin, cfg.AmbientOreMax)
		pos := physics.FromAngle(e.rng.Float64()*2*math.Pi, dist)
		e.world.Asteroids = append(e.world.Asteroids, object.NewAsteroid(e.rng, e.tun.Tiers, object.TierOre, pos, r2.Vec{}))
	}

	e.initialSources = e.world.Sources()
	e.logger.Info("sector seeded", "sector", e.sector, "sources", e.initialSources, "volatile_share", share)
}

// stats reports the progress of the current sector.
func (e *Engine) stats() Stats {
	st := Stats{OreCollected: e.oreCollected}
	if e.initialSources > 0 {
		destroyed := e.initialSources - e.world.Sources()
		pct := math.Round(100 * float64(destroyed) / float64(e.initialSources))
		st.PercentDestroyed = int(math.Max(0, math.Min(100, pct)))
	}
	return st
}

// checkPhase emits at most one transition per tick. Game over wins.
func (e *Engine) checkPhase() {
	if e.phase != PhasePlaying {
		return
	}
	ship := e.world.Ship
	if !ship.Alive() {
		e.transition(PhaseGameOver, e.stats())
		return
	}
	if e.sectorComplete() {
		e.clearedSector = e.sector
		e.transition(PhaseSectorCleared, e.stats())
		return
	}
	if e.canDock() {
		ship.Vel = r2.Vec{}
		e.transition(PhaseDocked, Stats{})
	}
}

func (e *Engine) sectorComplete() bool {
	if e.initialSources == 0 || e.clearedSector == e.sector {
		return false
	}
	survivors := float64(e.world.Sources())
	return survivors <= e.tun.Sector.ClearFraction*float64(e.initialSources)
}

func (e *Engine) canDock() bool {
	ship := e.world.Ship
	dist := r2.Norm(ship.Pos)
	if !e.dockArmed {
		if dist > e.tun.Station.Radius {
			e.dockArmed = true
		}
		return false
	}
	return dist < e.tun.Station.Radius && ship.Speed() < e.tun.Station.DockSpeed
}

func (e *Engine) transition(to Phase, st Stats) {
	t := Transition{From: e.phase, To: to, Sector: e.sector, Stats: st}
	e.phase = to
	e.logger.Debug("phase change", "from", t.From, "to", t.To, "sector", t.Sector)
	switch to {
	case PhaseSectorCleared, PhaseGameOver:
		e.logger.Info("sector ended", "sector", t.Sector, "result", to,
			"destroyed_pct", st.PercentDestroyed, "ore", st.OreCollected)
	case PhaseMenu, PhasePlaying, PhaseDocked:
	}
	if e.onTransition != nil {
		e.onTransition(t)
	}
}
