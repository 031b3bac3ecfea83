package engine

import (
	"errors"
	"math"

	"github.com/tomz197/voidminer/internal/config"
)

// Declined shop and action requests.
var (
	ErrWrongPhase          = errors.New("action not available in this phase")
	ErrNoAmmo              = errors.New("no mines left")
	ErrAmmoFull            = errors.New("mine rack full")
	ErrNoCargo             = errors.New("cargo hold empty")
	ErrHullFull            = errors.New("hull already at full integrity")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrMaxLevel            = errors.New("upgrade already at max level")
)

// Category is an upgradeable ship system.
type Category int

const (
	CategoryEngine Category = iota
	CategoryHandling
	CategoryHull
	CategoryCargo
	CategoryLaser
	CategoryShield

	categoryCount
)

// Categories lists every upgrade category in shop order.
var Categories = [...]Category{
	CategoryEngine, CategoryHandling, CategoryHull,
	CategoryCargo, CategoryLaser, CategoryShield,
}

func (c Category) String() string {
	switch c {
	case CategoryEngine:
		return "engine"
	case CategoryHandling:
		return "handling"
	case CategoryHull:
		return "hull"
	case CategoryCargo:
		return "cargo"
	case CategoryLaser:
		return "laser"
	case CategoryShield:
		return "shield"
	default:
		return "unknown"
	}
}

// Upgrades holds one level per category. Levels start at 1.
type Upgrades [categoryCount]int

// NewUpgrades returns every category at level 1.
func NewUpgrades() Upgrades {
	var u Upgrades
	for i := range u {
		u[i] = 1
	}
	return u
}

// Level returns the level of c, or 1 for an unknown category.
func (u Upgrades) Level(c Category) int {
	if c < 0 || c >= categoryCount {
		return 1
	}
	return max(1, u[c])
}

// Cost returns the price of upgrading from level to level+1.
// Levels below 1 are treated as 1.
func Cost(econ config.EconomyConfig, level int) int {
	level = max(1, level)
	return int(math.Round(econ.CostBase * math.Pow(econ.CostMultiplier, float64(level-1))))
}

// Derived ship stats for a set of upgrade levels.

func thrustFor(s config.ShipConfig, u Upgrades) float64 {
	return s.ThrustBase + s.ThrustPerLevel*float64(u.Level(CategoryEngine)-1)
}

func maxSpeedFor(s config.ShipConfig, u Upgrades) float64 {
	return s.MaxSpeedBase + s.MaxSpeedPerLevel*float64(u.Level(CategoryEngine)-1)
}

func rotationFor(s config.ShipConfig, u Upgrades) float64 {
	return s.RotationBase + s.RotationPerLevel*float64(u.Level(CategoryHandling)-1)
}

func maxHullFor(s config.ShipConfig, u Upgrades) float64 {
	return s.HullBase + s.HullPerLevel*float64(u.Level(CategoryHull)-1)
}

func maxCargoFor(s config.ShipConfig, u Upgrades) int {
	return s.CargoBase + s.CargoPerLevel*(u.Level(CategoryCargo)-1)
}

func maxShieldFor(s config.ShipConfig, u Upgrades) float64 {
	return s.ShieldPerLevel * float64(u.Level(CategoryShield)-1)
}

func laserDamageFor(l config.LaserConfig, u Upgrades) float64 {
	return l.DamageBase + l.DamagePerLevel*float64(u.Level(CategoryLaser)-1)
}

// applyCaps recomputes the ship's maxima from the upgrade levels. A raised
// hull or shield cap raises the current value by the same amount.
func (e *Engine) applyCaps() {
	ship := e.world.Ship
	s := e.tun.Ship

	hull := maxHullFor(s, e.upgrades)
	if hull > ship.MaxHull {
		ship.Hull += hull - ship.MaxHull
	}
	ship.MaxHull = hull

	shield := maxShieldFor(s, e.upgrades)
	if shield > ship.MaxShield {
		ship.Shield += shield - ship.MaxShield
	}
	ship.MaxShield = shield

	ship.MaxCargo = maxCargoFor(s, e.upgrades)
	ship.MaxAmmo = s.MaxAmmo
	ship.ClampStats()
}

// decline plays the error cue and returns err.
func (e *Engine) decline(err error) error {
	e.audio.Play(CueError)
	return err
}

func (e *Engine) requireDocked() error {
	if e.phase != PhaseDocked {
		return e.decline(ErrWrongPhase)
	}
	return nil
}

// UpgradeCost returns the price of the next level of c, and false when c is
// already at the max level.
func (e *Engine) UpgradeCost(c Category) (int, bool) {
	level := e.upgrades.Level(c)
	if level >= e.tun.Economy.MaxLevel {
		return 0, false
	}
	return Cost(e.tun.Economy, level), true
}

// ApplyUpgrade buys the next level of c.
func (e *Engine) ApplyUpgrade(c Category) error {
	if err := e.requireDocked(); err != nil {
		return err
	}
	if c < 0 || c >= categoryCount {
		return e.decline(ErrMaxLevel)
	}
	cost, ok := e.UpgradeCost(c)
	if !ok {
		return e.decline(ErrMaxLevel)
	}
	ship := e.world.Ship
	if ship.Credits < cost {
		return e.decline(ErrInsufficientCredits)
	}

	ship.Credits -= cost
	e.upgrades[c]++
	e.applyCaps()
	e.audio.Play(CueBuy)
	e.logger.Debug("upgrade", "category", c, "level", e.upgrades[c], "cost", cost)
	return nil
}

// SellOre converts the whole cargo hold into credits and returns the amount
// earned.
func (e *Engine) SellOre() (int, error) {
	if err := e.requireDocked(); err != nil {
		return 0, err
	}
	ship := e.world.Ship
	if ship.Cargo <= 0 {
		return 0, e.decline(ErrNoCargo)
	}

	earned := ship.Cargo * e.tun.Economy.OrePrice
	ship.Credits += earned
	ship.Cargo = 0
	e.audio.Play(CueBuy)
	return earned, nil
}

// BuyAmmo buys one mine.
func (e *Engine) BuyAmmo() error {
	if err := e.requireDocked(); err != nil {
		return err
	}
	ship := e.world.Ship
	if ship.Ammo >= ship.MaxAmmo {
		return e.decline(ErrAmmoFull)
	}
	price := e.tun.Economy.AmmoPrice
	if ship.Credits < price {
		return e.decline(ErrInsufficientCredits)
	}

	ship.Credits -= price
	ship.Ammo++
	e.audio.Play(CueBuy)
	return nil
}

// Repair restores as much hull as the credits allow, up to full.
func (e *Engine) Repair() error {
	if err := e.requireDocked(); err != nil {
		return err
	}
	ship := e.world.Ship
	missing := int(math.Ceil(ship.MaxHull - ship.Hull))
	if missing <= 0 {
		return e.decline(ErrHullFull)
	}
	price := max(1, e.tun.Economy.RepairPrice)
	points := min(missing, ship.Credits/price)
	if points <= 0 {
		return e.decline(ErrInsufficientCredits)
	}

	ship.Credits -= points * price
	ship.Hull += float64(points)
	ship.ClampStats()
	e.audio.Play(CueBuy)
	return nil
}
