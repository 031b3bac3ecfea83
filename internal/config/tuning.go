package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Tuning holds every gameplay parameter of the simulation.
// Units are world units and frames unless a field says otherwise.
type Tuning struct {
	Frame     FrameConfig     `yaml:"frame"`
	Ship      ShipConfig      `yaml:"ship"`
	Laser     LaserConfig     `yaml:"laser"`
	Tractor   TractorConfig   `yaml:"tractor"`
	Mine      MineConfig      `yaml:"mine"`
	Tiers     TierConfigs     `yaml:"tiers"`
	Fragment  FragmentConfig  `yaml:"fragment"`
	Collision CollisionConfig `yaml:"collision"`
	Station   StationConfig   `yaml:"station"`
	Sector    SectorConfig    `yaml:"sector"`
	Economy   EconomyConfig   `yaml:"economy"`
	Camera    CameraConfig    `yaml:"camera"`
}

// FrameConfig holds the fixed-step cadence.
type FrameConfig struct {
	TickRate int `yaml:"tick_rate"` // Ticks per second
}

// TickTime is the minimum interval between two ticks.
func (f FrameConfig) TickTime() time.Duration {
	if f.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(f.TickRate)
}

// ShipConfig holds ship kinematics and the base values of upgradeable stats.
type ShipConfig struct {
	Radius              float64 `yaml:"radius"`
	ThrustBase          float64 `yaml:"thrust_base"`
	ThrustPerLevel      float64 `yaml:"thrust_per_level"`
	RotationBase        float64 `yaml:"rotation_base"`     // Radians per frame
	RotationPerLevel    float64 `yaml:"rotation_per_level"`
	MaxSpeedBase        float64 `yaml:"max_speed_base"`
	MaxSpeedPerLevel    float64 `yaml:"max_speed_per_level"`
	Friction            float64 `yaml:"friction"`     // Velocity multiplier per frame
	BrakeFactor         float64 `yaml:"brake_factor"` // Velocity multiplier while braking
	BrakeSnap           float64 `yaml:"brake_snap"`   // Speeds below this snap to zero while braking
	HullBase            float64 `yaml:"hull_base"`
	HullPerLevel        float64 `yaml:"hull_per_level"`
	CargoBase           int     `yaml:"cargo_base"`
	CargoPerLevel       int     `yaml:"cargo_per_level"`
	ShieldPerLevel      float64 `yaml:"shield_per_level"` // Level 1 has no shield
	ShieldRegen         float64 `yaml:"shield_regen"`     // Per frame while vulnerable
	StartAmmo           int     `yaml:"start_ammo"`
	MaxAmmo             int     `yaml:"max_ammo"`
	StartCredits        int     `yaml:"start_credits"`
	LaunchSpeed         float64 `yaml:"launch_speed"`
	SpawnInvuln         int     `yaml:"spawn_invuln"`
	ThrustParticleEvery int     `yaml:"thrust_particle_every"`
}

// LaserConfig holds the mining laser.
type LaserConfig struct {
	Range          float64 `yaml:"range"`
	HalfAngle      float64 `yaml:"half_angle"`
	DamageBase     float64 `yaml:"damage_base"`
	DamagePerLevel float64 `yaml:"damage_per_level"`
}

// TractorConfig holds the ore tractor beam.
type TractorConfig struct {
	Radius float64 `yaml:"radius"`
	Force  float64 `yaml:"force"`
	Jitter float64 `yaml:"jitter"`
}

// MineConfig holds the explosive charge sequence.
type MineConfig struct {
	Timer           int     `yaml:"timer"`
	PuckerWindow    int     `yaml:"pucker_window"`
	ArmedCueDelay   int     `yaml:"armed_cue_delay"`
	BlastRadius     float64 `yaml:"blast_radius"`
	PuckerForce     float64 `yaml:"pucker_force"`
	BlastImpulse    float64 `yaml:"blast_impulse"`
	BlastDamage     float64 `yaml:"blast_damage"`
	BlastShipDamage float64 `yaml:"blast_ship_damage"`
	ShieldInvuln    int     `yaml:"shield_invuln"`
	HullInvuln      int     `yaml:"hull_invuln"`
	Shake           float64 `yaml:"shake"`
}

// TierConfig holds the fixed properties of one asteroid tier.
type TierConfig struct {
	Radius          float64 `yaml:"radius"`
	HP              float64 `yaml:"hp"`
	Vertices        int     `yaml:"vertices"`
	Jaggedness      float64 `yaml:"jaggedness"` // Max relative deviation of a vertex from the radius
	Speed           float64 `yaml:"speed"`
	Color           string  `yaml:"color"`
	CollisionDamage float64 `yaml:"collision_damage"`
}

// TierConfigs holds one TierConfig per asteroid tier.
type TierConfigs struct {
	Titan    TierConfig `yaml:"titan"`
	Chunk    TierConfig `yaml:"chunk"`
	Ore      TierConfig `yaml:"ore"`
	Volatile TierConfig `yaml:"volatile"`
}

// FragmentConfig holds the fragmentation cascade.
type FragmentConfig struct {
	TitanChunks           int     `yaml:"titan_chunks"`
	VolatileChunks        int     `yaml:"volatile_chunks"`
	ChunkOre              int     `yaml:"chunk_ore"`
	ImpactCarry           float64 `yaml:"impact_carry"`
	RadialSpeed           float64 `yaml:"radial_speed"`
	VolatileShrapnelSpeed float64 `yaml:"volatile_shrapnel_speed"`
	ChunkShake            float64 `yaml:"chunk_shake"`
	TitanShake            float64 `yaml:"titan_shake"`
	VolatileShake         float64 `yaml:"volatile_shake"`
}

// CollisionConfig holds ship/asteroid contact resolution.
type CollisionConfig struct {
	DamageSpeedThreshold float64 `yaml:"damage_speed_threshold"`
	Invuln               int     `yaml:"invuln"`
	BounceImpulse        float64 `yaml:"bounce_impulse"`
	AsteroidDamping      float64 `yaml:"asteroid_damping"`
}

// StationConfig holds the docking station at the origin.
type StationConfig struct {
	Radius       float64 `yaml:"radius"`
	FieldRadius  float64 `yaml:"field_radius"`
	FieldDamping float64 `yaml:"field_damping"`
	DockSpeed    float64 `yaml:"dock_speed"`
}

// SectorConfig holds sector population and completion.
type SectorConfig struct {
	BaseCount         int     `yaml:"base_count"`
	PerSector         int     `yaml:"per_sector"`
	RandomPerSector   int     `yaml:"random_per_sector"`
	VolatileShare     float64 `yaml:"volatile_share"`
	VolatilePerSector float64 `yaml:"volatile_per_sector"`
	VolatileMax       float64 `yaml:"volatile_max"`
	MinSpawnRadius    float64 `yaml:"min_spawn_radius"`
	SpawnSpread       float64 `yaml:"spawn_spread"`
	SpreadPerSector   float64 `yaml:"spread_per_sector"`
	MaxDriftSpeed     float64 `yaml:"max_drift_speed"`
	AmbientOre        int     `yaml:"ambient_ore"`
	AmbientOreMin     float64 `yaml:"ambient_ore_min"`
	AmbientOreMax     float64 `yaml:"ambient_ore_max"`
	ClearFraction     float64 `yaml:"clear_fraction"`
}

// EconomyConfig holds the upgrade cost curve and shop prices.
type EconomyConfig struct {
	CostBase       float64 `yaml:"cost_base"`
	CostMultiplier float64 `yaml:"cost_multiplier"`
	MaxLevel       int     `yaml:"max_level"`
	OrePrice       int     `yaml:"ore_price"`
	AmmoPrice      int     `yaml:"ammo_price"`
	RepairPrice    int     `yaml:"repair_price"` // Credits per hull point
}

// CameraConfig holds the viewport in world units and zoom bounds.
type CameraConfig struct {
	ViewWidth  float64 `yaml:"view_width"`
	ViewHeight float64 `yaml:"view_height"`
	MinZoom    float64 `yaml:"min_zoom"`
	MaxZoom    float64 `yaml:"max_zoom"`
	ZoomStep   float64 `yaml:"zoom_step"`
	ShakeDecay float64 `yaml:"shake_decay"`
}

// Default returns the embedded default tuning.
func Default() *Tuning {
	var t Tuning
	if err := yaml.Unmarshal(defaultsYAML, &t); err != nil {
		panic(fmt.Sprintf("config: parsing embedded defaults: %v", err))
	}
	return &t
}

// Load returns the defaults overlaid with the YAML file at path.
// An empty path returns the defaults.
func Load(path string) (*Tuning, error) {
	t := Default()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tuning file: %w", err)
	}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("parsing tuning file %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tuning file %s: %w", path, err)
	}
	return t, nil
}

// Validate rejects combinations the simulation cannot run with.
func (t *Tuning) Validate() error {
	var errs []error
	if t.Frame.TickRate <= 0 {
		errs = append(errs, errors.New("frame.tick_rate must be positive"))
	}
	if t.Mine.Timer <= 0 {
		errs = append(errs, errors.New("mine.timer must be positive"))
	}
	if t.Mine.PuckerWindow < 0 || t.Mine.PuckerWindow > t.Mine.Timer {
		errs = append(errs, errors.New("mine.pucker_window must be within [0, mine.timer]"))
	}
	if t.Mine.BlastRadius <= 0 {
		errs = append(errs, errors.New("mine.blast_radius must be positive"))
	}
	if t.Camera.MinZoom <= 0 || t.Camera.MinZoom > t.Camera.MaxZoom {
		errs = append(errs, errors.New("camera zoom bounds must satisfy 0 < min_zoom <= max_zoom"))
	}
	if t.Economy.CostMultiplier < 1 {
		errs = append(errs, errors.New("economy.cost_multiplier must be >= 1"))
	}
	if t.Economy.MaxLevel < 1 {
		errs = append(errs, errors.New("economy.max_level must be >= 1"))
	}
	if t.Sector.ClearFraction < 0 || t.Sector.ClearFraction >= 1 {
		errs = append(errs, errors.New("sector.clear_fraction must be within [0, 1)"))
	}
	for name, tier := range map[string]TierConfig{
		"titan": t.Tiers.Titan, "chunk": t.Tiers.Chunk, "ore": t.Tiers.Ore, "volatile": t.Tiers.Volatile,
	} {
		if tier.Radius <= 0 || tier.HP <= 0 {
			errs = append(errs, fmt.Errorf("tiers.%s needs positive radius and hp", name))
		}
		if tier.Vertices < 3 {
			errs = append(errs, fmt.Errorf("tiers.%s needs at least 3 vertices", name))
		}
	}
	return errors.Join(errs...)
}

// WriteYAML saves the tuning to path.
func (t *Tuning) WriteYAML(path string) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshaling tuning: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing tuning: %w", err)
	}
	return nil
}
