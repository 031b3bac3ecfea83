package engine

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tomz197/voidminer/internal/object"
)

type recorder struct {
	cues  map[Cue]int
	loops map[Loop]bool
}

func newRecorder() *recorder {
	return &recorder{cues: map[Cue]int{}, loops: map[Loop]bool{}}
}

func (r *recorder) Play(c Cue)              { r.cues[c]++ }
func (r *recorder) SetLoop(l Loop, on bool) { r.loops[l] = on }

// newPlaying returns a running engine with an empty world and the ship
// parked far from the station.
func newPlaying(t *testing.T, opts Options) *Engine {
	t.Helper()
	e := New(opts)
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	e.world.reset()
	e.initialSources = 0
	ship := e.world.Ship
	ship.Pos = r2.Vec{X: 5000, Y: 5000}
	ship.Vel = r2.Vec{}
	ship.Invuln = 0
	return e
}

func (e *Engine) addAsteroid(tier object.Tier, pos, vel r2.Vec) *object.Asteroid {
	a := object.NewAsteroid(e.rng, e.tun.Tiers, tier, pos, vel)
	e.world.Asteroids = append(e.world.Asteroids, a)
	return a
}

func countTier(asteroids []*object.Asteroid, tier object.Tier) int {
	n := 0
	for _, a := range asteroids {
		if a.Tier == tier {
			n++
		}
	}
	return n
}

func TestTitanCollisionEndsGame(t *testing.T) {
	var got []Transition
	e := newPlaying(t, Options{OnTransition: func(tr Transition) { got = append(got, tr) }})
	got = nil

	ship := e.world.Ship
	ship.Vel = r2.Vec{X: 5}
	e.addAsteroid(object.TierTitan, r2.Add(ship.Pos, r2.Vec{X: 40}), r2.Vec{})

	e.Tick(Input{})

	if ship.Hull != 0 {
		t.Errorf("hull = %v, want 0", ship.Hull)
	}
	if e.Phase() != PhaseGameOver {
		t.Fatalf("phase = %v, want game-over", e.Phase())
	}
	if len(got) != 1 || got[0].From != PhasePlaying || got[0].To != PhaseGameOver {
		t.Errorf("transitions = %+v, want one playing -> game-over", got)
	}
}

func TestSlowContactDoesNoDamage(t *testing.T) {
	e := newPlaying(t, Options{})
	ship := e.world.Ship
	ship.Vel = r2.Vec{X: 1}
	e.addAsteroid(object.TierChunk, r2.Add(ship.Pos, r2.Vec{X: 20}), r2.Vec{})

	e.Tick(Input{})

	if ship.Hull != ship.MaxHull {
		t.Errorf("hull = %v, want %v", ship.Hull, ship.MaxHull)
	}
}

func TestShieldAbsorbsCollision(t *testing.T) {
	e := newPlaying(t, Options{})
	e.upgrades[CategoryShield] = 2
	e.applyCaps()
	ship := e.world.Ship
	ship.Shield = ship.MaxShield
	ship.Vel = r2.Vec{X: 5}
	e.addAsteroid(object.TierChunk, r2.Add(ship.Pos, r2.Vec{X: 20}), r2.Vec{})

	e.Tick(Input{})

	if ship.Shield != 0 {
		t.Errorf("shield = %v, want 0", ship.Shield)
	}
	if ship.Hull != ship.MaxHull {
		t.Errorf("hull = %v, want untouched %v", ship.Hull, ship.MaxHull)
	}
	if ship.Invuln != e.tun.Collision.Invuln {
		t.Errorf("invuln = %d, want %d", ship.Invuln, e.tun.Collision.Invuln)
	}
}

func TestMineSequence(t *testing.T) {
	rec := newRecorder()
	e := newPlaying(t, Options{Audio: rec})
	if err := e.DropMine(); err != nil {
		t.Fatalf("DropMine: %v", err)
	}
	// Park the ship outside the pucker reach.
	e.world.Ship.Pos = r2.Add(e.world.Ship.Pos, r2.Vec{X: 2000})
	mine := e.world.Mines[0]

	for tick := 1; tick <= 181; tick++ {
		e.Tick(Input{})

		switch {
		case tick == e.tun.Mine.ArmedCueDelay:
			if rec.cues[CueMineArmed] != 1 {
				t.Errorf("tick %d: armed cue count = %d, want 1", tick, rec.cues[CueMineArmed])
			}
		case tick == 119:
			if mine.State != object.MineArmed {
				t.Errorf("tick 119: state = %v, want armed", mine.State)
			}
		case tick == 120:
			if mine.State != object.MinePucker {
				t.Errorf("tick 120: state = %v, want pucker", mine.State)
			}
		case tick == 179:
			if mine.State != object.MinePucker {
				t.Errorf("tick 179: state = %v, want pucker", mine.State)
			}
		case tick == 180:
			if mine.State != object.MineDetonating {
				t.Errorf("tick 180: state = %v, want detonating", mine.State)
			}
			if len(e.world.Mines) != 1 {
				t.Errorf("tick 180: mine purged too early")
			}
		case tick == 181:
			if len(e.world.Mines) != 0 {
				t.Errorf("tick 181: %d mines left, want 0", len(e.world.Mines))
			}
		}
	}

	if rec.cues[CueMinePucker] != 1 {
		t.Errorf("pucker cue count = %d, want 1", rec.cues[CueMinePucker])
	}
	if rec.cues[CueExplosionLarge] != 1 {
		t.Errorf("explosion cue count = %d, want 1", rec.cues[CueExplosionLarge])
	}
	if rec.cues[CueMineArmed] != 1 {
		t.Errorf("armed cue count = %d, want 1", rec.cues[CueMineArmed])
	}
}

func TestDropMineWithoutAmmo(t *testing.T) {
	rec := newRecorder()
	e := newPlaying(t, Options{Audio: rec})
	e.world.Ship.Ammo = 0

	if err := e.DropMine(); !errors.Is(err, ErrNoAmmo) {
		t.Fatalf("DropMine = %v, want ErrNoAmmo", err)
	}
	if len(e.world.Mines) != 0 {
		t.Errorf("mine dropped without ammo")
	}
	if rec.cues[CueError] != 1 {
		t.Errorf("error cue count = %d, want 1", rec.cues[CueError])
	}
}

func TestBlastAppliedOnce(t *testing.T) {
	e := newPlaying(t, Options{})
	center := r2.Vec{X: -5000, Y: -5000}
	titan := e.addAsteroid(object.TierTitan, r2.Add(center, r2.Vec{X: 100}), r2.Vec{})
	chunk := e.addAsteroid(object.TierChunk, r2.Add(center, r2.Vec{Y: 100}), r2.Vec{})
	ore := e.addAsteroid(object.TierOre, r2.Add(center, r2.Vec{X: -50}), r2.Vec{})
	far := e.addAsteroid(object.TierTitan, r2.Add(center, r2.Vec{X: 1000}), r2.Vec{})
	chunk.HP = 100

	m := object.NewMine(center, 1, 0)
	e.world.Mines = append(e.world.Mines, m)

	ctx := e.newContext(Input{})
	stepMines(ctx)
	e.world.flush()

	if !titan.Dead {
		t.Errorf("titan inside blast survived")
	}
	if want := 100 - e.tun.Mine.BlastDamage; chunk.HP != want {
		t.Errorf("chunk hp = %v, want %v", chunk.HP, want)
	}
	if ore.Dead {
		t.Errorf("ore destroyed by blast")
	}
	if far.Dead || far.Vel != (r2.Vec{}) {
		t.Errorf("asteroid outside blast affected")
	}
	if got := countTier(e.world.Asteroids, object.TierChunk); got != 1+e.tun.Fragment.TitanChunks {
		t.Errorf("chunks = %d, want %d", got, 1+e.tun.Fragment.TitanChunks)
	}

	// The next pass purges the mine without a second blast.
	hp := chunk.HP
	stepMines(e.newContext(Input{}))
	if len(e.world.Mines) != 0 {
		t.Errorf("detonated mine not purged")
	}
	if chunk.HP != hp {
		t.Errorf("blast applied twice: hp %v -> %v", hp, chunk.HP)
	}
}

func TestBlastDamagesShip(t *testing.T) {
	tests := []struct {
		name       string
		shield     float64
		invuln     int
		wantShield float64
		hullLoss   bool
		wantInvuln int
	}{
		{"shield absorbs", 25, 0, 0, false, 60},
		{"hull takes scaled damage", 0, 0, 0, true, 30},
		{"invulnerable ship untouched", 25, 5, 25, false, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newPlaying(t, Options{})
			e.upgrades[CategoryShield] = 2
			e.applyCaps()
			ship := e.world.Ship
			ship.Shield = tt.shield
			ship.Invuln = tt.invuln
			hull := ship.Hull

			m := object.NewMine(r2.Sub(ship.Pos, r2.Vec{X: 130}), 1, 0)
			e.world.Mines = append(e.world.Mines, m)
			stepMines(e.newContext(Input{}))

			if ship.Shield != tt.wantShield {
				t.Errorf("shield = %v, want %v", ship.Shield, tt.wantShield)
			}
			if lost := ship.Hull < hull; lost != tt.hullLoss {
				t.Errorf("hull %v -> %v, loss = %v, want %v", hull, ship.Hull, lost, tt.hullLoss)
			}
			if tt.hullLoss {
				want := hull - e.tun.Mine.BlastShipDamage*0.5
				if math.Abs(ship.Hull-want) > 1e-9 {
					t.Errorf("hull = %v, want %v", ship.Hull, want)
				}
			}
			if ship.Invuln != tt.wantInvuln {
				t.Errorf("invuln = %d, want %d", ship.Invuln, tt.wantInvuln)
			}
			if ship.Vel.X <= 0 {
				t.Errorf("ship not pushed away from the blast: vel %v", ship.Vel)
			}
		})
	}
}

func TestOreCollection(t *testing.T) {
	rec := newRecorder()
	e := newPlaying(t, Options{Audio: rec})
	ship := e.world.Ship
	ship.Cargo = ship.MaxCargo - 1

	e.addAsteroid(object.TierOre, r2.Add(ship.Pos, r2.Vec{X: 5}), r2.Vec{})
	e.Tick(Input{})

	if ship.Cargo != ship.MaxCargo {
		t.Errorf("cargo = %d, want %d", ship.Cargo, ship.MaxCargo)
	}
	if len(e.world.Asteroids) != 0 {
		t.Errorf("collected ore not removed")
	}
	if rec.cues[CuePickup] != 1 {
		t.Errorf("pickup cue count = %d, want 1", rec.cues[CuePickup])
	}

	e.addAsteroid(object.TierOre, r2.Add(ship.Pos, r2.Vec{X: 5}), r2.Vec{})
	e.Tick(Input{})

	if ship.Cargo != ship.MaxCargo {
		t.Errorf("cargo = %d, want %d", ship.Cargo, ship.MaxCargo)
	}
	if len(e.world.Asteroids) != 1 {
		t.Errorf("ore picked up with a full hold")
	}
	if rec.cues[CuePickup] != 1 {
		t.Errorf("pickup cue count = %d, want 1", rec.cues[CuePickup])
	}
	if got := e.stats().OreCollected; got != 1 {
		t.Errorf("ore collected = %d, want 1", got)
	}
}

func TestSpeedCapKeepsDirection(t *testing.T) {
	e := newPlaying(t, Options{})
	ship := e.world.Ship
	ship.Vel = r2.Vec{X: 30, Y: 40}

	e.Tick(Input{})

	want := maxSpeedFor(e.tun.Ship, e.upgrades)
	if math.Abs(ship.Speed()-want) > 1e-9 {
		t.Errorf("speed = %v, want %v", ship.Speed(), want)
	}
	if math.Abs(ship.Vel.X/ship.Vel.Y-0.75) > 1e-9 {
		t.Errorf("direction changed: vel %v", ship.Vel)
	}
}

func TestThrustNeverExceedsCap(t *testing.T) {
	rec := newRecorder()
	e := newPlaying(t, Options{Audio: rec})
	ship := e.world.Ship
	limit := maxSpeedFor(e.tun.Ship, e.upgrades)

	for i := 0; i < 300; i++ {
		e.Tick(Input{Thrust: true, Left: i%50 < 10})
		if ship.Speed() > limit+1e-9 {
			t.Fatalf("tick %d: speed %v over cap %v", i, ship.Speed(), limit)
		}
	}
	if !rec.loops[LoopThrust] {
		t.Errorf("thrust loop off while thrusting")
	}

	e.Tick(Input{})
	if rec.loops[LoopThrust] {
		t.Errorf("thrust loop still on after release")
	}
}

func TestBrakeSnapsToZero(t *testing.T) {
	e := newPlaying(t, Options{})
	ship := e.world.Ship
	ship.Vel = r2.Vec{X: 2}

	for i := 0; i < 100 && ship.Speed() > 0; i++ {
		e.Tick(Input{Brake: true})
	}
	if ship.Speed() != 0 {
		t.Errorf("speed = %v after braking, want 0", ship.Speed())
	}
}

func TestZoomClamped(t *testing.T) {
	e := newPlaying(t, Options{})
	e.Tick(Input{Scroll: 100})
	if e.camera.Zoom != e.tun.Camera.MaxZoom {
		t.Errorf("zoom = %v, want max %v", e.camera.Zoom, e.tun.Camera.MaxZoom)
	}
	e.Tick(Input{Scroll: -100})
	if e.camera.Zoom != e.tun.Camera.MinZoom {
		t.Errorf("zoom = %v, want min %v", e.camera.Zoom, e.tun.Camera.MinZoom)
	}
}

func TestCameraCentresShip(t *testing.T) {
	e := newPlaying(t, Options{})
	e.Tick(Input{Scroll: 5})

	screen := e.camera.WorldToScreen(e.world.Ship.Pos)
	want := r2.Scale(0.5, e.view)
	if math.Abs(screen.X-want.X) > 1e-6 || math.Abs(screen.Y-want.Y) > 1e-6 {
		t.Errorf("ship at screen %v, want centre %v", screen, want)
	}
}

func TestInvulnerabilityCountsDown(t *testing.T) {
	e := newPlaying(t, Options{})
	ship := e.world.Ship
	ship.Invuln = 5
	ship.Vel = r2.Vec{X: 5}
	e.addAsteroid(object.TierChunk, r2.Add(ship.Pos, r2.Vec{X: 20}), r2.Vec{X: -5})

	prev := ship.Invuln
	for i := 0; i < 3; i++ {
		e.Tick(Input{})
		if ship.Invuln != prev-1 {
			t.Fatalf("tick %d: invuln %d -> %d", i, prev, ship.Invuln)
		}
		prev = ship.Invuln
	}
	if ship.Hull != ship.MaxHull {
		t.Errorf("invulnerable ship took damage: hull %v", ship.Hull)
	}
}

func TestShieldRegenerates(t *testing.T) {
	e := newPlaying(t, Options{})
	e.upgrades[CategoryShield] = 3
	e.applyCaps()
	ship := e.world.Ship
	ship.Shield = 0

	e.Tick(Input{})
	if math.Abs(ship.Shield-e.tun.Ship.ShieldRegen) > 1e-9 {
		t.Errorf("shield = %v, want %v", ship.Shield, e.tun.Ship.ShieldRegen)
	}

	ship.Invuln = 10
	before := ship.Shield
	e.Tick(Input{})
	if ship.Shield != before {
		t.Errorf("shield regenerated while invulnerable")
	}
}

func TestLaserTargetsNearestChunk(t *testing.T) {
	rec := newRecorder()
	e := newPlaying(t, Options{Audio: rec})
	ship := e.world.Ship
	ship.Heading = 0

	titan := e.addAsteroid(object.TierTitan, r2.Add(ship.Pos, r2.Vec{X: 90}), r2.Vec{})
	near := e.addAsteroid(object.TierChunk, r2.Add(ship.Pos, r2.Vec{X: 150}), r2.Vec{})
	far := e.addAsteroid(object.TierChunk, r2.Add(ship.Pos, r2.Vec{X: 220}), r2.Vec{})
	side := e.addAsteroid(object.TierChunk, r2.Add(ship.Pos, r2.Vec{Y: 100}), r2.Vec{})
	titan.Spin, near.Spin, far.Spin, side.Spin = 0, 0, 0, 0

	e.Tick(Input{Primary: true})

	hp := e.tun.Tiers.Chunk.HP
	if want := hp - e.tun.Laser.DamageBase; near.HP != want {
		t.Errorf("near chunk hp = %v, want %v", near.HP, want)
	}
	if far.HP != hp || side.HP != hp {
		t.Errorf("laser hit more than one target")
	}
	if titan.HP != e.tun.Tiers.Titan.HP {
		t.Errorf("laser damaged a titan")
	}

	snap := e.Snapshot()
	if !snap.Beam.Active || !snap.Beam.OnRock {
		t.Fatalf("beam = %+v, want active on rock", snap.Beam)
	}
	if want := 150 - near.Radius; math.Abs(snap.Beam.Length-want) > 1e-9 {
		t.Errorf("beam length = %v, want %v", snap.Beam.Length, want)
	}
	if !rec.loops[LoopLaser] {
		t.Errorf("laser loop off while firing")
	}

	// Aim at the side chunk with the pointer.
	e.Tick(Input{Primary: true, Pointer: r2.Vec{Y: 10}})
	if side.HP == hp {
		t.Errorf("pointer aim ignored")
	}
}

func TestFindTargetSkipsNonMineable(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	e := New(Options{})
	var rocks []*object.Asteroid
	for _, tier := range []object.Tier{object.TierTitan, object.TierOre, object.TierVolatile} {
		rocks = append(rocks, object.NewAsteroid(rng, e.tun.Tiers, tier, r2.Vec{X: 50}, r2.Vec{}))
	}
	if got := findTarget(r2.Vec{}, 0, 250, 0.2, rocks); got != nil {
		t.Errorf("targeted %v", got.Tier)
	}
}

func TestLaserDestroysChunkOnce(t *testing.T) {
	e := newPlaying(t, Options{})
	ship := e.world.Ship
	ship.Heading = 0
	chunk := e.addAsteroid(object.TierChunk, r2.Add(ship.Pos, r2.Vec{X: 150}), r2.Vec{})
	chunk.HP = 0.5

	e.Tick(Input{Primary: true})

	if got := countTier(e.world.Asteroids, object.TierOre); got != e.tun.Fragment.ChunkOre {
		t.Errorf("ore = %d, want %d", got, e.tun.Fragment.ChunkOre)
	}
	if got := countTier(e.world.Asteroids, object.TierChunk); got != 0 {
		t.Errorf("%d chunks left", got)
	}
}

func TestFragmentation(t *testing.T) {
	tun := New(Options{}).tun
	tests := []struct {
		tier      object.Tier
		wantTier  object.Tier
		wantCount int
	}{
		{object.TierTitan, object.TierChunk, tun.Fragment.TitanChunks},
		{object.TierVolatile, object.TierChunk, tun.Fragment.VolatileChunks},
		{object.TierChunk, object.TierOre, tun.Fragment.ChunkOre},
		{object.TierOre, object.TierOre, 0},
	}

	for _, tt := range tests {
		t.Run(tt.tier.String(), func(t *testing.T) {
			e := newPlaying(t, Options{})
			a := e.addAsteroid(tt.tier, r2.Vec{}, r2.Vec{})
			ctx := e.newContext(Input{})

			destroy(ctx, a, r2.Vec{X: 2})
			destroy(ctx, a, r2.Vec{X: 2})
			e.world.flush()

			if len(e.world.Asteroids) != tt.wantCount {
				t.Fatalf("children = %d, want %d", len(e.world.Asteroids), tt.wantCount)
			}
			if got := countTier(e.world.Asteroids, tt.wantTier); got != tt.wantCount {
				t.Errorf("%v children = %d, want %d", tt.wantTier, got, tt.wantCount)
			}
		})
	}
}

func TestVolatileContactDetonates(t *testing.T) {
	e := newPlaying(t, Options{})
	ship := e.world.Ship
	e.addAsteroid(object.TierVolatile, r2.Add(ship.Pos, r2.Vec{X: 30}), r2.Vec{})

	e.Tick(Input{})

	want := ship.MaxHull - e.tun.Tiers.Volatile.CollisionDamage
	if want < 0 {
		want = 0
	}
	if ship.Hull != want {
		t.Errorf("hull = %v, want %v", ship.Hull, want)
	}
	if countTier(e.world.Asteroids, object.TierVolatile) != 0 {
		t.Errorf("volatile survived contact")
	}
}

func TestStationFieldRepelsRocks(t *testing.T) {
	e := newPlaying(t, Options{})
	titan := e.addAsteroid(object.TierTitan, r2.Vec{X: 100}, r2.Vec{X: -3})
	ore := e.addAsteroid(object.TierOre, r2.Vec{X: -100}, r2.Vec{X: 1})

	e.Tick(Input{})

	limit := e.tun.Station.FieldRadius + titan.Radius
	if r2.Norm(titan.Pos) < limit-1e-9 {
		t.Errorf("titan inside field at %v", titan.Pos)
	}
	if titan.Vel.X <= 0 {
		t.Errorf("titan not reflected: vel %v", titan.Vel)
	}
	if r2.Norm(ore.Pos) > 100 {
		t.Errorf("ore pushed by the station field")
	}
}

func TestSectorClearFiresOnce(t *testing.T) {
	var cleared []Transition
	e := New(Options{Seed: 3, OnTransition: func(tr Transition) {
		if tr.To == PhaseSectorCleared {
			cleared = append(cleared, tr)
		}
	}})
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}

	initial := e.initialSources
	if initial == 0 {
		t.Fatal("sector seeded without sources")
	}
	keep := int(math.Floor(e.tun.Sector.ClearFraction * float64(initial)))
	killSources := func(leave int) {
		alive := 0
		for _, a := range e.world.Asteroids {
			if a.Dead || !a.Tier.Source() {
				continue
			}
			if alive < leave {
				alive++
				continue
			}
			a.Dead = true
		}
	}

	killSources(keep + 1)
	e.Tick(Input{})
	if e.Phase() != PhasePlaying {
		t.Fatalf("phase = %v with %d of %d sources left", e.Phase(), keep+1, initial)
	}

	killSources(keep)
	e.Tick(Input{})
	if e.Phase() != PhaseSectorCleared {
		t.Fatalf("phase = %v, want sector-cleared", e.Phase())
	}
	e.Tick(Input{})

	if len(cleared) != 1 {
		t.Fatalf("cleared transitions = %d, want 1", len(cleared))
	}
	want := int(math.Round(100 * float64(initial-keep) / float64(initial)))
	if got := cleared[0].Stats.PercentDestroyed; got != want {
		t.Errorf("percent destroyed = %d, want %d", got, want)
	}

	if err := e.AdvanceSector(); err != nil {
		t.Fatalf("AdvanceSector: %v", err)
	}
	if e.Sector() != 2 || e.Phase() != PhasePlaying {
		t.Errorf("sector %d phase %v, want 2 playing", e.Sector(), e.Phase())
	}
	if e.initialSources < initial {
		t.Errorf("sector 2 has fewer sources (%d) than sector 1 (%d)", e.initialSources, initial)
	}
}

func TestGameOverOverridesClear(t *testing.T) {
	e := New(Options{Seed: 5})
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	for _, a := range e.world.Asteroids {
		a.Dead = true
	}
	e.world.Ship.Hull = 0

	e.Tick(Input{})
	if e.Phase() != PhaseGameOver {
		t.Errorf("phase = %v, want game-over", e.Phase())
	}
}

func TestDockAndUndock(t *testing.T) {
	e := New(Options{Seed: 9})
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	ship := e.world.Ship

	// Docking is disarmed until the ship leaves the station radius.
	ship.Vel = r2.Vec{}
	e.Tick(Input{})
	if e.Phase() != PhasePlaying {
		t.Fatalf("docked right after launch")
	}

	ship.Pos = r2.Vec{X: e.tun.Station.Radius + 50}
	e.Tick(Input{})
	ship.Pos = r2.Vec{}
	ship.Vel = r2.Vec{}
	e.Tick(Input{})
	if e.Phase() != PhaseDocked {
		t.Fatalf("phase = %v, want docked", e.Phase())
	}

	before := len(e.world.Asteroids)
	sector := e.Sector()
	if err := e.Undock(); err != nil {
		t.Fatalf("Undock: %v", err)
	}
	if e.Phase() != PhasePlaying || e.Sector() != sector {
		t.Errorf("undock changed sector or phase: %d %v", e.Sector(), e.Phase())
	}
	if len(e.world.Asteroids) != before {
		t.Errorf("undock re-seeded: %d -> %d asteroids", before, len(e.world.Asteroids))
	}
	if math.Abs(ship.Speed()-e.tun.Ship.LaunchSpeed) > 1e-9 {
		t.Errorf("launch speed = %v, want %v", ship.Speed(), e.tun.Ship.LaunchSpeed)
	}

	ship.Vel = r2.Vec{}
	e.Tick(Input{})
	if e.Phase() != PhasePlaying {
		t.Errorf("redocked before leaving the station")
	}
}

func TestPhaseActionsRejectWrongPhase(t *testing.T) {
	rec := newRecorder()
	e := New(Options{Audio: rec})

	checks := []struct {
		name string
		fn   func() error
	}{
		{"undock", e.Undock},
		{"advance", e.AdvanceSector},
		{"restart", e.Restart},
		{"menu", e.ToMenu},
		{"mine", e.DropMine},
		{"ammo", e.BuyAmmo},
	}
	for _, c := range checks {
		if err := c.fn(); !errors.Is(err, ErrWrongPhase) {
			t.Errorf("%s from menu = %v, want ErrWrongPhase", c.name, err)
		}
	}
	if rec.cues[CueError] != len(checks) {
		t.Errorf("error cues = %d, want %d", rec.cues[CueError], len(checks))
	}
	if err := e.Start(); err != nil {
		t.Errorf("Start: %v", err)
	}
	if err := e.Start(); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("second Start = %v, want ErrWrongPhase", err)
	}
}

func TestRestartResetsRun(t *testing.T) {
	e := New(Options{Seed: 2})
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	e.upgrades[CategoryEngine] = 4
	e.sector = 3
	e.world.Ship.Hull = 0
	e.Tick(Input{})
	if e.Phase() != PhaseGameOver {
		t.Fatalf("phase = %v, want game-over", e.Phase())
	}

	if err := e.Restart(); err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if e.Sector() != 1 || e.upgrades != NewUpgrades() {
		t.Errorf("restart kept progress: sector %d upgrades %v", e.Sector(), e.upgrades)
	}
	if ship := e.world.Ship; ship.Hull != ship.MaxHull {
		t.Errorf("hull = %v, want full", ship.Hull)
	}
}

func TestIdleOnlyAgesParticles(t *testing.T) {
	rec := newRecorder()
	e := New(Options{Audio: rec})
	rec.loops[LoopLaser] = true
	e.world.AddParticle(object.NewParticle(r2.Vec{}, r2.Vec{X: 1}, 2, 1, object.ColorSpark))
	e.world.flush()

	e.Tick(Input{Thrust: true, Primary: true})
	if e.world.Ship.Thrusting {
		t.Errorf("ship controlled in the menu")
	}
	if len(e.world.Particles) != 1 {
		t.Errorf("particles = %d, want 1", len(e.world.Particles))
	}
	if rec.loops[LoopLaser] {
		t.Errorf("laser loop left on in the menu")
	}
	e.Tick(Input{})
	if len(e.world.Particles) != 0 {
		t.Errorf("expired particle kept")
	}
}

func TestSeededEnginesMatch(t *testing.T) {
	a := New(Options{Seed: 42})
	b := New(Options{Seed: 42})
	if err := a.Start(); err != nil {
		t.Fatal(err)
	}
	if err := b.Start(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 120; i++ {
		in := Input{Thrust: i%3 == 0, Right: i%7 == 0, Primary: true}
		a.Tick(in)
		b.Tick(in)
	}
	sa, sb := a.Snapshot(), b.Snapshot()
	if len(sa.Asteroids) != len(sb.Asteroids) || sa.Ship.Pos != sb.Ship.Pos {
		t.Errorf("same seed diverged")
	}
}

func TestBoundsHoldUnderRandomPlay(t *testing.T) {
	e := New(Options{Seed: 11})
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(99))

	for i := 0; i < 3000; i++ {
		switch e.Phase() {
		case PhaseGameOver:
			_ = e.Restart()
		case PhaseDocked:
			_, _ = e.SellOre()
			_ = e.Repair()
			_ = e.Undock()
		case PhaseSectorCleared:
			_ = e.AdvanceSector()
		case PhaseMenu, PhasePlaying:
		}
		if rng.Intn(60) == 0 {
			_ = e.DropMine()
		}
		e.Tick(Input{
			Thrust:    rng.Intn(2) == 0,
			Reverse:   rng.Intn(8) == 0,
			Left:      rng.Intn(4) == 0,
			Right:     rng.Intn(4) == 0,
			Brake:     rng.Intn(10) == 0,
			Primary:   rng.Intn(2) == 0,
			Secondary: rng.Intn(3) == 0,
			Pointer:   r2.Vec{X: rng.Float64()*2 - 1, Y: rng.Float64()*2 - 1},
			Scroll:    float64(rng.Intn(3) - 1),
		})

		s := e.world.Ship
		if s.Hull < 0 || s.Hull > s.MaxHull ||
			s.Shield < 0 || s.Shield > s.MaxShield ||
			s.Cargo < 0 || s.Cargo > s.MaxCargo ||
			s.Ammo < 0 || s.Invuln < 0 || s.Credits < 0 {
			t.Fatalf("tick %d: ship out of bounds: %+v", i, *s)
		}
		for _, a := range e.world.Asteroids {
			if a.Dead {
				t.Fatalf("tick %d: dead asteroid left in the world", i)
			}
		}
		for _, m := range e.world.Mines {
			if m.Timer < 0 {
				t.Fatalf("tick %d: mine timer %d", i, m.Timer)
			}
		}
		if z := e.camera.Zoom; z < e.tun.Camera.MinZoom || z > e.tun.Camera.MaxZoom {
			t.Fatalf("tick %d: zoom %v out of range", i, z)
		}
	}
}

func TestTractorPullsOnlyOreInRange(t *testing.T) {
	tests := []struct {
		name   string
		tier   object.Tier
		offset r2.Vec
		pulled bool
	}{
		{"ore inside radius", object.TierOre, r2.Vec{X: -100, Y: 10}, true},
		{"ore outside radius", object.TierOre, r2.Vec{X: 500}, false},
		{"chunk inside radius", object.TierChunk, r2.Vec{X: 100}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newPlaying(t, Options{})
			ship := e.world.Ship
			a := e.addAsteroid(tt.tier, r2.Add(ship.Pos, tt.offset), r2.Vec{})

			e.Tick(Input{Secondary: true})

			if !tt.pulled {
				if a.Vel != (r2.Vec{}) {
					t.Errorf("vel = %v, want zero", a.Vel)
				}
				return
			}
			if r2.Dot(a.Vel, r2.Sub(ship.Pos, a.Pos)) <= 0 {
				t.Errorf("vel = %v does not point toward the ship", a.Vel)
			}
		})
	}
}

func TestReverseThrustIsHalf(t *testing.T) {
	speedAfter := func(in Input) float64 {
		e := newPlaying(t, Options{})
		e.Tick(in)
		return e.world.Ship.Speed()
	}
	forward := speedAfter(Input{Thrust: true})
	reverse := speedAfter(Input{Reverse: true})
	both := speedAfter(Input{Thrust: true, Reverse: true})

	if forward == 0 {
		t.Fatal("thrust produced no speed")
	}
	if got := reverse / forward; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("reverse/thrust = %v, want 0.5", got)
	}
	if both != forward {
		t.Errorf("thrust with reverse held = %v, want %v", both, forward)
	}
}

func TestRotationScalesWithHandling(t *testing.T) {
	tests := []struct {
		name  string
		level int
		in    Input
		sign  float64
	}{
		{"right base", 1, Input{Right: true}, 1},
		{"left base", 1, Input{Left: true}, -1},
		{"right level 3", 3, Input{Right: true}, 1},
		{"left level 5", 5, Input{Left: true}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newPlaying(t, Options{})
			e.upgrades[CategoryHandling] = tt.level
			ship := e.world.Ship
			ship.Heading = 0

			e.Tick(tt.in)

			s := e.tun.Ship
			want := tt.sign * (s.RotationBase + s.RotationPerLevel*float64(tt.level-1))
			if math.Abs(ship.Heading-want) > 1e-9 {
				t.Errorf("heading = %v, want %v", ship.Heading, want)
			}
		})
	}
}
