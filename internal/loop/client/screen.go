package client

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tomz197/voidminer/internal/loop/config"
	"github.com/tomz197/voidminer/internal/loop/engine"
	"github.com/tomz197/voidminer/internal/object"
)

// mineRadius is the drawn size of a planted charge in world units.
const mineRadius = 7

// view carries the per-frame world-to-canvas transform.
type view struct {
	cam   object.Camera
	size  r2.Vec
	shake r2.Vec
}

func (v view) point(p r2.Vec) r2.Vec {
	return r2.Add(v.cam.WorldToScreen(p), v.shake)
}

func (v view) length(l float64) float64 {
	return l * v.cam.Zoom
}

// visible reports whether a circle at world p with radius r touches the viewport.
func (v view) visible(p r2.Vec, r float64) bool {
	s := v.point(p)
	r = v.length(r)
	return s.X+r >= 0 && s.Y+r >= 0 && s.X-r <= v.size.X && s.Y-r <= v.size.Y
}

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	snap := c.engine.Snapshot()

	// On phase or inactivity transitions, do a full terminal clear
	// so UI elements from the previous screen don't persist.
	phaseChanged := snap.Phase != c.state.prevPhase || c.state.firstDraw
	inactiveChanged := c.state.isInactive != c.state.wasInactive
	if phaseChanged || inactiveChanged {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
		c.state.prevPhase = snap.Phase
		c.state.wasInactive = c.state.isInactive
		c.state.firstDraw = false
	}

	c.canvas.Clear()
	c.drawWorld(&snap)

	// Render canvas to terminal
	c.canvas.Render(c.chunkWriter)

	// Draw border when terminal exceeds max render resolution
	c.canvas.RenderBorder(c.chunkWriter)

	c.drawUI(&snap)

	return c.chunkWriter.Flush()
}

// drawWorld rasterises the snapshot onto the canvas.
func (c *Client) drawWorld(snap *engine.Snapshot) {
	tun := c.engine.Tuning()
	v := view{cam: snap.Camera, size: snap.View}
	if snap.Shake > 0 {
		v.shake = r2.Vec{
			X: (c.shakeRNG.Float64()*2 - 1) * snap.Shake,
			Y: (c.shakeRNG.Float64()*2 - 1) * snap.Shake,
		}
	}

	// Station and its force field at the origin.
	if v.visible(r2.Vec{}, tun.Station.FieldRadius) {
		c.canvas.DrawCircle(v.point(r2.Vec{}), v.length(tun.Station.FieldRadius), colorField, true)
		c.canvas.DrawCircle(v.point(r2.Vec{}), v.length(tun.Station.Radius), colorStation, false)
		c.canvas.DrawCircle(v.point(r2.Vec{}), v.length(tun.Station.Radius*0.3), colorStation, false)
	}

	for i := range snap.Asteroids {
		a := &snap.Asteroids[i]
		if !v.visible(a.Pos, a.Radius) {
			continue
		}
		outline := a.Outline()
		for j, p := range outline {
			outline[j] = v.point(p)
		}
		c.canvas.DrawPolygon(outline, a.Color)
	}

	for i := range snap.Mines {
		c.drawMine(v, &snap.Mines[i], snap.Tick)
	}

	for i := range snap.Particles {
		p := &snap.Particles[i]
		if !v.visible(p.Pos, p.Radius) {
			continue
		}
		color := fade(p.Color, p.Alpha())
		if r := v.length(p.Radius); r >= 2 {
			c.canvas.DrawCircle(v.point(p.Pos), r, color, false)
		} else {
			c.canvas.SetFloat(v.point(p.Pos), color)
		}
	}

	if snap.Phase == engine.PhaseMenu {
		return
	}

	if b := snap.Beam; b.Active {
		end := r2.Add(b.Origin, r2.Vec{X: math.Cos(b.Angle) * b.Length, Y: math.Sin(b.Angle) * b.Length})
		color := colorBeamIdle
		if b.OnRock {
			color = colorBeam
		}
		c.canvas.DrawLine(v.point(b.Origin), v.point(end), color)
	}

	c.drawShip(v, &snap.Ship, snap.Tick)
}

func (c *Client) drawMine(v view, m *object.Mine, tick uint64) {
	if !v.visible(m.Pos, c.engine.Tuning().Mine.BlastRadius) {
		return
	}
	center := v.point(m.Pos)
	switch m.State {
	case object.MineArmed:
		if (tick/config.MineBlinkFrames)%2 == 0 {
			c.canvas.DrawCircle(center, v.length(mineRadius), colorMine, false)
		} else {
			c.canvas.SetFloat(center, colorMine)
		}
	case object.MinePucker:
		c.canvas.DrawCircle(center, v.length(mineRadius), colorPucker, false)
		c.canvas.DrawCircle(center, v.length(c.engine.Tuning().Mine.BlastRadius), colorPucker, true)
	case object.MineDetonating:
		c.canvas.DrawCircle(center, v.length(c.engine.Tuning().Mine.BlastRadius), colorBlast, false)
	}
}

func (c *Client) drawShip(v view, s *object.Ship, tick uint64) {
	tun := c.engine.Tuning()
	if s.Tractoring {
		c.canvas.DrawCircle(v.point(s.Pos), v.length(tun.Tractor.Radius), colorTractor, true)
	}
	// Flicker while invulnerable.
	if s.Invuln > 0 && (tick/config.InvulnBlinkFrames)%2 == 1 {
		return
	}
	outline := s.Outline()
	points := make([]r2.Vec, len(outline))
	for i, p := range outline {
		points[i] = v.point(p)
	}
	c.canvas.DrawPolygon(points, colorShip)
	if s.Shield > 0 {
		c.canvas.DrawCircle(v.point(s.Pos), v.length(s.Radius*1.8), fade(colorShield, s.Shield/math.Max(1, s.MaxShield)), true)
	}
}

// drawUI draws the game UI overlay.
func (c *Client) drawUI(snap *engine.Snapshot) {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	centerX := termWidth / 2
	centerY := termHeight / 2

	if c.state.shutdown {
		c.drawShutdownScreen(centerX, centerY)
		return
	}

	if c.state.isInactive {
		c.drawInactivityScreen(centerX, centerY)
		return
	}

	switch snap.Phase {
	case engine.PhaseMenu:
		c.drawStartScreen(centerX, centerY)
	case engine.PhasePlaying:
		c.drawPlayingHUD(termWidth, termHeight, snap)
	case engine.PhaseDocked:
		c.drawPlayingHUD(termWidth, termHeight, snap)
		c.drawShop(centerX, centerY, snap)
	case engine.PhaseSectorCleared:
		c.drawClearedScreen(centerX, centerY, snap)
	case engine.PhaseGameOver:
		c.drawGameOverScreen(centerX, centerY, snap)
	}
}

// writeText writes s at a 1-based canvas position and marks the cells it
// covers for repainting next frame.
func (c *Client) writeText(col, row int, s string) {
	if row < 1 || row > c.canvas.TerminalHeight() || col < 1 {
		return
	}
	c.chunkWriter.WriteAt(col, row, s)
	c.canvas.MarkTextDirty(col, row, lipgloss.Width(s))
}

// writeCentered writes s centred on column centerX.
func (c *Client) writeCentered(centerX, row int, s string) {
	c.writeText(centerX-lipgloss.Width(s)/2, row, s)
}

// writeBlock writes a multi-line block centred on (centerX, centerY).
func (c *Client) writeBlock(centerX, centerY int, block string) {
	lines := strings.Split(block, "\n")
	width := lipgloss.Width(block)
	top := centerY - len(lines)/2
	for i, line := range lines {
		c.writeText(centerX-width/2, top+i, line)
	}
}

func blinkOn() bool {
	return time.Now().UnixMilli()/config.PromptBlinkMillis%2 == 0
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(centerX, centerY int) {
	st := c.styles
	c.writeCentered(centerX, centerY-2, st.danger.Render("INACTIVITY WARNING"))

	msg := fmt.Sprintf(
		"You have been inactive for too long. You will be disconnected in %d seconds.",
		int(config.InactivityDisconnectUser-time.Since(c.lastInput).Seconds()),
	)
	c.writeCentered(centerX, centerY, st.value.Render(msg))
	c.writeCentered(centerX, centerY+2, st.dim.Render("Press any key to continue"))
}

var titleArt = []string{
	` __   _____ ___ ___  __  __ ___ _  _ ___ ___  `,
	` \ \ / / _ \_ _|   \|  \/  |_ _| \| | __| _ \ `,
	`  \ V / (_) | || |) | |\/| || || .' | _||   / `,
	`   \_/ \___/___|___/|_|  |_|___|_|\_|___|_|_\ `,
}

// drawStartScreen draws the title screen with controls and the leaderboard.
func (c *Client) drawStartScreen(centerX, centerY int) {
	st := c.styles
	top := centerY - 10
	for i, line := range titleArt {
		c.writeCentered(centerX, top+i, st.title.Render(line))
	}
	c.writeCentered(centerX, top+len(titleArt)+1, st.label.Render("~ deep-field asteroid mining ~"))

	controls := []string{
		"W / Up  . . . . . . Thrust",
		"S / Down  . . . . . Reverse",
		"A D / < >  . . . .  Rotate",
		"X  . . . . . . . . .  Brake",
		"SPACE / click . . .  Laser",
		"T / right click . . Tractor",
		"E  . . . . . . .  Drop mine",
		"+ - / wheel  . . . . . Zoom",
		"Q  . . . . . . . . . . Quit",
	}
	row := top + len(titleArt) + 3
	c.writeCentered(centerX, row, st.value.Render("Controls"))
	for i, line := range controls {
		c.writeCentered(centerX, row+1+i, st.label.Render(line))
	}
	row += len(controls) + 2

	if len(c.state.leaderboard) > 0 {
		c.writeCentered(centerX, row, st.value.Render("Top pilots"))
		for i, p := range c.state.leaderboard {
			line := fmt.Sprintf("%d. %-*s sector %-3d ore %d", i+1, config.MaxPilotNameLength, p.Name, p.BestSector, p.TotalOre)
			style := st.label
			if p.Name == c.pilot {
				style = st.good
			}
			c.writeCentered(centerX, row+1+i, style.Render(line))
		}
		row += len(c.state.leaderboard) + 2
	}

	if blinkOn() {
		c.writeCentered(centerX, row, st.title.Render(">>  Press SPACE to Launch  <<"))
	}
}

// drawPlayingHUD draws the in-game HUD.
// Text fields use fixed-width formatting so shrinking values don't leave
// residual characters on screen (since we no longer clear every frame).
func (c *Client) drawPlayingHUD(termWidth, termHeight int, snap *engine.Snapshot) {
	st := c.styles
	ship := &snap.Ship

	left := st.label.Render("SECTOR ") + st.value.Render(fmt.Sprintf("%-3d", snap.Sector)) +
		st.label.Render(" SOURCES ") + st.value.Render(fmt.Sprintf("%3d/%-3d", snap.Sources, snap.InitialSources)) +
		st.label.Render(" CLEARED ") + st.value.Render(fmt.Sprintf("%3d%%", snap.Progress.PercentDestroyed))
	c.writeText(2, 1, left)

	hullStyle := st.good
	if ship.Hull < ship.MaxHull*0.3 {
		hullStyle = st.danger
	}
	right := st.label.Render("HULL ") + gauge(ship.Hull, ship.MaxHull, 12, hullStyle, st.dim)
	if ship.MaxShield > 0 {
		right += st.label.Render("  SHIELD ") + gauge(ship.Shield, ship.MaxShield, 8, st.value, st.dim)
	}
	c.writeText(termWidth-lipgloss.Width(right)-1, 1, right)

	cargoStyle := st.value
	if ship.Cargo >= ship.MaxCargo {
		cargoStyle = st.warn
	}
	bottom := st.label.Render("ORE ") + cargoStyle.Render(fmt.Sprintf("%3d/%-3d", ship.Cargo, ship.MaxCargo)) +
		st.label.Render(" CR ") + st.value.Render(fmt.Sprintf("%-7d", ship.Credits)) +
		st.label.Render(" MINES ") + st.value.Render(fmt.Sprintf("%2d/%-2d", ship.Ammo, ship.MaxAmmo))
	c.writeText(2, termHeight, bottom)

	dist := r2.Norm(ship.Pos)
	nav := st.label.Render("STATION ") + st.value.Render(fmt.Sprintf("%-6.0f", dist)) +
		st.label.Render(" ZOOM ") + st.value.Render(fmt.Sprintf("%.1fx", snap.Camera.Zoom))
	c.writeText(termWidth-lipgloss.Width(nav)-1, termHeight, nav)

	if c.state.message != "" && snap.Phase == engine.PhasePlaying {
		c.writeCentered(termWidth/2, 3, st.warn.Render(c.state.message))
	}
}

// drawShop draws the station shop panel.
func (c *Client) drawShop(centerX, centerY int, snap *engine.Snapshot) {
	st := c.styles
	tun := c.engine.Tuning()
	ship := &snap.Ship

	var b strings.Builder
	b.WriteString(st.title.Render("STATION SHOP"))
	b.WriteString(st.label.Render(fmt.Sprintf("   credits %d", ship.Credits)))
	b.WriteString("\n\n")

	for item := shopItem(0); item < shopItemCount; item++ {
		var name, detail string
		if cat, ok := item.category(); ok {
			name = fmt.Sprintf("Upgrade %s", cat)
			level := snap.Upgrades.Level(cat)
			if cost, ok := c.engine.UpgradeCost(cat); ok {
				detail = fmt.Sprintf("lvl %2d  %6d cr", level, cost)
			} else {
				detail = fmt.Sprintf("lvl %2d      MAX", level)
			}
		} else {
			switch item {
			case shopSellOre:
				name = "Sell ore"
				detail = fmt.Sprintf("%3d ore  +%5d cr", ship.Cargo, ship.Cargo*tun.Economy.OrePrice)
			case shopBuyAmmo:
				name = "Buy mine"
				detail = fmt.Sprintf("%2d/%-2d  %6d cr", ship.Ammo, ship.MaxAmmo, tun.Economy.AmmoPrice)
			case shopRepair:
				name = "Repair hull"
				missing := math.Ceil(ship.MaxHull - ship.Hull)
				detail = fmt.Sprintf("%3.0f hp  %6.0f cr", missing, missing*float64(tun.Economy.RepairPrice))
			}
		}

		line := fmt.Sprintf("%d  %-18s %18s", item+1, name, detail)
		if item == c.state.shopCursor {
			b.WriteString(st.selected.Render(line))
		} else {
			b.WriteString(st.value.Render(line))
		}
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	switch {
	case c.state.message != "" && c.state.messageBad:
		b.WriteString(st.danger.Render(c.state.message))
	case c.state.message != "":
		b.WriteString(st.good.Render(c.state.message))
	default:
		b.WriteString(" ")
	}
	b.WriteString("\n\n")
	b.WriteString(st.dim.Render("up/down select · ENTER or 1-9 buy · SPACE launch"))

	c.writeBlock(centerX, centerY, st.panel.Render(b.String()))
}

// drawClearedScreen draws the sector summary.
func (c *Client) drawClearedScreen(centerX, centerY int, snap *engine.Snapshot) {
	st := c.styles
	t := c.state.lastCleared

	var b strings.Builder
	b.WriteString(st.title.Render(fmt.Sprintf("SECTOR %d CLEARED", snap.Sector)))
	b.WriteString("\n\n")
	b.WriteString(st.label.Render("sources destroyed  ") + st.value.Render(fmt.Sprintf("%d%%", t.Stats.PercentDestroyed)))
	b.WriteByte('\n')
	b.WriteString(st.label.Render("ore collected      ") + st.value.Render(fmt.Sprintf("%d", t.Stats.OreCollected)))
	b.WriteByte('\n')
	b.WriteString(st.label.Render("credits            ") + st.value.Render(fmt.Sprintf("%d", snap.Ship.Credits)))
	b.WriteString("\n\n")
	prompt := " "
	if blinkOn() {
		prompt = st.title.Render(">>  Press SPACE for the next sector  <<")
	}
	b.WriteString(prompt)

	c.writeBlock(centerX, centerY, st.panel.Render(b.String()))
}

var gameOverArt = []string{
	`   ___   _   __  __ ___    _____   _____ ___  `,
	`  / __| /_\ |  \/  | __|  / _ \ \ / / __| _ \ `,
	` | (_ |/ _ \| |\/| | _|  | (_) \ V /| _||   / `,
	`  \___/_/ \_\_|  |_|___|  \___/ \_/ |___|_|_\ `,
}

// drawGameOverScreen draws the end-of-run screen.
func (c *Client) drawGameOverScreen(centerX, centerY int, snap *engine.Snapshot) {
	st := c.styles
	top := centerY - 6
	for i, line := range gameOverArt {
		c.writeCentered(centerX, top+i, st.danger.Render(line))
	}

	row := top + len(gameOverArt) + 1
	c.writeCentered(centerX, row, st.label.Render("reached sector ")+st.value.Render(fmt.Sprintf("%d", snap.Sector)))
	if best := c.state.personalBest; best != nil {
		c.writeCentered(centerX, row+1, st.label.Render("best sector ")+st.value.Render(fmt.Sprintf("%d", best.BestSector))+
			st.label.Render("  total ore ")+st.value.Render(fmt.Sprintf("%d", best.TotalOre)))
	}

	if blinkOn() {
		c.writeCentered(centerX, row+3, st.title.Render(">>  Press SPACE to Restart  <<"))
	}
	c.writeCentered(centerX, row+4, st.dim.Render("ESC for the menu · Q to quit"))
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(centerX, centerY int) {
	st := c.styles
	c.writeCentered(centerX, centerY-3, st.danger.Render("SERVER SHUTTING DOWN"))
	c.writeCentered(centerX, centerY-1, st.value.Render("The server is restarting for maintenance."))
	c.writeCentered(centerX, centerY, st.value.Render("Please reconnect in a moment."))

	remaining := int(c.state.shutdownTimer) + 1
	c.writeCentered(centerX, centerY+2, st.label.Render(fmt.Sprintf("Disconnecting in %d seconds...", remaining)))
	c.writeCentered(centerX, centerY+4, st.dim.Render("Press Q to disconnect now"))
}
