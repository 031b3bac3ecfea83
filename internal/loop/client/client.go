// Package client runs one pilot's game in a terminal: it pumps the engine at
// a fixed rate, maps key and mouse input onto engine controls, renders
// snapshots and records sector results.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"golang.org/x/time/rate"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/tomz197/voidminer/internal/draw"
	"github.com/tomz197/voidminer/internal/input"
	"github.com/tomz197/voidminer/internal/loop/config"
	"github.com/tomz197/voidminer/internal/loop/engine"
	"github.com/tomz197/voidminer/internal/store"
	"github.com/tomz197/voidminer/internal/telemetry"
)

// Client handles rendering and input for a single pilot.
type Client struct {
	engine       *engine.Engine
	state        *ClientState
	canvas       *draw.Canvas
	chunkWriter  *draw.ChunkWriter // Accumulates UI text for chunked output
	styles       styles
	reader       *bufio.Reader
	writer       io.Writer
	inputStream  *input.Stream
	lastInput    time.Time
	pilot        string
	termSizeFunc draw.TermSizeFunc
	limiter      *rate.Limiter
	shakeRNG     *rand.Rand
	mouse        bool

	store   *store.Store
	ledger  *telemetry.Ledger
	logger  *log.Logger
	pending []engine.Transition
	forward func(engine.Transition)
}

// Options configures the client.
type Options struct {
	Engine       engine.Options
	Store        *store.Store      // Optional pilot records
	Ledger       *telemetry.Ledger // Optional sector ledger
	Pilot        string
	TermSizeFunc draw.TermSizeFunc
	Mouse        bool // Request pointer reporting from the terminal
	Logger       *log.Logger
}

// New creates a client reading keys from r and drawing to w.
func New(r *bufio.Reader, w io.Writer, opts Options) *Client {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	pilot := opts.Pilot
	if pilot == "" {
		pilot = config.DefaultPilotName
	}
	if len(pilot) > config.MaxPilotNameLength {
		pilot = pilot[:config.MaxPilotNameLength]
	}

	c := &Client{
		state:        NewClientState(),
		reader:       r,
		writer:       w,
		lastInput:    time.Now(),
		pilot:        pilot,
		termSizeFunc: termSizeFunc,
		shakeRNG:     rand.New(rand.NewSource(opts.Engine.Seed)),
		mouse:        opts.Mouse,
		store:        opts.Store,
		ledger:       opts.Ledger,
		logger:       logger.With("pilot", pilot),
		forward:      opts.Engine.OnTransition,
	}

	engineOpts := opts.Engine
	engineOpts.OnTransition = c.onTransition
	if engineOpts.Logger == nil {
		engineOpts.Logger = c.logger
	}
	c.engine = engine.New(engineOpts)
	c.limiter = rate.NewLimiter(rate.Every(c.engine.Tuning().Frame.TickTime()), 1)

	renderer := lipgloss.NewRenderer(w)
	renderer.SetColorProfile(termenv.TrueColor)
	c.styles = newStyles(renderer)

	// Canvas logical space is the engine viewport, so camera output maps 1:1.
	view := c.engine.Snapshot().View
	termWidth, termHeight, _ := termSizeFunc()
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)
	c.canvas = draw.NewScaledCanvas(renderWidth, renderHeight, view.X, view.Y)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter = draw.NewChunkWriter(w, offsetCol, offsetRow)
	c.inputStream = input.StartStream(r)
	return c
}

// Engine exposes the simulation the client drives.
func (c *Client) Engine() *engine.Engine {
	return c.engine
}

// Run starts the client loop. It blocks until the pilot quits, the input
// closes or, after ctx is cancelled, the shutdown notice has been shown.
func (c *Client) Run(ctx context.Context) error {
	draw.Setup(c.writer)
	defer draw.Restore(c.writer)
	if c.mouse {
		input.EnableMouse(c.writer)
		defer input.DisableMouse(c.writer)
	}

	c.refreshLeaderboard(ctx)

	// Frames keep pumping after ctx is cancelled so the shutdown notice can
	// be drawn; the notice itself ends the loop.
	pump := context.WithoutCancel(ctx)
	lastTime := time.Now()

	for c.state.Running {
		if err := c.limiter.Wait(pump); err != nil {
			return fmt.Errorf("frame pump: %w", err)
		}
		frameStart := time.Now()
		c.state.delta = frameStart.Sub(lastTime)
		lastTime = frameStart

		if ctx.Err() != nil && !c.state.shutdown {
			c.state.shutdown = true
			c.state.shutdownTimer = config.ShutdownDisplaySeconds
		}

		c.processInput()
		c.updateScreen()

		if c.state.shutdown {
			c.updateShutdownState()
		} else {
			c.update()
		}
		c.handleTransitions(pump)
		c.state.tickMessage()

		if err := c.drawFrame(); err != nil {
			return err
		}
	}

	draw.ClearScreen(c.writer)
	return nil
}

// processInput reads input and tracks inactivity.
func (c *Client) processInput() {
	c.state.prevInput = c.state.Input
	c.state.Input = input.ReadInput(c.inputStream)

	if len(c.state.Input.Pressed) > 0 || c.state.Input.Mouse != c.state.prevInput.Mouse {
		c.lastInput = time.Now()
		c.state.isInactive = false
	} else if time.Since(c.lastInput).Seconds() > config.InactivityDisconnectUser {
		c.state.Running = false
	} else if time.Since(c.lastInput).Seconds() > config.InactivityWarnUser {
		c.state.isInactive = true
	}

	if c.state.Input.Quit || c.state.Input.Closed {
		c.state.Running = false
	}
}

// update routes the frame's input to the current phase and advances the
// simulation one tick.
func (c *Client) update() {
	in := c.state.Input
	start := in.Enter || in.Tapped(' ')

	switch c.engine.Phase() {
	case engine.PhaseMenu:
		if start {
			c.engine.PlayCue(engine.CueClick)
			c.declined("start", c.engine.Start())
			c.inputStream.Reset()
		}
	case engine.PhasePlaying:
		if in.Mine {
			c.declined("drop mine", c.engine.DropMine())
		}
	case engine.PhaseDocked:
		c.updateDocked()
	case engine.PhaseSectorCleared:
		if start {
			c.engine.PlayCue(engine.CueClick)
			c.declined("advance sector", c.engine.AdvanceSector())
			c.inputStream.Reset()
		}
	case engine.PhaseGameOver:
		switch {
		case start:
			c.engine.PlayCue(engine.CueClick)
			c.declined("restart", c.engine.Restart())
			c.inputStream.Reset()
		case in.Escape:
			c.engine.PlayCue(engine.CueClick)
			c.declined("menu", c.engine.ToMenu())
		}
	}

	c.engine.Tick(c.controls())
}

// declined logs an engine action that was refused. The engine has already
// played the matching cue.
func (c *Client) declined(action string, err error) {
	if err != nil {
		c.logger.Debug("action declined", "action", action, "err", err)
	}
}

// controls maps the frame's keys and pointer onto engine input.
func (c *Client) controls() engine.Input {
	in := c.state.Input
	if c.engine.Phase() != engine.PhasePlaying {
		return engine.Input{}
	}

	ctl := engine.Input{
		Thrust:    in.Up,
		Reverse:   in.Down,
		Left:      in.Left,
		Right:     in.Right,
		Brake:     in.Brake,
		Primary:   in.Laser || in.Mouse.Left,
		Secondary: in.Tractor || in.Mouse.Right,
		Scroll:    float64(in.Scroll),
	}
	if in.Mouse.Seen {
		view := c.engine.Snapshot().View
		p := c.canvas.TerminalToLogical(in.Mouse.X, in.Mouse.Y)
		ctl.Pointer = r2.Sub(p, r2.Scale(0.5, view))
	}
	return ctl
}

// updateDocked drives the station shop.
func (c *Client) updateDocked() {
	in := c.state.Input
	up, down := c.state.pressedEdge()

	switch {
	case up:
		c.state.shopCursor = (c.state.shopCursor + shopItemCount - 1) % shopItemCount
		c.engine.PlayCue(engine.CueHover)
	case down:
		c.state.shopCursor = (c.state.shopCursor + 1) % shopItemCount
		c.engine.PlayCue(engine.CueHover)
	case in.Number >= 1 && in.Number <= int(shopItemCount):
		c.state.shopCursor = shopItem(in.Number - 1)
		c.buy(c.state.shopCursor)
	case in.Enter:
		c.buy(c.state.shopCursor)
	case in.Tapped(' ') || in.Escape:
		c.engine.PlayCue(engine.CueClick)
		c.declined("undock", c.engine.Undock())
		c.inputStream.Reset()
	}
}

// buy performs one shop action and reports the outcome on the status line.
func (c *Client) buy(item shopItem) {
	var err error
	var msg string

	if cat, ok := item.category(); ok {
		if err = c.engine.ApplyUpgrade(cat); err == nil {
			msg = fmt.Sprintf("%s upgraded", cat)
		}
	} else {
		switch item {
		case shopSellOre:
			var earned int
			if earned, err = c.engine.SellOre(); err == nil {
				msg = fmt.Sprintf("sold ore for %d cr", earned)
			}
		case shopBuyAmmo:
			if err = c.engine.BuyAmmo(); err == nil {
				msg = "mine loaded"
			}
		case shopRepair:
			if err = c.engine.Repair(); err == nil {
				msg = "hull repaired"
			}
		}
	}

	if err != nil {
		c.state.setMessage(declineText(err), true, config.MessageSeconds)
		return
	}
	c.state.setMessage(msg, false, config.MessageSeconds)
}

// declineText turns a declined shop action into a status line.
func declineText(err error) string {
	switch {
	case errors.Is(err, engine.ErrInsufficientCredits):
		return "not enough credits"
	case errors.Is(err, engine.ErrMaxLevel):
		return "already at max level"
	case errors.Is(err, engine.ErrAmmoFull):
		return "mine rack is full"
	case errors.Is(err, engine.ErrNoCargo):
		return "cargo hold is empty"
	case errors.Is(err, engine.ErrHullFull):
		return "hull needs no repair"
	default:
		return err.Error()
	}
}

// onTransition queues phase changes raised during a tick.
func (c *Client) onTransition(t engine.Transition) {
	c.pending = append(c.pending, t)
	if c.forward != nil {
		c.forward(t)
	}
}

// handleTransitions records finished sectors and runs.
func (c *Client) handleTransitions(ctx context.Context) {
	for _, t := range c.pending {
		switch t.To {
		case engine.PhaseSectorCleared:
			c.state.lastCleared = t
			c.record(t, "cleared")
			if c.store != nil {
				if err := c.store.RecordSector(ctx, c.pilot, t.Sector, t.Stats.OreCollected); err != nil {
					c.logger.Warn("recording sector", "err", err)
				}
			}
		case engine.PhaseGameOver:
			c.record(t, "game-over")
			if c.store != nil {
				if err := c.store.RecordRun(ctx, c.pilot, t.Stats.OreCollected); err != nil {
					c.logger.Warn("recording run", "err", err)
				}
			}
			c.refreshLeaderboard(ctx)
		case engine.PhaseDocked:
			c.state.shopCursor = shopEngine
			c.state.setMessage("docked at station", false, config.MessageSeconds)
		case engine.PhaseMenu:
			c.refreshLeaderboard(ctx)
		}
	}
	clear(c.pending)
	c.pending = c.pending[:0]
}

// record appends a ledger row for t.
func (c *Client) record(t engine.Transition, result string) {
	snap := c.engine.Snapshot()
	err := c.ledger.Write(telemetry.Entry{
		Pilot:            c.pilot,
		Sector:           t.Sector,
		Result:           result,
		PercentDestroyed: t.Stats.PercentDestroyed,
		OreCollected:     t.Stats.OreCollected,
		Credits:          snap.Ship.Credits,
		Hull:             int(snap.Ship.Hull),
		Ticks:            snap.Tick,
	})
	if err != nil {
		c.logger.Warn("writing ledger", "err", err)
	}
}

// refreshLeaderboard reloads the top pilots and the pilot's own record.
func (c *Client) refreshLeaderboard(ctx context.Context) {
	if c.store == nil {
		return
	}
	top, err := c.store.Top(ctx, config.LeaderboardSize)
	if err != nil {
		c.logger.Warn("loading leaderboard", "err", err)
		return
	}
	c.state.leaderboard = top

	p, err := c.store.Get(ctx, c.pilot)
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.state.personalBest = nil
	case err != nil:
		c.logger.Warn("loading pilot", "err", err)
	default:
		c.state.personalBest = &p
	}
}

// updateScreen handles terminal resize, clamping to max render resolution.
// On actual size changes, clears the terminal to remove residual pixels
// outside the new canvas area (e.g. old borders or offset content).
func (c *Client) updateScreen() {
	termWidth, termHeight, err := c.termSizeFunc()
	if err != nil {
		return
	}
	renderWidth, renderHeight, offsetCol, offsetRow := clampTermSize(termWidth, termHeight)

	if renderWidth != c.canvas.TerminalWidth() || renderHeight != c.canvas.TerminalHeight() ||
		offsetCol != c.canvas.OffsetCol() || offsetRow != c.canvas.OffsetRow() {
		draw.ClearScreen(c.writer)
		c.canvas.ForceRedraw()
	}

	c.canvas.Resize(renderWidth, renderHeight)
	c.canvas.SetOffset(offsetCol, offsetRow)
	c.chunkWriter.SetOffset(offsetCol, offsetRow)
}

// clampTermSize clamps terminal dimensions to the max render resolution and computes
// the centering offset for the render area.
func clampTermSize(termWidth, termHeight int) (renderWidth, renderHeight, offsetCol, offsetRow int) {
	renderWidth = min(termWidth, config.MaxTermWidth)
	renderHeight = min(termHeight, config.MaxTermHeight)
	offsetCol = (termWidth - renderWidth) / 2
	offsetRow = (termHeight - renderHeight) / 2
	return
}

// updateShutdownState handles the shutdown screen countdown.
func (c *Client) updateShutdownState() {
	c.engine.Tick(engine.Input{})
	c.state.shutdownTimer -= c.state.delta.Seconds()
	if c.state.shutdownTimer <= 0 {
		c.state.Running = false
	}
}
