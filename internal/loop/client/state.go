package client

import (
	"time"

	"github.com/tomz197/voidminer/internal/input"
	"github.com/tomz197/voidminer/internal/loop/engine"
	"github.com/tomz197/voidminer/internal/store"
)

// shopItem is one purchasable line in the docked shop.
type shopItem int

const (
	shopEngine shopItem = iota
	shopHandling
	shopHull
	shopCargo
	shopLaser
	shopShield
	shopSellOre
	shopBuyAmmo
	shopRepair
	shopItemCount
)

// category maps an upgrade line to its engine category.
func (s shopItem) category() (engine.Category, bool) {
	if s < shopSellOre {
		return engine.Categories[s], true
	}
	return 0, false
}

// ClientState holds everything the client tracks between frames that is not
// part of the simulation.
type ClientState struct {
	Input     input.Input
	prevInput input.Input
	Running   bool

	delta     time.Duration // Frame delta time
	prevPhase engine.Phase
	firstDraw bool

	shutdown      bool    // The host is stopping
	shutdownTimer float64 // Countdown before auto-disconnect on shutdown

	isInactive  bool
	wasInactive bool

	shopCursor   shopItem
	message      string
	messageTimer float64
	messageBad   bool

	lastCleared  engine.Transition
	leaderboard  []store.Pilot
	personalBest *store.Pilot
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		Running:   true,
		firstDraw: true,
		prevInput: input.Input{Number: -1},
	}
}

// setMessage shows a status line for a few seconds.
func (s *ClientState) setMessage(msg string, bad bool, seconds float64) {
	s.message = msg
	s.messageBad = bad
	s.messageTimer = seconds
}

// tickMessage ages the status line.
func (s *ClientState) tickMessage() {
	if s.messageTimer <= 0 {
		return
	}
	s.messageTimer -= s.delta.Seconds()
	if s.messageTimer <= 0 {
		s.message = ""
		s.messageTimer = 0
	}
}

// pressedEdge reports keys that went down this frame.
func (s *ClientState) pressedEdge() (up, down bool) {
	return s.Input.Up && !s.prevInput.Up, s.Input.Down && !s.prevInput.Down
}
