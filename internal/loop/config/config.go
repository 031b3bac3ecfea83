// Package config holds the terminal client's presentation constants.
// Gameplay tuning lives in internal/config.
package config

// Max render resolution in terminal cells. Larger terminals get a centred,
// bordered play area.
const (
	MaxTermWidth  = 200
	MaxTermHeight = 60
)

// Pilots
const (
	MaxPilotNameLength = 16
	DefaultPilotName   = "pilot"
	LeaderboardSize    = 5
)

// Blinking
const (
	InvulnBlinkFrames = 6  // Ship flicker half-period while invulnerable
	MineBlinkFrames   = 15 // Armed mine blink half-period
	PromptBlinkMillis = 600
)

// Shutdown
const (
	ShutdownDisplaySeconds = 10.0 // Seconds to show shutdown message before auto-disconnect
)

// Inactivity
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Messages
const (
	MessageSeconds = 2.5 // How long a shop or status message stays visible
)
