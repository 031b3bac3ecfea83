package client

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette shared by the canvas and the HUD.
const (
	colorShip     = "#e0fbfc"
	colorShield   = "#4cc9f0"
	colorStation  = "#5fd7ff"
	colorField    = "#1d4e89"
	colorBeam     = "#ff4d6d"
	colorBeamIdle = "#7a2e3b"
	colorTractor  = "#7fdbff"
	colorMine     = "#ff5555"
	colorPucker   = "#c77dff"
	colorBlast    = "#ffffff"
	colorSpace    = "#000000"
)

// styles are the lipgloss styles of the text overlays.
type styles struct {
	title    lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	dim      lipgloss.Style
	good     lipgloss.Style
	warn     lipgloss.Style
	danger   lipgloss.Style
	selected lipgloss.Style
	panel    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#f2c14e")),
		label:    r.NewStyle().Foreground(lipgloss.Color("#8d99ae")),
		value:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#edf2f4")),
		dim:      r.NewStyle().Foreground(lipgloss.Color("#5c677d")),
		good:     r.NewStyle().Foreground(lipgloss.Color("#80ed99")),
		warn:     r.NewStyle().Foreground(lipgloss.Color("#f2c14e")),
		danger:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#ef233c")),
		selected: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#f2c14e")),
		panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4cc9f0")).
			Padding(1, 3),
	}
}

// gauge renders a fixed-width bar for value out of max.
func gauge(value, limit float64, width int, fill, empty lipgloss.Style) string {
	n := 0
	if limit > 0 {
		n = int(math.Round(float64(width) * math.Max(0, math.Min(1, value/limit))))
	}
	return fill.Render(strings.Repeat("█", n)) + empty.Render(strings.Repeat("░", width-n))
}

// fade blends hex toward empty space by 1-alpha. Alpha is quantised so the
// canvas colour cache stays small.
func fade(hex string, alpha float64) string {
	alpha = math.Round(math.Max(0, math.Min(1, alpha))*4) / 4
	if alpha >= 1 {
		return hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	space, _ := colorful.Hex(colorSpace)
	return space.BlendRgb(c, alpha).Clamped().Hex()
}
