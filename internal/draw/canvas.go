package draw

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"
)

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// maxChunkSize is the maximum bytes to write at once for optimal network flow.
// 1500 bytes matches typical MTU size for smooth SSH/network transmission.
const maxChunkSize = 1400

// cell is one rendered terminal character.
type cell struct {
	ch     rune
	fg, bg string // ANSI colour sequences, "" for default
}

// Canvas is a colour drawing buffer with 2x vertical resolution using
// half-block characters. Drawing uses logical coordinates that are scaled to
// terminal pixels. Render only emits cells that changed since the last frame.
type Canvas struct {
	termWidth      int      // Actual terminal columns
	termHeight     int      // Actual terminal rows
	subPixelHeight int      // termHeight * 2
	pixels         []string // Flat slice: [y * termWidth + x] - hex colour, "" if unset
	prev           []cell   // Last rendered cell per terminal position
	dirty          []bool   // Cells overwritten by text since the last render

	logicalWidth  float64
	logicalHeight float64 // In sub-pixels
	scaleX        float64 // termWidth / logicalWidth
	scaleY        float64 // (termHeight*2) / logicalHeight

	// 0-based terminal offset for centering the render area.
	offsetCol int
	offsetRow int

	renderBuf strings.Builder
	palette   map[string][2]string // hex -> {fg, bg} sequences
}

// NewScaledCanvas creates a canvas that scales from logical coordinates to terminal pixels.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
		palette:       make(map[string][2]string),
	}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize updates the canvas for new terminal dimensions while keeping logical size.
func (c *Canvas) Resize(termWidth, termHeight int) {
	termWidth = max(1, termWidth)
	termHeight = max(1, termHeight)
	if termWidth != c.termWidth || termHeight != c.termHeight {
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = termHeight * 2
		c.pixels = make([]string, c.subPixelHeight*termWidth)
		c.prev = make([]cell, termWidth*termHeight)
		c.dirty = make([]bool, termWidth*termHeight)
		c.ForceRedraw()
	}
	c.scaleX = float64(termWidth) / c.logicalWidth
	c.scaleY = float64(c.subPixelHeight) / c.logicalHeight
}

// SetOffset sets the column and row offset for centering the canvas.
func (c *Canvas) SetOffset(col, row int) {
	c.offsetCol = col
	c.offsetRow = row
}

// OffsetCol returns the column offset used for centering.
func (c *Canvas) OffsetCol() int {
	return c.offsetCol
}

// OffsetRow returns the row offset used for centering.
func (c *Canvas) OffsetRow() int {
	return c.offsetRow
}

// TerminalWidth returns the actual terminal column count.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the actual terminal row count.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// Clear resets all pixels in the canvas.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

// ForceRedraw makes the next Render emit every cell.
func (c *Canvas) ForceRedraw() {
	for i := range c.prev {
		c.prev[i] = cell{ch: -1}
	}
}

// MarkTextDirty records that n cells starting at the 1-based canvas position
// (col, row) were overwritten by text, so the next Render repaints them.
func (c *Canvas) MarkTextDirty(col, row, n int) {
	row--
	if row < 0 || row >= c.termHeight {
		return
	}
	for x := max(0, col-1); x < min(c.termWidth, col-1+n); x++ {
		c.dirty[row*c.termWidth+x] = true
	}
}

func (c *Canvas) setPixel(x, y int, color string) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.subPixelHeight {
		c.pixels[y*c.termWidth+x] = color
	}
}

// SetFloat sets a pixel using logical coordinates.
func (c *Canvas) SetFloat(p r2.Vec, color string) {
	c.setPixel(int(math.Round(p.X*c.scaleX)), int(math.Round(p.Y*c.scaleY)), color)
}

// DrawLine draws a line on the canvas using Bresenham's algorithm.
// Coordinates are in logical space and get scaled to pixels.
func (c *Canvas) DrawLine(p1, p2 r2.Vec, color string) {
	x1 := int(math.Round(p1.X * c.scaleX))
	y1 := int(math.Round(p1.Y * c.scaleY))
	x2 := int(math.Round(p2.X * c.scaleX))
	y2 := int(math.Round(p2.Y * c.scaleY))

	// Lines far outside the canvas are skipped rather than walked.
	limit := 4 * (c.termWidth + c.subPixelHeight)
	if abs(x1) > limit || abs(y1) > limit || abs(x2) > limit || abs(y2) > limit {
		return
	}

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy

	for {
		c.setPixel(x1, y1, color)
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// DrawPolygon draws a closed outline through points.
func (c *Canvas) DrawPolygon(points []r2.Vec, color string) {
	if len(points) < 2 {
		return
	}
	n := len(points)
	for i := 0; i < n; i++ {
		c.DrawLine(points[i], points[(i+1)%n], color)
	}
}

// DrawCircle draws a circle outline. Every step-th segment is skipped when
// dashed is set.
func (c *Canvas) DrawCircle(center r2.Vec, radius float64, color string, dashed bool) {
	if radius <= 0 {
		c.SetFloat(center, color)
		return
	}
	pixels := radius * math.Max(c.scaleX, c.scaleY)
	segments := int(math.Max(8, math.Min(96, pixels*2)))
	step := 2 * math.Pi / float64(segments)
	prev := r2.Add(center, r2.Vec{X: radius})
	for i := 1; i <= segments; i++ {
		a := float64(i) * step
		next := r2.Add(center, r2.Vec{X: math.Cos(a) * radius, Y: math.Sin(a) * radius})
		if !dashed || i%2 == 0 {
			c.DrawLine(prev, next, color)
		}
		prev = next
	}
}

// colors returns the cached foreground and background sequences for hex.
func (c *Canvas) colors(hex string) (string, string) {
	if seq, ok := c.palette[hex]; ok {
		return seq[0], seq[1]
	}
	col, err := colorful.Hex(hex)
	if err != nil {
		c.palette[hex] = [2]string{}
		return "", ""
	}
	r, g, b := col.RGB255()
	rgb := strconv.Itoa(int(r)) + ";" + strconv.Itoa(int(g)) + ";" + strconv.Itoa(int(b)) + "m"
	seq := [2]string{"\033[38;2;" + rgb, "\033[48;2;" + rgb}
	c.palette[hex] = seq
	return seq[0], seq[1]
}

// cellAt composes the terminal cell from its two sub-pixels.
func (c *Canvas) cellAt(row, col int) cell {
	top := c.pixels[row*2*c.termWidth+col]
	bottom := ""
	if row*2+1 < c.subPixelHeight {
		bottom = c.pixels[(row*2+1)*c.termWidth+col]
	}

	switch {
	case top != "" && bottom != "":
		fg, _ := c.colors(top)
		if top == bottom {
			return cell{ch: BlockFull, fg: fg}
		}
		_, bg := c.colors(bottom)
		return cell{ch: BlockUpperHalf, fg: fg, bg: bg}
	case top != "":
		fg, _ := c.colors(top)
		return cell{ch: BlockUpperHalf, fg: fg}
	case bottom != "":
		fg, _ := c.colors(bottom)
		return cell{ch: BlockLowerHalf, fg: fg}
	default:
		return cell{ch: ' '}
	}
}

// Render outputs the changed cells to the writer using half-block characters.
func (c *Canvas) Render(w io.Writer) {
	c.renderBuf.Reset()

	for row := 0; row < c.termHeight; row++ {
		for col := 0; col < c.termWidth; col++ {
			idx := row*c.termWidth + col
			cur := c.cellAt(row, col)
			if cur == c.prev[idx] && !c.dirty[idx] {
				continue
			}
			c.prev[idx] = cur
			c.dirty[idx] = false

			c.renderBuf.WriteString("\033[")
			c.renderBuf.WriteString(strconv.Itoa(row + 1 + c.offsetRow))
			c.renderBuf.WriteByte(';')
			c.renderBuf.WriteString(strconv.Itoa(col + 1 + c.offsetCol))
			c.renderBuf.WriteByte('H')
			if cur.fg != "" || cur.bg != "" {
				c.renderBuf.WriteString(cur.fg)
				c.renderBuf.WriteString(cur.bg)
				c.renderBuf.WriteRune(cur.ch)
				c.renderBuf.WriteString("\033[0m")
			} else {
				c.renderBuf.WriteRune(cur.ch)
			}
		}
	}

	// Write output in chunks for optimal network flow
	data := c.renderBuf.String()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		io.WriteString(w, chunk)
		data = data[len(chunk):]
	}
}

// RenderBorder draws a box border around the canvas area when the terminal
// exceeds the max render resolution on either axis.
func (c *Canvas) RenderBorder(w io.Writer) {
	hasH := c.offsetCol >= 1
	hasV := c.offsetRow >= 1
	if !hasH && !hasV {
		return
	}

	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1
	bar := strings.Repeat("─", c.termWidth)

	var buf strings.Builder
	move := func(row, col int) {
		buf.WriteString("\033[" + strconv.Itoa(row) + ";" + strconv.Itoa(col) + "H")
	}
	if hasV {
		if hasH {
			move(top, left)
			buf.WriteString("┌" + bar + "┐")
			move(bottom, left)
			buf.WriteString("└" + bar + "┘")
		} else {
			move(top, c.offsetCol+1)
			buf.WriteString(bar)
			move(bottom, c.offsetCol+1)
			buf.WriteString(bar)
		}
	}
	if hasH {
		for row := c.offsetRow + 1; row <= c.offsetRow+c.termHeight; row++ {
			move(row, left)
			buf.WriteString("│")
			move(row, right)
			buf.WriteString("│")
		}
	}
	io.WriteString(w, buf.String())
}

// LogicalToTerminal converts logical coordinates to a 1-based canvas position (col, row).
func (c *Canvas) LogicalToTerminal(p r2.Vec) (col, row int) {
	px := int(math.Round(p.X * c.scaleX))
	py := int(math.Round(p.Y * c.scaleY))
	return px + 1, py/2 + 1
}

// TerminalToLogical converts a 0-based terminal cell (as reported by the
// mouse) to the logical coordinates of the cell centre.
func (c *Canvas) TerminalToLogical(x, y int) r2.Vec {
	col := float64(x-c.offsetCol) + 0.5
	row := float64(y-c.offsetRow) + 0.5
	return r2.Vec{X: col / c.scaleX, Y: row * 2 / c.scaleY}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
