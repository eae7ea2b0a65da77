// Package draw renders a logical playfield to the terminal with half-block characters.
package draw

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Half-block glyphs. Each terminal cell holds two vertical sub-pixels.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// Color is a 24-bit pixel color. The zero value is an empty pixel.
type Color struct {
	R, G, B uint8
	Set     bool
}

// RGB creates a set color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, Set: true}
}

// Hex parses "#rrggbb". Malformed input gives white.
func Hex(s string) Color {
	s = strings.TrimPrefix(s, "#")
	v, err := strconv.ParseUint(s, 16, 32)
	if len(s) != 6 || err != nil {
		return RGB(255, 255, 255)
	}
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v))
}

// Scale darkens the color by f in [0,1].
func (c Color) Scale(f float64) Color {
	f = math.Max(0, math.Min(f, 1))
	return Color{R: uint8(float64(c.R) * f), G: uint8(float64(c.G) * f), B: uint8(float64(c.B) * f), Set: c.Set}
}

// Canvas is a color pixel buffer with 2x vertical resolution.
// Callers draw in logical coordinates which are scaled to terminal pixels.
type Canvas struct {
	termWidth  int // Terminal columns
	termHeight int // Terminal rows
	pixHeight  int // termHeight * 2
	pixels     []Color

	logicalWidth  float64
	logicalHeight float64
	scaleX        float64
	scaleY        float64

	offsetCol int // Columns skipped when the terminal is larger than the render area
	offsetRow int

	renderBuf strings.Builder
}

// NewCanvas creates a canvas mapping a logicalWidth x logicalHeight field onto the terminal.
func NewCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{logicalWidth: logicalWidth, logicalHeight: logicalHeight}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize adapts the canvas to new terminal dimensions, keeping the logical size.
func (c *Canvas) Resize(termWidth, termHeight int) {
	termWidth, termHeight = max(termWidth, 1), max(termHeight, 1)
	if termWidth != c.termWidth || termHeight != c.termHeight {
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.pixHeight = termHeight * 2
		c.pixels = make([]Color, c.pixHeight*termWidth)
	}
	c.scaleX = float64(c.termWidth) / c.logicalWidth
	c.scaleY = float64(c.pixHeight) / c.logicalHeight
}

// SetOffset sets the 0-based column and row the render area starts at.
func (c *Canvas) SetOffset(col, row int) {
	c.offsetCol = col
	c.offsetRow = row
}

// Clear empties every pixel.
func (c *Canvas) Clear() {
	clear(c.pixels)
}

func (c *Canvas) setPixel(x, y int, col Color) {
	if x >= 0 && x < c.termWidth && y >= 0 && y < c.pixHeight {
		c.pixels[y*c.termWidth+x] = col
	}
}

// At returns the pixel at terminal pixel coordinates.
func (c *Canvas) At(x, y int) Color {
	if x < 0 || x >= c.termWidth || y < 0 || y >= c.pixHeight {
		return Color{}
	}
	return c.pixels[y*c.termWidth+x]
}

func (c *Canvas) toPixel(x, y float64) (int, int) {
	return int(math.Round(x * c.scaleX)), int(math.Round(y * c.scaleY))
}

// Set colors the pixel at logical coordinates.
func (c *Canvas) Set(x, y float64, col Color) {
	px, py := c.toPixel(x, y)
	c.setPixel(px, py, col)
}

// Line draws a line between logical points using Bresenham's algorithm.
func (c *Canvas) Line(x1, y1, x2, y2 float64, col Color) {
	px1, py1 := c.toPixel(x1, y1)
	px2, py2 := c.toPixel(x2, y2)

	dx, dy := abs(px2-px1), abs(py2-py1)
	sx, sy := 1, 1
	if px1 > px2 {
		sx = -1
	}
	if py1 > py2 {
		sy = -1
	}

	err := dx - dy
	for {
		c.setPixel(px1, py1, col)
		if px1 == px2 && py1 == py2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			px1 += sx
		}
		if e2 < dx {
			err += dx
			py1 += sy
		}
	}
}

// Circle draws a circle of logical radius r. The shape is an ellipse in
// terminal pixels when the axes scale differently. Tiny circles draw one pixel.
func (c *Canvas) Circle(cx, cy, r float64, col Color, filled bool) {
	rx, ry := r*c.scaleX, r*c.scaleY
	pcx, pcy := cx*c.scaleX, cy*c.scaleY
	if rx < 0.75 && ry < 0.75 {
		c.Set(cx, cy, col)
		return
	}

	x0, x1 := int(math.Floor(pcx-rx)), int(math.Ceil(pcx+rx))
	y0, y1 := int(math.Floor(pcy-ry)), int(math.Ceil(pcy+ry))
	// Pixels within half a pixel of the edge form the outline
	inner := 1 - 1/math.Max(math.Min(rx, ry), 1)
	for y := y0; y <= y1; y++ {
		ny := (float64(y) - pcy) / ry
		for x := x0; x <= x1; x++ {
			nx := (float64(x) - pcx) / rx
			d := nx*nx + ny*ny
			if d > 1 {
				continue
			}
			if filled || d >= inner*inner {
				c.setPixel(x, y, col)
			}
		}
	}
}

// maxChunkSize keeps individual writes near a network MTU for smooth SSH output.
const maxChunkSize = 1400

// Render writes every non-empty cell using truecolor half blocks.
func (c *Canvas) Render(w io.Writer) error {
	c.renderBuf.Reset()
	c.renderBuf.Grow(c.termWidth * c.termHeight * 8)

	for row := 0; row < c.termHeight; row++ {
		top := c.pixels[row*2*c.termWidth:]
		bottom := c.pixels[(row*2+1)*c.termWidth:]
		for col := 0; col < c.termWidth; col++ {
			t, b := top[col], bottom[col]
			if !t.Set && !b.Set {
				continue
			}
			fmt.Fprintf(&c.renderBuf, "\033[%d;%dH", row+1+c.offsetRow, col+1+c.offsetCol)
			switch {
			case t.Set && b.Set && t == b:
				writeFG(&c.renderBuf, t)
				c.renderBuf.WriteRune(BlockFull)
			case t.Set && b.Set:
				writeFG(&c.renderBuf, t)
				writeBG(&c.renderBuf, b)
				c.renderBuf.WriteRune(BlockUpperHalf)
			case t.Set:
				writeFG(&c.renderBuf, t)
				c.renderBuf.WriteRune(BlockUpperHalf)
			default:
				writeFG(&c.renderBuf, b)
				c.renderBuf.WriteRune(BlockLowerHalf)
			}
			c.renderBuf.WriteString("\033[0m")
		}
	}

	return writeChunked(w, c.renderBuf.String())
}

func writeFG(sb *strings.Builder, col Color) {
	fmt.Fprintf(sb, "\033[38;2;%d;%d;%dm", col.R, col.G, col.B)
}

func writeBG(sb *strings.Builder, col Color) {
	fmt.Fprintf(sb, "\033[48;2;%d;%d;%dm", col.R, col.G, col.B)
}

func writeChunked(w io.Writer, data string) error {
	for len(data) > 0 {
		n := min(len(data), maxChunkSize)
		if _, err := io.WriteString(w, data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// TerminalWidth returns the render area width in columns.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the render area height in rows.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// LogicalToTerminal converts logical coordinates to a 1-based (col, row) inside the render area.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px, py := c.toPixel(x, y)
	return px + 1, py/2 + 1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
