package viz

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Braille cells hold 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank rune = 0x2800

// Canvas is a braille dot grid. Dot coordinates run (Width*2) x (Height*4).
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// cell maps a dot onto its grid cell and bit; ok is false off the canvas.
func (c *Canvas) cell(x, y int) (row, col int, bit rune, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, 0, false
	}
	return row, col, pixelMap[y%4][x%2], true
}

func (c *Canvas) Set(x, y int) {
	if row, col, bit, ok := c.cell(x, y); ok {
		c.Grid[row][col] |= bit
	}
}

func (c *Canvas) Unset(x, y int) {
	if row, col, bit, ok := c.cell(x, y); ok {
		c.Grid[row][col] &^= bit
		c.Grid[row][col] |= blank
	}
}

// IsSet reports whether the dot at (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	row, col, bit, ok := c.cell(x, y)
	return ok && c.Grid[row][col]&bit != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawRect outlines the axis-aligned rectangle centred on (x, y).
func (c *Canvas) DrawRect(x, y, halfW, halfH int) {
	c.DrawLine(x-halfW, y-halfH, x+halfW, y-halfH)
	c.DrawLine(x+halfW, y-halfH, x+halfW, y+halfH)
	c.DrawLine(x+halfW, y+halfH, x-halfW, y+halfH)
	c.DrawLine(x-halfW, y+halfH, x-halfW, y-halfH)
}

// FillRect lights every dot of the rectangle centred on (x, y).
func (c *Canvas) FillRect(x, y, halfW, halfH int) {
	for i := x - halfW; i <= x+halfW; i++ {
		for j := y - halfH; j <= y+halfH; j++ {
			c.Set(i, j)
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// TopDown projects world positions onto a canvas seen from above: +X to the
// right, -Z (forward) up. Scale is dots per metre.
type TopDown struct {
	Scale  float64
	Center mgl64.Vec2 // world X, Z at the canvas centre
}

func DefaultTopDown() TopDown {
	return TopDown{Scale: 20}
}

func (p TopDown) Project(c *Canvas, pos mgl64.Vec3) (int, int) {
	x := float64(c.Width) + (pos[0]-p.Center[0])*p.Scale
	y := float64(c.Height*2) + (pos[2]-p.Center[1])*p.Scale
	return int(math.Round(x)), int(math.Round(y))
}

// Zoom scales the projection by factor, keeping Scale within [2, 400].
func (p TopDown) Zoom(factor float64) TopDown {
	p.Scale = math.Max(2, math.Min(400, p.Scale*factor))
	return p
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
