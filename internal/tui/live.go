// Package tui prints a throttled side view of a running session to a plain
// terminal, for runs that do not take over the screen.
package tui

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/san-kum/snowflakes/internal/frame"
	"github.com/san-kum/snowflakes/internal/grab"
)

const (
	width       = 70
	height      = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"

	// metres per character cell
	cellX = 0.05
	cellY = 0.1
)

// LiveRenderer is a frame.Observer that redraws at most frameRate times a
// second. The view looks along -Z: X to the right, Y up, floor on the last
// row.
type LiveRenderer struct {
	out       io.Writer
	frameRate int
	lastFrame time.Time
	now       func() time.Time
	canvas    [][]rune
	// Redraws counts frames actually drawn.
	Redraws int
}

func NewLiveRenderer(out io.Writer, frameRate int) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 30
	}
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	return &LiveRenderer{out: out, frameRate: frameRate, now: time.Now, canvas: canvas}
}

func (r *LiveRenderer) OnFrame(s frame.Stats) {
	now := r.now()
	if now.Sub(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = now

	r.clear()
	r.line(0, height-1, width-1, height-1, '=')
	for _, o := range s.Objects {
		x, y := project(o.Pose.Position[0], o.Pose.Position[1])
		r.set(x, y, glyph(o.State))
	}
	r.render(s)
}

func project(x, y float64) (int, int) {
	col := width/2 + int(math.Round(x/cellX))
	row := height - 2 - int(math.Round(y/cellY))
	return col, row
}

func glyph(k grab.Kind) rune {
	switch k {
	case grab.Held:
		return '@'
	case grab.Pointed:
		return 'o'
	}
	return '#'
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		r.canvas[y][x] = c
	}
}

func (r *LiveRenderer) line(x1, y1, x2, y2 int, c rune) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		r.set(x1, y1, c)
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

func (r *LiveRenderer) render(s frame.Stats) {
	var b strings.Builder
	b.WriteString(clearScreen)
	status := ""
	if s.Skipped {
		status = "  (no head pose)"
	}
	b.WriteString(fmt.Sprintf("  frame %d  t=%.2fs  objects=%d%s\n", s.Frame, s.Time, len(s.Objects), status))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}
	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	b.WriteString(fmt.Sprintf("  spawned=%d grabbed=%d released=%d recovered=%d contacts=%d\n",
		s.Events.Spawned, s.Events.Grabbed, s.Events.Released, s.Events.Recovered, s.Contacts))

	fmt.Fprint(r.out, b.String())
	r.Redraws++
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
