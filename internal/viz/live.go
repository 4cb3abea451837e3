package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/snowflakes/internal/frame"
	"github.com/san-kum/snowflakes/internal/grab"
)

const (
	width           = 60
	height          = 20
	historyCapacity = 600
)

type TickMsg time.Time

// feed collects loop output between redraws. It is shared by every copy of
// the Model so the observer registered on the loop stays valid.
type feed struct {
	last    frame.Stats
	heights []float64
	frames  int
}

func (f *feed) OnFrame(s frame.Stats) {
	f.last = s
	if s.Skipped {
		return
	}
	f.frames++
	peak := 0.0
	for _, o := range s.Objects {
		if o.Pose.Position[1] > peak {
			peak = o.Pose.Position[1]
		}
	}
	f.heights = append(f.heights, peak)
	if len(f.heights) > historyCapacity {
		f.heights = f.heights[len(f.heights)-historyCapacity:]
	}
}

// Model steps a started frame.Loop on a timer and draws the scene from above.
type Model struct {
	loop     *frame.Loop
	feed     *feed
	canvas   *Canvas
	view     TopDown
	wire     *Wireframe
	camera   bool
	interval time.Duration
	title    string

	running bool
	done    bool
	err     error
}

// NewModel registers itself as an observer on loop. The caller starts the
// loop before running the program and stops it afterwards.
func NewModel(loop *frame.Loop, title string, fps int) Model {
	if fps <= 0 {
		fps = 60
	}
	f := &feed{heights: make([]float64, 0, historyCapacity)}
	loop.AddObserver(f)
	return Model{
		loop:     loop,
		feed:     f,
		canvas:   NewCanvas(width, height),
		view:     DefaultTopDown(),
		interval: time.Second / time.Duration(fps),
		title:    title,
		running:  true,
	}
}

// WithWireframe shows w, the loop's painter, instead of the top-down map.
// The v key switches between the two.
func (m Model) WithWireframe(w *Wireframe) Model {
	m.wire = w
	m.camera = w != nil
	return m
}

// Err is the frame error that stopped the loop, if any.
func (m Model) Err() error { return m.err }

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.step()
			}
		case "v":
			m.camera = m.wire != nil && !m.camera
		case "+", "=":
			m.zoom(1.25)
		case "-":
			m.zoom(0.8)
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) zoom(factor float64) {
	if m.camera {
		m.wire.Camera = m.wire.Camera.WithZoom(factor)
		return
	}
	m.view = m.view.Zoom(factor)
}

func (m *Model) step() {
	if m.done {
		return
	}
	more, err := m.loop.Tick()
	if err != nil {
		m.err = err
		m.done = true
		return
	}
	if !more || m.loop.Done() {
		m.done = true
	}
}

// draw renders the floor origin and every object: held objects as outlines,
// pointed ones as a crossed box, free ones filled.
func (m *Model) draw() {
	c := m.canvas
	c.Clear()
	cx, cy := c.Width, c.Height*2
	c.DrawLine(cx-3, cy, cx+3, cy)
	c.DrawLine(cx, cy-3, cx, cy+3)

	for _, o := range m.feed.last.Objects {
		x, y := m.view.Project(c, o.Pose.Position)
		switch o.State {
		case grab.Held:
			c.DrawRect(x, y, 2, 2)
		case grab.Pointed:
			c.DrawRect(x, y, 2, 2)
			c.DrawLine(x-2, y-2, x+2, y+2)
		default:
			c.FillRect(x, y, 1, 1)
		}
	}
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return StatusStopped.Render("ERROR")
	case m.done:
		return StatusStopped.Render("FINISHED")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("RUNNING")
}

func (m Model) View() string {
	scene := m.canvas
	if m.camera {
		scene = m.wire.Canvas
	} else {
		m.draw()
	}
	s := m.feed.last
	res := m.loop.Result()

	held := 0
	for _, o := range s.Objects {
		if o.State == grab.Held {
			held++
		}
	}

	var b strings.Builder
	b.WriteString(Title.Render(strings.ToUpper(m.title)) + "  " + m.status() + "\n\n")
	b.WriteString(Row("Frame", fmt.Sprintf("%d", s.Frame)) + "\n")
	b.WriteString(Row("Time", fmt.Sprintf("%.2fs", s.Time)) + "\n")
	b.WriteString(Row("Physics dt", fmt.Sprintf("%.4f", s.PhysicsDt)) + "\n")
	b.WriteString(Row("Objects", fmt.Sprintf("%d (%d held)", len(s.Objects), held)) + "\n")
	b.WriteString(Row("Spawned", fmt.Sprintf("%d", res.Events.Spawned)) + "\n")
	b.WriteString(Row("Grabbed", fmt.Sprintf("%d", res.Events.Grabbed)) + "\n")
	b.WriteString(Row("Released", fmt.Sprintf("%d", res.Events.Released)) + "\n")
	b.WriteString(Row("Recovered", fmt.Sprintf("%d", res.Events.Recovered)) + "\n")
	b.WriteString(Row("Skipped", fmt.Sprintf("%d", res.Skipped)) + "\n")
	b.WriteString(Row("Warnings", fmt.Sprintf("%d", res.Warnings)) + "\n")
	b.WriteString(Row("Contacts", fmt.Sprintf("%d", s.Contacts)) + "\n")
	if synced := m.loop.Frame(); synced > 0 {
		b.WriteString(MetricLabel.Render("Tracked") + ProgressBar(float64(m.feed.frames)/float64(synced), 20) + "\n")
	}
	if len(m.feed.heights) > 1 {
		chart := asciigraph.Plot(m.feed.heights, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Peak height (m)"))
		b.WriteString("\n" + Graph.Render(chart) + "\n")
	}
	if m.err != nil {
		b.WriteString("\n" + StatusStopped.Render(m.err.Error()) + "\n")
	}

	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		GlassPanel.Render(scene.String()),
		GlassPanel.Render(b.String()),
	)
	return panels + "\n" + KeyHint.Render("space pause · n step · v view · +/- zoom · q quit") + "\n"
}

// PlotHeights charts a height series for the plot command.
func PlotHeights(values []float64, caption string) string {
	if len(values) == 0 {
		return Subtle.Render("no samples") + "\n"
	}
	return asciigraph.Plot(values, asciigraph.Height(10), asciigraph.Width(60), asciigraph.Caption(caption)) + "\n"
}
