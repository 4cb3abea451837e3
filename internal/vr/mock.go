package vr

import (
	"errors"

	"github.com/san-kum/snowflakes/internal/geom"
	"github.com/san-kum/snowflakes/internal/render"
)

// ErrGlitch is the transient controller failure a script can inject.
var ErrGlitch = errors.New("vr: controller read failed (scripted glitch)")

// Mock is a scripted Device. It exits after one pass through its script
// unless the script loops.
type Mock struct {
	script  *Script
	frame   int
	running bool

	// Head is the fixed head pose reported while tracked.
	Head geom.Pose

	// Last holds the most recently submitted frame.
	Last      render.List
	Submitted int
}

func NewMock(script *Script) (*Mock, error) {
	if script == nil {
		script = Scripts["idle"]
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}
	return &Mock{script: script, Head: geom.At(0, 1.6, 0)}, nil
}

func (m *Mock) Script() *Script { return m.script }

func (m *Mock) Start() error {
	m.running = true
	return nil
}

func (m *Mock) Stop() error {
	m.running = false
	return nil
}

func (m *Mock) Sync() (*Moment, error) {
	if !m.running {
		return nil, ErrNotStarted
	}
	total := m.script.TotalFrames()
	frame := m.frame
	if m.script.Loop {
		frame %= total
	}
	key, index := m.script.at(frame)
	elapsed := float64(index) / m.script.FPS

	moment := &Moment{
		Frame:       m.frame,
		Stage:       geom.Identity(),
		Controllers: make(map[Role]Reading, 2),
		Exit:        !m.script.Loop && m.frame >= total-1,
	}
	if !key.NoHMD {
		head := m.Head
		moment.HMD = &head
	}
	if key.Glitch {
		moment.Failures = map[Role]error{RolePrimary: ErrGlitch, RoleSecondary: ErrGlitch}
	}
	if key.Primary != nil {
		moment.Controllers[RolePrimary] = key.Primary.Reading(elapsed)
	}
	if key.Secondary != nil {
		moment.Controllers[RoleSecondary] = key.Secondary.Reading(elapsed)
	}

	m.frame++
	return moment, nil
}

func (m *Mock) Submit(moment *Moment, frame render.List) error {
	if !m.running {
		return ErrNotStarted
	}
	m.Last = append(m.Last[:0], frame...)
	m.Submitted++
	return nil
}
