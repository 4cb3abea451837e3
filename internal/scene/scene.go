// Package scene holds the applications the frame loop drives and the object
// controllers they own.
//
// Every app update is split in two. Update runs before the physics step,
// submits bodies and records grab proposals against last frame's world; the
// returned Pending is finished after the step, when resolved bodies are
// available, and appends draw commands. No object sees another object's
// resolved state while proposing, so results do not depend on iteration
// order.
package scene

import (
	"errors"
	"io"

	"github.com/san-kum/snowflakes/internal/geom"
	"github.com/san-kum/snowflakes/internal/grab"
	"github.com/san-kum/snowflakes/internal/physics"
	"github.com/san-kum/snowflakes/internal/pose"
	"github.com/san-kum/snowflakes/internal/render"
)

// ErrStateDecode indicates a persisted app state that could not be read.
var ErrStateDecode = errors.New("scene: cannot decode state")

// Meta is frame bookkeeping shared with apps.
type Meta struct {
	Frame        int
	Dt           float64
	PhysicsSpeed float64
	Stage        geom.Pose
}

// Frame is lent to apps for the proposal phase.
type Frame struct {
	Controllers *pose.Guru
	Physics     *physics.Guru
	Meta        Meta
}

// Reply is lent to pending updates for the resolve phase.
type Reply struct {
	Physics     *physics.Resolved
	Controllers *pose.Guru
	Draw        *render.List
	Meta        Meta
}

type App interface {
	Name() string
	Update(f *Frame) Pending
}

type Pending interface {
	Finish(r *Reply)
}

// Stateful apps persist their state as JSON.
type Stateful interface {
	SaveState(w io.Writer) error
	LoadState(r io.Reader) error
}

// Events counts interactions during one frame.
type Events struct {
	Spawned   int
	Grabbed   int
	Released  int
	Recovered int
}

func (e *Events) Add(o Events) {
	e.Spawned += o.Spawned
	e.Grabbed += o.Grabbed
	e.Released += o.Released
	e.Recovered += o.Recovered
}

func (e *Events) record(out grab.Outcome) {
	if out.Grabbed {
		e.Grabbed++
	}
	if out.Released {
		e.Released++
	}
}

// Object is the observable state of one object after a frame.
type Object struct {
	App   string
	Index int
	Pose  geom.Pose
	State grab.Kind
}

// Snapshot is what an app exposes to observers after Finish.
type Snapshot struct {
	Objects []Object
	Events  Events
}

type Observable interface {
	Snapshot() Snapshot
}
