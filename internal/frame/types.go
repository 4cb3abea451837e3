// Package frame runs the per-frame update: device sync, controller tracking,
// the two-phase app update around a single physics step, draw execution and
// frame submission.
package frame

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/snowflakes/internal/scene"
)

// Stats describes one completed (or skipped) frame.
type Stats struct {
	Frame     int
	Time      float64
	Dt        float64
	PhysicsDt float64
	// Skipped frames had no head pose; nothing was updated or drawn.
	Skipped bool

	Objects          []scene.Object
	Events           scene.Events
	Draws            int
	Contacts         int
	Diverged         int
	ControllerErrors int
}

type Metric interface {
	Name() string
	Observe(s Stats)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(s Stats)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Stats)

func (f ObserverFunc) OnFrame(s Stats) { f(s) }

// Sample is the recorded object state of one frame.
type Sample struct {
	Frame   int
	Time    float64
	Objects []scene.Object
}

type Result struct {
	Frames  int
	Skipped int
	Events  scene.Events
	Samples []Sample
	Metrics map[string]float64
	// Warnings counts per-frame controller failures that were logged.
	Warnings int
}

type FloorConfig struct {
	Restitution float64
	Friction    float64
	Margin      float64
}

type Options struct {
	// Frames stops the loop after this many updated frames; 0 runs until the
	// device asks to exit.
	Frames int
	// FixedDt replaces the wall clock when positive.
	FixedDt      float64
	MaxStep      float64
	PhysicsSpeed float64
	Gravity      mgl64.Vec3
	Floor        FloorConfig
	// Record keeps a Sample of every updated frame in the Result.
	Record bool
}

func DefaultOptions() Options {
	return Options{
		MaxStep:      0.01,
		PhysicsSpeed: 1,
		Gravity:      mgl64.Vec3{0, -9.81, 0},
		Floor:        FloorConfig{Restitution: 0.1, Friction: 0.6, Margin: 0.00001},
	}
}

// FrameError reports a device failure during a frame.
type FrameError struct {
	Frame   int
	Stage   string
	Wrapped error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d: %s: %v", e.Frame, e.Stage, e.Wrapped)
}

func (e *FrameError) Unwrap() error {
	return e.Wrapped
}
