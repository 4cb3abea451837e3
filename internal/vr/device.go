// Package vr is the boundary to the VR runtime: a Device hands out one Moment
// per frame (head pose, stage, controller readings) and accepts the finished
// frame back.
package vr

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/snowflakes/internal/geom"
	"github.com/san-kum/snowflakes/internal/render"
)

var (
	// ErrNoRuntime indicates no VR runtime could be opened.
	ErrNoRuntime = errors.New("vr: no runtime available")

	// ErrControllerMissing indicates the moment carries no reading for a role.
	ErrControllerMissing = errors.New("vr: controller not tracked")

	// ErrScriptEmpty indicates a mock script without keyframes.
	ErrScriptEmpty = errors.New("vr: script has no keyframes")

	// ErrNotStarted indicates Sync was called outside Start/Stop.
	ErrNotStarted = errors.New("vr: device not started")
)

// Role identifies a tracked hand controller.
type Role int

const (
	RolePrimary Role = iota
	RoleSecondary
)

func (r Role) String() string {
	switch r {
	case RolePrimary:
		return "primary"
	case RoleSecondary:
		return "secondary"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole maps a config name onto a Role.
func ParseRole(name string) (Role, error) {
	switch name {
	case "primary", "":
		return RolePrimary, nil
	case "secondary":
		return RoleSecondary, nil
	}
	return 0, fmt.Errorf("vr: unknown controller role %q", name)
}

// Reading is the raw per-frame state of one controller as reported by the
// runtime.
type Reading struct {
	Pose            geom.Pose
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3
	Trigger         float64
}

// Moment is everything the runtime knows about one frame.
type Moment struct {
	Frame int
	// HMD is nil when the headset is not tracked; such frames are skipped.
	HMD         *geom.Pose
	Stage       geom.Pose
	Controllers map[Role]Reading
	Failures    map[Role]error
	Exit        bool
}

// Controller returns the reading for role, or the failure the runtime
// reported for it.
func (m *Moment) Controller(role Role) (Reading, error) {
	if err, ok := m.Failures[role]; ok && err != nil {
		return Reading{}, err
	}
	r, ok := m.Controllers[role]
	if !ok {
		return Reading{}, fmt.Errorf("%s: %w", role, ErrControllerMissing)
	}
	return r, nil
}

// Device is a VR session. Start and Stop bracket the frame loop.
type Device interface {
	Start() error
	Stop() error
	Sync() (*Moment, error)
	Submit(m *Moment, frame render.List) error
}

// Open returns the mock device when mock is set. Native runtimes are not
// linked into this build.
func Open(mock bool, script *Script) (Device, error) {
	if !mock {
		return nil, ErrNoRuntime
	}
	return NewMock(script)
}
