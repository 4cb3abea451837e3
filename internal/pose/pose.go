// Package pose turns raw controller readings into per-frame samples: the
// trigger delta against the previous frame is computed here, and a failed
// read degrades to the previous sample.
package pose

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/snowflakes/internal/geom"
	"github.com/san-kum/snowflakes/internal/vr"
)

type ControllerID int

const (
	Primary ControllerID = iota
	Secondary
)

func (id ControllerID) String() string {
	switch id {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	default:
		return fmt.Sprintf("controller(%d)", int(id))
	}
}

// Role maps the controller onto the device role reporting it.
func (id ControllerID) Role() vr.Role {
	if id == Secondary {
		return vr.RoleSecondary
	}
	return vr.RolePrimary
}

// FromRole is the inverse of Role.
func FromRole(r vr.Role) ControllerID {
	if r == vr.RoleSecondary {
		return Secondary
	}
	return Primary
}

// ControllerSample is one controller's state for one frame. It is a value and
// is never mutated after the tracker produced it.
type ControllerSample struct {
	Pose            geom.Pose
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3
	Trigger         float64
	// TriggerDelta is Trigger minus the previous frame's trigger.
	TriggerDelta float64
	// Tracked is false until the controller reported at least once.
	Tracked bool
}

// Valid reports whether the sample can drive interaction: tracked, finite,
// trigger within [0,1].
func (s ControllerSample) Valid() bool {
	if !s.Tracked || !s.Pose.IsValid() {
		return false
	}
	if !finite(s.Trigger) || !finite(s.TriggerDelta) || s.Trigger < 0 || s.Trigger > 1 {
		return false
	}
	for i := 0; i < 3; i++ {
		if !finite(s.LinearVelocity[i]) || !finite(s.AngularVelocity[i]) {
			return false
		}
	}
	return true
}

// Engaged reports a valid sample whose trigger is above threshold.
func (s ControllerSample) Engaged(threshold float64) bool {
	return s.Valid() && s.Trigger > threshold
}

// RisingEdge reports that the trigger crossed above threshold this frame.
func (s ControllerSample) RisingEdge(threshold float64) bool {
	return s.Engaged(threshold) && s.Trigger-s.TriggerDelta <= threshold
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func untracked() ControllerSample {
	return ControllerSample{Pose: geom.Identity()}
}
