package grab

import (
	"github.com/san-kum/snowflakes/internal/geom"
	"github.com/san-kum/snowflakes/internal/physics"
	"github.com/san-kum/snowflakes/internal/pose"
)

const (
	DefaultThreshold  = 0.5
	DefaultLaserRange = 3.0
)

// HitFunc reports whether a controller at controller points at shape placed
// at object.
type HitFunc func(controller, object geom.Pose, shape geom.Shape) bool

// Laser hits along the controller's forward axis up to maxDist.
func Laser(maxDist float64) HitFunc {
	return func(controller, object geom.Pose, shape geom.Shape) bool {
		return geom.Hits(geom.LaserFrom(controller), object, shape, maxDist)
	}
}

// Machine holds the transition parameters. The zero value uses the default
// threshold and laser.
type Machine struct {
	Threshold float64
	Hit       HitFunc
	// Grip, when set, replaces the captured offset: the object snaps into the
	// hand at this controller-space pose.
	Grip *geom.Pose
}

func NewMachine(threshold, laserRange float64) Machine {
	return Machine{Threshold: threshold, Hit: Laser(laserRange)}
}

func (m Machine) threshold() float64 {
	if m.Threshold <= 0 {
		return DefaultThreshold
	}
	return m.Threshold
}

func (m Machine) hit(controller, object geom.Pose, shape geom.Shape) bool {
	if m.Hit == nil {
		return Laser(DefaultLaserRange)(controller, object, shape)
	}
	return m.Hit(controller, object, shape)
}

// Proposal is the phase-one result for one object.
type Proposal struct {
	Prev       State
	Next       State
	Controller pose.ControllerSample
	// Grabbed and Released mark the frame a hold starts or ends.
	Grabbed  bool
	Released bool
}

// Propose computes the next state from the previous one. It never fails:
// samples that are not valid count as "not grabbing" and drop any hold.
func (m Machine) Propose(prev State, s pose.ControllerSample, object geom.Pose, shape geom.Shape) Proposal {
	p := Proposal{Prev: prev, Controller: s, Next: FreeState()}
	th := m.threshold()

	if !s.Valid() {
		return p
	}

	if prev.IsHeld() {
		if s.Trigger > th {
			p.Next = prev
		} else {
			p.Released = true
		}
		return p
	}

	switch {
	case s.RisingEdge(th) && m.hit(s.Pose, object, shape):
		offset := s.Pose.Inverse().Mul(object)
		if m.Grip != nil {
			offset = *m.Grip
		}
		p.Next = HeldState(offset)
		p.Grabbed = true
	case !s.Engaged(th) && m.hit(s.Pose, object, shape):
		p.Next = State{Kind: Pointed, Offset: geom.Identity()}
	}
	return p
}

// Outcome is the phase-two result: the state to keep, the pose to draw and the
// body to submit next frame.
type Outcome struct {
	State    State
	Pose     geom.Pose
	Body     physics.Body
	Grabbed  bool
	Released bool
}

// Resolve finalizes the proposal against the body the physics step returned.
// Held objects and objects released this frame are placed at controller pose *
// offset; a release hands the controller's velocity to the body.
func (p Proposal) Resolve(resolved physics.Body) Outcome {
	out := Outcome{State: p.Next, Body: resolved, Pose: resolved.Pose, Grabbed: p.Grabbed, Released: p.Released}

	var offset geom.Pose
	switch {
	case p.Next.IsHeld():
		offset = p.Next.Offset
	case p.Released:
		offset = p.Prev.Offset
	default:
		return out
	}

	c := p.Controller
	out.Pose = c.Pose.Mul(offset)
	out.Body = resolved.WithPose(out.Pose).WithVelocity(c.LinearVelocity, c.AngularVelocity)
	return out
}
