package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/snowflakes/internal/geom"
)

// Body is a logical copy of a rigid body. It has value semantics: every owner
// holds its own copy, and the world hands back a new one after each step.
type Body struct {
	Pose            geom.Pose
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3

	Shape       geom.Shape
	Mass        float64
	Restitution float64
	Friction    float64
	// Margin is the contact skin kept around the shape.
	Margin float64
	Static bool
}

// NewDynamic builds a movable body whose mass follows from density and the
// shape's volume.
func NewDynamic(shape geom.Shape, density, restitution, friction float64) Body {
	return Body{
		Pose:        geom.Identity(),
		Shape:       shape,
		Mass:        density * shape.Volume(),
		Restitution: restitution,
		Friction:    friction,
	}
}

// NewStatic builds an immovable body.
func NewStatic(shape geom.Shape, restitution, friction float64) Body {
	return Body{
		Pose:        geom.Identity(),
		Shape:       shape,
		Restitution: restitution,
		Friction:    friction,
		Static:      true,
	}
}

func (b Body) WithPose(p geom.Pose) Body {
	b.Pose = p
	return b
}

func (b Body) WithVelocity(linear, angular mgl64.Vec3) Body {
	b.LinearVelocity = linear
	b.AngularVelocity = angular
	return b
}

func (b Body) WithMargin(margin float64) Body {
	b.Margin = margin
	return b
}

// InverseMass is zero for static and massless bodies.
func (b Body) InverseMass() float64 {
	if b.Static || b.Mass <= 0 {
		return 0
	}
	return 1 / b.Mass
}

// Valid reports whether the body's kinematic state is finite.
func (b Body) Valid() bool {
	if !b.Pose.IsValid() {
		return false
	}
	for i := 0; i < 3; i++ {
		for _, v := range []float64{b.LinearVelocity[i], b.AngularVelocity[i]} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

func (b Body) radius() float64 {
	if b.Shape == nil {
		return b.Margin
	}
	return b.Shape.BoundingRadius() + b.Margin
}

func (b Body) plane() (*geom.Plane, bool) {
	p, ok := b.Shape.(*geom.Plane)
	return p, ok
}
