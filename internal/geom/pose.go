package geom

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Pose is a rigid transform: rotate by Rotation, then translate by Position.
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// Identity returns the pose that leaves every point in place.
func Identity() Pose {
	return Pose{Rotation: mgl64.QuatIdent()}
}

// At returns an unrotated pose at p.
func At(x, y, z float64) Pose {
	return Pose{Position: mgl64.Vec3{x, y, z}, Rotation: mgl64.QuatIdent()}
}

func NewPose(position mgl64.Vec3, rotation mgl64.Quat) Pose {
	return Pose{Position: position, Rotation: rotation.Normalize()}
}

// Mul composes p with o so that p.Mul(o).Apply(v) == p.Apply(o.Apply(v)).
func (p Pose) Mul(o Pose) Pose {
	return Pose{
		Position: p.Position.Add(p.Rotation.Rotate(o.Position)),
		Rotation: p.Rotation.Mul(o.Rotation).Normalize(),
	}
}

func (p Pose) Inverse() Pose {
	inv := p.Rotation.Inverse()
	return Pose{
		Position: inv.Rotate(p.Position).Mul(-1),
		Rotation: inv,
	}
}

// Apply transforms a point from the local frame into the parent frame.
func (p Pose) Apply(v mgl64.Vec3) mgl64.Vec3 {
	return p.Position.Add(p.Rotation.Rotate(v))
}

// Forward is the local -Z axis expressed in the parent frame.
func (p Pose) Forward() mgl64.Vec3 {
	return p.Rotation.Rotate(mgl64.Vec3{0, 0, -1})
}

// Up is the local +Y axis expressed in the parent frame.
func (p Pose) Up() mgl64.Vec3 {
	return p.Rotation.Rotate(mgl64.Vec3{0, 1, 0})
}

// ApproxEqual compares positions component-wise and orientations up to sign,
// both with absolute tolerance eps.
func (p Pose) ApproxEqual(o Pose, eps float64) bool {
	return Near(p.Position, o.Position, eps) && SameOrientation(p.Rotation, o.Rotation, eps)
}

// Near reports whether every component of a and b differs by at most eps.
func Near(a, b mgl64.Vec3, eps float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

// SameOrientation reports whether a and b rotate alike, treating q and -q as
// the same orientation.
func SameOrientation(a, b mgl64.Quat, eps float64) bool {
	if a == b || a == b.Scale(-1) {
		return true
	}
	return 1-math.Abs(a.Normalize().Dot(b.Normalize())) <= eps
}

// IsValid reports whether every component is finite and the rotation is
// non-degenerate.
func (p Pose) IsValid() bool {
	for _, v := range p.Position {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	q := []float64{p.Rotation.W, p.Rotation.V[0], p.Rotation.V[1], p.Rotation.V[2]}
	for _, v := range q {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return p.Rotation.Len() > 1e-9
}

func (p Pose) String() string {
	return fmt.Sprintf("pos(%.3f, %.3f, %.3f) rot(%.3f, %.3f, %.3f, %.3f)",
		p.Position[0], p.Position[1], p.Position[2],
		p.Rotation.V[0], p.Rotation.V[1], p.Rotation.V[2], p.Rotation.W)
}

type poseJSON struct {
	Translation [3]float64 `json:"translation"`
	Rotation    [4]float64 `json:"rotation"` // x, y, z, w
}

func (p Pose) MarshalJSON() ([]byte, error) {
	return json.Marshal(poseJSON{
		Translation: [3]float64(p.Position),
		Rotation:    [4]float64{p.Rotation.V[0], p.Rotation.V[1], p.Rotation.V[2], p.Rotation.W},
	})
}

func (p *Pose) UnmarshalJSON(data []byte) error {
	var raw poseJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rot := mgl64.Quat{W: raw.Rotation[3], V: mgl64.Vec3{raw.Rotation[0], raw.Rotation[1], raw.Rotation[2]}}
	if rot.Len() < 1e-9 {
		return fmt.Errorf("geom: degenerate rotation %v", raw.Rotation)
	}
	*p = NewPose(mgl64.Vec3(raw.Translation), rot)
	return nil
}

// IntegrateRotation advances q by angular velocity w (rad/s) over dt.
func IntegrateRotation(q mgl64.Quat, w mgl64.Vec3, dt float64) mgl64.Quat {
	speed := w.Len()
	if speed < 1e-12 || dt == 0 {
		return q
	}
	delta := mgl64.QuatRotate(speed*dt, w.Mul(1/speed))
	return delta.Mul(q).Normalize()
}
