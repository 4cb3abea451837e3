package geom

import "github.com/go-gl/mathgl/mgl64"

// Ray is a half-line in world space. Dir need not be normalized.
type Ray struct {
	Origin mgl64.Vec3
	Dir    mgl64.Vec3
}

// LaserFrom returns the pointing ray of a tracked pose: from its origin along
// its forward axis.
func LaserFrom(p Pose) Ray {
	return Ray{Origin: p.Position, Dir: p.Forward()}
}

// At returns the point at distance t along the normalized ray.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Dir.Normalize().Mul(t))
}

// Cast intersects the ray with shape placed at pose and returns the world
// distance to the first hit.
func (r Ray) Cast(pose Pose, shape Shape, maxDist float64) (float64, bool) {
	if shape == nil || r.Dir.Len() < 1e-12 {
		return 0, false
	}
	inv := pose.Inverse()
	dir := inv.Rotation.Rotate(r.Dir.Normalize())
	return shape.Raycast(inv.Apply(r.Origin), dir, maxDist)
}

// Hits reports whether the ray reaches shape at pose within maxDist.
func Hits(r Ray, pose Pose, shape Shape, maxDist float64) bool {
	_, ok := r.Cast(pose, shape, maxDist)
	return ok
}
