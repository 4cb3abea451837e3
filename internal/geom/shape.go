package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Shape is a collision shape expressed in its own local frame.
type Shape interface {
	Volume() float64
	// Support returns the local point of the shape farthest along dir.
	Support(dir mgl64.Vec3) mgl64.Vec3
	// Raycast returns the smallest non-negative hit distance along a local ray.
	Raycast(origin, dir mgl64.Vec3, maxDist float64) (float64, bool)
	BoundingRadius() float64
}

// Cuboid is a box centred on the origin.
type Cuboid struct {
	HalfExtents mgl64.Vec3
}

func NewCuboid(hx, hy, hz float64) *Cuboid {
	return &Cuboid{HalfExtents: mgl64.Vec3{hx, hy, hz}}
}

func (c *Cuboid) Volume() float64 {
	h := c.HalfExtents
	return 8 * h[0] * h[1] * h[2]
}

func (c *Cuboid) Support(dir mgl64.Vec3) mgl64.Vec3 {
	var p mgl64.Vec3
	for i := 0; i < 3; i++ {
		if dir[i] < 0 {
			p[i] = -c.HalfExtents[i]
		} else {
			p[i] = c.HalfExtents[i]
		}
	}
	return p
}

func (c *Cuboid) BoundingRadius() float64 { return c.HalfExtents.Len() }

// Raycast uses the slab method against the local axis-aligned box.
func (c *Cuboid) Raycast(origin, dir mgl64.Vec3, maxDist float64) (float64, bool) {
	tmin, tmax := math.Inf(-1), math.Inf(1)
	for i := 0; i < 3; i++ {
		lo, hi := -c.HalfExtents[i], c.HalfExtents[i]
		if math.Abs(dir[i]) < 1e-12 {
			if origin[i] < lo || origin[i] > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - origin[i]) / dir[i]
		t2 := (hi - origin[i]) / dir[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	t := tmin
	if t < 0 {
		t = 0 // origin inside the box
	}
	if t > maxDist {
		return 0, false
	}
	return t, true
}

// Cylinder is aligned with the local Y axis and centred on the origin.
type Cylinder struct {
	HalfHeight float64
	Radius     float64
}

func NewCylinder(halfHeight, radius float64) *Cylinder {
	return &Cylinder{HalfHeight: halfHeight, Radius: radius}
}

func (c *Cylinder) Volume() float64 {
	return math.Pi * c.Radius * c.Radius * 2 * c.HalfHeight
}

func (c *Cylinder) Support(dir mgl64.Vec3) mgl64.Vec3 {
	p := mgl64.Vec3{0, c.HalfHeight, 0}
	if dir[1] < 0 {
		p[1] = -c.HalfHeight
	}
	radial := math.Hypot(dir[0], dir[2])
	if radial > 1e-12 {
		p[0] = dir[0] / radial * c.Radius
		p[2] = dir[2] / radial * c.Radius
	}
	return p
}

func (c *Cylinder) BoundingRadius() float64 {
	return math.Hypot(c.HalfHeight, c.Radius)
}

func (c *Cylinder) Raycast(origin, dir mgl64.Vec3, maxDist float64) (float64, bool) {
	if c.contains(origin) {
		return 0, true
	}
	best, hit := math.Inf(1), false
	consider := func(t float64) {
		if t >= 0 && t <= maxDist && t < best {
			best, hit = t, true
		}
	}

	a := dir[0]*dir[0] + dir[2]*dir[2]
	if a > 1e-12 {
		b := 2 * (origin[0]*dir[0] + origin[2]*dir[2])
		cc := origin[0]*origin[0] + origin[2]*origin[2] - c.Radius*c.Radius
		disc := b*b - 4*a*cc
		if disc >= 0 {
			sq := math.Sqrt(disc)
			for _, t := range [2]float64{(-b - sq) / (2 * a), (-b + sq) / (2 * a)} {
				if y := origin[1] + t*dir[1]; math.Abs(y) <= c.HalfHeight {
					consider(t)
				}
			}
		}
	}
	if math.Abs(dir[1]) > 1e-12 {
		for _, capY := range [2]float64{-c.HalfHeight, c.HalfHeight} {
			t := (capY - origin[1]) / dir[1]
			x, z := origin[0]+t*dir[0], origin[2]+t*dir[2]
			if x*x+z*z <= c.Radius*c.Radius {
				consider(t)
			}
		}
	}
	return best, hit
}

func (c *Cylinder) contains(p mgl64.Vec3) bool {
	return math.Abs(p[1]) <= c.HalfHeight && p[0]*p[0]+p[2]*p[2] <= c.Radius*c.Radius
}

// Part places a child shape inside a Compound.
type Part struct {
	Offset Pose
	Shape  Shape
}

type Compound struct {
	Parts []Part
}

func NewCompound(parts ...Part) *Compound {
	return &Compound{Parts: parts}
}

func (c *Compound) Volume() float64 {
	v := 0.0
	for _, p := range c.Parts {
		v += p.Shape.Volume()
	}
	return v
}

func (c *Compound) Support(dir mgl64.Vec3) mgl64.Vec3 {
	var best mgl64.Vec3
	bestDot := math.Inf(-1)
	for _, p := range c.Parts {
		local := p.Offset.Rotation.Inverse().Rotate(dir)
		candidate := p.Offset.Apply(p.Shape.Support(local))
		if d := candidate.Dot(dir); d > bestDot {
			best, bestDot = candidate, d
		}
	}
	return best
}

func (c *Compound) BoundingRadius() float64 {
	r := 0.0
	for _, p := range c.Parts {
		r = math.Max(r, p.Offset.Position.Len()+p.Shape.BoundingRadius())
	}
	return r
}

func (c *Compound) Raycast(origin, dir mgl64.Vec3, maxDist float64) (float64, bool) {
	best, hit := maxDist, false
	for _, p := range c.Parts {
		inv := p.Offset.Inverse()
		if t, ok := p.Shape.Raycast(inv.Apply(origin), inv.Rotation.Rotate(dir), best); ok {
			best, hit = t, true
		}
	}
	return best, hit
}

// Plane is the half-space below the plane through the origin with the given
// normal. It only makes sense on static bodies.
type Plane struct {
	Normal mgl64.Vec3
}

func NewPlane(normal mgl64.Vec3) *Plane {
	return &Plane{Normal: normal.Normalize()}
}

func (p *Plane) Volume() float64               { return 0 }
func (p *Plane) Support(mgl64.Vec3) mgl64.Vec3 { return mgl64.Vec3{} }
func (p *Plane) BoundingRadius() float64       { return math.Inf(1) }

func (p *Plane) Raycast(origin, dir mgl64.Vec3, maxDist float64) (float64, bool) {
	denom := p.Normal.Dot(dir)
	if math.Abs(denom) < 1e-12 {
		return 0, false
	}
	t := -p.Normal.Dot(origin) / denom
	if t < 0 || t > maxDist {
		return 0, false
	}
	return t, true
}
