package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type correction struct {
	dp, dv mgl64.Vec3
}

// resolvePairs separates overlapping non-plane bodies using bounding spheres.
// Every pair is evaluated against the same integrated snapshot and the
// corrections are applied afterwards, so submission order does not matter.
func resolvePairs(bodies []Body) int {
	corr := make([]correction, len(bodies))
	contacts := 0
	for i := 0; i < len(bodies); i++ {
		a := bodies[i]
		if _, ok := a.plane(); ok || a.Shape == nil {
			continue
		}
		for j := i + 1; j < len(bodies); j++ {
			b := bodies[j]
			if _, ok := b.plane(); ok || b.Shape == nil {
				continue
			}
			ia, ib := a.InverseMass(), b.InverseMass()
			if ia+ib == 0 {
				continue
			}
			d := b.Pose.Position.Sub(a.Pose.Position)
			dist := d.Len()
			pen := a.radius() + b.radius() - dist
			if pen <= 0 {
				continue
			}
			contacts++
			n := mgl64.Vec3{0, 1, 0}
			if dist > 1e-9 {
				n = d.Mul(1 / dist)
			}

			share := pen / (ia + ib)
			corr[i].dp = corr[i].dp.Sub(n.Mul(share * ia))
			corr[j].dp = corr[j].dp.Add(n.Mul(share * ib))

			vn := b.LinearVelocity.Sub(a.LinearVelocity).Dot(n)
			if vn >= 0 {
				continue
			}
			e := (a.Restitution + b.Restitution) / 2
			jn := -(1 + e) * vn / (ia + ib)
			corr[i].dv = corr[i].dv.Sub(n.Mul(jn * ia))
			corr[j].dv = corr[j].dv.Add(n.Mul(jn * ib))
		}
	}
	for i := range bodies {
		bodies[i].Pose.Position = bodies[i].Pose.Position.Add(corr[i].dp)
		bodies[i].LinearVelocity = bodies[i].LinearVelocity.Add(corr[i].dv)
	}
	return contacts
}

// resolvePlanes pushes dynamic bodies out of static planes using their lowest
// support point along the plane normal, with a restitution bounce and a
// Coulomb-bounded friction impulse.
func resolvePlanes(bodies []Body) int {
	contacts := 0
	for p := range bodies {
		floor := bodies[p]
		shape, ok := floor.plane()
		if !ok || !floor.Static {
			continue
		}
		n := floor.Pose.Rotation.Rotate(shape.Normal)
		origin := floor.Pose.Position

		for i := range bodies {
			b := &bodies[i]
			if b.Static || b.Shape == nil {
				continue
			}
			if _, isPlane := b.plane(); isPlane {
				continue
			}
			local := b.Pose.Rotation.Inverse().Rotate(n.Mul(-1))
			lowest := b.Pose.Apply(b.Shape.Support(local))
			gap := lowest.Sub(origin).Dot(n) - b.Margin - floor.Margin
			if gap >= 0 {
				continue
			}
			contacts++
			b.Pose.Position = b.Pose.Position.Add(n.Mul(-gap))

			vn := b.LinearVelocity.Dot(n)
			if vn >= 0 {
				continue
			}
			e := (b.Restitution + floor.Restitution) / 2
			mu := (b.Friction + floor.Friction) / 2
			limit := mu * (1 + e) * -vn

			tangent := b.LinearVelocity.Sub(n.Mul(vn))
			if slide := tangent.Len(); slide > 0 {
				tangent = tangent.Mul(math.Max(0, slide-limit) / slide)
			}
			b.LinearVelocity = n.Mul(-e * vn).Add(tangent)
			b.AngularVelocity = b.AngularVelocity.Mul(math.Max(0, 1-mu))
		}
	}
	return contacts
}
