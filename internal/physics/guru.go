package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/snowflakes/internal/geom"
)

// Token identifies a submitted body within one step.
type Token int

// Guru owns the world for a single frame: submissions first, then exactly one
// Step.
type Guru struct {
	Gravity mgl64.Vec3
	bodies  []Body
	stepped bool
}

func NewGuru(gravity mgl64.Vec3) *Guru {
	return &Guru{Gravity: gravity}
}

// Submit adds a copy of b to the world.
func (g *Guru) Submit(b Body) Token {
	if g.stepped {
		panic("physics: submit after step")
	}
	g.bodies = append(g.bodies, b)
	return Token(len(g.bodies) - 1)
}

// Len is the number of bodies submitted so far.
func (g *Guru) Len() int {
	return len(g.bodies)
}

// Resolved is the authoritative outcome of a step.
type Resolved struct {
	Dt     float64
	bodies []Body
	// Diverged counts bodies reset to their submitted state because the step
	// produced non-finite values.
	Diverged int
	Contacts int
}

// Body returns the post-step state of the body submitted as tok.
func (r *Resolved) Body(tok Token) (Body, bool) {
	if r == nil || tok < 0 || int(tok) >= len(r.bodies) {
		return Body{}, false
	}
	return r.bodies[tok], true
}

func (r *Resolved) Len() int {
	if r == nil {
		return 0
	}
	return len(r.bodies)
}

// Step advances every dynamic body by dt and resolves contacts. Negative or
// non-finite dt is treated as zero.
func (g *Guru) Step(dt float64) *Resolved {
	g.stepped = true
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		dt = 0
	}

	next := make([]Body, len(g.bodies))
	copy(next, g.bodies)
	for i := range next {
		if next[i].Static {
			continue
		}
		integrate(&next[i], g.Gravity, dt)
	}

	res := &Resolved{Dt: dt, bodies: next}
	res.Contacts += resolvePairs(next)
	res.Contacts += resolvePlanes(next)

	for i := range next {
		if !next[i].Valid() {
			next[i] = g.bodies[i].WithVelocity(mgl64.Vec3{}, mgl64.Vec3{})
			res.Diverged++
		}
	}
	return res
}

func integrate(b *Body, gravity mgl64.Vec3, dt float64) {
	b.LinearVelocity = b.LinearVelocity.Add(gravity.Mul(dt))
	b.Pose = geom.Pose{
		Position: b.Pose.Position.Add(b.LinearVelocity.Mul(dt)),
		Rotation: geom.IntegrateRotation(b.Pose.Rotation, b.AngularVelocity, dt),
	}
}
