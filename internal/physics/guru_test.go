package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/snowflakes/internal/geom"
)

var gravity = mgl64.Vec3{0, -9.81, 0}

func block() Body {
	return NewDynamic(geom.NewCuboid(0.15, 0.15, 0.3), 100, 0, 0.8)
}

func floor() Body {
	return NewStatic(geom.NewPlane(mgl64.Vec3{0, 1, 0}), 0.1, 0.6)
}

func TestNewDynamic_MassFromDensity(t *testing.T) {
	b := block()
	if math.Abs(b.Mass-5.4) > 1e-9 {
		t.Errorf("mass = %f, want 5.4", b.Mass)
	}
	if b.InverseMass() == 0 {
		t.Error("dynamic body should have finite mass")
	}
	if floor().InverseMass() != 0 {
		t.Error("static body should have zero inverse mass")
	}
}

func TestStep_FreeFall(t *testing.T) {
	g := NewGuru(gravity)
	tok := g.Submit(block().WithPose(geom.At(0, 5, 0)))
	res := g.Step(0.01)

	b, ok := res.Body(tok)
	if !ok {
		t.Fatal("body missing from result")
	}
	if math.Abs(b.LinearVelocity[1]+0.0981) > 1e-9 {
		t.Errorf("vy = %f, want -0.0981", b.LinearVelocity[1])
	}
	if math.Abs(b.Pose.Position[1]-(5-0.000981)) > 1e-9 {
		t.Errorf("y = %f", b.Pose.Position[1])
	}
}

func TestStep_RestsOnFloor(t *testing.T) {
	b := block().WithPose(geom.At(0, 0.5, 0))
	for i := 0; i < 300; i++ {
		g := NewGuru(gravity)
		g.Submit(floor())
		tok := g.Submit(b)
		b, _ = g.Step(0.01).Body(tok)
		if b.Pose.Position[1] < 0.15-1e-6 {
			t.Fatalf("frame %d: block sank to y=%f", i, b.Pose.Position[1])
		}
	}
	if math.Abs(b.Pose.Position[1]-0.15) > 1e-3 {
		t.Errorf("block should settle at 0.15, got %f", b.Pose.Position[1])
	}
}

func TestStep_Bounce(t *testing.T) {
	g := NewGuru(gravity)
	fl := floor()
	fl.Restitution = 1
	ball := block().WithPose(geom.At(0, 0.16, 0)).WithVelocity(mgl64.Vec3{0, -2, 0}, mgl64.Vec3{})
	ball.Restitution = 1
	g.Submit(fl)
	tok := g.Submit(ball)

	res := g.Step(0.01)
	b, _ := res.Body(tok)
	if b.LinearVelocity[1] <= 0 {
		t.Errorf("expected upward velocity after bounce, got %v", b.LinearVelocity)
	}
	if res.Contacts != 1 {
		t.Errorf("contacts = %d, want 1", res.Contacts)
	}
}

func TestStep_SubmissionOrderIndependent(t *testing.T) {
	bodies := []Body{
		block().WithPose(geom.At(0, 1, 0)),
		block().WithPose(geom.At(0.2, 1.1, 0)).WithVelocity(mgl64.Vec3{-1, 0, 0}, mgl64.Vec3{}),
		block().WithPose(geom.At(-0.1, 0.9, 0.2)),
	}
	run := func(order []int) []Body {
		g := NewGuru(gravity)
		g.Submit(floor())
		toks := make([]Token, len(bodies))
		for _, i := range order {
			toks[i] = g.Submit(bodies[i])
		}
		res := g.Step(0.01)
		out := make([]Body, len(bodies))
		for i, tok := range toks {
			out[i], _ = res.Body(tok)
		}
		return out
	}

	a := run([]int{0, 1, 2})
	b := run([]int{2, 0, 1})
	for i := range a {
		if !a[i].Pose.ApproxEqual(b[i].Pose, 1e-9) {
			t.Errorf("body %d: %v vs %v", i, a[i].Pose, b[i].Pose)
		}
		if !geom.Near(a[i].LinearVelocity, b[i].LinearVelocity, 1e-9) {
			t.Errorf("body %d velocity: %v vs %v", i, a[i].LinearVelocity, b[i].LinearVelocity)
		}
	}
}

func TestStep_DivergedBodyReset(t *testing.T) {
	g := NewGuru(gravity)
	bad := block().WithPose(geom.At(0, 2, 0)).WithVelocity(mgl64.Vec3{math.NaN(), 0, 0}, mgl64.Vec3{})
	tok := g.Submit(bad)
	res := g.Step(0.01)

	if res.Diverged != 1 {
		t.Errorf("diverged = %d, want 1", res.Diverged)
	}
	b, _ := res.Body(tok)
	if !b.Valid() || b.Pose.Position[1] != 2 {
		t.Errorf("expected reset to submitted pose, got %v", b.Pose)
	}
}

func TestStep_DtClamp(t *testing.T) {
	tests := []float64{-1, math.NaN(), math.Inf(1), 0}
	for _, dt := range tests {
		g := NewGuru(gravity)
		tok := g.Submit(block().WithPose(geom.At(0, 3, 0)))
		res := g.Step(dt)
		b, _ := res.Body(tok)
		if res.Dt != 0 || b.Pose.Position[1] != 3 {
			t.Errorf("dt=%v: moved to %v", dt, b.Pose)
		}
	}
}

func TestResolved_UnknownToken(t *testing.T) {
	g := NewGuru(gravity)
	g.Submit(block())
	res := g.Step(0.01)
	if _, ok := res.Body(Token(5)); ok {
		t.Error("unknown token should not resolve")
	}
	if res.Len() != 1 {
		t.Errorf("len = %d, want 1", res.Len())
	}
}

func TestSubmitAfterStepPanics(t *testing.T) {
	g := NewGuru(gravity)
	g.Step(0.01)
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	g.Submit(block())
}
