// Package physics is the rigid-body world behind the frame loop.
//
// A [Guru] is built fresh every frame. Callers submit value copies of their
// bodies, step once, and read the authoritative results back by token:
//
//	g := physics.NewGuru(mgl64.Vec3{0, -9.81, 0})
//	tok := g.Submit(block)
//	res := g.Step(dt)
//	block, _ = res.Body(tok)
//
// Bodies are not retained between frames; whoever owns the object owns its
// body. Contacts are resolved against static planes exactly (lowest support
// point) and between other bodies with bounding spheres.
package physics
