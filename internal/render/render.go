// Package render holds the deferred draw contract: opaque mesh handles, a
// command list filled during the resolve phase, and the painters that consume
// it once per frame.
package render

import "github.com/san-kum/snowflakes/internal/geom"

// Mesh is an opaque handle produced by a MeshProvider.
type Mesh struct {
	ID   int
	Name string
}

func (m Mesh) String() string { return m.Name }

// Command draws one mesh at one world pose.
type Command struct {
	Mesh Mesh
	Pose geom.Pose
}

// List is an ordered set of draw commands. Order is layering order.
type List []Command

func (l *List) Draw(mesh Mesh, pose geom.Pose) {
	*l = append(*l, Command{Mesh: mesh, Pose: pose})
}

// Painter consumes draw commands.
type Painter interface {
	Paint(cmd Command)
}

// FramePainter is a Painter that holds one frame of output and must be
// cleared before the next.
type FramePainter interface {
	Painter
	Reset()
}

// Execute hands every command to p in list order. A FramePainter is reset
// first so it only ever holds l.
func Execute(l List, p Painter) {
	if fp, ok := p.(FramePainter); ok {
		fp.Reset()
	}
	for _, cmd := range l {
		p.Paint(cmd)
	}
}

// Recorder is a Painter that keeps the commands of the last executed frame.
type Recorder struct {
	Commands List
	Painted  int
}

func (r *Recorder) Paint(cmd Command) {
	r.Commands = append(r.Commands, cmd)
	r.Painted++
}

// Reset drops the recorded commands but keeps the running total.
func (r *Recorder) Reset() {
	r.Commands = r.Commands[:0]
}
