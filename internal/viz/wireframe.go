package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/snowflakes/internal/geom"
	"github.com/san-kum/snowflakes/internal/render"
)

// Camera projects world points onto a Canvas through a pinhole looking down
// its local -Z axis.
type Camera struct {
	Eye  geom.Pose
	FOV  float64 // vertical, radians
	Near float64
	Zoom float64
}

// DefaultCamera stands behind the play area at head height, tilted down
// toward the spawn point.
func DefaultCamera() Camera {
	tilt := mgl64.QuatRotate(-0.35, mgl64.Vec3{1, 0, 0})
	return Camera{
		Eye:  geom.NewPose(mgl64.Vec3{0, 1.8, 1.6}, tilt),
		FOV:  math.Pi / 3,
		Near: 0.05,
		Zoom: 1,
	}
}

func (cam Camera) WithZoom(factor float64) Camera {
	cam.Zoom = math.Max(0.1, math.Min(10, cam.Zoom*factor))
	return cam
}

// Project returns the dot position of p and its distance in front of the
// camera. ok is false for points behind the near plane.
func (cam Camera) Project(c *Canvas, p mgl64.Vec3) (x, y int, depth float64, ok bool) {
	local := cam.Eye.Inverse().Apply(p)
	depth = -local[2]
	if depth < cam.Near {
		return 0, 0, depth, false
	}
	zoom := cam.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	h := float64(c.Height * 4)
	scale := zoom * (h / 2) / math.Tan(cam.FOV/2)
	x = c.Width + int(math.Round(local[0]/depth*scale))
	y = c.Height*2 - int(math.Round(local[1]/depth*scale))
	return x, y, depth, true
}

// boxEdges index the corners produced by boxCorners.
var boxEdges = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

func boxCorners(h mgl64.Vec3) [8]mgl64.Vec3 {
	return [8]mgl64.Vec3{
		{-h[0], -h[1], -h[2]}, {h[0], -h[1], -h[2]}, {h[0], h[1], -h[2]}, {-h[0], h[1], -h[2]},
		{-h[0], -h[1], h[2]}, {h[0], -h[1], h[2]}, {h[0], h[1], h[2]}, {-h[0], h[1], h[2]},
	}
}

// MeshExtents are the box half extents drawn for each mesh name.
var MeshExtents = map[string]mgl64.Vec3{
	"snow-block": {0.15, 0.15, 0.3},
	"snowman":    {0.25, 0.6, 0.25},
	"hammer":     {0.1, 0.25, 0.05},
	"controller": {0.03, 0.03, 0.08},
	"floor":      {2, 0, 2},
}

var defaultExtent = mgl64.Vec3{0.1, 0.1, 0.1}

// Wireframe is a render.Painter that draws every command as a box outline
// seen through Camera. It holds one frame: render.Execute resets it before
// painting.
type Wireframe struct {
	Camera  Camera
	Canvas  *Canvas
	Extents map[string]mgl64.Vec3

	// Commands painted this frame and edges that landed in front of the camera.
	Commands int
	Edges    int
}

func NewWireframe(w, h int, cam Camera) *Wireframe {
	return &Wireframe{Camera: cam, Canvas: NewCanvas(w, h), Extents: MeshExtents}
}

func (w *Wireframe) Reset() {
	w.Canvas.Clear()
	w.Commands = 0
	w.Edges = 0
}

func (w *Wireframe) Paint(cmd render.Command) {
	w.Commands++
	half, ok := w.Extents[cmd.Mesh.Name]
	if !ok {
		half = defaultExtent
	}

	var px [8][2]int
	var front [8]bool
	for i, corner := range boxCorners(half) {
		x, y, _, ok := w.Camera.Project(w.Canvas, cmd.Pose.Apply(corner))
		px[i] = [2]int{x, y}
		front[i] = ok
	}
	for _, e := range boxEdges {
		a, b := e[0], e[1]
		if !front[a] || !front[b] {
			continue
		}
		w.Edges++
		if px[a] == px[b] {
			w.Canvas.Set(px[a][0], px[a][1])
			continue
		}
		w.Canvas.DrawLine(px[a][0], px[a][1], px[b][0], px[b][1])
	}
}
