package scene

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/snowflakes/internal/geom"
	"github.com/san-kum/snowflakes/internal/grab"
	"github.com/san-kum/snowflakes/internal/physics"
	"github.com/san-kum/snowflakes/internal/pose"
	"github.com/san-kum/snowflakes/internal/render"
)

const hammerScale = 0.08

type HammerConfig struct {
	// FloorY is the height below which the hammer counts as lost. The check
	// assumes gravity points down -Y.
	FloorY      float64
	Spawn       mgl64.Vec3
	Density     float64
	Restitution float64
	Friction    float64
}

func DefaultHammer() HammerConfig {
	return HammerConfig{
		FloorY:      -10,
		Spawn:       mgl64.Vec3{0, 2.5, 0},
		Density:     2330,
		Restitution: 0.35,
		Friction:    0.47,
	}
}

// HammerShape is a cuboid head under a cylindrical handle.
func HammerShape() *geom.Compound {
	return geom.NewCompound(
		geom.Part{
			Offset: geom.At(0, -3*hammerScale, 0),
			Shape:  geom.NewCuboid(2*hammerScale, 1.5*hammerScale, 1.5*hammerScale),
		},
		geom.Part{
			Offset: geom.At(0, 1.25*hammerScale, 0),
			Shape:  geom.NewCylinder(3.25*hammerScale, 0.5*hammerScale),
		},
	)
}

// HammerGrip holds the hammer 20cm in front of the hand, handle along the
// pointing direction.
func HammerGrip() geom.Pose {
	rot := mgl64.QuatBetweenVectors(mgl64.Vec3{0, -1, 0}, mgl64.Vec3{0, 0, -1})
	return geom.NewPose(mgl64.Vec3{0, 0, -0.2}, rot)
}

// Hammer is a single hero object that is never lost: falling off the world
// puts it back at its spawn point.
type Hammer struct {
	Machine grab.Machine
	Config  HammerConfig

	obj    Block
	mesh   render.Mesh
	events Events
}

func NewHammer(meshes render.MeshProvider, machine grab.Machine, cfg HammerConfig) (*Hammer, error) {
	mesh, err := meshes.Open("hammer/")
	if err != nil {
		return nil, err
	}
	if machine.Grip == nil {
		grip := HammerGrip()
		machine.Grip = &grip
	}
	h := &Hammer{Machine: machine, Config: cfg, mesh: mesh}
	h.respawn()
	return h, nil
}

func (h *Hammer) Name() string { return "hammer" }

func (h *Hammer) respawn() {
	c := h.Config
	body := physics.NewDynamic(HammerShape(), c.Density, c.Restitution, c.Friction).
		WithPose(geom.NewPose(c.Spawn, mgl64.QuatIdent()))
	h.obj = Block{Body: body, State: grab.FreeState()}
}

// Body returns the hammer's current rigid body.
func (h *Hammer) Body() physics.Body { return h.obj.Body }

// State returns the hammer's grab state.
func (h *Hammer) State() grab.State { return h.obj.State }

type hammerPending struct {
	app   *Hammer
	block BlockPending
}

func (h *Hammer) Update(f *Frame) Pending {
	h.events = Events{}
	if h.obj.Body.Pose.Position[1] < h.Config.FloorY {
		h.respawn()
		h.events.Recovered++
	}
	return &hammerPending{app: h, block: h.obj.BeginUpdate(f, h.Machine, pose.Primary)}
}

func (p *hammerPending) Finish(r *Reply) {
	p.app.events.record(p.block.Finish(r, p.app.mesh))
}

type hammerState struct {
	Location geom.Pose `json:"location"`
}

// SaveState writes the hammer's world transform.
func (h *Hammer) SaveState(w io.Writer) error {
	return json.NewEncoder(w).Encode(hammerState{Location: h.obj.Body.Pose})
}

// LoadState places the hammer at the saved transform. Whatever held it before
// lets go.
func (h *Hammer) LoadState(r io.Reader) error {
	var st hammerState
	if err := json.NewDecoder(r).Decode(&st); err != nil {
		return fmt.Errorf("%w: %v", ErrStateDecode, err)
	}
	if !st.Location.IsValid() {
		return fmt.Errorf("%w: missing location", ErrStateDecode)
	}
	h.obj.Body = h.obj.Body.WithPose(st.Location)
	h.obj.State = grab.FreeState()
	return nil
}

func (h *Hammer) Snapshot() Snapshot {
	return Snapshot{
		Events:  h.events,
		Objects: []Object{{App: h.Name(), Pose: h.obj.Body.Pose, State: h.obj.State.Kind}},
	}
}
