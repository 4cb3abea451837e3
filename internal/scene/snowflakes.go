package scene

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/snowflakes/internal/geom"
	"github.com/san-kum/snowflakes/internal/grab"
	"github.com/san-kum/snowflakes/internal/physics"
	"github.com/san-kum/snowflakes/internal/pose"
	"github.com/san-kum/snowflakes/internal/render"
)

// SpawnConfig describes how blocks are pulled out of thin air.
type SpawnConfig struct {
	// Trigger is the controller whose trigger pull spawns and which holds the
	// blocks afterwards.
	Trigger pose.ControllerID
	// Anchor is where new blocks appear.
	Anchor pose.ControllerID
	// RequireAim only spawns when Trigger points at the anchor.
	RequireAim bool

	HalfExtents mgl64.Vec3
	Density     float64
	Restitution float64
	Friction    float64
	Margin      float64
}

func DefaultSpawn() SpawnConfig {
	return SpawnConfig{
		Trigger:     pose.Primary,
		Anchor:      pose.Secondary,
		RequireAim:  true,
		HalfExtents: mgl64.Vec3{0.15, 0.15, 0.3},
		Density:     100,
		Restitution: 0,
		Friction:    0.8,
		Margin:      0.00001,
	}
}

// Snowflakes lets the user pull snow blocks off one hand with the other and
// throw them around.
type Snowflakes struct {
	Machine grab.Machine
	Spawn   SpawnConfig

	blocks  []*Block
	staging []*Block
	shape   *geom.Cuboid

	snowman   render.Mesh
	snowBlock render.Mesh
	events    Events
}

func NewSnowflakes(meshes render.MeshProvider, machine grab.Machine, spawn SpawnConfig) (*Snowflakes, error) {
	snowman, err := meshes.Open("snowman/")
	if err != nil {
		return nil, err
	}
	snowBlock, err := meshes.Open("snow-block/")
	if err != nil {
		return nil, err
	}
	h := spawn.HalfExtents
	return &Snowflakes{
		Machine:   machine,
		Spawn:     spawn,
		shape:     geom.NewCuboid(h[0], h[1], h[2]),
		snowman:   snowman,
		snowBlock: snowBlock,
	}, nil
}

func (a *Snowflakes) Name() string { return "snowflakes" }

// Blocks returns the live blocks in spawn order. Blocks spawned this frame are
// not included until the next Update.
func (a *Snowflakes) Blocks() []*Block {
	return a.blocks
}

// Staged is the number of blocks waiting for the next frame.
func (a *Snowflakes) Staged() int {
	return len(a.staging)
}

type snowflakesPending struct {
	app     *Snowflakes
	trigger pose.ControllerSample
	anchor  pose.ControllerSample
	spawn   grab.Proposal
	blocks  []BlockPending
}

func (a *Snowflakes) Update(f *Frame) Pending {
	a.blocks = append(a.blocks, a.staging...)
	a.staging = nil
	a.events = Events{}

	p := &snowflakesPending{
		app:     a,
		trigger: f.Controllers.Sample(a.Spawn.Trigger),
		anchor:  f.Controllers.Sample(a.Spawn.Anchor),
		blocks:  make([]BlockPending, len(a.blocks)),
	}
	p.spawn = a.Machine.Propose(grab.FreeState(), p.trigger, p.anchor.Pose, a.shape)

	for i, b := range a.blocks {
		p.blocks[i] = b.BeginUpdate(f, a.Machine, a.Spawn.Trigger)
	}
	return p
}

func (p *snowflakesPending) Finish(r *Reply) {
	a := p.app
	r.Draw.Draw(a.snowman, r.Meta.Stage)

	if b := p.newBlock(); b != nil {
		a.staging = append(a.staging, b)
		a.events.Spawned++
		if b.State.IsHeld() {
			a.events.Grabbed++
		}
	}

	for _, bp := range p.blocks {
		a.events.record(bp.Finish(r, a.snowBlock))
	}

	if p.anchor.Tracked {
		r.Draw.Draw(a.snowBlock, p.anchor.Pose)
	}
}

// newBlock builds the block spawned this frame, if any. An aimed pull starts
// it in the hand; otherwise it leaves the anchor with the anchor's motion.
// Nothing spawns from an untracked anchor.
func (p *snowflakesPending) newBlock() *Block {
	a := p.app
	th := a.Machine.Threshold
	if th <= 0 {
		th = grab.DefaultThreshold
	}
	if !p.anchor.Tracked {
		return nil
	}
	if !p.spawn.Grabbed && (a.Spawn.RequireAim || !p.trigger.RisingEdge(th)) {
		return nil
	}

	body := physics.NewDynamic(a.shape, a.Spawn.Density, a.Spawn.Restitution, a.Spawn.Friction).
		WithMargin(a.Spawn.Margin).
		WithPose(p.anchor.Pose)
	if p.spawn.Grabbed {
		body.Pose = p.trigger.Pose.Mul(p.spawn.Next.Offset)
		body = body.WithVelocity(p.trigger.LinearVelocity, p.trigger.AngularVelocity)
		return NewBlock(body, p.spawn.Next)
	}
	body = body.WithVelocity(p.anchor.LinearVelocity, p.anchor.AngularVelocity)
	return NewBlock(body, grab.FreeState())
}

func (a *Snowflakes) Snapshot() Snapshot {
	s := Snapshot{Events: a.events, Objects: make([]Object, 0, len(a.blocks))}
	for i, b := range a.blocks {
		s.Objects = append(s.Objects, Object{App: a.Name(), Index: i, Pose: b.Body.Pose, State: b.State.Kind})
	}
	return s
}
