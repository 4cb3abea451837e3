package scene

import (
	"github.com/san-kum/snowflakes/internal/grab"
	"github.com/san-kum/snowflakes/internal/physics"
	"github.com/san-kum/snowflakes/internal/pose"
	"github.com/san-kum/snowflakes/internal/render"
)

// Block couples one rigid body with its grab state.
type Block struct {
	Body  physics.Body
	State grab.State
}

func NewBlock(body physics.Body, state grab.State) *Block {
	return &Block{Body: body, State: state}
}

// BlockPending is a block between proposal and resolve.
type BlockPending struct {
	block    *Block
	token    physics.Token
	proposal grab.Proposal
}

// BeginUpdate submits the block's body and proposes its next grab state
// against the pose it ended last frame with.
func (b *Block) BeginUpdate(f *Frame, m grab.Machine, hand pose.ControllerID) BlockPending {
	tok := f.Physics.Submit(b.Body)
	sample := f.Controllers.Sample(hand)
	return BlockPending{
		block:    b,
		token:    tok,
		proposal: m.Propose(b.State, sample, b.Body.Pose, b.Body.Shape),
	}
}

// Finish adopts the resolved body, applies the grab outcome and draws the
// block at its final pose.
func (p BlockPending) Finish(r *Reply, mesh render.Mesh) grab.Outcome {
	resolved, ok := r.Physics.Body(p.token)
	if !ok {
		resolved = p.block.Body
	}
	out := p.proposal.Resolve(resolved)
	p.block.Body = out.Body
	p.block.State = out.State
	r.Draw.Draw(mesh, out.Pose)
	return out
}
