// Package grab decides, per object and per frame, whether a controller is
// holding it.
//
// The machine runs in two phases around the physics step. [Machine.Propose]
// reads the previous state, the controller sample and the object's pre-step
// pose and never touches the world. [Proposal.Resolve] takes the post-step
// body and produces the displayed pose and the body to carry into the next
// frame. While held, the body is moved with the hand regardless of what the
// step computed.
package grab

import (
	"fmt"

	"github.com/san-kum/snowflakes/internal/geom"
)

type Kind int

const (
	Free Kind = iota
	Pointed
	Held
)

func (k Kind) String() string {
	switch k {
	case Free:
		return "free"
	case Pointed:
		return "pointed"
	case Held:
		return "held"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// State is the grab state of one object. Offset is meaningful only when Kind
// is Held: object pose = controller pose * Offset.
type State struct {
	Kind   Kind
	Offset geom.Pose
}

func FreeState() State {
	return State{Kind: Free, Offset: geom.Identity()}
}

func HeldState(offset geom.Pose) State {
	return State{Kind: Held, Offset: offset}
}

func (s State) IsHeld() bool { return s.Kind == Held }

func (s State) String() string {
	if s.Kind == Held {
		return fmt.Sprintf("held(%s)", s.Offset)
	}
	return s.Kind.String()
}
