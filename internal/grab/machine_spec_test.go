package grab

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/snowflakes/internal/geom"
	"github.com/san-kum/snowflakes/internal/physics"
	"github.com/san-kum/snowflakes/internal/pose"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Machine", func() {
	var (
		m      Machine
		object geom.Pose
		body   physics.Body
		state  State
	)

	// step runs one frame with the given trigger value, tracking the delta
	// the way the controller tracker does.
	var last float64
	step := func(trigger float64) Outcome {
		s := aimed(object, trigger, trigger-last)
		last = trigger
		out := m.Propose(state, s, object, blockShape).Resolve(body)
		state, body, object = out.State, out.Body, out.Pose
		return out
	}

	BeforeEach(func() {
		m = NewMachine(0.5, 3)
		object = geom.At(0, 1, -0.5)
		body = physics.NewDynamic(blockShape, 100, 0, 0.8).WithPose(object)
		state = FreeState()
		last = 0
	})

	Context("when the controller points at the object", func() {
		It("highlights without grabbing while the trigger is idle", func() {
			Expect(step(0.2).State.Kind).To(Equal(Pointed))
			Expect(step(0.3).State.Kind).To(Equal(Pointed))
		})

		It("grabs exactly once on a trigger pull", func() {
			var grabs, releases int
			for _, v := range []float64{0.3, 0.6, 0.6, 0.3} {
				out := step(v)
				if out.Grabbed {
					grabs++
				}
				if out.Released {
					releases++
				}
			}
			Expect(grabs).To(Equal(1))
			Expect(releases).To(Equal(1))
			Expect(state.Kind).To(Equal(Free))
		})
	})

	Context("while held", func() {
		BeforeEach(func() {
			Expect(step(1).State.IsHeld()).To(BeTrue())
		})

		It("ignores the physics result", func() {
			body = body.WithPose(geom.At(0, -100, 0))
			out := step(1)
			Expect(out.Pose.ApproxEqual(geom.At(0, 1, -0.5), 1e-9)).To(BeTrue())
			Expect(out.Body.Pose.ApproxEqual(out.Pose, 0)).To(BeTrue())
		})

		It("drops the object when the sample turns invalid", func() {
			s := pose.ControllerSample{Pose: geom.Identity(), Trigger: 2, Tracked: true}
			p := m.Propose(state, s, object, blockShape)
			Expect(p.Next.Kind).To(Equal(Free))
			Expect(p.Released).To(BeFalse())
		})

		It("hands the controller velocity to the body on release", func() {
			s := aimed(object, 0, -1)
			s.LinearVelocity = mgl64.Vec3{1, 2, 3}
			out := m.Propose(state, s, object, blockShape).Resolve(body)
			Expect(out.Released).To(BeTrue())
			Expect(out.Body.LinearVelocity).To(Equal(s.LinearVelocity))
		})
	})
})
