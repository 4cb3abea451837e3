package vr

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/snowflakes/internal/geom"
	"gopkg.in/yaml.v3"
)

// Script drives the mock device: each keyframe holds for Frames frames while
// controllers drift at their scripted velocity.
type Script struct {
	Name      string     `yaml:"name"`
	FPS       float64    `yaml:"fps"`
	Loop      bool       `yaml:"loop"`
	Keyframes []Keyframe `yaml:"keyframes"`
}

type Keyframe struct {
	Frames    int            `yaml:"frames"`
	Primary   *ControllerKey `yaml:"primary,omitempty"`
	Secondary *ControllerKey `yaml:"secondary,omitempty"`
	// Glitch makes controller reads fail for the whole keyframe.
	Glitch bool `yaml:"glitch,omitempty"`
	// NoHMD drops head tracking for the whole keyframe.
	NoHMD bool `yaml:"no_hmd,omitempty"`
}

type ControllerKey struct {
	Position        [3]float64 `yaml:"position"`
	Yaw             float64    `yaml:"yaw"`   // degrees about +Y
	Pitch           float64    `yaml:"pitch"` // degrees about +X
	Trigger         float64    `yaml:"trigger"`
	Velocity        [3]float64 `yaml:"velocity"`
	AngularVelocity [3]float64 `yaml:"angular_velocity"`
}

// Reading evaluates the key after elapsed seconds within its keyframe.
func (k ControllerKey) Reading(elapsed float64) Reading {
	vel := mgl64.Vec3(k.Velocity)
	rot := mgl64.QuatRotate(k.Yaw*math.Pi/180, mgl64.Vec3{0, 1, 0}).
		Mul(mgl64.QuatRotate(k.Pitch*math.Pi/180, mgl64.Vec3{1, 0, 0}))
	angVel := mgl64.Vec3(k.AngularVelocity)
	rot = geom.IntegrateRotation(rot, angVel, elapsed)
	return Reading{
		Pose:            geom.NewPose(mgl64.Vec3(k.Position).Add(vel.Mul(elapsed)), rot),
		LinearVelocity:  vel,
		AngularVelocity: angVel,
		Trigger:         k.Trigger,
	}
}

// TotalFrames is the length of one pass through the script.
func (s *Script) TotalFrames() int {
	n := 0
	for _, k := range s.Keyframes {
		n += k.Frames
	}
	return n
}

func (s *Script) Validate() error {
	if len(s.Keyframes) == 0 {
		return ErrScriptEmpty
	}
	for i, k := range s.Keyframes {
		if k.Frames <= 0 {
			return fmt.Errorf("vr: keyframe %d: frames must be positive, got %d", i, k.Frames)
		}
	}
	if s.FPS <= 0 {
		return fmt.Errorf("vr: fps must be positive, got %f", s.FPS)
	}
	return nil
}

// at returns the keyframe active at frame and the index within it.
func (s *Script) at(frame int) (Keyframe, int) {
	for _, k := range s.Keyframes {
		if frame < k.Frames {
			return k, frame
		}
		frame -= k.Frames
	}
	last := s.Keyframes[len(s.Keyframes)-1]
	return last, last.Frames - 1
}

// LoadScript reads a YAML script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := &Script{FPS: 90}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func SaveScript(path string, s *Script) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Scripts are the built-in mock sessions.
var Scripts = map[string]*Script{
	"idle": {
		Name: "idle", FPS: 90,
		Keyframes: []Keyframe{
			{Frames: 180, Primary: &ControllerKey{Position: [3]float64{0.25, 1.1, -0.3}}, Secondary: &ControllerKey{Position: [3]float64{-0.25, 1.1, -0.3}}},
		},
	},
	// Pull a block off the secondary hand, swing it, let go.
	"toss": {
		Name: "toss", FPS: 90,
		Keyframes: []Keyframe{
			{Frames: 20, Primary: aimAtSecondary(0), Secondary: offHand()},
			{Frames: 30, Primary: aimAtSecondary(1), Secondary: offHand()},
			{Frames: 15, Primary: swing(1, 0), Secondary: offHand()},
			{Frames: 1, Primary: swing(0, 15), Secondary: offHand()},
			{Frames: 200, Primary: aimAtSecondary(0), Secondary: offHand()},
		},
	},
	// Spawn a small stack, one block per trigger pull.
	"stack": {
		Name: "stack", FPS: 90,
		Keyframes: stackKeyframes(4),
	},
	// Drop the head and controllers for a while mid-session.
	"glitch": {
		Name: "glitch", FPS: 90,
		Keyframes: []Keyframe{
			{Frames: 30, Primary: aimAtSecondary(0), Secondary: offHand()},
			{Frames: 10, Primary: aimAtSecondary(0), Secondary: offHand(), Glitch: true},
			{Frames: 10, Primary: aimAtSecondary(0), Secondary: offHand(), NoHMD: true},
			{Frames: 30, Primary: aimAtSecondary(1), Secondary: offHand()},
			{Frames: 60, Primary: aimAtSecondary(0), Secondary: offHand()},
		},
	},
}

// ListScripts returns the built-in script names, sorted.
func ListScripts() []string {
	names := make([]string, 0, len(Scripts))
	for name := range Scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func offHand() *ControllerKey {
	return &ControllerKey{Position: [3]float64{-0.2, 1.1, -0.5}}
}

// aimAtSecondary places the primary controller to the right of the off hand,
// pointing at it along -X.
func aimAtSecondary(trigger float64) *ControllerKey {
	return &ControllerKey{Position: [3]float64{0.3, 1.1, -0.5}, Yaw: 90, Trigger: trigger}
}

// swing moves the primary hand up and forward; after frames it has travelled
// frames/90 seconds along the swing.
func swing(trigger float64, frames int) *ControllerKey {
	vel := [3]float64{0, 2.0, -3.0}
	t := float64(frames) / 90
	return &ControllerKey{
		Position: [3]float64{0.3 + vel[0]*t, 1.1 + vel[1]*t, -0.5 + vel[2]*t},
		Yaw:      90,
		Trigger:  trigger,
		Velocity: vel,
	}
}

func stackKeyframes(n int) []Keyframe {
	keys := make([]Keyframe, 0, 2*n+1)
	for i := 0; i < n; i++ {
		keys = append(keys,
			Keyframe{Frames: 20, Primary: aimAtSecondary(0), Secondary: offHand()},
			Keyframe{Frames: 5, Primary: aimAtSecondary(1), Secondary: offHand()},
		)
	}
	keys = append(keys, Keyframe{Frames: 120, Primary: aimAtSecondary(0), Secondary: offHand()})
	return keys
}
