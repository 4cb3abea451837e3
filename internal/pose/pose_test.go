package pose

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/san-kum/snowflakes/internal/geom"
	"github.com/san-kum/snowflakes/internal/vr"
)

func TestTracker_TriggerDelta(t *testing.T) {
	tr := NewTracker(Primary)
	seq := []float64{0.3, 0.6, 0.6, 0.3}
	wantDelta := []float64{0.3, 0.3, 0, -0.3}
	wantEdge := []bool{false, true, false, false}

	for i, trig := range seq {
		s, err := tr.Update(vr.Reading{Pose: geom.Identity(), Trigger: trig}, nil)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if math.Abs(s.TriggerDelta-wantDelta[i]) > 1e-12 {
			t.Errorf("frame %d: delta = %f, want %f", i, s.TriggerDelta, wantDelta[i])
		}
		if got := s.RisingEdge(0.5); got != wantEdge[i] {
			t.Errorf("frame %d: rising edge = %v, want %v", i, got, wantEdge[i])
		}
	}
}

func TestTracker_FailureKeepsPreviousSample(t *testing.T) {
	tr := NewTracker(Secondary)
	good, _ := tr.Update(vr.Reading{Pose: geom.At(1, 2, 3), Trigger: 0.8}, nil)
	if !good.RisingEdge(0.5) {
		t.Fatal("first engaged reading should be a rising edge")
	}

	boom := errors.New("boom")
	stale, err := tr.Update(vr.Reading{}, boom)
	if !errors.Is(err, boom) {
		t.Errorf("expected error to be returned, got %v", err)
	}
	if !stale.Pose.ApproxEqual(good.Pose, 1e-12) || stale.Trigger != 0.8 {
		t.Errorf("stale sample changed: %+v", stale)
	}
	if stale.RisingEdge(0.5) {
		t.Error("stale sample must not repeat the rising edge")
	}
}

func TestTracker_MissingControllerIsUntracked(t *testing.T) {
	tr := NewTracker(Secondary)
	if _, err := tr.Update(vr.Reading{Pose: geom.At(1, 2, 3), Trigger: 0.8}, nil); err != nil {
		t.Fatal(err)
	}

	missing := fmt.Errorf("secondary: %w", vr.ErrControllerMissing)
	s, err := tr.Update(vr.Reading{}, missing)
	if err != nil {
		t.Errorf("missing controller should not be an error, got %v", err)
	}
	if s.Tracked || s.Trigger != 0 {
		t.Errorf("expected untracked sample, got %+v", s)
	}

	back, _ := tr.Update(vr.Reading{Pose: geom.At(1, 2, 3), Trigger: 0.8}, nil)
	if !back.RisingEdge(0.5) {
		t.Error("reappearing pressed controller should report a rising edge")
	}
}

func TestSample_Valid(t *testing.T) {
	base := ControllerSample{Pose: geom.Identity(), Trigger: 0.7, TriggerDelta: 0.7, Tracked: true}

	tests := []struct {
		name   string
		modify func(*ControllerSample)
		want   bool
	}{
		{"ok", func(*ControllerSample) {}, true},
		{"untracked", func(s *ControllerSample) { s.Tracked = false }, false},
		{"nan trigger", func(s *ControllerSample) { s.Trigger = math.NaN() }, false},
		{"trigger above one", func(s *ControllerSample) { s.Trigger = 1.5 }, false},
		{"negative trigger", func(s *ControllerSample) { s.Trigger = -0.1 }, false},
		{"inf delta", func(s *ControllerSample) { s.TriggerDelta = math.Inf(1) }, false},
		{"nan velocity", func(s *ControllerSample) { s.LinearVelocity[1] = math.NaN() }, false},
		{"nan pose", func(s *ControllerSample) { s.Pose.Position[0] = math.NaN() }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			tt.modify(&s)
			if got := s.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
			if !tt.want && s.Engaged(0.5) {
				t.Error("invalid sample must not be engaged")
			}
		})
	}
}

func TestGuru_Sample(t *testing.T) {
	p := ControllerSample{Pose: geom.At(1, 0, 0), Tracked: true}
	s := ControllerSample{Pose: geom.At(-1, 0, 0), Tracked: true}
	g := NewGuru(p, s)

	if got := g.Sample(Primary); got.Pose.Position[0] != 1 {
		t.Errorf("primary = %v", got.Pose)
	}
	if got := g.Sample(Secondary); got.Pose.Position[0] != -1 {
		t.Errorf("secondary = %v", got.Pose)
	}
	if got := g.Sample(ControllerID(7)); got.Tracked {
		t.Error("unknown controller should be untracked")
	}
	if FromRole(Secondary.Role()) != Secondary {
		t.Error("role mapping not symmetric")
	}
}
