package pose

import (
	"errors"

	"github.com/san-kum/snowflakes/internal/vr"
)

// Tracker follows one controller across frames.
type Tracker struct {
	ID   ControllerID
	last ControllerSample
}

func NewTracker(id ControllerID) *Tracker {
	return &Tracker{ID: id, last: untracked()}
}

// Update folds this frame's reading into a new sample. When the read failed
// the previous sample is repeated with a zero trigger delta and the error is
// returned for the caller to log. A controller the runtime does not report at
// all is simply untracked.
func (t *Tracker) Update(r vr.Reading, err error) (ControllerSample, error) {
	if errors.Is(err, vr.ErrControllerMissing) {
		t.last = untracked()
		return t.last, nil
	}
	if err != nil {
		stale := t.last
		stale.TriggerDelta = 0
		t.last = stale
		return stale, err
	}
	prev := 0.0
	if t.last.Tracked {
		prev = t.last.Trigger
	}
	t.last = ControllerSample{
		Pose:            r.Pose,
		LinearVelocity:  r.LinearVelocity,
		AngularVelocity: r.AngularVelocity,
		Trigger:         r.Trigger,
		TriggerDelta:    r.Trigger - prev,
		Tracked:         true,
	}
	return t.last, nil
}

// Last returns the most recent sample.
func (t *Tracker) Last() ControllerSample {
	return t.last
}

// Guru is the frame's read-only controller snapshot.
type Guru struct {
	samples [2]ControllerSample
}

func NewGuru(primary, secondary ControllerSample) *Guru {
	return &Guru{samples: [2]ControllerSample{primary, secondary}}
}

// Sample returns the controller's sample for this frame. Unknown ids yield an
// untracked sample.
func (g *Guru) Sample(id ControllerID) ControllerSample {
	if g == nil || id < Primary || id > Secondary {
		return untracked()
	}
	return g.samples[id]
}
