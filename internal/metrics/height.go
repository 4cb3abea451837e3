package metrics

import (
	"math"

	"github.com/san-kum/snowflakes/internal/frame"
	"github.com/san-kum/snowflakes/internal/grab"
)

// PeakHeight is the highest any free-flying object got.
type PeakHeight struct {
	name string
	peak float64
	seen bool
}

func NewPeakHeight() *PeakHeight {
	return &PeakHeight{name: "peak_height"}
}

func (p *PeakHeight) Name() string { return p.name }

func (p *PeakHeight) Observe(s frame.Stats) {
	for _, o := range s.Objects {
		if o.State == grab.Held {
			continue
		}
		y := o.Pose.Position[1]
		if !p.seen || y > p.peak {
			p.peak, p.seen = y, true
		}
	}
}

func (p *PeakHeight) Value() float64 {
	if !p.seen {
		return 0
	}
	return p.peak
}

func (p *PeakHeight) Reset() {
	p.peak = math.Inf(-1)
	p.seen = false
}

// HeldFraction is the share of object-frames spent in a hand.
type HeldFraction struct {
	name    string
	held    int
	samples int
}

func NewHeldFraction() *HeldFraction {
	return &HeldFraction{name: "held_fraction"}
}

func (h *HeldFraction) Name() string { return h.name }

func (h *HeldFraction) Observe(s frame.Stats) {
	for _, o := range s.Objects {
		if o.State == grab.Held {
			h.held++
		}
		h.samples++
	}
}

func (h *HeldFraction) Value() float64 {
	if h.samples == 0 {
		return 0
	}
	return float64(h.held) / float64(h.samples)
}

func (h *HeldFraction) Reset() {
	h.held = 0
	h.samples = 0
}
