package metrics

import "github.com/san-kum/snowflakes/internal/frame"

// Health is the share of frames that ran clean: tracked head, readable
// controllers and no diverged bodies.
type Health struct {
	name       string
	violations int
	samples    int
}

func NewHealth() *Health {
	return &Health{name: "health"}
}

func (h *Health) Name() string { return h.name }

func (h *Health) Observe(s frame.Stats) {
	h.samples++
	if s.Skipped || s.ControllerErrors > 0 || s.Diverged > 0 {
		h.violations++
	}
}

func (h *Health) Value() float64 {
	if h.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(h.violations)/float64(h.samples)
}

func (h *Health) Reset() {
	h.violations = 0
	h.samples = 0
}

// DrawLoad is the mean number of draw commands per updated frame.
type DrawLoad struct {
	name    string
	sum     int
	samples int
}

func NewDrawLoad() *DrawLoad {
	return &DrawLoad{name: "draws_per_frame"}
}

func (d *DrawLoad) Name() string { return d.name }

func (d *DrawLoad) Observe(s frame.Stats) {
	if s.Skipped {
		return
	}
	d.sum += s.Draws
	d.samples++
}

func (d *DrawLoad) Value() float64 {
	if d.samples == 0 {
		return 0
	}
	return float64(d.sum) / float64(d.samples)
}

func (d *DrawLoad) Reset() {
	d.sum = 0
	d.samples = 0
}
