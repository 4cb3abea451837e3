package metrics

import (
	"github.com/san-kum/snowflakes/internal/frame"
	"github.com/san-kum/snowflakes/internal/scene"
)

// Interaction counts one kind of interaction event over a run.
type Interaction struct {
	name  string
	pick  func(scene.Events) int
	count int
}

func NewSpawns() *Interaction {
	return &Interaction{name: "spawned", pick: func(e scene.Events) int { return e.Spawned }}
}

func NewGrabs() *Interaction {
	return &Interaction{name: "grabbed", pick: func(e scene.Events) int { return e.Grabbed }}
}

func NewReleases() *Interaction {
	return &Interaction{name: "released", pick: func(e scene.Events) int { return e.Released }}
}

func NewRecoveries() *Interaction {
	return &Interaction{name: "recovered", pick: func(e scene.Events) int { return e.Recovered }}
}

func (m *Interaction) Name() string { return m.name }

func (m *Interaction) Observe(s frame.Stats) {
	m.count += m.pick(s.Events)
}

func (m *Interaction) Value() float64 { return float64(m.count) }

func (m *Interaction) Reset() { m.count = 0 }

// Default returns the metrics recorded for every run.
func Default() []frame.Metric {
	return []frame.Metric{
		NewSpawns(),
		NewGrabs(),
		NewReleases(),
		NewRecoveries(),
		NewPeakHeight(),
		NewHeldFraction(),
		NewHealth(),
		NewDrawLoad(),
	}
}
