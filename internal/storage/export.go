package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/snowflakes/internal/frame"
	"github.com/san-kum/snowflakes/internal/geom"
)

type ExportFrame struct {
	Frame   int            `json:"frame"`
	Time    float64        `json:"time"`
	Objects []ExportObject `json:"objects"`
}

type ExportObject struct {
	App   string    `json:"app"`
	Index int       `json:"index"`
	State string    `json:"state"`
	Pose  geom.Pose `json:"pose"`
}

type ExportData struct {
	Meta    RunMetadata   `json:"meta"`
	Samples []ExportFrame `json:"samples"`
}

// ExportJSON writes the run and its samples as one indented JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, result *frame.Result) error {
	data := ExportData{
		Meta:    meta,
		Samples: make([]ExportFrame, len(result.Samples)),
	}
	data.Meta.Frames = result.Frames
	data.Meta.Events = result.Events
	data.Meta.Metrics = result.Metrics

	for i, s := range result.Samples {
		f := ExportFrame{Frame: s.Frame, Time: s.Time, Objects: make([]ExportObject, len(s.Objects))}
		for j, o := range s.Objects {
			f.Objects[j] = ExportObject{App: o.App, Index: o.Index, State: o.State.String(), Pose: o.Pose}
		}
		data.Samples[i] = f
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
