package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/snowflakes/internal/frame"
	"github.com/san-kum/snowflakes/internal/geom"
	"github.com/san-kum/snowflakes/internal/grab"
	"github.com/san-kum/snowflakes/internal/render"
	"github.com/san-kum/snowflakes/internal/scene"
)

func testResult() *frame.Result {
	return &frame.Result{
		Frames: 2,
		Events: scene.Events{Spawned: 1, Grabbed: 1},
		Samples: []frame.Sample{
			{Frame: 0, Time: 0, Objects: []scene.Object{
				{App: "snowflakes", Index: 0, Pose: geom.At(0, 1.1, -0.5), State: grab.Held},
			}},
			{Frame: 1, Time: 0.011111, Objects: []scene.Object{
				{App: "snowflakes", Index: 0, Pose: geom.At(0, 1.0, -0.5), State: grab.Free},
				{App: "hammer", Index: 0, Pose: geom.At(0, 2.5, 0), State: grab.Free},
			}},
		},
		Metrics: map[string]float64{"spawned": 1},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(RunMetadata{Apps: []string{"snowflakes", "hammer"}, Script: "toss", FixedDt: 0.011111}, testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Script != "toss" || meta.Frames != 2 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.Metrics["spawned"] != 1 || meta.Events.Grabbed != 1 {
		t.Errorf("metrics/events lost: %+v", meta)
	}

	rows, err := st.LoadTrajectories(runID)
	if err != nil {
		t.Fatalf("load trajectories failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if h := Heights(rows, "snowflakes", 0); len(h) != 2 || h[0] != 1.1 || h[1] != 1.0 {
		t.Errorf("heights = %v", h)
	}
	if n := HeldFrames(rows, "snowflakes", 0); n != 1 {
		t.Errorf("held frames = %d, want 1", n)
	}
	if rows[2].Pose.Rotation.W != 1 {
		t.Errorf("rotation not restored: %v", rows[2].Pose)
	}

	runs, err := st.List()
	if err != nil || len(runs) != 1 || runs[0].ID != runID {
		t.Errorf("list = %v, %v", runs, err)
	}
}

func TestStore_MissingRun(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "nope"))
	if _, err := st.Load("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.LoadTrajectories("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("list of missing dir = %v, %v", runs, err)
	}
}

func TestLoadTrajectories_SkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	if err := os.MkdirAll(filepath.Join(dir, "run"), 0755); err != nil {
		t.Fatal(err)
	}
	csv := "frame,time,app,index,state,x,y,z,qx,qy,qz,qw\n" +
		"0,0,snowflakes,0,free,0,1,0,0,0,0,1\n" +
		"x,0,snowflakes,0,free,0,1,0,0,0,0,1\n" +
		"1,0.1,snowflakes,0\n"
	if err := os.WriteFile(filepath.Join(dir, "run", trajectoryFile), []byte(csv), 0644); err != nil {
		t.Fatal(err)
	}
	rows, err := st.LoadTrajectories("run")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Errorf("expected 1 valid row, got %d", len(rows))
	}
}

func TestStateFiles(t *testing.T) {
	h, err := scene.NewHammer(&render.Placeholders{}, grab.Machine{}, scene.DefaultHammer())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "state", "hammer.json")
	if err := SaveState(path, h); err != nil {
		t.Fatalf("save state failed: %v", err)
	}

	fresh, _ := scene.NewHammer(&render.Placeholders{}, grab.Machine{}, scene.DefaultHammer())
	if err := LoadState(path, fresh); err != nil {
		t.Fatalf("load state failed: %v", err)
	}
	if !fresh.Body().Pose.ApproxEqual(h.Body().Pose, 1e-9) {
		t.Errorf("pose %v, want %v", fresh.Body().Pose, h.Body().Pose)
	}

	if err := os.WriteFile(path, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := LoadState(path, fresh); !errors.Is(err, scene.ErrStateDecode) {
		t.Errorf("expected ErrStateDecode, got %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, RunMetadata{Script: "toss"}, testResult()); err != nil {
		t.Fatal(err)
	}
	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(data.Samples) != 2 || data.Samples[1].Objects[1].App != "hammer" {
		t.Errorf("unexpected export: %+v", data.Samples)
	}
	if data.Samples[0].Objects[0].State != "held" {
		t.Errorf("state = %q, want held", data.Samples[0].Objects[0].State)
	}
}
