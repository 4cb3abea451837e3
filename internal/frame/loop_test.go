package frame

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"math"
	"testing"

	"github.com/san-kum/snowflakes/internal/grab"
	"github.com/san-kum/snowflakes/internal/render"
	"github.com/san-kum/snowflakes/internal/scene"
	"github.com/san-kum/snowflakes/internal/vr"
)

var testMeshes = Meshes{
	Controller: render.Mesh{ID: 100, Name: "controller"},
	Floor:      render.Mesh{ID: 101, Name: "floor"},
}

func newLoop(t *testing.T, script string, opts Options) (*Loop, *scene.Snowflakes, *vr.Mock, *bytes.Buffer) {
	t.Helper()
	dev, err := vr.NewMock(vr.Scripts[script])
	if err != nil {
		t.Fatal(err)
	}
	app, err := scene.NewSnowflakes(&render.Placeholders{}, grab.NewMachine(0.5, 3), scene.DefaultSpawn())
	if err != nil {
		t.Fatal(err)
	}
	var logs bytes.Buffer
	l := New(dev, []scene.App{app}, &render.Recorder{}, testMeshes, opts, log.New(&logs, "", 0))
	return l, app, dev, &logs
}

func TestTick_PainterHoldsLastFrame(t *testing.T) {
	dev, err := vr.NewMock(vr.Scripts["stack"])
	if err != nil {
		t.Fatal(err)
	}
	app, err := scene.NewSnowflakes(&render.Placeholders{}, grab.NewMachine(0.5, 3), scene.DefaultSpawn())
	if err != nil {
		t.Fatal(err)
	}
	rec := &render.Recorder{}
	l := New(dev, []scene.App{app}, rec, testMeshes, fixed(), log.New(io.Discard, "", 0))
	if err := l.Start(); err != nil {
		t.Fatal(err)
	}
	defer l.Stop()

	for i := 0; i < 120; i++ {
		more, err := l.Tick()
		if err != nil {
			t.Fatal(err)
		}
		if !more {
			break
		}
	}
	if len(rec.Commands) != len(dev.Last) {
		t.Errorf("painter holds %d commands, last frame submitted %d", len(rec.Commands), len(dev.Last))
	}
	if rec.Painted <= len(rec.Commands) {
		t.Errorf("painted total %d should exceed one frame", rec.Painted)
	}
}

func fixed() Options {
	opts := DefaultOptions()
	opts.FixedDt = 1.0 / 90
	return opts
}

func TestRun_TossScript(t *testing.T) {
	opts := fixed()
	opts.Record = true
	l, app, dev, _ := newLoop(t, "toss", opts)

	res, err := l.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Frames != vr.Scripts["toss"].TotalFrames() {
		t.Errorf("frames = %d, want %d", res.Frames, vr.Scripts["toss"].TotalFrames())
	}
	if res.Events.Spawned != 1 || res.Events.Released != 1 {
		t.Errorf("events = %+v, want one spawn and one release", res.Events)
	}
	if len(app.Blocks()) != 1 {
		t.Fatalf("blocks = %d, want 1", len(app.Blocks()))
	}

	b := app.Blocks()[0]
	if b.State.IsHeld() {
		t.Error("block should have been released")
	}
	y := b.Body.Pose.Position[1]
	if math.IsNaN(y) || y < 0.14 || y > 0.2 {
		t.Errorf("block should rest on the floor, y = %f", y)
	}
	if b.Body.Pose.Position[2] > -1 {
		t.Errorf("block should have been thrown forward, z = %f", b.Body.Pose.Position[2])
	}
	if len(res.Samples) != res.Frames {
		t.Errorf("recorded %d samples for %d frames", len(res.Samples), res.Frames)
	}
	if dev.Submitted != res.Frames {
		t.Errorf("submitted %d frames, want %d", dev.Submitted, res.Frames)
	}
}

func TestRun_GlitchDegradesGracefully(t *testing.T) {
	l, app, _, logs := newLoop(t, "glitch", fixed())

	res, err := l.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if res.Warnings != 20 {
		t.Errorf("warnings = %d, want 20", res.Warnings)
	}
	if res.Skipped != 10 {
		t.Errorf("skipped = %d, want 10", res.Skipped)
	}
	if res.Events.Spawned != 1 {
		t.Errorf("spawned = %d, want 1", res.Events.Spawned)
	}
	if len(app.Blocks()) != 1 {
		t.Errorf("blocks = %d, want 1", len(app.Blocks()))
	}
	if !bytes.Contains(logs.Bytes(), []byte("warn: ")) {
		t.Error("expected controller warnings in the log")
	}
}

func TestRun_MissingControllerIsNotAWarning(t *testing.T) {
	script := &vr.Script{Name: "one-hand", FPS: 90, Keyframes: []vr.Keyframe{
		{Frames: 40, Primary: &vr.ControllerKey{Position: [3]float64{0.25, 1.1, -0.3}, Trigger: 1}},
	}}
	dev, err := vr.NewMock(script)
	if err != nil {
		t.Fatal(err)
	}
	app, err := scene.NewSnowflakes(&render.Placeholders{}, grab.NewMachine(0.5, 3), scene.DefaultSpawn())
	if err != nil {
		t.Fatal(err)
	}
	var logs bytes.Buffer
	var seen []Stats
	l := New(dev, []scene.App{app}, nil, testMeshes, fixed(), log.New(&logs, "", 0))
	l.AddObserver(ObserverFunc(func(s Stats) { seen = append(seen, s) }))

	res, err := l.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Warnings != 0 || logs.Len() != 0 {
		t.Errorf("warnings = %d, log = %q", res.Warnings, logs.String())
	}
	for _, s := range seen {
		if s.ControllerErrors != 0 {
			t.Fatalf("frame %d counted %d controller errors", s.Frame, s.ControllerErrors)
		}
	}
	if res.Events.Spawned != 0 {
		t.Errorf("spawned %d blocks without a tracked anchor hand", res.Events.Spawned)
	}
}

func TestTick_DrawOrderAndTiming(t *testing.T) {
	opts := DefaultOptions()
	opts.FixedDt = 0.05
	opts.PhysicsSpeed = 2
	l, _, dev, _ := newLoop(t, "idle", opts)

	var stats []Stats
	l.AddObserver(ObserverFunc(func(s Stats) { stats = append(stats, s) }))
	if err := l.Start(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if _, err := l.Tick(); err != nil {
			t.Fatal(err)
		}
	}

	if stats[0].Dt != 0 || stats[0].PhysicsDt != 0 {
		t.Errorf("first frame dt = %f/%f, want 0", stats[0].Dt, stats[0].PhysicsDt)
	}
	if stats[1].Dt != 0.05 || math.Abs(stats[1].PhysicsDt-0.02) > 1e-12 {
		t.Errorf("second frame dt = %f physics %f, want 0.05/0.02", stats[1].Dt, stats[1].PhysicsDt)
	}

	want := []string{"controller", "controller", "floor", "snowman", "snow-block"}
	if len(dev.Last) != len(want) {
		t.Fatalf("draws = %v, want %v", dev.Last, want)
	}
	for i, name := range want {
		if dev.Last[i].Mesh.Name != name {
			t.Errorf("draw %d = %s, want %s", i, dev.Last[i].Mesh.Name, name)
		}
	}
}

type brokenDevice struct{ vr.Mock }

var errLost = errors.New("session lost")

func (d *brokenDevice) Sync() (*vr.Moment, error) { return nil, errLost }

func TestRun_SyncFailure(t *testing.T) {
	mock, _ := vr.NewMock(nil)
	l := New(&brokenDevice{Mock: *mock}, nil, nil, testMeshes, fixed(), log.New(&bytes.Buffer{}, "", 0))

	_, err := l.Run(context.Background())
	var fe *FrameError
	if !errors.As(err, &fe) || fe.Stage != "sync" {
		t.Fatalf("expected sync FrameError, got %v", err)
	}
	if !errors.Is(err, errLost) {
		t.Errorf("error should wrap the device failure: %v", err)
	}
}

func TestRun_StopsOnCancelAndLimit(t *testing.T) {
	l, _, _, _ := newLoop(t, "idle", fixed())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := l.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if res.Frames != 0 {
		t.Errorf("frames = %d, want 0", res.Frames)
	}

	opts := fixed()
	opts.Frames = 5
	l, _, _, _ = newLoop(t, "idle", opts)
	res, err = l.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Frames != 5 {
		t.Errorf("frames = %d, want 5", res.Frames)
	}
}
