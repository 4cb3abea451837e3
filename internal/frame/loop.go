package frame

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/snowflakes/internal/geom"
	"github.com/san-kum/snowflakes/internal/physics"
	"github.com/san-kum/snowflakes/internal/pose"
	"github.com/san-kum/snowflakes/internal/render"
	"github.com/san-kum/snowflakes/internal/scene"
	"github.com/san-kum/snowflakes/internal/vr"
)

// Meshes are the scene-wide meshes the loop draws itself.
type Meshes struct {
	Controller render.Mesh
	Floor      render.Mesh
}

type Loop struct {
	dev     vr.Device
	apps    []scene.App
	painter render.Painter
	meshes  Meshes
	opts    Options
	logger  *log.Logger

	trackers  [2]*pose.Tracker
	metrics   []Metric
	observers []Observer

	frame   int
	elapsed float64
	last    time.Time
	now     func() time.Time
	result  *Result
}

// New builds a loop over dev. A nil painter discards draws; a nil logger
// logs to the standard logger.
func New(dev vr.Device, apps []scene.App, painter render.Painter, meshes Meshes, opts Options, logger *log.Logger) *Loop {
	if logger == nil {
		logger = log.Default()
	}
	if painter == nil {
		painter = &render.Recorder{}
	}
	if opts.MaxStep <= 0 {
		opts.MaxStep = DefaultOptions().MaxStep
	}
	if opts.PhysicsSpeed <= 0 {
		opts.PhysicsSpeed = 1
	}
	return &Loop{
		dev:      dev,
		apps:     apps,
		painter:  painter,
		meshes:   meshes,
		opts:     opts,
		logger:   logger,
		trackers: [2]*pose.Tracker{pose.NewTracker(pose.Primary), pose.NewTracker(pose.Secondary)},
		now:      time.Now,
		result:   newResult(),
	}
}

func newResult() *Result {
	return &Result{Metrics: make(map[string]float64)}
}

func (l *Loop) AddMetric(m Metric)     { l.metrics = append(l.metrics, m) }
func (l *Loop) AddObserver(o Observer) { l.observers = append(l.observers, o) }

// Frame is the number of frames synced so far.
func (l *Loop) Frame() int { return l.frame }

// Result returns the running totals, with metric values as of now.
func (l *Loop) Result() *Result {
	for _, m := range l.metrics {
		l.result.Metrics[m.Name()] = m.Value()
	}
	return l.result
}

func (l *Loop) Start() error {
	for _, m := range l.metrics {
		m.Reset()
	}
	l.result = newResult()
	if err := l.dev.Start(); err != nil {
		return fmt.Errorf("start device: %w", err)
	}
	return nil
}

func (l *Loop) Stop() error {
	return l.dev.Stop()
}

// Run drives the device until it asks to exit, the frame limit is reached or
// ctx is cancelled. Cancellation is only observed between frames.
func (l *Loop) Run(ctx context.Context) (*Result, error) {
	if err := l.Start(); err != nil {
		return nil, err
	}
	defer func() {
		if err := l.Stop(); err != nil {
			l.logger.Printf("warn: stop device: %v", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return l.Result(), ctx.Err()
		default:
		}

		running, err := l.Tick()
		if err != nil {
			return l.Result(), err
		}
		if !running || l.Done() {
			return l.Result(), nil
		}
	}
}

// Done reports whether the frame limit has been reached.
func (l *Loop) Done() bool {
	return l.opts.Frames > 0 && l.result.Frames >= l.opts.Frames
}

// Tick runs one frame and reports whether the device wants more.
func (l *Loop) Tick() (bool, error) {
	dt := l.delta()
	index := l.frame

	moment, err := l.dev.Sync()
	if err != nil {
		return false, &FrameError{Frame: index, Stage: "sync", Wrapped: err}
	}
	l.frame++
	l.elapsed += dt

	if moment.HMD == nil {
		l.result.Skipped++
		l.notify(Stats{Frame: index, Time: l.elapsed, Dt: dt, Skipped: true})
		return !moment.Exit, nil
	}

	stats := Stats{Frame: index, Time: l.elapsed, Dt: dt}
	controllers := l.track(moment, &stats)

	var draws render.List
	world := physics.NewGuru(l.opts.Gravity)
	for _, id := range []pose.ControllerID{pose.Primary, pose.Secondary} {
		if r, ok := moment.Controllers[id.Role()]; ok {
			draws.Draw(l.meshes.Controller, r.Pose)
		}
	}
	floor := physics.NewStatic(geom.NewPlane(mgl64.Vec3{0, 1, 0}), l.opts.Floor.Restitution, l.opts.Floor.Friction).
		WithMargin(l.opts.Floor.Margin).
		WithPose(moment.Stage)
	world.Submit(floor)
	draws.Draw(l.meshes.Floor, moment.Stage)

	meta := scene.Meta{Frame: index, Dt: dt, PhysicsSpeed: l.opts.PhysicsSpeed, Stage: moment.Stage}
	f := &scene.Frame{Controllers: controllers, Physics: world, Meta: meta}
	pending := make([]scene.Pending, len(l.apps))
	for i, app := range l.apps {
		pending[i] = app.Update(f)
	}

	stats.PhysicsDt = math.Min(dt, l.opts.MaxStep) * l.opts.PhysicsSpeed
	resolved := world.Step(stats.PhysicsDt)
	stats.Contacts = resolved.Contacts
	stats.Diverged = resolved.Diverged
	if resolved.Diverged > 0 {
		l.logger.Printf("warn: frame %d: %d bodies diverged and were reset", index, resolved.Diverged)
	}

	reply := &scene.Reply{Physics: resolved, Controllers: controllers, Draw: &draws, Meta: meta}
	for _, p := range pending {
		p.Finish(reply)
	}

	render.Execute(draws, l.painter)
	stats.Draws = len(draws)
	if err := l.dev.Submit(moment, draws); err != nil {
		return false, &FrameError{Frame: index, Stage: "submit", Wrapped: err}
	}

	for _, app := range l.apps {
		if o, ok := app.(scene.Observable); ok {
			snap := o.Snapshot()
			stats.Objects = append(stats.Objects, snap.Objects...)
			stats.Events.Add(snap.Events)
		}
	}
	l.result.Frames++
	l.result.Events.Add(stats.Events)
	if l.opts.Record {
		l.result.Samples = append(l.result.Samples, Sample{Frame: index, Time: stats.Time, Objects: stats.Objects})
	}
	l.notify(stats)

	return !moment.Exit, nil
}

func (l *Loop) delta() float64 {
	now := l.now()
	defer func() { l.last = now }()
	if l.last.IsZero() {
		return 0
	}
	if l.opts.FixedDt > 0 {
		return l.opts.FixedDt
	}
	return now.Sub(l.last).Seconds()
}

// track updates both controller trackers. Failed reads keep the previous
// sample and are logged as warnings; an absent controller is just untracked.
func (l *Loop) track(m *vr.Moment, stats *Stats) *pose.Guru {
	var samples [2]pose.ControllerSample
	for i, t := range l.trackers {
		r, err := m.Controller(t.ID.Role())
		s, err := t.Update(r, err)
		if err != nil {
			stats.ControllerErrors++
			l.result.Warnings++
			l.logger.Printf("warn: frame %d: updating %s controller: %v", stats.Frame, t.ID, err)
		}
		samples[i] = s
	}
	return pose.NewGuru(samples[0], samples[1])
}

func (l *Loop) notify(s Stats) {
	for _, m := range l.metrics {
		m.Observe(s)
	}
	for _, o := range l.observers {
		o.OnFrame(s)
	}
}
