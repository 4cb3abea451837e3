package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/san-kum/snowflakes/internal/config"
	"github.com/san-kum/snowflakes/internal/frame"
	"github.com/san-kum/snowflakes/internal/metrics"
	"github.com/san-kum/snowflakes/internal/render"
	"github.com/san-kum/snowflakes/internal/scene"
	"github.com/san-kum/snowflakes/internal/storage"
	"github.com/san-kum/snowflakes/internal/vr"
	"github.com/spf13/cobra"
)

// session is one configured device, app set and frame loop.
type session struct {
	cfg    *config.Config
	script *vr.Script
	loop   *frame.Loop
	apps   []scene.App
	hammer *scene.Hammer
	logger *log.Logger
}

// resolveConfig layers preset, config file, environment and changed flags,
// in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("mock") {
		cfg.Mock = mock
	}
	if flags.Changed("frames") {
		cfg.Frames = frames
	}
	if flags.Changed("fixed-dt") {
		cfg.FixedDt = fixedDt
	}
	if flags.Changed("state") {
		cfg.StateFile = stateFile
	}
	if flags.Changed("script") {
		cfg.Script = scriptName
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveScript accepts a built-in script name or a YAML script path.
func resolveScript(name string) (*vr.Script, error) {
	if name == "" {
		return nil, nil
	}
	if s, ok := vr.Scripts[name]; ok {
		return s, nil
	}
	return vr.LoadScript(name)
}

func meshProvider(cfg *config.Config) render.MeshProvider {
	if cfg.Assets.Placeholders {
		return &render.Placeholders{}
	}
	return render.NewDirProvider(cfg.Assets.Root)
}

// newSession opens the device and apps. A nil painter keeps only the last
// frame's draw list.
func newSession(cfg *config.Config, record bool, painter render.Painter, logger *log.Logger) (*session, error) {
	script, err := resolveScript(cfg.Script)
	if err != nil {
		return nil, fmt.Errorf("mock script: %w", err)
	}
	dev, err := vr.Open(cfg.Mock, script)
	if err != nil {
		if errors.Is(err, vr.ErrNoRuntime) {
			return nil, fmt.Errorf("%w (use --mock for the scripted device)", err)
		}
		return nil, err
	}

	provider := meshProvider(cfg)
	var meshes frame.Meshes
	if meshes.Controller, err = provider.Open("controller/"); err != nil {
		return nil, err
	}
	if meshes.Floor, err = provider.Open("floor/"); err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, script: script, logger: logger}
	if cfg.HasApp("snowflakes") {
		spawn, err := cfg.SceneSpawn()
		if err != nil {
			return nil, err
		}
		app, err := scene.NewSnowflakes(provider, cfg.Machine(), spawn)
		if err != nil {
			return nil, err
		}
		s.apps = append(s.apps, app)
	}
	if cfg.HasApp("hammer") {
		h, err := scene.NewHammer(provider, cfg.Machine(), cfg.SceneHammer())
		if err != nil {
			return nil, err
		}
		s.hammer = h
		s.apps = append(s.apps, h)
		s.loadState()
	}

	opts := cfg.FrameOptions()
	opts.Record = record
	s.loop = frame.New(dev, s.apps, painter, meshes, opts, logger)
	for _, m := range metrics.Default() {
		s.loop.AddMetric(m)
	}
	return s, nil
}

// loadState restores the hammer from the state file. A missing file is the
// first run; a corrupt one is logged and the default pose kept.
func (s *session) loadState() {
	if s.cfg.StateFile == "" {
		return
	}
	err := storage.LoadState(s.cfg.StateFile, s.hammer)
	switch {
	case err == nil:
		s.logger.Printf("restored hammer from %s", s.cfg.StateFile)
	case errors.Is(err, os.ErrNotExist):
	default:
		s.logger.Printf("warn: %v", err)
	}
}

func (s *session) saveState() error {
	if s.hammer == nil || s.cfg.StateFile == "" {
		return nil
	}
	return storage.SaveState(s.cfg.StateFile, s.hammer)
}

func (s *session) scriptName() string {
	if s.script != nil && s.script.Name != "" {
		return s.script.Name
	}
	return s.cfg.Script
}

func (s *session) metadata() storage.RunMetadata {
	return storage.RunMetadata{
		Apps:         s.cfg.Apps,
		Script:       s.scriptName(),
		FixedDt:      s.cfg.FixedDt,
		PhysicsSpeed: s.cfg.PhysicsSpeed,
		Gravity:      s.cfg.Gravity,
	}
}
