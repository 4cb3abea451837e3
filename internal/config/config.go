package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/snowflakes/internal/frame"
	"github.com/san-kum/snowflakes/internal/grab"
	"github.com/san-kum/snowflakes/internal/pose"
	"github.com/san-kum/snowflakes/internal/scene"
	"github.com/san-kum/snowflakes/internal/vr"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxStep    = 0.01
	DefaultThreshold  = 0.5
	DefaultLaserRange = 3.0
	DefaultMargin     = 0.00001
	EnvPrefix         = "SNOWFLAKES_"
)

// ErrInvalid indicates a configuration value out of range.
var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	Mock         bool       `yaml:"mock" env:"MOCK"`
	Apps         []string   `yaml:"apps" env:"APPS"`
	Frames       int        `yaml:"frames" env:"FRAMES"`
	FixedDt      float64    `yaml:"fixed_dt" env:"FIXED_DT"`
	MaxStep      float64    `yaml:"max_step" env:"MAX_STEP"`
	PhysicsSpeed float64    `yaml:"physics_speed" env:"PHYSICS_SPEED"`
	Gravity      [3]float64 `yaml:"gravity"`

	Assets AssetsConfig `yaml:"assets" envPrefix:"ASSETS_"`
	Grab   GrabConfig   `yaml:"grab" envPrefix:"GRAB_"`
	Spawn  SpawnConfig  `yaml:"spawn" envPrefix:"SPAWN_"`
	Hammer HammerConfig `yaml:"hammer" envPrefix:"HAMMER_"`
	Floor  FloorConfig  `yaml:"floor" envPrefix:"FLOOR_"`

	// Script is a built-in mock script name or a path to a script file.
	Script    string `yaml:"script" env:"SCRIPT"`
	StateFile string `yaml:"state_file" env:"STATE_FILE"`
}

type AssetsConfig struct {
	Root string `yaml:"root" env:"ROOT"`
	// Placeholders skips the asset directory entirely.
	Placeholders bool `yaml:"placeholders" env:"PLACEHOLDERS"`
}

type GrabConfig struct {
	Threshold  float64 `yaml:"threshold" env:"THRESHOLD"`
	LaserRange float64 `yaml:"laser_range" env:"LASER_RANGE"`
}

type SpawnConfig struct {
	Trigger     string     `yaml:"trigger" env:"TRIGGER"`
	Anchor      string     `yaml:"anchor" env:"ANCHOR"`
	RequireAim  bool       `yaml:"require_aim" env:"REQUIRE_AIM"`
	HalfExtents [3]float64 `yaml:"half_extents"`
	Density     float64    `yaml:"density" env:"DENSITY"`
	Restitution float64    `yaml:"restitution" env:"RESTITUTION"`
	Friction    float64    `yaml:"friction" env:"FRICTION"`
	Margin      float64    `yaml:"margin" env:"MARGIN"`
}

type HammerConfig struct {
	FloorY      float64    `yaml:"floor_y" env:"FLOOR_Y"`
	Spawn       [3]float64 `yaml:"spawn"`
	Density     float64    `yaml:"density" env:"DENSITY"`
	Restitution float64    `yaml:"restitution" env:"RESTITUTION"`
	Friction    float64    `yaml:"friction" env:"FRICTION"`
}

type FloorConfig struct {
	Restitution float64 `yaml:"restitution" env:"RESTITUTION"`
	Friction    float64 `yaml:"friction" env:"FRICTION"`
}

func DefaultConfig() *Config {
	return &Config{
		Apps:         []string{"snowflakes"},
		MaxStep:      DefaultMaxStep,
		PhysicsSpeed: 1,
		Gravity:      [3]float64{0, -9.81, 0},
		Assets:       AssetsConfig{Root: "assets"},
		Grab:         GrabConfig{Threshold: DefaultThreshold, LaserRange: DefaultLaserRange},
		Spawn: SpawnConfig{
			Trigger:     "primary",
			Anchor:      "secondary",
			RequireAim:  true,
			HalfExtents: [3]float64{0.15, 0.15, 0.3},
			Density:     100,
			Restitution: 0,
			Friction:    0.8,
			Margin:      DefaultMargin,
		},
		Hammer: HammerConfig{
			FloorY:      -10,
			Spawn:       [3]float64{0, 2.5, 0},
			Density:     2330,
			Restitution: 0.35,
			Friction:    0.47,
		},
		Floor:  FloorConfig{Restitution: 0.1, Friction: 0.6},
		Script: "toss",
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides fields from SNOWFLAKES_* environment variables. Unset
// variables leave the current values alone.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	switch {
	case c.Frames < 0:
		return fmt.Errorf("%w: frames must not be negative, got %d", ErrInvalid, c.Frames)
	case c.FixedDt < 0:
		return fmt.Errorf("%w: fixed_dt must not be negative, got %f", ErrInvalid, c.FixedDt)
	case c.MaxStep <= 0:
		return fmt.Errorf("%w: max_step must be positive, got %f", ErrInvalid, c.MaxStep)
	case c.PhysicsSpeed <= 0:
		return fmt.Errorf("%w: physics_speed must be positive, got %f", ErrInvalid, c.PhysicsSpeed)
	case c.Grab.Threshold <= 0 || c.Grab.Threshold >= 1:
		return fmt.Errorf("%w: grab.threshold must be in (0,1), got %f", ErrInvalid, c.Grab.Threshold)
	case c.Grab.LaserRange <= 0:
		return fmt.Errorf("%w: grab.laser_range must be positive, got %f", ErrInvalid, c.Grab.LaserRange)
	case c.Spawn.Density <= 0 || c.Hammer.Density <= 0:
		return fmt.Errorf("%w: densities must be positive", ErrInvalid)
	case len(c.Apps) == 0:
		return fmt.Errorf("%w: no apps enabled", ErrInvalid)
	}
	for _, h := range c.Spawn.HalfExtents {
		if h <= 0 {
			return fmt.Errorf("%w: spawn.half_extents must be positive, got %v", ErrInvalid, c.Spawn.HalfExtents)
		}
	}
	for _, name := range c.Apps {
		if name != "snowflakes" && name != "hammer" {
			return fmt.Errorf("%w: unknown app %q", ErrInvalid, name)
		}
	}
	if _, err := c.SceneSpawn(); err != nil {
		return err
	}
	return nil
}

func (c *Config) Machine() grab.Machine {
	return grab.NewMachine(c.Grab.Threshold, c.Grab.LaserRange)
}

func (c *Config) SceneSpawn() (scene.SpawnConfig, error) {
	trigger, err := vr.ParseRole(c.Spawn.Trigger)
	if err != nil {
		return scene.SpawnConfig{}, fmt.Errorf("%w: spawn.trigger: %v", ErrInvalid, err)
	}
	anchor, err := vr.ParseRole(c.Spawn.Anchor)
	if err != nil {
		return scene.SpawnConfig{}, fmt.Errorf("%w: spawn.anchor: %v", ErrInvalid, err)
	}
	return scene.SpawnConfig{
		Trigger:     pose.FromRole(trigger),
		Anchor:      pose.FromRole(anchor),
		RequireAim:  c.Spawn.RequireAim,
		HalfExtents: mgl64.Vec3(c.Spawn.HalfExtents),
		Density:     c.Spawn.Density,
		Restitution: c.Spawn.Restitution,
		Friction:    c.Spawn.Friction,
		Margin:      c.Spawn.Margin,
	}, nil
}

func (c *Config) SceneHammer() scene.HammerConfig {
	return scene.HammerConfig{
		FloorY:      c.Hammer.FloorY,
		Spawn:       mgl64.Vec3(c.Hammer.Spawn),
		Density:     c.Hammer.Density,
		Restitution: c.Hammer.Restitution,
		Friction:    c.Hammer.Friction,
	}
}

func (c *Config) FrameOptions() frame.Options {
	return frame.Options{
		Frames:       c.Frames,
		FixedDt:      c.FixedDt,
		MaxStep:      c.MaxStep,
		PhysicsSpeed: c.PhysicsSpeed,
		Gravity:      mgl64.Vec3(c.Gravity),
		Floor: frame.FloorConfig{
			Restitution: c.Floor.Restitution,
			Friction:    c.Floor.Friction,
			Margin:      DefaultMargin,
		},
	}
}

// HasApp reports whether name is enabled.
func (c *Config) HasApp(name string) bool {
	for _, a := range c.Apps {
		if a == name {
			return true
		}
	}
	return false
}
