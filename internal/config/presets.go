package config

import "sort"

var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"headless": preset(func(c *Config) {
		c.Mock = true
		c.FixedDt = 1.0 / 90
		c.Assets.Placeholders = true
	}),
	"hammer": preset(func(c *Config) {
		c.Mock = true
		c.Apps = []string{"hammer"}
		c.Script = "idle"
	}),
	"sandbox": preset(func(c *Config) {
		c.Mock = true
		c.Apps = []string{"snowflakes", "hammer"}
		c.Spawn.RequireAim = false
		c.Script = "stack"
	}),
	"slowmo": preset(func(c *Config) {
		c.Mock = true
		c.PhysicsSpeed = 0.25
	}),
	"moon": preset(func(c *Config) {
		c.Mock = true
		c.Gravity = [3]float64{0, -1.62, 0}
	}),
}

func preset(apply func(*Config)) *Config {
	c := DefaultConfig()
	apply(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	c.Apps = append([]string(nil), cfg.Apps...)
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
