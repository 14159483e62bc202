package config

import "sort"

// Presets are named starting points. Each is a complete config built from
// the defaults.
var Presets = map[string]*Config{
	"hexagonal": with(func(c *Config) {
		c.Sampler = "hexagonal"
		c.Hexagonal.Radius = 8
	}),
	"cold": with(func(c *Config) {
		c.Shell.Radius = 10
		c.Shell.Temperature = [2]float64{20, 30}
	}),
	"orbiting": with(func(c *Config) {
		c.Shell.Radius = 12
		c.Body.Velocity = [3]float64{0.25, 0, 0}
		c.Body.Dt = 1
		c.Rounds = 20
	}),
	"dense": with(func(c *Config) {
		c.Panels = 40
		c.Shell.Radius = 12
		c.Engine.Trials = 50
	}),
	"hyperion": DefaultConfig(),
}

func with(mutate func(*Config)) *Config {
	cfg := DefaultConfig()
	mutate(cfg)
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
