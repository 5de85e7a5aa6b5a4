package config

import (
	"math"
	"slices"
)

var Presets = map[string]func() *Config{
	// single is one pendulum with both arms past horizontal.
	"single": DefaultConfig,

	"gentle": func() *Config {
		c := DefaultConfig()
		c.Pendulum.A1, c.Pendulum.A2 = 0.3, 0.3
		return c
	},

	// butterfly runs two pendulums a micro-radian apart.
	"butterfly": func() *Config {
		c := DefaultConfig()
		c.Size = 2
		c.AngleOffset = 1e-6
		c.Dt = 0.001
		c.Frames = 5000
		c.Substeps = 20
		return c
	},

	"swarm": func() *Config {
		c := DefaultConfig()
		c.Size = 200
		c.AngleOffset = 1e-5
		c.Pendulum.A1, c.Pendulum.A2 = math.Pi-0.2, math.Pi-0.1
		c.Trace.Capacity = 500
		c.Trace.Stride = 2
		return c
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
