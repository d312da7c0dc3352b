package config

import (
	"slices"

	"github.com/san-kum/trajsim/internal/control"
	"github.com/san-kum/trajsim/internal/solver"
)

func preset(edit func(c *Config)) *Config {
	c := DefaultConfig()
	edit(c)
	return c
}

var Presets = map[string]map[string]*Config{
	"ur5": {
		"freefall": DefaultConfig(),
		"rest": preset(func(c *Config) {
			c.InitState = InitStateConfig{Q: []float64{0, -1.57, 0, -1.57, 0, 0}}
		}),
		"wave": preset(func(c *Config) {
			c.Steps = 1000
			c.Controls = control.Spec{Kind: "sine", Amplitude: 5, Frequency: 0.5}
		}),
		"heun": preset(func(c *Config) {
			c.Integrators = []string{"rk2", "rk4", "midpoint"}
			c.RK2Variant = "heun"
		}),
	},
	"pendulum": {
		"small": preset(func(c *Config) {
			c.Model = "pendulum"
			c.Steps = 2000
			c.InitState = InitStateConfig{Q: []float64{0.2}}
		}),
		"large": preset(func(c *Config) {
			c.Model = "pendulum"
			c.Steps = 2000
			c.InitState = InitStateConfig{Q: []float64{2.5}}
		}),
		"schemes": preset(func(c *Config) {
			c.Model = "pendulum"
			c.Steps = 5000
			c.Integrators = []string{"euler", "semi_implicit_euler", "rk2", "rk4", "verlet", "midpoint", "implicit_euler"}
			c.InitState = InitStateConfig{Q: []float64{1.0}}
		}),
	},
	"stiff": {
		"newton": preset(func(c *Config) {
			c.Model = "stiff"
			c.Dt = 0.1
			c.Steps = 10
			c.Integrators = []string{"midpoint"}
			c.InitState = InitStateConfig{Q: []float64{1}}
		}),
		"fixed_point": preset(func(c *Config) {
			c.Model = "stiff"
			c.Dt = 0.1
			c.Steps = 10
			c.Integrators = []string{"midpoint"}
			c.Solver.Method = solver.FixedPoint
			c.InitState = InitStateConfig{Q: []float64{1}}
		}),
	},
	"masschain": {
		"pluck": preset(func(c *Config) {
			c.Model = "masschain"
			c.Steps = 2000
			c.Integrators = []string{"verlet", "midpoint"}
			c.InitState = InitStateConfig{Q: []float64{0.5, 0, 0, 0, 0}}
		}),
	},
	"doublewell": {
		"hop": preset(func(c *Config) {
			c.Model = "doublewell"
			c.Steps = 3000
			c.InitState = InitStateConfig{Q: []float64{-1}, V: []float64{1.2}}
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

// ListPresets returns the preset names of a model in sorted order.
func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// PresetModels returns the models that have presets, sorted.
func PresetModels() []string {
	models := make([]string, 0, len(Presets))
	for m := range Presets {
		models = append(models, m)
	}
	slices.Sort(models)
	return models
}
