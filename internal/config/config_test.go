package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/trajsim/internal/dynamo"
	"github.com/san-kum/trajsim/internal/manifold"
	"github.com/san-kum/trajsim/internal/solver"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != "ur5" {
		t.Errorf("expected model ur5, got %s", cfg.Model)
	}
	if diff := cmp.Diff([]string{"rk2", "midpoint"}, cfg.Integrators); diff != "" {
		t.Errorf("integrators differ:\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(c *Config)
	}{
		{"no model", func(c *Config) { c.Model = "" }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative dt", func(c *Config) { c.Dt = -0.01 }},
		{"nan dt", func(c *Config) { c.Dt = math.NaN() }},
		{"no steps", func(c *Config) { c.Steps = 0 }},
		{"no integrators", func(c *Config) { c.Integrators = nil }},
		{"duplicate integrator", func(c *Config) { c.Integrators = []string{"rk2", "rk2"} }},
		{"bad rk2 variant", func(c *Config) { c.RK2Variant = "ralston" }},
		{"bad solver", func(c *Config) { c.Solver.MaxIterations = 0 }},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(cfg)
			if err := cfg.Validate(); !errors.Is(err, dynamo.ErrInvalidArgument) {
				t.Errorf("Validate() = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	yamlDoc := `
model: pendulum
dt: 0.005
integrators: [rk4]
solver:
  method: fixed_point
init_state:
  q: [0.3]
controls:
  kind: constant
  value: [0.1]
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != "pendulum" || cfg.Dt != 0.005 {
		t.Errorf("model/dt = %s/%g", cfg.Model, cfg.Dt)
	}
	if diff := cmp.Diff([]string{"rk4"}, cfg.Integrators); diff != "" {
		t.Errorf("integrators differ:\n%s", diff)
	}
	if cfg.Solver.Method != solver.FixedPoint {
		t.Errorf("method = %s", cfg.Solver.Method)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Steps != DefaultSteps || cfg.Solver.MaxIterations != 20 {
		t.Errorf("steps/max_iterations = %d/%d", cfg.Steps, cfg.Solver.MaxIterations)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("dt: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, dynamo.ErrInvalidArgument) {
		t.Errorf("got %v, want ErrInvalidArgument", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.yaml")
	want := GetPreset("doublewell", "hop")
	if err := Save(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip differs:\n%s", diff)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("pendulum", "small")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.InitState.Q[0] != 0.2 {
		t.Errorf("expected q 0.2, got %f", cfg.InitState.Q[0])
	}

	cfg.InitState.Q[0] = 9
	if GetPreset("pendulum", "small").InitState.Q[0] != 0.2 {
		t.Error("GetPreset returned shared storage")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("pendulum", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "small"); cfg != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestPresetsValid(t *testing.T) {
	for _, model := range PresetModels() {
		for _, name := range ListPresets(model) {
			if err := GetPreset(model, name).Validate(); err != nil {
				t.Errorf("%s/%s: %v", model, name, err)
			}
		}
	}
}

func TestListPresets(t *testing.T) {
	if diff := cmp.Diff([]string{"large", "schemes", "small"}, ListPresets("pendulum")); diff != "" {
		t.Errorf("pendulum presets differ:\n%s", diff)
	}
	if presets := ListPresets("nonexistent"); presets != nil {
		t.Error("expected nil for nonexistent model")
	}
}

func TestGetInitState(t *testing.T) {
	space := manifold.NewMultibody(
		manifold.Joint{Kind: manifold.Revolute},
		manifold.Joint{Kind: manifold.Continuous},
	)

	cfg := DefaultConfig()
	cfg.InitState = InitStateConfig{Q: []float64{0.5, math.Pi / 2}, V: []float64{1, -1}}
	x, err := cfg.GetInitState(space)
	if err != nil {
		t.Fatal(err)
	}
	want := dynamo.State{0.5, math.Cos(math.Pi / 2), 1, 1, -1}
	if diff := cmp.Diff(want, x, cmp.Comparer(func(a, b float64) bool { return math.Abs(a-b) < 1e-12 })); diff != "" {
		t.Errorf("state differs:\n%s", diff)
	}

	cfg.InitState = InitStateConfig{Q: []float64{1}}
	if _, err := cfg.GetInitState(space); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("short q: got %v", err)
	}
}

func TestGetInitStateRandomIsSeeded(t *testing.T) {
	space := manifold.NewEuclideanPhaseSpace(3)
	cfg := DefaultConfig()

	a, _ := cfg.GetInitState(space)
	b, _ := cfg.GetInitState(space)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed gave different states:\n%s", diff)
	}
	cfg.Seed++
	c, _ := cfg.GetInitState(space)
	if cmp.Equal(a, c) {
		t.Error("different seeds gave the same state")
	}
}
