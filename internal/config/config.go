package config

import (
	"fmt"
	"maps"
	"math/rand"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/trajsim/internal/control"
	"github.com/san-kum/trajsim/internal/dynamo"
	"github.com/san-kum/trajsim/internal/export"
	"github.com/san-kum/trajsim/internal/integrators"
	"github.com/san-kum/trajsim/internal/logging"
	"github.com/san-kum/trajsim/internal/solver"
)

const (
	DefaultDt    = 0.01
	DefaultSteps = 500
	DefaultSeed  = 20240611
)

type Config struct {
	Model string `yaml:"model"`
	// ModelFile loads a multibody description instead of a built-in model.
	ModelFile   string          `yaml:"model_file,omitempty"`
	Dt          float64         `yaml:"dt"`
	Steps       int             `yaml:"steps"`
	Seed        int64           `yaml:"seed"`
	Integrators []string        `yaml:"integrators"`
	RK2Variant  string          `yaml:"rk2_variant,omitempty"`
	// Params overrides physical parameters of the analytic models.
	Params    map[string]float64 `yaml:"params,omitempty"`
	Solver    solver.Options     `yaml:"solver"`
	InitState InitStateConfig    `yaml:"init_state"`
	Controls  control.Spec       `yaml:"controls"`
	Output    OutputConfig       `yaml:"output"`
	Log       logging.Config     `yaml:"log"`
}

// InitStateConfig gives joint angles and velocities, one entry per degree of
// freedom. When both are empty the state is drawn from Seed.
type InitStateConfig struct {
	Q []float64 `yaml:"q,omitempty"`
	V []float64 `yaml:"v,omitempty"`
}

type OutputConfig struct {
	Figure  string `yaml:"figure"`
	SVG     string `yaml:"svg,omitempty"`
	ASCII   bool   `yaml:"ascii"`
	Summary bool   `yaml:"summary"`
	RunsDir string `yaml:"runs_dir"`
	Store   bool   `yaml:"store"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:       "ur5",
		Dt:          DefaultDt,
		Steps:       DefaultSteps,
		Seed:        DefaultSeed,
		Integrators: []string{"rk2", "midpoint"},
		RK2Variant:  integrators.RK2Midpoint.String(),
		Solver:      solver.DefaultOptions(),
		Controls:    control.Spec{Kind: "zero"},
		Output: OutputConfig{
			Figure:  export.DefaultEnergyFigurePath,
			ASCII:   true,
			Summary: true,
			RunsDir: "runs",
			Store:   true,
		},
		Log: logging.DefaultConfig(),
	}
}

// Load reads a YAML file on top of the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", dynamo.ErrInvalidArgument, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Integrators = slices.Clone(c.Integrators)
	out.InitState.Q = slices.Clone(c.InitState.Q)
	out.InitState.V = slices.Clone(c.InitState.V)
	out.Controls.Value = slices.Clone(c.Controls.Value)
	out.Params = maps.Clone(c.Params)
	return &out
}

func (c *Config) Validate() error {
	if c.Model == "" && c.ModelFile == "" {
		return fmt.Errorf("%w: no model given", dynamo.ErrInvalidArgument)
	}
	if !(c.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrInvalidArgument, c.Dt)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", dynamo.ErrInvalidArgument, c.Steps)
	}
	if len(c.Integrators) == 0 {
		return fmt.Errorf("%w: no integrators listed", dynamo.ErrInvalidArgument)
	}
	seen := make(map[string]bool, len(c.Integrators))
	for _, name := range c.Integrators {
		if seen[name] {
			return fmt.Errorf("%w: integrator %q listed twice", dynamo.ErrInvalidArgument, name)
		}
		seen[name] = true
	}
	if _, err := integrators.ParseRK2Variant(c.RK2Variant); err != nil {
		return err
	}
	if err := c.Solver.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}

// GetInitState builds the initial state on the model's phase space.
func (c *Config) GetInitState(space dynamo.PhaseSpace) (dynamo.State, error) {
	if len(c.InitState.Q) == 0 && len(c.InitState.V) == 0 {
		return space.Rand(rand.New(rand.NewSource(c.Seed))), nil
	}

	nv := space.NV()
	dq := make([]float64, nv)
	v := make([]float64, nv)
	if len(c.InitState.Q) > 0 {
		if err := dynamo.CheckDims("init_state.q", len(c.InitState.Q), nv); err != nil {
			return nil, err
		}
		copy(dq, c.InitState.Q)
	}
	if len(c.InitState.V) > 0 {
		if err := dynamo.CheckDims("init_state.v", len(c.InitState.V), nv); err != nil {
			return nil, err
		}
		copy(v, c.InitState.V)
	}

	q := space.IntegrateConfiguration(space.Neutral()[:space.NQ()], dq)
	return append(dynamo.State(q), v...), nil
}

// ControlSequence expands the configured controls for a system with nu inputs.
func (c *Config) ControlSequence(nu int) ([]dynamo.Control, error) {
	return c.Controls.Build(c.Steps, nu, c.Dt)
}
