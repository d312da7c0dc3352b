package experiment

import (
	"fmt"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/trajsim/internal/dynamo"
	"github.com/san-kum/trajsim/internal/integrators"
	"github.com/san-kum/trajsim/internal/metrics"
	"github.com/san-kum/trajsim/internal/physics"
	"github.com/san-kum/trajsim/internal/rollout"
	"github.com/san-kum/trajsim/internal/viz"
)

// Model is a continuous system whose energy can be tracked.
type Model interface {
	dynamo.Dynamics
	dynamo.Hamiltonian
}

// System is a model ready to roll out and draw.
type System struct {
	Name     string
	Model    Model
	Skeleton viz.Skeleton
}

// Integrator holds exactly one of an explicit or an implicit scheme.
type Integrator struct {
	Explicit dynamo.Explicit
	Implicit dynamo.Implicit
}

type IntegratorOptions struct {
	RK2Variant integrators.RK2Variant
}

type integratorEntry struct {
	label string
	build func(dyn dynamo.Dynamics, dt float64, opts IntegratorOptions) (Integrator, error)
}

type Registry struct {
	models      map[string]func() (*System, error)
	integrators map[string]integratorEntry
}

func explicit[T dynamo.Explicit](fn func(dynamo.Dynamics, float64) (T, error)) func(dynamo.Dynamics, float64, IntegratorOptions) (Integrator, error) {
	return func(dyn dynamo.Dynamics, dt float64, _ IntegratorOptions) (Integrator, error) {
		integ, err := fn(dyn, dt)
		if err != nil {
			return Integrator{}, err
		}
		return Integrator{Explicit: integ}, nil
	}
}

func implicit[T dynamo.Implicit](fn func(dynamo.Dynamics, float64) (T, error)) func(dynamo.Dynamics, float64, IntegratorOptions) (Integrator, error) {
	return func(dyn dynamo.Dynamics, dt float64, _ IntegratorOptions) (Integrator, error) {
		integ, err := fn(dyn, dt)
		if err != nil {
			return Integrator{}, err
		}
		return Integrator{Implicit: integ}, nil
	}
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]func() (*System, error)),
		integrators: make(map[string]integratorEntry),
	}

	r.models["ur5"] = func() (*System, error) { return MultibodySystem(physics.UR5()) }
	r.models["pendulum"] = func() (*System, error) {
		p := physics.NewPendulum()
		return &System{Name: "pendulum", Model: p, Skeleton: pendulumSkeleton(p)}, nil
	}
	r.models["masschain"] = func() (*System, error) {
		mc := physics.NewMassChain(5)
		return &System{Name: "masschain", Model: mc, Skeleton: chainSkeleton(mc.N)}, nil
	}
	r.models["doublewell"] = func() (*System, error) {
		return &System{Name: "doublewell", Model: physics.NewDoubleWell(), Skeleton: particleSkeleton}, nil
	}
	r.models["stiff"] = func() (*System, error) {
		return &System{Name: "stiff", Model: physics.NewStiffOscillator(1e4), Skeleton: particleSkeleton}, nil
	}

	r.integrators["euler"] = integratorEntry{"Euler", explicit(integrators.NewEuler)}
	r.integrators["semi_implicit_euler"] = integratorEntry{"semi-implicit Euler", explicit(integrators.NewSemiImplicitEuler)}
	r.integrators["rk2"] = integratorEntry{"RK2", func(dyn dynamo.Dynamics, dt float64, opts IntegratorOptions) (Integrator, error) {
		integ, err := integrators.NewRK2Variant(dyn, dt, opts.RK2Variant)
		if err != nil {
			return Integrator{}, err
		}
		return Integrator{Explicit: integ}, nil
	}}
	r.integrators["rk4"] = integratorEntry{"RK4", explicit(integrators.NewRK4)}
	r.integrators["verlet"] = integratorEntry{"Verlet", explicit(integrators.NewVerlet)}
	r.integrators["midpoint"] = integratorEntry{"midpoint", implicit(integrators.NewMidpoint)}
	r.integrators["implicit_euler"] = integratorEntry{"implicit Euler", implicit(integrators.NewImplicitEuler)}

	return r
}

// MultibodySystem wraps a multibody model with free (identity) actuation.
func MultibodySystem(model *physics.Model) (*System, error) {
	dyn, err := physics.NewFreeFwdDynamics(model, nil)
	if err != nil {
		return nil, err
	}
	nq := model.Space().NQ()
	return &System{
		Name:  model.Name(),
		Model: dyn,
		Skeleton: func(x dynamo.State) []mgl64.Vec3 {
			return model.FramePositions(x[:nq])
		},
	}, nil
}

// LoadModel builds a system from a JSON or YAML multibody description.
func (r *Registry) LoadModel(path string) (*System, error) {
	model, err := physics.LoadModelFile(path)
	if err != nil {
		return nil, err
	}
	return MultibodySystem(model)
}

func (r *Registry) GetModel(name string) (*System, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown model %q", dynamo.ErrInvalidArgument, name)
	}
	return fn()
}

func (r *Registry) GetIntegrator(name string, dyn dynamo.Dynamics, dt float64, opts IntegratorOptions) (Integrator, error) {
	e, ok := r.integrators[name]
	if !ok {
		return Integrator{}, fmt.Errorf("%w: unknown integrator %q", dynamo.ErrInvalidArgument, name)
	}
	return e.build(dyn, dt, opts)
}

// Label returns the display name used in figures and summaries.
func (r *Registry) Label(integrator string) string {
	if e, ok := r.integrators[integrator]; ok {
		return e.label
	}
	return integrator
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DefaultMetrics are collected on every rollout.
func (r *Registry) DefaultMetrics(h dynamo.Hamiltonian) []rollout.MetricFactory {
	return []rollout.MetricFactory{
		func() dynamo.Metric { return metrics.NewEnergy(h) },
		func() dynamo.Metric { return metrics.NewEnergyDrift(h) },
		func() dynamo.Metric { return metrics.NewStability(1e3) },
		func() dynamo.Metric { return metrics.NewControlEffort() },
	}
}

func pendulumSkeleton(p *physics.Pendulum) viz.Skeleton {
	return func(x dynamo.State) []mgl64.Vec3 {
		s, c := math.Sincos(x[0])
		return []mgl64.Vec3{{}, {p.Length * s, 0, -p.Length * c}}
	}
}

// chainSkeleton places the masses along x between walls at 0 and n+1.
func chainSkeleton(n int) viz.Skeleton {
	return func(x dynamo.State) []mgl64.Vec3 {
		pts := make([]mgl64.Vec3, 0, n+2)
		pts = append(pts, mgl64.Vec3{})
		for i := 0; i < n; i++ {
			pts = append(pts, mgl64.Vec3{float64(i+1) + x[i], 0, 0})
		}
		return append(pts, mgl64.Vec3{float64(n + 1), 0, 0})
	}
}

func particleSkeleton(x dynamo.State) []mgl64.Vec3 {
	return []mgl64.Vec3{{}, {x[0], 0, 0}}
}
