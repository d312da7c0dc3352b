package rollout

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/trajsim/internal/dynamo"
	"github.com/san-kum/trajsim/internal/solver"
)

// MetricFactory builds a fresh metric for each rollout so that an Engine can
// be shared between goroutines.
type MetricFactory func() dynamo.Metric

// Engine runs fixed-step rollouts. Engines hold configuration only; every
// call allocates its own trajectory and metric instances.
type Engine struct {
	logger    *zap.Logger
	solver    solver.Options
	metrics   []MetricFactory
	observers []dynamo.Observer
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithSolver sets the root-finder options used by implicit rollouts.
func WithSolver(o solver.Options) Option {
	return func(e *Engine) { e.solver = o }
}

func WithMetric(f MetricFactory) Option {
	return func(e *Engine) { e.metrics = append(e.metrics, f) }
}

// WithObserver registers a per-step callback. Observers are shared by all
// rollouts of the engine, including concurrent batch jobs.
func WithObserver(o dynamo.Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

func New(opts ...Option) *Engine {
	e := &Engine{
		logger: zap.NewNop(),
		solver: solver.DefaultOptions(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) SolverOptions() solver.Options { return e.solver }

var defaultEngine = New()

// Rollout runs an explicit integrator with the default engine.
func Rollout(ctx context.Context, integ dynamo.Explicit, x0 dynamo.State, us []dynamo.Control) (*dynamo.Trajectory, error) {
	return defaultEngine.Explicit(ctx, integ, x0, us)
}

// RolloutImplicit runs an implicit integrator with the default engine.
func RolloutImplicit(ctx context.Context, space dynamo.Space, integ dynamo.Implicit, x0 dynamo.State, us []dynamo.Control) (*dynamo.Trajectory, error) {
	return defaultEngine.Implicit(ctx, space, integ, x0, us)
}

// Explicit produces states x[0] = x0, x[i+1] = integ.Step(x[i], us[i]).
func (e *Engine) Explicit(ctx context.Context, integ dynamo.Explicit, x0 dynamo.State, us []dynamo.Control) (*dynamo.Trajectory, error) {
	if err := validate(integ.Space(), integ.NU(), integ.Timestep(), x0, us); err != nil {
		return nil, err
	}

	return e.run(ctx, integ.Name(), integ.Timestep(), x0, us, false,
		func(x dynamo.State, u dynamo.Control) (dynamo.State, int, error) {
			y, err := integ.Step(x, u)
			return y, 0, err
		})
}

// Implicit solves integ's residual at every step, retracting Newton updates
// on space. space must have the same dimensions as the integrator's space.
func (e *Engine) Implicit(ctx context.Context, space dynamo.Space, integ dynamo.Implicit, x0 dynamo.State, us []dynamo.Control) (*dynamo.Trajectory, error) {
	if space == nil {
		space = integ.Space()
	}
	if err := dynamo.CheckDims("space nx", space.NX(), integ.Space().NX()); err != nil {
		return nil, err
	}
	if err := dynamo.CheckDims("space ndx", space.NDX(), integ.Space().NDX()); err != nil {
		return nil, err
	}
	if err := e.solver.Validate(); err != nil {
		return nil, err
	}
	if err := validate(space, integ.NU(), integ.Timestep(), x0, us); err != nil {
		return nil, err
	}

	opts := e.solver
	return e.run(ctx, integ.Name(), integ.Timestep(), x0, us, true,
		func(x dynamo.State, u dynamo.Control) (dynamo.State, int, error) {
			guess, err := integ.Guess(x, u)
			if err != nil {
				return nil, 0, err
			}
			res, err := solver.Solve(space, guess, func(y dynamo.State, r []float64) error {
				return integ.Residual(x, u, y, r)
			}, opts)
			if err != nil {
				return nil, 0, err
			}
			return res.Solution, res.Iterations, nil
		})
}

func validate(space dynamo.Space, nu int, dt float64, x0 dynamo.State, us []dynamo.Control) error {
	if dt <= 0 {
		return fmt.Errorf("%w: got %g", dynamo.ErrNonPositiveStep, dt)
	}
	if len(us) == 0 {
		return dynamo.ErrEmptyControls
	}
	if err := dynamo.CheckDims("initial state", len(x0), space.NX()); err != nil {
		return err
	}
	if !x0.IsValid() {
		return fmt.Errorf("%w: initial state is not finite", dynamo.ErrInvalidArgument)
	}
	for i, u := range us {
		if err := dynamo.CheckDims(fmt.Sprintf("control %d", i), len(u), nu); err != nil {
			return err
		}
	}
	return nil
}

type stepFunc func(x dynamo.State, u dynamo.Control) (dynamo.State, int, error)

func (e *Engine) run(ctx context.Context, name string, dt float64, x0 dynamo.State, us []dynamo.Control, implicit bool, step stepFunc) (*dynamo.Trajectory, error) {
	start := time.Now()
	n := len(us)

	traj := &dynamo.Trajectory{
		States:     make([]dynamo.State, 0, n+1),
		Controls:   make([]dynamo.Control, 0, n),
		Dt:         dt,
		Integrator: name,
		Metrics:    make(map[string]float64, len(e.metrics)),
	}
	if implicit {
		traj.SolverIterations = make([]int, 0, n)
	}

	metrics := make([]dynamo.Metric, len(e.metrics))
	for i, f := range e.metrics {
		metrics[i] = f()
	}

	x := x0.Clone()
	traj.States = append(traj.States, x)

	for i, u := range us {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		t := float64(i) * dt
		e.observe(metrics, i, x, u, t)

		next, iters, err := step(x, u)
		if err != nil {
			e.logger.Warn("rollout aborted",
				zap.String("integrator", name),
				zap.Int("step", i),
				zap.Float64("t", t),
				zap.Error(err),
			)
			return nil, &dynamo.StepError{Step: i, Time: t, State: x.Clone(), Wrapped: err}
		}

		x = next
		traj.States = append(traj.States, x)
		traj.Controls = append(traj.Controls, u.Clone())
		if implicit {
			traj.SolverIterations = append(traj.SolverIterations, iters)
		}
	}

	e.observe(metrics, n, x, nil, float64(n)*dt)
	for _, m := range metrics {
		traj.Metrics[m.Name()] = m.Value()
	}

	fields := []zap.Field{
		zap.String("integrator", name),
		zap.Int("steps", n),
		zap.Float64("dt", dt),
		zap.Duration("elapsed", time.Since(start)),
	}
	if implicit {
		fields = append(fields, zap.Int("max_solver_iterations", maxInt(traj.SolverIterations)))
	}
	e.logger.Debug("rollout finished", fields...)

	return traj, nil
}

func (e *Engine) observe(metrics []dynamo.Metric, step int, x dynamo.State, u dynamo.Control, t float64) {
	for _, m := range metrics {
		m.Observe(x, u, t)
	}
	for _, o := range e.observers {
		o.OnStep(step, x, u, t)
	}
}

func maxInt(xs []int) int {
	out := 0
	for _, x := range xs {
		out = max(out, x)
	}
	return out
}
