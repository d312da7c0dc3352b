package experiment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/trajsim/internal/config"
	"github.com/san-kum/trajsim/internal/dynamo"
	"github.com/san-kum/trajsim/internal/export"
	"github.com/san-kum/trajsim/internal/integrators"
	"github.com/san-kum/trajsim/internal/metrics"
	"github.com/san-kum/trajsim/internal/physics"
	"github.com/san-kum/trajsim/internal/rollout"
	"github.com/san-kum/trajsim/internal/storage"
	"github.com/san-kum/trajsim/internal/viz"
)

// Experiment rolls out one model with every configured integrator from the
// same initial state and control sequence.
type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	logger    *zap.Logger
	observers []dynamo.Observer
}

type Option func(*Experiment)

func WithLogger(l *zap.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

func WithObserver(o dynamo.Observer) Option {
	return func(e *Experiment) { e.observers = append(e.observers, o) }
}

func New(cfg *config.Config, registry *Registry, opts ...Option) *Experiment {
	e := &Experiment{cfg: cfg, registry: registry, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run is one integrator's rollout and its energy series.
type Run struct {
	Integrator string
	Label      string
	Trajectory *dynamo.Trajectory
	Times      []float64
	Energy     []float64
}

type Result struct {
	System   *System
	X0       dynamo.State
	Controls []dynamo.Control
	Runs     []Run
}

func (e *Experiment) system() (*System, error) {
	if e.cfg.ModelFile != "" {
		return e.registry.LoadModel(e.cfg.ModelFile)
	}
	return e.registry.GetModel(e.cfg.Model)
}

// Setup resolves the model, initial state and controls without stepping.
func (e *Experiment) Setup() (*Result, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}
	sys, err := e.system()
	if err != nil {
		return nil, err
	}
	if len(e.cfg.Params) > 0 {
		m, ok := sys.Model.(dynamo.Configurable)
		if !ok {
			return nil, fmt.Errorf("%w: model %s takes no parameters", dynamo.ErrInvalidArgument, sys.Name)
		}
		if err := physics.SetParams(m, e.cfg.Params); err != nil {
			return nil, err
		}
	}
	x0, err := e.cfg.GetInitState(sys.Model.Space())
	if err != nil {
		return nil, err
	}
	us, err := e.cfg.ControlSequence(sys.Model.NU())
	if err != nil {
		return nil, err
	}
	return &Result{System: sys, X0: x0, Controls: us}, nil
}

func (e *Experiment) jobs(res *Result) ([]rollout.Job, error) {
	variant, err := integrators.ParseRK2Variant(e.cfg.RK2Variant)
	if err != nil {
		return nil, err
	}
	opts := IntegratorOptions{RK2Variant: variant}

	jobs := make([]rollout.Job, 0, len(e.cfg.Integrators))
	for _, name := range e.cfg.Integrators {
		integ, err := e.registry.GetIntegrator(name, res.System.Model, e.cfg.Dt, opts)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, rollout.Job{
			Name:     name,
			X0:       res.X0,
			Controls: res.Controls,
			Explicit: integ.Explicit,
			Implicit: integ.Implicit,
			Space:    res.System.Model.Space(),
		})
	}
	return jobs, nil
}

// Run executes every integrator. A failure in any rollout fails the whole
// experiment and no partial result is returned.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	res, err := e.Setup()
	if err != nil {
		return nil, err
	}
	jobs, err := e.jobs(res)
	if err != nil {
		return nil, err
	}

	opts := []rollout.Option{
		rollout.WithLogger(e.logger.With(zap.String("model", res.System.Name))),
		rollout.WithSolver(e.cfg.Solver),
	}
	for _, f := range e.registry.DefaultMetrics(res.System.Model) {
		opts = append(opts, rollout.WithMetric(f))
	}
	for _, o := range e.observers {
		opts = append(opts, rollout.WithObserver(o))
	}

	trajs, err := rollout.New(opts...).Batch(ctx, jobs)
	if err != nil {
		return nil, err
	}

	times := metrics.TimeGrid(e.cfg.Steps, e.cfg.Dt)
	for i, traj := range trajs {
		name := e.cfg.Integrators[i]
		res.Runs = append(res.Runs, Run{
			Integrator: name,
			Label:      e.registry.Label(name),
			Trajectory: traj,
			Times:      times,
			Energy:     metrics.EnergySeries(res.System.Model, traj),
		})
	}
	return res, nil
}

// Export adds every run to the sink and closes it.
func (r *Result) Export(sink export.Sink) error {
	for _, run := range r.Runs {
		if err := sink.Add(run.Label, run.Times, run.Energy); err != nil {
			sink.Close()
			return fmt.Errorf("%s: %w", run.Label, err)
		}
	}
	return sink.Close()
}

// Save catalogs every run.
func (r *Result) Save(ctx context.Context, st *storage.Store, seed int64) ([]storage.Run, error) {
	saved := make([]storage.Run, 0, len(r.Runs))
	for _, run := range r.Runs {
		rec, err := st.Save(ctx, storage.Run{
			Label:      run.Label,
			Model:      r.System.Name,
			Integrator: run.Integrator,
			Seed:       seed,
		}, run.Trajectory, run.Energy)
		if err != nil {
			return saved, err
		}
		saved = append(saved, rec)
	}
	return saved, nil
}

// PlayerRuns converts the runs for terminal playback.
func (r *Result) PlayerRuns() []viz.Run {
	out := make([]viz.Run, len(r.Runs))
	for i, run := range r.Runs {
		out[i] = viz.Run{
			Label:  run.Label,
			States: run.Trajectory.States,
			Energy: run.Energy,
			Dt:     run.Trajectory.Dt,
		}
	}
	return out
}
