package rollout

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/trajsim/internal/dynamo"
)

// Job is one independent trajectory of a batch. Exactly one of Explicit and
// Implicit must be set; Space defaults to the implicit integrator's space.
type Job struct {
	Name     string
	X0       dynamo.State
	Controls []dynamo.Control
	Explicit dynamo.Explicit
	Implicit dynamo.Implicit
	Space    dynamo.Space
}

func (j Job) label() string {
	switch {
	case j.Name != "":
		return j.Name
	case j.Explicit != nil:
		return j.Explicit.Name()
	case j.Implicit != nil:
		return j.Implicit.Name()
	default:
		return "unnamed"
	}
}

// Batch rolls out independent jobs concurrently, at most GOMAXPROCS at a
// time. Steps within one trajectory stay sequential. The first failure
// cancels the remaining jobs; results are returned in job order.
func (e *Engine) Batch(ctx context.Context, jobs []Job) ([]*dynamo.Trajectory, error) {
	for i, job := range jobs {
		if (job.Explicit == nil) == (job.Implicit == nil) {
			return nil, fmt.Errorf("%w: job %d (%s) needs exactly one integrator", dynamo.ErrInvalidArgument, i, job.label())
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	out := make([]*dynamo.Trajectory, len(jobs))
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			var (
				tr  *dynamo.Trajectory
				err error
			)
			if job.Explicit != nil {
				tr, err = e.Explicit(ctx, job.Explicit, job.X0, job.Controls)
			} else {
				tr, err = e.Implicit(ctx, job.Space, job.Implicit, job.X0, job.Controls)
			}
			if err != nil {
				return fmt.Errorf("job %d (%s): %w", i, job.label(), err)
			}
			out[i] = tr
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
