package integrators

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/trajsim/internal/dynamo"
)

// base holds what every scheme shares. Integrators carry no mutable state,
// so one instance can step many trajectories concurrently.
type base struct {
	dyn   dynamo.Dynamics
	space dynamo.PhaseSpace
	dt    float64
}

func newBase(dyn dynamo.Dynamics, dt float64) (base, error) {
	if dt <= 0 {
		return base{}, fmt.Errorf("%w: got %g", dynamo.ErrNonPositiveStep, dt)
	}
	return base{dyn: dyn, space: dyn.Space(), dt: dt}, nil
}

func (b base) Space() dynamo.Space       { return b.space }
func (b base) NU() int                   { return b.dyn.NU() }
func (b base) Timestep() float64         { return b.dt }
func (b base) Dynamics() dynamo.Dynamics { return b.dyn }

func (b base) checkStep(x dynamo.State, u dynamo.Control) error {
	if err := dynamo.CheckDims("state", len(x), b.space.NX()); err != nil {
		return err
	}
	return dynamo.CheckDims("control", len(u), b.dyn.NU())
}

// derivative returns the phase-space tangent [v | a] at x.
func (b base) derivative(x dynamo.State, u dynamo.Control) ([]float64, error) {
	a, err := b.dyn.Acceleration(x, u)
	if err != nil {
		return nil, err
	}
	if !dynamo.State(a).IsValid() {
		return nil, fmt.Errorf("%w: non-finite acceleration", dynamo.ErrDomain)
	}

	nq, nv := b.space.NQ(), b.space.NV()
	f := make([]float64, 2*nv)
	copy(f, x[nq:nq+nv])
	copy(f[nv:], a)
	return f, nil
}

// advance returns x retracted along alpha*dx.
func (b base) advance(x dynamo.State, alpha float64, dx []float64) dynamo.State {
	step := make([]float64, len(dx))
	floats.ScaleTo(step, alpha, dx)
	return b.space.Integrate(x, step)
}

func checkFinite(y dynamo.State) (dynamo.State, error) {
	if !y.IsValid() {
		return nil, fmt.Errorf("%w: non-finite state", dynamo.ErrDomain)
	}
	return y, nil
}
