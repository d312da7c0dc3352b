package integrators

import (
	"github.com/san-kum/trajsim/internal/dynamo"
)

// Midpoint is the implicit midpoint rule. The next state y solves
//
//	dt f(interp(x, y, 1/2), u) - (y - x) = 0
//
// where the difference and interpolation are taken on the state manifold.
type Midpoint struct {
	base
}

func NewMidpoint(dyn dynamo.Dynamics, dt float64) (*Midpoint, error) {
	b, err := newBase(dyn, dt)
	if err != nil {
		return nil, err
	}
	return &Midpoint{base: b}, nil
}

func (m *Midpoint) Name() string { return "midpoint" }

func (m *Midpoint) Residual(x dynamo.State, u dynamo.Control, y dynamo.State, r []float64) error {
	if err := m.checkStep(x, u); err != nil {
		return err
	}
	if err := dynamo.CheckDims("candidate", len(y), m.space.NX()); err != nil {
		return err
	}
	if err := dynamo.CheckDims("residual", len(r), m.space.NDX()); err != nil {
		return err
	}

	f, err := m.derivative(m.space.Interpolate(x, y, 0.5), u)
	if err != nil {
		return err
	}
	d := m.space.Difference(x, y)
	for i := range r {
		r[i] = m.dt*f[i] - d[i]
	}
	return nil
}

// Guess starts the root-find from the current state.
func (m *Midpoint) Guess(x dynamo.State, u dynamo.Control) (dynamo.State, error) {
	if err := m.checkStep(x, u); err != nil {
		return nil, err
	}
	return x.Clone(), nil
}

// ImplicitEuler is the backward Euler rule dt f(y, u) - (y - x) = 0.
type ImplicitEuler struct {
	base
}

func NewImplicitEuler(dyn dynamo.Dynamics, dt float64) (*ImplicitEuler, error) {
	b, err := newBase(dyn, dt)
	if err != nil {
		return nil, err
	}
	return &ImplicitEuler{base: b}, nil
}

func (e *ImplicitEuler) Name() string { return "implicit_euler" }

func (e *ImplicitEuler) Residual(x dynamo.State, u dynamo.Control, y dynamo.State, r []float64) error {
	if err := e.checkStep(x, u); err != nil {
		return err
	}
	if err := dynamo.CheckDims("candidate", len(y), e.space.NX()); err != nil {
		return err
	}
	if err := dynamo.CheckDims("residual", len(r), e.space.NDX()); err != nil {
		return err
	}

	f, err := e.derivative(y, u)
	if err != nil {
		return err
	}
	d := e.space.Difference(x, y)
	for i := range r {
		r[i] = e.dt*f[i] - d[i]
	}
	return nil
}

func (e *ImplicitEuler) Guess(x dynamo.State, u dynamo.Control) (dynamo.State, error) {
	if err := e.checkStep(x, u); err != nil {
		return nil, err
	}
	return x.Clone(), nil
}
