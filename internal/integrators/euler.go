package integrators

import (
	"github.com/san-kum/trajsim/internal/dynamo"
)

// Euler is the explicit forward Euler scheme y = x + dt f(x).
type Euler struct {
	base
}

func NewEuler(dyn dynamo.Dynamics, dt float64) (*Euler, error) {
	b, err := newBase(dyn, dt)
	if err != nil {
		return nil, err
	}
	return &Euler{base: b}, nil
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(x dynamo.State, u dynamo.Control) (dynamo.State, error) {
	if err := e.checkStep(x, u); err != nil {
		return nil, err
	}
	f, err := e.derivative(x, u)
	if err != nil {
		return nil, err
	}
	return checkFinite(e.advance(x, e.dt, f))
}

// SemiImplicitEuler updates the velocity first and moves the configuration
// with the new velocity. It is symplectic for separable systems.
type SemiImplicitEuler struct {
	base
}

func NewSemiImplicitEuler(dyn dynamo.Dynamics, dt float64) (*SemiImplicitEuler, error) {
	b, err := newBase(dyn, dt)
	if err != nil {
		return nil, err
	}
	return &SemiImplicitEuler{base: b}, nil
}

func (s *SemiImplicitEuler) Name() string { return "semi_implicit_euler" }

func (s *SemiImplicitEuler) Step(x dynamo.State, u dynamo.Control) (dynamo.State, error) {
	if err := s.checkStep(x, u); err != nil {
		return nil, err
	}
	f, err := s.derivative(x, u)
	if err != nil {
		return nil, err
	}

	nv := s.space.NV()
	dx := make([]float64, 2*nv)
	for i := 0; i < nv; i++ {
		dx[nv+i] = s.dt * f[nv+i]
		dx[i] = s.dt * (f[i] + dx[nv+i])
	}
	return checkFinite(s.space.Integrate(x, dx))
}
