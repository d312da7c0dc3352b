package integrators

import "github.com/san-kum/trajsim/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta scheme, with every stage
// taken through the space's retraction.
type RK4 struct {
	base
}

func NewRK4(dyn dynamo.Dynamics, dt float64) (*RK4, error) {
	b, err := newBase(dyn, dt)
	if err != nil {
		return nil, err
	}
	return &RK4{base: b}, nil
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) Step(x dynamo.State, u dynamo.Control) (dynamo.State, error) {
	if err := r.checkStep(x, u); err != nil {
		return nil, err
	}

	k1, err := r.derivative(x, u)
	if err != nil {
		return nil, err
	}
	k2, err := r.derivative(r.advance(x, 0.5*r.dt, k1), u)
	if err != nil {
		return nil, err
	}
	k3, err := r.derivative(r.advance(x, 0.5*r.dt, k2), u)
	if err != nil {
		return nil, err
	}
	k4, err := r.derivative(r.advance(x, r.dt, k3), u)
	if err != nil {
		return nil, err
	}

	n := len(k1)
	dx := make([]float64, n)
	dt6 := r.dt / 6.0
	for i := 0; i < n; i++ {
		dx[i] = dt6 * (k1[i] + 2*k2[i] + 2*k3[i] + k4[i])
	}

	return checkFinite(r.space.Integrate(x, dx))
}
