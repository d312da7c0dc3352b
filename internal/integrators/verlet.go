package integrators

import "github.com/san-kum/trajsim/internal/dynamo"

// Verlet is velocity Verlet. The second acceleration is evaluated at the new
// configuration with the old velocity, which is exact for forces that do
// not depend on velocity.
type Verlet struct {
	base
}

func NewVerlet(dyn dynamo.Dynamics, dt float64) (*Verlet, error) {
	b, err := newBase(dyn, dt)
	if err != nil {
		return nil, err
	}
	return &Verlet{base: b}, nil
}

func (v *Verlet) Name() string { return "verlet" }

func (v *Verlet) Step(x dynamo.State, u dynamo.Control) (dynamo.State, error) {
	if err := v.checkStep(x, u); err != nil {
		return nil, err
	}

	f, err := v.derivative(x, u)
	if err != nil {
		return nil, err
	}

	nq, nv := v.space.NQ(), v.space.NV()
	dt2 := v.dt * v.dt

	dq := make([]float64, nv)
	for i := 0; i < nv; i++ {
		dq[i] = f[i]*v.dt + 0.5*f[nv+i]*dt2
	}

	mid := make(dynamo.State, len(x))
	copy(mid, v.space.IntegrateConfiguration(x[:nq], dq))
	copy(mid[nq:], x[nq:])

	fNew, err := v.derivative(mid, u)
	if err != nil {
		return nil, err
	}

	halfDt := 0.5 * v.dt
	for i := 0; i < nv; i++ {
		mid[nq+i] = x[nq+i] + (f[nv+i]+fNew[nv+i])*halfDt
	}

	return checkFinite(mid)
}
