package physics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajsim/internal/dynamo"
	"github.com/san-kum/trajsim/internal/manifold"
)

// LinearDiscrete is an already-discretized model x' = A x + B u + c. It
// satisfies dynamo.Explicit directly and needs no integrator.
type LinearDiscrete struct {
	a, b  *mat.Dense
	c     *mat.VecDense
	dt    float64
	space *manifold.VectorSpace
}

// NewLinearDiscrete validates shapes: A is n x n, B is n x m and c (optional)
// has length n.
func NewLinearDiscrete(a, b *mat.Dense, c []float64, dt float64) (*LinearDiscrete, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("%w: got %g", dynamo.ErrNonPositiveStep, dt)
	}
	n, ac := a.Dims()
	if err := dynamo.CheckDims("A columns", ac, n); err != nil {
		return nil, err
	}
	br, bc := b.Dims()
	if err := dynamo.CheckDims("B rows", br, n); err != nil {
		return nil, err
	}
	if bc == 0 {
		return nil, fmt.Errorf("%w: B has no columns", dynamo.ErrInvalidArgument)
	}

	ld := &LinearDiscrete{a: a, b: b, dt: dt, space: manifold.NewVectorSpace(n)}
	if c != nil {
		if err := dynamo.CheckDims("c", len(c), n); err != nil {
			return nil, err
		}
		ld.c = mat.NewVecDense(n, append([]float64(nil), c...))
	}
	return ld, nil
}

// NewDoubleIntegrator discretizes q'' = u exactly under zero-order hold.
func NewDoubleIntegrator(dt float64) (*LinearDiscrete, error) {
	a := mat.NewDense(2, 2, []float64{1, dt, 0, 1})
	b := mat.NewDense(2, 1, []float64{0.5 * dt * dt, dt})
	return NewLinearDiscrete(a, b, nil, dt)
}

func (l *LinearDiscrete) Name() string        { return "linear_discrete" }
func (l *LinearDiscrete) Space() dynamo.Space { return l.space }
func (l *LinearDiscrete) Timestep() float64   { return l.dt }

func (l *LinearDiscrete) NU() int {
	_, m := l.b.Dims()
	return m
}

func (l *LinearDiscrete) Step(x dynamo.State, u dynamo.Control) (dynamo.State, error) {
	n := l.space.NX()
	if err := dynamo.CheckDims("state", len(x), n); err != nil {
		return nil, err
	}
	if err := dynamo.CheckDims("control", len(u), l.NU()); err != nil {
		return nil, err
	}

	next := mat.NewVecDense(n, nil)
	next.MulVec(l.a, mat.NewVecDense(n, x.Clone()))

	bu := mat.NewVecDense(n, nil)
	bu.MulVec(l.b, mat.NewVecDense(len(u), u.Clone()))
	next.AddVec(next, bu)
	if l.c != nil {
		next.AddVec(next, l.c)
	}

	out := dynamo.State(next.RawVector().Data)
	if !out.IsValid() {
		return nil, fmt.Errorf("%w: non-finite state", dynamo.ErrDomain)
	}
	return out, nil
}
