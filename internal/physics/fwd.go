package physics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajsim/internal/dynamo"
	"github.com/san-kum/trajsim/internal/manifold"
)

// FreeFwdDynamics is the unconstrained forward dynamics of a multibody model
// driven through an actuation matrix:
//
//	a = M(q)^-1 (B u - b(q, v))
type FreeFwdDynamics struct {
	model     *Model
	actuation *mat.Dense
	nu        int
}

// NewFreeFwdDynamics builds forward dynamics for model. A nil actuation
// matrix means every joint is directly actuated (B = I).
func NewFreeFwdDynamics(model *Model, actuation *mat.Dense) (*FreeFwdDynamics, error) {
	nv := model.NV()
	if actuation == nil {
		actuation = mat.NewDense(nv, nv, nil)
		for i := 0; i < nv; i++ {
			actuation.Set(i, i, 1)
		}
	}

	rows, cols := actuation.Dims()
	if err := dynamo.CheckDims("actuation rows", rows, nv); err != nil {
		return nil, err
	}
	if cols == 0 {
		return nil, fmt.Errorf("%w: actuation matrix has no columns", dynamo.ErrInvalidArgument)
	}

	return &FreeFwdDynamics{model: model, actuation: actuation, nu: cols}, nil
}

func (d *FreeFwdDynamics) Model() *Model                 { return d.model }
func (d *FreeFwdDynamics) Space() dynamo.PhaseSpace      { return d.model.Space() }
func (d *FreeFwdDynamics) NU() int                       { return d.nu }
func (d *FreeFwdDynamics) Energy(x dynamo.State) float64 { return d.model.Energy(x) }

func (d *FreeFwdDynamics) Acceleration(x dynamo.State, u dynamo.Control) ([]float64, error) {
	space := d.model.Space()
	if err := dynamo.CheckDims("state", len(x), space.NX()); err != nil {
		return nil, err
	}
	if err := dynamo.CheckDims("control", len(u), d.nu); err != nil {
		return nil, err
	}

	nv := space.NV()
	q, v := manifold.Split(space, x)
	rs := d.model.rotations(q)
	bias := d.model.rnea(rs, v, make([]float64, nv), d.model.gravity)

	rhs := mat.NewVecDense(nv, nil)
	rhs.MulVec(d.actuation, mat.NewVecDense(d.nu, u.Clone()))
	rhs.SubVec(rhs, mat.NewVecDense(nv, bias))

	var chol mat.Cholesky
	if ok := chol.Factorize(d.model.massMatrix(rs)); !ok {
		return nil, fmt.Errorf("%w: mass matrix is not positive definite", dynamo.ErrDomain)
	}

	acc := mat.NewVecDense(nv, nil)
	if err := chol.SolveVecTo(acc, rhs); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return nil, fmt.Errorf("%w: %v", dynamo.ErrDomain, err)
		}
	}

	out := acc.RawVector().Data
	if !dynamo.State(out).IsValid() {
		return nil, fmt.Errorf("%w: non-finite acceleration", dynamo.ErrDomain)
	}
	return out, nil
}
