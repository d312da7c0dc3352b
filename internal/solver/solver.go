// Package solver finds roots of residual functions defined on a state
// manifold. Updates are computed in tangent coordinates and applied through
// the space's retraction, so iterates never leave the manifold.
package solver

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajsim/internal/dynamo"
)

type Method string

const (
	Newton     Method = "newton"
	FixedPoint Method = "fixed_point"
)

func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case "", Newton:
		return Newton, nil
	case FixedPoint:
		return FixedPoint, nil
	default:
		return "", fmt.Errorf("%w: unknown solver method %q", dynamo.ErrInvalidArgument, s)
	}
}

type Options struct {
	Method Method `yaml:"method" json:"method"`
	// MaxIterations caps the number of updates per solve.
	MaxIterations int     `yaml:"max_iterations" json:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance" json:"tolerance"`
	// FDStep is the finite-difference step for the Newton Jacobian.
	FDStep float64 `yaml:"fd_step" json:"fd_step"`
}

func DefaultOptions() Options {
	return Options{
		Method:        Newton,
		MaxIterations: 20,
		Tolerance:     1e-9,
		FDStep:        1e-7,
	}
}

func (o Options) Validate() error {
	if _, err := ParseMethod(string(o.Method)); err != nil {
		return err
	}
	if o.MaxIterations <= 0 {
		return fmt.Errorf("%w: max_iterations must be positive, got %d", dynamo.ErrInvalidArgument, o.MaxIterations)
	}
	if o.Tolerance <= 0 {
		return fmt.Errorf("%w: tolerance must be positive, got %g", dynamo.ErrInvalidArgument, o.Tolerance)
	}
	if o.FDStep < 0 {
		return fmt.Errorf("%w: fd_step must not be negative, got %g", dynamo.ErrInvalidArgument, o.FDStep)
	}
	return nil
}

// ResidualFunc writes the residual at y into r, which has length NDX.
type ResidualFunc func(y dynamo.State, r []float64) error

type Result struct {
	Solution   dynamo.State
	Iterations int
	Residual   float64
}

// Solve iterates from guess until the residual norm drops to the tolerance.
// Errors from the residual are returned unchanged; running out of iterations
// or reaching a non-finite residual yields a *dynamo.NonConvergenceError.
func Solve(space dynamo.Space, guess dynamo.State, residual ResidualFunc, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}
	if err := dynamo.CheckDims("guess", len(guess), space.NX()); err != nil {
		return Result{}, err
	}
	if opts.Method == "" {
		opts.Method = Newton
	}

	y := guess.Clone()
	r := make([]float64, space.NDX())

	for it := 0; ; it++ {
		if err := residual(y, r); err != nil {
			return Result{}, err
		}

		norm := floats.Norm(r, 2)
		if math.IsNaN(norm) || math.IsInf(norm, 0) {
			return Result{}, &dynamo.NonConvergenceError{Iterations: it, Residual: norm}
		}
		if norm <= opts.Tolerance {
			return Result{Solution: y, Iterations: it, Residual: norm}, nil
		}
		if it == opts.MaxIterations {
			return Result{}, &dynamo.NonConvergenceError{Iterations: it, Residual: norm}
		}

		var delta []float64
		switch opts.Method {
		case FixedPoint:
			delta = append([]float64(nil), r...)
		default:
			var err error
			delta, err = newtonStep(space, y, r, residual, opts.FDStep)
			if err != nil {
				var cond mat.Condition
				if errors.As(err, &cond) {
					return Result{}, &dynamo.NonConvergenceError{Iterations: it, Residual: norm}
				}
				return Result{}, err
			}
		}

		y = space.Integrate(y, delta)
	}
}

// newtonStep solves J delta = -r, with J the finite-difference Jacobian of
// delta -> residual(y (+) delta) at zero.
func newtonStep(space dynamo.Space, y dynamo.State, r []float64, residual ResidualFunc, h float64) ([]float64, error) {
	n := space.NDX()
	var evalErr error

	jac := mat.NewDense(n, n, nil)
	fd.Jacobian(jac, func(out, d []float64) {
		if evalErr != nil {
			return
		}
		if err := residual(space.Integrate(y, d), out); err != nil {
			evalErr = err
		}
	}, make([]float64, n), &fd.JacobianSettings{
		Formula:     fd.Forward,
		Step:        h,
		OriginValue: append([]float64(nil), r...),
	})
	if evalErr != nil {
		return nil, evalErr
	}

	var lu mat.LU
	lu.Factorize(jac)

	rhs := mat.NewVecDense(n, nil)
	rhs.ScaleVec(-1, mat.NewVecDense(n, append([]float64(nil), r...)))

	delta := mat.NewVecDense(n, nil)
	if err := lu.SolveVecTo(delta, false, rhs); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, err
		}
	}
	return delta.RawVector().Data, nil
}
