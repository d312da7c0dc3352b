package solver

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/san-kum/trajsim/internal/dynamo"
	"github.com/san-kum/trajsim/internal/manifold"
)

func TestNewtonSquareRoot(t *testing.T) {
	space := manifold.NewVectorSpace(1)
	res, err := Solve(space, dynamo.State{1}, func(y dynamo.State, r []float64) error {
		r[0] = y[0]*y[0] - 2
		return nil
	}, DefaultOptions())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if math.Abs(res.Solution[0]-math.Sqrt2) > 1e-8 {
		t.Errorf("solution = %.12f, want sqrt(2)", res.Solution[0])
	}
	if res.Iterations == 0 || res.Iterations > 10 {
		t.Errorf("iterations = %d", res.Iterations)
	}
}

func TestNewtonLinearConvergesInOneStep(t *testing.T) {
	space := manifold.NewVectorSpace(2)
	res, err := Solve(space, dynamo.State{0, 0}, func(y dynamo.State, r []float64) error {
		r[0] = 3*y[0] + y[1] - 5
		r[1] = y[0] - 2*y[1] + 3
		return nil
	}, Options{Method: Newton, MaxIterations: 5, Tolerance: 1e-8})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.Solution[0]-1) > 1e-6 || math.Abs(res.Solution[1]-2) > 1e-6 {
		t.Errorf("solution = %v, want [1 2]", res.Solution)
	}
}

func TestNewtonOnCircle(t *testing.T) {
	space := manifold.NewMultibody(manifold.Joint{Kind: manifold.Continuous})
	target := dynamo.State{math.Cos(2.5), math.Sin(2.5), 0.3}

	res, err := Solve(space, space.Neutral(), func(y dynamo.State, r []float64) error {
		copy(r, space.Difference(y, target))
		return nil
	}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	if n := math.Hypot(res.Solution[0], res.Solution[1]); math.Abs(n-1) > 1e-12 {
		t.Errorf("iterate left the circle: |q| = %f", n)
	}
	if got := space.Angles(res.Solution[:2])[0]; math.Abs(got-2.5) > 1e-8 {
		t.Errorf("angle = %f, want 2.5", got)
	}
}

func TestFixedPointContraction(t *testing.T) {
	space := manifold.NewVectorSpace(1)
	opts := Options{Method: FixedPoint, MaxIterations: 200, Tolerance: 1e-10}

	res, err := Solve(space, dynamo.State{0}, func(y dynamo.State, r []float64) error {
		r[0] = 0.5 * (4 - y[0])
		return nil
	}, opts)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.Solution[0]-4) > 1e-9 {
		t.Errorf("solution = %f, want 4", res.Solution[0])
	}
}

func TestNonConvergence(t *testing.T) {
	space := manifold.NewVectorSpace(1)
	opts := Options{Method: FixedPoint, MaxIterations: 20, Tolerance: 1e-9}

	// y <- 2c - y oscillates forever
	_, err := Solve(space, dynamo.State{0}, func(y dynamo.State, r []float64) error {
		r[0] = 2 * (1 - y[0])
		return nil
	}, opts)

	var nc *dynamo.NonConvergenceError
	if !errors.As(err, &nc) {
		t.Fatalf("got %v, want NonConvergenceError", err)
	}
	if nc.Iterations != 20 {
		t.Errorf("iterations = %d, want 20", nc.Iterations)
	}
	if !errors.Is(err, dynamo.ErrNonConvergence) {
		t.Error("error does not match ErrNonConvergence")
	}
}

func TestNonFiniteResidual(t *testing.T) {
	space := manifold.NewVectorSpace(1)
	_, err := Solve(space, dynamo.State{0}, func(y dynamo.State, r []float64) error {
		r[0] = math.Inf(1)
		return nil
	}, DefaultOptions())
	if !errors.Is(err, dynamo.ErrNonConvergence) {
		t.Errorf("got %v, want ErrNonConvergence", err)
	}
}

func TestResidualErrorPropagates(t *testing.T) {
	space := manifold.NewVectorSpace(1)
	calls := 0
	_, err := Solve(space, dynamo.State{0}, func(y dynamo.State, r []float64) error {
		calls++
		if calls > 1 {
			return fmt.Errorf("%w: boom", dynamo.ErrDomain)
		}
		r[0] = 1
		return nil
	}, DefaultOptions())
	if !errors.Is(err, dynamo.ErrDomain) {
		t.Errorf("got %v, want ErrDomain", err)
	}
}

func TestSingularJacobian(t *testing.T) {
	space := manifold.NewVectorSpace(1)
	_, err := Solve(space, dynamo.State{0}, func(y dynamo.State, r []float64) error {
		r[0] = 1
		return nil
	}, DefaultOptions())
	if !errors.Is(err, dynamo.ErrNonConvergence) {
		t.Errorf("got %v, want ErrNonConvergence", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		ok   bool
	}{
		{"defaults", DefaultOptions(), true},
		{"empty method", Options{MaxIterations: 1, Tolerance: 1}, true},
		{"bad method", Options{Method: "bisect", MaxIterations: 1, Tolerance: 1}, false},
		{"zero iterations", Options{Method: Newton, Tolerance: 1}, false},
		{"zero tolerance", Options{Method: Newton, MaxIterations: 1}, false},
		{"negative fd step", Options{Method: Newton, MaxIterations: 1, Tolerance: 1, FDStep: -1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, dynamo.ErrInvalidArgument) {
				t.Errorf("got %v, want ErrInvalidArgument", err)
			}
		})
	}
}
