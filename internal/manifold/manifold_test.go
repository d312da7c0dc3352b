package manifold

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/trajsim/internal/dynamo"
)

func TestMultibodyDims(t *testing.T) {
	tests := []struct {
		name           string
		joints         []Joint
		nq, nv, nx, nd int
	}{
		{"empty", nil, 0, 0, 0, 0},
		{"revolute", []Joint{{Kind: Revolute}}, 1, 1, 2, 2},
		{"continuous", []Joint{{Kind: Continuous}}, 2, 1, 3, 2},
		{"mixed", []Joint{{Kind: Revolute}, {Kind: Continuous}, {Kind: Revolute}}, 4, 3, 7, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMultibody(tt.joints...)
			if m.NQ() != tt.nq || m.NV() != tt.nv || m.NX() != tt.nx || m.NDX() != tt.nd {
				t.Errorf("dims = (%d, %d, %d, %d), want (%d, %d, %d, %d)",
					m.NQ(), m.NV(), m.NX(), m.NDX(), tt.nq, tt.nv, tt.nx, tt.nd)
			}
		})
	}
}

func TestMultibodyIntegrateDifference(t *testing.T) {
	m := NewMultibody(Joint{Kind: Revolute}, Joint{Kind: Continuous})
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 20; i++ {
		x0 := m.Rand(rng)
		dx := []float64{0.3, -0.7, 0.1, 0.2}
		x1 := m.Integrate(x0, dx)

		got := m.Difference(x0, x1)
		for k := range dx {
			if math.Abs(got[k]-dx[k]) > 1e-12 {
				t.Fatalf("difference(integrate(x, dx)) = %v, want %v", got, dx)
			}
		}
	}
}

func TestContinuousJointStaysOnCircle(t *testing.T) {
	m := NewMultibody(Joint{Kind: Continuous})
	x := m.Neutral()

	for i := 0; i < 1000; i++ {
		x = m.Integrate(x, []float64{0.37, 0})
	}

	norm := math.Hypot(x[0], x[1])
	if math.Abs(norm-1) > 1e-12 {
		t.Errorf("configuration left the unit circle: |q| = %.15f", norm)
	}

	want := math.Remainder(370, 2*math.Pi)
	if got := m.Angles(x[:2])[0]; math.Abs(got-want) > 1e-9 {
		t.Errorf("angle = %f, want %f", got, want)
	}
}

func TestInterpolateMidpointWraps(t *testing.T) {
	m := NewMultibody(Joint{Kind: Continuous})
	a, b := 3.0, -3.0
	x0 := dynamo.State{math.Cos(a), math.Sin(a), 0}
	x1 := dynamo.State{math.Cos(b), math.Sin(b), 2}

	mid := m.Interpolate(x0, x1, 0.5)
	angle := m.Angles(mid[:2])[0]

	// The short arc between 3 and -3 passes through pi, not 0.
	if math.Abs(math.Abs(angle)-math.Pi) > 1e-9 {
		t.Errorf("midpoint angle = %f, want +-pi", angle)
	}
	if math.Abs(mid[2]-1) > 1e-12 {
		t.Errorf("midpoint velocity = %f, want 1", mid[2])
	}
}

func TestRandRespectsLimits(t *testing.T) {
	m := NewMultibody(Joint{Kind: Revolute, Lower: -0.5, Upper: 0.25})
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		x := m.Rand(rng)
		if x[0] < -0.5 || x[0] > 0.25 {
			t.Fatalf("q = %f outside limits", x[0])
		}
		if x[1] < -1 || x[1] > 1 {
			t.Fatalf("v = %f outside [-1, 1]", x[1])
		}
	}
}

func TestVectorSpace(t *testing.T) {
	s := NewVectorSpace(3)
	x0 := dynamo.State{1, 2, 3}
	x1 := dynamo.State{3, 2, 1}

	mid := s.Interpolate(x0, x1, 0.5)
	for i, v := range mid {
		if v != 2 {
			t.Errorf("mid[%d] = %f, want 2", i, v)
		}
	}

	if got := s.Integrate(x0, s.Difference(x0, x1)); got[0] != 3 || got[2] != 1 {
		t.Errorf("integrate(difference) = %v, want %v", got, x1)
	}
}

func TestParseJointKind(t *testing.T) {
	if k, err := ParseJointKind("continuous"); err != nil || k != Continuous {
		t.Errorf("ParseJointKind(continuous) = %v, %v", k, err)
	}
	if k, err := ParseJointKind(""); err != nil || k != Revolute {
		t.Errorf("ParseJointKind(\"\") = %v, %v", k, err)
	}
	if _, err := ParseJointKind("prismatic"); !errors.Is(err, dynamo.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
