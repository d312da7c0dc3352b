package manifold

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/trajsim/internal/dynamo"
)

type JointKind int

const (
	// Revolute joints store their angle directly (nq = nv = 1).
	Revolute JointKind = iota
	// Continuous joints store (cos, sin) of their angle (nq = 2, nv = 1).
	Continuous
)

func (k JointKind) String() string {
	switch k {
	case Revolute:
		return "revolute"
	case Continuous:
		return "continuous"
	default:
		return fmt.Sprintf("JointKind(%d)", int(k))
	}
}

// ParseJointKind maps a model-file joint type to a JointKind.
func ParseJointKind(s string) (JointKind, error) {
	switch s {
	case "revolute", "":
		return Revolute, nil
	case "continuous":
		return Continuous, nil
	default:
		return 0, fmt.Errorf("%w: unsupported joint type %q", dynamo.ErrInvalidArgument, s)
	}
}

// Joint describes one degree of freedom of the configuration manifold.
// Lower >= Upper means the revolute joint has no limits.
type Joint struct {
	Kind  JointKind
	Lower float64
	Upper float64
}

// Multibody is the phase space of a serial chain of single-dof joints:
// x = [q | v] with q packed per joint and one velocity per joint.
type Multibody struct {
	joints  []Joint
	offsets []int
	nq      int
}

func NewMultibody(joints ...Joint) *Multibody {
	m := &Multibody{
		joints:  append([]Joint(nil), joints...),
		offsets: make([]int, len(joints)),
	}
	for i, j := range joints {
		m.offsets[i] = m.nq
		if j.Kind == Continuous {
			m.nq += 2
		} else {
			m.nq++
		}
	}
	return m
}

// NewEuclideanPhaseSpace returns the phase space of n unbounded revolute
// joints, i.e. R^n x R^n.
func NewEuclideanPhaseSpace(n int) *Multibody {
	joints := make([]Joint, n)
	return NewMultibody(joints...)
}

func (m *Multibody) NQ() int  { return m.nq }
func (m *Multibody) NV() int  { return len(m.joints) }
func (m *Multibody) NX() int  { return m.nq + len(m.joints) }
func (m *Multibody) NDX() int { return 2 * len(m.joints) }

func (m *Multibody) Joints() []Joint { return m.joints }

func (m *Multibody) Neutral() dynamo.State {
	x := make(dynamo.State, m.NX())
	for i, j := range m.joints {
		if j.Kind == Continuous {
			x[m.offsets[i]] = 1
		}
	}
	return x
}

// Rand draws joint angles within limits ([-pi, pi] when unbounded) and
// velocities uniformly from [-1, 1].
func (m *Multibody) Rand(rng *rand.Rand) dynamo.State {
	x := make(dynamo.State, m.NX())
	for i, j := range m.joints {
		lo, hi := -math.Pi, math.Pi
		if j.Kind == Revolute && j.Lower < j.Upper {
			lo, hi = j.Lower, j.Upper
		}
		theta := lo + (hi-lo)*rng.Float64()
		off := m.offsets[i]
		if j.Kind == Continuous {
			x[off], x[off+1] = math.Cos(theta), math.Sin(theta)
		} else {
			x[off] = theta
		}
	}
	for i := m.nq; i < len(x); i++ {
		x[i] = 2*rng.Float64() - 1
	}
	return x
}

// Angles returns one angle per joint from a configuration vector.
func (m *Multibody) Angles(q []float64) []float64 {
	out := make([]float64, len(m.joints))
	for i, j := range m.joints {
		off := m.offsets[i]
		if j.Kind == Continuous {
			out[i] = math.Atan2(q[off+1], q[off])
		} else {
			out[i] = q[off]
		}
	}
	return out
}

func (m *Multibody) IntegrateConfiguration(q []float64, dq []float64) []float64 {
	out := make([]float64, m.nq)
	for i, j := range m.joints {
		off := m.offsets[i]
		if j.Kind != Continuous {
			out[off] = q[off] + dq[i]
			continue
		}
		c, s := q[off], q[off+1]
		sd, cd := math.Sincos(dq[i])
		nc, ns := c*cd-s*sd, s*cd+c*sd
		norm := math.Hypot(nc, ns)
		out[off], out[off+1] = nc/norm, ns/norm
	}
	return out
}

func (m *Multibody) DifferenceConfiguration(q0, q1 []float64) []float64 {
	out := make([]float64, len(m.joints))
	for i, j := range m.joints {
		off := m.offsets[i]
		if j.Kind != Continuous {
			out[i] = q1[off] - q0[off]
			continue
		}
		c0, s0 := q0[off], q0[off+1]
		c1, s1 := q1[off], q1[off+1]
		out[i] = math.Atan2(c0*s1-s0*c1, c0*c1+s0*s1)
	}
	return out
}

func (m *Multibody) Integrate(x dynamo.State, dx []float64) dynamo.State {
	nv := m.NV()
	out := make(dynamo.State, m.NX())
	copy(out, m.IntegrateConfiguration(x[:m.nq], dx[:nv]))
	floats.AddTo(out[m.nq:], x[m.nq:], dx[nv:])
	return out
}

func (m *Multibody) Difference(x0, x1 dynamo.State) []float64 {
	nv := m.NV()
	out := make([]float64, m.NDX())
	copy(out, m.DifferenceConfiguration(x0[:m.nq], x1[:m.nq]))
	floats.SubTo(out[nv:], x1[m.nq:], x0[m.nq:])
	return out
}

func (m *Multibody) Interpolate(x0, x1 dynamo.State, alpha float64) dynamo.State {
	return m.Integrate(x0, scaled(alpha, m.Difference(x0, x1)))
}

// Split returns views of the configuration and velocity blocks of x.
func Split(s dynamo.PhaseSpace, x dynamo.State) (q, v []float64) {
	return x[:s.NQ()], x[s.NQ() : s.NQ()+s.NV()]
}
