package physics

import (
	"github.com/san-kum/trajsim/internal/dynamo"
	"github.com/san-kum/trajsim/internal/manifold"
)

// MassChain is a row of N equal masses joined by springs, with both ends
// fixed to walls. The control is an external force on the first mass.
// State: [x1..xN | v1..vN].
type MassChain struct {
	N       int
	K       float64
	Mass    float64
	Damping float64
}

func NewMassChain(n int) *MassChain {
	return &MassChain{
		N:       n,
		K:       100.0,
		Mass:    1.0,
		Damping: 0.1,
	}
}

// NewStiffOscillator is a single undamped mass between two springs of
// stiffness k/2, i.e. acc = -k q.
func NewStiffOscillator(k float64) *MassChain {
	return &MassChain{N: 1, K: k / 2, Mass: 1}
}

func (mc *MassChain) Space() dynamo.PhaseSpace { return manifold.NewEuclideanPhaseSpace(mc.N) }
func (mc *MassChain) NU() int                  { return 1 }

func (mc *MassChain) displacement(x dynamo.State, i int) float64 {
	if i < 0 || i >= mc.N {
		return 0 // wall
	}
	return x[i]
}

func (mc *MassChain) Acceleration(x dynamo.State, u dynamo.Control) ([]float64, error) {
	if err := dynamo.CheckDims("state", len(x), 2*mc.N); err != nil {
		return nil, err
	}

	acc := make([]float64, mc.N)
	for i := 0; i < mc.N; i++ {
		q := x[i]
		force := mc.K*(mc.displacement(x, i-1)-q) + mc.K*(mc.displacement(x, i+1)-q)
		force -= mc.Damping * x[mc.N+i]
		if i == 0 && len(u) > 0 {
			force += u[0]
		}
		acc[i] = force / mc.Mass
	}
	return acc, nil
}

func (mc *MassChain) Energy(x dynamo.State) float64 {
	e := 0.0
	for i := 0; i < mc.N; i++ {
		v := x[mc.N+i]
		e += 0.5 * mc.Mass * v * v
	}
	for i := 0; i <= mc.N; i++ {
		d := mc.displacement(x, i) - mc.displacement(x, i-1)
		e += 0.5 * mc.K * d * d
	}
	return e
}

// DefaultState displaces the first two masses.
func (mc *MassChain) DefaultState() dynamo.State {
	state := make(dynamo.State, mc.N*2)
	if mc.N > 0 {
		state[0] = 1.0
	}
	if mc.N > 1 {
		state[1] = 0.5
	}
	return state
}

func (mc *MassChain) params() paramTable {
	return paramTable{{"k", &mc.K}, {"mass", &mc.Mass}, {"damping", &mc.Damping}}
}

func (mc *MassChain) GetParams() map[string]float64         { return mc.params().get() }
func (mc *MassChain) SetParam(name string, v float64) error { return mc.params().set(name, v) }
