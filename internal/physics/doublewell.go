package physics

import (
	"github.com/san-kum/trajsim/internal/dynamo"
	"github.com/san-kum/trajsim/internal/manifold"
)

// DoubleWell models a particle in the bistable potential A (x^2 - B)^2.
type DoubleWell struct {
	A, B, Mass, Damping float64
}

func NewDoubleWell() *DoubleWell {
	return &DoubleWell{1.0, 1.0, 1.0, 0.1}
}

func (d *DoubleWell) Space() dynamo.PhaseSpace { return manifold.NewEuclideanPhaseSpace(1) }
func (d *DoubleWell) NU() int                  { return 1 }

func (d *DoubleWell) Acceleration(s dynamo.State, u dynamo.Control) ([]float64, error) {
	if err := dynamo.CheckDims("state", len(s), 2); err != nil {
		return nil, err
	}
	x, v := s[0], s[1]
	ef := 0.0
	if len(u) > 0 {
		ef = u[0]
	}
	return []float64{(-4*d.A*x*(x*x-d.B) - d.Damping*v + ef) / d.Mass}, nil
}

func (d *DoubleWell) Energy(s dynamo.State) float64 {
	x, v := s[0], s[1]
	w := x*x - d.B
	return 0.5*d.Mass*v*v + d.A*w*w
}

func (d *DoubleWell) params() paramTable {
	return paramTable{{"A", &d.A}, {"B", &d.B}, {"mass", &d.Mass}, {"damping", &d.Damping}}
}

func (d *DoubleWell) GetParams() map[string]float64         { return d.params().get() }
func (d *DoubleWell) SetParam(name string, v float64) error { return d.params().set(name, v) }
