package physics

import (
	"math"

	"github.com/san-kum/trajsim/internal/dynamo"
	"github.com/san-kum/trajsim/internal/manifold"
)

// Pendulum is a damped point mass on a rigid rod, driven by a torque at the
// pivot. q is the angle from the downward vertical.
type Pendulum struct {
	Mass    float64
	Length  float64
	Damping float64
	Gravity float64
}

func NewPendulum() *Pendulum {
	return &Pendulum{Mass: 1, Length: 1, Damping: 0.1, Gravity: 9.81}
}

func (p *Pendulum) Space() dynamo.PhaseSpace { return manifold.NewEuclideanPhaseSpace(1) }
func (p *Pendulum) NU() int                  { return 1 }

func (p *Pendulum) inertia() float64 { return p.Mass * p.Length * p.Length }

func (p *Pendulum) Acceleration(x dynamo.State, u dynamo.Control) ([]float64, error) {
	if err := dynamo.CheckDims("state", len(x), 2); err != nil {
		return nil, err
	}
	tau := -p.Damping*x[1] - p.Mass*p.Gravity*p.Length*math.Sin(x[0])
	if len(u) > 0 {
		tau += u[0]
	}
	return []float64{tau / p.inertia()}, nil
}

func (p *Pendulum) Energy(x dynamo.State) float64 {
	kinetic := 0.5 * p.inertia() * x[1] * x[1]
	potential := p.Mass * p.Gravity * p.Length * (1 - math.Cos(x[0]))
	return kinetic + potential
}

func (p *Pendulum) params() paramTable {
	return paramTable{
		{"mass", &p.Mass},
		{"length", &p.Length},
		{"damping", &p.Damping},
		{"gravity", &p.Gravity},
	}
}

func (p *Pendulum) GetParams() map[string]float64         { return p.params().get() }
func (p *Pendulum) SetParam(name string, v float64) error { return p.params().set(name, v) }
