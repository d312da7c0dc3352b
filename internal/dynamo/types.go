package dynamo

import (
	"math"
	"math/rand"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

type Control []float64

func (u Control) Clone() Control {
	c := make(Control, len(u))
	copy(c, u)
	return c
}

// Space is a (possibly non-Euclidean) state manifold. Tangent vectors have
// length NDX, points have length NX.
type Space interface {
	NX() int
	NDX() int
	Neutral() State
	Rand(rng *rand.Rand) State
	// Integrate retracts the tangent vector dx at x back onto the manifold.
	Integrate(x State, dx []float64) State
	// Difference returns the tangent vector taking x0 to x1.
	Difference(x0, x1 State) []float64
	Interpolate(x0, x1 State, alpha float64) State
}

// PhaseSpace splits a state into a configuration block of length NQ and a
// velocity block of length NV. NDX is always 2*NV.
type PhaseSpace interface {
	Space
	NQ() int
	NV() int
	// IntegrateConfiguration retracts a configuration-tangent vector of length NV.
	IntegrateConfiguration(q []float64, dq []float64) []float64
}

// Dynamics is a second-order continuous model: given a state and a control it
// returns the generalized acceleration.
type Dynamics interface {
	Space() PhaseSpace
	NU() int
	Acceleration(x State, u Control) ([]float64, error)
}

type Hamiltonian interface {
	Energy(x State) float64
}

// Explicit is a one-step state transition that needs no root-finding.
type Explicit interface {
	Name() string
	Space() Space
	NU() int
	Timestep() float64
	Step(x State, u Control) (State, error)
}

// Implicit defines the next state through a residual that vanishes at the
// solution. r must have length Space().NDX().
type Implicit interface {
	Name() string
	Space() Space
	NU() int
	Timestep() float64
	Residual(x State, u Control, y State, r []float64) error
	// Guess returns the starting point for the root finder.
	Guess(x State, u Control) (State, error)
}

type Metric interface {
	Name() string
	Observe(x State, u Control, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(step int, x State, u Control, t float64)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Trajectory is the output of a rollout. States has one more entry than
// Controls; callers treat it as read-only.
type Trajectory struct {
	States           []State
	Controls         []Control
	Dt               float64
	Integrator       string
	Metrics          map[string]float64
	SolverIterations []int
}

func (tr *Trajectory) Len() int { return len(tr.States) }

func (tr *Trajectory) Times() []float64 {
	times := make([]float64, len(tr.States))
	for i := range times {
		times[i] = float64(i) * tr.Dt
	}
	return times
}

func (tr *Trajectory) Final() State {
	if len(tr.States) == 0 {
		return nil
	}
	return tr.States[len(tr.States)-1]
}
