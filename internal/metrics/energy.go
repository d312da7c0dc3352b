package metrics

import (
	"math"

	"github.com/san-kum/trajsim/internal/dynamo"
)

// EnergySeries evaluates h at every state of traj. It reads the trajectory
// only, so calling it twice yields identical series.
func EnergySeries(h dynamo.Hamiltonian, traj *dynamo.Trajectory) []float64 {
	out := make([]float64, len(traj.States))
	for i, x := range traj.States {
		out[i] = h.Energy(x)
	}
	return out
}

// TimeGrid returns the n+1 sample times 0, dt, ..., n*dt of an n-step
// rollout.
func TimeGrid(n int, dt float64) []float64 {
	if n < 0 {
		return nil
	}
	out := make([]float64, n+1)
	for i := range out {
		out[i] = float64(i) * dt
	}
	return out
}

// Energy is the mean energy over observed states.
type Energy struct {
	name    string
	h       dynamo.Hamiltonian
	samples int
	total   float64
}

func NewEnergy(h dynamo.Hamiltonian) *Energy {
	return &Energy{name: "energy", h: h}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(x dynamo.State, _ dynamo.Control, _ float64) {
	e.total += e.h.Energy(x)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *Energy) Reset() {
	e.total = 0
	e.samples = 0
}

// EnergyDrift is the largest relative deviation from the first observed
// energy.
type EnergyDrift struct {
	name          string
	h             dynamo.Hamiltonian
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(h dynamo.Hamiltonian) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", h: h}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(x dynamo.State, _ dynamo.Control, _ float64) {
	energy := e.h.Energy(x)
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
