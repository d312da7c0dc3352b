package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/trajsim/internal/dynamo"
)

// ControlEffort is the mean L1 norm of the applied controls. The final state
// of a rollout carries no control and is not counted.
type ControlEffort struct {
	norms []float64
}

func NewControlEffort() *ControlEffort { return &ControlEffort{} }

func (c *ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(_ dynamo.State, u dynamo.Control, _ float64) {
	if u == nil {
		return
	}
	c.norms = append(c.norms, floats.Norm(u, 1))
}

func (c *ControlEffort) Value() float64 {
	if len(c.norms) == 0 {
		return 0
	}
	return stat.Mean(c.norms, nil)
}

// Peak is the largest control norm seen.
func (c *ControlEffort) Peak() float64 {
	if len(c.norms) == 0 {
		return 0
	}
	return floats.Max(c.norms)
}

func (c *ControlEffort) Reset() { c.norms = c.norms[:0] }
