package control

import (
	"fmt"
	"math"

	"github.com/san-kum/trajsim/internal/dynamo"
)

// Zeros returns n zero controls of width nu.
func Zeros(n, nu int) []dynamo.Control {
	out := make([]dynamo.Control, n)
	for i := range out {
		out[i] = make(dynamo.Control, nu)
	}
	return out
}

// Constant repeats u n times. Each entry is an independent copy.
func Constant(n int, u dynamo.Control) []dynamo.Control {
	out := make([]dynamo.Control, n)
	for i := range out {
		out[i] = u.Clone()
	}
	return out
}

// Sine drives every channel with amplitude*sin(2 pi f t), t = i*dt.
func Sine(n, nu int, dt, amplitude, frequency float64) []dynamo.Control {
	out := make([]dynamo.Control, n)
	for i := range out {
		v := amplitude * math.Sin(2*math.Pi*frequency*float64(i)*dt)
		u := make(dynamo.Control, nu)
		for j := range u {
			u[j] = v
		}
		out[i] = u
	}
	return out
}

// Spec selects an open-loop sequence by name, as read from configuration.
type Spec struct {
	Kind      string    `yaml:"kind" json:"kind"`
	Value     []float64 `yaml:"value,omitempty" json:"value,omitempty"`
	Amplitude float64   `yaml:"amplitude,omitempty" json:"amplitude,omitempty"`
	Frequency float64   `yaml:"frequency,omitempty" json:"frequency,omitempty"`
}

// Build expands the spec into n controls of width nu.
func (s Spec) Build(n, nu int, dt float64) ([]dynamo.Control, error) {
	switch s.Kind {
	case "", "zero":
		return Zeros(n, nu), nil
	case "constant":
		if err := dynamo.CheckDims("constant control", len(s.Value), nu); err != nil {
			return nil, err
		}
		return Constant(n, s.Value), nil
	case "sine":
		return Sine(n, nu, dt, s.Amplitude, s.Frequency), nil
	default:
		return nil, fmt.Errorf("%w: unknown control kind %q", dynamo.ErrInvalidArgument, s.Kind)
	}
}
