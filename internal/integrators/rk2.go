package integrators

import (
	"fmt"

	"github.com/san-kum/trajsim/internal/dynamo"
)

type RK2Variant int

const (
	// RK2Midpoint evaluates the slope once more at the half step:
	// y = x + dt f(x + dt/2 f(x)).
	RK2Midpoint RK2Variant = iota
	// RK2Heun averages the slopes at both ends:
	// y = x + dt/2 (f(x) + f(x + dt f(x))).
	RK2Heun
)

func (v RK2Variant) String() string {
	switch v {
	case RK2Midpoint:
		return "midpoint"
	case RK2Heun:
		return "heun"
	default:
		return fmt.Sprintf("RK2Variant(%d)", int(v))
	}
}

func ParseRK2Variant(s string) (RK2Variant, error) {
	switch s {
	case "", "midpoint":
		return RK2Midpoint, nil
	case "heun":
		return RK2Heun, nil
	default:
		return 0, fmt.Errorf("%w: unknown rk2 variant %q", dynamo.ErrInvalidArgument, s)
	}
}

// RK2 is a two-stage explicit Runge-Kutta scheme.
type RK2 struct {
	base
	variant RK2Variant
}

func NewRK2(dyn dynamo.Dynamics, dt float64) (*RK2, error) {
	return NewRK2Variant(dyn, dt, RK2Midpoint)
}

func NewRK2Variant(dyn dynamo.Dynamics, dt float64, variant RK2Variant) (*RK2, error) {
	b, err := newBase(dyn, dt)
	if err != nil {
		return nil, err
	}
	if variant != RK2Midpoint && variant != RK2Heun {
		return nil, fmt.Errorf("%w: unknown rk2 variant %d", dynamo.ErrInvalidArgument, int(variant))
	}
	return &RK2{base: b, variant: variant}, nil
}

func (r *RK2) Name() string {
	if r.variant == RK2Heun {
		return "rk2_heun"
	}
	return "rk2"
}

func (r *RK2) Variant() RK2Variant { return r.variant }

func (r *RK2) Step(x dynamo.State, u dynamo.Control) (dynamo.State, error) {
	if err := r.checkStep(x, u); err != nil {
		return nil, err
	}

	k1, err := r.derivative(x, u)
	if err != nil {
		return nil, err
	}

	if r.variant == RK2Heun {
		k2, err := r.derivative(r.advance(x, r.dt, k1), u)
		if err != nil {
			return nil, err
		}
		dx := make([]float64, len(k1))
		for i := range dx {
			dx[i] = 0.5 * r.dt * (k1[i] + k2[i])
		}
		return checkFinite(r.space.Integrate(x, dx))
	}

	k2, err := r.derivative(r.advance(x, 0.5*r.dt, k1), u)
	if err != nil {
		return nil, err
	}
	return checkFinite(r.advance(x, r.dt, k2))
}
