package manifold

import (
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/trajsim/internal/dynamo"
)

// VectorSpace is R^n. Points and tangent vectors share the same layout.
type VectorSpace struct {
	n int
}

func NewVectorSpace(n int) *VectorSpace {
	return &VectorSpace{n: n}
}

func (s *VectorSpace) NX() int  { return s.n }
func (s *VectorSpace) NDX() int { return s.n }

func (s *VectorSpace) Neutral() dynamo.State {
	return make(dynamo.State, s.n)
}

// Rand draws every coordinate uniformly from [-1, 1].
func (s *VectorSpace) Rand(rng *rand.Rand) dynamo.State {
	x := make(dynamo.State, s.n)
	for i := range x {
		x[i] = 2*rng.Float64() - 1
	}
	return x
}

func (s *VectorSpace) Integrate(x dynamo.State, dx []float64) dynamo.State {
	out := make(dynamo.State, s.n)
	floats.AddTo(out, x, dx)
	return out
}

func (s *VectorSpace) Difference(x0, x1 dynamo.State) []float64 {
	out := make([]float64, s.n)
	floats.SubTo(out, x1, x0)
	return out
}

func (s *VectorSpace) Interpolate(x0, x1 dynamo.State, alpha float64) dynamo.State {
	return s.Integrate(x0, scaled(alpha, s.Difference(x0, x1)))
}

func scaled(alpha float64, v []float64) []float64 {
	floats.Scale(alpha, v)
	return v
}
