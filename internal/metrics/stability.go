package metrics

import (
	"math"

	"github.com/san-kum/trajsim/internal/dynamo"
)

// Stability is the fraction of observed states that are finite and stay
// inside the box |x_i| <= threshold.
type Stability struct {
	threshold  float64
	samples    int
	violations int
	first      float64
}

func NewStability(threshold float64) *Stability {
	return &Stability{threshold: threshold}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) inside(x dynamo.State) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.Abs(v) > s.threshold {
			return false
		}
	}
	return true
}

func (s *Stability) Observe(x dynamo.State, _ dynamo.Control, t float64) {
	s.samples++
	if s.inside(x) {
		return
	}
	if s.violations == 0 {
		s.first = t
	}
	s.violations++
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1
	}
	return float64(s.samples-s.violations) / float64(s.samples)
}

// FirstViolation reports when the first state left the box.
func (s *Stability) FirstViolation() (float64, bool) {
	return s.first, s.violations > 0
}

func (s *Stability) Reset() { *s = Stability{threshold: s.threshold} }
