package metrics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary condenses an energy series.
type Summary struct {
	Initial  float64 `json:"initial"`
	Final    float64 `json:"final"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	MaxDrift float64 `json:"max_drift"`
	// RelDrift is MaxDrift over |Initial|, or 0 when Initial is 0.
	RelDrift float64 `json:"rel_drift"`
}

func Summarize(series []float64) Summary {
	if len(series) == 0 {
		return Summary{}
	}

	s := Summary{
		Initial: series[0],
		Final:   series[len(series)-1],
		Min:     floats.Min(series),
		Max:     floats.Max(series),
	}
	s.Mean, s.StdDev = stat.MeanStdDev(series, nil)
	if len(series) == 1 {
		s.StdDev = 0
	}

	for _, e := range series {
		s.MaxDrift = math.Max(s.MaxDrift, math.Abs(e-s.Initial))
	}
	if s.Initial != 0 {
		s.RelDrift = s.MaxDrift / math.Abs(s.Initial)
	}
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("E0=%.6g  Ef=%.6g  range=[%.6g, %.6g]  max|dE|=%.3e  rel=%.3e",
		s.Initial, s.Final, s.Min, s.Max, s.MaxDrift, s.RelDrift)
}
