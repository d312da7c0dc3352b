package export

import (
	"fmt"
	"io"

	"github.com/san-kum/trajsim/internal/metrics"
)

// SummarySink prints one statistics line per series.
type SummarySink struct {
	w io.Writer
	collector
}

func NewSummarySink(w io.Writer) *SummarySink {
	return &SummarySink{w: w}
}

func (s *SummarySink) Close() error {
	width := 0
	for _, sr := range s.series {
		width = max(width, len(sr.Label))
	}
	for _, sr := range s.series {
		if _, err := fmt.Fprintf(s.w, "%-*s  %s\n", width, sr.Label, metrics.Summarize(sr.Energy)); err != nil {
			return err
		}
	}
	return nil
}
