package export

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/san-kum/trajsim/internal/dynamo"
)

// Sink receives labelled energy curves and renders them on Close.
type Sink interface {
	Add(label string, times, energy []float64) error
	Close() error
}

// Series is one labelled energy curve.
type Series struct {
	Label  string
	Times  []float64
	Energy []float64
}

func newSeries(label string, times, energy []float64) (Series, error) {
	if len(times) != len(energy) {
		return Series{}, fmt.Errorf("%w: series %q has %d times and %d energies",
			dynamo.ErrDimensionMismatch, label, len(times), len(energy))
	}
	if len(times) == 0 {
		return Series{}, fmt.Errorf("%w: series %q is empty", dynamo.ErrInvalidArgument, label)
	}
	return Series{
		Label:  label,
		Times:  append([]float64(nil), times...),
		Energy: append([]float64(nil), energy...),
	}, nil
}

// collector buffers series until the sink renders.
type collector struct {
	series []Series
}

func (c *collector) Add(label string, times, energy []float64) error {
	s, err := newSeries(label, times, energy)
	if err != nil {
		return err
	}
	c.series = append(c.series, s)
	return nil
}

// Series returns the buffered curves in insertion order.
func (c *collector) Series() []Series { return c.series }

type NopSink struct{}

func (NopSink) Add(string, []float64, []float64) error { return nil }
func (NopSink) Close() error                           { return nil }

// MultiSink fans every call out to all of its sinks. Errors are combined,
// every sink still sees every call.
type MultiSink []Sink

func Multi(sinks ...Sink) MultiSink {
	return MultiSink(sinks)
}

func (m MultiSink) Add(label string, times, energy []float64) error {
	var err error
	for _, s := range m {
		err = multierr.Append(err, s.Add(label, times, energy))
	}
	return err
}

func (m MultiSink) Close() error {
	var err error
	for _, s := range m {
		err = multierr.Append(err, s.Close())
	}
	return err
}
