package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/trajsim/internal/dynamo"
	"github.com/san-kum/trajsim/internal/physics"
)

func TestEnergyMean(t *testing.T) {
	p := physics.NewPendulum()
	m := NewEnergy(p)

	theta := math.Pi / 4
	x := dynamo.State{theta, 0}

	m.Observe(x, dynamo.Control{0}, 0)
	expected := 9.81 * (1 - math.Cos(theta))
	if math.Abs(m.Value()-expected) > 1e-9 {
		t.Errorf("expected energy %f, got %f", expected, m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	p := physics.NewPendulum()
	m := NewEnergyDrift(p)

	m.Observe(dynamo.State{0, 1}, nil, 0)
	m.Observe(dynamo.State{0, 0.5}, nil, 0.1)
	m.Observe(dynamo.State{0, 1}, nil, 0.2)

	if got := m.Value(); math.Abs(got-0.75) > 1e-12 {
		t.Errorf("drift = %f, want 0.75", got)
	}
}

func TestEnergySeriesIdempotent(t *testing.T) {
	p := physics.NewPendulum()
	traj := &dynamo.Trajectory{
		States: []dynamo.State{{0.1, 0}, {0.2, 0.3}, {0.3, -0.1}},
		Dt:     0.1,
	}

	a := EnergySeries(p, traj)
	b := EnergySeries(p, traj)
	if len(a) != len(traj.States) {
		t.Fatalf("len = %d, want %d", len(a), len(traj.States))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("series differ at %d: %v vs %v", i, a[i], b[i])
		}
		if a[i] != p.Energy(traj.States[i]) {
			t.Errorf("series[%d] = %f, want %f", i, a[i], p.Energy(traj.States[i]))
		}
	}
	if traj.States[1][0] != 0.2 {
		t.Error("EnergySeries mutated the trajectory")
	}
}

func TestTimeGrid(t *testing.T) {
	grid := TimeGrid(500, 0.01)
	if len(grid) != 501 {
		t.Fatalf("len = %d, want 501", len(grid))
	}
	if grid[0] != 0 || math.Abs(grid[500]-5) > 1e-12 {
		t.Errorf("grid spans [%f, %f], want [0, 5]", grid[0], grid[500])
	}
	if TimeGrid(-1, 0.1) != nil {
		t.Error("negative length should give nil")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{2, 3, 1, 2})

	if s.Initial != 2 || s.Final != 2 || s.Min != 1 || s.Max != 3 {
		t.Errorf("unexpected summary %+v", s)
	}
	if s.Mean != 2 {
		t.Errorf("mean = %f, want 2", s.Mean)
	}
	if s.MaxDrift != 1 || s.RelDrift != 0.5 {
		t.Errorf("drift = %f (rel %f), want 1 (0.5)", s.MaxDrift, s.RelDrift)
	}
	if (Summarize(nil) != Summary{}) {
		t.Error("empty series should give zero summary")
	}
	if one := Summarize([]float64{4}); one.StdDev != 0 || one.Mean != 4 {
		t.Errorf("single sample summary %+v", one)
	}
}

func TestStabilityAndControlEffort(t *testing.T) {
	s := NewStability(1)
	if _, ok := s.FirstViolation(); ok {
		t.Error("fresh stability metric reports a violation")
	}
	s.Observe(dynamo.State{0.5}, nil, 0)
	s.Observe(dynamo.State{2}, nil, 0.1)
	s.Observe(dynamo.State{math.NaN()}, nil, 0.2)
	s.Observe(dynamo.State{-1}, nil, 0.3)
	if s.Value() != 0.5 {
		t.Errorf("stability = %f, want 0.5", s.Value())
	}
	if at, ok := s.FirstViolation(); !ok || at != 0.1 {
		t.Errorf("first violation = %v (%v), want 0.1", at, ok)
	}
	s.Reset()
	if s.Value() != 1 {
		t.Errorf("stability after reset = %f", s.Value())
	}

	c := NewControlEffort()
	c.Observe(nil, dynamo.Control{1, -1}, 0)
	c.Observe(nil, dynamo.Control{0, 0}, 0)
	c.Observe(nil, nil, 0)
	if c.Value() != 1 {
		t.Errorf("control effort = %f, want 1", c.Value())
	}
	if c.Peak() != 2 {
		t.Errorf("peak = %f, want 2", c.Peak())
	}
}
