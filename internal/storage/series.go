package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/san-kum/trajsim/internal/dynamo"
)

const (
	statesFile = "states.csv"
	energyFile = "energy.csv"
)

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func writeCSV(path string, rows func(w *csv.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()

	w := csv.NewWriter(f)
	if err := rows(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// writeStates stores one row per state: time, x0..xn, u0..um. The final row
// has no control and leaves the u columns empty.
func writeStates(path string, traj *dynamo.Trajectory) error {
	return writeCSV(path, func(w *csv.Writer) error {
		nx := len(traj.States[0])
		nu := 0
		if len(traj.Controls) > 0 {
			nu = len(traj.Controls[0])
		}

		header := []string{"time"}
		for i := 0; i < nx; i++ {
			header = append(header, fmt.Sprintf("x%d", i))
		}
		for i := 0; i < nu; i++ {
			header = append(header, fmt.Sprintf("u%d", i))
		}
		if err := w.Write(header); err != nil {
			return err
		}

		for i, x := range traj.States {
			row := make([]string, 0, len(header))
			row = append(row, formatFloat(float64(i)*traj.Dt))
			for _, v := range x {
				row = append(row, formatFloat(v))
			}
			for j := 0; j < nu; j++ {
				if i < len(traj.Controls) {
					row = append(row, formatFloat(traj.Controls[i][j]))
				} else {
					row = append(row, "")
				}
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeEnergy(path string, dt float64, energy []float64) error {
	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"time", "energy"}); err != nil {
			return err
		}
		for i, e := range energy {
			if err := w.Write([]string{formatFloat(float64(i) * dt), formatFloat(e)}); err != nil {
				return err
			}
		}
		return nil
	})
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header", filepath.Base(path))
	}
	return records, nil
}

func parseRow(path string, line int, fields []string) ([]float64, error) {
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", filepath.Base(path), line, err)
		}
		vals[i] = v
	}
	return vals, nil
}

// LoadStates reads back the states of a run together with its time grid.
func (s *Store) LoadStates(ctx context.Context, id string) ([]dynamo.State, []float64, error) {
	run, err := s.Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	path := filepath.Join(s.runDir(run.ID), statesFile)
	records, err := readCSV(path)
	if err != nil {
		return nil, nil, err
	}

	nx := 0
	for _, h := range records[0][1:] {
		if strings.HasPrefix(h, "x") {
			nx++
		}
	}

	states := make([]dynamo.State, 0, len(records)-1)
	times := make([]float64, 0, len(records)-1)
	for i, rec := range records[1:] {
		vals, err := parseRow(path, i+2, rec[:1+nx])
		if err != nil {
			return nil, nil, err
		}
		times = append(times, vals[0])
		states = append(states, dynamo.State(vals[1:]))
	}
	return states, times, nil
}

// LoadEnergy reads back the energy series of a run.
func (s *Store) LoadEnergy(ctx context.Context, id string) ([]float64, []float64, error) {
	run, err := s.Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	path := filepath.Join(s.runDir(run.ID), energyFile)
	records, err := readCSV(path)
	if err != nil {
		return nil, nil, err
	}

	times := make([]float64, 0, len(records)-1)
	energy := make([]float64, 0, len(records)-1)
	for i, rec := range records[1:] {
		vals, err := parseRow(path, i+2, rec)
		if err != nil {
			return nil, nil, err
		}
		times = append(times, vals[0])
		energy = append(energy, vals[1])
	}
	return times, energy, nil
}
