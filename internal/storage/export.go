package storage

import (
	"context"
	"encoding/json"
	"io"

	"github.com/san-kum/trajsim/internal/dynamo"
)

// ExportData is the self-contained JSON form of a stored run.
type ExportData struct {
	Run
	Times  []float64      `json:"times"`
	States []dynamo.State `json:"states"`
	Energy []float64      `json:"energy"`
}

func (s *Store) Export(ctx context.Context, id string) (*ExportData, error) {
	run, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	states, times, err := s.LoadStates(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	_, energy, err := s.LoadEnergy(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	return &ExportData{Run: *run, Times: times, States: states, Energy: energy}, nil
}

// ExportJSON writes the run as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, id string, w io.Writer) error {
	data, err := s.Export(ctx, id)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
