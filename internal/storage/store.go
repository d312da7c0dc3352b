package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/san-kum/trajsim/internal/dynamo"
	"github.com/san-kum/trajsim/internal/metrics"
)

var ErrNotFound = errors.New("storage: run not found")

// Fixed-width so that created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	label        TEXT NOT NULL,
	model        TEXT NOT NULL,
	integrator   TEXT NOT NULL,
	dt           REAL NOT NULL,
	steps        INTEGER NOT NULL,
	seed         INTEGER NOT NULL,
	created_at   TEXT NOT NULL,
	final_energy REAL NOT NULL,
	rel_drift    REAL NOT NULL,
	metrics_json TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`

// Store catalogs rollouts in SQLite and keeps their series as CSV files
// under one directory per run.
type Store struct {
	baseDir string
	db      *sql.DB
}

// Run is one catalogued rollout.
type Run struct {
	ID          string             `json:"id"`
	Label       string             `json:"label"`
	Model       string             `json:"model"`
	Integrator  string             `json:"integrator"`
	Dt          float64            `json:"dt"`
	Steps       int                `json:"steps"`
	Seed        int64              `json:"seed"`
	Created     time.Time          `json:"created"`
	FinalEnergy float64            `json:"final_energy"`
	RelDrift    float64            `json:"rel_drift"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
}

func Open(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create run directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(baseDir, "runs.db"))
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize catalog: %w", err)
	}
	return &Store{baseDir: baseDir, db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) runDir(id string) string { return filepath.Join(s.baseDir, id) }

// Save writes the trajectory and its energy series and records the run.
// rec.ID and rec.Created are assigned here; the returned Run is the stored one.
func (s *Store) Save(ctx context.Context, rec Run, traj *dynamo.Trajectory, energy []float64) (Run, error) {
	if traj == nil || len(traj.States) == 0 {
		return Run{}, fmt.Errorf("%w: empty trajectory", dynamo.ErrInvalidArgument)
	}
	if len(energy) != len(traj.States) {
		return Run{}, fmt.Errorf("%w: %d states but %d energies",
			dynamo.ErrDimensionMismatch, len(traj.States), len(energy))
	}

	rec.ID = uuid.NewString()
	rec.Created = time.Now().UTC()
	rec.Dt = traj.Dt
	rec.Steps = len(traj.Controls)
	if rec.Integrator == "" {
		rec.Integrator = traj.Integrator
	}
	if rec.Metrics == nil {
		rec.Metrics = traj.Metrics
	}
	summary := metrics.Summarize(energy)
	rec.FinalEnergy = summary.Final
	rec.RelDrift = summary.RelDrift

	dir := s.runDir(rec.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Run{}, err
	}
	if err := writeStates(filepath.Join(dir, statesFile), traj); err != nil {
		return Run{}, fmt.Errorf("write states: %w", err)
	}
	if err := writeEnergy(filepath.Join(dir, energyFile), traj.Dt, energy); err != nil {
		return Run{}, fmt.Errorf("write energy: %w", err)
	}

	metricsJSON, err := json.Marshal(rec.Metrics)
	if err != nil {
		return Run{}, err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, label, model, integrator, dt, steps, seed, created_at, final_energy, rel_drift, metrics_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Label, rec.Model, rec.Integrator, rec.Dt, rec.Steps, rec.Seed,
		rec.Created.Format(timeLayout), rec.FinalEnergy, rec.RelDrift, string(metricsJSON))
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return rec, nil
}

const selectRuns = `SELECT id, label, model, integrator, dt, steps, seed, created_at, final_energy, rel_drift, metrics_json FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		r           Run
		created     string
		metricsJSON string
	)
	if err := row.Scan(&r.ID, &r.Label, &r.Model, &r.Integrator, &r.Dt, &r.Steps, &r.Seed,
		&created, &r.FinalEnergy, &r.RelDrift, &metricsJSON); err != nil {
		return Run{}, err
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: bad timestamp: %w", r.ID, err)
	}
	r.Created = t
	if err := json.Unmarshal([]byte(metricsJSON), &r.Metrics); err != nil {
		return Run{}, fmt.Errorf("run %s: bad metrics: %w", r.ID, err)
	}
	return r, nil
}

// List returns every run, oldest first.
func (s *Store) List(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, selectRuns+` ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Load returns one run. Unambiguous id prefixes are accepted.
func (s *Store) Load(ctx context.Context, id string) (*Run, error) {
	rows, err := s.db.QueryContext(ctx, selectRuns+` WHERE id = ? OR id LIKE ? ORDER BY id LIMIT 2`, id, id+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		if r.ID == id {
			return &r, nil
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return &found[0], nil
	default:
		return nil, fmt.Errorf("%w: id prefix %q is ambiguous", dynamo.ErrInvalidArgument, id)
	}
}

// Delete removes a run from the catalog along with its files.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return os.RemoveAll(s.runDir(id))
}
