package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one recording session with a cube.
type Run struct {
	RunID       string
	CubeName    string
	CubeAddress string
	StartedAt   time.Time
	EndedAt     *time.Time
}

// RunRepository provides CRUD operations for runs.
type RunRepository struct {
	db *DB
}

// NewRunRepository creates a new run repository.
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create starts a new run and returns it.
func (r *RunRepository) Create(cubeName, cubeAddress string) (*Run, error) {
	run := &Run{
		RunID:       uuid.New().String(),
		CubeName:    cubeName,
		CubeAddress: cubeAddress,
		StartedAt:   time.Now().UTC(),
	}

	_, err := r.db.Exec(`
		INSERT INTO runs (run_id, cube_name, cube_address, started_at)
		VALUES (?, ?, ?, ?)
	`, run.RunID, run.CubeName, run.CubeAddress, run.StartedAt.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	return run, nil
}

// Finish marks a run as ended.
func (r *RunRepository) Finish(runID string) error {
	_, err := r.db.Exec(`
		UPDATE runs SET ended_at = ? WHERE run_id = ?
	`, time.Now().UTC().Format(time.RFC3339Nano), runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// Get retrieves a run by id.
func (r *RunRepository) Get(runID string) (*Run, error) {
	row := r.db.QueryRow(`
		SELECT run_id, cube_name, cube_address, started_at, ended_at
		FROM runs WHERE run_id = ?
	`, runID)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	return run, err
}

// List retrieves the most recent runs, newest first.
func (r *RunRepository) List(limit int) ([]*Run, error) {
	rows, err := r.db.Query(`
		SELECT run_id, cube_name, cube_address, started_at, ended_at
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Latest returns the most recent run.
func (r *RunRepository) Latest() (*Run, error) {
	runs, err := r.List(1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no recorded runs")
	}
	return runs[0], nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var started string
	var ended sql.NullString
	if err := row.Scan(&run.RunID, &run.CubeName, &run.CubeAddress, &started, &ended); err != nil {
		return nil, err
	}

	t, err := time.Parse(time.RFC3339Nano, started)
	if err != nil {
		return nil, fmt.Errorf("failed to parse started_at: %w", err)
	}
	run.StartedAt = t

	if ended.Valid {
		t, err := time.Parse(time.RFC3339Nano, ended.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ended_at: %w", err)
		}
		run.EndedAt = &t
	}
	return &run, nil
}
