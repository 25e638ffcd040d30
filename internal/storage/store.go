// Package storage keeps a catalog of finished runs. Each run has a row in a
// SQLite database and a directory holding its trajectory and metadata:
//
//	<base>/runs.db
//	<base>/<run id>/metadata.json
//	<base>/<run id>/trajectory.xyz
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/san-kum/mdsim/internal/trajectory"
)

// ErrRunNotFound is returned when a run ID is not in the catalog.
var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.xyz"

	// Fixed-width UTC timestamps sort lexically in time order.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

type RunMetadata struct {
	ID         string             `json:"id"`
	CreatedAt  time.Time          `json:"created_at"`
	Element    string             `json:"element"`
	Edge       int                `json:"edge"`
	Atoms      int                `json:"atoms"`
	Steps      int                `json:"steps"`
	Dt         float64            `json:"dt"`
	Interval   int                `json:"interval"`
	Sigma      float64            `json:"sigma"`
	Epsilon    float64            `json:"epsilon"`
	Strategy   string             `json:"strategy"`
	Seed       int64              `json:"seed"`
	Jitter     float64            `json:"jitter"`
	Frames     int                `json:"frames"`
	Threshold  float64            `json:"threshold"`
	BreakFrame *int               `json:"break_frame,omitempty"`
	Elapsed    time.Duration      `json:"elapsed"`
	Metrics    map[string]float64 `json:"metrics"`
}

// BreakStep returns the step estimate of the break frame and whether one was
// detected.
func (m *RunMetadata) BreakStep() (int, bool) {
	if m.BreakFrame == nil {
		return 0, false
	}
	return trajectory.StepOf(*m.BreakFrame, m.Interval), true
}

type Store struct {
	mu      sync.Mutex
	db      *sql.DB
	baseDir string
}

// Open creates baseDir if needed and opens the catalog inside it.
func Open(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(baseDir, "runs.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, baseDir: baseDir}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Dir() string { return s.baseDir }

// Save writes the run directory and catalogs the run. An empty meta.ID is
// replaced by a generated one, which is returned.
func (s *Store) Save(ctx context.Context, meta RunMetadata, traj *trajectory.Trajectory) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now()
	}
	meta.CreatedAt = meta.CreatedAt.UTC()
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s%d_%d", meta.Element, meta.Edge, meta.CreatedAt.UnixNano())
	}
	if traj != nil {
		meta.Frames = traj.Len()
		meta.Atoms = traj.NumAtoms()
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := writeMetadata(filepath.Join(runDir, metadataFile), &meta); err != nil {
		return "", fmt.Errorf("failed to write metadata: %w", err)
	}
	if traj != nil {
		if err := traj.Save(filepath.Join(runDir, trajectoryFile)); err != nil {
			return "", fmt.Errorf("failed to write trajectory: %w", err)
		}
	}

	if err := s.insert(ctx, &meta); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func (s *Store) insert(ctx context.Context, meta *RunMetadata) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var breakFrame sql.NullInt64
	if meta.BreakFrame != nil {
		breakFrame = sql.NullInt64{Int64: int64(*meta.BreakFrame), Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, element, edge, atoms, steps, dt, sample_interval,
			sigma, epsilon, strategy, seed, jitter, frames, threshold, break_frame, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.CreatedAt.Format(timeLayout), meta.Element, meta.Edge, meta.Atoms,
		meta.Steps, meta.Dt, meta.Interval, meta.Sigma, meta.Epsilon, meta.Strategy,
		meta.Seed, meta.Jitter, meta.Frames, meta.Threshold, breakFrame,
		meta.Elapsed.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for name, value := range meta.Metrics {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_metrics (run_id, name, value) VALUES (?, ?, ?)`,
			meta.ID, name, value); err != nil {
			return fmt.Errorf("failed to insert metric %s: %w", name, err)
		}
	}

	return tx.Commit()
}

const selectRuns = `
	SELECT id, created_at, element, edge, atoms, steps, dt, sample_interval,
		sigma, epsilon, strategy, seed, jitter, frames, threshold, break_frame, elapsed_ms
	FROM runs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*RunMetadata, error) {
	var (
		meta       RunMetadata
		createdAt  string
		breakFrame sql.NullInt64
		elapsedMs  int64
	)
	err := row.Scan(&meta.ID, &createdAt, &meta.Element, &meta.Edge, &meta.Atoms,
		&meta.Steps, &meta.Dt, &meta.Interval, &meta.Sigma, &meta.Epsilon, &meta.Strategy,
		&meta.Seed, &meta.Jitter, &meta.Frames, &meta.Threshold, &breakFrame, &elapsedMs)
	if err != nil {
		return nil, err
	}

	meta.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("run %s: bad timestamp %q: %w", meta.ID, createdAt, err)
	}
	if breakFrame.Valid {
		frame := int(breakFrame.Int64)
		meta.BreakFrame = &frame
	}
	meta.Elapsed = time.Duration(elapsedMs) * time.Millisecond
	meta.Metrics = make(map[string]float64)
	return &meta, nil
}

// List returns all cataloged runs, newest first. Metrics are not loaded.
func (s *Store) List(ctx context.Context) ([]RunMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, selectRuns+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		meta, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *meta)
	}
	return runs, rows.Err()
}

// Load returns the cataloged metadata of runID including its metrics.
func (s *Store) Load(ctx context.Context, runID string) (*RunMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := scanRun(s.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", runID, err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT name, value FROM run_metrics WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load metrics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var value float64
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		meta.Metrics[name] = value
	}
	return meta, rows.Err()
}

// LoadTrajectory reads the trajectory file of a run.
func (s *Store) LoadTrajectory(runID string) (*trajectory.Trajectory, error) {
	path := filepath.Join(s.baseDir, runID, trajectoryFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s has no trajectory", ErrRunNotFound, runID)
	}
	return trajectory.LoadFile(path)
}

// LoadMetadataFile reads the metadata.json written next to the trajectory.
func (s *Store) LoadMetadataFile(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Delete removes a run from the catalog and deletes its directory.
func (s *Store) Delete(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return os.RemoveAll(filepath.Join(s.baseDir, runID))
}

func writeMetadata(path string, meta *RunMetadata) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}
