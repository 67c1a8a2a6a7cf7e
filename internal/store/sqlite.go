package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"decay-monitor/internal/errors"
	"decay-monitor/internal/models"
)

// SQLiteStore implements RunStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based run store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS diagnostic_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticker TEXT NOT NULL,
		spot REAL NOT NULL,
		forward_variance REAL NOT NULL,
		days_to_expiry INTEGER NOT NULL,
		n_paths INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		leverage_k REAL NOT NULL,
		lookback_window INTEGER NOT NULL,
		avg_trend REAL NOT NULL,
		avg_drag REAL NOT NULL,
		avg_efficiency REAL NOT NULL,
		regime TEXT NOT NULL,
		run_at DATETIME NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_ticker ON diagnostic_runs(ticker);
	CREATE INDEX IF NOT EXISTS idx_runs_run_at ON diagnostic_runs(run_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRun persists a diagnostic run and returns its row ID.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *models.DiagnosticRun) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO diagnostic_runs (
			ticker, spot, forward_variance, days_to_expiry, n_paths, seed,
			leverage_k, lookback_window, avg_trend, avg_drag, avg_efficiency,
			regime, run_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Ticker,
		run.Simulation.Spot,
		run.Simulation.ForwardVariance,
		run.Simulation.DaysToExpiry,
		run.Simulation.NPaths,
		run.Simulation.Seed,
		run.LeverageK,
		run.Window,
		run.AvgTrend,
		run.AvgDrag,
		run.AvgEfficiency,
		string(run.Regime),
		run.RunAt.UTC(),
	)
	if err != nil {
		return 0, errors.Wrap(err, "saving diagnostic run")
	}
	return res.LastInsertId()
}

// GetRun retrieves a diagnostic run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id int64) (*models.DiagnosticRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, ticker, spot, forward_variance, days_to_expiry, n_paths, seed,
		       leverage_k, lookback_window, avg_trend, avg_drag, avg_efficiency,
		       regime, run_at
		FROM diagnostic_runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrDataNotFound, "run %d", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "loading diagnostic run")
	}
	return run, nil
}

// ListRuns retrieves diagnostic runs matching the filter, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]models.DiagnosticRun, error) {
	query := `
		SELECT id, ticker, spot, forward_variance, days_to_expiry, n_paths, seed,
		       leverage_k, lookback_window, avg_trend, avg_drag, avg_efficiency,
		       regime, run_at
		FROM diagnostic_runs WHERE 1=1`
	var args []interface{}

	if filter.Ticker != "" {
		query += " AND ticker = ?"
		args = append(args, filter.Ticker)
	}
	if filter.Regime != "" {
		query += " AND regime = ?"
		args = append(args, string(filter.Regime))
	}
	query += " ORDER BY run_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying diagnostic runs")
	}
	defer rows.Close()

	var runs []models.DiagnosticRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning diagnostic run")
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*models.DiagnosticRun, error) {
	var run models.DiagnosticRun
	var regime string
	err := row.Scan(
		&run.ID,
		&run.Ticker,
		&run.Simulation.Spot,
		&run.Simulation.ForwardVariance,
		&run.Simulation.DaysToExpiry,
		&run.Simulation.NPaths,
		&run.Simulation.Seed,
		&run.LeverageK,
		&run.Window,
		&run.AvgTrend,
		&run.AvgDrag,
		&run.AvgEfficiency,
		&regime,
		&run.RunAt,
	)
	if err != nil {
		return nil, err
	}
	run.Regime = models.Regime(regime)
	return &run, nil
}
