// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"decay-monitor/internal/models"
)

// RunStore defines the interface for persisting diagnostic runs.
type RunStore interface {
	SaveRun(ctx context.Context, run *models.DiagnosticRun) (int64, error)
	GetRun(ctx context.Context, id int64) (*models.DiagnosticRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]models.DiagnosticRun, error)
	Close() error
}

// RunFilter represents filters for querying diagnostic runs.
type RunFilter struct {
	Ticker string
	Regime models.Regime
	Limit  int
}
