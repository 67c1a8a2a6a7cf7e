package models

import (
	"decay-monitor/internal/errors"
)

// SimulationConfig fully determines one Monte Carlo run. Immutable once built;
// identical configs must reproduce bit-identical path matrices.
type SimulationConfig struct {
	Spot            float64 `json:"spot"`
	ForwardVariance float64 `json:"forward_variance"` // annualized implied variance
	DaysToExpiry    int     `json:"days_to_expiry"`
	NPaths          int     `json:"n_paths"`
	Seed            int64   `json:"seed"`
}

// Validate checks the simulation parameters. Invalid values are reported,
// never clamped.
func (c SimulationConfig) Validate() error {
	if c.Spot <= 0 {
		return errors.NewValidationError("spot", c.Spot, "must be positive")
	}
	if c.ForwardVariance < 0 {
		return errors.NewValidationError("forward_variance", c.ForwardVariance, "must be non-negative")
	}
	if c.DaysToExpiry <= 0 {
		return errors.NewValidationError("days_to_expiry", c.DaysToExpiry, "must be positive")
	}
	if c.NPaths <= 0 {
		return errors.NewValidationError("n_paths", c.NPaths, "must be positive")
	}
	return nil
}

// ReturnPathMatrix holds simulated daily log returns, one row per path,
// one column per trading day. Read-only to downstream consumers.
type ReturnPathMatrix [][]float64

// NPaths returns the number of simulated paths.
func (m ReturnPathMatrix) NPaths() int {
	return len(m)
}

// Days returns the horizon length in trading days, taken from the first row.
func (m ReturnPathMatrix) Days() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// DragConfig configures the trend/drag reduction over a path matrix.
type DragConfig struct {
	Ticker         string  `json:"ticker"` // reporting only
	LeverageK      float64 `json:"leverage_k"`
	LookbackWindow int     `json:"lookback_window"`
	RiskFreeRate   float64 `json:"risk_free_rate"` // reserved for drift correction
}

// Validate checks the drag parameters.
func (c DragConfig) Validate() error {
	if c.LeverageK < 0 {
		return errors.NewValidationError("leverage_k", c.LeverageK, "must be non-negative")
	}
	if c.LookbackWindow <= 0 {
		return errors.NewValidationError("lookback_window", c.LookbackWindow, "must be positive")
	}
	return nil
}
