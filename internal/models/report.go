package models

import "time"

// DiagnosticReport is the final output of one diagnostic run: the configs
// that produced it, the aggregate metrics, and the regime classification.
type DiagnosticReport struct {
	Simulation SimulationConfig `json:"simulation"`
	Drag       DragConfig       `json:"drag"`
	Metrics    AggregateMetrics `json:"metrics"`
	Regime     Regime           `json:"regime"`
	Commentary string           `json:"commentary,omitempty"`
	RunAt      time.Time        `json:"run_at"`
}

// DiagnosticRun is a persisted journal entry for a diagnostic run.
type DiagnosticRun struct {
	ID            int64            `json:"id"`
	Ticker        string           `json:"ticker"`
	Simulation    SimulationConfig `json:"simulation"`
	LeverageK     float64          `json:"leverage_k"`
	Window        int              `json:"lookback_window"`
	AvgTrend      float64          `json:"avg_trend"`
	AvgDrag       float64          `json:"avg_drag"`
	AvgEfficiency float64          `json:"avg_efficiency"`
	Regime        Regime           `json:"regime"`
	RunAt         time.Time        `json:"run_at"`
}
