package models

// PerPathMetrics holds the windowed reduction of a single simulated path.
// Instances are ephemeral and never mutated after computation.
type PerPathMetrics struct {
	Trend      float64
	Drag       float64
	Efficiency float64
}

// AggregateMetrics is the mean of each per-path metric over all included paths.
type AggregateMetrics struct {
	AvgTrend      float64 `json:"avg_trend"`
	AvgDrag       float64 `json:"avg_drag"`
	AvgEfficiency float64 `json:"avg_efficiency"`
	IncludedPaths int     `json:"included_paths"`
	ExcludedPaths int     `json:"excluded_paths"`
}

// Regime classifies whether expected trend dominates volatility drag.
type Regime string

const (
	// RegimeFavorable means trend return is expected to exceed the volatility tax.
	RegimeFavorable Regime = "FAVORABLE"
	// RegimeDecay means the volatility tax dominates.
	RegimeDecay Regime = "DECAY"
)

// Favorable reports whether the efficiency ratio clears the break-even level.
func (m AggregateMetrics) Favorable() bool {
	return m.AvgEfficiency > 1.0
}

// Regime returns the classification derived from the efficiency ratio.
func (m AggregateMetrics) Regime() Regime {
	if m.Favorable() {
		return RegimeFavorable
	}
	return RegimeDecay
}
