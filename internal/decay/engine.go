// Package decay reduces simulated log-return paths to trend, volatility drag,
// and efficiency statistics, and classifies the resulting regime.
package decay

import (
	"math"
	"sync"

	"decay-monitor/internal/errors"
	"decay-monitor/internal/models"
	"decay-monitor/internal/performance"
)

// Epsilon is added to the drag denominator only, so the efficiency ratio
// stays finite when leverage is zero or the window is flat.
const Epsilon = 1e-8

// PathMetrics reduces a single path over its trailing window. The second
// return value is false when the path is shorter than the window, in which
// case the path is excluded from aggregation rather than zero-filled.
func PathMetrics(path []float64, cfg models.DragConfig) (models.PerPathMetrics, bool) {
	w := cfg.LookbackWindow
	if len(path) < w {
		return models.PerPathMetrics{}, false
	}

	window := path[len(path)-w:]

	var sum, sumSq float64
	for _, r := range window {
		sum += r
		sumSq += r * r
	}

	trend := math.Abs(sum)
	drag := cfg.LeverageK * cfg.LeverageK / 2 * sumSq

	return models.PerPathMetrics{
		Trend:      trend,
		Drag:       drag,
		Efficiency: trend / (drag + Epsilon),
	}, true
}

// Compute reduces a path matrix sequentially. This is the reference behavior
// for reproducibility: paths are reduced and summed in row order.
func Compute(paths models.ReturnPathMatrix, cfg models.DragConfig) (*models.AggregateMetrics, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if paths.NPaths() == 0 {
		return nil, errors.Wrap(errors.ErrNoSimulationData, "computing decay metrics")
	}

	var trendSum, dragSum, effSum float64
	included, excluded := 0, 0

	for _, path := range paths {
		m, ok := PathMetrics(path, cfg)
		if !ok {
			excluded++
			continue
		}
		trendSum += m.Trend
		dragSum += m.Drag
		effSum += m.Efficiency
		included++
	}

	return aggregate(trendSum, dragSum, effSum, included, excluded, cfg)
}

// ComputeParallel reduces the matrix on a worker pool. Per-path results are
// written into preallocated slots and summed afterwards in row order, so the
// output is identical to Compute.
func ComputeParallel(paths models.ReturnPathMatrix, cfg models.DragConfig, workers int) (*models.AggregateMetrics, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if paths.NPaths() == 0 {
		return nil, errors.Wrap(errors.ErrNoSimulationData, "computing decay metrics")
	}

	results := make([]models.PerPathMetrics, paths.NPaths())
	ok := make([]bool, paths.NPaths())

	pool := performance.NewWorkerPool(workers)
	pool.Start()

	var wg sync.WaitGroup
	for i := range paths {
		i := i
		wg.Add(1)
		task := func() {
			defer wg.Done()
			results[i], ok[i] = PathMetrics(paths[i], cfg)
		}
		if !pool.Submit(task) {
			// Queue full: reduce inline rather than dropping the path.
			task()
		}
	}
	wg.Wait()
	pool.Stop()

	var trendSum, dragSum, effSum float64
	included, excluded := 0, 0
	for i := range results {
		if !ok[i] {
			excluded++
			continue
		}
		trendSum += results[i].Trend
		dragSum += results[i].Drag
		effSum += results[i].Efficiency
		included++
	}

	return aggregate(trendSum, dragSum, effSum, included, excluded, cfg)
}

func aggregate(trendSum, dragSum, effSum float64, included, excluded int, cfg models.DragConfig) (*models.AggregateMetrics, error) {
	if included == 0 {
		return nil, errors.Wrapf(errors.ErrInsufficientData,
			"every path shorter than lookback window %d", cfg.LookbackWindow)
	}

	n := float64(included)
	return &models.AggregateMetrics{
		AvgTrend:      trendSum / n,
		AvgDrag:       dragSum / n,
		AvgEfficiency: effSum / n,
		IncludedPaths: included,
		ExcludedPaths: excluded,
	}, nil
}

// Monitor owns a bound path matrix and reduces it on demand. It has a
// two-state lifecycle: created unbound, then Ready after Bind. Compute before
// Bind fails with a missing-data error rather than operating on absent data.
type Monitor struct {
	drag  models.DragConfig
	paths models.ReturnPathMatrix
	bound bool
}

// NewMonitor creates a monitor in the unbound state.
func NewMonitor(drag models.DragConfig) *Monitor {
	return &Monitor{drag: drag}
}

// Bind stores the full simulation matrix (paths x days).
func (m *Monitor) Bind(paths models.ReturnPathMatrix) {
	m.paths = paths
	m.bound = true
}

// Ready reports whether a path matrix has been bound.
func (m *Monitor) Ready() bool {
	return m.bound
}

// Compute reduces the bound matrix to aggregate metrics.
func (m *Monitor) Compute() (*models.AggregateMetrics, error) {
	if !m.bound {
		return nil, errors.ErrNoSimulationData
	}
	return Compute(m.paths, m.drag)
}
