package decay

import (
	"math"
	"testing"

	"decay-monitor/internal/errors"
	"decay-monitor/internal/models"
	"decay-monitor/internal/simulate"
)

func dragConfig(k float64, window int) models.DragConfig {
	return models.DragConfig{
		Ticker:         "NVDD",
		LeverageK:      k,
		LookbackWindow: window,
	}
}

func TestPathMetricsKnownValues(t *testing.T) {
	path := []float64{0.01, -0.02, 0.03}
	cfg := dragConfig(2.0, 3)

	m, ok := PathMetrics(path, cfg)
	if !ok {
		t.Fatal("Expected path to be included")
	}

	wantTrend := math.Abs(0.01 - 0.02 + 0.03)
	wantDrag := 2.0 * (0.01*0.01 + 0.02*0.02 + 0.03*0.03) // k^2/2 = 2
	if math.Abs(m.Trend-wantTrend) > 1e-15 {
		t.Errorf("Trend = %v, want %v", m.Trend, wantTrend)
	}
	if math.Abs(m.Drag-wantDrag) > 1e-15 {
		t.Errorf("Drag = %v, want %v", m.Drag, wantDrag)
	}
	wantEff := wantTrend / (wantDrag + Epsilon)
	if math.Abs(m.Efficiency-wantEff) > 1e-15 {
		t.Errorf("Efficiency = %v, want %v", m.Efficiency, wantEff)
	}
}

func TestPathMetricsUsesTrailingWindow(t *testing.T) {
	// Only the last two returns should enter the reduction.
	path := []float64{100.0, 0.01, -0.01}
	m, ok := PathMetrics(path, dragConfig(1.0, 2))
	if !ok {
		t.Fatal("Expected path to be included")
	}
	if m.Trend != 0 {
		t.Errorf("Trend = %v, want 0 (window sums to zero)", m.Trend)
	}
	wantDrag := 0.5 * (0.01*0.01 + 0.01*0.01)
	if math.Abs(m.Drag-wantDrag) > 1e-15 {
		t.Errorf("Drag = %v, want %v", m.Drag, wantDrag)
	}
}

func TestComputeWindowExclusion(t *testing.T) {
	paths := models.ReturnPathMatrix{
		{0.01, 0.02, 0.03},
		{0.01},       // shorter than window: excluded, not an error
		{-0.02, 0.01, 0.04},
	}

	metrics, err := Compute(paths, dragConfig(1.0, 3))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if metrics.IncludedPaths != 2 {
		t.Errorf("IncludedPaths = %d, want 2", metrics.IncludedPaths)
	}
	if metrics.ExcludedPaths != 1 {
		t.Errorf("ExcludedPaths = %d, want 1", metrics.ExcludedPaths)
	}
}

func TestComputeInsufficientData(t *testing.T) {
	paths := models.ReturnPathMatrix{
		{0.01, 0.02},
		{0.03},
	}

	_, err := Compute(paths, dragConfig(1.0, 10))
	if !errors.Is(err, errors.ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData, got %v", err)
	}
}

func TestComputeZeroLeverage(t *testing.T) {
	paths := models.ReturnPathMatrix{
		{0.01, -0.02, 0.03},
	}

	metrics, err := Compute(paths, dragConfig(0, 3))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if metrics.AvgDrag != 0 {
		t.Errorf("AvgDrag = %v, want 0 at zero leverage", metrics.AvgDrag)
	}
	if math.IsInf(metrics.AvgEfficiency, 0) || math.IsNaN(metrics.AvgEfficiency) {
		t.Errorf("AvgEfficiency = %v, want finite", metrics.AvgEfficiency)
	}
	wantEff := metrics.AvgTrend / Epsilon
	if math.Abs(metrics.AvgEfficiency-wantEff)/wantEff > 1e-12 {
		t.Errorf("AvgEfficiency = %v, want trend/epsilon = %v", metrics.AvgEfficiency, wantEff)
	}
}

func TestComputeNegativeLeverageRejected(t *testing.T) {
	paths := models.ReturnPathMatrix{{0.01, 0.02}}
	_, err := Compute(paths, dragConfig(-1.0, 2))
	if !errors.Is(err, errors.ErrConfigInvalid) {
		t.Errorf("Expected configuration error, got %v", err)
	}
}

func TestComputeEmptyMatrix(t *testing.T) {
	_, err := Compute(models.ReturnPathMatrix{}, dragConfig(1.0, 3))
	if !errors.Is(err, errors.ErrNoSimulationData) {
		t.Errorf("Expected ErrNoSimulationData, got %v", err)
	}
}

func TestMonitorLifecycle(t *testing.T) {
	monitor := NewMonitor(dragConfig(1.0, 2))

	if monitor.Ready() {
		t.Error("New monitor should not be ready")
	}
	if _, err := monitor.Compute(); !errors.Is(err, errors.ErrNoSimulationData) {
		t.Errorf("Expected ErrNoSimulationData before Bind, got %v", err)
	}

	monitor.Bind(models.ReturnPathMatrix{{0.01, 0.02}})
	if !monitor.Ready() {
		t.Error("Monitor should be ready after Bind")
	}
	if _, err := monitor.Compute(); err != nil {
		t.Errorf("Compute after Bind failed: %v", err)
	}
}

func TestComputeParallelMatchesSequential(t *testing.T) {
	simCfg := models.SimulationConfig{
		Spot:            177.59,
		ForwardVariance: 0.204605,
		DaysToExpiry:    12,
		NPaths:          1000,
		Seed:            42,
	}
	paths, err := simulate.Simulate(simCfg)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	cfg := dragConfig(1.0, 10)
	seq, err := Compute(paths, cfg)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	par, err := ComputeParallel(paths, cfg, 4)
	if err != nil {
		t.Fatalf("ComputeParallel failed: %v", err)
	}

	if seq.AvgTrend != par.AvgTrend || seq.AvgDrag != par.AvgDrag || seq.AvgEfficiency != par.AvgEfficiency {
		t.Errorf("Parallel result differs from sequential: %+v vs %+v", par, seq)
	}
	if seq.IncludedPaths != par.IncludedPaths {
		t.Errorf("IncludedPaths differ: %d vs %d", par.IncludedPaths, seq.IncludedPaths)
	}
}

// The reference scenario from the options model: a 5000x12 matrix at the
// market-implied forward variance must reduce to positive finite aggregates
// with a seed-deterministic classification.
func TestReferenceScenario(t *testing.T) {
	simCfg := models.SimulationConfig{
		Spot:            177.59,
		ForwardVariance: 0.204605,
		DaysToExpiry:    12,
		NPaths:          5000,
		Seed:            42,
	}
	paths, err := simulate.Simulate(simCfg)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if paths.NPaths() != 5000 || paths.Days() != 12 {
		t.Fatalf("Unexpected matrix shape %dx%d", paths.NPaths(), paths.Days())
	}

	cfg := dragConfig(1.0, 10)
	a, err := Compute(paths, cfg)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if !(a.AvgTrend > 0) || math.IsInf(a.AvgTrend, 0) || math.IsNaN(a.AvgTrend) {
		t.Errorf("AvgTrend = %v, want positive finite", a.AvgTrend)
	}
	if !(a.AvgDrag > 0) || math.IsInf(a.AvgDrag, 0) || math.IsNaN(a.AvgDrag) {
		t.Errorf("AvgDrag = %v, want positive finite", a.AvgDrag)
	}
	if a.IncludedPaths != 5000 {
		t.Errorf("IncludedPaths = %d, want 5000", a.IncludedPaths)
	}

	// Classification is pinned by the seed, not re-derived: a second full run
	// must land in the same regime with identical aggregates.
	pathsAgain, err := simulate.Simulate(simCfg)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	b, err := Compute(pathsAgain, cfg)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if a.AvgEfficiency != b.AvgEfficiency || a.Regime() != b.Regime() {
		t.Errorf("Classification not deterministic: %v/%v vs %v/%v",
			a.AvgEfficiency, a.Regime(), b.AvgEfficiency, b.Regime())
	}
}

func TestRegimeClassification(t *testing.T) {
	favorable := models.AggregateMetrics{AvgEfficiency: 1.5}
	if favorable.Regime() != models.RegimeFavorable {
		t.Errorf("Efficiency 1.5 should classify as favorable")
	}

	decay := models.AggregateMetrics{AvgEfficiency: 1.0}
	if decay.Regime() != models.RegimeDecay {
		t.Errorf("Efficiency 1.0 should classify as decay (strict inequality)")
	}
}
