package simulate

import (
	"math"
	"testing"

	"decay-monitor/internal/errors"
	"decay-monitor/internal/models"
)

func TestSimulateShape(t *testing.T) {
	cfg := models.SimulationConfig{
		Spot:            177.59,
		ForwardVariance: 0.204605,
		DaysToExpiry:    12,
		NPaths:          5000,
		Seed:            42,
	}

	paths, err := Simulate(cfg)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	if paths.NPaths() != 5000 {
		t.Errorf("Expected 5000 paths, got %d", paths.NPaths())
	}
	for i, path := range paths {
		if len(path) != 12 {
			t.Fatalf("Path %d: expected 12 days, got %d", i, len(path))
		}
	}
}

func TestSimulateDeterminism(t *testing.T) {
	cfg := models.SimulationConfig{
		Spot:            100,
		ForwardVariance: 0.09,
		DaysToExpiry:    20,
		NPaths:          200,
		Seed:            7,
	}

	a, err := Simulate(cfg)
	if err != nil {
		t.Fatalf("First Simulate failed: %v", err)
	}
	b, err := Simulate(cfg)
	if err != nil {
		t.Fatalf("Second Simulate failed: %v", err)
	}

	for i := range a {
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				t.Fatalf("Matrices differ at [%d][%d]: %v != %v", i, j, a[i][j], b[i][j])
			}
		}
	}
}

func TestSimulateSeedSensitivity(t *testing.T) {
	cfg := models.SimulationConfig{
		Spot:            100,
		ForwardVariance: 0.09,
		DaysToExpiry:    10,
		NPaths:          10,
		Seed:            1,
	}
	a, err := Simulate(cfg)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	cfg.Seed = 2
	b, err := Simulate(cfg)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	if a[0][0] == b[0][0] && a[0][1] == b[0][1] && a[0][2] == b[0][2] {
		t.Error("Different seeds produced identical leading samples")
	}
}

func TestSimulateValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  models.SimulationConfig
	}{
		{"zero days", models.SimulationConfig{Spot: 100, ForwardVariance: 0.1, DaysToExpiry: 0, NPaths: 10, Seed: 1}},
		{"negative variance", models.SimulationConfig{Spot: 100, ForwardVariance: -0.1, DaysToExpiry: 5, NPaths: 10, Seed: 1}},
		{"zero paths", models.SimulationConfig{Spot: 100, ForwardVariance: 0.1, DaysToExpiry: 5, NPaths: 0, Seed: 1}},
		{"zero spot", models.SimulationConfig{Spot: 0, ForwardVariance: 0.1, DaysToExpiry: 5, NPaths: 10, Seed: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Simulate(tt.cfg); !errors.Is(err, errors.ErrConfigInvalid) {
				t.Errorf("Expected configuration error, got %v", err)
			}
		})
	}
}

func TestSimulateZeroVariance(t *testing.T) {
	cfg := models.SimulationConfig{
		Spot:            100,
		ForwardVariance: 0,
		DaysToExpiry:    5,
		NPaths:          10,
		Seed:            1,
	}
	paths, err := Simulate(cfg)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	for _, path := range paths {
		for _, r := range path {
			if r != 0 {
				t.Fatalf("Expected all-zero returns at zero variance, got %v", r)
			}
		}
	}
}

// Doubling the forward variance should scale the sample standard deviation
// by sqrt(2), statistically over a large sample.
func TestSimulateScalingLaw(t *testing.T) {
	base := models.SimulationConfig{
		Spot:            100,
		ForwardVariance: 0.04,
		DaysToExpiry:    50,
		NPaths:          5000,
		Seed:            42,
	}
	doubled := base
	doubled.ForwardVariance = 0.08

	pathsA, err := Simulate(base)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	pathsB, err := Simulate(doubled)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	statsA, err := Stats(pathsA)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	statsB, err := Stats(pathsB)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}

	ratio := statsB.StdDev / statsA.StdDev
	if math.Abs(ratio-math.Sqrt2) > 0.02 {
		t.Errorf("Expected std ratio ~sqrt(2)=%.4f, got %.4f", math.Sqrt2, ratio)
	}
}

func TestStatsMatchesDailySigma(t *testing.T) {
	cfg := models.SimulationConfig{
		Spot:            100,
		ForwardVariance: 0.16,
		DaysToExpiry:    40,
		NPaths:          5000,
		Seed:            9,
	}
	paths, err := Simulate(cfg)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	stats, err := Stats(paths)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}

	want := DailySigma(cfg.ForwardVariance)
	if math.Abs(stats.StdDev-want)/want > 0.02 {
		t.Errorf("Sample std %.6f too far from daily sigma %.6f", stats.StdDev, want)
	}
	if math.Abs(stats.Mean) > want/10 {
		t.Errorf("Sample mean %.6f too far from zero drift", stats.Mean)
	}
}

func TestStatsEmptyMatrix(t *testing.T) {
	if _, err := Stats(models.ReturnPathMatrix{}); !errors.Is(err, errors.ErrNoSimulationData) {
		t.Errorf("Expected ErrNoSimulationData, got %v", err)
	}
}
