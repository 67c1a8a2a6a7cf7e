package diagnose

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"decay-monitor/internal/errors"
	"decay-monitor/internal/models"
	"decay-monitor/internal/store"
)

type fakeProvider struct {
	chain *models.OptionChain
	err   error
	calls int
}

func (f *fakeProvider) FetchChain(ctx context.Context, symbol string) (*models.OptionChain, error) {
	f.calls++
	return f.chain, f.err
}

type memStore struct {
	runs []models.DiagnosticRun
}

func (m *memStore) SaveRun(ctx context.Context, run *models.DiagnosticRun) (int64, error) {
	m.runs = append(m.runs, *run)
	return int64(len(m.runs)), nil
}

func (m *memStore) GetRun(ctx context.Context, id int64) (*models.DiagnosticRun, error) {
	return nil, errors.ErrDataNotFound
}

func (m *memStore) ListRuns(ctx context.Context, filter store.RunFilter) ([]models.DiagnosticRun, error) {
	return m.runs, nil
}

func (m *memStore) Close() error { return nil }

func explicitRequest() Request {
	return Request{
		Ticker:          "NVDD",
		Spot:            177.59,
		ForwardVariance: 0.204605,
		DaysToExpiry:    12,
		NPaths:          500,
		Seed:            42,
		LeverageK:       1.0,
		LookbackWindow:  10,
	}
}

func TestRunWithExplicitInputs(t *testing.T) {
	provider := &fakeProvider{}
	runner := NewRunner(zerolog.Nop(), WithProvider(provider))

	report, err := runner.Run(context.Background(), explicitRequest())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if provider.calls != 0 {
		t.Errorf("Chain provider consulted despite explicit inputs (%d calls)", provider.calls)
	}
	if report.Metrics.AvgTrend <= 0 || report.Metrics.AvgDrag <= 0 {
		t.Errorf("Expected positive aggregates, got %+v", report.Metrics)
	}
	if report.Regime != models.RegimeFavorable && report.Regime != models.RegimeDecay {
		t.Errorf("Unexpected regime %q", report.Regime)
	}
}

func TestRunResolvesFromChain(t *testing.T) {
	expiry := time.Now().UTC().AddDate(0, 0, 14)
	provider := &fakeProvider{
		chain: &models.OptionChain{
			Symbol:    "NVDA",
			SpotPrice: 100,
			Contracts: []models.OptionContract{
				{Symbol: "A", Side: models.SideCall, Strike: 100, Expiration: expiry, Bid: 1, Ask: 1.2, IV: 0.45},
				{Symbol: "B", Side: models.SidePut, Strike: 98, Expiration: expiry, Bid: 1, Ask: 1.2, IV: 0.5},
			},
		},
	}
	runner := NewRunner(zerolog.Nop(), WithProvider(provider))

	report, err := runner.Run(context.Background(), Request{
		Ticker:         "NVDD",
		Symbol:         "NVDA",
		NPaths:         200,
		Seed:           42,
		LeverageK:      1.0,
		LookbackWindow: 5,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if provider.calls != 1 {
		t.Errorf("Expected exactly one chain fetch, got %d", provider.calls)
	}
	if report.Simulation.Spot != 100 {
		t.Errorf("Spot = %v, want 100 from chain", report.Simulation.Spot)
	}
	want := (0.45*0.45 + 0.5*0.5) / 2
	if report.Simulation.ForwardVariance != want {
		t.Errorf("ForwardVariance = %v, want %v", report.Simulation.ForwardVariance, want)
	}
	if report.Simulation.DaysToExpiry <= 0 {
		t.Errorf("DaysToExpiry = %d, want positive", report.Simulation.DaysToExpiry)
	}
}

func TestRunWithoutProviderOrInputs(t *testing.T) {
	runner := NewRunner(zerolog.Nop())
	_, err := runner.Run(context.Background(), Request{
		Ticker:         "NVDD",
		NPaths:         100,
		LeverageK:      1.0,
		LookbackWindow: 5,
	})
	if !errors.Is(err, errors.ErrChainUnavailable) {
		t.Errorf("Expected ErrChainUnavailable, got %v", err)
	}
}

func TestRunJournalsReport(t *testing.T) {
	journal := &memStore{}
	runner := NewRunner(zerolog.Nop(), WithStore(journal))

	report, err := runner.Run(context.Background(), explicitRequest())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(journal.runs) != 1 {
		t.Fatalf("Expected 1 journaled run, got %d", len(journal.runs))
	}
	saved := journal.runs[0]
	if saved.Ticker != "NVDD" || saved.AvgEfficiency != report.Metrics.AvgEfficiency {
		t.Errorf("Journaled run does not match report: %+v", saved)
	}
}

func TestRunWindowLongerThanHorizon(t *testing.T) {
	req := explicitRequest()
	req.LookbackWindow = 50 // longer than every 12-day path
	runner := NewRunner(zerolog.Nop())

	_, err := runner.Run(context.Background(), req)
	if !errors.Is(err, errors.ErrInsufficientData) {
		t.Errorf("Expected ErrInsufficientData, got %v", err)
	}
}

func TestRunParallelReductionMatches(t *testing.T) {
	seq, err := NewRunner(zerolog.Nop()).Run(context.Background(), explicitRequest())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	reqPar := explicitRequest()
	reqPar.Workers = 4
	par, err := NewRunner(zerolog.Nop()).Run(context.Background(), reqPar)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if seq.Metrics != par.Metrics {
		t.Errorf("Parallel metrics differ: %+v vs %+v", par.Metrics, seq.Metrics)
	}
}
