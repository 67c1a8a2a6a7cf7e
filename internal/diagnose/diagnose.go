// Package diagnose composes the chain provider, path simulator, and decay
// engine into a single diagnostic pipeline.
package diagnose

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"decay-monitor/internal/agents"
	"decay-monitor/internal/chain"
	"decay-monitor/internal/decay"
	"decay-monitor/internal/errors"
	"decay-monitor/internal/logging"
	"decay-monitor/internal/models"
	"decay-monitor/internal/simulate"
	"decay-monitor/internal/store"
)

// Request describes one diagnostic run. When ForwardVariance and Spot are
// both set, the chain provider is not consulted.
type Request struct {
	Ticker          string
	Symbol          string // underlying symbol for the chain fetch; defaults to Ticker
	Spot            float64
	ForwardVariance float64
	DaysToExpiry    int
	NPaths          int
	Seed            int64
	LeverageK       float64
	LookbackWindow  int
	RiskFreeRate    float64
	Workers         int // 0 = sequential reference reduction
	WithCommentary  bool
}

// Runner runs diagnostics and records them in the journal.
type Runner struct {
	provider    chain.Provider
	runs        store.RunStore
	commentator *agents.Commentator
	logger      zerolog.Logger
	now         func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithProvider sets the options-chain provider.
func WithProvider(p chain.Provider) RunnerOption {
	return func(r *Runner) { r.provider = p }
}

// WithStore sets the run journal.
func WithStore(s store.RunStore) RunnerOption {
	return func(r *Runner) { r.runs = s }
}

// WithCommentator sets the optional commentary agent.
func WithCommentator(c *agents.Commentator) RunnerOption {
	return func(r *Runner) { r.commentator = c }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates a diagnostic runner.
func NewRunner(logger zerolog.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the full pipeline: resolve the variance input, simulate the
// path matrix, reduce it, classify, journal, and optionally narrate.
func (r *Runner) Run(ctx context.Context, req Request) (*models.DiagnosticReport, error) {
	logger := logging.WithTicker(r.logger, req.Ticker)

	simCfg, err := r.resolveInputs(ctx, &req, logger)
	if err != nil {
		return nil, err
	}

	dragCfg := models.DragConfig{
		Ticker:         req.Ticker,
		LeverageK:      req.LeverageK,
		LookbackWindow: req.LookbackWindow,
		RiskFreeRate:   req.RiskFreeRate,
	}
	if err := dragCfg.Validate(); err != nil {
		return nil, err
	}

	paths, err := simulate.Simulate(simCfg)
	if err != nil {
		return nil, err
	}
	logging.LogSimulation(logger, paths.NPaths(), paths.Days(), simCfg.ForwardVariance, simCfg.Seed)

	var metrics *models.AggregateMetrics
	if req.Workers > 0 {
		metrics, err = decay.ComputeParallel(paths, dragCfg, req.Workers)
	} else {
		monitor := decay.NewMonitor(dragCfg)
		monitor.Bind(paths)
		metrics, err = monitor.Compute()
	}
	if err != nil {
		return nil, err
	}

	report := &models.DiagnosticReport{
		Simulation: simCfg,
		Drag:       dragCfg,
		Metrics:    *metrics,
		Regime:     metrics.Regime(),
		RunAt:      r.now(),
	}
	logging.LogDiagnosis(logger, req.Ticker,
		metrics.AvgTrend, metrics.AvgDrag, metrics.AvgEfficiency, string(report.Regime))

	if r.runs != nil {
		if _, err := r.journal(ctx, report); err != nil {
			logger.Warn().Err(err).Msg("Failed to journal diagnostic run")
		}
	}

	if req.WithCommentary && r.commentator != nil {
		commentary, err := r.commentator.Narrate(ctx, report)
		if err != nil {
			logger.Warn().Err(err).Msg("Commentary agent failed")
		} else {
			report.Commentary = commentary
		}
	}

	return report, nil
}

// resolveInputs fills in forward variance, spot, and horizon from the chain
// provider when the request does not carry explicit overrides.
func (r *Runner) resolveInputs(ctx context.Context, req *Request, logger zerolog.Logger) (models.SimulationConfig, error) {
	needChain := req.ForwardVariance <= 0 || req.Spot <= 0 || req.DaysToExpiry <= 0

	if needChain {
		if r.provider == nil {
			return models.SimulationConfig{}, errors.NewDataError("options_chain", req.Ticker,
				"no chain provider configured and no explicit variance/spot/horizon given", errors.ErrChainUnavailable)
		}

		symbol := req.Symbol
		if symbol == "" {
			symbol = req.Ticker
		}

		raw, err := r.provider.FetchChain(ctx, symbol)
		if err != nil {
			return models.SimulationConfig{}, err
		}
		cleaned, err := chain.Clean(raw)
		if err != nil {
			return models.SimulationConfig{}, err
		}
		nearest, err := chain.NearestVariance(cleaned, r.now())
		if err != nil {
			return models.SimulationConfig{}, err
		}

		if req.ForwardVariance <= 0 {
			req.ForwardVariance = nearest.ForwardVariance
		}
		if req.Spot <= 0 {
			req.Spot = cleaned.SpotPrice
		}
		if req.DaysToExpiry <= 0 {
			req.DaysToExpiry = nearest.TradingDays
		}

		logger.Debug().
			Float64("forward_variance", req.ForwardVariance).
			Float64("spot", req.Spot).
			Int("days_to_expiry", req.DaysToExpiry).
			Time("expiry", nearest.Expiry).
			Msg("Resolved simulation inputs from options chain")
	}

	cfg := models.SimulationConfig{
		Spot:            req.Spot,
		ForwardVariance: req.ForwardVariance,
		DaysToExpiry:    req.DaysToExpiry,
		NPaths:          req.NPaths,
		Seed:            req.Seed,
	}
	return cfg, cfg.Validate()
}

func (r *Runner) journal(ctx context.Context, report *models.DiagnosticReport) (int64, error) {
	return r.runs.SaveRun(ctx, &models.DiagnosticRun{
		Ticker:        report.Drag.Ticker,
		Simulation:    report.Simulation,
		LeverageK:     report.Drag.LeverageK,
		Window:        report.Drag.LookbackWindow,
		AvgTrend:      report.Metrics.AvgTrend,
		AvgDrag:       report.Metrics.AvgDrag,
		AvgEfficiency: report.Metrics.AvgEfficiency,
		Regime:        report.Regime,
		RunAt:         report.RunAt,
	})
}
