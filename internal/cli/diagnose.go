package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"decay-monitor/internal/agents"
	"decay-monitor/internal/diagnose"
	"decay-monitor/internal/models"
)

func newDiagnoseCmd(app *App) *cobra.Command {
	var (
		symbol         string
		spot           float64
		variance       float64
		days           int
		nPaths         int
		seed           int64
		leverage       float64
		window         int
		workers        int
		withCommentary bool
	)

	cmd := &cobra.Command{
		Use:   "diagnose <ticker>",
		Short: "Run the forward structural diagnostic for a leveraged instrument",
		Long: `Runs the full pipeline: derive forward implied variance from the options
chain (or take it from flags), simulate daily log-return paths, reduce them to
trend/drag/efficiency statistics, and classify the regime.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ticker := args[0]

			opts := []diagnose.RunnerOption{}
			if app.Provider != nil {
				opts = append(opts, diagnose.WithProvider(app.Provider))
			}
			if app.Store != nil {
				opts = append(opts, diagnose.WithStore(app.Store))
			}
			if withCommentary && app.LLMClient != nil {
				opts = append(opts, diagnose.WithCommentator(agents.NewCommentator(app.LLMClient)))
			}
			runner := diagnose.NewRunner(app.Logger, opts...)

			if nPaths == 0 {
				nPaths = app.Config.Simulation.NPaths
			}
			if !cmd.Flags().Changed("seed") {
				seed = app.Config.Simulation.Seed
			}
			if !cmd.Flags().Changed("leverage") {
				leverage = app.Config.Drag.LeverageK
			}
			if window == 0 {
				window = app.Config.Drag.LookbackWindow
			}
			if !cmd.Flags().Changed("workers") {
				workers = app.Config.Drag.Workers
			}

			report, err := runner.Run(cmd.Context(), diagnose.Request{
				Ticker:          ticker,
				Symbol:          symbol,
				Spot:            spot,
				ForwardVariance: variance,
				DaysToExpiry:    days,
				NPaths:          nPaths,
				Seed:            seed,
				LeverageK:       leverage,
				LookbackWindow:  window,
				RiskFreeRate:    app.Config.Drag.RiskFreeRate,
				Workers:         workers,
				WithCommentary:  withCommentary,
			})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(report)
			}
			renderReport(output, report)
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "underlying symbol for the chain fetch (default: ticker)")
	cmd.Flags().Float64Var(&spot, "spot", 0, "spot price override (skips chain lookup when set with --variance and --days)")
	cmd.Flags().Float64Var(&variance, "variance", 0, "forward implied variance override")
	cmd.Flags().IntVar(&days, "days", 0, "trading days to expiry override")
	cmd.Flags().IntVar(&nPaths, "paths", 0, "number of Monte Carlo paths")
	cmd.Flags().Int64Var(&seed, "seed", 0, "RNG seed")
	cmd.Flags().Float64Var(&leverage, "leverage", 0, "leverage multiplier")
	cmd.Flags().IntVar(&window, "window", 0, "lookback window in trading days")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines for the reduction (0 = sequential)")
	cmd.Flags().BoolVar(&withCommentary, "commentary", false, "ask the AI commentary agent for a narrative")

	return cmd
}

func renderReport(output *Output, report *models.DiagnosticReport) {
	headline := color.New(color.Bold)
	favorable := color.New(color.FgGreen, color.Bold)
	unfavorable := color.New(color.FgRed, color.Bold)

	output.Printf("--- [ %s FORWARD STRUCTURAL DIAGNOSTIC ] ---\n", headline.Sprint(report.Drag.Ticker))
	output.Printf("Spot Price          : %.2f\n", report.Simulation.Spot)
	output.Printf("Forward Variance    : %.6f\n", report.Simulation.ForwardVariance)
	output.Printf("Horizon             : %d trading days\n", report.Simulation.DaysToExpiry)
	output.Printf("Simulated Paths     : %d (seed %d)\n", report.Simulation.NPaths, report.Simulation.Seed)
	output.Printf("Leverage Factor     : %.1fx\n", report.Drag.LeverageK)
	output.Printf("Lookback Window     : %d days\n", report.Drag.LookbackWindow)
	output.Println()
	output.Printf("Included Paths      : %d (excluded %d)\n", report.Metrics.IncludedPaths, report.Metrics.ExcludedPaths)
	output.Printf("Expected Trend      : %.4f\n", report.Metrics.AvgTrend)
	output.Printf("Expected Drag       : %.4f\n", report.Metrics.AvgDrag)
	output.Printf("Expected Efficiency : %.4f\n", report.Metrics.AvgEfficiency)
	output.Println()

	if report.Regime == models.RegimeFavorable {
		output.Printf("STATUS: %s. Trend (%.2f%%) > Drag (%.2f%%)\n",
			favorable.Sprint("FAVORABLE"),
			report.Metrics.AvgTrend*100, report.Metrics.AvgDrag*100)
	} else {
		output.Printf("STATUS: %s. Volatility tax dominates.\n", unfavorable.Sprint("DECAY REGIME"))
	}

	if report.Commentary != "" {
		output.Println()
		output.Bold("Commentary")
		output.Println(report.Commentary)
	}
}
