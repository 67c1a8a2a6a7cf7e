package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"decay-monitor/internal/errors"
	"decay-monitor/internal/models"
	"decay-monitor/internal/store"
)

func newJournalCmd(app *App) *cobra.Command {
	var (
		ticker string
		regime string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List persisted diagnostic runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			if app.Store == nil {
				return errors.Wrap(errors.ErrDatabaseError, "run journal unavailable")
			}

			runs, err := app.Store.ListRuns(cmd.Context(), store.RunFilter{
				Ticker: ticker,
				Regime: models.Regime(regime),
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(runs)
			}

			if len(runs) == 0 {
				output.Dim("No diagnostic runs recorded.")
				return nil
			}

			table := NewTable(output, "ID", "DATE", "TICKER", "LEV", "WINDOW", "TREND", "DRAG", "EFFICIENCY", "REGIME")
			for _, run := range runs {
				table.AddRow(
					fmt.Sprintf("%d", run.ID),
					run.RunAt.Format(app.Config.UI.DateFormat),
					run.Ticker,
					fmt.Sprintf("%.1fx", run.LeverageK),
					fmt.Sprintf("%d", run.Window),
					fmt.Sprintf("%.4f", run.AvgTrend),
					fmt.Sprintf("%.4f", run.AvgDrag),
					fmt.Sprintf("%.4f", run.AvgEfficiency),
					string(run.Regime),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&ticker, "ticker", "", "filter by ticker")
	cmd.Flags().StringVar(&regime, "regime", "", "filter by regime (FAVORABLE or DECAY)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")

	return cmd
}
