package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"decay-monitor/internal/chain"
	"decay-monitor/internal/errors"
)

func newChainCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chain <symbol>",
		Short: "Fetch and analyze the options chain for a symbol",
		Long: `Fetches the options chain, cleans it down to near-ATM contracts of the
nearest expiries, and prints the forward implied variance per expiry along
with chain analytics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := args[0]

			if app.Provider == nil {
				return errors.Wrap(errors.ErrMissingCredential, "options chain fetch requires a marketdata API token")
			}

			raw, err := app.Provider.FetchChain(cmd.Context(), symbol)
			if err != nil {
				return err
			}
			cleaned, err := chain.Clean(raw)
			if err != nil {
				return err
			}

			now := time.Now()
			variances := chain.ForwardVariances(cleaned, now)
			analytics := chain.Analyze(cleaned)

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":     symbol,
					"spot":       cleaned.SpotPrice,
					"contracts":  analytics.Contracts,
					"calls":      analytics.Calls,
					"puts":       analytics.Puts,
					"average_iv": analytics.AverageIV,
					"variances":  variances,
				})
			}

			output.Bold("OPTIONS CHAIN ANALYSIS - %s", symbol)
			output.Printf("Spot Price: $%.2f\n", cleaned.SpotPrice)
			output.Printf("Contracts:  %d (calls %d, puts %d)\n", analytics.Contracts, analytics.Calls, analytics.Puts)
			output.Printf("Average IV: %.1f%%\n", analytics.AverageIV*100)
			output.Printf("Widest Spread: %.1f%%\n", analytics.WidestSpread)
			output.Println()

			output.Bold("Forward Implied Variance by Expiry")
			varTable := NewTable(output, "EXPIRY", "VARIANCE", "CONTRACTS", "TRADING DAYS")
			for _, v := range variances {
				varTable.AddRow(
					v.Expiry.Format("2006-01-02"),
					fmt.Sprintf("%.6f", v.ForwardVariance),
					fmt.Sprintf("%d", v.Contracts),
					fmt.Sprintf("%d", v.TradingDays),
				)
			}
			varTable.Render()
			output.Println()

			output.Bold("Open Interest by Strike")
			oiTable := NewTable(output, "STRIKE", "OI")
			for _, s := range analytics.OIByStrike {
				oiTable.AddRow(fmt.Sprintf("%.2f", s.Strike), fmt.Sprintf("%d", s.OI))
			}
			oiTable.Render()

			if len(analytics.GammaExposure) > 0 {
				output.Println()
				output.Bold("Top Gamma Exposure Strikes")
				gammaTable := NewTable(output, "STRIKE", "GAMMA EXPOSURE")
				for _, s := range analytics.GammaExposure {
					gammaTable.AddRow(fmt.Sprintf("%.2f", s.Strike), fmt.Sprintf("%.2f", s.Exposure))
				}
				gammaTable.Render()
			}

			return nil
		},
	}

	return cmd
}
