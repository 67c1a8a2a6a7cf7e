package cli

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"decay-monitor/internal/agents"
	"decay-monitor/internal/chain"
	"decay-monitor/internal/config"
	"decay-monitor/internal/logging"
	"decay-monitor/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Provider  chain.Provider
	Store     store.RunStore
	LLMClient agents.LLMClient
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if cfg.Credentials.MarketData.APIToken != "" {
		app.Provider = chain.NewClient(cfg.Credentials.MarketData.APIToken)
		logger.Debug().Msg("Options chain client initialized")
	}

	dbPath := filepath.Join(config.DefaultConfigDir(), "decaymon.db")
	runStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize run journal, runs will not be persisted")
	} else {
		app.Store = runStore
		logger.Debug().Msg("SQLite run journal initialized")
	}

	if cfg.CommentaryEnabled() {
		app.LLMClient = agents.NewOpenAIClient(cfg.Credentials.OpenAI.APIKey, cfg.Credentials.OpenAI.Model)
		logger.Debug().Str("model", cfg.Credentials.OpenAI.Model).Msg("OpenAI commentary client initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "decaymon",
		Short: "Structural decay monitor for leveraged instruments",
		Long: `Decay Monitor estimates whether expected short-horizon price trend
outweighs the compounding volatility cost implied by the options market.

It simulates daily log-return paths from a forward implied variance, reduces
them to trend/drag/efficiency statistics, and classifies the regime as
favorable or decay-dominated.

Use 'decaymon help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/decay-monitor)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newDiagnoseCmd(app))
	rootCmd.AddCommand(newSimulateCmd(app))
	rootCmd.AddCommand(newChainCmd(app))
	rootCmd.AddCommand(newJournalCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("Decay Monitor v%s\n", Version)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Simulation Defaults")
	output.Printf("  Paths:           %d\n", cfg.Simulation.NPaths)
	output.Printf("  Seed:            %d\n", cfg.Simulation.Seed)
	output.Println()

	output.Bold("Drag Defaults")
	output.Printf("  Leverage:        %.1fx\n", cfg.Drag.LeverageK)
	output.Printf("  Lookback Window: %d days\n", cfg.Drag.LookbackWindow)
	output.Printf("  Risk-Free Rate:  %.4f\n", cfg.Drag.RiskFreeRate)
	output.Printf("  Workers:         %d\n", cfg.Drag.Workers)
	output.Println()

	output.Bold("Credentials")
	output.Printf("  MarketData:      %v\n", cfg.Credentials.MarketData.APIToken != "")
	output.Printf("  OpenAI:          %v\n", cfg.CommentaryEnabled())

	return nil
}
