package cli

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"fxjournal/internal/config"
	apperrors "fxjournal/internal/errors"
	"fxjournal/internal/journal"
	"fxjournal/internal/logging"
	"fxjournal/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	ConfigDir string
	Logger    zerolog.Logger
	Store     store.DataStore
	Journal   *journal.Service
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, configDir string, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		Logger:    logger,
	}

	dataStore, err := store.NewSQLiteStore(cfg.Journal.DBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, journal commands will be unavailable")
	} else {
		app.Store = dataStore
		app.Journal = journal.NewService(dataStore, cfg.Risk, logger)
		logger.Debug().Str("db", cfg.Journal.DBPath).Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "fxjournal",
		Short: "fxjournal - personal FX trading journal",
		Long: `fxjournal is a personal trading journal for forex and gold.

It records planned trades, enforces per-trade and per-day risk limits,
derives lot sizes from account capital, and rolls closed trades up into
weekly reviews, equity curves, and pair statistics.

Use 'fxjournal help <command>' for more information about a command.`,
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

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/fxjournal)")
	rootCmd.PersistentFlags().String("account", "", "account to operate on (default: the active account)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addAccountCommands(rootCmd, app)
	addTradeCommands(rootCmd, app)
	addStatsCommands(rootCmd, app)
	addExportCommands(rootCmd, app)
	addReferenceCommands(rootCmd, app)

	return rootCmd
}

// cmdContext returns the bounded context used by every store-touching
// command.
func cmdContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// requireJournal loads the journal of the requested account into the
// service. The --account flag overrides the configured active account.
func requireJournal(ctx context.Context, cmd *cobra.Command, app *App) error {
	if app.Journal == nil {
		return apperrors.Wrap(apperrors.ErrNoActiveAccount, "store unavailable")
	}
	accountID, _ := cmd.Flags().GetString("account")
	if accountID == "" {
		accountID = app.Config.User.ActiveAccount
	}
	if accountID == "" {
		return apperrors.ErrNoActiveAccount
	}
	return app.Journal.SwitchAccount(ctx, app.Config.User.ID, accountID)
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
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
				output.Printf("fxjournal v%s\n", Version)
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
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			dir := app.ConfigDir
			if dir == "" {
				dir = config.DefaultConfigDir()
			}
			if output.IsJSON() {
				output.JSON(map[string]string{"path": dir})
			} else {
				output.Println(dir)
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
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("User")
	output.Printf("  ID:              %s\n", cfg.User.ID)
	output.Printf("  Active Account:  %s\n", cfg.User.ActiveAccount)
	output.Println()

	output.Bold("Journal")
	output.Printf("  DB Path:          %s\n", cfg.Journal.DBPath)
	output.Printf("  Default Risk:     %.1f%%\n", cfg.Journal.DefaultRisk)
	output.Printf("  Default Strategy: %s\n", cfg.Journal.DefaultStrategy)
	output.Println()

	output.Bold("Risk Limits")
	output.Printf("  Per-Trade Cap:    %.1f%%\n", cfg.Risk.PerTradeRiskCap)
	output.Printf("  Daily Cap:        %.1f%%\n", cfg.Risk.DailyRiskCap)
	output.Printf("  Trades/Day:       %d\n", cfg.Risk.MaxTradesPerDay)
	output.Printf("  Active/Day:       %d\n", cfg.Risk.MaxActivePerDay)
	output.Printf("  Cancels/Day:      %d\n", cfg.Risk.MaxCancelPerDay)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:   %s\n", cfg.Logging.Level)
	output.Printf("  Console: %v\n", cfg.Logging.Console)
	output.Printf("  File:    %v\n", cfg.Logging.File)
}
