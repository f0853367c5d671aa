package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"fxjournal/internal/export"
)

// addExportCommands adds journal export and import commands.
func addExportCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newExportCmd(app))
	rootCmd.AddCommand(newImportCmd(app))
}

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export the journal",
		Long: `Write the active account's journal to a file.

The format follows the file extension: .json for a full snapshot that
can be re-imported, .csv for a flat table of all trades.`,
		Example: `  fxjournal export journal.json
  fxjournal export trades.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := cmdContext()
			defer cancel()

			if err := requireJournal(ctx, cmd, app); err != nil {
				return err
			}
			open, history := app.Journal.Snapshot()

			path := args[0]
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("creating %s: %w", path, err)
			}
			defer f.Close()

			switch {
			case strings.HasSuffix(path, ".csv"):
				err = export.WriteCSV(f, open, history)
			case strings.HasSuffix(path, ".json"):
				err = export.WriteJSON(f, open, history)
			default:
				return fmt.Errorf("unsupported export format for %q: want .json or .csv", path)
			}
			if err != nil {
				return err
			}

			app.Logger.Info().Str("file", path).Int("trades", len(open)+len(history)).Msg("journal exported")
			output.Success("✓ Exported %d trades to %s", len(open)+len(history), path)
			return nil
		},
	}
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a journal export",
		Long: `Replace the active account's journal with a JSON export.

Exports from older journal versions import cleanly: legacy field names
and status values are recognized and canonicalized.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := cmdContext()
			defer cancel()

			confirmed, _ := cmd.Flags().GetBool("yes")
			if !confirmed {
				output.Warning("Importing replaces every trade of the active account.")
				output.Println("Re-run with --yes to confirm.")
				return nil
			}

			if err := requireJournal(ctx, cmd, app); err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			open, history, err := export.ReadJSON(f)
			if err != nil {
				return err
			}
			if err := app.Journal.ReplaceAll(ctx, open, history); err != nil {
				return err
			}

			app.Logger.Info().Str("file", args[0]).
				Int("open", len(open)).Int("history", len(history)).Msg("journal imported")
			output.Success("✓ Imported %d open and %d closed trades", len(open), len(history))
			return nil
		},
	}
	cmd.Flags().Bool("yes", false, "skip confirmation")
	return cmd
}
