package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fxjournal/internal/calc"
	"fxjournal/internal/models"
)

// addReferenceCommands adds the static reference commands: supported pairs
// and session lookup. Neither touches the store.
func addReferenceCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newPairsCmd(app))
	rootCmd.AddCommand(newSessionCmd())
}

func newPairsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pairs",
		Short: "List supported pairs",
		Long:  "Supported pairs with their per-pip value at each lot tier.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			type pairInfo struct {
				Pair       string  `json:"pair"`
				Standard   float64 `json:"standard"`
				Mini       float64 `json:"mini"`
				Micro      float64 `json:"micro"`
				Multiplier float64 `json:"multiplier"`
			}
			var infos []pairInfo
			for _, pair := range calc.Pairs() {
				infos = append(infos, pairInfo{
					Pair:       pair,
					Standard:   calc.ValuePerPip(pair, models.TierStandard),
					Mini:       calc.ValuePerPip(pair, models.TierMini),
					Micro:      calc.ValuePerPip(pair, models.TierMicro),
					Multiplier: calc.Multiplier(pair),
				})
			}

			if output.IsJSON() {
				return output.JSON(infos)
			}

			table := NewTable(output, "Pair", "Standard", "Mini", "Micro", "Point Mult")
			for _, info := range infos {
				table.AddRow(
					info.Pair,
					FormatMoney(info.Standard),
					FormatMoney(info.Mini),
					FormatMoney(info.Micro),
					fmt.Sprintf("%.0f", info.Multiplier),
				)
			}
			table.Render()
			return nil
		},
	}
}

func newSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session [HH:MM]",
		Short: "Show the trading session for a time",
		Long: `Show which trading sessions cover a UTC time of day.

Without an argument the current UTC time is used. Overlapping sessions
are all listed; outside every session the answer is "Closed".`,
		Example: `  fxjournal session
  fxjournal session 07:30`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			hhmm := time.Now().UTC().Format("15:04")
			if len(args) == 1 {
				hhmm = args[0]
			}
			session := calc.SessionForTime(hhmm)

			if output.IsJSON() {
				return output.JSON(map[string]string{"time": hhmm, "session": session})
			}

			output.Printf("%s UTC: %s\n", hhmm, session)
			output.Println()
			table := NewTable(output, "Session", "Open", "Close")
			for _, s := range calc.Sessions() {
				table.AddRow(s.Name, clockText(s.Start), clockText(s.End))
			}
			table.Render()
			return nil
		},
	}
}

func clockText(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
