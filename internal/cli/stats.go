package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"fxjournal/internal/analytics"
	"fxjournal/internal/models"
)

// addStatsCommands adds the analytics commands.
func addStatsCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newStatsCmd(app))
	rootCmd.AddCommand(newWeeklyCmd(app))
	rootCmd.AddCommand(newEquityCmd(app))
	rootCmd.AddCommand(newRiskCmd(app))
	rootCmd.AddCommand(newDistributionCmd(app))
	rootCmd.AddCommand(newTimelineCmd(app))
}

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Dashboard statistics",
		Long:  "Win/loss rates, total P&L, current equity, and pair rankings.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := cmdContext()
			defer cancel()

			if err := requireJournal(ctx, cmd, app); err != nil {
				return err
			}
			acct, err := app.Journal.Account()
			if err != nil {
				return err
			}
			open, history := app.Journal.Snapshot()
			st := analytics.Dashboard(acct.Capital, history, open)

			if output.IsJSON() {
				return output.JSON(st)
			}

			output.Bold("%s - %d trades", acct.Name, st.TotalTrades)
			output.Println()
			output.Printf("  Capital:        %s\n", FormatMoney(acct.Capital))
			output.Printf("  Current Equity: %s\n", FormatMoney(st.CurrentEquity))
			output.Printf("  Total P&L:      %s (%s)\n", output.FormatPnL(st.TotalPnLCurrency), output.FormatPercent(st.TotalPnLPercent))
			output.Println()
			output.Printf("  Wins:       %d (%.1f%%)\n", st.Wins, st.WinRate)
			output.Printf("  Losses:     %d (%.1f%%)\n", st.Losses, st.LossRate)
			output.Printf("  Breakevens: %d (%.1f%%)\n", st.Breakevens, st.BreakevenRate)
			output.Println()
			output.Bold("Pairs")
			output.Printf("  Most Traded:       %s\n", st.MostTradedPair)
			output.Printf("  Most Profitable:   %s\n", st.MostProfitablePair)
			output.Printf("  Most Losing:       %s\n", st.MostLosingPair)
			output.Printf("  Highest Breakeven: %s\n", st.HighestBreakevenPair)
			return nil
		},
	}
}

func newWeeklyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Weekly review",
		Long: `Roll closed trades up into the 52 ISO weeks of the review year.

Each week starts at the prior week's end equity; empty weeks carry their
equity forward. By default only weeks with trades are shown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := cmdContext()
			defer cancel()

			if err := requireJournal(ctx, cmd, app); err != nil {
				return err
			}
			acct, err := app.Journal.Account()
			if err != nil {
				return err
			}
			_, history := app.Journal.Snapshot()
			reviews := analytics.WeeklyReview(acct.Capital, history)

			showAll, _ := cmd.Flags().GetBool("all")
			if output.IsJSON() {
				if !showAll {
					var active []analytics.WeekReview
					for _, rv := range reviews {
						if rv.Trades > 0 {
							active = append(active, rv)
						}
					}
					return output.JSON(active)
				}
				return output.JSON(reviews)
			}

			output.Bold("Weekly Review - %s", acct.Name)
			table := NewTable(output, "Week", "Start", "End", "P&L", "%", "Trades", "W/L/B", "Top Pair")
			shown := 0
			for _, rv := range reviews {
				if rv.Trades == 0 && !showAll {
					continue
				}
				shown++
				table.AddRow(
					fmt.Sprintf("%d", rv.Week),
					FormatMoney(rv.StartEquity),
					FormatMoney(rv.EndEquity),
					output.FormatPnL(rv.TotalPnL),
					output.FormatPercent(rv.WeeklyPnLPercent),
					fmt.Sprintf("%d", rv.Trades),
					fmt.Sprintf("%d/%d/%d", rv.Wins, rv.Losses, rv.Breakevens),
					rv.MostTradedPair,
				)
			}
			if shown == 0 {
				output.Info("No closed trades yet.")
				return nil
			}
			table.Render()

			if acct.Plan == models.PlanTarget && acct.TargetEquity > 0 {
				last := reviews[len(reviews)-1]
				output.Println()
				output.Printf("  Target: %s  Current: %s\n", FormatMoney(acct.TargetEquity), FormatMoney(last.EndEquity))
			}
			return nil
		},
	}
	cmd.Flags().Bool("all", false, "include weeks without trades")
	return cmd
}

func newEquityCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "equity",
		Short: "Equity curve",
		Long:  "Weekly cumulative equity, or per-trade equity with --per-trade.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := cmdContext()
			defer cancel()

			if err := requireJournal(ctx, cmd, app); err != nil {
				return err
			}
			acct, err := app.Journal.Account()
			if err != nil {
				return err
			}
			_, history := app.Journal.Snapshot()

			perTrade, _ := cmd.Flags().GetBool("per-trade")
			var points []analytics.EquityPoint
			if perTrade {
				points = analytics.PerTradeEquity(acct.Capital, history)
			} else {
				points = analytics.EquityCurve(acct.Capital, history)
			}

			if output.IsJSON() {
				return output.JSON(points)
			}

			table := NewTable(output, "Point", "Equity", "Change")
			prev := 0.0
			for i, p := range points {
				change := ""
				if i > 0 {
					change = output.FormatPnL(p.Equity - prev)
				}
				table.AddRow(p.Label, FormatMoney(p.Equity), change)
				prev = p.Equity
			}
			table.Render()
			return nil
		},
	}
	cmd.Flags().Bool("per-trade", false, "one point per closed trade instead of per week")
	return cmd
}

func newRiskCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "risk",
		Short: "Daily risk usage",
		Long:  "Risk percent consumed per entry day against the daily cap.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := cmdContext()
			defer cancel()

			if err := requireJournal(ctx, cmd, app); err != nil {
				return err
			}
			open, history := app.Journal.Snapshot()
			days := analytics.DailyRiskUsed(app.Config.Risk.DailyRiskCap, open, history)

			if output.IsJSON() {
				return output.JSON(days)
			}
			if len(days) == 0 {
				output.Info("No trades yet.")
				return nil
			}

			table := NewTable(output, "Date", "Risk Used", "Cap")
			for _, d := range days {
				used := fmt.Sprintf("%.1f%%", d.RiskUsed)
				if d.RiskUsed >= d.Cap {
					used = output.Red(used)
				}
				table.AddRow(d.Date, used, fmt.Sprintf("%.1f%%", d.Cap))
			}
			table.Render()
			return nil
		},
	}
}

func newDistributionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dist <pairs|sessions|days>",
		Short: "Trade distributions",
		Long:  "Trade frequency and closed P&L by pair, session, or weekday.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := cmdContext()
			defer cancel()

			if err := requireJournal(ctx, cmd, app); err != nil {
				return err
			}
			open, history := app.Journal.Snapshot()

			var buckets []analytics.Bucket
			switch args[0] {
			case "pairs":
				buckets = analytics.ByPair(open, history)
			case "sessions":
				buckets = analytics.BySession(open, history)
			case "days":
				buckets = analytics.ByDayOfWeek(open, history)
			default:
				return fmt.Errorf("unknown distribution %q: want pairs, sessions, or days", args[0])
			}

			if output.IsJSON() {
				return output.JSON(buckets)
			}

			table := NewTable(output, "Label", "Trades", "P&L")
			for _, b := range buckets {
				table.AddRow(b.Label, fmt.Sprintf("%d", b.Trades), output.FormatPnL(b.PnL))
			}
			table.Render()
			return nil
		},
	}
	return cmd
}

func newTimelineCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "timeline",
		Short: "Account money timeline",
		Long: `The account's money history: starting capital, deposits and
withdrawals, and per-day profit/loss rows derived from closed trades.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := cmdContext()
			defer cancel()

			if err := requireJournal(ctx, cmd, app); err != nil {
				return err
			}
			acct, err := app.Journal.Account()
			if err != nil {
				return err
			}
			stored, err := app.Journal.Transactions(ctx)
			if err != nil {
				return err
			}
			_, history := app.Journal.Snapshot()

			timeline := analytics.Timeline(acct, stored, history)
			if output.IsJSON() {
				return output.JSON(timeline)
			}

			table := NewTable(output, "Date", "Type", "Amount")
			for _, tx := range timeline {
				amount := FormatMoney(tx.Amount)
				switch tx.Type {
				case models.TxDailyProfit, models.TxDeposit:
					amount = output.Green(amount)
				case models.TxDailyLoss, models.TxWithdrawal:
					amount = output.Red(amount)
				}
				table.AddRow(FormatDate(tx.Date), string(tx.Type), amount)
			}
			table.Render()
			return nil
		},
	}
}
