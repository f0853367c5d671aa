package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fxjournal/internal/calc"
	apperrors "fxjournal/internal/errors"
	"fxjournal/internal/models"
)

// addTradeCommands adds trade lifecycle commands.
func addTradeCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "trade",
		Short: "Trade lifecycle",
		Long:  "Plan, close, edit, and review trades on the active account.",
	}

	cmd.AddCommand(newTradeAddCmd(app))
	cmd.AddCommand(newTradeCloseCmd(app))
	cmd.AddCommand(newTradeEditCmd(app))
	cmd.AddCommand(newTradeDeleteCmd(app))
	cmd.AddCommand(newTradeListCmd(app))
	cmd.AddCommand(newTradeShowCmd(app))
	cmd.AddCommand(newTradeSizeCmd(app))

	rootCmd.AddCommand(cmd)
}

func newTradeAddCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a planned trade",
		Long: `Record a planned trade on the active account.

The trade is admitted against the account's risk limits: per-trade and
daily risk caps, and per-day trade counts. Lot size, pip value, and the
risk:reward ratio are derived from the plan; the trade opens in the
"open" state until closed.`,
		Example: `  fxjournal trade add --pair EUR/USD --entry 1.0850 --sl 1.0800 --tp 1.0950 --risk 2
  fxjournal trade add --pair XAU/USD --dir short --entry 2375 --sl 2380 --tp 2350 --time 08:30
  fxjournal trade add --pair GBP/USD --entry 1.27 --sl 1.265 --tp 1.28 --cancel`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := cmdContext()
			defer cancel()

			if err := requireJournal(ctx, cmd, app); err != nil {
				return err
			}

			draft, err := draftFromFlags(cmd, app)
			if err != nil {
				return err
			}

			trade, err := app.Journal.AddTrade(ctx, draft)
			if err != nil && trade == nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(trade)
			}
			output.Success("✓ Trade recorded: %s %s @ %s", trade.Pair, trade.Direction, FormatPrice(trade.EntryPrice, trade.Pair))
			output.Printf("  ID:        %s\n", trade.ID)
			output.Printf("  Lot Size:  %s\n", FormatLots(trade.LotSize))
			output.Printf("  Ratio:     %s\n", FormatRatio(trade.Ratio))
			if trade.Session != "" {
				output.Printf("  Session:   %s\n", trade.Session)
			}
			if err != nil {
				output.Warning("Write not yet durable: %v", err)
				output.Dim("The trade stays in the journal and will be retried on the next change.")
			}
			return nil
		},
	}

	cmd.Flags().String("pair", "", "currency pair, e.g. EUR/USD")
	cmd.Flags().String("dir", "long", "direction (long|short)")
	cmd.Flags().Float64("entry", 0, "entry price")
	cmd.Flags().Float64("sl", 0, "stop loss price")
	cmd.Flags().Float64("tp", 0, "take profit price")
	cmd.Flags().Float64("risk", 0, "risk percent of capital (default from config)")
	cmd.Flags().String("date", "", "entry date YYYY-MM-DD (default today)")
	cmd.Flags().String("time", "", "entry time HH:MM, used to tag the session")
	cmd.Flags().String("strategy", "", "strategy tag")
	cmd.Flags().String("before", "", "URL of the pre-trade chart screenshot")
	cmd.Flags().String("note", "", "free-form note")
	cmd.Flags().Bool("cancel", false, "plan this as a scratch entry, counted against the cancel cap")
	return cmd
}

func draftFromFlags(cmd *cobra.Command, app *App) (models.TradeDraft, error) {
	pair, _ := cmd.Flags().GetString("pair")
	dir, _ := cmd.Flags().GetString("dir")
	entry, _ := cmd.Flags().GetFloat64("entry")
	sl, _ := cmd.Flags().GetFloat64("sl")
	tp, _ := cmd.Flags().GetFloat64("tp")
	risk, _ := cmd.Flags().GetFloat64("risk")
	date, _ := cmd.Flags().GetString("date")
	tradeTime, _ := cmd.Flags().GetString("time")
	strategy, _ := cmd.Flags().GetString("strategy")
	before, _ := cmd.Flags().GetString("before")
	note, _ := cmd.Flags().GetString("note")
	plannedCancel, _ := cmd.Flags().GetBool("cancel")

	if risk == 0 {
		risk = app.Config.Journal.DefaultRisk
	}
	if strategy == "" {
		strategy = app.Config.Journal.DefaultStrategy
	}

	entryDate := time.Now().UTC().Truncate(24 * time.Hour)
	if date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return models.TradeDraft{}, fmt.Errorf("invalid --date %q: want YYYY-MM-DD", date)
		}
		entryDate = parsed
	}

	direction := models.DirectionLong
	if strings.EqualFold(dir, string(models.DirectionShort)) {
		direction = models.DirectionShort
	}

	return models.TradeDraft{
		Pair:           strings.ToUpper(pair),
		Direction:      direction,
		EntryDate:      entryDate,
		TradeTime:      tradeTime,
		EntryPrice:     entry,
		StopLoss:       sl,
		TakeProfit:     tp,
		RiskPercent:    risk,
		Strategy:       strategy,
		BeforeImageURL: before,
		Note:           note,
		PlannedCancel:  plannedCancel,
	}, nil
}

func newTradeCloseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "close <trade-id>",
		Short: "Close an open trade",
		Long: `Close an open trade as Completed or Cancelled.

A Completed close records the exit price and derives points and P&L; the
--pnl flag overrides the derived currency P&L and pins it against later
recomputation. A Cancelled close zeroes the trade's result.`,
		Example: `  fxjournal trade close 01HX... --exit-price 1.0950
  fxjournal trade close 01HX... --exit-price 1.0950 --pnl 12.40
  fxjournal trade close 01HX... --reason Cancelled`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := cmdContext()
			defer cancel()

			if err := requireJournal(ctx, cmd, app); err != nil {
				return err
			}
			tradeID, err := resolveTradeID(app, args[0])
			if err != nil {
				return err
			}

			reason, _ := cmd.Flags().GetString("reason")
			exitPrice, _ := cmd.Flags().GetFloat64("exit-price")
			exitDate, _ := cmd.Flags().GetString("exit-date")
			after, _ := cmd.Flags().GetString("after")

			cl := models.TradeClose{
				Reason:        models.CloseReason(reason),
				ExitPrice:     exitPrice,
				ExitDate:      time.Now().UTC(),
				AfterImageURL: after,
			}
			if exitDate != "" {
				parsed, err := time.Parse("2006-01-02", exitDate)
				if err != nil {
					return fmt.Errorf("invalid --exit-date %q: want YYYY-MM-DD", exitDate)
				}
				cl.ExitDate = parsed
			}
			if cmd.Flags().Changed("pnl") {
				v, _ := cmd.Flags().GetFloat64("pnl")
				cl.PnLOverride = &v
			}

			trade, err := app.Journal.CloseTrade(ctx, tradeID, cl)
			if err != nil && trade == nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(trade)
			}
			output.Success("✓ Trade closed: %s (%s)", trade.Pair, trade.CloseReason)
			if trade.CloseReason == models.CloseCompleted {
				output.Printf("  Points: %d\n", trade.Points)
				output.Printf("  P&L:    %s (%s)\n", output.FormatPnL(trade.PnLCurrency), output.FormatPercent(trade.PnLPercent))
			}
			if err != nil {
				output.Warning("Write not yet durable: %v", err)
			}
			return nil
		},
	}

	cmd.Flags().String("reason", string(models.CloseCompleted), "close reason (Completed|Cancelled)")
	cmd.Flags().Float64("exit-price", 0, "exit price")
	cmd.Flags().String("exit-date", "", "exit date YYYY-MM-DD (default today)")
	cmd.Flags().String("after", "", "URL of the post-trade chart screenshot")
	cmd.Flags().Float64("pnl", 0, "manual currency P&L override")
	return cmd
}

func newTradeEditCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <trade-id>",
		Short: "Edit a trade",
		Long: `Edit a trade's plan or metadata.

Editing the risk or entry day of an open trade re-checks the day's risk
limits; editing the prices of a closed trade recomputes its P&L unless
the P&L was set manually.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := cmdContext()
			defer cancel()

			if err := requireJournal(ctx, cmd, app); err != nil {
				return err
			}
			tradeID, err := resolveTradeID(app, args[0])
			if err != nil {
				return err
			}

			patch, err := patchFromFlags(cmd)
			if err != nil {
				return err
			}

			trade, err := app.Journal.EditTrade(ctx, tradeID, patch)
			if err != nil && trade == nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(trade)
			}
			output.Success("✓ Trade updated: %s", trade.Pair)
			if err != nil {
				output.Warning("Write not yet durable: %v", err)
			}
			return nil
		},
	}

	cmd.Flags().String("date", "", "entry date YYYY-MM-DD")
	cmd.Flags().String("time", "", "entry time HH:MM")
	cmd.Flags().Float64("entry", 0, "entry price")
	cmd.Flags().Float64("sl", 0, "stop loss price")
	cmd.Flags().Float64("tp", 0, "take profit price")
	cmd.Flags().Float64("risk", 0, "risk percent of capital")
	cmd.Flags().String("exit-date", "", "exit date YYYY-MM-DD")
	cmd.Flags().Float64("exit-price", 0, "exit price")
	cmd.Flags().Float64("lots", 0, "lot size override")
	cmd.Flags().Float64("pnl", 0, "manual currency P&L override")
	cmd.Flags().String("strategy", "", "strategy tag")
	cmd.Flags().String("session", "", "session label override")
	cmd.Flags().String("before", "", "URL of the pre-trade screenshot")
	cmd.Flags().String("after", "", "URL of the post-trade screenshot")
	cmd.Flags().String("note", "", "free-form note")
	return cmd
}

func patchFromFlags(cmd *cobra.Command) (models.TradePatch, error) {
	var patch models.TradePatch

	if cmd.Flags().Changed("date") {
		raw, _ := cmd.Flags().GetString("date")
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return patch, fmt.Errorf("invalid --date %q: want YYYY-MM-DD", raw)
		}
		patch.EntryDate = &parsed
	}
	if cmd.Flags().Changed("exit-date") {
		raw, _ := cmd.Flags().GetString("exit-date")
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return patch, fmt.Errorf("invalid --exit-date %q: want YYYY-MM-DD", raw)
		}
		patch.ExitDate = &parsed
	}

	floatFlags := map[string]**float64{
		"entry":      &patch.EntryPrice,
		"sl":         &patch.StopLoss,
		"tp":         &patch.TakeProfit,
		"risk":       &patch.RiskPercent,
		"exit-price": &patch.ExitPrice,
		"lots":       &patch.LotSize,
		"pnl":        &patch.PnLCurrency,
	}
	for name, dst := range floatFlags {
		if cmd.Flags().Changed(name) {
			v, _ := cmd.Flags().GetFloat64(name)
			*dst = &v
		}
	}

	stringFlags := map[string]**string{
		"time":     &patch.TradeTime,
		"strategy": &patch.Strategy,
		"session":  &patch.Session,
		"before":   &patch.BeforeImageURL,
		"after":    &patch.AfterImageURL,
		"note":     &patch.Note,
	}
	for name, dst := range stringFlags {
		if cmd.Flags().Changed(name) {
			v, _ := cmd.Flags().GetString(name)
			*dst = &v
		}
	}
	return patch, nil
}

func newTradeDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <trade-id>",
		Short: "Delete a trade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := cmdContext()
			defer cancel()

			if err := requireJournal(ctx, cmd, app); err != nil {
				return err
			}
			tradeID, err := resolveTradeID(app, args[0])
			if err != nil {
				return err
			}

			open, history, err := app.Journal.DeleteTrade(ctx, tradeID)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]int{"open": len(open), "history": len(history)})
			}
			output.Success("✓ Trade deleted")
			output.Printf("  Remaining: %d open, %d closed\n", len(open), len(history))
			return nil
		},
	}
	return cmd
}

func newTradeListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := cmdContext()
			defer cancel()

			if err := requireJournal(ctx, cmd, app); err != nil {
				return err
			}
			open, history := app.Journal.Snapshot()

			openOnly, _ := cmd.Flags().GetBool("open")
			closedOnly, _ := cmd.Flags().GetBool("closed")

			if output.IsJSON() {
				payload := map[string]interface{}{}
				if !closedOnly {
					payload["open"] = open
				}
				if !openOnly {
					payload["history"] = history
				}
				return output.JSON(payload)
			}

			if !closedOnly {
				output.Bold("Open")
				if len(open) == 0 {
					output.Dim("  none")
				} else {
					renderTrades(output, open)
				}
				output.Println()
			}
			if !openOnly {
				output.Bold("History")
				if len(history) == 0 {
					output.Dim("  none")
				} else {
					renderTrades(output, history)
				}
			}
			return nil
		},
	}
	cmd.Flags().Bool("open", false, "only open trades")
	cmd.Flags().Bool("closed", false, "only closed trades")
	return cmd
}

func renderTrades(output *Output, trades []models.Trade) {
	table := NewTable(output, "ID", "Date", "Pair", "Dir", "Entry", "SL", "TP", "Risk", "Lots", "Status", "P&L", "")
	for i := range trades {
		t := &trades[i]
		pnl := ""
		if t.Status == models.StatusActive {
			pnl = output.FormatPnL(t.PnLCurrency)
		}
		pending := ""
		if t.Pending {
			pending = output.Yellow("~")
		}
		table.AddRow(
			ShortID(t.ID),
			FormatDate(t.EntryDate),
			t.Pair,
			string(t.Direction),
			FormatPrice(t.EntryPrice, t.Pair),
			FormatPrice(t.StopLoss, t.Pair),
			FormatPrice(t.TakeProfit, t.Pair),
			fmt.Sprintf("%.1f%%", t.RiskPercent),
			FormatLots(t.LotSize),
			output.StatusText(string(t.Status)),
			pnl,
			pending,
		)
	}
	table.Render()
}

func newTradeShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <trade-id>",
		Short: "Show one trade in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := cmdContext()
			defer cancel()

			if err := requireJournal(ctx, cmd, app); err != nil {
				return err
			}
			tradeID, err := resolveTradeID(app, args[0])
			if err != nil {
				return err
			}
			trade := findTrade(app, tradeID)
			if trade == nil {
				return apperrors.ErrTradeNotFound
			}
			if output.IsJSON() {
				return output.JSON(trade)
			}

			output.Bold("%s %s", trade.Pair, trade.Direction)
			output.Printf("  ID:       %s\n", trade.ID)
			output.Printf("  Status:   %s\n", output.StatusText(string(trade.Status)))
			output.Printf("  Entry:    %s on %s", FormatPrice(trade.EntryPrice, trade.Pair), FormatDate(trade.EntryDate))
			if trade.TradeTime != "" {
				output.Printf(" at %s (%s)", trade.TradeTime, trade.Session)
			}
			output.Println()
			output.Printf("  SL / TP:  %s / %s\n", FormatPrice(trade.StopLoss, trade.Pair), FormatPrice(trade.TakeProfit, trade.Pair))
			output.Printf("  Risk:     %.1f%%  Lots: %s  Pip: %s  Ratio: %s\n",
				trade.RiskPercent, FormatLots(trade.LotSize), FormatMoney(trade.ValuePerPip), FormatRatio(trade.Ratio))
			if trade.Status.IsClosed() {
				output.Printf("  Closed:   %s (%s)\n", FormatDate(*trade.ExitDate), trade.CloseReason)
				if trade.CloseReason == models.CloseCompleted {
					manual := ""
					if trade.ManualPnL {
						manual = output.DimText(" (manual)")
					}
					output.Printf("  Exit:     %s, %d points\n", FormatPrice(trade.ExitPrice, trade.Pair), trade.Points)
					output.Printf("  P&L:      %s (%s)%s\n", output.FormatPnL(trade.PnLCurrency), output.FormatPercent(trade.PnLPercent), manual)
				}
			}
			if trade.Strategy != "" {
				output.Printf("  Strategy: %s\n", trade.Strategy)
			}
			if trade.BeforeImageURL != "" {
				output.Printf("  Before:   %s\n", trade.BeforeImageURL)
			}
			if trade.AfterImageURL != "" {
				output.Printf("  After:    %s\n", trade.AfterImageURL)
			}
			if trade.Note != "" {
				output.Printf("  Note:     %s\n", trade.Note)
			}
			if trade.Pending {
				output.Warning("  Last write is not yet durable.")
			}
			return nil
		},
	}
}

func newTradeSizeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "size",
		Short: "Preview position sizing",
		Long:  "Derive lot size, pip value, and ratio for a plan without recording it.",
		Example: `  fxjournal trade size --pair EUR/USD --entry 1.0850 --sl 1.0800 --tp 1.0950 --risk 2`,
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

			pair, _ := cmd.Flags().GetString("pair")
			entry, _ := cmd.Flags().GetFloat64("entry")
			sl, _ := cmd.Flags().GetFloat64("sl")
			tp, _ := cmd.Flags().GetFloat64("tp")
			risk, _ := cmd.Flags().GetFloat64("risk")
			if risk == 0 {
				risk = app.Config.Journal.DefaultRisk
			}
			pair = strings.ToUpper(pair)
			if !calc.KnownPair(pair) {
				return fmt.Errorf("unknown pair %q; see 'fxjournal pairs'", pair)
			}

			stopPts := calc.StopPoints(entry, sl, pair)
			takePts := calc.TakePoints(entry, tp, pair)
			vpp := calc.ValuePerPip(pair, acct.Tier)
			lots := calc.LotSize(acct.Capital, risk, pair, acct.Tier, stopPts)
			ratio := calc.Ratio(stopPts, takePts)
			riskAmount := calc.RiskAmount(risk, acct.Capital)

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"pair":        pair,
					"stopPoints":  stopPts,
					"takePoints":  takePts,
					"valuePerPip": vpp,
					"lotSize":     lots,
					"ratio":       ratio,
					"riskAmount":  riskAmount,
				})
			}

			output.Bold("%s sizing on %s", pair, acct.Name)
			output.Printf("  Capital:     %s\n", FormatMoney(acct.Capital))
			output.Printf("  Risk:        %.1f%% (%s)\n", risk, FormatMoney(riskAmount))
			output.Printf("  Stop:        %d points\n", stopPts)
			output.Printf("  Target:      %d points\n", takePts)
			output.Printf("  Pip Value:   %s\n", FormatMoney(vpp))
			output.Printf("  Lot Size:    %s\n", FormatLots(lots))
			output.Printf("  Ratio:       %s\n", FormatRatio(ratio))
			return nil
		},
	}

	cmd.Flags().String("pair", "", "currency pair, e.g. EUR/USD")
	cmd.Flags().Float64("entry", 0, "entry price")
	cmd.Flags().Float64("sl", 0, "stop loss price")
	cmd.Flags().Float64("tp", 0, "take profit price")
	cmd.Flags().Float64("risk", 0, "risk percent of capital (default from config)")
	return cmd
}

// resolveTradeID matches a full id or a unique id suffix against the loaded
// journal.
func resolveTradeID(app *App, raw string) (string, error) {
	open, history := app.Journal.Snapshot()
	var matches []string
	for _, list := range [][]models.Trade{open, history} {
		for i := range list {
			if list[i].ID == raw {
				return raw, nil
			}
			if strings.HasSuffix(list[i].ID, strings.ToUpper(raw)) {
				matches = append(matches, list[i].ID)
			}
		}
	}
	switch len(matches) {
	case 0:
		return "", apperrors.ErrTradeNotFound
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("trade id %q is ambiguous (%d matches)", raw, len(matches))
	}
}

func findTrade(app *App, tradeID string) *models.Trade {
	open, history := app.Journal.Snapshot()
	for _, list := range [][]models.Trade{open, history} {
		for i := range list {
			if list[i].ID == tradeID {
				t := list[i]
				return &t
			}
		}
	}
	return nil
}
