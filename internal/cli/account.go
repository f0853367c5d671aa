package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"fxjournal/internal/config"
	"fxjournal/internal/models"
	"fxjournal/pkg/id"
)

// addAccountCommands adds account management commands.
func addAccountCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account management",
		Long:  "Create, inspect, and fund trading accounts.",
	}

	cmd.AddCommand(newAccountCreateCmd(app))
	cmd.AddCommand(newAccountListCmd(app))
	cmd.AddCommand(newAccountSwitchCmd(app))
	cmd.AddCommand(newAccountShowCmd(app))
	cmd.AddCommand(newAccountEditCmd(app))
	cmd.AddCommand(newAccountDepositCmd(app))
	cmd.AddCommand(newAccountWithdrawCmd(app))
	cmd.AddCommand(newAccountResetCmd(app))

	rootCmd.AddCommand(cmd)
}

func newAccountCreateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new account",
		Long: `Create a new trading account owned by the configured user.

Target-plan accounts carry a target equity and a duration in weeks; the
weekly review measures progress against them.`,
		Example: `  fxjournal account create main --capital 1000
  fxjournal account create challenge --capital 500 --plan Target --target 1000 --duration 12
  fxjournal account create micro --capital 200 --tier Micro`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := cmdContext()
			defer cancel()

			if app.Store == nil {
				return fmt.Errorf("store unavailable")
			}

			capital, _ := cmd.Flags().GetFloat64("capital")
			plan, _ := cmd.Flags().GetString("plan")
			tier, _ := cmd.Flags().GetString("tier")
			target, _ := cmd.Flags().GetFloat64("target")
			duration, _ := cmd.Flags().GetInt("duration")
			weeklyTarget, _ := cmd.Flags().GetBool("weekly-target")
			drawdown, _ := cmd.Flags().GetFloat64("drawdown")

			now := time.Now().UTC()
			acct := &models.Account{
				ID:                  id.New(),
				UserID:              app.Config.User.ID,
				Name:                args[0],
				Plan:                models.AccountPlan(plan),
				Tier:                models.AccountTier(tier),
				Capital:             capital,
				Drawdown:            drawdown,
				DepositEnabled:      true,
				WithdrawEnabled:     true,
				TargetEquity:        target,
				DurationWeeks:       duration,
				WeeklyTargetEnabled: weeklyTarget,
				CreatedAt:           now,
				UpdatedAt:           now,
			}
			if err := app.Store.CreateAccount(ctx, acct); err != nil {
				return err
			}

			app.Logger.Info().Str("account", acct.ID).Str("name", acct.Name).Msg("account created")
			if output.IsJSON() {
				return output.JSON(acct)
			}
			output.Success("✓ Account %q created", acct.Name)
			output.Printf("  ID:      %s\n", acct.ID)
			output.Printf("  Capital: %s\n", FormatMoney(acct.Capital))
			output.Dim("Run 'fxjournal account switch %s' to make it active.", acct.ID)
			return nil
		},
	}

	cmd.Flags().Float64("capital", 0, "starting capital")
	cmd.Flags().String("plan", string(models.PlanNormal), "account plan (Normal|Target)")
	cmd.Flags().String("tier", string(models.TierStandard), "lot tier (Standard|Mini|Micro)")
	cmd.Flags().Float64("target", 0, "target equity (Target plan)")
	cmd.Flags().Int("duration", 0, "challenge duration in weeks (Target plan)")
	cmd.Flags().Bool("weekly-target", false, "track weekly targets (Target plan)")
	cmd.Flags().Float64("drawdown", 0, "max drawdown amount")
	return cmd
}

func newAccountListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := cmdContext()
			defer cancel()

			if app.Store == nil {
				return fmt.Errorf("store unavailable")
			}
			accounts, err := app.Store.ListAccounts(ctx, app.Config.User.ID)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(accounts)
			}
			if len(accounts) == 0 {
				output.Info("No accounts yet. Create one with 'fxjournal account create'.")
				return nil
			}

			table := NewTable(output, "", "ID", "Name", "Plan", "Tier", "Capital")
			for _, a := range accounts {
				active := ""
				if a.ID == app.Config.User.ActiveAccount {
					active = output.Green("●")
				}
				table.AddRow(active, a.ID, a.Name, string(a.Plan), string(a.Tier), FormatMoney(a.Capital))
			}
			table.Render()
			return nil
		},
	}
}

func newAccountSwitchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <account-id>",
		Short: "Switch the active account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := cmdContext()
			defer cancel()

			accountID := args[0]
			if app.Journal == nil {
				return fmt.Errorf("store unavailable")
			}
			if err := app.Journal.SwitchAccount(ctx, app.Config.User.ID, accountID); err != nil {
				return err
			}
			if err := config.SaveActiveAccount(app.ConfigDir, accountID); err != nil {
				return err
			}
			app.Config.User.ActiveAccount = accountID

			acct, err := app.Journal.Account()
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(acct)
			}
			output.Success("✓ Active account: %s (%s)", acct.Name, acct.ID)
			return nil
		},
	}
}

func newAccountShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active account",
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
			if output.IsJSON() {
				return output.JSON(acct)
			}

			output.Bold("%s", acct.Name)
			output.Printf("  ID:        %s\n", acct.ID)
			output.Printf("  Plan:      %s\n", acct.Plan)
			output.Printf("  Tier:      %s\n", acct.Tier)
			output.Printf("  Capital:   %s\n", FormatMoney(acct.Capital))
			if acct.Drawdown > 0 {
				output.Printf("  Drawdown:  %s\n", FormatMoney(acct.Drawdown))
			}
			if acct.Plan == models.PlanTarget {
				output.Printf("  Target:    %s over %d weeks\n", FormatMoney(acct.TargetEquity), acct.DurationWeeks)
			}
			output.Printf("  Deposits:  %s\n", enabledText(acct.DepositEnabled))
			output.Printf("  Withdraws: %s\n", enabledText(acct.WithdrawEnabled))
			output.Printf("  Created:   %s\n", FormatDate(acct.CreatedAt))
			return nil
		},
	}
}

func enabledText(v bool) string {
	if v {
		return "enabled"
	}
	return "disabled"
}

func newAccountEditCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit the active account",
		Example: `  fxjournal account edit --name funded
  fxjournal account edit --allow-withdraw=false`,
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

			var patch models.AccountPatch
			if cmd.Flags().Changed("name") {
				v, _ := cmd.Flags().GetString("name")
				patch.Name = &v
			}
			if cmd.Flags().Changed("drawdown") {
				v, _ := cmd.Flags().GetFloat64("drawdown")
				patch.Drawdown = &v
			}
			if cmd.Flags().Changed("target") {
				v, _ := cmd.Flags().GetFloat64("target")
				patch.TargetEquity = &v
			}
			if cmd.Flags().Changed("duration") {
				v, _ := cmd.Flags().GetInt("duration")
				patch.DurationWeeks = &v
			}
			if cmd.Flags().Changed("weekly-target") {
				v, _ := cmd.Flags().GetBool("weekly-target")
				patch.WeeklyTargetEnabled = &v
			}
			if cmd.Flags().Changed("allow-deposit") {
				v, _ := cmd.Flags().GetBool("allow-deposit")
				patch.DepositEnabled = &v
			}
			if cmd.Flags().Changed("allow-withdraw") {
				v, _ := cmd.Flags().GetBool("allow-withdraw")
				patch.WithdrawEnabled = &v
			}

			if err := app.Store.UpdateAccount(ctx, acct.ID, app.Config.User.ID, patch); err != nil {
				return err
			}
			output.Success("✓ Account updated")
			return nil
		},
	}

	cmd.Flags().String("name", "", "account name")
	cmd.Flags().Float64("drawdown", 0, "max drawdown amount")
	cmd.Flags().Float64("target", 0, "target equity")
	cmd.Flags().Int("duration", 0, "challenge duration in weeks")
	cmd.Flags().Bool("weekly-target", false, "track weekly targets")
	cmd.Flags().Bool("allow-deposit", true, "allow deposits")
	cmd.Flags().Bool("allow-withdraw", true, "allow withdrawals")
	return cmd
}

func newAccountDepositCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <amount>",
		Short: "Deposit funds into the active account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return moveFunds(cmd, app, args[0], true)
		},
	}
}

func newAccountWithdrawCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <amount>",
		Short: "Withdraw funds from the active account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return moveFunds(cmd, app, args[0], false)
		},
	}
}

func moveFunds(cmd *cobra.Command, app *App, raw string, deposit bool) error {
	output := NewOutput(cmd)
	ctx, cancel := cmdContext()
	defer cancel()

	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil || amount <= 0 {
		return fmt.Errorf("amount must be a positive number, got %q", raw)
	}
	if err := requireJournal(ctx, cmd, app); err != nil {
		return err
	}

	if deposit {
		err = app.Journal.Deposit(ctx, amount)
	} else {
		err = app.Journal.Withdraw(ctx, amount)
	}
	if err != nil {
		return err
	}

	acct, err := app.Journal.Account()
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(map[string]interface{}{"capital": acct.Capital})
	}
	if deposit {
		output.Success("✓ Deposited %s", FormatMoney(amount))
	} else {
		output.Success("✓ Withdrew %s", FormatMoney(amount))
	}
	output.Printf("  Capital: %s\n", FormatMoney(acct.Capital))
	return nil
}

func newAccountResetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the active account",
		Long:  "Delete every trade of the active account and zero its capital.",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := cmdContext()
			defer cancel()

			confirmed, _ := cmd.Flags().GetBool("yes")
			if !confirmed {
				output.Warning("This deletes every trade of the account and zeroes its capital.")
				output.Println("Re-run with --yes to confirm.")
				return nil
			}

			if err := requireJournal(ctx, cmd, app); err != nil {
				return err
			}
			if err := app.Journal.Reset(ctx); err != nil {
				return err
			}
			app.Logger.Info().Str("account", app.Journal.Scope().AccountID).Msg("account reset")
			output.Success("✓ Account reset")
			return nil
		},
	}
	cmd.Flags().Bool("yes", false, "skip confirmation")
	return cmd
}
