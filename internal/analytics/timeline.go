package analytics

import (
	"sort"
	"time"

	"fxjournal/internal/calc"
	"fxjournal/internal/models"
)

// Timeline builds the account's money timeline: the starting capital,
// stored deposits and withdrawals, and per-day profit/loss rows synthesized
// from closed trades. The result is stably sorted by date ascending, so
// same-day entries keep the build order (capital, movements, daily P&L).
func Timeline(acct *models.Account, stored []models.Transaction, history []models.Trade) []models.Transaction {
	var out []models.Transaction

	// Starting capital is the current capital with stored movements netted
	// back out; its date is the account birth, or the first exit when the
	// account predates the creation timestamp.
	initial := acct.Capital
	for _, tx := range stored {
		switch tx.Type {
		case models.TxDeposit:
			initial -= tx.Amount
		case models.TxWithdrawal:
			initial += tx.Amount
		}
	}
	start := acct.CreatedAt
	if start.IsZero() {
		if first := firstExit(history); first != nil {
			start = *first
		}
	}
	out = append(out, models.Transaction{
		Date:   start,
		Type:   models.TxStartingCapital,
		Amount: calc.Round2(initial),
	})

	for _, tx := range stored {
		if tx.Type == models.TxDeposit || tx.Type == models.TxWithdrawal {
			out = append(out, tx)
		}
	}

	out = append(out, dailyRows(history)...)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// dailyRows nets closed trades per exit day into DailyProfit/DailyLoss
// rows, chronologically.
func dailyRows(history []models.Trade) []models.Transaction {
	byDay := make(map[string]float64)
	var days []string
	for i := range history {
		t := &history[i]
		day := t.ExitDay()
		if day == "" {
			continue
		}
		if _, ok := byDay[day]; !ok {
			days = append(days, day)
		}
		byDay[day] += t.PnLCurrency
	}
	sort.Strings(days)

	var out []models.Transaction
	for _, day := range days {
		net := calc.Round2(byDay[day])
		if net == 0 {
			continue
		}
		date, _ := time.Parse("2006-01-02", day)
		txType := models.TxDailyProfit
		amount := net
		if net < 0 {
			txType = models.TxDailyLoss
			amount = -net
		}
		out = append(out, models.Transaction{Date: date, Type: txType, Amount: amount})
	}
	return out
}

func firstExit(history []models.Trade) *time.Time {
	var first *time.Time
	for i := range history {
		exit := history[i].ExitDate
		if exit == nil {
			continue
		}
		if first == nil || exit.Before(*first) {
			first = exit
		}
	}
	return first
}
