package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxjournal/internal/models"
)

func closedTrade(pair string, exitDate time.Time, pnl, riskPct float64) models.Trade {
	exit := exitDate
	return models.Trade{
		Pair:        pair,
		EntryDate:   exitDate.AddDate(0, 0, -1),
		RiskPercent: riskPct,
		Status:      models.StatusActive,
		CloseReason: models.CloseCompleted,
		ExitDate:    &exit,
		PnLCurrency: pnl,
	}
}

func cancelledTrade(pair string, exitDate time.Time) models.Trade {
	exit := exitDate
	return models.Trade{
		Pair:        pair,
		EntryDate:   exitDate,
		Status:      models.StatusCancelled,
		CloseReason: models.CloseCancelled,
		ExitDate:    &exit,
	}
}

func TestDashboard(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	history := []models.Trade{
		closedTrade("EUR/USD", day, 50, 2.0),  // win: 50 > $20 risk
		closedTrade("EUR/USD", day, -20, 2.0), // loss
		closedTrade("GBP/USD", day, 10, 2.0),  // breakeven: 0 <= 10 <= 20
	}
	open := []models.Trade{{Pair: "XAU/USD", EntryDate: day, Status: models.StatusOpen}}

	st := Dashboard(1000, history, open)

	assert.Equal(t, 4, st.TotalTrades)
	assert.Equal(t, 1, st.Wins)
	assert.Equal(t, 1, st.Losses)
	assert.Equal(t, 1, st.Breakevens)
	assert.InDelta(t, 40.0, st.TotalPnLCurrency, 1e-9)
	assert.InDelta(t, 1040.0, st.CurrentEquity, 1e-9)

	// Rates: win/loss over closed trades, breakeven over all trades.
	assert.InDelta(t, 33.33, st.WinRate, 0.01)
	assert.InDelta(t, 33.33, st.LossRate, 0.01)
	assert.InDelta(t, 25.0, st.BreakevenRate, 0.01)

	assert.Equal(t, "EUR/USD", st.MostProfitablePair)
	assert.Equal(t, "EUR/USD", st.MostLosingPair)
	assert.Equal(t, "EUR/USD", st.MostTradedPair)
	assert.Equal(t, "GBP/USD", st.HighestBreakevenPair)
}

func TestDashboard_CancelledLeavesWinLossUnchanged(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	history := []models.Trade{closedTrade("EUR/USD", day, 50, 2.0)}
	before := Dashboard(1000, history, nil)

	history = append(history, cancelledTrade("EUR/USD", day))
	after := Dashboard(1000, history, nil)

	assert.Equal(t, before.Wins, after.Wins)
	assert.Equal(t, before.Losses, after.Losses)
	assert.InDelta(t, before.TotalPnLCurrency, after.TotalPnLCurrency, 1e-9)
}

func TestDashboard_ZeroPnLBreakevensStillRank(t *testing.T) {
	t.Parallel()

	// Cancelled trades are breakevens with exactly zero P&L; the pair must
	// still rank instead of falling back to the empty placeholder.
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	history := []models.Trade{
		closedTrade("EUR/USD", day, 50, 2.0),
		cancelledTrade("GBP/USD", day),
		cancelledTrade("GBP/USD", day),
		cancelledTrade("USD/JPY", day),
	}

	st := Dashboard(1000, history, nil)

	assert.Equal(t, 3, st.Breakevens)
	assert.Equal(t, "GBP/USD", st.HighestBreakevenPair)
}

func TestWeeklyReview_ZeroPnLBreakevensStillRank(t *testing.T) {
	t.Parallel()

	week10 := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	history := []models.Trade{
		closedTrade("EUR/USD", week10, 50, 2.0),
		cancelledTrade("GBP/USD", week10),
	}

	reviews := WeeklyReview(1000, history)
	require.Len(t, reviews, 52)

	w10 := reviews[9]
	assert.Equal(t, 1, w10.Breakevens)
	assert.Equal(t, "GBP/USD", w10.HighestBreakevenPair)
}

func TestDashboard_Empty(t *testing.T) {
	t.Parallel()

	st := Dashboard(1000, nil, nil)
	assert.Zero(t, st.TotalTrades)
	assert.InDelta(t, 1000.0, st.CurrentEquity, 1e-9)
	assert.Equal(t, None, st.MostProfitablePair)
	assert.Equal(t, None, st.MostTradedPair)
}

func TestWeeklyReview_Rollup(t *testing.T) {
	t.Parallel()

	// Closed trades in ISO weeks 10, 10, 12 of 2025 with pnl +50, -20, +100.
	week10a := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)  // Tuesday, week 10
	week10b := time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC)  // Thursday, week 10
	week12 := time.Date(2025, 3, 18, 0, 0, 0, 0, time.UTC)  // Tuesday, week 12
	history := []models.Trade{
		closedTrade("EUR/USD", week10a, 50, 2.0),
		closedTrade("GBP/USD", week10b, -20, 2.0),
		closedTrade("EUR/USD", week12, 100, 2.0),
	}

	reviews := WeeklyReview(1000, history)
	require.Len(t, reviews, 52)

	w10 := reviews[9]
	assert.Equal(t, 10, w10.Week)
	assert.InDelta(t, 1000.0, w10.StartEquity, 1e-9)
	assert.InDelta(t, 30.0, w10.TotalPnL, 1e-9)
	assert.InDelta(t, 3.0, w10.WeeklyPnLPercent, 1e-9)
	assert.InDelta(t, 1030.0, w10.EndEquity, 1e-9)
	assert.Equal(t, 2, w10.Trades)

	// Week 11 is empty and carries equity forward.
	w11 := reviews[10]
	assert.Zero(t, w11.Trades)
	assert.InDelta(t, 1030.0, w11.StartEquity, 1e-9)
	assert.InDelta(t, 1030.0, w11.EndEquity, 1e-9)
	assert.Equal(t, None, w11.MostTradedPair)

	w12 := reviews[11]
	assert.InDelta(t, 1030.0, w12.StartEquity, 1e-9)
	assert.InDelta(t, 1130.0, w12.EndEquity, 1e-9)
}

func TestWeeklyReview_Chaining(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 5, 6, 0, 0, 0, 0, time.UTC)
	history := []models.Trade{
		closedTrade("EUR/USD", day, 75, 2.0),
		closedTrade("GBP/USD", day.AddDate(0, 0, 14), -30, 2.0),
	}

	reviews := WeeklyReview(2000, history)
	require.Len(t, reviews, 52)

	assert.InDelta(t, 2000.0, reviews[0].StartEquity, 1e-9)
	for i := 1; i < len(reviews); i++ {
		assert.InDelta(t, reviews[i-1].EndEquity, reviews[i].StartEquity, 1e-9,
			"week %d start must equal week %d end", reviews[i].Week, reviews[i-1].Week)
	}
}

func TestEquityCurve(t *testing.T) {
	t.Parallel()

	week10 := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	week12 := time.Date(2025, 3, 18, 0, 0, 0, 0, time.UTC)
	history := []models.Trade{
		closedTrade("EUR/USD", week10, 50, 2.0),
		closedTrade("GBP/USD", week10, -20, 2.0),
		closedTrade("EUR/USD", week12, 100, 2.0),
	}

	points := EquityCurve(1000, history)
	require.Len(t, points, 3)

	assert.Equal(t, "Start", points[0].Label)
	assert.InDelta(t, 1000.0, points[0].Equity, 1e-9)
	assert.Equal(t, "Week 10", points[1].Label)
	assert.InDelta(t, 1030.0, points[1].Equity, 1e-9)
	assert.Equal(t, "Week 12", points[2].Label)
	assert.InDelta(t, 1130.0, points[2].Equity, 1e-9)

	// Final equity equals capital plus total closed P&L.
	var total float64
	for _, tr := range history {
		total += tr.PnLCurrency
	}
	assert.InDelta(t, 1000+total, points[len(points)-1].Equity, 0.01)
}

func TestPerTradeEquity(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	history := []models.Trade{
		closedTrade("EUR/USD", day.AddDate(0, 0, 2), -20, 2.0),
		closedTrade("GBP/USD", day, 50, 2.0),
	}

	points := PerTradeEquity(1000, history)
	require.Len(t, points, 3)

	// Sorted by exit date: GBP/USD first despite list order.
	assert.Equal(t, "GBP/USD", points[1].Label)
	assert.InDelta(t, 1050.0, points[1].Equity, 1e-9)
	assert.InDelta(t, 1030.0, points[2].Equity, 1e-9)
}

func TestDailyRiskUsed(t *testing.T) {
	t.Parallel()

	day1 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	open := []models.Trade{
		{EntryDate: day2, RiskPercent: 1.5, Status: models.StatusOpen},
	}
	history := []models.Trade{
		closedTrade("EUR/USD", day1, 10, 2.0),
		closedTrade("GBP/USD", day1, 10, 2.5),
		cancelledTrade("EUR/USD", day1), // excluded from risk sums
	}

	days := DailyRiskUsed(5.0, open, history)
	require.Len(t, days, 2)

	// Closed trades count on their entry day; the cancelled trade counts
	// nowhere, so its day never appears.
	assert.Equal(t, "2025-03-09", days[0].Date)
	assert.InDelta(t, 4.5, days[0].RiskUsed, 1e-9)
	assert.InDelta(t, 5.0, days[0].Cap, 1e-9)

	assert.Equal(t, "2025-03-11", days[1].Date)
	assert.InDelta(t, 1.5, days[1].RiskUsed, 1e-9)
}

func TestByPair_InsertionOrder(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	open := []models.Trade{{Pair: "XAU/USD", EntryDate: day, Status: models.StatusOpen}}
	history := []models.Trade{
		closedTrade("EUR/USD", day, 30, 2.0),
		closedTrade("XAU/USD", day, -10, 2.0),
	}

	buckets := ByPair(open, history)
	require.Len(t, buckets, 2)

	assert.Equal(t, "XAU/USD", buckets[0].Label)
	assert.Equal(t, 2, buckets[0].Trades)
	assert.InDelta(t, -10.0, buckets[0].PnL, 1e-9)
	assert.Equal(t, "EUR/USD", buckets[1].Label)
	assert.InDelta(t, 30.0, buckets[1].PnL, 1e-9)
}

func TestBySession_UnknownFallback(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	history := []models.Trade{closedTrade("EUR/USD", day, 10, 2.0)}
	history[0].Session = ""

	buckets := BySession(nil, history)
	require.Len(t, buckets, 1)
	assert.Equal(t, "Unknown", buckets[0].Label)
}

func TestByDayOfWeek_FixedOrder(t *testing.T) {
	t.Parallel()

	tuesday := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	saturday := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	history := []models.Trade{
		{Pair: "EUR/USD", EntryDate: tuesday, Status: models.StatusActive, PnLCurrency: 25},
		{Pair: "EUR/USD", EntryDate: saturday, Status: models.StatusActive, PnLCurrency: 99},
	}

	buckets := ByDayOfWeek(nil, history)
	require.Len(t, buckets, 5)

	assert.Equal(t, "Monday", buckets[0].Label)
	assert.Zero(t, buckets[0].Trades)
	assert.Equal(t, "Tuesday", buckets[1].Label)
	assert.Equal(t, 1, buckets[1].Trades)
	assert.InDelta(t, 25.0, buckets[1].PnL, 1e-9)

	// The Saturday trade is dropped entirely.
	total := 0
	for _, b := range buckets {
		total += b.Trades
	}
	assert.Equal(t, 1, total)
}

func TestTimeline(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	acct := &models.Account{ID: "a1", Capital: 1130, CreatedAt: created}

	stored := []models.Transaction{
		{Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), Type: models.TxDeposit, Amount: 200},
		{Date: time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC), Type: models.TxWithdrawal, Amount: 100},
	}
	day := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	history := []models.Trade{
		closedTrade("EUR/USD", day, 50, 2.0),
		closedTrade("GBP/USD", day, -20, 2.0),
		closedTrade("EUR/USD", day.AddDate(0, 0, 1), -15, 2.0),
	}

	timeline := Timeline(acct, stored, history)
	require.Len(t, timeline, 5)

	// Starting capital is current capital net of stored movements.
	assert.Equal(t, models.TxStartingCapital, timeline[0].Type)
	assert.InDelta(t, 1030.0, timeline[0].Amount, 1e-9)
	assert.Equal(t, created, timeline[0].Date)

	assert.Equal(t, models.TxDeposit, timeline[1].Type)
	assert.Equal(t, models.TxWithdrawal, timeline[2].Type)

	// Daily rows net per exit day.
	assert.Equal(t, models.TxDailyProfit, timeline[3].Type)
	assert.InDelta(t, 30.0, timeline[3].Amount, 1e-9)
	assert.Equal(t, models.TxDailyLoss, timeline[4].Type)
	assert.InDelta(t, 15.0, timeline[4].Amount, 1e-9)
}
