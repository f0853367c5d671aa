package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fxjournal/internal/models"
)

func TestCanonicalStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		raw    string
		reason string
		want   models.TradeStatus
	}{
		{"open", "open", "", models.StatusOpen},
		{"empty", "", "", models.StatusOpen},
		{"active lowercase", "active", "", models.StatusActive},
		{"Active", "Active", "", models.StatusActive},
		{"cancelled", "Cancelled", "", models.StatusCancelled},
		{"american spelling", "canceled", "", models.StatusCancelled},
		{"closed completed", "closed", "Completed", models.StatusActive},
		{"closed cancelled", "closed", "Cancelled", models.StatusCancelled},
		{"legacy closed no reason", "closed", "", models.StatusActive},
		{"whitespace", "  OPEN  ", "", models.StatusOpen},
		{"garbage", "???", "", models.StatusOpen},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, CanonicalStatus(tt.raw, tt.reason))
		})
	}
}

func TestCanonicalCloseReason(t *testing.T) {
	t.Parallel()

	assert.Equal(t, models.CloseCompleted, CanonicalCloseReason("Completed"))
	assert.Equal(t, models.CloseCompleted, CanonicalCloseReason("tp"))
	assert.Equal(t, models.CloseCancelled, CanonicalCloseReason("cancel"))
	assert.Equal(t, models.CloseReason(""), CanonicalCloseReason(""))
	assert.Equal(t, models.CloseReason(""), CanonicalCloseReason("whatever"))
}

func TestCanonicalDirection(t *testing.T) {
	t.Parallel()

	assert.Equal(t, models.DirectionLong, CanonicalDirection("buy"))
	assert.Equal(t, models.DirectionLong, CanonicalDirection("LONG"))
	assert.Equal(t, models.DirectionShort, CanonicalDirection("sell"))
	assert.Equal(t, models.Direction(""), CanonicalDirection("sideways"))
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	exit := time.Date(2025, 3, 12, 14, 30, 0, 0, time.UTC)
	trade := models.Trade{
		ID:             "01HXTEST",
		UserID:         "user-1",
		AccountID:      "acct-1",
		Pair:           "EUR/USD",
		Direction:      models.DirectionShort,
		EntryDate:      time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		TradeTime:      "08:30",
		EntryPrice:     1.085,
		StopLoss:       1.09,
		TakeProfit:     1.075,
		RiskPercent:    2,
		LotSize:        0.04,
		ValuePerPip:    10,
		Ratio:          2,
		ExitDate:       &exit,
		ExitPrice:      1.075,
		Points:         1000,
		PnLCurrency:    400,
		PnLPercent:     4,
		CloseReason:    models.CloseCompleted,
		ManualPnL:      true,
		Status:         models.StatusActive,
		Session:        "Tokyo, London",
		Strategy:       "breakout",
		BeforeImageURL: "https://charts.example.com/before.png",
		AfterImageURL:  "https://charts.example.com/after.png",
		Note:           "CPI day",
		CreatedAt:      time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC),
		UpdatedAt:      time.Date(2025, 3, 12, 14, 30, 0, 0, time.UTC),
	}

	back := FromRow(ToRow(&trade))
	assert.Equal(t, trade, back)
}

func TestRoundTrip_OpenTrade(t *testing.T) {
	t.Parallel()

	trade := models.Trade{
		ID:          "01HXOPEN",
		Pair:        "XAU/USD",
		Direction:   models.DirectionLong,
		EntryDate:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		EntryPrice:  2350,
		StopLoss:    2345,
		TakeProfit:  2360,
		RiskPercent: 1.5,
		LotSize:     0.03,
		ValuePerPip: 10,
		Ratio:       2,
		Status:      models.StatusOpen,
		CreatedAt:   time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
	}

	back := FromRow(ToRow(&trade))
	assert.Equal(t, trade, back)
	assert.Nil(t, back.ExitDate)
}

func TestFromRow_FillsMissingCloseReason(t *testing.T) {
	t.Parallel()

	r := Row{Status: "Active", ExitDate: "2025-03-12T00:00:00Z"}
	assert.Equal(t, models.CloseCompleted, FromRow(r).CloseReason)

	r = Row{Status: "Cancelled"}
	assert.Equal(t, models.CloseCancelled, FromRow(r).CloseReason)
}

func TestFromRecord_Aliases(t *testing.T) {
	t.Parallel()

	rec := map[string]interface{}{
		"id":          "t-1",
		"symbol":      "GBP/USD",
		"direction":   "buy",
		"entryDate":   "2025-03-10",
		"entryPrice":  1.27,
		"stopLoss":    1.265,
		"takeProfit":  1.28,
		"riskPercent": 2.5,
		"lotSize":     0.05,
		"pnlCurrency": 42.0,
		"manualPnl":   true,
		"notes":       "legacy export",
		"status":      "closed",
		"closeReason": "Cancelled",
		"bogusField":  "dropped",
	}

	row := FromRecord(rec)
	assert.Equal(t, "t-1", row.ID)
	assert.Equal(t, "GBP/USD", row.Pair)
	assert.Equal(t, "buy", row.Type)
	assert.Equal(t, "2025-03-10", row.EntryDate)
	assert.InDelta(t, 1.265, row.SL, 1e-9)
	assert.InDelta(t, 1.28, row.TP, 1e-9)
	assert.InDelta(t, 2.5, row.Risk, 1e-9)
	assert.InDelta(t, 42.0, row.PnLCurrency, 1e-9)
	assert.True(t, row.PnLManual)
	assert.Equal(t, "legacy export", row.Note)

	trade := FromRow(row)
	assert.Equal(t, models.DirectionLong, trade.Direction)
	assert.Equal(t, models.StatusCancelled, trade.Status)
	assert.Equal(t, models.CloseCancelled, trade.CloseReason)
}

func TestFromRecord_CanonicalKeyWins(t *testing.T) {
	t.Parallel()

	// When a record carries both spellings the canonical one is kept
	// regardless of map iteration order.
	rec := map[string]interface{}{
		"sl":       1.1,
		"stopLoss": 9.9,
	}
	row := FromRecord(rec)
	assert.InDelta(t, 1.1, row.SL, 1e-9)
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc3339", "2025-03-10T08:30:00Z", time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)},
		{"sqlite datetime", "2025-03-10 08:30:00", time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)},
		{"date only", "2025-03-10", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"empty", "", time.Time{}},
		{"garbage", "yesterday", time.Time{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.True(t, tt.want.Equal(ParseTimestamp(tt.in)))
		})
	}
}

func TestDayKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2025-03-10", DayKey("2025-03-10T23:59:00Z"))
	assert.Equal(t, "", DayKey("not a date"))
}

func TestToRow_StatusStrings(t *testing.T) {
	t.Parallel()

	trade := models.Trade{Status: models.StatusActive, CloseReason: models.CloseCompleted}
	row := ToRow(&trade)
	require.Equal(t, "Active", row.Status)
	require.Equal(t, "Completed", row.CloseReason)
}
