package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "fxjournal/internal/errors"
	"fxjournal/internal/models"
	"fxjournal/internal/policy"
)

func testAccount() *models.Account {
	return &models.Account{
		ID:      "acct-1",
		UserID:  "user-1",
		Name:    "test",
		Plan:    models.PlanNormal,
		Tier:    models.TierStandard,
		Capital: 1000,
	}
}

func testDraft() models.TradeDraft {
	return models.TradeDraft{
		Pair:        "EUR/USD",
		Direction:   models.DirectionLong,
		EntryDate:   time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		EntryPrice:  1.10000,
		StopLoss:    1.09800,
		TakeProfit:  1.10400,
		RiskPercent: 2.0,
	}
}

func TestAdmit_DerivesSizing(t *testing.T) {
	t.Parallel()
	e := NewEngine(policy.Default())

	trade, err := e.Admit(testDraft(), testAccount(), nil)
	require.NoError(t, err)

	assert.NotEmpty(t, trade.ID)
	assert.Equal(t, models.StatusOpen, trade.Status)
	assert.InDelta(t, 0.01, trade.LotSize, 1e-9)
	assert.InDelta(t, 10.0, trade.ValuePerPip, 1e-9)
	assert.InDelta(t, 2.0, trade.Ratio, 1e-9)
	assert.Equal(t, "user-1", trade.UserID)
	assert.Equal(t, "acct-1", trade.AccountID)
}

func TestAdmit_MissingFieldsReportedInOrder(t *testing.T) {
	t.Parallel()
	e := NewEngine(policy.Default())

	// All fields missing: the pair is reported first.
	_, err := e.Admit(models.TradeDraft{}, testAccount(), nil)
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "pair", verr.Field)

	// With the pair present, the entry price is next.
	_, err = e.Admit(models.TradeDraft{Pair: "EUR/USD"}, testAccount(), nil)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "entryPrice", verr.Field)
}

func TestAdmit_UnknownPairRejected(t *testing.T) {
	t.Parallel()
	e := NewEngine(policy.Default())

	draft := testDraft()
	draft.Pair = "EUR/XYZ"
	_, err := e.Admit(draft, testAccount(), nil)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "pair", verr.Field)
}

func TestAdmit_ZeroStopDistanceRejected(t *testing.T) {
	t.Parallel()
	e := NewEngine(policy.Default())

	draft := testDraft()
	draft.StopLoss = draft.EntryPrice
	_, err := e.Admit(draft, testAccount(), nil)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "stopLoss", verr.Field)
}

func TestAdmit_PerTradeRiskCap(t *testing.T) {
	t.Parallel()
	e := NewEngine(policy.Default())

	draft := testDraft()
	draft.RiskPercent = 3.5
	_, err := e.Admit(draft, testAccount(), nil)

	var perr *apperrors.PolicyError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, apperrors.RulePerTradeRisk, perr.Rule)
}

func TestAdmit_DailyRiskCap(t *testing.T) {
	t.Parallel()
	e := NewEngine(policy.Default())
	acct := testAccount()

	// Two open trades on 2025-03-10 at risk 2.0 each; a third at 1.5 would
	// take the day to 5.5 against a cap of 5.
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	history := []models.Trade{
		{ID: "t1", EntryDate: day, RiskPercent: 2.0, Status: models.StatusOpen},
		{ID: "t2", EntryDate: day, RiskPercent: 2.0, Status: models.StatusOpen},
	}

	draft := testDraft()
	draft.RiskPercent = 1.5
	_, err := e.Admit(draft, acct, history)

	var perr *apperrors.PolicyError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, apperrors.RuleDailyRisk, perr.Rule)
	assert.InDelta(t, 5.5, perr.Current, 1e-9)
	assert.InDelta(t, 5.0, perr.Limit, 1e-9)
}

func TestAdmit_DailyTradeCount(t *testing.T) {
	t.Parallel()
	e := NewEngine(policy.Default())

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	history := []models.Trade{
		{ID: "t1", EntryDate: day, RiskPercent: 1.0, Status: models.StatusActive},
		{ID: "t2", EntryDate: day, RiskPercent: 1.0, Status: models.StatusActive},
		{ID: "t3", EntryDate: day, Status: models.StatusCancelled},
	}

	_, err := e.Admit(testDraft(), testAccount(), history)

	var perr *apperrors.PolicyError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, apperrors.RuleTradeCount, perr.Rule)
}

func TestAdmit_ActiveCap(t *testing.T) {
	t.Parallel()
	e := NewEngine(policy.Default())

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	history := []models.Trade{
		{ID: "t1", EntryDate: day, RiskPercent: 1.0, Status: models.StatusOpen},
		{ID: "t2", EntryDate: day, RiskPercent: 1.0, Status: models.StatusActive},
	}

	_, err := e.Admit(testDraft(), testAccount(), history)

	var perr *apperrors.PolicyError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, apperrors.RuleActiveCount, perr.Rule)
}

func TestAdmit_PlannedCancelUsesCancelCap(t *testing.T) {
	t.Parallel()
	e := NewEngine(policy.Default())

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	history := []models.Trade{
		{ID: "t1", EntryDate: day, Status: models.StatusCancelled},
	}

	draft := testDraft()
	draft.PlannedCancel = true
	_, err := e.Admit(draft, testAccount(), history)

	var perr *apperrors.PolicyError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, apperrors.RuleCancelCount, perr.Rule)
}

func TestAdmit_BadImageURL(t *testing.T) {
	t.Parallel()
	e := NewEngine(policy.Default())

	draft := testDraft()
	draft.BeforeImageURL = "not a url"
	_, err := e.Admit(draft, testAccount(), nil)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "beforeImage", verr.Field)

	draft.BeforeImageURL = "https://charts.example.com/shot.png"
	_, err = e.Admit(draft, testAccount(), nil)
	assert.NoError(t, err)
}

func TestAdmit_OtherDaysDoNotCount(t *testing.T) {
	t.Parallel()
	e := NewEngine(policy.Default())

	otherDay := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)
	history := []models.Trade{
		{ID: "t1", EntryDate: otherDay, RiskPercent: 2.0, Status: models.StatusActive},
		{ID: "t2", EntryDate: otherDay, RiskPercent: 2.0, Status: models.StatusActive},
		{ID: "t3", EntryDate: otherDay, RiskPercent: 1.0, Status: models.StatusActive},
	}

	_, err := e.Admit(testDraft(), testAccount(), history)
	assert.NoError(t, err)
}

func TestClose_Completed(t *testing.T) {
	t.Parallel()
	e := NewEngine(policy.Default())
	acct := testAccount()

	trade, err := e.Admit(testDraft(), acct, nil)
	require.NoError(t, err)

	closed, err := e.Close(trade, models.TradeClose{
		Reason:    models.CloseCompleted,
		ExitDate:  trade.EntryDate.AddDate(0, 0, 1),
		ExitPrice: 1.10400,
	}, acct)
	require.NoError(t, err)

	assert.Equal(t, models.StatusActive, closed.Status)
	assert.Equal(t, models.CloseCompleted, closed.CloseReason)
	assert.Equal(t, 400, closed.Points)
	assert.InDelta(t, 40.0, closed.PnLCurrency, 1e-9) // 400 pts x 0.01 lots x $10
	assert.InDelta(t, 4.0, closed.PnLPercent, 1e-9)
	assert.False(t, closed.ManualPnL)

	// The input trade is left untouched.
	assert.Equal(t, models.StatusOpen, trade.Status)
}

func TestClose_Cancelled(t *testing.T) {
	t.Parallel()
	e := NewEngine(policy.Default())
	acct := testAccount()

	trade, err := e.Admit(testDraft(), acct, nil)
	require.NoError(t, err)

	closed, err := e.Close(trade, models.TradeClose{Reason: models.CloseCancelled}, acct)
	require.NoError(t, err)

	assert.Equal(t, models.StatusCancelled, closed.Status)
	assert.Equal(t, models.CloseCancelled, closed.CloseReason)
	assert.Zero(t, closed.Points)
	assert.Zero(t, closed.PnLCurrency)
	assert.Zero(t, closed.PnLPercent)
	assert.Equal(t, trade.EntryPrice, closed.ExitPrice)
}

func TestClose_ManualPnLOverride(t *testing.T) {
	t.Parallel()
	e := NewEngine(policy.Default())
	acct := testAccount()

	trade, err := e.Admit(testDraft(), acct, nil)
	require.NoError(t, err)

	override := 12.34
	closed, err := e.Close(trade, models.TradeClose{
		Reason:      models.CloseCompleted,
		ExitPrice:   1.10400,
		PnLOverride: &override,
	}, acct)
	require.NoError(t, err)

	assert.InDelta(t, 12.34, closed.PnLCurrency, 1e-9)
	assert.True(t, closed.ManualPnL)
	// Points still derive from prices.
	assert.Equal(t, 400, closed.Points)
}

func TestClose_RejectsNotOpen(t *testing.T) {
	t.Parallel()
	e := NewEngine(policy.Default())
	acct := testAccount()

	trade, err := e.Admit(testDraft(), acct, nil)
	require.NoError(t, err)
	closed, err := e.Close(trade, models.TradeClose{Reason: models.CloseCancelled}, acct)
	require.NoError(t, err)

	_, err = e.Close(closed, models.TradeClose{Reason: models.CloseCompleted, ExitPrice: 1.2}, acct)
	assert.ErrorIs(t, err, apperrors.ErrTradeNotOpen)
}

func TestClose_RejectsExitBeforeEntry(t *testing.T) {
	t.Parallel()
	e := NewEngine(policy.Default())
	acct := testAccount()

	trade, err := e.Admit(testDraft(), acct, nil)
	require.NoError(t, err)

	_, err = e.Close(trade, models.TradeClose{
		Reason:    models.CloseCompleted,
		ExitDate:  trade.EntryDate.AddDate(0, 0, -1),
		ExitPrice: 1.10400,
	}, acct)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "exitDate", verr.Field)
}

func TestClose_RequiresExitPriceWhenCompleted(t *testing.T) {
	t.Parallel()
	e := NewEngine(policy.Default())
	acct := testAccount()

	trade, err := e.Admit(testDraft(), acct, nil)
	require.NoError(t, err)

	_, err = e.Close(trade, models.TradeClose{Reason: models.CloseCompleted}, acct)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "exitPrice", verr.Field)
}

func TestEdit_OpenRederivesSizing(t *testing.T) {
	t.Parallel()
	e := NewEngine(policy.Default())
	acct := testAccount()

	trade, err := e.Admit(testDraft(), acct, nil)
	require.NoError(t, err)

	newStop := 1.09900 // 100 point stop
	edited, err := e.Edit(trade, models.TradePatch{StopLoss: &newStop}, acct, []models.Trade{*trade})
	require.NoError(t, err)

	assert.InDelta(t, 0.02, edited.LotSize, 1e-9)
	assert.InDelta(t, 4.0, edited.Ratio, 1e-9)
	assert.Equal(t, models.StatusOpen, edited.Status)
}

func TestEdit_RiskRecheckExcludesSelf(t *testing.T) {
	t.Parallel()
	e := NewEngine(policy.Default())
	acct := testAccount()

	trade, err := e.Admit(testDraft(), acct, nil)
	require.NoError(t, err)

	// Alone on its day the trade can move to the per-trade cap.
	newRisk := 3.0
	_, err = e.Edit(trade, models.TradePatch{RiskPercent: &newRisk}, acct, []models.Trade{*trade})
	assert.NoError(t, err)

	// With a sibling at 2.5 the day would reach 5.5 and the edit is blocked.
	sibling := *trade
	sibling.ID = "sibling"
	sibling.RiskPercent = 2.5
	_, err = e.Edit(trade, models.TradePatch{RiskPercent: &newRisk}, acct, []models.Trade{*trade, sibling})

	var perr *apperrors.PolicyError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, apperrors.RuleDailyRisk, perr.Rule)
}

func TestEdit_ClosedRecomputesPnL(t *testing.T) {
	t.Parallel()
	e := NewEngine(policy.Default())
	acct := testAccount()

	trade, err := e.Admit(testDraft(), acct, nil)
	require.NoError(t, err)
	closed, err := e.Close(trade, models.TradeClose{
		Reason:    models.CloseCompleted,
		ExitPrice: 1.10400,
	}, acct)
	require.NoError(t, err)

	newExit := 1.10200
	edited, err := e.Edit(closed, models.TradePatch{ExitPrice: &newExit}, acct, nil)
	require.NoError(t, err)

	assert.Equal(t, 200, edited.Points)
	assert.InDelta(t, 20.0, edited.PnLCurrency, 1e-9)
	assert.Equal(t, models.StatusActive, edited.Status)
}

func TestEdit_ClosedRejectsEntryAfterExit(t *testing.T) {
	t.Parallel()
	e := NewEngine(policy.Default())
	acct := testAccount()

	trade, err := e.Admit(testDraft(), acct, nil)
	require.NoError(t, err)
	closed, err := e.Close(trade, models.TradeClose{
		Reason:    models.CloseCompleted,
		ExitDate:  trade.EntryDate.AddDate(0, 0, 1),
		ExitPrice: 1.10400,
	}, acct)
	require.NoError(t, err)

	// Moving the entry a week past the exit must fail the same way moving
	// the exit before the entry does.
	lateEntry := closed.ExitDate.AddDate(0, 0, 7)
	_, err = e.Edit(closed, models.TradePatch{EntryDate: &lateEntry}, acct, nil)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "entryDate", verr.Field)

	// A joint move that keeps the ordering is fine.
	newEntry := closed.EntryDate.AddDate(0, 0, 2)
	newExit := closed.EntryDate.AddDate(0, 0, 3)
	edited, err := e.Edit(closed, models.TradePatch{EntryDate: &newEntry, ExitDate: &newExit}, acct, nil)
	require.NoError(t, err)
	assert.True(t, edited.ExitDate.Equal(newExit))
}

func TestEdit_ManualPnLSurvivesPriceEdit(t *testing.T) {
	t.Parallel()
	e := NewEngine(policy.Default())
	acct := testAccount()

	trade, err := e.Admit(testDraft(), acct, nil)
	require.NoError(t, err)
	override := 99.0
	closed, err := e.Close(trade, models.TradeClose{
		Reason:      models.CloseCompleted,
		ExitPrice:   1.10400,
		PnLOverride: &override,
	}, acct)
	require.NoError(t, err)

	newExit := 1.10200
	edited, err := e.Edit(closed, models.TradePatch{ExitPrice: &newExit}, acct, nil)
	require.NoError(t, err)

	// Points track the prices, the manual P&L does not.
	assert.Equal(t, 200, edited.Points)
	assert.InDelta(t, 99.0, edited.PnLCurrency, 1e-9)
	assert.True(t, edited.ManualPnL)
}

func TestEdit_CancelledStaysZero(t *testing.T) {
	t.Parallel()
	e := NewEngine(policy.Default())
	acct := testAccount()

	trade, err := e.Admit(testDraft(), acct, nil)
	require.NoError(t, err)
	closed, err := e.Close(trade, models.TradeClose{Reason: models.CloseCancelled}, acct)
	require.NoError(t, err)

	newExit := 1.10400
	edited, err := e.Edit(closed, models.TradePatch{ExitPrice: &newExit}, acct, nil)
	require.NoError(t, err)

	assert.Zero(t, edited.Points)
	assert.Zero(t, edited.PnLCurrency)
	assert.Equal(t, models.StatusCancelled, edited.Status)
}

func TestEdit_MetadataOnly(t *testing.T) {
	t.Parallel()
	e := NewEngine(policy.Default())
	acct := testAccount()

	trade, err := e.Admit(testDraft(), acct, nil)
	require.NoError(t, err)

	strategy := "breakout"
	note := "NFP day"
	edited, err := e.Edit(trade, models.TradePatch{Strategy: &strategy, Note: &note}, acct, nil)
	require.NoError(t, err)

	assert.Equal(t, "breakout", edited.Strategy)
	assert.Equal(t, "NFP day", edited.Note)
	assert.Equal(t, trade.LotSize, edited.LotSize)
	assert.Equal(t, trade.ID, edited.ID)
}

func TestSessionTagging(t *testing.T) {
	t.Parallel()
	e := NewEngine(policy.Default())

	draft := testDraft()
	draft.TradeTime = "08:30"
	trade, err := e.Admit(draft, testAccount(), nil)
	require.NoError(t, err)
	assert.Equal(t, "Tokyo, London", trade.Session)

	draft.TradeTime = ""
	trade, err = e.Admit(draft, testAccount(), nil)
	require.NoError(t, err)
	assert.Empty(t, trade.Session)
}
