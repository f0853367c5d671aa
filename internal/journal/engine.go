// Package journal implements the trade lifecycle: admission control against
// the risk policy, open → Active/Cancelled transitions, edits, and the
// in-memory session service that fronts the persistent store.
package journal

import (
	"net/url"
	"time"

	"fxjournal/internal/calc"
	apperrors "fxjournal/internal/errors"
	"fxjournal/internal/models"
	"fxjournal/internal/policy"
	"fxjournal/pkg/id"
)

// Engine applies the lifecycle rules. It is pure: it never touches the
// store, and all state it needs arrives as arguments.
type Engine struct {
	policy policy.Policy
	now    func() time.Time
}

// NewEngine creates a lifecycle engine with the given policy.
func NewEngine(p policy.Policy) *Engine {
	return &Engine{policy: p, now: time.Now}
}

// dayCounts tallies one entry day of an account's history.
type dayCounts struct {
	total     int
	active    int // open or Active
	cancelled int
	riskSum   float64 // open + Active only
}

func countDay(history []models.Trade, day string, exclude string) dayCounts {
	var c dayCounts
	for i := range history {
		t := &history[i]
		if t.ID == exclude || t.EntryDay() != day {
			continue
		}
		c.total++
		if t.Status == models.StatusCancelled {
			c.cancelled++
		} else {
			c.active++
			c.riskSum += t.RiskPercent
		}
	}
	return c
}

// Admit validates a draft against the account and the full trade history
// for its entry day, computes the derived sizing fields, and returns the
// admitted trade in status open.
//
// Checks run in a fixed order and short-circuit on the first violation, so
// the caller always sees a single, deterministic error.
func (e *Engine) Admit(draft models.TradeDraft, acct *models.Account, history []models.Trade) (*models.Trade, error) {
	// 1. Required fields.
	if draft.Pair == "" {
		return nil, apperrors.NewMissingFieldError("pair")
	}
	if draft.EntryPrice == 0 {
		return nil, apperrors.NewMissingFieldError("entryPrice")
	}
	if draft.StopLoss == 0 {
		return nil, apperrors.NewMissingFieldError("stopLoss")
	}
	if draft.TakeProfit == 0 {
		return nil, apperrors.NewMissingFieldError("takeProfit")
	}
	if draft.EntryDate.IsZero() {
		return nil, apperrors.NewMissingFieldError("entryDate")
	}
	if draft.RiskPercent == 0 {
		return nil, apperrors.NewMissingFieldError("riskPercent")
	}

	// Sizing guards: an unknown pair or a zero stop distance makes the lot
	// size undefined, so the trade cannot be admitted.
	if !calc.KnownPair(draft.Pair) {
		return nil, apperrors.NewValidationError("pair", draft.Pair, "unknown instrument")
	}
	stopPts := calc.StopPoints(draft.EntryPrice, draft.StopLoss, draft.Pair)
	if stopPts == 0 {
		return nil, apperrors.NewValidationError("stopLoss", draft.StopLoss, "stop distance rounds to zero points")
	}
	if draft.RiskPercent < 0 {
		return nil, apperrors.NewValidationError("riskPercent", draft.RiskPercent, "must be positive")
	}

	// 2. Per-trade risk cap.
	if draft.RiskPercent > e.policy.PerTradeRiskCap {
		return nil, apperrors.NewPolicyError(apperrors.RulePerTradeRisk,
			draft.RiskPercent, e.policy.PerTradeRiskCap,
			"risk per trade exceeds the cap")
	}

	day := draft.EntryDate.Format("2006-01-02")
	counts := countDay(history, day, "")

	// 3. Per-day trade count.
	if counts.total >= e.policy.MaxTradesPerDay {
		return nil, apperrors.NewPolicyError(apperrors.RuleTradeCount,
			float64(counts.total), float64(e.policy.MaxTradesPerDay),
			"daily trade count reached")
	}

	// 4. Daily risk cap. Checked before the slot caps: blowing the risk
	// budget is the violation the trader needs to hear about first.
	if counts.riskSum+draft.RiskPercent > e.policy.DailyRiskCap {
		return nil, apperrors.NewPolicyError(apperrors.RuleDailyRisk,
			counts.riskSum+draft.RiskPercent, e.policy.DailyRiskCap,
			"daily risk budget exceeded")
	}

	// 5/6. A planned cancel is admitted against the cancel cap, everything
	// else against the active cap.
	if draft.PlannedCancel {
		if counts.cancelled >= e.policy.MaxCancelPerDay {
			return nil, apperrors.NewPolicyError(apperrors.RuleCancelCount,
				float64(counts.cancelled), float64(e.policy.MaxCancelPerDay),
				"daily cancelled-trade count reached")
		}
	} else if counts.active >= e.policy.MaxActivePerDay {
		return nil, apperrors.NewPolicyError(apperrors.RuleActiveCount,
			float64(counts.active), float64(e.policy.MaxActivePerDay),
			"daily active-trade count reached")
	}

	// 7. Image URL.
	if err := validateImageURL("beforeImage", draft.BeforeImageURL); err != nil {
		return nil, err
	}

	now := e.now().UTC()
	vpp := calc.ValuePerPip(draft.Pair, acct.Tier)
	takePts := calc.TakePoints(draft.EntryPrice, draft.TakeProfit, draft.Pair)

	trade := &models.Trade{
		ID:             id.New(),
		UserID:         acct.UserID,
		AccountID:      acct.ID,
		Pair:           draft.Pair,
		Direction:      draft.Direction,
		EntryDate:      draft.EntryDate,
		TradeTime:      draft.TradeTime,
		EntryPrice:     draft.EntryPrice,
		StopLoss:       draft.StopLoss,
		TakeProfit:     draft.TakeProfit,
		RiskPercent:    draft.RiskPercent,
		LotSize:        calc.LotSize(acct.Capital, draft.RiskPercent, draft.Pair, acct.Tier, stopPts),
		ValuePerPip:    vpp,
		Ratio:          calc.Ratio(stopPts, takePts),
		Status:         models.StatusOpen,
		Session:        sessionFor(draft.TradeTime),
		Strategy:       draft.Strategy,
		BeforeImageURL: draft.BeforeImageURL,
		Note:           draft.Note,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if trade.Direction == "" {
		trade.Direction = models.DirectionLong
	}
	return trade, nil
}

// Close transitions an open trade to Active (Completed) or Cancelled and
// fills in the execution fields. The input trade is not mutated; the closed
// copy is returned.
func (e *Engine) Close(t *models.Trade, cl models.TradeClose, acct *models.Account) (*models.Trade, error) {
	if t.Status != models.StatusOpen {
		return nil, apperrors.NewStateError(t.ID, string(t.Status), "close", apperrors.ErrTradeNotOpen)
	}
	if err := validateImageURL("afterImage", cl.AfterImageURL); err != nil {
		return nil, err
	}

	exit := cl.ExitDate
	if exit.IsZero() {
		exit = e.now().UTC()
	}
	if exit.Before(t.EntryDate) {
		return nil, apperrors.NewValidationError("exitDate", exit, "exit must not precede entry")
	}

	closed := *t
	closed.ExitDate = &exit
	closed.AfterImageURL = cl.AfterImageURL
	closed.UpdatedAt = e.now().UTC()

	if cl.Reason == models.CloseCancelled {
		closed.Status = models.StatusCancelled
		closed.CloseReason = models.CloseCancelled
		closed.ExitPrice = t.EntryPrice
		closed.Points = 0
		closed.PnLCurrency = 0
		closed.PnLPercent = 0
		closed.ManualPnL = false
		return &closed, nil
	}

	if cl.ExitPrice == 0 {
		return nil, apperrors.NewMissingFieldError("exitPrice")
	}

	closed.Status = models.StatusActive
	closed.CloseReason = models.CloseCompleted
	closed.ExitPrice = cl.ExitPrice
	closed.Points = calc.PnLPoints(t.EntryPrice, cl.ExitPrice, t.Direction, t.Pair)
	if cl.PnLOverride != nil {
		closed.PnLCurrency = *cl.PnLOverride
		closed.ManualPnL = true
	} else {
		closed.PnLCurrency = calc.PnLCurrency(closed.Points, t.LotSize, t.ValuePerPip)
	}
	if acct.Capital > 0 {
		closed.PnLPercent = calc.Round2(closed.PnLCurrency / acct.Capital * 100)
	}
	return &closed, nil
}

// Edit applies a partial update. Open trades re-run admission caps when the
// risk or entry day changes; closed trades recompute execution figures from
// any changed price or size fields while never transitioning status and
// never clobbering a manual P&L override.
func (e *Engine) Edit(t *models.Trade, patch models.TradePatch, acct *models.Account, history []models.Trade) (*models.Trade, error) {
	edited := *t
	applyMeta(&edited, patch)
	if err := validateImageURL("beforeImage", edited.BeforeImageURL); err != nil {
		return nil, err
	}
	if err := validateImageURL("afterImage", edited.AfterImageURL); err != nil {
		return nil, err
	}

	if patch.EntryDate != nil {
		edited.EntryDate = *patch.EntryDate
	}
	if patch.TradeTime != nil {
		edited.TradeTime = *patch.TradeTime
		edited.Session = sessionFor(edited.TradeTime)
	}
	if patch.EntryPrice != nil {
		edited.EntryPrice = *patch.EntryPrice
	}
	if patch.StopLoss != nil {
		edited.StopLoss = *patch.StopLoss
	}
	if patch.TakeProfit != nil {
		edited.TakeProfit = *patch.TakeProfit
	}
	if patch.RiskPercent != nil {
		edited.RiskPercent = *patch.RiskPercent
	}
	if patch.LotSize != nil {
		edited.LotSize = *patch.LotSize
	}

	switch {
	case t.Status == models.StatusOpen:
		if err := e.editOpen(t, &edited, patch, acct, history); err != nil {
			return nil, err
		}
	default:
		if err := e.editClosed(t, &edited, patch, acct); err != nil {
			return nil, err
		}
	}

	edited.ID = t.ID
	edited.CreatedAt = t.CreatedAt
	edited.Status = t.Status
	if t.Status != models.StatusOpen {
		edited.CloseReason = t.CloseReason
	}
	edited.UpdatedAt = e.now().UTC()
	return &edited, nil
}

func (e *Engine) editOpen(orig, edited *models.Trade, patch models.TradePatch, acct *models.Account, history []models.Trade) error {
	if patch.RiskPercent != nil && edited.RiskPercent > e.policy.PerTradeRiskCap {
		return apperrors.NewPolicyError(apperrors.RulePerTradeRisk,
			edited.RiskPercent, e.policy.PerTradeRiskCap,
			"risk per trade exceeds the cap")
	}

	dayChanged := patch.EntryDate != nil && edited.EntryDay() != orig.EntryDay()
	if dayChanged || patch.RiskPercent != nil {
		day := edited.EntryDay()
		counts := countDay(history, day, orig.ID)
		if dayChanged && counts.total >= e.policy.MaxTradesPerDay {
			return apperrors.NewPolicyError(apperrors.RuleTradeCount,
				float64(counts.total), float64(e.policy.MaxTradesPerDay),
				"daily trade count reached")
		}
		if counts.riskSum+edited.RiskPercent > e.policy.DailyRiskCap {
			return apperrors.NewPolicyError(apperrors.RuleDailyRisk,
				counts.riskSum+edited.RiskPercent, e.policy.DailyRiskCap,
				"daily risk budget exceeded")
		}
		if dayChanged && counts.active >= e.policy.MaxActivePerDay {
			return apperrors.NewPolicyError(apperrors.RuleActiveCount,
				float64(counts.active), float64(e.policy.MaxActivePerDay),
				"daily active-trade count reached")
		}
	}

	// Re-derive sizing whenever a plan input moved.
	if patch.EntryPrice != nil || patch.StopLoss != nil || patch.TakeProfit != nil || patch.RiskPercent != nil {
		stopPts := calc.StopPoints(edited.EntryPrice, edited.StopLoss, edited.Pair)
		if stopPts == 0 {
			return apperrors.NewValidationError("stopLoss", edited.StopLoss, "stop distance rounds to zero points")
		}
		takePts := calc.TakePoints(edited.EntryPrice, edited.TakeProfit, edited.Pair)
		edited.LotSize = calc.LotSize(acct.Capital, edited.RiskPercent, edited.Pair, acct.Tier, stopPts)
		edited.ValuePerPip = calc.ValuePerPip(edited.Pair, acct.Tier)
		edited.Ratio = calc.Ratio(stopPts, takePts)
	}
	return nil
}

func (e *Engine) editClosed(orig, edited *models.Trade, patch models.TradePatch, acct *models.Account) error {
	if patch.ExitDate != nil {
		exit := *patch.ExitDate
		edited.ExitDate = &exit
	}
	// An entry date patch can break the ordering just as an exit date patch
	// can, so the check runs against whichever side moved.
	if edited.ExitDate != nil && edited.ExitDate.Before(edited.EntryDate) {
		if patch.ExitDate != nil {
			return apperrors.NewValidationError("exitDate", *edited.ExitDate, "exit must not precede entry")
		}
		return apperrors.NewValidationError("entryDate", edited.EntryDate, "entry must not pass the exit")
	}
	if patch.ExitPrice != nil {
		edited.ExitPrice = *patch.ExitPrice
	}

	if orig.Status == models.StatusCancelled {
		// Cancelled outcomes are pinned at zero.
		return nil
	}

	priceChanged := patch.EntryPrice != nil || patch.ExitPrice != nil ||
		patch.LotSize != nil
	if patch.PnLCurrency != nil {
		edited.PnLCurrency = *patch.PnLCurrency
		edited.ManualPnL = true
	}
	if priceChanged {
		edited.Points = calc.PnLPoints(edited.EntryPrice, edited.ExitPrice, edited.Direction, edited.Pair)
		if !edited.ManualPnL {
			edited.PnLCurrency = calc.PnLCurrency(edited.Points, edited.LotSize, edited.ValuePerPip)
		}
	}
	if (priceChanged || patch.PnLCurrency != nil) && acct.Capital > 0 {
		edited.PnLPercent = calc.Round2(edited.PnLCurrency / acct.Capital * 100)
	}
	return nil
}

func applyMeta(t *models.Trade, patch models.TradePatch) {
	if patch.Strategy != nil {
		t.Strategy = *patch.Strategy
	}
	if patch.Session != nil {
		t.Session = *patch.Session
	}
	if patch.BeforeImageURL != nil {
		t.BeforeImageURL = *patch.BeforeImageURL
	}
	if patch.AfterImageURL != nil {
		t.AfterImageURL = *patch.AfterImageURL
	}
	if patch.Note != nil {
		t.Note = *patch.Note
	}
}

func sessionFor(tradeTime string) string {
	if tradeTime == "" {
		return ""
	}
	return calc.SessionForTime(tradeTime)
}

func validateImageURL(field, raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return apperrors.NewInvalidURLError(field, raw)
	}
	return nil
}
