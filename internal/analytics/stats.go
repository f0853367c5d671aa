// Package analytics derives the journal's read models: dashboard stats,
// equity curves, weekly reviews, risk usage and distributions. Everything
// here is a deterministic function of (capital, history, open); nothing
// blocks and nothing writes.
package analytics

import (
	"sort"

	"fxjournal/internal/calc"
	"fxjournal/internal/models"
)

// None is the placeholder rendered for an empty ranking category.
const None = "—"

// Stats is the dashboard read model.
type Stats struct {
	TotalTrades      int     `json:"totalTrades"`
	TotalPnLCurrency float64 `json:"totalPnLCurrency"`
	TotalPnLPercent  float64 `json:"totalPnLPercent"`
	CurrentEquity    float64 `json:"currentEquity"`

	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Breakevens    int     `json:"breakevens"`
	WinRate       float64 `json:"winRate"`
	LossRate      float64 `json:"lossRate"`
	BreakevenRate float64 `json:"breakevenRate"`

	MostProfitablePair   string `json:"mostProfitablePair"`
	MostLosingPair       string `json:"mostLosingPair"`
	MostTradedPair       string `json:"mostTradedPair"`
	HighestBreakevenPair string `json:"highestBreakevenPair"`
}

// pairAgg accumulates per-pair figures preserving first-seen order, so
// ranking ties always resolve the same way.
type pairAgg struct {
	order []string
	data  map[string]*pairFigures
}

type pairFigures struct {
	count      int
	net        float64
	profit     float64 // returns above the risk amount
	loss       float64 // negative returns
	breakevens int     // trades returning within [0, risk]
}

func newPairAgg() *pairAgg {
	return &pairAgg{data: make(map[string]*pairFigures)}
}

func (a *pairAgg) get(pair string) *pairFigures {
	f, ok := a.data[pair]
	if !ok {
		f = &pairFigures{}
		a.data[pair] = f
		a.order = append(a.order, pair)
	}
	return f
}

// best returns the first pair (in insertion order) maximizing pick, or None
// when no pair satisfies ok.
func (a *pairAgg) best(pick func(*pairFigures) float64, ok func(float64) bool) string {
	bestPair := None
	var bestVal float64
	found := false
	for _, pair := range a.order {
		v := pick(a.data[pair])
		if !ok(v) {
			continue
		}
		if !found || v > bestVal {
			bestPair, bestVal, found = pair, v, true
		}
	}
	return bestPair
}

// Dashboard computes the dashboard stats. Win and loss rates are taken
// against the closed-trade count; the breakeven rate against all trades.
func Dashboard(capital float64, history, open []models.Trade) Stats {
	st := Stats{TotalTrades: len(history) + len(open)}

	pairs := newPairAgg()
	for i := range history {
		t := &history[i]
		st.TotalPnLCurrency += t.PnLCurrency

		f := pairs.get(t.Pair)
		f.net += t.PnLCurrency
		switch calc.Classify(t.PnLCurrency, t.RiskPercent, capital) {
		case calc.OutcomeWin:
			st.Wins++
			f.profit += t.PnLCurrency
		case calc.OutcomeLoss:
			st.Losses++
			f.loss += t.PnLCurrency
		case calc.OutcomeBreakeven:
			st.Breakevens++
			f.breakevens++
		}
	}
	for i := range open {
		pairs.get(open[i].Pair).count++
	}
	for i := range history {
		pairs.get(history[i].Pair).count++
	}

	st.CurrentEquity = calc.Round2(capital + st.TotalPnLCurrency)
	if capital > 0 {
		st.TotalPnLPercent = calc.Round2(st.TotalPnLCurrency / capital * 100)
	}
	if closed := len(history); closed > 0 {
		st.WinRate = calc.Round2(float64(st.Wins) / float64(closed) * 100)
		st.LossRate = calc.Round2(float64(st.Losses) / float64(closed) * 100)
	}
	if st.TotalTrades > 0 {
		st.BreakevenRate = calc.Round2(float64(st.Breakevens) / float64(st.TotalTrades) * 100)
	}

	st.MostProfitablePair = pairs.best(
		func(f *pairFigures) float64 { return f.profit },
		func(v float64) bool { return v > 0 })
	st.MostLosingPair = pairs.best(
		func(f *pairFigures) float64 { return -f.loss },
		func(v float64) bool { return v > 0 })
	st.MostTradedPair = pairs.best(
		func(f *pairFigures) float64 { return float64(f.count) },
		func(v float64) bool { return v > 0 })
	// Breakeven trades can net to exactly zero (a cancelled trade always
	// does), so the ranking counts them instead of summing their P&L.
	st.HighestBreakevenPair = pairs.best(
		func(f *pairFigures) float64 { return float64(f.breakevens) },
		func(v float64) bool { return v > 0 })
	return st
}

// EquityPoint is one sample of an equity curve.
type EquityPoint struct {
	Label  string  `json:"label"`
	Equity float64 `json:"equity"`
}

// EquityCurve returns the weekly cumulative equity curve, seeded with a
// "Start" point at the account capital. History is bucketed by ISO week of
// the exit date.
func EquityCurve(capital float64, history []models.Trade) []EquityPoint {
	closed := sortedByExit(history)

	points := []EquityPoint{{Label: "Start", Equity: calc.Round2(capital)}}
	equity := capital

	type weekKey struct{ year, week int }
	var curKey weekKey
	haveWeek := false

	flush := func(key weekKey) {
		points = append(points, EquityPoint{
			Label:  weekLabel(key.week),
			Equity: calc.Round2(equity),
		})
	}

	for i := range closed {
		t := &closed[i]
		if t.ExitDate == nil {
			continue
		}
		year, week := calc.ISOYearWeek(*t.ExitDate)
		key := weekKey{year, week}
		if haveWeek && key != curKey {
			flush(curKey)
		}
		curKey, haveWeek = key, true
		equity += t.PnLCurrency
	}
	if haveWeek {
		flush(curKey)
	}
	return points
}

// PerTradeEquity returns the equity after every closed trade in exit order.
func PerTradeEquity(capital float64, history []models.Trade) []EquityPoint {
	closed := sortedByExit(history)
	points := []EquityPoint{{Label: "Start", Equity: calc.Round2(capital)}}
	equity := capital
	for i := range closed {
		equity += closed[i].PnLCurrency
		points = append(points, EquityPoint{
			Label:  closed[i].Pair,
			Equity: calc.Round2(equity),
		})
	}
	return points
}

func sortedByExit(history []models.Trade) []models.Trade {
	closed := append([]models.Trade(nil), history...)
	sort.SliceStable(closed, func(i, j int) bool {
		a, b := closed[i].ExitDate, closed[j].ExitDate
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.Before(*b)
	})
	return closed
}
