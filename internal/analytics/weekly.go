package analytics

import (
	"fmt"

	"fxjournal/internal/calc"
	"fxjournal/internal/models"
)

// WeekReview is the rollup of one ISO week.
type WeekReview struct {
	Week             int     `json:"week"`
	StartEquity      float64 `json:"startEquity"`
	EndEquity        float64 `json:"endEquity"`
	TotalPnL         float64 `json:"totalPnL"`
	WeeklyPnLPercent float64 `json:"weeklyPnLPercent"`
	Trades           int     `json:"trades"`
	Wins             int     `json:"wins"`
	Losses           int     `json:"losses"`
	Breakevens       int     `json:"breakevens"`

	MostTradedPair       string `json:"mostTradedPair"`
	MostProfitablePair   string `json:"mostProfitablePair"`
	MostLosingPair       string `json:"mostLosingPair"`
	HighestBreakevenPair string `json:"highestBreakevenPair"`
}

// WeeklyReview rolls closed trades up into the 52 ISO weeks of the review
// year (the year of the earliest exit). Each week starts at the prior
// week's end equity; week 1 starts at the account capital. Weeks without
// trades carry their start equity forward.
func WeeklyReview(capital float64, history []models.Trade) []WeekReview {
	closed := sortedByExit(history)

	year := 0
	byWeek := make(map[int][]*models.Trade)
	for i := range closed {
		t := &closed[i]
		if t.ExitDate == nil {
			continue
		}
		y, w := calc.ISOYearWeek(*t.ExitDate)
		if year == 0 {
			year = y
		}
		if y != year {
			continue
		}
		byWeek[w] = append(byWeek[w], t)
	}

	reviews := make([]WeekReview, 0, 52)
	equity := capital
	for week := 1; week <= 52; week++ {
		rv := WeekReview{
			Week:                 week,
			StartEquity:          calc.Round2(equity),
			MostTradedPair:       None,
			MostProfitablePair:   None,
			MostLosingPair:       None,
			HighestBreakevenPair: None,
		}

		trades := byWeek[week]
		pairs := newPairAgg()
		for _, t := range trades {
			rv.Trades++
			rv.TotalPnL += t.PnLCurrency

			f := pairs.get(t.Pair)
			f.count++
			f.net += t.PnLCurrency
			switch calc.Classify(t.PnLCurrency, t.RiskPercent, capital) {
			case calc.OutcomeWin:
				rv.Wins++
				f.profit += t.PnLCurrency
			case calc.OutcomeLoss:
				rv.Losses++
				f.loss += t.PnLCurrency
			case calc.OutcomeBreakeven:
				rv.Breakevens++
				f.breakevens++
			}
		}

		rv.TotalPnL = calc.Round2(rv.TotalPnL)
		if capital > 0 {
			rv.WeeklyPnLPercent = calc.Round2(rv.TotalPnL / capital * 100)
		}
		equity += rv.TotalPnL
		rv.EndEquity = calc.Round2(equity)

		if len(trades) > 0 {
			rv.MostTradedPair = pairs.best(
				func(f *pairFigures) float64 { return float64(f.count) },
				func(v float64) bool { return v > 0 })
			rv.MostProfitablePair = pairs.best(
				func(f *pairFigures) float64 { return f.profit },
				func(v float64) bool { return v > 0 })
			rv.MostLosingPair = pairs.best(
				func(f *pairFigures) float64 { return -f.loss },
				func(v float64) bool { return v > 0 })
			rv.HighestBreakevenPair = pairs.best(
				func(f *pairFigures) float64 { return float64(f.breakevens) },
				func(v float64) bool { return v > 0 })
		}

		reviews = append(reviews, rv)
	}
	return reviews
}

func weekLabel(week int) string {
	return fmt.Sprintf("Week %d", week)
}
