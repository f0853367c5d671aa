package analytics

import (
	"sort"
	"time"

	"fxjournal/internal/calc"
	"fxjournal/internal/models"
)

// DayRisk is the risk budget consumed on one calendar day.
type DayRisk struct {
	Date     string  `json:"date"` // YYYY-MM-DD
	RiskUsed float64 `json:"riskUsed"`
	Cap      float64 `json:"cap"`
}

// DailyRiskUsed sums riskPercent per entry day over open and Active trades
// and returns the series sorted by date ascending, each point carrying the
// daily cap as a reference line.
func DailyRiskUsed(cap float64, open, history []models.Trade) []DayRisk {
	byDay := make(map[string]float64)
	add := func(trades []models.Trade) {
		for i := range trades {
			t := &trades[i]
			if t.Status == models.StatusCancelled {
				continue
			}
			byDay[t.EntryDay()] += t.RiskPercent
		}
	}
	add(open)
	add(history)

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	out := make([]DayRisk, 0, len(days))
	for _, day := range days {
		out = append(out, DayRisk{Date: day, RiskUsed: calc.Round2(byDay[day]), Cap: cap})
	}
	return out
}

// Bucket is one frequency/P&L slot of a distribution.
type Bucket struct {
	Label  string  `json:"label"`
	Trades int     `json:"trades"`
	PnL    float64 `json:"pnl"`
}

// ByPair returns trade frequency and closed P&L per pair, in first-seen
// order across open then history.
func ByPair(open, history []models.Trade) []Bucket {
	return distribute(open, history, func(t *models.Trade) string { return t.Pair })
}

// BySession returns trade frequency and closed P&L per session label.
func BySession(open, history []models.Trade) []Bucket {
	return distribute(open, history, func(t *models.Trade) string {
		if t.Session == "" {
			return "Unknown"
		}
		return t.Session
	})
}

// weekdays in fixed reporting order. Weekend entries are ignored; the FX
// journal only trades Monday through Friday.
var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// ByDayOfWeek returns trade frequency and closed P&L per weekday in fixed
// Monday..Friday order.
func ByDayOfWeek(open, history []models.Trade) []Bucket {
	counts := make(map[string]*Bucket, len(weekdays))
	out := make([]Bucket, len(weekdays))
	for i, day := range weekdays {
		out[i] = Bucket{Label: day}
		counts[day] = &out[i]
	}

	tally := func(trades []models.Trade, closed bool) {
		for i := range trades {
			t := &trades[i]
			day := t.EntryDate.Weekday()
			if day == time.Saturday || day == time.Sunday {
				continue
			}
			b := counts[day.String()]
			b.Trades++
			if closed {
				b.PnL = calc.Round2(b.PnL + t.PnLCurrency)
			}
		}
	}
	tally(open, false)
	tally(history, true)
	return out
}

func distribute(open, history []models.Trade, key func(*models.Trade) string) []Bucket {
	order := []string{}
	idx := make(map[string]int)
	slot := func(label string) {
		if _, ok := idx[label]; !ok {
			idx[label] = len(order)
			order = append(order, label)
		}
	}

	// First pass fixes the label order, second fills the buckets.
	for i := range open {
		slot(key(&open[i]))
	}
	for i := range history {
		slot(key(&history[i]))
	}

	out := make([]Bucket, len(order))
	for i, label := range order {
		out[i] = Bucket{Label: label}
	}
	for i := range open {
		out[idx[key(&open[i])]].Trades++
	}
	for i := range history {
		b := &out[idx[key(&history[i])]]
		b.Trades++
		b.PnL = calc.Round2(b.PnL + history[i].PnLCurrency)
	}
	return out
}
