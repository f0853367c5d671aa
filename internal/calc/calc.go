// Package calc is the numeric kernel of the journal: position sizing, P&L,
// ratios and outcome classification.
//
// Every function is pure and fails softly, returning 0 (or an empty value)
// on missing or unrecognised input instead of an error. The results feed
// live previews, so a half-typed trade must never blow up a calculation.
package calc

import (
	"math"
	"strings"

	"fxjournal/internal/models"
)

// baseValuePerPip is the currency value of one point for one standard lot.
var baseValuePerPip = map[string]float64{
	"EUR/USD": 10.0,
	"GBP/USD": 10.0,
	"XAU/USD": 10.0,
	"AUD/USD": 10.0,
	"USD/JPY": 6.8,
	"USD/CAD": 7.3,
	"USD/CHF": 12.4,
}

// tierDivisor scales a standard-lot pip value down to the account tier.
var tierDivisor = map[models.AccountTier]float64{
	models.TierStandard: 1,
	models.TierMini:     10,
	models.TierMicro:    100,
}

// Pairs returns the supported instrument set in stable order.
func Pairs() []string {
	return []string{"EUR/USD", "GBP/USD", "XAU/USD", "AUD/USD", "USD/JPY", "USD/CAD", "USD/CHF"}
}

// KnownPair reports whether the pair is in the supported instrument set.
func KnownPair(pair string) bool {
	_, ok := baseValuePerPip[pair]
	return ok
}

// Multiplier converts a price distance into integer points for the pair.
// Gold trades in hundredths, JPY quotes in thousandths, everything else in
// standard fractional pips.
func Multiplier(pair string) float64 {
	switch {
	case pair == "XAU/USD":
		return 100
	case strings.HasSuffix(pair, "/JPY"):
		return 1000
	default:
		return 100000
	}
}

// BaseValuePerPip returns the standard-lot pip value for the pair, or 0 for
// an unknown pair.
func BaseValuePerPip(pair string) float64 {
	return baseValuePerPip[pair]
}

// ValuePerPip returns the pip value adjusted to the account tier.
func ValuePerPip(pair string, tier models.AccountTier) float64 {
	div, ok := tierDivisor[tier]
	if !ok || div == 0 {
		return 0
	}
	return baseValuePerPip[pair] / div
}

// StopPoints returns the integer point distance between entry and stop.
// Returns 0 when either price is missing or the pair is unknown.
func StopPoints(entry, stop float64, pair string) int {
	return pointDistance(entry, stop, pair)
}

// TakePoints returns the integer point distance between entry and target.
// Returns 0 when either price is missing or the pair is unknown.
func TakePoints(entry, tp float64, pair string) int {
	return pointDistance(entry, tp, pair)
}

func pointDistance(a, b float64, pair string) int {
	if a == 0 || b == 0 || !KnownPair(pair) {
		return 0
	}
	return int(math.Round(math.Abs(a-b) * Multiplier(pair)))
}

// LotSize computes the position size that puts riskPct of capital at risk
// over stopPts points. Returns 0 when any factor is 0.
func LotSize(capital, riskPct float64, pair string, tier models.AccountTier, stopPts int) float64 {
	vpp := ValuePerPip(pair, tier)
	if capital <= 0 || riskPct <= 0 || vpp == 0 || stopPts == 0 {
		return 0
	}
	return (riskPct / 100 * capital) / (vpp * float64(stopPts))
}

// Ratio returns the reward-to-risk ratio TP points / SL points, or 0 when
// the stop distance is 0.
func Ratio(stopPts, takePts int) float64 {
	if stopPts == 0 {
		return 0
	}
	return float64(takePts) / float64(stopPts)
}

// PnLPoints returns the signed point move from entry to exit for the given
// direction. Returns 0 when a price is missing or the pair is unknown.
func PnLPoints(entry, exit float64, dir models.Direction, pair string) int {
	if entry == 0 || exit == 0 || !KnownPair(pair) {
		return 0
	}
	pts := int(math.Round((exit - entry) * Multiplier(pair)))
	if dir == models.DirectionShort {
		pts = -pts
	}
	return pts
}

// PnLCurrency converts a point move into account currency.
func PnLCurrency(points int, lotSize, valuePerPip float64) float64 {
	return float64(points) * lotSize * valuePerPip
}

// RiskAmount returns the currency amount wagered by riskPct of capital.
func RiskAmount(riskPct, capital float64) float64 {
	return riskPct / 100 * capital
}

// Outcome is the win/loss/breakeven partition of a closed trade.
type Outcome string

const (
	OutcomeWin       Outcome = "win"
	OutcomeLoss      Outcome = "loss"
	OutcomeBreakeven Outcome = "breakeven"
)

// Classify partitions a realized P&L against the pre-declared risk amount:
// negative is a loss, anything up to the risk amount is breakeven, and only
// a return exceeding the risk amount counts as a win.
func Classify(pnl, riskPct, capital float64) Outcome {
	switch {
	case pnl < 0:
		return OutcomeLoss
	case pnl <= RiskAmount(riskPct, capital):
		return OutcomeBreakeven
	default:
		return OutcomeWin
	}
}

// Round2 rounds to 2 decimal places, the journal's money precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
