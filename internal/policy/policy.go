// Package policy defines the risk limits that gate trade admission.
package policy

// Policy holds the per-trade and per-day risk caps. All percentages are
// whole percents (3 means 3%).
type Policy struct {
	PerTradeRiskCap float64 `mapstructure:"per_trade_risk_cap"`
	DailyRiskCap    float64 `mapstructure:"daily_risk_cap"`
	MaxTradesPerDay int     `mapstructure:"max_trades_per_day"`
	MaxActivePerDay int     `mapstructure:"max_active_per_day"`
	MaxCancelPerDay int     `mapstructure:"max_cancel_per_day"`

	// Risk selector bounds, in steps of RiskStep.
	MinRiskPercent float64 `mapstructure:"min_risk_percent"`
	MaxRiskPercent float64 `mapstructure:"max_risk_percent"`
	RiskStep       float64 `mapstructure:"risk_step"`
}

// Default returns the standard journal policy.
func Default() Policy {
	return Policy{
		PerTradeRiskCap: 3,
		DailyRiskCap:    5,
		MaxTradesPerDay: 3,
		MaxActivePerDay: 2,
		MaxCancelPerDay: 1,
		MinRiskPercent:  2.0,
		MaxRiskPercent:  3.0,
		RiskStep:        0.1,
	}
}

// RiskSteps returns the selectable risk percentages, low to high.
func (p Policy) RiskSteps() []float64 {
	if p.RiskStep <= 0 || p.MaxRiskPercent < p.MinRiskPercent {
		return nil
	}
	var steps []float64
	// Walk in integer tenths to dodge float accumulation.
	lo := int(p.MinRiskPercent*10 + 0.5)
	hi := int(p.MaxRiskPercent*10 + 0.5)
	step := int(p.RiskStep*10 + 0.5)
	if step == 0 {
		step = 1
	}
	for v := lo; v <= hi; v += step {
		steps = append(steps, float64(v)/10)
	}
	return steps
}
