package models

import "time"

// Trade represents a journaled trade, open or closed.
type Trade struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	AccountID string `json:"accountId"`

	// Plan fields, set at admission.
	Pair        string    `json:"pair"`
	Direction   Direction `json:"direction"`
	EntryDate   time.Time `json:"entryDate"`
	TradeTime   string    `json:"tradeTime,omitempty"` // local HH:MM
	EntryPrice  float64   `json:"entryPrice"`
	StopLoss    float64   `json:"stopLoss"`
	TakeProfit  float64   `json:"takeProfit"`
	RiskPercent float64   `json:"riskPercent"`

	// Derived at admission.
	LotSize     float64 `json:"lotSize"`
	ValuePerPip float64 `json:"valuePerPip"`
	Ratio       float64 `json:"ratio"`

	// Execution fields; zero values while the trade is open.
	ExitDate    *time.Time  `json:"exitDate,omitempty"`
	ExitPrice   float64     `json:"exitPrice,omitempty"`
	Points      int         `json:"points"`
	PnLCurrency float64     `json:"pnlCurrency"`
	PnLPercent  float64     `json:"pnlPercent"`
	CloseReason CloseReason `json:"closeReason,omitempty"`
	ManualPnL   bool        `json:"manualPnl,omitempty"`

	Status TradeStatus `json:"status"`

	// Metadata.
	Session        string `json:"session,omitempty"`
	Strategy       string `json:"strategy,omitempty"`
	BeforeImageURL string `json:"beforeImage,omitempty"`
	AfterImageURL  string `json:"afterImage,omitempty"`
	Note           string `json:"note,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Pending marks a row whose last write has not been confirmed durable.
	// Never persisted.
	Pending bool `json:"-"`
}

// EntryDay returns the trade's entry day as YYYY-MM-DD.
func (t *Trade) EntryDay() string {
	return t.EntryDate.Format("2006-01-02")
}

// ExitDay returns the trade's exit day as YYYY-MM-DD, or "" when open.
func (t *Trade) ExitDay() string {
	if t.ExitDate == nil {
		return ""
	}
	return t.ExitDate.Format("2006-01-02")
}

// TradeDraft carries the plan fields of a trade before admission.
type TradeDraft struct {
	Pair        string
	Direction   Direction
	EntryDate   time.Time
	TradeTime   string
	EntryPrice  float64
	StopLoss    float64
	TakeProfit  float64
	RiskPercent float64

	Strategy       string
	BeforeImageURL string
	Note           string

	// PlannedCancel marks a scratch entry that will be cancelled rather
	// than run to target; it is admitted against the cancel-count cap
	// instead of the active-count cap.
	PlannedCancel bool
}

// TradeClose carries the execution fields supplied when closing a trade.
type TradeClose struct {
	Reason        CloseReason
	ExitDate      time.Time
	ExitPrice     float64
	AfterImageURL string

	// PnLOverride, when set, replaces the computed currency P&L.
	PnLOverride *float64
}

// TradePatch carries a partial edit of a trade. Nil fields are untouched.
type TradePatch struct {
	EntryDate   *time.Time
	TradeTime   *string
	EntryPrice  *float64
	StopLoss    *float64
	TakeProfit  *float64
	RiskPercent *float64
	ExitDate    *time.Time
	ExitPrice   *float64
	LotSize     *float64
	PnLCurrency *float64

	Strategy       *string
	Session        *string
	BeforeImageURL *string
	AfterImageURL  *string
	Note           *string
}
