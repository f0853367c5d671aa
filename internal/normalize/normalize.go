// Package normalize maps between the in-memory Trade shape and the
// persisted row shape, canonicalizing status values and legacy field
// aliases along the way.
//
// The persisted status column is the sharpest edge in the data: rows in the
// wild carry "open", "Active", "closed" and "Cancelled" in assorted
// casings. The engine only ever sees the canonical set
// {open, Active, Cancelled}; "closed" is a transient load-time value that
// is re-classified from close_reason.
package normalize

import (
	"strings"
	"time"

	"fxjournal/internal/models"
)

// Row is the canonical persisted shape of a trade.
type Row struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	AccountID   string  `json:"account_id"`
	Pair        string  `json:"pair"`
	Type        string  `json:"type"` // direction: long|short
	EntryDate   string  `json:"entry_date"` // RFC3339
	TradeTime   string  `json:"trade_time,omitempty"`
	EntryPrice  float64 `json:"entry_price"`
	SL          float64 `json:"sl"`
	TP          float64 `json:"tp"`
	Risk        float64 `json:"risk"`
	LotSize     float64 `json:"lot_size"`
	ValuePerPip float64 `json:"value_per_pip"`
	Status      string  `json:"status"`
	CloseReason string  `json:"close_reason,omitempty"`
	Ratio       float64 `json:"ratio"`
	BeforeImage string  `json:"beforeimage,omitempty"`
	AfterImage  string  `json:"afterimage,omitempty"`
	ExitDate    string  `json:"exit_date,omitempty"` // RFC3339
	ExitPrice   float64 `json:"exit_price,omitempty"`
	Points      int     `json:"points"`
	PnLCurrency float64 `json:"pnl_currency"`
	PnLPercent  float64 `json:"pnl_percent"`
	PnLManual   bool    `json:"pnl_manual,omitempty"`
	Session     string  `json:"session,omitempty"`
	Strategy    string  `json:"strategy,omitempty"`
	Note        string  `json:"note,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// CanonicalStatus folds the status synonyms found in stored rows into the
// canonical set. A legacy "closed" is re-classified from the close reason;
// a closed row with no reason recorded is treated as Active.
func CanonicalStatus(raw string, closeReason string) models.TradeStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "open", "draft", "":
		return models.StatusOpen
	case "active":
		return models.StatusActive
	case "cancelled", "canceled":
		return models.StatusCancelled
	case "closed", "close":
		if CanonicalCloseReason(closeReason) == models.CloseCancelled {
			return models.StatusCancelled
		}
		return models.StatusActive
	default:
		return models.StatusOpen
	}
}

// CanonicalCloseReason folds close-reason synonyms into the canonical set.
// Empty input stays empty.
func CanonicalCloseReason(raw string) models.CloseReason {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "completed", "complete", "tp", "sl", "manual":
		return models.CloseCompleted
	case "cancelled", "canceled", "cancel":
		return models.CloseCancelled
	default:
		return ""
	}
}

// CanonicalDirection folds direction synonyms into long/short.
func CanonicalDirection(raw string) models.Direction {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "long", "buy":
		return models.DirectionLong
	case "short", "sell":
		return models.DirectionShort
	default:
		return ""
	}
}

// ToRow converts an in-memory trade into its persisted shape.
func ToRow(t *models.Trade) Row {
	r := Row{
		ID:          t.ID,
		UserID:      t.UserID,
		AccountID:   t.AccountID,
		Pair:        t.Pair,
		Type:        string(t.Direction),
		EntryDate:   FormatTimestamp(t.EntryDate),
		TradeTime:   t.TradeTime,
		EntryPrice:  t.EntryPrice,
		SL:          t.StopLoss,
		TP:          t.TakeProfit,
		Risk:        t.RiskPercent,
		LotSize:     t.LotSize,
		ValuePerPip: t.ValuePerPip,
		Status:      string(t.Status),
		CloseReason: string(t.CloseReason),
		Ratio:       t.Ratio,
		BeforeImage: t.BeforeImageURL,
		AfterImage:  t.AfterImageURL,
		ExitPrice:   t.ExitPrice,
		Points:      t.Points,
		PnLCurrency: t.PnLCurrency,
		PnLPercent:  t.PnLPercent,
		PnLManual:   t.ManualPnL,
		Session:     t.Session,
		Strategy:    t.Strategy,
		Note:        t.Note,
		CreatedAt:   FormatTimestamp(t.CreatedAt),
		UpdatedAt:   FormatTimestamp(t.UpdatedAt),
	}
	if t.ExitDate != nil {
		r.ExitDate = FormatTimestamp(*t.ExitDate)
	}
	return r
}

// FromRow converts a persisted row into the in-memory trade shape,
// canonicalizing status, close reason and direction.
func FromRow(r Row) models.Trade {
	t := models.Trade{
		ID:             r.ID,
		UserID:         r.UserID,
		AccountID:      r.AccountID,
		Pair:           r.Pair,
		Direction:      CanonicalDirection(r.Type),
		EntryDate:      ParseTimestamp(r.EntryDate),
		TradeTime:      r.TradeTime,
		EntryPrice:     r.EntryPrice,
		StopLoss:       r.SL,
		TakeProfit:     r.TP,
		RiskPercent:    r.Risk,
		LotSize:        r.LotSize,
		ValuePerPip:    r.ValuePerPip,
		Status:         CanonicalStatus(r.Status, r.CloseReason),
		CloseReason:    CanonicalCloseReason(r.CloseReason),
		Ratio:          r.Ratio,
		BeforeImageURL: r.BeforeImage,
		AfterImageURL:  r.AfterImage,
		ExitPrice:      r.ExitPrice,
		Points:         r.Points,
		PnLCurrency:    r.PnLCurrency,
		PnLPercent:     r.PnLPercent,
		ManualPnL:      r.PnLManual,
		Session:        r.Session,
		Strategy:       r.Strategy,
		Note:           r.Note,
		CreatedAt:      ParseTimestamp(r.CreatedAt),
		UpdatedAt:      ParseTimestamp(r.UpdatedAt),
	}
	if r.ExitDate != "" {
		exit := ParseTimestamp(r.ExitDate)
		if !exit.IsZero() {
			t.ExitDate = &exit
		}
	}
	// A closed row must carry a close reason; legacy rows may not.
	if t.Status.IsClosed() && t.CloseReason == "" {
		if t.Status == models.StatusCancelled {
			t.CloseReason = models.CloseCancelled
		} else {
			t.CloseReason = models.CloseCompleted
		}
	}
	return t
}

// timestamp layouts accepted on read, most common first.
var readLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a stored timestamp. Date-only values are promoted
// to midnight UTC. Returns the zero time when nothing matches.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range readLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// FormatTimestamp renders a timestamp in the stored RFC3339 form.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// DayKey extracts the YYYY-MM-DD grouping key from a stored timestamp.
func DayKey(s string) string {
	t := ParseTimestamp(s)
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
