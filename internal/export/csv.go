package export

import (
	"io"

	"github.com/gocarina/gocsv"

	"fxjournal/internal/models"
	"fxjournal/internal/normalize"
)

// csvTrade is the flat CSV projection of a trade, using the canonical
// persisted column names.
type csvTrade struct {
	ID          string  `csv:"id"`
	Pair        string  `csv:"pair"`
	Type        string  `csv:"type"`
	EntryDate   string  `csv:"entry_date"`
	TradeTime   string  `csv:"trade_time"`
	EntryPrice  float64 `csv:"entry_price"`
	SL          float64 `csv:"sl"`
	TP          float64 `csv:"tp"`
	Risk        float64 `csv:"risk"`
	LotSize     float64 `csv:"lot_size"`
	ValuePerPip float64 `csv:"value_per_pip"`
	Ratio       float64 `csv:"ratio"`
	Status      string  `csv:"status"`
	CloseReason string  `csv:"close_reason"`
	ExitDate    string  `csv:"exit_date"`
	ExitPrice   float64 `csv:"exit_price"`
	Points      int     `csv:"points"`
	PnLCurrency float64 `csv:"pnl_currency"`
	PnLPercent  float64 `csv:"pnl_percent"`
	Session     string  `csv:"session"`
	Strategy    string  `csv:"strategy"`
	Note        string  `csv:"note"`
}

// WriteCSV writes open and history trades as one CSV table, open first.
func WriteCSV(w io.Writer, open, history []models.Trade) error {
	rows := make([]csvTrade, 0, len(open)+len(history))
	for i := range open {
		rows = append(rows, toCSV(&open[i]))
	}
	for i := range history {
		rows = append(rows, toCSV(&history[i]))
	}
	return gocsv.Marshal(&rows, w)
}

func toCSV(t *models.Trade) csvTrade {
	r := normalize.ToRow(t)
	return csvTrade{
		ID:          r.ID,
		Pair:        r.Pair,
		Type:        r.Type,
		EntryDate:   r.EntryDate,
		TradeTime:   r.TradeTime,
		EntryPrice:  r.EntryPrice,
		SL:          r.SL,
		TP:          r.TP,
		Risk:        r.Risk,
		LotSize:     r.LotSize,
		ValuePerPip: r.ValuePerPip,
		Ratio:       r.Ratio,
		Status:      r.Status,
		CloseReason: r.CloseReason,
		ExitDate:    r.ExitDate,
		ExitPrice:   r.ExitPrice,
		Points:      r.Points,
		PnLCurrency: r.PnLCurrency,
		PnLPercent:  r.PnLPercent,
		Session:     r.Session,
		Strategy:    r.Strategy,
		Note:        r.Note,
	}
}
