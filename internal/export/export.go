// Package export reads and writes journal snapshots as JSON and CSV.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"fxjournal/internal/models"
	"fxjournal/internal/normalize"
)

// Payload is the JSON export shape: both trade lists under their in-memory
// field names.
type Payload struct {
	TradesOpen    []models.Trade `json:"tradesOpen"`
	TradesHistory []models.Trade `json:"tradesHistory"`
}

// WriteJSON writes the journal snapshot as indented JSON.
func WriteJSON(w io.Writer, open, history []models.Trade) error {
	payload := Payload{TradesOpen: open, TradesHistory: history}
	if payload.TradesOpen == nil {
		payload.TradesOpen = []models.Trade{}
	}
	if payload.TradesHistory == nil {
		payload.TradesHistory = []models.Trade{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// rawPayload defers field decoding so legacy exports with aliased or
// snake_case field names import cleanly.
type rawPayload struct {
	TradesOpen    []map[string]interface{} `json:"tradesOpen"`
	TradesHistory []map[string]interface{} `json:"tradesHistory"`
}

// ReadJSON parses an exported journal, resolving legacy field aliases and
// canonicalizing statuses through the normalizer.
func ReadJSON(r io.Reader) (open, history []models.Trade, err error) {
	var raw rawPayload
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("parsing journal export: %w", err)
	}

	for _, rec := range raw.TradesOpen {
		open = append(open, normalize.FromRow(normalize.FromRecord(rec)))
	}
	for _, rec := range raw.TradesHistory {
		history = append(history, normalize.FromRow(normalize.FromRecord(rec)))
	}
	return open, history, nil
}
