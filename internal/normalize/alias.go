package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
)

// aliases maps every accepted spelling of a field, lowercased, to the
// canonical row field. Imported journals arrive with a mix of camelCase
// app-side names and snake_case row names, plus a few historical typos.
var aliases = map[string]string{
	"id":            "id",
	"userid":        "user_id",
	"user_id":       "user_id",
	"accountid":     "account_id",
	"account_id":    "account_id",
	"pair":          "pair",
	"symbol":        "pair",
	"type":          "type",
	"direction":     "type",
	"entrydate":     "entry_date",
	"entry_date":    "entry_date",
	"tradetime":     "trade_time",
	"trade_time":    "trade_time",
	"entryprice":    "entry_price",
	"entry_price":   "entry_price",
	"sl":            "sl",
	"stoploss":      "sl",
	"stop_loss":     "sl",
	"tp":            "tp",
	"takeprofit":    "tp",
	"take_profit":   "tp",
	"risk":          "risk",
	"riskpercent":   "risk",
	"risk_percent":  "risk",
	"lotsize":       "lot_size",
	"lot_size":      "lot_size",
	"valueperpip":   "value_per_pip",
	"value_per_pip": "value_per_pip",
	"status":        "status",
	"closereason":   "close_reason",
	"close_reason":  "close_reason",
	"ratio":         "ratio",
	"beforeimage":   "beforeimage",
	"before_image":  "beforeimage",
	"afterimage":    "afterimage",
	"after_image":   "afterimage",
	"exitdate":      "exit_date",
	"exit_date":     "exit_date",
	"exitprice":     "exit_price",
	"exit_price":    "exit_price",
	"points":        "points",
	"pnlcurrency":   "pnl_currency",
	"pnl_currency":  "pnl_currency",
	"pnlpercent":    "pnl_percent",
	"pnl_percent":   "pnl_percent",
	"pnlmanual":     "pnl_manual",
	"pnl_manual":    "pnl_manual",
	"manualpnl":     "pnl_manual",
	"session":       "session",
	"strategy":      "strategy",
	"note":          "note",
	"notes":         "note",
	"createdat":     "created_at",
	"created_at":    "created_at",
	"updatedat":     "updated_at",
	"updated_at":    "updated_at",
}

// FromRecord builds a canonical Row from a loosely-shaped record, resolving
// legacy field aliases. Unknown keys are dropped; on duplicate aliases the
// canonical spelling wins.
func FromRecord(rec map[string]interface{}) Row {
	canon := make(map[string]interface{}, len(rec))
	for k, v := range rec {
		key, ok := aliases[strings.ToLower(k)]
		if !ok {
			continue
		}
		if _, exists := canon[key]; exists && strings.ToLower(k) != key {
			continue
		}
		canon[key] = v
	}

	return Row{
		ID:          asString(canon["id"]),
		UserID:      asString(canon["user_id"]),
		AccountID:   asString(canon["account_id"]),
		Pair:        asString(canon["pair"]),
		Type:        asString(canon["type"]),
		EntryDate:   asString(canon["entry_date"]),
		TradeTime:   asString(canon["trade_time"]),
		EntryPrice:  asFloat(canon["entry_price"]),
		SL:          asFloat(canon["sl"]),
		TP:          asFloat(canon["tp"]),
		Risk:        asFloat(canon["risk"]),
		LotSize:     asFloat(canon["lot_size"]),
		ValuePerPip: asFloat(canon["value_per_pip"]),
		Status:      asString(canon["status"]),
		CloseReason: asString(canon["close_reason"]),
		Ratio:       asFloat(canon["ratio"]),
		BeforeImage: asString(canon["beforeimage"]),
		AfterImage:  asString(canon["afterimage"]),
		ExitDate:    asString(canon["exit_date"]),
		ExitPrice:   asFloat(canon["exit_price"]),
		Points:      int(asFloat(canon["points"])),
		PnLCurrency: asFloat(canon["pnl_currency"]),
		PnLPercent:  asFloat(canon["pnl_percent"]),
		PnLManual:   asBool(canon["pnl_manual"]),
		Session:     asString(canon["session"]),
		Strategy:    asString(canon["strategy"]),
		Note:        asString(canon["note"]),
		CreatedAt:   asString(canon["created_at"]),
		UpdatedAt:   asString(canon["updated_at"]),
	}
}

func asString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	default:
		return ""
	}
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f
	default:
		return 0
	}
}

func asBool(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(b, "true") || b == "1"
	case float64:
		return b != 0
	default:
		return false
	}
}
