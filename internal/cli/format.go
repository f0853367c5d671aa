package cli

import (
	"fmt"
	"strings"
	"time"
)

// FormatMoney formats an amount with thousands separators and two decimals.
func FormatMoney(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")
	intPart := groupThousands(parts[0])

	result := "$" + intPart + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	result := s[n-3:]
	s = s[:n-3]
	for len(s) > 3 {
		result = s[len(s)-3:] + "," + result
		s = s[:len(s)-3]
	}
	return s + "," + result
}

// FormatPnL formats P&L with sign.
func FormatPnL(pnl float64) string {
	formatted := FormatMoney(pnl)
	if pnl > 0 {
		return "+" + formatted
	}
	return formatted
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatPrice formats a quote price. JPY crosses and gold quote with fewer
// decimals than the majors.
func FormatPrice(price float64, pair string) string {
	if strings.HasSuffix(pair, "/JPY") {
		return fmt.Sprintf("%.3f", price)
	}
	if pair == "XAU/USD" {
		return fmt.Sprintf("%.2f", price)
	}
	return fmt.Sprintf("%.5f", price)
}

// FormatLots formats a lot size.
func FormatLots(lots float64) string {
	return fmt.Sprintf("%.2f", lots)
}

// FormatRatio formats a risk:reward ratio.
func FormatRatio(ratio float64) string {
	return fmt.Sprintf("1:%.2f", ratio)
}

// FormatDate formats a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatDateTime formats a timestamp with minutes precision.
func FormatDateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

// TruncateString truncates a string to maxLen, appending an ellipsis.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// ShortID returns the tail of a trade id, which is the distinctive part of
// a ULID.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}
