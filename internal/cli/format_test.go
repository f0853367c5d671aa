package cli

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	t.Parallel()

	tests := []struct {
		amount float64
		want   string
	}{
		{0, "$0.00"},
		{999.5, "$999.50"},
		{1000, "$1,000.00"},
		{1234567.89, "$1,234,567.89"},
		{-2500, "-$2,500.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMoney(tt.amount), "amount %v", tt.amount)
	}
}

func TestFormatPnL_Sign(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "+$50.00", FormatPnL(50))
	assert.Equal(t, "-$20.00", FormatPnL(-20))
	assert.Equal(t, "$0.00", FormatPnL(0))
}

func TestFormatPercent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "+2.50%", FormatPercent(2.5))
	assert.Equal(t, "-1.00%", FormatPercent(-1))
	assert.Equal(t, "0.00%", FormatPercent(0))
}

func TestFormatPrice_PerPair(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1.08500", FormatPrice(1.085, "EUR/USD"))
	assert.Equal(t, "148.250", FormatPrice(148.25, "USD/JPY"))
	assert.Equal(t, "2350.00", FormatPrice(2350, "XAU/USD"))
}

func TestFormatRatio(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "1:2.00", FormatRatio(2))
}

func TestFormatDateTime(t *testing.T) {
	t.Parallel()
	ts := time.Date(2025, 3, 10, 8, 30, 45, 0, time.UTC)
	assert.Equal(t, "2025-03-10", FormatDate(ts))
	assert.Equal(t, "2025-03-10 08:30", FormatDateTime(ts))
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "a long ...", TruncateString("a long strategy note", 10))
	assert.Equal(t, "ab", TruncateString("abcd", 2))
}

func TestShortID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ABC", ShortID("ABC"))
	assert.Equal(t, "56789XYZ", ShortID("01H123456789XYZ"))
}

func TestProperty_MoneyFormattingPreservesDigits(t *testing.T) {
	t.Parallel()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("stripping separators recovers the plain rendering", prop.ForAll(
		func(cents int64) bool {
			amount := float64(cents) / 100
			got := FormatMoney(amount)
			plain := strings.NewReplacer(",", "", "$", "").Replace(got)
			return plain == fmt.Sprintf("%.2f", amount)
		},
		gen.Int64Range(-1_000_000_000, 1_000_000_000),
	))

	properties.Property("groups are three digits wide", prop.ForAll(
		func(cents int64) bool {
			got := FormatMoney(float64(cents) / 100)
			intPart := strings.TrimPrefix(strings.TrimPrefix(got, "-"), "$")
			intPart = strings.SplitN(intPart, ".", 2)[0]
			groups := strings.Split(intPart, ",")
			if len(groups[0]) < 1 || len(groups[0]) > 3 {
				return false
			}
			for _, g := range groups[1:] {
				if len(g) != 3 {
					return false
				}
			}
			return true
		},
		gen.Int64Range(0, 1_000_000_000_000),
	))

	properties.TestingRun(t)
}
