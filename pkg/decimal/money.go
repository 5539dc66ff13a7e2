package decimal

import (
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Money represents a monetary amount with proper financial precision
type Money struct {
	decimal.Decimal
}

// NewMoney creates a new Money instance from a float64
func NewMoney(value float64) Money {
	return Money{decimal.NewFromFloat(value)}
}

// NewMoneyFromDecimal creates a new Money instance from a decimal.Decimal
func NewMoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d}
}

// Monthly converts an annual amount to monthly
func (m Money) Monthly() Money {
	return Money{m.Decimal.Div(decimal.NewFromInt(12))}
}

// Format renders whole dollars with thousands separators, e.g. "$1,234,568".
func (m Money) Format() string {
	return FormatCurrency(m.InexactFloat64(), 0)
}

// FormatCents renders dollars and cents with thousands separators.
func (m Money) FormatCents() string {
	return FormatCurrency(m.InexactFloat64(), 2)
}

// FormatCurrency renders v as dollars with thousands separators and the
// given number of decimal places (0 or 2). Non-finite values render as "n/a".
func FormatCurrency(v float64, places int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	pattern := "#,###."
	if places > 0 {
		pattern = "#,###." + strings.Repeat("#", places)
	}
	if v < 0 {
		return "-$" + humanize.FormatFloat(pattern, -v)
	}
	return "$" + humanize.FormatFloat(pattern, v)
}

// PercentToRate converts a percentage as typed on the command line (4 for 4%)
// into a decimal fraction (0.04).
func PercentToRate(percent float64) decimal.Decimal {
	return decimal.NewFromFloat(percent).Div(hundred)
}

// RateToPercent converts a decimal fraction into a percentage.
func RateToPercent(rate decimal.Decimal) decimal.Decimal {
	return rate.Mul(hundred)
}

// FormatRate renders a fraction as a percentage with the given decimal places, e.g. 0.0404 -> "4.04%".
func FormatRate(rate float64, places int) string {
	if math.IsNaN(rate) {
		return "n/a"
	}
	if math.IsInf(rate, 0) {
		if rate > 0 {
			return "+Inf%"
		}
		return "-Inf%"
	}
	return decimal.NewFromFloat(rate).Mul(hundred).StringFixed(int32(places)) + "%"
}
