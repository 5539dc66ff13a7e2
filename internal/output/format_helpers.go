package output

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/rpgo/swr-montecarlo/internal/domain"
	money "github.com/rpgo/swr-montecarlo/pkg/decimal"
)

// FormatCurrency formats a dollar amount rounded to whole dollars with thousands separators.
// Non-finite amounts print as "n/a".
func FormatCurrency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "n/a"
	}
	return money.NewMoney(amount).Format()
}

// FormatPercentage formats a fraction (0.05) as a percentage ("5.00%") with the given places.
func FormatPercentage(rate float64, places int) string { return money.FormatRate(rate, places) }

// FormatRatio formats a Sharpe-style ratio with two decimals; unbounded ratios print as ±Inf.
func FormatRatio(r float64) string {
	switch {
	case math.IsNaN(r):
		return "n/a"
	case math.IsInf(r, 1):
		return "+Inf"
	case math.IsInf(r, -1):
		return "-Inf"
	}
	return fmt.Sprintf("%.2f", r)
}

// SafeFileName turns a portfolio name into a file name fragment.
func SafeFileName(name string) string {
	r := strings.NewReplacer(" ", "_", "/", "_", "\\", "_")
	return r.Replace(strings.TrimSpace(name))
}

// FormatPresetList renders the numbered preset portfolios with their
// allocations and blended expense ratio.
func FormatPresetList(presets []domain.PortfolioDefinition) string {
	var buf bytes.Buffer
	rule := strings.Repeat("=", 70)
	fmt.Fprintln(&buf, rule)
	fmt.Fprintln(&buf, "AVAILABLE PORTFOLIO PRESETS")
	fmt.Fprintln(&buf, rule)
	fmt.Fprintln(&buf)
	for i, p := range presets {
		fmt.Fprintf(&buf, "Portfolio %d: %s\n", i+1, p.Name)
		fmt.Fprintf(&buf, "Description: %s\n", p.Description)
		fmt.Fprintln(&buf, "Assets:")
		for _, a := range p.Assets {
			fmt.Fprintf(&buf, "  %-5s: %6s | %s\n", a.Ticker, FormatPercentage(a.Weight.InexactFloat64(), 1), a.Name)
		}
		fmt.Fprintf(&buf, "Blended Expense Ratio: %s\n", FormatPercentage(p.BlendedExpenseRatio().InexactFloat64(), 4))
		fmt.Fprintln(&buf)
	}
	return buf.String()
}
