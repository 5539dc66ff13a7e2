package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rpgo/swr-montecarlo/internal/calculation"
	money "github.com/rpgo/swr-montecarlo/pkg/decimal"
)

// ConsoleFormatter renders the full plain-text simulation report.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string      { return "console" }
func (c ConsoleFormatter) Extension() string { return "txt" }

// withdrawalRowsShown is how many leading and trailing years the withdrawal table prints.
const withdrawalRowsShown = 10

func (c ConsoleFormatter) Format(result *calculation.AnalysisResult) ([]byte, error) {
	var buf bytes.Buffer
	heavy := strings.Repeat("=", 70)
	light := strings.Repeat("-", 70)
	s := result.Settings

	fmt.Fprintln(&buf, heavy)
	fmt.Fprintln(&buf, "MONTE CARLO PORTFOLIO RETIREMENT SIMULATOR")
	fmt.Fprintln(&buf, heavy)
	fmt.Fprintf(&buf, "\n--- Selected Portfolio: %s ---\n", result.Portfolio.Name)
	if result.Portfolio.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", result.Portfolio.Description)
	}

	fmt.Fprintln(&buf, "\n--- Simulation Setup ---")
	initial := money.NewMoneyFromDecimal(s.InitialValue)
	fmt.Fprintf(&buf, "Initial Portfolio Value: %s\n", initial.Format())
	for _, line := range GenerateAssumptions(result) {
		fmt.Fprintln(&buf, line)
	}
	fmt.Fprintf(&buf, "Simulation: %d paths over %d years (%d months), seed %d\n",
		s.NumPaths, s.NumYears, s.NumYears*12, result.Seed)

	fmt.Fprintln(&buf, "\n--- Portfolio Allocation ---")
	for _, a := range result.Assets {
		fmt.Fprintf(&buf, "%-5s: %6s | ER: %s | Arith: %s | Geo: %s | Vol: %s\n",
			a.Ticker,
			FormatPercentage(a.Weight, 1),
			FormatPercentage(a.ExpenseRatio, 4),
			FormatPercentage(a.ArithmeticMean, 1),
			FormatPercentage(a.GeometricMean, 2),
			FormatPercentage(a.StdDev, 1),
		)
	}

	f := result.Fees
	fmt.Fprintln(&buf, "\n--- Fee Breakdown ---")
	fmt.Fprintf(&buf, "Portfolio Blended Expense Ratio: %s\n", FormatPercentage(f.BlendedExpenseRatio, 4))
	if f.AdditionalFee > 0 {
		fmt.Fprintf(&buf, "Additional Advisor/Platform Fee: %s\n", FormatPercentage(f.AdditionalFee, 4))
	}
	fmt.Fprintf(&buf, "Total Annual Fee: %s\n", FormatPercentage(f.TotalFee, 4))
	fmt.Fprintf(&buf, "Gross Return (before all fees): %s\n", FormatPercentage(f.GrossReturn, 2))
	fmt.Fprintf(&buf, "Net Return (after all fees): %s\n", FormatPercentage(f.NetReturn, 2))
	fmt.Fprintf(&buf, "Fee drag over %d years: %s\n", s.NumYears, FormatPercentage(f.FeeDrag, 1))
	fmt.Fprintf(&buf, "Cost of fees on %s: %s\n", initial.Format(), FormatCurrency(f.FeeCostOnInitial))

	fmt.Fprintf(&buf, "\n%s\n\n--- PORTFOLIO PERFORMANCE SUMMARY ---\n", light)
	for _, row := range summaryRows(result) {
		fmt.Fprintf(&buf, "%-26s %18s %22s\n", row[0], row[1], row[2])
	}

	fmt.Fprintf(&buf, "\n%s\n\n--- WITHDRAWAL ANALYSIS ---\n", light)
	writeWithdrawalTable(&buf, result.Withdrawals)

	fmt.Fprintf(&buf, "\n%s\n\n--- RISK METRICS ---\n", light)
	fmt.Fprintf(&buf, "Portfolio Sharpe Ratio: %s\n", FormatRatio(result.SharpeRatio))
	fmt.Fprintf(&buf, "Portfolio Sortino Ratio: %s\n", FormatRatio(result.SortinoRatio))
	fmt.Fprintf(&buf, "Median Maximum Drawdown: %s\n", FormatPercentage(result.MedianMaxDrawdown, 1))
	fmt.Fprintf(&buf, "Worst Drawdown (95th %%ile): %s\n", FormatPercentage(result.P95MaxDrawdown, 1))
	if result.DepletedPaths > 0 {
		fmt.Fprintf(&buf, "\nPortfolios Depleted: %d (%s)\n", result.DepletedPaths, FormatPercentage(result.DepletionProbability, 2))
		fmt.Fprintf(&buf, "Median Failure Year: %.0f\n", result.MedianFailureYear)
	} else {
		fmt.Fprintln(&buf, "\nPortfolios Depleted: None (0.00%)")
	}

	fmt.Fprintf(&buf, "\n%s\n\n--- GOAL PROBABILITY ANALYSIS ---\n", light)
	fmt.Fprintln(&buf, "Probability of reaching target by end of simulation:")
	for _, g := range result.Goals {
		fmt.Fprintf(&buf, "  %14s: %7s\n", FormatCurrency(g.Target), FormatPercentage(g.Probability, 1))
	}

	b := result.Benchmark
	fmt.Fprintf(&buf, "\n%s\n\n--- BENCHMARK COMPARISON (%s) ---\n", light, b.Name)
	fmt.Fprintf(&buf, "%s Median Ending (Nominal): %s\n", b.Name, FormatCurrency(b.MedianNominal))
	fmt.Fprintf(&buf, "%s Median Ending (Real):    %s\n", b.Name, FormatCurrency(b.MedianReal))
	fmt.Fprintf(&buf, "Portfolio Beats %s (Nominal): %s\n", b.Name, FormatPercentage(b.BeatNominal, 1))
	fmt.Fprintf(&buf, "Portfolio Beats %s (Real):    %s\n", b.Name, FormatPercentage(b.BeatReal, 1))
	fmt.Fprintf(&buf, "%s Median Max Drawdown: %s\n", b.Name, FormatPercentage(b.MedianMaxDrawdown, 1))

	fmt.Fprintf(&buf, "\n%s\n\n--- EXPECTED RETURNS ---\n", light)
	fmt.Fprintf(&buf, "Portfolio Exp. Nominal (before fees): %s\n", FormatPercentage(f.GrossReturn, 2))
	fmt.Fprintf(&buf, "Portfolio Exp. Nominal (after fees):  %s\n", FormatPercentage(f.NetReturn, 2))
	fmt.Fprintf(&buf, "Portfolio Exp. Real (after fees):     %s\n", FormatPercentage(f.RealReturn, 2))

	return buf.Bytes(), nil
}

func writeWithdrawalTable(buf *bytes.Buffer, years []calculation.WithdrawalYear) {
	row := func(w calculation.WithdrawalYear) {
		fmt.Fprintf(buf, "%4d %14s %14s %14s %14s\n", w.Year,
			FormatCurrency(w.Mean), FormatCurrency(w.Median), FormatCurrency(w.P5), FormatCurrency(w.P95))
	}
	header := func() {
		fmt.Fprintf(buf, "%4s %14s %14s %14s %14s\n", "Year", "Average", "Median", "5th %ile", "95th %ile")
	}

	if len(years) <= 2*withdrawalRowsShown {
		header()
		for _, w := range years {
			row(w)
		}
		return
	}
	fmt.Fprintf(buf, "First %d Years:\n", withdrawalRowsShown)
	header()
	for _, w := range years[:withdrawalRowsShown] {
		row(w)
	}
	fmt.Fprintf(buf, "\nLast %d Years:\n", withdrawalRowsShown)
	header()
	for _, w := range years[len(years)-withdrawalRowsShown:] {
		row(w)
	}
}
