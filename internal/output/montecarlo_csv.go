package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rpgo/swr-montecarlo/internal/calculation"
)

// summaryRows is the performance summary table shared by the console report
// and the CSV exports. The first row is the header.
func summaryRows(r *calculation.AnalysisResult) [][]string {
	n, rl := r.EndingNominal, r.EndingReal
	return [][]string{
		{"Metric", "Nominal Value", "Real Value (Today's $)"},
		{"Average Ending Value", FormatCurrency(n.Mean), FormatCurrency(rl.Mean)},
		{"Median Ending Value", FormatCurrency(n.Median), FormatCurrency(rl.Median)},
		{"5th Percentile", FormatCurrency(n.P5), FormatCurrency(rl.P5)},
		{"95th Percentile", FormatCurrency(n.P95), FormatCurrency(rl.P95)},
		{"Probability of Depletion", FormatPercentage(r.DepletionProbability, 2), "N/A"},
		{"Median Max Drawdown", FormatPercentage(r.MedianMaxDrawdown, 1), "N/A"},
		{"95th %ile Max Drawdown", FormatPercentage(r.P95MaxDrawdown, 1), "N/A"},
	}
}

// CSVSummarizer emits the performance summary table as CSV.
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string      { return "csv" }
func (c CSVSummarizer) Extension() string { return "csv" }

func (c CSVSummarizer) Format(result *calculation.AnalysisResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := writeCSV(buf, summaryRows(result)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCSV(w io.Writer, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

func fixed2(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// MonteCarloCSVReport generates the CSV exports for one analysis run
type MonteCarloCSVReport struct {
	Result *calculation.AnalysisResult
}

// GenerateSummaryCSV writes the performance summary table
func (m *MonteCarloCSVReport) GenerateSummaryCSV(outputPath string) error {
	return m.writeFile(outputPath, summaryRows(m.Result))
}

// GenerateWithdrawalsCSV writes per-year withdrawal statistics across paths
func (m *MonteCarloCSVReport) GenerateWithdrawalsCSV(outputPath string) error {
	rows := [][]string{{"Year", "Average", "Median", "5th %ile", "95th %ile"}}
	for _, w := range m.Result.Withdrawals {
		rows = append(rows, []string{
			strconv.Itoa(w.Year), fixed2(w.Mean), fixed2(w.Median), fixed2(w.P5), fixed2(w.P95),
		})
	}
	return m.writeFile(outputPath, rows)
}

// GeneratePathsCSV writes the per-year percentile paths of portfolio value
func (m *MonteCarloCSVReport) GeneratePathsCSV(outputPath string) error {
	rows := [][]string{{
		"Year", "P5_Nominal", "P25_Nominal", "P50_Nominal", "P75_Nominal", "P95_Nominal",
		"P5_Real", "P50_Real", "P95_Real",
	}}
	for _, p := range m.Result.Paths {
		rows = append(rows, []string{
			strconv.Itoa(p.Year),
			fixed2(p.P5Nominal), fixed2(p.P25Nominal), fixed2(p.P50Nominal), fixed2(p.P75Nominal), fixed2(p.P95Nominal),
			fixed2(p.P5Real), fixed2(p.P50Real), fixed2(p.P95Real),
		})
	}
	return m.writeFile(outputPath, rows)
}

// GenerateMonthlyCSV writes the per-month percentile path recorded when the
// run keeps monthly values.
func (m *MonteCarloCSVReport) GenerateMonthlyCSV(outputPath string) error {
	rows := [][]string{{"Month", "P5_Nominal", "P50_Nominal", "P95_Nominal", "P50_Real"}}
	for _, p := range m.Result.Monthly {
		rows = append(rows, []string{
			strconv.Itoa(p.Month), fixed2(p.P5), fixed2(p.P50), fixed2(p.P95), fixed2(p.P50Real),
		})
	}
	return m.writeFile(outputPath, rows)
}

func (m *MonteCarloCSVReport) writeFile(outputPath string, rows [][]string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	if err := writeCSV(file, rows); err != nil {
		return err
	}
	return file.Close()
}

// GenerateAllCSVReports creates all CSV reports in a single directory and
// returns the paths written. The monthly export is included only when the
// result carries monthly values.
func (m *MonteCarloCSVReport) GenerateAllCSVReports(outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	name := SafeFileName(m.Result.Portfolio.Name)
	type export struct {
		prefix string
		write  func(string) error
	}
	reports := []export{
		{"results", m.GenerateSummaryCSV},
		{"withdrawals", m.GenerateWithdrawalsCSV},
		{"paths", m.GeneratePathsCSV},
	}
	if len(m.Result.Monthly) > 0 {
		reports = append(reports, export{"monthly", m.GenerateMonthlyCSV})
	}

	written := make([]string, 0, len(reports))
	for _, r := range reports {
		path := filepath.Join(outputDir, fmt.Sprintf("%s_%s.csv", r.prefix, name))
		if err := r.write(path); err != nil {
			return written, fmt.Errorf("failed to generate %s CSV: %w", r.prefix, err)
		}
		written = append(written, path)
	}
	return written, nil
}
