package output_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rpgo/swr-montecarlo/internal/calculation"
	"github.com/rpgo/swr-montecarlo/internal/domain"
	"github.com/rpgo/swr-montecarlo/internal/output"
)

func runSmallAnalysis(t *testing.T) *calculation.AnalysisResult {
	t.Helper()
	return runAnalysis(t, func(*domain.SimulationSettings) {})
}

func runAnalysis(t *testing.T, adjust func(*domain.SimulationSettings)) *calculation.AnalysisResult {
	t.Helper()
	portfolio, err := domain.PresetByNumber(3)
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	settings := domain.DefaultSettings()
	settings.NumPaths = 200
	settings.NumYears = 12
	settings.Seed = 99
	adjust(&settings)
	a, err := calculation.NewAnalyzer(portfolio, domain.DefaultBenchmark(), settings)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	result, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return result
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parse %s: %v", path, err)
	}
	return rows
}

func TestGenerateAllCSVReports(t *testing.T) {
	result := runSmallAnalysis(t)
	dir := filepath.Join(t.TempDir(), "outputs")

	report := &output.MonteCarloCSVReport{Result: result}
	paths, err := report.GenerateAllCSVReports(dir)
	if err != nil {
		t.Fatalf("GenerateAllCSVReports error: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("expected 3 files, got %v", paths)
	}
	want := []string{
		"results_Golden_Butterfly_(All-Weather).csv",
		"withdrawals_Golden_Butterfly_(All-Weather).csv",
		"paths_Golden_Butterfly_(All-Weather).csv",
	}
	for i, name := range want {
		if filepath.Base(paths[i]) != name {
			t.Fatalf("file %d = %s, want %s", i, filepath.Base(paths[i]), name)
		}
	}

	if rows := readCSV(t, paths[0]); len(rows) != 8 {
		t.Fatalf("results rows = %d, want 8", len(rows))
	}
	if rows := readCSV(t, paths[1]); len(rows) != 12+1 || rows[1][0] != "1" {
		t.Fatalf("withdrawals rows = %d (first %v)", len(rows), rows[1])
	}
	rows := readCSV(t, paths[2])
	if len(rows) != 12+2 {
		t.Fatalf("paths rows = %d, want %d", len(rows), 12+2)
	}
	if rows[0][0] != "Year" || rows[1][0] != "0" || rows[1][3] != "1000000.00" {
		t.Fatalf("unexpected paths rows: %v %v", rows[0], rows[1])
	}
}

func TestGenerateAllCSVReportsIncludesMonthly(t *testing.T) {
	result := runAnalysis(t, func(s *domain.SimulationSettings) { s.RecordMonthly = true })
	paths, err := (&output.MonteCarloCSVReport{Result: result}).GenerateAllCSVReports(t.TempDir())
	if err != nil {
		t.Fatalf("GenerateAllCSVReports error: %v", err)
	}
	if len(paths) != 4 {
		t.Fatalf("expected 4 files with monthly values, got %v", paths)
	}
	if got := filepath.Base(paths[3]); got != "monthly_Golden_Butterfly_(All-Weather).csv" {
		t.Fatalf("monthly file = %s", got)
	}
	rows := readCSV(t, paths[3])
	if len(rows) != 12*12+2 {
		t.Fatalf("monthly rows = %d, want %d", len(rows), 12*12+2)
	}
	if rows[0][0] != "Month" || rows[1][2] != "1000000.00" || rows[len(rows)-1][0] != "144" {
		t.Fatalf("unexpected monthly rows: %v %v %v", rows[0], rows[1], rows[len(rows)-1])
	}
}

func TestRenderReport(t *testing.T) {
	result := runSmallAnalysis(t)
	var buf bytes.Buffer
	if err := output.RenderReport(&buf, result, "console"); err != nil {
		t.Fatalf("RenderReport console error: %v", err)
	}
	if !strings.Contains(buf.String(), "Golden Butterfly") {
		t.Fatalf("console report missing portfolio name")
	}
	if err := output.RenderReport(&buf, result, "pdf"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestGenerateReport_JSON_All(t *testing.T) {
	result := runSmallAnalysis(t)
	dir := t.TempDir()

	paths, err := output.GenerateReport(result, "json", dir)
	if err != nil {
		t.Fatalf("GenerateReport json error: %v", err)
	}
	if len(paths) != 1 || filepath.Ext(paths[0]) != ".json" {
		t.Fatalf("unexpected json output %v", paths)
	}

	paths, err = output.GenerateReport(result, "all", dir)
	if err != nil {
		t.Fatalf("GenerateReport all error: %v", err)
	}
	if len(paths) != 6 {
		t.Fatalf("expected 3 reports + 3 CSV exports, got %v", paths)
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing output %s: %v", p, err)
		}
	}
}
