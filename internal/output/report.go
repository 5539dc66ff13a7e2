package output

import (
	"fmt"
	"io"

	"github.com/rpgo/swr-montecarlo/internal/calculation"
)

// RenderReport formats result with the named formatter and writes it to w.
func RenderReport(w io.Writer, result *calculation.AnalysisResult, format string) error {
	f, err := LookupFormatter(format)
	if err != nil {
		return err
	}
	data, err := f.Format(result)
	if err != nil {
		return fmt.Errorf("%s formatter failed: %w", f.Name(), err)
	}
	_, err = w.Write(data)
	return err
}

// GenerateReport writes the named report into outputDir. The special format
// "all" writes every registered formatter plus the CSV exports.
func GenerateReport(result *calculation.AnalysisResult, format, outputDir string) ([]string, error) {
	if NormalizeFormatName(format) == "all" {
		var written []string
		for _, f := range builtInFormatters {
			path, err := WriteFormatted(f, result, outputDir)
			if err != nil {
				return written, err
			}
			written = append(written, path)
		}
		csvPaths, err := (&MonteCarloCSVReport{Result: result}).GenerateAllCSVReports(outputDir)
		return append(written, csvPaths...), err
	}

	f, err := LookupFormatter(format)
	if err != nil {
		return nil, err
	}
	path, err := WriteFormatted(f, result, outputDir)
	if err != nil {
		return nil, err
	}
	return []string{path}, nil
}
