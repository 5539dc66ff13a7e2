package output

import (
	"encoding/json"
	"math"

	"github.com/rpgo/swr-montecarlo/internal/calculation"
)

// JSONFormatter serializes the analysis result as pretty-printed JSON.
type JSONFormatter struct{}

func (j JSONFormatter) Name() string      { return "json" }
func (j JSONFormatter) Extension() string { return "json" }

func (j JSONFormatter) Format(result *calculation.AnalysisResult) ([]byte, error) {
	return json.MarshalIndent(jsonResult{
		AnalysisResult: result,
		SharpeRatio:    jsonRatio(result.SharpeRatio),
		SortinoRatio:   jsonRatio(result.SortinoRatio),
	}, "", "  ")
}

// jsonResult shadows the ratio fields, which may be infinite, with a
// representation encoding/json accepts.
type jsonResult struct {
	*calculation.AnalysisResult
	SharpeRatio  jsonRatio `json:"sharpe_ratio"`
	SortinoRatio jsonRatio `json:"sortino_ratio"`
}

// jsonRatio encodes finite values as numbers, ±Inf as the strings
// "+Inf"/"-Inf" and NaN as null.
type jsonRatio float64

func (r jsonRatio) MarshalJSON() ([]byte, error) {
	v := float64(r)
	switch {
	case math.IsNaN(v):
		return []byte("null"), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return json.Marshal(v)
}
