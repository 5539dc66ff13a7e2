package calculation

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultRiskFreeRate is the hurdle used by the Sharpe and Sortino ratios.
const DefaultRiskFreeRate = 0.03

// degenerateStdDev treats dispersion below this as zero when forming ratios.
const degenerateStdDev = 1e-12

// DepletionProbability is the fraction of paths whose final value is below DepletionThreshold.
func DepletionProbability(finalValues []float64) float64 {
	if len(finalValues) == 0 {
		return 0
	}
	depleted := 0
	for _, v := range finalValues {
		if v < DepletionThreshold {
			depleted++
		}
	}
	return float64(depleted) / float64(len(finalValues))
}

// FailureYears returns, per path, the first row of annualValues below
// DepletionThreshold. Rows are end-of-year values with row 0 the initial
// value, so the result is the 1-based year of depletion. Paths that never
// deplete get len(annualValues), i.e. numYears+1.
func FailureYears(annualValues [][]float64) []int {
	if len(annualValues) == 0 {
		return nil
	}
	never := len(annualValues)
	years := make([]int, len(annualValues[0]))
	for p := range years {
		years[p] = never
		for t, row := range annualValues {
			if row[p] < DepletionThreshold {
				years[p] = t
				break
			}
		}
	}
	return years
}

// MaxDrawdowns returns, per path, the largest (runningMax - value)/runningMax
// over a [time][path] series. A zero running max divides by 1 instead, so an
// all-zero path has drawdown 0.
func MaxDrawdowns(series [][]float64) []float64 {
	if len(series) == 0 {
		return nil
	}
	drawdowns := make([]float64, len(series[0]))
	for p := range drawdowns {
		peak := math.Inf(-1)
		worst := 0.0
		for _, row := range series {
			v := row[p]
			if v > peak {
				peak = v
			}
			denom := peak
			if denom == 0 {
				denom = 1
			}
			if dd := (peak - v) / denom; dd > worst {
				worst = dd
			}
		}
		drawdowns[p] = worst
	}
	return drawdowns
}

// AnnualizedReturns converts each final value into a compound annual growth rate.
func AnnualizedReturns(finalValues []float64, initialValue float64, numYears int) []float64 {
	out := make([]float64, len(finalValues))
	for i, v := range finalValues {
		out[i] = math.Pow(v/initialValue, 1/float64(numYears)) - 1
	}
	return out
}

// SharpeRatio is (mean - rf)/std across paths using the population standard
// deviation. With no dispersion the ratio is +Inf, or -Inf when the mean
// falls short of the risk-free rate.
func SharpeRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return math.NaN()
	}
	mean, std := stat.PopMeanStdDev(returns, nil)
	excess := mean - riskFreeRate
	if std < degenerateStdDev {
		return infinityFor(excess)
	}
	return excess / std
}

// SortinoRatio divides the mean excess return by the root-mean-square of the
// negative excess returns only. Zero downside deviation yields +Inf.
func SortinoRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return math.NaN()
	}
	var sumSq float64
	for _, r := range returns {
		if d := r - riskFreeRate; d < 0 {
			sumSq += d * d
		}
	}
	downside := math.Sqrt(sumSq / float64(len(returns)))
	if downside == 0 {
		return math.Inf(1)
	}
	return (stat.Mean(returns, nil) - riskFreeRate) / downside
}

func infinityFor(excess float64) float64 {
	if excess < 0 {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

// GoalProbability is the share of paths finishing at or above Target.
type GoalProbability struct {
	Target      float64 `json:"target"`
	Probability float64 `json:"probability"`
}

// GoalProbabilities evaluates each target against the final values, in target order.
func GoalProbabilities(finalValues []float64, targets []float64) []GoalProbability {
	out := make([]GoalProbability, len(targets))
	for i, target := range targets {
		hits := 0
		for _, v := range finalValues {
			if v >= target {
				hits++
			}
		}
		prob := 0.0
		if len(finalValues) > 0 {
			prob = float64(hits) / float64(len(finalValues))
		}
		out[i] = GoalProbability{Target: target, Probability: prob}
	}
	return out
}

// BeatProbability is the fraction of path indices where a[i] > b[i]. Both
// runs must share path count and horizon so indices correspond.
func BeatProbability(a, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	wins := 0
	for i := 0; i < n; i++ {
		if a[i] > b[i] {
			wins++
		}
	}
	return float64(wins) / float64(n)
}

// Deflate converts a nominal value at yearIndex into today's dollars.
func Deflate(value, inflationRate float64, yearIndex int) float64 {
	return value / math.Pow(1+inflationRate, float64(yearIndex))
}

// DeflateAll deflates every value by the same horizon, returning a new slice.
func DeflateAll(values []float64, inflationRate float64, yearIndex int) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	floats.Scale(1/math.Pow(1+inflationRate, float64(yearIndex)), out)
	return out
}

// DeflateSeries deflates a per-year series where index t is year t.
func DeflateSeries(series []float64, inflationRate float64) []float64 {
	out := make([]float64, len(series))
	for t, v := range series {
		out[t] = Deflate(v, inflationRate, t)
	}
	return out
}

// Percentile returns the p-quantile (0..1) of values with linear
// interpolation. values is not modified.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return percentileSorted(sorted, p)
}

// percentileSorted interpolates between the closest ranks at h = (n-1)p,
// the convention used by NumPy's default percentile.
func percentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	p = math.Min(math.Max(p, 0), 1)
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	hi := min(lo+1, n-1)
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

// Median is Percentile(values, 0.5).
func Median(values []float64) float64 { return Percentile(values, 0.5) }

// Distribution summarises a set of per-path values.
type Distribution struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P5     float64 `json:"p5"`
	P95    float64 `json:"p95"`
}

// Summarize computes mean, median, and the 5th/95th percentiles.
func Summarize(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return Distribution{
		Mean:   stat.Mean(values, nil),
		Median: percentileSorted(sorted, 0.5),
		P5:     percentileSorted(sorted, 0.05),
		P95:    percentileSorted(sorted, 0.95),
	}
}

// RowPercentiles returns, for each row of a [time][path] matrix, the
// requested percentiles across paths: out[t][k] is percentile ps[k] at row t.
func RowPercentiles(matrix [][]float64, ps ...float64) [][]float64 {
	out := make([][]float64, len(matrix))
	for t, row := range matrix {
		sorted := make([]float64, len(row))
		copy(sorted, row)
		sort.Float64s(sorted)
		out[t] = make([]float64, len(ps))
		for k, p := range ps {
			out[t][k] = percentileSorted(sorted, p)
		}
	}
	return out
}
