package domain

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ErrInvalidPortfolio is returned when a portfolio definition cannot be simulated.
var ErrInvalidPortfolio = errors.New("invalid portfolio")

// WeightTolerance is the allowed deviation of the summed asset weights from 1.0.
const WeightTolerance = 1e-6

// correlationTolerance bounds asymmetry and negative eigenvalues of a correlation matrix.
const correlationTolerance = 1e-9

// AssetSpec describes one holding of a portfolio. All rates are annual decimal fractions.
type AssetSpec struct {
	Ticker         string          `yaml:"ticker" json:"ticker"`
	Name           string          `yaml:"name" json:"name"`
	ArithmeticMean decimal.Decimal `yaml:"arithmetic_mean" json:"arithmetic_mean"`
	StdDev         decimal.Decimal `yaml:"std_dev" json:"std_dev"`
	Weight         decimal.Decimal `yaml:"weight" json:"weight"`
	ExpenseRatio   decimal.Decimal `yaml:"expense_ratio" json:"expense_ratio"`
}

// GeometricMean returns the volatility-adjusted expected compounding rate, mean - sd^2/2.
func (a AssetSpec) GeometricMean() decimal.Decimal {
	return a.ArithmeticMean.Sub(a.StdDev.Mul(a.StdDev).Div(decimal.NewFromInt(2)))
}

// PortfolioDefinition is an ordered set of assets with their pairwise return correlation.
type PortfolioDefinition struct {
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"description" json:"description"`
	Assets      []AssetSpec `yaml:"assets" json:"assets"`
	Correlation [][]float64 `yaml:"correlation" json:"correlation"`
}

// Tickers returns the asset tickers in portfolio order.
func (p *PortfolioDefinition) Tickers() []string {
	tickers := make([]string, len(p.Assets))
	for i, a := range p.Assets {
		tickers[i] = a.Ticker
	}
	return tickers
}

// Weights returns the target weights in portfolio order.
func (p *PortfolioDefinition) Weights() []float64 {
	w := make([]float64, len(p.Assets))
	for i, a := range p.Assets {
		w[i] = a.Weight.InexactFloat64()
	}
	return w
}

// BlendedExpenseRatio is the weight-averaged expense ratio of the portfolio's funds.
func (p *PortfolioDefinition) BlendedExpenseRatio() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Assets {
		total = total.Add(a.ExpenseRatio.Mul(a.Weight))
	}
	return total
}

// Validate checks the structural invariants a simulation relies on.
func (p *PortfolioDefinition) Validate() error {
	n := len(p.Assets)
	if n == 0 {
		return fmt.Errorf("%w: no assets defined", ErrInvalidPortfolio)
	}

	weightSum := 0.0
	for i, a := range p.Assets {
		if a.Ticker == "" {
			return fmt.Errorf("%w: asset %d has no ticker", ErrInvalidPortfolio, i)
		}
		if a.StdDev.IsNegative() {
			return fmt.Errorf("%w: %s std_dev cannot be negative", ErrInvalidPortfolio, a.Ticker)
		}
		if a.Weight.IsNegative() {
			return fmt.Errorf("%w: %s weight cannot be negative", ErrInvalidPortfolio, a.Ticker)
		}
		if a.ExpenseRatio.IsNegative() {
			return fmt.Errorf("%w: %s expense_ratio cannot be negative", ErrInvalidPortfolio, a.Ticker)
		}
		weightSum += a.Weight.InexactFloat64()
	}
	if math.Abs(weightSum-1) > WeightTolerance {
		return fmt.Errorf("%w: weights sum to %.6f, expected 1.0", ErrInvalidPortfolio, weightSum)
	}

	if len(p.Correlation) != n {
		return fmt.Errorf("%w: correlation matrix has %d rows for %d assets", ErrInvalidPortfolio, len(p.Correlation), n)
	}
	for i, row := range p.Correlation {
		if len(row) != n {
			return fmt.Errorf("%w: correlation row %d has %d columns for %d assets", ErrInvalidPortfolio, i, len(row), n)
		}
		if math.Abs(row[i]-1) > correlationTolerance {
			return fmt.Errorf("%w: correlation diagonal [%d][%d] must be 1, got %g", ErrInvalidPortfolio, i, i, row[i])
		}
		for j, v := range row {
			if math.IsNaN(v) || v < -1 || v > 1 {
				return fmt.Errorf("%w: correlation [%d][%d]=%g outside [-1,1]", ErrInvalidPortfolio, i, j, v)
			}
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if math.Abs(p.Correlation[i][j]-p.Correlation[j][i]) > correlationTolerance {
				return fmt.Errorf("%w: correlation matrix is not symmetric at [%d][%d]", ErrInvalidPortfolio, i, j)
			}
		}
	}
	return nil
}

// Benchmark is a single-asset reference index the portfolio is compared against.
type Benchmark struct {
	Name           string          `yaml:"name" json:"name"`
	ArithmeticMean decimal.Decimal `yaml:"arithmetic_mean" json:"arithmetic_mean"`
	StdDev         decimal.Decimal `yaml:"std_dev" json:"std_dev"`
	ExpenseRatio   decimal.Decimal `yaml:"expense_ratio" json:"expense_ratio"`
}

// DefaultBenchmark is an S&P 500 index fund proxy (VOO/SPY expense ratio).
func DefaultBenchmark() Benchmark {
	return Benchmark{
		Name:           "S&P 500",
		ArithmeticMean: decimal.NewFromFloat(0.10),
		StdDev:         decimal.NewFromFloat(0.16),
		ExpenseRatio:   decimal.NewFromFloat(0.0003),
	}
}

// AsAsset views the benchmark as a fully weighted single asset.
func (b Benchmark) AsAsset() AssetSpec {
	return AssetSpec{
		Ticker:         "BENCH",
		Name:           b.Name,
		ArithmeticMean: b.ArithmeticMean,
		StdDev:         b.StdDev,
		Weight:         decimal.NewFromInt(1),
		ExpenseRatio:   b.ExpenseRatio,
	}
}

// Validate checks the benchmark parameters.
func (b Benchmark) Validate() error {
	if b.StdDev.IsNegative() {
		return fmt.Errorf("%w: benchmark std_dev cannot be negative", ErrInvalidPortfolio)
	}
	if b.ExpenseRatio.IsNegative() {
		return fmt.Errorf("%w: benchmark expense_ratio cannot be negative", ErrInvalidPortfolio)
	}
	return nil
}
