package calculation

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rpgo/swr-montecarlo/internal/domain"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// AssetSummary is the per-asset view of the fee and return assumptions.
type AssetSummary struct {
	Ticker         string  `json:"ticker"`
	Name           string  `json:"name"`
	Weight         float64 `json:"weight"`
	ExpenseRatio   float64 `json:"expense_ratio"`
	ArithmeticMean float64 `json:"arithmetic_mean"`
	GeometricMean  float64 `json:"geometric_mean"`
	AfterFeeMean   float64 `json:"after_fee_mean"`
	StdDev         float64 `json:"std_dev"`
}

// FeeBreakdown describes what fees cost over the horizon.
type FeeBreakdown struct {
	BlendedExpenseRatio float64 `json:"blended_expense_ratio"`
	AdditionalFee       float64 `json:"additional_fee"`
	TotalFee            float64 `json:"total_fee"`
	GrossReturn         float64 `json:"gross_return"`
	NetReturn           float64 `json:"net_return"`
	RealReturn          float64 `json:"real_return"`
	FeeDrag             float64 `json:"fee_drag"`
	FeeCostOnInitial    float64 `json:"fee_cost_on_initial"`
}

// WithdrawalYear is the cross-path distribution of one year's withdrawals.
type WithdrawalYear struct {
	Year   int     `json:"year"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P5     float64 `json:"p5"`
	P95    float64 `json:"p95"`
}

// PercentilePath is one year of the portfolio value fan chart.
type PercentilePath struct {
	Year       int     `json:"year"`
	P5Nominal  float64 `json:"p5_nominal"`
	P25Nominal float64 `json:"p25_nominal"`
	P50Nominal float64 `json:"p50_nominal"`
	P75Nominal float64 `json:"p75_nominal"`
	P95Nominal float64 `json:"p95_nominal"`
	P5Real     float64 `json:"p5_real"`
	P50Real    float64 `json:"p50_real"`
	P95Real    float64 `json:"p95_real"`
}

// BenchmarkComparison contrasts the portfolio with the single-asset benchmark run.
type BenchmarkComparison struct {
	Name              string  `json:"name"`
	MedianNominal     float64 `json:"median_nominal"`
	MedianReal        float64 `json:"median_real"`
	BeatNominal       float64 `json:"beat_nominal"`
	BeatReal          float64 `json:"beat_real"`
	MedianMaxDrawdown float64 `json:"median_max_drawdown"`
}

// MonthlyPercentile is one month of the portfolio value fan chart, kept
// only when the run records monthly values.
type MonthlyPercentile struct {
	Month   int     `json:"month"`
	P5      float64 `json:"p5"`
	P50     float64 `json:"p50"`
	P95     float64 `json:"p95"`
	P50Real float64 `json:"p50_real"`
}

// AnalysisResult is everything derived from one portfolio run and its benchmark run.
type AnalysisResult struct {
	RunAt     time.Time                  `json:"run_at"`
	Seed      uint64                     `json:"seed"`
	Portfolio *domain.PortfolioDefinition `json:"portfolio"`
	Settings  domain.SimulationSettings  `json:"settings"`
	Strategy  string                     `json:"strategy"`

	Assets []AssetSummary `json:"assets"`
	Fees   FeeBreakdown   `json:"fees"`

	EndingNominal Distribution `json:"ending_nominal"`
	EndingReal    Distribution `json:"ending_real"`

	DepletionProbability float64 `json:"depletion_probability"`
	DepletedPaths        int     `json:"depleted_paths"`
	MedianFailureYear    float64 `json:"median_failure_year"` // 0 when no path depleted

	MedianMaxDrawdown float64 `json:"median_max_drawdown"`
	P95MaxDrawdown    float64 `json:"p95_max_drawdown"`
	SharpeRatio       float64 `json:"sharpe_ratio"`
	SortinoRatio      float64 `json:"sortino_ratio"`

	Goals       []GoalProbability   `json:"goals"`
	Benchmark   BenchmarkComparison `json:"benchmark"`
	Withdrawals []WithdrawalYear    `json:"withdrawals"`
	Paths       []PercentilePath    `json:"paths"`
	Monthly     []MonthlyPercentile `json:"monthly,omitempty"`

	PortfolioOutput *SimulationOutput `json:"-"`
	BenchmarkOutput *SimulationOutput `json:"-"`
}

// Analyzer runs the portfolio and its benchmark through the engine and derives metrics.
type Analyzer struct {
	portfolio *domain.PortfolioDefinition
	benchmark domain.Benchmark
	settings  domain.SimulationSettings
	config    EngineConfig
	workers   int
	logger    Logger
}

// NewAnalyzer validates all inputs, including the correlation factorization,
// so that misconfiguration fails before any sampling.
func NewAnalyzer(portfolio *domain.PortfolioDefinition, benchmark domain.Benchmark, settings domain.SimulationSettings) (*Analyzer, error) {
	if portfolio == nil {
		return nil, fmt.Errorf("%w: no portfolio", domain.ErrInvalidPortfolio)
	}
	if err := portfolio.Validate(); err != nil {
		return nil, err
	}
	if _, err := CorrelationFactor(portfolio.Correlation); err != nil {
		return nil, err
	}
	if err := benchmark.Validate(); err != nil {
		return nil, err
	}
	cfg, err := NewEngineConfig(settings)
	if err != nil {
		return nil, err
	}
	return &Analyzer{
		portfolio: portfolio,
		benchmark: benchmark,
		settings:  settings,
		config:    cfg,
		logger:    NopLogger{},
	}, nil
}

// SetLogger sets the analyzer logger. If nil is provided, a no-op logger is used.
func (a *Analyzer) SetLogger(l Logger) { a.logger = loggerOrNop(l) }

// SetWorkers bounds engine concurrency; 0 keeps the engine default.
func (a *Analyzer) SetWorkers(n int) { a.workers = n }

func (a *Analyzer) newEngine() *MonteCarloEngine {
	e := NewMonteCarloEngine(a.config)
	e.SetLogger(a.logger)
	if a.workers > 0 {
		e.SetWorkers(a.workers)
	}
	return e
}

// Run samples returns, simulates the portfolio and the benchmark with the
// same paths and horizon, and computes the result metrics.
func (a *Analyzer) Run(ctx context.Context) (*AnalysisResult, error) {
	seed := a.settings.Seed
	if seed == 0 {
		seed = seedFunc()
	}
	cfg := a.config
	additionalFee := a.settings.AdditionalFee.InexactFloat64()

	a.logger.Infof("generating returns: %d paths x %d years, fat tails=%t, seed=%d", cfg.NumPaths, cfg.NumYears, a.settings.FatTails, seed)
	a.logger.Debugf("assets: %s", strings.Join(a.portfolio.Tickers(), ", "))
	means := AfterFeeMeans(a.portfolio.Assets, additionalFee)
	sds := StdDevs(a.portfolio.Assets)
	portfolioReturns, err := NewReturnGenerator(a.settings.FatTails, rand.NewPCG(seed, portfolioStream)).
		Generate(means, sds, a.portfolio.Correlation, cfg.NumYears, cfg.NumPaths)
	if err != nil {
		return nil, fmt.Errorf("failed to generate portfolio returns: %w", err)
	}

	bench := a.benchmark.AsAsset()
	benchMean := AfterFeeMeans([]domain.AssetSpec{bench}, additionalFee)[0]
	benchReturns, err := NewReturnGenerator(a.settings.FatTails, rand.NewPCG(seed, benchmarkStream)).
		GenerateSingle(benchMean, bench.StdDev.InexactFloat64(), cfg.NumYears, cfg.NumPaths)
	if err != nil {
		return nil, fmt.Errorf("failed to generate benchmark returns: %w", err)
	}

	a.logger.Infof("simulating %s with %s withdrawals", a.portfolio.Name, cfg.Strategy.Name())
	engine := a.newEngine()
	portfolioOut, err := engine.Simulate(ctx, a.portfolio.Weights(), portfolioReturns)
	if err != nil {
		return nil, fmt.Errorf("portfolio simulation failed: %w", err)
	}
	a.logger.Infof("simulating benchmark %s", a.benchmark.Name)
	benchOut, err := engine.Simulate(ctx, []float64{1}, benchReturns)
	if err != nil {
		return nil, fmt.Errorf("benchmark simulation failed: %w", err)
	}

	result := a.derive(portfolioOut, benchOut)
	result.Seed = seed
	result.RunAt = nowFunc()
	a.logger.Infof("depletion probability %.2f%% over %d paths", result.DepletionProbability*100, cfg.NumPaths)
	return result, nil
}

// derive computes all metrics from the two engine outputs.
func (a *Analyzer) derive(portfolioOut, benchOut *SimulationOutput) *AnalysisResult {
	cfg := a.config
	inflation := cfg.InflationRate
	riskFree := a.settings.RiskFreeRate.InexactFloat64()

	finalReal := DeflateAll(portfolioOut.FinalValues, inflation, cfg.NumYears)
	benchReal := DeflateAll(benchOut.FinalValues, inflation, cfg.NumYears)

	failureYears := FailureYears(portfolioOut.AnnualValues)
	var depletedYears []float64
	for _, y := range failureYears {
		if y <= cfg.NumYears {
			depletedYears = append(depletedYears, float64(y))
		}
	}
	medianFailure := 0.0
	if len(depletedYears) > 0 {
		medianFailure = Median(depletedYears)
	}

	drawdowns := MaxDrawdowns(portfolioOut.AnnualValues)
	benchDrawdowns := MaxDrawdowns(benchOut.AnnualValues)
	annualized := AnnualizedReturns(portfolioOut.FinalValues, cfg.InitialValue, cfg.NumYears)

	goals := a.settings.Goals
	if len(goals) == 0 {
		goals = domain.DefaultGoals()
	}
	targets := make([]float64, len(goals))
	for i, g := range goals {
		targets[i] = g.InexactFloat64()
	}

	return &AnalysisResult{
		Portfolio:            a.portfolio,
		Settings:             a.settings,
		Strategy:             cfg.Strategy.Name(),
		Assets:               a.assetSummaries(),
		Fees:                 a.feeBreakdown(),
		EndingNominal:        Summarize(portfolioOut.FinalValues),
		EndingReal:           Summarize(finalReal),
		DepletionProbability: DepletionProbability(portfolioOut.FinalValues),
		DepletedPaths:        len(depletedYears),
		MedianFailureYear:    medianFailure,
		MedianMaxDrawdown:    Median(drawdowns),
		P95MaxDrawdown:       Percentile(drawdowns, 0.95),
		SharpeRatio:          SharpeRatio(annualized, riskFree),
		SortinoRatio:         SortinoRatio(annualized, riskFree),
		Goals:                GoalProbabilities(portfolioOut.FinalValues, targets),
		Benchmark: BenchmarkComparison{
			Name:              a.benchmark.Name,
			MedianNominal:     Median(benchOut.FinalValues),
			MedianReal:        Median(benchReal),
			BeatNominal:       BeatProbability(portfolioOut.FinalValues, benchOut.FinalValues),
			BeatReal:          BeatProbability(finalReal, benchReal),
			MedianMaxDrawdown: Median(benchDrawdowns),
		},
		Withdrawals:     withdrawalYears(portfolioOut.AnnualWithdrawals),
		Paths:           percentilePaths(portfolioOut.AnnualValues, inflation),
		Monthly:         monthlyPercentiles(portfolioOut.MonthlyValues, inflation),
		PortfolioOutput: portfolioOut,
		BenchmarkOutput: benchOut,
	}
}

func (a *Analyzer) assetSummaries() []AssetSummary {
	fee := a.settings.AdditionalFee.InexactFloat64()
	means := AfterFeeMeans(a.portfolio.Assets, fee)
	out := make([]AssetSummary, len(a.portfolio.Assets))
	for i, as := range a.portfolio.Assets {
		out[i] = AssetSummary{
			Ticker:         as.Ticker,
			Name:           as.Name,
			Weight:         as.Weight.InexactFloat64(),
			ExpenseRatio:   as.ExpenseRatio.InexactFloat64(),
			ArithmeticMean: as.ArithmeticMean.InexactFloat64(),
			GeometricMean:  as.GeometricMean().InexactFloat64(),
			AfterFeeMean:   means[i],
			StdDev:         as.StdDev.InexactFloat64(),
		}
	}
	return out
}

func (a *Analyzer) feeBreakdown() FeeBreakdown {
	fee := a.settings.AdditionalFee.InexactFloat64()
	weights := a.portfolio.Weights()
	net := floats.Dot(weights, AfterFeeMeans(a.portfolio.Assets, fee))
	blended := a.portfolio.BlendedExpenseRatio().InexactFloat64()
	total := blended + fee*floats.Sum(weights)
	gross := net + total
	years := float64(a.config.NumYears)
	drag := math.Pow(1+gross, years)/math.Pow(1+net, years) - 1
	return FeeBreakdown{
		BlendedExpenseRatio: blended,
		AdditionalFee:       fee,
		TotalFee:            total,
		GrossReturn:         gross,
		NetReturn:           net,
		RealReturn:          (1+net)/(1+a.config.InflationRate) - 1,
		FeeDrag:             drag,
		FeeCostOnInitial:    a.config.InitialValue * drag,
	}
}

func withdrawalYears(annual [][]float64) []WithdrawalYear {
	pcts := RowPercentiles(annual, 0.5, 0.05, 0.95)
	out := make([]WithdrawalYear, len(annual))
	for y, row := range annual {
		out[y] = WithdrawalYear{
			Year:   y + 1,
			Mean:   stat.Mean(row, nil),
			Median: pcts[y][0],
			P5:     pcts[y][1],
			P95:    pcts[y][2],
		}
	}
	return out
}

func percentilePaths(annualValues [][]float64, inflation float64) []PercentilePath {
	pcts := RowPercentiles(annualValues, 0.05, 0.25, 0.5, 0.75, 0.95)
	p5 := make([]float64, len(pcts))
	p50 := make([]float64, len(pcts))
	p95 := make([]float64, len(pcts))
	for t, p := range pcts {
		p5[t], p50[t], p95[t] = p[0], p[2], p[4]
	}
	p5Real := DeflateSeries(p5, inflation)
	p50Real := DeflateSeries(p50, inflation)
	p95Real := DeflateSeries(p95, inflation)

	out := make([]PercentilePath, len(pcts))
	for t, p := range pcts {
		out[t] = PercentilePath{
			Year:       t,
			P5Nominal:  p[0],
			P25Nominal: p[1],
			P50Nominal: p[2],
			P75Nominal: p[3],
			P95Nominal: p[4],
			P5Real:     p5Real[t],
			P50Real:    p50Real[t],
			P95Real:    p95Real[t],
		}
	}
	return out
}

// monthlyPercentiles summarizes the month-by-month history; nil when it was
// not recorded.
func monthlyPercentiles(monthlyValues [][]float64, inflation float64) []MonthlyPercentile {
	if monthlyValues == nil {
		return nil
	}
	pcts := RowPercentiles(monthlyValues, 0.05, 0.5, 0.95)
	out := make([]MonthlyPercentile, len(pcts))
	for m, p := range pcts {
		out[m] = MonthlyPercentile{
			Month:   m,
			P5:      p[0],
			P50:     p[1],
			P95:     p[2],
			P50Real: p[1] / math.Pow(1+inflation, float64(m)/monthsPerYear),
		}
	}
	return out
}
