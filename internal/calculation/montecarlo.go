package calculation

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/rpgo/swr-montecarlo/internal/domain"
)

// DepletionThreshold is the balance below which a path counts as depleted.
const DepletionThreshold = 1.0

const monthsPerYear = 12

// EngineConfig is the immutable numeric view of SimulationSettings the engine
// runs on. Build it with NewEngineConfig.
type EngineConfig struct {
	NumPaths       int
	NumYears       int
	InitialValue   float64
	WithdrawalRate float64
	InflationRate  float64
	Strategy       WithdrawalStrategy
	RecordMonthly  bool
}

// NewEngineConfig validates settings and resolves the withdrawal strategy.
func NewEngineConfig(s domain.SimulationSettings) (EngineConfig, error) {
	if err := s.Validate(); err != nil {
		return EngineConfig{}, err
	}
	strategy, err := ParseWithdrawalStrategy(s.WithdrawalStrategy, s.DynamicFloorPct.InexactFloat64(), s.DynamicCeilingPct.InexactFloat64())
	if err != nil {
		return EngineConfig{}, err
	}
	return EngineConfig{
		NumPaths:       s.NumPaths,
		NumYears:       s.NumYears,
		InitialValue:   s.InitialValue.InexactFloat64(),
		WithdrawalRate: s.WithdrawalRate.InexactFloat64(),
		InflationRate:  s.InflationRate.InexactFloat64(),
		Strategy:       strategy,
		RecordMonthly:  s.RecordMonthly,
	}, nil
}

// SimulationOutput is the per-path history of one engine run.
type SimulationOutput struct {
	// FinalValues[path] is the portfolio value after the last month.
	FinalValues []float64 `json:"final_values"`
	// AnnualWithdrawals[year][path] sums the twelve monthly withdrawals.
	AnnualWithdrawals [][]float64 `json:"annual_withdrawals"`
	// AnnualValues[year][path] is the end-of-year value; row 0 is the initial value.
	AnnualValues [][]float64 `json:"annual_values"`
	// MonthlyValues[month][path] is only filled when RecordMonthly is set; row 0 is the initial value.
	MonthlyValues [][]float64 `json:"monthly_values,omitempty"`
}

func newSimulationOutput(cfg EngineConfig) *SimulationOutput {
	out := &SimulationOutput{
		FinalValues:       make([]float64, cfg.NumPaths),
		AnnualWithdrawals: newMatrix(cfg.NumYears, cfg.NumPaths),
		AnnualValues:      newMatrix(cfg.NumYears+1, cfg.NumPaths),
	}
	for p := range out.AnnualValues[0] {
		out.AnnualValues[0][p] = cfg.InitialValue
	}
	if cfg.RecordMonthly {
		out.MonthlyValues = newMatrix(cfg.NumYears*monthsPerYear+1, cfg.NumPaths)
		for p := range out.MonthlyValues[0] {
			out.MonthlyValues[0][p] = cfg.InitialValue
		}
	}
	return out
}

func newMatrix(rows, cols int) [][]float64 {
	backing := make([]float64, rows*cols)
	m := make([][]float64, rows)
	for i := range m {
		m[i] = backing[i*cols : (i+1)*cols : (i+1)*cols]
	}
	return m
}

// MonteCarloEngine advances every simulated path month by month: returns,
// withdrawal, and December rebalancing to target weights.
type MonteCarloEngine struct {
	config  EngineConfig
	workers int
	logger  Logger
}

// NewMonteCarloEngine creates an engine for one immutable configuration.
func NewMonteCarloEngine(config EngineConfig) *MonteCarloEngine {
	return &MonteCarloEngine{
		config:  config,
		workers: runtime.GOMAXPROCS(0),
		logger:  NopLogger{},
	}
}

// SetLogger sets the engine logger. If nil is provided, a no-op logger is used.
func (e *MonteCarloEngine) SetLogger(l Logger) { e.logger = loggerOrNop(l) }

// SetWorkers bounds the number of goroutines evolving paths concurrently.
func (e *MonteCarloEngine) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	e.workers = n
}

// Simulate evolves every path over NumYears*12 months using the given target
// weights and sampled returns. Paths are independent and processed in chunks
// by a bounded pool of goroutines; each goroutine owns its paths' slice of the
// holdings buffer.
func (e *MonteCarloEngine) Simulate(ctx context.Context, weights []float64, returns *ReturnPath) (*SimulationOutput, error) {
	cfg := e.config
	if cfg.Strategy == nil {
		return nil, fmt.Errorf("%w: no withdrawal strategy configured", domain.ErrInvalidSettings)
	}
	if returns == nil {
		return nil, fmt.Errorf("%w: no return path supplied", domain.ErrInvalidSettings)
	}
	if len(weights) != returns.Assets {
		return nil, fmt.Errorf("%w: %d weights for %d assets", domain.ErrInvalidPortfolio, len(weights), returns.Assets)
	}
	if returns.Paths != cfg.NumPaths || returns.Years < cfg.NumYears {
		return nil, fmt.Errorf("%w: return path is %d years x %d paths, need %d x %d",
			domain.ErrInvalidSettings, returns.Years, returns.Paths, cfg.NumYears, cfg.NumPaths)
	}

	out := newSimulationOutput(cfg)
	nAssets := len(weights)
	holdings := make([]float64, cfg.NumPaths*nAssets)

	chunk := cfg.NumPaths / (e.workers * 4)
	if chunk < 1 {
		chunk = 1
	}
	e.logger.Debugf("simulating %d paths x %d years over %d assets (%d workers, chunk %d)",
		cfg.NumPaths, cfg.NumYears, nAssets, e.workers, chunk)

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, e.workers)
dispatch:
	for lo := 0; lo < cfg.NumPaths; lo += chunk {
		hi := min(lo+chunk, cfg.NumPaths)
		select {
		case <-ctx.Done():
			break dispatch
		case semaphore <- struct{}{}:
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			defer func() { <-semaphore }()
			growth := make([]float64, nAssets)
			for p := lo; p < hi; p++ {
				e.evolvePath(p, holdings[p*nAssets:(p+1)*nAssets], growth, weights, returns, out)
			}
		}(lo, hi)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("simulation cancelled: %w", err)
	}
	return out, nil
}

// evolvePath runs the month loop for a single path. holdings and growth are
// scratch buffers owned by the caller's goroutine.
func (e *MonteCarloEngine) evolvePath(p int, holdings, growth, weights []float64, returns *ReturnPath, out *SimulationOutput) {
	cfg := e.config
	for a, w := range weights {
		holdings[a] = cfg.InitialValue * w
	}

	spending := SpendingInput{
		PriorSpending:  cfg.InitialValue * cfg.WithdrawalRate,
		InitialValue:   cfg.InitialValue,
		WithdrawalRate: cfg.WithdrawalRate,
		InflationRate:  cfg.InflationRate,
	}
	var annualTarget float64
	value := cfg.InitialValue

	months := cfg.NumYears * monthsPerYear
	for month := 0; month < months; month++ {
		year := month / monthsPerYear
		monthInYear := month % monthsPerYear

		if monthInYear == 0 {
			for a, r := range returns.slice(year, p) {
				growth[a] = 1 + (math.Pow(1+r, 1.0/monthsPerYear) - 1)
			}
		}

		value = 0
		for a := range holdings {
			holdings[a] *= growth[a]
			value += holdings[a]
		}

		if monthInYear == 0 {
			spending.YearIndex = year
			spending.PortfolioValue = value
			annualTarget = cfg.Strategy.AnnualTarget(spending)
			spending.PriorSpending = annualTarget
		}

		withdrawal := math.Min(annualTarget/monthsPerYear, value)
		if withdrawal < 0 {
			withdrawal = 0
		}
		out.AnnualWithdrawals[year][p] += withdrawal

		if withdrawal >= value {
			// Drifted holdings would otherwise leave a clamped residual behind.
			clear(holdings)
			value = 0
		} else {
			value = 0
			for a, w := range weights {
				holdings[a] -= withdrawal * w
				if holdings[a] < 0 {
					holdings[a] = 0
				}
				value += holdings[a]
			}
		}

		if monthInYear == monthsPerYear-1 {
			if value > 0 {
				rebalance(holdings, weights, value)
			}
			out.AnnualValues[year+1][p] = value
		}
		if out.MonthlyValues != nil {
			out.MonthlyValues[month+1][p] = value
		}
	}
	out.FinalValues[p] = value
}

// rebalance resets holdings to total*weight for every asset.
func rebalance(holdings, weights []float64, total float64) {
	for a, w := range weights {
		holdings[a] = total * w
	}
}
