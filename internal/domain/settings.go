package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidSettings is returned when simulation parameters are out of range.
var ErrInvalidSettings = errors.New("invalid simulation settings")

// Withdrawal strategy names accepted in configuration files and on the command line.
const (
	StrategyConstant = "constant"
	StrategyDynamic  = "dynamic"
)

// SimulationSettings holds the run parameters. Rates are decimal fractions (0.03 = 3%).
type SimulationSettings struct {
	NumPaths           int               `yaml:"num_paths" json:"num_paths"`
	NumYears           int               `yaml:"num_years" json:"num_years"`
	InitialValue       decimal.Decimal   `yaml:"initial_value" json:"initial_value"`
	WithdrawalRate     decimal.Decimal   `yaml:"withdrawal_rate" json:"withdrawal_rate"`
	WithdrawalStrategy string            `yaml:"withdrawal_strategy" json:"withdrawal_strategy"`
	DynamicFloorPct    decimal.Decimal   `yaml:"dynamic_floor_pct" json:"dynamic_floor_pct"`
	DynamicCeilingPct  decimal.Decimal   `yaml:"dynamic_ceiling_pct" json:"dynamic_ceiling_pct"`
	InflationRate      decimal.Decimal   `yaml:"inflation_rate" json:"inflation_rate"`
	AdditionalFee      decimal.Decimal   `yaml:"additional_fee" json:"additional_fee"`
	RiskFreeRate       decimal.Decimal   `yaml:"risk_free_rate" json:"risk_free_rate"`
	FatTails           bool              `yaml:"fat_tails" json:"fat_tails"`
	Seed               uint64            `yaml:"seed,omitempty" json:"seed,omitempty"`
	Goals              []decimal.Decimal `yaml:"goals,omitempty" json:"goals,omitempty"`

	// RecordMonthly keeps the full month-by-month value history in the output.
	RecordMonthly bool `yaml:"record_monthly,omitempty" json:"record_monthly,omitempty"`
}

// DefaultGoals are the ending-balance targets reported when none are configured.
func DefaultGoals() []decimal.Decimal {
	return []decimal.Decimal{
		decimal.NewFromInt(1_500_000),
		decimal.NewFromInt(2_000_000),
		decimal.NewFromInt(3_000_000),
		decimal.NewFromInt(5_000_000),
		decimal.NewFromInt(10_000_000),
	}
}

// DefaultSettings returns the stock run: 100k paths over 50 years, 3% constant-dollar withdrawals.
func DefaultSettings() SimulationSettings {
	return SimulationSettings{
		NumPaths:           100_000,
		NumYears:           50,
		InitialValue:       decimal.NewFromInt(1_000_000),
		WithdrawalRate:     decimal.NewFromFloat(0.03),
		WithdrawalStrategy: StrategyConstant,
		DynamicFloorPct:    decimal.NewFromFloat(0.025),
		DynamicCeilingPct:  decimal.NewFromFloat(0.05),
		InflationRate:      decimal.NewFromFloat(0.025),
		AdditionalFee:      decimal.Zero,
		RiskFreeRate:       decimal.NewFromFloat(0.03),
		Goals:              DefaultGoals(),
	}
}

// Validate checks the settings before any sampling takes place.
func (s *SimulationSettings) Validate() error {
	if s.NumPaths <= 0 {
		return fmt.Errorf("%w: num_paths must be positive, got %d", ErrInvalidSettings, s.NumPaths)
	}
	if s.NumYears <= 0 {
		return fmt.Errorf("%w: num_years must be positive, got %d", ErrInvalidSettings, s.NumYears)
	}
	if !s.InitialValue.IsPositive() {
		return fmt.Errorf("%w: initial_value must be positive", ErrInvalidSettings)
	}
	if s.WithdrawalRate.IsNegative() {
		return fmt.Errorf("%w: withdrawal_rate cannot be negative", ErrInvalidSettings)
	}
	if s.InflationRate.LessThanOrEqual(decimal.NewFromInt(-1)) {
		return fmt.Errorf("%w: inflation_rate must be greater than -100%%", ErrInvalidSettings)
	}
	if s.AdditionalFee.IsNegative() {
		return fmt.Errorf("%w: additional_fee cannot be negative", ErrInvalidSettings)
	}
	switch s.WithdrawalStrategy {
	case StrategyConstant:
	case StrategyDynamic:
		if s.DynamicFloorPct.IsNegative() || s.DynamicFloorPct.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%w: dynamic_floor_pct must be between 0 and 1", ErrInvalidSettings)
		}
		if s.DynamicCeilingPct.IsNegative() {
			return fmt.Errorf("%w: dynamic_ceiling_pct cannot be negative", ErrInvalidSettings)
		}
	default:
		return fmt.Errorf("%w: withdrawal_strategy must be '%s' or '%s', got %q", ErrInvalidSettings, StrategyConstant, StrategyDynamic, s.WithdrawalStrategy)
	}
	for _, g := range s.Goals {
		if g.IsNegative() {
			return fmt.Errorf("%w: goal %s cannot be negative", ErrInvalidSettings, g.String())
		}
	}
	return nil
}

// DefaultPreset is the preset used when a configuration names neither a
// preset nor a custom portfolio.
const DefaultPreset = 1

// Configuration is the root of a simulator configuration file.
// Portfolio, when present, takes precedence over Preset. A nil Preset means
// the field was absent; an explicit preset must be in range.
type Configuration struct {
	Preset     *int                 `yaml:"preset,omitempty" json:"preset,omitempty"`
	Portfolio  *PortfolioDefinition `yaml:"portfolio,omitempty" json:"portfolio,omitempty"`
	Benchmark  *Benchmark           `yaml:"benchmark,omitempty" json:"benchmark,omitempty"`
	Simulation SimulationSettings   `yaml:"simulation" json:"simulation"`
}

// ResolvePortfolio returns the custom portfolio if set, otherwise the selected preset.
func (c *Configuration) ResolvePortfolio() (*PortfolioDefinition, error) {
	if c.Portfolio != nil {
		return c.Portfolio, nil
	}
	if c.Preset == nil {
		return PresetByNumber(DefaultPreset)
	}
	return PresetByNumber(*c.Preset)
}

// ResolveBenchmark returns the configured benchmark or the S&P 500 proxy.
func (c *Configuration) ResolveBenchmark() Benchmark {
	if c.Benchmark != nil {
		return *c.Benchmark
	}
	return DefaultBenchmark()
}
