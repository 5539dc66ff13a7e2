package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetsAreValid(t *testing.T) {
	for i, p := range Presets() {
		p := p
		t.Run(p.Name, func(t *testing.T) {
			require.NoError(t, p.Validate(), "preset %d", i+1)
			assert.NotEmpty(t, p.Description)
		})
	}
}

func TestPresetByNumber(t *testing.T) {
	p, err := PresetByNumber(2)
	require.NoError(t, err)
	assert.Equal(t, "Classic Three-Fund Bogleheads", p.Name)
	assert.Equal(t, []string{"VTI", "VXUS", "BND"}, p.Tickers())

	_, err = PresetByNumber(0)
	assert.ErrorIs(t, err, ErrInvalidPortfolio)
	_, err = PresetByNumber(5)
	assert.ErrorIs(t, err, ErrInvalidPortfolio)
}

func TestGeometricMean(t *testing.T) {
	a := AssetSpec{ArithmeticMean: decimal.NewFromFloat(0.10), StdDev: decimal.NewFromFloat(0.16)}
	assert.True(t, a.GeometricMean().Equal(decimal.NewFromFloat(0.0872)), "got %s", a.GeometricMean())
}

func TestBlendedExpenseRatio(t *testing.T) {
	p, err := PresetByNumber(2)
	require.NoError(t, err)
	// 0.54*0.0003 + 0.26*0.0007 + 0.20*0.0003
	assert.True(t, p.BlendedExpenseRatio().Equal(decimal.NewFromFloat(0.000404)), "got %s", p.BlendedExpenseRatio())
}

func validTwoAsset() PortfolioDefinition {
	return PortfolioDefinition{
		Name: "two",
		Assets: []AssetSpec{
			{Ticker: "A", ArithmeticMean: decimal.NewFromFloat(0.08), StdDev: decimal.NewFromFloat(0.15), Weight: decimal.NewFromFloat(0.6)},
			{Ticker: "B", ArithmeticMean: decimal.NewFromFloat(0.04), StdDev: decimal.NewFromFloat(0.05), Weight: decimal.NewFromFloat(0.4)},
		},
		Correlation: [][]float64{{1, 0.2}, {0.2, 1}},
	}
}

func TestPortfolioValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *PortfolioDefinition)
		errMsg string
	}{
		{"valid", func(p *PortfolioDefinition) {}, ""},
		{"no assets", func(p *PortfolioDefinition) { p.Assets = nil; p.Correlation = nil }, "no assets"},
		{"weights do not sum to one", func(p *PortfolioDefinition) { p.Assets[0].Weight = decimal.NewFromFloat(0.5) }, "weights sum"},
		{"negative weight", func(p *PortfolioDefinition) {
			p.Assets[0].Weight = decimal.NewFromFloat(1.4)
			p.Assets[1].Weight = decimal.NewFromFloat(-0.4)
		}, "weight cannot be negative"},
		{"negative std dev", func(p *PortfolioDefinition) { p.Assets[1].StdDev = decimal.NewFromFloat(-0.1) }, "std_dev"},
		{"matrix too small", func(p *PortfolioDefinition) { p.Correlation = [][]float64{{1}} }, "1 rows for 2 assets"},
		{"ragged matrix", func(p *PortfolioDefinition) { p.Correlation[1] = []float64{0.2} }, "columns"},
		{"non-unit diagonal", func(p *PortfolioDefinition) { p.Correlation[1][1] = 0.9 }, "diagonal"},
		{"out of range", func(p *PortfolioDefinition) { p.Correlation[0][1], p.Correlation[1][0] = 1.2, 1.2 }, "outside [-1,1]"},
		{"asymmetric", func(p *PortfolioDefinition) { p.Correlation[0][1] = 0.3 }, "not symmetric"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validTwoAsset()
			tt.mutate(&p)
			err := p.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidPortfolio)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *SimulationSettings)
		ok     bool
	}{
		{"defaults", func(s *SimulationSettings) {}, true},
		{"dynamic", func(s *SimulationSettings) { s.WithdrawalStrategy = StrategyDynamic }, true},
		{"zero paths", func(s *SimulationSettings) { s.NumPaths = 0 }, false},
		{"negative years", func(s *SimulationSettings) { s.NumYears = -1 }, false},
		{"zero initial", func(s *SimulationSettings) { s.InitialValue = decimal.Zero }, false},
		{"negative rate", func(s *SimulationSettings) { s.WithdrawalRate = decimal.NewFromFloat(-0.01) }, false},
		{"unknown strategy", func(s *SimulationSettings) { s.WithdrawalStrategy = "guardrails" }, false},
		{"floor above one", func(s *SimulationSettings) {
			s.WithdrawalStrategy = StrategyDynamic
			s.DynamicFloorPct = decimal.NewFromFloat(1.5)
		}, false},
		{"deflation beyond -100%", func(s *SimulationSettings) { s.InflationRate = decimal.NewFromInt(-1) }, false},
		{"negative goal", func(s *SimulationSettings) { s.Goals = []decimal.Decimal{decimal.NewFromInt(-5)} }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidSettings)
			}
		})
	}
}

func TestConfigurationResolve(t *testing.T) {
	three := 3
	cfg := Configuration{Preset: &three}
	p, err := cfg.ResolvePortfolio()
	require.NoError(t, err)
	assert.Equal(t, "Golden Butterfly (All-Weather)", p.Name)

	custom := validTwoAsset()
	cfg.Portfolio = &custom
	p, err = cfg.ResolvePortfolio()
	require.NoError(t, err)
	assert.Equal(t, "two", p.Name)

	assert.Equal(t, "S&P 500", cfg.ResolveBenchmark().Name)

	empty := Configuration{}
	p, err = empty.ResolvePortfolio()
	require.NoError(t, err)
	assert.Equal(t, "Dividend-Focused Portfolio", p.Name)

	zero := 0
	explicitZero := Configuration{Preset: &zero}
	_, err = explicitZero.ResolvePortfolio()
	assert.ErrorIs(t, err, ErrInvalidPortfolio)
}
