package calculation

import (
	"math"
	"testing"

	"github.com/rpgo/swr-montecarlo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantDollarEscalatesWithInflation(t *testing.T) {
	s := ConstantDollar{}
	in := SpendingInput{InitialValue: 1_000_000, WithdrawalRate: 0.04, InflationRate: 0.03}

	for year := 0; year < 30; year++ {
		in.YearIndex = year
		// Portfolio value and prior spending must not matter.
		in.PortfolioValue = float64(year) * 12345
		in.PriorSpending = 1
		want := 40_000 * math.Pow(1.03, float64(year))
		assert.InDelta(t, want, s.AnnualTarget(in), 1e-6, "year %d", year)
	}
	assert.Equal(t, domain.StrategyConstant, s.Name())
}

func TestDynamicSpendingFirstYearUsesCurrentValue(t *testing.T) {
	d := DynamicSpending{FloorPct: 0.025, CeilingPct: 0.05}
	in := SpendingInput{
		YearIndex:      0,
		PortfolioValue: 950_000,
		PriorSpending:  1, // ignored in year 0
		InitialValue:   1_000_000,
		WithdrawalRate: 0.04,
		InflationRate:  0.025,
	}
	assert.InDelta(t, 38_000, d.AnnualTarget(in), 1e-9)
}

func TestDynamicSpendingBand(t *testing.T) {
	d := DynamicSpending{FloorPct: 0.025, CeilingPct: 0.05}
	prior := 40_000.0
	floor, ceiling := d.Bounds(prior, 0.02)
	require.InDelta(t, 40_000*1.02*0.975, floor, 1e-9)
	require.InDelta(t, 40_000*1.02*1.05, ceiling, 1e-9)

	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{name: "inside band passes through", value: 1_030_000, want: 41_200},
		{name: "crash clamps to floor", value: 500_000, want: floor},
		{name: "boom clamps to ceiling", value: 2_000_000, want: ceiling},
		{name: "exactly at floor", value: floor / 0.04, want: floor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.AnnualTarget(SpendingInput{
				YearIndex:      3,
				PortfolioValue: tt.value,
				PriorSpending:  prior,
				WithdrawalRate: 0.04,
				InflationRate:  0.02,
			})
			assert.InDelta(t, tt.want, got, 1e-6)
			assert.GreaterOrEqual(t, got, floor-1e-9)
			assert.LessOrEqual(t, got, ceiling+1e-9)
		})
	}
}

func TestParseWithdrawalStrategy(t *testing.T) {
	s, err := ParseWithdrawalStrategy("constant", 0, 0)
	require.NoError(t, err)
	assert.IsType(t, ConstantDollar{}, s)

	s, err = ParseWithdrawalStrategy("dynamic", 0.03, 0.06)
	require.NoError(t, err)
	assert.Equal(t, DynamicSpending{FloorPct: 0.03, CeilingPct: 0.06}, s)

	for _, bad := range []struct {
		name           string
		floor, ceiling float64
	}{
		{"guardrails", 0.02, 0.05},
		{"dynamic", -0.1, 0.05},
		{"dynamic", 1.5, 0.05},
		{"dynamic", 0.02, -0.05},
	} {
		_, err := ParseWithdrawalStrategy(bad.name, bad.floor, bad.ceiling)
		assert.ErrorIs(t, err, domain.ErrInvalidSettings, "%+v", bad)
	}
}
