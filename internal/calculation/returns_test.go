package calculation

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/rpgo/swr-montecarlo/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

// column collects one asset's returns across every (year, path) cell.
func column(r *ReturnPath, asset int) []float64 {
	out := make([]float64, 0, r.Years*r.Paths)
	for y := 0; y < r.Years; y++ {
		for p := 0; p < r.Paths; p++ {
			out = append(out, r.At(y, p, asset))
		}
	}
	return out
}

func reconstruct(f [][]float64) [][]float64 {
	n := len(f)
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		for j := range out[i] {
			for k := 0; k < n; k++ {
				out[i][j] += f[i][k] * f[j][k]
			}
		}
	}
	return out
}

func TestClipReturn(t *testing.T) {
	assert.Equal(t, MinAnnualReturn, ClipReturn(-3))
	assert.Equal(t, MaxAnnualReturn, ClipReturn(12))
	assert.Equal(t, 0.07, ClipReturn(0.07))
	assert.Equal(t, MinAnnualReturn, ClipReturn(MinAnnualReturn))
}

func TestAfterFeeMeans(t *testing.T) {
	assets := []domain.AssetSpec{
		{Ticker: "A", ArithmeticMean: decimal.NewFromFloat(0.10), StdDev: decimal.NewFromFloat(0.18), ExpenseRatio: decimal.NewFromFloat(0.0003)},
		{Ticker: "B", ArithmeticMean: decimal.NewFromFloat(0.04), StdDev: decimal.Zero, ExpenseRatio: decimal.Zero},
	}
	means := AfterFeeMeans(assets, 0.01)
	assert.InDelta(t, 0.10-0.0162-0.0003-0.01, means[0], 1e-12)
	assert.InDelta(t, 0.03, means[1], 1e-12)
	assert.Equal(t, []float64{0.18, 0}, StdDevs(assets))
}

func TestCorrelationFactor(t *testing.T) {
	t.Run("positive definite", func(t *testing.T) {
		corr := [][]float64{
			{1, 0.6, -0.2},
			{0.6, 1, 0.1},
			{-0.2, 0.1, 1},
		}
		f, err := CorrelationFactor(corr)
		require.NoError(t, err)
		got := reconstruct(f)
		for i := range corr {
			for j := range corr {
				assert.InDelta(t, corr[i][j], got[i][j], 1e-9)
			}
		}
	})

	t.Run("perfectly correlated falls back to eigen factor", func(t *testing.T) {
		corr := [][]float64{{1, 1}, {1, 1}}
		f, err := CorrelationFactor(corr)
		require.NoError(t, err)
		got := reconstruct(f)
		for i := range corr {
			for j := range corr {
				assert.InDelta(t, corr[i][j], got[i][j], 1e-9)
			}
		}
	})

	t.Run("not positive semi-definite", func(t *testing.T) {
		corr := [][]float64{
			{1, 0.9, -0.9},
			{0.9, 1, 0.9},
			{-0.9, 0.9, 1},
		}
		_, err := CorrelationFactor(corr)
		assert.ErrorIs(t, err, domain.ErrInvalidPortfolio)
	})

	t.Run("ragged", func(t *testing.T) {
		_, err := CorrelationFactor([][]float64{{1, 0}, {0}})
		assert.ErrorIs(t, err, domain.ErrInvalidPortfolio)
	})
}

func TestGenerateZeroVolatilityIsDeterministic(t *testing.T) {
	g := NewReturnGenerator(false, rand.NewPCG(1, 2))
	r, err := g.Generate([]float64{0.05, 0.02}, []float64{0, 0}, [][]float64{{1, 0}, {0, 1}}, 10, 7)
	require.NoError(t, err)
	for y := 0; y < 10; y++ {
		for p := 0; p < 7; p++ {
			assert.Equal(t, 0.05, r.At(y, p, 0))
			assert.Equal(t, 0.02, r.At(y, p, 1))
		}
	}
}

func TestGenerateSameSeedReproduces(t *testing.T) {
	corr := [][]float64{{1, 0.3}, {0.3, 1}}
	for _, fat := range []bool{false, true} {
		a, err := NewReturnGenerator(fat, rand.NewPCG(42, portfolioStream)).Generate([]float64{0.07, 0.03}, []float64{0.15, 0.05}, corr, 5, 20)
		require.NoError(t, err)
		b, err := NewReturnGenerator(fat, rand.NewPCG(42, portfolioStream)).Generate([]float64{0.07, 0.03}, []float64{0.15, 0.05}, corr, 5, 20)
		require.NoError(t, err)
		assert.Equal(t, a, b, "fat tails %t", fat)

		c, err := NewReturnGenerator(fat, rand.NewPCG(42, benchmarkStream)).Generate([]float64{0.07, 0.03}, []float64{0.15, 0.05}, corr, 5, 20)
		require.NoError(t, err)
		assert.NotEqual(t, a, c, "fat tails %t", fat)
	}
}

func TestGenerateNormalMoments(t *testing.T) {
	corr := [][]float64{{1, 0.6}, {0.6, 1}}
	g := NewReturnGenerator(false, rand.NewPCG(7, portfolioStream))
	r, err := g.Generate([]float64{0.07, 0.03}, []float64{0.15, 0.05}, corr, 100, 200)
	require.NoError(t, err)

	a, b := column(r, 0), column(r, 1)
	meanA, sdA := stat.MeanStdDev(a, nil)
	meanB, sdB := stat.MeanStdDev(b, nil)
	assert.InDelta(t, 0.07, meanA, 0.005)
	assert.InDelta(t, 0.03, meanB, 0.002)
	assert.InDelta(t, 0.15, sdA, 0.005)
	assert.InDelta(t, 0.05, sdB, 0.002)
	assert.InDelta(t, 0.6, stat.Correlation(a, b, nil), 0.03)
}

func TestGenerateFatTailsIgnoresCorrelation(t *testing.T) {
	corr := [][]float64{{1, 0.95}, {0.95, 1}}
	g := NewReturnGenerator(true, rand.NewPCG(11, portfolioStream))
	r, err := g.Generate([]float64{0.07, 0.07}, []float64{0.15, 0.15}, corr, 100, 200)
	require.NoError(t, err)

	a, b := column(r, 0), column(r, 1)
	assert.InDelta(t, 0, stat.Correlation(a, b, nil), 0.05)
	// Student-t with 5 degrees of freedom has variance 5/3.
	_, sd := stat.MeanStdDev(a, nil)
	assert.InDelta(t, 0.15*math.Sqrt(5.0/3.0), sd, 0.02)
}

func TestGenerateClipsExtremes(t *testing.T) {
	for _, fat := range []bool{false, true} {
		r, err := NewReturnGenerator(fat, rand.NewPCG(3, 4)).GenerateSingle(0, 3, 50, 40)
		require.NoError(t, err)
		var sawLow, sawHigh bool
		for _, v := range column(r, 0) {
			require.GreaterOrEqual(t, v, MinAnnualReturn)
			require.LessOrEqual(t, v, MaxAnnualReturn)
			sawLow = sawLow || v == MinAnnualReturn
			sawHigh = sawHigh || v == MaxAnnualReturn
		}
		assert.True(t, sawLow, "fat tails %t: expected clipped losses", fat)
		assert.True(t, sawHigh, "fat tails %t: expected clipped gains", fat)
	}
}

func TestGenerateRejectsBadShapes(t *testing.T) {
	g := NewReturnGenerator(false, rand.NewPCG(1, 1))
	_, err := g.Generate([]float64{0.1}, []float64{0.1, 0.2}, [][]float64{{1}}, 1, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidPortfolio)

	_, err = g.Generate([]float64{0.1}, []float64{0.1}, [][]float64{{1}}, 0, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidSettings)
}
