package calculation

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/rpgo/swr-montecarlo/internal/domain"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Annual returns are clipped to this band: no loss beyond 95% and no gain above 500%.
const (
	MinAnnualReturn = -0.95
	MaxAnnualReturn = 5.0
)

// FatTailDegreesOfFreedom is the Student-t shape used in fat-tail mode.
const FatTailDegreesOfFreedom = 5

// psdTolerance is how far below zero an eigenvalue may fall before a
// correlation matrix is rejected as not positive semi-definite.
const psdTolerance = 1e-8

// ReturnPath holds one sampled annual return per (year, path, asset) in a
// single dense buffer. It is written once by a ReturnGenerator and read-only afterwards.
type ReturnPath struct {
	Years  int
	Paths  int
	Assets int
	data   []float64
}

// NewReturnPath allocates a zeroed return buffer.
func NewReturnPath(years, paths, assets int) *ReturnPath {
	return &ReturnPath{
		Years:  years,
		Paths:  paths,
		Assets: assets,
		data:   make([]float64, years*paths*assets),
	}
}

func (r *ReturnPath) index(year, path, asset int) int {
	return (year*r.Paths+path)*r.Assets + asset
}

// At returns the sampled return of one asset on one path in one year.
func (r *ReturnPath) At(year, path, asset int) float64 {
	return r.data[r.index(year, path, asset)]
}

// Set stores a return; used by generators and tests building fixed scenarios.
func (r *ReturnPath) Set(year, path, asset int, v float64) {
	r.data[r.index(year, path, asset)] = v
}

// slice returns the asset returns of one (year, path) cell.
func (r *ReturnPath) slice(year, path int) []float64 {
	start := r.index(year, path, 0)
	return r.data[start : start+r.Assets]
}

// ClipReturn bounds an annual return to [MinAnnualReturn, MaxAnnualReturn].
func ClipReturn(v float64) float64 {
	return math.Min(math.Max(v, MinAnnualReturn), MaxAnnualReturn)
}

// GeometricMean converts an arithmetic mean to the volatility-adjusted compounding rate.
func GeometricMean(arithmeticMean, stdDev float64) float64 {
	return arithmeticMean - stdDev*stdDev/2
}

// AfterFeeMeans returns each asset's sampling mean: geometric mean less its
// own expense ratio and the portfolio-level additional fee.
func AfterFeeMeans(assets []domain.AssetSpec, additionalFee float64) []float64 {
	means := make([]float64, len(assets))
	for i, a := range assets {
		geo := GeometricMean(a.ArithmeticMean.InexactFloat64(), a.StdDev.InexactFloat64())
		means[i] = geo - a.ExpenseRatio.InexactFloat64() - additionalFee
	}
	return means
}

// StdDevs extracts the per-asset volatilities.
func StdDevs(assets []domain.AssetSpec) []float64 {
	sd := make([]float64, len(assets))
	for i, a := range assets {
		sd[i] = a.StdDev.InexactFloat64()
	}
	return sd
}

// CorrelationFactor returns F with F·Fᵀ equal to the correlation matrix.
// A Cholesky factor is used when the matrix is positive definite; singular
// positive semi-definite matrices (perfectly correlated assets) fall back to
// an eigen factor V·sqrt(Λ).
func CorrelationFactor(corr [][]float64) ([][]float64, error) {
	n := len(corr)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty correlation matrix", domain.ErrInvalidPortfolio)
	}
	flat := make([]float64, 0, n*n)
	for i, row := range corr {
		if len(row) != n {
			return nil, fmt.Errorf("%w: correlation row %d has %d columns, want %d", domain.ErrInvalidPortfolio, i, len(row), n)
		}
		flat = append(flat, row...)
	}
	sym := mat.NewSymDense(n, flat)

	factor := make([][]float64, n)
	for i := range factor {
		factor[i] = make([]float64, n)
	}

	var chol mat.Cholesky
	if chol.Factorize(sym) {
		var l mat.TriDense
		chol.LTo(&l)
		for i := 0; i < n; i++ {
			for j := 0; j <= i; j++ {
				factor[i][j] = l.At(i, j)
			}
		}
		return factor, nil
	}

	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return nil, fmt.Errorf("%w: correlation matrix eigen decomposition failed", domain.ErrInvalidPortfolio)
	}
	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)
	for j, v := range values {
		if v < -psdTolerance {
			return nil, fmt.Errorf("%w: correlation matrix is not positive semi-definite (eigenvalue %g)", domain.ErrInvalidPortfolio, v)
		}
		s := math.Sqrt(math.Max(v, 0))
		for i := 0; i < n; i++ {
			factor[i][j] = vectors.At(i, j) * s
		}
	}
	return factor, nil
}

// ReturnGenerator draws annual return paths from a single random source.
// Draw order is year-major, then path, then asset, so a fixed seed always
// reproduces the same paths.
type ReturnGenerator struct {
	fatTails bool
	src      rand.Source
}

// NewReturnGenerator creates a generator. fatTails selects independent
// Student-t draws instead of the correlated multivariate normal.
func NewReturnGenerator(fatTails bool, src rand.Source) *ReturnGenerator {
	return &ReturnGenerator{fatTails: fatTails, src: src}
}

// Generate samples a [years, paths, assets] return path. In normal mode
// returns are jointly normal with covariance outer(sd, sd) ⊙ corr. In fat-tail
// mode each asset is an independent t draw scaled by its sd; the correlation
// matrix is not applied.
func (g *ReturnGenerator) Generate(means, stdDevs []float64, corr [][]float64, years, paths int) (*ReturnPath, error) {
	n := len(means)
	if len(stdDevs) != n {
		return nil, fmt.Errorf("%w: %d means but %d std devs", domain.ErrInvalidPortfolio, n, len(stdDevs))
	}
	if len(corr) != n {
		return nil, fmt.Errorf("%w: correlation matrix has %d rows for %d assets", domain.ErrInvalidPortfolio, len(corr), n)
	}
	if years <= 0 || paths <= 0 {
		return nil, fmt.Errorf("%w: years and paths must be positive (got %d, %d)", domain.ErrInvalidSettings, years, paths)
	}

	out := NewReturnPath(years, paths, n)
	if g.fatTails {
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: FatTailDegreesOfFreedom, Src: g.src}
		for y := 0; y < years; y++ {
			for p := 0; p < paths; p++ {
				cell := out.slice(y, p)
				for a := range cell {
					cell[a] = ClipReturn(t.Rand()*stdDevs[a] + means[a])
				}
			}
		}
		return out, nil
	}

	factor, err := CorrelationFactor(corr)
	if err != nil {
		return nil, err
	}
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: g.src}
	z := make([]float64, n)
	for y := 0; y < years; y++ {
		for p := 0; p < paths; p++ {
			for i := range z {
				z[i] = normal.Rand()
			}
			cell := out.slice(y, p)
			for i := 0; i < n; i++ {
				var shock float64
				for j, f := range factor[i] {
					shock += f * z[j]
				}
				cell[i] = ClipReturn(means[i] + stdDevs[i]*shock)
			}
		}
	}
	return out, nil
}

// GenerateSingle samples a one-asset path with the same distribution mode
// and clipping as Generate.
func (g *ReturnGenerator) GenerateSingle(mean, stdDev float64, years, paths int) (*ReturnPath, error) {
	return g.Generate([]float64{mean}, []float64{stdDev}, [][]float64{{1}}, years, paths)
}
