package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func asset(ticker string, mean, sd, weight, er float64, name string) AssetSpec {
	return AssetSpec{
		Ticker:         ticker,
		Name:           name,
		ArithmeticMean: decimal.NewFromFloat(mean),
		StdDev:         decimal.NewFromFloat(sd),
		Weight:         decimal.NewFromFloat(weight),
		ExpenseRatio:   decimal.NewFromFloat(er),
	}
}

// Presets returns the built-in portfolios, numbered from 1.
func Presets() []PortfolioDefinition {
	return []PortfolioDefinition{
		{
			Name:        "Dividend-Focused Portfolio",
			Description: "Heavy dividend tilt with growth and treasuries",
			Assets: []AssetSpec{
				asset("VTI", 0.10, 0.17, 0.35, 0.0003, "Vanguard Total Stock Market"),
				asset("SCHG", 0.105, 0.18, 0.15, 0.0004, "Schwab US Large-Cap Growth"),
				asset("SCHD", 0.115, 0.17, 0.30, 0.0006, "Schwab US Dividend Equity"),
				asset("SGOV", 0.04, 0.02, 0.20, 0.0009, "iShares 0-3 Month Treasury"),
			},
			Correlation: [][]float64{
				{1.00, 0.90, 0.80, 0.10},
				{0.90, 1.00, 0.70, 0.10},
				{0.80, 0.70, 1.00, 0.15},
				{0.10, 0.10, 0.15, 1.00},
			},
		},
		{
			Name:        "Classic Three-Fund Bogleheads",
			Description: "The ultimate simple, diversified portfolio",
			Assets: []AssetSpec{
				asset("VTI", 0.10, 0.17, 0.54, 0.0003, "Vanguard Total Stock Market"),
				asset("VXUS", 0.08, 0.18, 0.26, 0.0007, "Vanguard Total International Stock"),
				asset("BND", 0.04, 0.03, 0.20, 0.0003, "Vanguard Total Bond Market"),
			},
			Correlation: [][]float64{
				{1.00, 0.85, 0.15},
				{0.85, 1.00, 0.10},
				{0.15, 0.10, 1.00},
			},
		},
		{
			Name:        "Golden Butterfly (All-Weather)",
			Description: "Designed for all market conditions with gold",
			Assets: []AssetSpec{
				asset("VTI", 0.10, 0.17, 0.30, 0.0003, "Vanguard Total Stock Market"),
				asset("VXUS", 0.08, 0.18, 0.10, 0.0007, "Vanguard Total International"),
				asset("SHY", 0.025, 0.01, 0.20, 0.0015, "iShares 1-3 Year Treasury"),
				asset("TLT", 0.05, 0.12, 0.20, 0.0015, "iShares 20+ Year Treasury"),
				asset("GLD", 0.045, 0.16, 0.20, 0.0040, "SPDR Gold Trust"),
			},
			Correlation: [][]float64{
				{1.00, 0.85, 0.10, -0.05, 0.00},
				{0.85, 1.00, 0.10, -0.05, 0.00},
				{0.10, 0.10, 1.00, 0.40, 0.05},
				{-0.05, -0.05, 0.40, 1.00, 0.10},
				{0.00, 0.00, 0.05, 0.10, 1.00},
			},
		},
		{
			Name:        "Modern Bogleheads (TIPS & REITs)",
			Description: "Enhanced diversification with inflation protection",
			Assets: []AssetSpec{
				asset("VTI", 0.10, 0.17, 0.40, 0.0003, "Vanguard Total Stock Market"),
				asset("VXUS", 0.08, 0.18, 0.20, 0.0007, "Vanguard Total International"),
				asset("VNQ", 0.09, 0.20, 0.10, 0.0012, "Vanguard Real Estate ETF"),
				asset("VTIP", 0.03, 0.03, 0.15, 0.0004, "Vanguard Short-Term TIPS"),
				asset("BND", 0.04, 0.03, 0.15, 0.0003, "Vanguard Total Bond Market"),
			},
			Correlation: [][]float64{
				{1.00, 0.85, 0.75, 0.10, 0.15},
				{0.85, 1.00, 0.70, 0.10, 0.10},
				{0.75, 0.70, 1.00, 0.20, 0.20},
				{0.10, 0.10, 0.20, 1.00, 0.70},
				{0.15, 0.10, 0.20, 0.70, 1.00},
			},
		},
	}
}

// PresetByNumber returns preset n (1-based).
func PresetByNumber(n int) (*PortfolioDefinition, error) {
	presets := Presets()
	if n < 1 || n > len(presets) {
		return nil, fmt.Errorf("%w: preset must be between 1 and %d, got %d", ErrInvalidPortfolio, len(presets), n)
	}
	p := presets[n-1]
	return &p, nil
}
