package calculation

import (
	"fmt"
	"math"

	"github.com/rpgo/swr-montecarlo/internal/domain"
)

// SpendingInput is what a withdrawal strategy sees when it sets a path's
// spending for the coming year.
type SpendingInput struct {
	YearIndex      int     // 0-based simulation year
	PortfolioValue float64 // path value after the first month's returns
	PriorSpending  float64 // last year's annual target for this path
	InitialValue   float64
	WithdrawalRate float64
	InflationRate  float64
}

// WithdrawalStrategy computes a path's annual withdrawal target. The set of
// strategies is closed: ConstantDollar and DynamicSpending.
type WithdrawalStrategy interface {
	Name() string
	AnnualTarget(in SpendingInput) float64
	sealed()
}

// ConstantDollar withdraws a fixed share of the initial value, escalated by
// inflation every year regardless of portfolio performance.
type ConstantDollar struct{}

func (ConstantDollar) Name() string { return domain.StrategyConstant }

func (ConstantDollar) AnnualTarget(in SpendingInput) float64 {
	return in.InitialValue * in.WithdrawalRate * math.Pow(1+in.InflationRate, float64(in.YearIndex))
}

func (ConstantDollar) sealed() {}

// DynamicSpending recomputes spending from the current balance each year and
// bounds the change relative to the inflation-adjusted prior year.
type DynamicSpending struct {
	FloorPct   float64
	CeilingPct float64
}

func (DynamicSpending) Name() string { return domain.StrategyDynamic }

// Bounds returns the allowed spending band around last year's spending.
func (d DynamicSpending) Bounds(priorSpending, inflationRate float64) (floor, ceiling float64) {
	adjusted := priorSpending * (1 + inflationRate)
	return adjusted * (1 - d.FloorPct), adjusted * (1 + d.CeilingPct)
}

func (d DynamicSpending) AnnualTarget(in SpendingInput) float64 {
	raw := in.PortfolioValue * in.WithdrawalRate
	if in.YearIndex == 0 {
		return raw
	}
	floor, ceiling := d.Bounds(in.PriorSpending, in.InflationRate)
	switch {
	case raw < floor:
		return floor
	case raw > ceiling:
		return ceiling
	default:
		return raw
	}
}

func (DynamicSpending) sealed() {}

// ParseWithdrawalStrategy resolves a configured strategy name once, up front.
func ParseWithdrawalStrategy(name string, floorPct, ceilingPct float64) (WithdrawalStrategy, error) {
	switch name {
	case domain.StrategyConstant:
		return ConstantDollar{}, nil
	case domain.StrategyDynamic:
		if floorPct < 0 || floorPct > 1 {
			return nil, fmt.Errorf("%w: dynamic floor %.4f outside [0,1]", domain.ErrInvalidSettings, floorPct)
		}
		if ceilingPct < 0 {
			return nil, fmt.Errorf("%w: dynamic ceiling %.4f cannot be negative", domain.ErrInvalidSettings, ceilingPct)
		}
		return DynamicSpending{FloorPct: floorPct, CeilingPct: ceilingPct}, nil
	default:
		return nil, fmt.Errorf("%w: unknown withdrawal strategy %q", domain.ErrInvalidSettings, name)
	}
}
