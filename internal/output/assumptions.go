package output

import (
	"fmt"

	"github.com/rpgo/swr-montecarlo/internal/calculation"
	"github.com/rpgo/swr-montecarlo/internal/domain"
	money "github.com/rpgo/swr-montecarlo/pkg/decimal"
)

// DefaultAssumptions lists the modelling conventions every run shares.
var DefaultAssumptions = []string{
	"Timing: returns applied first, withdrawals at the end of each month",
	"Rebalancing: annual rebalancing to target weights",
	"Return type: geometric means (volatility-adjusted), net of fees",
	fmt.Sprintf("Annual returns clipped to [%.0f%%, +%.0f%%]", calculation.MinAnnualReturn*100, calculation.MaxAnnualReturn*100),
}

// GenerateAssumptions describes the withdrawal rule and return distribution
// actually used for a run, followed by DefaultAssumptions.
func GenerateAssumptions(result *calculation.AnalysisResult) []string {
	s := result.Settings
	rate := s.WithdrawalRate.InexactFloat64()
	inflation := s.InflationRate.InexactFloat64()
	firstYear := money.NewMoneyFromDecimal(s.InitialValue.Mul(s.WithdrawalRate))

	var lines []string
	switch result.Strategy {
	case domain.StrategyDynamic:
		lines = append(lines,
			"Withdrawal strategy: Dynamic Spending",
			fmt.Sprintf("  - Target rate: %s of portfolio balance", FormatPercentage(rate, 1)),
			fmt.Sprintf("  - Floor: -%s below inflation-adjusted prior year", FormatPercentage(s.DynamicFloorPct.InexactFloat64(), 1)),
			fmt.Sprintf("  - Ceiling: +%s above inflation-adjusted prior year", FormatPercentage(s.DynamicCeilingPct.InexactFloat64(), 1)),
		)
	default:
		lines = append(lines,
			"Withdrawal strategy: Constant Dollar",
			fmt.Sprintf("  - Year 1: %s total (%s of initial)", firstYear.Format(), FormatPercentage(rate, 1)),
			fmt.Sprintf("  - Monthly: %s", firstYear.Monthly().FormatCents()),
			fmt.Sprintf("  - Year 2+: inflation-adjusted (%s annual)", FormatPercentage(inflation, 1)),
		)
	}

	if s.FatTails {
		lines = append(lines, fmt.Sprintf("Distribution: Student t (df=%d), fat tails, assets uncorrelated", calculation.FatTailDegreesOfFreedom))
	} else {
		lines = append(lines, "Distribution: correlated multivariate normal")
	}
	return append(lines, DefaultAssumptions...)
}
