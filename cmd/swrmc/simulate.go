package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rpgo/swr-montecarlo/internal/calculation"
	"github.com/rpgo/swr-montecarlo/internal/config"
	"github.com/rpgo/swr-montecarlo/internal/domain"
	"github.com/rpgo/swr-montecarlo/internal/output"
	money "github.com/rpgo/swr-montecarlo/pkg/decimal"
)

type simulateOptions struct {
	configFile     string
	preset         int
	withdrawalRate float64
	strategy       string
	dynamicFloor   float64
	dynamicCeiling float64
	years          int
	initial        float64
	simulations    int
	fatTails       bool
	recordMonthly  bool
	advisorFee     float64
	inflation      float64
	seed           uint64
	workers        int
	format         string
	outputDir      string
	verbose        bool
}

func newSimulateCmd() *cobra.Command {
	opts := &simulateOptions{}
	defaults := domain.DefaultSettings()

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the Monte Carlo simulation",
		Long: `Run the Monte Carlo simulation for a preset or configured portfolio.

Settings come from --config when given; any flag set explicitly overrides the
file. Percent flags take percentages (4 means 4%).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configFile, "config", "c", "", "YAML configuration file")
	f.IntVarP(&opts.preset, "portfolio", "p", 1, fmt.Sprintf("preset portfolio (1-%d)", len(domain.Presets())))
	f.Float64VarP(&opts.withdrawalRate, "withdrawal-rate", "w", money.RateToPercent(defaults.WithdrawalRate).InexactFloat64(), "initial withdrawal rate in percent")
	f.StringVar(&opts.strategy, "withdrawal-strategy", defaults.WithdrawalStrategy, "withdrawal strategy: constant or dynamic")
	f.Float64Var(&opts.dynamicFloor, "dynamic-floor", money.RateToPercent(defaults.DynamicFloorPct).InexactFloat64(), "dynamic spending floor in percent below last year's inflation-adjusted withdrawal")
	f.Float64Var(&opts.dynamicCeiling, "dynamic-ceiling", money.RateToPercent(defaults.DynamicCeilingPct).InexactFloat64(), "dynamic spending ceiling in percent above last year's inflation-adjusted withdrawal")
	f.IntVarP(&opts.years, "years", "y", defaults.NumYears, "simulation horizon in years")
	f.Float64Var(&opts.initial, "initial", defaults.InitialValue.InexactFloat64(), "initial portfolio value")
	f.IntVarP(&opts.simulations, "simulations", "n", defaults.NumPaths, "number of simulated paths")
	f.BoolVar(&opts.fatTails, "fat-tails", false, "sample Student-t returns instead of correlated normals")
	f.BoolVar(&opts.recordMonthly, "record-monthly", false, "keep month-by-month values and export their percentiles")
	f.Float64Var(&opts.advisorFee, "advisor-fee", 0, "additional annual fee in percent")
	f.Float64Var(&opts.inflation, "inflation", money.RateToPercent(defaults.InflationRate).InexactFloat64(), "annual inflation in percent")
	f.Uint64Var(&opts.seed, "seed", 0, "random seed (0 derives one from the clock)")
	f.IntVar(&opts.workers, "workers", 0, "simulation worker count (0 uses GOMAXPROCS)")
	f.StringVarP(&opts.format, "format", "f", "console", fmt.Sprintf("report format: %v", output.AvailableFormatterNames()))
	f.StringVarP(&opts.outputDir, "output-dir", "o", "", "write every report and the CSV exports to this directory")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log simulation progress")

	return cmd
}

func runSimulate(cmd *cobra.Command, opts *simulateOptions) error {
	log := newLogger(cmd.ErrOrStderr(), opts.verbose)

	cfg, err := loadConfiguration(cmd, opts)
	if err != nil {
		return err
	}
	portfolio, err := cfg.ResolvePortfolio()
	if err != nil {
		return err
	}

	analyzer, err := calculation.NewAnalyzer(portfolio, cfg.ResolveBenchmark(), cfg.Simulation)
	if err != nil {
		return err
	}
	analyzer.SetLogger(engineLogger{log: log})
	analyzer.SetWorkers(opts.workers)

	result, err := analyzer.Run(cmd.Context())
	if err != nil {
		return err
	}

	if err := output.RenderReport(cmd.OutOrStdout(), result, opts.format); err != nil {
		return err
	}

	if opts.outputDir != "" {
		paths, err := output.GenerateReport(result, "all", opts.outputDir)
		if err != nil {
			return fmt.Errorf("failed to write reports: %w", err)
		}
		for _, p := range paths {
			log.Info().Str("path", p).Msg("report written")
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d files to %s\n", len(paths), opts.outputDir)
	}
	return nil
}

// loadConfiguration reads --config when given, then applies every flag the
// user set explicitly, and validates the result.
func loadConfiguration(cmd *cobra.Command, opts *simulateOptions) (*domain.Configuration, error) {
	parser := config.NewInputParser()

	cfg := &domain.Configuration{Simulation: domain.DefaultSettings()}
	if opts.configFile != "" {
		loaded, err := parser.LoadFromFile(opts.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	applyFlags(cmd, opts, cfg)

	if err := parser.ValidateConfiguration(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, opts *simulateOptions, cfg *domain.Configuration) {
	changed := cmd.Flags().Changed
	s := &cfg.Simulation

	if changed("portfolio") {
		preset := opts.preset
		cfg.Preset = &preset
		cfg.Portfolio = nil
	}
	if changed("withdrawal-rate") {
		s.WithdrawalRate = money.PercentToRate(opts.withdrawalRate)
	}
	if changed("withdrawal-strategy") {
		s.WithdrawalStrategy = opts.strategy
	}
	if changed("dynamic-floor") {
		s.DynamicFloorPct = money.PercentToRate(opts.dynamicFloor)
	}
	if changed("dynamic-ceiling") {
		s.DynamicCeilingPct = money.PercentToRate(opts.dynamicCeiling)
	}
	if changed("years") {
		s.NumYears = opts.years
	}
	if changed("initial") {
		s.InitialValue = decimal.NewFromFloat(opts.initial)
	}
	if changed("simulations") {
		s.NumPaths = opts.simulations
	}
	if changed("fat-tails") {
		s.FatTails = opts.fatTails
	}
	if changed("record-monthly") {
		s.RecordMonthly = opts.recordMonthly
	}
	if changed("advisor-fee") {
		s.AdditionalFee = money.PercentToRate(opts.advisorFee)
	}
	if changed("inflation") {
		s.InflationRate = money.PercentToRate(opts.inflation)
	}
	if changed("seed") {
		s.Seed = opts.seed
	}
}
