package config

import (
	"fmt"
	"os"

	"github.com/rpgo/swr-montecarlo/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of simulator configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads configuration from a YAML or JSON file. Settings the
// file omits keep their domain.DefaultSettings values.
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates a configuration document.
func (ip *InputParser) Parse(data []byte) (*domain.Configuration, error) {
	config := domain.Configuration{Simulation: domain.DefaultSettings()}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateConfiguration(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// ValidateConfiguration validates the loaded configuration
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if config.Portfolio == nil && config.Preset != nil {
		if n := *config.Preset; n < 1 || n > len(domain.Presets()) {
			return fmt.Errorf("%w: preset must be between 1 and %d, got %d", domain.ErrInvalidPortfolio, len(domain.Presets()), n)
		}
	}

	portfolio, err := config.ResolvePortfolio()
	if err != nil {
		return err
	}
	if err := portfolio.Validate(); err != nil {
		return fmt.Errorf("portfolio %q: %w", portfolio.Name, err)
	}

	benchmark := config.ResolveBenchmark()
	if err := benchmark.Validate(); err != nil {
		return fmt.Errorf("benchmark %q: %w", benchmark.Name, err)
	}

	if err := config.Simulation.Validate(); err != nil {
		return err
	}

	return nil
}

// CreateExampleConfiguration creates an example configuration: the default
// settings on the three-fund preset, with an explicit seed and goals.
func (ip *InputParser) CreateExampleConfiguration() *domain.Configuration {
	settings := domain.DefaultSettings()
	settings.NumPaths = 10_000
	settings.NumYears = 40
	settings.WithdrawalRate = decimal.NewFromFloat(0.04)
	settings.Seed = 42
	bench := domain.DefaultBenchmark()
	preset := 2

	return &domain.Configuration{
		Preset:     &preset,
		Benchmark:  &bench,
		Simulation: settings,
	}
}

// SaveConfiguration writes config as YAML to filename.
func (ip *InputParser) SaveConfiguration(config *domain.Configuration, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filename, err)
	}
	return nil
}
