// Package config provides configuration loading and management for skelrefine.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores specifies how many goroutines refine spokes within a stage
		NumCores int `yaml:"numCores"`

		// NumUnits bounds how many units of work a batch runs at once
		NumUnits int `yaml:"numUnits"`

		// RestoreOrder sorts merged ordinary-subfield output by original index
		RestoreOrder bool `yaml:"restoreOrder"`
	} `yaml:"processing"`

	// Tolerances used by the refiners
	Tolerances Tolerances `yaml:"tolerances"`

	// Limits holds the iteration caps and fixed geometric constants
	Limits Limits `yaml:"limits"`

	// Crest is the crest-spoke correspondence table, 1-based as authored
	Crest CrestTable `yaml:"crest"`

	// Subfields lists the subfields processed per timepoint
	Subfields Subfields `yaml:"subfields"`

	// Output parameters
	Output struct {
		// LogFile receives warnings in addition to stderr when set
		LogFile string `yaml:"logFile"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// Tolerances are the convergence thresholds of the refiners
type Tolerances struct {
	// Step is eps_s, the tip marching step of the length refiner
	Step float64 `yaml:"epsS"`

	// Direction is eps_d, convergence threshold on 1 - cos(angle)
	Direction float64 `yaml:"epsD"`

	// Equal is eps_e, the allowed length mismatch between paired spokes
	Equal float64 `yaml:"epsE"`

	// Inside is the distance within which a point counts as inside the surface
	Inside float64 `yaml:"inside"`
}

// Limits holds iteration caps and constants of the marching procedures
type Limits struct {
	MaxLengthIter    int     `yaml:"maxLengthIter"`
	MaxDirectionIter int     `yaml:"maxDirectionIter"`
	MarchStep        float64 `yaml:"marchStep"`
	Alpha            float64 `yaml:"alpha"`
	ExtendLength     float64 `yaml:"extendLength"`
	PairCount        int     `yaml:"pairCount"`
	CrestLambda      float64 `yaml:"crestLambda"`
}

// Subfields names the subfields of a timepoint and which one is the combined shape
type Subfields struct {
	Names    []string `yaml:"names"`
	Combined string   `yaml:"combined"`

	// Equalize lists subfields whose paired spokes get symmetric lengths
	Equalize []string `yaml:"equalize"`
}

// CrestTable pairs crest skeletal points with their neighbors. Indices are
// 1-based, as exported from the skeleton point-order table.
type CrestTable struct {
	Order    []int `yaml:"order"`
	Neighbor []int `yaml:"neighbor"`
}

// ZeroBased returns the table converted to 0-based indices.
func (c CrestTable) ZeroBased() (order, neighbor []int, err error) {
	if len(c.Order) != len(c.Neighbor) {
		return nil, nil, fmt.Errorf("crest table has %d order and %d neighbor entries", len(c.Order), len(c.Neighbor))
	}
	order = make([]int, len(c.Order))
	neighbor = make([]int, len(c.Neighbor))
	for i := range c.Order {
		if c.Order[i] < 1 || c.Neighbor[i] < 1 {
			return nil, nil, fmt.Errorf("crest entry %d is not 1-based: order=%d neighbor=%d", i, c.Order[i], c.Neighbor[i])
		}
		order[i] = c.Order[i] - 1
		neighbor[i] = c.Neighbor[i] - 1
	}
	return order, neighbor, nil
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default processing parameters
	cfg.Processing.NumCores = runtime.NumCPU() // Use all available cores by default
	cfg.Processing.NumUnits = 1
	cfg.Processing.RestoreOrder = false

	cfg.Tolerances = Tolerances{
		Step:      0.1,
		Direction: 0.1,
		Equal:     0.1,
		Inside:    1e-4,
	}

	cfg.Limits = Limits{
		MaxLengthIter:    1000,
		MaxDirectionIter: 50,
		MarchStep:        0.05,
		Alpha:            0.5,
		ExtendLength:     10.0,
		PairCount:        549,
		CrestLambda:      1.0,
	}

	cfg.Subfields.Names = []string{"CA1", "CA2", "CA3", "CA4", "DG", "SUB", "combined_label"}
	cfg.Subfields.Combined = "combined_label"

	// Set default output parameters
	cfg.Output.LogFile = ""
	cfg.Output.Verbose = true

	return cfg
}

// Validate checks values that would otherwise make refinement loops misbehave.
func (c *Config) Validate() error {
	var errs []error
	if c.Processing.NumCores < 1 {
		errs = append(errs, fmt.Errorf("numCores must be positive, got %d", c.Processing.NumCores))
	}
	if c.Processing.NumUnits < 1 {
		errs = append(errs, fmt.Errorf("numUnits must be positive, got %d", c.Processing.NumUnits))
	}
	if c.Tolerances.Step <= 0 {
		errs = append(errs, fmt.Errorf("epsS must be positive, got %g", c.Tolerances.Step))
	}
	if c.Tolerances.Direction <= 0 {
		errs = append(errs, fmt.Errorf("epsD must be positive, got %g", c.Tolerances.Direction))
	}
	if c.Tolerances.Equal < 0 {
		errs = append(errs, fmt.Errorf("epsE must not be negative, got %g", c.Tolerances.Equal))
	}
	if c.Tolerances.Inside < 0 {
		errs = append(errs, fmt.Errorf("inside tolerance must not be negative, got %g", c.Tolerances.Inside))
	}
	if c.Limits.MaxLengthIter < 1 || c.Limits.MaxDirectionIter < 1 {
		errs = append(errs, fmt.Errorf("iteration caps must be positive"))
	}
	if c.Limits.MarchStep <= 0 {
		errs = append(errs, fmt.Errorf("marchStep must be positive, got %g", c.Limits.MarchStep))
	}
	if c.Limits.Alpha < 0 || c.Limits.Alpha >= 1 {
		errs = append(errs, fmt.Errorf("alpha must be in [0,1), got %g", c.Limits.Alpha))
	}
	if c.Limits.ExtendLength <= 0 {
		errs = append(errs, fmt.Errorf("extendLength must be positive, got %g", c.Limits.ExtendLength))
	}
	if c.Limits.PairCount < 0 {
		errs = append(errs, fmt.Errorf("pairCount must not be negative, got %d", c.Limits.PairCount))
	}
	if _, _, err := c.Crest.ZeroBased(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
