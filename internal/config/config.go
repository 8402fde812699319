// Package config resolves the pipeline configuration.
//
// Values are layered, later sources overriding earlier ones:
// compiled defaults, then an optional YAML file, then environment
// variables, then command-line flags. The resolved Config is threaded
// explicitly through the pipeline; there is no process-wide default.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/biostat-tools/taxsum/internal/report"
)

// Environment variable names recognized by ApplyEnv.
const (
	EnvInput     = "TAXSUM_INPUT"
	EnvOutputDir = "TAXSUM_OUTPUT_DIR"
)

// Malformed-row policy values accepted in the YAML file.
const (
	OnMalformedFail = "fail"
	OnMalformedSkip = "skip"
)

// ChartConfig holds chart rendering settings.
type ChartConfig struct {
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	FontPath string `yaml:"font_path"`
}

// Config is the fully resolved pipeline configuration.
type Config struct {
	// Input is the path to the input CSV.
	Input string

	// OutputDir receives summary_statistics.csv and the chart PNG.
	OutputDir string

	// SkipMalformed switches malformed rows from fatal to
	// skip-with-warning. Default false: fail fast.
	SkipMalformed bool

	// Precision is the number of decimal places for averages.
	Precision int

	Chart ChartConfig
}

// fileConfig is the YAML-facing shape of the config file.
type fileConfig struct {
	Input       string      `yaml:"input"`
	OutputDir   string      `yaml:"output_dir"`
	OnMalformed string      `yaml:"on_malformed"`
	Precision   *int        `yaml:"precision"`
	Chart       ChartConfig `yaml:"chart"`
}

// Default returns the compiled-in defaults.
func Default() Config {
	return Config{
		OutputDir: "./output",
		Precision: report.DefaultPrecision,
		Chart: ChartConfig{
			Width:  report.DefaultChartWidth,
			Height: report.DefaultChartHeight,
		},
	}
}

// LoadFile merges the YAML file at path into c. Unset file fields leave
// the existing values untouched.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if fc.Input != "" {
		c.Input = fc.Input
	}
	if fc.OutputDir != "" {
		c.OutputDir = fc.OutputDir
	}
	switch fc.OnMalformed {
	case "":
	case OnMalformedFail:
		c.SkipMalformed = false
	case OnMalformedSkip:
		c.SkipMalformed = true
	default:
		return fmt.Errorf("invalid on_malformed %q in %s: must be %q or %q",
			fc.OnMalformed, path, OnMalformedFail, OnMalformedSkip)
	}
	if fc.Precision != nil {
		if *fc.Precision < 0 {
			return fmt.Errorf("invalid precision %d in %s: must be non-negative", *fc.Precision, path)
		}
		c.Precision = *fc.Precision
	}
	if fc.Chart.Width > 0 {
		c.Chart.Width = fc.Chart.Width
	}
	if fc.Chart.Height > 0 {
		c.Chart.Height = fc.Chart.Height
	}
	if fc.Chart.FontPath != "" {
		c.Chart.FontPath = fc.Chart.FontPath
	}
	return nil
}

// ApplyEnv merges recognized environment variables into c.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvInput); v != "" {
		c.Input = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.OutputDir = v
	}
}

// Validate checks that the resolved config can drive a run.
func (c Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("no input file: set --input, %s, or input in the config file", EnvInput)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("no output directory: set --output-dir or %s", EnvOutputDir)
	}
	return nil
}

// SummaryPath returns the destination of the summary CSV.
func (c Config) SummaryPath() string {
	return filepath.Join(c.OutputDir, report.SummaryFileName)
}

// ChartPath returns the destination of the chart PNG.
func (c Config) ChartPath() string {
	return filepath.Join(c.OutputDir, report.ChartFileName)
}
