package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/biostat-tools/taxsum/internal/aggregate"
	"github.com/biostat-tools/taxsum/internal/config"
	"github.com/biostat-tools/taxsum/internal/loader"
	"github.com/biostat-tools/taxsum/internal/report"
	"github.com/biostat-tools/taxsum/internal/taxonomy"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Input         string
	OutputDir     string
	ConfigFile    string
	SkipMalformed bool
}

// RunResult is the success payload of the run command.
type RunResult struct {
	Rows        int    `json:"rows"`
	SkippedRows int    `json:"skipped_rows,omitempty"`
	Phyla       int    `json:"phyla"`
	SummaryPath string `json:"summary_path"`
	ChartPath   string `json:"chart_path"`
}

func (r RunResult) String() string {
	return fmt.Sprintf("Summary statistics saved to %s\nBar chart saved to %s\nProcessed %d rows into %d phyla.",
		r.SummaryPath, r.ChartPath, r.Rows, r.Phyla)
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full analysis pipeline",
		Long: `Run the full analysis pipeline: load and validate the input CSV,
aggregate species counts per phylum, then write summary_statistics.csv
and total_species_count_chart.png to the output directory.

The input must carry a header row with phylum and species_count columns;
extra columns are ignored. Malformed rows abort the run before any output
is written unless --skip-malformed is set, in which case each skipped row
is logged with its row number. An input with no data rows still produces
a header-only summary, but the chart step refuses to render an empty
dataset and the run fails.

Example:
  taxsum run --input ./taxonomic_data.csv --output-dir ./output
  TAXSUM_INPUT=data.csv taxsum run --skip-malformed --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "path to the input CSV")
	cmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "directory for the output files")
	cmd.Flags().StringVar(&opts.ConfigFile, "config", "", "path to a YAML config file")
	cmd.Flags().BoolVar(&opts.SkipMalformed, "skip-malformed", false, "skip malformed rows with a warning instead of failing")

	return cmd
}

func runPipeline(opts *RunOptions, cmd *cobra.Command) error {
	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	cfg, err := resolveConfig(opts, cmd)
	if err != nil {
		return err
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	mode := loader.ModeFailFast
	if cfg.SkipMalformed {
		mode = loader.ModeSkipMalformed
	}

	slog.Info("loading data", "path", cfg.Input)
	loaded, err := loader.Load(cfg.Input, mode)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to load input", err)
	}
	for _, skipped := range loaded.Skipped {
		slog.Warn("skipping malformed row", "row", skipped.Row, "reason", skipped.Message)
	}
	slog.Info("data loaded", "rows", len(loaded.Records), "skipped", len(loaded.Skipped))

	slog.Info("aggregating species counts")
	summaries := aggregate.Aggregate(loaded.Records)

	slog.Info("writing summary statistics", "path", cfg.SummaryPath())
	if err := report.WriteSummary(summaries, cfg.SummaryPath(), cfg.Precision); err != nil {
		return WrapExitError(ExitFailure, "failed to write summary", err)
	}

	slog.Info("rendering bar chart", "path", cfg.ChartPath())
	chartOpts := report.ChartOptions{
		Width:    cfg.Chart.Width,
		Height:   cfg.Chart.Height,
		FontPath: cfg.Chart.FontPath,
	}
	if err := report.WriteChart(summaries, cfg.ChartPath(), chartOpts); err != nil {
		return WrapExitError(ExitFailure, "failed to render chart", err)
	}

	return formatter.Success(RunResult{
		Rows:        len(loaded.Records),
		SkippedRows: len(loaded.Skipped),
		Phyla:       len(summaries),
		SummaryPath: cfg.SummaryPath(),
		ChartPath:   cfg.ChartPath(),
	})
}

// resolveConfig layers defaults, config file, environment, and flags.
// Flags only override when explicitly set on the command line.
func resolveConfig(opts *RunOptions, cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()

	if opts.ConfigFile != "" {
		if err := cfg.LoadFile(opts.ConfigFile); err != nil {
			return cfg, WrapExitError(ExitCommandError, "invalid config", err)
		}
	}
	cfg.ApplyEnv()

	if cmd.Flags().Changed("input") {
		cfg.Input = opts.Input
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = opts.OutputDir
	}
	if cmd.Flags().Changed("skip-malformed") {
		cfg.SkipMalformed = opts.SkipMalformed
	}

	if err := cfg.Validate(); err != nil {
		return cfg, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return cfg, nil
}

// pipelineErrorCode extracts the machine-readable code for formatter output.
func pipelineErrorCode(err error) string {
	if code := taxonomy.CodeOf(err); code != "" {
		return string(code)
	}
	return "ERROR"
}
