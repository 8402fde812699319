package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/biostat-tools/taxsum/internal/aggregate"
	"github.com/biostat-tools/taxsum/internal/config"
	"github.com/biostat-tools/taxsum/internal/loader"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Input         string
	ConfigFile    string
	SkipMalformed bool
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool `json:"valid"`
	Rows        int  `json:"rows"`
	SkippedRows int  `json:"skipped_rows,omitempty"`
	Phyla       int  `json:"phyla"`
}

func (r ValidationResult) String() string {
	return fmt.Sprintf("✓ Input valid: %d rows across %d phyla", r.Rows, r.Phyla)
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the input CSV without writing output",
		Long: `Validate the input CSV without running the reporting stages.

Checks that the file exists, that the header carries the phylum and
species_count columns, and that every species_count cell parses as a
non-negative integer. No output files are created. Faster feedback than
a full run when preparing a dataset.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "path to the input CSV")
	cmd.Flags().StringVar(&opts.ConfigFile, "config", "", "path to a YAML config file")
	cmd.Flags().BoolVar(&opts.SkipMalformed, "skip-malformed", false, "treat malformed rows as skippable instead of fatal")

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg := config.Default()
	if opts.ConfigFile != "" {
		if err := cfg.LoadFile(opts.ConfigFile); err != nil {
			return WrapExitError(ExitCommandError, "invalid config", err)
		}
	}
	cfg.ApplyEnv()
	if cmd.Flags().Changed("input") {
		cfg.Input = opts.Input
	}
	if cmd.Flags().Changed("skip-malformed") {
		cfg.SkipMalformed = opts.SkipMalformed
	}
	if cfg.Input == "" {
		return NewExitError(ExitCommandError, "no input file: set --input or "+config.EnvInput)
	}

	mode := loader.ModeFailFast
	if cfg.SkipMalformed {
		mode = loader.ModeSkipMalformed
	}

	formatter.VerboseLog("Validating %s", cfg.Input)

	loaded, err := loader.Load(cfg.Input, mode)
	if err != nil {
		if outErr := formatter.Error(pipelineErrorCode(err), err.Error(), nil); outErr != nil {
			return WrapExitError(ExitFailure, "failed to write output", outErr)
		}
		return WrapExitError(ExitFailure, "input invalid", err)
	}

	return formatter.Success(ValidationResult{
		Valid:       true,
		Rows:        len(loaded.Records),
		SkippedRows: len(loaded.Skipped),
		Phyla:       len(aggregate.Aggregate(loaded.Records)),
	})
}
