package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/lowir/internal/compiler"
	"github.com/roach88/lowir/internal/engine"
	"github.com/roach88/lowir/internal/store"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	DB       string // history database; empty disables recording
	FailFast bool
	Range    string // "begin:end", single unit only
	Workers  int
}

// UnitReport is the validate output for one unit.
type UnitReport struct {
	Path        string                     `json:"path"`
	Unit        string                     `json:"unit"`
	RunID       string                     `json:"run_id"`
	Seq         int64                      `json:"seq"`
	Fingerprint string                     `json:"fingerprint"`
	Valid       bool                       `json:"valid"`
	Errors      []compiler.ValidationError `json:"errors,omitempty"`
}

// ValidationResult is the validate output for a whole invocation.
type ValidationResult struct {
	Valid bool         `json:"valid"`
	Units []UnitReport `json:"units"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate IR units",
		Long: `Validate the IR units in a .cue/.yaml file or a directory of them.

Every unit is validated independently and every violated invariant is
reported, unless --fail-fast is set.

Exit codes:
  0 - All units valid
  1 - One or more units invalid
  2 - Command error (unreadable units, bad flags, store errors)

Examples:
  lowir validate ./units
  lowir validate kernel.cue --db history.db
  lowir validate kernel.yaml --range 0:4 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "record runs in this SQLite history database")
	cmd.Flags().BoolVar(&opts.FailFast, "fail-fast", false, "stop each unit at its first diagnostic")
	cmd.Flags().StringVar(&opts.Range, "range", "", "validate only expressions [begin:end) of a single unit")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "units validated concurrently (default: number of CPUs)")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.Logger(cmd.ErrOrStderr())
	defer func() { _ = logger.Sync() }()

	loaded, loadErrors := LoadUnits(path, LoadModeFailFast)
	if len(loadErrors) > 0 {
		return outputLoadError(formatter, loadErrors[0])
	}
	formatter.VerboseLog("Loaded %d unit(s) from %d file(s)", len(loaded.Units), loaded.FileCount)

	var begin, end int
	if opts.Range != "" {
		if len(loaded.Units) != 1 {
			return outputCommandError(formatter, ErrCodeArgs,
				fmt.Sprintf("--range needs exactly one unit, found %d", len(loaded.Units)))
		}
		var err error
		begin, end, err = parseRange(opts.Range)
		if err != nil {
			return outputCommandError(formatter, ErrCodeArgs, err.Error())
		}
	}

	vopts := []compiler.Option{compiler.WithLogger(logger)}
	if opts.FailFast {
		vopts = append(vopts, compiler.WithFailFast())
	}
	eopts := []engine.Option{engine.WithLogger(logger)}
	if opts.Workers > 0 {
		eopts = append(eopts, engine.WithWorkers(opts.Workers))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.DB != "" {
		st, err := store.Open(opts.DB)
		if err != nil {
			return outputCommandError(formatter, ErrCodeStore, err.Error())
		}
		defer st.Close()

		last, err := st.MaxSeq(ctx)
		if err != nil {
			return outputCommandError(formatter, ErrCodeStore, err.Error())
		}
		eopts = append(eopts, engine.WithStore(st), engine.WithSequencer(engine.NewClockAt(last)))
	}

	eng := engine.New(compiler.NewValidator(vopts...), eopts...)

	var reports []engine.Report
	var err error
	if opts.Range != "" {
		var rep engine.Report
		rep, err = eng.ValidateRange(ctx, loaded.Units[0].Unit, begin, end)
		reports = []engine.Report{rep}
	} else {
		reports, err = eng.ValidateBatch(ctx, loaded.LinearIRs())
	}
	if err != nil {
		code := ErrCodeGeneric
		if engine.IsStoreError(err) {
			code = ErrCodeStore
		}
		return outputCommandError(formatter, code, err.Error())
	}

	result := buildValidationResult(loaded, reports)
	logger.Info("validate finished",
		zap.String("path", path),
		zap.Int("units", len(result.Units)),
		zap.Bool("valid", result.Valid))

	return outputValidationResult(formatter, result)
}

// buildValidationResult pairs reports with the units they were produced for.
func buildValidationResult(loaded *LoadResult, reports []engine.Report) ValidationResult {
	result := ValidationResult{Valid: true, Units: make([]UnitReport, len(reports))}
	for i, rep := range reports {
		result.Units[i] = UnitReport{
			Path:        loaded.Units[i].Path,
			Unit:        rep.Unit,
			RunID:       rep.RunID,
			Seq:         rep.Seq,
			Fingerprint: rep.Fingerprint,
			Valid:       rep.Result.Valid(),
			Errors:      rep.Result.Errors,
		}
		if !rep.Result.Valid() {
			result.Valid = false
		}
	}
	return result
}

// parseRange parses "begin:end".
func parseRange(s string) (int, int, error) {
	b, e, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid range %q: want begin:end", s)
	}
	begin, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range %q: begin: %w", s, err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(e))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range %q: end: %w", s, err)
	}
	return begin, end, nil
}

func outputValidationResult(formatter *OutputFormatter, result ValidationResult) error {
	invalid := 0
	for _, u := range result.Units {
		if !u.Valid {
			invalid++
		}
	}

	if formatter.JSON() {
		if result.Valid {
			return formatter.Success(result)
		}
		first := firstDiagnostic(result)
		if err := formatter.Failure(first.Code, first.Message, result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d unit(s) invalid", invalid, len(result.Units)))
	}

	w := formatter.Writer
	for _, u := range result.Units {
		if u.Valid {
			fmt.Fprintf(w, "✓ %s (%s)\n", u.Unit, u.Path)
			continue
		}
		fmt.Fprintf(w, "✗ %s (%s)\n", u.Unit, u.Path)
		for _, e := range u.Errors {
			fmt.Fprintf(w, "  %s\n", e.Error())
		}
	}
	fmt.Fprintln(w)

	if result.Valid {
		fmt.Fprintf(w, "✓ All %d unit(s) valid\n", len(result.Units))
		return nil
	}
	fmt.Fprintf(w, "✗ %d of %d unit(s) invalid\n", invalid, len(result.Units))
	return NewExitError(ExitFailure, fmt.Sprintf("%d of %d unit(s) invalid", invalid, len(result.Units)))
}

func firstDiagnostic(result ValidationResult) compiler.ValidationError {
	for _, u := range result.Units {
		if len(u.Errors) > 0 {
			return u.Errors[0]
		}
	}
	return compiler.ValidationError{}
}

// outputLoadError reports a unit loading failure (exit code 2).
func outputLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		_ = formatter.Error(loadErr.Code, loadErr.Error(), nil)
		return WrapExitError(ExitCommandError, loadErr.Code, err)
	}
	return outputCommandError(formatter, ErrCodeGeneric, err.Error())
}

// outputCommandError reports a command-level failure (exit code 2).
func outputCommandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}
