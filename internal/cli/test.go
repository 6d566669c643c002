package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/lowir/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update    bool   // regenerate golden files
	Filter    string // scenario filter (glob pattern on the scenario name)
	GoldenDir string // defaults to <scenarios-dir>/../golden
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Golden string   `json:"golden,omitempty"` // "match", "updated" or "missing"
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run conformance scenarios",
		Long: `Run the YAML scenarios in a directory.

Each scenario validates one unit and checks the expected outcome. When a
golden file <name>.golden exists its canonical diagnostic snapshot must
match too.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  lowir test ./testdata/scenarios
  lowir test ./testdata/scenarios --filter "loop_*"
  lowir test ./testdata/scenarios --update`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "run only scenarios whose name matches this glob")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden", "", "golden file directory (default <scenarios-dir>/../golden)")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if info, err := os.Stat(scenariosDir); err != nil || !info.IsDir() {
		return outputCommandError(formatter, ErrCodeNotFound, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}
	if opts.Filter != "" {
		if _, err := filepath.Match(opts.Filter, ""); err != nil {
			return outputCommandError(formatter, ErrCodeArgs, fmt.Sprintf("invalid filter pattern: %v", err))
		}
	}
	goldenDir := opts.GoldenDir
	if goldenDir == "" {
		goldenDir = filepath.Join(filepath.Dir(filepath.Clean(scenariosDir)), "golden")
	}

	scenarios, err := harness.LoadScenarios(scenariosDir)
	if err != nil {
		return outputCommandError(formatter, ErrCodeLoadFailed, err.Error())
	}

	result := TestResult{Scenarios: []ScenarioResult{}}
	logger := opts.Logger(cmd.ErrOrStderr())
	for _, s := range scenarios {
		if opts.Filter != "" {
			if ok, _ := filepath.Match(opts.Filter, s.Name); !ok {
				continue
			}
		}
		sr := runScenario(s, goldenDir, opts.Update, harness.WithLogger(logger))
		result.Scenarios = append(result.Scenarios, sr)
		result.Total++
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if formatter.JSON() {
		if result.Failed > 0 {
			if err := formatter.Failure(ErrCodeGeneric, fmt.Sprintf("%d scenario(s) failed", result.Failed), result); err != nil {
				return err
			}
			return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenario(s) failed", result.Failed, result.Total))
		}
		return formatter.Success(result)
	}
	return outputTestText(formatter, result)
}

// runScenario runs one scenario and compares or updates its golden file.
func runScenario(s *harness.Scenario, goldenDir string, update bool, opts ...harness.Option) ScenarioResult {
	sr := ScenarioResult{Name: s.Name}

	res, err := harness.Run(s, opts...)
	if err != nil {
		sr.Errors = []string{fmt.Sprintf("execution failed: %v", err)}
		return sr
	}
	sr.Pass = res.Pass
	sr.Errors = res.Errors

	snapshot, err := harness.SnapshotJSON(res.Report)
	if err != nil {
		sr.Pass = false
		sr.Errors = append(sr.Errors, fmt.Sprintf("snapshot failed: %v", err))
		return sr
	}

	goldenPath := filepath.Join(goldenDir, s.Name+".golden")
	if update {
		if err := os.MkdirAll(goldenDir, 0755); err != nil {
			sr.Pass = false
			sr.Errors = append(sr.Errors, fmt.Sprintf("failed to create golden directory: %v", err))
			return sr
		}
		if err := os.WriteFile(goldenPath, snapshot, 0644); err != nil {
			sr.Pass = false
			sr.Errors = append(sr.Errors, fmt.Sprintf("failed to write golden file: %v", err))
			return sr
		}
		sr.Golden = "updated"
		return sr
	}

	want, err := os.ReadFile(goldenPath)
	if os.IsNotExist(err) {
		sr.Golden = "missing"
		return sr
	}
	if err != nil {
		sr.Pass = false
		sr.Errors = append(sr.Errors, fmt.Sprintf("failed to read golden file: %v", err))
		return sr
	}
	if !bytes.Equal(want, snapshot) {
		sr.Pass = false
		sr.Errors = append(sr.Errors, "diagnostics do not match golden file (run with --update to regenerate)")
		return sr
	}
	sr.Golden = "match"
	return sr
}

func outputTestText(formatter *OutputFormatter, result TestResult) error {
	w := formatter.Writer
	if result.Total == 0 {
		fmt.Fprintln(w, "No scenarios found.")
		return nil
	}

	for _, sr := range result.Scenarios {
		mark := "✓"
		if !sr.Pass {
			mark = "✗"
		}
		switch sr.Golden {
		case "updated":
			fmt.Fprintf(w, "%s %s (golden updated)\n", mark, sr.Name)
		default:
			fmt.Fprintf(w, "%s %s\n", mark, sr.Name)
		}
		for _, e := range sr.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Results: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenario(s) failed", result.Failed, result.Total))
	}
	return nil
}
