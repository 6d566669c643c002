package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/lowir/internal/ir"
	"github.com/roach88/lowir/internal/runquery"
	"github.com/roach88/lowir/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DB          string
	Unit        string
	Fingerprint string
	Code        string
	Invalid     bool
	Limit       int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded validation runs",
		Long: `List validation runs recorded with "lowir validate --db", newest first.

Examples:
  lowir history --db history.db
  lowir history --db history.db --unit loop_unit --limit 5
  lowir history --db history.db --code E222
  lowir history --db history.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "history database path (required)")
	cmd.Flags().StringVar(&opts.Unit, "unit", "", "only runs of this unit")
	cmd.Flags().StringVar(&opts.Fingerprint, "fingerprint", "", "only runs of this unit fingerprint")
	cmd.Flags().StringVar(&opts.Code, "code", "", "only runs that reported this diagnostic code")
	cmd.Flags().BoolVar(&opts.Invalid, "invalid", false, "only invalid runs")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum runs to list (0 = all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	filter := store.RunFilter{
		Unit:        opts.Unit,
		Fingerprint: opts.Fingerprint,
		Code:        opts.Code,
		InvalidOnly: opts.Invalid,
		Limit:       opts.Limit,
	}
	if err := runquery.Validate(filter.Query()); err != nil {
		return outputCommandError(formatter, ErrCodeArgs, err.Error())
	}

	// Opening would create an empty database; history only reads.
	if _, err := os.Stat(opts.DB); os.IsNotExist(err) {
		return outputCommandError(formatter, ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.DB))
	}
	st, err := store.Open(opts.DB)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStore, err.Error())
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context(), filter)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStore, err.Error())
	}

	if formatter.JSON() {
		return formatter.Success(runs)
	}
	outputHistoryText(formatter, runs)
	return nil
}

func outputHistoryText(formatter *OutputFormatter, runs []ir.RunRecord) {
	w := formatter.Writer
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	for _, r := range runs {
		status := "valid"
		if !r.Valid {
			status = fmt.Sprintf("invalid (%d)", len(r.Diagnostics))
		}
		fmt.Fprintf(w, "%6d  %-36s  %-20s  %s  %s\n", r.Seq, r.ID, r.Unit, shortFingerprint(r.Fingerprint), status)
		if formatter.Verbose {
			for _, d := range r.Diagnostics {
				fmt.Fprintf(w, "        [%s] %s#%d: %s\n", d.Code, d.Expr, d.ExprIndex, d.Message)
			}
		}
	}
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
