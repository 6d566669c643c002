package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/lowir/internal/ir"
)

// PrintOptions holds flags for the print command.
type PrintOptions struct {
	*RootOptions
	Canonical bool // write the canonical JSON snapshot, one unit per line
}

// PrintedUnit is the print output for one unit.
type PrintedUnit struct {
	Path        string         `json:"path"`
	Unit        string         `json:"unit"`
	Fingerprint string         `json:"fingerprint"`
	Snapshot    map[string]any `json:"snapshot"`
}

// NewPrintCommand creates the print command.
func NewPrintCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PrintOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "print <path>",
		Short: "Print IR units and their fingerprints",
		Long: `Print the IR units in a .cue/.yaml file or directory.

The text format lists one line per expression in program order followed by
the LoopInfo table and the unit fingerprint. --format json wraps the unit
snapshot; --canonical writes the exact bytes the fingerprint is taken over.

Examples:
  lowir print kernel.cue
  lowir print ./units --format json
  lowir print kernel.yaml --canonical`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrint(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Canonical, "canonical", false, "write canonical JSON snapshots")

	return cmd
}

func runPrint(opts *PrintOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loaded, loadErrors := LoadUnits(path, LoadModeFailFast)
	if len(loadErrors) > 0 {
		return outputLoadError(formatter, loadErrors[0])
	}

	printed := make([]PrintedUnit, 0, len(loaded.Units))
	for _, u := range loaded.Units {
		fp, err := ir.Fingerprint(u.Unit)
		if err != nil {
			return outputCommandError(formatter, ErrCodeGeneric, fmt.Sprintf("%s: %v", u.Unit.Name, err))
		}

		if opts.Canonical {
			data, err := ir.MarshalCanonical(ir.Snapshot(u.Unit))
			if err != nil {
				return outputCommandError(formatter, ErrCodeGeneric, fmt.Sprintf("%s: %v", u.Unit.Name, err))
			}
			fmt.Fprintf(formatter.Writer, "%s\n", data)
			continue
		}

		if formatter.JSON() {
			printed = append(printed, PrintedUnit{
				Path:        u.Path,
				Unit:        u.Unit.Name,
				Fingerprint: fp,
				Snapshot:    ir.Snapshot(u.Unit),
			})
			continue
		}

		fmt.Fprint(formatter.Writer, ir.Format(u.Unit))
		fmt.Fprintf(formatter.Writer, "fingerprint: %s\n\n", fp)
	}

	if formatter.JSON() && !opts.Canonical {
		return formatter.Success(printed)
	}
	return nil
}
