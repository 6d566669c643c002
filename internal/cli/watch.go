package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/lowir/internal/compiler"
	"github.com/roach88/lowir/internal/engine"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	FailFast bool
	Debounce time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <path>",
		Short: "Re-validate units whenever they change",
		Long: `Validate the units in a file or directory, then validate them again each
time a .cue/.yaml/.yml file under it is written, created, renamed or removed.
Runs until interrupted.

Examples:
  lowir watch ./units
  lowir watch kernel.cue --debounce 500ms`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.FailFast, "fail-fast", false, "stop each unit at its first diagnostic")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", 200*time.Millisecond, "quiet period before re-validating")

	return cmd
}

func runWatch(ctx context.Context, opts *WatchOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.Logger(cmd.ErrOrStderr())
	defer func() { _ = logger.Sync() }()

	info, err := os.Stat(path)
	if err != nil {
		return outputCommandError(formatter, ErrCodeNotFound, fmt.Sprintf("path not found: %s", path))
	}
	root := path
	if !info.IsDir() {
		root = filepath.Dir(path)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, fmt.Sprintf("create watcher: %v", err))
	}
	defer w.Close()
	if err := watchTree(w, root); err != nil {
		return outputCommandError(formatter, ErrCodeScanError, err.Error())
	}

	vopts := []compiler.Option{compiler.WithLogger(logger)}
	if opts.FailFast {
		vopts = append(vopts, compiler.WithFailFast())
	}
	eng := engine.New(compiler.NewValidator(vopts...), engine.WithLogger(logger))

	cycle := 0
	revalidate := func() {
		cycle++
		if !formatter.JSON() {
			fmt.Fprintf(formatter.Writer, "[cycle %d] %s\n", cycle, path)
		}
		if err := watchCycle(ctx, eng, formatter, path); err != nil {
			logger.Warn("watch cycle failed", zap.Int("cycle", cycle), zap.Error(err))
		}
	}
	revalidate()

	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					if err := watchTree(w, ev.Name); err != nil {
						logger.Warn("watch new directory", zap.String("dir", ev.Name), zap.Error(err))
					}
				}
			}
			if !relevantEvent(ev, path, info.IsDir()) {
				continue
			}
			logger.Debug("unit file changed", zap.String("file", ev.Name), zap.Stringer("op", ev.Op))
			fire = time.After(opts.Debounce)

		case <-fire:
			fire = nil
			revalidate()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// watchCycle loads and validates path once. Load errors and invalid units
// are reported but do not stop watching.
func watchCycle(ctx context.Context, eng *engine.Engine, formatter *OutputFormatter, path string) error {
	loaded, loadErrors := LoadUnits(path, LoadModeCollectAll)
	for _, err := range loadErrors {
		_ = outputLoadError(formatter, err)
	}
	if loaded == nil || len(loaded.Units) == 0 {
		return nil
	}

	reports, err := eng.ValidateBatch(ctx, loaded.LinearIRs())
	if err != nil {
		return err
	}
	err = outputValidationResult(formatter, buildValidationResult(loaded, reports))
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code == ExitFailure {
		return nil
	}
	return err
}

// watchTree adds dir and every directory below it to w.
func watchTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}

// relevantEvent reports whether ev should trigger re-validation of path.
func relevantEvent(ev fsnotify.Event, path string, isDir bool) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	if !isDir {
		return filepath.Clean(ev.Name) == filepath.Clean(path)
	}
	return compiler.IsUnitFile(ev.Name)
}
