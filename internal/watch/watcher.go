package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrNoFiles is returned by Run when there is nothing to watch.
var ErrNoFiles = errors.New("watch: no files to watch")

// RunFunc is called each time the watcher triggers a filter run.
type RunFunc func(ctx context.Context) (*RunResult, error)

// RunResult summarises one filter run for the status line.
type RunResult struct {
	Pixels     int
	Packets    int
	OutputPath string
	Elapsed    time.Duration
}

// Options configures the watch behaviour.
type Options struct {
	// Files are the files whose changes trigger a run. Their parent
	// directories are watched so that rename-on-save editors are seen.
	Files []string

	// Debounce is the quiet period before triggering a run.
	Debounce time.Duration

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Out is the writer for user-facing status messages.
	Out io.Writer
}

// DefaultOptions returns sensible default watch options.
func DefaultOptions() Options {
	return Options{
		Debounce: 300 * time.Millisecond,
		Logger:   slog.Default(),
		Out:      os.Stderr,
	}
}

// Run performs an initial run, then watches opts.Files and re-runs runFn
// after each debounced change. It blocks until ctx is cancelled or a
// SIGINT/SIGTERM signal is received.
func Run(ctx context.Context, opts Options, runFn RunFunc) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	targets, dirs, err := resolveTargets(opts.Files)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching directory %q: %w", dir, err)
		}
	}

	// Trap SIGINT / SIGTERM for graceful shutdown.
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(opts.Out, "watching %s (debounce=%s)\n", strings.Join(opts.Files, ", "), opts.Debounce)

	// Runs are serialised so a slow filter never overlaps the next trigger.
	var runMu sync.Mutex
	run := func(trigger string) {
		runMu.Lock()
		defer runMu.Unlock()
		doRun(sigCtx, opts, runFn, trigger)
	}

	run("(initial)")

	debouncer := NewDebouncer(opts.Debounce, opts.Logger, func(changed []string) {
		names := make([]string, len(changed))
		for i, p := range changed {
			names[i] = filepath.Base(p)
		}
		run(strings.Join(names, ", "))
	})
	defer debouncer.Stop()

	for {
		select {
		case <-sigCtx.Done():
			fmt.Fprintln(opts.Out, "\nshutting down watcher")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isRelevant(event, targets) {
				continue
			}

			opts.Logger.Debug("watch event", slog.String("path", event.Name), slog.String("op", event.Op.String()))
			debouncer.Add(event.Name)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			opts.Logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// resolveTargets returns the absolute target set and the unique parent
// directories to watch.
func resolveTargets(files []string) (map[string]bool, []string, error) {
	targets := make(map[string]bool, len(files))
	seen := make(map[string]bool)

	var dirs []string

	for _, f := range files {
		if f == "" {
			continue
		}

		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving file %q: %w", f, err)
		}

		targets[abs] = true

		dir := filepath.Dir(abs)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	if len(targets) == 0 {
		return nil, nil, ErrNoFiles
	}

	return targets, dirs, nil
}

// doRun executes a single filter run and prints the status line.
func doRun(ctx context.Context, opts Options, runFn RunFunc, trigger string) {
	now := time.Now().Format("15:04:05")

	result, err := runFn(ctx)
	if err != nil {
		fmt.Fprintf(opts.Out, "[%s] %s → ERROR: %v\n", now, trigger, err)
		return
	}

	fmt.Fprintf(opts.Out, "[%s] %s → OK (%d pixels, %d packets, %s)\n",
		now, trigger, result.Pixels, result.Packets, result.Elapsed.Round(time.Millisecond))

	if result.OutputPath != "" {
		fmt.Fprintf(opts.Out, "  wrote %s\n", result.OutputPath)
	}
}

// isRelevant reports whether an fsnotify event should trigger a run: it
// must change content or existence of one of the target files. Editor swap
// and backup files never match a target, so siblings in the watched
// directory are ignored.
func isRelevant(event fsnotify.Event, targets map[string]bool) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}

	return targets[abs]
}
