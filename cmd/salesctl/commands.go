package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"sales-insight/internal/errors"
	"sales-insight/internal/ingest"
	"sales-insight/internal/services"
)

type mode int

const (
	modeJSON mode = iota
	modePretty
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a sales file for schema and quality problems",
	Long: `Validate a CSV or XLSX sales file and print its validation report.

Exits with status 1 when the file has validation errors.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.Context(), cmd.OutOrStdout(), newSales(), args[0], outputMode())
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Validate a sales file and compute its analytics",
	Long: `Validate a CSV or XLSX sales file and, when it is valid, print revenue totals,
top products, customer segments and the revenue time series.

Exits with status 1 when the file has validation errors.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd.Context(), cmd.OutOrStdout(), newSales(), args[0], outputMode())
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Validate every sales file written to a directory",
	Long: `Watch a directory and validate each CSV or XLSX file as it is created or rewritten.
Runs until interrupted.

Examples:
  salesctl watch ./incoming
  salesctl watch --pretty --debounce 1s ./incoming`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sales := newSales()
		out := cmd.OutOrStdout()
		m := outputMode()
		fmt.Fprintln(cmd.ErrOrStderr(), mutedf("watching %s for .csv and .xlsx files (ctrl-c to stop)", args[0]))

		err := watchDir(cmd.Context(), args[0], watchDebounce, func(path string) {
			if err := runValidate(cmd.Context(), out, sales, path, m); err != nil && err != errInvalid {
				fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render("error:"), err)
			}
		})
		if err == context.Canceled {
			return nil
		}
		return err
	},
}

func runValidate(ctx context.Context, w io.Writer, sales *services.Sales, path string, m mode) error {
	ds, err := ingest.ReadFile(path)
	if err != nil {
		return err
	}

	report := sales.Validate(ctx, ds)
	if m == modePretty {
		renderValidation(w, filepath.Base(path), report)
	} else if err := writeJSON(w, report); err != nil {
		return err
	}

	if !report.Valid {
		return errInvalid
	}
	return nil
}

func runAnalyze(ctx context.Context, w io.Writer, sales *services.Sales, path string, m mode) error {
	ds, err := ingest.ReadFile(path)
	if err != nil {
		return err
	}

	result, err := sales.Analyze(ctx, ds)
	if err != nil && !errors.IsValidation(err) {
		return err
	}

	if m == modePretty {
		renderValidation(w, filepath.Base(path), result.Validation)
		if result.Analytics != nil {
			renderAnalytics(w, result.Analytics)
		}
	} else if err := writeJSON(w, result); err != nil {
		return err
	}

	if err != nil {
		return errInvalid
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// watchDir calls handle for each CSV or XLSX file created or written in dir,
// once writes to that file have been quiet for debounce. Calls to handle are
// serialized. It blocks until ctx is cancelled and then returns ctx.Err().
func watchDir(ctx context.Context, dir string, debounce time.Duration, handle func(path string)) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	d := newDebouncer(debounce)
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if ingest.FormatOf(event.Name) == ingest.FormatUnknown {
				continue
			}
			d.touch(ctx, event.Name)

		case f := <-d.ready:
			if d.fired(f) {
				handle(f.path)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
}

type firing struct {
	path string
	gen  uint64
}

type pendingTimer struct {
	timer *time.Timer
	gen   uint64
}

// debouncer coalesces bursts of events per path. Only the watch loop
// goroutine may call its methods; timers report back through ready.
type debouncer struct {
	delay   time.Duration
	ready   chan firing
	pending map[string]pendingTimer
	gen     uint64
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		ready:   make(chan firing),
		pending: make(map[string]pendingTimer),
	}
}

// touch (re)starts the quiet period for path.
func (d *debouncer) touch(ctx context.Context, path string) {
	if p, ok := d.pending[path]; ok {
		p.timer.Stop()
	}
	d.gen++
	f := firing{path: path, gen: d.gen}
	timer := time.AfterFunc(d.delay, func() {
		select {
		case d.ready <- f:
		case <-ctx.Done():
		}
	})
	d.pending[path] = pendingTimer{timer: timer, gen: f.gen}
}

// fired reports whether f is the latest timer for its path and clears it.
// A timer that fired before touch could stop it is stale and ignored.
func (d *debouncer) fired(f firing) bool {
	p, ok := d.pending[f.path]
	if !ok || p.gen != f.gen {
		return false
	}
	delete(d.pending, f.path)
	return true
}

func (d *debouncer) stop() {
	for _, p := range d.pending {
		p.timer.Stop()
	}
}
