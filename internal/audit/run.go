package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// RunOptions holds the optional collaborators of Run.
type RunOptions struct {
	// Logger receives skipped entries and debug output. Nil discards.
	Logger *slog.Logger
	// Progress, when set, is called periodically with files and bytes seen.
	Progress func(files, bytes int64)
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
}

// startProgressReporter invokes hook(files, bytes) on each tick until ctx is
// done or the returned stop is called. No hook call is in flight once stop
// returns.
func startProgressReporter(ctx context.Context, c *collector, hook func(int64, int64), interval time.Duration) (stop func()) {
	if hook == nil {
		return func() {}
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	ticker := time.NewTicker(interval)

	go func() {
		defer close(done)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(c.progress())
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// Validate checks that root exists and is a directory.
func Validate(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: accessing path %q: %w", ErrInvalidRoot, root, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: path %q is not a directory", ErrInvalidRoot, root)
	}

	return nil
}

// Run audits cfg.Root in one sequential pass and writes the ownership ledger
// to cfg.LedgerPath(). The returned config is cfg with defaults applied.
//
// Entries that cannot be inspected are skipped and listed in the result.
// A failing ledger write aborts the walk; the ledger is closed on every path
// out of the walk, including cancellation through ctx.
func Run(ctx context.Context, cfg ScanConfig, opts RunOptions) (*ScanResult, ScanConfig, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	cfg, err := cfg.normalize()
	if err != nil {
		return nil, cfg, err
	}

	if err := Validate(cfg.Root); err != nil {
		return nil, cfg, err
	}

	ledger, err := CreateLedger(cfg.LedgerPath())
	if err != nil {
		return nil, cfg, err
	}

	log.Debug("starting scan",
		"root", cfg.Root,
		"ledger", ledger.Path(),
		"size_limit", cfg.SizeLimit,
		"total_files_limit", cfg.TotalFilesLimit,
		"dir_file_count_limit", cfg.DirFileCountLimit,
		"extensions", cfg.Extensions,
	)

	outputs := outputPaths(cfg)
	collector := newCollector(cfg)

	stopProgress := startProgressReporter(ctx, collector, opts.Progress, opts.ProgressInterval)

	onSkip := func(path string, err error) {
		log.Warn("skipping entry", "path", path, "error", err)
		collector.addSkip(path, err)
	}

	start := time.Now()
	walkErr := walk(ctx, cfg.Root, ledger, collector, onSkip, outputs)

	stopProgress()

	closeErr := ledger.Close()
	if err := errors.Join(walkErr, closeErr); err != nil {
		return nil, cfg, err
	}

	result := collector.finalize()
	result.LedgerRecords = ledger.Records()
	result.LedgerPath = ledger.Path()
	result.Elapsed = time.Since(start)

	log.Debug("scan finished",
		"files", result.TotalFiles,
		"dirs", result.TotalDirs,
		"flagged", result.FlaggedCount,
		"crowded_dirs", len(result.CrowdedDirs),
		"skipped", len(result.Skipped),
		"elapsed", result.Elapsed,
	)

	return result, cfg, nil
}

// outputPaths returns the absolute paths of the files a scan writes.
func outputPaths(cfg ScanConfig) map[string]struct{} {
	outputs := make(map[string]struct{}, 3)

	for _, suffix := range []string{LedgerSuffix, FlaggedSuffix, CrowdedDirSuffix} {
		path, err := filepath.Abs(cfg.Prefix + suffix)
		if err != nil {
			continue
		}

		outputs[path] = struct{}{}
	}

	return outputs
}

// walk drives the traversal, feeding every visit to the ledger and collector.
// Files named in outputs are neither recorded nor counted.
func walk(
	ctx context.Context,
	root string,
	ledger *Ledger,
	c *collector,
	onSkip SkipFunc,
	outputs map[string]struct{},
) error {
	for visit := range Walk(root, onSkip) {
		// Check cancellation between directories
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := ledger.Record(visit.Dir); err != nil {
			return err
		}

		files := slices.DeleteFunc(visit.Files, func(e Entry) bool {
			_, ok := outputs[e.Path]

			return ok
		})

		c.addDir(visit.Dir.Path, len(files))

		for _, file := range files {
			if err := ledger.Record(file); err != nil {
				return err
			}

			c.addFile(file)
		}
	}

	return nil
}
