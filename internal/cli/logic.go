package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/idelchi/darsync/internal/audit"
	"github.com/idelchi/darsync/internal/config"
	"github.com/idelchi/darsync/internal/jobscript"
	"github.com/idelchi/darsync/internal/keygen"
)

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newLogger(debug bool, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func runCheck(ctx context.Context, opts checkOptions, thresholds config.Thresholds, stdout, stderr io.Writer) error {
	enableProgress := opts.Output != "json" && !opts.Debug && stderr == os.Stderr && isTerminal(os.Stderr)

	// Simple progress callback that prints directly to stderr
	var progressHook func(files, bytes int64)

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(stderr, "\033[?25l")
		defer fmt.Fprint(stderr, "\033[?25h")

		progressHook = func(files, bytes int64) {
			msg := fmt.Sprintf("Scanning… %d files, %s",
				files, humanize.IBytes(uint64(bytes))) //nolint:gosec // Bytes is always positive
			fmt.Fprintf(stderr, "\r\033[2K%s\r", msg)
		}
	}

	cfg := thresholds.Apply(audit.ScanConfig{Root: opts.Root, Prefix: opts.Prefix})

	res, cfg, err := audit.Run(ctx, cfg, audit.RunOptions{
		Logger:   newLogger(opts.Debug, stderr),
		Progress: progressHook,
	})

	// Clear the status line
	if enableProgress {
		fmt.Fprint(stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	warnings := audit.Evaluate(res, cfg, opts.ForceWarnings)

	reports, err := audit.WriteReports(cfg.Prefix, warnings)
	if err != nil {
		return err
	}

	if opts.Output == "json" {
		kinds := make([]string, 0, len(warnings))
		for _, w := range warnings {
			kinds = append(kinds, w.Kind().String())
		}

		return PrintJSON(Report{Result: res, Warnings: kinds, Reports: reports}, stdout)
	}

	for _, w := range warnings {
		if err := PrintWarning(stdout, w, cfg.Prefix); err != nil {
			return err
		}
	}

	if err := PrintSkipped(stdout, res.Skipped); err != nil {
		return err
	}

	return PrintCompletion(stdout, res, len(warnings) > 0)
}

func runCount(ctx context.Context, root string, filesLimit int64, stdout io.Writer) error {
	tally, err := audit.Count(ctx, root)
	if err != nil {
		return err
	}

	return PrintTally(stdout, root, tally, filesLimit)
}

func runGen(cmd *cobra.Command, opts jobscript.Options) error {
	var prompter *jobscript.Prompter

	if cmd.InOrStdin() == os.Stdin && isTerminal(os.Stdin) {
		prompter = jobscript.NewPrompter(os.Stdin, cmd.OutOrStdout())
	}

	opts, err := jobscript.Resolve(opts, prompter)
	if err != nil {
		return err
	}

	path, err := jobscript.Write(opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nCreated SLURM script: %s\n\n", path)
	fmt.Fprintf(out, "Run this command to submit it as a job:\n\nsbatch %s\n", path)

	return nil
}

func runKeygen(cmd *cobra.Command, opts keygen.Options) error {
	output, err := keygen.Generate(cmd.Context(), opts)

	fmt.Fprint(cmd.OutOrStdout(), output.Stdout)
	fmt.Fprint(cmd.ErrOrStderr(), output.Stderr)

	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nAdd the contents of %s.pub to the authorized keys on the remote system.\n", opts.Path)

	return nil
}
