package main

import (
	"context"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fastcp/pkg/config"
	"github.com/walteh/fastcp/pkg/display"
	"github.com/walteh/fastcp/pkg/format"
	"github.com/walteh/fastcp/pkg/log"
	"github.com/walteh/fastcp/pkg/runner"
)

var (
	// Flags
	workers    int
	displayCap int
	bufferSize int
	symlinks   string
	excludes   []string
	quiet      bool
	verbose    bool
	debug      bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fastcp <source>... <destination>",
		Short: "copy files and trees concurrently with live progress",
		Long: `fastcp copies files and directory trees using parallel workers,
showing a live progress bar per in-flight file plus an aggregate bar.

Per-file failures are logged and summarized but do not abort the batch
or change the exit code; only setup failures are fatal.`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context())
			if err := runCopy(ctx, args); err != nil {
				pterm.Error.Println(err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", config.DefaultWorkers, "concurrent copy workers")
	cmd.Flags().IntVar(&displayCap, "display-cap", config.DefaultDisplayCap, "max progress bars shown at once")
	cmd.Flags().IntVar(&bufferSize, "buffer-size", config.DefaultBufferSize, "copy buffer size in bytes")
	cmd.Flags().StringVar(&symlinks, "symlinks", "preserve", "symlink handling: preserve, follow or skip")
	cmd.Flags().StringArrayVarP(&excludes, "exclude", "x", nil, "glob pattern to exclude (repeatable)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "disable the live display")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print one line per finished item instead of live bars")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	return cmd
}

// setupLogging configures zerolog based on flags
func setupLogging(ctx context.Context) context.Context {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()

	return logger.WithContext(ctx)
}

func runCopy(ctx context.Context, args []string) error {
	sources := args[:len(args)-1]
	dest := args[len(args)-1]

	policy, err := config.ParseSymlinkPolicy(symlinks)
	if err != nil {
		return err
	}

	if len(sources) > 1 {
		info, serr := os.Stat(dest)
		if serr != nil || !info.IsDir() {
			return errors.Errorf("destination must be an existing directory when copying multiple sources")
		}
	}

	settings := config.Settings{
		Workers:    workers,
		DisplayCap: displayCap,
		BufferSize: bufferSize,
		Symlinks:   policy,
		Excludes:   excludes,
		Quiet:      quiet,
		Verbose:    verbose,
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	surface := display.NewPtermSurface()
	if settings.Quiet || settings.Verbose {
		surface = display.NewNopSurface()
	}

	run := runner.New(settings, surface)

	var reporter *log.Reporter
	if settings.Verbose {
		reporter = log.NewReporter(os.Stdout)
		reporter.Header(len(sources), dest)
		run = run.WithReporter(reporter)
	}

	result, err := run.Run(ctx, sources, dest)
	if err != nil {
		return err
	}

	if reporter != nil {
		reporter.Summary(result.Bytes, result.Elapsed)
		return nil
	}

	printSummary(result)

	return nil
}

// printSummary writes the end-of-run line. Per-item failures show up
// here and in the error log; they do not change the exit code.
func printSummary(result *runner.Result) {
	if result.Failed > 0 {
		pterm.Warning.Printfln("copied %d of %d items (%s) in %s, %d failed",
			result.Copied, result.Enumerated, format.Bytes(result.Bytes),
			result.Elapsed.Round(time.Millisecond), result.Failed)
		return
	}

	pterm.Success.Printfln("copied %d items (%s) in %s at %s",
		result.Copied, format.Bytes(result.Bytes),
		result.Elapsed.Round(time.Millisecond), format.Rate(result.Rate()))
}
