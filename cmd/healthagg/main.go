// Package main implements the healthagg CLI: it aggregates sleep and
// workout records into days.json and prints one derived metric.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/codeGROOVE-dev/healthagg/pkg/healthagg"
	"github.com/codeGROOVE-dev/healthagg/pkg/metrics"
)

const version = "healthagg v1.0.0"

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	errColor := color.New(color.FgRed)

	cfg, err := loadConfig(".env")
	if err != nil {
		errColor.Fprintf(stderr, "Error: %v\n", err) //nolint:errcheck // stderr
		return 1
	}

	fs := flag.NewFlagSet("healthagg", flag.ContinueOnError)
	fs.SetOutput(stderr)
	sleepFile := fs.String("sleep", cfg.SleepFile, "Sleep records JSON array (or set HEALTHAGG_SLEEP_FILE)")
	workoutsFile := fs.String("workouts", cfg.WorkoutsFile, "Workout records JSON array (or set HEALTHAGG_WORKOUTS_FILE)")
	outputFile := fs.String("out", cfg.OutputFile, "Aggregated days output file (or set HEALTHAGG_OUTPUT_FILE)")
	defaultZone := fs.String("default-zone", cfg.DefaultZone, "IANA zone for timestamps without one, default UTC (or set HEALTHAGG_DEFAULT_ZONE)")
	zoneInfoDir := fs.String("zoneinfo", cfg.ZoneInfoDir, "Read zone names and rules from this zoneinfo directory (or set HEALTHAGG_ZONEINFO_DIR)")
	verbose := fs.Bool("verbose", cfg.Verbose, "Enable verbose logging")
	noColor := fs.Bool("no-color", false, "Disable colored output")
	showVersion := fs.Bool("version", false, "Show version")
	fs.Usage = func() { usage(fs, stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	if *noColor {
		color.NoColor = true
	}

	if *showVersion {
		fmt.Fprintln(stdout, version) //nolint:errcheck // stdout
		return 0
	}

	if fs.NArg() != 1 {
		usage(fs, stderr)
		return 1
	}
	metric := fs.Arg(0)
	if _, ok := metrics.Lookup(metric); !ok {
		errColor.Fprintf(stderr, "Invalid metric: %s\n", metric) //nolint:errcheck // stderr
		usage(fs, stderr)
		return 1
	}

	// Record-level warnings go to stderr; debug adds zone enumeration details.
	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		Level: level,
	}))

	agg := healthagg.NewWithLogger(logger,
		healthagg.WithSleepFile(*sleepFile),
		healthagg.WithWorkoutsFile(*workoutsFile),
		healthagg.WithOutputFile(*outputFile),
		healthagg.WithDefaultZone(*defaultZone),
		healthagg.WithZoneInfoDir(*zoneInfoDir),
	)

	line, err := agg.Metric(ctx, metric)
	if err != nil {
		logger.Error("metric failed", "metric", metric, "error", err)
		errColor.Fprintf(stderr, "Error: %v\n", err) //nolint:errcheck // stderr
		return 1
	}

	color.New(color.FgGreen).Fprintln(stdout, line) //nolint:errcheck // stdout
	return 0
}

func usage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, "Usage: %s [flags] <metric>\n", fs.Name())                      //nolint:errcheck // stderr
	fmt.Fprintf(w, "Metrics: %s\n\nFlags:\n", strings.Join(metrics.Names(), ", ")) //nolint:errcheck // stderr
	fs.PrintDefaults()
}
