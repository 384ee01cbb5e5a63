package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/gafcover/internal/app"
	"github.com/vk/gafcover/internal/job"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments, loading a job file when one is
// named, and returns a populated app.Config. Flags override job-file
// settings. The boolean is true when the program should exit cleanly
// without running (help requested, or no input named at all).
func Parse(ctx context.Context, args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("gafcover", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
gafcover - Project GAF alignments onto a pangenome graph as per-node coverage.

Usage:
  gafcover -gfa graph.gfa -gaf aln.gaf [options]
  gafcover -job coverage.hcl

Options:
`)
		flagSet.PrintDefaults()
	}

	gfaFlag := flagSet.String("gfa", "", "Path to the GFA graph file (.gz/.bgz supported).")
	gafFlag := flagSet.String("gaf", "", "Path to the GAF alignment file (.gz/.bgz supported), or '-' for stdin.")
	jobFlag := flagSet.String("job", "", "Path to an HCL job file or a directory of .hcl job files.")
	outputFlag := flagSet.String("o", "", "Write the coverage vector to this file instead of stdout.")
	labelFlag := flagSet.String("sample", "", "Sample label for the output. Defaults to the GAF path.")
	lenScaleFlag := flagSet.Bool("len-scale", false, "Scale each node's coverage by its length.")
	coverageColumnFlag := flagSet.Bool("coverage-column", false, "Emit the vector as a single column instead of a row.")
	weightQueriesFlag := flagSet.Bool("weight-queries", false, "Down-weight each record by its query's occurrence count.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if *jobFlag == "" && *gfaFlag == "" && *gafFlag == "" {
		slog.Debug("No input named, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	cfg := app.Config{
		LogFormat: logFormat,
		LogLevel:  logLevel,
	}

	if *jobFlag != "" {
		loaded, err := job.Load(ctx, *jobFlag)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		cfg.GFAPath = loaded.GFA
		cfg.GAFPath = loaded.GAF
		cfg.Output = loaded.Output
		cfg.Label = loaded.Label
		cfg.LenScale = loaded.LenScale
		cfg.CoverageColumn = loaded.CoverageColumn
		cfg.WeightQueries = loaded.WeightQueries
		slog.Debug("Job file applied.", "path", *jobFlag)
	}

	// Flags set explicitly on the command line override the job file.
	set := map[string]bool{}
	flagSet.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["gfa"] {
		cfg.GFAPath = *gfaFlag
	}
	if set["gaf"] {
		cfg.GAFPath = *gafFlag
	}
	if set["o"] {
		cfg.Output = *outputFlag
	}
	if set["sample"] {
		cfg.Label = *labelFlag
	}
	if set["len-scale"] {
		cfg.LenScale = *lenScaleFlag
	}
	if set["coverage-column"] {
		cfg.CoverageColumn = *coverageColumnFlag
	}
	if set["weight-queries"] {
		cfg.WeightQueries = *weightQueriesFlag
	}

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.")
	return config, false, nil
}
