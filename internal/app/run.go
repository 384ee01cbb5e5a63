package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vk/gafcover/internal/coverage"
	"github.com/vk/gafcover/internal/ctxlog"
	"github.com/vk/gafcover/internal/emit"
	"github.com/vk/gafcover/internal/gaf"
	"github.com/vk/gafcover/internal/gfa"
	"github.com/vk/gafcover/internal/source"
)

// Run executes one conversion: build the graph index, run the optional
// query-weight pre-pass, accumulate coverage over the alignment stream in
// a single forward pass, and emit the vector. Nothing is written to the
// output until accumulation has finished without error, so a failing run
// never exposes a partial vector.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	index, err := gfa.Parse(source.File(a.config.GFAPath))
	if err != nil {
		return fmt.Errorf("failed to build graph index: %w", err)
	}
	a.logger.Debug("Graph index built.", "nodes", index.Len())

	alignSource := a.alignmentSource()

	var weights map[string]int
	if a.config.WeightQueries {
		if !alignSource.Rewindable() {
			return fmt.Errorf("%s: query weighting needs a second pass over the alignments: %w",
				alignSource.Label(), source.ErrStreamNotRewindable)
		}
		weights, err = coverage.CountQueries(alignSource)
		if err != nil {
			return fmt.Errorf("query weight pass failed: %w", err)
		}
		a.logger.Debug("Query occurrence table built.", "queries", len(weights))
	}

	parser := gaf.NewParser(index, alignSource.Label())
	acc := coverage.NewAccumulator(index, coverage.Options{
		LenScale:      a.config.LenScale,
		WeightQueries: a.config.WeightQueries,
	}, weights)

	start := time.Now()
	err = source.ForEachLine(alignSource, func(line string, num int) error {
		rec, err := parser.ParseLine(line, num)
		if err != nil {
			return err
		}
		return acc.Add(rec)
	})
	if err != nil {
		return fmt.Errorf("coverage accumulation failed: %w", err)
	}
	a.logger.Info("🧬 Coverage accumulated.",
		"records", acc.Records(), "nodes", index.Len(), "elapsed", time.Since(start))

	if err := a.emitVector(index, acc.Vector()); err != nil {
		return err
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// alignmentSource builds the opener for the alignment stream. "-" reads
// stdin, which cannot be rewound for the weighting pre-pass.
func (a *App) alignmentSource() source.Opener {
	if a.config.GAFPath == "-" {
		return source.Reader("stdin", a.stdin)
	}
	return source.File(a.config.GAFPath)
}

// emitVector renders the finalized vector in the configured shape, to the
// configured output file or the app's output writer.
func (a *App) emitVector(index *gfa.Index, vec []float64) error {
	var w io.Writer = a.outW
	var file *os.File
	if a.config.Output != "" {
		f, err := os.Create(a.config.Output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		file = f
		w = f
	}

	render := emit.Row
	if a.config.CoverageColumn {
		render = emit.Column
	}
	if err := render(w, a.config.Label, index, vec); err != nil {
		if file != nil {
			file.Close()
		}
		return fmt.Errorf("failed to emit coverage vector: %w", err)
	}

	if file != nil {
		if err := file.Close(); err != nil {
			return fmt.Errorf("failed to close output file: %w", err)
		}
		a.logger.Debug("Coverage vector written.", "output", a.config.Output)
	}
	return nil
}
