// Package coverage accumulates per-node coverage from alignment records,
// with optional node-length scaling and query-occurrence weighting.
package coverage

import (
	"fmt"
	"strings"

	"github.com/vk/gafcover/internal/gaf"
	"github.com/vk/gafcover/internal/gfa"
	"github.com/vk/gafcover/internal/source"
)

// Options select the two accumulation modifiers. They compose: each step
// contributes its raw overlap divided by the query's occurrence count when
// weighting, and by the node length when scaling.
type Options struct {
	LenScale      bool
	WeightQueries bool
}

// CountQueries scans the alignment source once and counts records per query
// name. It is the first pass of the weighting mode; deeper record
// validation is left to the accumulation pass, which aborts the run before
// anything is emitted.
func CountQueries(op source.Opener) (map[string]int, error) {
	counts := make(map[string]int)
	err := source.ForEachLine(op, func(line string, num int) error {
		name, _, ok := strings.Cut(line, "\t")
		if !ok {
			return fmt.Errorf("%s:%d: record has no fields: %w", op.Label(), num, gaf.ErrMalformedAlignment)
		}
		counts[name]++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// Accumulator owns the running coverage vector for one pass over the
// alignment stream. Values accumulate as float64 running sums in file
// order, path order within a record.
type Accumulator struct {
	index   *gfa.Index
	opts    Options
	weights map[string]int
	vec     []float64
	records int
}

// NewAccumulator builds an Accumulator over the given index. The weight
// table may be nil unless opts.WeightQueries is set.
func NewAccumulator(index *gfa.Index, opts Options, weights map[string]int) *Accumulator {
	return &Accumulator{
		index:   index,
		opts:    opts,
		weights: weights,
		vec:     make([]float64, index.Len()),
	}
}

// Add distributes one record's per-step overlap into the vector. Records
// with no steps are a no-op, not an error.
func (a *Accumulator) Add(rec *gaf.Record) error {
	weight := 1.0
	if a.opts.WeightQueries {
		if occ := a.weights[rec.Query]; occ > 0 {
			weight = 1.0 / float64(occ)
		}
	}
	for _, step := range rec.Steps {
		contribution := float64(step.Overlap) * weight
		if a.opts.LenScale {
			node := a.index.Node(step.Node)
			if node.Len == 0 {
				return fmt.Errorf("cannot length-scale zero-length node %q: %w", node.ID, gfa.ErrMalformedGraph)
			}
			contribution /= float64(node.Len)
		}
		a.vec[step.Node] += contribution
	}
	a.records++
	return nil
}

// Records reports how many records have been added.
func (a *Accumulator) Records() int { return a.records }

// Vector returns the coverage value per node in graph declaration order.
// It must only be read once the alignment stream is exhausted.
func (a *Accumulator) Vector() []float64 { return a.vec }
