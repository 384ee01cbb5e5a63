package coverage_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/gafcover/internal/coverage"
	"github.com/vk/gafcover/internal/gaf"
	"github.com/vk/gafcover/internal/gfa"
	"github.com/vk/gafcover/internal/source"
)

func buildIndex(t *testing.T, gfaContent string) *gfa.Index {
	t.Helper()
	idx, err := gfa.Parse(source.Reader("graph.gfa", strings.NewReader(gfaContent)))
	require.NoError(t, err)
	return idx
}

// accumulate parses every GAF line and feeds it through an accumulator.
func accumulate(t *testing.T, idx *gfa.Index, lines []string, opts coverage.Options, weights map[string]int) []float64 {
	t.Helper()
	parser := gaf.NewParser(idx, "aln.gaf")
	acc := coverage.NewAccumulator(idx, opts, weights)
	for i, line := range lines {
		rec, err := parser.ParseLine(line, i+1)
		require.NoError(t, err)
		require.NoError(t, acc.Add(rec))
	}
	return acc.Vector()
}

func gafLine(query, path, start, end string) string {
	return strings.Join([]string{
		query, "100", "0", "100", "+", path, "100", start, end, "50", "60", "60",
	}, "\t")
}

func TestAccumulate_EmptyStreamIsAllZero(t *testing.T) {
	idx := buildIndex(t, "S\t1\tACGT\nS\t2\tAC")
	vec := accumulate(t, idx, nil, coverage.Options{}, nil)
	require.Equal(t, []float64{0, 0}, vec)
}

func TestAccumulate_RawAndLenScaledScenario(t *testing.T) {
	// Nodes 1 (len 10) and 2 (len 5); one record covering all of node 1
	// and the first 2 bases of node 2.
	idx := buildIndex(t, "S\t1\tACGTACGTAC\nS\t2\tACGTA")
	lines := []string{gafLine("q1", ">1>2", "0", "12")}

	raw := accumulate(t, idx, lines, coverage.Options{}, nil)
	require.Equal(t, []float64{10, 2}, raw)

	scaled := accumulate(t, idx, lines, coverage.Options{LenScale: true}, nil)
	require.Equal(t, []float64{1.0, 0.4}, scaled)
}

func TestAccumulate_WeightingSplitsMultiMappedQueries(t *testing.T) {
	// Two records with the same query name each contribute overlap 4 to
	// node 3; weighting must halve both, for a total of 4 rather than 8.
	idx := buildIndex(t, "S\t3\tACGT")
	lines := []string{
		gafLine("q1", ">3", "0", "4"),
		gafLine("q1", ">3", "0", "4"),
	}

	weights := map[string]int{"q1": 2}
	vec := accumulate(t, idx, lines, coverage.Options{WeightQueries: true}, weights)
	require.Equal(t, []float64{4}, vec)
}

func TestAccumulate_WeightingNoOpWhenQueriesUnique(t *testing.T) {
	idx := buildIndex(t, "S\t1\tACGTACGTAC\nS\t2\tACGTA")
	lines := []string{
		gafLine("q1", ">1>2", "0", "12"),
		gafLine("q2", ">2", "0", "3"),
	}

	plain := accumulate(t, idx, lines, coverage.Options{}, nil)
	weights := map[string]int{"q1": 1, "q2": 1}
	weighted := accumulate(t, idx, lines, coverage.Options{WeightQueries: true}, weights)
	require.Equal(t, plain, weighted)
}

func TestAccumulate_LenScaleLaw(t *testing.T) {
	idx := buildIndex(t, "S\t1\tACGTACGTAC\nS\t2\tACGTA\nS\t3\tACGT")
	lines := []string{
		gafLine("q1", ">1>2", "0", "12"),
		gafLine("q2", ">2>3", "2", "7"),
		gafLine("q3", ">3", "1", "4"),
	}

	raw := accumulate(t, idx, lines, coverage.Options{}, nil)
	scaled := accumulate(t, idx, lines, coverage.Options{LenScale: true}, nil)
	for i := 0; i < idx.Len(); i++ {
		require.InDelta(t, raw[i]/float64(idx.Node(i).Len), scaled[i], 1e-12)
	}
}

func TestAccumulate_ModifiersCompose(t *testing.T) {
	// With both modifiers on, each step is scaled by the product of the
	// two individual factors: no cross term, no order dependence.
	idx := buildIndex(t, "S\t1\tACGTACGTAC\nS\t2\tACGTA")
	lines := []string{
		gafLine("q1", ">1>2", "0", "12"),
		gafLine("q1", ">1", "0", "10"),
	}
	weights := map[string]int{"q1": 2}

	both := accumulate(t, idx, lines, coverage.Options{LenScale: true, WeightQueries: true}, weights)
	require.InDelta(t, (10.0/2/10)+(10.0/2/10), both[0], 1e-12)
	require.InDelta(t, 2.0/2/5, both[1], 1e-12)
}

func TestAccumulate_ZeroLengthNodeFailsUnderLenScale(t *testing.T) {
	idx := buildIndex(t, "S\t1\tAC\nS\tz\t*\tLN:i:0")
	parser := gaf.NewParser(idx, "aln.gaf")

	// Force a step onto the zero-length node by building the record by hand:
	// the parser itself can never produce one, since a zero-length node
	// intersects no window.
	handle, ok := idx.Lookup("z")
	require.True(t, ok)
	rec := &gaf.Record{Query: "q1", Steps: []gaf.Step{{Node: handle, Overlap: 1}}}

	acc := coverage.NewAccumulator(idx, coverage.Options{LenScale: true}, nil)
	err := acc.Add(rec)
	require.ErrorIs(t, err, gfa.ErrMalformedGraph)

	// The same record parses and accumulates fine without scaling.
	parsed, err := parser.ParseLine(gafLine("q1", ">1>z", "0", "2"), 1)
	require.NoError(t, err)
	acc = coverage.NewAccumulator(idx, coverage.Options{}, nil)
	require.NoError(t, acc.Add(parsed))
}

func TestAccumulate_RecordsCounted(t *testing.T) {
	idx := buildIndex(t, "S\t1\tACGT")
	parser := gaf.NewParser(idx, "aln.gaf")
	acc := coverage.NewAccumulator(idx, coverage.Options{}, nil)

	for i, line := range []string{
		gafLine("q1", ">1", "0", "4"),
		gafLine("q2", "*", "0", "0"),
	} {
		rec, err := parser.ParseLine(line, i+1)
		require.NoError(t, err)
		require.NoError(t, acc.Add(rec))
	}
	require.Equal(t, 2, acc.Records())
	require.Equal(t, []float64{4}, acc.Vector())
}

func TestCountQueries(t *testing.T) {
	content := strings.Join([]string{
		gafLine("q1", ">1", "0", "4"),
		gafLine("q2", ">1", "0", "4"),
		gafLine("q1", ">1", "0", "4"),
	}, "\n")

	counts, err := coverage.CountQueries(source.Reader("aln.gaf", strings.NewReader(content)))
	require.NoError(t, err)
	require.Equal(t, map[string]int{"q1": 2, "q2": 1}, counts)
}

func TestCountQueries_NoFields(t *testing.T) {
	_, err := coverage.CountQueries(source.Reader("aln.gaf", strings.NewReader("noseparator")))
	require.ErrorIs(t, err, gaf.ErrMalformedAlignment)
}
