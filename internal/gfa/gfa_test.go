package gfa_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/gafcover/internal/gfa"
	"github.com/vk/gafcover/internal/source"
)

func parse(t *testing.T, content string) (*gfa.Index, error) {
	t.Helper()
	return gfa.Parse(source.Reader("graph.gfa", strings.NewReader(content)))
}

func TestParse_DeclarationOrderPreserved(t *testing.T) {
	idx, err := parse(t, strings.Join([]string{
		"H\tVN:Z:1.0",
		"S\t2\tACGTACGTAC",
		"S\t1\tACGTA",
		"L\t2\t+\t1\t+\t0M",
		"S\t11\tAC",
	}, "\n"))
	require.NoError(t, err)

	require.Equal(t, 3, idx.Len())
	require.Equal(t, gfa.Node{ID: "2", Len: 10}, idx.Node(0))
	require.Equal(t, gfa.Node{ID: "1", Len: 5}, idx.Node(1))
	require.Equal(t, gfa.Node{ID: "11", Len: 2}, idx.Node(2))

	handle, ok := idx.Lookup("11")
	require.True(t, ok)
	require.Equal(t, 2, handle)

	_, ok = idx.Lookup("99")
	require.False(t, ok)
}

func TestParse_LNTagIsAuthoritative(t *testing.T) {
	idx, err := parse(t, "S\ts1\tACGT\tLN:i:7\tSN:Z:chr1")
	require.NoError(t, err)
	require.Equal(t, 7, idx.Node(0).Len)
}

func TestParse_StarSequenceNeedsLNTag(t *testing.T) {
	idx, err := parse(t, "S\ts1\t*\tLN:i:42")
	require.NoError(t, err)
	require.Equal(t, 42, idx.Node(0).Len)

	_, err = parse(t, "S\ts1\t*")
	require.ErrorIs(t, err, gfa.ErrMalformedGraph)
}

func TestParse_DuplicateID(t *testing.T) {
	_, err := parse(t, "S\t1\tAC\nS\t1\tGT")
	require.ErrorIs(t, err, gfa.ErrMalformedGraph)
	require.Contains(t, err.Error(), "graph.gfa:2")
}

func TestParse_MissingFields(t *testing.T) {
	_, err := parse(t, "S\t1")
	require.ErrorIs(t, err, gfa.ErrMalformedGraph)
}

func TestParse_BadLNTag(t *testing.T) {
	_, err := parse(t, "S\t1\tAC\tLN:i:abc")
	require.ErrorIs(t, err, gfa.ErrMalformedGraph)
}

func TestParse_NonSegmentLinesSkipped(t *testing.T) {
	// Lines that merely begin with the letter S are not segment records.
	idx, err := parse(t, strings.Join([]string{
		"Something else entirely",
		"P\tp1\t1+,2+\t*",
		"S\t1\tACGT",
	}, "\n"))
	require.NoError(t, err)
	require.Equal(t, 1, idx.Len())
}

func TestParse_EmptyGraph(t *testing.T) {
	idx, err := parse(t, "")
	require.NoError(t, err)
	require.Equal(t, 0, idx.Len())
}
