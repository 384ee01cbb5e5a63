// Package gaf parses GAF alignment records against a fixed graph index,
// reducing each record to the per-node overlap lengths its target window
// covers along the traversed path.
package gaf

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vk/gafcover/internal/gfa"
)

var (
	// ErrMalformedAlignment is returned when a record has too few fields,
	// non-numeric offsets, or an ill-formed path.
	ErrMalformedAlignment = errors.New("malformed alignment")

	// ErrUnknownNode is returned when a record's path references a node
	// that is absent from the graph index.
	ErrUnknownNode = errors.New("unknown node")
)

// minFields is the number of tab-separated fields needed to locate the
// consumed columns (query name, path, target start, target end). The
// remaining GAF columns are never touched.
const minFields = 9

// Step is one node visited by a record's path, with the overlap length the
// record's target window attributes to it.
type Step struct {
	Node    int  // handle into the graph index
	Reverse bool // traversal orientation; carried through, no effect on coverage
	Overlap int
}

// Record is one parsed alignment line. A record whose path field is "*"
// (unaligned) has no steps.
type Record struct {
	Query string
	Steps []Step
}

// Parser parses GAF lines against a fixed graph index. The label names the
// alignment source in errors.
type Parser struct {
	index *gfa.Index
	label string
}

// NewParser returns a Parser bound to the given index.
func NewParser(index *gfa.Index, label string) *Parser {
	return &Parser{index: index, label: label}
}

// ParseLine parses one alignment line. GAF fields are positional: 0 query
// name, 5 path, 7 target start, 8 target end; everything else is skipped.
// The per-node overlap is the intersection of the half-open target window
// with each node's cumulative offset range along the path; nodes disjoint
// from the window are excluded from the step list.
func (p *Parser) ParseLine(line string, num int) (*Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < minFields {
		return nil, p.malformed(num, fmt.Sprintf("need at least %d fields, got %d", minFields, len(fields)))
	}
	rec := &Record{Query: fields[0]}

	path := fields[5]
	if path == "*" {
		return rec, nil
	}

	targetStart, err := strconv.Atoi(fields[7])
	if err != nil || targetStart < 0 {
		return nil, p.malformed(num, fmt.Sprintf("bad target start %q", fields[7]))
	}
	targetEnd, err := strconv.Atoi(fields[8])
	if err != nil || targetEnd < targetStart {
		return nil, p.malformed(num, fmt.Sprintf("bad target end %q", fields[8]))
	}

	steps, pathLen, err := p.walk(path, num, targetStart, targetEnd)
	if err != nil {
		return nil, err
	}
	if targetEnd > pathLen {
		return nil, p.malformed(num, fmt.Sprintf("target window [%d,%d) exceeds path length %d", targetStart, targetEnd, pathLen))
	}
	rec.Steps = steps
	return rec, nil
}

// walk expands the path field (a concatenation of '>'/'<' prefixed node
// ids) into steps, returning the steps inside the target window and the
// total path length.
func (p *Parser) walk(path string, num, start, end int) ([]Step, int, error) {
	if path == "" || (path[0] != '>' && path[0] != '<') {
		return nil, 0, p.malformed(num, "path does not start with an orientation marker")
	}

	var steps []Step
	off := 0
	for i := 0; i < len(path); {
		reverse := path[i] == '<'
		j := i + 1
		for j < len(path) && path[j] != '>' && path[j] != '<' {
			j++
		}
		id := path[i+1 : j]
		if id == "" {
			return nil, 0, p.malformed(num, "empty node id in path")
		}

		handle, ok := p.index.Lookup(id)
		if !ok {
			return nil, 0, fmt.Errorf("%s:%d: path references node %q absent from the graph: %w", p.label, num, id, ErrUnknownNode)
		}

		nodeLen := p.index.Node(handle).Len
		lo := max(off, start)
		hi := min(off+nodeLen, end)
		if hi > lo {
			steps = append(steps, Step{Node: handle, Reverse: reverse, Overlap: hi - lo})
		}
		off += nodeLen
		i = j
	}
	return steps, off, nil
}

func (p *Parser) malformed(num int, msg string) error {
	return fmt.Errorf("%s:%d: %s: %w", p.label, num, msg, ErrMalformedAlignment)
}
