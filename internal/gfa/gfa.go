// Package gfa builds the graph-node index from a GFA description: a stable
// node-id to length mapping that preserves declaration order. Declaration
// order fixes the column order of all emitted output.
package gfa

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vk/gafcover/internal/source"
)

// ErrMalformedGraph is returned for node declarations that are missing
// fields, collide with an earlier declaration, or carry an unusable length.
var ErrMalformedGraph = errors.New("malformed graph")

// Node is one segment of the pangenome graph.
type Node struct {
	ID  string
	Len int
}

// Index is the immutable ordered node set built from a graph description.
// Nodes are addressed by a small integer handle (their declaration position)
// so the alignment hot path never compares id strings.
type Index struct {
	nodes  []Node
	handle map[string]int
}

// Parse reads a GFA stream and builds the Index. Only S (segment) records
// are consumed; headers, links, paths and every other record kind are
// skipped. Sequence text is not retained, only its length survives. An
// explicit LN:i: tag is authoritative and overrides the literal sequence
// length; a "*" sequence requires one.
func Parse(op source.Opener) (*Index, error) {
	idx := &Index{handle: make(map[string]int)}
	err := source.ForEachLine(op, func(line string, num int) error {
		if !strings.HasPrefix(line, "S\t") {
			return nil
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			return fmt.Errorf("%s:%d: segment record needs an id and a sequence: %w", op.Label(), num, ErrMalformedGraph)
		}
		id, seq := fields[1], fields[2]
		if id == "" {
			return fmt.Errorf("%s:%d: segment record with empty id: %w", op.Label(), num, ErrMalformedGraph)
		}
		if _, dup := idx.handle[id]; dup {
			return fmt.Errorf("%s:%d: duplicate segment id %q: %w", op.Label(), num, id, ErrMalformedGraph)
		}

		length := len(seq)
		declared, ok, tagErr := lnTag(fields[3:])
		if tagErr != nil {
			return fmt.Errorf("%s:%d: segment %q: %s: %w", op.Label(), num, id, tagErr, ErrMalformedGraph)
		}
		switch {
		case ok:
			length = declared
		case seq == "*":
			return fmt.Errorf("%s:%d: segment %q has no sequence and no LN tag: %w", op.Label(), num, id, ErrMalformedGraph)
		}

		idx.handle[id] = len(idx.nodes)
		idx.nodes = append(idx.nodes, Node{ID: id, Len: length})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// lnTag scans a segment's optional tags for a declared LN:i: length.
func lnTag(tags []string) (int, bool, error) {
	for _, tag := range tags {
		if !strings.HasPrefix(tag, "LN:i:") {
			continue
		}
		n, err := strconv.Atoi(tag[len("LN:i:"):])
		if err != nil || n < 0 {
			return 0, false, fmt.Errorf("bad length tag %q", tag)
		}
		return n, true, nil
	}
	return 0, false, nil
}

// Len returns the number of nodes in the index.
func (x *Index) Len() int { return len(x.nodes) }

// Node returns the node at handle i, in declaration order.
func (x *Index) Node(i int) Node { return x.nodes[i] }

// Lookup resolves a node id to its handle.
func (x *Index) Lookup(id string) (int, bool) {
	i, ok := x.handle[id]
	return i, ok
}
