// Package emit renders a finalized coverage vector in the two supported
// shapes: a sample row with one column per node, or one value per line.
package emit

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/vk/gafcover/internal/gfa"
)

// Row writes a two-line table: a #sample header naming every node in graph
// declaration order, then the sample row with one coverage value per node.
func Row(w io.Writer, label string, index *gfa.Index, vec []float64) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("#sample")
	for i := 0; i < index.Len(); i++ {
		bw.WriteString("\tnode.")
		bw.WriteString(index.Node(i).ID)
	}
	bw.WriteByte('\n')
	bw.WriteString(label)
	for _, v := range vec {
		bw.WriteByte('\t')
		bw.WriteString(formatValue(v))
	}
	bw.WriteByte('\n')
	return bw.Flush()
}

// Column writes the sample name as a comment, a #coverage header, then one
// value per line in graph declaration order.
func Column(w io.Writer, label string, index *gfa.Index, vec []float64) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "##sample: %s\n#coverage\n", label)
	for _, v := range vec {
		bw.WriteString(formatValue(v))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// formatValue renders the shortest representation that round-trips back to
// the same float64, so repeated emission is byte-identical.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
