package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table prints aligned columns under a header and a dashed rule. Nothing is
// printed until the first row, so a table with no rows leaves no trace.
type Table struct {
	tw      *tabwriter.Writer
	columns []string
	indent  string
	started bool
}

// NewTable returns a table writing to out.
func NewTable(out io.Writer, columns ...string) *Table {
	return &Table{
		tw:      tabwriter.NewWriter(out, 0, 0, 2, ' ', 0),
		columns: columns,
	}
}

// Indent prefixes every printed line with indent.
func (t *Table) Indent(indent string) *Table {
	t.indent = indent
	return t
}

// Row adds one line of cells.
func (t *Table) Row(cells ...string) {
	if !t.started {
		t.started = true
		rule := make([]string, len(t.columns))
		for i, c := range t.columns {
			rule[i] = strings.Repeat("-", len(c))
		}
		t.line(t.columns)
		t.line(rule)
	}
	t.line(cells)
}

// Flush aligns and writes everything added so far.
func (t *Table) Flush() {
	if t.started {
		t.tw.Flush()
	}
}

func (t *Table) line(cells []string) {
	fmt.Fprintln(t.tw, t.indent+strings.Join(cells, "\t"))
}
