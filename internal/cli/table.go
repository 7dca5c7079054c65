package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table writes aligned columns. Cells must not contain tabs.
type Table struct {
	w *tabwriter.Writer
}

// NewTable starts a table on w.
func NewTable(w io.Writer) *Table {
	return &Table{w: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

// Header writes the column titles.
func (t *Table) Header(cols ...string) {
	styled := make([]string, len(cols))
	for i, c := range cols {
		styled[i] = TableHeaderStyle.Render(c)
	}
	t.Row(styled...)
}

// Row writes one line.
func (t *Table) Row(cols ...string) {
	_, _ = fmt.Fprintln(t.w, strings.Join(cols, "\t"))
}

// Flush writes buffered rows to the underlying writer.
func (t *Table) Flush() error {
	return t.w.Flush()
}
