package formatter

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
)

const columnGap = 2

// Table prints aligned columns. Widths are measured in terminal cells, so
// Korean text and styled (ANSI colored) cells line up.
type Table struct {
	w        io.Writer
	headers  []string
	rows     [][]string
	maxWidth map[int]int // column index -> max runes (0 = unlimited)
}

// NewTable creates a table that writes to w with the given column headers.
func NewTable(w io.Writer, headers ...string) *Table {
	return &Table{
		w:        w,
		headers:  headers,
		maxWidth: make(map[int]int),
	}
}

// SetMaxWidth sets the maximum width in runes for a column (0-indexed).
// Longer values are cut and end in "...".
func (t *Table) SetMaxWidth(col, width int) *Table {
	t.maxWidth[col] = width
	return t
}

// AddRow appends a row. Values beyond the header count are dropped and
// missing ones are left blank.
func (t *Table) AddRow(values ...string) {
	cells := make([]string, len(t.headers))
	for i := range cells {
		if i < len(values) {
			cells[i] = t.truncate(i, values[i])
		}
	}
	t.rows = append(t.rows, cells)
}

// Render writes the header, a dashed separator and every row.
// A table without rows writes nothing.
func (t *Table) Render() error {
	if len(t.rows) == 0 {
		return nil
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	seps := make([]string, len(t.headers))
	for i, h := range t.headers {
		seps[i] = strings.Repeat("-", utf8.RuneCountInString(h))
	}

	var b strings.Builder
	writeLine(&b, t.headers, widths)
	writeLine(&b, seps, widths)
	for _, row := range t.rows {
		writeLine(&b, row, widths)
	}
	_, err := io.WriteString(t.w, b.String())
	return err
}

func writeLine(b *strings.Builder, cells []string, widths []int) {
	for i, cell := range cells {
		b.WriteString(cell)
		if i < len(cells)-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+columnGap))
		}
	}
	b.WriteByte('\n')
}

// truncate cuts on rune boundaries so Korean task names stay valid UTF-8.
func (t *Table) truncate(col int, s string) string {
	limit, ok := t.maxWidth[col]
	if !ok || limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
