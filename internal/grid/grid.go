// Package grid defines the tabular value types shared across the recovery
// pipeline and the cell-level heuristics used to classify their contents.
// Cells stay strings end to end; nothing in this package parses numbers into
// numeric types.
package grid

import "math"

// RawGrid is a table candidate as it leaves a detection strategy. Rows may be
// ragged, cells may be empty, and no cleanup has happened yet.
type RawGrid [][]string

// MaxWidth returns the length of the widest row.
func (g RawGrid) MaxWidth() int {
	w := 0
	for _, r := range g {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// CompactRows drops rows without a single non-empty cell and pads the
// survivors to a uniform width. The result is safe to index rectangularly.
func (g RawGrid) CompactRows() RawGrid {
	kept := make(RawGrid, 0, len(g))
	for _, r := range g {
		for _, c := range r {
			if !IsEmpty(c) {
				kept = append(kept, r)
				break
			}
		}
	}
	w := kept.MaxWidth()
	out := make(RawGrid, len(kept))
	for i, r := range kept {
		row := make([]string, w)
		copy(row, r)
		out[i] = row
	}
	return out
}

// NonEmptyRowCount reports how many rows carry at least one non-empty cell.
func (g RawGrid) NonEmptyRowCount() int {
	n := 0
	for _, r := range g {
		for _, c := range r {
			if !IsEmpty(c) {
				n++
				break
			}
		}
	}
	return n
}

// Table is a rectangular table with named columns. Every row has exactly
// len(Columns) cells at all times.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable builds a rectangular table from column names and body rows. Short
// rows are padded with empty cells and rows wider than the column set extend
// it with empty names, so cell data is never dropped.
func NewTable(columns []string, rows [][]string) *Table {
	w := len(columns)
	for _, r := range rows {
		if len(r) > w {
			w = len(r)
		}
	}
	cols := make([]string, w)
	copy(cols, columns)
	body := make([][]string, len(rows))
	for i, r := range rows {
		row := make([]string, w)
		copy(row, r)
		body[i] = row
	}
	return &Table{Columns: cols, Rows: body}
}

// FromGrid normalizes a raw grid into an anonymous table: every row padded
// to the grid's maximum width under empty column names. Nil rows become rows
// of empty cells. Used where only shape matters and no header exists yet.
func FromGrid(g RawGrid) *Table {
	w := g.MaxWidth()
	rows := make([][]string, len(g))
	for i, r := range g {
		row := make([]string, w)
		copy(row, r)
		rows[i] = row
	}
	return &Table{Columns: make([]string, w), Rows: rows}
}

// NumRows returns the number of body rows.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// Cell returns the body cell at (row, col).
func (t *Table) Cell(row, col int) string {
	return t.Rows[row][col]
}

// Column returns the body values of column i in row order.
func (t *Table) Column(i int) []string {
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	return NewTable(t.Columns, t.Rows)
}

// DropEmptyColumns removes every column whose body cells are all empty after
// trimming. A column holding any visible value, including dash placeholders,
// survives. Returns a new table.
func (t *Table) DropEmptyColumns() *Table {
	if t == nil || t.NumCols() == 0 {
		return t
	}
	keep := make([]int, 0, t.NumCols())
	for c := range t.Columns {
		for r := range t.Rows {
			if !IsEmpty(t.Rows[r][c]) {
				keep = append(keep, c)
				break
			}
		}
	}
	if len(keep) == t.NumCols() {
		return t.Clone()
	}
	cols := make([]string, len(keep))
	for i, c := range keep {
		cols[i] = t.Columns[c]
	}
	rows := make([][]string, len(t.Rows))
	for r := range t.Rows {
		row := make([]string, len(keep))
		for i, c := range keep {
			row[i] = t.Rows[r][c]
		}
		rows[r] = row
	}
	return &Table{Columns: cols, Rows: rows}
}

// CoefficientOfVariation returns stddev/mean of the samples, or 0 when the
// input is empty or has a non-positive mean. Used as a uniformity signal for
// column fill counts.
func CoefficientOfVariation(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	if mean <= 0 {
		return 0
	}
	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return math.Sqrt(sq/float64(len(xs))) / mean
}
