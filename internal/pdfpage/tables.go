package pdfpage

import (
	"sort"
	"strings"

	"github.com/finrail/tablemend/internal/grid"
)

// gridFromLines builds a raw cell grid from assembled lines using the text
// clustering strategy. Column boundaries are clusters of word left edges with
// at least MinWordsVertical members; every line with at least
// MinWordsHorizontal words anchors a row, and sparser lines fold into the row
// above them. Returns nil when the page does not support a table.
func gridFromLines(lines []textLine, s Settings) grid.RawGrid {
	if len(lines) == 0 {
		return nil
	}

	var lefts []float64
	for _, l := range lines {
		for _, w := range l.words {
			lefts = append(lefts, w.x0)
		}
	}

	bounds := clusterBoundaries(lefts, s.SnapTolerance, s.MinWordsVertical)
	if len(bounds) == 0 {
		return nil
	}

	rows := 0
	for _, l := range lines {
		if len(l.words) >= s.MinWordsHorizontal {
			rows++
		}
	}
	if rows < 2 {
		return nil
	}

	cells := make([][]cellText, rows)
	for i := range cells {
		cells[i] = make([]cellText, len(bounds))
	}

	row := -1
	for lineIdx, l := range lines {
		if len(l.words) >= s.MinWordsHorizontal {
			row++
		}
		if row < 0 {
			// Sparse text above the first anchored row.
			continue
		}
		for _, w := range l.words {
			col := columnIndex(bounds, w.x0, s.SnapTolerance)
			cells[row][col].add(w.text, lineIdx)
		}
	}

	out := make(grid.RawGrid, rows)
	for i, rowCells := range cells {
		out[i] = make([]string, len(rowCells))
		for j := range rowCells {
			out[i][j] = rowCells[j].String()
		}
	}
	return out
}

// clusterBoundaries groups sorted values by single linkage within tol and
// returns the minimum of every cluster with at least minMembers values.
func clusterBoundaries(values []float64, tol float64, minMembers int) []float64 {
	if len(values) == 0 {
		return nil
	}
	sort.Float64s(values)

	var bounds []float64
	start := 0
	for i := 1; i <= len(values); i++ {
		if i < len(values) && values[i]-values[i-1] <= tol {
			continue
		}
		if i-start >= minMembers {
			bounds = append(bounds, values[start])
		}
		start = i
	}
	return bounds
}

// columnIndex places a word's left edge into the column band it starts in.
// Edges slightly left of a boundary snap onto it; anything left of the first
// boundary lands in the first column.
func columnIndex(bounds []float64, x0, tol float64) int {
	i := sort.SearchFloat64s(bounds, x0+tol)
	if i == 0 {
		return 0
	}
	return i - 1
}

// cellText accumulates the words assigned to one cell. Words from the same
// source line join with a space, stacked fragments from later lines with a
// newline.
type cellText struct {
	b        strings.Builder
	lastLine int
	filled   bool
}

func (c *cellText) add(text string, lineIdx int) {
	switch {
	case !c.filled:
	case c.lastLine == lineIdx:
		c.b.WriteString(" ")
	default:
		c.b.WriteString("\n")
	}
	c.b.WriteString(text)
	c.lastLine = lineIdx
	c.filled = true
}

func (c *cellText) String() string {
	return c.b.String()
}
