package tables

import (
	"sort"
	"strings"

	"github.com/finrail/tablemend/internal/grid"
)

// ScoreFloor is the score handed to tables that cannot be scored at all, so
// they lose every comparison without being special-cased by callers.
const ScoreFloor = -1e9

// Scorer ranks candidate tables. Scores are relative ordering signals with
// no absolute meaning; only comparisons between candidates matter.
type Scorer struct{}

// NewScorer returns a Scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// GridScore applies StructureScore to a raw grid by treating its compacted
// rows as an anonymous body. Used for dedup tie-breaking before any header
// exists.
func (s *Scorer) GridScore(g grid.RawGrid) float64 {
	rows := g.CompactRows()
	if len(rows) == 0 {
		return 0
	}
	return s.StructureScore(grid.FromGrid(rows))
}

// StructureScore scores the shape of a table: overall cell density, row and
// column coverage, and first-column fill. Dash placeholders count as empty
// cells here.
func (s *Scorer) StructureScore(t *grid.Table) float64 {
	rows, cols := t.NumRows(), t.NumCols()
	total := rows * cols
	if total == 0 {
		return 0
	}

	colFill := make([]int, cols)
	rowFill := make([]int, rows)
	nonEmpty := 0
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			if !grid.IsBlank(t.Cell(r, c)) {
				nonEmpty++
				colFill[c]++
				rowFill[r]++
			}
		}
	}

	score := 0.0
	ratio := float64(nonEmpty) / float64(total)
	switch {
	case ratio >= 0.25 && ratio <= 0.95:
		score += 30
	case ratio > 0.95:
		score -= 10
	default:
		score -= 15
	}

	score += coverageScore(colFill)
	score += coverageScore(rowFill)

	firstRatio := float64(colFill[0]) / float64(rows)
	if firstRatio >= 0.6 {
		score += 10
	} else if firstRatio < 0.2 {
		score -= 5
	}
	return score
}

// coverageScore rewards axes where most lines hold at least one value.
func coverageScore(fill []int) float64 {
	covered := 0
	for _, n := range fill {
		if n > 0 {
			covered++
		}
	}
	cov := float64(covered) / float64(len(fill))
	switch {
	case cov >= 0.8:
		return 20
	case cov >= 0.6:
		return 10
	default:
		return -8
	}
}

// FinancialLayoutScore scores how much a table looks like a primary
// financial statement: a text label column, one or two dense period columns,
// a note column, a statement title within the leading rows and balanced
// column fill, with penalties for prose-heavy and collapsed multi-line rows.
// Builds on StructureScore.
func (s *Scorer) FinancialLayoutScore(t *grid.Table) float64 {
	rows, cols := t.NumRows(), t.NumCols()
	if rows == 0 || cols == 0 {
		return ScoreFloor
	}
	score := s.StructureScore(t)

	switch {
	case cols >= 4 && cols <= 8:
		score += 12
	case cols >= 3 && cols <= 10:
		score += 6
	default:
		score -= 4
	}

	// Per-column profile. Emptiness is strict here: a dash placeholder is a
	// visible value and counts toward fill.
	numericRatio := make([]float64, cols)
	textRatio := make([]float64, cols)
	colFill := make([]float64, cols)
	longTextCells := 0
	for c := 0; c < cols; c++ {
		total, num, txt := 0, 0, 0
		for r := 0; r < rows; r++ {
			v := strings.TrimSpace(t.Cell(r, c))
			if v == "" {
				continue
			}
			total++
			if grid.IsNumericLike(v) {
				num++
			}
			cjk := grid.CJKCount(v)
			if cjk > 0 {
				txt++
			}
			if cjk > 20 || len([]rune(v)) > 40 {
				longTextCells++
			}
		}
		colFill[c] = float64(total)
		if total > 0 {
			numericRatio[c] = float64(num) / float64(total)
			textRatio[c] = float64(txt) / float64(total)
		}
	}

	totalCells := rows * cols
	if totalCells < 1 {
		totalCells = 1
	}
	longRatio := float64(longTextCells) / float64(totalCells)
	switch {
	case longRatio > 0.25:
		score -= 15
	case longRatio > 0.15:
		score -= 8
	default:
		score += 5
	}

	// Collapsed multi-line rows show up as an overlong first cell next to a
	// mostly empty row, or as extreme single cells.
	mergedLike, extremeRows := 0, 0
	rowFill := make([]int, rows)
	for r := 0; r < rows; r++ {
		nonEmpty := 0
		hasExtreme := false
		for c := 0; c < cols; c++ {
			v := strings.TrimSpace(t.Cell(r, c))
			if v == "" {
				continue
			}
			nonEmpty++
			if grid.CJKCount(v) >= 60 || len([]rune(v)) >= 120 {
				hasExtreme = true
			}
		}
		rowFill[r] = nonEmpty
		first := strings.TrimSpace(t.Cell(r, 0))
		sparse := 2
		if w := int(float64(cols) * 0.4); w > sparse {
			sparse = w
		}
		if (grid.CJKCount(first) >= 40 || len([]rune(first)) >= 80) && nonEmpty <= sparse {
			mergedLike++
		}
		if hasExtreme {
			extremeRows++
		}
	}
	if extremeRows >= 1 {
		score -= 18
	}
	if extremeRows >= 3 {
		score -= 10
	}
	mergedRatio := float64(mergedLike) / float64(rows)
	switch {
	case mergedRatio > 0.20:
		score -= 28
	case mergedRatio > 0.10:
		score -= 16
	case mergedRatio > 0.05:
		score -= 8
	}
	sorted := append([]int(nil), rowFill...)
	sort.Ints(sorted)
	median := sorted[len(sorted)/2]
	sum := 0
	for _, n := range rowFill {
		sum += n
	}
	avg := float64(sum) / float64(rows)
	if median < 2 {
		score -= 12
	} else if avg < 2.2 {
		score -= 6
	}

	// Label-like first column: text heavy, number light.
	switch {
	case textRatio[0] >= 0.60 && numericRatio[0] <= 0.20:
		score += 14
	case textRatio[0] >= 0.45 && numericRatio[0] <= 0.30:
		score += 6
	default:
		score -= 4
	}

	// The two densest numeric columns should read as period or value
	// columns, by header or by fill.
	idx := make([]int, cols)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if numericRatio[idx[a]] != numericRatio[idx[b]] {
			return numericRatio[idx[a]] > numericRatio[idx[b]]
		}
		return idx[a] > idx[b]
	})
	top := 2
	if cols < top {
		top = cols
	}
	strong := 0
	for _, i := range idx[:top] {
		if periodHeaderPattern.MatchString(grid.Fold(t.Columns[i])) || numericRatio[i] >= 0.70 {
			strong++
		}
	}
	if strong == 2 {
		score += 18
	} else if strong == 1 {
		score += 8
	}

	if hasNoteColumn(t) {
		score += 10
	}

	limit := 3
	if rows < limit {
		limit = rows
	}
	var head strings.Builder
	for r := 0; r < limit; r++ {
		if r > 0 {
			head.WriteByte('\n')
		}
		head.WriteString(strings.Join(t.Rows[r], " "))
	}
	if statementTitlePattern.MatchString(head.String()) {
		score += 20
	}

	var fillSum float64
	for _, f := range colFill {
		fillSum += f
	}
	if fillSum > 0 {
		switch cv := grid.CoefficientOfVariation(colFill); {
		case cv < 0.30:
			score += 8
		case cv < 0.50:
			score += 4
		default:
			score -= 2
		}
	}
	return score
}

// hasNoteColumn reports whether any column is a note-reference column, by
// header marker or by a body dominated by short ordinals.
func hasNoteColumn(t *grid.Table) bool {
	for c := 0; c < t.NumCols(); c++ {
		for _, m := range noteHeaderMarkers {
			if strings.Contains(t.Columns[c], m) {
				return true
			}
		}
		total, short := 0, 0
		for r := 0; r < t.NumRows(); r++ {
			v := strings.TrimSpace(t.Cell(r, c))
			if v == "" {
				continue
			}
			total++
			if grid.IsCJKNumeral(v) {
				short++
			}
		}
		if total > 0 && float64(short)/float64(total) >= 0.5 {
			return true
		}
	}
	return false
}
