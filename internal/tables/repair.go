package tables

import (
	"errors"
	"fmt"
	"strings"

	"github.com/finrail/tablemend/internal/grid"
)

// ErrUnrepairable marks a candidate the repairer had to discard. Callers
// skip the candidate and move on; it never fails a document.
var ErrUnrepairable = errors.New("table not repairable")

// Repairer turns a validated raw grid into a clean rectangular table:
// header choice and reconstruction, column name dedup, multi-line row
// explosion, split-amount merging and empty-column removal.
type Repairer struct {
	scorer *Scorer
}

// NewRepairer returns a Repairer that uses the scorer to choose between
// header plans.
func NewRepairer(scorer *Scorer) *Repairer {
	return &Repairer{scorer: scorer}
}

// Repair rebuilds the grid into a table. The returned error wraps
// ErrUnrepairable when the grid cannot yield a minimally valid table.
func (rp *Repairer) Repair(g grid.RawGrid) (*grid.Table, error) {
	rows := g.CompactRows()
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: fewer than 2 content rows", ErrUnrepairable)
	}

	// Plan A: the first row is the header.
	simpleCols := make([]string, len(rows[0]))
	for j, v := range rows[0] {
		simpleCols[j] = strings.TrimSpace(v)
	}
	if simpleCols[0] == "" || isUnnamedColumn(simpleCols[0]) {
		simpleCols[0] = FirstColumnLabel
	}
	simple := grid.NewTable(simpleCols, rows[1:])

	// Plan B: stitch a header together from the leading rows.
	reconCols, reconBody := reconstructHeaders(rows)
	var recon *grid.Table
	if len(reconBody) > 0 {
		recon = grid.NewTable(reconCols, reconBody)
	}

	chosen := simple
	if recon != nil && headerHasHint(reconCols) &&
		rp.scorer.StructureScore(recon) >= rp.scorer.StructureScore(simple)+headerAdoptMargin {
		chosen = recon
	}

	t := dedupColumns(chosen)
	t = explodeRows(t)
	t = mergeSplitNumbers(t)
	t = dedupColumns(t)
	t = t.DropEmptyColumns()

	if t.NumCols() <= 1 || t.NumRows() < 2 {
		return nil, fmt.Errorf("%w: %dx%d after repair", ErrUnrepairable, t.NumRows(), t.NumCols())
	}
	return t, nil
}

// reconstructHeaders scans the leading rows for a run of header-like rows
// and composes one name per column from them. Rows above the run are
// dropped; the body starts after the run. Falls back to the first row when
// no run is found.
func reconstructHeaders(rows grid.RawGrid) ([]string, [][]string) {
	norm := make([][]string, len(rows))
	for i, r := range rows {
		nr := make([]string, len(r))
		for j, c := range r {
			nr[j] = strings.TrimSpace(normalizeNewlines(c))
		}
		norm[i] = nr
	}

	top := len(norm)
	if top > headerScanRows {
		top = headerScanRows
	}
	var run []int
	for i := 0; i < top; i++ {
		if looksLikeHeaderRow(norm[i]) {
			run = append(run, i)
		} else if len(run) > 0 {
			break
		}
	}
	if len(run) > maxHeaderRows {
		run = run[:maxHeaderRows]
	}

	if len(run) == 0 {
		cols := make([]string, len(norm[0]))
		for j, v := range norm[0] {
			switch {
			case isUnnamedColumn(v):
				cols[j] = columnPlaceholder(j)
			case v == "":
				cols[j] = columnPlaceholder(j)
			default:
				cols[j] = v
			}
		}
		if len(cols) > 0 && (norm[0][0] == "" || isUnnamedColumn(norm[0][0])) {
			cols[0] = FirstColumnLabel
		}
		return cols, norm[1:]
	}

	width := 0
	for _, r := range norm {
		if len(r) > width {
			width = len(r)
		}
	}
	parts := make([][]string, width)
	for _, hi := range run {
		r := norm[hi]
		for j := 0; j < width && j < len(r); j++ {
			v := r[j]
			if isUnnamedColumn(v) {
				v = ""
			}
			if v != "" {
				parts[j] = append(parts[j], v)
			}
		}
	}
	cols := make([]string, width)
	for j, p := range parts {
		if len(p) == 0 {
			cols[j] = columnPlaceholder(j)
		} else {
			cols[j] = strings.Join(p, " ")
		}
	}
	if len(cols) > 0 {
		cols[0] = FirstColumnLabel
	}
	return cols, norm[run[len(run)-1]+1:]
}

// looksLikeHeaderRow weighs header hints and year marks against numeric
// content. Period headers are short and text-led; body rows are number-led.
func looksLikeHeaderRow(r []string) bool {
	content := false
	for _, c := range r {
		if c != "" {
			content = true
			break
		}
	}
	if !content {
		return false
	}
	hint, year, short, numLike := 0, 0, 0, 0
	for _, c := range r {
		if headerHintIn(c) {
			hint++
		}
		if grid.HasHeaderYear(c) {
			year++
		}
		if n := len([]rune(c)); n > 0 && n <= 6 {
			short++
		}
		if grid.IsNumericLike(c) {
			numLike++
		}
	}
	score := float64(hint)*2 + float64(year) + float64(short)*0.2 - float64(numLike)*0.5
	return score >= headerRowScoreMin
}

// headerHintIn reports whether the cell contains any header hint.
func headerHintIn(cell string) bool {
	folded := grid.Fold(cell)
	for _, h := range headerHints {
		if strings.Contains(folded, h) {
			return true
		}
	}
	return false
}

// headerHasHint reports whether any composed column name carries a hint.
func headerHasHint(cols []string) bool {
	for _, c := range cols {
		if headerHintIn(c) {
			return true
		}
	}
	return false
}

// dedupColumns canonicalizes column names: the first column becomes the
// label column, blank and unnamed headers get positional placeholders, and
// repeats gain numeric suffixes so every name is unique.
func dedupColumns(t *grid.Table) *grid.Table {
	if t.NumCols() == 0 {
		return t
	}
	out := t.Clone()
	seen := make(map[string]int, len(out.Columns))
	for i, c := range out.Columns {
		base := strings.TrimSpace(c)
		if base == "" || isUnnamedColumn(base) {
			base = columnPlaceholder(i)
		}
		if i == 0 {
			base = FirstColumnLabel
		}
		if n, ok := seen[base]; ok {
			next := n + 1
			suffixed := fmt.Sprintf("%s_%d", base, next)
			for {
				if _, clash := seen[suffixed]; !clash {
					break
				}
				next++
				suffixed = fmt.Sprintf("%s_%d", base, next)
			}
			seen[base] = next
			seen[suffixed] = 1
			base = suffixed
		} else {
			seen[base] = 1
		}
		out.Columns[i] = base
	}
	return out
}

// explodeRows splits rows holding multi-line cells into one row per line.
// A cell with a single value repeats on every emitted row; a cell with
// fewer lines than the row's maximum runs out and leaves blanks. Dash-only
// lines are dropped.
func explodeRows(t *grid.Table) *grid.Table {
	out := make([][]string, 0, t.NumRows())
	for _, row := range t.Rows {
		segs := make([][]string, len(row))
		maxSegs := 0
		for c, v := range row {
			segs[c] = splitSegments(v)
			if len(segs[c]) > maxSegs {
				maxSegs = len(segs[c])
			}
		}
		if maxSegs < 2 {
			out = append(out, append([]string(nil), row...))
			continue
		}
		for i := 0; i < maxSegs; i++ {
			emitted := make([]string, len(row))
			for c, sg := range segs {
				switch {
				case len(sg) == 0:
					emitted[c] = ""
				case len(sg) == 1:
					emitted[c] = sg[0]
				case i < len(sg):
					emitted[c] = sg[i]
				default:
					emitted[c] = ""
				}
			}
			out = append(out, emitted)
		}
	}
	return &grid.Table{Columns: append([]string(nil), t.Columns...), Rows: out}
}

// splitSegments breaks a cell into its visible lines.
func splitSegments(v string) []string {
	var out []string
	for _, p := range strings.Split(normalizeNewlines(v), "\n") {
		p = strings.TrimSpace(p)
		if p == "" || p == "-" || p == "–" || p == "—" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// mergeSplitNumbers repairs amounts that column detection cut in two, for
// every adjacent column pair right of the label column. "95,88" next to "8"
// becomes "95,888"; parentheses on either piece keep the negative.
func mergeSplitNumbers(t *grid.Table) *grid.Table {
	if t.NumCols() < 3 {
		return t
	}
	out := t.Clone()
	for pass := 0; pass < mergePassLimit; pass++ {
		changed := false
		for k := 1; k+1 < out.NumCols(); k++ {
			for r := range out.Rows {
				a := strings.TrimSpace(out.Rows[r][k])
				b := strings.TrimSpace(out.Rows[r][k+1])
				if a == "" && b == "" {
					continue
				}
				if !mergeablePair(a, b) {
					continue
				}
				neg := grid.HasNegativeParen(a) || grid.HasNegativeParen(b)
				digits := grid.DigitsOnly(a) + grid.DigitsOnly(b)
				if digits == "" {
					continue
				}
				out.Rows[r][k] = grid.GroupThousands(digits, neg)
				out.Rows[r][k+1] = ""
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return out
}

// mergeablePair reports whether two adjacent cells read as one split amount.
func mergeablePair(a, b string) bool {
	switch {
	case grid.IsNumberFragment(a) && grid.IsSmallInt(b):
		return true
	case grid.IsSmallInt(a) && grid.IsNumberFragment(b):
		return true
	case grid.IsNumberFragment(a) && grid.IsNumberFragment(b):
		return true
	}
	return false
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func isUnnamedColumn(s string) bool {
	return strings.HasPrefix(strings.ToLower(s), "unnamed:")
}

func columnPlaceholder(i int) string {
	return fmt.Sprintf("%s%d", columnPlaceholderPrefix, i+1)
}
