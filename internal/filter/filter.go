package filter

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/finrail/tablemend/internal/grid"
	"github.com/finrail/tablemend/internal/store"
)

// Contact noise that marks a table as directory or cover-sheet content
// rather than financial data.
var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	urlPattern   = regexp.MustCompile(`(?i)https?://\S+|www\.\S+`)
	phonePattern = regexp.MustCompile(`\(?\+?\d{3,4}\)?[-.\s]\d{3,4}[-.\s]?\d{0,4}`)
)

// FileLevelFilter deletes persisted CSVs that do not hold usable tables.
// Decisions are per file; unreadable files are always kept.
type FileLevelFilter struct {
	variant string
	limits  Thresholds
	logger  *log.Logger
}

// NewFileLevelFilter creates a filter for the given variant. Unknown variants
// fall back to hk.
func NewFileLevelFilter(variant string, limits Thresholds, logger *log.Logger) *FileLevelFilter {
	if variant != VariantGeneric {
		variant = VariantHK
	}
	return &FileLevelFilter{variant: variant, limits: limits, logger: logger}
}

// Run examines every CSV under dir and deletes the files judged not to be
// data tables. A file that cannot be read or removed stays. Returns the kept
// and deleted counts.
func (f *FileLevelFilter) Run(dir string) (kept, deleted int, err error) {
	paths, err := store.ListCSV(dir)
	if err != nil {
		return 0, 0, err
	}

	for _, path := range paths {
		tbl, readErr := store.ReadTable(path)
		if readErr != nil {
			f.logger.Printf("keeping unreadable %s: %v", filepath.Base(path), readErr)
			kept++
			continue
		}

		drop, reason := f.judge(tbl)
		if !drop {
			kept++
			continue
		}
		if rmErr := os.Remove(path); rmErr != nil {
			f.logger.Printf("failed to delete %s: %v", filepath.Base(path), rmErr)
			kept++
			continue
		}
		f.logger.Printf("deleted %s: %s", filepath.Base(path), reason)
		deleted++
	}
	return kept, deleted, nil
}

func (f *FileLevelFilter) judge(tbl grid.Table) (bool, string) {
	if f.variant == VariantGeneric {
		return f.judgeGeneric(tbl)
	}
	return f.judgeHK(tbl)
}

// judgeHK applies the hk checks in their contractual order; the first hit
// decides.
func (f *FileLevelFilter) judgeHK(tbl grid.Table) (bool, string) {
	if tbl.NumCols() < f.limits.MinCols {
		return true, fmt.Sprintf("only %d columns", tbl.NumCols())
	}
	if tbl.NumRows() < f.limits.MinRows {
		return true, fmt.Sprintf("only %d data rows", tbl.NumRows())
	}

	textHeavy := 0
	longCells := 0
	maxCJK := 0
	blank := 0
	total := 0
	for _, row := range tbl.Rows {
		for _, cell := range row {
			total++
			if strings.TrimSpace(cell) == "" {
				blank++
				continue
			}
			cjk := grid.CJKCount(cell)
			if cjk > f.limits.TextHeavyCJK {
				textHeavy++
			}
			if cjk >= f.limits.LongCellCJK {
				longCells++
			}
			if cjk > maxCJK {
				maxCJK = cjk
			}
		}
	}

	if textHeavy > f.limits.TextHeavyMaxCells {
		return true, fmt.Sprintf("%d text-heavy cells", textHeavy)
	}
	if longCells > f.limits.LongCellMaxCount {
		return true, fmt.Sprintf("%d long text cells", longCells)
	}
	if maxCJK >= f.limits.StrictLongCellCJK {
		return true, fmt.Sprintf("cell with %d CJK runes", maxCJK)
	}
	if total > 0 && float64(blank)/float64(total) > f.limits.EmptyRatioMax {
		return true, fmt.Sprintf("empty ratio %.2f", float64(blank)/float64(total))
	}
	if tbl.NumCols() < f.limits.WideTableCols && hasBlankRun(tbl, f.limits.EmptyRunLen) {
		return true, fmt.Sprintf("run of %d empty cells", f.limits.EmptyRunLen)
	}
	return false, ""
}

// judgeGeneric is the conservative variant for documents outside the HK
// filing layout.
func (f *FileLevelFilter) judgeGeneric(tbl grid.Table) (bool, string) {
	if tbl.NumCols() <= 1 {
		return true, "single data column"
	}
	if tbl.NumRows() < 3 || tbl.NumCols() < 2 {
		return true, fmt.Sprintf("too small: %dx%d", tbl.NumRows(), tbl.NumCols())
	}
	if allPositionalHeaders(tbl.Columns) && numericRatio(tbl) < 0.2 {
		return true, "positional headers over non-numeric body"
	}
	if n := contactCells(tbl); n >= 2 {
		return true, fmt.Sprintf("%d contact info cells", n)
	}

	blank := 0
	prose := 0
	content := 0
	total := 0
	for _, row := range tbl.Rows {
		for _, cell := range row {
			total++
			trimmed := strings.TrimSpace(cell)
			if trimmed == "" {
				blank++
				continue
			}
			content++
			if len([]rune(trimmed)) > 20 && grid.IsSentenceLike(trimmed) {
				prose++
			}
		}
	}
	if total > 0 && float64(blank)/float64(total) > 0.30 {
		return true, fmt.Sprintf("empty ratio %.2f", float64(blank)/float64(total))
	}
	if content > 0 && float64(prose)/float64(content) > 0.60 {
		return true, "mostly prose"
	}
	return false, ""
}

// hasBlankRun reports a run of n consecutive blank cells along any row or
// column.
func hasBlankRun(tbl grid.Table, n int) bool {
	if n <= 0 {
		return false
	}
	for _, row := range tbl.Rows {
		if blankRunIn(row, n) {
			return true
		}
	}
	for c := 0; c < tbl.NumCols(); c++ {
		if blankRunIn(tbl.Column(c), n) {
			return true
		}
	}
	return false
}

func blankRunIn(cells []string, n int) bool {
	run := 0
	for _, cell := range cells {
		if strings.TrimSpace(cell) == "" {
			run++
			if run >= n {
				return true
			}
			continue
		}
		run = 0
	}
	return false
}

// allPositionalHeaders reports whether no column carries a real name.
func allPositionalHeaders(columns []string) bool {
	for _, name := range columns {
		if !positionalHeader(name) {
			return false
		}
	}
	return len(columns) > 0
}

func positionalHeader(name string) bool {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return true
	}
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "unnamed") {
		return true
	}
	rest := strings.TrimPrefix(lower, "col")
	if rest == lower {
		rest = trimmed
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return rest != ""
}

func numericRatio(tbl grid.Table) float64 {
	total := 0
	numeric := 0
	for _, row := range tbl.Rows {
		for _, cell := range row {
			total++
			if grid.IsLooseNumber(strings.TrimSpace(cell)) {
				numeric++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(numeric) / float64(total)
}

func contactCells(tbl grid.Table) int {
	count := 0
	for _, row := range tbl.Rows {
		for _, cell := range row {
			if emailPattern.MatchString(cell) || urlPattern.MatchString(cell) || phonePattern.MatchString(cell) {
				count++
			}
		}
	}
	return count
}
