// Package filter prunes persisted tables that are not usable financial data
// and promotes the best table files per page into a curated directory.
package filter

// Filter variants. The hk variant carries the thresholds tuned for HK listed
// company filings; generic is the conservative fallback for other documents.
const (
	VariantHK      = "hk"
	VariantGeneric = "generic"
)

// Thresholds bound the hk variant's delete decisions. All counts apply to
// body cells (the header row is not data).
type Thresholds struct {
	// MinCols deletes tables narrower than this.
	MinCols int
	// MinRows deletes tables with fewer data rows than this.
	MinRows int
	// TextHeavyMaxCells is the highest tolerated count of cells whose CJK
	// rune count exceeds TextHeavyCJK.
	TextHeavyMaxCells int
	TextHeavyCJK      int
	// LongCellMaxCount is the highest tolerated count of cells with at least
	// LongCellCJK CJK runes.
	LongCellMaxCount int
	LongCellCJK      int
	// StrictLongCellCJK deletes on a single cell reaching this many CJK runes.
	StrictLongCellCJK int
	// EmptyRatioMax deletes when the blank share of body cells exceeds it.
	EmptyRatioMax float64
	// EmptyRunLen deletes on a run of this many consecutive blank cells along
	// any row or column, unless the table has at least WideTableCols columns.
	EmptyRunLen   int
	WideTableCols int
}

// DefaultThresholds returns the hk variant's tuned limits.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinCols:           3,
		MinRows:           7,
		TextHeavyMaxCells: 8,
		TextHeavyCJK:      20,
		LongCellMaxCount:  0,
		LongCellCJK:       30,
		StrictLongCellCJK: 40,
		EmptyRatioMax:     0.40,
		EmptyRunLen:       6,
		WideTableCols:     4,
	}
}
