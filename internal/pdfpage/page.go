// Package pdfpage provides positioned-text access to PDF pages and turns the
// text layout into raw cell grids. It is the only package in the module that
// talks to a PDF library; everything above it consumes the Page and Document
// interfaces defined here.
package pdfpage

import "github.com/finrail/tablemend/internal/grid"

// Detection strategy names accepted by Settings. The "lines" strategies rely
// on vector ruling lines, which this provider does not read; they always
// produce zero candidates.
const (
	StrategyLines = "lines"
	StrategyText  = "text"
)

// Defaults applied to zero-valued Settings fields.
const (
	defaultTolerance     = 3.0
	defaultMinWordsVert  = 3
	defaultMinWordsHoriz = 1
)

// Settings controls a single table-detection pass over a page.
type Settings struct {
	VerticalStrategy      string
	HorizontalStrategy    string
	SnapTolerance         float64
	JoinTolerance         float64
	TextTolerance         float64
	IntersectionTolerance float64
	EdgeMinLength         float64
	MinWordsVertical      int
	MinWordsHorizontal    int
}

// DefaultSettings returns the provider's native text-clustering settings.
func DefaultSettings() Settings {
	return Settings{
		VerticalStrategy:      StrategyText,
		HorizontalStrategy:    StrategyText,
		SnapTolerance:         defaultTolerance,
		JoinTolerance:         defaultTolerance,
		TextTolerance:         defaultTolerance,
		IntersectionTolerance: defaultTolerance,
		EdgeMinLength:         defaultTolerance,
		MinWordsVertical:      defaultMinWordsVert,
		MinWordsHorizontal:    defaultMinWordsHoriz,
	}
}

// normalized fills zero-valued fields with provider defaults so that a zero
// Settings literal means "provider defaults".
func (s Settings) normalized() Settings {
	if s.VerticalStrategy == "" {
		s.VerticalStrategy = StrategyText
	}
	if s.HorizontalStrategy == "" {
		s.HorizontalStrategy = StrategyText
	}
	if s.SnapTolerance <= 0 {
		s.SnapTolerance = defaultTolerance
	}
	if s.JoinTolerance <= 0 {
		s.JoinTolerance = defaultTolerance
	}
	if s.TextTolerance <= 0 {
		s.TextTolerance = defaultTolerance
	}
	if s.IntersectionTolerance <= 0 {
		s.IntersectionTolerance = defaultTolerance
	}
	if s.EdgeMinLength <= 0 {
		s.EdgeMinLength = defaultTolerance
	}
	if s.MinWordsVertical <= 0 {
		s.MinWordsVertical = defaultMinWordsVert
	}
	if s.MinWordsHorizontal <= 0 {
		s.MinWordsHorizontal = defaultMinWordsHoriz
	}
	return s
}

// usesRulingLines reports whether either axis depends on vector ruling lines.
func (s Settings) usesRulingLines() bool {
	return s.VerticalStrategy == StrategyLines || s.HorizontalStrategy == StrategyLines
}

// DetectedTable is a table found on a page whose cell grid can be extracted.
type DetectedTable interface {
	Extract() (grid.RawGrid, error)
}

// Page is one 1-based page of an open document.
type Page interface {
	// Number returns the 1-based page number.
	Number() int
	// FindTables runs the provider's native detection and returns the table
	// objects it found.
	FindTables(Settings) ([]DetectedTable, error)
	// ExtractTables detects tables with the given settings and returns their
	// cell grids. A page without detectable tables yields an empty slice and
	// no error.
	ExtractTables(Settings) ([]grid.RawGrid, error)
	// Title returns a short detected page title, or "" when none is found.
	Title() string
}

// Document is an open PDF file.
type Document interface {
	Path() string
	PageCount() int
	Page(n int) (Page, error)
	Close() error
}
