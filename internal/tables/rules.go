package tables

import "regexp"

// Keyword and pattern tables for Hong Kong listed-company statements, with
// the English equivalents that appear in bilingual filings. Matching is done
// on width-folded text, so full-width percent signs and digits hit the same
// entries.

// headerHints mark a row as belonging to a table header.
var headerHints = []string{
	"IFRS", "港幣", "百萬元", "變動", "%", "年度", "年", "每股", "附註", "附注", "以常地貨幣",
	"Note", "Year", "Change",
}

// noteHeaderMarkers identify a note-reference column by its header.
var noteHeaderMarkers = []string{"附註", "附注", "Note"}

// periodHeaderPattern marks a column header as a reporting period or unit.
var periodHeaderPattern = regexp.MustCompile(`20\d{2}|港幣|百萬元|%`)

// statementTitlePattern matches primary-statement names in leading rows.
var statementTitlePattern = regexp.MustCompile(`(?i)綜合(全面)?收益表|財務狀況表|現金流量表|權益變動表|財務表現概要|財務表現概覽|income statement|statement of financial position|balance sheet|cash flow|changes in equity`)

// ValidatorThresholds are the accept/reject ratio limits used by Validator,
// split by table size. A large table is one with at least LargeTableRows
// non-empty rows.
type ValidatorThresholds struct {
	LargeTableRows int

	// rejection ceilings, large/small
	LongTextMaxLarge float64
	LongTextMaxSmall float64
	PureTextMaxLarge float64
	PureTextMaxSmall float64
	AvgLenMaxLarge   float64
	AvgLenMaxSmall   float64
	// numeric floor paired with the average-length ceiling
	AvgLenNumericFloorLarge float64
	AvgLenNumericFloorSmall float64
	// financial-format floors and their paired numeric floors
	FinancialFloorLarge  float64
	FinancialFloorSmall  float64
	NumericFloorLarge    float64
	NumericFloorSmall    float64
	LongTextCellRunes    int
	SentenceExtraPenalty float64
}

// DefaultValidatorThresholds returns the limits tuned on HK annual reports.
func DefaultValidatorThresholds() ValidatorThresholds {
	return ValidatorThresholds{
		LargeTableRows:          10,
		LongTextMaxLarge:        0.90,
		LongTextMaxSmall:        0.85,
		PureTextMaxLarge:        0.995,
		PureTextMaxSmall:        0.99,
		AvgLenMaxLarge:          80,
		AvgLenMaxSmall:          70,
		AvgLenNumericFloorLarge: 0.05,
		AvgLenNumericFloorSmall: 0.08,
		FinancialFloorLarge:     0.01,
		FinancialFloorSmall:     0.02,
		NumericFloorLarge:       0.10,
		NumericFloorSmall:       0.15,
		LongTextCellRunes:       20,
		SentenceExtraPenalty:    0.5,
	}
}

// Repair constants shared by the header reconstruction path.
const (
	// FirstColumnLabel is the canonical name given to the label column of
	// every repaired table.
	FirstColumnLabel = "item"

	// columnPlaceholderPrefix names columns that arrive without a header.
	columnPlaceholderPrefix = "col"

	// headerScanRows bounds how deep reconstruction looks for header rows.
	headerScanRows = 8

	// maxHeaderRows caps how many consecutive rows may merge into one header.
	maxHeaderRows = 3

	// headerRowScoreMin is the looks-like-a-header acceptance line.
	headerRowScoreMin = 2.0

	// headerAdoptMargin is how far a reconstructed header must outscore the
	// plain first-row header before it is adopted.
	headerAdoptMargin = 8.0

	// mergePassLimit bounds the split-amount merge sweeps.
	mergePassLimit = 3

	// signatureRowLimit and signatureNumberLimit bound fingerprint size.
	signatureRowLimit    = 15
	signatureNumberLimit = 8
	signatureTextRunes   = 50
)
