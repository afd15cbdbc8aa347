package grid

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

// Cell classification patterns. Statement PDFs mix full-width and ASCII
// digits and punctuation, so every predicate folds its input with Fold
// before matching; the character classes below still carry the full-width
// alternates so unfolded callers classify the same way.
var (
	// content made of digits, grouping punctuation and dashes only; such a
	// cell cannot anchor a signature row
	punctuationOnlyPattern = regexp.MustCompile(`^[\d,，(（)）\s\-–—.]+$`)

	// loose numeric content, any digit run with optional grouping
	looseNumberPattern = regexp.MustCompile(`\d{1,3}([,，]\d{3})*|\(\d+\)|[\d,，]{2,}`)

	// strict financial formatting: thousand groups, parenthesised negatives
	// or runs of four and more digits
	financialNumberPattern = regexp.MustCompile(`\d{1,3}([,，]\d{3})+|[(（]\s*\d[\d,，]*\s*[)）]|\d{4,}`)

	// a whole cell that reads as a single signed or bracketed amount
	numericLikePattern = regexp.MustCompile(`^[(（]?[-+]?\d[\d,，]*[)）]?$`)

	// prose indicators: clause punctuation with a tail, or common function
	// characters followed by more text
	sentencePattern = regexp.MustCompile(`[。，、；：！？,.;:!?].{3,}|[的之了在是].{2,}`)

	headerYearPattern = regexp.MustCompile(`20\d{2}\s*年`)

	digitRunPattern = regexp.MustCompile(`\d+`)

	// split-amount fragments left behind by column detection
	fragmentHeadPattern = regexp.MustCompile(`^[(（]?\d{1,3}[,，]?[)）]?$`)
	fragmentPairPattern = regexp.MustCompile(`^[(（]?\d{1,3}[,，]\d{1,2}[)）]?$`)
	smallIntPattern     = regexp.MustCompile(`^\d{1,3}$`)

	cjkNumeralPattern = regexp.MustCompile(`^[一二三四五六七八九十百千〇零]{1,3}$|^\d{1,3}$`)
)

// currencyMarkers are the runes whose presence marks monetary content.
const currencyMarkers = "人民幣元百千萬億港美€£¥"

// dash placeholders used for nil amounts in statement tables
var dashPlaceholders = [...]string{"-", "–", "—"}

// Fold normalizes full-width digits and punctuation to their ASCII forms.
// Han characters are unaffected.
func Fold(s string) string {
	return width.Fold.String(s)
}

// IsEmpty reports whether the cell trims to nothing.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsBlank reports whether the cell trims to nothing or to a dash placeholder.
func IsBlank(s string) bool {
	t := strings.TrimSpace(Fold(s))
	if t == "" {
		return true
	}
	for _, d := range dashPlaceholders {
		if t == d {
			return true
		}
	}
	return false
}

// IsPunctuationOnly reports whether the cell holds nothing but digits,
// grouping punctuation and dashes.
func IsPunctuationOnly(s string) bool {
	return punctuationOnlyPattern.MatchString(Fold(strings.TrimSpace(s)))
}

// ContainsDigit reports whether the cell carries any decimal digit.
func ContainsDigit(s string) bool {
	return strings.ContainsAny(Fold(s), "0123456789")
}

// IsLooseNumber reports whether the cell contains digit content in any of the
// shapes amounts take on a page.
func IsLooseNumber(s string) bool {
	return looseNumberPattern.MatchString(Fold(s))
}

// IsFinancialNumber reports whether the cell contains a strictly formatted
// amount: thousand grouping, a parenthesised negative or four or more digits
// in a run.
func IsFinancialNumber(s string) bool {
	return financialNumberPattern.MatchString(Fold(s))
}

// IsNumericLike reports whether the whole cell reads as one amount, with
// optional sign or brackets.
func IsNumericLike(s string) bool {
	return numericLikePattern.MatchString(Fold(strings.TrimSpace(s)))
}

// IsSentenceLike reports whether the cell reads like prose rather than a
// label or an amount.
func IsSentenceLike(s string) bool {
	return sentencePattern.MatchString(Fold(s))
}

// HasCurrencyMarker reports whether the cell mentions a currency or scale
// character.
func HasCurrencyMarker(s string) bool {
	return strings.ContainsAny(Fold(s), currencyMarkers)
}

// HasHeaderYear reports whether the cell carries a year in header notation.
func HasHeaderYear(s string) bool {
	return headerYearPattern.MatchString(Fold(s))
}

// IsCJKNumeral reports whether the cell is a short Chinese or Arabic ordinal
// of the kind used in note columns.
func IsCJKNumeral(s string) bool {
	return cjkNumeralPattern.MatchString(Fold(strings.TrimSpace(s)))
}

// IsNumberFragment reports whether the cell looks like one piece of an
// amount that column detection split in two.
func IsNumberFragment(s string) bool {
	f := Fold(strings.TrimSpace(s))
	if fragmentHeadPattern.MatchString(f) || fragmentPairPattern.MatchString(f) {
		return true
	}
	return strings.HasSuffix(f, ",")
}

// IsSmallInt reports whether the cell is a bare run of one to three digits.
func IsSmallInt(s string) bool {
	return smallIntPattern.MatchString(Fold(strings.TrimSpace(s)))
}

// CJKCount returns the number of Han runes in the cell.
func CJKCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x4E00 && r <= 0x9FFF {
			n++
		}
	}
	return n
}

// DigitRuns returns the consecutive digit runs in the cell, in order.
func DigitRuns(s string) []string {
	return digitRunPattern.FindAllString(Fold(s), -1)
}

// DigitsOnly strips everything but decimal digits.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range Fold(s) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// GroupThousands formats a bare digit string with comma grouping from the
// right, wrapping the result in parentheses when negative is set. Leading
// zeros are dropped the way integer formatting would drop them.
func GroupThousands(digits string, negative bool) string {
	if digits == "" {
		return ""
	}
	if trimmed := strings.TrimLeft(digits, "0"); trimmed != "" {
		digits = trimmed
	} else {
		digits = "0"
	}
	var b strings.Builder
	n := len(digits)
	for i, c := range digits {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if negative {
		return "(" + b.String() + ")"
	}
	return b.String()
}

// HasNegativeParen reports whether the cell opens a bracketed negative.
func HasNegativeParen(s string) bool {
	return strings.ContainsAny(s, "(（")
}
