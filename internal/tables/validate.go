package tables

import (
	"fmt"
	"strings"

	"github.com/finrail/tablemend/internal/grid"
)

// Validator screens raw candidate grids with content-ratio heuristics before
// repair is attempted. It answers one question: does this grid read like a
// financial statement rather than prose that happened to align into cells?
type Validator struct {
	limits ValidatorThresholds
}

// NewValidator returns a Validator with the given ratio limits.
func NewValidator(limits ValidatorThresholds) *Validator {
	return &Validator{limits: limits}
}

// Validate reports whether the grid is worth repairing. A false result comes
// with a short reason for the rejection log.
func (v *Validator) Validate(g grid.RawGrid) (bool, string) {
	nonEmptyRows := g.NonEmptyRowCount()
	if nonEmptyRows < 2 {
		return false, "fewer than 2 content rows"
	}
	large := nonEmptyRows >= v.limits.LargeTableRows

	maxCols := 0
	for _, r := range g {
		hasContent := false
		for _, c := range r {
			if !grid.IsEmpty(c) {
				hasContent = true
				break
			}
		}
		if hasContent && len(r) > maxCols {
			maxCols = len(r)
		}
	}
	minCols := 2
	if large {
		minCols = 1
	}
	if maxCols < minCols {
		return false, fmt.Sprintf("fewer than %d columns", minCols)
	}

	var (
		total     int
		numeric   int
		financial int
		pureText  int
		longText  float64
		runeSum   int
		currency  bool
	)
	for _, r := range g {
		for _, cell := range r {
			c := strings.TrimSpace(cell)
			if c == "" || grid.IsBlank(c) {
				continue
			}
			total++
			n := len([]rune(c))
			runeSum += n

			if n > v.limits.LongTextCellRunes {
				longText++
				if grid.IsSentenceLike(c) {
					longText += v.limits.SentenceExtraPenalty
				}
			}
			if !grid.ContainsDigit(c) {
				pureText++
			}
			if grid.IsLooseNumber(c) {
				numeric++
				if grid.IsFinancialNumber(c) {
					financial++
				}
			}
			if grid.HasCurrencyMarker(c) {
				currency = true
			}
		}
	}
	if total == 0 {
		return false, "no content cells"
	}

	numericRatio := float64(numeric) / float64(total)
	financialRatio := float64(financial) / float64(total)
	longRatio := longText / float64(total)
	pureRatio := float64(pureText) / float64(total)
	avgLen := float64(runeSum) / float64(total)

	longMax := v.limits.LongTextMaxSmall
	pureMax := v.limits.PureTextMaxSmall
	avgLenMax := v.limits.AvgLenMaxSmall
	avgLenNumericFloor := v.limits.AvgLenNumericFloorSmall
	financialFloor := v.limits.FinancialFloorSmall
	numericFloor := v.limits.NumericFloorSmall
	if large {
		longMax = v.limits.LongTextMaxLarge
		pureMax = v.limits.PureTextMaxLarge
		avgLenMax = v.limits.AvgLenMaxLarge
		avgLenNumericFloor = v.limits.AvgLenNumericFloorLarge
		financialFloor = v.limits.FinancialFloorLarge
		numericFloor = v.limits.NumericFloorLarge
	}

	if longRatio > longMax {
		return false, fmt.Sprintf("long-text ratio %.2f over %.2f", longRatio, longMax)
	}
	if pureRatio > pureMax {
		return false, fmt.Sprintf("pure-text ratio %.3f over %.3f", pureRatio, pureMax)
	}
	if avgLen > avgLenMax && numericRatio < avgLenNumericFloor {
		return false, fmt.Sprintf("average cell length %.0f with numeric ratio %.2f", avgLen, numericRatio)
	}
	if financialRatio < financialFloor && numericRatio < numericFloor {
		return false, fmt.Sprintf("financial ratio %.3f and numeric ratio %.2f both under floor", financialRatio, numericRatio)
	}

	if large {
		switch {
		case financialRatio >= 0.01 && numericRatio >= 0.08 && longRatio < 0.85 && pureRatio < 0.99:
			return true, ""
		case currency && numericRatio >= 0.05 && longRatio < 0.85 && pureRatio < 0.99:
			return true, ""
		case maxCols >= 3 && numericRatio >= 0.05 && longRatio < 0.80 && pureRatio < 0.95:
			return true, ""
		case maxCols >= 2 && numericRatio >= 0.08 && longRatio < 0.75 && pureRatio < 0.95:
			return true, ""
		case maxCols >= 1 && numericRatio >= 0.10 && longRatio < 0.70 && pureRatio < 0.90:
			return true, ""
		case numericRatio >= 0.15:
			return true, ""
		}
	} else {
		switch {
		case financialRatio >= 0.02 && numericRatio >= 0.10 && longRatio < 0.75 && pureRatio < 0.95:
			return true, ""
		case currency && numericRatio >= 0.08 && longRatio < 0.75 && pureRatio < 0.95:
			return true, ""
		case maxCols >= 3 && numericRatio >= 0.08 && longRatio < 0.70 && pureRatio < 0.90:
			return true, ""
		case maxCols >= 2 && numericRatio >= 0.10 && longRatio < 0.65 && pureRatio < 0.90:
			return true, ""
		case numericRatio >= 0.20:
			return true, ""
		}
	}
	return false, "no acceptance criterion met"
}
