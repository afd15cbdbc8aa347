package pdfpage

import (
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// word is a run of horizontally adjacent text fragments sharing a baseline.
type word struct {
	text string
	x0   float64
	x1   float64
	y    float64
}

// textLine holds the words of one baseline, left to right.
type textLine struct {
	y     float64
	words []word
}

func (l textLine) text() string {
	parts := make([]string, len(l.words))
	for i, w := range l.words {
		parts[i] = w.text
	}
	return strings.Join(parts, " ")
}

// assembleLines groups raw text fragments into baselines and merges adjacent
// fragments into words. Fragments whose gap to the previous one exceeds the
// tolerance start a new word; whitespace-only fragments only contribute
// spacing. Lines are returned top to bottom, words left to right.
func assembleLines(texts []pdf.Text, tolerance float64) []textLine {
	if tolerance <= 0 {
		tolerance = defaultTolerance
	}

	frags := make([]pdf.Text, 0, len(texts))
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		frags = append(frags, t)
	}
	if len(frags) == 0 {
		return nil
	}

	// Top of page first, then reading order within a baseline.
	sort.SliceStable(frags, func(i, j int) bool {
		if frags[i].Y != frags[j].Y {
			return frags[i].Y > frags[j].Y
		}
		return frags[i].X < frags[j].X
	})

	var lines []textLine
	start := 0
	for i := 1; i <= len(frags); i++ {
		if i < len(frags) && frags[i-1].Y-frags[i].Y <= tolerance {
			continue
		}
		if line := buildLine(frags[start:i], tolerance); len(line.words) > 0 {
			lines = append(lines, line)
		}
		start = i
	}
	return lines
}

// buildLine merges one baseline's fragments into words.
func buildLine(frags []pdf.Text, tolerance float64) textLine {
	sorted := make([]pdf.Text, len(frags))
	copy(sorted, frags)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].X < sorted[j].X
	})

	line := textLine{y: sorted[0].Y}

	var cur *word
	var text strings.Builder
	flush := func() {
		if cur == nil {
			return
		}
		cur.text = strings.TrimSpace(text.String())
		if cur.text != "" {
			line.words = append(line.words, *cur)
		}
		cur = nil
		text.Reset()
	}

	for _, t := range sorted {
		if cur != nil && t.X-cur.x1 <= tolerance {
			text.WriteString(t.S)
			if right := t.X + t.W; right > cur.x1 {
				cur.x1 = right
			}
			continue
		}
		flush()
		cur = &word{x0: t.X, x1: t.X + t.W, y: t.Y}
		text.WriteString(t.S)
	}
	flush()

	return line
}
