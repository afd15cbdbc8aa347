package tables

import (
	"strings"

	"github.com/finrail/tablemend/internal/grid"
)

// Candidate is one detected grid, attributed to the page and strategy that
// produced it.
type Candidate struct {
	Page     int
	Strategy string
	Grid     grid.RawGrid
}

// Signature fingerprints the content of a candidate grid. Two candidates
// with equal signatures are the same table seen through different detection
// settings. The empty signature means the grid carries nothing identifiable.
type Signature string

// SignatureOf builds the fingerprint from the leading rows of a grid: per
// row, the first label-like cell (truncated) plus the row's digit runs, with
// adjacent short runs recombined so that amounts split across cells count as
// one number. Rows with neither a label nor digits contribute nothing.
func SignatureOf(g grid.RawGrid) Signature {
	limit := len(g)
	if limit > signatureRowLimit {
		limit = signatureRowLimit
	}
	var b strings.Builder
	for _, row := range g[:limit] {
		if len(row) == 0 {
			continue
		}
		label := ""
		for _, cell := range row {
			c := strings.TrimSpace(cell)
			if c == "" || grid.IsPunctuationOnly(c) {
				continue
			}
			label = truncateRunes(c, signatureTextRunes)
			break
		}

		joined := make([]string, 0, len(row))
		for _, cell := range row {
			if cell != "" {
				joined = append(joined, cell)
			}
		}
		nums := combineDigitRuns(grid.DigitRuns(strings.Join(joined, " ")))
		if len(nums) > signatureNumberLimit {
			nums = nums[:signatureNumberLimit]
		}

		if label == "" && len(nums) == 0 {
			continue
		}
		b.WriteString(label)
		b.WriteByte(0x1f)
		b.WriteString(strings.Join(nums, ","))
		b.WriteByte(0x1e)
	}
	return Signature(b.String())
}

// combineDigitRuns joins adjacent runs of up to three digits when the pair
// reads as one thousand-grouped amount that detection split apart.
func combineDigitRuns(runs []string) []string {
	out := make([]string, 0, len(runs))
	for i := 0; i < len(runs); {
		r := runs[i]
		if i+1 < len(runs) && len(r) <= 3 && len(runs[i+1]) <= 3 && len(r)+len(runs[i+1]) >= 4 {
			out = append(out, r+runs[i+1])
			i += 2
			continue
		}
		out = append(out, r)
		i++
	}
	return out
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Deduplicator collapses candidates with identical signatures down to one
// representative each.
type Deduplicator struct {
	scorer *Scorer
}

// NewDeduplicator returns a Deduplicator that breaks row-count ties with the
// given scorer.
func NewDeduplicator(scorer *Scorer) *Deduplicator {
	return &Deduplicator{scorer: scorer}
}

// Unique returns one representative per distinct signature, preserving
// first-seen signature order. The representative is the candidate with the
// most raw rows; ties fall to the higher structure score, and remaining ties
// to sweep order.
func (d *Deduplicator) Unique(cands []Candidate) []Candidate {
	type group struct {
		best      Candidate
		bestRows  int
		bestScore float64
		scored    bool
	}
	order := make([]Signature, 0, len(cands))
	groups := make(map[Signature]*group, len(cands))

	for _, c := range cands {
		sig := SignatureOf(c.Grid)
		if sig == "" {
			continue
		}
		g, ok := groups[sig]
		if !ok {
			groups[sig] = &group{best: c, bestRows: len(c.Grid)}
			order = append(order, sig)
			continue
		}
		rows := len(c.Grid)
		switch {
		case rows > g.bestRows:
			g.best, g.bestRows = c, rows
			g.scored = false
		case rows == g.bestRows:
			if !g.scored {
				g.bestScore = d.scorer.GridScore(g.best.Grid)
				g.scored = true
			}
			if s := d.scorer.GridScore(c.Grid); s > g.bestScore {
				g.best, g.bestScore = c, s
			}
		}
	}

	out := make([]Candidate, 0, len(order))
	for _, sig := range order {
		out = append(out, groups[sig].best)
	}
	return out
}
