package tables

import (
	"fmt"
	"log"

	"github.com/finrail/tablemend/internal/grid"
	"github.com/finrail/tablemend/internal/pdfpage"
)

// Strategy is one detection configuration in the per-page sweep.
type Strategy struct {
	ID       string
	Find     bool // use the provider's native table finder
	Settings pdfpage.Settings
}

// DefaultStrategies returns the fixed, ordered sweep tried on every page.
// The order matters downstream: when deduplication ties on row count and
// score, the earlier strategy wins.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{ID: "find-default", Find: true},
		{ID: "extract-default"},
		{
			ID:   "find-lines",
			Find: true,
			Settings: pdfpage.Settings{
				VerticalStrategy:   pdfpage.StrategyLines,
				HorizontalStrategy: pdfpage.StrategyLines,
				SnapTolerance:      5,
				JoinTolerance:      3,
				EdgeMinLength:      3,
			},
		},
		{
			ID: "extract-text",
			Settings: pdfpage.Settings{
				VerticalStrategy:      pdfpage.StrategyText,
				HorizontalStrategy:    pdfpage.StrategyText,
				SnapTolerance:         5,
				JoinTolerance:         3,
				TextTolerance:         3,
				IntersectionTolerance: 3,
			},
		},
		{
			ID:   "find-mixed",
			Find: true,
			Settings: pdfpage.Settings{
				VerticalStrategy:      pdfpage.StrategyText,
				HorizontalStrategy:    pdfpage.StrategyLines,
				SnapTolerance:         8,
				JoinTolerance:         5,
				TextTolerance:         8,
				IntersectionTolerance: 5,
			},
		},
		{
			ID: "extract-lines",
			Settings: pdfpage.Settings{
				VerticalStrategy:   pdfpage.StrategyLines,
				HorizontalStrategy: pdfpage.StrategyLines,
				SnapTolerance:      5,
				JoinTolerance:      3,
				EdgeMinLength:      3,
			},
		},
		{
			ID: "extract-mixed",
			Settings: pdfpage.Settings{
				VerticalStrategy:      pdfpage.StrategyLines,
				HorizontalStrategy:    pdfpage.StrategyText,
				SnapTolerance:         5,
				JoinTolerance:         3,
				TextTolerance:         3,
				IntersectionTolerance: 3,
			},
		},
		{
			ID: "extract-loose-text",
			Settings: pdfpage.Settings{
				VerticalStrategy:      pdfpage.StrategyText,
				HorizontalStrategy:    pdfpage.StrategyText,
				SnapTolerance:         10,
				JoinTolerance:         5,
				TextTolerance:         5,
				IntersectionTolerance: 5,
				MinWordsVertical:      1,
				MinWordsHorizontal:    1,
			},
		},
	}
}

// StrategyResult records one strategy's outcome on a page. Either Grids
// counts the candidates it contributed, or Err holds why it produced none.
type StrategyResult struct {
	ID    string
	Grids int
	Err   error
}

// Runner sweeps a page with every strategy. Strategies never see each
// other's state; one failing or panicking is recorded and the sweep carries
// on with the rest.
type Runner struct {
	strategies []Strategy
	logger     *log.Logger
	debug      bool
}

// NewRunner creates a Runner over the default strategy sweep.
func NewRunner(logger *log.Logger, debug bool) *Runner {
	return &Runner{
		strategies: DefaultStrategies(),
		logger:     logger,
		debug:      debug,
	}
}

// Sweep runs every strategy on the page in order and returns the candidates
// plus a per-strategy result trail. Zero candidates from all strategies is a
// normal outcome for a page without tables.
func (r *Runner) Sweep(page pdfpage.Page) ([]Candidate, []StrategyResult) {
	var candidates []Candidate
	results := make([]StrategyResult, 0, len(r.strategies))

	for _, st := range r.strategies {
		grids, err := r.runStrategy(st, page)
		if err != nil {
			if r.debug {
				r.logger.Printf("page %d: strategy %s failed: %v", page.Number(), st.ID, err)
			}
			results = append(results, StrategyResult{ID: st.ID, Err: err})
			continue
		}

		count := 0
		for _, g := range grids {
			if len(g) < 1 {
				continue
			}
			candidates = append(candidates, Candidate{
				Page:     page.Number(),
				Strategy: st.ID,
				Grid:     g,
			})
			count++
		}
		results = append(results, StrategyResult{ID: st.ID, Grids: count})
	}

	return candidates, results
}

// runStrategy isolates a single strategy call, converting panics from the
// PDF layer into errors.
func (r *Runner) runStrategy(st Strategy, page pdfpage.Page) (grids []grid.RawGrid, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("strategy %s panicked: %v", st.ID, rec)
		}
	}()

	if !st.Find {
		return page.ExtractTables(st.Settings)
	}

	tables, err := page.FindTables(st.Settings)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		g, extractErr := t.Extract()
		if extractErr != nil {
			return nil, extractErr
		}
		grids = append(grids, g)
	}
	return grids, nil
}
