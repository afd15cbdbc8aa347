package tables

import (
	"errors"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finrail/tablemend/internal/grid"
	"github.com/finrail/tablemend/internal/pdfpage"
)

// fakePage scripts the provider interface for runner and service tests.
type fakePage struct {
	number  int
	title   string
	extract func(pdfpage.Settings) ([]grid.RawGrid, error)
	find    func(pdfpage.Settings) ([]pdfpage.DetectedTable, error)
}

func (p *fakePage) Number() int   { return p.number }
func (p *fakePage) Title() string { return p.title }

func (p *fakePage) ExtractTables(s pdfpage.Settings) ([]grid.RawGrid, error) {
	if p.extract == nil {
		return nil, nil
	}
	return p.extract(s)
}

func (p *fakePage) FindTables(s pdfpage.Settings) ([]pdfpage.DetectedTable, error) {
	if p.find == nil {
		return nil, nil
	}
	return p.find(s)
}

type fakeDetected struct {
	grid grid.RawGrid
	err  error
}

func (d fakeDetected) Extract() (grid.RawGrid, error) { return d.grid, d.err }

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func sampleGrid(label string) grid.RawGrid {
	return grid.RawGrid{
		{label, "95,888"},
		{"溢利", "12,345"},
	}
}

func TestSweepCollectsFromEveryStrategy(t *testing.T) {
	page := &fakePage{
		number: 4,
		extract: func(pdfpage.Settings) ([]grid.RawGrid, error) {
			return []grid.RawGrid{sampleGrid("收益")}, nil
		},
		find: func(pdfpage.Settings) ([]pdfpage.DetectedTable, error) {
			return []pdfpage.DetectedTable{fakeDetected{grid: sampleGrid("收益")}}, nil
		},
	}

	candidates, results := NewRunner(testLogger(), false).Sweep(page)

	require.Len(t, results, len(DefaultStrategies()))
	require.Len(t, candidates, len(DefaultStrategies()))
	wantIDs := []string{
		"find-default", "extract-default", "find-lines", "extract-text",
		"find-mixed", "extract-lines", "extract-mixed", "extract-loose-text",
	}
	for i, res := range results {
		assert.Equal(t, wantIDs[i], res.ID)
		assert.Equal(t, 1, res.Grids)
		assert.NoError(t, res.Err)
	}
	for i, cand := range candidates {
		assert.Equal(t, 4, cand.Page)
		assert.Equal(t, wantIDs[i], cand.Strategy)
	}
}

func TestSweepRecordsFailuresAndContinues(t *testing.T) {
	wantErr := errors.New("text clustering collapsed")
	page := &fakePage{
		number: 1,
		extract: func(s pdfpage.Settings) ([]grid.RawGrid, error) {
			if s.VerticalStrategy == pdfpage.StrategyLines {
				return nil, wantErr
			}
			return []grid.RawGrid{sampleGrid("收益")}, nil
		},
	}

	candidates, results := NewRunner(testLogger(), true).Sweep(page)

	var failed []string
	for _, res := range results {
		if res.Err != nil {
			failed = append(failed, res.ID)
			assert.ErrorIs(t, res.Err, wantErr)
		}
	}
	assert.Equal(t, []string{"extract-lines", "extract-mixed"}, failed)
	// extract-default, extract-text and extract-loose-text still contribute.
	assert.Len(t, candidates, 3)
}

func TestSweepConvertsPanicsToErrors(t *testing.T) {
	page := &fakePage{
		number: 2,
		extract: func(pdfpage.Settings) ([]grid.RawGrid, error) {
			return []grid.RawGrid{sampleGrid("收益")}, nil
		},
		find: func(s pdfpage.Settings) ([]pdfpage.DetectedTable, error) {
			if s.VerticalStrategy == pdfpage.StrategyLines {
				panic("content stream truncated")
			}
			return nil, nil
		},
	}

	candidates, results := NewRunner(testLogger(), false).Sweep(page)

	byID := map[string]StrategyResult{}
	for _, res := range results {
		byID[res.ID] = res
	}
	require.Error(t, byID["find-lines"].Err)
	assert.Contains(t, byID["find-lines"].Err.Error(), "panicked")
	assert.Contains(t, byID["find-lines"].Err.Error(), "content stream truncated")
	assert.NoError(t, byID["extract-default"].Err)
	assert.Len(t, candidates, 5)
}

func TestSweepTreatsEmptyResultsAsNormal(t *testing.T) {
	page := &fakePage{number: 3}

	candidates, results := NewRunner(testLogger(), false).Sweep(page)

	assert.Empty(t, candidates)
	require.Len(t, results, len(DefaultStrategies()))
	for _, res := range results {
		assert.NoError(t, res.Err)
		assert.Zero(t, res.Grids)
	}
}

func TestSweepSkipsEmptyGrids(t *testing.T) {
	page := &fakePage{
		number: 5,
		extract: func(pdfpage.Settings) ([]grid.RawGrid, error) {
			return []grid.RawGrid{{}, sampleGrid("收益"), nil}, nil
		},
	}

	candidates, results := NewRunner(testLogger(), false).Sweep(page)

	assert.Len(t, candidates, 5)
	for _, res := range results {
		if res.Err == nil && res.Grids > 0 {
			assert.Equal(t, 1, res.Grids)
		}
	}
}

func TestSweepFailsStrategyWhenExtractionFails(t *testing.T) {
	wantErr := errors.New("cell decode failed")
	page := &fakePage{
		number: 6,
		find: func(pdfpage.Settings) ([]pdfpage.DetectedTable, error) {
			return []pdfpage.DetectedTable{
				fakeDetected{grid: sampleGrid("收益")},
				fakeDetected{err: wantErr},
			}, nil
		},
	}

	candidates, results := NewRunner(testLogger(), false).Sweep(page)

	assert.Empty(t, candidates)
	failures := 0
	for _, res := range results {
		if res.Err != nil {
			failures++
			assert.ErrorIs(t, res.Err, wantErr)
		}
	}
	assert.Equal(t, 3, failures)
}
