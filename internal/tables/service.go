package tables

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/finrail/tablemend/internal/filter"
	"github.com/finrail/tablemend/internal/grid"
	"github.com/finrail/tablemend/internal/pdfpage"
	"github.com/finrail/tablemend/internal/store"
)

// ServiceConfig carries the document-level settings for one processing run.
type ServiceConfig struct {
	// OutputRoot is the directory the per-document output trees live under.
	OutputRoot string
	// Variant selects the file-level filter flavor (filter.VariantHK or
	// filter.VariantGeneric).
	Variant string
	// FilterLimits bound the file-level filter's delete decisions.
	FilterLimits filter.Thresholds
	// Debug enables per-candidate rejection logging.
	Debug bool
}

// StrategyFailure is one recorded non-fatal error from the per-page sweep.
type StrategyFailure struct {
	Page     int
	Strategy string
	Err      error
}

// DocumentReport summarizes one processed document.
type DocumentReport struct {
	PagesScanned   int
	TablesWritten  int
	TablesFiltered int
	TablesSelected int
	Failures       []StrategyFailure
}

// Service runs the whole recovery pipeline for one document: sweep, dedup,
// validate, repair, persist, then the file-level filter and best-per-page
// selection.
type Service struct {
	cfg       ServiceConfig
	runner    *Runner
	dedup     *Deduplicator
	validator *Validator
	repairer  *Repairer
	scorer    *Scorer
	filter    *filter.FileLevelFilter
	selector  *filter.PageBestSelector
	logger    *log.Logger
}

// NewService wires the pipeline components for the given configuration.
func NewService(cfg ServiceConfig, logger *log.Logger) *Service {
	scorer := NewScorer()
	return &Service{
		cfg:       cfg,
		runner:    NewRunner(logger, cfg.Debug),
		dedup:     NewDeduplicator(scorer),
		validator: NewValidator(DefaultValidatorThresholds()),
		repairer:  NewRepairer(scorer),
		scorer:    scorer,
		filter:    filter.NewFileLevelFilter(cfg.Variant, cfg.FilterLimits, logger),
		selector:  filter.NewPageBestSelector(scorer.FinancialLayoutScore, logger),
		logger:    logger,
	}
}

// ProcessDocument runs the pipeline over the requested pages (all pages when
// pages is empty). Per-page and per-candidate problems are recorded in the
// report; only environment-level failures (output tree, persistence) return
// an error. Cancellation is honored between pages and still yields the
// report accumulated so far.
func (s *Service) ProcessDocument(ctx context.Context, doc pdfpage.Document, pages []int) (*DocumentReport, error) {
	paths := store.NewPaths(s.cfg.OutputRoot, doc.Path())
	if err := paths.EnsureDirs(); err != nil {
		return nil, err
	}

	if len(pages) == 0 {
		pages = make([]int, doc.PageCount())
		for i := range pages {
			pages[i] = i + 1
		}
	}

	report := &DocumentReport{}
	for _, n := range pages {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		if err := s.processPage(doc, n, paths, report); err != nil {
			return report, err
		}
		report.PagesScanned++
	}

	_, deleted, err := s.filter.Run(paths.CSVDir())
	if err != nil {
		return report, fmt.Errorf("file-level filter failed: %w", err)
	}
	report.TablesFiltered = deleted

	selected, err := s.selector.Select(paths.CSVDir(), paths.SelectedDir())
	if err != nil {
		return report, fmt.Errorf("best-page selection failed: %w", err)
	}
	report.TablesSelected = selected

	return report, nil
}

// processPage sweeps one page and persists its surviving tables. A candidate
// that fails validation or repair still consumes its table index, so file
// numbering is stable across runs regardless of which candidates survive.
func (s *Service) processPage(doc pdfpage.Document, n int, paths store.Paths, report *DocumentReport) error {
	page, err := doc.Page(n)
	if err != nil {
		s.logger.Printf("page %d: %v", n, err)
		report.Failures = append(report.Failures, StrategyFailure{Page: n, Strategy: "page-load", Err: err})
		return nil
	}

	candidates, results := s.runner.Sweep(page)
	for _, res := range results {
		if res.Err != nil {
			report.Failures = append(report.Failures, StrategyFailure{Page: n, Strategy: res.ID, Err: res.Err})
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	unique := s.dedup.Unique(candidates)
	title := page.Title()

	for idx, cand := range unique {
		tableNum := idx + 1

		ok, reason := s.validator.Validate(cand.Grid)
		if !ok {
			if s.cfg.Debug {
				s.logger.Printf("page %d table %d: rejected: %s", n, tableNum, reason)
			}
			continue
		}

		tbl, repairErr := s.repairer.Repair(cand.Grid)
		if repairErr != nil {
			if s.cfg.Debug {
				s.logger.Printf("page %d table %d: %v", n, tableNum, repairErr)
			}
			continue
		}

		out := withTitleRow(tbl, title)
		path := paths.TablePath(n, tableNum)
		if writeErr := store.WriteTable(path, out); writeErr != nil {
			return writeErr
		}
		report.TablesWritten++
		s.logger.Printf("wrote %s (%dx%d via %s)",
			filepath.Base(path), out.NumRows(), out.NumCols(), cand.Strategy)
	}
	return nil
}

// withTitleRow prepends the detected page title as a first body row so the
// downstream statement-matching stages can see which statement the table
// belongs to. The header row is untouched.
func withTitleRow(tbl *grid.Table, title string) grid.Table {
	if title == "" {
		return *tbl
	}
	row := make([]string, tbl.NumCols())
	if len(row) > 0 {
		row[0] = title
	}
	rows := make([][]string, 0, len(tbl.Rows)+1)
	rows = append(rows, row)
	rows = append(rows, tbl.Rows...)
	return grid.Table{Columns: tbl.Columns, Rows: rows}
}
