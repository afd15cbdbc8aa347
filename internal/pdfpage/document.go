package pdfpage

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/finrail/tablemend/internal/grid"
)

// fallbackPageHeight is used when a page carries no resolvable MediaBox.
// 842pt is the height of an A4 page.
const fallbackPageHeight = 842.0

// Open validates and opens a PDF file. The file is checked with relaxed
// pdfcpu validation first so that the page count is trustworthy even for the
// slightly malformed files scanned filings tend to be, then a positioned-text
// reader is attached to the same handle.
func Open(path string, maxFileSize int64) (Document, error) {
	if err := validateFile(path, maxFileSize); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open file: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("cannot stat file: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	reader, err := pdf.NewReader(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to open PDF reader: %w", err)
	}

	return &document{
		path:      path,
		file:      f,
		reader:    reader,
		pageCount: ctx.PageCount,
	}, nil
}

// validateFile performs the basic file checks before any PDF parsing.
func validateFile(path string, maxFileSize int64) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}

	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return fmt.Errorf("file is not a PDF: %s", path)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", path)
	}

	if maxFileSize > 0 && fileInfo.Size() > maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), maxFileSize)
	}

	return nil
}

type document struct {
	path      string
	file      *os.File
	reader    *pdf.Reader
	pageCount int
}

func (d *document) Path() string { return d.path }

func (d *document) PageCount() int { return d.pageCount }

func (d *document) Page(n int) (Page, error) {
	if n < 1 || n > d.pageCount {
		return nil, fmt.Errorf("page %d out of range [1..%d]", n, d.pageCount)
	}

	src := d.reader.Page(n)
	if src.V.IsNull() {
		return nil, fmt.Errorf("page %d has no content", n)
	}

	return &page{number: n, src: src}, nil
}

func (d *document) Close() error {
	return d.file.Close()
}

// page wraps one ledongthuc page. The raw text fragments are fetched once and
// reused across the detection strategies that sweep the page; line assembly
// is redone per tolerance.
type page struct {
	number int
	src    pdf.Page

	loaded bool
	texts  []pdf.Text
	height float64

	lines    []textLine
	linesTol float64
}

func (p *page) Number() int { return p.number }

func (p *page) FindTables(settings Settings) ([]DetectedTable, error) {
	grids, err := p.ExtractTables(settings)
	if err != nil {
		return nil, err
	}
	tables := make([]DetectedTable, 0, len(grids))
	for _, g := range grids {
		tables = append(tables, &detectedTable{grid: g})
	}
	return tables, nil
}

func (p *page) ExtractTables(settings Settings) ([]grid.RawGrid, error) {
	s := settings.normalized()
	if s.usesRulingLines() {
		// No vector edges available from this reader.
		return nil, nil
	}

	if err := p.load(); err != nil {
		return nil, err
	}

	g := gridFromLines(p.linesAt(s.TextTolerance), s)
	if g == nil {
		return nil, nil
	}
	return []grid.RawGrid{g}, nil
}

func (p *page) Title() string {
	if err := p.load(); err != nil {
		return ""
	}
	return detectTitle(p.linesAt(defaultTolerance), p.height)
}

// load fetches the page's positioned text once. The underlying content-stream
// parser panics on some malformed pages; those are reported as errors instead.
func (p *page) load() (err error) {
	if p.loaded {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d content parse failed: %v", p.number, r)
		}
	}()

	content := p.src.Content()
	p.texts = content.Text
	p.height = pageHeight(p.src)
	p.loaded = true
	return nil
}

// linesAt assembles the cached fragments into lines of words, memoizing the
// most recent tolerance.
func (p *page) linesAt(tolerance float64) []textLine {
	if p.lines != nil && p.linesTol == tolerance {
		return p.lines
	}
	p.lines = assembleLines(p.texts, tolerance)
	p.linesTol = tolerance
	return p.lines
}

// pageHeight resolves the page's MediaBox height, walking up the page tree
// for inherited boxes.
func pageHeight(src pdf.Page) float64 {
	v := src.V
	for !v.IsNull() {
		box := v.Key("MediaBox")
		if box.Len() == 4 {
			if h := box.Index(3).Float64() - box.Index(1).Float64(); h > 0 {
				return h
			}
		}
		v = v.Key("Parent")
	}
	return fallbackPageHeight
}

type detectedTable struct {
	grid grid.RawGrid
}

func (t *detectedTable) Extract() (grid.RawGrid, error) {
	return t.grid, nil
}
