// Package store persists repaired tables as CSV files and lays out the
// per-document output tree the filter passes operate on.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// dirPerm is the mode for created output directories.
const dirPerm = 0o750

var pageTagPattern = regexp.MustCompile(`page(\d+)`)

// Paths is the output tree for one source document:
//
//	{root}/{stem}/csv/          every repaired table
//	{root}/{stem}/csv_selected/ the per-page best tables
type Paths struct {
	root string
	stem string
}

// NewPaths derives the document's output tree from the output root and the
// source PDF path.
func NewPaths(root, pdfPath string) Paths {
	base := filepath.Base(pdfPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return Paths{root: root, stem: SanitizeName(stem)}
}

// Stem returns the sanitized document stem used in file names.
func (p Paths) Stem() string { return p.stem }

// BaseDir returns the document's own directory under the output root.
func (p Paths) BaseDir() string { return filepath.Join(p.root, p.stem) }

// CSVDir returns the directory holding every persisted table.
func (p Paths) CSVDir() string { return filepath.Join(p.BaseDir(), "csv") }

// SelectedDir returns the directory the per-page best tables are copied to.
func (p Paths) SelectedDir() string { return filepath.Join(p.BaseDir(), "csv_selected") }

// EnsureDirs creates the output tree.
func (p Paths) EnsureDirs() error {
	for _, dir := range []string{p.CSVDir(), p.SelectedDir()} {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return nil
}

// TablePath returns the CSV path for one table of one page.
func (p Paths) TablePath(page, table int) string {
	return filepath.Join(p.CSVDir(), TableFileName(p.stem, page, table))
}

// TableFileName builds `{stem}_page{N}_table{M}.csv`.
func TableFileName(stem string, page, table int) string {
	return fmt.Sprintf("%s_page%d_table%d.csv", stem, page, table)
}

// SanitizeName replaces every rune that is not a word character, hyphen or
// dot with an underscore. CJK runes are word characters and survive.
func SanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return r
		case r == '_' || r == '-' || r == '.':
			return r
		default:
			return '_'
		}
	}, name)
}

// PageOf extracts the 1-based page number from a persisted file name.
// Returns false for files without a page tag.
func PageOf(filename string) (int, bool) {
	m := pageTagPattern.FindStringSubmatch(filepath.Base(filename))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ListCSV returns the sorted CSV paths inside a directory. A missing
// directory lists as empty.
func ListCSV(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}
