package filter

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/finrail/tablemend/internal/grid"
	"github.com/finrail/tablemend/internal/store"
)

// selectPerPage is how many table files survive per page.
const selectPerPage = 2

// copyPerm is the mode for files written into the curated directory.
const copyPerm = 0o644

// ScoreFunc ranks a parsed table file; higher is better.
type ScoreFunc func(*grid.Table) float64

// PageBestSelector copies the best-scoring table files per page into a
// curated directory. Source files are never deleted; reruns overwrite the
// same copies, so the pass is idempotent.
type PageBestSelector struct {
	score  ScoreFunc
	logger *log.Logger
}

// NewPageBestSelector creates a selector ranking files with score.
func NewPageBestSelector(score ScoreFunc, logger *log.Logger) *PageBestSelector {
	return &PageBestSelector{score: score, logger: logger}
}

// Select groups the CSVs in csvDir by the page tag in their names, ranks
// each group, and copies the top files into selectedDir. Files without a
// page tag are ignored; unreadable files rank lowest but still qualify when
// nothing better exists on the page. Returns the number of copies made.
func (s *PageBestSelector) Select(csvDir, selectedDir string) (int, error) {
	paths, err := store.ListCSV(csvDir)
	if err != nil {
		return 0, err
	}

	type scoredFile struct {
		path  string
		score float64
	}
	groups := make(map[int][]scoredFile)
	var pages []int
	for _, path := range paths {
		page, ok := store.PageOf(path)
		if !ok {
			continue
		}
		score := math.Inf(-1)
		if tbl, readErr := store.ReadTable(path); readErr == nil {
			score = s.score(&tbl)
		} else {
			s.logger.Printf("scoring %s failed: %v", filepath.Base(path), readErr)
		}
		if _, seen := groups[page]; !seen {
			pages = append(pages, page)
		}
		groups[page] = append(groups[page], scoredFile{path: path, score: score})
	}
	sort.Ints(pages)

	selected := 0
	for _, page := range pages {
		files := groups[page]
		sort.SliceStable(files, func(i, j int) bool {
			if files[i].score != files[j].score {
				return files[i].score > files[j].score
			}
			return filepath.Base(files[i].path) < filepath.Base(files[j].path)
		})

		n := selectPerPage
		if len(files) < n {
			n = len(files)
		}
		for _, f := range files[:n] {
			dst := filepath.Join(selectedDir, filepath.Base(f.path))
			if copyErr := copyFile(f.path, dst); copyErr != nil {
				s.logger.Printf("copying %s failed: %v", filepath.Base(f.path), copyErr)
				continue
			}
			selected++
		}
	}
	return selected, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	if err := os.WriteFile(dst, data, copyPerm); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}
