package pdfpage

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParsePageRanges expands a page selection like "1-3,5,7-9" into a sorted
// list of unique 1-based page numbers, validated against the document's page
// count. An empty selection means every page.
func ParsePageRanges(sel string, pageCount int) ([]int, error) {
	sel = strings.TrimSpace(sel)
	if sel == "" {
		all := make([]int, pageCount)
		for i := range all {
			all[i] = i + 1
		}
		return all, nil
	}

	seen := make(map[int]bool)
	for _, part := range strings.Split(sel, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty segment in page selection %q", sel)
		}

		start, end, err := parseRangePart(part)
		if err != nil {
			return nil, err
		}
		if start < 1 || end > pageCount {
			return nil, fmt.Errorf("page range %q out of bounds [1..%d]", part, pageCount)
		}
		for n := start; n <= end; n++ {
			seen[n] = true
		}
	}

	pages := make([]int, 0, len(seen))
	for n := range seen {
		pages = append(pages, n)
	}
	sort.Ints(pages)
	return pages, nil
}

func parseRangePart(part string) (start, end int, err error) {
	if lo, hi, found := strings.Cut(part, "-"); found {
		start, err = strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid page range %q", part)
		}
		end, err = strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return 0, 0, fmt.Errorf("invalid page range %q", part)
		}
		if start > end {
			return 0, 0, fmt.Errorf("descending page range %q", part)
		}
		return start, end, nil
	}

	n, err := strconv.Atoi(part)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid page number %q", part)
	}
	return n, n, nil
}
