package pdfpage

import (
	"strings"

	"github.com/finrail/tablemend/internal/grid"
)

const (
	// titleRegion is the top fraction of the page scanned for a title line.
	titleRegion = 0.18
	titleMaxLen = 20
	titleMinCJK = 2
	titleMaxCJK = 20
)

// pageTitleKeywords mark a short CJK line as a plausible statement or table
// heading.
var pageTitleKeywords = []string{
	"表", "摘要", "概要", "概覽", "综", "綜", "财务", "財務", "收益",
}

// detectTitle scans the top region of the page for a short CJK heading line.
// Falls back to the topmost line of the page when it reads like a heading.
func detectTitle(lines []textLine, height float64) string {
	if len(lines) == 0 {
		return ""
	}
	if height <= 0 {
		height = fallbackPageHeight
	}

	floor := height * (1 - titleRegion)
	for _, l := range lines {
		if l.y < floor {
			break
		}
		text := strings.TrimSpace(l.text())
		cjk := grid.CJKCount(text)
		if cjk < titleMinCJK || cjk > titleMaxCJK {
			continue
		}
		if hasTitleKeyword(text) {
			return truncateTitle(text)
		}
	}

	text := strings.TrimSpace(lines[0].text())
	if cjk := grid.CJKCount(text); cjk >= titleMinCJK && cjk <= titleMaxCJK {
		return truncateTitle(text)
	}
	return ""
}

func hasTitleKeyword(text string) bool {
	for _, kw := range pageTitleKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func truncateTitle(text string) string {
	runes := []rune(text)
	if len(runes) <= titleMaxLen {
		return text
	}
	return string(runes[:titleMaxLen])
}
