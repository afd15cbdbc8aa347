package tables

import (
	"reflect"
	"testing"

	"github.com/finrail/tablemend/internal/grid"
)

func TestSignatureOfIgnoresDetectionJitter(t *testing.T) {
	a := grid.RawGrid{
		{"收益", "95,888", "88,123"},
		{"除稅前溢利", "12,345", "10,111"},
	}
	// Same table seen through another strategy: padded cells, an extra
	// empty column, whitespace around the labels.
	b := grid.RawGrid{
		{" 收益 ", "95,888", "", "88,123"},
		{"除稅前溢利", "12,345", "10,111", ""},
	}

	if SignatureOf(a) != SignatureOf(b) {
		t.Errorf("Signatures differ:\n a=%q\n b=%q", SignatureOf(a), SignatureOf(b))
	}
}

func TestSignatureOfCombinesSplitRuns(t *testing.T) {
	intact := grid.RawGrid{{"收益", "1,234"}}
	split := grid.RawGrid{{"收益", "1", "234"}}

	if SignatureOf(intact) != SignatureOf(split) {
		t.Errorf("Split amount should fingerprint like the intact one:\n intact=%q\n split=%q",
			SignatureOf(intact), SignatureOf(split))
	}
}

func TestSignatureOfSkipsContentlessRows(t *testing.T) {
	bare := grid.RawGrid{{"收益", "95,888"}}
	padded := grid.RawGrid{
		{"", "-", ""},
		{"收益", "95,888"},
		{"—", ""},
	}

	if SignatureOf(bare) != SignatureOf(padded) {
		t.Errorf("Punctuation-only rows should not contribute:\n bare=%q\n padded=%q",
			SignatureOf(bare), SignatureOf(padded))
	}
}

func TestSignatureOfEmptyGrids(t *testing.T) {
	for _, g := range []grid.RawGrid{
		nil,
		{},
		{{""}},
		{{"-", "—"}, {"", " "}},
	} {
		if sig := SignatureOf(g); sig != "" {
			t.Errorf("SignatureOf(%v) = %q, want empty", g, sig)
		}
	}
}

func TestSignatureOfDistinguishesTables(t *testing.T) {
	income := grid.RawGrid{{"收益", "95,888"}, {"溢利", "12,345"}}
	balance := grid.RawGrid{{"總資產", "543,210"}, {"總負債", "321,098"}}

	if SignatureOf(income) == SignatureOf(balance) {
		t.Error("Different tables collided on one signature")
	}
}

func TestCombineDigitRuns(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"95", "888"}, []string{"95888"}},
		{[]string{"95", "88", "8"}, []string{"9588", "8"}},
		{[]string{"1", "23"}, []string{"1", "23"}},
		{[]string{"1234", "567"}, []string{"1234", "567"}},
		{[]string{"12", "34", "56", "78"}, []string{"1234", "5678"}},
		{[]string{"7"}, []string{"7"}},
		{nil, []string{}},
	}
	for _, tt := range tests {
		if got := combineDigitRuns(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("combineDigitRuns(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestUniqueCollapsesDuplicateDetections(t *testing.T) {
	g := grid.RawGrid{
		{"收益", "95,888", "88,123"},
		{"溢利", "12,345", "10,111"},
	}
	cands := []Candidate{
		{Page: 3, Strategy: "find-default", Grid: g},
		{Page: 3, Strategy: "extract-text", Grid: g},
		{Page: 3, Strategy: "extract-loose-text", Grid: g},
	}

	out := NewDeduplicator(NewScorer()).Unique(cands)
	if len(out) != 1 {
		t.Fatalf("Expected 1 representative, got %d", len(out))
	}
	if out[0].Strategy != "find-default" {
		t.Errorf("Full tie should keep the earliest strategy, got %s", out[0].Strategy)
	}
}

func TestUniquePrefersMoreRows(t *testing.T) {
	base := grid.RawGrid{
		{"收益", "95,888"},
		{"溢利", "12,345"},
	}
	// Same fingerprint, one extra raw row that contributes nothing to it.
	taller := append(append(grid.RawGrid{}, base...), []string{"", "-"})

	out := NewDeduplicator(NewScorer()).Unique([]Candidate{
		{Page: 1, Strategy: "find-default", Grid: base},
		{Page: 1, Strategy: "extract-text", Grid: taller},
	})
	if len(out) != 1 {
		t.Fatalf("Expected 1 representative, got %d", len(out))
	}
	if out[0].Strategy != "extract-text" {
		t.Errorf("Taller duplicate should win, got %s", out[0].Strategy)
	}
}

func TestUniqueTieBreaksOnStructureScore(t *testing.T) {
	dense := grid.RawGrid{
		{"收益", "95,888", "88,123"},
		{"溢利", "12,345", "10,111"},
	}
	// Identical content plus a padding column; the compacted shape scores
	// better because it is no longer suspiciously saturated.
	padded := grid.RawGrid{
		{"收益", "95,888", "88,123", ""},
		{"溢利", "12,345", "10,111", ""},
	}

	out := NewDeduplicator(NewScorer()).Unique([]Candidate{
		{Page: 1, Strategy: "find-default", Grid: dense},
		{Page: 1, Strategy: "extract-text", Grid: padded},
	})
	if len(out) != 1 {
		t.Fatalf("Expected 1 representative, got %d", len(out))
	}
	if out[0].Strategy != "extract-text" {
		t.Errorf("Row-count tie should fall to the higher score, got %s", out[0].Strategy)
	}
}

func TestUniqueDropsUnfingerprintableCandidates(t *testing.T) {
	real := grid.RawGrid{{"收益", "95,888"}, {"溢利", "12,345"}}
	blank := grid.RawGrid{{"", "-"}, {"—", ""}}

	out := NewDeduplicator(NewScorer()).Unique([]Candidate{
		{Page: 1, Strategy: "find-default", Grid: blank},
		{Page: 1, Strategy: "extract-text", Grid: real},
	})
	if len(out) != 1 {
		t.Fatalf("Expected only the real candidate, got %d", len(out))
	}
	if out[0].Strategy != "extract-text" {
		t.Errorf("Blank candidate should be dropped, kept %s", out[0].Strategy)
	}
}

func TestUniquePreservesFirstSeenOrder(t *testing.T) {
	first := grid.RawGrid{{"收益", "95,888"}, {"成本", "1,234"}}
	second := grid.RawGrid{{"總資產", "543,210"}, {"總負債", "321,098"}}
	third := grid.RawGrid{{"經營現金流", "45,678"}, {"投資現金流", "(9,876)"}}

	out := NewDeduplicator(NewScorer()).Unique([]Candidate{
		{Page: 1, Strategy: "find-default", Grid: first},
		{Page: 1, Strategy: "extract-default", Grid: second},
		{Page: 1, Strategy: "extract-default", Grid: first},
		{Page: 1, Strategy: "extract-text", Grid: third},
	})
	if len(out) != 3 {
		t.Fatalf("Expected 3 distinct tables, got %d", len(out))
	}
	want := []string{"收益", "總資產", "經營現金流"}
	for i, cand := range out {
		if cand.Grid[0][0] != want[i] {
			t.Errorf("Position %d holds %q, want %q", i, cand.Grid[0][0], want[i])
		}
	}
}
