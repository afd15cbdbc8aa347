package tables

import (
	"fmt"
	"strings"
	"testing"

	"github.com/finrail/tablemend/internal/grid"
)

func financialGrid(rows int) grid.RawGrid {
	labels := []string{"收益", "銷售成本", "毛利", "其他收入", "行政開支", "經營溢利", "融資成本", "除稅前溢利", "所得稅開支", "年內溢利"}
	g := make(grid.RawGrid, 0, rows)
	for i := 0; i < rows; i++ {
		g = append(g, []string{
			labels[i%len(labels)],
			fmt.Sprintf("%d,%03d", 10+i, (i*137)%1000),
			"(1,234)",
		})
	}
	return g
}

func TestValidateAcceptsLargeFinancialGrid(t *testing.T) {
	v := NewValidator(DefaultValidatorThresholds())
	ok, reason := v.Validate(financialGrid(20))
	if !ok {
		t.Errorf("20-row financial grid rejected: %s", reason)
	}
}

func TestValidateAcceptsSmallFinancialGrid(t *testing.T) {
	v := NewValidator(DefaultValidatorThresholds())
	ok, reason := v.Validate(financialGrid(5))
	if !ok {
		t.Errorf("5-row financial grid rejected: %s", reason)
	}
}

func TestValidateRejectsProse(t *testing.T) {
	v := NewValidator(DefaultValidatorThresholds())
	g := grid.RawGrid{
		{"本公司董事會欣然提呈本集團之年度業績報告，詳情載於下文各節。", "有關披露乃按照上市規則之規定作出，並已經審核委員會審閱。"},
		{"董事會建議派付末期股息，惟須待股東批准後方可作實。", "股息之派付日期及記錄日期將於稍後另行公佈，敬請留意。"},
		{"承董事會命，謹此致謝全體員工年內之努力及支持。", "本年報中英文版本如有歧異，概以英文版本為準，特此說明。"},
	}
	ok, reason := v.Validate(g)
	if ok {
		t.Error("Prose grid accepted")
	}
	if !strings.Contains(reason, "long-text ratio") {
		t.Errorf("Unexpected reason: %s", reason)
	}
}

func TestValidateRejectsFewRows(t *testing.T) {
	v := NewValidator(DefaultValidatorThresholds())
	ok, reason := v.Validate(grid.RawGrid{{"收益", "95,888"}})
	if ok {
		t.Error("Single-row grid accepted")
	}
	if !strings.Contains(reason, "2 content rows") {
		t.Errorf("Unexpected reason: %s", reason)
	}
}

func TestValidateRejectsSingleColumnWhenSmall(t *testing.T) {
	v := NewValidator(DefaultValidatorThresholds())
	g := grid.RawGrid{{"95,888"}, {"88,123"}, {"12,345"}}
	ok, reason := v.Validate(g)
	if ok {
		t.Error("Small single-column grid accepted")
	}
	if !strings.Contains(reason, "columns") {
		t.Errorf("Unexpected reason: %s", reason)
	}
}

func TestValidateAcceptsSingleColumnWhenLarge(t *testing.T) {
	v := NewValidator(DefaultValidatorThresholds())
	g := make(grid.RawGrid, 0, 12)
	for i := 0; i < 12; i++ {
		g = append(g, []string{fmt.Sprintf("%d,%03d", 10+i, (i*211)%1000)})
	}
	ok, reason := v.Validate(g)
	if !ok {
		t.Errorf("Large numeric column rejected: %s", reason)
	}
}

func TestValidateRejectsPlaceholderOnlyGrid(t *testing.T) {
	v := NewValidator(DefaultValidatorThresholds())
	g := grid.RawGrid{{"-", "—"}, {"–", "-"}, {"-", ""}}
	ok, reason := v.Validate(g)
	if ok {
		t.Error("Placeholder-only grid accepted")
	}
	if !strings.Contains(reason, "no content cells") {
		t.Errorf("Unexpected reason: %s", reason)
	}
}

func TestValidateRejectsLabelListWithoutAmounts(t *testing.T) {
	v := NewValidator(DefaultValidatorThresholds())
	g := grid.RawGrid{
		{"董事簡介", "主要股東", "公司資料"},
		{"企業管治", "風險因素", "僱員概況"},
		{"環境政策", "社區投資", "未來展望"},
		{"業務回顧", "市場分析", "第1節"},
	}
	ok, _ := v.Validate(g)
	if ok {
		t.Error("Label list without amounts accepted")
	}
}

func TestValidateCurrencyMarkerPath(t *testing.T) {
	v := NewValidator(DefaultValidatorThresholds())
	// Thin on numbers for its size; only the currency marker clears it.
	g := grid.RawGrid{
		{"項目", "附註", "港幣千元"},
		{"收益", "見下文", "95,888"},
		{"銷售成本", "見下文", "95"},
		{"毛利", "附註五", "見下文"},
		{"其他收入", "見下文", "見下文"},
		{"行政開支", "見下文", "見下文"},
		{"經營溢利", "附註六", "見下文"},
		{"除稅前溢利", "見下文", "見下文"},
	}
	ok, reason := v.Validate(g)
	if !ok {
		t.Errorf("Currency-marked grid rejected: %s", reason)
	}

	unmarked := make(grid.RawGrid, len(g))
	for i, row := range g {
		unmarked[i] = append([]string(nil), row...)
	}
	unmarked[0][2] = "單位"
	if ok, _ := v.Validate(unmarked); ok {
		t.Error("Same grid without the currency marker accepted")
	}
}
