package filter

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finrail/tablemend/internal/grid"
	"github.com/finrail/tablemend/internal/store"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func writeCSV(t *testing.T, dir, name string, columns []string, rows [][]string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, store.WriteTable(path, *grid.NewTable(columns, rows)))
	return path
}

// financialRows builds n dense numeric rows for a 3-column table.
func financialRows(n int) [][]string {
	rows := make([][]string, n)
	labels := []string{"收益", "銷售成本", "毛利", "其他收入", "經營溢利", "融資成本", "除稅前溢利", "所得稅開支", "年內溢利", "每股盈利"}
	for i := range rows {
		rows[i] = []string{labels[i%len(labels)], "95,888", "88,123"}
	}
	return rows
}

func TestHKFilterKeepsCleanFinancialTable(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "doc_page1_table1.csv",
		[]string{"item", "2023", "2022"}, financialRows(8))

	f := NewFileLevelFilter(VariantHK, DefaultThresholds(), testLogger())
	kept, deleted, err := f.Run(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, kept)
	assert.Equal(t, 0, deleted)
	assert.FileExists(t, path)
}

func TestHKFilterDeletesNarrowTable(t *testing.T) {
	dir := t.TempDir()
	rows := make([][]string, 8)
	for i := range rows {
		rows[i] = []string{"收益", "95,888"}
	}
	path := writeCSV(t, dir, "doc_page1_table1.csv", []string{"item", "2023"}, rows)

	f := NewFileLevelFilter(VariantHK, DefaultThresholds(), testLogger())
	_, deleted, err := f.Run(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.NoFileExists(t, path)
}

func TestHKFilterDeletesShortTable(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "doc_page1_table1.csv",
		[]string{"item", "2023", "2022"}, financialRows(4))

	f := NewFileLevelFilter(VariantHK, DefaultThresholds(), testLogger())
	_, deleted, err := f.Run(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.NoFileExists(t, path)
}

func TestHKFilterDeletesMostlyEmptyTable(t *testing.T) {
	dir := t.TempDir()
	rows := make([][]string, 8)
	for i := range rows {
		if i%2 == 0 {
			rows[i] = []string{"收益", "95,888", "88,123"}
		} else {
			rows[i] = []string{"", "", ""}
		}
	}
	path := writeCSV(t, dir, "doc_page1_table1.csv", []string{"item", "2023", "2022"}, rows)

	f := NewFileLevelFilter(VariantHK, DefaultThresholds(), testLogger())
	_, deleted, err := f.Run(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted, "half-empty table should be deleted")
	assert.NoFileExists(t, path)
}

func TestHKFilterDeletesLongTextCell(t *testing.T) {
	dir := t.TempDir()
	rows := financialRows(8)
	rows[3][0] = strings.Repeat("本", 30)
	path := writeCSV(t, dir, "doc_page1_table1.csv", []string{"item", "2023", "2022"}, rows)

	f := NewFileLevelFilter(VariantHK, DefaultThresholds(), testLogger())
	_, deleted, err := f.Run(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.NoFileExists(t, path)
}

func TestHKFilterEmptyRunWideTableGuard(t *testing.T) {
	// A column of six consecutive blanks deletes a narrow table but is
	// tolerated on tables with four or more columns.
	narrowRows := make([][]string, 8)
	wideRows := make([][]string, 8)
	for i := range narrowRows {
		third := "88,123"
		if i < 6 {
			third = ""
		}
		narrowRows[i] = []string{"收益", "95,888", third}
		wideRows[i] = []string{"收益", "95,888", third, "77,000"}
	}

	narrowDir := t.TempDir()
	narrowPath := writeCSV(t, narrowDir, "doc_page1_table1.csv",
		[]string{"item", "2023", "2022"}, narrowRows)
	wideDir := t.TempDir()
	widePath := writeCSV(t, wideDir, "doc_page1_table1.csv",
		[]string{"item", "2023", "2022", "2021"}, wideRows)

	f := NewFileLevelFilter(VariantHK, DefaultThresholds(), testLogger())

	_, deleted, err := f.Run(narrowDir)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.NoFileExists(t, narrowPath)

	_, deleted, err = f.Run(wideDir)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
	assert.FileExists(t, widePath)
}

func TestHKFilterKeepsUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc_page1_table1.csv")
	require.NoError(t, os.WriteFile(path, []byte("\"broken\n"), 0o600))

	f := NewFileLevelFilter(VariantHK, DefaultThresholds(), testLogger())
	kept, deleted, err := f.Run(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, kept)
	assert.Equal(t, 0, deleted)
	assert.FileExists(t, path)
}

func TestHKFilterIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "doc_page1_table1.csv", []string{"item", "2023", "2022"}, financialRows(8))
	writeCSV(t, dir, "doc_page2_table1.csv", []string{"item", "2023"}, financialRows(8))

	f := NewFileLevelFilter(VariantHK, DefaultThresholds(), testLogger())

	kept, deleted, err := f.Run(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, kept)
	assert.Equal(t, 1, deleted)

	kept, deleted, err = f.Run(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, kept)
	assert.Equal(t, 0, deleted, "second pass must delete nothing")
}

func TestHKFilterCustomThresholds(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "doc_page1_table1.csv",
		[]string{"item", "2023", "2022"}, financialRows(4))

	limits := DefaultThresholds()
	limits.MinRows = 3
	f := NewFileLevelFilter(VariantHK, limits, testLogger())

	_, deleted, err := f.Run(dir)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted, "4 rows should pass with MinRows=3")
	assert.FileExists(t, path)
}

func TestGenericFilterDeletesContactSheet(t *testing.T) {
	dir := t.TempDir()
	rows := [][]string{
		{"Investor Relations", "ir@example.com"},
		{"Hotline", "+852 2345 6789"},
		{"Registrar", "Hong Kong"},
	}
	path := writeCSV(t, dir, "doc_page1_table1.csv", []string{"Contact", "Detail"}, rows)

	f := NewFileLevelFilter(VariantGeneric, DefaultThresholds(), testLogger())
	_, deleted, err := f.Run(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.NoFileExists(t, path)
}

func TestGenericFilterDeletesPositionalHeaderTable(t *testing.T) {
	dir := t.TempDir()
	rows := [][]string{
		{"apple", "pear"},
		{"plum", "grape"},
		{"fig", "date"},
	}
	path := writeCSV(t, dir, "doc_page1_table1.csv", []string{"col1", "col2"}, rows)

	f := NewFileLevelFilter(VariantGeneric, DefaultThresholds(), testLogger())
	_, deleted, err := f.Run(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.NoFileExists(t, path)
}

func TestGenericFilterKeepsDataTable(t *testing.T) {
	dir := t.TempDir()
	rows := [][]string{
		{"Revenue", "95,888", "88,123"},
		{"Cost", "(1,234)", "(2,345)"},
		{"Profit", "8,000", "7,500"},
	}
	path := writeCSV(t, dir, "doc_page1_table1.csv", []string{"item", "2023", "2022"}, rows)

	f := NewFileLevelFilter(VariantGeneric, DefaultThresholds(), testLogger())
	_, deleted, err := f.Run(dir)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
	assert.FileExists(t, path)
}
