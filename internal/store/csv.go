package store

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/finrail/tablemend/internal/grid"
)

// utf8BOM prefixes every written file so spreadsheet tools decode the CJK
// content correctly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteTable persists one table: BOM, header row, then body rows.
func WriteTable(path string, tbl grid.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if _, err := f.Write(utf8BOM); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(tbl.Columns); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	for _, row := range tbl.Rows {
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// ReadTable loads a persisted table back. Ragged rows are padded to the
// widest row; the first record is the header.
func ReadTable(path string) (grid.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return grid.Table{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return grid.Table{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return grid.Table{}, fmt.Errorf("empty table file: %s", path)
	}

	return *grid.NewTable(records[0], records[1:]), nil
}
