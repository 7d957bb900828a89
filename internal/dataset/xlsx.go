package dataset

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX loads one worksheet of a workbook as a dataset. Every non-empty
// cell is kept as a Raw string — a workbook export is the "new" snapshot and
// its typing is decided later by normalization, not by the file format.
func ReadXLSX(path, sheet string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read sheet %q: no header row", sheet)
	}
	header := rows[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	d := New(header)
	for _, rec := range rows[1:] {
		row := make(Row, len(header))
		for i, col := range header {
			if i >= len(rec) {
				row[col] = Missing()
				continue
			}
			row[col] = cell(rec[i], false)
		}
		d.Append(row)
	}
	return d, nil
}
