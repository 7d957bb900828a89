package sink

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/pandemic-tracking/bicheck/internal/check"
)

// WriteWorkbook appends the report as a new worksheet of the checks workbook
// at path, creating the workbook if needed. The tab is named after today's
// date; if that tab already exists a short random suffix keeps the name
// unique. The header row is bold. Returns the tab title.
func WriteWorkbook(path string, rep *check.Report) (string, error) {
	var f *excelize.File
	created := false
	if _, err := os.Stat(path); err == nil {
		f, err = excelize.OpenFile(path)
		if err != nil {
			return "", fmt.Errorf("open workbook: %w", err)
		}
	} else {
		f = excelize.NewFile()
		created = true
	}
	defer f.Close()

	title := time.Now().Format("2006-01-02") + "-temp"
	if idx, _ := f.GetSheetIndex(title); idx >= 0 {
		title = time.Now().Format("2006-01-02") + "-" + uuid.NewString()[:8]
	}
	if _, err := f.NewSheet(title); err != nil {
		return "", fmt.Errorf("add sheet: %w", err)
	}
	if created {
		// drop the default sheet excelize seeds new workbooks with
		_ = f.DeleteSheet("Sheet1")
	}

	for i, row := range rep.Rows() {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return "", fmt.Errorf("cell name: %w", err)
		}
		vals := make([]interface{}, len(row))
		for j, v := range row {
			vals[j] = v
		}
		if err := f.SetSheetRow(title, cell, &vals); err != nil {
			return "", fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", fmt.Errorf("header style: %w", err)
	}
	if err := f.SetCellStyle(title, "A1", "D1", style); err != nil {
		return "", fmt.Errorf("apply header style: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return title, nil
}
