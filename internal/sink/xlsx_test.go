package sink

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pandemic-tracking/bicheck/internal/check"
)

func sampleReport() *check.Report {
	return &check.Report{Anomalies: []check.Anomaly{
		{State: "TX", Issue: check.IssueStateRemoved},
		{State: "CA", Issue: check.IssueDecrease, Metric: "BI cases", Detail: "100 -> 40"},
	}}
}

func TestWriteWorkbookCreatesTab(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checks.xlsx")

	title, err := WriteWorkbook(path, sampleReport())
	if err != nil {
		t.Fatalf("WriteWorkbook: %v", err)
	}
	wantPrefix := time.Now().Format("2006-01-02")
	if !strings.HasPrefix(title, wantPrefix) {
		t.Fatalf("title = %q, want prefix %q", title, wantPrefix)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(title)
	if err != nil {
		t.Fatalf("read tab: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0][0] != "State" || rows[0][3] != "Details" {
		t.Fatalf("header = %#v", rows[0])
	}
	if rows[2][0] != "CA" || rows[2][3] != "100 -> 40" {
		t.Fatalf("data row = %#v", rows[2])
	}
}

func TestWriteWorkbookUniqueTitles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checks.xlsx")

	first, err := WriteWorkbook(path, sampleReport())
	if err != nil {
		t.Fatalf("first write: %v", err)
	}
	second, err := WriteWorkbook(path, sampleReport())
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	if first == second {
		t.Fatalf("tab titles must be unique, both %q", first)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()
	for _, title := range []string{first, second} {
		if idx, _ := f.GetSheetIndex(title); idx < 0 {
			t.Fatalf("tab %q not found", title)
		}
	}
}
