package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

const (
	newCSV = "State,Abbr,BI cases,BI percent of cases,Total Individuals not fully vaccinated\n" +
		"California,CA,\"1,234\",45.50%,100\n" +
		"New York,NY,250,,\n"
	existingCSV = "State,Abbr,BI cases,BI percent of cases,Total Individuals not fully vaccinated\n" +
		"California,CA,1234,45.50%,900\n" +
		"New York,NY,100,,\n"
)

// runCheck executes the root command with args, resetting sticky flag state
// between invocations.
func runCheck(t *testing.T, args ...string) {
	t.Helper()
	chkNewPath, chkSheet, chkExisting, chkOutputPath, chkWorkbook = "", "", "", "", ""
	chkWhitelist = nil
	chkMultiplier = 0
	if f := checkCmd.Flags(); f != nil {
		for _, name := range []string{"new", "sheet", "existing", "output", "workbook", "whitelist", "increase-multiplier"} {
			if fl := f.Lookup(name); fl != nil {
				fl.Changed = false
			}
		}
	}
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
}

func writeFixtures(t *testing.T) (newPath, oldPath string) {
	t.Helper()
	dir := t.TempDir()
	newPath = filepath.Join(dir, "new.csv")
	oldPath = filepath.Join(dir, "existing.csv")
	if err := os.WriteFile(newPath, []byte(newCSV), 0o644); err != nil {
		t.Fatalf("write new: %v", err)
	}
	if err := os.WriteFile(oldPath, []byte(existingCSV), 0o644); err != nil {
		t.Fatalf("write existing: %v", err)
	}
	return newPath, oldPath
}

func TestCheckCommandWritesCSVReport(t *testing.T) {
	newPath, oldPath := writeFixtures(t)
	out := filepath.Join(t.TempDir(), "report.csv")

	runCheck(t, "check", "--new", newPath, "--existing", oldPath, "--output", out)

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	got := string(b)
	if !strings.HasPrefix(got, "State,Issue,Metric,Details\n") {
		t.Fatalf("report header missing: %q", got)
	}
	// NY jumped 100 -> 250 and the unvaccinated column legitimately dropped
	if !strings.Contains(got, "NY,>2x increase,BI cases,100 -> 250") {
		t.Fatalf("missing increase row: %q", got)
	}
	if strings.Contains(got, "Cumulative decrease,Total Individuals not fully vaccinated") {
		t.Fatalf("whitelisted column alerted: %q", got)
	}
}

func TestCheckCommandWritesWorkbookTab(t *testing.T) {
	newPath, oldPath := writeFixtures(t)
	wb := filepath.Join(t.TempDir(), "checks.xlsx")

	runCheck(t, "check", "--new", newPath, "--existing", oldPath, "--workbook", wb)

	f, err := excelize.OpenFile(wb)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) != 1 {
		t.Fatalf("sheets = %#v", sheets)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		t.Fatalf("read tab: %v", err)
	}
	if len(rows) < 2 || rows[0][0] != "State" {
		t.Fatalf("tab rows = %#v", rows)
	}
}

func TestCheckCommandCustomWhitelist(t *testing.T) {
	newPath, oldPath := writeFixtures(t)
	out := filepath.Join(t.TempDir(), "report.csv")

	// clearing the whitelist makes the unvaccinated drop an anomaly
	runCheck(t, "check", "--new", newPath, "--existing", oldPath, "--output", out, "--whitelist", "BI deaths")

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(b), "CA,Cumulative decrease,Total Individuals not fully vaccinated,900 -> 100") {
		t.Fatalf("expected decrease for de-whitelisted column: %q", string(b))
	}
}
