package check

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pandemic-tracking/bicheck/internal/dataset"
)

// Options controls classification and detection behavior.
type Options struct {
	// KeyColumn identifies rows across snapshots (state abbreviation).
	KeyColumn string
	// FirstNumericColumn and LastNumericColumn bound the numeric-metric span,
	// by position in the new snapshot's column order, inclusive.
	FirstNumericColumn string
	LastNumericColumn  string
	// DecreaseWhitelist lists columns exempt from the cumulative-decrease
	// check; legitimate downward revisions are expected for them.
	DecreaseWhitelist []string
	// IncreaseMultiplier flags new > multiplier*old as an implausible jump.
	IncreaseMultiplier float64
}

// DefaultOptions returns the reporting schema the tracked sheet uses.
func DefaultOptions() Options {
	return Options{
		KeyColumn:          "Abbr",
		FirstNumericColumn: "BI cases",
		LastNumericColumn:  "Total Individuals not fully vaccinated",
		DecreaseWhitelist:  []string{"Total Individuals not fully vaccinated"},
		IncreaseMultiplier: 2,
	}
}

func (o Options) whitelisted(col string) bool {
	for _, w := range o.DecreaseWhitelist {
		if w == col {
			return true
		}
	}
	return false
}

// Classify determines the numeric-metric columns from the new snapshot's
// column order: everything between the configured boundary names, split into
// percent columns (name contains "percent") and plain numeric columns.
func Classify(newSnap *dataset.Dataset, opt Options) (numeric, percent []string, err error) {
	first := newSnap.ColumnIndex(opt.FirstNumericColumn)
	if first < 0 {
		return nil, nil, &ConfigurationError{Column: opt.FirstNumericColumn}
	}
	last := newSnap.ColumnIndex(opt.LastNumericColumn)
	if last < 0 {
		return nil, nil, &ConfigurationError{Column: opt.LastNumericColumn}
	}
	if last < first {
		return nil, nil, fmt.Errorf("boundary column %q precedes %q in new snapshot", opt.LastNumericColumn, opt.FirstNumericColumn)
	}
	for _, col := range newSnap.Columns[first : last+1] {
		if strings.Contains(col, "percent") {
			percent = append(percent, col)
		} else {
			numeric = append(numeric, col)
		}
	}
	return numeric, percent, nil
}

// Normalize coerces the metric columns of one snapshot in place. Numeric
// columns must parse once placeholders are substituted; a leftover bad token
// is a DataFormatError. Percent columns are best-effort and never fail.
// Cells that are already Number or Missing are left untouched, so running
// Normalize twice is a no-op. Columns absent from this snapshot's schema are
// skipped — the two snapshots may legitimately disagree on columns.
func Normalize(d *dataset.Dataset, numeric, percent []string, keyCol string) error {
	for _, col := range numeric {
		if !d.HasColumn(col) {
			continue
		}
		for _, row := range d.Rows {
			v := row[col]
			if !v.IsRaw() {
				continue
			}
			s := strings.ReplaceAll(v.Text(), ",", "")
			// "X" is a suppressed-small-value placeholder; count it as 1.
			s = strings.ReplaceAll(s, "X", "1")
			s = strings.TrimSpace(s)
			if s == "" {
				row[col] = dataset.Missing()
				continue
			}
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return &DataFormatError{Column: col, State: row[keyCol].Text(), Value: v.Text(), Err: err}
			}
			row[col] = dataset.Number(f)
		}
	}
	for _, col := range percent {
		if !d.HasColumn(col) {
			continue
		}
		for _, row := range d.Rows {
			row[col] = toFraction(row[col])
		}
	}
	return nil
}

// toFraction converts a percent cell to a fraction. Total function: Missing
// stays Missing, Number passes through, and any string that does not parse as
// "<number>%" (or a bare number) maps to Missing rather than failing.
func toFraction(v dataset.Value) dataset.Value {
	if v.IsMissing() || v.IsNumber() {
		return v
	}
	s := strings.ReplaceAll(v.Text(), "X", "1")
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return dataset.Missing()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return dataset.Missing()
	}
	return dataset.Number(f / 100)
}

// ClassifyAndNormalize classifies columns against the new snapshot and
// normalizes both snapshots in place. It must complete before Detect runs.
func ClassifyAndNormalize(newSnap, existing *dataset.Dataset, opt Options) (numeric, percent []string, err error) {
	numeric, percent, err = Classify(newSnap, opt)
	if err != nil {
		return nil, nil, err
	}
	if err := Normalize(newSnap, numeric, percent, opt.KeyColumn); err != nil {
		return nil, nil, fmt.Errorf("new snapshot: %w", err)
	}
	if err := Normalize(existing, numeric, percent, opt.KeyColumn); err != nil {
		return nil, nil, fmt.Errorf("existing snapshot: %w", err)
	}
	return numeric, percent, nil
}
