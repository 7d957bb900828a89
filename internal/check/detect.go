package check

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pandemic-tracking/bicheck/internal/dataset"
)

// Anomaly is one row of the QA report.
type Anomaly struct {
	State  string // state abbreviation, or "All" for schema-level findings
	Issue  string
	Metric string
	Detail string
}

const (
	IssueStateRemoved  = "State removed"
	IssueStateAdded    = "State added"
	IssueColumnAdded   = "New column added"
	IssueColumnRemoved = "Column removed"
	IssueLostMetric    = "Lost metric"
	IssueNewMetric     = "New metric"
	IssueDecrease      = "Cumulative decrease"
)

// LargeIncreaseIssue renders the jump-check label for a multiplier, ">2x
// increase" under the default options.
func LargeIncreaseIssue(multiplier float64) string {
	return fmt.Sprintf(">%sx increase", strconv.FormatFloat(multiplier, 'f', -1, 64))
}

// Detect runs the QA battery over two normalized snapshots and returns the
// anomalies in report order. It assumes ClassifyAndNormalize has run: metric
// cells are Number or Missing, and Detect itself cannot fail. States iterate
// in the existing snapshot's row order; derived sets (added/removed states
// and columns) are sorted so output is deterministic.
func Detect(newSnap, existing *dataset.Dataset, numeric, percent []string, opt Options) []Anomaly {
	var out []Anomaly

	newIdx := newSnap.Index(opt.KeyColumn)
	oldIdx := existing.Index(opt.KeyColumn)

	// States dropped from or added to the reporting set.
	for _, state := range sortedDiff(oldIdx, newIdx) {
		out = append(out, Anomaly{State: state, Issue: IssueStateRemoved})
	}
	for _, state := range sortedDiff(newIdx, oldIdx) {
		out = append(out, Anomaly{State: state, Issue: IssueStateAdded})
	}

	// Schema drift. "Unnamed" columns are spreadsheet-export artifacts.
	for _, col := range columnDiff(newSnap, existing) {
		out = append(out, Anomaly{State: "All", Issue: IssueColumnAdded, Detail: col})
	}
	for _, col := range columnDiff(existing, newSnap) {
		out = append(out, Anomaly{State: "All", Issue: IssueColumnRemoved, Detail: col})
	}

	// Per-state metric comparisons, for every state the existing snapshot
	// knows. A state gone from the new snapshot reads as all-missing.
	for _, state := range existing.Keys(opt.KeyColumn) {
		oldRow, ok := oldIdx[state]
		if !ok {
			continue
		}
		newRow := newIdx[state]

		for _, col := range numeric {
			if !existing.HasColumn(col) || !newSnap.HasColumn(col) {
				continue
			}
			oldV, newV := oldRow[col], newRow[col]
			switch {
			case newV.IsMissing() && !oldV.IsMissing():
				out = append(out, Anomaly{State: state, Issue: IssueLostMetric, Metric: col,
					Detail: "Old value " + formatCount(oldV.Float())})
				continue
			case !newV.IsMissing() && oldV.IsMissing():
				out = append(out, Anomaly{State: state, Issue: IssueNewMetric, Metric: col,
					Detail: "New value " + formatCount(newV.Float())})
				continue
			case newV.IsMissing() || oldV.IsMissing():
				continue
			}
			// Both present. The two magnitude checks are independent.
			if newV.Float() < oldV.Float() && !opt.whitelisted(col) {
				out = append(out, Anomaly{State: state, Issue: IssueDecrease, Metric: col,
					Detail: formatCount(oldV.Float()) + " -> " + formatCount(newV.Float())})
			}
			if newV.Float() > opt.IncreaseMultiplier*oldV.Float() {
				out = append(out, Anomaly{State: state, Issue: LargeIncreaseIssue(opt.IncreaseMultiplier), Metric: col,
					Detail: formatCount(oldV.Float()) + " -> " + formatCount(newV.Float())})
			}
		}

		// Percent metrics: presence checks only, no magnitude comparison.
		for _, col := range percent {
			if !existing.HasColumn(col) || !newSnap.HasColumn(col) {
				continue
			}
			oldV, newV := oldRow[col], newRow[col]
			if newV.IsMissing() && !oldV.IsMissing() {
				out = append(out, Anomaly{State: state, Issue: IssueLostMetric, Metric: col,
					Detail: "Old value " + formatPercent(oldV.Float())})
			}
			if !newV.IsMissing() && oldV.IsMissing() {
				out = append(out, Anomaly{State: state, Issue: IssueNewMetric, Metric: col,
					Detail: "New value " + formatPercent(newV.Float())})
			}
		}
	}
	return out
}

// sortedDiff returns the keys of a that are absent from b, lexicographically.
func sortedDiff(a, b map[string]dataset.Row) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// columnDiff returns columns of a missing from b, skipping "Unnamed" export
// artifacts, sorted.
func columnDiff(a, b *dataset.Dataset) []string {
	var out []string
	for _, col := range a.Columns {
		if strings.HasPrefix(col, "Unnamed") {
			continue
		}
		if !b.HasColumn(col) {
			out = append(out, col)
		}
	}
	sort.Strings(out)
	return out
}

// formatCount renders an integer-valued metric without decimal places.
// Fractional parts are truncated toward zero, which is what report consumers
// expect for cumulative counts.
func formatCount(f float64) string {
	return strconv.FormatInt(int64(f), 10)
}

// formatPercent renders a fraction with two decimal places. Rounding follows
// fmt's round-half-even over the stored binary value, so 0.455 renders as
// "0.46" (the nearest double sits just above 0.455).
func formatPercent(f float64) string {
	return fmt.Sprintf("%.2f", f)
}
