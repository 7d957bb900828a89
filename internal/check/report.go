package check

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/pandemic-tracking/bicheck/internal/dataset"
)

// Header is the report's fixed column set.
var Header = []string{"State", "Issue", "Metric", "Details"}

// Report is the ordered anomaly sequence from one reconciliation run. The
// sequence is the report; records have no identity beyond their position.
type Report struct {
	Anomalies []Anomaly
}

// Run executes the full classify -> normalize -> detect pipeline over the two
// snapshots. Both snapshots are normalized in place. A classification or
// normalization failure aborts the run with no partial report.
func Run(newSnap, existing *dataset.Dataset, opt Options) (*Report, error) {
	numeric, percent, err := ClassifyAndNormalize(newSnap, existing, opt)
	if err != nil {
		return nil, fmt.Errorf("classify snapshots: %w", err)
	}
	return &Report{Anomalies: Detect(newSnap, existing, numeric, percent, opt)}, nil
}

// CSV serializes the report as comma-separated text with a header row,
// always four fields per record. The output is meant to be pasted into a
// tracking sheet as-is.
func (r *Report) CSV() string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(Header)
	for _, a := range r.Anomalies {
		_ = w.Write([]string{a.State, a.Issue, a.Metric, a.Detail})
	}
	w.Flush()
	return b.String()
}

// Rows returns the header plus one string slice per anomaly, for sinks that
// write cells rather than text.
func (r *Report) Rows() [][]string {
	out := make([][]string, 0, len(r.Anomalies)+1)
	out = append(out, Header)
	for _, a := range r.Anomalies {
		out = append(out, []string{a.State, a.Issue, a.Metric, a.Detail})
	}
	return out
}
