package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ReadCSV parses a CSV stream into a dataset. The first record is the header
// and fixes the column order. When infer is true, cells that parse cleanly as
// numbers are stored as Number (the reference snapshot is read this way);
// otherwise every non-empty cell stays Raw, as a live spreadsheet export
// hands back strings. Empty cells are Missing either way.
func ReadCSV(r io.Reader, infer bool) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: empty input")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	d := New(header)
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(d.Rows)+1, err)
		}
		row := make(Row, len(header))
		for i, col := range header {
			if i >= len(rec) {
				row[col] = Missing()
				continue
			}
			row[col] = cell(rec[i], infer)
		}
		d.Append(row)
	}
	return d, nil
}

func cell(s string, infer bool) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return Missing()
	}
	if infer {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Number(f)
		}
	}
	return Raw(s)
}

// FetchCSV downloads a CSV resource and parses it with type inference. Used
// for the published reference snapshot.
func FetchCSV(url string, timeout time.Duration) (*Dataset, error) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("fetch: unexpected status %s: %s", resp.Status, string(b))
	}
	return ReadCSV(resp.Body, true)
}
