package dataset

import (
	"fmt"
	"strconv"
)

type valueKind uint8

const (
	kindMissing valueKind = iota
	kindNumber
	kindRaw
)

// Value is a single snapshot cell. Cells arrive from spreadsheet exports as
// raw strings and become numbers (or Missing) once normalized; downstream
// checks only ever see Number or Missing.
type Value struct {
	kind valueKind
	num  float64
	raw  string
}

// Missing returns the explicit missing-value marker.
func Missing() Value { return Value{kind: kindMissing} }

// Number returns a normalized numeric cell.
func Number(f float64) Value { return Value{kind: kindNumber, num: f} }

// Raw returns an unnormalized string cell.
func Raw(s string) Value { return Value{kind: kindRaw, raw: s} }

func (v Value) IsMissing() bool { return v.kind == kindMissing }
func (v Value) IsNumber() bool  { return v.kind == kindNumber }
func (v Value) IsRaw() bool     { return v.kind == kindRaw }

// Float returns the numeric value; zero unless IsNumber.
func (v Value) Float() float64 { return v.num }

// Text returns the raw string for string cells, a decimal rendering for
// numeric cells, and "" for missing cells.
func (v Value) Text() string {
	switch v.kind {
	case kindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case kindRaw:
		return v.raw
	}
	return ""
}

// String implements fmt.Stringer for debug output.
func (v Value) String() string {
	switch v.kind {
	case kindNumber:
		return v.Text()
	case kindRaw:
		return fmt.Sprintf("%q", v.raw)
	}
	return "<missing>"
}

// Row maps column name to cell value.
type Row map[string]Value

// Dataset is one tabular snapshot: an ordered column list plus rows in file
// order. Column order matters — the numeric-metric span is positional.
type Dataset struct {
	Columns []string
	Rows    []Row
}

// New returns an empty dataset with the given column order.
func New(columns []string) *Dataset {
	return &Dataset{Columns: append([]string(nil), columns...)}
}

// Append adds a row. Columns absent from the map read as Missing.
func (d *Dataset) Append(r Row) {
	d.Rows = append(d.Rows, r)
}

// ColumnIndex returns the position of name in the column order, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether name is part of this snapshot's schema.
func (d *Dataset) HasColumn(name string) bool { return d.ColumnIndex(name) >= 0 }

// Keys returns the key-column value of every row, in row order. Rows with a
// missing key are skipped.
func (d *Dataset) Keys(keyCol string) []string {
	out := make([]string, 0, len(d.Rows))
	for _, r := range d.Rows {
		if k := r[keyCol].Text(); k != "" {
			out = append(out, k)
		}
	}
	return out
}

// Index returns a key -> row lookup. Keys are expected to be unique; on a
// duplicate the first row wins, matching how consumers read the source sheet.
func (d *Dataset) Index(keyCol string) map[string]Row {
	idx := make(map[string]Row, len(d.Rows))
	for _, r := range d.Rows {
		k := r[keyCol].Text()
		if k == "" {
			continue
		}
		if _, ok := idx[k]; !ok {
			idx[k] = r
		}
	}
	return idx
}
