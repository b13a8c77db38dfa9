package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// JoinKind selects how a series is merged into the running table.
type JoinKind string

const (
	JoinInner JoinKind = "inner"
	JoinRight JoinKind = "right"
	JoinLeft  JoinKind = "left"
	JoinOuter JoinKind = "outer"
)

// IsValid returns true if k is a supported join kind.
func (k JoinKind) IsValid() bool {
	switch k {
	case JoinInner, JoinRight, JoinLeft, JoinOuter:
		return true
	default:
		return false
	}
}

// JoinStep merges Series into the running table with How.
type JoinStep struct {
	Series Metric
	How    JoinKind
}

// Row is one date of a joined table. Values follow the table's Columns;
// missing cells hold NaN.
type Row struct {
	Date   Date
	Values []float64
}

// Missing reports whether the i-th cell is absent.
func (r Row) Missing(i int) bool { return math.IsNaN(r.Values[i]) }

// Complete reports whether every cell is present.
func (r Row) Complete() bool {
	for i := range r.Values {
		if r.Missing(i) {
			return false
		}
	}
	return true
}

// JoinedTable holds one date column and one value column per contributing
// series. Rows are sorted by date and dates are unique.
type JoinedTable struct {
	Columns []Metric
	Rows    []Row
}

// TableFromSeries turns a single series into a one-column table.
func TableFromSeries(s TimeSeries) JoinedTable {
	rows := make([]Row, len(s.Points))
	for i, p := range s.Points {
		rows[i] = Row{Date: p.Date, Values: []float64{p.Value}}
	}
	return JoinedTable{Columns: []Metric{s.Metric}, Rows: rows}
}

// ColumnIndex returns the position of m, or -1.
func (t JoinedTable) ColumnIndex(m Metric) int {
	for i, c := range t.Columns {
		if c == m {
			return i
		}
	}
	return -1
}

// Column extracts one column's values in row order.
func (t JoinedTable) Column(i int) []float64 {
	out := make([]float64, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row.Values[i]
	}
	return out
}

func (t JoinedTable) Len() int { return len(t.Rows) }

// Header returns "date" followed by the value column names.
func (t JoinedTable) Header() []string {
	h := make([]string, 0, len(t.Columns)+1)
	h = append(h, "date")
	for _, c := range t.Columns {
		h = append(h, string(c))
	}
	return h
}

func (t JoinedTable) MarshalJSON() ([]byte, error) {
	rows := make([][]interface{}, len(t.Rows))
	for r, row := range t.Rows {
		cells := make([]interface{}, 0, len(row.Values)+1)
		cells = append(cells, row.Date.String())
		for _, v := range row.Values {
			cells = append(cells, nullable(v))
		}
		rows[r] = cells
	}
	return json.Marshal(struct {
		Columns []string        `json:"columns"`
		Rows    [][]interface{} `json:"rows"`
	}{Columns: t.Header(), Rows: rows})
}

// Validate checks the table invariants: row width and strictly increasing
// dates.
func (t JoinedTable) Validate() error {
	for i, row := range t.Rows {
		if len(row.Values) != len(t.Columns) {
			return fmt.Errorf("%w: row %s has %d cells, want %d",
				ErrSchemaMismatch, row.Date, len(row.Values), len(t.Columns))
		}
		if i > 0 && t.Rows[i-1].Date.Compare(row.Date) >= 0 {
			return fmt.Errorf("%w: dates not strictly increasing at %s", ErrSchemaMismatch, row.Date)
		}
	}
	return nil
}

func nullable(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
