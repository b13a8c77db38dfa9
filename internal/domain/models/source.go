package models

// Source kinds understood by the loader.
const (
	KindFRED    = "fred"
	KindYahoo   = "yahoo"
	KindTiingo  = "tiingo"
	KindCSVURL  = "csv_url"
	KindCSVFile = "csv_file"
	KindSQL     = "sql"
)

// SourceKinds lists every supported kind.
func SourceKinds() []string {
	return []string{KindFRED, KindYahoo, KindTiingo, KindCSVURL, KindCSVFile, KindSQL}
}

// RowFilter keeps only raw rows whose Column equals Equals.
type RowFilter struct {
	Column string
	Equals string
}

// SourceSpec describes where one series comes from and how its raw
// columns map onto (date, metric).
type SourceSpec struct {
	Name        Metric
	Kind        string
	Title       string
	Series      string // FRED series id
	Symbol      string // Yahoo / Tiingo ticker
	URL         string
	Path        string
	Driver      string // sql: clickhouse | sqlite
	DSN         string // sql: sqlite file (clickhouse uses the shared client)
	Query       string
	DateColumn  string
	ValueColumn string
	Filter      *RowFilter
}

// RawTable is the untyped tabular result of a fetch, before renaming and
// date coercion.
type RawTable struct {
	Source  string
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the position of name in the header, or -1.
func (t *RawTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}
