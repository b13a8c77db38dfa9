package models

import (
	"encoding/json"
	"math"
	"sort"
	"time"
)

// MissingPolicy controls how gaps in a joined table are handled before
// correlating.
type MissingPolicy string

const (
	// MissingPairwise uses, per column pair, the rows where both cells exist.
	MissingPairwise MissingPolicy = "pairwise"
	// MissingComplete uses only rows where every column is present.
	MissingComplete MissingPolicy = "complete"
)

// CorrelationMatrix is a square symmetric matrix of Pearson coefficients.
// Undefined coefficients are NaN.
type CorrelationMatrix struct {
	Columns      []Metric
	Values       [][]float64
	Observations [][]int
}

// Size returns the number of columns.
func (m *CorrelationMatrix) Size() int { return len(m.Columns) }

// At returns the coefficient between a and b.
func (m *CorrelationMatrix) At(a, b Metric) (float64, bool) {
	i, j := m.index(a), m.index(b)
	if i < 0 || j < 0 {
		return math.NaN(), false
	}
	return m.Values[i][j], true
}

func (m *CorrelationMatrix) index(x Metric) int {
	for i, c := range m.Columns {
		if c == x {
			return i
		}
	}
	return -1
}

// Pair is one off-diagonal entry.
type Pair struct {
	A            Metric  `json:"a"`
	B            Metric  `json:"b"`
	R            float64 `json:"r"`
	Observations int     `json:"observations"`
}

// Pairs lists the upper triangle, strongest |r| first. Undefined
// coefficients sort last.
func (m *CorrelationMatrix) Pairs() []Pair {
	n := m.Size()
	out := make([]Pair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, Pair{A: m.Columns[i], B: m.Columns[j], R: m.Values[i][j], Observations: m.Observations[i][j]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].R, out[j].R
		if math.IsNaN(ri) {
			return false
		}
		if math.IsNaN(rj) {
			return true
		}
		return math.Abs(ri) > math.Abs(rj)
	})
	return out
}

func (p Pair) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		A            Metric      `json:"a"`
		B            Metric      `json:"b"`
		R            interface{} `json:"r"`
		Observations int         `json:"observations"`
	}{A: p.A, B: p.B, R: nullable(p.R), Observations: p.Observations})
}

func (m *CorrelationMatrix) MarshalJSON() ([]byte, error) {
	values := make([][]interface{}, len(m.Values))
	for i, row := range m.Values {
		values[i] = make([]interface{}, len(row))
		for j, v := range row {
			values[i][j] = nullable(v)
		}
	}
	return json.Marshal(struct {
		Columns      []Metric        `json:"columns"`
		Values       [][]interface{} `json:"values"`
		Observations [][]int         `json:"observations"`
	}{Columns: m.Columns, Values: values, Observations: m.Observations})
}

// Snapshot is the outcome of one pipeline run, published to downstream
// consumers.
type Snapshot struct {
	Profile     string             `json:"profile"`
	GeneratedAt time.Time          `json:"generated_at"`
	Start       Date               `json:"start"`
	Rows        int                `json:"rows"`
	Matrix      *CorrelationMatrix `json:"matrix"`
}
