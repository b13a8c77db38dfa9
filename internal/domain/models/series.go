package models

import "sort"

// Point is a single (date, value) observation.
type Point struct {
	Date  Date    `json:"date"`
	Value float64 `json:"value"`
}

// TimeSeries is an ordered sequence of observations for one metric,
// sorted by date with unique dates.
type TimeSeries struct {
	Metric Metric  `json:"metric"`
	Title  string  `json:"title,omitempty"`
	Points []Point `json:"points"`
}

// NewTimeSeries sorts points by date and keeps the last observation for
// duplicated dates.
func NewTimeSeries(metric Metric, points []Point) TimeSeries {
	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	out := sorted[:0]
	for _, p := range sorted {
		if n := len(out); n > 0 && out[n-1].Date == p.Date {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return TimeSeries{Metric: metric, Points: out}
}

// Columns returns the canonical column names of the series.
func (s TimeSeries) Columns() []string {
	return []string{"date", string(s.Metric)}
}

func (s TimeSeries) Len() int { return len(s.Points) }

// Dates returns the observation dates in order.
func (s TimeSeries) Dates() []Date {
	out := make([]Date, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Date
	}
	return out
}

// Values returns the observation values in order.
func (s TimeSeries) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// Lookup indexes the series by date.
func (s TimeSeries) Lookup() map[Date]float64 {
	m := make(map[Date]float64, len(s.Points))
	for _, p := range s.Points {
		m[p.Date] = p.Value
	}
	return m
}
