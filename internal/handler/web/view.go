package web

import (
	"encoding/json"
	"html/template"
	"math"
	"strconv"
	"strings"

	"EconDash/internal/domain/models"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// MetricTitle turns "total_vehicle_sales" into "Total Vehicle Sales".
func MetricTitle(m models.Metric) string {
	return titleCaser.String(strings.ReplaceAll(string(m), "_", " "))
}

func seriesTitle(s models.TimeSeries) string {
	if s.Title != "" {
		return s.Title
	}
	return MetricTitle(s.Metric)
}

type chartView struct {
	ID     string
	Title  string
	Figure template.JS
}

type tableView struct {
	Header []string
	Rows   [][]string
}

type pageView struct {
	Title   string
	Charts  []chartView
	Heatmap template.JS
	Table   tableView
}

type figure struct {
	Data   []map[string]interface{} `json:"data"`
	Layout map[string]interface{}   `json:"layout"`
}

func lineFigure(s models.TimeSeries) figure {
	x := make([]string, s.Len())
	for i, d := range s.Dates() {
		x[i] = d.String()
	}
	return figure{
		Data: []map[string]interface{}{{
			"x":    x,
			"y":    s.Values(),
			"type": "scatter",
			"mode": "lines",
			"name": string(s.Metric),
		}},
		Layout: map[string]interface{}{"title": map[string]string{"text": seriesTitle(s)}},
	}
}

// heatmapFigure renders the matrix as an annotated heatmap. Undefined
// coefficients become gaps with an empty label.
func heatmapFigure(m *models.CorrelationMatrix, colorscale string, precision int32) figure {
	labels := make([]string, m.Size())
	for i, c := range m.Columns {
		labels[i] = string(c)
	}

	z := make([][]interface{}, m.Size())
	annotations := make([]map[string]interface{}, 0, m.Size()*m.Size())
	for i, row := range m.Values {
		z[i] = make([]interface{}, len(row))
		for j, v := range row {
			text := ""
			if math.IsNaN(v) {
				z[i][j] = nil
			} else {
				z[i][j] = v
				text = decimal.NewFromFloat(v).Round(precision).String()
			}
			annotations = append(annotations, map[string]interface{}{
				"x":         labels[j],
				"y":         labels[i],
				"text":      text,
				"showarrow": false,
				"font":      map[string]string{"color": annotationColor(v)},
			})
		}
	}

	return figure{
		Data: []map[string]interface{}{{
			"z":          z,
			"x":          labels,
			"y":          labels,
			"type":       "heatmap",
			"colorscale": colorscale,
			"zmin":       -1,
			"zmax":       1,
			"showscale":  true,
		}},
		Layout: map[string]interface{}{
			"title":       map[string]string{"text": "Correlation"},
			"annotations": annotations,
			"xaxis":       map[string]interface{}{"side": "top"},
			"yaxis":       map[string]interface{}{"autorange": "reversed"},
		},
	}
}

// annotationColor keeps labels readable on Viridis: dark on the bright
// end, white elsewhere.
func annotationColor(v float64) string {
	if !math.IsNaN(v) && v > 0.5 {
		return "#000000"
	}
	return "#ffffff"
}

func buildTable(t models.JoinedTable) tableView {
	view := tableView{Header: t.Header(), Rows: make([][]string, len(t.Rows))}
	for r, row := range t.Rows {
		cells := make([]string, 0, len(row.Values)+1)
		cells = append(cells, row.Date.String())
		for _, v := range row.Values {
			if math.IsNaN(v) {
				cells = append(cells, "")
				continue
			}
			cells = append(cells, strconv.FormatFloat(v, 'f', -1, 64))
		}
		view.Rows[r] = cells
	}
	return view
}

func toJS(v interface{}) (template.JS, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}
