package usecase

import (
	"fmt"
	"math"
	"sort"

	"EconDash/internal/domain/models"
)

// Join merges right into left on date. Rows come back sorted by date;
// cells with no observation hold NaN.
func Join(left models.JoinedTable, right models.TimeSeries, how models.JoinKind) (models.JoinedTable, error) {
	if !how.IsValid() {
		return models.JoinedTable{}, fmt.Errorf("unsupported join kind %q", how)
	}
	if left.ColumnIndex(right.Metric) >= 0 {
		return models.JoinedTable{}, fmt.Errorf("%w: column %q already joined", models.ErrSchemaMismatch, right.Metric)
	}

	width := len(left.Columns) + 1
	columns := make([]models.Metric, 0, width)
	columns = append(columns, left.Columns...)
	columns = append(columns, right.Metric)

	leftRows := make(map[models.Date][]float64, len(left.Rows))
	for _, r := range left.Rows {
		leftRows[r.Date] = r.Values
	}
	rightVals := right.Lookup()

	var dates []models.Date
	switch how {
	case models.JoinInner:
		for _, r := range left.Rows {
			if _, ok := rightVals[r.Date]; ok {
				dates = append(dates, r.Date)
			}
		}
	case models.JoinLeft:
		for _, r := range left.Rows {
			dates = append(dates, r.Date)
		}
	case models.JoinRight:
		dates = right.Dates()
	case models.JoinOuter:
		seen := make(map[models.Date]struct{}, len(leftRows)+len(rightVals))
		for _, r := range left.Rows {
			seen[r.Date] = struct{}{}
		}
		for _, p := range right.Points {
			seen[p.Date] = struct{}{}
		}
		for d := range seen {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	rows := make([]models.Row, 0, len(dates))
	for _, d := range dates {
		values := make([]float64, width)
		if lv, ok := leftRows[d]; ok {
			copy(values, lv)
		} else {
			for i := 0; i < width-1; i++ {
				values[i] = math.NaN()
			}
		}
		if rv, ok := rightVals[d]; ok {
			values[width-1] = rv
		} else {
			values[width-1] = math.NaN()
		}
		rows = append(rows, models.Row{Date: d, Values: values})
	}
	return models.JoinedTable{Columns: columns, Rows: rows}, nil
}

// Align folds plan left to right: the first step seeds the table, every
// further step is joined with its own kind. The first step's kind is
// ignored.
func Align(series map[models.Metric]models.TimeSeries, plan []models.JoinStep) (models.JoinedTable, error) {
	if len(plan) == 0 {
		return models.JoinedTable{}, fmt.Errorf("%w: empty join plan", models.ErrSchemaMismatch)
	}
	first, ok := series[plan[0].Series]
	if !ok {
		return models.JoinedTable{}, fmt.Errorf("%w: series %q not loaded", models.ErrSchemaMismatch, plan[0].Series)
	}
	table := models.TableFromSeries(first)
	for _, step := range plan[1:] {
		s, ok := series[step.Series]
		if !ok {
			return models.JoinedTable{}, fmt.Errorf("%w: series %q not loaded", models.ErrSchemaMismatch, step.Series)
		}
		var err error
		if table, err = Join(table, s, step.How); err != nil {
			return models.JoinedTable{}, fmt.Errorf("join %s: %w", step.Series, err)
		}
	}
	return table, nil
}

// Project returns a table with exactly columns, in that order.
func Project(t models.JoinedTable, columns []models.Metric) (models.JoinedTable, error) {
	idx := make([]int, len(columns))
	seen := make(map[models.Metric]bool, len(columns))
	for i, c := range columns {
		if seen[c] {
			return models.JoinedTable{}, fmt.Errorf("%w: duplicate column %q", models.ErrSchemaMismatch, c)
		}
		seen[c] = true
		if idx[i] = t.ColumnIndex(c); idx[i] < 0 {
			return models.JoinedTable{}, fmt.Errorf("%w: column %q not in %v", models.ErrSchemaMismatch, c, t.Columns)
		}
	}

	out := models.JoinedTable{
		Columns: append([]models.Metric(nil), columns...),
		Rows:    make([]models.Row, len(t.Rows)),
	}
	for r, row := range t.Rows {
		values := make([]float64, len(idx))
		for i, j := range idx {
			values[i] = row.Values[j]
		}
		out.Rows[r] = models.Row{Date: row.Date, Values: values}
	}
	return out, nil
}

// DropIncomplete removes rows with any missing cell.
func DropIncomplete(t models.JoinedTable) models.JoinedTable {
	out := models.JoinedTable{Columns: t.Columns, Rows: make([]models.Row, 0, len(t.Rows))}
	for _, row := range t.Rows {
		if row.Complete() {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}
