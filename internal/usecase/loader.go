package usecase

import (
	"context"
	"fmt"
	"time"

	"EconDash/internal/domain/models"
	domrepo "EconDash/internal/domain/repository"
	applogger "EconDash/pkg/logger"
	"EconDash/pkg/util"
)

// SourceLoader turns a configured source into a clean (date, metric)
// series. It dispatches on the source kind and never caches.
type SourceLoader struct {
	fetchers map[string]domrepo.SourceFetcher
	metrics  domrepo.Metrics
	l        *applogger.Logger
}

func NewSourceLoader(fetchers []domrepo.SourceFetcher, metrics domrepo.Metrics, l *applogger.Logger) *SourceLoader {
	m := make(map[string]domrepo.SourceFetcher, len(fetchers))
	for _, f := range fetchers {
		m[f.Kind()] = f
	}
	return &SourceLoader{fetchers: m, metrics: metrics, l: l}
}

// Load fetches spec and normalizes it to window. Fetch failures wrap
// ErrSourceUnavailable, shape problems ErrSchemaMismatch; both come back
// as *models.SourceError.
func (s *SourceLoader) Load(ctx context.Context, spec models.SourceSpec, window models.Window) (models.TimeSeries, error) {
	f, ok := s.fetchers[spec.Kind]
	if !ok {
		return models.TimeSeries{}, models.NewSourceError(spec.Name, spec.Kind,
			fmt.Errorf("%w: %q", models.ErrUnknownSourceKind, spec.Kind))
	}

	start := time.Now()
	raw, err := f.Fetch(ctx, spec, window)
	if err != nil {
		s.metrics.RecordFetch(spec.Name.String(), spec.Kind, time.Since(start), 0, err)
		s.metrics.RecordError("fetch")
		return models.TimeSeries{}, models.NewSourceError(spec.Name, spec.Kind,
			fmt.Errorf("%w: %w", models.ErrSourceUnavailable, err))
	}

	series, err := Normalize(raw, spec, window)
	s.metrics.RecordFetch(spec.Name.String(), spec.Kind, time.Since(start), series.Len(), err)
	if err != nil {
		s.metrics.RecordError("schema")
		return models.TimeSeries{}, models.NewSourceError(spec.Name, spec.Kind, err)
	}

	fields := []applogger.Field{
		applogger.String("source", spec.Name.String()),
		applogger.String("kind", spec.Kind),
		applogger.Int("raw_rows", len(raw.Rows)),
		applogger.Int("rows", series.Len()),
		applogger.Duration("duration_ms", time.Since(start)),
	}
	if series.Len() == 0 {
		s.l.Warn("source has no observations in window", fields...)
	} else {
		s.l.Info("source loaded", fields...)
	}
	return series, nil
}

// Normalize applies the row filter, coerces dates and values, keeps the
// window and renames the value column to the metric. Empty or missing
// values are skipped; an unparseable date is a schema mismatch.
func Normalize(raw *models.RawTable, spec models.SourceSpec, window models.Window) (models.TimeSeries, error) {
	di := raw.ColumnIndex(spec.DateColumn)
	if di < 0 {
		return models.TimeSeries{}, fmt.Errorf("%w: date column %q not in %v", models.ErrSchemaMismatch, spec.DateColumn, raw.Columns)
	}
	vi := raw.ColumnIndex(spec.ValueColumn)
	if vi < 0 {
		return models.TimeSeries{}, fmt.Errorf("%w: value column %q not in %v", models.ErrSchemaMismatch, spec.ValueColumn, raw.Columns)
	}
	fi := -1
	if spec.Filter != nil {
		if fi = raw.ColumnIndex(spec.Filter.Column); fi < 0 {
			return models.TimeSeries{}, fmt.Errorf("%w: filter column %q not in %v", models.ErrSchemaMismatch, spec.Filter.Column, raw.Columns)
		}
	}

	points := make([]models.Point, 0, len(raw.Rows))
	for n, row := range raw.Rows {
		if fi >= 0 && row[fi] != spec.Filter.Equals {
			continue
		}
		v, ok, err := util.ParseNumber(row[vi])
		if err != nil {
			return models.TimeSeries{}, fmt.Errorf("%w: row %d: %v", models.ErrSchemaMismatch, n+1, err)
		}
		if !ok {
			continue
		}
		t, err := util.ParseDay(row[di])
		if err != nil {
			return models.TimeSeries{}, fmt.Errorf("%w: row %d: %v", models.ErrSchemaMismatch, n+1, err)
		}
		d := models.DateOf(t)
		if !window.Contains(d) {
			continue
		}
		points = append(points, models.Point{Date: d, Value: v})
	}

	series := models.NewTimeSeries(spec.Name, points)
	series.Title = spec.Title
	return series, nil
}
