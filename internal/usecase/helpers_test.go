package usecase

import (
	"context"
	"errors"
	"time"

	"EconDash/internal/domain/models"
)

// stubFetcher serves canned raw tables keyed by source name.
type stubFetcher struct {
	kind   string
	tables map[models.Metric]*models.RawTable
	err    error
	calls  []models.Metric
}

func (f *stubFetcher) Kind() string { return f.kind }

func (f *stubFetcher) Fetch(_ context.Context, spec models.SourceSpec, _ models.Window) (*models.RawTable, error) {
	f.calls = append(f.calls, spec.Name)
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.tables[spec.Name]
	if !ok {
		return nil, errors.New("no such table")
	}
	return t, nil
}

type recordingPublisher struct {
	snaps []*models.Snapshot
	err   error
}

func (p *recordingPublisher) Publish(_ context.Context, s *models.Snapshot) error {
	p.snaps = append(p.snaps, s)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func d(y, m, day int) models.Date { return models.NewDate(y, time.Month(m), day) }

func series(m models.Metric, pts ...models.Point) models.TimeSeries {
	return models.NewTimeSeries(m, pts)
}

func pt(date models.Date, v float64) models.Point { return models.Point{Date: date, Value: v} }
