package repository

import (
	"context"
	"time"

	"EconDash/internal/domain/models"
)

// SourceFetcher retrieves the raw table for one source kind.
type SourceFetcher interface {
	Kind() string
	Fetch(ctx context.Context, spec models.SourceSpec, window models.Window) (*models.RawTable, error)
}

// SnapshotPublisher ships the result of a pipeline run downstream.
type SnapshotPublisher interface {
	Publish(ctx context.Context, snap *models.Snapshot) error
	Close() error
}

type Metrics interface {
	RecordFetch(source, kind string, d time.Duration, rows int, err error)
	RecordJoin(rows int)
	RecordCorrelation(m *models.CorrelationMatrix)
	RecordError(kind string)
}
