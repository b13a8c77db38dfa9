package repository

import (
	"context"
	"fmt"

	"EconDash/internal/domain/models"
	drepo "EconDash/internal/domain/repository"
	"EconDash/pkg/kafka"
	applogger "EconDash/pkg/logger"
)

// KafkaSnapshotPublisher writes each snapshot as JSON keyed by profile.
type KafkaSnapshotPublisher struct {
	producer *kafka.Producer
	l        *applogger.Logger
}

func NewKafkaSnapshotPublisher(p *kafka.Producer, l *applogger.Logger) drepo.SnapshotPublisher {
	return &KafkaSnapshotPublisher{producer: p, l: l}
}

func (p *KafkaSnapshotPublisher) Publish(ctx context.Context, snap *models.Snapshot) error {
	if err := p.producer.Publish(ctx, []byte(snap.Profile), snap); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	p.l.Info("snapshot published",
		applogger.String("topic", p.producer.Topic()),
		applogger.String("profile", snap.Profile),
		applogger.Int("rows", snap.Rows),
	)
	return nil
}

func (p *KafkaSnapshotPublisher) Close() error {
	return p.producer.Close()
}

// NoopSnapshotPublisher is used when Kafka is disabled.
type NoopSnapshotPublisher struct{}

func (NoopSnapshotPublisher) Publish(context.Context, *models.Snapshot) error { return nil }
func (NoopSnapshotPublisher) Close() error                                    { return nil }
