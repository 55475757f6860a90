package repository

import (
	"context"
	"fmt"

	"StructSnap/internal/domain/models"
	"StructSnap/internal/domain/repository"
	pkgkafka "StructSnap/pkg/kafka"
)

// KafkaSnapshotPublisher implements Publisher on Kafka. Messages are keyed by
// symbol so each symbol's snapshots stay ordered within a partition; the
// variant selects the topic suffix.
type KafkaSnapshotPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSnapshotPublisher creates a Kafka snapshot publisher. topic is the
// base name; the variant is appended as ".swing" / ".full".
func NewKafkaSnapshotPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	if topic == "" {
		topic = "zone.snapshots"
	}
	return &KafkaSnapshotPublisher{producer: producer, topic: topic}
}

func (p *KafkaSnapshotPublisher) Publish(ctx context.Context, symbol string, variant models.Variant, payload []byte) error {
	topic := fmt.Sprintf("%s.%s", p.topic, variant)
	return p.producer.Publish(ctx, topic, []byte(symbol), payload)
}

func (p *KafkaSnapshotPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
