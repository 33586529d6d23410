package repository

import (
	"context"
	"time"

	"TrendPulse/internal/domain/models"
	pkgkafka "TrendPulse/pkg/kafka"
)

// JobEvent is the wire format for job lifecycle events.
type JobEvent struct {
	Event     string           `json:"event"`
	JobID     string           `json:"job_id"`
	Status    models.JobStatus `json:"status"`
	Market    string           `json:"market"`
	Region    models.Region    `json:"region"`
	Timeframe models.Timeframe `json:"timeframe"`
	Error     string           `json:"error,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// KafkaJobPublisher emits job lifecycle events to a Kafka topic, keyed by
// job id so per-job ordering survives partitioning.
type KafkaJobPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaJobPublisher creates a Kafka-backed event publisher.
func NewKafkaJobPublisher(producer *pkgkafka.Producer, topic string) *KafkaJobPublisher {
	return &KafkaJobPublisher{producer: producer, topic: topic}
}

// PublishJobEvent sends one lifecycle event.
func (p *KafkaJobPublisher) PublishJobEvent(ctx context.Context, event string, job *models.Job) error {
	msg := JobEvent{
		Event:     event,
		JobID:     job.ID,
		Status:    job.Status,
		Market:    job.Request.Market,
		Region:    job.Request.Region,
		Timeframe: job.Request.Timeframe,
		Error:     job.Error,
		Timestamp: time.Now().UTC(),
	}
	return p.producer.Publish(ctx, p.topic, []byte(job.ID), msg)
}

// PublishMessage ships an arbitrary payload to topic. Satisfies the log
// collector sink so aggregated error batches share the producer.
func (p *KafkaJobPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

// Close flushes and closes the underlying producer.
func (p *KafkaJobPublisher) Close() error {
	return p.producer.Close()
}
