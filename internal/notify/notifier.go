// Package notify publishes fulfillment status-change events for downstream
// collaborators. Publish failures are reported to the caller for logging but
// must never block or roll back the status change itself.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StatusChangeEvent is emitted on every order or delivery status transition.
type StatusChangeEvent struct {
	OrderID        uuid.UUID `json:"order_id"`
	Entity         string    `json:"entity"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Entity values for StatusChangeEvent.
const (
	EntityOrder    = "order"
	EntityDelivery = "delivery"
)

// Publisher delivers status-change events to whatever channel is configured.
type Publisher interface {
	Publish(event StatusChangeEvent) error
	Close() error
}

// kafkaPublisher publishes events to a Kafka topic.
type kafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   zerolog.Logger
}

// NewKafkaPublisher creates a synchronous, idempotent Kafka publisher.
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) (Publisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &kafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger.With().Str("component", "kafka-publisher").Logger(),
	}, nil
}

// Publish sends the event keyed by order id so all events for one order land
// on the same partition, preserving their order.
func (p *kafkaPublisher) Publish(event StatusChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.OrderID.String()),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.Error().Err(err).
			Str("order_id", event.OrderID.String()).
			Str("new_status", event.NewStatus).
			Msg("failed to publish status change event")
		return fmt.Errorf("failed to publish status change event: %w", err)
	}

	p.logger.Debug().
		Str("order_id", event.OrderID.String()).
		Str("new_status", event.NewStatus).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("status change event published")

	return nil
}

// Close shuts down the underlying producer.
func (p *kafkaPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}

// nopPublisher is the default when no broker is configured.
type nopPublisher struct{}

// NewNopPublisher returns a publisher that discards every event.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(StatusChangeEvent) error { return nil }
func (nopPublisher) Close() error                    { return nil }
