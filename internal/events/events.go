// Package events publishes order lifecycle notifications.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/01fe23bcs183/paaji-client-sub000/internal/model"

	"github.com/IBM/sarama"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Event types.
const (
	TypeOrderPlaced        = "order.placed"
	TypeOrderStatusChanged = "order.status_changed"
)

// Event is the message written to the orders topic.
type Event struct {
	ID             string            `json:"id"`
	Type           string            `json:"type"`
	OrderID        string            `json:"orderId"`
	OrderNumber    string            `json:"orderNumber"`
	Status         model.OrderStatus `json:"status"`
	PreviousStatus model.OrderStatus `json:"previousStatus,omitempty"`
	Total          model.Money       `json:"total"`
	OccurredAt     time.Time         `json:"occurredAt"`
}

// OrderPlaced builds the event for a newly placed order.
func OrderPlaced(o *model.Order) Event {
	return Event{
		ID:          ulid.Make().String(),
		Type:        TypeOrderPlaced,
		OrderID:     o.ID.String(),
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		Total:       o.Pricing.Total,
		OccurredAt:  o.CreatedAt,
	}
}

// StatusChanged builds the event for a lifecycle transition.
func StatusChanged(o *model.Order, previous model.OrderStatus) Event {
	return Event{
		ID:             ulid.Make().String(),
		Type:           TypeOrderStatusChanged,
		OrderID:        o.ID.String(),
		OrderNumber:    o.OrderNumber,
		Status:         o.Status,
		PreviousStatus: previous,
		Total:          o.Pricing.Total,
		OccurredAt:     o.UpdatedAt,
	}
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// KafkaPublisher writes events to a topic, keyed by order number so every
// event for an order lands on the same partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   zerolog.Logger
}

// NewKafkaPublisher connects a synchronous producer to brokers.
func NewKafkaPublisher(brokers []string, topic string, logger zerolog.Logger) (*KafkaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return newKafkaPublisher(producer, topic, logger), nil
}

func newKafkaPublisher(producer sarama.SyncProducer, topic string, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger.With().Str("component", "kafka-publisher").Logger(),
	}
}

// Publish implements Publisher.
func (p *KafkaPublisher) Publish(_ context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.OrderNumber),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(event.Type)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.Error().
			Err(err).
			Str("event_type", event.Type).
			Str("order_number", event.OrderNumber).
			Msg("failed to publish event")
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug().
		Str("event_id", event.ID).
		Str("event_type", event.Type).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("event published")
	return nil
}

// Close implements Publisher.
func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NoopPublisher drops events. It is used when Kafka is disabled.
type NoopPublisher struct {
	logger zerolog.Logger
}

// NewNoopPublisher creates a publisher that only logs at debug level.
func NewNoopPublisher(logger zerolog.Logger) *NoopPublisher {
	return &NoopPublisher{logger: logger.With().Str("component", "noop-publisher").Logger()}
}

// Publish implements Publisher.
func (p *NoopPublisher) Publish(_ context.Context, event Event) error {
	p.logger.Debug().Str("event_type", event.Type).Str("order_number", event.OrderNumber).Msg("event dropped")
	return nil
}

// Close implements Publisher.
func (p *NoopPublisher) Close() error { return nil }
