package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oldgate-museum/booking-widget/internal/cart"
	"github.com/oldgate-museum/booking-widget/internal/domain"
	"github.com/oldgate-museum/booking-widget/pkg/kafka"
)

// EventPublisher defines the interface for publishing widget events
type EventPublisher interface {
	// PublishBookingSubmitted publishes an event after tickets are committed to the cart
	PublishBookingSubmitted(ctx context.Context, state domain.BookingState, kind cart.CommitKind) error

	// Close closes the publisher
	Close() error
}

// KafkaEventPublisher publishes events to Kafka
type KafkaEventPublisher struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(producer *kafka.Producer, topic string) *KafkaEventPublisher {
	if topic == "" {
		topic = "booking.submitted"
	}
	return &KafkaEventPublisher{
		producer: producer,
		topic:    topic,
	}
}

// SubmittedItem is one ticket line of a submitted booking event
type SubmittedItem struct {
	VariantID int64 `json:"variant_id"`
	Quantity  int   `json:"quantity"`
}

// BookingSubmittedEvent is emitted when a session's tickets reach the cart
type BookingSubmittedEvent struct {
	EventType     string          `json:"event_type"`
	SessionID     string          `json:"session_id"`
	CommitKind    string          `json:"commit_kind"`
	SelectedDate  string          `json:"selected_date,omitempty"`
	Items         []SubmittedItem `json:"items"`
	TotalQuantity int             `json:"total_quantity"`
	GiftAid       bool            `json:"gift_aid"`
	SubmittedAt   time.Time       `json:"submitted_at"`
}

// PublishBookingSubmitted publishes an event after tickets are committed to the cart
func (p *KafkaEventPublisher) PublishBookingSubmitted(ctx context.Context, state domain.BookingState, kind cart.CommitKind) error {
	event := BookingSubmittedEvent{
		EventType:     "booking.submitted",
		SessionID:     state.SessionID,
		CommitKind:    string(kind),
		Items:         make([]SubmittedItem, 0, len(state.Items)),
		TotalQuantity: state.AggregateQuantity(),
		GiftAid:       state.GiftAidDeclared,
		SubmittedAt:   time.Now(),
	}
	if state.SelectedDate != nil {
		event.SelectedDate = state.SelectedDate.Format("2006-01-02")
	}
	for _, item := range state.Items {
		if item.Quantity == 0 {
			continue
		}
		event.Items = append(event.Items, SubmittedItem{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &kafka.Message{
		Topic: p.topic,
		Key:   []byte(state.SessionID),
		Value: payload,
		Headers: map[string]string{
			"event_type": event.EventType,
		},
		Timestamp: event.SubmittedAt,
	}

	return p.producer.Produce(ctx, msg)
}

// Close closes the publisher
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

// NoOpEventPublisher is a no-op implementation for local development and tests
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a new no-op event publisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// PublishBookingSubmitted does nothing
func (p *NoOpEventPublisher) PublishBookingSubmitted(ctx context.Context, state domain.BookingState, kind cart.CommitKind) error {
	return nil
}

// Close does nothing
func (p *NoOpEventPublisher) Close() error {
	return nil
}

var _ EventPublisher = (*KafkaEventPublisher)(nil)
var _ EventPublisher = (*NoOpEventPublisher)(nil)
