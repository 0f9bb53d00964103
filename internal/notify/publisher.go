package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"travel-booking/pkg/utils"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
)

// Event is the message the external notification sender consumes to
// mail confirmations and cancellations. Fire-and-forget: delivery
// failures are logged, never surfaced to the booking flow.
type Event struct {
	Type          string    `json:"type"`
	BookingID     string    `json:"booking_id"`
	OrderRef      string    `json:"order_ref"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	AmountPaid    int64     `json:"amount_paid"`
	BalanceDue    int64     `json:"balance_due"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// KafkaPublisher writes booking events keyed by booking id so that
// events for one booking stay ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewKafkaPublisher(cfg utils.KafkaConfig, log *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(msg string, args ...any) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			log.Error(fmt.Sprintf("kafka: "+msg, args...))
		}),
	}

	return &KafkaPublisher{
		writer: writer,
		log:    log.With(zap.String("publisher", "kafka")),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal booking event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.BookingID),
		Value: value,
		Time:  event.OccurredAt,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("Failed to publish booking event",
			zap.Error(err),
			zap.String("type", event.Type),
			zap.String("booking_id", event.BookingID),
		)
		return fmt.Errorf("publish %s for booking %s: %w", event.Type, event.BookingID, err)
	}

	p.log.Info("Booking event published",
		zap.String("type", event.Type),
		zap.String("booking_id", event.BookingID),
	)

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher is used when no brokers are configured (local dev).
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event Event) error { return nil }
func (NoopPublisher) Close() error                                   { return nil }

// NewPublisher picks the Kafka publisher when brokers are configured.
func NewPublisher(cfg utils.KafkaConfig, log *zap.Logger) Publisher {
	if len(cfg.Brokers) == 0 {
		log.Info("Kafka brokers not configured, booking events disabled")
		return NoopPublisher{}
	}
	return NewKafkaPublisher(cfg, log)
}
