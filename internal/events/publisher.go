package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"neelosewa/internal/utils"

	"github.com/IBM/sarama"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingCancelled = "booking.cancelled"
)

// BookingEvent is emitted after a booking or a cancellation commits. Amount
// is the price paid for confirmations and the refund for cancellations.
type BookingEvent struct {
	Type         string          `json:"type"`
	BookingID    string          `json:"bookingId"`
	TicketNumber string          `json:"ticketNumber"`
	UserID       string          `json:"userId"`
	ItemType     string          `json:"itemType"`
	ItemID       string          `json:"itemId"`
	Amount       decimal.Decimal `json:"amount"`
	OccurredAt   time.Time       `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, e BookingEvent) error
	Close() error
}

// NopPublisher drops events; used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, BookingEvent) error { return nil }
func (NopPublisher) Close() error                                { return nil }

type KafkaPublisher struct {
	Producer sarama.SyncProducer
	Topic    string
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return &KafkaPublisher{Producer: producer, Topic: topic}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, e BookingEvent) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: p.Topic,
		Key:   sarama.StringEncoder(e.TicketNumber),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(e.Type)},
		},
	}
	partition, offset, err := p.Producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("send event: %w", err)
	}
	utils.Logger().WithFields(logrus.Fields{
		"topic":      p.Topic,
		"partition":  partition,
		"offset":     offset,
		"event":      e.Type,
		"ticket":     e.TicketNumber,
		"request_id": utils.RequestIDFrom(ctx),
	}).Debug("booking event published")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.Producer.Close()
}
