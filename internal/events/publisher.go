// Package events announces performed order actions on kafka so other
// systems can follow what users did through the gateway.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"mytrade/internal/domain"
)

const DefaultTopic = "mytrade.order-actions"

type OrderActionEvent struct {
	EventID    string        `json:"eventId"`
	OrderID    string        `json:"orderId"`
	Action     string        `json:"action"`
	FromStatus domain.Status `json:"fromStatus"`
	ToStatus   domain.Status `json:"toStatus,omitempty"`
	ActorID    string        `json:"actorId"`
	ActorRole  domain.Role   `json:"actorRole"`
	Reason     string        `json:"reason,omitempty"`
	OccurredAt time.Time     `json:"occurredAt"`
}

// NewOrderActionEvent stamps a fresh event id and the current time.
func NewOrderActionEvent(orderID, action string, from, to domain.Status, actor domain.Viewer, reason string) OrderActionEvent {
	return OrderActionEvent{
		EventID:    uuid.New().String(),
		OrderID:    orderID,
		Action:     action,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	PublishOrderAction(ctx context.Context, event OrderActionEvent) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}
	return newKafkaPublisher(writer, topic, logger)
}

func newKafkaPublisher(writer messageWriter, topic string, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, topic: topic, logger: logger}
}

// PublishOrderAction writes the event keyed by order id, so every event of an
// order lands on the same partition in order.
func (p *KafkaPublisher) PublishOrderAction(ctx context.Context, event OrderActionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode order action event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte("order.action")},
		},
	})
	if err != nil {
		p.logger.Error("publishing order action event failed",
			zap.String("topic", p.topic),
			zap.String("orderId", event.OrderID),
			zap.String("action", event.Action),
			zap.Error(err),
		)
		return err
	}

	p.logger.Debug("order action event published",
		zap.String("topic", p.topic),
		zap.String("eventId", event.EventID),
		zap.String("orderId", event.OrderID),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

type NopPublisher struct{}

func (NopPublisher) PublishOrderAction(context.Context, OrderActionEvent) error { return nil }
