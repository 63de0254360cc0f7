package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/dat564/e-commerce-sub001/models"
)

// OrderEvent is published on every order status change.
type OrderEvent struct {
	OrderNumber   string               `json:"order_number"`
	Status        models.OrderStatus   `json:"status"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

// ProducerAPI lets the order service publish without a live broker in tests.
type ProducerAPI interface {
	PublishOrderEvent(ctx context.Context, evt OrderEvent) error
	Close() error
}

type Producer struct {
	writer *kafka.Writer
	topic  string
	log    *zap.Logger
}

func NewProducer(brokers []string, topic string, log *zap.Logger) *Producer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("kafka producer initialized", zap.String("topic", topic), zap.Strings("brokers", brokers))
	return &Producer{writer: w, topic: topic, log: log}
}

func (p *Producer) PublishOrderEvent(ctx context.Context, evt OrderEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(evt.OrderNumber),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Warn("failed to publish order event",
			zap.String("order_number", evt.OrderNumber),
			zap.String("topic", p.topic),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
