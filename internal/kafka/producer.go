package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/finaura/paper-trading/internal/models"
)

// EventTypeTradeExecuted marks a committed buy or sell fill.
const EventTypeTradeExecuted = "TRADE_EXECUTED"

// Producer handles publishing trade events to Kafka
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishTradeExecuted publishes a committed fill. Keyed by user id so
// one account's trades stay ordered within a partition.
func (p *Producer) PublishTradeExecuted(ctx context.Context, txn *models.Transaction) error {
	event := models.TradeEvent{
		EventType:   EventTypeTradeExecuted,
		Transaction: txn,
		Symbol:      txn.Symbol,
		Timestamp:   time.Now(),
	}
	return p.publish(ctx, txn.UserID, event)
}

func (p *Producer) publish(ctx context.Context, key string, event models.TradeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
