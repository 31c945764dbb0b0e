package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/finaura/paper-trading/internal/models"
)

// AuditTradeRepository defines the database operations the consumer needs
type AuditTradeRepository interface {
	CreateAuditTrade(t *models.AuditTrade) error
	AuditTradeExists(transactionID int64) (bool, error)
}

// Consumer mirrors executed trades from the event stream into the
// audit_trades table. The ledger's own transactions table is the
// source of truth; this copy exists for downstream analytics and can
// be rebuilt by replaying the topic.
type Consumer struct {
	reader *kafka.Reader
	repo   AuditTradeRepository
}

// NewConsumer creates a new Kafka consumer for trade events
func NewConsumer(brokers []string, topic, groupID string, repo AuditTradeRepository) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader: reader,
		repo:   repo,
	}
}

// Start begins consuming messages from Kafka
func (c *Consumer) Start(ctx context.Context) error {
	log.Printf("starting trade audit consumer for topic: %s", c.reader.Config().Topic)

	for {
		select {
		case <-ctx.Done():
			log.Println("trade audit consumer shutting down...")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // Context cancelled, normal shutdown
				}
				log.Printf("error reading message: %v", err)
				continue
			}

			if err := c.processMessage(msg); err != nil {
				log.Printf("error processing message: %v", err)
				// Continue processing other messages
			}
		}
	}
}

// processMessage handles a single Kafka message
func (c *Consumer) processMessage(msg kafka.Message) error {
	var event models.TradeEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal trade event: %w", err)
	}

	if event.EventType != EventTypeTradeExecuted {
		return nil
	}
	if event.Transaction == nil {
		return fmt.Errorf("trade event without transaction payload")
	}

	// Skip redeliveries (idempotency on transaction id).
	exists, err := c.repo.AuditTradeExists(event.Transaction.ID)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate trade: %w", err)
	}
	if exists {
		return nil
	}

	audit := convertEventToAuditTrade(event)
	if err := c.repo.CreateAuditTrade(audit); err != nil {
		return fmt.Errorf("failed to save audit trade: %w", err)
	}

	log.Printf("mirrored trade %d: %s %s %s @ %s",
		audit.TransactionID, audit.Side, audit.Shares, audit.Symbol, audit.Price)
	return nil
}

func convertEventToAuditTrade(event models.TradeEvent) *models.AuditTrade {
	txn := event.Transaction
	executedAt := txn.CreatedAt
	if executedAt.IsZero() {
		executedAt = event.Timestamp
	}

	return &models.AuditTrade{
		TransactionID: txn.ID,
		UserID:        txn.UserID,
		Symbol:        txn.Symbol,
		Side:          txn.Side,
		Shares:        txn.Shares,
		Price:         txn.Price,
		Total:         txn.Total,
		Pnl:           txn.Pnl,
		ExecutedAt:    executedAt,
	}
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}
