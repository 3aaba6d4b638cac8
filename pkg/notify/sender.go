package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/storeadmin/pkg/models"
)

// Confirmation is the payload sent to the customer-facing notification
// pipeline when an order is placed.
type Confirmation struct {
	OrderID           string               `json:"order_id"`
	OrderNumber       string               `json:"order_number"`
	Recipient         string               `json:"recipient"`
	CustomerName      string               `json:"customer_name"`
	Phone             string               `json:"phone"`
	Status            models.Status        `json:"status"`
	PaymentMethod     models.PaymentMethod `json:"payment_method"`
	Total             decimal.Decimal      `json:"total"`
	ItemCount         int                  `json:"item_count"`
	EstimatedDelivery *time.Time           `json:"estimated_delivery,omitempty"`
	Notes             string               `json:"notes"`
}

func NewConfirmation(o models.Order) Confirmation {
	count := 0
	for _, it := range o.Items {
		count += it.Quantity
	}
	return Confirmation{
		OrderID:           o.ID,
		OrderNumber:       o.OrderNumber,
		Recipient:         o.ShippingAddress.Email,
		CustomerName:      o.ShippingAddress.FullName,
		Phone:             o.ShippingAddress.Phone,
		Status:            o.Status,
		PaymentMethod:     o.PaymentInfo.Method,
		Total:             o.Total,
		ItemCount:         count,
		EstimatedDelivery: o.EstimatedDelivery,
		Notes:             o.Notes,
	}
}

// Sender delivers confirmations somewhere outside the process.
type Sender interface {
	Send(ctx context.Context, c Confirmation) error
	Close() error
}

// KafkaSender publishes confirmations as JSON, keyed by order id.
type KafkaSender struct {
	writer *kafka.Writer
}

func NewKafkaSender(brokers []string, topic string) *KafkaSender {
	return &KafkaSender{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (s *KafkaSender) Send(ctx context.Context, c Confirmation) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode confirmation: %w", err)
	}
	msg := kafka.Message{Key: []byte(c.OrderID), Value: data, Time: time.Now().UTC()}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish confirmation for %s: %w", c.OrderNumber, err)
	}
	return nil
}

func (s *KafkaSender) Close() error {
	return s.writer.Close()
}

// LogSender only logs confirmations. It is used when no broker is configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, c Confirmation) error {
	s.logger.Info("Order confirmation",
		zap.String("order_number", c.OrderNumber),
		zap.String("recipient", c.Recipient),
		zap.String("status", string(c.Status)),
		zap.String("total", c.Total.String()))
	return nil
}

func (s *LogSender) Close() error { return nil }
