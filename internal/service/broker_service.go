package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hiremind/hiremind-api/internal/config"
	"github.com/hiremind/hiremind-api/internal/model"
	"github.com/streadway/amqp"
)

// RetryHeader counts redeliveries of an analysis message.
const RetryHeader = "x-retry-count"

// AnalysisMessage is the body of an interview analysis job on the queue.
type AnalysisMessage struct {
	ApplicationID uuid.UUID                 `json:"application_id"`
	JobRole       string                    `json:"job_role"`
	Conversation  []model.ConversationEntry `json:"conversation"`
}

// StatusEvent is published on the events exchange whenever an application changes status.
type StatusEvent struct {
	ApplicationID uuid.UUID `json:"application_id"`
	JobID         uuid.UUID `json:"job_id"`
	Status        string    `json:"status"`
	Message       string    `json:"message"`
	Timestamp     time.Time `json:"timestamp"`
}

type AnalysisQueueInterface interface {
	EnqueueAnalysis(ctx context.Context, msg AnalysisMessage) error
}

type EventPublisherInterface interface {
	PublishStatusEvent(ctx context.Context, event StatusEvent) error
}

type BrokerService struct {
	conn *amqp.Connection
	cfg  *config.BrokerConfig
}

func NewBrokerService(cfg *config.BrokerConfig) (*BrokerService, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("error connecting to RabbitMQ: %w", err)
	}

	b := &BrokerService{conn: conn, cfg: cfg}
	if err := b.declare(); err != nil {
		conn.Close()
		return nil, err
	}
	return b, nil
}

func (b *BrokerService) declare() error {
	ch, err := b.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(
		b.cfg.AnalysisQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare queue %s: %w", b.cfg.AnalysisQueue, err)
	}

	if err := ch.ExchangeDeclare(
		b.cfg.EventExchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return fmt.Errorf("declare exchange %s: %w", b.cfg.EventExchange, err)
	}
	return nil
}

// Conn exposes the connection so consumers can open their own channels.
func (b *BrokerService) Conn() *amqp.Connection {
	return b.conn
}

func (b *BrokerService) Config() *config.BrokerConfig {
	return b.cfg
}

func (b *BrokerService) EnqueueAnalysis(ctx context.Context, msg AnalysisMessage) error {
	return b.PublishAnalysis(ctx, msg, 0)
}

// PublishAnalysis puts msg on the analysis queue with the given retry count.
func (b *BrokerService) PublishAnalysis(ctx context.Context, msg AnalysisMessage, retries int) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal analysis message: %w", err)
	}
	return b.publish(ctx, "", b.cfg.AnalysisQueue, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Headers:      amqp.Table{RetryHeader: int32(retries)},
		Timestamp:    time.Now(),
		Body:         body,
	})
}

func (b *BrokerService) PublishStatusEvent(ctx context.Context, event StatusEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal status event: %w", err)
	}
	routingKey := fmt.Sprintf("application.%s", event.ApplicationID)
	return b.publish(ctx, b.cfg.EventExchange, routingKey, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   event.Timestamp,
		Body:        body,
	})
}

func (b *BrokerService) publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ch, err := b.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	return ch.Publish(exchange, key, false, false, msg)
}

func (b *BrokerService) Close() error {
	return b.conn.Close()
}

// RetryCount reads RetryHeader from a delivery, tolerating the integer
// widths different clients encode it with.
func RetryCount(headers amqp.Table) int {
	switch v := headers[RetryHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	case int16:
		return int(v)
	default:
		return 0
	}
}
