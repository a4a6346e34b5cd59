package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"cine-pos/internal/model"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Publisher announces completed orders.
type Publisher interface {
	PublishOrderCompleted(ctx context.Context, receipt *model.Receipt) error
	Close() error
}

// RabbitPublisher sends order events to a durable queue on the default
// exchange. The connection is opened on first use and reopened after a
// failed publish.
type RabbitPublisher struct {
	url    string
	queue  string
	dial   func(url string) (*amqp.Connection, error)
	logger zerolog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewRabbitPublisher creates a publisher for queue on the broker at url.
func NewRabbitPublisher(url, queue string, logger zerolog.Logger) *RabbitPublisher {
	return &RabbitPublisher{
		url:    url,
		queue:  queue,
		dial:   amqp.Dial,
		logger: logger.With().Str("component", "order_publisher").Str("queue", queue).Logger(),
	}
}

// PublishOrderCompleted sends the order completed event for receipt.
func (p *RabbitPublisher) PublishOrderCompleted(ctx context.Context, receipt *model.Receipt) error {
	body, err := json.Marshal(NewOrderCompletedEvent(receipt))
	if err != nil {
		return fmt.Errorf("failed to encode order event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channelLocked()
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx, "", p.queue, false, false, newPublishing(receipt.OrderID, body))
	if err != nil {
		p.resetLocked()
		return fmt.Errorf("failed to publish order event: %w", err)
	}

	p.logger.Debug().Str("order_id", receipt.OrderID.String()).Msg("order event published")
	return nil
}

func newPublishing(orderID uuid.UUID, body []byte) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    orderID.String(),
		Type:         "order.completed",
		Body:         body,
	}
}

func (p *RabbitPublisher) channelLocked() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.resetLocked()

	conn, err := p.dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	p.logger.Info().Msg("connected to broker")
	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *RabbitPublisher) resetLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close closes the broker connection.
func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.resetLocked()
	return nil
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderCompleted(ctx context.Context, receipt *model.Receipt) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
