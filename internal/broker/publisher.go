// Package broker bridges the event pipeline onto RabbitMQ: a publisher
// on the ingestion side and a prefetch=1 consumer on the alerting side,
// sharing one durable direct exchange.
package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/google/uuid"
	"github.com/saturnino-fabrica-de-software/sentinela/internal/domain"
)

// ErrPublishFailed marks a publish that failed even after the single
// reconnect-and-retry attempt. The stored event is not rolled back; the
// caller logs this and moves on.
var ErrPublishFailed = errors.New("publish failed")

type Publisher struct {
	url        string
	exchange   string
	routingKey string
	logger     *slog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url, exchange, routingKey string, logger *slog.Logger) *Publisher {
	return &Publisher{
		url:        url,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger,
	}
}

// Connect dials the broker and declares the durable direct exchange.
func (p *Publisher) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connectLocked()
}

func (p *Publisher) connectLocked() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(p.exchange, "direct", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}

	p.conn = conn
	p.ch = ch
	p.logger.Info("connected to broker", "exchange", p.exchange)
	return nil
}

// Publish delivers a snapshot of a stored event as a persistent JSON
// message. On transport failure it reconnects and retries exactly once;
// a second failure surfaces as ErrPublishFailed.
func (p *Publisher) Publish(ctx context.Context, event *domain.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %d: %w", event.ID, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil {
		if err := p.connectLocked(); err != nil {
			return fmt.Errorf("%w: %v", ErrPublishFailed, err)
		}
	}

	if err := p.publishLocked(ctx, body); err != nil {
		p.logger.Warn("publish failed, reconnecting", "event_id", event.ID, "error", err)

		p.closeLocked()
		if err := p.connectLocked(); err != nil {
			return fmt.Errorf("%w: %v", ErrPublishFailed, err)
		}
		if err := p.publishLocked(ctx, body); err != nil {
			return fmt.Errorf("%w: %v", ErrPublishFailed, err)
		}
	}

	p.logger.Debug("event published", "event_id", event.ID, "routing_key", p.routingKey)
	return nil
}

func (p *Publisher) publishLocked(ctx context.Context, body []byte) error {
	return p.ch.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Body:         body,
	})
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
	return nil
}

func (p *Publisher) closeLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
