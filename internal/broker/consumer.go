package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/saturnino-fabrica-de-software/sentinela/internal/domain"
)

// Handler processes one delivered event. A nil return acknowledges the
// message; an error leaves it unacknowledged so the broker redelivers.
type Handler func(ctx context.Context, event domain.Event) error

type Consumer struct {
	url        string
	exchange   string
	queue      string
	routingKey string
	logger     *slog.Logger

	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewConsumer(url, exchange, queue, routingKey string, logger *slog.Logger) *Consumer {
	return &Consumer{
		url:        url,
		exchange:   exchange,
		queue:      queue,
		routingKey: routingKey,
		logger:     logger,
	}
}

// Connect dials the broker, declares the durable exchange and queue,
// binds them, and sets prefetch=1 so at most one message is in flight.
func (c *Consumer) Connect() error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(c.exchange, "direct", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("declare exchange %s: %w", c.exchange, err)
	}

	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("declare queue %s: %w", c.queue, err)
	}

	if err := ch.QueueBind(c.queue, c.routingKey, c.exchange, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("bind queue %s: %w", c.queue, err)
	}

	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("set prefetch: %w", err)
	}

	c.conn = conn
	c.ch = ch
	c.logger.Info("consumer connected", "queue", c.queue, "routing_key", c.routingKey)
	return nil
}

// Run consumes deliveries until ctx is cancelled or the channel closes.
// On cancellation the in-flight message, if any, is left unacked and
// returns to the broker.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	deliveries, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.logger.Info("consuming messages", "queue", c.queue)

	return c.consumeLoop(ctx, deliveries, handler)
}

func (c *Consumer) consumeLoop(ctx context.Context, deliveries <-chan amqp.Delivery, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer stopping")
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.handleDelivery(ctx, d, handler)
		}
	}
}

// handleDelivery applies the acknowledgment policy: malformed bodies are
// acked and dropped (retrying a parse failure fails forever), handler
// errors leave the message for redelivery, success acks.
func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery, handler Handler) {
	var event domain.Event
	if err := json.Unmarshal(d.Body, &event); err != nil {
		c.logger.Error("dropping malformed message", "error", err, "message_id", d.MessageId)
		if err := d.Ack(false); err != nil {
			c.logger.Error("ack failed", "error", err)
		}
		return
	}

	c.logger.Info("processing event", "event_id", event.ID, "event_type", event.Type)

	if err := handler(ctx, event); err != nil {
		c.logger.Error("event processing failed, requeueing", "event_id", event.ID, "error", err)
		if err := d.Nack(false, true); err != nil {
			c.logger.Error("nack failed", "error", err)
		}
		return
	}

	if err := d.Ack(false); err != nil {
		c.logger.Error("ack failed", "error", err, "event_id", event.ID)
	}
}

func (c *Consumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
		c.ch = nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.logger.Info("consumer closed")
	return nil
}
