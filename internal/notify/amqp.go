package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/gestionale-jos/jos_backend/internal/core/domain"
	"github.com/gestionale-jos/jos_backend/internal/middleware"
)

const publishTimeout = 5 * time.Second

// AMQPPublisher forwards change events to a durable topic exchange, routed by
// "<table>.<action>".
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
}

// NewAMQPPublisher dials url and declares exchange.
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p := &AMQPPublisher{conn: conn, channel: channel, exchange: exchange}
	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return p, nil
}

func encodeEvent(event domain.ChangeEvent) (amqp091.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}
	return amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    event.EventID,
		Timestamp:    event.OccurredAt,
		Type:         event.RoutingKey(),
		Body:         body,
	}, nil
}

// Publish sends event to the exchange. Failures are logged; the write that produced
// the event has already been committed.
func (p *AMQPPublisher) Publish(ctx context.Context, event domain.ChangeEvent) {
	logger := middleware.GetLoggerFromCtx(ctx)
	msg, err := encodeEvent(event)
	if err != nil {
		logger.Error("Failed to encode change event", slog.String("error", err.Error()))
		return
	}

	// The request context may already be done once the response is written.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	p.mu.Lock()
	err = p.channel.PublishWithContext(
		pubCtx,
		p.exchange,         // exchange
		event.RoutingKey(), // routing key
		false,              // mandatory
		false,              // immediate
		msg,
	)
	p.mu.Unlock()
	if err != nil {
		logger.Error("Failed to publish change event",
			slog.String("error", err.Error()),
			slog.String("exchange", p.exchange),
			slog.String("routing_key", event.RoutingKey()))
		return
	}
	logger.Debug("Published change event",
		slog.String("exchange", p.exchange),
		slog.String("routing_key", event.RoutingKey()))
}

func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
