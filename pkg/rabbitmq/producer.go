// Package rabbitmq publishes JSON events to a durable topic exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// Publisher is implemented by EventProducer and EventProducerFallback.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
	Close()
}

type EventProducer struct {
	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
	log     zerolog.Logger

	cb   *gobreaker.CircuitBreaker
	send func(ctx context.Context, exchange, routingKey string, payload []byte) error
}

func newBreaker(log zerolog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "rabbitmq-publish",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
}

// EventProducerFallback drops every event. Used when no broker is configured
// or the broker is unreachable at startup.
type EventProducerFallback struct {
	Log zerolog.Logger
}

func (p *EventProducerFallback) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	p.Log.Debug().
		Str("exchange", exchange).
		Str("routing_key", routingKey).
		Msg("publish skipped, no broker")
	return nil
}

func (p *EventProducerFallback) Close() {}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

func NewEventProducer(amqpURL string, log zerolog.Logger) (*EventProducer, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p := &EventProducer{conn: conn, channel: ch, log: log, cb: newBreaker(log)}
	p.send = p.sendWithRetry
	return p, nil
}

// Publish declares exchange as a durable topic and sends body as JSON. A
// failed publish reopens the channel and retries once. While the breaker is
// open Publish returns gobreaker.ErrOpenState without touching the broker.
func (p *EventProducer) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = p.cb.Execute(func() (interface{}, error) {
		return nil, p.send(ctx, exchange, routingKey, payload)
	})
	return err
}

func (p *EventProducer) sendWithRetry(ctx context.Context, exchange, routingKey string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.publish(ctx, exchange, routingKey, payload)
	if err == nil {
		return nil
	}

	p.log.Warn().Err(err).
		Str("exchange", exchange).
		Str("routing_key", routingKey).
		Msg("publish failed, reopening channel")

	ch, chErr := p.conn.Channel()
	if chErr != nil {
		return fmt.Errorf("reopen channel: %w", chErr)
	}
	p.channel = ch
	return p.publish(ctx, exchange, routingKey, payload)
}

func (p *EventProducer) publish(ctx context.Context, exchange, routingKey string, payload []byte) error {
	if err := p.channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return p.channel.PublishWithContext(ctx, exchange, routingKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Body:         payload,
	})
}

func (p *EventProducer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// Connect returns a live producer for amqpURL, or the fallback when the URL is
// empty or the broker cannot be reached.
func Connect(amqpURL string, log zerolog.Logger) Publisher {
	if strings.TrimSpace(amqpURL) == "" {
		log.Info().Msg("RABBITMQ_URL not set, coupon events disabled")
		return &EventProducerFallback{Log: log}
	}
	p, err := NewEventProducer(amqpURL, log)
	if err != nil {
		log.Warn().Err(err).Msg("rabbitmq unavailable, coupon events disabled")
		return &EventProducerFallback{Log: log}
	}
	return p
}
