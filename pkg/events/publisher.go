package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"jobby-backend/internal/domain"
	"jobby-backend/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

// Publisher sends profile events to a topic exchange, routed by event type.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	enabled  bool
}

// NewPublisher connects to RabbitMQ. An empty URI yields a disabled
// publisher that drops events.
func NewPublisher(rabbitURI, exchange string) (*Publisher, error) {
	if rabbitURI == "" {
		logger.Log.Warn("RabbitMQ URI is empty, event publishing is disabled")
		return &Publisher{exchange: exchange}, nil
	}

	conn, err := amqp091.Dial(rabbitURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

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
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Log.Info("Event publisher initialized", "exchange", exchange)
	return &Publisher{conn: conn, channel: channel, exchange: exchange, enabled: true}, nil
}

func (p *Publisher) PublishProfileEvent(ctx context.Context, event *domain.ProfileEvent) error {
	if !p.enabled {
		logger.Log.Debug("Event publishing disabled, skipping event", "event_type", event.EventType)
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		string(event.EventType),
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Unix(event.Timestamp, 0),
			Body:         body,
			Headers: amqp091.Table{
				"event_type": string(event.EventType),
				"profile_id": event.ProfileID,
				"user_id":    event.UserID,
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if !p.enabled {
		return nil
	}
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			logger.Log.Warn("Error closing RabbitMQ channel", "error", err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("error closing RabbitMQ connection: %w", err)
		}
	}
	return nil
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []domain.ProfileEvent
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) PublishProfileEvent(_ context.Context, event *domain.ProfileEvent) error {
	r.mu.Lock()
	r.events = append(r.events, *event)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Events() []domain.ProfileEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ProfileEvent(nil), r.events...)
}

func (r *Recorder) Close() error { return nil }
