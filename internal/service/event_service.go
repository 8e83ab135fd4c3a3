package service

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/fadilmartias/hireprep/internal/config"
	"github.com/streadway/amqp"
)

// EventPublisher announces session progress on a topic exchange with routing key
// "session.<id>". A nil publisher drops every event.
type EventPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	exchange string
}

func NewEventPublisher(cfg *config.RabbitMQConfig) (*EventPublisher, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}
	return &EventPublisher{conn: conn, exchange: cfg.Exchange}, nil
}

func SessionRoutingKey(sessionID string) string {
	return fmt.Sprintf("session.%s", sessionID)
}

func (p *EventPublisher) PublishSessionUpdate(sessionID string, update map[string]any) error {
	if p == nil {
		return nil
	}
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal session update: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	return ch.Publish(
		p.exchange,
		SessionRoutingKey(sessionID),
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (p *EventPublisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Close(); err != nil {
		log.Printf("rabbitmq close: %v", err)
	}
}
