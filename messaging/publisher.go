package messaging

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// amqpChannel is the part of *amqp.Channel the publisher needs.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends registration events to the topic exchange.
type Publisher struct {
	channel amqpChannel
	log     logrus.FieldLogger
}

// NewPublisher opens a channel and declares the exchange.
func NewPublisher(conn *Connection, log logrus.FieldLogger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareExchange(ch); err != nil {
		_ = ch.Close()
		return nil, err
	}
	return &Publisher{channel: ch, log: log}, nil
}

func declareExchange(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(
		ExchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	return nil
}

// Publish sends one persistent JSON message.
func (p *Publisher) Publish(ctx context.Context, routingKey string, body []byte, correlationID string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	p.log.WithFields(logrus.Fields{
		"routing_key":    routingKey,
		"correlation_id": correlationID,
	}).Debug("publishing event")

	return p.channel.PublishWithContext(
		ctx,
		ExchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			CorrelationId: correlationID,
			Body:          body,
			DeliveryMode:  amqp.Persistent,
			Timestamp:     time.Now(),
		},
	)
}

// PublishRegistration marshals ev and publishes it under its event type.
func (p *Publisher) PublishRegistration(ctx context.Context, ev RegistrationEvent) error {
	body, err := ev.Marshal()
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.EventType, err)
	}
	return p.Publish(ctx, ev.EventType, body, ev.CorrelationID)
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		return p.channel.Close()
	}
	return nil
}
