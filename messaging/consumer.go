package messaging

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

type ConsumerConfig struct {
	QueueName    string
	DLQName      string
	RoutingKeys  []string
	ConsumerName string
	Prefetch     int
}

// MessageHandler processes one delivery. A nil error acks it; an error
// nacks it without requeue so it lands in the DLQ.
type MessageHandler func(ctx context.Context, d amqp.Delivery) error

// acker is the subset of amqp.Delivery used to settle a message.
type acker interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// SetupConsumer declares the exchange, the queue with its DLQ and the
// bindings, then consumes until ctx is done or the channel closes. The
// returned channel is closed once consuming stops for either reason.
func SetupConsumer(ctx context.Context, conn *Connection, cfg ConsumerConfig, handler MessageHandler, log logrus.FieldLogger) (<-chan struct{}, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareExchange(ch); err != nil {
		return nil, err
	}

	if _, err := ch.QueueDeclare(cfg.DLQName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare dlq: %w", err)
	}

	args := amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": cfg.DLQName,
	}
	if _, err := ch.QueueDeclare(cfg.QueueName, true, false, false, false, args); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	for _, key := range cfg.RoutingKeys {
		if err := ch.QueueBind(cfg.QueueName, key, ExchangeName, false, nil); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}

	msgs, err := ch.Consume(cfg.QueueName, cfg.ConsumerName, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume: %w", err)
	}

	log = log.WithField("consumer", cfg.ConsumerName)
	done := consume(ctx, msgs, handler, log)
	go func() {
		<-done
		_ = ch.Close()
	}()

	log.WithField("queue", cfg.QueueName).Info("consumer started")
	return done, nil
}

// consume settles deliveries one at a time until ctx is done or msgs closes.
func consume(ctx context.Context, msgs <-chan amqp.Delivery, handler MessageHandler, log logrus.FieldLogger) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					log.Warn("delivery channel closed")
					return
				}
				dispatch(ctx, msg, msg, handler, log)
			}
		}
	}()
	return done
}

func dispatch(ctx context.Context, msg amqp.Delivery, a acker, handler MessageHandler, log logrus.FieldLogger) {
	entry := log.WithFields(logrus.Fields{
		"routing_key":    msg.RoutingKey,
		"correlation_id": msg.CorrelationId,
	})
	if err := handler(ctx, msg); err != nil {
		entry.WithError(err).Error("message failed, sending to dlq")
		_ = a.Nack(false, false)
		return
	}
	_ = a.Ack(false)
}
