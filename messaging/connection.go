package messaging

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Connection wraps an AMQP connection.
type Connection struct {
	URL  string
	Conn *amqp.Connection
}

// Connect dials RabbitMQ, retrying every two seconds up to attempts times.
func Connect(ctx context.Context, url string, attempts int, log logrus.FieldLogger) (*Connection, error) {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		var conn *amqp.Connection
		conn, err = amqp.Dial(url)
		if err == nil {
			log.Info("connected to RabbitMQ")
			return &Connection{URL: url, Conn: conn}, nil
		}
		log.WithError(err).WithField("attempt", i+1).Warn("rabbitmq dial failed, retrying in 2s")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	return nil, fmt.Errorf("could not connect to RabbitMQ after %d attempts: %w", attempts, err)
}

func (c *Connection) Channel() (*amqp.Channel, error) {
	return c.Conn.Channel()
}

func (c *Connection) Close() error {
	if c.Conn != nil {
		return c.Conn.Close()
	}
	return nil
}
