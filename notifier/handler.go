package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"stellargather/messaging"
	"stellargather/models"
)

// processedTTL is how long a message id is remembered for deduplication.
const processedTTL = 7 * 24 * time.Hour

// Handler turns registration events into user notifications.
type Handler struct {
	notes models.NotificationRepository
	rdb   *redis.Client
	log   logrus.FieldLogger
}

func NewHandler(notes models.NotificationRepository, rdb *redis.Client, log logrus.FieldLogger) *Handler {
	return &Handler{notes: notes, rdb: rdb, log: log}
}

// HandleMessage is a messaging.MessageHandler. Redelivered messages are
// acked without writing a second notification.
func (h *Handler) HandleMessage(ctx context.Context, d amqp.Delivery) error {
	var ev messaging.RegistrationEvent
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		return fmt.Errorf("decode registration event: %w", err)
	}

	msg, err := messageFor(ev)
	if err != nil {
		return err
	}

	log := h.log.WithFields(logrus.Fields{
		"event_id":       ev.EventID,
		"event_type":     ev.EventType,
		"correlation_id": ev.CorrelationID,
		"user_id":        ev.Data.UserID,
	})

	marker := "notifier:processed:" + ev.EventID
	fresh, err := h.rdb.SetNX(ctx, marker, 1, processedTTL).Result()
	if err != nil {
		return fmt.Errorf("check processed marker: %w", err)
	}
	if !fresh {
		log.Info("duplicate event ignored")
		return nil
	}

	n := models.Notification{
		UserID:  strconv.FormatInt(ev.Data.UserID, 10),
		Message: msg,
	}
	if err := h.notes.Create(ctx, &n); err != nil {
		_ = h.rdb.Del(ctx, marker).Err()
		return fmt.Errorf("store notification: %w", err)
	}

	log.WithField("notification_id", n.ID.Hex()).Info("notification stored")
	return nil
}

func messageFor(ev messaging.RegistrationEvent) (string, error) {
	if ev.EventID == "" || ev.Data.UserID == 0 {
		return "", fmt.Errorf("registration event missing ids")
	}
	when := ev.Data.EventDate.UTC().Format("2006-01-02 15:04 MST")
	switch ev.EventType {
	case messaging.RegistrationCreated:
		return fmt.Sprintf("You are registered for %s on %s.", ev.Data.EventName, when), nil
	case messaging.RegistrationCanceled:
		return fmt.Sprintf("Your registration for %s on %s was canceled.", ev.Data.EventName, when), nil
	}
	return "", fmt.Errorf("unknown event type %q", ev.EventType)
}
