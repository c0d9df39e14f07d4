package notifier

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"stellargather/models"
)

// ReminderWindow is how far ahead reminders look.
const ReminderWindow = 24 * time.Hour

// Reminders notifies registered users of events starting soon. Each
// (event, user) pair is reminded at most once.
type Reminders struct {
	events models.EventRepository
	regs   models.RegistrationRepository
	notes  models.NotificationRepository
	rdb    *redis.Client
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewReminders(events models.EventRepository, regs models.RegistrationRepository,
	notes models.NotificationRepository, rdb *redis.Client, log logrus.FieldLogger) *Reminders {
	return &Reminders{events: events, regs: regs, notes: notes, rdb: rdb, log: log, now: time.Now}
}

// Run sends due reminders and returns how many were written.
func (r *Reminders) Run(ctx context.Context) (int, error) {
	now := r.now().UTC()
	events, err := r.events.StartingBetween(ctx, now, now.Add(ReminderWindow))
	if err != nil {
		return 0, fmt.Errorf("list upcoming events: %w", err)
	}

	sent := 0
	for _, ev := range events {
		users, err := r.regs.ActiveUserIDs(ctx, ev.ID)
		if err != nil {
			return sent, fmt.Errorf("list registrations for event %d: %w", ev.ID, err)
		}
		for _, uid := range users {
			ok, err := r.remindOnce(ctx, ev, uid)
			if err != nil {
				return sent, err
			}
			if ok {
				sent++
			}
		}
	}
	return sent, nil
}

func (r *Reminders) remindOnce(ctx context.Context, ev models.Event, userID int64) (bool, error) {
	marker := fmt.Sprintf("notifier:reminder:%d:%d", ev.ID, userID)
	fresh, err := r.rdb.SetNX(ctx, marker, 1, 2*ReminderWindow).Result()
	if err != nil {
		return false, fmt.Errorf("reminder marker: %w", err)
	}
	if !fresh {
		return false, nil
	}

	n := models.Notification{
		UserID:  strconv.FormatInt(userID, 10),
		Message: fmt.Sprintf("Reminder: %s starts on %s.", ev.Name, ev.Date.UTC().Format("2006-01-02 15:04 MST")),
	}
	if err := r.notes.Create(ctx, &n); err != nil {
		_ = r.rdb.Del(ctx, marker).Err()
		return false, fmt.Errorf("store reminder: %w", err)
	}
	return true, nil
}

// Schedule registers Run on c with the given cron spec.
func (r *Reminders) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		sent, err := r.Run(ctx)
		if err != nil {
			r.log.WithError(err).WithField("sent", sent).Error("reminder run failed")
			return
		}
		r.log.WithField("sent", sent).Info("reminder run finished")
	})
}
