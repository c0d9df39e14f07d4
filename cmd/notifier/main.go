// Command notifier turns registration events into user notifications and
// sends reminders for events starting within a day.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"stellargather/config"
	"stellargather/db"
	"stellargather/messaging"
	"stellargather/models"
	"stellargather/notifier"
)

const (
	queueName = "notifier.registrations"
	dlqName   = queueName + ".dlq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	log := cfg.NewLogger().WithField("service", "notifier")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqldb, err := db.OpenPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("postgres unavailable")
	}
	defer sqldb.Close()

	mg, err := db.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("mongo unavailable")
	}
	defer func() { _ = mg.Disconnect(context.Background()) }()
	notes := models.NewMongoNotificationRepository(mg.Database(cfg.MongoDB).Collection(models.CollNotification))

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()

	conn, err := messaging.Connect(ctx, cfg.RabbitMQURL, 10, log)
	if err != nil {
		log.WithError(err).Fatal("rabbitmq unavailable")
	}
	defer conn.Close()

	handler := notifier.NewHandler(notes, rdb, log)
	consuming, err := messaging.SetupConsumer(ctx, conn, messaging.ConsumerConfig{
		QueueName:    queueName,
		DLQName:      dlqName,
		RoutingKeys:  []string{messaging.RegistrationCreated, messaging.RegistrationCanceled},
		ConsumerName: "notifier",
		Prefetch:     10,
	}, handler.HandleMessage, log)
	if err != nil {
		log.WithError(err).Fatal("start consumer")
	}

	reminders := notifier.NewReminders(
		models.NewSQLEventRepository(sqldb),
		models.NewSQLRegistrationRepository(sqldb),
		notes, rdb, log,
	)
	c := cron.New()
	if _, err := reminders.Schedule(c, cfg.ReminderSchedule); err != nil {
		log.WithError(err).Fatal("schedule reminders")
	}
	c.Start()
	log.WithField("schedule", cfg.ReminderSchedule).Info("notifier started")

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		<-c.Stop().Done()
	case <-consuming:
		<-c.Stop().Done()
		log.Fatal("consumer stopped, exiting so the supervisor restarts the notifier")
	}
}
