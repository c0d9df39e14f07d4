package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"stellargather/config"
	"stellargather/db"
	"stellargather/insights"
	"stellargather/messaging"
	"stellargather/middlewares"
	"stellargather/models"
	"stellargather/routes"
	"stellargather/storage"
	"stellargather/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	log := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres
	sqldb, err := db.OpenPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.WithError(err).Fatal("postgres unavailable")
	}
	defer sqldb.Close()
	if err := db.Migrate(ctx, sqldb); err != nil {
		log.WithError(err).Fatal("migrate postgres")
	}

	// Mongo
	mg, err := db.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("mongo unavailable")
	}
	defer func() { _ = mg.Disconnect(context.Background()) }()
	docs := mg.Database(cfg.MongoDB)
	if err := db.EnsureIndexes(ctx, docs); err != nil {
		log.WithError(err).Warn("could not create mongo indexes")
	}

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("redis unavailable, cache and quotas are bypassed until it answers")
	}

	opts := routes.Options{
		Users:         models.NewSQLUserRepository(sqldb),
		Events:        models.NewSQLEventRepository(sqldb),
		Registrations: models.NewSQLRegistrationRepository(sqldb),
		Organizers:    models.NewSQLOrganizerRepository(sqldb),
		Categories:    models.NewSQLCategoryRepository(sqldb),
		Feedbacks:     models.NewSQLFeedbackRepository(sqldb),

		Comments:      models.NewMongoCommentRepository(docs.Collection(models.CollComments)),
		Ratings:       models.NewMongoRatingRepository(docs.Collection(models.CollRatings)),
		Notifications: models.NewMongoNotificationRepository(docs.Collection(models.CollNotification)),
		Interactions:  models.NewMongoInteractionRepository(docs.Collection(models.CollInteractions)),
		Errors:        models.NewMongoErrorLogRepository(docs.Collection(models.CollErrors)),
		Contact:       models.NewMongoContactRepository(docs.Collection(models.CollContact)),
		Newsletter:    models.NewMongoNewsletterRepository(docs.Collection(models.CollNewsletter)),
		PingDocuments: func(ctx context.Context) error { return mg.Ping(ctx, nil) },

		Redis:           rdb,
		Invalidator:     utils.NewCacheInvalidator(rdb),
		Tokens:          utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		Log:             log,
		StatsDailyQuota: cfg.StatsDailyQuota,
	}

	// Image uploads
	if cfg.S3.Enabled() {
		blobs, err := storage.NewS3Store(ctx, cfg.S3)
		if err != nil {
			log.WithError(err).Warn("image storage unavailable, uploads are disabled")
		} else {
			opts.Images = storage.NewImages(blobs)
		}
	}

	// Registration events
	if cfg.RabbitMQURL != "" {
		conn, err := messaging.Connect(ctx, cfg.RabbitMQURL, 5, log)
		if err != nil {
			log.WithError(err).Warn("rabbitmq unavailable, registration events are not published")
		} else {
			defer conn.Close()
			pub, err := messaging.NewPublisher(conn, log)
			if err != nil {
				log.WithError(err).Warn("could not open publisher channel")
			} else {
				defer pub.Close()
				opts.Publisher = pub
			}
		}
	}

	// Statistics
	if cfg.OpenAI.APIKey != "" {
		client := insights.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
		planner, err := insights.NewPlanner(client, cfg.OpenAI.Model, 0)
		if err != nil {
			log.WithError(err).Fatal("statistics planner")
		}
		opts.Statistics = insights.NewService(planner, insights.NewRunner(sqldb))
	} else {
		log.Info("OPENAI_API_KEY not set, statistics endpoint answers 503")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	server := gin.New()
	server.Use(
		gin.Recovery(),
		middlewares.CorrelationID(),
		middlewares.RequestLogger(log),
		middlewares.Metrics(),
		middlewares.CORS(cfg.CORSOrigins),
		middlewares.ResponseCache(rdb, cfg.CacheTTL),
	)
	stopLimiters := routes.RegisterRoutes(server, opts)
	defer stopLimiters()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
