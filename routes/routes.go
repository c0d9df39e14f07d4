package routes

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"stellargather/insights"
	"stellargather/messaging"
	"stellargather/middlewares"
	"stellargather/models"
	"stellargather/storage"
	"stellargather/utils"
)

// ImageSaver validates and stores uploaded pictures.
type ImageSaver interface {
	Save(ctx context.Context, spec storage.ImageSpec, id int64, data []byte) (string, error)
}

// RegistrationPublisher emits registration events.
type RegistrationPublisher interface {
	PublishRegistration(ctx context.Context, ev messaging.RegistrationEvent) error
}

// StatisticsAnswerer answers natural-language statistics questions.
type StatisticsAnswerer interface {
	Answer(ctx context.Context, question string) (insights.Answer, error)
}

// Options carries everything the handlers depend on. Images, Publisher,
// Statistics, Redis and Invalidator are optional.
type Options struct {
	Users         models.UserRepository
	Events        models.EventRepository
	Registrations models.RegistrationRepository
	Organizers    models.OrganizerRepository
	Categories    models.CategoryRepository
	Feedbacks     models.FeedbackRepository

	Comments      models.CommentRepository
	Ratings       models.RatingRepository
	Notifications models.NotificationRepository
	Interactions  models.InteractionRepository
	Errors        models.ErrorLogRepository
	Contact       models.ContactRepository
	Newsletter    models.NewsletterRepository
	// PingDocuments checks the document store for /test_connection.
	PingDocuments func(ctx context.Context) error

	Redis       *redis.Client
	Invalidator *utils.CacheInvalidator
	Images      ImageSaver
	Publisher   RegistrationPublisher
	Statistics  StatisticsAnswerer
	Tokens      *utils.TokenManager
	Log         logrus.FieldLogger

	StatsDailyQuota int
	// Now is the clock used for business rules. Defaults to time.Now.
	Now func() time.Time
}

type deps struct {
	Options
}

func (d *deps) now() time.Time { return d.Now().UTC() }

// RegisterRoutes mounts every endpoint on server. The returned func stops
// the rate limiter janitors.
func RegisterRoutes(server *gin.Engine, o Options) (stop func()) {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Log == nil {
		o.Log = logrus.StandardLogger()
	}
	d := &deps{Options: o}

	// Global per-IP limit.
	globalLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     20,
		Burst:   40,
		IdleTTL: 3 * time.Minute,
	})
	server.Use(globalLimiter.Middleware(func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	}))

	// Signup and login get a stricter bucket.
	authLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     0.5,
		Burst:   5,
		IdleTTL: 10 * time.Minute,
	})

	// Authenticated callers are also limited per user.
	userLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     5,
		Burst:   10,
		IdleTTL: 10 * time.Minute,
	})

	auth := server.Group("/")
	auth.Use(middlewares.Authenticate(d.Tokens))
	auth.Use(userLimiter.Middleware(func(c *gin.Context) string {
		return "u:" + strconv.FormatInt(c.GetInt64(middlewares.CtxUserID), 10)
	}))
	admin := auth.Group("/")
	admin.Use(middlewares.RequireAdmin)

	server.GET("/metrics", middlewares.MetricsHandler())

	/* ---- Users ---- */
	server.GET("/users", d.getUsers)
	server.POST("/users",
		authLimiter.Middleware(func(c *gin.Context) string { return "signup:" + c.ClientIP() }),
		d.createUser,
	)
	server.POST("/users/login",
		authLimiter.Middleware(func(c *gin.Context) string { return "login:" + c.ClientIP() }),
		d.login,
	)
	server.GET("/users/:id", d.getUser)
	self := middlewares.RequireSelfOrAdmin("id")
	auth.PUT("/users/:id", self, d.updateUser)
	auth.DELETE("/users/:id", self, d.deleteUser)
	server.GET("/users/:id/is-admin", d.isAdmin)
	server.POST("/users/validate-password/:id", d.validatePassword)
	server.GET("/users/:id/registration-events", d.userRegistrationEvents)
	server.GET("/users/:id/registrations-count", d.userRegistrationsCount)
	auth.POST("/users/:id/image", self, d.uploadUserImage)

	/* ---- Events ---- */
	server.GET("/events", d.getEvents)
	server.GET("/events-desc", d.getEventsDesc)
	server.GET("/events-count", d.countEvents)
	server.GET("/upcoming-events", d.upcomingEvents)
	server.GET("/events/:id", d.getEvent)
	server.GET("/events/date/:date", d.eventsByDate)
	server.GET("/events/country/:country", d.eventsByCountry)
	server.GET("/events/organizer/:id", d.eventsByOrganizer)
	server.GET("/events/count/by-date", d.countEventsByDate)
	server.GET("/events/count/by-country", d.countEventsByCountry)
	server.GET("/events/count/by-country/:country", d.countEventsForCountry)
	server.GET("/events/count/by-organizer", d.countEventsByOrganizer)
	server.GET("/events/count/by-organizer/:id", d.countEventsForOrganizer)
	server.GET("/events/:id/registrations", d.eventAvailability)
	server.GET("/events/:id/categories", d.eventCategories)
	server.GET("/events/:id/feedbacks", d.eventFeedbacks)
	admin.POST("/events", d.createEvent)
	admin.PUT("/events/:id", d.updateEvent)
	admin.DELETE("/events/:id", d.deleteEvent)
	admin.POST("/events/:id/image", d.uploadEventImage)

	/* ---- Registrations ---- */
	server.GET("/registrations", d.getRegistrations)
	server.GET("/registrations/:id", d.getRegistration)
	server.POST("/registrations", d.createRegistration)
	server.PUT("/registrations/:id", d.updateRegistration)
	server.DELETE("/registrations/:id", d.deleteRegistration)
	server.GET("/registrations/check/:user_id/:event_id", d.checkRegistration)

	/* ---- Organizers ---- */
	server.GET("/organizers", d.getOrganizers)
	server.GET("/organizers/:id", d.getOrganizer)
	admin.POST("/organizers", d.createOrganizer)
	admin.PUT("/organizers/:id", d.updateOrganizer)
	admin.DELETE("/organizers/:id", d.deleteOrganizer)
	admin.POST("/organizers/:id/image", d.uploadOrganizerImage)

	/* ---- Categories ---- */
	server.GET("/categories", d.getCategories)
	server.GET("/categories/events/count", d.categoriesWithEventCount)
	server.GET("/categories/:id", d.getCategory)
	server.GET("/categories/:id/events", d.categoryEvents)
	server.GET("/categories/:id/events-count", d.categoryEventsCount)
	admin.POST("/categories", d.createCategory)
	admin.PUT("/categories/:id", d.updateCategory)
	admin.DELETE("/categories/:id", d.deleteCategory)
	admin.POST("/event_categories", d.linkEventCategory)
	admin.DELETE("/event_categories/:event_id/:category_id", d.unlinkEventCategory)

	/* ---- Feedbacks ---- */
	server.POST("/feedbacks", d.createFeedback)
	server.GET("/feedbacks/:id", d.getFeedback)
	server.DELETE("/feedbacks/:id", d.deleteFeedback)

	/* ---- Documents ---- */
	server.GET("/test_connection", d.testConnection)
	server.POST("/comments", d.createComment)
	server.GET("/comments", d.getComments)
	server.POST("/ratings", d.createRating)
	server.POST("/notifications", d.createNotification)
	server.GET("/notifications", d.getNotifications)
	server.PUT("/notifications/:id/read", d.markNotificationRead)
	server.POST("/interactions", d.createInteraction)
	server.GET("/interactions", d.getInteractions)
	server.POST("/errors", d.createErrorLog)
	admin.GET("/errors", d.getErrorLogs)
	server.POST("/contact", d.createContactMessage)
	server.POST("/newsletter", d.subscribeNewsletter)

	/* ---- Statistics ---- */
	admin.POST("/generate-statistics-endpoint",
		middlewares.Quota(d.Redis, middlewares.QuotaRule{
			Limit:  d.StatsDailyQuota,
			Window: 24 * time.Hour,
			KeyFn: func(c *gin.Context) string {
				uid := c.GetInt64(middlewares.CtxUserID)
				if uid == 0 {
					return ""
				}
				return fmt.Sprintf("quota:stats:user:%d:day", uid)
			},
		}),
		d.generateStatistics,
	)

	return func() {
		globalLimiter.Stop()
		authLimiter.Stop()
		userLimiter.Stop()
	}
}
