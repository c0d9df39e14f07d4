package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names in the document database.
const (
	CollComments     = "comments"
	CollRatings      = "ratings"
	CollNotification = "notifications"
	CollInteractions = "interactions"
	CollErrors       = "errors"
	CollContact      = "contact_messages"
	CollNewsletter   = "newsletter_subscribers"
)

var mongoTimeout = 5 * time.Second

// docs holds the insert/find plumbing shared by every document repository.
type docs[T any] struct {
	col *mongo.Collection
}

func (d docs[T]) insert(ctx context.Context, doc *T) (primitive.ObjectID, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	res, err := d.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, fmt.Errorf("insert %s: %w", d.col.Name(), ErrDuplicate)
		}
		return primitive.NilObjectID, fmt.Errorf("insert %s: %w", d.col.Name(), err)
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

func (d docs[T]) find(ctx context.Context, filter bson.M) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	cur, err := d.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", d.col.Name(), err)
	}
	defer cur.Close(ctx)

	out := []T{}
	for cur.Next(ctx) {
		var v T
		if err := cur.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", d.col.Name(), err)
		}
		out = append(out, v)
	}
	return out, cur.Err()
}

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now().UTC()
	}
}

/* ---- Comments ---- */

type mongoCommentRepo struct{ docs[Comment] }

func NewMongoCommentRepository(col *mongo.Collection) CommentRepository {
	return &mongoCommentRepo{docs[Comment]{col}}
}

func (r *mongoCommentRepo) Create(ctx context.Context, c *Comment) error {
	stamp(&c.Timestamp)
	id, err := r.insert(ctx, c)
	c.ID = id
	return err
}

func (r *mongoCommentRepo) ListByEvent(ctx context.Context, eventID string) ([]Comment, error) {
	return r.find(ctx, bson.M{"eventId": eventID})
}

/* ---- Ratings ---- */

type mongoRatingRepo struct{ docs[Rating] }

func NewMongoRatingRepository(col *mongo.Collection) RatingRepository {
	return &mongoRatingRepo{docs[Rating]{col}}
}

func (r *mongoRatingRepo) Create(ctx context.Context, rt *Rating) error {
	stamp(&rt.Timestamp)
	id, err := r.insert(ctx, rt)
	rt.ID = id
	return err
}

/* ---- Notifications ---- */

type mongoNotificationRepo struct{ docs[Notification] }

func NewMongoNotificationRepository(col *mongo.Collection) NotificationRepository {
	return &mongoNotificationRepo{docs[Notification]{col}}
}

func (r *mongoNotificationRepo) Create(ctx context.Context, n *Notification) error {
	stamp(&n.Timestamp)
	id, err := r.insert(ctx, n)
	n.ID = id
	return err
}

func (r *mongoNotificationRepo) ListByUser(ctx context.Context, userID string) ([]Notification, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

func (r *mongoNotificationRepo) MarkRead(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("notification %q: %w", id, ErrNotFound)
	}

	ctx, cancel := context.WithTimeout(ctx, mongoTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("notification %q: %w", id, ErrNotFound)
	}
	return nil
}

/* ---- Interactions ---- */

type mongoInteractionRepo struct{ docs[Interaction] }

func NewMongoInteractionRepository(col *mongo.Collection) InteractionRepository {
	return &mongoInteractionRepo{docs[Interaction]{col}}
}

func (r *mongoInteractionRepo) Create(ctx context.Context, i *Interaction) error {
	stamp(&i.Timestamp)
	if i.Metadata == nil {
		i.Metadata = map[string]any{}
	}
	id, err := r.insert(ctx, i)
	i.ID = id
	return err
}

func (r *mongoInteractionRepo) ListByUser(ctx context.Context, userID string) ([]Interaction, error) {
	return r.find(ctx, bson.M{"userId": userID})
}

/* ---- Errors ---- */

type mongoErrorLogRepo struct{ docs[ErrorLog] }

func NewMongoErrorLogRepository(col *mongo.Collection) ErrorLogRepository {
	return &mongoErrorLogRepo{docs[ErrorLog]{col}}
}

func (r *mongoErrorLogRepo) Create(ctx context.Context, e *ErrorLog) error {
	stamp(&e.Timestamp)
	id, err := r.insert(ctx, e)
	e.ID = id
	return err
}

func (r *mongoErrorLogRepo) List(ctx context.Context) ([]ErrorLog, error) {
	return r.find(ctx, bson.M{})
}

/* ---- Contact & newsletter ---- */

type mongoContactRepo struct{ docs[ContactMessage] }

func NewMongoContactRepository(col *mongo.Collection) ContactRepository {
	return &mongoContactRepo{docs[ContactMessage]{col}}
}

func (r *mongoContactRepo) Create(ctx context.Context, m *ContactMessage) error {
	stamp(&m.Timestamp)
	id, err := r.insert(ctx, m)
	m.ID = id
	return err
}

type mongoNewsletterRepo struct{ docs[NewsletterSubscriber] }

func NewMongoNewsletterRepository(col *mongo.Collection) NewsletterRepository {
	return &mongoNewsletterRepo{docs[NewsletterSubscriber]{col}}
}

func (r *mongoNewsletterRepo) Subscribe(ctx context.Context, s *NewsletterSubscriber) error {
	stamp(&s.SubscribedAt)
	id, err := r.insert(ctx, s)
	if errors.Is(err, ErrDuplicate) {
		return fmt.Errorf("newsletter %s: %w", s.Email, ErrDuplicate)
	}
	s.ID = id
	return err
}
