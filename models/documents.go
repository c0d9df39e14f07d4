package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Documents below live in MongoDB. Their JSON names keep the camelCase the
// tracking scripts already send.

type Comment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"commentId"`
	UserID      string             `bson:"userId" json:"userId" binding:"required"`
	EventID     string             `bson:"eventId" json:"eventId" binding:"required"`
	CommentText string             `bson:"commentText" json:"commentText" binding:"required"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
}

type Rating struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"ratingId"`
	UserID      string             `bson:"userId" json:"userId" binding:"required"`
	EventID     string             `bson:"eventId" json:"eventId" binding:"required"`
	RatingValue int                `bson:"ratingValue" json:"ratingValue" binding:"required,min=1,max=5"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
}

type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"notificationId"`
	UserID    string             `bson:"userId" json:"userId" binding:"required"`
	Message   string             `bson:"message" json:"message" binding:"required"`
	Read      bool               `bson:"read" json:"read"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

type Interaction struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"interactionId"`
	UserID          string             `bson:"userId" json:"userId" binding:"required"`
	EventID         string             `bson:"eventId,omitempty" json:"eventId,omitempty"`
	InteractionType string             `bson:"interactionType" json:"interactionType" binding:"required"`
	Metadata        map[string]any     `bson:"metadata" json:"metadata"`
	Duration        float64            `bson:"duration" json:"duration"`
	Timestamp       time.Time          `bson:"timestamp" json:"timestamp"`
}

// ErrorLog is a client-side error report. The name avoids clashing with the error interface.
type ErrorLog struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"errorId"`
	ErrorMessage string             `bson:"errorMessage" json:"errorMessage" binding:"required"`
	ErrorCode    int                `bson:"errorCode" json:"errorCode"`
	Service      string             `bson:"service" json:"service" binding:"required"`
	StackTrace   string             `bson:"stackTrace,omitempty" json:"stackTrace,omitempty"`
	Information  string             `bson:"information,omitempty" json:"information,omitempty"`
	Severity     string             `bson:"severity,omitempty" json:"severity,omitempty"`
	UserImpact   bool               `bson:"userImpact" json:"userImpact"`
	Timestamp    time.Time          `bson:"timestamp" json:"timestamp"`
}

type ContactMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name" binding:"required"`
	Email     string             `bson:"email" json:"email" binding:"required,email"`
	Subject   string             `bson:"subject" json:"subject" binding:"required"`
	Message   string             `bson:"message" json:"message" binding:"required"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}

type NewsletterSubscriber struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email" binding:"required,email"`
	SubscribedAt time.Time          `bson:"subscribedAt" json:"subscribedAt"`
}
