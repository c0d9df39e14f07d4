package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"stellargather/models"
)

// GET /test_connection
func (d *deps) testConnection(c *gin.Context) {
	if d.PingDocuments == nil {
		abort(c, http.StatusServiceUnavailable, "Document store is not configured.")
		return
	}
	if err := d.PingDocuments(c.Request.Context()); err != nil {
		d.Log.WithError(err).Warn("document store ping failed")
		abort(c, http.StatusServiceUnavailable, "Could not reach the document store.")
		return
	}
	message(c, http.StatusOK, "Connected to the document store.")
}

// requiredQuery reads a mandatory query parameter.
func requiredQuery(c *gin.Context, name string) (string, bool) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		abort(c, http.StatusBadRequest, name+" is required.")
		return "", false
	}
	return v, true
}

// POST /comments
func (d *deps) createComment(c *gin.Context) {
	var cm models.Comment
	if !bindJSON(c, &cm) {
		return
	}
	if err := d.Comments.Create(c.Request.Context(), &cm); err != nil {
		d.fail(c, err, "Comment not found.")
		return
	}
	c.JSON(http.StatusCreated, cm)
}

// GET /comments?event_id=
func (d *deps) getComments(c *gin.Context) {
	eventID, ok := requiredQuery(c, "event_id")
	if !ok {
		return
	}
	out, err := d.Comments.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		d.fail(c, err, "No comments found.")
		return
	}
	if len(out) == 0 {
		abort(c, http.StatusNotFound, "No comments found for this event.")
		return
	}
	c.JSON(http.StatusOK, out)
}

// POST /ratings
func (d *deps) createRating(c *gin.Context) {
	var r models.Rating
	if !bindJSON(c, &r) {
		return
	}
	if err := d.Ratings.Create(c.Request.Context(), &r); err != nil {
		d.fail(c, err, "Rating not found.")
		return
	}
	message(c, http.StatusCreated, "Rating saved.")
}

// POST /notifications
func (d *deps) createNotification(c *gin.Context) {
	var n models.Notification
	if !bindJSON(c, &n) {
		return
	}
	if err := d.Notifications.Create(c.Request.Context(), &n); err != nil {
		d.fail(c, err, "Notification not found.")
		return
	}
	c.JSON(http.StatusCreated, n)
}

// GET /notifications?user_id=
func (d *deps) getNotifications(c *gin.Context) {
	userID, ok := requiredQuery(c, "user_id")
	if !ok {
		return
	}
	out, err := d.Notifications.ListByUser(c.Request.Context(), userID)
	if err != nil {
		d.fail(c, err, "No notifications found.")
		return
	}
	if len(out) == 0 {
		abort(c, http.StatusNotFound, "No notifications found for this user.")
		return
	}
	c.JSON(http.StatusOK, out)
}

// PUT /notifications/:id/read
func (d *deps) markNotificationRead(c *gin.Context) {
	if err := d.Notifications.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		d.fail(c, err, "Notification not found.")
		return
	}
	message(c, http.StatusOK, "Notification marked as read.")
}

// POST /interactions
func (d *deps) createInteraction(c *gin.Context) {
	var in models.Interaction
	if !bindJSON(c, &in) {
		return
	}
	if in.Duration < 0 {
		abort(c, http.StatusBadRequest, "duration must not be negative.")
		return
	}
	if err := d.Interactions.Create(c.Request.Context(), &in); err != nil {
		d.fail(c, err, "Interaction not found.")
		return
	}
	message(c, http.StatusCreated, "Interaction recorded.")
}

// GET /interactions?user_id=
func (d *deps) getInteractions(c *gin.Context) {
	userID, ok := requiredQuery(c, "user_id")
	if !ok {
		return
	}
	out, err := d.Interactions.ListByUser(c.Request.Context(), userID)
	if err != nil {
		d.fail(c, err, "No interactions found.")
		return
	}
	if len(out) == 0 {
		abort(c, http.StatusNotFound, "No interactions found for this user.")
		return
	}
	c.JSON(http.StatusOK, out)
}

// POST /errors
func (d *deps) createErrorLog(c *gin.Context) {
	var e models.ErrorLog
	if !bindJSON(c, &e) {
		return
	}
	if err := d.Errors.Create(c.Request.Context(), &e); err != nil {
		d.fail(c, err, "Error log not found.")
		return
	}
	message(c, http.StatusCreated, "Error logged.")
}

// GET /errors
func (d *deps) getErrorLogs(c *gin.Context) {
	out, err := d.Errors.List(c.Request.Context())
	if err != nil {
		d.fail(c, err, "No errors found.")
		return
	}
	if len(out) == 0 {
		abort(c, http.StatusNotFound, "No errors found.")
		return
	}
	c.JSON(http.StatusOK, out)
}

// POST /contact
func (d *deps) createContactMessage(c *gin.Context) {
	var m models.ContactMessage
	if !bindJSON(c, &m) {
		return
	}
	if err := d.Contact.Create(c.Request.Context(), &m); err != nil {
		d.fail(c, err, "Message not found.")
		return
	}
	message(c, http.StatusCreated, "Message received. We will get back to you soon.")
}

// POST /newsletter
func (d *deps) subscribeNewsletter(c *gin.Context) {
	var s models.NewsletterSubscriber
	if !bindJSON(c, &s) {
		return
	}
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	if err := d.Newsletter.Subscribe(c.Request.Context(), &s); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			abort(c, http.StatusBadRequest, "This email is already subscribed.")
			return
		}
		d.fail(c, err, "Subscription not found.")
		return
	}
	message(c, http.StatusCreated, "Subscribed to the newsletter.")
}
