package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"stellargather/middlewares"
	"stellargather/models"
)

const feedbackNotFound = "Feedback not found."

type feedbackInput struct {
	UserID      models.FlexInt `json:"user_id" binding:"required"`
	EventID     models.FlexInt `json:"event_id" binding:"required"`
	CommentText string         `json:"comment_text"`
	RatingValue models.FlexInt `json:"rating_value" binding:"required,min=1,max=5"`
}

// POST /feedbacks
func (d *deps) createFeedback(c *gin.Context) {
	var in feedbackInput
	if !bindJSON(c, &in) {
		return
	}
	ctx := c.Request.Context()
	if _, err := d.Events.GetByID(ctx, in.EventID.Int64()); err != nil {
		d.fail(c, err, eventNotFound)
		return
	}

	f := models.Feedback{
		UserID:      in.UserID.Int64(),
		EventID:     in.EventID.Int64(),
		CommentText: strings.TrimSpace(in.CommentText),
		RatingValue: int(in.RatingValue),
	}
	if err := d.Feedbacks.Create(ctx, &f); err != nil {
		d.fail(c, err, feedbackNotFound)
		return
	}
	d.purge(c, middlewares.NSEvents)
	c.JSON(http.StatusCreated, f)
}

// GET /feedbacks/:id
func (d *deps) getFeedback(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	f, err := d.Feedbacks.GetByID(c.Request.Context(), id)
	if err != nil {
		d.fail(c, err, feedbackNotFound)
		return
	}
	c.JSON(http.StatusOK, f)
}

// DELETE /feedbacks/:id
func (d *deps) deleteFeedback(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := d.Feedbacks.Delete(c.Request.Context(), id); err != nil {
		d.fail(c, err, feedbackNotFound)
		return
	}
	d.purge(c, middlewares.NSEvents)
	c.Status(http.StatusNoContent)
}
