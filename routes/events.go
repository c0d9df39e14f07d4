package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"stellargather/middlewares"
	"stellargather/models"
	"stellargather/storage"
)

const eventNotFound = "Event not found."

const defaultUpcomingLimit = 3

// eventNamespaces are the cached listings that embed event rows:
// organizer and category pages list events too.
var eventNamespaces = []string{middlewares.NSEvents, middlewares.NSOrganizers, middlewares.NSCategories}

// eventInput is the body of POST/PUT /events. The admin form posts numbers
// as strings and dates without a zone.
type eventInput struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Location    string          `json:"location" binding:"required"`
	City        string          `json:"city"`
	Country     string          `json:"country"`
	Date        models.FlexTime `json:"date"`
	MaxCapacity models.FlexInt  `json:"max_capacity"`
	Price       models.Money    `json:"price"`
	OrganizerID *models.FlexInt `json:"organizer_id"`
}

func (in eventInput) event(id int64) (models.Event, error) {
	if in.Date.IsZero() {
		return models.Event{}, models.Rule("date is required")
	}
	if in.MaxCapacity < 0 {
		return models.Event{}, models.Rule("max_capacity must not be negative")
	}
	if in.Price.IsNegative() {
		return models.Event{}, models.Rule("price must not be negative")
	}
	e := models.Event{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Location:    in.Location,
		City:        in.City,
		Country:     in.Country,
		Date:        in.Date.Time,
		MaxCapacity: int(in.MaxCapacity),
		Price:       in.Price,
	}
	if in.OrganizerID != nil && *in.OrganizerID > 0 {
		oid := in.OrganizerID.Int64()
		e.OrganizerID = &oid
	}
	return e, nil
}

// GET /events
func (d *deps) getEvents(c *gin.Context) {
	events, err := d.Events.List(c.Request.Context())
	if err != nil {
		d.fail(c, err, eventNotFound)
		return
	}
	c.JSON(http.StatusOK, events)
}

// listEvents answers the paginated listings that differ only by filter.
func (d *deps) listEvents(c *gin.Context, f models.EventFilter) {
	page, ok := pageFrom(c)
	if !ok {
		return
	}
	events, err := d.Events.ListPage(c.Request.Context(), f, page)
	if err != nil {
		d.fail(c, err, eventNotFound)
		return
	}
	c.JSON(http.StatusOK, events)
}

// countEventsWhere answers {event_count} for a filter.
func (d *deps) countEventsWhere(c *gin.Context, f models.EventFilter) {
	n, err := d.Events.Count(c.Request.Context(), f)
	if err != nil {
		d.fail(c, err, eventNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event_count": n})
}

// GET /events-desc
func (d *deps) getEventsDesc(c *gin.Context) {
	d.listEvents(c, models.EventFilter{})
}

// GET /events-count
func (d *deps) countEvents(c *gin.Context) {
	d.countEventsWhere(c, models.EventFilter{})
}

// GET /upcoming-events
func (d *deps) upcomingEvents(c *gin.Context) {
	limit := defaultUpcomingLimit
	if c.Query("limit") != "" {
		page, ok := pageFrom(c)
		if !ok {
			return
		}
		limit = page.Limit
	}
	events, err := d.Events.Upcoming(c.Request.Context(), d.now(), limit)
	if err != nil {
		d.fail(c, err, eventNotFound)
		return
	}
	c.JSON(http.StatusOK, events)
}

// GET /events/:id
func (d *deps) getEvent(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	e, err := d.Events.GetByID(c.Request.Context(), id)
	if err != nil {
		d.fail(c, err, eventNotFound)
		return
	}
	c.JSON(http.StatusOK, e)
}

// GET /events/date/:date
func (d *deps) eventsByDate(c *gin.Context) {
	date := c.Param("date")
	if _, err := models.ParseTime(date); err != nil || len(date) != len("2006-01-02") {
		abort(c, http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD.")
		return
	}
	d.listEvents(c, models.EventFilter{Date: date})
}

// GET /events/country/:country
func (d *deps) eventsByCountry(c *gin.Context) {
	d.listEvents(c, models.EventFilter{Country: strings.TrimSpace(c.Param("country"))})
}

// GET /events/organizer/:id
func (d *deps) eventsByOrganizer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	d.listEvents(c, models.EventFilter{OrganizerID: id})
}

// GET /events/count/by-date
func (d *deps) countEventsByDate(c *gin.Context) {
	rows, err := d.Events.CountByDate(c.Request.Context())
	if err != nil {
		d.fail(c, err, eventNotFound)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GET /events/count/by-country
func (d *deps) countEventsByCountry(c *gin.Context) {
	rows, err := d.Events.CountByCountry(c.Request.Context())
	if err != nil {
		d.fail(c, err, eventNotFound)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GET /events/count/by-country/:country
func (d *deps) countEventsForCountry(c *gin.Context) {
	d.countEventsWhere(c, models.EventFilter{Country: strings.TrimSpace(c.Param("country"))})
}

// GET /events/count/by-organizer
func (d *deps) countEventsByOrganizer(c *gin.Context) {
	rows, err := d.Events.CountByOrganizer(c.Request.Context())
	if err != nil {
		d.fail(c, err, eventNotFound)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GET /events/count/by-organizer/:id
func (d *deps) countEventsForOrganizer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	d.countEventsWhere(c, models.EventFilter{OrganizerID: id})
}

// GET /events/:id/registrations
func (d *deps) eventAvailability(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	e, err := d.Events.GetByID(ctx, id)
	if err != nil {
		d.fail(c, err, eventNotFound)
		return
	}
	n, err := d.Registrations.CountActiveForEvent(ctx, id)
	if err != nil {
		d.fail(c, err, eventNotFound)
		return
	}
	c.JSON(http.StatusOK, models.Availability{
		EventID:        id,
		MaxCapacity:    e.MaxCapacity,
		Registered:     n,
		AvailableSlots: max(e.MaxCapacity-n, 0),
	})
}

// GET /events/:id/categories
func (d *deps) eventCategories(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	cats, err := d.Categories.ListForEvent(c.Request.Context(), id)
	if err != nil {
		d.fail(c, err, eventNotFound)
		return
	}
	c.JSON(http.StatusOK, cats)
}

// GET /events/:id/feedbacks
func (d *deps) eventFeedbacks(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	page, ok := pageFrom(c)
	if !ok {
		return
	}
	rows, err := d.Feedbacks.ListForEvent(c.Request.Context(), id, page)
	if err != nil {
		d.fail(c, err, eventNotFound)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// POST /events
func (d *deps) createEvent(c *gin.Context) {
	var in eventInput
	if !bindJSON(c, &in) {
		return
	}
	e, err := in.event(0)
	if err != nil {
		d.fail(c, err, eventNotFound)
		return
	}
	if err := d.Events.Create(c.Request.Context(), &e); err != nil {
		d.fail(c, err, eventNotFound)
		return
	}
	d.Log.WithField("event_id", e.ID).
		WithField("admin_id", c.GetInt64(middlewares.CtxUserID)).
		Info("event created")
	d.purge(c, eventNamespaces...)
	c.JSON(http.StatusCreated, e)
}

// PUT /events/:id
func (d *deps) updateEvent(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in eventInput
	if !bindJSON(c, &in) {
		return
	}
	e, err := in.event(id)
	if err != nil {
		d.fail(c, err, eventNotFound)
		return
	}
	if err := d.Events.Update(c.Request.Context(), &e); err != nil {
		d.fail(c, err, eventNotFound)
		return
	}
	d.purge(c, eventNamespaces...)
	c.JSON(http.StatusOK, e)
}

// DELETE /events/:id
func (d *deps) deleteEvent(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := d.Events.Delete(c.Request.Context(), id); err != nil {
		d.fail(c, err, eventNotFound)
		return
	}
	d.purge(c, eventNamespaces...)
	c.Status(http.StatusNoContent)
}

// POST /events/:id/image
func (d *deps) uploadEventImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, err := d.Events.GetByID(c.Request.Context(), id); err != nil {
		d.fail(c, err, eventNotFound)
		return
	}
	d.saveImage(c, storage.EventImage, id)
}
