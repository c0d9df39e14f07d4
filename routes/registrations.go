package routes

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"stellargather/messaging"
	"stellargather/middlewares"
	"stellargather/models"
)

const registrationNotFound = "Registration not found."

type registrationInput struct {
	UserID  models.FlexInt `json:"user_id" binding:"required"`
	EventID models.FlexInt `json:"event_id" binding:"required"`
	Status  string         `json:"status"`
}

// GET /registrations
func (d *deps) getRegistrations(c *gin.Context) {
	regs, err := d.Registrations.List(c.Request.Context())
	if err != nil {
		d.fail(c, err, registrationNotFound)
		return
	}
	c.JSON(http.StatusOK, regs)
}

// GET /registrations/:id
func (d *deps) getRegistration(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	reg, err := d.Registrations.GetByID(c.Request.Context(), id)
	if err != nil {
		d.fail(c, err, registrationNotFound)
		return
	}
	c.JSON(http.StatusOK, reg)
}

// POST /registrations
func (d *deps) createRegistration(c *gin.Context) {
	var in registrationInput
	if !bindJSON(c, &in) {
		return
	}
	ctx := c.Request.Context()
	userID, eventID := in.UserID.Int64(), in.EventID.Int64()

	event, err := d.Events.GetByID(ctx, eventID)
	if err != nil {
		d.fail(c, err, eventNotFound)
		return
	}
	if event.Started(d.now()) {
		abort(c, http.StatusBadRequest, "Cannot register for a past event.")
		return
	}

	reg := models.Registration{UserID: userID, EventID: eventID}
	if err := d.Registrations.RegisterChecked(ctx, &reg); err != nil {
		d.fail(c, err, registrationNotFound)
		return
	}

	d.publish(c, messaging.RegistrationCreated, reg, event)
	d.purge(c, middlewares.NSEvents)
	c.JSON(http.StatusCreated, reg)
}

// PUT /registrations/:id
//
// A body replaces the row. An empty body cancels the registration. Moving a
// row to registered goes through the same rules as a new registration.
func (d *deps) updateRegistration(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		abort(c, http.StatusBadRequest, "Could not read request body.")
		return
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("{}")) {
		d.cancelRegistration(c, id)
		return
	}

	var in registrationInput
	if err := binding.JSON.BindBody(raw, &in); err != nil {
		abort(c, http.StatusBadRequest, "Could not parse request data: "+err.Error())
		return
	}
	if !models.ValidStatus(in.Status) {
		abort(c, http.StatusBadRequest, "status must be 'registered' or 'canceled'.")
		return
	}

	ctx := c.Request.Context()
	reg := models.Registration{ID: id, UserID: in.UserID.Int64(), EventID: in.EventID.Int64(), Status: in.Status}
	if reg.Status == models.StatusRegistered {
		if _, err := d.Events.GetByID(ctx, reg.EventID); err != nil {
			d.fail(c, err, eventNotFound)
			return
		}
		err = d.Registrations.RegisterChecked(ctx, &reg)
	} else {
		err = d.Registrations.Update(ctx, &reg)
	}
	if err != nil {
		d.fail(c, err, registrationNotFound)
		return
	}
	d.purge(c, middlewares.NSEvents)
	c.JSON(http.StatusOK, reg)
}

func (d *deps) cancelRegistration(c *gin.Context, id int64) {
	ctx := c.Request.Context()
	reg, err := d.Registrations.GetByID(ctx, id)
	if err != nil {
		d.fail(c, err, registrationNotFound)
		return
	}
	if reg.Status != models.StatusRegistered {
		abort(c, http.StatusBadRequest, "Only active registrations can be canceled.")
		return
	}
	event, err := d.Events.GetByID(ctx, reg.EventID)
	if err != nil {
		d.fail(c, err, eventNotFound)
		return
	}
	if event.Date.Sub(d.now()) <= models.CancelCutoff {
		abort(c, http.StatusBadRequest, "Registrations can only be canceled more than 24 hours before the event.")
		return
	}

	reg.Status = models.StatusCanceled
	if err := d.Registrations.Update(ctx, &reg); err != nil {
		d.fail(c, err, registrationNotFound)
		return
	}

	d.publish(c, messaging.RegistrationCanceled, reg, event)
	d.purge(c, middlewares.NSEvents)
	c.JSON(http.StatusOK, reg)
}

// DELETE /registrations/:id
func (d *deps) deleteRegistration(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := d.Registrations.Delete(c.Request.Context(), id); err != nil {
		d.fail(c, err, registrationNotFound)
		return
	}
	d.purge(c, middlewares.NSEvents)
	c.Status(http.StatusNoContent)
}

// GET /registrations/check/:user_id/:event_id
func (d *deps) checkRegistration(c *gin.Context) {
	userID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	eventID, ok := paramID(c, "event_id")
	if !ok {
		return
	}
	reg, err := d.Registrations.FindActive(c.Request.Context(), userID, eventID)
	if err != nil {
		d.fail(c, err, "User is not registered for this event.")
		return
	}
	c.JSON(http.StatusOK, reg)
}

// publish emits a registration event. A broker failure is logged and never
// fails the request; the row is already committed.
func (d *deps) publish(c *gin.Context, key string, reg models.Registration, event models.Event) {
	if d.Publisher == nil {
		return
	}
	corrID := middlewares.GetCorrelationID(c)
	ev := messaging.NewRegistrationEvent(key, corrID, messaging.RegistrationData{
		RegistrationID: reg.ID,
		UserID:         reg.UserID,
		EventID:        reg.EventID,
		EventName:      event.Name,
		EventDate:      event.Date,
	})
	if err := d.Publisher.PublishRegistration(c.Request.Context(), ev); err != nil {
		d.Log.WithError(err).
			WithField("routing_key", key).
			WithField("correlation_id", corrID).
			WithField("registration_id", reg.ID).
			Warn("publish registration event failed")
	}
}
