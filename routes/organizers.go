package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stellargather/middlewares"
	"stellargather/models"
	"stellargather/storage"
)

const organizerNotFound = "Organizer not found."

// GET /organizers
func (d *deps) getOrganizers(c *gin.Context) {
	orgs, err := d.Organizers.List(c.Request.Context())
	if err != nil {
		d.fail(c, err, organizerNotFound)
		return
	}
	c.JSON(http.StatusOK, orgs)
}

// GET /organizers/:id
func (d *deps) getOrganizer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	o, err := d.Organizers.GetByID(c.Request.Context(), id)
	if err != nil {
		d.fail(c, err, organizerNotFound)
		return
	}
	c.JSON(http.StatusOK, o)
}

// POST /organizers
func (d *deps) createOrganizer(c *gin.Context) {
	var o models.Organizer
	if !bindJSON(c, &o) {
		return
	}
	if err := d.Organizers.Create(c.Request.Context(), &o); err != nil {
		d.fail(c, err, organizerNotFound)
		return
	}
	d.purge(c, middlewares.NSOrganizers)
	c.JSON(http.StatusCreated, o)
}

// PUT /organizers/:id
func (d *deps) updateOrganizer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var o models.Organizer
	if !bindJSON(c, &o) {
		return
	}
	o.ID = id
	if err := d.Organizers.Update(c.Request.Context(), &o); err != nil {
		d.fail(c, err, organizerNotFound)
		return
	}
	d.purge(c, middlewares.NSOrganizers, middlewares.NSEvents)
	c.JSON(http.StatusOK, o)
}

// DELETE /organizers/:id
func (d *deps) deleteOrganizer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := d.Organizers.Delete(c.Request.Context(), id); err != nil {
		d.fail(c, err, organizerNotFound)
		return
	}
	d.purge(c, middlewares.NSOrganizers, middlewares.NSEvents)
	c.Status(http.StatusNoContent)
}

// POST /organizers/:id/image
func (d *deps) uploadOrganizerImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, err := d.Organizers.GetByID(c.Request.Context(), id); err != nil {
		d.fail(c, err, organizerNotFound)
		return
	}
	d.saveImage(c, storage.OrganizerImage, id)
}
