package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stellargather/middlewares"
	"stellargather/models"
)

const categoryNotFound = "Category not found."

// GET /categories
func (d *deps) getCategories(c *gin.Context) {
	cats, err := d.Categories.List(c.Request.Context())
	if err != nil {
		d.fail(c, err, categoryNotFound)
		return
	}
	c.JSON(http.StatusOK, cats)
}

// GET /categories/events/count
func (d *deps) categoriesWithEventCount(c *gin.Context) {
	cats, err := d.Categories.ListWithEventCount(c.Request.Context())
	if err != nil {
		d.fail(c, err, categoryNotFound)
		return
	}
	c.JSON(http.StatusOK, cats)
}

// GET /categories/:id
func (d *deps) getCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	cat, err := d.Categories.GetByID(c.Request.Context(), id)
	if err != nil {
		d.fail(c, err, categoryNotFound)
		return
	}
	c.JSON(http.StatusOK, cat)
}

// GET /categories/:id/events
func (d *deps) categoryEvents(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	d.listEvents(c, models.EventFilter{CategoryID: id})
}

// GET /categories/:id/events-count
func (d *deps) categoryEventsCount(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	d.countEventsWhere(c, models.EventFilter{CategoryID: id})
}

// POST /categories
func (d *deps) createCategory(c *gin.Context) {
	var cat models.Category
	if !bindJSON(c, &cat) {
		return
	}
	cat.EventCount = nil
	if err := d.Categories.Create(c.Request.Context(), &cat); err != nil {
		d.fail(c, err, categoryNotFound)
		return
	}
	d.purge(c, middlewares.NSCategories)
	c.JSON(http.StatusCreated, cat)
}

// PUT /categories/:id
func (d *deps) updateCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var cat models.Category
	if !bindJSON(c, &cat) {
		return
	}
	cat.ID, cat.EventCount = id, nil
	if err := d.Categories.Update(c.Request.Context(), &cat); err != nil {
		d.fail(c, err, categoryNotFound)
		return
	}
	d.purge(c, middlewares.NSCategories, middlewares.NSEvents)
	c.JSON(http.StatusOK, cat)
}

// DELETE /categories/:id
func (d *deps) deleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := d.Categories.Delete(c.Request.Context(), id); err != nil {
		d.fail(c, err, categoryNotFound)
		return
	}
	d.purge(c, middlewares.NSCategories, middlewares.NSEvents)
	c.Status(http.StatusNoContent)
}

// POST /event_categories
func (d *deps) linkEventCategory(c *gin.Context) {
	var link models.EventCategory
	if !bindJSON(c, &link) {
		return
	}
	ctx := c.Request.Context()
	if _, err := d.Categories.GetByID(ctx, link.CategoryID.Int64()); err != nil {
		d.fail(c, err, categoryNotFound)
		return
	}
	if err := d.Categories.AddToEvent(ctx, link.EventID.Int64(), link.CategoryID.Int64()); err != nil {
		d.fail(c, err, eventNotFound)
		return
	}
	d.purge(c, middlewares.NSEvents, middlewares.NSCategories)
	c.JSON(http.StatusCreated, link)
}

// DELETE /event_categories/:event_id/:category_id
func (d *deps) unlinkEventCategory(c *gin.Context) {
	eventID, ok := paramID(c, "event_id")
	if !ok {
		return
	}
	categoryID, ok := paramID(c, "category_id")
	if !ok {
		return
	}
	if err := d.Categories.RemoveFromEvent(c.Request.Context(), eventID, categoryID); err != nil {
		d.fail(c, err, "Category is not linked to this event.")
		return
	}
	d.purge(c, middlewares.NSEvents, middlewares.NSCategories)
	c.Status(http.StatusNoContent)
}
