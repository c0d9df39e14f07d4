package routes

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"stellargather/middlewares"
	"stellargather/models"
	"stellargather/storage"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": msg})
}

func message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

// paramID parses a positive integer path parameter, answering 400 otherwise.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		abort(c, http.StatusBadRequest, "Invalid "+name+".")
		return 0, false
	}
	return id, true
}

// pageFrom reads ?page and ?limit.
func pageFrom(c *gin.Context) (models.Page, bool) {
	p := models.Page{Number: 1, Limit: defaultPageLimit}
	if s := c.Query("page"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			abort(c, http.StatusBadRequest, "page must be a positive integer.")
			return p, false
		}
		p.Number = n
	}
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			abort(c, http.StatusBadRequest, "limit must be a positive integer.")
			return p, false
		}
		p.Limit = min(n, maxPageLimit)
	}
	return p, true
}

// bindJSON decodes the body, answering 400 on failure.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		abort(c, http.StatusBadRequest, "Could not parse request data: "+err.Error())
		return false
	}
	return true
}

// fail maps repository errors onto responses. notFound is the 404 text.
func (d *deps) fail(c *gin.Context, err error, notFound string) {
	var rule *models.RuleError
	switch {
	case errors.Is(err, models.ErrNotFound):
		abort(c, http.StatusNotFound, notFound)
	case errors.Is(err, models.ErrDuplicate):
		abort(c, http.StatusBadRequest, "Resource already exists.")
	case errors.As(err, &rule):
		abort(c, http.StatusBadRequest, rule.Reason)
	default:
		d.Log.WithError(err).WithFields(logrus.Fields{
			"path":           c.FullPath(),
			"correlation_id": middlewares.GetCorrelationID(c),
		}).Error("request failed")
		_ = c.Error(err)
		abort(c, http.StatusInternalServerError, "Internal server error.")
	}
}

// purge drops cached responses for the given namespaces.
func (d *deps) purge(c *gin.Context, namespaces ...string) {
	d.Invalidator.Purge(c.Request.Context(), namespaces...)
}

// readImage pulls the "image" multipart field, capped at storage.MaxImageBytes.
func readImage(c *gin.Context) ([]byte, bool) {
	fh, err := c.FormFile("image")
	if err != nil {
		abort(c, http.StatusBadRequest, "Missing image file.")
		return nil, false
	}
	if fh.Size > storage.MaxImageBytes {
		abort(c, http.StatusBadRequest, "Image is too large.")
		return nil, false
	}
	f, err := fh.Open()
	if err != nil {
		abort(c, http.StatusBadRequest, "Could not read image.")
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, storage.MaxImageBytes+1))
	if err != nil {
		abort(c, http.StatusBadRequest, "Could not read image.")
		return nil, false
	}
	return data, true
}

// saveImage validates and stores an uploaded picture for owner id.
func (d *deps) saveImage(c *gin.Context, spec storage.ImageSpec, id int64) {
	if d.Images == nil {
		abort(c, http.StatusServiceUnavailable, "Image storage is not configured.")
		return
	}
	data, ok := readImage(c)
	if !ok {
		return
	}
	key, err := d.Images.Save(c.Request.Context(), spec, id, data)
	if err != nil {
		d.fail(c, err, "Not found.")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Image uploaded.", "key": key})
}
