package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"stellargather/insights"
	"stellargather/middlewares"
)

// POST /generate-statistics-endpoint
func (d *deps) generateStatistics(c *gin.Context) {
	if d.Statistics == nil {
		abort(c, http.StatusServiceUnavailable, "Statistics are not configured.")
		return
	}
	var req struct {
		Question string `json:"question" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		abort(c, http.StatusBadRequest, "question is required.")
		return
	}

	log := d.Log.WithField("correlation_id", middlewares.GetCorrelationID(c)).
		WithField("admin_id", c.GetInt64(middlewares.CtxUserID))

	ans, err := d.Statistics.Answer(c.Request.Context(), question)
	switch {
	case errors.Is(err, insights.ErrModel):
		log.WithError(err).Warn("statistics model call failed")
		abort(c, http.StatusBadGateway, "The language model could not answer this question.")
		return
	case insights.IsBadQuery(err):
		log.WithError(err).Info("statistics query rejected")
		abort(c, http.StatusBadRequest, "Could not run the generated query: "+err.Error())
		return
	case err != nil:
		d.fail(c, err, "No statistics found.")
		return
	}

	log.WithField("sql", ans.SQL).WithField("charted", ans.Charted()).Info("statistics answered")
	if ans.Charted() {
		c.JSON(http.StatusOK, ans)
		return
	}
	rows := ans.Rows
	if rows == nil {
		rows = []map[string]any{}
	}
	c.JSON(http.StatusOK, rows)
}
