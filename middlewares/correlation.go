package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CorrelationIDHeader = "X-Correlation-ID"
	CorrelationIDKey    = "correlation_id"
)

// maxCorrelationIDLen bounds a caller-supplied id. It ends up in every log
// line and published message of the request.
const maxCorrelationIDLen = 64

// CorrelationID reuses the caller's X-Correlation-ID or generates one. An
// incoming id that is too long or not plain printable ASCII is replaced.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if !usableCorrelationID(id) {
			id = uuid.NewString()
		}
		c.Set(CorrelationIDKey, id)
		c.Header(CorrelationIDHeader, id)
		c.Next()
	}
}

func GetCorrelationID(c *gin.Context) string {
	return c.GetString(CorrelationIDKey)
}

func usableCorrelationID(id string) bool {
	if id == "" || len(id) > maxCorrelationIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}
