package middlewares

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/gob"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"stellargather/utils"
)

// Cache namespaces. Writes purge them through utils.CacheInvalidator.
const (
	NSEvents     = "events"
	NSCategories = "categories"
	NSOrganizers = "organizers"
)

type cachedBody struct {
	Status      int
	ContentType string
	Body        []byte
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// namespaceFor maps a request path onto its cache namespace, or "" when the
// path is not cacheable.
func namespaceFor(path string) string {
	first := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 2)[0]
	switch first {
	case "events", "events-desc", "events-count", "upcoming-events":
		return NSEvents
	case "categories":
		return NSCategories
	case "organizers":
		return NSOrganizers
	}
	return ""
}

// CacheKeyFrom returns the Redis key for a cacheable GET and its namespace.
func CacheKeyFrom(c *gin.Context) (string, string) {
	if c.Request.Method != http.MethodGet {
		return "", ""
	}
	path := c.Request.URL.Path
	ns := namespaceFor(path)
	if ns == "" {
		return "", ""
	}
	return utils.CacheKeyPrefix + ns + ":" + sha1Hex(path+"|"+c.Request.URL.RawQuery), ns
}

// ResponseCache serves public GETs from Redis and stores 2xx answers for ttl.
// Redis errors fall through to the handler.
func ResponseCache(rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, _ := CacheKeyFrom(c)
		if key == "" || rdb == nil {
			c.Next()
			return
		}

		if b, err := rdb.Get(c.Request.Context(), key).Bytes(); err == nil && len(b) > 0 {
			var hit cachedBody
			if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&hit); err == nil {
				if hit.ContentType != "" {
					c.Header("Content-Type", hit.ContentType)
				}
				c.Header("X-Cache", "HIT")
				c.Status(hit.Status)
				_, _ = c.Writer.Write(hit.Body)
				c.Abort()
				return
			}
		}

		bw := &bufferedWriter{ResponseWriter: c.Writer, buf: &bytes.Buffer{}}
		c.Writer = bw
		c.Header("X-Cache", "MISS")

		c.Next()

		if bw.Status() < 200 || bw.Status() >= 300 {
			return
		}
		item := cachedBody{
			Status:      bw.Status(),
			ContentType: bw.Header().Get("Content-Type"),
			Body:        bw.buf.Bytes(),
		}
		var o bytes.Buffer
		if err := gob.NewEncoder(&o).Encode(item); err == nil {
			_ = rdb.Set(context.WithoutCancel(c.Request.Context()), key, o.Bytes(), ttl).Err()
		}
	}
}

type bufferedWriter struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (w *bufferedWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bufferedWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
