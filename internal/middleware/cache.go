package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ayanda-dev/studio-booking/internal/config"
)

// bodyRecorder captures the response body and status while forwarding
// everything to the client unchanged.
type bodyRecorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	limit  int
}

func (w *bodyRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	if w.limit <= 0 || w.buf.Len()+len(b) <= w.limit {
		w.buf.Write(b)
	} else {
		// over the limit; poison the buffer so the entry is skipped
		w.buf.Reset()
		w.limit = -1
	}
	return w.ResponseWriter.Write(b)
}

func cacheKey(prefix string, c echo.Context) string {
	sum := sha1.Sum([]byte(c.Path() + "?" + c.Request().URL.RawQuery))
	return fmt.Sprintf("%s:%x", prefix, sum)
}

// NewResponseCache serves recent GET responses for the schedule read
// endpoints out of Redis.  Entries store "status|body" and are served
// as JSON, which is the only content type these routes produce.  A nil
// Redis client disables the middleware entirely.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 15 * time.Second
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}

			ctx := c.Request().Context()
			key := cacheKey(cfg.Prefix, c)

			if raw, err := rdb.Get(ctx, key).Result(); err == nil {
				if status, body, ok := splitEntry(raw); ok {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(status, echo.MIMEApplicationJSON, []byte(body))
				}
			}

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if rec.status == http.StatusOK && rec.limit >= 0 && rec.buf.Len() > 0 {
				entry := strconv.Itoa(rec.status) + "|" + rec.buf.String()
				_ = rdb.SetEx(context.Background(), key, entry, ttl).Err()
			}
			return nil
		}
	}
}

func splitEntry(raw string) (status int, body string, ok bool) {
	i := strings.IndexByte(raw, '|')
	if i <= 0 {
		return 0, "", false
	}
	n, err := strconv.Atoi(raw[:i])
	if err != nil {
		return 0, "", false
	}
	return n, raw[i+1:], true
}
