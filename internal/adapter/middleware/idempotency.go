package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	HeaderRequestID = "X-Request-Id"
	HeaderRequestAt = "X-Request-At"
	HeaderReplayed  = "Idempotent-Replayed"

	// a claim left behind by a crashed handler frees itself after this long
	claimTTL = 60 * time.Second
	// allowed client/server clock skew for X-Request-At
	maxClockSkew = 10 * time.Minute
	storeTimeout = 2 * time.Second
)

// responseTee copies everything the handler writes so it can be stored.
type responseTee struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (t *responseTee) Write(b []byte) (int, error) {
	t.body.Write(b)
	return t.ResponseWriter.Write(b)
}

func (t *responseTee) WriteHeader(code int) {
	t.status = code
	t.ResponseWriter.WriteHeader(code)
}

// Idempotency replays the stored response for a repeated mutating request.
// Requests are keyed by method, path, actor and X-Request-Id; X-Request-At
// must be epoch (seconds or ms) or RFC3339 with a timezone.
// 5xx and 409 responses are not stored, so a retry runs the handler again.
func Idempotency(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = slog.Default()
	}
	store := &replayStore{rdb: rdb, ttl: ttl}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !mutating(req.Method) {
				return next(c)
			}

			st, problem := readStamp(c)
			if problem != "" {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": problem})
			}

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewReader(body))
			digest := bodyDigest(body)
			key := replayKey(req.Method, req.URL.Path, st.actorID, st.requestID)

			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()

			claimed, err := store.claim(ctx, key, digest)
			if err != nil {
				return unavailable(c, logger, key, err)
			}
			if !claimed {
				prev, err := store.lookup(ctx, key)
				if errors.Is(err, redis.Nil) {
					// the holder expired after our claim failed; claim once more
					if claimed, err = store.claim(ctx, key, digest); err != nil {
						return unavailable(c, logger, key, err)
					}
					if !claimed {
						prev, err = store.lookup(ctx, key)
					}
				}
				if !claimed {
					if err != nil {
						logger.Warn("idempotency entry unreadable", slog.String("key", key), slog.Any("error", err))
					}
					return answerHeld(c, prev, digest)
				}
			}

			tee := &responseTee{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = tee
			if err := next(c); err != nil {
				c.Error(err)
			}

			// the client may have gone away; the store must still be settled
			after := context.WithoutCancel(req.Context())
			if !storable(tee.status) {
				if err := store.release(after, key); err != nil {
					logger.Warn("idempotency release failed", slog.String("key", key), slog.Any("error", err))
				}
				return nil
			}
			if err := store.commit(after, key, replay{
				Status:   tee.status,
				Body:     tee.body.Bytes(),
				Digest:   digest,
				StoredAt: nowUTC(),
			}); err != nil {
				logger.Warn("idempotency save failed", slog.String("key", key), slog.Any("error", err))
			}
			return nil
		}
	}
}

func unavailable(c echo.Context, logger *slog.Logger, key string, err error) error {
	logger.Error("idempotency store unavailable", slog.String("key", key), slog.Any("error", err))
	return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "idempotency store unavailable"})
}

// answerHeld responds to a request whose key is held by an earlier one.
func answerHeld(c echo.Context, prev replay, digest string) error {
	switch {
	case prev.Digest != "" && prev.Digest != digest:
		return c.JSON(http.StatusConflict, map[string]string{"error": HeaderRequestID + " reused with different body"})
	case prev.done():
		c.Response().Header().Set(HeaderReplayed, "true")
		return c.Blob(prev.Status, echo.MIMEApplicationJSON, prev.Body)
	}
	return c.JSON(http.StatusConflict, map[string]string{"error": "request is already in progress"})
}

func mutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

func storable(status int) bool {
	return status < http.StatusInternalServerError && status != http.StatusConflict
}
