package api

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
)

// HeaderIdempotencyKey names the request header carrying a client chosen
// key for a mutating request.
const HeaderIdempotencyKey = "Idempotency-Key"

// RequestID tags every request with a uuid unless the client sent one.
func RequestID() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	})
}

const decompressedContextKey = "prism.request.decompressed"

// DecompressRequest inflates gzip request bodies using echo's Decompress.
// A body whose gzip header cannot be read never reaches the handler and is
// answered with 400.
func DecompressRequest() echo.MiddlewareFunc {
	decompress := middleware.Decompress()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		inflated := decompress(func(c echo.Context) error {
			c.Set(decompressedContextKey, true)
			c.Request().Header.Del(echo.HeaderContentEncoding)
			return next(c)
		})
		return func(c echo.Context) error {
			req := c.Request()
			if !gzipEncoded(req.Header.Get(echo.HeaderContentEncoding)) {
				return next(c)
			}
			// Decompress matches the bare token only
			req.Header.Set(echo.HeaderContentEncoding, middleware.GZIPEncoding)
			req.ContentLength = -1

			err := inflated(c)
			if reached, _ := c.Get(decompressedContextKey).(bool); err != nil && !reached {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid gzip body")
			}
			return err
		}
	}
}

// gzipEncoded reports whether a Content-Encoding list names gzip.
func gzipEncoded(header string) bool {
	for _, token := range strings.Split(header, ",") {
		if strings.EqualFold(strings.TrimSpace(token), middleware.GZIPEncoding) {
			return true
		}
	}
	return false
}

// Idempotency rejects a mutating request whose Idempotency-Key was already
// seen for the same route. A server error releases the key so the client may
// retry, unless the handler marked the change as applied in memory.
func Idempotency(d Deduper, logger *log.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			key := strings.TrimSpace(req.Header.Get(HeaderIdempotencyKey))
			if d == nil || key == "" || !isMutation(req.Method) {
				return next(c)
			}

			ctx := req.Context()
			scope := req.Method + " " + c.Path()
			added, err := d.Add(ctx, scope, key)
			if err != nil {
				logger.WithError(err).WithField("scope", scope).Warn("idempotency check failed; processing request")
				return next(c)
			}
			if !added {
				setErrorStage(c, "duplicate")
				return c.JSON(http.StatusConflict, errorResponse{Error: "duplicate request"})
			}

			err = next(c)
			failed := err != nil || c.Response().Status >= http.StatusInternalServerError
			if failed && !mutationApplied(c) {
				if rerr := d.Remove(ctx, scope, key); rerr != nil {
					logger.WithError(rerr).WithField("scope", scope).Error("failed to release idempotency key")
				}
			}
			return err
		}
	}
}

const appliedContextKey = "prism.mutation.applied"

// markApplied records that the mutation took effect even though the response
// reports a failure, so the idempotency key must not be released.
func markApplied(c echo.Context) {
	c.Set(appliedContextKey, true)
}

func mutationApplied(c echo.Context) bool {
	applied, _ := c.Get(appliedContextKey).(bool)
	return applied
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
