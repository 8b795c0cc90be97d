package api

import (
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

var keepaliveInterval = 30 * time.Second

// streamState pushes the full view on connect and after every change.
func streamState(tr Tracker, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
		c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
		c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
		c.Response().Header().Set("X-Accel-Buffering", "no")
		flusher, ok := c.Response().Writer.(http.Flusher)
		if !ok {
			return c.String(http.StatusInternalServerError, "stream unsupported")
		}
		c.Response().WriteHeader(http.StatusOK)

		changes, unsubscribe := tr.Subscribe()
		defer unsubscribe()

		ctx := c.Request().Context()
		ticker := time.NewTicker(keepaliveInterval)
		defer ticker.Stop()
		for {
			data, err := sonic.ConfigStd.Marshal(tr.View(clock()))
			if err != nil {
				logger.WithError(err).Error("encode stream state")
				return err
			}
			if _, err := c.Response().Write([]byte("data: ")); err != nil {
				return nil
			}
			if _, err := c.Response().Write(data); err != nil {
				return nil
			}
			if _, err := c.Response().Write([]byte("\n\n")); err != nil {
				return nil
			}
			flusher.Flush()

		wait:
			for {
				select {
				case <-ctx.Done():
					return nil
				case _, ok := <-changes:
					if !ok {
						return nil
					}
					break wait
				case <-ticker.C:
					if _, err := c.Response().Write([]byte(":keepalive\n\n")); err != nil {
						return nil
					}
					flusher.Flush()
				}
			}
		}
	}
}
