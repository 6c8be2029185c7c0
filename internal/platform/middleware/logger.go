package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/safetynet/alerts/internal/platform/apierror"
)

// maxLoggedPayload caps how much of a request body is copied into the log.
const maxLoggedPayload = 4096

// LoggerConfig controls the access log.
type LoggerConfig struct {
	// IncludePayload adds the (truncated) request body to each entry.
	IncludePayload bool
}

func Logger(logger zerolog.Logger, cfg LoggerConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid, _ := c.Get("request_id").(string)

			var payload []byte
			if cfg.IncludePayload && req.Body != nil {
				payload = capturePayload(req)
			}

			// Services log through zerolog.Ctx.
			reqLogger := logger.With().Str("request_id", rid).Logger()
			c.SetRequest(req.WithContext(reqLogger.WithContext(req.Context())))

			err := next(c)

			status := c.Response().Status
			evt := logger.Info()
			if err != nil {
				status = apierror.NewBody(err).Status
				evt = logger.Warn().Err(err)
				if status >= http.StatusInternalServerError {
					evt = logger.Error().Err(err)
				}
			}

			evt = evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("query", req.URL.RawQuery).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP())
			if len(payload) > 0 {
				evt = evt.Bytes("payload", payload)
			}
			evt.Msg("request")

			return err
		}
	}
}

// capturePayload reads a prefix of the body for logging and restores the
// full body for the handler.
func capturePayload(req *http.Request) []byte {
	head, err := io.ReadAll(io.LimitReader(req.Body, maxLoggedPayload))
	if err != nil {
		return nil
	}
	req.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), req.Body), req.Body}
	return head
}
