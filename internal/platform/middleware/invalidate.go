package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Invalidator drops cached read models.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// InvalidateOnWrite calls inv after every successful POST, PUT or DELETE.
// A failure to invalidate is logged; the write itself has already committed.
func InvalidateOnWrite(inv Invalidator, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			switch c.Request().Method {
			case http.MethodPost, http.MethodPut, http.MethodDelete:
			default:
				return err
			}
			if err != nil || c.Response().Status >= http.StatusBadRequest {
				return err
			}

			if ierr := inv.Invalidate(c.Request().Context()); ierr != nil {
				rid, _ := c.Get("request_id").(string)
				logger.Warn().Err(ierr).Str("request_id", rid).Msg("alert cache invalidation failed")
			}
			return nil
		}
	}
}
