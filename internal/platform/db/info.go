package db

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Counter is implemented by the domain services.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// InfoHandler reports the size of each repository under "repositories",
// keyed like {"personsCount": 23}.
func InfoHandler(counters map[string]Counter) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		counts := make(map[string]int64, len(counters))
		for name, counter := range counters {
			n, err := counter.Count(ctx)
			if err != nil {
				return err
			}
			counts[name] = n
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"repositories": counts})
	}
}
