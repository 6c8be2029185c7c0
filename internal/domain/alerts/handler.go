package alerts

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/safetynet/alerts/internal/platform/cache"
	"github.com/safetynet/alerts/internal/platform/metrics"
	"github.com/safetynet/alerts/internal/platform/validate"
	"github.com/safetynet/alerts/pkg/params"
)

type Handler struct {
	svc     *Service
	cache   cache.Store
	metrics *metrics.Metrics
}

// NewHandler builds the alert endpoints. A nil store disables caching and m
// may be nil.
func NewHandler(svc *Service, store cache.Store, m *metrics.Metrics) *Handler {
	if store == nil {
		store = cache.Nop{}
	}
	return &Handler{svc: svc, cache: store, metrics: m}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/firestation", h.PersonsCoveredByFirestation)
	g.GET("/childAlert", h.ChildAlert)
	g.GET("/phoneAlert", h.PhoneAlert)
	g.GET("/fire", h.Fire)
	g.GET("/flood/stations", h.FloodStations)
	g.GET("/personInfo", h.PersonInfo)
	g.GET("/communityEmail", h.CommunityEmail)
}

// serve answers from the cache when possible, otherwise computes the view and
// stores it. Cache failures are logged and never fail the request.
func serve[T any](h *Handler, c echo.Context, view func(ctx context.Context) (T, error)) error {
	ctx := c.Request().Context()
	logger := zerolog.Ctx(ctx)
	// Encode sorts by parameter name.
	key := c.Path() + "?" + c.QueryParams().Encode()

	entry, err := h.cache.Get(ctx, key)
	cacheable := err == nil
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("alert cache read failed")
	}
	if entry.Hit {
		if h.metrics != nil {
			h.metrics.AlertCacheHits.Inc()
		}
		return c.JSONBlob(http.StatusOK, entry.Value)
	}
	if h.metrics != nil {
		h.metrics.AlertCacheMiss.Inc()
	}

	res, err := view(ctx)
	if err != nil {
		return err
	}
	body, err := json.Marshal(res)
	if err != nil {
		return err
	}
	if !cacheable {
		return c.JSONBlob(http.StatusOK, body)
	}
	if err := h.cache.Set(ctx, entry.Generation, key, body); err != nil {
		logger.Warn().Err(err).Str("key", key).Msg("alert cache write failed")
	}
	return c.JSONBlob(http.StatusOK, body)
}

func (h *Handler) PersonsCoveredByFirestation(c echo.Context) error {
	station, err := params.Query(c, "stationNumber", validate.Station)
	if err != nil {
		return err
	}
	return serve(h, c, func(ctx context.Context) (*PersonsCoveredByFirestation, error) {
		return h.svc.PersonsCoveredByFirestation(ctx, station)
	})
}

func (h *Handler) ChildAlert(c echo.Context) error {
	addr, err := params.Query(c, "address", validate.Address)
	if err != nil {
		return err
	}
	return serve(h, c, func(ctx context.Context) (*ChildAlert, error) {
		return h.svc.ChildAlert(ctx, addr)
	})
}

func (h *Handler) PhoneAlert(c echo.Context) error {
	station, err := params.Query(c, "firestation", validate.Station)
	if err != nil {
		return err
	}
	return serve(h, c, func(ctx context.Context) (*PhoneAlert, error) {
		return h.svc.PhoneAlert(ctx, station)
	})
}

func (h *Handler) Fire(c echo.Context) error {
	addr, err := params.Query(c, "address", validate.Address)
	if err != nil {
		return err
	}
	return serve(h, c, func(ctx context.Context) (*Fire, error) {
		return h.svc.Fire(ctx, addr)
	})
}

func (h *Handler) FloodStations(c echo.Context) error {
	// Accepts both stations=1,2 and stations=1&stations=2.
	raw := strings.Join(c.QueryParams()["stations"], ",")
	stations, err := validate.Stations("stations", raw)
	if err != nil {
		return err
	}
	return serve(h, c, func(ctx context.Context) (*FloodStations, error) {
		return h.svc.FloodStations(ctx, stations)
	})
}

func (h *Handler) PersonInfo(c echo.Context) error {
	first, last, err := params.Names(c)
	if err != nil {
		return err
	}
	return serve(h, c, func(ctx context.Context) (*PersonInfo, error) {
		return h.svc.PersonInfo(ctx, first, last)
	})
}

func (h *Handler) CommunityEmail(c echo.Context) error {
	city, err := params.Query(c, "city", validate.City)
	if err != nil {
		return err
	}
	return serve(h, c, func(ctx context.Context) (*CommunityEmail, error) {
		return h.svc.CommunityEmail(ctx, city)
	})
}
