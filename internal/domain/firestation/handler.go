package firestation

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/safetynet/alerts/internal/platform/metrics"
	"github.com/safetynet/alerts/internal/platform/validate"
	"github.com/safetynet/alerts/pkg/params"
)

type Handler struct {
	svc     *Service
	metrics *metrics.Metrics
}

// NewHandler builds the /firestation CRUD endpoints. m may be nil. The
// coverage view on GET /firestation belongs to the alerts package.
func NewHandler(svc *Service, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, metrics: m}
}

func (h *Handler) RegisterRoutes(g *echo.Group, write ...echo.MiddlewareFunc) {
	g.GET("/firestation/get", h.GetFirestation)

	w := g.Group("", write...)
	w.POST("/firestation", h.CreateFirestation)
	w.PUT("/firestation", h.UpdateFirestation)
	w.DELETE("/firestation", h.DeleteFirestation)
}

func location(f *Firestation) string {
	return "/firestation/get?address=" + url.QueryEscape(f.Address)
}

func (h *Handler) saved(c echo.Context, out *Outcome, err error) error {
	success := "updated"
	if err == nil && out.Created {
		success = "created"
	}
	h.metrics.ObserveResult("firestation", success, err)
	if err != nil {
		return err
	}
	return params.Saved(c, out.Created, location(out.Firestation))
}

func bindFirestation(c echo.Context) (*Firestation, error) {
	var body Firestation
	if err := params.Body(c, &body); err != nil {
		return nil, err
	}
	if err := body.Validate(); err != nil {
		return nil, err
	}
	return &body, nil
}

func (h *Handler) GetFirestation(c echo.Context) error {
	addr, err := params.Query(c, "address", validate.Address)
	if err != nil {
		return err
	}
	f, err := h.svc.GetFirestation(c.Request().Context(), addr)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) CreateFirestation(c echo.Context) error {
	body, err := bindFirestation(c)
	if err != nil {
		return err
	}
	out, err := h.svc.CreateFirestation(c.Request().Context(), body)
	return h.saved(c, out, err)
}

func (h *Handler) UpdateFirestation(c echo.Context) error {
	addr, err := params.Query(c, "address", validate.Address)
	if err != nil {
		return err
	}
	body, err := bindFirestation(c)
	if err != nil {
		return err
	}
	out, err := h.svc.UpdateFirestation(c.Request().Context(), addr, body)
	return h.saved(c, out, err)
}

func (h *Handler) DeleteFirestation(c echo.Context) error {
	addr, err := params.Query(c, "address", validate.Address)
	if err != nil {
		return err
	}
	err = h.svc.DeleteFirestation(c.Request().Context(), addr)
	h.metrics.ObserveResult("firestation", "deleted", err)
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
