package person

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/safetynet/alerts/internal/platform/metrics"
	"github.com/safetynet/alerts/pkg/params"
)

type Handler struct {
	svc     *Service
	metrics *metrics.Metrics
}

// NewHandler builds the /person endpoints. m may be nil.
func NewHandler(svc *Service, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, metrics: m}
}

// RegisterRoutes mounts the read routes on g and the mutating routes on g
// behind write.
func (h *Handler) RegisterRoutes(g *echo.Group, write ...echo.MiddlewareFunc) {
	g.GET("/person/:id", h.GetPerson)

	w := g.Group("", write...)
	w.POST("/person", h.CreatePerson)
	w.PUT("/person/:id", h.UpdatePerson)
	w.PUT("/person", h.UpdatePersonByNames)
	w.DELETE("/person/:id", h.DeletePerson)
	w.DELETE("/person", h.DeletePersonByNames)
}

func location(p *Person) string {
	return "/person/" + strconv.FormatInt(p.ID, 10)
}

func (h *Handler) saved(c echo.Context, out *Outcome, err error) error {
	success := "updated"
	if err == nil && out.Created {
		success = "created"
	}
	h.metrics.ObserveResult("person", success, err)
	if err != nil {
		return err
	}
	return params.Saved(c, out.Created, location(out.Person))
}

func (h *Handler) deleted(c echo.Context, err error) error {
	h.metrics.ObserveResult("person", "deleted", err)
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func bindPerson(c echo.Context) (*Person, error) {
	var body Person
	if err := params.Body(c, &body); err != nil {
		return nil, err
	}
	if err := body.Validate(); err != nil {
		return nil, err
	}
	return &body, nil
}

func (h *Handler) GetPerson(c echo.Context) error {
	id, err := params.ID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.GetPerson(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CreatePerson(c echo.Context) error {
	allowSimilar, err := params.Bool(c, "allowSimilarNames")
	if err != nil {
		return err
	}
	body, err := bindPerson(c)
	if err != nil {
		return err
	}
	out, err := h.svc.CreatePerson(c.Request().Context(), body, allowSimilar)
	return h.saved(c, out, err)
}

func (h *Handler) UpdatePerson(c echo.Context) error {
	id, err := params.ID(c, "id")
	if err != nil {
		return err
	}
	allowSimilar, err := params.Bool(c, "allowSimilarNames")
	if err != nil {
		return err
	}
	body, err := bindPerson(c)
	if err != nil {
		return err
	}
	out, err := h.svc.UpdatePerson(c.Request().Context(), id, body, allowSimilar)
	return h.saved(c, out, err)
}

func (h *Handler) UpdatePersonByNames(c echo.Context) error {
	first, last, err := params.Names(c)
	if err != nil {
		return err
	}
	body, err := bindPerson(c)
	if err != nil {
		return err
	}
	out, err := h.svc.UpdatePersonByNames(c.Request().Context(), first, last, body)
	return h.saved(c, out, err)
}

func (h *Handler) DeletePerson(c echo.Context) error {
	id, err := params.ID(c, "id")
	if err != nil {
		return err
	}
	return h.deleted(c, h.svc.DeletePerson(c.Request().Context(), id))
}

func (h *Handler) DeletePersonByNames(c echo.Context) error {
	first, last, err := params.Names(c)
	if err != nil {
		return err
	}
	return h.deleted(c, h.svc.DeletePersonByNames(c.Request().Context(), first, last))
}
