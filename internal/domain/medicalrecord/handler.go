package medicalrecord

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

// NewHandler builds the /medicalRecord endpoints. m may be nil.
func NewHandler(svc *Service, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, metrics: m}
}

func (h *Handler) RegisterRoutes(g *echo.Group, write ...echo.MiddlewareFunc) {
	g.GET("/medicalRecord/:personId", h.GetMedicalRecord)

	w := g.Group("", write...)
	w.POST("/medicalRecord", h.CreateMedicalRecord)
	w.PUT("/medicalRecord/:personId", h.UpdateMedicalRecord)
	w.PUT("/medicalRecord", h.UpdateMedicalRecordByNames)
	w.DELETE("/medicalRecord/:personId", h.DeleteMedicalRecord)
	w.DELETE("/medicalRecord", h.DeleteMedicalRecordByNames)
}

func location(m *MedicalRecord) string {
	return "/medicalRecord/" + strconv.FormatInt(m.PersonID, 10)
}

func (h *Handler) saved(c echo.Context, out *Outcome, err error) error {
	success := "updated"
	if err == nil && out.Created {
		success = "created"
	}
	h.metrics.ObserveResult("medicalRecord", success, err)
	if err != nil {
		return err
	}
	return params.Saved(c, out.Created, location(out.MedicalRecord))
}

func (h *Handler) deleted(c echo.Context, err error) error {
	h.metrics.ObserveResult("medicalRecord", "deleted", err)
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func bindMedicalRecord(c echo.Context) (*MedicalRecord, error) {
	var body MedicalRecord
	if err := params.Body(c, &body); err != nil {
		return nil, err
	}
	if err := body.Validate(); err != nil {
		return nil, err
	}
	return &body, nil
}

func (h *Handler) GetMedicalRecord(c echo.Context) error {
	id, err := params.ID(c, "personId")
	if err != nil {
		return err
	}
	m, err := h.svc.GetMedicalRecord(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) CreateMedicalRecord(c echo.Context) error {
	body, err := bindMedicalRecord(c)
	if err != nil {
		return err
	}
	out, err := h.svc.CreateMedicalRecord(c.Request().Context(), body)
	return h.saved(c, out, err)
}

func (h *Handler) UpdateMedicalRecord(c echo.Context) error {
	id, err := params.ID(c, "personId")
	if err != nil {
		return err
	}
	body, err := bindMedicalRecord(c)
	if err != nil {
		return err
	}
	out, err := h.svc.UpdateMedicalRecord(c.Request().Context(), id, body)
	return h.saved(c, out, err)
}

func (h *Handler) UpdateMedicalRecordByNames(c echo.Context) error {
	first, last, err := params.Names(c)
	if err != nil {
		return err
	}
	body, err := bindMedicalRecord(c)
	if err != nil {
		return err
	}
	out, err := h.svc.UpdateMedicalRecordByNames(c.Request().Context(), first, last, body)
	return h.saved(c, out, err)
}

func (h *Handler) DeleteMedicalRecord(c echo.Context) error {
	id, err := params.ID(c, "personId")
	if err != nil {
		return err
	}
	return h.deleted(c, h.svc.DeleteMedicalRecord(c.Request().Context(), id))
}

func (h *Handler) DeleteMedicalRecordByNames(c echo.Context) error {
	first, last, err := params.Names(c)
	if err != nil {
		return err
	}
	return h.deleted(c, h.svc.DeleteMedicalRecordByNames(c.Request().Context(), first, last))
}
