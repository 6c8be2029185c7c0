package medicalrecord_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetynet/alerts/internal/domain/medicalrecord"
	"github.com/safetynet/alerts/internal/platform/apierror"
)

const johnRecordJSON = `{"firstName":"John","lastName":"Boyd","birthdate":"03/06/1984","medications":["aznol:350mg"],"allergies":["nillacilan"]}`

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Lifecycle(t *testing.T) {
	f := newFixture()
	john := f.addPerson(t, "John", "Boyd")
	require.Equal(t, int64(1), john.ID)

	e := echo.New()
	e.HTTPErrorHandler = apierror.HTTPErrorHandler(zerolog.Nop())
	medicalrecord.NewHandler(f.svc, nil).RegisterRoutes(e.Group(""))

	rec := serve(e, http.MethodPost, "/medicalRecord", johnRecordJSON)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/medicalRecord/1", rec.Header().Get(echo.HeaderLocation))

	rec = serve(e, http.MethodGet, "/medicalRecord/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"personId":1,"firstName":"John","lastName":"Boyd","birthdate":"03/06/1984","medications":["aznol:350mg"],"allergies":["nillacilan"]}`, rec.Body.String())

	rec = serve(e, http.MethodPost, "/medicalRecord", johnRecordJSON)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(e, http.MethodPut, "/medicalRecord?firstName=John&lastName=Boyd",
		strings.Replace(johnRecordJSON, `["nillacilan"]`, `[]`, 1))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "/medicalRecord/1", rec.Header().Get(echo.HeaderLocation))

	assert.Equal(t, http.StatusNoContent, serve(e, http.MethodDelete, "/medicalRecord/1", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(e, http.MethodGet, "/medicalRecord/1", "").Code)
}

func TestHandler_UnknownOwner(t *testing.T) {
	f := newFixture()
	e := echo.New()
	e.HTTPErrorHandler = apierror.HTTPErrorHandler(zerolog.Nop())
	medicalrecord.NewHandler(f.svc, nil).RegisterRoutes(e.Group(""))

	rec := serve(e, http.MethodPost, "/medicalRecord", johnRecordJSON)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "The person linked to this medical file cannot be found")
}

func TestHandler_InvalidBirthdate(t *testing.T) {
	f := newFixture()
	e := echo.New()
	e.HTTPErrorHandler = apierror.HTTPErrorHandler(zerolog.Nop())
	medicalrecord.NewHandler(f.svc, nil).RegisterRoutes(e.Group(""))

	rec := serve(e, http.MethodPost, "/medicalRecord", strings.Replace(johnRecordJSON, "03/06/1984", "1984-03-06", 1))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
