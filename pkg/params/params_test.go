package params

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetynet/alerts/internal/platform/apierror"
	"github.com/safetynet/alerts/internal/platform/validate"
)

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestID(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/person/42", "")
	c.SetParamNames("id")
	c.SetParamValues("42")
	id, err := ID(c, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"abc", "0", "-1", ""} {
		c.SetParamValues(bad)
		_, err := ID(c, "id")
		assert.ErrorIs(t, err, apierror.ErrValidation, bad)
	}
}

func TestBool(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/person", "")
	v, err := Bool(c, "allowSimilarNames")
	require.NoError(t, err)
	assert.False(t, v)

	c, _ = newContext(http.MethodPost, "/person?allowSimilarNames=true", "")
	v, err = Bool(c, "allowSimilarNames")
	require.NoError(t, err)
	assert.True(t, v)

	c, _ = newContext(http.MethodPost, "/person?allowSimilarNames=maybe", "")
	_, err = Bool(c, "allowSimilarNames")
	assert.ErrorIs(t, err, apierror.ErrValidation)
}

func TestQuery(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/phoneAlert?firestation=3", "")
	v, err := Query(c, "firestation", validate.Station)
	require.NoError(t, err)
	assert.Equal(t, "3", v)

	c, _ = newContext(http.MethodGet, "/phoneAlert", "")
	_, err = Query(c, "firestation", validate.Station)
	require.Error(t, err)
	assert.Equal(t, "Validation failed: firestation must not be null", err.(*apierror.Error).Message)

	c, _ = newContext(http.MethodGet, "/phoneAlert?firestation=x", "")
	_, err = Query(c, "firestation", validate.Station)
	assert.ErrorIs(t, err, apierror.ErrValidation)
}

func TestNames(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/personInfo?firstName=John&lastName=Boyd", "")
	first, last, err := Names(c)
	require.NoError(t, err)
	assert.Equal(t, "John", first)
	assert.Equal(t, "Boyd", last)

	c, _ = newContext(http.MethodGet, "/personInfo?firstName=John", "")
	_, _, err = Names(c)
	assert.ErrorIs(t, err, apierror.ErrValidation)
}

func TestBody(t *testing.T) {
	var v struct {
		Address string `json:"address"`
	}
	c, _ := newContext(http.MethodPost, "/firestation?address=ignored", `{"address":"1509 Culver St"}`)
	require.NoError(t, Body(c, &v))
	assert.Equal(t, "1509 Culver St", v.Address)

	c, _ = newContext(http.MethodPost, "/firestation", `{"address":`)
	err := Body(c, &v)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestSaved(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/person", "")
	require.NoError(t, Saved(c, true, "/person/7"))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/person/7", rec.Header().Get(echo.HeaderLocation))

	c, rec = newContext(http.MethodPut, "/person/7", "")
	require.NoError(t, Saved(c, false, "/person/7"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "/person/7", rec.Header().Get(echo.HeaderLocation))
}
