package db

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCounter struct {
	n   int64
	err error
}

func (s stubCounter) Count(context.Context) (int64, error) { return s.n, s.err }

func TestInfoHandler(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/actuator/info", nil), rec)

	h := InfoHandler(map[string]Counter{
		"personsCount":        stubCounter{n: 23},
		"medicalRecordsCount": stubCounter{n: 22},
		"addressesCount":      stubCounter{n: 11},
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Repositories map[string]int64 `json:"repositories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]int64{
		"personsCount":        23,
		"medicalRecordsCount": 22,
		"addressesCount":      11,
	}, body.Repositories)
}

func TestInfoHandler_CountError(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/actuator/info", nil), httptest.NewRecorder())

	boom := errors.New("connection refused")
	err := InfoHandler(map[string]Counter{"personsCount": stubCounter{err: boom}})(c)
	assert.ErrorIs(t, err, boom)
}
