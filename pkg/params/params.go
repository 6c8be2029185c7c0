// Package params reads path, query and body parameters from echo requests and
// writes the empty create/update responses shared by every resource.
package params

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/safetynet/alerts/internal/platform/apierror"
	"github.com/safetynet/alerts/internal/platform/validate"
)

// ID parses a positive numeric path parameter.
func ID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.Validation(name, "must be a positive integer")
	}
	return id, nil
}

// Bool parses an optional boolean query parameter, false when absent.
func Bool(c echo.Context, name string) (bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apierror.Validation(name, "must be true or false")
	}
	return v, nil
}

// Query reads a required query parameter and checks it with rule.
func Query(c echo.Context, name string, rule func(param, v string) error) (string, error) {
	if !c.QueryParams().Has(name) {
		return "", apierror.Validation(name, "must not be null")
	}
	v := c.QueryParam(name)
	if err := rule(name, v); err != nil {
		return "", err
	}
	return v, nil
}

// Names reads the firstName and lastName query parameters.
func Names(c echo.Context) (firstName, lastName string, err error) {
	if firstName, err = Query(c, "firstName", validate.Name); err != nil {
		return "", "", err
	}
	if lastName, err = Query(c, "lastName", validate.Name); err != nil {
		return "", "", err
	}
	return firstName, lastName, nil
}

// Body decodes the JSON request body into v, ignoring path and query values.
func Body(c echo.Context, v interface{}) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Malformed request body")
	}
	return nil
}

// Saved answers a create with 201 and an update with 204, both pointing at
// the resource through the Location header.
func Saved(c echo.Context, created bool, location string) error {
	c.Response().Header().Set(echo.HeaderLocation, location)
	if created {
		return c.NoContent(http.StatusCreated)
	}
	return c.NoContent(http.StatusNoContent)
}
