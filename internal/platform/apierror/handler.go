package apierror

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Body is the JSON error payload returned by every endpoint.
type Body struct {
	Type     string         `json:"type"`
	Status   int            `json:"status"`
	Code     string         `json:"code"`
	Message  string         `json:"message"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewBody renders any error returned by a handler.
func NewBody(err error) Body {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return Body{
			Type:     errorType(apiErr.Kind),
			Status:   Status(apiErr.Kind),
			Code:     Code(apiErr.Kind),
			Message:  apiErr.Message,
			Metadata: apiErr.Metadata,
		}
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		msg := http.StatusText(httpErr.Code)
		if m, ok := httpErr.Message.(string); ok {
			msg = m
		}
		body := Body{Type: "CLIENT", Status: httpErr.Code, Code: CodeBadRequest, Message: msg}
		switch {
		case httpErr.Code == http.StatusNotFound:
			body.Code = CodeNotFound
		case httpErr.Code >= http.StatusInternalServerError:
			body.Type = "UNKNOWN"
			body.Code = CodeServerException
		}
		return body
	}

	return Body{
		Type:    "UNKNOWN",
		Status:  http.StatusInternalServerError,
		Code:    CodeServerException,
		Message: "internal server error",
	}
}

// HTTPErrorHandler returns an echo error handler writing Body payloads.
// Server-side failures are logged; business failures are not.
func HTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		body := NewBody(err)
		if body.Status >= http.StatusInternalServerError {
			rid, _ := c.Get("request_id").(string)
			logger.Error().Err(err).
				Str("request_id", rid).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Msg("unhandled request error")
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(body.Status)
		} else {
			err = c.JSON(body.Status, body)
		}
		if err != nil {
			logger.Error().Err(err).Msg("write error response")
		}
	}
}
