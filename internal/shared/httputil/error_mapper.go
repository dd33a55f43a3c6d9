package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorMapping represents a single error to HTTP status/message mapping.
type ErrorMapping struct {
	Error   error
	Status  int
	Message string
}

// ErrorMapper maps domain errors to HTTP status codes and messages so
// handlers share one translation instead of re-deriving it per route.
type ErrorMapper struct {
	mappings       []ErrorMapping
	defaultStatus  int
	defaultMessage string
}

func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{
		defaultStatus:  http.StatusInternalServerError,
		defaultMessage: "internal server error",
	}
}

// WithMapping adds an error mapping to the mapper.
func (m *ErrorMapper) WithMapping(err error, status int, message string) *ErrorMapper {
	m.mappings = append(m.mappings, ErrorMapping{Error: err, Status: status, Message: message})
	return m
}

// WithDefault sets the default status and message for unmatched errors.
func (m *ErrorMapper) WithDefault(status int, message string) *ErrorMapper {
	m.defaultStatus = status
	m.defaultMessage = message
	return m
}

// HTTPError converts an error into an *echo.HTTPError using the registered
// mappings. Context deadline/cancel errors map ahead of domain mappings.
func (m *ErrorMapper) HTTPError(err error) *echo.HTTPError {
	if errors.Is(err, context.DeadlineExceeded) {
		return echo.NewHTTPError(http.StatusGatewayTimeout, "request timeout")
	}
	if errors.Is(err, context.Canceled) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "request cancelled")
	}
	for _, mapping := range m.mappings {
		if errors.Is(err, mapping.Error) {
			return echo.NewHTTPError(mapping.Status, mapping.Message)
		}
	}
	return echo.NewHTTPError(m.defaultStatus, m.defaultMessage)
}
