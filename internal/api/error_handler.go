package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/thorsignia/visitor-system/internal/api/handler"
	"github.com/thorsignia/visitor-system/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Reports request validation failures per field.
//   - Logs unexpected errors and returns their text with a 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	var ve *handler.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: ve.Fields}
	}

	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrVisitNotFound):
		return http.StatusNotFound, errorResponse{Error: "Visit not found"}
	case errors.Is(err, domain.ErrVisitorNotFound):
		return http.StatusNotFound, errorResponse{Error: "Visitor not found"}
	case errors.Is(err, domain.ErrVisitAlreadyClosed):
		return http.StatusBadRequest, errorResponse{Error: "Visitor has already been checked out"}
	case errors.Is(err, domain.ErrSearchCriteriaRequired):
		return http.StatusBadRequest, errorResponse{Error: "Please provide email or phone number"}
	case errors.Is(err, domain.ErrInvalidImageData),
		errors.Is(err, domain.ErrUnsupportedExportFormat),
		errors.Is(err, domain.ErrPhotoVisitorMismatch):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	case errors.Is(err, domain.ErrVisitorConflict):
		return http.StatusConflict, errorResponse{Error: domain.ErrVisitorConflict.Error()}
	case errors.Is(err, domain.ErrAdminExists):
		return http.StatusConflict, errorResponse{Error: domain.ErrAdminExists.Error()}
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, errorResponse{Error: domain.ErrTooManyAttempts.Error()}
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrSessionInvalid):
		return http.StatusUnauthorized, errorResponse{Error: err.Error()}
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: err.Error()}
}
