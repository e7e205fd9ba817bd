package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"doc-compliance/internal/domain/apperr"
)

// statusOf maps an error kind to its HTTP status.
func statusOf(k apperr.Kind) int {
	switch k {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindValidation:
		return http.StatusUnprocessableEntity
	case apperr.KindConflict, apperr.KindInvalidTransition, apperr.KindAlreadyApproved, apperr.KindStaleState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as an ErrorResponse. Errors outside the apperr
// taxonomy are logged and reported as 500 without their text.
func respondError(c echo.Context, err error) error {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		slog.Default().ErrorContext(c.Request().Context(), "request failed",
			slog.String("method", c.Request().Method),
			slog.String("path", c.Path()),
			slog.Any("error", err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: "internal"})
	}
	resp := ErrorResponse{
		Error:     ae.Error(),
		Code:      string(ae.Kind),
		Ref:       ae.Ref,
		Retryable: ae.Kind == apperr.KindStaleState,
	}
	if ae.Kind == apperr.KindValidation && ae.Field != "" {
		resp.Error = "validation failed"
		resp.Details = []FieldError{{Field: ae.Field, Message: ae.Msg}}
	}
	return c.JSON(statusOf(ae.Kind), resp)
}

// bindAndValidate binds the body into req and runs the validator.
// It writes the 400/422 response itself and reports whether to continue.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body", Code: "bad_request"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Code:    string(apperr.KindValidation),
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}
