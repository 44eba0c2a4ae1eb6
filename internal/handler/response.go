package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Bivtor/cold-cold-cold/internal/apperr"
	"github.com/Bivtor/cold-cold-cold/internal/repository"
	"github.com/Bivtor/cold-cold-cold/internal/service"
)

// APIResponse describes the standard envelope returned by the API.
type APIResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Data    any           `json:"data,omitempty"`
	Error   *ErrorPayload `json:"error,omitempty"`
}

// ErrorPayload carries the classified failure details of an error response.
// RequiresManualInput is set on collection failures so the client knows to
// offer the manual-entry form.
type ErrorPayload struct {
	Code                string   `json:"code,omitempty"`
	Message             string   `json:"message"`
	Retryable           bool     `json:"retryable,omitempty"`
	Suggestion          string   `json:"suggestion,omitempty"`
	Details             []string `json:"details,omitempty"`
	Suggestions         []string `json:"suggestions,omitempty"`
	RequiresManualInput bool     `json:"requiresManualInput,omitempty"`
}

// Success sends a successful response using the shared envelope format.
func Success(c echo.Context, status int, message string, data any) error {
	if status == 0 {
		status = http.StatusOK
	}
	return c.JSON(status, APIResponse{Success: true, Message: message, Data: data})
}

// Error sends a plain error response using the shared envelope format.
func Error(c echo.Context, status int, message string) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, APIResponse{Success: false, Error: &ErrorPayload{Message: message}})
}

// Fail maps a service or repository error onto the envelope, preserving the
// classification details when the error carries them.
func Fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNoInput):
		return Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrBusinessNotFound),
		errors.Is(err, repository.ErrEmailNotFound),
		errors.Is(err, repository.ErrNoteNotFound):
		return Error(c, http.StatusNotFound, err.Error())
	}

	var manualErr *service.ManualInputError
	if errors.As(err, &manualErr) {
		return c.JSON(http.StatusBadRequest, APIResponse{
			Success: false,
			Error: &ErrorPayload{
				Message: "manual input is not valid",
				Details: manualErr.Errors,
			},
		})
	}

	if appErr := apperr.From(err); appErr != nil {
		return c.JSON(apperr.HTTPStatus(err), APIResponse{
			Success: false,
			Error: &ErrorPayload{
				Code:       string(appErr.Code),
				Message:    appErr.Message,
				Retryable:  appErr.Retryable,
				Suggestion: appErr.Suggestion,
			},
		})
	}

	return Error(c, http.StatusInternalServerError, "something went wrong")
}
