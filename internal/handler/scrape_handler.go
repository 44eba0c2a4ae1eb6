package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Bivtor/cold-cold-cold/internal/apperr"
	"github.com/Bivtor/cold-cold-cold/internal/dto"
	"github.com/Bivtor/cold-cold-cold/internal/service"
)

// Collector runs the business data collection paths.
type Collector interface {
	Collect(ctx context.Context, req dto.ScrapeRequest) (*dto.ScrapeResult, error)
}

// ScrapeHandler exposes the data collection endpoint.
type ScrapeHandler struct {
	collector Collector
}

// NewScrapeHandler creates a new handler instance.
func NewScrapeHandler(collector Collector) *ScrapeHandler {
	return &ScrapeHandler{collector: collector}
}

// Collect handles POST /scrape requests.
func (h *ScrapeHandler) Collect(c echo.Context) error {
	var req dto.ScrapeRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	result, err := h.collector.Collect(c.Request().Context(), req)
	if err != nil {
		// Scrape failures come back with manual-entry guidance so the client
		// can offer the fallback form immediately.
		if appErr := apperr.From(err); appErr != nil {
			return c.JSON(apperr.HTTPStatus(err), APIResponse{
				Success: false,
				Error: &ErrorPayload{
					Code:                string(appErr.Code),
					Message:             appErr.Message,
					Retryable:           appErr.Retryable,
					Suggestion:          appErr.Suggestion,
					Suggestions:         service.FallbackSuggestions(appErr.Code),
					RequiresManualInput: true,
				},
			})
		}
		return Fail(c, err)
	}

	return Success(c, http.StatusOK, "business data collected", result)
}
