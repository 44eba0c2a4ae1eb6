package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Bivtor/cold-cold-cold/internal/dto"
	"github.com/Bivtor/cold-cold-cold/internal/entity"
	"github.com/Bivtor/cold-cold-cold/internal/repository"
	"github.com/Bivtor/cold-cold-cold/internal/service"
)

// AnalyticsHandler exposes event recording and the overview rollup.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	events    repository.AnalyticsRepository
	emails    repository.EmailsRepository
}

// NewAnalyticsHandler creates a new handler instance.
func NewAnalyticsHandler(analytics *service.AnalyticsService, events repository.AnalyticsRepository, emails repository.EmailsRepository) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, events: events, emails: emails}
}

// Overview handles GET /analytics/overview requests.
func (h *AnalyticsHandler) Overview(c echo.Context) error {
	var from, to *time.Time
	if raw := strings.TrimSpace(c.QueryParam("date_from")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Error(c, http.StatusBadRequest, "invalid date_from (use RFC3339)")
		}
		from = &parsed
	}
	if raw := strings.TrimSpace(c.QueryParam("date_to")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return Error(c, http.StatusBadRequest, "invalid date_to (use RFC3339)")
		}
		to = &parsed
	}

	overview, err := h.analytics.Overview(c.Request().Context(), from, to)
	if err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "analytics overview retrieved", overview)
}

// RecordEvent handles POST /emails/:id/events requests.
func (h *AnalyticsHandler) RecordEvent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid email id")
	}

	var req dto.EventRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	eventType := entity.EventType(strings.TrimSpace(req.EventType))
	if !eventType.Valid() {
		return Error(c, http.StatusBadRequest, "unknown eventType")
	}

	ctx := c.Request().Context()
	if _, err := h.emails.GetByID(ctx, id); err != nil {
		return Fail(c, err)
	}

	event := &entity.AnalyticsEvent{EmailID: id, EventType: eventType, EventData: req.EventData}
	if err := h.analytics.RecordEvent(ctx, event); err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusCreated, "event recorded", event)
}

// ListEvents handles GET /emails/:id/events requests.
func (h *AnalyticsHandler) ListEvents(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid email id")
	}

	ctx := c.Request().Context()
	if _, err := h.emails.GetByID(ctx, id); err != nil {
		return Fail(c, err)
	}

	events, err := h.events.ListByEmail(ctx, id)
	if err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "events retrieved", events)
}
