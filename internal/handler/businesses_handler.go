package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Bivtor/cold-cold-cold/internal/dto"
	"github.com/Bivtor/cold-cold-cold/internal/entity"
	"github.com/Bivtor/cold-cold-cold/internal/repository"
)

// BusinessesHandler exposes the business catalogue endpoints.
type BusinessesHandler struct {
	businesses repository.BusinessesRepository
	emails     repository.EmailsRepository
}

// NewBusinessesHandler creates a new handler instance.
func NewBusinessesHandler(businesses repository.BusinessesRepository, emails repository.EmailsRepository) *BusinessesHandler {
	return &BusinessesHandler{businesses: businesses, emails: emails}
}

// List handles GET /businesses requests.
func (h *BusinessesHandler) List(c echo.Context) error {
	filter := dto.ListFilter{
		Q:      strings.TrimSpace(c.QueryParam("q")),
		Limit:  parseIntDefault(c.QueryParam("limit"), 20),
		Offset: parseIntDefault(c.QueryParam("offset"), 0),
	}
	if err := parseDateRange(c, &filter); err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}

	businesses, err := h.businesses.List(c.Request().Context(), filter)
	if err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "businesses retrieved", businesses)
}

// Get handles GET /businesses/:id requests.
func (h *BusinessesHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid business id")
	}

	business, err := h.businesses.GetByID(c.Request().Context(), id)
	if err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "business retrieved", business)
}

// Create handles POST /businesses requests.
func (h *BusinessesHandler) Create(c echo.Context) error {
	var req dto.BusinessRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.Name) == "" {
		return Error(c, http.StatusBadRequest, "name is required")
	}

	business := businessFromRequest(req)
	if err := h.businesses.Create(c.Request().Context(), business); err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusCreated, "business created", business)
}

// Update handles PUT /businesses/:id requests.
func (h *BusinessesHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid business id")
	}

	var req dto.BusinessRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.Name) == "" {
		return Error(c, http.StatusBadRequest, "name is required")
	}

	ctx := c.Request().Context()
	existing, err := h.businesses.GetByID(ctx, id)
	if err != nil {
		return Fail(c, err)
	}

	business := businessFromRequest(req)
	business.ID = id
	business.ScrapedData = existing.ScrapedData
	if err := h.businesses.Update(ctx, business); err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "business updated", business)
}

// ContactFrequency handles GET /businesses/:id/contact-frequency requests.
func (h *BusinessesHandler) ContactFrequency(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid business id")
	}

	ctx := c.Request().Context()
	if _, err := h.businesses.GetByID(ctx, id); err != nil {
		return Fail(c, err)
	}
	freq, err := h.emails.ContactFrequency(ctx, id)
	if err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "contact frequency retrieved", freq)
}

func businessFromRequest(req dto.BusinessRequest) *entity.Business {
	business := &entity.Business{Name: strings.TrimSpace(req.Name)}
	if v := strings.TrimSpace(req.WebsiteURL); v != "" {
		business.WebsiteURL = &v
	}
	if v := strings.TrimSpace(req.ContactEmail); v != "" {
		business.ContactEmail = &v
	}
	if v := strings.TrimSpace(req.Description); v != "" {
		business.Description = &v
	}
	return business
}

func parseIntDefault(input string, fallback int) int {
	if input == "" {
		return fallback
	}
	if value, err := strconv.Atoi(input); err == nil {
		return value
	}
	return fallback
}

func parseDateRange(c echo.Context, filter *dto.ListFilter) error {
	if raw := strings.TrimSpace(c.QueryParam("date_from")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("invalid date_from (use RFC3339)")
		}
		filter.DateFrom = &parsed
	}
	if raw := strings.TrimSpace(c.QueryParam("date_to")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("invalid date_to (use RFC3339)")
		}
		filter.DateTo = &parsed
	}
	return nil
}
