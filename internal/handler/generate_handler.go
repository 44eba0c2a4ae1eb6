package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Bivtor/cold-cold-cold/internal/dto"
)

// Generator is the slice of the LLM client the handlers need.
type Generator interface {
	GenerateEmail(ctx context.Context, req dto.GenerateRequest) (string, error)
	GenerateSubject(ctx context.Context, body, businessName string) (string, error)
	RefineEmail(ctx context.Context, original, feedback string) (string, error)
}

// GenerateHandler exposes the email generation endpoints.
type GenerateHandler struct {
	generator Generator
}

// NewGenerateHandler creates a new handler instance.
func NewGenerateHandler(generator Generator) *GenerateHandler {
	return &GenerateHandler{generator: generator}
}

// GenerateEmail handles POST /generate-email requests.
func (h *GenerateHandler) GenerateEmail(c echo.Context) error {
	var req dto.GenerateRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.BusinessContext) == "" && req.ScrapedData == nil && strings.TrimSpace(req.ManualContent) == "" {
		return Error(c, http.StatusBadRequest, "businessContext, scrapedData or manualContent is required")
	}

	body, err := h.generator.GenerateEmail(c.Request().Context(), req)
	if err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "email generated", map[string]string{"content": body})
}

// GenerateSubject handles POST /generate-subject requests.
func (h *GenerateHandler) GenerateSubject(c echo.Context) error {
	var req dto.SubjectRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.EmailBody) == "" {
		return Error(c, http.StatusBadRequest, "emailBody is required")
	}

	subject, err := h.generator.GenerateSubject(c.Request().Context(), req.EmailBody, req.BusinessName)
	if err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "subject generated", map[string]string{"subject": subject})
}

// RefineEmail handles POST /refine-email requests.
func (h *GenerateHandler) RefineEmail(c echo.Context) error {
	var req dto.RefineRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.OriginalEmail) == "" || strings.TrimSpace(req.Feedback) == "" {
		return Error(c, http.StatusBadRequest, "originalEmail and feedback are required")
	}

	refined, err := h.generator.RefineEmail(c.Request().Context(), req.OriginalEmail, req.Feedback)
	if err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "email refined", map[string]string{"content": refined})
}
