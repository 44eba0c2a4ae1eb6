package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Bivtor/cold-cold-cold/internal/templates"
)

// TemplatesHandler exposes the built-in email template catalogue.
type TemplatesHandler struct{}

// NewTemplatesHandler creates a new handler instance.
func NewTemplatesHandler() *TemplatesHandler {
	return &TemplatesHandler{}
}

// List handles GET /templates requests.
func (h *TemplatesHandler) List(c echo.Context) error {
	return Success(c, http.StatusOK, "templates retrieved", templates.List())
}

type renderRequest struct {
	TemplateID   string `json:"templateId"`
	Content      string `json:"content"`
	BusinessName string `json:"businessName,omitempty"`
}

// Render handles POST /templates/render requests, returning a preview of the
// content inside the chosen shell.
func (h *TemplatesHandler) Render(c echo.Context) error {
	var req renderRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.Content) == "" {
		return Error(c, http.StatusBadRequest, "content is required")
	}

	rendered, err := templates.Render(req.TemplateID, req.Content, req.BusinessName)
	if err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}
	return Success(c, http.StatusOK, "template rendered", map[string]string{
		"html": rendered,
		"text": templates.PlainText(rendered),
	})
}
