package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Bivtor/cold-cold-cold/internal/dto"
	"github.com/Bivtor/cold-cold-cold/internal/entity"
	"github.com/Bivtor/cold-cold-cold/internal/mailer"
	"github.com/Bivtor/cold-cold-cold/internal/repository"
	"github.com/Bivtor/cold-cold-cold/internal/templates"
)

// MailSender is the slice of the mailer the handler needs.
type MailSender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// EmailsHandler exposes draft management and the send path.
type EmailsHandler struct {
	emails     repository.EmailsRepository
	businesses repository.BusinessesRepository
	sender     MailSender
}

// NewEmailsHandler creates a new handler instance.
func NewEmailsHandler(emails repository.EmailsRepository, businesses repository.BusinessesRepository, sender MailSender) *EmailsHandler {
	return &EmailsHandler{emails: emails, businesses: businesses, sender: sender}
}

// Create handles POST /emails requests. Drafts reference an existing business;
// when a template id is supplied the content is rendered into its shell.
func (h *EmailsHandler) Create(c echo.Context) error {
	var req dto.EmailRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	businessID, err := uuid.Parse(strings.TrimSpace(req.BusinessID))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid businessId")
	}
	if strings.TrimSpace(req.Subject) == "" {
		return Error(c, http.StatusBadRequest, "subject is required")
	}
	if strings.TrimSpace(req.HTMLContent) == "" {
		return Error(c, http.StatusBadRequest, "htmlContent is required")
	}

	ctx := c.Request().Context()
	business, err := h.businesses.GetByID(ctx, businessID)
	if err != nil {
		return Fail(c, err)
	}

	content := req.HTMLContent
	if req.TemplateID != "" {
		rendered, err := templates.Render(req.TemplateID, req.HTMLContent, business.Name)
		if err != nil {
			return Error(c, http.StatusBadRequest, err.Error())
		}
		content = rendered
	}

	email := &entity.Email{
		BusinessID:  businessID,
		Subject:     strings.TrimSpace(req.Subject),
		HTMLContent: content,
	}
	if notes := strings.TrimSpace(req.PersonalNotes); notes != "" {
		email.PersonalNotes = &notes
	}
	if err := h.emails.Create(ctx, email); err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusCreated, "email draft created", email)
}

// List handles GET /emails requests.
func (h *EmailsHandler) List(c echo.Context) error {
	filter := dto.ListFilter{
		Q:              strings.TrimSpace(c.QueryParam("q")),
		SendStatus:     strings.TrimSpace(c.QueryParam("send_status")),
		ResponseStatus: strings.TrimSpace(c.QueryParam("response_status")),
		Limit:          parseIntDefault(c.QueryParam("limit"), 20),
		Offset:         parseIntDefault(c.QueryParam("offset"), 0),
	}
	if raw := strings.TrimSpace(c.QueryParam("business_id")); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return Error(c, http.StatusBadRequest, "invalid business_id")
		}
		filter.BusinessID = parsed.String()
	}
	if filter.SendStatus != "" && !entity.SendStatus(filter.SendStatus).Valid() {
		return Error(c, http.StatusBadRequest, "unknown send_status")
	}
	if filter.ResponseStatus != "" && !entity.ResponseStatus(filter.ResponseStatus).Valid() {
		return Error(c, http.StatusBadRequest, "unknown response_status")
	}
	if err := parseDateRange(c, &filter); err != nil {
		return Error(c, http.StatusBadRequest, err.Error())
	}

	emails, err := h.emails.List(c.Request().Context(), filter)
	if err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "emails retrieved", emails)
}

// Get handles GET /emails/:id requests.
func (h *EmailsHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid email id")
	}

	email, err := h.emails.GetByID(c.Request().Context(), id)
	if err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "email retrieved", email)
}

// UpdateStatus handles PATCH /emails/:id/status requests.
func (h *EmailsHandler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid email id")
	}

	var req dto.EmailStatusPatch
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	status := entity.ResponseStatus(strings.TrimSpace(req.ResponseStatus))
	if !status.Valid() {
		return Error(c, http.StatusBadRequest, "unknown responseStatus")
	}

	if err := h.emails.UpdateResponseStatus(c.Request().Context(), id, status); err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "response status updated", map[string]string{"responseStatus": string(status)})
}

// Delete handles DELETE /emails/:id requests.
func (h *EmailsHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid email id")
	}

	if err := h.emails.Delete(c.Request().Context(), id); err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "email deleted", nil)
}

// Send handles POST /emails/:id/send requests. The recipient defaults to the
// business contact email; delivery outcome is recorded either way.
func (h *EmailsHandler) Send(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid email id")
	}

	var req dto.SendRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	ctx := c.Request().Context()
	email, err := h.emails.GetByID(ctx, id)
	if err != nil {
		return Fail(c, err)
	}
	if email.SendStatus == entity.SendStatusSent {
		return Error(c, http.StatusConflict, "email was already sent")
	}

	business, err := h.businesses.GetByID(ctx, email.BusinessID)
	if err != nil {
		return Fail(c, err)
	}

	recipient := strings.TrimSpace(req.Recipient)
	if recipient == "" && business.ContactEmail != nil {
		recipient = *business.ContactEmail
	}
	if recipient == "" {
		return Error(c, http.StatusBadRequest, "the business has no contact email; provide a recipient")
	}

	msg := mailer.Message{
		To:       recipient,
		Subject:  email.Subject,
		HTMLBody: email.HTMLContent,
		TextBody: templates.PlainText(email.HTMLContent),
	}
	if err := h.sender.Send(ctx, msg); err != nil {
		if markErr := h.emails.MarkFailed(ctx, id); markErr != nil {
			c.Logger().Errorf("mark email %s failed: %v", id, markErr)
		}
		return Fail(c, err)
	}

	sentAt := time.Now().UTC()
	eventData, _ := json.Marshal(map[string]string{"recipient": recipient})
	if err := h.emails.MarkSent(ctx, id, sentAt, eventData); err != nil {
		return Fail(c, err)
	}

	sent, err := h.emails.GetByID(ctx, id)
	if err != nil {
		return Fail(c, err)
	}
	return Success(c, http.StatusOK, "email sent", sent)
}
