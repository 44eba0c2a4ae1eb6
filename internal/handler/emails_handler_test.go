package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Bivtor/cold-cold-cold/internal/apperr"
	"github.com/Bivtor/cold-cold-cold/internal/entity"
	"github.com/Bivtor/cold-cold-cold/internal/mailer"
)

type fakeSender struct {
	err   error
	sent  []mailer.Message
	calls int
}

func (f *fakeSender) Send(ctx context.Context, msg mailer.Message) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func seedHandlerBusiness(t *testing.T, repos testRepos, email string) *entity.Business {
	t.Helper()
	b := &entity.Business{Name: "Acme Plumbing"}
	if email != "" {
		b.ContactEmail = &email
	}
	if err := repos.businesses.Create(context.Background(), b); err != nil {
		t.Fatalf("seed business: %v", err)
	}
	return b
}

func seedHandlerDraft(t *testing.T, repos testRepos, businessID string) *entity.Email {
	t.Helper()
	id, err := uuid.Parse(businessID)
	if err != nil {
		t.Fatalf("parse business id: %v", err)
	}
	email := &entity.Email{
		BusinessID:  id,
		Subject:     "Quick question",
		HTMLContent: "<p>Hello from us</p>",
	}
	if err := repos.emails.Create(context.Background(), email); err != nil {
		t.Fatalf("seed draft: %v", err)
	}
	return email
}

func TestEmailsHandler_CreateDraft(t *testing.T) {
	e := echo.New()
	repos := newTestRepos(t)
	sender := &fakeSender{}
	handler := NewEmailsHandler(repos.emails, repos.businesses, sender)
	business := seedHandlerBusiness(t, repos, "info@acme.com")

	t.Run("renders into template shell", func(t *testing.T) {
		body := fmt.Sprintf(`{"businessId":%q,"subject":"Hi","htmlContent":"<p>Body</p>","templateId":"professional"}`, business.ID)
		c, rec := jsonContext(e, http.MethodPost, "/emails", body)
		_ = handler.Create(c)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp APIResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		data := resp.Data.(map[string]any)
		content := data["html_content"].(string)
		if !strings.Contains(content, "<p>Body</p>") || !strings.Contains(content, "Acme Plumbing") {
			t.Fatalf("template not rendered: %s", content)
		}
	})

	t.Run("unknown template rejected", func(t *testing.T) {
		body := fmt.Sprintf(`{"businessId":%q,"subject":"Hi","htmlContent":"x","templateId":"fancy"}`, business.ID)
		c, rec := jsonContext(e, http.MethodPost, "/emails", body)
		_ = handler.Create(c)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("unknown business rejected", func(t *testing.T) {
		body := `{"businessId":"6a6f98c1-6a7d-4f70-95a9-4f0ad1d6b6aa","subject":"Hi","htmlContent":"x"}`
		c, rec := jsonContext(e, http.MethodPost, "/emails", body)
		_ = handler.Create(c)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestEmailsHandler_Send(t *testing.T) {
	e := echo.New()

	t.Run("success records sent state and event", func(t *testing.T) {
		repos := newTestRepos(t)
		sender := &fakeSender{}
		handler := NewEmailsHandler(repos.emails, repos.businesses, sender)
		business := seedHandlerBusiness(t, repos, "info@acme.com")
		draft := seedHandlerDraft(t, repos, business.ID.String())

		c, rec := jsonContext(e, http.MethodPost, "/emails/"+draft.ID.String()+"/send", `{}`)
		c.SetParamNames("id")
		c.SetParamValues(draft.ID.String())
		_ = handler.Send(c)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if len(sender.sent) != 1 || sender.sent[0].To != "info@acme.com" {
			t.Fatalf("unexpected outbound messages %+v", sender.sent)
		}
		if sender.sent[0].TextBody == "" || strings.Contains(sender.sent[0].TextBody, "<p>") {
			t.Fatalf("text alternative missing or not stripped: %q", sender.sent[0].TextBody)
		}

		stored, err := repos.emails.GetByID(context.Background(), draft.ID)
		if err != nil {
			t.Fatalf("reload email: %v", err)
		}
		if stored.SendStatus != entity.SendStatusSent || stored.ResponseStatus != entity.ResponseStatusNone {
			t.Fatalf("send state not recorded: %+v", stored)
		}
		events, err := repos.events.ListByEmail(context.Background(), draft.ID)
		if err != nil || len(events) != 1 || events[0].EventType != entity.EventSent {
			t.Fatalf("expected one sent event, got %+v (%v)", events, err)
		}
	})

	t.Run("provider failure marks email failed", func(t *testing.T) {
		repos := newTestRepos(t)
		sender := &fakeSender{err: apperr.New(apperr.CodeMailUnavailable, "provider down", true)}
		handler := NewEmailsHandler(repos.emails, repos.businesses, sender)
		business := seedHandlerBusiness(t, repos, "info@acme.com")
		draft := seedHandlerDraft(t, repos, business.ID.String())

		c, rec := jsonContext(e, http.MethodPost, "/emails/"+draft.ID.String()+"/send", `{}`)
		c.SetParamNames("id")
		c.SetParamValues(draft.ID.String())
		_ = handler.Send(c)
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", rec.Code)
		}

		stored, err := repos.emails.GetByID(context.Background(), draft.ID)
		if err != nil {
			t.Fatalf("reload email: %v", err)
		}
		if stored.SendStatus != entity.SendStatusFailed {
			t.Fatalf("expected failed status, got %s", stored.SendStatus)
		}
	})

	t.Run("no recipient available", func(t *testing.T) {
		repos := newTestRepos(t)
		sender := &fakeSender{}
		handler := NewEmailsHandler(repos.emails, repos.businesses, sender)
		business := seedHandlerBusiness(t, repos, "")
		draft := seedHandlerDraft(t, repos, business.ID.String())

		c, rec := jsonContext(e, http.MethodPost, "/emails/"+draft.ID.String()+"/send", `{}`)
		c.SetParamNames("id")
		c.SetParamValues(draft.ID.String())
		_ = handler.Send(c)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if sender.calls != 0 {
			t.Fatalf("no provider call expected, got %d", sender.calls)
		}
	})

	t.Run("double send rejected", func(t *testing.T) {
		repos := newTestRepos(t)
		sender := &fakeSender{}
		handler := NewEmailsHandler(repos.emails, repos.businesses, sender)
		business := seedHandlerBusiness(t, repos, "info@acme.com")
		draft := seedHandlerDraft(t, repos, business.ID.String())

		for i := 0; i < 2; i++ {
			c, rec := jsonContext(e, http.MethodPost, "/emails/"+draft.ID.String()+"/send", `{}`)
			c.SetParamNames("id")
			c.SetParamValues(draft.ID.String())
			_ = handler.Send(c)
			if i == 1 && rec.Code != http.StatusConflict {
				t.Fatalf("expected 409 on second send, got %d", rec.Code)
			}
		}
		if sender.calls != 1 {
			t.Fatalf("expected one provider call, got %d", sender.calls)
		}
	})
}

func TestEmailsHandler_UpdateStatus(t *testing.T) {
	e := echo.New()
	repos := newTestRepos(t)
	handler := NewEmailsHandler(repos.emails, repos.businesses, &fakeSender{})
	business := seedHandlerBusiness(t, repos, "info@acme.com")
	draft := seedHandlerDraft(t, repos, business.ID.String())

	t.Run("unknown status rejected", func(t *testing.T) {
		c, rec := jsonContext(e, http.MethodPatch, "/emails/"+draft.ID.String()+"/status", `{"responseStatus":"maybe"}`)
		c.SetParamNames("id")
		c.SetParamValues(draft.ID.String())
		_ = handler.UpdateStatus(c)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("valid status recorded", func(t *testing.T) {
		c, rec := jsonContext(e, http.MethodPatch, "/emails/"+draft.ID.String()+"/status", `{"responseStatus":"good_response"}`)
		c.SetParamNames("id")
		c.SetParamValues(draft.ID.String())
		_ = handler.UpdateStatus(c)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		stored, err := repos.emails.GetByID(context.Background(), draft.ID)
		if err != nil {
			t.Fatalf("reload email: %v", err)
		}
		if stored.ResponseStatus != entity.ResponseStatusGood {
			t.Fatalf("status not persisted: %s", stored.ResponseStatus)
		}
	})
}
