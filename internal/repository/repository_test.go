package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Bivtor/cold-cold-cold/internal/database"
	"github.com/Bivtor/cold-cold-cold/internal/dto"
	"github.com/Bivtor/cold-cold-cold/internal/entity"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedBusiness(t *testing.T, repo *SQLBusinessesRepository, name, email string) *entity.Business {
	t.Helper()
	b := &entity.Business{Name: name}
	if email != "" {
		b.ContactEmail = &email
	}
	if err := repo.Create(context.Background(), b); err != nil {
		t.Fatalf("seed business: %v", err)
	}
	return b
}

func TestBusinessesRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewBusinessesRepository(db)
	ctx := context.Background()

	website := "https://acme.com"
	created := &entity.Business{
		Name:       "Acme Plumbing",
		WebsiteURL: &website,
		ScrapedData: &entity.ScrapedData{
			BusinessName: "Acme Plumbing",
			Services:     []string{"Drain cleaning"},
			ContactInfo:  entity.ContactInfo{Email: "info@acme.com"},
		},
	}
	if err := repo.Create(ctx, created); err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Fatal("expected id to be assigned")
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Acme Plumbing" || got.WebsiteURL == nil || *got.WebsiteURL != website {
		t.Fatalf("unexpected row %+v", got)
	}
	if got.ScrapedData == nil || got.ScrapedData.ContactInfo.Email != "info@acme.com" {
		t.Fatalf("scraped data blob did not round-trip: %+v", got.ScrapedData)
	}

	got.Name = "Acme Plumbing Ltd"
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	updated, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if updated.Name != "Acme Plumbing Ltd" {
		t.Fatalf("update not persisted: %+v", updated)
	}
}

func TestBusinessesGetByContactEmail(t *testing.T) {
	db := openTestDB(t)
	repo := NewBusinessesRepository(db)
	ctx := context.Background()

	seedBusiness(t, repo, "Acme", "info@acme.com")

	got, err := repo.GetByContactEmail(ctx, "info@acme.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.Name != "Acme" {
		t.Fatalf("unexpected business %+v", got)
	}

	if _, err := repo.GetByContactEmail(ctx, "nobody@acme.com"); !errors.Is(err, ErrBusinessNotFound) {
		t.Fatalf("expected ErrBusinessNotFound, got %v", err)
	}
}

func TestBusinessesListFiltering(t *testing.T) {
	db := openTestDB(t)
	repo := NewBusinessesRepository(db)
	ctx := context.Background()

	seedBusiness(t, repo, "Acme Plumbing", "")
	seedBusiness(t, repo, "Springfield Bakery", "")
	seedBusiness(t, repo, "Acme Widgets", "")

	matches, err := repo.List(ctx, dto.ListFilter{Q: "Acme"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}

	paged, err := repo.List(ctx, dto.ListFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("paged list: %v", err)
	}
	if len(paged) != 1 {
		t.Fatalf("expected one row per page, got %d", len(paged))
	}
}

func TestEmailsLifecycle(t *testing.T) {
	db := openTestDB(t)
	businesses := NewBusinessesRepository(db)
	emails := NewEmailsRepository(db)
	events := NewAnalyticsRepository(db)
	ctx := context.Background()

	biz := seedBusiness(t, businesses, "Acme", "info@acme.com")

	draft := &entity.Email{
		BusinessID:  biz.ID,
		Subject:     "Quick question",
		HTMLContent: "<p>Hello</p>",
	}
	if err := emails.Create(ctx, draft); err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if draft.SendStatus != entity.SendStatusDraft || draft.ResponseStatus != entity.ResponseStatusUnsent {
		t.Fatalf("unexpected initial statuses %+v", draft)
	}

	sentAt := time.Now().UTC().Truncate(time.Second)
	if err := emails.MarkSent(ctx, draft.ID, sentAt, json.RawMessage(`{"recipient":"info@acme.com"}`)); err != nil {
		t.Fatalf("mark sent: %v", err)
	}

	got, err := emails.GetByID(ctx, draft.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.SendStatus != entity.SendStatusSent {
		t.Fatalf("expected sent status, got %s", got.SendStatus)
	}
	if got.ResponseStatus != entity.ResponseStatusNone {
		t.Fatalf("send should flip response status to no_response, got %s", got.ResponseStatus)
	}
	if got.SentAt == nil || !got.SentAt.Equal(sentAt) {
		t.Fatalf("sent_at not recorded: %+v", got.SentAt)
	}

	recorded, err := events.ListByEmail(ctx, draft.ID)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(recorded) != 1 || recorded[0].EventType != entity.EventSent {
		t.Fatalf("expected exactly one sent event, got %+v", recorded)
	}

	if err := emails.UpdateResponseStatus(ctx, draft.ID, entity.ResponseStatusGood); err != nil {
		t.Fatalf("update response status: %v", err)
	}
	// Re-setting the same status is harmless.
	if err := emails.UpdateResponseStatus(ctx, draft.ID, entity.ResponseStatusGood); err != nil {
		t.Fatalf("idempotent status update: %v", err)
	}

	if err := emails.Delete(ctx, draft.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := emails.GetByID(ctx, draft.ID); !errors.Is(err, ErrEmailNotFound) {
		t.Fatalf("expected ErrEmailNotFound after delete, got %v", err)
	}
}

func TestEmailsListFilters(t *testing.T) {
	db := openTestDB(t)
	businesses := NewBusinessesRepository(db)
	emails := NewEmailsRepository(db)
	ctx := context.Background()

	biz := seedBusiness(t, businesses, "Acme", "")
	other := seedBusiness(t, businesses, "Other", "")

	for i, tc := range []struct {
		businessID uuid.UUID
		subject    string
		markSent   bool
	}{
		{biz.ID, "Intro offer", true},
		{biz.ID, "Follow up", false},
		{other.ID, "Intro elsewhere", false},
	} {
		email := &entity.Email{BusinessID: tc.businessID, Subject: tc.subject, HTMLContent: "<p>x</p>"}
		if err := emails.Create(ctx, email); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if tc.markSent {
			if err := emails.MarkSent(ctx, email.ID, time.Now().UTC(), nil); err != nil {
				t.Fatalf("mark sent %d: %v", i, err)
			}
		}
	}

	byBusiness, err := emails.List(ctx, dto.ListFilter{BusinessID: biz.ID.String()})
	if err != nil {
		t.Fatalf("list by business: %v", err)
	}
	if len(byBusiness) != 2 {
		t.Fatalf("expected 2 emails for business, got %d", len(byBusiness))
	}

	drafts, err := emails.List(ctx, dto.ListFilter{SendStatus: string(entity.SendStatusDraft)})
	if err != nil {
		t.Fatalf("list drafts: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("expected 2 drafts, got %d", len(drafts))
	}

	bySubject, err := emails.List(ctx, dto.ListFilter{Q: "Intro"})
	if err != nil {
		t.Fatalf("list by subject: %v", err)
	}
	if len(bySubject) != 2 {
		t.Fatalf("expected 2 subject matches, got %d", len(bySubject))
	}
}

func TestContactFrequency(t *testing.T) {
	db := openTestDB(t)
	businesses := NewBusinessesRepository(db)
	emails := NewEmailsRepository(db)
	ctx := context.Background()

	biz := seedBusiness(t, businesses, "Acme", "")

	first := &entity.Email{BusinessID: biz.ID, Subject: "one", HTMLContent: "x"}
	second := &entity.Email{BusinessID: biz.ID, Subject: "two", HTMLContent: "x"}
	third := &entity.Email{BusinessID: biz.ID, Subject: "draft", HTMLContent: "x"}
	for _, e := range []*entity.Email{first, second, third} {
		if err := emails.Create(ctx, e); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	earlier := time.Now().UTC().Add(-72 * time.Hour).Truncate(time.Second)
	later := time.Now().UTC().Add(-24 * time.Hour).Truncate(time.Second)
	if err := emails.MarkSent(ctx, first.ID, earlier, nil); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	if err := emails.MarkSent(ctx, second.ID, later, nil); err != nil {
		t.Fatalf("mark sent: %v", err)
	}

	freq, err := emails.ContactFrequency(ctx, biz.ID)
	if err != nil {
		t.Fatalf("contact frequency: %v", err)
	}
	if freq.TotalEmails != 3 || freq.SentEmails != 2 {
		t.Fatalf("unexpected counts %+v", freq)
	}
	if freq.FirstContactAt == nil || !freq.FirstContactAt.Equal(earlier) {
		t.Fatalf("unexpected first contact %+v", freq.FirstContactAt)
	}
	if freq.LastContactAt == nil || !freq.LastContactAt.Equal(later) {
		t.Fatalf("unexpected last contact %+v", freq.LastContactAt)
	}
	if freq.DaysSinceLastSent == nil || *freq.DaysSinceLastSent != 1 {
		t.Fatalf("unexpected days since last sent %+v", freq.DaysSinceLastSent)
	}
}

func TestNotesCRUDAndSearch(t *testing.T) {
	db := openTestDB(t)
	repo := NewNotesRepository(db)
	ctx := context.Background()

	category := "openers"
	note := &entity.Note{Title: "Trade show opener", Content: "We met at the expo", Category: &category}
	if err := repo.Create(ctx, note); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, &entity.Note{Title: "Pricing blurb", Content: "Plans start at"}); err != nil {
		t.Fatalf("create second: %v", err)
	}

	got, err := repo.GetByID(ctx, note.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Category == nil || *got.Category != "openers" {
		t.Fatalf("category did not round-trip: %+v", got)
	}

	got.Content = "We met at the spring expo"
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}

	matches, err := repo.List(ctx, dto.ListFilter{Q: "expo"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 1 || matches[0].Content != "We met at the spring expo" {
		t.Fatalf("unexpected search results %+v", matches)
	}

	byCategory, err := repo.List(ctx, dto.ListFilter{Category: "openers"})
	if err != nil {
		t.Fatalf("category filter: %v", err)
	}
	if len(byCategory) != 1 {
		t.Fatalf("expected one categorized note, got %d", len(byCategory))
	}

	if err := repo.Delete(ctx, note.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, note.ID); !errors.Is(err, ErrNoteNotFound) {
		t.Fatalf("expected ErrNoteNotFound, got %v", err)
	}
}

func TestAnalyticsAppendAndOverview(t *testing.T) {
	db := openTestDB(t)
	businesses := NewBusinessesRepository(db)
	emails := NewEmailsRepository(db)
	analytics := NewAnalyticsRepository(db)
	ctx := context.Background()

	biz := seedBusiness(t, businesses, "Acme", "")
	email := &entity.Email{BusinessID: biz.ID, Subject: "s", HTMLContent: "x"}
	if err := emails.Create(ctx, email); err != nil {
		t.Fatalf("create email: %v", err)
	}
	if err := emails.MarkSent(ctx, email.ID, time.Now().UTC(), nil); err != nil {
		t.Fatalf("mark sent: %v", err)
	}
	if err := analytics.Append(ctx, &entity.AnalyticsEvent{
		EmailID:   email.ID,
		EventType: entity.EventOpened,
		EventData: json.RawMessage(`{"ua":"test"}`),
	}); err != nil {
		t.Fatalf("append: %v", err)
	}

	counts, err := analytics.Overview(ctx, nil, nil)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if counts.TotalEmails != 1 || counts.Sent != 1 {
		t.Fatalf("unexpected email counts %+v", counts)
	}
	if counts.Events[entity.EventSent] != 1 || counts.Events[entity.EventOpened] != 1 {
		t.Fatalf("unexpected event counts %+v", counts.Events)
	}

	// A window in the past excludes everything.
	from := time.Now().UTC().Add(-48 * time.Hour)
	to := time.Now().UTC().Add(-24 * time.Hour)
	empty, err := analytics.Overview(ctx, &from, &to)
	if err != nil {
		t.Fatalf("windowed overview: %v", err)
	}
	if empty.TotalEmails != 0 || len(empty.Events) != 0 {
		t.Fatalf("expected empty window, got %+v", empty)
	}
}
