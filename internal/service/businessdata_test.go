package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Bivtor/cold-cold-cold/internal/apperr"
	"github.com/Bivtor/cold-cold-cold/internal/database"
	"github.com/Bivtor/cold-cold-cold/internal/dto"
	"github.com/Bivtor/cold-cold-cold/internal/entity"
	"github.com/Bivtor/cold-cold-cold/internal/repository"
	"github.com/Bivtor/cold-cold-cold/internal/scraper"
)

type fakeScraper struct {
	result scraper.Result
	err    error
	calls  int
}

func (f *fakeScraper) Scrape(ctx context.Context, pageURL string) (scraper.Result, error) {
	f.calls++
	return f.result, f.err
}

func newCollectService(t *testing.T, s SiteScraper) (*BusinessDataService, repository.BusinessesRepository) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	businesses := repository.NewBusinessesRepository(db)
	return NewBusinessDataService(s, businesses), businesses
}

func richScrape() scraper.Result {
	return scraper.Result{
		Data: entity.ScrapedData{
			BusinessName: "Acme Plumbing",
			Description:  "Residential and commercial plumbing since 1998.",
			Services:     []string{"Drain cleaning", "Repiping"},
			ContactInfo:  entity.ContactInfo{Email: "info@acmeplumbing.com", Phone: "+14155552671"},
			KeyContent:   []string{"24/7 emergency call-outs"},
		},
		QualityScore: 0.9,
	}
}

func TestCollectRequiresSomeInput(t *testing.T) {
	fake := &fakeScraper{}
	svc, _ := newCollectService(t, fake)

	_, err := svc.Collect(context.Background(), dto.ScrapeRequest{})
	if !errors.Is(err, ErrNoInput) {
		t.Fatalf("expected ErrNoInput, got %v", err)
	}
	if fake.calls != 0 {
		t.Fatalf("scraper should not run, got %d calls", fake.calls)
	}
}

func TestCollectManualOnly(t *testing.T) {
	fake := &fakeScraper{}
	svc, businesses := newCollectService(t, fake)

	result, err := svc.Collect(context.Background(), dto.ScrapeRequest{
		ManualInput: &dto.ManualInput{
			BusinessName: "Springfield Bakery",
			Description:  "Family bakery specialising in sourdough and rye.",
			Email:        "hello@springfieldbakery.com",
			Notes:        "Met the owner at the farmers market",
		},
	})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if result.Source != SourceManual {
		t.Fatalf("expected manual source, got %q", result.Source)
	}
	if result.RequiresManualInput {
		t.Fatal("manual path should never ask for manual input")
	}
	if fake.calls != 0 {
		t.Fatalf("scraper should not run without a URL, got %d calls", fake.calls)
	}
	if len(result.Data.KeyContent) != 1 {
		t.Fatalf("notes should land in key content, got %+v", result.Data.KeyContent)
	}

	stored, err := businesses.GetByContactEmail(context.Background(), "hello@springfieldbakery.com")
	if err != nil {
		t.Fatalf("business was not persisted: %v", err)
	}
	if stored.Name != "Springfield Bakery" {
		t.Fatalf("unexpected stored business %+v", stored)
	}
}

func TestCollectManualValidation(t *testing.T) {
	svc, _ := newCollectService(t, &fakeScraper{})

	_, err := svc.Collect(context.Background(), dto.ScrapeRequest{
		ManualInput: &dto.ManualInput{Email: "not-an-address"},
	})
	var manualErr *ManualInputError
	if !errors.As(err, &manualErr) {
		t.Fatalf("expected ManualInputError, got %v", err)
	}
	if len(manualErr.Errors) == 0 {
		t.Fatal("expected individual validation messages")
	}
}

func TestCollectScrapeOnly(t *testing.T) {
	fake := &fakeScraper{result: richScrape()}
	svc, businesses := newCollectService(t, fake)

	result, err := svc.Collect(context.Background(), dto.ScrapeRequest{URL: "https://acmeplumbing.com"})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if result.Source != SourceScraped {
		t.Fatalf("expected scraped source, got %q", result.Source)
	}
	if result.Data.BusinessName != "Acme Plumbing" {
		t.Fatalf("unexpected data %+v", result.Data)
	}
	if len(result.Suggestions) != 0 {
		t.Fatalf("good scrape should carry no suggestions, got %+v", result.Suggestions)
	}

	stored, err := businesses.GetByContactEmail(context.Background(), "info@acmeplumbing.com")
	if err != nil {
		t.Fatalf("business was not persisted: %v", err)
	}
	if stored.WebsiteURL == nil || *stored.WebsiteURL != "https://acmeplumbing.com" {
		t.Fatalf("website not recorded: %+v", stored.WebsiteURL)
	}
}

func TestCollectScrapeOnlyFailure(t *testing.T) {
	fake := &fakeScraper{err: apperr.New(apperr.CodeAccessBlocked, "blocked", true)}
	svc, _ := newCollectService(t, fake)

	_, err := svc.Collect(context.Background(), dto.ScrapeRequest{URL: "https://blocked.example.com"})
	if apperr.CodeOf(err) != apperr.CodeAccessBlocked {
		t.Fatalf("expected the scrape failure to surface, got %v", err)
	}
}

func TestCollectThinScrapeSuggestsManualEntry(t *testing.T) {
	fake := &fakeScraper{result: scraper.Result{
		Data:                entity.ScrapedData{BusinessName: "Acme"},
		QualityScore:        0.3,
		RequiresManualInput: true,
	}}
	svc, _ := newCollectService(t, fake)

	result, err := svc.Collect(context.Background(), dto.ScrapeRequest{URL: "https://thin.example.com"})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if !result.RequiresManualInput {
		t.Fatal("thin result should ask for manual input")
	}
	if len(result.Suggestions) == 0 {
		t.Fatal("thin result should include manual-entry guidance")
	}
}

func TestCollectMergedManualWins(t *testing.T) {
	fake := &fakeScraper{result: richScrape()}
	svc, businesses := newCollectService(t, fake)

	result, err := svc.Collect(context.Background(), dto.ScrapeRequest{
		URL: "https://acmeplumbing.com",
		ManualInput: &dto.ManualInput{
			BusinessName: "Acme Plumbing & Heating",
			Notes:        "Ask about the heating division",
		},
	})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if result.Source != SourceMerged {
		t.Fatalf("expected merged source, got %q", result.Source)
	}
	if result.Data.BusinessName != "Acme Plumbing & Heating" {
		t.Fatalf("manual name should win, got %q", result.Data.BusinessName)
	}
	if result.Data.ContactInfo.Email != "info@acmeplumbing.com" {
		t.Fatalf("scraped email should survive the merge, got %q", result.Data.ContactInfo.Email)
	}
	if len(result.Data.KeyContent) != 2 {
		t.Fatalf("manual notes should append to key content, got %+v", result.Data.KeyContent)
	}

	stored, err := businesses.GetByContactEmail(context.Background(), "info@acmeplumbing.com")
	if err != nil {
		t.Fatalf("business was not persisted: %v", err)
	}
	if stored.Name != "Acme Plumbing & Heating" {
		t.Fatalf("merged name not persisted: %+v", stored)
	}
}

func TestCollectMergedFallsBackToManual(t *testing.T) {
	fake := &fakeScraper{err: apperr.New(apperr.CodeTimeout, "timed out", true)}
	svc, _ := newCollectService(t, fake)

	result, err := svc.Collect(context.Background(), dto.ScrapeRequest{
		URL:         "https://slow.example.com",
		ManualInput: &dto.ManualInput{BusinessName: "Slow Co", Email: "hi@slow.example.com"},
	})
	if err != nil {
		t.Fatalf("manual fallback should succeed, got %v", err)
	}
	if result.Source != SourceManual {
		t.Fatalf("expected manual source after fallback, got %q", result.Source)
	}
	if len(result.Suggestions) == 0 {
		t.Fatal("fallback should explain why the website contributed nothing")
	}
}

func TestCollectPreferManualSkipsScrape(t *testing.T) {
	fake := &fakeScraper{result: richScrape()}
	svc, _ := newCollectService(t, fake)

	result, err := svc.Collect(context.Background(), dto.ScrapeRequest{
		URL:          "https://acmeplumbing.com",
		PreferManual: true,
		ManualInput:  &dto.ManualInput{BusinessName: "Acme Plumbing"},
	})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if result.Source != SourceManual || fake.calls != 0 {
		t.Fatalf("preferManual should skip scraping, got source %q after %d calls", result.Source, fake.calls)
	}
}

func TestCollectPreferManualWithoutDetailsFailsValidation(t *testing.T) {
	fake := &fakeScraper{result: richScrape()}
	svc, _ := newCollectService(t, fake)

	_, err := svc.Collect(context.Background(), dto.ScrapeRequest{
		URL:          "https://acmeplumbing.com",
		PreferManual: true,
	})
	var manualErr *ManualInputError
	if !errors.As(err, &manualErr) {
		t.Fatalf("expected ManualInputError, got %v", err)
	}
	if fake.calls != 0 {
		t.Fatalf("preferManual must never fall through to scraping, got %d calls", fake.calls)
	}
}

func TestCollectDeduplicatesByContactEmail(t *testing.T) {
	fake := &fakeScraper{result: richScrape()}
	svc, businesses := newCollectService(t, fake)
	ctx := context.Background()

	if _, err := svc.Collect(ctx, dto.ScrapeRequest{URL: "https://acmeplumbing.com"}); err != nil {
		t.Fatalf("first collect: %v", err)
	}
	updated := richScrape()
	updated.Data.BusinessName = "Acme Plumbing Ltd"
	fake.result = updated
	if _, err := svc.Collect(ctx, dto.ScrapeRequest{URL: "https://acmeplumbing.com"}); err != nil {
		t.Fatalf("second collect: %v", err)
	}

	all, err := businesses.List(ctx, dto.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one deduplicated business, got %d", len(all))
	}
	if all[0].Name != "Acme Plumbing Ltd" {
		t.Fatalf("repeat collection should refresh the record, got %+v", all[0])
	}
}
