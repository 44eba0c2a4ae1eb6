package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Bivtor/cold-cold-cold/internal/apperr"
	"github.com/Bivtor/cold-cold-cold/internal/dto"
	"github.com/Bivtor/cold-cold-cold/internal/entity"
	"github.com/Bivtor/cold-cold-cold/internal/repository"
	"github.com/Bivtor/cold-cold-cold/internal/scraper"
	"github.com/Bivtor/cold-cold-cold/internal/service/quality"
)

// Data source labels reported back to the client.
const (
	SourceScraped = "scraped"
	SourceManual  = "manual"
	SourceMerged  = "merged"
)

// ErrNoInput is returned when a collection request carries neither a URL nor
// manual details.
var ErrNoInput = errors.New("either a website URL or manual business details are required")

// ManualInputError carries the individual validation failures of a manual
// submission.
type ManualInputError struct {
	Errors []string
}

func (e *ManualInputError) Error() string {
	return "manual input is not valid: " + strings.Join(e.Errors, "; ")
}

// SiteScraper is the slice of the scraper the orchestrator needs.
type SiteScraper interface {
	Scrape(ctx context.Context, pageURL string) (scraper.Result, error)
}

// BusinessDataService decides how business data gets collected: scraped,
// entered manually, or both merged. Whatever survives is persisted as a
// business record.
type BusinessDataService struct {
	scraper    SiteScraper
	businesses repository.BusinessesRepository
}

// NewBusinessDataService wires the collection orchestrator.
func NewBusinessDataService(s SiteScraper, businesses repository.BusinessesRepository) *BusinessDataService {
	return &BusinessDataService{scraper: s, businesses: businesses}
}

// Collect runs one of four paths depending on what the request carries:
//
//   - manual details only (or preferManual set): validate and convert them
//   - URL only: scrape, surfacing fallback suggestions on failure
//   - URL plus manual details: scrape and merge, falling back to the manual
//     details alone when the scrape fails
//   - neither: ErrNoInput
//
// Every successful path persists the business, deduplicating on contact email.
func (s *BusinessDataService) Collect(ctx context.Context, req dto.ScrapeRequest) (*dto.ScrapeResult, error) {
	url := strings.TrimSpace(req.URL)
	hasManual := req.ManualInput != nil && !req.ManualInput.IsEmpty()

	manual := dto.ManualInput{}
	if req.ManualInput != nil {
		manual = *req.ManualInput
	}

	switch {
	case url == "" && !hasManual:
		return nil, ErrNoInput
	case url == "" || req.PreferManual:
		// preferManual wins even over a usable URL; an empty submission then
		// fails manual validation instead of silently being scraped.
		return s.collectManual(ctx, manual, url, nil)
	case !hasManual:
		return s.collectScraped(ctx, url)
	default:
		return s.collectMerged(ctx, url, manual)
	}
}

func (s *BusinessDataService) collectManual(ctx context.Context, manual dto.ManualInput, url string, scrapeFailure error) (*dto.ScrapeResult, error) {
	if v := ValidateManualInput(manual); !v.Valid {
		return nil, &ManualInputError{Errors: v.Errors}
	}

	data := ConvertManualInput(manual)
	verdict := quality.Score(data)

	result := &dto.ScrapeResult{
		Data:                &data,
		QualityScore:        verdict.Score,
		QualityIssues:       verdict.Issues,
		RequiresManualInput: false,
		Source:              SourceManual,
	}
	if scrapeFailure != nil {
		result.Suggestions = FallbackSuggestions(apperr.CodeOf(scrapeFailure))
	}

	website := strings.TrimSpace(manual.Website)
	if website == "" {
		website = url
	}
	if err := s.persist(ctx, data, website); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *BusinessDataService) collectScraped(ctx context.Context, url string) (*dto.ScrapeResult, error) {
	scraped, err := s.scraper.Scrape(ctx, url)
	if err != nil {
		return nil, err
	}

	result := &dto.ScrapeResult{
		Data:                &scraped.Data,
		QualityScore:        scraped.QualityScore,
		QualityIssues:       scraped.QualityIssues,
		RequiresManualInput: scraped.RequiresManualInput,
		Source:              SourceScraped,
	}
	if scraped.RequiresManualInput {
		result.Suggestions = FallbackSuggestions("")
	}

	if err := s.persist(ctx, scraped.Data, url); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *BusinessDataService) collectMerged(ctx context.Context, url string, manual dto.ManualInput) (*dto.ScrapeResult, error) {
	scraped, err := s.scraper.Scrape(ctx, url)
	if err != nil {
		// The manual details still describe the business; use them alone and
		// tell the caller why the website contributed nothing.
		return s.collectManual(ctx, manual, url, err)
	}

	if v := ValidateManualInput(manual); !v.Valid {
		return nil, &ManualInputError{Errors: v.Errors}
	}

	merged := Merge(scraped.Data, manual)
	verdict := quality.Score(merged)

	result := &dto.ScrapeResult{
		Data:                &merged,
		QualityScore:        verdict.Score,
		QualityIssues:       verdict.Issues,
		RequiresManualInput: verdict.RequiresManualInput(),
		Source:              SourceMerged,
	}
	if err := s.persist(ctx, merged, url); err != nil {
		return nil, err
	}
	return result, nil
}

// persist stores or refreshes the business record behind the collected data.
// Records are matched on contact email so repeated collections of the same
// business update in place instead of piling up duplicates.
func (s *BusinessDataService) persist(ctx context.Context, data entity.ScrapedData, website string) error {
	name := strings.TrimSpace(data.BusinessName)
	if name == "" {
		return nil
	}
	snapshot := data

	business := &entity.Business{Name: name, ScrapedData: &snapshot}
	if website != "" {
		business.WebsiteURL = &website
	}
	if data.ContactInfo.Email != "" {
		email := data.ContactInfo.Email
		business.ContactEmail = &email
	}
	if data.Description != "" {
		desc := data.Description
		business.Description = &desc
	}

	if business.ContactEmail != nil {
		existing, err := s.businesses.GetByContactEmail(ctx, *business.ContactEmail)
		switch {
		case err == nil:
			business.ID = existing.ID
			if err := s.businesses.Update(ctx, business); err != nil {
				return apperr.Database("update business", err)
			}
			return nil
		case !errors.Is(err, repository.ErrBusinessNotFound):
			return apperr.Database("look up business", err)
		}
	}

	if err := s.businesses.Create(ctx, business); err != nil {
		return apperr.Database("create business", err)
	}
	return nil
}
