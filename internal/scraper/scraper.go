// Package scraper fetches business websites with stealth countermeasures and
// extracts structured data through a fixed battery of CSS-selector probes.
package scraper

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Bivtor/cold-cold-cold/internal/apperr"
	"github.com/Bivtor/cold-cold-cold/internal/entity"
	"github.com/Bivtor/cold-cold-cold/internal/retry"
	"github.com/Bivtor/cold-cold-cold/internal/service/quality"
)

// Fetcher loads a page and returns its parsed document. Implementations own
// whatever long-lived resource (connection pool, browser handle) backs them;
// Close releases it.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*goquery.Document, error)
	Close()
}

// Result is a successful extraction plus its quality verdict.
type Result struct {
	Data                entity.ScrapedData `json:"data"`
	QualityScore        float64            `json:"qualityScore"`
	QualityIssues       []string           `json:"qualityIssues,omitempty"`
	RequiresManualInput bool               `json:"requiresManualInput"`
}

// Scraper runs the fetch-and-extract pipeline. It holds no per-request state.
type Scraper struct {
	fetcher Fetcher
	policy  retry.Policy
}

// New builds a scraper around the given fetcher. A nil fetcher gets the
// default stealth HTTP fetcher with the provided timeout.
func New(fetcher Fetcher, timeout time.Duration) *Scraper {
	if fetcher == nil {
		fetcher = NewStealthFetcher(timeout)
	}
	return &Scraper{fetcher: fetcher, policy: retry.DefaultPolicy}
}

// Close releases the underlying fetcher resource.
func (s *Scraper) Close() {
	s.fetcher.Close()
}

// Scrape validates the URL, fetches the page (retrying retryable failures
// only) and runs the extraction battery. It persists nothing.
func (s *Scraper) Scrape(ctx context.Context, pageURL string) (Result, error) {
	normalized, err := validateURL(pageURL)
	if err != nil {
		return Result{}, err
	}

	doc, err := retry.Do(ctx, s.policy, apperr.IsRetryable, func(ctx context.Context) (*goquery.Document, error) {
		return s.fetcher.Fetch(ctx, normalized)
	})
	if err != nil {
		return Result{}, apperr.ClassifyScrape(err)
	}

	data := extract(doc, normalized)
	verdict := quality.Score(data)

	return Result{
		Data:                data,
		QualityScore:        verdict.Score,
		QualityIssues:       verdict.Issues,
		RequiresManualInput: verdict.RequiresManualInput(),
	}, nil
}

// validateURL accepts http/https URLs only, defaulting bare hosts to https.
func validateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", apperr.New(apperr.CodeInvalidURL, "a website URL is required", false)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || !strings.Contains(u.Host, ".") {
		return "", apperr.New(apperr.CodeInvalidURL, "the website URL is not valid", false)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", apperr.New(apperr.CodeInvalidURL, "only http and https URLs can be scraped", false)
	}
	return u.String(), nil
}

// StealthFetcher is the default fetcher: a plain HTTP client dressed up as a
// browser. The handle is long-lived and shared across requests.
type StealthFetcher struct {
	client *http.Client

	// Human-like pause before each navigation; shrunk in tests.
	DelayMin time.Duration
	DelayMax time.Duration
}

// NewStealthFetcher builds the default fetcher with a fixed navigation timeout.
func NewStealthFetcher(timeout time.Duration) *StealthFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &StealthFetcher{
		client:   &http.Client{Timeout: timeout},
		DelayMin: 2 * time.Second,
		DelayMax: 5 * time.Second,
	}
}

// Fetch loads the page after a randomized human delay and parses the body.
func (f *StealthFetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(humanDelay(f.DelayMin, f.DelayMax)):
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidURL, "could not build the page request", false, err)
	}
	applyStealthHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperr.ClassifyScrape(err)
	}
	defer resp.Body.Close()

	if statusErr := apperr.ClassifyScrapeStatus(resp.StatusCode); statusErr != nil {
		return nil, statusErr
	}

	body := io.Reader(resp.Body)
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeParsing, "could not decompress the page", false, err)
		}
		defer gz.Close()
		body = gz
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeParsing, "could not parse the page", false, err)
	}
	return doc, nil
}

// Close releases idle connections held by the client.
func (f *StealthFetcher) Close() {
	f.client.CloseIdleConnections()
}

var _ Fetcher = (*StealthFetcher)(nil)
