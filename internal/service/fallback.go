package service

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/idna"

	"github.com/Bivtor/cold-cold-cold/internal/apperr"
	"github.com/Bivtor/cold-cold-cold/internal/dto"
	"github.com/Bivtor/cold-cold-cold/internal/entity"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-']+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const (
	maxNameLength        = 200
	maxDescriptionLength = 2000
)

// ValidationResult reports whether manual input is usable and why not.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidateManualInput checks the user-supplied business description. It is
// pure and performs no I/O.
func ValidateManualInput(input dto.ManualInput) ValidationResult {
	var errs []string

	name := strings.TrimSpace(input.BusinessName)
	if name == "" {
		errs = append(errs, "business name is required")
	} else if len(name) > maxNameLength {
		errs = append(errs, "business name must be 200 characters or fewer")
	}

	if len(strings.TrimSpace(input.Description)) > maxDescriptionLength {
		errs = append(errs, "description must be 2000 characters or fewer")
	}

	if email := strings.TrimSpace(input.Email); email != "" && !ValidEmail(email) {
		errs = append(errs, "email address is not valid")
	}

	if site := strings.TrimSpace(input.Website); site != "" && !validWebsite(site) {
		errs = append(errs, "website URL is not valid")
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// ValidEmail reports whether the address is well-formed with a resolvable
// (punycode-encodable) domain.
func ValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return false
	}
	domain := email[strings.LastIndex(email, "@")+1:]
	ascii, err := idna.Lookup.ToASCII(domain)
	return err == nil && ascii != ""
}

func validWebsite(raw string) bool {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// ConvertManualInput maps manual fields 1:1 into the ScrapedData shape,
// leaving everything not supplied at its empty default.
func ConvertManualInput(input dto.ManualInput) entity.ScrapedData {
	data := entity.ScrapedData{
		BusinessName: strings.TrimSpace(input.BusinessName),
		Description:  strings.TrimSpace(input.Description),
		ContactInfo: entity.ContactInfo{
			Email:   strings.TrimSpace(input.Email),
			Phone:   strings.TrimSpace(input.Phone),
			Address: strings.TrimSpace(input.Address),
		},
	}
	for _, s := range input.Services {
		if s = strings.TrimSpace(s); s != "" {
			data.Services = append(data.Services, s)
		}
	}
	if notes := strings.TrimSpace(input.Notes); notes != "" {
		data.KeyContent = append(data.KeyContent, notes)
	}
	return data
}

// Merge combines scraped and manual data. Manual values win whenever present
// and non-empty; the social-media block always comes from scraped data because
// manual input has none; manual notes are appended to scraped key content
// rather than replacing it.
func Merge(scraped entity.ScrapedData, manual dto.ManualInput) entity.ScrapedData {
	merged := scraped

	if v := strings.TrimSpace(manual.BusinessName); v != "" {
		merged.BusinessName = v
	}
	if v := strings.TrimSpace(manual.Description); v != "" {
		merged.Description = v
	}
	if services := nonEmpty(manual.Services); len(services) > 0 {
		merged.Services = services
	}
	if v := strings.TrimSpace(manual.Email); v != "" {
		merged.ContactInfo.Email = v
	}
	if v := strings.TrimSpace(manual.Phone); v != "" {
		merged.ContactInfo.Phone = v
	}
	if v := strings.TrimSpace(manual.Address); v != "" {
		merged.ContactInfo.Address = v
	}
	if notes := strings.TrimSpace(manual.Notes); notes != "" {
		merged.KeyContent = append(append([]string{}, scraped.KeyContent...), notes)
	}

	return merged
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// FallbackSuggestions produces actionable hints tailored by failure code,
// always ending with generic manual-entry guidance.
func FallbackSuggestions(code apperr.Code) []string {
	var hints []string
	switch code {
	case apperr.CodeAccessBlocked:
		hints = append(hints, "The website blocks automated visitors; open it in your browser and copy the key details.")
	case apperr.CodeTimeout:
		hints = append(hints, "The website was slow to respond; try scraping again in a few minutes.")
	case apperr.CodeInvalidURL:
		hints = append(hints, "Check the URL for typos and include http:// or https://.")
	case apperr.CodeNetwork:
		hints = append(hints, "Check your internet connection and retry.")
	case apperr.CodeParsing:
		hints = append(hints, "The page could not be read; it may be a single-page app or behind a login.")
	}
	hints = append(hints, "You can enter the business details manually below.")
	return hints
}
