// Package quality scores scraped business data for completeness. Both the
// scraper and the business-data orchestrator call this one function, so the
// weighting cannot drift between them.
package quality

import (
	"strings"

	"github.com/Bivtor/cold-cold-cold/internal/entity"
)

// Weighting of each signal; the weights sum to 1.0.
const (
	weightName         = 0.30
	weightDescription  = 0.15
	weightLongDesc     = 0.10
	weightEmail        = 0.20
	weightPhone        = 0.10
	weightServices     = 0.10
	weightKeyContent   = 0.05
	longDescThreshold  = 20
	// ReviewThreshold is the score below which results are flagged for manual review.
	ReviewThreshold = 0.5
)

// Result reports the aggregate score and what is missing.
type Result struct {
	Score  float64  `json:"score"`
	Issues []string `json:"issues,omitempty"`
}

// RequiresManualInput reports whether the data is too thin to use as-is.
func (r Result) RequiresManualInput() bool {
	return r.Score < ReviewThreshold
}

// Score evaluates the provided data and returns the weighted 0-1 score with a
// list of missing-signal issues. The score is monotonically non-decreasing as
// more fields become present.
func Score(d entity.ScrapedData) Result {
	var score float64
	var issues []string

	if strings.TrimSpace(d.BusinessName) != "" {
		score += weightName
	} else {
		issues = append(issues, "business name missing")
	}

	desc := strings.TrimSpace(d.Description)
	if desc != "" {
		score += weightDescription
		if len(desc) > longDescThreshold {
			score += weightLongDesc
		} else {
			issues = append(issues, "description is very short")
		}
	} else {
		issues = append(issues, "description missing")
	}

	if strings.TrimSpace(d.ContactInfo.Email) != "" {
		score += weightEmail
	} else {
		issues = append(issues, "contact email missing")
	}

	if strings.TrimSpace(d.ContactInfo.Phone) != "" {
		score += weightPhone
	} else {
		issues = append(issues, "contact phone missing")
	}

	if hasValue(d.Services) {
		score += weightServices
	} else {
		issues = append(issues, "no services listed")
	}

	if hasValue(d.KeyContent) {
		score += weightKeyContent
	} else {
		issues = append(issues, "no key content extracted")
	}

	return Result{Score: score, Issues: issues}
}

func hasValue(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}
