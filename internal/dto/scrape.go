package dto

import "github.com/Bivtor/cold-cold-cold/internal/entity"

// ScrapeRequest is the payload used by the scraping endpoint. URL and manual
// input are both optional; the orchestrator decides which path to take.
type ScrapeRequest struct {
	URL          string       `json:"url,omitempty"`
	ManualInput  *ManualInput `json:"manualInput,omitempty"`
	PreferManual bool         `json:"preferManual,omitempty"`
}

// ScrapeResult is the orchestrator's answer for both scrape and manual paths.
type ScrapeResult struct {
	Data                *entity.ScrapedData `json:"data,omitempty"`
	QualityScore        float64             `json:"qualityScore"`
	QualityIssues       []string            `json:"qualityIssues,omitempty"`
	RequiresManualInput bool                `json:"requiresManualInput"`
	Source              string              `json:"source"`
	Suggestions         []string            `json:"suggestions,omitempty"`
}

// GenerateRequest is the payload for email body generation.
type GenerateRequest struct {
	BusinessContext string              `json:"businessContext"`
	PersonalNotes   string              `json:"personalNotes,omitempty"`
	ManualContent   string              `json:"manualContent,omitempty"`
	ScrapedData     *entity.ScrapedData `json:"scrapedData,omitempty"`
	PromptTemplate  string              `json:"promptTemplate,omitempty"`
}

// SubjectRequest is the payload for subject-line generation.
type SubjectRequest struct {
	EmailBody    string `json:"emailBody"`
	BusinessName string `json:"businessName,omitempty"`
}

// RefineRequest is the payload for feedback-driven refinement.
type RefineRequest struct {
	OriginalEmail string `json:"originalEmail"`
	Feedback      string `json:"feedback"`
}
