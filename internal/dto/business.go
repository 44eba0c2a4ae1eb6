package dto

import "time"

// BusinessRequest is the payload for creating or updating a business.
type BusinessRequest struct {
	Name         string `json:"name"`
	WebsiteURL   string `json:"websiteUrl,omitempty"`
	ContactEmail string `json:"contactEmail,omitempty"`
	Description  string `json:"description,omitempty"`
}

// ManualInput is the user-supplied business description used when scraping is
// skipped, fails, or under-delivers. It has no social-media fields.
type ManualInput struct {
	BusinessName string   `json:"businessName"`
	Description  string   `json:"description,omitempty"`
	Services     []string `json:"services,omitempty"`
	Email        string   `json:"email,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Address      string   `json:"address,omitempty"`
	Website      string   `json:"website,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

// IsEmpty reports whether no field carries a value.
func (m ManualInput) IsEmpty() bool {
	return m.BusinessName == "" && m.Description == "" && len(m.Services) == 0 &&
		m.Email == "" && m.Phone == "" && m.Address == "" && m.Website == "" && m.Notes == ""
}

// ListFilter contains query parameters for listing endpoints.
type ListFilter struct {
	Q              string
	BusinessID     string
	SendStatus     string
	ResponseStatus string
	Category       string
	DateFrom       *time.Time
	DateTo         *time.Time
	Limit          int
	Offset         int
}
