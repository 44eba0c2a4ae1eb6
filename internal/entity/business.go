package entity

import (
	"time"

	"github.com/google/uuid"
)

// Business represents an outreach target stored in the catalogue.
type Business struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	WebsiteURL   *string      `json:"website_url,omitempty"`
	ContactEmail *string      `json:"contact_email,omitempty"`
	Description  *string      `json:"description,omitempty"`
	ScrapedData  *ScrapedData `json:"scraped_data,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// ContactInfo holds whatever contact details were found for a business.
// All fields are optional; absent values stay empty strings.
type ContactInfo struct {
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// SocialLinks stores the canonical URL for each supported network.
type SocialLinks struct {
	LinkedIn string `json:"linkedin,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Facebook string `json:"facebook,omitempty"`
}

// ScrapedData is the structured record extracted from a website or supplied
// manually. It is embedded in Business as a JSON blob and consumed transiently
// by the generation pipeline.
type ScrapedData struct {
	BusinessName string      `json:"business_name"`
	Description  string      `json:"description"`
	Services     []string    `json:"services"`
	ContactInfo  ContactInfo `json:"contact_info"`
	SocialLinks  SocialLinks `json:"social_links"`
	KeyContent   []string    `json:"key_content"`
}

// IsEmpty reports whether no field carries a value.
func (d ScrapedData) IsEmpty() bool {
	return d.BusinessName == "" &&
		d.Description == "" &&
		len(d.Services) == 0 &&
		d.ContactInfo == (ContactInfo{}) &&
		d.SocialLinks == (SocialLinks{}) &&
		len(d.KeyContent) == 0
}
