package generator

import (
	"fmt"
	"strings"

	"github.com/Bivtor/cold-cold-cold/internal/dto"
	"github.com/Bivtor/cold-cold-cold/internal/entity"
)

const defaultInstructions = `Write a concise, friendly cold outreach email to this business.
Reference specific details from the business context so the email feels personal.
Keep it under 200 words, end with a clear low-pressure call to action, and do not invent facts.
Return only the email body with no subject line.`

// buildEmailPrompt assembles every provided section under fixed labeled
// headers. Sections with no content are omitted entirely.
func buildEmailPrompt(req dto.GenerateRequest) string {
	var b strings.Builder

	writeSection(&b, "BUSINESS CONTEXT", req.BusinessContext)
	if req.ScrapedData != nil && !req.ScrapedData.IsEmpty() {
		writeSection(&b, "WEBSITE DATA", formatScrapedData(*req.ScrapedData))
	}
	writeSection(&b, "MANUAL NOTES", req.ManualContent)
	writeSection(&b, "PERSONAL NOTES", req.PersonalNotes)

	instructions := strings.TrimSpace(req.PromptTemplate)
	if instructions == "" {
		instructions = defaultInstructions
	}
	writeSection(&b, "INSTRUCTIONS", instructions)

	return strings.TrimSpace(b.String())
}

func buildSubjectPrompt(body, businessName string) string {
	var b strings.Builder
	writeSection(&b, "EMAIL BODY", body)
	if businessName != "" {
		writeSection(&b, "RECIPIENT", businessName)
	}
	writeSection(&b, "INSTRUCTIONS", `Write one subject line for this email.
Under 80 characters, specific and honest, no clickbait, no exclamation marks, no emoji.
Return only the subject line.`)
	return strings.TrimSpace(b.String())
}

func buildRefinePrompt(original, feedback string) string {
	var b strings.Builder
	writeSection(&b, "ORIGINAL EMAIL", original)
	writeSection(&b, "FEEDBACK", feedback)
	writeSection(&b, "INSTRUCTIONS", `Rewrite the original email applying the feedback.
Keep the same overall intent and length. Return only the revised email body.`)
	return strings.TrimSpace(b.String())
}

func writeSection(b *strings.Builder, header, content string) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	fmt.Fprintf(b, "%s:\n%s\n\n", header, content)
}

func formatScrapedData(d entity.ScrapedData) string {
	var lines []string
	if d.BusinessName != "" {
		lines = append(lines, "Name: "+d.BusinessName)
	}
	if d.Description != "" {
		lines = append(lines, "Description: "+d.Description)
	}
	if len(d.Services) > 0 {
		lines = append(lines, "Services: "+strings.Join(d.Services, ", "))
	}
	if d.ContactInfo.Email != "" {
		lines = append(lines, "Email: "+d.ContactInfo.Email)
	}
	if d.ContactInfo.Phone != "" {
		lines = append(lines, "Phone: "+d.ContactInfo.Phone)
	}
	if d.ContactInfo.Address != "" {
		lines = append(lines, "Address: "+d.ContactInfo.Address)
	}
	if len(d.KeyContent) > 0 {
		lines = append(lines, "Highlights: "+strings.Join(d.KeyContent, "; "))
	}
	return strings.Join(lines, "\n")
}
