package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nyaruka/phonenumbers"

	"github.com/Bivtor/cold-cold-cold/internal/entity"
)

const (
	maxNameLen        = 120
	maxDescriptionLen = 500
	maxServices       = 10
	maxServiceLen     = 100
	maxKeyContent     = 8
	maxSnippetLen     = 200
	defaultRegion     = "US"
)

var (
	emailExpr = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneExpr = regexp.MustCompile(`\+?[\d][\d\s().\-]{7,18}\d`)

	// Addresses captured from hrefs that are really asset names.
	assetSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp"}
)

// extract runs the ordered probe battery against a parsed page.
func extract(doc *goquery.Document, pageURL string) entity.ScrapedData {
	data := entity.ScrapedData{
		BusinessName: extractName(doc, pageURL),
		Description:  extractDescription(doc),
		Services:     extractServices(doc),
		KeyContent:   extractKeyContent(doc),
	}
	data.ContactInfo = extractContactInfo(doc)
	data.SocialLinks = extractSocialLinks(doc)
	return data
}

func extractName(doc *goquery.Document, pageURL string) string {
	if v, ok := doc.Find(`meta[property="og:site_name"]`).Attr("content"); ok {
		if v = clean(v, maxNameLen); v != "" {
			return v
		}
	}
	for _, sel := range []string{"h1", ".logo", ".brand", ".site-title", "header .name"} {
		if v := clean(doc.Find(sel).First().Text(), maxNameLen); v != "" {
			return v
		}
	}
	if title := clean(doc.Find("title").First().Text(), maxNameLen); title != "" {
		// Titles often read "Name | Tagline"; keep the name part.
		for _, sep := range []string{" | ", " - ", " – ", " — "} {
			if idx := strings.Index(title, sep); idx > 0 {
				return strings.TrimSpace(title[:idx])
			}
		}
		return title
	}
	if u, err := url.Parse(pageURL); err == nil {
		return strings.TrimPrefix(u.Hostname(), "www.")
	}
	return ""
}

func extractDescription(doc *goquery.Document) string {
	for _, sel := range []string{`meta[name="description"]`, `meta[property="og:description"]`} {
		if v, ok := doc.Find(sel).Attr("content"); ok {
			if v = clean(v, maxDescriptionLen); v != "" {
				return v
			}
		}
	}
	for _, sel := range []string{".hero p", ".about p", ".intro p", "#about p"} {
		if v := clean(doc.Find(sel).First().Text(), maxDescriptionLen); len(v) > 40 {
			return v
		}
	}
	var fallback string
	doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v := clean(s.Text(), maxDescriptionLen); len(v) > 80 {
			fallback = v
			return false
		}
		return true
	})
	return fallback
}

func extractServices(doc *goquery.Document) []string {
	var services []string
	seen := map[string]struct{}{}

	add := func(text string) {
		if len(services) >= maxServices {
			return
		}
		v := clean(text, maxServiceLen)
		if v == "" || len(v) < 3 {
			return
		}
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		services = append(services, v)
	}

	for _, sel := range []string{
		".services li", ".service li", "#services li",
		".services h3", "#services h3", ".service-item",
	} {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) { add(s.Text()) })
		if len(services) >= maxServices {
			return services
		}
	}

	// Navigation entries under a services/products menu.
	doc.Find("nav a, .menu a").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		lower := strings.ToLower(href)
		if strings.Contains(lower, "service") || strings.Contains(lower, "product") {
			add(s.Text())
		}
	})

	return services
}

func extractContactInfo(doc *goquery.Document) entity.ContactInfo {
	info := entity.ContactInfo{}
	text := doc.Text()

	// mailto links are the most reliable email source.
	doc.Find(`a[href^="mailto:"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		addr := strings.TrimPrefix(href, "mailto:")
		if idx := strings.IndexAny(addr, "?&"); idx > 0 {
			addr = addr[:idx]
		}
		if emailExpr.MatchString(addr) {
			info.Email = strings.ToLower(strings.TrimSpace(addr))
			return false
		}
		return true
	})
	if info.Email == "" {
		for _, match := range emailExpr.FindAllString(text, 10) {
			if !isAssetName(match) {
				info.Email = strings.ToLower(match)
				break
			}
		}
	}

	for _, candidate := range phoneExpr.FindAllString(text, 10) {
		number, err := phonenumbers.Parse(candidate, defaultRegion)
		if err != nil {
			continue
		}
		if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
			continue
		}
		info.Phone = phonenumbers.Format(number, phonenumbers.E164)
		break
	}

	for _, sel := range []string{"address", ".address", ".location", "footer .contact"} {
		if v := clean(doc.Find(sel).First().Text(), maxSnippetLen); len(v) > 10 {
			info.Address = v
			break
		}
	}

	return info
}

func extractSocialLinks(doc *goquery.Document) entity.SocialLinks {
	links := entity.SocialLinks{}
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		host := hostOf(href)
		switch {
		case links.LinkedIn == "" && strings.HasSuffix(host, "linkedin.com"):
			links.LinkedIn = href
		case links.Twitter == "" && (strings.HasSuffix(host, "twitter.com") || host == "x.com" || strings.HasSuffix(host, ".x.com")):
			links.Twitter = href
		case links.Facebook == "" && strings.HasSuffix(host, "facebook.com"):
			links.Facebook = href
		}
	})
	return links
}

func extractKeyContent(doc *goquery.Document) []string {
	var snippets []string
	seen := map[string]struct{}{}

	add := func(text string) {
		if len(snippets) >= maxKeyContent {
			return
		}
		v := clean(text, maxSnippetLen)
		if len(v) < 10 {
			return
		}
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		snippets = append(snippets, v)
	}

	for _, sel := range []string{"h2", "h3", ".feature", ".card h4", ".benefit", ".tagline"} {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) { add(s.Text()) })
		if len(snippets) >= maxKeyContent {
			break
		}
	}
	return snippets
}

func clean(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > max {
		s = strings.TrimSpace(s[:max])
	}
	return s
}

func hostOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
}

func isAssetName(s string) bool {
	lower := strings.ToLower(s)
	for _, suffix := range assetSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
