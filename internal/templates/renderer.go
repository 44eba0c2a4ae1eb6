// Package templates renders generated email text into HTML shells through
// literal placeholder substitution.
//
// The renderer performs no escaping: callers are responsible for producing
// safe HTML, and generated content is inserted verbatim. That contract is
// deliberate; there is no templating language here.
package templates

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

const (
	contentToken      = "{{CONTENT}}"
	businessNameToken = "{{BUSINESS_NAME}}"
)

// Template is an HTML shell with substitution tokens.
type Template struct {
	ID   string
	Name string
	HTML string
}

var builtin = map[string]Template{
	"plain": {
		ID:   "plain",
		Name: "Plain",
		HTML: `<!doctype html><html><body style="font-family: Arial, sans-serif; color: #222; line-height: 1.5;">{{CONTENT}}</body></html>`,
	},
	"professional": {
		ID:   "professional",
		Name: "Professional",
		HTML: `<!doctype html><html><body style="font-family: Georgia, serif; color: #1a1a1a; max-width: 600px; margin: 0 auto;">
<p style="color: #555; font-size: 13px;">To the team at {{BUSINESS_NAME}}</p>
<div style="line-height: 1.6;">{{CONTENT}}</div>
</body></html>`,
	},
	"minimal": {
		ID:   "minimal",
		Name: "Minimal",
		HTML: `<div>{{CONTENT}}</div>`,
	},
}

// Lookup returns the template with the given id; a miss is a hard failure.
func Lookup(id string) (Template, error) {
	tpl, ok := builtin[id]
	if !ok {
		return Template{}, fmt.Errorf("unknown template %q", id)
	}
	return tpl, nil
}

// List returns all built-in templates.
func List() []Template {
	out := make([]Template, 0, len(builtin))
	for _, id := range []string{"plain", "professional", "minimal"} {
		out = append(out, builtin[id])
	}
	return out
}

// Render substitutes the content and business name tokens in the template's
// HTML. It is a pure function of its inputs: rendering text that carries no
// tokens returns it unchanged.
func Render(id, content, businessName string) (string, error) {
	tpl, err := Lookup(id)
	if err != nil {
		return "", err
	}
	return Substitute(tpl.HTML, content, businessName), nil
}

// Substitute performs the literal global replacement on an arbitrary shell.
func Substitute(shell, content, businessName string) string {
	out := strings.ReplaceAll(shell, contentToken, content)
	out = strings.ReplaceAll(out, businessNameToken, businessName)
	return out
}

// PlainText derives a text version of an HTML email: tags stripped, script
// and style contents dropped, entities decoded, whitespace collapsed.
func PlainText(rawHTML string) string {
	node, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return strings.Join(strings.Fields(rawHTML), " ")
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if n.Type == html.ElementNode && blockElement(n.Data) {
			b.WriteByte(' ')
		}
	}
	walk(node)

	return strings.Join(strings.Fields(b.String()), " ")
}

func blockElement(tag string) bool {
	switch tag {
	case "p", "div", "br", "li", "h1", "h2", "h3", "h4", "tr":
		return true
	}
	return false
}
