// Package markdown renders operator-facing markdown into sanitized HTML.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// MarkdownService turns notification bodies into email-safe HTML.
type MarkdownService interface {
	ToHTMLSanitized(markdown string) (string, error)
	// StripTags removes every tag, for values embedded in plain-text output.
	StripTags(content string) string
}

type markdownServiceImpl struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	strict *bluemonday.Policy
}

func NewMarkdownService() MarkdownService {
	return &markdownServiceImpl{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table),
			goldmark.WithRendererOptions(html.WithXHTML()),
		),
		policy: emailPolicy(),
		strict: bluemonday.StrictPolicy(),
	}
}

// emailPolicy keeps the block and table markup mail clients render. Links,
// images and attributes are dropped.
func emailPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("h1", "h2", "h3", "p", "br", "hr", "strong", "em", "code", "pre", "ul", "ol", "li")
	p.AllowTables()
	return p
}

func (s *markdownServiceImpl) ToHTMLSanitized(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return s.policy.Sanitize(buf.String()), nil
}

func (s *markdownServiceImpl) StripTags(content string) string {
	return s.strict.Sanitize(content)
}
