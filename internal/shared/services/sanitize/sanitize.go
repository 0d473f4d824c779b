// Package sanitize strips markup from free-text record fields before they are
// stored or rendered.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

type Service interface {
	Text(s string) string
}

type strictService struct {
	policy *bluemonday.Policy
}

// NewService returns a sanitizer that removes every HTML element and keeps
// the text content.
func NewService() Service {
	return &strictService{policy: bluemonday.StrictPolicy()}
}

// Text removes markup and trims surrounding whitespace. bluemonday escapes
// the remaining text for HTML, which is undone since values are stored raw.
func (s *strictService) Text(in string) string {
	if in == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(in)))
}
