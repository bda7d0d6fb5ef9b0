package validation

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips markup from recruiter-entered free text.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// maxSanitizePasses bounds the strip/unescape loop; nested entity encodings
// deeper than this are left as text.
const maxSanitizePasses = 4

// Text removes every HTML tag. Entities escaped by the policy are decoded
// back so "Pérez & Hijos" survives a round trip. Decoding can surface new
// markup ("&lt;b&gt;"), so the policy runs again until the output is
// stable. Sanitizing stored text a second time is a no-op.
func (s *Sanitizer) Text(input string) string {
	out := strings.TrimSpace(input)
	for i := 0; i < maxSanitizePasses && out != ""; i++ {
		next := strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(out)))
		if next == out {
			break
		}
		out = next
	}
	return out
}

// TextPtr sanitizes an optional value without touching the caller's string.
func (s *Sanitizer) TextPtr(input *string) *string {
	if input == nil {
		return nil
	}
	out := s.Text(*input)
	return &out
}

// Fields sanitizes every pointed-to string in place.
func (s *Sanitizer) Fields(fields ...*string) {
	for _, f := range fields {
		if f != nil {
			*f = s.Text(*f)
		}
	}
}
