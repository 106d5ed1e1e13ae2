package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxFieldLength caps sanitized free-text fields before storage.
	MaxFieldLength = 1000

	// MaxClassifierLength caps text sent to the external classifier.
	MaxClassifierLength = 2000
)

var (
	scriptBlockRe = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	tagRe         = regexp.MustCompile(`<[^>]*>`)
	emailRe       = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phoneRe       = regexp.MustCompile(`[\+]?[1-9]?[\d\s\-\(\)]{10,}`)
)

// Text removes script blocks including their content, strips any remaining
// markup tags, trims whitespace and truncates to MaxFieldLength.
// Script blocks go first: stripping tags first could leave the inner
// script text exposed when a script tag contains nested angle brackets.
func Text(s string) string {
	s = scriptBlockRe.ReplaceAllString(s, "")
	s = tagRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	return truncate(s, MaxFieldLength)
}

// RedactContact masks email addresses and phone-like digit runs and caps
// the length, so personally identifying substrings never reach the
// external classifier.
func RedactContact(s string) string {
	s = emailRe.ReplaceAllString(s, "[EMAIL]")
	s = phoneRe.ReplaceAllString(s, "[PHONE]")
	return truncate(s, MaxClassifierLength)
}

// truncate caps s at max bytes without splitting a multi-byte rune, so
// truncated text stays valid UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	n := max
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// NormalizeEmail lower-cases and trims an address. Every dedup query and
// store write keys on the normalized form.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
