package utils

import (
	"strings"
	"unicode"
)

const maxSlugLen = 100

// Slugify converts a title into a URL-safe slug: lower-cased, with runs of
// whitespace and punctuation collapsed to a single hyphen, trimmed to the
// column limit. The same input always produces the same output.
func Slugify(title string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
		} else {
			pending = true
		}
	}

	slug := b.String()
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	return slug
}
