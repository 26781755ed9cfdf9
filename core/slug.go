package core

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SlugMaxLength is the widest slug column in the database.
const SlugMaxLength = 255

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSeparators   = regexp.MustCompile(`[\s-]+`)
)

// Slugify converts s into a lowercase, hyphen-separated, URL-safe slug.
func Slugify(s string) string {
	s = norm.NFKD.String(CleanString(s, true))
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1 // drop combining marks left by the decomposition
		}
		return r
	}, s)
	s = slugInvalidChars.ReplaceAllString(s, "")
	s = slugSeparators.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// MakeUniqueSlug slugifies candidate and appends a numeric suffix (-1, -2, ...)
// until exists reports a free slug. The result never exceeds maxLen: the base
// is truncated so the suffix always fits.
func MakeUniqueSlug(candidate string, maxLen int, exists func(slug string) (bool, error)) (string, error) {
	if maxLen <= 0 || maxLen > SlugMaxLength {
		maxLen = SlugMaxLength
	}
	base := Slugify(candidate)
	if len(base) > maxLen {
		base = strings.Trim(base[:maxLen], "-")
	}

	slug := base
	for i := 1; ; i++ {
		taken, err := exists(slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		suffix := fmt.Sprintf("-%d", i)
		trimmed := base
		if len(trimmed)+len(suffix) > maxLen {
			trimmed = strings.Trim(trimmed[:maxLen-len(suffix)], "-")
		}
		slug = trimmed + suffix
	}
}
