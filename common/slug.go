package common

import (
	"errors"
	"regexp"
	"strings"
)

// ErrEmptySlug is returned when neither the input nor the fallback
// contains any sluggable characters.
var ErrEmptySlug = errors.New("slug cannot be empty")

var nonSlugRunes = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe project slug from input, falling back to
// fallback when the input reduces to nothing. Runs of anything outside
// [a-z0-9] collapse into single hyphens.
func Slugify(input, fallback string) (string, error) {
	slug := slugify(input)
	if slug == "" {
		slug = slugify(fallback)
	}
	if slug == "" {
		return "", ErrEmptySlug
	}
	return slug, nil
}

func slugify(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	return strings.Trim(nonSlugRunes.ReplaceAllString(lower, "-"), "-")
}
