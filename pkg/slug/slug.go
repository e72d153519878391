package slug

import (
	"regexp"
	"strings"
)

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug from the given name.
//
// Examples:
//   - "Running Shoes" → "running-shoes"
//   - "Hello   World!" → "hello-world"
func Generate(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))

	// Replace any non-alphanumeric run with a single hyphen.
	slug = slugRegexp.ReplaceAllString(slug, "-")

	return strings.Trim(slug, "-")
}
