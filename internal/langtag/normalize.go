// Package langtag normalises the free-form language tags ATProto posts
// carry into a small, stable set of primary subtags suitable as
// Prometheus label values.
package langtag

import (
	"strings"

	"golang.org/x/text/language"
)

// special cases the BCP-47 parser gets wrong (or that predate the
// registry) for languages seen on the network.
var specialCase = map[string]string{
	"jp":     "ja",
	"angika": "anp",
}

// Normalize lowercases tag, applies the special-case table, and
// otherwise parses it as a BCP-47 language tag and reduces it to its
// primary subtag (e.g. "en-US" -> "en"). An empty input normalises to
// empty; callers treat that as "no language".
func Normalize(tag string) string {
	lower := strings.ToLower(strings.TrimSpace(tag))
	if lower == "" {
		return ""
	}
	if mapped, ok := specialCase[lower]; ok {
		return mapped
	}

	parsed, err := language.Parse(lower)
	if err != nil {
		return lower
	}
	base, conf := parsed.Base()
	if conf == language.No {
		return lower
	}
	return base.String()
}
