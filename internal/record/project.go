package record

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

// ErrProjection is returned when a record's required fields cannot be
// projected into the domain shape (most commonly an unparseable
// createdAt timestamp).
var ErrProjection = fmt.Errorf("record: projection failed")

// parseCreatedAt parses an ATProto createdAt string as RFC-3339,
// preserving whatever fixed offset the source used rather than
// normalising to UTC.
func parseCreatedAt(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: createdAt is empty", ErrProjection)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		// Fallback layout. time.Parse already accepts fractional
		// seconds under RFC3339, and neither layout accepts an offset
		// written without a colon.
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: createdAt %q: %v", ErrProjection, s, err)
		}
	}
	return t, nil
}

// selfLabelValues copies the label values its callers took from the
// "self-labels" union arm, returning nil when there are none. The
// callers (projectPostLabels, projectProfileLabels) treat any other
// label scheme as empty.
func selfLabelValues(vals []string) []string {
	if len(vals) == 0 {
		return nil
	}
	out := make([]string, len(vals))
	copy(out, vals)
	return out
}

var avatarURLPattern = regexp.MustCompile(`^(.+)@([a-zA-Z0-9]+)$`)

// ParseBlobURL recognises the CDN avatar/banner URL shape
// ".../<did>/<cid>@<ext>" and projects it into a Blob carrying the
// embedded CID and an "image/<ext>" MIME type. Any other shape yields
// (Blob{}, false). Exported so internal/profilecache can apply the same
// projection to the avatar/banner URLs returned by the public API.
func ParseBlobURL(raw string) (Blob, bool) {
	base := path.Base(raw)
	m := avatarURLPattern.FindStringSubmatch(base)
	if m == nil {
		return Blob{}, false
	}
	cidPart, ext := m[1], strings.ToLower(m[2])
	if cidPart == "" || ext == "" {
		return Blob{}, false
	}
	return Blob{CID: cidPart, MimeType: "image/" + ext}, true
}
