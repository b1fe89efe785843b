package identify

import (
	"regexp"
	"strings"
)

// IDLength is the fixed length of a YouTube video ID.
const IDLength = 11

// Reference shapes are tried in order; the first match wins. The URL
// pattern covers watch links, youtu.be short links, and embed links.
var (
	urlPattern  = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([A-Za-z0-9_-]{11})`)
	barePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// VideoID extracts the canonical video ID from a raw reference string.
// It accepts full YouTube URLs, youtu.be short links, and bare 11-character
// IDs. The second return is false when the reference matches none of the
// recognized shapes.
func VideoID(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if match := urlPattern.FindStringSubmatch(ref); match != nil {
		return match[1], true
	}
	if barePattern.MatchString(ref) {
		return ref, true
	}
	return "", false
}

// Batch resolves a list of raw references into an ordered, deduplicated
// list of video IDs plus the malformed inputs. Blank references are
// skipped entirely and do not count as invalid.
func Batch(refs []string) (ids []string, invalid []string) {
	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		trimmed := strings.TrimSpace(ref)
		if trimmed == "" {
			continue
		}
		id, ok := VideoID(trimmed)
		if !ok {
			invalid = append(invalid, trimmed)
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, invalid
}
