package common

import (
	"strings"
	"time"

	"manhwaverse/pkg/core"
)

// DedupeListing removes repeated cards by DetailURL, keeping first
// occurrence order. Listing pages frequently repeat an entry across
// carousel and grid sections; DetailURL is the identity.
func DedupeListing(items []core.ListingItem) []core.ListingItem {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, item := range items {
		if item.DetailURL == "" || seen[item.DetailURL] {
			continue
		}
		seen[item.DetailURL] = true
		out = append(out, item)
	}
	return out
}

// ReverseChapters flips a chapter list in place, for sources that list
// oldest-first. The contract everywhere else is newest-first.
func ReverseChapters(chapters []core.ChapterRef) {
	for i, j := 0, len(chapters)-1; i < j; i, j = i+1, j-1 {
		chapters[i], chapters[j] = chapters[j], chapters[i]
	}
}

// NormalizeStatus maps a site's status text onto the shared vocabulary.
func NormalizeStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "ongoing", "publishing", "releasing":
		return core.StatusOngoing
	case "completed", "finished", "complete":
		return core.StatusCompleted
	default:
		return core.StatusUnknown
	}
}

// FormatDate parses an ISO-ish timestamp and renders it in the short
// display form the detail pages use. Unparseable input falls back to
// "Unknown" rather than leaking raw API strings.
func FormatDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "Unknown"
	}

	layouts := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("Jan 2, 2006")
		}
	}
	return raw
}
