package common

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"manhwaverse/pkg/core"
)

func TestDedupeListingKeepsFirstOccurrence(t *testing.T) {
	items := []core.ListingItem{
		{Title: "A", DetailURL: "https://x/a", LatestChapter: "10"},
		{Title: "B", DetailURL: "https://x/b"},
		{Title: "A again", DetailURL: "https://x/a", LatestChapter: "9"},
		{Title: "no url"},
	}

	out := DedupeListing(items)
	assert.Len(t, out, 2)
	assert.Equal(t, "A", out[0].Title)
	assert.Equal(t, "10", out[0].LatestChapter)
	assert.Equal(t, "B", out[1].Title)
}

func TestReverseChapters(t *testing.T) {
	chapters := []core.ChapterRef{{Title: "1"}, {Title: "2"}, {Title: "3"}}
	ReverseChapters(chapters)
	assert.Equal(t, "3", chapters[0].Title)
	assert.Equal(t, "1", chapters[2].Title)

	ReverseChapters(nil)

	single := []core.ChapterRef{{Title: "only"}}
	ReverseChapters(single)
	assert.Equal(t, "only", single[0].Title)
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, core.StatusOngoing, NormalizeStatus(" Ongoing "))
	assert.Equal(t, core.StatusOngoing, NormalizeStatus("publishing"))
	assert.Equal(t, core.StatusCompleted, NormalizeStatus("Completed"))
	assert.Equal(t, core.StatusCompleted, NormalizeStatus("FINISHED"))
	assert.Equal(t, core.StatusUnknown, NormalizeStatus("Hiatus"))
	assert.Equal(t, core.StatusUnknown, NormalizeStatus(""))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "May 5, 2025", FormatDate("2025-05-05T00:00:00Z"))
	assert.Equal(t, "May 5, 2025", FormatDate("2025-05-05"))
	assert.Equal(t, "Unknown", FormatDate(""))
	// Site-relative dates pass through untouched
	assert.Equal(t, "3 days ago", FormatDate("3 days ago"))
}
