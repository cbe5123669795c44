package core

// Source identifies one scraped site.
type Source string

const (
	SourceAsura     Source = "asura"
	SourceWebtoons  Source = "webtoons"
	SourceMangaPark Source = "mangapark"
	SourceComick    Source = "comick"
)

// Manga status values. Sites report these inconsistently; anything
// unrecognized normalizes to StatusUnknown.
const (
	StatusOngoing   = "Ongoing"
	StatusCompleted = "Completed"
	StatusUnknown   = "Unknown"
)

// ListingItem is one card from a listing, genre, or search page.
// DetailURL is absolute and is the deduplication key within a single
// listing response.
type ListingItem struct {
	Title         string `json:"title"`
	CoverURL      string `json:"cover_url"`
	DetailURL     string `json:"detail_url"`
	LatestChapter string `json:"latest_chapter"`
	Source        Source `json:"source"`
}

// MangaDetail is the full record scraped from a detail page.
type MangaDetail struct {
	Title       string       `json:"title"`
	CoverURL    string       `json:"cover_image_url"`
	Description string       `json:"description"`
	Rating      string       `json:"rating"`
	Status      string       `json:"status"`
	Genres      []string     `json:"genres"`
	Author      string       `json:"author"`
	Chapters    []ChapterRef `json:"chapters"`
	Source      Source       `json:"source"`
}

// ChapterRef is one entry of a detail page's chapter list. Chapter
// sequences are always newest-first; extractors reverse the source
// order where a site lists oldest-first.
type ChapterRef struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Date  string `json:"date"`
}

// ChapterNav is the stitched navigation payload for a chapter reader:
// the current chapter's images plus links to the chronologically
// adjacent chapters. Missing links stay nil and serialize as null.
type ChapterNav struct {
	MangaTitle   string   `json:"manga_title"`
	CurrentTitle string   `json:"current_chapter_title"`
	ImageURLs    []string `json:"image_urls"`
	NextURL      *string  `json:"next_chapter_url"`
	PrevURL      *string  `json:"prev_chapter_url"`
}
