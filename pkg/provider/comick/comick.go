package comick

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"manhwaverse/pkg/core"
	"manhwaverse/pkg/engine"
	"manhwaverse/pkg/engine/network"
	"manhwaverse/pkg/errors"
	"manhwaverse/pkg/provider"
	"manhwaverse/pkg/provider/common"
	"manhwaverse/pkg/proxy"
)

// DefaultConfig returns the stock configuration for Comick.
func DefaultConfig() provider.Config {
	return provider.Config{
		ID:         string(core.SourceComick),
		Name:       "Comick",
		BaseURL:    "https://comick.live",
		CDNHost:    proxy.ComickCDNHost,
		Timeout:    15 * time.Second,
		MaxRetries: 3,
		RateLimit:  1 * time.Second,
		Headers: map[string]string{
			"Referer": "https://comick.live/",
		},
	}
}

var _ provider.Provider = (*Provider)(nil)

// Provider reads Comick through the JSON payloads its pages embed in
// script tags. Page images live on a hotlink-protected CDN and are
// rewritten through the image proxy.
type Provider struct {
	config provider.Config
	engine *engine.Engine
}

// New creates the provider with the default configuration.
func New(e *engine.Engine) *Provider {
	return NewWithConfig(e, DefaultConfig())
}

// NewWithConfig creates the provider with an explicit configuration.
func NewWithConfig(e *engine.Engine, config provider.Config) *Provider {
	return &Provider{config: config, engine: e}
}

func (p *Provider) ID() string      { return p.config.ID }
func (p *Provider) Name() string    { return p.config.Name }
func (p *Provider) SiteURL() string { return p.config.BaseURL }

// Owns reports whether rawURL belongs to this site.
func (p *Provider) Owns(rawURL string) bool { return p.config.Owns(rawURL) }

// fetchPage returns the raw page body; payload extraction works on
// text, not parsed markup.
func (p *Provider) fetchPage(ctx context.Context, pageURL string) (string, error) {
	resp, err := p.engine.Network.Fetch(ctx, &network.Request{
		URL:        pageURL,
		Headers:    p.config.Headers,
		Timeout:    p.config.Timeout,
		MaxRetries: p.config.MaxRetries,
		RateLimit:  p.config.RateLimit,
	})
	if err != nil {
		return "", err
	}
	return string(resp.Body), nil
}

// comicEntry is one comic in a search or browse payload.
type comicEntry struct {
	Title            string      `json:"title"`
	Slug             string      `json:"slug"`
	DefaultThumbnail string      `json:"default_thumbnail"`
	LastChapter      json.Number `json:"last_chapter"`
	BayesianRating   *string     `json:"bayesian_rating"`
}

// searchPayload is the embedded state of a search or browse page.
type searchPayload struct {
	CurrentPage int          `json:"current_page"`
	Data        []comicEntry `json:"data"`
}

// ListPopular reads the browse page sorted by follower count.
func (p *Provider) ListPopular(ctx context.Context) ([]core.ListingItem, error) {
	p.engine.Logger.Info("[%s] Fetching popular listing", p.ID())
	items, err := p.listing(ctx, p.config.BaseURL+"/search?sort=follow")
	if err != nil {
		return nil, errors.Wrap(p.ID(), "list_popular", p.config.BaseURL, err)
	}
	if len(items) == 0 {
		return nil, errors.Wrap(p.ID(), "list_popular", p.config.BaseURL,
			errors.NotFound("empty browse payload"))
	}
	return items, nil
}

// ListByGenre reads the browse page filtered by genre slug.
func (p *Provider) ListByGenre(ctx context.Context, genre string) ([]core.ListingItem, error) {
	genre = strings.ToLower(strings.TrimSpace(genre))
	genreURL := fmt.Sprintf("%s/search?genres=%s", p.config.BaseURL, url.QueryEscape(genre))

	items, err := p.listing(ctx, genreURL)
	if err != nil {
		return nil, errors.Wrap(p.ID(), "list_by_genre", genreURL, err)
	}
	if len(items) == 0 {
		return nil, errors.NotFound("no manga found for genre: %s", genre)
	}
	return items, nil
}

// Search reads the search results payload. An empty result set is a
// valid response.
func (p *Provider) Search(ctx context.Context, query string) ([]core.ListingItem, error) {
	searchURL := fmt.Sprintf("%s/search?q=%s", p.config.BaseURL, url.QueryEscape(query))
	p.engine.Logger.Info("[%s] Searching for %q", p.ID(), query)

	items, err := p.listing(ctx, searchURL)
	if err != nil {
		return nil, errors.Wrap(p.ID(), "search", searchURL, err)
	}
	return items, nil
}

func (p *Provider) listing(ctx context.Context, pageURL string) ([]core.ListingItem, error) {
	body, err := p.fetchPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	raw, err := extractObject(body, `"current_page"`, `"data"`)
	if err != nil {
		return nil, err
	}

	var payload searchPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode listing payload: %w", err)
	}

	var items []core.ListingItem
	for _, entry := range payload.Data {
		if entry.Title == "" || entry.Slug == "" {
			continue
		}

		latest := "N/A"
		if entry.LastChapter != "" {
			latest = "Chapter " + entry.LastChapter.String()
		}

		items = append(items, core.ListingItem{
			Title:         entry.Title,
			CoverURL:      proxy.ToProxy(entry.DefaultThumbnail, ""),
			DetailURL:     fmt.Sprintf("%s/comic/%s", p.config.BaseURL, entry.Slug),
			LatestChapter: latest,
			Source:        core.SourceComick,
		})
	}
	return common.DedupeListing(items), nil
}

// comicDetail is the embedded state of a comic page.
type comicDetail struct {
	Title            string      `json:"title"`
	Hid              string      `json:"hid"`
	Slug             string      `json:"slug"`
	Desc             string      `json:"desc"`
	Status           int         `json:"status"`
	DefaultThumbnail string      `json:"default_thumbnail"`
	BayesianRating   *string     `json:"bayesian_rating"`
	Genres           []genreLink `json:"md_comic_md_genres"`
	Authors          []named     `json:"authors"`
	FirstChapters    []chapterEntry
}

type genreLink struct {
	MdGenres named `json:"md_genres"`
}

type named struct {
	Name string `json:"name"`
}

// chap is a string in the payload ("110", "110.5").
type chapterEntry struct {
	Hid       string `json:"hid"`
	Chap      string `json:"chap"`
	Lang      string `json:"lang"`
	CreatedAt string `json:"created_at"`
}

// GetDetails reads a comic page payload. Status code 1 means the
// series is still publishing.
func (p *Provider) GetDetails(ctx context.Context, detailURL string) (*core.MangaDetail, error) {
	p.engine.Logger.Info("[%s] Fetching details: %s", p.ID(), detailURL)

	body, err := p.fetchPage(ctx, detailURL)
	if err != nil {
		return nil, errors.Wrap(p.ID(), "get_details", detailURL, err)
	}

	raw, err := extractObject(body, `"title"`, `"hid"`)
	if err != nil {
		return nil, errors.Wrap(p.ID(), "get_details", detailURL, err)
	}

	var detail comicDetail
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil, errors.Wrap(p.ID(), "get_details", detailURL,
			fmt.Errorf("decode detail payload: %w", err))
	}
	if detail.Title == "" {
		return nil, errors.Wrap(p.ID(), "get_details", detailURL,
			errors.NotFound("detail payload missing title"))
	}

	// The chapter list ships as a sibling array in the same page state
	if chaptersRaw, err := extractArray(body, "firstChapters"); err == nil {
		_ = json.Unmarshal(chaptersRaw, &detail.FirstChapters)
	}

	description := detail.Desc
	if description == "" {
		description = "No description available"
	}

	rating := "N/A"
	if detail.BayesianRating != nil && *detail.BayesianRating != "" {
		rating = *detail.BayesianRating
	}

	status := core.StatusCompleted
	if detail.Status == 1 {
		status = core.StatusOngoing
	}

	var genres []string
	for _, g := range detail.Genres {
		if g.MdGenres.Name != "" {
			genres = append(genres, g.MdGenres.Name)
		}
	}

	author := "Unknown"
	if len(detail.Authors) > 0 && detail.Authors[0].Name != "" {
		author = detail.Authors[0].Name
	}

	slug := detail.Slug
	if slug == "" {
		slug = slugFromURL(detailURL)
	}

	var chapters []core.ChapterRef
	for _, ch := range detail.FirstChapters {
		if ch.Hid == "" || ch.Chap == "" || (ch.Lang != "" && ch.Lang != "en") {
			continue
		}
		chapters = append(chapters, core.ChapterRef{
			Title: "Chapter " + ch.Chap,
			URL:   fmt.Sprintf("%s/comic/%s/%s-chapter-%s-en", p.config.BaseURL, slug, ch.Hid, ch.Chap),
			Date:  common.FormatDate(ch.CreatedAt),
		})
	}

	return &core.MangaDetail{
		Title:       detail.Title,
		CoverURL:    proxy.ToProxy(detail.DefaultThumbnail, ""),
		Description: description,
		Rating:      rating,
		Status:      status,
		Genres:      genres,
		Author:      author,
		Chapters:    chapters,
		Source:      core.SourceComick,
	}, nil
}

type imageEntry struct {
	URL string `json:"url"`
}

// GetChapterImages reads the reader page payload and rewrites every
// CDN image through the proxy, since the CDN rejects requests without
// a site Referer.
func (p *Provider) GetChapterImages(ctx context.Context, chapterURL string) ([]string, error) {
	p.engine.Logger.Info("[%s] Fetching chapter images: %s", p.ID(), chapterURL)

	body, err := p.fetchPage(ctx, chapterURL)
	if err != nil {
		return nil, errors.Wrap(p.ID(), "get_chapter_images", chapterURL, err)
	}

	raw, err := extractArray(body, "images")
	if err != nil {
		return nil, errors.Wrap(p.ID(), "get_chapter_images", chapterURL, err)
	}

	var entries []imageEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		// Some reader generations embed a plain string array
		var plain []string
		if err := json.Unmarshal(raw, &plain); err != nil {
			return nil, errors.Wrap(p.ID(), "get_chapter_images", chapterURL,
				fmt.Errorf("decode images payload: %w", err))
		}
		for _, s := range plain {
			entries = append(entries, imageEntry{URL: s})
		}
	}

	var images []string
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.URL == "" || seen[entry.URL] {
			continue
		}
		if !strings.Contains(entry.URL, p.config.CDNHost) {
			continue
		}
		seen[entry.URL] = true
		images = append(images, proxy.ToProxy(entry.URL, chapterURL))
	}

	if len(images) == 0 {
		return nil, errors.Wrap(p.ID(), "get_chapter_images", chapterURL,
			errors.NotFound("no page images in reader payload"))
	}

	p.engine.Logger.Info("[%s] Extracted %d page images", p.ID(), len(images))
	return images, nil
}

func slugFromURL(detailURL string) string {
	u, err := url.Parse(detailURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}
