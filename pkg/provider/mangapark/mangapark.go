package mangapark

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"manhwaverse/pkg/core"
	"manhwaverse/pkg/engine"
	"manhwaverse/pkg/engine/network"
	"manhwaverse/pkg/engine/scraper"
	"manhwaverse/pkg/errors"
	"manhwaverse/pkg/provider"
	"manhwaverse/pkg/provider/common"
	"manhwaverse/pkg/proxy"
)

// latestPageCount is how many /latest/ pages feed the popular listing.
const latestPageCount = 5

// DefaultConfig returns the stock configuration for MangaPark.
func DefaultConfig() provider.Config {
	return provider.Config{
		ID:         string(core.SourceMangaPark),
		Name:       "MangaPark",
		BaseURL:    "https://mangapark.net",
		Timeout:    15 * time.Second,
		MaxRetries: 3,
		RateLimit:  1 * time.Second,
		Headers: map[string]string{
			"Referer": "https://mangapark.net/",
		},
	}
}

var _ provider.Provider = (*Provider)(nil)

// Provider scrapes the MangaPark aggregator. The site is styled with
// utility classes, so the selector tables lean on the few stable
// semantic hooks (link-hover/link-pri, scrollable-panel, time).
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

func (p *Provider) request(pageURL string) *network.Request {
	return &network.Request{
		URL:        pageURL,
		Headers:    p.config.Headers,
		Timeout:    p.config.Timeout,
		MaxRetries: p.config.MaxRetries,
		RateLimit:  p.config.RateLimit,
	}
}

// ListPopular merges the first latest pages, deduplicated by detail
// URL since entries drift between pages while scraping.
func (p *Provider) ListPopular(ctx context.Context) ([]core.ListingItem, error) {
	var all []core.ListingItem
	for page := 1; page <= latestPageCount; page++ {
		pageURL := fmt.Sprintf("%s/latest/%d", p.config.BaseURL, page)
		doc, err := p.engine.Scraper.Document(ctx, p.request(pageURL))
		if err != nil {
			// A missing page ends pagination, it does not fail the listing
			p.engine.Logger.Warn("[%s] Page %d failed: %v", p.ID(), page, err)
			continue
		}
		items := p.parseCards(doc)
		p.engine.Logger.Info("[%s] Page %d yielded %d cards", p.ID(), page, len(items))
		all = append(all, items...)
	}

	all = common.DedupeListing(all)
	if len(all) == 0 {
		return nil, errors.Wrap(p.ID(), "list_popular", p.config.BaseURL,
			errors.NotFound("no cards on latest pages"))
	}
	return all, nil
}

// ListByGenre scrapes a browse page filtered by genre.
func (p *Provider) ListByGenre(ctx context.Context, genre string) ([]core.ListingItem, error) {
	genre = strings.ToLower(strings.TrimSpace(genre))
	genreURL := fmt.Sprintf("%s/search?genres=%s", p.config.BaseURL, url.QueryEscape(genre))

	doc, err := p.engine.Scraper.Document(ctx, p.request(genreURL))
	if err != nil {
		return nil, errors.Wrap(p.ID(), "list_by_genre", genreURL, err)
	}

	items := common.DedupeListing(p.parseCards(doc))
	if len(items) == 0 {
		return nil, errors.NotFound("no manga found for genre: %s", genre)
	}
	return items, nil
}

// Search scrapes the search results page.
func (p *Provider) Search(ctx context.Context, query string) ([]core.ListingItem, error) {
	searchURL := fmt.Sprintf("%s/search?q=%s", p.config.BaseURL, url.QueryEscape(query))

	doc, err := p.engine.Scraper.Document(ctx, p.request(searchURL))
	if err != nil {
		return nil, errors.Wrap(p.ID(), "search", searchURL, err)
	}
	// Empty search results are a valid response
	return common.DedupeListing(p.parseCards(doc)), nil
}

var cardRatingRules = scraper.RuleSet{
	{Selector: "span.flex.flex-nowrap.items-center.text-yellow-500 span.ml-1.font-bold", Valid: scraper.NumericRating},
	{Selector: "span.text-yellow-500.font-bold", Valid: scraper.NumericRating},
	{Selector: `span[class*="rating"]`, Valid: scraper.NumericRating},
	{Selector: `[class*="score"]`, Valid: scraper.NumericRating},
}

// parseCards extracts listing cards from a latest or search page.
func (p *Provider) parseCards(doc *goquery.Document) []core.ListingItem {
	var items []core.ListingItem
	doc.Find("div.flex.border-b.border-b-base-200.pb-3").Each(func(_ int, item *goquery.Selection) {
		titleLink := item.Find("h3.font-bold a.link-hover.link-pri").First()
		if titleLink.Length() == 0 {
			return
		}
		title := strings.TrimSpace(titleLink.Text())
		if title == "" {
			return
		}

		detailURL := scraper.ResolveURL(p.config.BaseURL, titleLink.AttrOr("href", ""))
		if detailURL == "" {
			return
		}

		coverURL := scraper.ImageURL(item.Find("div.shrink-0 img").First())
		if coverURL == "" {
			return
		}
		coverURL = scraper.ResolveURL(p.config.BaseURL, coverURL)

		latest := strings.TrimSpace(item.Find("div.flex.flex-nowrap.justify-between a.link-hover.link-primary").First().Text())
		if latest == "" {
			latest = "N/A"
		}

		items = append(items, core.ListingItem{
			Title:         title,
			CoverURL:      coverURL,
			DetailURL:     detailURL,
			LatestChapter: latest,
			Source:        core.SourceMangaPark,
		})
	})
	return items
}

var (
	detailTitleRules = scraper.RuleSet{
		{Selector: "h3.text-lg a"},
		{Selector: "h3 a"},
		{Selector: "h1"},
		{Selector: ".title"},
	}
	detailCoverRules = scraper.RuleSet{
		{Selector: "div.w-24 img", Attr: "src"},
		{Selector: `img[src*="/thumb/"]`, Attr: "src"},
		{Selector: ".cover img", Attr: "src"},
	}
	detailDescriptionRules = scraper.RuleSet{
		{Selector: "div.limit-html div.limit-html-p"},
		{Selector: "div.prose p"},
		{Selector: ".description p"},
		{Selector: ".summary p"},
	}
	detailRatingRules = scraper.RuleSet{
		{Selector: "span.text-yellow-500.font-bold", Valid: scraper.NumericRating},
		{Selector: `span[class*="rating"]`, Valid: scraper.NumericRating},
		{Selector: `[class*="score"]`, Valid: scraper.NumericRating},
	}
	detailStatusRules = scraper.RuleSet{
		{Selector: "span.badge"},
		{Selector: ".status"},
	}
	detailAuthorRules = scraper.RuleSet{
		{Selector: "div.mt-2 a.link-hover.link-primary"},
		{Selector: ".author"},
	}
)

// genreNoise is text that shares the genre span styling but is not a
// genre: flag emojis, separators, labels.
var genreNoise = map[string]bool{
	"🇬🇧": true, "🇰🇷": true, "🇨🇳": true, "🇯🇵": true,
	",": true, "Genres:": true, "Tr From": true,
	"English": true, "Korean": true,
}

// GetDetails scrapes a title page.
func (p *Provider) GetDetails(ctx context.Context, detailURL string) (*core.MangaDetail, error) {
	p.engine.Logger.Info("[%s] Fetching details: %s", p.ID(), detailURL)

	doc, err := p.engine.Scraper.Document(ctx, p.request(detailURL))
	if err != nil {
		return nil, errors.Wrap(p.ID(), "get_details", detailURL, err)
	}

	root := doc.Selection
	title := detailTitleRules.Extract(root)
	if title == "" {
		return nil, errors.Wrap(p.ID(), "get_details", detailURL,
			errors.NotFound("title missing"))
	}

	cover := scraper.ResolveURL(p.config.BaseURL, detailCoverRules.Extract(root))

	description := detailDescriptionRules.Extract(root)
	if description == "" {
		description = "No description available"
	}

	rating := detailRatingRules.Extract(root)
	if rating == "" {
		rating = "N/A"
	}

	var genres []string
	doc.Find("div.flex.items-center.flex-wrap span").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" || len(text) < 2 || genreNoise[text] {
			return
		}
		if strings.HasPrefix(text, "(") || strings.HasSuffix(text, ")") {
			return
		}
		genres = append(genres, text)
	})

	author := detailAuthorRules.Extract(root)
	if author == "" {
		author = "Unknown"
	}

	chapters := p.parseChapters(doc)

	return &core.MangaDetail{
		Title:       title,
		CoverURL:    cover,
		Description: description,
		Rating:      rating,
		Status:      common.NormalizeStatus(detailStatusRules.Extract(root)),
		Genres:      genres,
		Author:      author,
		Chapters:    chapters,
		Source:      core.SourceMangaPark,
	}, nil
}

// chapterListSelectors locate chapter links on a title page, broadest
// last.
var chapterListSelectors = []string{
	"div.scrollable-panel a",
	`a[href*="ch-"]`,
	"div.chapter-list a",
	`a[href*="/title/"]`,
}

func (p *Provider) parseChapters(doc *goquery.Document) []core.ChapterRef {
	var links *goquery.Selection
	for _, selector := range chapterListSelectors {
		candidates := doc.Find(selector).FilterFunction(func(_ int, s *goquery.Selection) bool {
			href := strings.ToLower(s.AttrOr("href", ""))
			return strings.Contains(href, "ch-") || strings.Contains(href, "chapter")
		})
		if candidates.Length() > 0 {
			links = candidates
			break
		}
	}
	if links == nil {
		return nil
	}

	var chapters []core.ChapterRef
	seen := make(map[string]bool)
	links.Each(func(_ int, link *goquery.Selection) {
		chapterURL := scraper.ResolveURL(p.config.BaseURL, link.AttrOr("href", ""))
		if chapterURL == "" || seen[chapterURL] {
			return
		}
		seen[chapterURL] = true

		chapterTitle := strings.TrimSpace(link.Text())
		if chapterTitle == "" {
			chapterTitle = "Chapter"
		}

		date := "Unknown"
		if t := link.Parent().Find("time").First(); t.Length() > 0 {
			if v := strings.TrimSpace(t.Text()); v != "" {
				date = v
			}
		}

		chapters = append(chapters, core.ChapterRef{
			Title: chapterTitle,
			URL:   chapterURL,
			Date:  date,
		})
	})
	return chapters
}

// readerSelectors locate the page-image region of a chapter page.
var readerSelectors = []string{
	`div[data-name="image-item"] img`,
	"#viewer img",
	"main img",
}

// GetChapterImages scrapes a chapter reader page.
func (p *Provider) GetChapterImages(ctx context.Context, chapterURL string) ([]string, error) {
	p.engine.Logger.Info("[%s] Fetching chapter images: %s", p.ID(), chapterURL)

	doc, err := p.engine.Scraper.Document(ctx, p.request(chapterURL))
	if err != nil {
		return nil, errors.Wrap(p.ID(), "get_chapter_images", chapterURL, err)
	}

	imgs := scraper.SelectFirst(doc, readerSelectors)
	if imgs == nil {
		return nil, errors.Wrap(p.ID(), "get_chapter_images", chapterURL,
			errors.NotFound("reader area not found"))
	}

	var images []string
	seen := make(map[string]bool)
	imgs.Each(func(_ int, img *goquery.Selection) {
		src := scraper.ResolveURL(chapterURL, scraper.ImageURL(img))
		if src == "" || seen[src] {
			return
		}
		if !scraper.IsAbsoluteURL(src) || proxy.IsPlaceholderImage(src) {
			return
		}
		seen[src] = true
		images = append(images, src)
	})

	if len(images) == 0 {
		return nil, errors.Wrap(p.ID(), "get_chapter_images", chapterURL,
			errors.NotFound("no valid chapter images"))
	}
	return images, nil
}
