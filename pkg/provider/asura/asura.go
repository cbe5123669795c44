package asura

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
)

const cdnHost = "asurascans.imagemanga.online"

// DefaultConfig returns the stock configuration for AsuraScanz.
func DefaultConfig() provider.Config {
	return provider.Config{
		ID:         string(core.SourceAsura),
		Name:       "AsuraScanz",
		BaseURL:    "https://asurascanz.com",
		CDNHost:    cdnHost,
		Timeout:    15 * time.Second,
		MaxRetries: 3,
		RateLimit:  500 * time.Millisecond,
	}
}

var _ provider.Provider = (*Provider)(nil)

// Provider scrapes AsuraScanz, a MangaStream-theme Wordpress reader.
type Provider struct {
	config provider.Config
	engine *engine.Engine
}

// New creates the provider with the default configuration.
func New(e *engine.Engine) *Provider {
	return NewWithConfig(e, DefaultConfig())
}

// NewWithConfig creates the provider with an explicit configuration,
// used by tests to point at a fixture server.
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

// ListPopular scrapes the homepage cards.
func (p *Provider) ListPopular(ctx context.Context) ([]core.ListingItem, error) {
	p.engine.Logger.Info("[%s] Fetching popular from homepage", p.ID())

	doc, err := p.engine.Scraper.Document(ctx, p.request(p.config.BaseURL+"/"))
	if err != nil {
		return nil, errors.Wrap(p.ID(), "list_popular", p.config.BaseURL, err)
	}
	return p.parseCards(doc)
}

// ListByGenre scrapes a genre landing page.
func (p *Provider) ListByGenre(ctx context.Context, genre string) ([]core.ListingItem, error) {
	genre = strings.ToLower(strings.TrimSpace(genre))
	genreURL := fmt.Sprintf("%s/genres/%s/", p.config.BaseURL, url.PathEscape(genre))
	p.engine.Logger.Info("[%s] Fetching genre %q", p.ID(), genre)

	doc, err := p.engine.Scraper.Document(ctx, p.request(genreURL))
	if err != nil {
		return nil, errors.Wrap(p.ID(), "list_by_genre", genreURL, err)
	}
	return p.parseCards(doc)
}

// Search scrapes the Wordpress search results page.
func (p *Provider) Search(ctx context.Context, query string) ([]core.ListingItem, error) {
	searchURL := fmt.Sprintf("%s/?s=%s", p.config.BaseURL, url.QueryEscape(query))
	p.engine.Logger.Info("[%s] Searching for %q", p.ID(), query)

	doc, err := p.engine.Scraper.Document(ctx, p.request(searchURL))
	if err != nil {
		return nil, errors.Wrap(p.ID(), "search", searchURL, err)
	}
	return p.parseCards(doc)
}

// parseCards extracts listing items from any card-grid page. Cards
// missing a required field are skipped, never reported.
func (p *Provider) parseCards(doc *goquery.Document) ([]core.ListingItem, error) {
	cards := scraper.SelectFirst(doc, cardSelectors)
	if cards == nil {
		return nil, errors.NotFound("no manga cards found")
	}

	var items []core.ListingItem
	cards.Each(func(_ int, card *goquery.Selection) {
		link := card.Find("a[href]").First()
		if link.Length() == 0 {
			return
		}

		title := cardTitleRules.Extract(card)
		if title == "" {
			return
		}

		detailURL := scraper.ResolveURL(p.config.BaseURL, link.AttrOr("href", ""))
		if detailURL == "" {
			return
		}

		coverURL := cardCoverRules.Extract(card)
		if coverURL == "" {
			return
		}
		coverURL = scraper.ResolveURL(p.config.BaseURL, coverURL)

		latest := cardChapterRules.Extract(card)
		if latest == "" {
			latest = "N/A"
		}

		items = append(items, core.ListingItem{
			Title:         title,
			CoverURL:      coverURL,
			DetailURL:     detailURL,
			LatestChapter: latest,
			Source:        core.SourceAsura,
		})
	})

	items = common.DedupeListing(items)
	if len(items) == 0 {
		return nil, errors.NotFound("no manga cards found")
	}

	p.engine.Logger.Info("[%s] Parsed %d unique cards", p.ID(), len(items))
	return items, nil
}

// GetDetails scrapes a manga detail page. The site lists chapters
// newest-first already, so no reversal happens here.
func (p *Provider) GetDetails(ctx context.Context, detailURL string) (*core.MangaDetail, error) {
	p.engine.Logger.Info("[%s] Fetching details: %s", p.ID(), detailURL)

	doc, err := p.engine.Scraper.Document(ctx, p.request(detailURL))
	if err != nil {
		return nil, errors.Wrap(p.ID(), "get_details", detailURL, err)
	}

	info := doc.Find("div.main-info").First()
	if info.Length() == 0 {
		return nil, errors.Wrap(p.ID(), "get_details", detailURL,
			errors.NotFound("main info region missing"))
	}

	title := detailTitleRules.Extract(info)
	if title == "" {
		title = "Unknown Title"
	}

	description := detailDescriptionRules.Extract(info)
	if description == "" {
		description = "No description available"
	}

	rating := detailRatingRules.Extract(info)
	if rating == "" {
		rating = "N/A"
	}

	cover := detailCoverRules.Extract(info)
	cover = scraper.ResolveURL(p.config.BaseURL, cover)

	var genres []string
	info.Find("span.mgen a").Each(func(_ int, s *goquery.Selection) {
		if g := strings.TrimSpace(s.Text()); g != "" {
			genres = append(genres, g)
		}
	})

	var chapters []core.ChapterRef
	doc.Find("#chapterlist ul li").Each(func(_ int, li *goquery.Selection) {
		link := li.Find("a[href]").First()
		if link.Length() == 0 {
			return
		}
		chapterURL := scraper.ResolveURL(p.config.BaseURL, link.AttrOr("href", ""))
		if chapterURL == "" {
			return
		}

		chapterTitle := strings.TrimSpace(link.Find(".chapternum").First().Text())
		if chapterTitle == "" {
			chapterTitle = "Chapter"
		}
		chapterDate := strings.TrimSpace(link.Find(".chapterdate").First().Text())
		if chapterDate == "" {
			chapterDate = "Unknown"
		}

		chapters = append(chapters, core.ChapterRef{
			Title: chapterTitle,
			URL:   chapterURL,
			Date:  chapterDate,
		})
	})

	return &core.MangaDetail{
		Title:       title,
		CoverURL:    cover,
		Description: description,
		Rating:      rating,
		Status:      common.NormalizeStatus(detailStatusRules.Extract(info)),
		Genres:      genres,
		Author:      "Unknown",
		Chapters:    chapters,
		Source:      core.SourceAsura,
	}, nil
}

// GetChapterImages scrapes the reader page for page image URLs in
// reading order.
func (p *Provider) GetChapterImages(ctx context.Context, chapterURL string) ([]string, error) {
	p.engine.Logger.Info("[%s] Fetching chapter images: %s", p.ID(), chapterURL)

	doc, err := p.engine.Scraper.Document(ctx, p.request(chapterURL))
	if err != nil {
		return nil, errors.Wrap(p.ID(), "get_chapter_images", chapterURL, err)
	}

	area := scraper.SelectFirst(doc, readerSelectors)
	if area == nil {
		return nil, errors.Wrap(p.ID(), "get_chapter_images", chapterURL,
			errors.NotFound("reader area not found"))
	}

	var images []string
	area.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := scraper.ImageURL(img)
		if src == "" {
			return
		}
		src = scraper.ResolveURL(chapterURL, src)
		if p.isChapterImage(src) {
			images = append(images, src)
		}
	})

	if len(images) == 0 {
		return nil, errors.Wrap(p.ID(), "get_chapter_images", chapterURL,
			errors.NotFound("no valid chapter images in reader area"))
	}

	p.engine.Logger.Info("[%s] Extracted %d chapter images", p.ID(), len(images))
	return images, nil
}

// isChapterImage separates page images from the ads and trackers the
// reader interleaves with them. The CDN host is the real check.
func (p *Provider) isChapterImage(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	onCDN := u.Host == p.config.CDNHost ||
		strings.HasSuffix(u.Host, "asurascanz.com") ||
		strings.Contains(strings.ToLower(rawURL), "manga")
	if !onCDN {
		return false
	}

	for _, marker := range []string{"banner", "tracker", "pixel", "/ads/", "advert"} {
		if strings.Contains(strings.ToLower(rawURL), marker) {
			return false
		}
	}
	return true
}
