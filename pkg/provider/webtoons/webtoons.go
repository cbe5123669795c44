package webtoons

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

// DefaultConfig returns the stock configuration for the English
// Webtoons portal.
func DefaultConfig() provider.Config {
	return provider.Config{
		ID:         string(core.SourceWebtoons),
		Name:       "Webtoons",
		BaseURL:    "https://www.webtoons.com/en/",
		CDNHost:    proxy.WebtoonsCDNHost,
		Timeout:    15 * time.Second,
		MaxRetries: 3,
		RateLimit:  500 * time.Millisecond,
		Headers: map[string]string{
			"Referer": "https://www.webtoons.com/",
		},
	}
}

var _ provider.Provider = (*Provider)(nil)

// Provider scrapes the Korean webtoon platform. Episode images are
// hotlink-protected, so everything from the CDN is rewritten through
// the image proxy.
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

// ListPopular serves the action genre as the popular feed; the portal
// has no cross-genre popularity page with usable markup.
func (p *Provider) ListPopular(ctx context.Context) ([]core.ListingItem, error) {
	return p.ListByGenre(ctx, "action")
}

// ListByGenre scrapes a genre landing page.
func (p *Provider) ListByGenre(ctx context.Context, genre string) ([]core.ListingItem, error) {
	genre = strings.ToLower(strings.TrimSpace(genre))
	genreURL := scraper.ResolveURL(p.config.BaseURL, fmt.Sprintf("genres/%s/", url.PathEscape(genre)))
	p.engine.Logger.Info("[%s] Fetching genre %q", p.ID(), genre)

	doc, err := p.engine.Scraper.Document(ctx, p.request(genreURL))
	if err != nil {
		return nil, errors.Wrap(p.ID(), "list_by_genre", genreURL, err)
	}

	list := doc.Find("ul.webtoon_list").First()
	if list.Length() == 0 {
		return nil, errors.Wrap(p.ID(), "list_by_genre", genreURL,
			errors.NotFound("webtoon list missing"))
	}
	return p.parseCards(list.Find("li"))
}

// Search scrapes the keyword search results.
func (p *Provider) Search(ctx context.Context, query string) ([]core.ListingItem, error) {
	searchURL := scraper.ResolveURL(p.config.BaseURL, "search?keyword="+url.QueryEscape(query))
	p.engine.Logger.Info("[%s] Searching for %q", p.ID(), query)

	doc, err := p.engine.Scraper.Document(ctx, p.request(searchURL))
	if err != nil {
		return nil, errors.Wrap(p.ID(), "search", searchURL, err)
	}

	container := scraper.SelectFirst(doc, []string{".search_result_list", ".webtoon_list"})
	if container == nil {
		// An empty result page is a valid search response
		return nil, nil
	}
	items, err := p.parseCards(container.Find("li"))
	if errors.IsNotFound(err) {
		return nil, nil
	}
	return items, err
}

var cardTitleRules = scraper.RuleSet{
	{Selector: "strong.title"},
	{Selector: ".subj"},
}

var cardCoverRules = scraper.RuleSet{
	{Selector: "img", Attr: "src"},
	{Selector: "img", Attr: "data-src"},
}

func (p *Provider) parseCards(cards *goquery.Selection) ([]core.ListingItem, error) {
	var items []core.ListingItem
	cards.Each(func(_ int, li *goquery.Selection) {
		title := cardTitleRules.Extract(li)
		if title == "" {
			return
		}

		coverURL := cardCoverRules.Extract(li)
		if coverURL == "" {
			return
		}

		link := li.Find("a[href]").First()
		if link.Length() == 0 {
			return
		}
		detailURL := scraper.ResolveURL(p.config.BaseURL, link.AttrOr("href", ""))

		items = append(items, core.ListingItem{
			Title:         title,
			CoverURL:      proxy.ToProxy(coverURL, ""),
			DetailURL:     detailURL,
			LatestChapter: "N/A",
			Source:        core.SourceWebtoons,
		})
	})

	items = common.DedupeListing(items)
	if len(items) == 0 {
		return nil, errors.NotFound("no webtoon cards found")
	}
	return items, nil
}

// GetDetails scrapes a series page. Episodes are listed oldest-first
// there, so the chapter list is reversed to the newest-first contract.
func (p *Provider) GetDetails(ctx context.Context, detailURL string) (*core.MangaDetail, error) {
	p.engine.Logger.Info("[%s] Fetching details: %s", p.ID(), detailURL)

	doc, err := p.engine.Scraper.Document(ctx, p.request(detailURL))
	if err != nil {
		return nil, errors.Wrap(p.ID(), "get_details", detailURL, err)
	}

	title := strings.TrimSpace(doc.Find("h1.subj").First().Text())
	if title == "" {
		return nil, errors.Wrap(p.ID(), "get_details", detailURL,
			errors.NotFound("series title missing"))
	}

	cover := scraper.ImageURL(doc.Find("span.thmb img").First())

	description := strings.TrimSpace(doc.Find("p.summary").First().Text())
	if description == "" {
		description = "No description available"
	}

	var genres []string
	doc.Find("h2.genre a").Each(func(_ int, s *goquery.Selection) {
		if g := strings.TrimSpace(s.Text()); g != "" {
			genres = append(genres, g)
		}
	})
	if len(genres) == 0 {
		if g := strings.TrimSpace(doc.Find("h2.genre").First().Text()); g != "" {
			genres = append(genres, g)
		}
	}

	author := strings.TrimSpace(doc.Find("div.author_area .author").First().Text())
	if author == "" {
		author = strings.TrimSpace(doc.Find("div.author_area").First().Text())
	}
	if author == "" {
		author = "Unknown"
	}

	var chapters []core.ChapterRef
	doc.Find("ul#_listUl li._episodeItem").Each(func(i int, li *goquery.Selection) {
		link := li.Find("a[href]").First()
		if link.Length() == 0 {
			return
		}
		episodeURL := scraper.ResolveURL(p.config.BaseURL, link.AttrOr("href", ""))
		if episodeURL == "" {
			return
		}

		episodeTitle := strings.TrimSpace(li.Find(".sub_title").First().Text())
		if episodeTitle == "" {
			episodeTitle = fmt.Sprintf("Episode %d", i+1)
		}
		date := strings.TrimSpace(li.Find(".date").First().Text())
		if date == "" {
			date = "Unknown"
		}

		chapters = append(chapters, core.ChapterRef{
			Title: episodeTitle,
			URL:   episodeURL,
			Date:  date,
		})
	})

	// The episode list runs oldest-first on the page
	common.ReverseChapters(chapters)

	return &core.MangaDetail{
		Title:       title,
		CoverURL:    proxy.ToProxy(cover, ""),
		Description: description,
		// The portal counts likes rather than star ratings, and every
		// listed series is effectively running
		Rating:   "N/A",
		Status:   core.StatusOngoing,
		Genres:   genres,
		Author:   author,
		Chapters: chapters,
		Source:   core.SourceWebtoons,
	}, nil
}

// GetChapterImages scrapes an episode viewer and rewrites every CDN
// image through the proxy, since the CDN rejects requests without the
// episode page as Referer.
func (p *Provider) GetChapterImages(ctx context.Context, chapterURL string) ([]string, error) {
	p.engine.Logger.Info("[%s] Fetching episode images: %s", p.ID(), chapterURL)

	doc, err := p.engine.Scraper.Document(ctx, p.request(chapterURL))
	if err != nil {
		return nil, errors.Wrap(p.ID(), "get_chapter_images", chapterURL, err)
	}

	viewer := scraper.SelectFirst(doc, []string{"#_imageList", ".viewer_img"})
	if viewer == nil {
		return nil, errors.Wrap(p.ID(), "get_chapter_images", chapterURL,
			errors.NotFound("viewer area not found"))
	}

	var images []string
	viewer.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := scraper.ImageURL(img)
		if src == "" || !strings.Contains(src, p.config.CDNHost) {
			return
		}
		images = append(images, proxy.ToProxy(src, chapterURL))
	})

	if len(images) == 0 {
		return nil, errors.Wrap(p.ID(), "get_chapter_images", chapterURL,
			errors.NotFound("no episode images in viewer"))
	}

	p.engine.Logger.Info("[%s] Extracted %d episode images", p.ID(), len(images))
	return images, nil
}
