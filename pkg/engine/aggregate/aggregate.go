package aggregate

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"manhwaverse/pkg/core"
	"manhwaverse/pkg/engine"
	"manhwaverse/pkg/errors"
	"manhwaverse/pkg/provider"
)

// perSourceTimeout bounds each source's contribution to a fan-out so
// one slow site cannot stall the merged response.
const perSourceTimeout = 30 * time.Second

// maxConcurrentSources caps how many sources are scraped at once.
const maxConcurrentSources = 4

// Service fans requests out across every registered source and merges
// the results. A failing source contributes nothing; the merge only
// fails when every source does.
type Service struct {
	engine *engine.Engine
}

// NewService creates the aggregation service.
func NewService(e *engine.Engine) *Service {
	return &Service{engine: e}
}

// Popular merges the popular listings of all sources. The second
// return value counts contributed items per source ID.
func (s *Service) Popular(ctx context.Context) ([]core.ListingItem, map[string]int, error) {
	return s.fanOut(ctx, "popular", func(ctx context.Context, p provider.Provider) ([]core.ListingItem, error) {
		return p.ListPopular(ctx)
	})
}

// SearchAll merges search results from all sources.
func (s *Service) SearchAll(ctx context.Context, query string) ([]core.ListingItem, map[string]int, error) {
	return s.fanOut(ctx, "search", func(ctx context.Context, p provider.Provider) ([]core.ListingItem, error) {
		return p.Search(ctx, query)
	})
}

func (s *Service) fanOut(ctx context.Context, op string, call func(context.Context, provider.Provider) ([]core.ListingItem, error)) ([]core.ListingItem, map[string]int, error) {
	providers := s.engine.AllProviders()

	// Results stay slot-indexed so merged output follows registration
	// order regardless of which source answers first.
	results := make([][]core.ListingItem, len(providers))
	sem := make(chan struct{}, maxConcurrentSources)
	var wg sync.WaitGroup
	for i, p := range providers {
		wg.Add(1)
		go func(i int, p provider.Provider) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			callCtx, cancel := context.WithTimeout(ctx, perSourceTimeout)
			defer cancel()

			items, err := call(callCtx, p)
			if err != nil {
				s.engine.Logger.Warn("[aggregate] %s failed for %s: %v", op, p.ID(), err)
				return
			}
			results[i] = items
		}(i, p)
	}
	wg.Wait()

	var merged []core.ListingItem
	counts := make(map[string]int, len(providers))
	for i, p := range providers {
		counts[p.ID()] = len(results[i])
		merged = append(merged, results[i]...)
	}

	if len(merged) == 0 {
		return nil, counts, errors.NotFound("all sources failed for %s", op)
	}
	return merged, counts, nil
}

// chapterMarkers are the path fragments that separate a title URL from
// its chapter suffix, checked against the last occurrence.
var chapterMarkers = []string{"/chapter-", "/chapter/", "/ch-", "/episode/"}

// MangaURLFromChapter derives the title page URL from a chapter URL by
// trimming the chapter suffix. Query and fragment are dropped first.
// When no known marker appears, the last path segment is removed.
func MangaURLFromChapter(chapterURL string) string {
	u, err := url.Parse(chapterURL)
	if err != nil {
		return chapterURL
	}
	u.RawQuery = ""
	u.Fragment = ""

	path := u.Path
	for _, marker := range chapterMarkers {
		if idx := strings.LastIndex(path, marker); idx > 0 {
			u.Path = path[:idx]
			return u.String()
		}
	}

	trimmed := strings.TrimSuffix(path, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		u.Path = trimmed[:idx]
	}
	return u.String()
}

// ChapterNavigation stitches a reader payload together: the chapter's
// images plus links to the adjacent chapters from the title's chapter
// list. Images are mandatory; when the title page cannot be scraped
// the payload degrades to images with no navigation rather than
// failing the whole request.
func (s *Service) ChapterNavigation(ctx context.Context, chapterURL string) (*core.ChapterNav, error) {
	p := s.engine.ProviderForURL(chapterURL)
	if p == nil {
		return nil, errors.NotFound("no source recognizes URL: %s", chapterURL)
	}

	images, err := p.GetChapterImages(ctx, chapterURL)
	if err != nil {
		return nil, err
	}

	nav := &core.ChapterNav{
		MangaTitle:   "Unknown Manga",
		CurrentTitle: "Unknown Chapter",
		ImageURLs:    images,
	}

	mangaURL := MangaURLFromChapter(chapterURL)
	detail, err := p.GetDetails(ctx, mangaURL)
	if err != nil {
		s.engine.Logger.Warn("[aggregate] navigation degraded, details failed for %s: %v", mangaURL, err)
		return nav, nil
	}
	nav.MangaTitle = detail.Title

	// Chapter lists are newest-first, so the previous chapter sits at
	// the next index.
	for i, ch := range detail.Chapters {
		if ch.URL != chapterURL {
			continue
		}
		nav.CurrentTitle = ch.Title
		if i+1 < len(detail.Chapters) {
			prev := detail.Chapters[i+1].URL
			nav.PrevURL = &prev
		}
		if i > 0 {
			next := detail.Chapters[i-1].URL
			nav.NextURL = &next
		}
		break
	}
	return nav, nil
}
