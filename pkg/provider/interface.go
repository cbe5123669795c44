package provider

import (
	"context"
	"net/url"
	"time"

	"manhwaverse/pkg/core"
)

// Provider is the uniform contract every source extractor implements.
// All operations rebuild their results from scratch per call; nothing
// is cached between requests.
type Provider interface {
	ID() string
	Name() string
	SiteURL() string

	ListPopular(ctx context.Context) ([]core.ListingItem, error)
	ListByGenre(ctx context.Context, genre string) ([]core.ListingItem, error)
	Search(ctx context.Context, query string) ([]core.ListingItem, error)
	GetDetails(ctx context.Context, detailURL string) (*core.MangaDetail, error)
	GetChapterImages(ctx context.Context, chapterURL string) ([]string, error)
}

// Config is the immutable per-source configuration injected into an
// extractor: base URL, fetch budget, and header template. There is no
// ambient global state behind it.
type Config struct {
	ID      string
	Name    string
	BaseURL string

	// CDNHost identifies real page images on reader pages; everything
	// else there is an ad or tracker.
	CDNHost string

	Timeout    time.Duration
	MaxRetries int
	RateLimit  time.Duration

	// Headers are merged over the default browser set.
	Headers map[string]string
}

// Owns reports whether a URL belongs to this provider's site, used to
// auto-detect the source from a bare URL.
func (c Config) Owns(rawURL string) bool {
	host := hostOf(rawURL)
	return host != "" && host == hostOf(c.BaseURL)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
