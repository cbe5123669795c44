package proxy

import (
	"net/url"
	"strings"
)

// Proxy endpoint paths, one per hotlink-protected CDN.
const (
	ComickProxyPath   = "/api/comick-image-proxy"
	WebtoonsProxyPath = "/api/webtoons-image-proxy"
)

// CDN hosts whose images reject direct hotlinking and must be served
// through the proxy. Other sources' CDNs deliver without a Referer and
// are passed through untouched.
const (
	ComickCDNHost   = "cdn1.comicknew.pictures"
	WebtoonsCDNHost = "img-webtoon.pstatic.net"
)

// Generic referrers used for covers, where no chapter URL exists.
const (
	comickRootReferrer   = "https://comick.live/"
	webtoonsRootReferrer = "https://www.webtoons.com/"
)

type cdnRoute struct {
	proxyPath   string
	rootReferer string
}

var cdnRoutes = map[string]cdnRoute{
	ComickCDNHost:   {ComickProxyPath, comickRootReferrer},
	WebtoonsCDNHost: {WebtoonsProxyPath, webtoonsRootReferrer},
}

// IsKnownCDNHost reports whether rawURL points at a hotlink-protected
// CDN this service proxies.
func IsKnownCDNHost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	_, ok := cdnRoutes[u.Host]
	return ok
}

// ToProxy rewrites an image URL into a same-origin proxy path carrying
// the original URL and a referrer as query parameters. URLs outside
// the known CDN set are returned unchanged, so the rewrite is
// idempotent on non-matching hosts. referrerURL is typically the
// chapter URL; when empty, the source's site root is used (covers).
func ToProxy(imgURL, referrerURL string) string {
	u, err := url.Parse(imgURL)
	if err != nil {
		return imgURL
	}

	route, ok := cdnRoutes[u.Host]
	if !ok {
		return imgURL
	}

	referrer := referrerURL
	if referrer == "" {
		referrer = route.rootReferer
	}

	q := url.Values{}
	q.Set("img_url", imgURL)
	q.Set("chapter_url", referrer)
	return route.proxyPath + "?" + q.Encode()
}

// placeholderTokens mark ad, tracker, and placeholder images that
// reader pages interleave with real page images. Matched against URL
// path segments, not raw substrings, so "reader" does not trip "ad".
var placeholderTokens = map[string]bool{
	"ad":          true,
	"ads":         true,
	"advert":      true,
	"banner":      true,
	"tracker":     true,
	"tracking":    true,
	"pixel":       true,
	"placeholder": true,
	"spacer":      true,
}

// IsPlaceholderImage reports whether an image URL looks like an ad,
// tracker, or placeholder rather than a page image.
func IsPlaceholderImage(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	if u.Scheme == "data" {
		return true
	}

	segments := strings.FieldsFunc(strings.ToLower(u.Path), func(r rune) bool {
		return r == '/' || r == '-' || r == '_' || r == '.'
	})
	for _, seg := range segments {
		if placeholderTokens[seg] {
			return true
		}
	}
	return false
}
