package network

import (
	browser "github.com/EDDYCJY/fake-useragent"
)

// fallbackUserAgent is used when the user-agent pool is unavailable
// (offline first run, empty cache).
const fallbackUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// UserAgent returns a desktop Chrome user agent string.
func UserAgent() string {
	if ua := browser.Chrome(); ua != "" {
		return ua
	}
	return fallbackUserAgent
}

// DefaultHeaders builds the browser-like header set every target site
// gates on. referer may be empty; per-source templates override
// individual entries.
func DefaultHeaders(referer string) map[string]string {
	// Accept-Encoding is left to the transport so response bodies are
	// decompressed transparently.
	headers := map[string]string{
		"User-Agent":                UserAgent(),
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.5",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
	}
	if referer != "" {
		headers["Referer"] = referer
	}
	return headers
}
