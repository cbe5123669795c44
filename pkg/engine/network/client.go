package network

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"

	"manhwaverse/pkg/engine/logger"
	"manhwaverse/pkg/errors"
)

const (
	// DefaultRetries is the bounded retry budget for one fetch.
	DefaultRetries = 3

	// DefaultRetryDelay is the linear backoff base: attempt n sleeps
	// n * DefaultRetryDelay before retrying.
	DefaultRetryDelay = 1 * time.Second

	// rateLimitDelay is the extended wait after a 429, also scaled by
	// attempt number.
	rateLimitDelay = 5 * time.Second

	// MinBodySize guards against error/interstitial pages served with
	// HTTP 200. Real listing and chapter pages are never this small.
	MinBodySize = 1000
)

// Request describes one fetch. Headers override the default browser
// set; zero values fall back to the client defaults.
type Request struct {
	URL        string
	Headers    map[string]string
	Referer    string
	Timeout    time.Duration
	MaxRetries int
	RateLimit  time.Duration
}

// Response is a fully buffered fetch result.
type Response struct {
	StatusCode  int
	Body        []byte
	ContentType string
	FinalURL    string
}

// Client is the shared HTTP fetch service. It owns the browser-like
// transport, the per-domain rate limiter, and the retry policy; it is
// safe for concurrent use.
type Client struct {
	httpClient *http.Client
	limiter    *RateLimiter
	logger     logger.Logger
}

// NewClient creates a fetch client with a browser-fingerprint
// transport. Redirects are followed by default.
func NewClient(log logger.Logger) *Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		httpClient: &http.Client{
			Transport: cloudflarebp.AddCloudFlareByPass(transport),
		},
		limiter: NewRateLimiter(),
		logger:  log,
	}
}

// botWallMarkers are body substrings that identify an anti-bot
// interstitial served with a 2xx status.
var botWallMarkers = []string{
	"just a moment",
	"checking your browser",
	"cf-chl",
	"ddos-guard",
	"attention required",
}

func isBotWall(body []byte) bool {
	// Interstitials are small; only inspect the head of the page.
	sample := body
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	lower := strings.ToLower(string(sample))
	for _, marker := range botWallMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Fetch performs a GET with the browser header set, bounded retries
// with linear backoff, and failure classification. 5xx and network
// errors retry; 429 retries after an extended wait; 403 and bot-wall
// bodies short-circuit with ErrBlocked since retrying against an
// active bot-wall wastes calls.
func (c *Client) Fetch(ctx context.Context, req *Request) (*Response, error) {
	retries := req.MaxRetries
	if retries <= 0 {
		retries = DefaultRetries
	}

	if err := c.limiter.Wait(ctx, req.URL, req.RateLimit); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		resp, err := c.attempt(ctx, req)
		if err != nil {
			lastErr = err
			c.logger.Debug("[http] GET %s failed (attempt %d/%d): %v", req.URL, attempt, retries, err)
			if err := sleepCtx(ctx, DefaultRetryDelay*time.Duration(attempt)); err != nil {
				return nil, err
			}
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if isBotWall(resp.Body) {
				c.logger.Warn("[http] bot-wall interstitial at %s", req.URL)
				return nil, errors.ErrBlocked
			}
			if len(resp.Body) < MinBodySize {
				return nil, fmt.Errorf("%w: %d bytes from %s", errors.ErrSmallResponse, len(resp.Body), req.URL)
			}
			return resp, nil

		case resp.StatusCode == http.StatusForbidden:
			return nil, errors.ErrBlocked

		case resp.StatusCode == http.StatusNotFound:
			return nil, errors.NotFound("HTTP 404 for %s", req.URL)

		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = errors.ErrRateLimited
			c.logger.Warn("[http] rate limited at %s, extended wait (attempt %d/%d)", req.URL, attempt, retries)
			if err := sleepCtx(ctx, rateLimitDelay*time.Duration(attempt)); err != nil {
				return nil, err
			}

		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("%w: %d from %s", errors.ErrBadStatus, resp.StatusCode, req.URL)
			c.logger.Debug("[http] server error %d at %s (attempt %d/%d)", resp.StatusCode, req.URL, attempt, retries)
			if err := sleepCtx(ctx, DefaultRetryDelay*time.Duration(attempt)); err != nil {
				return nil, err
			}

		default:
			// Remaining 4xx codes are not retryable
			return nil, fmt.Errorf("%w: %d from %s", errors.ErrBadStatus, resp.StatusCode, req.URL)
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("request to %s failed after %d attempts", req.URL, retries)
	}
	return nil, lastErr
}

// attempt performs a single buffered GET.
func (c *Client) attempt(ctx context.Context, req *Request) (*Response, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, err
	}

	for k, v := range DefaultHeaders(req.Referer) {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// FetchRaw performs a single unclassified GET and hands back the live
// response for streaming. The image proxy uses this; callers own the
// body. No retries and no small-body guard, since image payloads have
// no plausible minimum size.
func (c *Client) FetchRaw(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("User-Agent", UserAgent())
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	return c.httpClient.Do(httpReq)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
