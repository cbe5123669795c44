package network

import (
	"context"
	"net/url"
	"sync"
	"time"
)

// RateLimiter provides per-domain request spacing so one provider's
// burst cannot trip another provider's anti-bot threshold.
type RateLimiter struct {
	domains map[string]*domainLimiter
	mu      sync.RWMutex
}

// domainLimiter tracks the last request time for a specific domain
type domainLimiter struct {
	lastRequest time.Time
	mu          sync.Mutex
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		domains: make(map[string]*domainLimiter),
	}
}

// Wait blocks until the domain of rawURL is allowed another request.
// A zero delay disables limiting.
func (r *RateLimiter) Wait(ctx context.Context, rawURL string, delay time.Duration) error {
	if delay == 0 {
		return nil
	}
	return r.getLimiter(ExtractDomain(rawURL)).wait(ctx, delay)
}

// getLimiter returns or creates a limiter for a domain
func (r *RateLimiter) getLimiter(domain string) *domainLimiter {
	r.mu.RLock()
	limiter, exists := r.domains[domain]
	r.mu.RUnlock()

	if exists {
		return limiter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := r.domains[domain]; exists {
		return limiter
	}

	limiter = &domainLimiter{}
	r.domains[domain] = limiter
	return limiter
}

// wait enforces the rate limit
func (l *domainLimiter) wait(ctx context.Context, delay time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	elapsed := time.Since(l.lastRequest)
	if elapsed < delay {
		timer := time.NewTimer(delay - elapsed)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	l.lastRequest = time.Now()
	return nil
}

// ExtractDomain extracts the host from a URL, or returns the input
// unchanged when it does not parse.
func ExtractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
