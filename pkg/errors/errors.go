package errors

import (
	"errors"
	"fmt"
)

// Failure classes for the fetch layer. Handlers map these onto HTTP
// status codes; everything else is a generic 500.
var (
	// ErrNotFound means the upstream returned 404 or an extractor
	// produced zero usable results.
	ErrNotFound = errors.New("not found")

	// ErrBlocked means the upstream answered 403 or the body carried an
	// anti-bot marker. Retrying against an active bot-wall wastes calls,
	// so the fetch layer short-circuits on this.
	ErrBlocked = errors.New("blocked by anti-bot protection")

	// ErrRateLimited means the upstream answered 429 and retries with an
	// extended wait were exhausted.
	ErrRateLimited = errors.New("rate limited")

	// ErrSmallResponse means a 200 response carried an implausibly small
	// body, which in practice is an error or interstitial page.
	ErrSmallResponse = errors.New("response body suspiciously small")

	// ErrBadStatus is the generic non-2xx failure after retries.
	ErrBadStatus = errors.New("unexpected HTTP status")
)

// ScrapeError wraps a failure with the provider and operation it
// happened in. Providers return these from their boundary; nothing
// deeper than the fetch layer retries.
type ScrapeError struct {
	Source string
	Op     string
	URL    string
	Err    error
}

func (e *ScrapeError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("[%s] %s %s: %v", e.Source, e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Source, e.Op, e.Err)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// Wrap attaches provider context to err. Returns nil for a nil err so
// call sites can wrap unconditionally.
func Wrap(source, op, url string, err error) error {
	if err == nil {
		return nil
	}
	return &ScrapeError{Source: source, Op: op, URL: url, Err: err}
}

// NotFound builds an ErrNotFound with a human-readable reason.
func NotFound(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsBlocked reports whether err is (or wraps) ErrBlocked.
func IsBlocked(err error) bool {
	return errors.Is(err, ErrBlocked)
}

// IsRateLimited reports whether err is (or wraps) ErrRateLimited.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
