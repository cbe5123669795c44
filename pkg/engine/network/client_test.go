package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manhwaverse/pkg/engine/logger"
	"manhwaverse/pkg/errors"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	return NewClient(logger.NewService(""))
}

// page returns a body comfortably above the small-response guard.
func page(content string) string {
	return content + strings.Repeat("<!-- filler -->", 100)
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page("<html>ok</html>")))
	}))
	defer srv.Close()

	resp, err := newTestClient(t).Fetch(context.Background(), &Request{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "<html>ok</html>")
	assert.Equal(t, "text/html", resp.ContentType)
}

func TestFetchSendsBrowserHeaders(t *testing.T) {
	var gotUA, gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
		_, _ = w.Write([]byte(page("ok")))
	}))
	defer srv.Close()

	_, err := newTestClient(t).Fetch(context.Background(), &Request{
		URL:     srv.URL,
		Referer: "https://example.com/",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, gotUA)
	assert.Equal(t, "https://example.com/", gotReferer)
}

func TestFetchRetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(page("recovered")))
	}))
	defer srv.Close()

	resp, err := newTestClient(t).Fetch(context.Background(), &Request{URL: srv.URL, MaxRetries: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Contains(t, string(resp.Body), "recovered")
}

func TestFetchForbiddenShortCircuits(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient(t).Fetch(context.Background(), &Request{URL: srv.URL, MaxRetries: 3})
	require.Error(t, err)
	assert.True(t, errors.IsBlocked(err))
	assert.Equal(t, 1, attempts, "blocked fetches must not retry")
}

func TestFetchDetectsBotWallInterstitial(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page("<title>Just a moment...</title>")))
	}))
	defer srv.Close()

	_, err := newTestClient(t).Fetch(context.Background(), &Request{URL: srv.URL})
	require.Error(t, err)
	assert.True(t, errors.IsBlocked(err))
}

func TestFetchRejectsSmallResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("tiny"))
	}))
	defer srv.Close()

	_, err := newTestClient(t).Fetch(context.Background(), &Request{URL: srv.URL})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSmallResponse)
}

func TestFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(t).Fetch(context.Background(), &Request{URL: srv.URL})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestFetchBadStatusNotRetried(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	_, err := newTestClient(t).Fetch(context.Background(), &Request{URL: srv.URL, MaxRetries: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrBadStatus)
	assert.Equal(t, 1, attempts)
}

func TestFetchRateLimitedHonorsContextDuringWait(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	// The extended 429 wait is longer than the deadline; cancellation
	// must win instead of sleeping it out.
	start := time.Now()
	_, err := newTestClient(t).Fetch(ctx, &Request{URL: srv.URL, MaxRetries: 3})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}
