package mangapark

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manhwaverse/pkg/engine"
	"manhwaverse/pkg/provider"
)

func pad(html string) string {
	return html + strings.Repeat("<!-- filler -->", 100)
}

func card(slug, title, chapter string) string {
	return fmt.Sprintf(`<div class="flex border-b border-b-base-200 pb-3">
  <div class="shrink-0"><img src="/thumb/%s.jpg"></div>
  <h3 class="font-bold"><a class="link-hover link-pri" href="/title/%s">%s</a></h3>
  <div class="flex flex-nowrap justify-between"><a class="link-hover link-primary" href="/title/%s/ch-1">%s</a></div>
</div>`, slug, slug, title, slug, chapter)
}

const detailHTML = `<html><body>
<h3 class="text-lg"><a>The Greatest Estate Developer</a></h3>
<div class="w-24"><img src="/thumb/tged.jpg"></div>
<div class="limit-html"><div class="limit-html-p">An engineering student wakes up in a novel.</div></div>
<span class="text-yellow-500 font-bold">9.2</span>
<span class="badge">Ongoing</span>
<div class="flex items-center flex-wrap"><span>Comedy</span><span>🇰🇷</span><span>,</span><span>Fantasy</span><span>Genres:</span></div>
<div class="mt-2"><a class="link-hover link-primary">Lord Baekmi</a></div>
<div class="scrollable-panel">
  <div><a href="/title/tged/ch-50">Ch. 50</a><time>3 days ago</time></div>
  <div><a href="/title/tged/ch-49">Ch. 49</a><time>10 days ago</time></div>
  <div><a href="/title/tged/about">About</a></div>
</div>
</body></html>`

const readerPage = `<html><body>
<main>
  <div data-name="image-item"><img src="https://s01.mpcdn.org/tged/50/001.webp"></div>
  <div data-name="image-item"><img src="https://s01.mpcdn.org/tged/50/002.webp"></div>
  <div data-name="image-item"><img src="https://s01.mpcdn.org/tged/50/001.webp"></div>
</main>
</body></html>`

func newFixtureProvider(t *testing.T) (*Provider, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/latest/1":
			_, _ = w.Write([]byte(pad("<html><body>" +
				card("tged", "The Greatest Estate Developer", "Ch. 50") +
				card("second-life", "Second Life Ranker", "Ch. 88") +
				"</body></html>")))
		case "/latest/2":
			// Overlaps with page 1
			_, _ = w.Write([]byte(pad("<html><body>" +
				card("tged", "The Greatest Estate Developer", "Ch. 50") +
				card("hero-king", "Hero King", "Ch. 12") +
				"</body></html>")))
		case "/title/tged":
			_, _ = w.Write([]byte(pad(detailHTML)))
		case "/title/tged/ch-50":
			_, _ = w.Write([]byte(pad(readerPage)))
		default:
			http.NotFound(w, r)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	config := provider.Config{
		ID:         "mangapark",
		Name:       "MangaPark",
		BaseURL:    srv.URL,
		Timeout:    5 * time.Second,
		MaxRetries: 1,
	}
	return NewWithConfig(engine.New(), config), srv
}

func TestListPopularMergesAndDeduplicatesPages(t *testing.T) {
	p, srv := newFixtureProvider(t)

	items, err := p.ListPopular(context.Background())
	require.NoError(t, err, "missing pages beyond the fixtures must not fail the listing")
	require.Len(t, items, 3, "the entry shared by both pages must appear once")

	assert.Equal(t, "The Greatest Estate Developer", items[0].Title)
	assert.Equal(t, srv.URL+"/title/tged", items[0].DetailURL)
	assert.Equal(t, srv.URL+"/thumb/tged.jpg", items[0].CoverURL)
	assert.Equal(t, "Ch. 50", items[0].LatestChapter)
	assert.Equal(t, "Hero King", items[2].Title)
}

func TestGetDetailsFiltersGenreNoise(t *testing.T) {
	p, srv := newFixtureProvider(t)

	detail, err := p.GetDetails(context.Background(), srv.URL+"/title/tged")
	require.NoError(t, err)

	assert.Equal(t, "The Greatest Estate Developer", detail.Title)
	assert.Equal(t, "An engineering student wakes up in a novel.", detail.Description)
	assert.Equal(t, "9.2", detail.Rating)
	assert.Equal(t, "Ongoing", detail.Status)
	assert.Equal(t, "Lord Baekmi", detail.Author)
	// Flag emojis, separators, and labels share the genre styling
	assert.Equal(t, []string{"Comedy", "Fantasy"}, detail.Genres)

	require.Len(t, detail.Chapters, 2, "non-chapter links must be dropped")
	assert.Equal(t, "Ch. 50", detail.Chapters[0].Title)
	assert.Equal(t, "3 days ago", detail.Chapters[0].Date)
	assert.Equal(t, srv.URL+"/title/tged/ch-50", detail.Chapters[0].URL)
}

func TestGetChapterImagesDeduplicates(t *testing.T) {
	p, srv := newFixtureProvider(t)

	images, err := p.GetChapterImages(context.Background(), srv.URL+"/title/tged/ch-50")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://s01.mpcdn.org/tged/50/001.webp",
		"https://s01.mpcdn.org/tged/50/002.webp",
	}, images)
}
