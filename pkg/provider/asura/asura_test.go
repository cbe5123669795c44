package asura

import (
	"context"
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

// pad pushes fixture pages past the small-response guard.
func pad(html string) string {
	return html + strings.Repeat("<!-- filler -->", 100)
}

const homepageHTML = `<html><body>
<div class="bs">
  <div class="bsx">
    <a href="/manga/solo-max" title="Solo Max-Level Newbie"><img data-src="/covers/solo.jpg"></a>
    <div class="epxs">Chapter 120</div>
  </div>
  <div class="bsx">
    <a href="/manga/return-disaster" title="Return of the Disaster"><img src="/covers/rod.jpg"></a>
    <div class="epxs">Chapter 77</div>
  </div>
  <div class="bsx">
    <a href="/manga/solo-max" title="Solo Max-Level Newbie"><img src="/covers/solo.jpg"></a>
    <div class="epxs">Chapter 120</div>
  </div>
  <div class="bsx">
    <a href="/manga/broken"></a>
  </div>
</div>
</body></html>`

const detailHTML = `<html><body>
<div class="main-info">
  <h1 class="entry-title">Solo Max-Level Newbie</h1>
  <div class="thumb"><img src="/covers/solo-big.jpg"></div>
  <div class="entry-content" itemprop="description"><p>A gamer gets a second chance.</p></div>
  <div class="num" itemprop="ratingValue">9.7</div>
  <div class="imptdt"><i>Ongoing</i></div>
  <span class="mgen"><a>Action</a><a>Fantasy</a></span>
</div>
<div id="chapterlist"><ul>
  <li><a href="/solo-max-chapter-120/"><span class="chapternum">Chapter 120</span><span class="chapterdate">May 5, 2025</span></a></li>
  <li><a href="/solo-max-chapter-119/"><span class="chapternum">Chapter 119</span><span class="chapterdate">Apr 28, 2025</span></a></li>
</ul></div>
</body></html>`

func readerHTML(cdn string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="readerarea">`)
	// Ten real pages on the CDN
	for _, name := range []string{"01", "02", "03", "04", "05", "06", "07", "08", "09", "10"} {
		b.WriteString(`<img src="https://` + cdn + `/solo/` + name + `.jpg">`)
	}
	// Two interleaved non-page images
	b.WriteString(`<img src="https://` + cdn + `/promo/banner.jpg">`)
	b.WriteString(`<img src="https://tracker.example.net/pixel.gif">`)
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func newFixtureProvider(t *testing.T) (*Provider, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/":
			_, _ = w.Write([]byte(pad(homepageHTML)))
		case r.URL.Path == "/genres/action/":
			_, _ = w.Write([]byte(pad(homepageHTML)))
		case r.URL.Path == "/manga/solo-max":
			_, _ = w.Write([]byte(pad(detailHTML)))
		case r.URL.Path == "/solo-max-chapter-120/":
			_, _ = w.Write([]byte(pad(readerHTML("cdn.fixture.test"))))
		default:
			http.NotFound(w, r)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	config := provider.Config{
		ID:         "asura",
		Name:       "AsuraScanz",
		BaseURL:    srv.URL,
		CDNHost:    "cdn.fixture.test",
		Timeout:    5 * time.Second,
		MaxRetries: 1,
	}
	return NewWithConfig(engine.New(), config), srv
}

func TestListPopularDeduplicatesCards(t *testing.T) {
	p, srv := newFixtureProvider(t)

	items, err := p.ListPopular(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2, "repeated and incomplete cards must be dropped")

	assert.Equal(t, "Solo Max-Level Newbie", items[0].Title)
	assert.Equal(t, srv.URL+"/manga/solo-max", items[0].DetailURL)
	assert.Equal(t, srv.URL+"/covers/solo.jpg", items[0].CoverURL)
	assert.Equal(t, "Chapter 120", items[0].LatestChapter)

	seen := map[string]bool{}
	for _, item := range items {
		assert.False(t, seen[item.DetailURL], "duplicate DetailURL %s", item.DetailURL)
		seen[item.DetailURL] = true
	}
}

func TestListByGenreUnknownGenreIsNotFound(t *testing.T) {
	p, _ := newFixtureProvider(t)

	_, err := p.ListByGenre(context.Background(), "does-not-exist")
	require.Error(t, err)
}

func TestGetDetails(t *testing.T) {
	p, srv := newFixtureProvider(t)

	detail, err := p.GetDetails(context.Background(), srv.URL+"/manga/solo-max")
	require.NoError(t, err)

	assert.Equal(t, "Solo Max-Level Newbie", detail.Title)
	assert.Equal(t, "A gamer gets a second chance.", detail.Description)
	assert.Equal(t, "9.7", detail.Rating)
	assert.Equal(t, "Ongoing", detail.Status)
	assert.Equal(t, []string{"Action", "Fantasy"}, detail.Genres)
	assert.Equal(t, srv.URL+"/covers/solo-big.jpg", detail.CoverURL)

	require.Len(t, detail.Chapters, 2)
	// Newest-first as the site lists them
	assert.Equal(t, "Chapter 120", detail.Chapters[0].Title)
	assert.Equal(t, "May 5, 2025", detail.Chapters[0].Date)
	assert.Equal(t, srv.URL+"/solo-max-chapter-120/", detail.Chapters[0].URL)
}

func TestGetChapterImagesFiltersNonPageImages(t *testing.T) {
	p, srv := newFixtureProvider(t)

	images, err := p.GetChapterImages(context.Background(), srv.URL+"/solo-max-chapter-120/")
	require.NoError(t, err)
	require.Len(t, images, 10, "banner and tracker images must be filtered out")

	for _, img := range images {
		assert.Contains(t, img, "cdn.fixture.test/solo/")
	}
	assert.Equal(t, "https://cdn.fixture.test/solo/01.jpg", images[0])
}
