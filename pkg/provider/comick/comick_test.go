package comick

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
	"manhwaverse/pkg/proxy"
)

func pad(html string) string {
	return html + strings.Repeat("<!-- filler -->", 100)
}

const searchPage = `<html><script>
{"current_page":1,"data":[
  {"title":"Solo Leveling","slug":"solo-leveling","default_thumbnail":"https://cdn1.comicknew.pictures/covers/sl.jpg","last_chapter":179,"bayesian_rating":"9.53"},
  {"title":"Nano Machine","slug":"nano-machine","default_thumbnail":"https://cdn1.comicknew.pictures/covers/nm.jpg","last_chapter":245.5,"bayesian_rating":null},
  {"title":"","slug":"broken"}
]}
</script></html>`

const detailPage = `<html><script>
{"title":"Solo Leveling","hid":"h99","slug":"solo-leveling","desc":"The weakest hunter levels up alone.",
"status":1,"default_thumbnail":"https://cdn1.comicknew.pictures/covers/sl.jpg","bayesian_rating":"9.53",
"md_comic_md_genres":[{"md_genres":{"name":"Action"}},{"md_genres":{"name":"Fantasy"}}],
"authors":[{"name":"Chugong"}],
"firstChapters":[
  {"hid":"c179","chap":"179","lang":"en","created_at":"2025-05-05T00:00:00Z"},
  {"hid":"c178","chap":"178","lang":"en","created_at":"2025-04-28T00:00:00Z"},
  {"hid":"cfr","chap":"178","lang":"fr","created_at":"2025-04-28T00:00:00Z"}
]}
</script></html>`

const readerPage = `<html><script>
{"chapter":{"images":[
  {"url":"https://cdn1.comicknew.pictures/sl/179/001.webp"},
  {"url":"https://cdn1.comicknew.pictures/sl/179/002.webp"},
  {"url":"https://cdn1.comicknew.pictures/sl/179/001.webp"},
  {"url":"https://ads.example.com/spot.gif"}
]}}
</script></html>`

func newFixtureProvider(t *testing.T) (*Provider, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/search":
			_, _ = w.Write([]byte(pad(searchPage)))
		case r.URL.Path == "/comic/solo-leveling":
			_, _ = w.Write([]byte(pad(detailPage)))
		case strings.Contains(r.URL.Path, "-chapter-"):
			_, _ = w.Write([]byte(pad(readerPage)))
		default:
			http.NotFound(w, r)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	config := provider.Config{
		ID:         "comick",
		Name:       "Comick",
		BaseURL:    srv.URL,
		CDNHost:    proxy.ComickCDNHost,
		Timeout:    5 * time.Second,
		MaxRetries: 1,
	}
	return NewWithConfig(engine.New(), config), srv
}

func TestSearchDecodesEmbeddedPayload(t *testing.T) {
	p, srv := newFixtureProvider(t)

	items, err := p.Search(context.Background(), "solo")
	require.NoError(t, err)
	require.Len(t, items, 2, "entries without title or slug must be dropped")

	assert.Equal(t, "Solo Leveling", items[0].Title)
	assert.Equal(t, srv.URL+"/comic/solo-leveling", items[0].DetailURL)
	assert.Equal(t, "Chapter 179", items[0].LatestChapter)
	// Covers on the protected CDN are rewritten through the proxy
	assert.True(t, strings.HasPrefix(items[0].CoverURL, proxy.ComickProxyPath+"?"), items[0].CoverURL)
	assert.Equal(t, "Chapter 245.5", items[1].LatestChapter)
}

func TestGetDetailsBuildsChapterURLs(t *testing.T) {
	p, srv := newFixtureProvider(t)

	detail, err := p.GetDetails(context.Background(), srv.URL+"/comic/solo-leveling")
	require.NoError(t, err)

	assert.Equal(t, "Solo Leveling", detail.Title)
	assert.Equal(t, "The weakest hunter levels up alone.", detail.Description)
	assert.Equal(t, "9.53", detail.Rating)
	assert.Equal(t, "Ongoing", detail.Status)
	assert.Equal(t, []string{"Action", "Fantasy"}, detail.Genres)
	assert.Equal(t, "Chugong", detail.Author)

	require.Len(t, detail.Chapters, 2, "non-English chapters must be dropped")
	assert.Equal(t, "Chapter 179", detail.Chapters[0].Title)
	assert.Equal(t, srv.URL+"/comic/solo-leveling/c179-chapter-179-en", detail.Chapters[0].URL)
	assert.Equal(t, "May 5, 2025", detail.Chapters[0].Date)
}

func TestGetChapterImagesFiltersAndProxies(t *testing.T) {
	p, srv := newFixtureProvider(t)
	chapterURL := srv.URL + "/comic/solo-leveling/c179-chapter-179-en"

	images, err := p.GetChapterImages(context.Background(), chapterURL)
	require.NoError(t, err)
	require.Len(t, images, 2, "off-CDN and duplicate entries must be dropped")

	for _, img := range images {
		assert.True(t, strings.HasPrefix(img, proxy.ComickProxyPath+"?"), img)
	}
}
