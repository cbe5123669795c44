package webtoons

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

const genreHTML = `<html><body>
<ul class="webtoon_list">
  <li>
    <a href="/en/action/tower-of-god/list?title_no=95"><img src="https://swebtoon.pstatic.net/tog.jpg"><strong class="title">Tower of God</strong></a>
    <div class="author">SIU</div>
  </li>
  <li>
    <a href="/en/action/omniscient-reader/list?title_no=2154"><img data-src="https://swebtoon.pstatic.net/orv.jpg"><strong class="title">Omniscient Reader</strong></a>
    <div class="author">Sing Shong</div>
  </li>
</ul>
</body></html>`

const detailHTML = `<html><body>
<h1 class="subj">Tower of God</h1>
<span class="thmb"><img src="https://swebtoon.pstatic.net/tog-big.jpg"></span>
<p class="summary">A boy enters a mysterious tower.</p>
<h2 class="genre"><a>Fantasy</a></h2>
<div class="author_area"><span class="author">SIU</span></div>
<ul id="_listUl">
  <li class="_episodeItem"><a href="/en/action/tower-of-god/ep-1/viewer?episode_no=1"><span class="sub_title">Episode 1</span><span class="date">Jul 6, 2014</span></a></li>
  <li class="_episodeItem"><a href="/en/action/tower-of-god/ep-2/viewer?episode_no=2"><span class="sub_title">Episode 2</span><span class="date">Jul 13, 2014</span></a></li>
  <li class="_episodeItem"><a href="/en/action/tower-of-god/ep-3/viewer?episode_no=3"><span class="sub_title">Episode 3</span><span class="date">Jul 20, 2014</span></a></li>
</ul>
</body></html>`

const viewerHTML = `<html><body>
<div id="_imageList">
  <img src="https://img-webtoon.pstatic.net/ep1/001.jpg">
  <img data-src="https://img-webtoon.pstatic.net/ep1/002.jpg">
  <img src="https://static.webtoons.com/ui/sprite.png">
</div>
</body></html>`

func newFixtureProvider(t *testing.T) (*Provider, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/en/genres/"):
			_, _ = w.Write([]byte(pad(genreHTML)))
		case strings.HasSuffix(r.URL.Path, "/list"):
			_, _ = w.Write([]byte(pad(detailHTML)))
		case strings.HasSuffix(r.URL.Path, "/viewer"):
			_, _ = w.Write([]byte(pad(viewerHTML)))
		default:
			http.NotFound(w, r)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	config := provider.Config{
		ID:         "webtoons",
		Name:       "Webtoons",
		BaseURL:    srv.URL + "/en/",
		CDNHost:    proxy.WebtoonsCDNHost,
		Timeout:    5 * time.Second,
		MaxRetries: 1,
	}
	return NewWithConfig(engine.New(), config), srv
}

func TestListByGenreParsesWebtoonList(t *testing.T) {
	p, srv := newFixtureProvider(t)

	items, err := p.ListByGenre(context.Background(), "action")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Tower of God", items[0].Title)
	assert.Equal(t, srv.URL+"/en/action/tower-of-god/list?title_no=95", items[0].DetailURL)
	// Covers live on an unprotected host and pass through unrewritten
	assert.Equal(t, "https://swebtoon.pstatic.net/tog.jpg", items[0].CoverURL)
	assert.Equal(t, "Omniscient Reader", items[1].Title)
}

func TestGetDetailsReversesEpisodesToNewestFirst(t *testing.T) {
	p, srv := newFixtureProvider(t)

	detail, err := p.GetDetails(context.Background(), srv.URL+"/en/action/tower-of-god/list?title_no=95")
	require.NoError(t, err)

	assert.Equal(t, "Tower of God", detail.Title)
	assert.Equal(t, "A boy enters a mysterious tower.", detail.Description)
	assert.Equal(t, []string{"Fantasy"}, detail.Genres)
	assert.Equal(t, "SIU", detail.Author)
	assert.Equal(t, "Ongoing", detail.Status)

	require.Len(t, detail.Chapters, 3)
	assert.Equal(t, "Episode 3", detail.Chapters[0].Title)
	assert.Equal(t, "Episode 1", detail.Chapters[2].Title)
}

func TestGetChapterImagesRewritesCDNThroughProxy(t *testing.T) {
	p, srv := newFixtureProvider(t)
	chapterURL := srv.URL + "/en/action/tower-of-god/ep-1/viewer"

	images, err := p.GetChapterImages(context.Background(), chapterURL)
	require.NoError(t, err)
	require.Len(t, images, 2, "the UI sprite must be filtered out")

	for _, img := range images {
		assert.True(t, strings.HasPrefix(img, proxy.WebtoonsProxyPath+"?"), img)
		assert.Contains(t, img, "chapter_url=")
	}
}
