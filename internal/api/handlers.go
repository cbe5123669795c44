package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"manhwaverse/pkg/core"
	"manhwaverse/pkg/engine"
	"manhwaverse/pkg/engine/aggregate"
)

// Handler carries the engine and aggregation service into the route
// handlers.
type Handler struct {
	engine    *engine.Engine
	aggregate *aggregate.Service
	version   string
}

// NewHandler creates the API handler set.
func NewHandler(e *engine.Engine, version string) *Handler {
	return &Handler{
		engine:    e,
		aggregate: aggregate.NewService(e),
		version:   version,
	}
}

// RegisterRoutes mounts every endpoint under the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Root)
	rg.GET("/popular", h.Popular)
	rg.GET("/genre", h.Genre)
	rg.GET("/search", h.Search)
	rg.GET("/manga-details", h.MangaDetails)
	rg.GET("/chapter", h.ChapterImages)
	rg.GET("/chapter-data", h.ChapterData)

	rg.GET("/unified-popular", h.UnifiedPopular)
	rg.GET("/unified-details", h.UnifiedDetails)
	rg.GET("/unified-chapter-data", h.UnifiedChapterData)
	rg.GET("/source-search", h.SourceSearch)

	// Per-source variants, mounted statically for every registered
	// source so they cannot shadow the flat routes above.
	for _, p := range h.engine.AllProviders() {
		source := rg.Group("/" + p.ID())
		source.GET("/popular", h.sourcePopular(p.ID()))
		source.GET("/details", h.sourceDetails(p.ID()))
		source.GET("/search", h.sourceSearch(p.ID()))
	}

	rg.GET("/comick-image-proxy", h.ComickImageProxy)
	rg.GET("/webtoons-image-proxy", h.WebtoonsImageProxy)
}

// Root is the self-describing index of the API.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "ManhwaVerse API",
		"version": h.version,
		"endpoints": []string{
			"/api/popular",
			"/api/genre?name=<genre>",
			"/api/search?query=<query>",
			"/api/manga-details?url=<url>",
			"/api/chapter?url=<url>",
			"/api/chapter-data?url=<url>",
			"/api/unified-popular",
			"/api/unified-details?title=<title>&source=<source>",
			"/api/unified-chapter-data?url=<url>&source=<source>",
			"/api/source-search?title=<title>",
			"/api/<source>/popular",
			"/api/<source>/details?url=<url>",
			"/api/<source>/search?query=<query>",
		},
	})
}

// Popular serves the primary source's popular listing.
func (h *Handler) Popular(c *gin.Context) {
	p := h.engine.GetProviderOrNil(string(core.SourceAsura))
	if p == nil {
		respondError(c, http.StatusInternalServerError, "Primary source not registered")
		return
	}

	items, err := p.ListPopular(c.Request.Context())
	if err != nil {
		respondScrapeError(c, err, "Could not scrape popular manga")
		return
	}
	respondList(c, items, len(items))
}

// Genre serves the primary source's genre listing.
func (h *Handler) Genre(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		respondError(c, http.StatusBadRequest, "Genre 'name' parameter is required")
		return
	}

	p := h.engine.GetProviderOrNil(string(core.SourceAsura))
	if p == nil {
		respondError(c, http.StatusInternalServerError, "Primary source not registered")
		return
	}

	items, err := p.ListByGenre(c.Request.Context(), name)
	if err != nil {
		respondScrapeError(c, err, "No manga found for genre: "+name)
		return
	}
	respondList(c, items, len(items))
}

// Search serves the primary source's search results.
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		respondError(c, http.StatusBadRequest, "Search 'query' parameter is required")
		return
	}

	p := h.engine.GetProviderOrNil(string(core.SourceAsura))
	if p == nil {
		respondError(c, http.StatusInternalServerError, "Primary source not registered")
		return
	}

	items, err := p.Search(c.Request.Context(), query)
	if err != nil {
		respondScrapeError(c, err, "No results found for: "+query)
		return
	}
	respondList(c, items, len(items))
}

// MangaDetails scrapes a detail page. The source is taken from the
// source parameter when present, otherwise detected from the URL host.
func (h *Handler) MangaDetails(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		respondError(c, http.StatusBadRequest, "URL parameter is required")
		return
	}

	p := h.engine.GetProviderOrNil(c.Query("source"))
	if p == nil {
		p = h.engine.ProviderForURL(rawURL)
	}
	if p == nil {
		respondError(c, http.StatusBadRequest, "No source recognizes the provided URL")
		return
	}

	detail, err := p.GetDetails(c.Request.Context(), rawURL)
	if err != nil {
		respondScrapeError(c, err, "Could not scrape details for the provided URL")
		return
	}
	respondOK(c, detail)
}

// ChapterImages serves the image URL list of one chapter.
func (h *Handler) ChapterImages(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		respondError(c, http.StatusBadRequest, "URL parameter is required")
		return
	}

	p := h.engine.ProviderForURL(rawURL)
	if p == nil {
		respondError(c, http.StatusBadRequest, "No source recognizes the provided URL")
		return
	}

	images, err := p.GetChapterImages(c.Request.Context(), rawURL)
	if err != nil {
		respondScrapeError(c, err, "Could not scrape chapter images")
		return
	}
	respondList(c, images, len(images))
}

// ChapterData serves the stitched reader payload: images plus
// previous/next chapter navigation.
func (h *Handler) ChapterData(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		respondError(c, http.StatusBadRequest, "URL parameter is required")
		return
	}

	nav, err := h.aggregate.ChapterNavigation(c.Request.Context(), rawURL)
	if err != nil {
		respondScrapeError(c, err, "Could not load chapter data")
		return
	}
	respondChapterNav(c, nav)
}

// UnifiedPopular merges popular listings across every source. The
// envelope carries a per-source count map instead of a flat count.
func (h *Handler) UnifiedPopular(c *gin.Context) {
	items, counts, err := h.aggregate.Popular(c.Request.Context())
	if err != nil {
		respondScrapeError(c, err, "All sources failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
		"sources": counts,
	})
}

// UnifiedDetails resolves a title on a named source by searching it
// and scraping the first hit.
func (h *Handler) UnifiedDetails(c *gin.Context) {
	title := c.Query("title")
	source := c.Query("source")
	if title == "" || source == "" {
		respondError(c, http.StatusBadRequest, "Both 'title' and 'source' parameters are required")
		return
	}

	p := h.engine.GetProviderOrNil(source)
	if p == nil {
		respondError(c, http.StatusBadRequest, "Unsupported source: "+source)
		return
	}
	// The primary source's search cards do not resolve titles reliably
	// enough for a blind first-hit lookup.
	if source == string(core.SourceAsura) {
		respondError(c, http.StatusNotImplemented, "Unified details not supported for source: "+source)
		return
	}

	results, err := p.Search(c.Request.Context(), title)
	if err != nil || len(results) == 0 {
		respondError(c, http.StatusNotFound, "No results found for title: "+title)
		return
	}

	detail, err := p.GetDetails(c.Request.Context(), results[0].DetailURL)
	if err != nil {
		respondScrapeError(c, err, "Could not scrape details for title: "+title)
		return
	}
	respondOK(c, detail)
}

// UnifiedChapterData is ChapterData with an explicit source check.
func (h *Handler) UnifiedChapterData(c *gin.Context) {
	rawURL := c.Query("url")
	source := c.Query("source")
	if rawURL == "" || source == "" {
		respondError(c, http.StatusBadRequest, "Both 'url' and 'source' parameters are required")
		return
	}
	if h.engine.GetProviderOrNil(source) == nil {
		respondError(c, http.StatusBadRequest, "Unsupported source: "+source)
		return
	}

	nav, err := h.aggregate.ChapterNavigation(c.Request.Context(), rawURL)
	if err != nil {
		respondScrapeError(c, err, "Could not load chapter data")
		return
	}
	respondChapterNav(c, nav)
}

// SourceSearch reports which sources carry a title, with the matches
// grouped per source.
func (h *Handler) SourceSearch(c *gin.Context) {
	title := c.Query("title")
	if title == "" {
		respondError(c, http.StatusBadRequest, "Title parameter is required")
		return
	}

	merged, _, err := h.aggregate.SearchAll(c.Request.Context(), title)
	if err != nil {
		respondScrapeError(c, err, "No results found for title: "+title)
		return
	}

	grouped := make(map[core.Source][]core.ListingItem)
	var order []core.Source
	for _, item := range merged {
		if _, seen := grouped[item.Source]; !seen {
			order = append(order, item.Source)
		}
		grouped[item.Source] = append(grouped[item.Source], item)
	}

	sources := make([]gin.H, 0, len(order))
	for _, src := range order {
		sources = append(sources, gin.H{
			"source":  src,
			"count":   len(grouped[src]),
			"results": grouped[src],
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"sources":     sources,
		"total_found": len(merged),
	})
}

// sourcePopular serves one source's popular listing.
func (h *Handler) sourcePopular(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := h.engine.GetProviderOrNil(id)
		if p == nil {
			respondError(c, http.StatusInternalServerError, "Source not registered: "+id)
			return
		}

		items, err := p.ListPopular(c.Request.Context())
		if err != nil {
			respondScrapeError(c, err, "Could not scrape popular manga from "+id)
			return
		}
		respondList(c, items, len(items))
	}
}

// sourceDetails serves one source's detail scrape.
func (h *Handler) sourceDetails(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawURL := c.Query("url")
		if rawURL == "" {
			respondError(c, http.StatusBadRequest, "URL parameter is required")
			return
		}

		p := h.engine.GetProviderOrNil(id)
		if p == nil {
			respondError(c, http.StatusInternalServerError, "Source not registered: "+id)
			return
		}

		detail, err := p.GetDetails(c.Request.Context(), rawURL)
		if err != nil {
			respondScrapeError(c, err, "Could not scrape details for the provided URL")
			return
		}
		respondOK(c, detail)
	}
}

// sourceSearch serves one source's search.
func (h *Handler) sourceSearch(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("query")
		if query == "" {
			respondError(c, http.StatusBadRequest, "Search 'query' parameter is required")
			return
		}

		p := h.engine.GetProviderOrNil(id)
		if p == nil {
			respondError(c, http.StatusInternalServerError, "Source not registered: "+id)
			return
		}

		items, err := p.Search(c.Request.Context(), query)
		if err != nil {
			respondScrapeError(c, err, "No results found for: "+query)
			return
		}
		respondList(c, items, len(items))
	}
}
