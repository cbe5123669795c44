package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"manhwaverse/pkg/core"
	"manhwaverse/pkg/errors"
)

// Response envelope used by every endpoint. Data and Error are
// mutually exclusive; Count appears only on list responses.
func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondList(c *gin.Context, data any, count int) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"count":   count,
	})
}

// respondChapterNav serves reader navigation flattened into the
// envelope itself, matching what the reader frontend consumes.
func respondChapterNav(c *gin.Context, nav *core.ChapterNav) {
	c.JSON(http.StatusOK, gin.H{
		"success":               true,
		"manga_title":           nav.MangaTitle,
		"current_chapter_title": nav.CurrentTitle,
		"image_urls":            nav.ImageURLs,
		"next_chapter_url":      nav.NextURL,
		"prev_chapter_url":      nav.PrevURL,
	})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}

// respondScrapeError maps a scrape failure onto an HTTP status.
// Missing content is the caller's 404; everything else is an upstream
// failure surfaced as 500.
func respondScrapeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.IsNotFound(err):
		respondError(c, http.StatusNotFound, fallback)
	default:
		respondError(c, http.StatusInternalServerError, fallback)
	}
}
