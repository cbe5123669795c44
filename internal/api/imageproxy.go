package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// The image proxies exist because two CDNs reject hotlinked requests:
// they demand a Referer from their own site. Each proxy fetches the
// image with spoofed headers and streams it back same-origin.

// ComickImageProxy streams a Comick CDN image.
func (h *Handler) ComickImageProxy(c *gin.Context) {
	h.proxyImage(c, "https://comick.live", "https://comick.live/")
}

// WebtoonsImageProxy streams a Webtoons CDN image.
func (h *Handler) WebtoonsImageProxy(c *gin.Context) {
	h.proxyImage(c, "https://www.webtoons.com", "https://www.webtoons.com/")
}

func (h *Handler) proxyImage(c *gin.Context, origin, fallbackReferer string) {
	imgURL := c.Query("img_url")
	if imgURL == "" {
		respondError(c, http.StatusBadRequest, "img_url parameter is required")
		return
	}

	referer := c.Query("chapter_url")
	if referer == "" {
		referer = fallbackReferer
	}

	headers := map[string]string{
		"Referer": referer,
		"Origin":  origin,
		"Accept":  "image/webp,image/apng,image/*,*/*;q=0.8",
	}

	resp, err := h.engine.Network.FetchRaw(c.Request.Context(), imgURL, headers)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch image: "+err.Error())
		return
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		respondError(c, http.StatusInternalServerError, "Failed to fetch image: upstream status "+resp.Status)
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	c.Header("Cache-Control", "public, max-age=3600")
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET")
	c.Header("Access-Control-Allow-Headers", "Content-Type")
	c.DataFromReader(http.StatusOK, resp.ContentLength, contentType, resp.Body, nil)
}
