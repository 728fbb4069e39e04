// Package handler provides the read-side HTTP API over the mirrored channel
// documents.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/coocood/freecache"
	"github.com/gin-gonic/gin"

	"github.com/danbi-analytics/channel-collector-go/internal/kv"
	"github.com/danbi-analytics/channel-collector-go/internal/store"
)

// ChannelHandler serves channel documents from the KV mirror, fronted by an
// in-process cache so hot channels do not hit Postgres on every request.
type ChannelHandler struct {
	repo  kv.Repository
	cache *freecache.Cache
	ttl   time.Duration
}

// NewChannelHandler creates a ChannelHandler with the given cache size and
// entry TTL.
func NewChannelHandler(repo kv.Repository, cacheSizeBytes int, ttl time.Duration) *ChannelHandler {
	return &ChannelHandler{
		repo:  repo,
		cache: freecache.NewCache(cacheSizeBytes),
		ttl:   ttl,
	}
}

// GetIndex serves the channel index document.
func (h *ChannelHandler) GetIndex(c *gin.Context) {
	h.serveDocument(c, "index", store.IndexName)
}

// GetChannel serves one channel's document.
func (h *ChannelHandler) GetChannel(c *gin.Context) {
	channelID := c.Param("id")
	if channelID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channel id required"})
		requestsTotal.WithLabelValues("channel", "400").Inc()
		return
	}
	h.serveDocument(c, "channel", store.DocumentName(channelID))
}

func (h *ChannelHandler) serveDocument(c *gin.Context, endpoint, key string) {
	if content, err := h.cache.Get([]byte(key)); err == nil {
		cacheHits.Inc()
		requestsTotal.WithLabelValues(endpoint, "200").Inc()
		c.Header("X-Cache", "HIT")
		c.Data(http.StatusOK, "application/json", content)
		return
	}
	cacheMisses.Inc()

	entry, err := h.repo.Get(c.Request.Context(), key)
	if kv.IsKeyNotFound(err) {
		requestsTotal.WithLabelValues(endpoint, "404").Inc()
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		requestsTotal.WithLabelValues(endpoint, "500").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
		return
	}

	// Best-effort: an oversized entry simply stays uncached.
	_ = h.cache.Set([]byte(key), entry.Value, int(h.ttl.Seconds()))

	requestsTotal.WithLabelValues(endpoint, "200").Inc()
	c.Header("X-Cache", "MISS")
	c.Header("Last-Modified", entry.UpdatedAt.UTC().Format(http.TimeFormat))
	c.Data(http.StatusOK, "application/json", entry.Value)
}

// Healthz reports liveness plus cache occupancy.
func (h *ChannelHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "UP",
		"time":         time.Now().UTC().Format(time.RFC3339),
		"cacheEntries": strconv.FormatInt(h.cache.EntryCount(), 10),
	})
}
