package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the read API routes.
func NewRouter(h *ChannelHandler) *gin.Engine {
	router := gin.New()
	// Engine-level so OPTIONS preflights get answered without a route.
	router.Use(gin.Recovery(), corsMiddleware())

	router.GET("/healthz", h.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/channels", h.GetIndex)
		api.GET("/channels/:id", h.GetChannel)
	}

	return router
}

// corsMiddleware lets browser dashboards on other origins read the API.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
