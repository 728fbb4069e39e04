package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "channel_api_requests_total",
		Help: "API requests by endpoint and status code.",
	}, []string{"endpoint", "status"})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "channel_api_cache_hits_total",
		Help: "Document cache hits.",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "channel_api_cache_misses_total",
		Help: "Document cache misses.",
	})
)
