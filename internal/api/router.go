package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tapelabs/disclosure-tape/internal/metrics"
	"github.com/tapelabs/disclosure-tape/internal/price"
)

// Handlers bundles the HTTP handlers and their collaborators.
type Handlers struct {
	events     EventReader
	detector   SignalDetector
	maintainer Maintainer
	quotes     price.Quoter
	logger     *slog.Logger

	maintenanceMu sync.Mutex
}

func NewHandlers(events EventReader, detector SignalDetector, maintainer Maintainer, quotes price.Quoter, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		events:     events,
		detector:   detector,
		maintainer: maintainer,
		quotes:     quotes,
		logger:     logger,
	}
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(h *Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestMetrics())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/events", h.ListEvents)
		api.GET("/signals/unusual", h.UnusualSignals)
		api.GET("/suggest/symbols", h.SuggestSymbols)
		api.GET("/suggest/members", h.SuggestMembers)

		admin := api.Group("/admin")
		{
			admin.POST("/events/repair", h.RepairEvents)
			admin.POST("/events/rebuild", h.RebuildEvents)
		}
	}

	return router
}

// requestMetrics observes per-route request durations.
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestDuration.
			WithLabelValues(route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
