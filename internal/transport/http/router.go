package rest

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/Gunvolt24/wb_l3/internal/domain"
	"github.com/Gunvolt24/wb_l3/internal/feed"
	"github.com/Gunvolt24/wb_l3/internal/ports"
	"github.com/Gunvolt24/wb_l3/internal/usecase"
	"github.com/Gunvolt24/wb_l3/pkg/httpx"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Handler — HTTP-обработчики каталога поверх прикладного сервиса.
type Handler struct {
	service        ports.CatalogSearchService
	consumer       ports.MessageConsumer // nil в pull-режиме
	log            ports.Logger
	handlerTimeout time.Duration
}

// NewHandler — конструктор. handlerTimeout <= 0 отключает таймаут обработчика.
func NewHandler(service ports.CatalogSearchService, log ports.Logger, handlerTimeout time.Duration) *Handler {
	return &Handler{service: service, log: log, handlerTimeout: handlerTimeout}
}

// AttachConsumer — подключает consumer ленты для /stats/feed (push-режим).
func (h *Handler) AttachConsumer(c ports.MessageConsumer) {
	h.consumer = c
}

// NewRouter — сборка маршрутов и middleware.
// otelServiceName != "" включает трассировку входящих запросов.
func NewRouter(h *Handler, staticDir, otelServiceName string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpx.RequestIDMiddleware())
	if otelServiceName != "" {
		r.Use(otelgin.Middleware(otelServiceName))
	}
	r.Use(httpx.RequestLogger(h.log))

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/catalog/search", h.search)
	r.GET("/stats/cache", h.cacheStats)
	r.GET("/stats/governor", h.governorStats)
	r.GET("/stats/feed", h.feedStats)
	r.POST("/feed/resync", h.resync)

	if staticDir != "" {
		r.Static("/static", staticDir)
		r.StaticFile("/", filepath.Join(staticDir, "index.html"))
	}

	return r
}

// requestContext — контекст запроса с опциональным таймаутом обработчика.
func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.handlerTimeout <= 0 {
		return c.Request.Context(), func() {}
	}
	return context.WithTimeout(c.Request.Context(), h.handlerTimeout)
}

// Границы пагинации поисковой выдачи.
const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

func (h *Handler) search(c *gin.Context) {
	q, ok := httpx.ParseSearchQuery(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty search term"})
		return
	}
	limit, offset := httpx.ParseLimitOffset(c, defaultSearchLimit, maxSearchLimit)

	ctx, cancel := h.requestContext(c)
	defer cancel()

	items, err := h.service.Search(ctx, q)
	if err != nil {
		h.writeSearchError(c, q, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": q, "items": paginate(items, limit, offset)})
}

// paginate — срез выдачи по limit/offset. Кэш хранит полный результат,
// страница вырезается на границе транспорта.
func paginate(items []domain.CatalogItem, limit, offset int) []domain.CatalogItem {
	if offset >= len(items) {
		return []domain.CatalogItem{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// writeSearchError — перевод доменных ошибок в HTTP-статусы.
func (h *Handler) writeSearchError(c *gin.Context, q domain.Query, err error) {
	ctx := c.Request.Context()
	switch {
	case domain.IsThrottled(err):
		h.log.Warnf(ctx, "search throttled term=%q err=%v", q.Term, err)
		c.Header("Retry-After", "60")
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "temporarily unavailable, retry later"})
	case errors.Is(err, domain.ErrAccessDenied):
		h.log.Errorf(ctx, "search access denied term=%q err=%v", q.Term, err)
		c.JSON(http.StatusForbidden, gin.H{"error": "provider access denied"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "nothing found"})
	default:
		h.log.Errorf(ctx, "search failed term=%q err=%v", q.Term, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog provider unavailable"})
	}
}

func (h *Handler) cacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.CacheStats(c.Request.Context()))
}

func (h *Handler) governorStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.GovernorStats(c.Request.Context()))
}

func (h *Handler) feedStats(c *gin.Context) {
	if h.consumer == nil {
		c.JSON(http.StatusOK, gin.H{"mode": "pull"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"mode": "push", "transport": h.consumer.Status()})
}

func (h *Handler) resync(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	n, err := h.service.Resync(ctx)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"inserted": n})
	case errors.Is(err, usecase.ErrFeedDisabled):
		c.JSON(http.StatusConflict, gin.H{"error": "feed synchronization is disabled"})
	case errors.Is(err, feed.ErrSyncBusy):
		c.JSON(http.StatusConflict, gin.H{"error": "sync already in progress"})
	default:
		h.log.Errorf(c.Request.Context(), "resync failed err=%v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "resync failed"})
	}
}
