package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/Gunvolt24/wb_l3/internal/domain"
	"github.com/Gunvolt24/wb_l3/internal/feed"
	"github.com/Gunvolt24/wb_l3/internal/governor"
	"github.com/Gunvolt24/wb_l3/internal/ports"
)

// Проверка, что сервис удовлетворяет порту HTTP-слоя.
var _ ports.CatalogSearchService = (*CatalogService)(nil)

// ErrFeedDisabled — ручной resync запрошен, а синхронизатор ленты не собран.
var ErrFeedDisabled = errors.New("feed synchronizer is not configured")

// defaultPriority — приоритет обычных каталожных запросов в очереди governor'а.
const defaultPriority = 0

// requestGovernor — минимальный контракт над governor'ом,
// чтобы подменять его в тестах.
type requestGovernor interface {
	Enqueue(ctx context.Context, priority int, op governor.Operation) ([]domain.CatalogItem, error)
	Stats() ports.GovernorStats
}

// CatalogService — прикладная логика каталога: кэш перед governor'ом
// перед провайдером. Кэш-хит не тратит ни слот окна, ни сеть.
type CatalogService struct {
	provider ports.CatalogProvider
	cache    ports.CatalogCache
	gov      requestGovernor
	log      ports.Logger

	// для ручного resync ленты (push-режим, после разрыва соединения)
	source   ports.SnapshotSource
	feedSync *feed.Synchronizer
}

// NewCatalogService — DI-конструктор.
func NewCatalogService(
	provider ports.CatalogProvider,
	cache ports.CatalogCache,
	gov requestGovernor,
	log ports.Logger,
) *CatalogService {
	return &CatalogService{
		provider: provider,
		cache:    cache,
		gov:      gov,
		log:      log,
	}
}

// AttachFeed — подключает синхронизатор ленты и источник снимков
// для ручного resync. Вызывается при сборке приложения.
func (s *CatalogService) AttachFeed(source ports.SnapshotSource, sync *feed.Synchronizer) {
	s.source = source
	s.feedSync = sync
}

// Search — каталожный запрос: сначала кэш, при промахе — провайдер через
// governor с записью результата в кэш. Ошибка провайдера не кэшируется и
// уходит вызывающему как есть (throttling/доступ/not found различимы
// через sentinel-ошибки домена).
func (s *CatalogService) Search(ctx context.Context, q domain.Query) ([]domain.CatalogItem, error) {
	q = q.Normalized()
	key := q.CacheKey()

	if items, found := s.cache.Get(ctx, key); found {
		s.log.Infof(ctx, "cache hit for query=%q", key)
		return items, nil
	}
	s.log.Infof(ctx, "cache miss for query=%q", key)

	start := time.Now()
	items, err := s.gov.Enqueue(ctx, defaultPriority, func(ctx context.Context) ([]domain.CatalogItem, error) {
		return s.provider.Search(ctx, q)
	})
	if err != nil {
		s.log.Errorf(ctx, "provider search failed query=%q err=%v", key, err)
		return nil, err
	}

	if setErr := s.cache.Set(ctx, key, items); setErr != nil {
		s.log.Warnf(ctx, "cache.Set failed query=%q err=%v", key, setErr)
	}

	s.log.Infof(ctx, "provider fetch query=%q items=%d took=%s", key, len(items), time.Since(start))
	return items, nil
}

// GovernorStats — снимок состояния governor'а (информационно, не API-контракт).
func (s *CatalogService) GovernorStats(_ context.Context) ports.GovernorStats {
	return s.gov.Stats()
}

// CacheStats — снимок состояния кэша.
func (s *CatalogService) CacheStats(ctx context.Context) ports.CacheStats {
	return s.cache.Stats(ctx)
}

// Resync — одноразовая полная сверка ленты по внешнему триггеру
// (восстановление после разрыва push-транспорта). Возвращает число
// досланных insert-колбэков.
func (s *CatalogService) Resync(ctx context.Context) (int, error) {
	if s.feedSync == nil || s.source == nil {
		return 0, ErrFeedDisabled
	}

	start := time.Now()
	inserted, err := s.feedSync.ResyncFrom(ctx, s.source)
	if err != nil {
		s.log.Warnf(ctx, "manual resync failed: %v", err)
		return 0, err
	}
	s.log.Infof(ctx, "manual resync done, %d new listings in %s", inserted, time.Since(start))
	return inserted, nil
}
