package memory

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/Gunvolt24/wb_l3/internal/domain"
	"github.com/Gunvolt24/wb_l3/internal/ports"
	"github.com/Gunvolt24/wb_l3/pkg/metrics"
)

// Проверка, что кэш удовлетворяет порту приложения.
var _ ports.CatalogCache = (*BoundedCacheTTL)(nil)

type entry struct {
	key      string
	items    []domain.CatalogItem
	storedAt time.Time
}

// BoundedCacheTTL — ограниченный по размеру кэш результатов запросов с TTL.
// Вытеснение — строго по времени вставки (front = самая свежая запись),
// Get порядок не меняет: политика нарочно проще классического LRU,
// чтобы поведение было предсказуемым. Перезапись ключа обновляет storedAt
// и переносит запись в начало порядка.
type BoundedCacheTTL struct {
	capacity int
	ttl      time.Duration

	ll    *list.List
	index map[string]*list.Element

	// now — источник времени; подменяется в тестах.
	now func() time.Time

	mu sync.Mutex
}

// NewBoundedCacheTTL — конструктор. capacity <= 0 приводится к 1; ttl <= 0 — без истечения.
func NewBoundedCacheTTL(capacity int, ttl time.Duration) *BoundedCacheTTL {
	if capacity <= 0 {
		capacity = 1
	}
	return &BoundedCacheTTL{
		capacity: capacity,
		ttl:      ttl,
		ll:       list.New(),
		index:    make(map[string]*list.Element),
		now:      time.Now,
	}
}

// Get — вернуть значение по ключу. Протухшая запись удаляется и считается промахом.
func (c *BoundedCacheTTL) Get(_ context.Context, key string) ([]domain.CatalogItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[key]
	if !ok {
		metrics.CacheOps.WithLabelValues("miss").Inc()
		return nil, false
	}
	ent := elem.Value.(*entry)
	if c.isExpired(ent, c.now()) {
		metrics.CacheOps.WithLabelValues("expired").Inc()
		c.removeElement(elem)
		metrics.CacheSize.Set(float64(c.ll.Len()))
		return nil, false
	}

	metrics.CacheOps.WithLabelValues("hit").Inc()
	return cloneItems(ent.items), true
}

// Set — сохранить значение. Перезапись существующего ключа сбрасывает возраст записи.
// Вытеснение при переполнении никогда не затрагивает только что вставленную запись:
// удаляется самая старая с хвоста.
func (c *BoundedCacheTTL) Set(_ context.Context, key string, items []domain.CatalogItem) error {
	if key == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	if elem, ok := c.index[key]; ok {
		ent := elem.Value.(*entry)
		ent.items = cloneItems(items)
		ent.storedAt = now
		c.ll.MoveToFront(elem)
		return nil
	}

	c.pruneExpiredFromBack(now)

	elem := c.ll.PushFront(&entry{
		key:      key,
		items:    cloneItems(items),
		storedAt: now,
	})
	c.index[key] = elem

	if c.ll.Len() > c.capacity {
		c.evictOldest()
	}
	metrics.CacheSize.Set(float64(c.ll.Len()))
	return nil
}

// Invalidate — удалить запись по ключу; true, если она была.
func (c *BoundedCacheTTL) Invalidate(_ context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[key]
	if !ok {
		return false
	}
	c.removeElement(elem)
	metrics.CacheSize.Set(float64(c.ll.Len()))
	return true
}

// Clear — удалить все записи.
func (c *BoundedCacheTTL) Clear(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ll.Init()
	c.index = make(map[string]*list.Element)
	metrics.CacheSize.Set(0)
}

// Stats — количество записей, границы и возраст записей в секундах.
func (c *BoundedCacheTTL) Stats(_ context.Context) ports.CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := ports.CacheStats{
		Entries:  c.ll.Len(),
		Capacity: c.capacity,
		TTL:      c.ttl,
	}
	if st.Entries == 0 {
		return st
	}

	now := c.now()
	var total float64
	for e := c.ll.Front(); e != nil; e = e.Next() {
		age := now.Sub(e.Value.(*entry).storedAt).Seconds()
		total += age
	}
	// front — самая свежая запись, back — самая старая
	st.NewestAge = now.Sub(c.ll.Front().Value.(*entry).storedAt).Seconds()
	st.OldestAge = now.Sub(c.ll.Back().Value.(*entry).storedAt).Seconds()
	st.AvgAge = total / float64(st.Entries)
	return st
}

// RunSweeper — фоновая уборка протухших записей с фиксированным интервалом.
// Это best-effort компактизация: корректность TTL обеспечивает проверка в Get.
// Останавливается по отмене контекста.
func (c *BoundedCacheTTL) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.sweep()
		}
	}
}

// sweep — удалить все записи, чей возраст строго превысил TTL.
func (c *BoundedCacheTTL) sweep() {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for e := c.ll.Back(); e != nil; {
		prev := e.Prev()
		if c.isExpired(e.Value.(*entry), now) {
			c.removeElement(e)
			metrics.CacheOps.WithLabelValues("expired").Inc()
		}
		e = prev
	}
	metrics.CacheSize.Set(float64(c.ll.Len()))
}
