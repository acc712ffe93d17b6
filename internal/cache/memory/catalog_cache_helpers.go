package memory

import (
	"container/list"
	"time"

	"github.com/Gunvolt24/wb_l3/internal/domain"
	"github.com/Gunvolt24/wb_l3/pkg/metrics"
)

// evictOldest — удаляет самую старую по времени вставки запись (хвост списка).
func (c *BoundedCacheTTL) evictOldest() {
	if back := c.ll.Back(); back != nil {
		c.removeElement(back)
		metrics.CacheOps.WithLabelValues("evicted").Inc()
	}
}

// removeElement — удаляет элемент из списка и индекса.
func (c *BoundedCacheTTL) removeElement(elem *list.Element) {
	if elem == nil {
		return
	}
	if ent, ok := elem.Value.(*entry); ok {
		delete(c.index, ent.key)
	}
	c.ll.Remove(elem)
}

// isExpired — проверяет истечение TTL.
func (c *BoundedCacheTTL) isExpired(ent *entry, now time.Time) bool {
	if c.ttl <= 0 {
		return false
	}
	return now.Sub(ent.storedAt) > c.ttl
}

// pruneExpiredFromBack — удаляет протухшие записи с хвоста до первой актуальной.
// Хвост — самые старые записи, поэтому первый же живой элемент останавливает проход.
func (c *BoundedCacheTTL) pruneExpiredFromBack(now time.Time) {
	if c.ttl <= 0 {
		return
	}
	for {
		back := c.ll.Back()
		if back == nil {
			return
		}
		if !c.isExpired(back.Value.(*entry), now) {
			return
		}
		c.removeElement(back)
		metrics.CacheOps.WithLabelValues("expired").Inc()
	}
}

// cloneItems — возвращает копию среза, чтобы внешние изменения
// не отражались на данных внутри кэша.
func cloneItems(items []domain.CatalogItem) []domain.CatalogItem {
	if items == nil {
		return nil
	}
	return append([]domain.CatalogItem(nil), items...)
}
