package ports

import (
	"context"
	"time"

	"github.com/Gunvolt24/wb_l3/internal/domain"
)

// CacheStats — снимок состояния кэша для наблюдаемости.
type CacheStats struct {
	Entries   int           `json:"entries"`
	Capacity  int           `json:"capacity"`
	TTL       time.Duration `json:"ttl"`
	OldestAge float64       `json:"oldest_age_seconds"`
	NewestAge float64       `json:"newest_age_seconds"`
	AvgAge    float64       `json:"avg_age_seconds"`
}

// CatalogCache — кэш результатов каталожных запросов.
// Требования к реализации: потокобезопасность; доступ по ключу не хуже O(1);
// возврат копий значений; протухшая запись на чтении считается отсутствующей.
type CatalogCache interface {
	// Get — (items, true) при попадании; (nil, false) при промахе или истечении TTL.
	Get(ctx context.Context, key string) ([]domain.CatalogItem, bool)

	// Set — сохранить/обновить значение; перезапись сбрасывает возраст записи.
	Set(ctx context.Context, key string, items []domain.CatalogItem) error

	// Invalidate — удалить запись; true, если она существовала.
	Invalidate(ctx context.Context, key string) bool

	// Clear — удалить все записи.
	Clear(ctx context.Context)

	// Stats — количество записей, границы и статистика возрастов.
	Stats(ctx context.Context) CacheStats
}
