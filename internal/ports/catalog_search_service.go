package ports

import (
	"context"

	"github.com/Gunvolt24/wb_l3/internal/domain"
)

// CatalogSearchService — прикладной сервис каталога для HTTP-слоя.
type CatalogSearchService interface {
	Search(ctx context.Context, q domain.Query) ([]domain.CatalogItem, error)
	GovernorStats(ctx context.Context) GovernorStats
	CacheStats(ctx context.Context) CacheStats
	Resync(ctx context.Context) (int, error)
}
