package ports

import (
	"context"

	"github.com/Gunvolt24/wb_l3/internal/domain"
)

// CatalogProvider — внешний каталог. Реализация обязана возвращать
// классифицируемые ошибки домена: domain.ErrThrottled при 429,
// domain.ErrUnavailable при сетевых/5xx и т.д.
type CatalogProvider interface {
	Search(ctx context.Context, q domain.Query) ([]domain.CatalogItem, error)
}
