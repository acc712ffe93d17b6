package ports

import (
	"context"

	"github.com/Gunvolt24/wb_l3/internal/domain"
)

// SnapshotSource — источник полного снимка отслеживаемой коллекции.
type SnapshotSource interface {
	Snapshot(ctx context.Context) ([]domain.Listing, error)
}
