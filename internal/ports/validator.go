package ports

import (
	"context"

	"github.com/Gunvolt24/wb_l3/internal/domain"
)

// EventValidator — проверка структуры события ленты перед применением.
type EventValidator interface {
	Validate(ctx context.Context, ev *domain.ChangeEvent) error
}
