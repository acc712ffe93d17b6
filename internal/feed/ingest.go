package feed

import (
	"context"
	"fmt"

	"github.com/Gunvolt24/wb_l3/internal/ports"
	"github.com/Gunvolt24/wb_l3/pkg/validate"
)

// Ingestor — приём сырого сообщения push-транспорта: строгий разбор JSON,
// валидация структуры события и классификация синхронизатором.
// Ошибка валидации различима вызывающим через validate.ErrInvalidEvent.
type Ingestor struct {
	sync      *Synchronizer
	validator ports.EventValidator
	log       ports.Logger
}

// NewIngestor — конструктор.
func NewIngestor(sync *Synchronizer, validator ports.EventValidator, log ports.Logger) *Ingestor {
	return &Ingestor{
		sync:      sync,
		validator: validator,
		log:       log,
	}
}

// ApplyFromMessage — разбирает и применяет одно сообщение.
func (i *Ingestor) ApplyFromMessage(ctx context.Context, raw []byte) error {
	ev, err := validate.ValidateEventFromJSON(ctx, i.validator, raw)
	if err != nil {
		return fmt.Errorf("parse change event: %w", err)
	}
	i.sync.ApplyEvent(ctx, *ev)
	return nil
}
