package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Gunvolt24/wb_l3/internal/domain"
	"github.com/Gunvolt24/wb_l3/internal/ports"
)

// ValidateEventFromJSON — валидация события ленты из JSON.
func ValidateEventFromJSON(ctx context.Context, validator ports.EventValidator, raw []byte) (*domain.ChangeEvent, error) {
	var ev domain.ChangeEvent
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ev); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	// гарантируем отсутствие полей вне структуры
	if err := dec.Decode(new(struct{})); err != io.EOF {
		return nil, fmt.Errorf("invalid json: trailing data")
	}
	if err := validator.Validate(ctx, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
