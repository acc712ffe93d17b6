package validate

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gunvolt24/wb_l3/internal/domain"
	"github.com/Gunvolt24/wb_l3/internal/ports"
)

// Проверка, что EventValidator удовлетворяет интерфейсу EventValidator.
var _ ports.EventValidator = (*EventValidator)(nil)

// ErrInvalidEvent — базовая (sentinel error) ошибка валидации.
var ErrInvalidEvent = errors.New("event validation failed")

// EventValidator — структура для валидации события ленты.
type EventValidator struct{}

// NewEventValidator — конструктор EventValidator.
// Validate возвращает ErrInvalidEvent (с обёрнутой причиной) при любой проблеме.
func NewEventValidator() *EventValidator { return &EventValidator{} }

// Validate — проверяет корректность полей события.
func (v *EventValidator) Validate(_ context.Context, ev *domain.ChangeEvent) error {
	if err := v.validateCore(ev); err != nil {
		return err
	}
	return v.validatePayload(ev)
}

// validateCore — валидация основных полей события.
func (v *EventValidator) validateCore(ev *domain.ChangeEvent) error {
	if ev == nil {
		return fmt.Errorf("%w: событие не может быть nil", ErrInvalidEvent)
	}
	if ev.Collection == "" {
		return fmt.Errorf("%w: collection обязателен", ErrInvalidEvent)
	}
	if !ev.Kind.Valid() {
		return fmt.Errorf("%w: kind %q неизвестен", ErrInvalidEvent, ev.Kind)
	}
	if ev.ID == "" {
		return fmt.Errorf("%w: id обязателен", ErrInvalidEvent)
	}
	return nil
}

// validatePayload — insert/update несут лот, delete — нет.
func (v *EventValidator) validatePayload(ev *domain.ChangeEvent) error {
	switch ev.Kind {
	case domain.ChangeInsert, domain.ChangeUpdate:
		if ev.Payload == nil {
			return fmt.Errorf("%w: payload обязателен для %s", ErrInvalidEvent, ev.Kind)
		}
		if ev.Payload.ID != "" && ev.Payload.ID != ev.ID {
			return fmt.Errorf("%w: payload.id не совпадает с id события", ErrInvalidEvent)
		}
		if ev.Payload.Title == "" {
			return fmt.Errorf("%w: payload.title обязателен", ErrInvalidEvent)
		}
		if ev.Payload.Price < 0 {
			return fmt.Errorf("%w: payload.price должен быть неотрицательным", ErrInvalidEvent)
		}
	case domain.ChangeDelete:
		if ev.Payload != nil {
			return fmt.Errorf("%w: delete не должен нести payload", ErrInvalidEvent)
		}
	}
	return nil
}
