package domain

import (
	"errors"
	"strings"
)

// Ошибки внешнего провайдера каталога (sentinel errors).
// Слои выше различают их через errors.Is и не зависят от транспорта.
var (
	// ErrThrottled — провайдер ограничил частоту запросов (429).
	ErrThrottled = errors.New("catalog provider throttled request")
	// ErrUnavailable — сеть/5xx: временная недоступность, без ретрая на уровне governor.
	ErrUnavailable = errors.New("catalog provider unavailable")
	// ErrNotFound — по запросу ничего нет (404).
	ErrNotFound = errors.New("catalog item not found")
	// ErrAccessDenied — провайдер отказал в доступе (401/403).
	ErrAccessDenied = errors.New("catalog provider access denied")
)

// IsThrottled — классификация throttling-сигнала.
// Провайдер может вернуть обёрнутый ErrThrottled, а сторонний клиент —
// произвольную ошибку с "429" в тексте; оба случая считаем троттлингом.
func IsThrottled(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrThrottled) {
		return true
	}
	return strings.Contains(err.Error(), "429")
}
