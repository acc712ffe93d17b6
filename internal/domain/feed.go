package domain

import "time"

// Listing — элемент отслеживаемой коллекции (лот в ленте).
type Listing struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Price     float64   `json:"price"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	Seller    string    `json:"seller"`
	CreatedAt time.Time `json:"created_at"`
}

// ChangeKind — тип изменения в ленте.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeUpdate ChangeKind = "update"
	ChangeDelete ChangeKind = "delete"
)

// Valid — известен ли тип изменения.
func (k ChangeKind) Valid() bool {
	switch k {
	case ChangeInsert, ChangeUpdate, ChangeDelete:
		return true
	}
	return false
}

// ChangeEvent — типизированное событие изменения коллекции.
// Транспорт может мультиплексировать несколько коллекций,
// поэтому событие несёт имя коллекции для фильтрации.
// Payload обязателен для insert/update и отсутствует у delete.
type ChangeEvent struct {
	Collection string     `json:"collection"`
	Kind       ChangeKind `json:"kind"`
	ID         string     `json:"id"`
	Payload    *Listing   `json:"payload,omitempty"`
}
