//go:build integration

package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/Gunvolt24/wb_l3/internal/domain"
)

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func UniqSuffix() string { return randHex(6) }

// Мини-генератор валидного лота
func MakeListing(opts ...func(*domain.Listing)) domain.Listing {
	id := "lot-" + UniqSuffix()
	now := time.Now().UTC().Truncate(time.Second)

	l := domain.Listing{
		ID:        id,
		Title:     "Widget " + UniqSuffix(),
		Price:     100,
		Currency:  "USD",
		Status:    "active",
		Seller:    "seller-" + UniqSuffix(),
		CreatedAt: now,
	}

	for _, fn := range opts {
		fn(&l)
	}
	return l
}

func WithListingID(id string) func(*domain.Listing) {
	return func(l *domain.Listing) { l.ID = id }
}

// MakeInsertEvent — валидное insert-событие для лота.
func MakeInsertEvent(collection string, l domain.Listing) domain.ChangeEvent {
	return domain.ChangeEvent{
		Collection: collection,
		Kind:       domain.ChangeInsert,
		ID:         l.ID,
		Payload:    &l,
	}
}

// MakeDeleteEvent — валидное delete-событие.
func MakeDeleteEvent(collection, id string) domain.ChangeEvent {
	return domain.ChangeEvent{
		Collection: collection,
		Kind:       domain.ChangeDelete,
		ID:         id,
	}
}
