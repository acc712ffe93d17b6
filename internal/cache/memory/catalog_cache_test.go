package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Gunvolt24/wb_l3/internal/domain"
)

func newItems(id string) []domain.CatalogItem {
	return []domain.CatalogItem{{ID: id, Title: "item-" + id, Price: 10}}
}

func TestSetGet_HitMiss(t *testing.T) {
	c := NewBoundedCacheTTL(2, 5*time.Minute)
	ctx := context.Background()

	// промах до Set
	if _, ok := c.Get(ctx, "search:iphone"); ok {
		t.Fatalf("expected miss before Set")
	}

	// попадание после Set
	_ = c.Set(ctx, "search:iphone", newItems("1"))
	got, ok := c.Get(ctx, "search:iphone")
	if !ok || len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("expected hit, got ok=%v items=%v", ok, got)
	}
}

func TestTTL_Expiry_WithoutSweep(t *testing.T) {
	c := NewBoundedCacheTTL(2, time.Minute)
	ctx := context.Background()

	// подменяем время вместо sleep
	base := time.Now()
	c.now = func() time.Time { return base }

	_ = c.Set(ctx, "k", newItems("1"))
	if _, ok := c.Get(ctx, "k"); !ok {
		t.Fatalf("expected hit right after Set")
	}

	c.now = func() time.Time { return base.Add(time.Minute + time.Second) }
	if _, ok := c.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after TTL expires")
	}
	// запись удалена на чтении, а не просто скрыта
	if st := c.Stats(ctx); st.Entries != 0 {
		t.Fatalf("expired entry should be removed, stats=%+v", st)
	}
}

// Вытеснение — по порядку вставки: Get не освежает запись.
func TestEviction_InsertionOrder(t *testing.T) {
	c := NewBoundedCacheTTL(2, 0) // 0 = без TTL
	ctx := context.Background()

	_ = c.Set(ctx, "A", newItems("a"))
	_ = c.Set(ctx, "B", newItems("b"))

	// трогаем A — порядок вытеснения от этого меняться не должен
	if _, ok := c.Get(ctx, "A"); !ok {
		t.Fatalf("expected hit for A")
	}

	// C вытесняет A (самую старую по вставке), несмотря на недавний Get(A)
	_ = c.Set(ctx, "C", newItems("c"))

	if _, ok := c.Get(ctx, "A"); ok {
		t.Fatalf("expected A to be evicted (insertion-order policy)")
	}
	if _, ok := c.Get(ctx, "B"); !ok {
		t.Fatalf("expected B to stay")
	}
	if _, ok := c.Get(ctx, "C"); !ok {
		t.Fatalf("expected C to stay")
	}
}

// После вставки capacity+1 разных ключей отсутствует только первый.
func TestEviction_Capacity(t *testing.T) {
	const capacity = 5
	c := NewBoundedCacheTTL(capacity, 0)
	ctx := context.Background()

	for i := 0; i <= capacity; i++ {
		_ = c.Set(ctx, fmt.Sprintf("k-%d", i), newItems(fmt.Sprintf("%d", i)))
	}

	if _, ok := c.Get(ctx, "k-0"); ok {
		t.Fatalf("expected first key to be evicted")
	}
	for i := 1; i <= capacity; i++ {
		if _, ok := c.Get(ctx, fmt.Sprintf("k-%d", i)); !ok {
			t.Fatalf("expected k-%d to be present", i)
		}
	}
}

// Перезапись ключа обновляет значение и сбрасывает возраст (TTL от второго Set).
func TestSet_OverwriteResetsAge(t *testing.T) {
	c := NewBoundedCacheTTL(2, time.Minute)
	ctx := context.Background()

	base := time.Now()
	c.now = func() time.Time { return base }
	_ = c.Set(ctx, "k", newItems("v1"))

	// спустя 50 секунд перезаписываем
	c.now = func() time.Time { return base.Add(50 * time.Second) }
	_ = c.Set(ctx, "k", newItems("v2"))

	// спустя ещё 50 секунд от исходного TTL уже истёк бы, от перезаписи — нет
	c.now = func() time.Time { return base.Add(100 * time.Second) }
	got, ok := c.Get(ctx, "k")
	if !ok || got[0].ID != "v2" {
		t.Fatalf("expected fresh v2 after overwrite, got ok=%v items=%v", ok, got)
	}
}

func TestInvalidateAndClear(t *testing.T) {
	c := NewBoundedCacheTTL(3, 0)
	ctx := context.Background()

	_ = c.Set(ctx, "a", newItems("a"))
	_ = c.Set(ctx, "b", newItems("b"))

	if !c.Invalidate(ctx, "a") {
		t.Fatalf("expected Invalidate to report removal")
	}
	if c.Invalidate(ctx, "a") {
		t.Fatalf("expected second Invalidate to be a no-op")
	}
	if _, ok := c.Get(ctx, "a"); ok {
		t.Fatalf("expected miss after Invalidate")
	}

	c.Clear(ctx)
	if st := c.Stats(ctx); st.Entries != 0 {
		t.Fatalf("expected empty cache after Clear, stats=%+v", st)
	}
}

func TestStats_Ages(t *testing.T) {
	c := NewBoundedCacheTTL(3, time.Hour)
	ctx := context.Background()

	base := time.Now()
	c.now = func() time.Time { return base }
	_ = c.Set(ctx, "old", newItems("1"))

	c.now = func() time.Time { return base.Add(10 * time.Second) }
	_ = c.Set(ctx, "new", newItems("2"))

	c.now = func() time.Time { return base.Add(20 * time.Second) }
	st := c.Stats(ctx)
	if st.Entries != 2 || st.Capacity != 3 {
		t.Fatalf("unexpected stats: %+v", st)
	}
	if st.OldestAge != 20 || st.NewestAge != 10 || st.AvgAge != 15 {
		t.Fatalf("unexpected ages: %+v", st)
	}
}

// Get/Set возвращают и хранят копии: мутации снаружи не влияют на кэш.
func TestCloneImmutability(t *testing.T) {
	c := NewBoundedCacheTTL(1, 0)
	ctx := context.Background()

	orig := newItems("z")
	_ = c.Set(ctx, "z", orig)
	orig[0].Title = "mutated"

	got1, _ := c.Get(ctx, "z")
	got1[0].Title = "mutated-too"

	got2, _ := c.Get(ctx, "z")
	if got2[0].Title != "item-z" {
		t.Fatalf("cache should store and return clones, got %q", got2[0].Title)
	}
}

// Фоновая уборка удаляет протухшие записи без обращений на чтение.
func TestSweep_RemovesExpired(t *testing.T) {
	c := NewBoundedCacheTTL(3, time.Minute)
	ctx := context.Background()

	base := time.Now()
	c.now = func() time.Time { return base }
	_ = c.Set(ctx, "stale", newItems("1"))

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	_ = c.Set(ctx, "fresh", newItems("2"))

	c.sweep()

	if st := c.Stats(ctx); st.Entries != 1 {
		t.Fatalf("expected only fresh entry to survive sweep, stats=%+v", st)
	}
	if _, ok := c.Get(ctx, "fresh"); !ok {
		t.Fatalf("sweep must not remove the entry just inserted")
	}
}
