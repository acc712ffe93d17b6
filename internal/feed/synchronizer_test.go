package feed

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Gunvolt24/wb_l3/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Infof(context.Context, string, ...any)  {}
func (nopLogger) Warnf(context.Context, string, ...any)  {}
func (nopLogger) Errorf(context.Context, string, ...any) {}

const watched = "listings"

func listing(id string) domain.Listing {
	return domain.Listing{ID: id, Title: "lot-" + id}
}

func snapshot(ids ...string) []domain.Listing {
	out := make([]domain.Listing, 0, len(ids))
	for _, id := range ids {
		out = append(out, listing(id))
	}
	return out
}

// recorder — собирает вызовы колбэков.
type recorder struct {
	mu      sync.Mutex
	inserts []string
	updates []string
	deletes []string
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnInsert: func(l domain.Listing) {
			r.mu.Lock()
			r.inserts = append(r.inserts, l.ID)
			r.mu.Unlock()
		},
		OnUpdate: func(l domain.Listing) {
			r.mu.Lock()
			r.updates = append(r.updates, l.ID)
			r.mu.Unlock()
		},
		OnDelete: func(id string) {
			r.mu.Lock()
			r.deletes = append(r.deletes, id)
			r.mu.Unlock()
		},
	}
}

// Первый снимок — baseline, без колбэков; второй — ровно один insert для C.
func TestApplySnapshot_BaselineSuppression(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(watched, rec.callbacks(), nopLogger{})

	if n := s.ApplySnapshot(snapshot("A", "B")); n != 0 {
		t.Fatalf("baseline must not dispatch inserts, got %d", n)
	}
	if n := s.ApplySnapshot(snapshot("A", "B", "C")); n != 1 {
		t.Fatalf("want exactly 1 insert, got %d", n)
	}
	if len(rec.inserts) != 1 || rec.inserts[0] != "C" {
		t.Fatalf("want insert for C only, got %v", rec.inserts)
	}
}

// Повторяющиеся снимки не дают дубликатов: [A,B] → [A,B] → [A,B,C] = один insert.
func TestApplySnapshot_NoDuplicates(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(watched, rec.callbacks(), nopLogger{})

	s.ApplySnapshot(snapshot("A", "B"))
	s.ApplySnapshot(snapshot("A", "B"))
	s.ApplySnapshot(snapshot("A", "B", "C"))

	if len(rec.inserts) != 1 || rec.inserts[0] != "C" {
		t.Fatalf("want single insert for C, got %v", rec.inserts)
	}
}

// Несколько новых лотов отдаются в порядке снимка.
func TestApplySnapshot_SnapshotOrder(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(watched, rec.callbacks(), nopLogger{})

	s.ApplySnapshot(snapshot("A"))
	s.ApplySnapshot(snapshot("A", "D", "B", "C"))

	want := []string{"D", "B", "C"}
	if len(rec.inserts) != 3 || rec.inserts[0] != want[0] || rec.inserts[1] != want[1] || rec.inserts[2] != want[2] {
		t.Fatalf("want inserts %v, got %v", want, rec.inserts)
	}
}

// Исчезновение из снимка удалением не считается.
func TestApplySnapshot_RemovalNotReported(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(watched, rec.callbacks(), nopLogger{})

	s.ApplySnapshot(snapshot("A", "B"))
	s.ApplySnapshot(snapshot("A"))

	if len(rec.deletes) != 0 {
		t.Fatalf("pull mode must not report deletes, got %v", rec.deletes)
	}
}

func ev(kind domain.ChangeKind, id string, withPayload bool) domain.ChangeEvent {
	e := domain.ChangeEvent{Collection: watched, Kind: kind, ID: id}
	if withPayload {
		l := listing(id)
		e.Payload = &l
	}
	return e
}

// Повторный insert (at-least-once транспорт) подавляется.
func TestApplyEvent_DuplicateInsertSuppressed(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(watched, rec.callbacks(), nopLogger{})
	ctx := context.Background()

	s.ApplyEvent(ctx, ev(domain.ChangeInsert, "X", true))
	s.ApplyEvent(ctx, ev(domain.ChangeInsert, "X", true))

	if len(rec.inserts) != 1 {
		t.Fatalf("want 1 insert callback, got %d", len(rec.inserts))
	}
}

// Update отдаётся и для невиданного id; в known set id при этом не попадает.
func TestApplyEvent_UpdateAlwaysSurfaced(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(watched, rec.callbacks(), nopLogger{})
	ctx := context.Background()

	s.ApplyEvent(ctx, ev(domain.ChangeUpdate, "U", true))

	if len(rec.updates) != 1 || rec.updates[0] != "U" {
		t.Fatalf("want update for U, got %v", rec.updates)
	}
	if s.KnownCount() != 0 {
		t.Fatalf("update must not grow known set (no prior insert callback)")
	}

	// последующий insert того же id — не дубликат
	s.ApplyEvent(ctx, ev(domain.ChangeInsert, "U", true))
	if len(rec.inserts) != 1 {
		t.Fatalf("insert after update must be dispatched, got %v", rec.inserts)
	}
}

// Delete идемпотентен: удаление отсутствующего id — не ошибка, колбэк отдаётся.
func TestApplyEvent_DeleteIdempotent(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(watched, rec.callbacks(), nopLogger{})
	ctx := context.Background()

	s.ApplyEvent(ctx, ev(domain.ChangeInsert, "D", true))
	s.ApplyEvent(ctx, ev(domain.ChangeDelete, "D", false))
	s.ApplyEvent(ctx, ev(domain.ChangeDelete, "D", false))

	if len(rec.deletes) != 2 {
		t.Fatalf("want 2 delete callbacks, got %d", len(rec.deletes))
	}
	if s.KnownCount() != 0 {
		t.Fatalf("known set must be empty after delete")
	}

	// после удаления повторный insert снова проходит
	s.ApplyEvent(ctx, ev(domain.ChangeInsert, "D", true))
	if len(rec.inserts) != 2 {
		t.Fatalf("insert after delete must be dispatched, got %v", rec.inserts)
	}
}

// События чужих коллекций молча игнорируются.
func TestApplyEvent_ForeignCollectionIgnored(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(watched, rec.callbacks(), nopLogger{})

	e := ev(domain.ChangeInsert, "F", true)
	e.Collection = "other"
	s.ApplyEvent(context.Background(), e)

	if len(rec.inserts) != 0 {
		t.Fatalf("foreign collection event must be ignored, got %v", rec.inserts)
	}
}

// После Close ни снимки, ни события колбэков не порождают.
func TestClose_Finality(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(watched, rec.callbacks(), nopLogger{})
	ctx := context.Background()

	s.ApplySnapshot(snapshot("A"))
	s.Close()
	s.Close() // идемпотентен

	s.ApplySnapshot(snapshot("A", "B"))
	s.ApplyEvent(ctx, ev(domain.ChangeInsert, "C", true))
	s.ApplyEvent(ctx, ev(domain.ChangeDelete, "A", false))

	if len(rec.inserts) != 0 || len(rec.deletes) != 0 || len(rec.updates) != 0 {
		t.Fatalf("no callbacks after Close, got inserts=%v updates=%v deletes=%v",
			rec.inserts, rec.updates, rec.deletes)
	}
}

type snapshotFunc func(ctx context.Context) ([]domain.Listing, error)

func (f snapshotFunc) Snapshot(ctx context.Context) ([]domain.Listing, error) { return f(ctx) }

// Перекрывающаяся полная сверка не запускает второй запрос снимка.
func TestResyncFrom_Busy(t *testing.T) {
	rec := &recorder{}
	s := NewSynchronizer(watched, rec.callbacks(), nopLogger{})

	entered := make(chan struct{})
	release := make(chan struct{})
	src := snapshotFunc(func(context.Context) ([]domain.Listing, error) {
		close(entered)
		<-release
		return snapshot("A"), nil
	})

	go func() { _, _ = s.ResyncFrom(context.Background(), src) }()
	<-entered

	if _, err := s.ResyncFrom(context.Background(), src); !errors.Is(err, ErrSyncBusy) {
		t.Fatalf("want ErrSyncBusy for overlapping resync, got %v", err)
	}
	close(release)
}
