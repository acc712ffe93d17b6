package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/Gunvolt24/wb_l3/internal/domain"
	"github.com/Gunvolt24/wb_l3/internal/ports"
	"github.com/Gunvolt24/wb_l3/pkg/metrics"
)

// ErrSyncBusy — снимок уже синхронизируется; перекрывающиеся тики пропускаются.
var ErrSyncBusy = errors.New("feed sync already in progress")

// Callbacks — колбэки подписчика. OnInsert обязателен,
// OnUpdate/OnDelete опциональны (актуальны для push-режима).
type Callbacks struct {
	OnInsert func(domain.Listing)
	OnUpdate func(domain.Listing)
	OnDelete func(id string)
}

// Synchronizer — владелец множества известных идентификаторов (known set).
// Гарантии: insert-колбэк вызывается ровно один раз на логическое появление
// лота; дубликаты insert-событий подавляются; после Close ни один колбэк
// не вызывается (диспетчеризация и Close сериализуются на одном мьютексе).
type Synchronizer struct {
	collection string
	cb         Callbacks
	log        ports.Logger

	mu     sync.Mutex
	known  map[string]struct{}
	primed bool
	closed bool

	// busy — защита от перекрывающихся полных синхронизаций (ResyncFrom).
	busyMu sync.Mutex
	busy   bool
}

// NewSynchronizer — конструктор. collection — имя отслеживаемой коллекции
// для фильтрации мультиплексированных событий транспорта.
func NewSynchronizer(collection string, cb Callbacks, log ports.Logger) *Synchronizer {
	return &Synchronizer{
		collection: collection,
		cb:         cb,
		log:        log,
		known:      make(map[string]struct{}),
	}
}

// ApplySnapshot — сверка полного снимка коллекции с known set.
// Первый снимок — baseline: множество инициализируется без колбэков
// (никакого шторма "новых" лотов на старте). Дальше — только добавления,
// в порядке снимка. Исчезнувшие из снимка лоты удалёнными не считаются:
// pull-режим не отличает "удалён" от "ещё не досинхронизирован".
// Возвращает число отправленных insert-колбэков.
func (s *Synchronizer) ApplySnapshot(listings []domain.Listing) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		// подписка снята, пока снимок был в полёте — результат отбрасываем
		return 0
	}

	if !s.primed {
		for _, l := range listings {
			s.known[l.ID] = struct{}{}
		}
		s.primed = true
		return 0
	}

	inserted := 0
	for _, l := range listings {
		if _, ok := s.known[l.ID]; ok {
			continue
		}
		s.dispatchInsert(l)
		inserted++
	}
	return inserted
}

// ApplyEvent — классификация push-события. События чужих коллекций
// молча игнорируются.
func (s *Synchronizer) ApplyEvent(ctx context.Context, ev domain.ChangeEvent) {
	if ev.Collection != s.collection {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	switch ev.Kind {
	case domain.ChangeInsert:
		if ev.Payload == nil {
			s.log.Warnf(ctx, "insert event without payload id=%s (skipped)", ev.ID)
			return
		}
		if _, ok := s.known[ev.ID]; ok {
			// at-least-once доставка: повторный insert подавляем
			s.log.Infof(ctx, "duplicate insert suppressed id=%s", ev.ID)
			return
		}
		s.dispatchInsert(*ev.Payload)

	case domain.ChangeUpdate:
		if ev.Payload == nil {
			s.log.Warnf(ctx, "update event without payload id=%s (skipped)", ev.ID)
			return
		}
		// update отдаём независимо от known set: обновление невиданного
		// лота — тоже полезный сигнал для потребителя
		if s.cb.OnUpdate != nil {
			s.cb.OnUpdate(*ev.Payload)
			metrics.FeedEvents.WithLabelValues("update").Inc()
		}

	case domain.ChangeDelete:
		if s.cb.OnDelete != nil {
			s.cb.OnDelete(ev.ID)
			metrics.FeedEvents.WithLabelValues("delete").Inc()
		}
		// удаление идемпотентно: отсутствующий id — не ошибка
		delete(s.known, ev.ID)

	default:
		s.log.Warnf(ctx, "unknown change kind %q id=%s (ignored)", ev.Kind, ev.ID)
	}
}

// ResyncFrom — одноразовая полная сверка: забрать снимок и применить диф.
// Перекрывающиеся вызовы не запускают второй фоновый запрос — возвращается
// ErrSyncBusy. Используется тиками pull-режима и ручным resync в push-режиме.
func (s *Synchronizer) ResyncFrom(ctx context.Context, src ports.SnapshotSource) (int, error) {
	s.busyMu.Lock()
	if s.busy {
		s.busyMu.Unlock()
		return 0, ErrSyncBusy
	}
	s.busy = true
	s.busyMu.Unlock()

	defer func() {
		s.busyMu.Lock()
		s.busy = false
		s.busyMu.Unlock()
	}()

	listings, err := src.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return s.ApplySnapshot(listings), nil
}

// Close — останавливает диспетчеризацию. Идемпотентен. После возврата
// ни один колбэк не будет вызван, даже если снимок был в полёте.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// KnownCount — размер known set (для наблюдаемости).
func (s *Synchronizer) KnownCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.known)
}

// dispatchInsert — вызывает insert-колбэк и фиксирует id. Вызывать под mu.
// Инвариант: id попадает в known set только вместе с insert-колбэком.
func (s *Synchronizer) dispatchInsert(l domain.Listing) {
	if s.cb.OnInsert != nil {
		s.cb.OnInsert(l)
	}
	s.known[l.ID] = struct{}{}
	metrics.FeedEvents.WithLabelValues("insert").Inc()
}
