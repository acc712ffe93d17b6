package feed

import (
	"context"
	"sync"
	"time"

	"github.com/Gunvolt24/wb_l3/internal/ports"
)

// Subscription — живая подписка на ленту в pull-режиме.
type Subscription struct {
	poller *Poller
	sync   *Synchronizer
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Subscribe — запускает опрос коллекции и возвращает подписку.
// Отмена родительского контекста равносильна Unsubscribe.
func Subscribe(
	ctx context.Context,
	source ports.SnapshotSource,
	collection string,
	interval time.Duration,
	cb Callbacks,
	log ports.Logger,
) *Subscription {
	s := NewSynchronizer(collection, cb, log)
	p := NewPoller(source, s, interval, log)

	runCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		poller: p,
		sync:   s,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(sub.done)
		_ = p.Run(runCtx)
	}()

	return sub
}

// Unsubscribe — детерминированно останавливает подписку. Идемпотентен.
// После возврата колбэки не вызываются: синхронизатор закрывается до того,
// как результат летящего снимка мог бы быть применён.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.sync.Close()
		s.cancel()
		<-s.done
	})
}

// Pause — останавливает таймер опроса (см. Poller.Pause).
func (s *Subscription) Pause() { s.poller.Pause() }

// Resume — возобновляет опрос без проигрывания пропущенного.
func (s *Subscription) Resume() { s.poller.Resume() }

// KnownCount — размер known set подписки.
func (s *Subscription) KnownCount() int { return s.sync.KnownCount() }
