package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Gunvolt24/wb_l3/internal/ports"
	"github.com/Gunvolt24/wb_l3/pkg/metrics"
)

// DefaultInterval — интервал опроса по умолчанию. Подобран эмпирически:
// короче — лишняя нагрузка на API коллекции, корректность от значения не зависит.
const DefaultInterval = 30 * time.Second

// Poller — pull-режим синхронизации: периодический полный снимок коллекции
// и сверка через Synchronizer. Тики сериализованы (второй снимок не
// запускается, пока жив первый), ошибка снимка не роняет цикл.
type Poller struct {
	source   ports.SnapshotSource
	sync     *Synchronizer
	interval time.Duration
	log      ports.Logger

	mu     sync.Mutex
	ticker *time.Ticker
	paused bool
}

// NewPoller — конструктор. interval <= 0 приводится к DefaultInterval.
func NewPoller(source ports.SnapshotSource, s *Synchronizer, interval time.Duration, log ports.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		source:   source,
		sync:     s,
		interval: interval,
		log:      log,
	}
}

// Run — основной цикл. Первый тик — сразу (baseline без колбэков),
// дальше по таймеру. Останавливается по отмене контекста.
func (p *Poller) Run(ctx context.Context) error {
	p.mu.Lock()
	p.ticker = time.NewTicker(p.interval)
	if p.paused {
		p.ticker.Stop()
	}
	ticker := p.ticker
	p.mu.Unlock()
	defer ticker.Stop()

	p.log.Infof(ctx, "feed poller started interval=%s", p.interval)

	p.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			p.log.Infof(ctx, "feed poller stopped: %v", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// Pause — полностью останавливает таймер (не просто глушит колбэки).
// Используется потребителем по внешним сигналам, например видимости вкладки.
func (p *Poller) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.paused {
		return
	}
	p.paused = true
	if p.ticker != nil {
		p.ticker.Stop()
	}
}

// Resume — перезапускает таймер. Пропущенные изменения не проигрываются:
// их подберёт диф следующего полного снимка.
func (p *Poller) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.paused {
		return
	}
	p.paused = false
	if p.ticker != nil {
		p.ticker.Reset(p.interval)
	}
}

// tick — один цикл сверки. Ошибка логируется и не прерывает опрос —
// следующий тик повторит попытку; перекрывающийся тик пропускается.
func (p *Poller) tick(ctx context.Context) {
	inserted, err := p.sync.ResyncFrom(ctx, p.source)
	switch {
	case errors.Is(err, ErrSyncBusy):
		metrics.FeedPolls.WithLabelValues("skipped").Inc()
		p.log.Warnf(ctx, "poll skipped: previous snapshot still in flight")
	case err != nil:
		metrics.FeedPolls.WithLabelValues("error").Inc()
		p.log.Warnf(ctx, "snapshot fetch failed: %v (will retry next tick)", err)
	default:
		metrics.FeedPolls.WithLabelValues("ok").Inc()
		if inserted > 0 {
			p.log.Infof(ctx, "poll done, %d new listings", inserted)
		}
	}
}
