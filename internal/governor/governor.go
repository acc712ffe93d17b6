package governor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Gunvolt24/wb_l3/internal/domain"
	"github.com/Gunvolt24/wb_l3/internal/ports"
	"github.com/Gunvolt24/wb_l3/pkg/metrics"
)

// ErrReset — очередь была принудительно очищена через Reset;
// все ожидавшие вызовы завершаются этой ошибкой.
var ErrReset = errors.New("governor reset")

// Operation — единица работы, выполняемая после допуска через окно.
type Operation func(ctx context.Context) ([]domain.CatalogItem, error)

type outcome struct {
	items []domain.CatalogItem
	err   error
}

// request — поставленный в очередь запрос. attempts считает ретраи
// после throttling-сигнала и никогда не превышает retryAttempts.
type request struct {
	ctx      context.Context
	op       Operation
	priority int
	attempts int
	done     chan outcome
}

// Config — параметры governor'а.
type Config struct {
	MaxRequestsPerMinute int
	BaseBackoff          time.Duration
	MaxBackoff           time.Duration
	RetryAttempts        int
}

// Governor — общая для процесса очередь запросов к внешнему провайдеру:
// скользящее окно допуска (не более maxPerWindow за windowSize), приоритеты
// (больше — раньше, FIFO внутри приоритета) и глобальный backoff после
// throttling-сигнала. Backoff общий, а не per-request: сигнал 429 означает,
// что насыщен сам провайдер, и пропускать другие запросы бессмысленно.
type Governor struct {
	maxPerWindow  int
	windowSize    time.Duration
	baseBackoff   time.Duration
	maxBackoff    time.Duration
	retryAttempts int

	log ports.Logger

	// now — источник времени; подменяется в тестах.
	now func() time.Time

	mu           sync.Mutex
	queue        []*request
	window       []time.Time
	backoffUntil time.Time
	running      bool
}

// New — конструктор с безопасными дефолтами.
func New(cfg Config, log ports.Logger) *Governor {
	if cfg.MaxRequestsPerMinute <= 0 {
		cfg.MaxRequestsPerMinute = 60
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	if cfg.RetryAttempts < 0 {
		cfg.RetryAttempts = 0
	}
	return &Governor{
		maxPerWindow:  cfg.MaxRequestsPerMinute,
		windowSize:    time.Minute,
		baseBackoff:   cfg.BaseBackoff,
		maxBackoff:    cfg.MaxBackoff,
		retryAttempts: cfg.RetryAttempts,
		log:           log,
		now:           time.Now,
	}
}

// Enqueue — ставит операцию в очередь и блокирует вызывающего до финального
// исхода (успех, терминальная ошибка или исчерпание ретраев). Отмены уже
// поставленного запроса нет: он выполняется до конца.
func (g *Governor) Enqueue(ctx context.Context, priority int, op Operation) ([]domain.CatalogItem, error) {
	req := &request{
		ctx:      ctx,
		op:       op,
		priority: priority,
		done:     make(chan outcome, 1),
	}

	g.mu.Lock()
	g.insert(req)
	metrics.GovernorQueueDepth.Set(float64(len(g.queue)))
	// единственный рабочий цикл на инстанс: повторный Enqueue не создаёт второго
	if !g.running {
		g.running = true
		go g.loop()
	}
	g.mu.Unlock()

	res := <-req.done
	return res.items, res.err
}

// Stats — длина очереди, число запросов в скользящем окне и состояние backoff.
func (g *Governor) Stats() ports.GovernorStats {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.pruneWindow(now)

	st := ports.GovernorStats{
		QueueLength: len(g.queue),
		WindowCount: len(g.window),
	}
	if remaining := g.backoffUntil.Sub(now); remaining > 0 {
		st.BackedOff = true
		st.BackoffRemaining = remaining
	}
	return st
}

// Reset — очищает очередь и состояние окна. Ожидающие вызовы завершаются
// ErrReset, а не виснут навсегда. Используется в тестах и для ручного
// восстановления.
func (g *Governor) Reset() {
	g.mu.Lock()
	pending := g.queue
	g.queue = nil
	g.window = nil
	g.backoffUntil = time.Time{}
	metrics.GovernorQueueDepth.Set(0)
	g.mu.Unlock()

	for _, req := range pending {
		metrics.GovernorRequests.WithLabelValues("reset").Inc()
		req.done <- outcome{err: ErrReset}
	}
}

// loop — рабочий цикл: ждёт конец backoff-окна, ждёт освобождения
// скользящего окна, выполняет головной запрос и раскладывает исход.
// Завершается, когда очередь пуста.
func (g *Governor) loop() {
	for {
		g.mu.Lock()
		if len(g.queue) == 0 {
			g.running = false
			g.mu.Unlock()
			return
		}

		now := g.now()

		// 1) глобальный backoff после троттлинга
		if wait := g.backoffUntil.Sub(now); wait > 0 {
			g.mu.Unlock()
			time.Sleep(wait)
			continue
		}

		// 2) скользящее окно: ждём ровно до выхода самого старого допуска
		g.pruneWindow(now)
		if len(g.window) >= g.maxPerWindow {
			wait := g.window[0].Add(g.windowSize).Sub(now)
			g.mu.Unlock()
			time.Sleep(wait)
			continue
		}

		// 3) голова очереди: наивысший приоритет, FIFO внутри приоритета
		req := g.queue[0]
		g.queue = g.queue[1:]
		g.window = append(g.window, now)
		metrics.GovernorQueueDepth.Set(float64(len(g.queue)))
		g.mu.Unlock()

		g.execute(req)
	}
}

// execute — выполняет запрос и завершает его либо ставит на ретрай.
func (g *Governor) execute(req *request) {
	items, err := req.op(req.ctx)

	switch {
	case err == nil:
		metrics.GovernorRequests.WithLabelValues("success").Inc()
		req.done <- outcome{items: items}

	case domain.IsThrottled(err):
		req.attempts++
		if req.attempts > g.retryAttempts {
			// ретраи исчерпаны: терминальная ошибка, различимая вызывающим
			metrics.GovernorRequests.WithLabelValues("throttled").Inc()
			g.log.Errorf(req.ctx, "throttled, retries exhausted attempts=%d err=%v", req.attempts-1, err)
			req.done <- outcome{err: fmt.Errorf("%w: retries exhausted: %v", domain.ErrThrottled, err)}
			return
		}

		backoff := g.backoffFor(req.attempts)
		g.mu.Lock()
		g.backoffUntil = g.now().Add(backoff)
		// ретрай — в начало своего приоритетного яруса, чтобы его
		// не задвигала более новая низкоприоритетная работа
		g.insertFront(req)
		metrics.GovernorQueueDepth.Set(float64(len(g.queue)))
		g.mu.Unlock()

		metrics.GovernorRetries.Inc()
		g.log.Warnf(req.ctx, "throttled, retry attempt=%d backoff=%s", req.attempts, backoff)

	default:
		// не троттлинг: без ретрая, отдаём ошибку сразу
		metrics.GovernorRequests.WithLabelValues("failed").Inc()
		req.done <- outcome{err: err}
	}
}

// backoffFor — экспоненциальный backoff с потолком: base * 2^attempt.
func (g *Governor) backoffFor(attempt int) time.Duration {
	backoff := g.baseBackoff
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff >= g.maxBackoff {
			return g.maxBackoff
		}
	}
	return backoff
}

// pruneWindow — выбрасывает из окна допуски старше windowSize. Вызывать под mu.
func (g *Governor) pruneWindow(now time.Time) {
	cutoff := now.Add(-g.windowSize)
	i := 0
	for i < len(g.window) && !g.window[i].After(cutoff) {
		i++
	}
	if i > 0 {
		g.window = append([]time.Time(nil), g.window[i:]...)
	}
}

// insert — вставка с сохранением порядка: по убыванию приоритета,
// FIFO внутри одного приоритета. Вызывать под mu.
func (g *Governor) insert(req *request) {
	pos := len(g.queue)
	for i, q := range g.queue {
		if q.priority < req.priority {
			pos = i
			break
		}
	}
	g.queue = append(g.queue, nil)
	copy(g.queue[pos+1:], g.queue[pos:])
	g.queue[pos] = req
}

// insertFront — вставка в начало своего приоритетного яруса:
// после всех строго более приоритетных, перед равными. Вызывать под mu.
func (g *Governor) insertFront(req *request) {
	pos := len(g.queue)
	for i, q := range g.queue {
		if q.priority <= req.priority {
			pos = i
			break
		}
	}
	g.queue = append(g.queue, nil)
	copy(g.queue[pos+1:], g.queue[pos:])
	g.queue[pos] = req
}
