package app_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Gunvolt24/wb_l3/internal/app"
	"github.com/Gunvolt24/wb_l3/internal/domain"
	"github.com/Gunvolt24/wb_l3/internal/feed"
	"github.com/Gunvolt24/wb_l3/internal/ports"
)

// логгер-заглушка
type nopLogger struct{}

func (nopLogger) Infof(context.Context, string, ...any)  {}
func (nopLogger) Warnf(context.Context, string, ...any)  {}
func (nopLogger) Errorf(context.Context, string, ...any) {}

// фейковый консьюмер, который ждёт отмены контекста
type fakeConsumer struct {
	runCalls   int32
	closeCalls int32
}

func (f *fakeConsumer) Run(ctx context.Context) error {
	atomic.AddInt32(&f.runCalls, 1)
	<-ctx.Done()
	return ctx.Err()
}
func (f *fakeConsumer) Close() error {
	atomic.AddInt32(&f.closeCalls, 1)
	return nil
}
func (f *fakeConsumer) Status() ports.ConsumerStatus {
	return ports.ConsumerStatus{Connected: atomic.LoadInt32(&f.runCalls) > 0}
}

// фейковый источник снимков для pull-режима
type emptySource struct{ calls int32 }

func (s *emptySource) Snapshot(context.Context) ([]domain.Listing, error) {
	atomic.AddInt32(&s.calls, 1)
	return nil, nil
}

func TestAppRun_GracefulShutdown_PushMode(t *testing.T) {
	// HTTP-сервер на случайном свободном порту
	srv := &http.Server{
		Addr:    "127.0.0.1:0",
		Handler: http.NewServeMux(),
	}

	fc := &fakeConsumer{}
	a := &app.App{
		Logger:        nopLogger{},
		HTTPServer:    srv,
		KafkaConsumer: fc,
	}

	// Запуск и быстрая остановка
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if atomic.LoadInt32(&fc.runCalls) == 0 {
		t.Fatalf("consumer.Run should be called")
	}
	if atomic.LoadInt32(&fc.closeCalls) == 0 {
		t.Fatalf("consumer.Close should be called")
	}
}

func TestAppRun_GracefulShutdown_PullMode(t *testing.T) {
	srv := &http.Server{
		Addr:    "127.0.0.1:0",
		Handler: http.NewServeMux(),
	}

	log := nopLogger{}
	src := &emptySource{}
	syncr := feed.NewSynchronizer("listings", feed.Callbacks{}, log)
	poller := feed.NewPoller(src, syncr, 50*time.Millisecond, log)

	a := &app.App{
		Logger:     log,
		HTTPServer: srv,
		FeedPoller: poller,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	// первый тик выполняется сразу при старте
	if atomic.LoadInt32(&src.calls) == 0 {
		t.Fatalf("poller should have taken at least one snapshot")
	}
}
