package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Gunvolt24/wb_l3/config"
	cachemem "github.com/Gunvolt24/wb_l3/internal/cache/memory"
	"github.com/Gunvolt24/wb_l3/internal/domain"
	"github.com/Gunvolt24/wb_l3/internal/feed"
	"github.com/Gunvolt24/wb_l3/internal/governor"
	"github.com/Gunvolt24/wb_l3/internal/kafka"
	"github.com/Gunvolt24/wb_l3/internal/ports"
	"github.com/Gunvolt24/wb_l3/internal/provider/httpapi"
	rest "github.com/Gunvolt24/wb_l3/internal/transport/http"
	"github.com/Gunvolt24/wb_l3/internal/usecase"
	"github.com/Gunvolt24/wb_l3/pkg/logger"
	"github.com/Gunvolt24/wb_l3/pkg/metrics"
	"github.com/Gunvolt24/wb_l3/pkg/telemetry"
	"github.com/Gunvolt24/wb_l3/pkg/validate"
	"github.com/gin-gonic/gin"
)

// App — собранное приложение и его внешние интерфейсы (HTTP, лента).
type App struct {
	Logger        ports.Logger          // логгер
	HTTPServer    *http.Server          // HTTP-сервер
	KafkaConsumer ports.MessageConsumer // консьюмер ленты (только push-режим)
	FeedPoller    *feed.Poller          // опрос снимков (только pull-режим)

	cache           *cachemem.BoundedCacheTTL
	sweepInterval   time.Duration
	gracefulTimeout time.Duration // время ожидания завершения HTTP-сервера
}

// Cleanup — функция освобождения ресурсов.
type Cleanup func()

// applyGinMode — устанавливает режим Gin по строке;
// неизвестное значение → debug и предупреждение в лог.
func applyGinMode(ctx context.Context, mode string, log ports.Logger) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	case "", "debug":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.DebugMode)
		log.Warnf(ctx, "unknown GIN_MODE=%q, fallback to debug", mode)
	}
}

// Bootstrap — собирает зависимости и возвращает приложение, функцию очистки и ошибку.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, Cleanup, error) {
	// Логгер (dev/prod режим задаётся конфигурацией).
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		return nil, func() {}, err
	}

	// Регистрация метрик (Prometheus).
	metrics.MustRegister()

	// Трейсинг OTEL (при включённой конфигурации); по умолчанию — no-op.
	shutdownTrace := func(context.Context) error { return nil }
	if cfg.Tracing.Enabled {
		setup, tErr := telemetry.SetupTracing(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		if tErr != nil {
			logg.Warnf(ctx, "failed to setup tracing: %v", tErr)
		} else {
			logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
				cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
			shutdownTrace = setup
		}
	}

	// Сборка зависимостей доменного слоя: кэш перед governor'ом перед провайдером.
	catalogCache := cachemem.NewBoundedCacheTTL(cfg.Cache.Capacity, cfg.Cache.TTL)
	gov := governor.New(governor.Config{
		MaxRequestsPerMinute: cfg.Provider.MaxRequestsPerMinute,
		BaseBackoff:          cfg.Provider.BaseBackoff,
		MaxBackoff:           cfg.Provider.MaxBackoff,
		RetryAttempts:        cfg.Provider.RetryAttempts,
	}, logg)
	providerClient := httpapi.NewClient(httpapi.Config{
		BaseURL:    cfg.Provider.BaseURL,
		Collection: cfg.Provider.Collection,
		Timeout:    cfg.Provider.Timeout,
	}, logg)
	catalogService := usecase.NewCatalogService(providerClient, catalogCache, gov, logg)

	// Синхронизатор ленты: появившиеся лоты попадают в лог,
	// свежесть поисковой выдачи обеспечивает TTL кэша.
	syncr := feed.NewSynchronizer(cfg.Provider.Collection, feed.Callbacks{
		OnInsert: func(l domain.Listing) {
			logg.Infof(ctx, "feed: new listing id=%s title=%q", l.ID, l.Title)
		},
		OnDelete: func(id string) {
			logg.Infof(ctx, "feed: listing removed id=%s", id)
		},
	}, logg)
	catalogService.AttachFeed(providerClient, syncr)

	// Режим Gin.
	applyGinMode(ctx, cfg.HTTP.GinMode, logg)

	// Имя сервиса для otelgin (только при включённом трейсинге).
	otelServiceName := ""
	if cfg.Tracing.Enabled {
		otelServiceName = cfg.Tracing.ServiceName
	}

	// Роутер и HTTP-сервер.
	httpHandler := rest.NewHandler(catalogService, logg, cfg.HTTP.HandlerTimeout)

	app := &App{
		Logger:          logg,
		cache:           catalogCache,
		sweepInterval:   cfg.Cache.SweepInterval,
		gracefulTimeout: cfg.HTTP.GracefulTimeout,
	}

	// Транспорт ленты по режиму: pull — периодический опрос снимков,
	// push — поток событий из Kafka.
	var consumer ports.MessageConsumer
	switch strings.ToLower(strings.TrimSpace(cfg.Feed.Mode)) {
	case "push":
		kafkaCfg := kafka.ConsumerConfig{
			Brokers:        cfg.Kafka.Brokers,
			GroupID:        cfg.Kafka.GroupID,
			Topic:          cfg.Kafka.Topic,
			StartOffset:    cfg.Kafka.StartOffset,
			ProcessTimeout: cfg.Kafka.ProcessTimeout,
			RetryInitial:   cfg.Kafka.RetryInitial,
			RetryMax:       cfg.Kafka.RetryMax,
		}
		ingestor := feed.NewIngestor(syncr, validate.NewEventValidator(), logg)
		consumer = kafka.NewConsumer(&kafkaCfg, ingestor, logg)
		httpHandler.AttachConsumer(consumer)
		app.KafkaConsumer = consumer
	case "", "pull":
		app.FeedPoller = feed.NewPoller(providerClient, syncr, cfg.Feed.Interval, logg)
	default:
		logg.Warnf(ctx, "unknown FEED_MODE=%q, fallback to pull", cfg.Feed.Mode)
		app.FeedPoller = feed.NewPoller(providerClient, syncr, cfg.Feed.Interval, logg)
	}

	router := rest.NewRouter(httpHandler, "./web", otelServiceName)
	app.HTTPServer = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	// Очистка ресурсов (в обратном порядке).
	cleanup := func() {
		if terr := shutdownTrace(context.Background()); terr != nil {
			logg.Warnf(ctx, "shutdown tracing: %v", terr)
		}
		if consumer != nil {
			if err := consumer.Close(); err != nil {
				logg.Warnf(ctx, "kafka consumer close error: %v", err)
			}
		}
		syncr.Close()
		if cerr := cleanupLogger(); cerr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cerr)
		}
	}

	return app, cleanup, nil
}

// Run — запускает HTTP-сервер и транспорт ленты; ждёт отмены контекста
// или ошибки и останавливает их.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	// Фоновая уборка протухших записей кэша.
	if a.cache != nil {
		go a.cache.RunSweeper(ctx, a.sweepInterval)
	}

	// Запуск транспорта ленты.
	switch {
	case a.KafkaConsumer != nil:
		go func() {
			a.Logger.Infof(ctx, "kafka consumer starting")
			if err := a.KafkaConsumer.Run(ctx); err != nil {
				errCh <- err
			}
		}()
	case a.FeedPoller != nil:
		go func() {
			a.Logger.Infof(ctx, "feed poller starting")
			if err := a.FeedPoller.Run(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	// Запуск HTTP-сервера.
	go func() {
		a.Logger.Infof(ctx, "http server starting (addr=%s)", a.HTTPServer.Addr)
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Ожидание сигнала остановки или фоновой ошибки.
	select {
	case <-ctx.Done():
		a.Logger.Infof(ctx, "shutdown requested, starting graceful shutdown")
	case err := <-errCh:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			a.Logger.Infof(ctx, "background component stopped: %v", err)
		} else {
			a.Logger.Warnf(ctx, "background error: %v", err)
		}
	}

	gt := a.gracefulTimeout
	if gt <= 0 {
		gt = 5 * time.Second
	}

	// Корректная остановка HTTP-сервера.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gt)
	defer cancel()

	if err := a.HTTPServer.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warnf(ctx, "http server shutdown failed: %v", err)
	} else {
		a.Logger.Infof(ctx, "http server stopped gracefully")
	}

	// Остановка консьюмера ленты (push-режим).
	if a.KafkaConsumer != nil {
		if err := a.KafkaConsumer.Close(); err != nil {
			a.Logger.Warnf(ctx, "kafka consumer close error: %v", err)
		}
	}

	a.Logger.Infof(ctx, "service stopped")
	return nil
}
