package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	domrepo "FinSignal/internal/domain/repository"
	"FinSignal/internal/usecase"
	pkgch "FinSignal/pkg/clickhouse"
	xhttp "FinSignal/pkg/http"
	pkgkafka "FinSignal/pkg/kafka"
	applogger "FinSignal/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
)

// App owns every long-lived component. Optional backends are nil when
// disabled in config.
type App struct {
	logger    *applogger.Logger
	http      *xhttp.Server
	eval      *usecase.EvaluationService
	publisher domrepo.EvaluationPublisher
	consumer  *pkgkafka.Consumer
	ch        *pkgch.Client
	redis     *goredis.Client
}

// New creates the application.
func New(
	l *applogger.Logger,
	httpServer *xhttp.Server,
	eval *usecase.EvaluationService,
	publisher domrepo.EvaluationPublisher,
	consumer *pkgkafka.Consumer,
	ch *pkgch.Client,
	redis *goredis.Client,
) *App {
	return &App{
		logger:    l,
		http:      httpServer,
		eval:      eval,
		publisher: publisher,
		consumer:  consumer,
		ch:        ch,
		redis:     redis,
	}
}

// Run starts the HTTP server and the history consumer, then blocks until
// SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.consumer != nil {
		a.consumer.Start(ctx)
	}
	if err := a.http.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh

	a.logger.Info("shutdown signal received", applogger.String("signal", sig.String()))
	return a.shutdown()
}

// shutdown stops intake first, then drains background publishes before
// closing the backends they write to.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.http.ShutdownTimeout())
	defer cancel()

	if err := a.http.Stop(ctx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	a.eval.Wait()
	if err := a.publisher.Close(); err != nil {
		a.logger.Warn("publisher close error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.logger.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("redis close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
