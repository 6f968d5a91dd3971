package di

import (
	"context"
	"fmt"
	"time"

	domrepo "FinSignal/internal/domain/repository"
	domsvc "FinSignal/internal/domain/service"
	"FinSignal/internal/handler/api"
	internalrepo "FinSignal/internal/repository"
	"FinSignal/internal/service/dart"
	"FinSignal/internal/service/gemini"
	pmetrics "FinSignal/internal/service/metrics"
	"FinSignal/internal/service/ratelimit"
	"FinSignal/internal/service/yahoo"
	"FinSignal/internal/usecase"
	"FinSignal/pkg/cache"
	pkgch "FinSignal/pkg/clickhouse"
	"FinSignal/pkg/config"
	xhttp "FinSignal/pkg/http"
	pkgkafka "FinSignal/pkg/kafka"
	applogger "FinSignal/pkg/logger"
	"FinSignal/pkg/metrics"
	pkgredis "FinSignal/pkg/redis"
	"FinSignal/pkg/server"

	goredis "github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates the Prometheus recorder and registers provider metrics.
func ProvideMetrics() domrepo.Metrics {
	pmetrics.Register()
	return metrics.New()
}

func ProvideTickerTable(cfg *config.Config) (domrepo.TickerTable, error) {
	t, err := internalrepo.LoadTickerTable(cfg.Reference.TickersPath)
	if err != nil {
		return nil, fmt.Errorf("ticker table: %w", err)
	}
	return t, nil
}

func ProvideResolver(table domrepo.TickerTable) *usecase.Resolver {
	return usecase.NewResolver(table)
}

func ProvideQuoteProvider() domrepo.QuoteProvider {
	return yahoo.New()
}

// ProvideDisclosureCache returns nil when filing caching is disabled. With
// redis it layers process memory in front of the shared cache.
func ProvideDisclosureCache(client *goredis.Client, cfg *config.Config) cache.Cache {
	if !cfg.Dart.Cache.Enabled {
		return nil
	}
	mem := ProvideLocalDisclosureCache(cfg)
	if client == nil {
		return mem
	}
	return cache.NewLayeredCache(mem, cache.NewRedisCache(client, cfg.Redis.KeyPrefix+":cache"))
}

// ProvideLocalDisclosureCache keeps filings in process memory only.
func ProvideLocalDisclosureCache(cfg *config.Config) *cache.MemoryCache {
	return cache.NewMemoryCache(
		cache.WithMemoryMaxSize(cfg.Dart.Cache.MemorySize),
		cache.WithMemoryTTL(cfg.Dart.Cache.MemoryTTL),
	)
}

func ProvideDisclosureProvider(c cache.Cache, cfg *config.Config, l *applogger.Logger) domrepo.DisclosureProvider {
	client := dart.New(dart.Config{
		BaseURL:       cfg.Dart.BaseURL,
		APIKey:        cfg.Dart.APIKey,
		Timeout:       cfg.Dart.Timeout,
		RetryCount:    cfg.Dart.RetryCount,
		RatePerSecond: cfg.Dart.RatePerSecond,
		Burst:         cfg.Dart.Burst,
		ReportCode:    cfg.Dart.ReportCode,
	}, l)
	if c == nil {
		return client
	}
	return internalrepo.NewCachedDisclosureProvider(client, c, cfg.Dart.Cache.TTL, l)
}

func ProvideMarketFetcher(q domrepo.QuoteProvider, cfg *config.Config, m domrepo.Metrics, l *applogger.Logger) *usecase.MarketFetcher {
	return usecase.NewMarketFetcher(q, usecase.VenueSuffixRule(cfg.Evaluation.VenueSuffixes), usecase.MarketFetcherConfig{
		HistoryDays:     cfg.Evaluation.HistoryDays,
		UpstreamTimeout: cfg.Evaluation.UpstreamTimeout,
	}, m, l)
}

func ProvideFiscalFetcher(p domrepo.DisclosureProvider, cfg *config.Config, m domrepo.Metrics, l *applogger.Logger) *usecase.FiscalFetcher {
	return usecase.NewFiscalFetcher(p, usecase.FiscalFetcherConfig{
		LookbackYears:   cfg.Evaluation.LookbackYears,
		UpstreamTimeout: cfg.Evaluation.UpstreamTimeout,
	}, m, l)
}

func ProvideAggregator(r *usecase.Resolver, mf *usecase.MarketFetcher, ff *usecase.FiscalFetcher, cfg *config.Config, m domrepo.Metrics, l *applogger.Logger) *usecase.Aggregator {
	return usecase.NewAggregator(r, mf, ff, usecase.AggregatorConfig{
		RequestTimeout: cfg.Evaluation.RequestTimeout,
		MarketCapBands: cfg.Evaluation.MarketCapBands,
	}, m, l)
}

// ProvideRedisClient returns nil when redis is disabled.
func ProvideRedisClient(cfg *config.Config) (*goredis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	c, err := pkgredis.NewClient(
		pkgredis.WithAddr(cfg.Redis.Addr),
		pkgredis.WithPassword(cfg.Redis.Password),
		pkgredis.WithDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis client: %w", err)
	}
	return c, nil
}

// ProvidePresetStore falls back to process memory without redis.
func ProvidePresetStore(client *goredis.Client, cfg *config.Config) domrepo.PresetStore {
	if client == nil {
		return internalrepo.NewMemoryPresetStore()
	}
	return internalrepo.NewRedisPresetStore(client, cfg.Redis.KeyPrefix)
}

func ProvidePresetService(store domrepo.PresetStore) *usecase.PresetService {
	return usecase.NewPresetService(store)
}

// ProvideKafkaProducer returns nil when kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	p, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return p, nil
}

func ProvideEvaluationPublisher(p *pkgkafka.Producer, cfg *config.Config) domrepo.EvaluationPublisher {
	if p == nil {
		return internalrepo.NoopEvaluationPublisher{}
	}
	return internalrepo.NewKafkaEvaluationPublisher(p, cfg.Kafka.Topic)
}

func ProvideEvaluationService(agg *usecase.Aggregator, presets *usecase.PresetService, pub domrepo.EvaluationPublisher, l *applogger.Logger) *usecase.EvaluationService {
	return usecase.NewEvaluationService(agg, presets, pub, l)
}

func ProvideNarrator(cfg *config.Config, l *applogger.Logger) (domsvc.Narrator, error) {
	n, err := gemini.New(context.Background(), gemini.Config{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.Model,
		Temperature: cfg.Gemini.Temperature,
		Timeout:     cfg.Gemini.Timeout,
	}, l)
	if err != nil {
		return nil, fmt.Errorf("gemini narrator: %w", err)
	}
	return n, nil
}

func ProvideChatUseCase(eval *usecase.EvaluationService, narrator domsvc.Narrator) *usecase.ChatUseCase {
	return usecase.NewChatUseCase(eval, narrator)
}

// ProvideClickHouseClient returns nil when history is disabled. The schema is
// created on startup.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	stmts := append([]string{"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database},
		internalrepo.EvaluationHistorySchema(historyTable(cfg))...)
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideEvaluationStore returns a nil interface when history is disabled.
func ProvideEvaluationStore(ch *pkgch.Client, cfg *config.Config, l *applogger.Logger) domrepo.EvaluationStore {
	if ch == nil {
		return nil
	}
	return internalrepo.NewCHEvaluationStore(ch, historyTable(cfg), l)
}

func ProvideEvaluationSink(store domrepo.EvaluationStore, m domrepo.Metrics, cfg *config.Config) *usecase.EvaluationSink {
	return usecase.NewEvaluationSink(cfg.Kafka.Topic, store, m)
}

// ProvideKafkaConsumer returns nil unless both kafka and history are enabled.
func ProvideKafkaConsumer(sink *usecase.EvaluationSink, store domrepo.EvaluationStore, cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || store == nil {
		return nil, nil
	}
	c, err := pkgkafka.NewConsumer(sink, l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers, cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return c, nil
}

// ProvideHTTPHandler assembles every route group.
func ProvideHTTPHandler(
	l *applogger.Logger,
	eval *usecase.EvaluationService,
	resolver *usecase.Resolver,
	sink *usecase.EvaluationSink,
	presets *usecase.PresetService,
	chat *usecase.ChatUseCase,
	cfg *config.Config,
) xhttp.Handler {
	limiter := ratelimit.New(cfg.Chat.RateCapacity, cfg.Chat.RefillPerSec)
	return xhttp.Handlers{
		api.NewStocksEchoHandler(l, eval, resolver, sink),
		api.NewPresetsEchoHandler(l, presets),
		api.NewChatEchoHandler(l, chat, limiter),
		api.NewStreamHandler(l, eval),
	}
}

func ProvideHTTPServer(h xhttp.Handler, cfg *config.Config, l *applogger.Logger) *xhttp.Server {
	return xhttp.NewServer(h,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowRequest(cfg.Server.SlowRequest),
		xhttp.WithLogger(l),
	)
}

func ProvideApp(
	l *applogger.Logger,
	httpServer *xhttp.Server,
	eval *usecase.EvaluationService,
	pub domrepo.EvaluationPublisher,
	consumer *pkgkafka.Consumer,
	ch *pkgch.Client,
	redis *goredis.Client,
) *server.App {
	return server.New(l, httpServer, eval, pub, consumer, ch, redis)
}

// Toolkit is the subset of the service used by the command line client.
type Toolkit struct {
	Aggregator *usecase.Aggregator
	Resolver   *usecase.Resolver
	Presets    *usecase.PresetService
}

// ProvideToolkitDisclosureCache is the memory-only cache used by the CLI.
func ProvideToolkitDisclosureCache(cfg *config.Config) cache.Cache {
	if !cfg.Dart.Cache.Enabled {
		return nil
	}
	return ProvideLocalDisclosureCache(cfg)
}

// ProvideToolkit keeps presets in memory; the CLI reads them from files.
func ProvideToolkit(agg *usecase.Aggregator, r *usecase.Resolver) *Toolkit {
	return &Toolkit{
		Aggregator: agg,
		Resolver:   r,
		Presets:    usecase.NewPresetService(internalrepo.NewMemoryPresetStore()),
	}
}

func historyTable(cfg *config.Config) string {
	return cfg.ClickHouse.Database + "." + cfg.ClickHouse.Table
}
