package di

import (
	"time"

	domainrepo "TrendPulse/internal/domain/repository"
	domainsvc "TrendPulse/internal/domain/service"
	"TrendPulse/internal/handler/api"
	internalrepo "TrendPulse/internal/repository"
	"TrendPulse/internal/service/openai"
	"TrendPulse/internal/service/source"
	"TrendPulse/internal/services/analytics"
	"TrendPulse/internal/usecase"
	pkgch "TrendPulse/pkg/clickhouse"
	"TrendPulse/pkg/config"
	xhttp "TrendPulse/pkg/http"
	pkgkafka "TrendPulse/pkg/kafka"
	applogger "TrendPulse/pkg/logger"
	"TrendPulse/pkg/metrics"
	"TrendPulse/pkg/queue"
	"TrendPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates the Prometheus recorder. Returns nil when metrics
// are disabled; consumers treat a nil recorder as a no-op.
func ProvideMetrics(cfg *config.Config) domainrepo.Metrics {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return metrics.New()
}

// ProvideJobStore selects the result store backend.
func ProvideJobStore(cfg *config.Config) (domainrepo.JobStore, error) {
	if cfg.Store.Backend == "redis" {
		return internalrepo.NewRedisJobStore(internalrepo.RedisConfig{
			Addr:      cfg.Store.Redis.Addr,
			Password:  cfg.Store.Redis.Password,
			DB:        cfg.Store.Redis.DB,
			KeyPrefix: cfg.Store.KeyPrefix,
			Retention: cfg.Jobs.Retention,
			MaxStored: cfg.Jobs.MaxStored,
		})
	}
	return internalrepo.NewMemoryJobStore(cfg.Jobs.Retention, cfg.Jobs.MaxStored), nil
}

// ProvideKafkaProducer creates the shared Kafka producer, or nil when the
// broker integration is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	return pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.ReadTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Async),
		pkgkafka.WithHashByKey(true),
	)
}

// ProvideEventPublisher wraps the producer as a job lifecycle publisher, and
// attaches the error-log collector so repeated errors are shipped to the
// broker in aggregate.
func ProvideEventPublisher(cfg *config.Config, producer *pkgkafka.Producer, l *applogger.Logger) domainrepo.EventPublisher {
	if producer == nil {
		return nil
	}
	pub := internalrepo.NewKafkaJobPublisher(producer, cfg.Kafka.Topic)
	l.AddCollector(&applogger.CollectorConfig{
		FlushInterval:  30 * time.Second,
		CountThreshold: 100,
		Topic:          cfg.Kafka.Topic + ".errors",
		Publisher:      pub,
	})
	return pub
}

// ProvideClickHouseClient creates the ClickHouse client, or nil when the
// archive is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	return pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
}

// ProvideArchive creates the completed-analysis archive on top of ClickHouse.
func ProvideArchive(client *pkgch.Client, l *applogger.Logger) (domainrepo.Archive, error) {
	if client == nil {
		return nil, nil
	}
	return internalrepo.NewCHAnalysisArchive(client, l)
}

// ProvideSources assembles the market data sources queried on every analysis.
// The network-backed sources get a fetch memoization layer; the economic
// source is synthesized locally and needs none. A negative cache_ttl
// disables caching.
func ProvideSources(cfg *config.Config, l *applogger.Logger) []domainrepo.MarketSource {
	var alphaVantage domainrepo.MarketSource = source.NewAlphaVantageSource(source.AlphaVantageConfig{
		APIKey:  cfg.Sources.AlphaVantageKey,
		BaseURL: cfg.Sources.AlphaVantageURL,
		Timeout: cfg.Sources.Timeout,
	}, l)
	var news domainrepo.MarketSource = source.NewNewsSource(source.NewsConfig{
		APIKey:  cfg.Sources.NewsAPIKey,
		BaseURL: cfg.Sources.NewsAPIURL,
		Timeout: cfg.Sources.Timeout,
	}, l)

	if ttl := cfg.Sources.CacheTTL; ttl > 0 {
		alphaVantage = source.WithCache(alphaVantage, ttl)
		news = source.WithCache(news, ttl)
	}

	return []domainrepo.MarketSource{
		alphaVantage,
		news,
		source.NewEconomicSource(l),
	}
}

// ProvideCompleter creates the OpenAI client. Always non-nil; Ready reports
// whether an API key is configured.
func ProvideCompleter(cfg *config.Config, l *applogger.Logger) domainsvc.TextCompleter {
	return openai.New(openai.Config{
		APIKey:    cfg.OpenAI.APIKey,
		BaseURL:   cfg.OpenAI.BaseURL,
		Model:     cfg.OpenAI.Model,
		MaxTokens: cfg.OpenAI.MaxTokens,
		Timeout:   cfg.OpenAI.Timeout,
	}, l)
}

// ProvideCollector creates the concurrent source fan-out.
func ProvideCollector(cfg *config.Config, sources []domainrepo.MarketSource, m domainrepo.Metrics, l *applogger.Logger) *usecase.DataCollector {
	return usecase.NewDataCollector(sources, cfg.Sources.Timeout, m, l)
}

// ProvideAnalyzer creates the fixed-threshold trend analyzer.
func ProvideAnalyzer() domainsvc.TrendAnalyzer {
	return analytics.NewThresholdAnalyzer()
}

// ProvideSummarizer creates the summarizer with its template fallback.
func ProvideSummarizer(cfg *config.Config, completer domainsvc.TextCompleter, l *applogger.Logger) domainsvc.Summarizer {
	return analytics.NewMarketSummarizer(completer, cfg.OpenAI.MaxTokens, l)
}

// ProvideWorkerPool creates the analysis worker pool.
func ProvideWorkerPool(cfg *config.Config, l *applogger.Logger) *queue.WorkerPool {
	return queue.NewWorkerPool(l, &queue.PoolConfig{
		Workers:   cfg.Jobs.Workers,
		QueueSize: cfg.Jobs.QueueSize,
	})
}

// ProvideOrchestrator wires the job lifecycle.
func ProvideOrchestrator(
	store domainrepo.JobStore,
	collector *usecase.DataCollector,
	analyzer domainsvc.TrendAnalyzer,
	summarizer domainsvc.Summarizer,
	pool *queue.WorkerPool,
	publisher domainrepo.EventPublisher,
	archive domainrepo.Archive,
	m domainrepo.Metrics,
	l *applogger.Logger,
) *usecase.AnalysisOrchestrator {
	return usecase.NewAnalysisOrchestrator(store, collector, analyzer, summarizer, pool, publisher, archive, m, l)
}

// ProvideHTTPHandler creates the HTTP handler.
func ProvideHTTPHandler(cfg *config.Config, orch *usecase.AnalysisOrchestrator, completer domainsvc.TextCompleter, l *applogger.Logger) xhttp.Handler {
	return api.NewAnalysisEchoHandler(l, orch, completer, api.AuthConfig{
		APIKey:       cfg.Auth.APIKey,
		SubmitBurst:  cfg.Auth.SubmitBurst,
		SubmitPerSec: cfg.Auth.SubmitPerSec,
	})
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	pool *queue.WorkerPool,
	store domainrepo.JobStore,
	publisher domainrepo.EventPublisher,
	archive domainrepo.Archive,
	m domainrepo.Metrics,
	handler xhttp.Handler,
) *server.App {
	app := server.New(cfg, l, pool, store, publisher, archive, m)
	app.SetHTTPHandler(handler)
	return app
}
