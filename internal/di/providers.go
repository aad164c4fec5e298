package di

import (
	"context"
	"fmt"
	"time"

	"PricePulse/internal/domain/repository"
	"PricePulse/internal/handler/api"
	"PricePulse/internal/pricing"
	internalrepo "PricePulse/internal/repository"
	"PricePulse/internal/service/marketplace"
	"PricePulse/internal/service/scorer"
	"PricePulse/internal/signals"
	"PricePulse/internal/usecase"
	"PricePulse/pkg/cache"
	pkgch "PricePulse/pkg/clickhouse"
	"PricePulse/pkg/config"
	xhttp "PricePulse/pkg/http"
	pkgkafka "PricePulse/pkg/kafka"
	applogger "PricePulse/pkg/logger"
	"PricePulse/pkg/metrics"
	"PricePulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache selects the cache backend: Redis when enabled, in-memory
// otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if cfg.Redis.Enabled {
		c, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Redis.Host),
			cache.WithRedisPort(cfg.Redis.Port),
			cache.WithRedisPassword(cfg.Redis.Password),
			cache.WithRedisDB(cfg.Redis.DB),
			cache.WithRedisPrefix(cfg.Redis.Prefix),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	}
	return cache.NewMemoryCache(), nil
}

// ProvideSnapshotSink builds the durable export selected by backend.type.
func ProvideSnapshotSink(cfg *config.Config) (repository.SnapshotSink, error) {
	switch cfg.Backend.Type {
	case "kafka":
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.Kafka.Brokers),
			pkgkafka.WithCompression(cfg.Kafka.Compression),
			pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
			pkgkafka.WithBatching(cfg.Kafka.BatchSize, cfg.Kafka.Linger),
			pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
			pkgkafka.WithAsync(cfg.Kafka.Async),
			pkgkafka.WithHashByKey(true),
		)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		return internalrepo.NewKafkaSnapshotSink(producer, cfg.Kafka.Topic), nil

	case "clickhouse":
		client, err := pkgch.NewClient(
			pkgch.WithHost(cfg.ClickHouse.Host),
			pkgch.WithPort(cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithMaxConnections(10, 5),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("clickhouse client: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.InitSchema(ctx, internalrepo.SchemaStatements()); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("clickhouse schema: %w", err)
		}
		return internalrepo.NewClickHouseSnapshotSink(client.DB()), nil

	default:
		return repository.NoopSink{}, nil
	}
}

// ProvideScorer creates the remote scorer, or nil when unconfigured.
func ProvideScorer(cfg *config.Config) repository.Scorer {
	if c := scorer.NewClient(cfg.Scorer); c != nil {
		return c
	}
	return nil
}

// ProvideStateStore creates the per-entity walk state table.
func ProvideStateStore(c cache.Service, cfg *config.Config) repository.EntityStateStore {
	return internalrepo.NewCacheStateStore(c, cfg.Pricing.StateTTL)
}

// ProvideSignalCache creates the query memoization cache.
func ProvideSignalCache(c cache.Service, cfg *config.Config) repository.SignalCache {
	return internalrepo.NewCacheSignalCache(c, cfg.Signals.CacheTTL)
}

// ProvideSearchClients creates one marketplace client per platform.
func ProvideSearchClients(cfg *config.Config) []repository.SearchClient {
	return marketplace.NewClients(cfg.Signals.Platforms)
}

// ProvideCatalog creates the product source the simulator walks over.
func ProvideCatalog(cfg *config.Config) repository.ProductSource {
	return internalrepo.NewMockCatalog(cfg.Signals.Platforms, cfg.Catalog.ProductsPerPlatform)
}

// ProvideAggregator creates the market signal aggregator.
func ProvideAggregator(
	cfg *config.Config,
	clients []repository.SearchClient,
	signalCache repository.SignalCache,
	sink repository.SnapshotSink,
	m repository.Metrics,
	logger *applogger.Logger,
) *signals.Aggregator {
	return signals.NewAggregator(cfg.Signals, clients, signalCache,
		signals.WithSink(sink),
		signals.WithMetrics(m),
		signals.WithLogger(logger),
	)
}

// ProvideClock creates the tick clock.
func ProvideClock(cfg *config.Config) *pricing.Clock {
	return pricing.NewClock(cfg.Pricing.TickQuantum)
}

// ProvideEngine creates the recommendation engine.
func ProvideEngine(cfg *config.Config, sc repository.Scorer, m repository.Metrics, logger *applogger.Logger) *pricing.Engine {
	opts := []pricing.EngineOption{
		pricing.WithEngineMetrics(m),
		pricing.WithEngineLogger(logger),
	}
	if sc != nil {
		opts = append(opts, pricing.WithScorer(sc))
	}
	return pricing.NewEngine(cfg.Pricing, opts...)
}

// ProvideSimulator creates the tick simulator.
func ProvideSimulator(
	cfg *config.Config,
	clock *pricing.Clock,
	store repository.EntityStateStore,
	engine *pricing.Engine,
	m repository.Metrics,
	logger *applogger.Logger,
) *pricing.Simulator {
	return pricing.NewSimulator(cfg.Pricing, clock, store, engine,
		pricing.WithSimMetrics(m),
		pricing.WithSimLogger(logger),
	)
}

// ProvideLivePricing wires the pricing use case.
func ProvideLivePricing(
	cfg *config.Config,
	sim *pricing.Simulator,
	engine *pricing.Engine,
	catalog repository.ProductSource,
	store repository.EntityStateStore,
	agg *signals.Aggregator,
	sink repository.SnapshotSink,
	sc repository.Scorer,
	m repository.Metrics,
	logger *applogger.Logger,
) *usecase.LivePricing {
	opts := []usecase.LivePricingOption{
		usecase.WithSink(sink),
		usecase.WithMetrics(m),
		usecase.WithLogger(logger),
	}
	if sc != nil {
		opts = append(opts, usecase.WithScorer(sc))
	}
	return usecase.NewLivePricing(cfg, sim, engine, catalog, store, agg, opts...)
}

// ProvideHandler creates the HTTP handler surface.
func ProvideHandler(logger *applogger.Logger, uc *usecase.LivePricing, cfg *config.Config, m repository.Metrics) xhttp.Handler {
	return api.NewLivePricingHandler(logger, uc, cfg, m)
}

// ProvideWarmer creates the signal cache warmer.
func ProvideWarmer(agg *signals.Aggregator, cfg *config.Config, logger *applogger.Logger) *signals.Warmer {
	return signals.NewWarmer(agg, cfg.Signals.WarmQueries, cfg.Signals.WarmSchedule, logger)
}

// ProvideApp assembles the application lifecycle.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	handler xhttp.Handler,
	warmer *signals.Warmer,
	sink repository.SnapshotSink,
	c cache.Service,
) *server.App {
	app := server.New(cfg, logger, handler)
	app.AddRunner(warmer)
	app.AddCloser(sink)
	app.AddCloser(c)
	return app
}
