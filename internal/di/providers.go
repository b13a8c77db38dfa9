package di

import (
	"context"
	"fmt"

	"EconDash/internal/domain/models"
	"EconDash/internal/domain/repository"
	internalrepo "EconDash/internal/repository"
	"EconDash/internal/service/csvsource"
	"EconDash/internal/service/fred"
	"EconDash/internal/service/tiingo"
	"EconDash/internal/service/yahoo"
	"EconDash/internal/usecase"
	pkgch "EconDash/pkg/clickhouse"
	"EconDash/pkg/config"
	xhttp "EconDash/pkg/http"
	pkgkafka "EconDash/pkg/kafka"
	applogger "EconDash/pkg/logger"
	"EconDash/pkg/metrics"
	"EconDash/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("profile", cfg.Profile), applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New(nil)
}

// ProvideHTTPClient creates the client shared by remote fetchers.
func ProvideHTTPClient(cfg *config.Config) (*xhttp.Client, error) {
	return xhttp.NewClient(
		xhttp.WithTimeout(cfg.HTTPClient.Timeout),
		xhttp.WithUserAgent(cfg.HTTPClient.UserAgent),
		xhttp.WithProxy(cfg.HTTPClient.Proxy),
	)
}

// ProvideClickHouseClient connects to ClickHouse when a host is configured;
// otherwise it returns nil and sql sources must use sqlite.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if cfg.ClickHouse.Host == "" {
		return nil, func() {}, nil
	}
	client, err := pkgch.NewClient(context.Background(),
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideSQLSeriesStore creates the store behind the sql source kind.
func ProvideSQLSeriesStore(ch *pkgch.Client, l *applogger.Logger) (*internalrepo.SQLSeriesStore, func()) {
	store := internalrepo.NewSQLSeriesStore(ch, l)
	return store, func() { _ = store.Close() }
}

// ProvideSnapshotPublisher publishes to Kafka when enabled, otherwise
// discards snapshots.
func ProvideSnapshotPublisher(cfg *config.Config, l *applogger.Logger) (repository.SnapshotPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopSnapshotPublisher{}, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithTopic(cfg.Kafka.Topic),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	pub := internalrepo.NewKafkaSnapshotPublisher(producer, l)
	return pub, func() {
		if err := pub.Close(); err != nil {
			l.Warn("kafka producer close error", applogger.Error(err))
		}
	}, nil
}

// ProvideFetchers registers one fetcher per source kind.
func ProvideFetchers(cfg *config.Config, client *xhttp.Client, store *internalrepo.SQLSeriesStore) []repository.SourceFetcher {
	return []repository.SourceFetcher{
		fred.New(client, fred.Config{
			APIKey:   cfg.FRED.APIKey,
			BaseURL:  cfg.FRED.BaseURL,
			GraphURL: cfg.FRED.GraphURL,
		}),
		yahoo.New(client, cfg.Yahoo.BaseURL),
		tiingo.New(cfg.Tiingo.Token),
		csvsource.NewURLFetcher(client),
		csvsource.NewFileFetcher(),
		store,
	}
}

// ProvideSourceLoader creates the source loader use case.
func ProvideSourceLoader(fetchers []repository.SourceFetcher, m repository.Metrics, l *applogger.Logger) *usecase.SourceLoader {
	return usecase.NewSourceLoader(fetchers, m, l)
}

// ProvidePipeline creates the pipeline use case from config.
func ProvidePipeline(
	cfg *config.Config,
	loader *usecase.SourceLoader,
	m repository.Metrics,
	pub repository.SnapshotPublisher,
	l *applogger.Logger,
) *usecase.Pipeline {
	return usecase.NewPipeline(usecase.PipelineConfig{
		Profile: cfg.Profile,
		Sources: cfg.SourceSpecs(),
		Window:  cfg.Window(),
		Plan:    cfg.JoinPlan(),
		Columns: cfg.Projection(),
		Missing: models.MissingPolicy(cfg.Pipeline.Missing),
		Table:   cfg.Dashboard.Table,
	}, loader, m, pub, l)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, pipeline *usecase.Pipeline, ch *pkgch.Client, l *applogger.Logger) *server.App {
	return server.New(cfg, pipeline, ch, l)
}
