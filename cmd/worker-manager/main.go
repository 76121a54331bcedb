// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"enrichment-workers/internal/common/aws"
	"enrichment-workers/internal/common/camunda"
	"enrichment-workers/internal/common/config"
	"enrichment-workers/internal/common/database"
	"enrichment-workers/internal/common/logger"
	"enrichment-workers/internal/common/observability"
	"enrichment-workers/internal/knowledge"
	"enrichment-workers/internal/orchestrator"
	"enrichment-workers/internal/scoring"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// needsElasticsearch reports whether an enabled provider reads the index.
func needsElasticsearch(cfg *config.Config) bool {
	for _, name := range cfg.EnabledProviders() {
		if cfg.Providers[name].Kind == config.ProviderKindSearchIndex {
			return true
		}
	}
	return false
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.NewService(cfg.Logging.Level, cfg.Logging.Format, cfg.App.Name)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name, nil, log)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var checks []dependencyCheck

	// --- Init Zeebe Client with retry ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: cfg.Camunda.Plaintext,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	checks = append(checks, dependencyCheck{name: "zeebe", check: zeebe.HealthCheck})
	zapLog.Info("Zeebe client connected successfully")

	backends := ledgerBackends{}

	// --- Init PostgreSQL with retry ---
	if cfg.Ledger.Backend == config.LedgerPostgres {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		backends.DB = pg.DB
		checks = append(checks, dependencyCheck{name: "postgres", check: pg.Ping})
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Init Redis with retry ---
	if cfg.Ledger.Backend == config.LedgerRedis {
		var rdb *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		backends.Redis = rdb.Client
		checks = append(checks, dependencyCheck{name: "redis", check: rdb.Ping})
		zapLog.Info("Redis connected successfully")
	}

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	if needsElasticsearch(cfg) {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		checks = append(checks, dependencyCheck{name: "elasticsearch", check: esClient.Ping})
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Low balance alerts ---
	if cfg.Ledger.AlertTopicARN != "" {
		snsClient, err := aws.NewSNSClient(ctx, cfg.AWS.Region, cfg.AWS.Endpoint)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		backends.Publisher = snsClient
	}

	credits, balances, err := buildLedger(ctx, cfg.Ledger, backends, log)
	if err != nil {
		zapLog.Fatal("ledger setup failed", zap.Error(err))
	}
	zapLog.Info("Credit ledger ready", zap.String("backend", cfg.Ledger.Backend))

	// --- Providers, orchestrator and scoring ---
	var registry *orchestrator.Registry
	if esClient != nil {
		registry, err = buildRegistry(cfg, esClient.Client, log)
	} else {
		registry, err = buildRegistry(cfg, nil, log)
	}
	if err != nil {
		zapLog.Fatal("provider setup failed", zap.Error(err))
	}
	defer registry.Close()

	orch := orchestrator.New(registry, credits, log,
		orchestrator.WithTracer(obs.Tracer()),
		orchestrator.WithDefaults(orchestrator.WaterfallSettings{
			QualityThreshold: *cfg.Waterfall.QualityThreshold,
			MaxProviders:     cfg.Waterfall.MaxProviders,
			RequiredFields:   cfg.Waterfall.RequiredFields,
		}),
	)

	kb, err := knowledge.Default()
	if err != nil {
		zapLog.Fatal("knowledge base failed validation", zap.Error(err))
	}
	scorer := scoring.NewScorer(scoring.RulesMatcher{}, kb, log)

	// --- Workers ---
	handlers, err := buildHandlers(cfg, workerDeps{
		Orchestrator: orch,
		Scorer:       scorer,
		Knowledge:    kb,
		Obs:          obs,
		Logger:       log,
	})
	if err != nil {
		zapLog.Fatal("worker setup failed", zap.Error(err))
	}
	workers := startWorkers(zeebe.GetClient(), cfg, handlers, log)
	zapLog.Info("Workers registered", zap.Int("count", len(workers)), zap.Int("providers", registry.Len()))

	// --- Health & Metrics Server ---
	srv := &server{
		registry: registry,
		balances: balances,
		checks:   checks,
		version:  cfg.App.Version,
		logger:   log,
	}
	httpServer := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           srv.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	closeWorkers(shutdownCtx, workers)
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	zapLog.Info("Worker manager stopped")
}

// closeWorkers stops polling and waits for in-flight jobs until ctx ends.
func closeWorkers(ctx context.Context, workers []worker.JobWorker) {
	done := make(chan struct{})
	go func() {
		for _, w := range workers {
			w.Close()
		}
		for _, w := range workers {
			w.AwaitClose()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
