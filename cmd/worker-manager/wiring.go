// cmd/worker-manager/wiring.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"enrichment-workers/internal/common/camunda"
	"enrichment-workers/internal/common/config"
	commonhttp "enrichment-workers/internal/common/http"
	"enrichment-workers/internal/common/logger"
	"enrichment-workers/internal/common/observability"
	"enrichment-workers/internal/knowledge"
	"enrichment-workers/internal/ledger"
	"enrichment-workers/internal/orchestrator"
	"enrichment-workers/internal/providers"
	"enrichment-workers/internal/providers/restapi"
	"enrichment-workers/internal/providers/searchindex"
	"enrichment-workers/internal/ratelimit"
	"enrichment-workers/internal/scoring"

	ec "enrichment-workers/internal/workers/enrichment/enrich-company"
	ep "enrichment-workers/internal/workers/enrichment/enrich-person"
	fe "enrichment-workers/internal/workers/enrichment/find-email"
	sc "enrichment-workers/internal/workers/enrichment/search-companies"
	sp "enrichment-workers/internal/workers/enrichment/search-people"
	ve "enrichment-workers/internal/workers/enrichment/verify-email"
	rp "enrichment-workers/internal/workers/intelligence/rank-providers"
	scc "enrichment-workers/internal/workers/intelligence/score-company"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"
)

// --- Providers ---

// buildRegistry creates an adapter with its own rate limiter for every
// enabled provider.
func buildRegistry(cfg *config.Config, es esapi.Transport, log logger.Logger) (*orchestrator.Registry, error) {
	reg := orchestrator.NewRegistry()
	for _, name := range cfg.EnabledProviders() {
		pc := cfg.Providers[name]
		p, err := buildProvider(name, pc, es)
		if err != nil {
			reg.Close()
			return nil, err
		}
		if err := reg.Register(p, pc.Priority); err != nil {
			reg.Close()
			return nil, err
		}
		log.Info("Provider registered", map[string]interface{}{
			"provider":     name,
			"kind":         pc.Kind,
			"priority":     pc.Priority,
			"capabilities": p.Capabilities(),
			"perSecond":    pc.PerSecond,
			"perMinute":    pc.PerMinute,
		})
	}
	return reg, nil
}

func buildProvider(name string, pc config.ProviderConfig, es esapi.Transport) (providers.Provider, error) {
	caps := make([]providers.Capability, 0, len(pc.Capabilities))
	for _, raw := range pc.Capabilities {
		c, ok := providers.ParseCapability(raw)
		if !ok {
			return nil, fmt.Errorf("provider %s: unknown capability %q", name, raw)
		}
		caps = append(caps, c)
	}

	switch pc.Kind {
	case config.ProviderKindSearchIndex:
		if es == nil {
			return nil, fmt.Errorf("provider %s: elasticsearch is not configured", name)
		}
		limiter := ratelimit.New(name, ratelimit.Config{PerSecond: pc.PerSecond, PerMinute: pc.PerMinute})
		return searchindex.New(searchindex.Config{Name: name, Index: pc.Index}, es, limiter), nil

	case config.ProviderKindREST, "":
		endpoints := make(map[providers.Capability]string, len(pc.Endpoints))
		for raw, path := range pc.Endpoints {
			c, ok := providers.ParseCapability(raw)
			if !ok {
				return nil, fmt.Errorf("provider %s: endpoint for unknown capability %q", name, raw)
			}
			endpoints[c] = path
		}
		timeout := config.GetDuration(pc.Timeout)
		limiter := ratelimit.New(name, ratelimit.Config{PerSecond: pc.PerSecond, PerMinute: pc.PerMinute})
		return restapi.New(restapi.Config{
			Name:         name,
			BaseURL:      pc.BaseURL,
			APIKey:       pc.APIKey,
			APIKeyHeader: pc.APIKeyHeader,
			Capabilities: caps,
			CreditCost:   pc.CreditCost,
			MissCost:     pc.MissCost,
			Timeout:      timeout,
			Endpoints:    endpoints,
		}, commonhttp.NewClient(timeout), limiter), nil

	default:
		return nil, fmt.Errorf("provider %s: unsupported kind %q", name, pc.Kind)
	}
}

// --- Ledger ---

// ledgerBackends carries the connections a ledger backend may need. Only
// the one selected by the config has to be set.
type ledgerBackends struct {
	Redis     redis.Cmdable
	DB        *sql.DB
	Publisher ledger.Publisher
}

// buildLedger returns the charging ledger and the balance view of the same
// backend. A low balance alert wrapper is added when a topic is configured.
func buildLedger(ctx context.Context, cfg config.LedgerConfig, b ledgerBackends, log logger.Logger) (ledger.Ledger, ledger.BalanceReader, error) {
	var (
		base     ledger.Ledger
		balances ledger.BalanceReader
	)
	switch cfg.Backend {
	case config.LedgerRedis:
		if b.Redis == nil {
			return nil, nil, fmt.Errorf("redis ledger requires a redis connection")
		}
		l := ledger.NewRedisLedger(b.Redis, cfg.ChargeLogLength)
		base, balances = l, l

	case config.LedgerPostgres:
		if b.DB == nil {
			return nil, nil, fmt.Errorf("postgres ledger requires a database connection")
		}
		l := ledger.NewPostgresLedger(b.DB)
		if err := l.EnsureSchema(ctx); err != nil {
			return nil, nil, fmt.Errorf("prepare ledger schema: %w", err)
		}
		base, balances = l, l

	default:
		l := ledger.NewMemoryLedger(cfg.InitialBalances)
		base, balances = l, l
	}

	if cfg.AlertTopicARN != "" && b.Publisher != nil {
		base = ledger.NewAlertingLedger(base, cfg.LowBalanceThreshold, ledger.NewSNSAlerter(b.Publisher, cfg.AlertTopicARN), log)
		log.Info("Low balance alerts enabled", map[string]interface{}{
			"threshold": cfg.LowBalanceThreshold,
			"topic":     cfg.AlertTopicARN,
		})
	}
	return base, balances, nil
}

// --- Workers ---

type workerDeps struct {
	Orchestrator *orchestrator.Orchestrator
	Scorer       *scoring.Scorer
	Knowledge    *knowledge.Base
	Obs          *observability.Observability
	Logger       logger.Logger
}

// buildHandlers creates the handler of every enabled worker, keyed by task
// type.
func buildHandlers(cfg *config.Config, d workerDeps) (map[string]camunda.JobHandler, error) {
	handlers := make(map[string]camunda.JobHandler)
	add := func(taskType string, build func(w config.WorkerConfig) (camunda.JobHandler, error)) error {
		if !config.IsWorkerEnabled(cfg, taskType) {
			return nil
		}
		h, err := build(config.GetWorkerConfig(cfg, taskType))
		if err != nil {
			return err
		}
		handlers[taskType] = h
		return nil
	}
	log := func(taskType string) logger.Logger {
		return d.Logger.WithFields(map[string]interface{}{"worker": taskType})
	}

	builders := []struct {
		taskType string
		build    func(w config.WorkerConfig) (camunda.JobHandler, error)
	}{
		{ec.TaskType, func(w config.WorkerConfig) (camunda.JobHandler, error) {
			return ec.NewHandler(ec.HandlerOptions{Config: ec.NewConfig(w), Enricher: d.Orchestrator, Observability: d.Obs, Logger: log(ec.TaskType)})
		}},
		{ep.TaskType, func(w config.WorkerConfig) (camunda.JobHandler, error) {
			return ep.NewHandler(ep.HandlerOptions{Config: ep.NewConfig(w), Enricher: d.Orchestrator, Observability: d.Obs, Logger: log(ep.TaskType)})
		}},
		{sc.TaskType, func(w config.WorkerConfig) (camunda.JobHandler, error) {
			return sc.NewHandler(sc.HandlerOptions{Config: sc.NewConfig(w), Searcher: d.Orchestrator, Observability: d.Obs, Logger: log(sc.TaskType)})
		}},
		{sp.TaskType, func(w config.WorkerConfig) (camunda.JobHandler, error) {
			return sp.NewHandler(sp.HandlerOptions{Config: sp.NewConfig(w), Searcher: d.Orchestrator, Observability: d.Obs, Logger: log(sp.TaskType)})
		}},
		{fe.TaskType, func(w config.WorkerConfig) (camunda.JobHandler, error) {
			return fe.NewHandler(fe.HandlerOptions{Config: fe.NewConfig(w), Finder: d.Orchestrator, Observability: d.Obs, Logger: log(fe.TaskType)})
		}},
		{ve.TaskType, func(w config.WorkerConfig) (camunda.JobHandler, error) {
			return ve.NewHandler(ve.HandlerOptions{Config: ve.NewConfig(w), Verifier: d.Orchestrator, Observability: d.Obs, Logger: log(ve.TaskType)})
		}},
		{scc.TaskType, func(w config.WorkerConfig) (camunda.JobHandler, error) {
			return scc.NewHandler(scc.HandlerOptions{Config: scc.NewConfig(w, cfg.Scoring), Scorer: d.Scorer, Observability: d.Obs, Logger: log(scc.TaskType)})
		}},
		{rp.TaskType, func(w config.WorkerConfig) (camunda.JobHandler, error) {
			return rp.NewHandler(rp.HandlerOptions{Config: rp.NewConfig(w), Ranker: d.Knowledge, Directory: d.Orchestrator.Registry(), Observability: d.Obs, Logger: log(rp.TaskType)})
		}},
	}
	for _, b := range builders {
		if err := add(b.taskType, b.build); err != nil {
			return nil, fmt.Errorf("create %s handler: %w", b.taskType, err)
		}
	}
	return handlers, nil
}

// startWorkers opens a job worker per handler in task type order.
func startWorkers(client zbc.Client, cfg *config.Config, handlers map[string]camunda.JobHandler, log logger.Logger) []worker.JobWorker {
	taskTypes := make([]string, 0, len(handlers))
	for t := range handlers {
		taskTypes = append(taskTypes, t)
	}
	sort.Strings(taskTypes)

	workers := make([]worker.JobWorker, 0, len(taskTypes))
	for _, t := range taskTypes {
		if jw := camunda.StartWorker(client, t, config.GetWorkerConfig(cfg, t), handlers[t], log); jw != nil {
			workers = append(workers, jw)
		}
	}
	return workers
}
