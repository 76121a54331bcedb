// internal/workers/intelligence/rank-providers/handler.go
package rankproviders

import (
	"context"
	"fmt"

	"enrichment-workers/internal/common/camunda"
	"enrichment-workers/internal/common/errors"
	"enrichment-workers/internal/common/logger"
	"enrichment-workers/internal/common/observability"
	"enrichment-workers/internal/common/validation"
	"enrichment-workers/internal/knowledge"
	"enrichment-workers/internal/providers"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "rank-providers"

// Ranker is implemented by *knowledge.Base.
type Ranker interface {
	RankProvidersForContext(industry, operation string, available []string) []knowledge.RankedProvider
}

// Directory lists the registered providers. *orchestrator.Registry
// implements it.
type Directory interface {
	Get(name string) (providers.Provider, bool)
	ProvidersWithCapability(c providers.Capability) []providers.Provider
}

type Handler struct {
	config    *Config
	ranker    Ranker
	directory Directory
	obs       *observability.Observability
	logger    logger.Logger
	errors    *errors.ErrorHandler
}

type HandlerOptions struct {
	Config        *Config
	Ranker        Ranker
	Directory     Directory
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Ranker == nil {
		return nil, fmt.Errorf("%s: ranker is required", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	return &Handler{
		config:    cfg,
		ranker:    opts.Ranker,
		directory: opts.Directory,
		obs:       opts.Observability,
		logger:    log,
		errors:    errors.NewErrorHandler(log),
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	log := h.logger.WithFields(map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
		"worker":             TaskType,
	})
	log.Info("Processing provider ranking", nil)

	tracker := camunda.TrackJob(TaskType, h.obs)
	output, err := h.process(ctx, job)
	tracker.Done(ctx, err)

	replyCtx, cancelReply := camunda.ReplyContext()
	defer cancelReply()

	if err != nil {
		h.errors.HandleJobError(replyCtx, client, job, err)
		return
	}
	if err := camunda.CompleteJob(replyCtx, client, job, output); err != nil {
		log.Error("Failed to complete job", map[string]interface{}{"error": err.Error()})
		return
	}

	log.Info("Provider ranking completed", map[string]interface{}{
		"providers":   len(output.Ranked),
		"recommended": output.Recommended,
	})
}

func (h *Handler) process(ctx context.Context, job entities.Job) (*Output, error) {
	input, err := parseInput(job.GetVariables())
	if err != nil {
		return nil, err
	}
	return h.Execute(ctx, input)
}

func parseInput(variables string) (*Input, error) {
	return validation.DecodeJobVariables[Input](inputSchema, variables)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if input.RegisteredOnly {
		for _, name := range input.AvailableProviders {
			if !h.registered(name) {
				return nil, errors.NewProviderNotFoundError(name)
			}
		}
	}

	available := input.AvailableProviders
	if len(available) == 0 && h.directory != nil {
		for _, p := range h.directory.ProvidersWithCapability(providers.Capability(input.Operation)) {
			available = append(available, p.Name())
		}
	}

	ranked := h.ranker.RankProvidersForContext(input.Industry, input.Operation, available)
	out := &Output{Ranked: ranked, Order: make([]string, 0, len(ranked))}
	for _, r := range ranked {
		out.Order = append(out.Order, r.Name)
	}
	if len(ranked) > 0 {
		out.Recommended = ranked[0].Name
	}
	return out, nil
}

func (h *Handler) registered(name string) bool {
	if h.directory == nil {
		return false
	}
	_, ok := h.directory.Get(name)
	return ok
}
