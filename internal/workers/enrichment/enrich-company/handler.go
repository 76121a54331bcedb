// internal/workers/enrichment/enrich-company/handler.go
package enrichcompany

import (
	"context"
	"fmt"

	"enrichment-workers/internal/common/camunda"
	"enrichment-workers/internal/common/errors"
	"enrichment-workers/internal/common/logger"
	"enrichment-workers/internal/common/observability"
	"enrichment-workers/internal/common/validation"
	"enrichment-workers/internal/models"
	"enrichment-workers/internal/orchestrator"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "enrich-company"

// Enricher runs the company waterfall. *orchestrator.Orchestrator
// implements it.
type Enricher interface {
	EnrichCompany(ctx context.Context, clientID string, query models.CompanyQuery, cfg *orchestrator.WaterfallConfig) (*orchestrator.EnrichResult[models.UnifiedCompany], error)
}

type Handler struct {
	config   *Config
	enricher Enricher
	obs      *observability.Observability
	logger   logger.Logger
	errors   *errors.ErrorHandler
}

type HandlerOptions struct {
	Config        *Config
	Enricher      Enricher
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
	if opts.Enricher == nil {
		return nil, fmt.Errorf("%s: enricher is required", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	return &Handler{
		config:   cfg,
		enricher: opts.Enricher,
		obs:      opts.Observability,
		logger:   log,
		errors:   errors.NewErrorHandler(log),
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
	log.Info("Processing company enrichment", nil)

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

	log.Info("Company enrichment completed", map[string]interface{}{
		"found":         output.CompanyFound,
		"providersUsed": output.ProvidersUsed,
		"totalCost":     output.TotalCost,
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

// Execute enriches the company named by input.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	query := models.CompanyQuery{Domain: input.Domain, Name: input.Name}
	res, err := h.enricher.EnrichCompany(ctx, input.ClientID, query, input.Waterfall)
	if err != nil {
		return nil, err
	}

	out := &Output{
		Company:       res.Result,
		CompanyFound:  res.Result != nil,
		ProvidersUsed: res.ProvidersUsed,
		TotalCost:     res.TotalCost,
	}
	if out.ProvidersUsed == nil {
		out.ProvidersUsed = []string{}
	}
	if res.Result != nil {
		out.Completeness = models.Completeness(res.Result)
	}
	return out, nil
}
