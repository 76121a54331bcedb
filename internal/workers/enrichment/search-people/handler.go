// internal/workers/enrichment/search-people/handler.go
package searchpeople

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

const TaskType = "search-people"

type Searcher interface {
	SearchPeople(ctx context.Context, clientID string, params models.PeopleSearchParams) (*orchestrator.SearchResult[models.UnifiedContact], error)
}

type Handler struct {
	config   *Config
	searcher Searcher
	obs      *observability.Observability
	logger   logger.Logger
	errors   *errors.ErrorHandler
}

type HandlerOptions struct {
	Config        *Config
	Searcher      Searcher
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
	if opts.Searcher == nil {
		return nil, fmt.Errorf("%s: searcher is required", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	return &Handler{
		config:   cfg,
		searcher: opts.Searcher,
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
	log.Info("Processing people search", nil)

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

	log.Info("People search completed", map[string]interface{}{
		"results":  len(output.Contacts),
		"provider": output.Provider,
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
	res, err := h.searcher.SearchPeople(ctx, input.ClientID, input.PeopleSearchParams)
	if err != nil {
		return nil, err
	}
	return &Output{
		Contacts:     res.Results,
		Provider:     res.Provider,
		TotalResults: res.TotalResults,
		HasMore:      res.HasMore,
		NextCursor:   res.NextCursor,
		TotalCost:    res.TotalCost,
	}, nil
}
