// internal/workers/intelligence/score-company/handler.go
package scorecompany

import (
	"context"
	"fmt"

	"enrichment-workers/internal/common/camunda"
	"enrichment-workers/internal/common/errors"
	"enrichment-workers/internal/common/logger"
	"enrichment-workers/internal/common/observability"
	"enrichment-workers/internal/common/validation"
	"enrichment-workers/internal/models"
	"enrichment-workers/internal/scoring"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "score-company"

// Scorer is implemented by *scoring.Scorer.
type Scorer interface {
	ScoreCompany(company *models.UnifiedCompany, filters scoring.ICPFilters, signals []scoring.Signal, sources []string, totalCost float64, opts ...scoring.Option) (*scoring.Result, error)
}

type Handler struct {
	config *Config
	scorer Scorer
	obs    *observability.Observability
	logger logger.Logger
	errors *errors.ErrorHandler
}

type HandlerOptions struct {
	Config        *Config
	Scorer        Scorer
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
	if opts.Scorer == nil {
		return nil, fmt.Errorf("%s: scorer is required", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	return &Handler{
		config: cfg,
		scorer: opts.Scorer,
		obs:    opts.Observability,
		logger: log,
		errors: errors.NewErrorHandler(log),
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
	log.Info("Processing company scoring", nil)

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

	log.Info("Company scoring completed", map[string]interface{}{"compositeScore": output.Composite})
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

// Execute scores input.Company. Weights on the input replace the
// configured ones for this job only; signal priorities on the input are
// merged over the configured ones per signal type.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	weights := h.config.Weights
	if input.Weights != nil {
		weights = *input.Weights
	}
	opts := []scoring.Option{scoring.WithWeights(weights)}
	if priorities := h.signalPriorities(input.SignalPriorities); len(priorities) > 0 {
		opts = append(opts, scoring.WithSignalPriorities(priorities))
	}

	res, err := h.scorer.ScoreCompany(input.Company, input.ICPFilters, input.Signals, input.ProvidersUsed, input.TotalCost, opts...)
	if err != nil {
		return nil, err
	}
	return &Output{Score: res, Composite: res.Composite}, nil
}

func (h *Handler) signalPriorities(perJob map[string]float64) map[string]float64 {
	if len(perJob) == 0 {
		return h.config.SignalPriorities
	}
	merged := make(map[string]float64, len(h.config.SignalPriorities)+len(perJob))
	for k, v := range h.config.SignalPriorities {
		merged[k] = v
	}
	for k, v := range perJob {
		merged[k] = v
	}
	return merged
}
