// internal/workers/enrichment/verify-email/handler.go
package verifyemail

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

const TaskType = "verify-email"

type Verifier interface {
	VerifyEmail(ctx context.Context, clientID string, email string) (*orchestrator.EnrichResult[models.EmailVerification], error)
}

type Handler struct {
	config   *Config
	verifier Verifier
	obs      *observability.Observability
	logger   logger.Logger
	errors   *errors.ErrorHandler
}

type HandlerOptions struct {
	Config        *Config
	Verifier      Verifier
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
	if opts.Verifier == nil {
		return nil, fmt.Errorf("%s: verifier is required", TaskType)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}

	return &Handler{
		config:   cfg,
		verifier: opts.Verifier,
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
	log.Info("Processing email verification", nil)

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

	log.Info("Email verification completed", map[string]interface{}{"status": output.Status})
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

// Execute verifies input.Email. Without a verdict from any provider the
// status is unknown.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	res, err := h.verifier.VerifyEmail(ctx, input.ClientID, input.Email)
	if err != nil {
		return nil, err
	}

	out := &Output{
		Email:         input.Email,
		Status:        models.EmailStatusUnknown,
		ProvidersUsed: res.ProvidersUsed,
		TotalCost:     res.TotalCost,
	}
	if out.ProvidersUsed == nil {
		out.ProvidersUsed = []string{}
	}
	if v := res.Result; v != nil {
		out.Verified = true
		out.Deliverable = v.Deliverable
		out.Score = v.Score
		out.Reason = v.Reason
		if v.Status != "" {
			out.Status = v.Status
		}
	}
	return out, nil
}
