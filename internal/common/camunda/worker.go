// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"enrichment-workers/internal/common/config"
	"enrichment-workers/internal/common/errors"
	"enrichment-workers/internal/common/logger"
	"enrichment-workers/internal/common/metrics"
	"enrichment-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler is implemented by every worker handler.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// StartWorker opens a job worker for taskType. Disabled workers are not
// opened and nil is returned.
func StartWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler JobHandler, log logger.Logger) worker.JobWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return nil
	}

	jw := client.NewJobWorker().
		JobType(taskType).
		Handler(handler.Handle).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return jw
}

// CompleteJob completes job with output as its variables.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("create complete job command: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("send complete job command: %w", err)
	}
	return nil
}

// JobTracker records prometheus and otel metrics for one job.
type JobTracker struct {
	taskType string
	start    time.Time
	obs      *observability.Observability
}

// TrackJob marks a job of taskType as active. obs may be nil.
func TrackJob(taskType string, obs *observability.Observability) *JobTracker {
	metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
	return &JobTracker{taskType: taskType, start: time.Now(), obs: obs}
}

// Done records the job outcome; err nil means completed.
func (t *JobTracker) Done(ctx context.Context, err error) {
	elapsed := time.Since(t.start)
	metrics.WorkerJobsActive.WithLabelValues(t.taskType).Dec()
	metrics.WorkerJobDuration.WithLabelValues(t.taskType).Observe(elapsed.Seconds())

	status := "completed"
	if err != nil {
		status = "failed"
		code := errors.Normalize(err).Code
		metrics.WorkerJobsFailed.WithLabelValues(t.taskType, string(code)).Inc()
	} else {
		metrics.WorkerJobsCompleted.WithLabelValues(t.taskType).Inc()
	}

	t.obs.RecordJobProcessed(ctx, t.taskType, status)
	t.obs.RecordJobDuration(ctx, t.taskType, elapsed, status)
}

// replyTimeout bounds the complete and fail commands sent after a job ran.
const replyTimeout = 10 * time.Second

// ReplyContext returns a context for answering the broker. It is detached
// from the job context, which may already have expired.
func ReplyContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), replyTimeout)
}
