// Package worker implements the background rate refresh task and its scheduling.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"fxquotes/internal/service"
)

// TaskTypeRefreshRates is the Asynq task type for rate refresh cycles.
const TaskTypeRefreshRates = "rates:refresh"

// Refresh triggers recorded in the task payload.
const (
	TriggerScheduler = "scheduler"
	TriggerManual    = "manual"
	TriggerStartup   = "startup"
)

// ErrRefreshAlreadyQueued is returned when an identical refresh task is still pending.
var ErrRefreshAlreadyQueued = errors.New("rate refresh already queued")

// RefreshRatesPayload is the payload structure for rate refresh Asynq tasks.
type RefreshRatesPayload struct {
	Trigger string `json:"trigger"`
}

// Refresher runs one rate refresh cycle.
type Refresher interface {
	Refresh(ctx context.Context, now time.Time) (service.RefreshSummary, error)
}

// NewRefreshRatesHandler returns a function to handle rate refresh tasks.
func NewRefreshRatesHandler(r Refresher, logger *zap.SugaredLogger) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload RefreshRatesPayload
		if len(t.Payload()) > 0 {
			if err := json.Unmarshal(t.Payload(), &payload); err != nil {
				logger.Errorw("Invalid task payload", "type", t.Type(), "error", err)
				return nil
			}
		}

		summary, err := r.Refresh(ctx, time.Now().UTC())
		if err != nil {
			logger.Errorw("Task processing failed", "type", t.Type(), "trigger", payload.Trigger,
				"bases_attempted", summary.BasesAttempted, "error", err)
			return err
		}

		logger.Infow("Task completed", "type", t.Type(), "trigger", payload.Trigger,
			"bases_succeeded", summary.BasesSucceeded, "bases_failed", summary.BasesFailed,
			"bases_skipped", summary.BasesSkipped)
		return nil
	}
}

// NewRefreshRatesTask builds a refresh task. While one is pending or running,
// enqueueing another is rejected for uniqueTTL.
func NewRefreshRatesTask(trigger string, maxRetry int, timeout, uniqueTTL time.Duration) (*asynq.Task, error) {
	data, err := json.Marshal(RefreshRatesPayload{Trigger: trigger})
	if err != nil {
		return nil, err
	}
	opts := []asynq.Option{
		asynq.MaxRetry(maxRetry),
		asynq.Timeout(timeout),
	}
	if uniqueTTL > 0 {
		opts = append(opts, asynq.Unique(uniqueTTL))
	}
	return asynq.NewTask(TaskTypeRefreshRates, data, opts...), nil
}

// AsynqEnqueuer is responsible for enqueuing tasks to an Asynq queue with specific configurations for retries and timeouts.
type AsynqEnqueuer struct {
	client    *asynq.Client
	maxRetry  int
	timeout   time.Duration
	uniqueTTL time.Duration
}

// NewAsynqEnqueuer creates a new AsynqEnqueuer with the given client, retry limit, task timeout and uniqueness window.
func NewAsynqEnqueuer(client *asynq.Client, maxRetry int, timeout, uniqueTTL time.Duration) *AsynqEnqueuer {
	return &AsynqEnqueuer{
		client:    client,
		maxRetry:  maxRetry,
		timeout:   timeout,
		uniqueTTL: uniqueTTL,
	}
}

// EnqueueRefresh enqueues a manual rate refresh and returns the task id.
func (e *AsynqEnqueuer) EnqueueRefresh(ctx context.Context) (string, error) {
	return e.Enqueue(ctx, TriggerManual)
}

// Enqueue enqueues a rate refresh recorded under trigger and returns the task id.
func (e *AsynqEnqueuer) Enqueue(ctx context.Context, trigger string) (string, error) {
	task, err := NewRefreshRatesTask(trigger, e.maxRetry, e.timeout, e.uniqueTTL)
	if err != nil {
		return "", err
	}

	info, err := e.client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return "", ErrRefreshAlreadyQueued
	}
	if err != nil {
		return "", err
	}
	return info.ID, nil
}
