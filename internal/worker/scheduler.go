package worker

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// NewRefreshScheduler registers the periodic refresh task under spec, which is
// either "@every <duration>" or a standard cron expression.
func NewRefreshScheduler(redisOpt asynq.RedisConnOpt, spec string, maxRetry int, timeout time.Duration, logger *zap.SugaredLogger) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: time.UTC,
		LogLevel: asynq.WarnLevel,
	})

	// Uniqueness spans the task timeout so a slow cycle is never doubled by the next tick.
	task, err := NewRefreshRatesTask(TriggerScheduler, maxRetry, timeout, timeout)
	if err != nil {
		return nil, err
	}
	entryID, err := scheduler.Register(spec, task)
	if err != nil {
		return nil, fmt.Errorf("register refresh schedule %q: %w", spec, err)
	}
	logger.Infow("Registered rate refresh schedule", "spec", spec, "entry_id", entryID)
	return scheduler, nil
}
