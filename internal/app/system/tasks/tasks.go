// internal/app/system/tasks/tasks.go

// Package tasks runs periodic background jobs for the lifetime of the app.
package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Job is one recurring piece of background work.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Start launches one goroutine per job. Each job runs once immediately and
// then on its interval until ctx is cancelled. A failing run is logged and
// retried on the next tick; it never stops the job.
func Start(ctx context.Context, logger *zap.Logger, jobs ...Job) {
	for _, job := range jobs {
		go run(ctx, logger, job)
	}
}

func run(ctx context.Context, logger *zap.Logger, job Job) {
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	runOnce := func() {
		if err := job.Run(ctx); err != nil {
			logger.Error("background job failed",
				zap.String("job", job.Name),
				zap.Error(err))
		}
	}

	runOnce()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
