// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"

	eventstore "github.com/dalemusser/schedhub/internal/app/store/events"
	"github.com/dalemusser/schedhub/internal/domain/schedule"
)

// ArchivePastEventsJob creates a job that flips confirmed events whose date
// has passed to archived. Status is all that changes; signups are never
// touched by the sweep.
func ArchivePastEventsJob(events *eventstore.Store, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     "archive-past-events",
		Interval: interval,
		Run: func(ctx context.Context) error {
			today := time.Now().Format(schedule.DateLayout)
			count, err := events.ArchivePast(ctx, today)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("archived past events",
					zap.Int64("count", count),
					zap.String("before", today))
			}
			return nil
		},
	}
}
