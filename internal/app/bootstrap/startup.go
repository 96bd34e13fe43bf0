// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	eventstore "github.com/dalemusser/schedhub/internal/app/store/events"
	"github.com/dalemusser/schedhub/internal/app/system/tasks"
	"github.com/dalemusser/schedhub/internal/app/system/timeouts"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	// Join/cancel hold an event lock across several round-trips, so their
	// timeout budget is the configured lock wait plus the write budget.
	timeouts.Configure(timeouts.Config{
		Long: appCfg.LockWait + timeouts.DefaultMedium,
	})

	if appCfg.ArchiveSweepInterval <= 0 {
		logger.Info("archive sweep disabled")
		return nil
	}

	events := eventstore.New(deps.SchedHubMongoDatabase)
	tasks.Start(ctx, logger,
		tasks.ArchivePastEventsJob(events, logger, appCfg.ArchiveSweepInterval),
	)
	return nil
}
