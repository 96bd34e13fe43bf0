// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	availabilityfeature "github.com/dalemusser/schedhub/internal/app/features/availability"
	eventsfeature "github.com/dalemusser/schedhub/internal/app/features/events"
	healthfeature "github.com/dalemusser/schedhub/internal/app/features/health"
	"github.com/dalemusser/schedhub/internal/app/roster"
	availabilitystore "github.com/dalemusser/schedhub/internal/app/store/availability"
	eventstore "github.com/dalemusser/schedhub/internal/app/store/events"
	signupstore "github.com/dalemusser/schedhub/internal/app/store/signups"
	"github.com/dalemusser/schedhub/internal/app/system/ratelimit"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. SchedHub mounts three feature routers:
// health for orchestrators, availability for members' date answers, and
// events for the lifecycle plus the signup roster.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.SchedHubMongoDatabase

	signups := signupstore.New(db)
	rst := roster.New(signups, appCfg.LockWait, logger)

	joinLimiter := ratelimit.New(appCfg.JoinRateLimit, appCfg.JoinRateWindow)

	r := chi.NewRouter()

	healthHandler := healthfeature.NewHandler(deps.SchedHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	availHandler := availabilityfeature.NewHandler(availabilitystore.New(db), logger)
	r.Mount("/availability", availabilityfeature.Routes(availHandler))

	eventsHandler := eventsfeature.NewHandler(
		eventstore.New(db),
		availabilitystore.New(db),
		signups,
		rst,
		appCfg.DefaultCandidateLimit,
		logger,
	)
	r.Mount("/events", eventsfeature.Routes(eventsHandler, joinLimiter))

	return r, nil
}
