// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for SchedHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, default_candidate_limit, etc.
//   - Environment variables: SCHEDHUB_MONGO_URI, SCHEDHUB_LOCK_WAIT, etc.
//   - Command-line flags: --mongo_uri, --lock_wait, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "sched_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "default_candidate_limit", Default: 5, Desc: "Candidate dates returned when the query passes no limit"},
	{Name: "lock_wait", Default: "5s", Desc: "Max wait for an event's roster lock before reporting busy"},

	{Name: "join_rate_limit", Default: 30, Desc: "Join/cancel requests allowed per client IP per window"},
	{Name: "join_rate_window", Default: "1m", Desc: "Window for the join/cancel rate limit"},

	{Name: "archive_sweep_interval", Default: "1h", Desc: "How often past confirmed events are archived (0 disables)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, SCHEDHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SCHEDHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		DefaultCandidateLimit: appValues.Int("default_candidate_limit"),
		LockWait:              appValues.Duration("lock_wait", 5*time.Second),

		JoinRateLimit:  appValues.Int("join_rate_limit"),
		JoinRateWindow: appValues.Duration("join_rate_window", time.Minute),

		ArchiveSweepInterval: appValues.Duration("archive_sweep_interval", time.Hour),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// SchedHub validates the MongoDB URI format to catch configuration errors
// early, before attempting to connect, and rejects limits that would make
// the candidates endpoint useless.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.DefaultCandidateLimit < 1 {
		return fmt.Errorf("default_candidate_limit must be at least 1, got %d", appCfg.DefaultCandidateLimit)
	}
	if appCfg.LockWait <= 0 {
		return fmt.Errorf("lock_wait must be positive, got %s", appCfg.LockWait)
	}
	if appCfg.JoinRateLimit < 1 {
		return fmt.Errorf("join_rate_limit must be at least 1, got %d", appCfg.JoinRateLimit)
	}
	if appCfg.JoinRateWindow <= 0 {
		return fmt.Errorf("join_rate_window must be positive, got %s", appCfg.JoinRateWindow)
	}
	return nil
}
