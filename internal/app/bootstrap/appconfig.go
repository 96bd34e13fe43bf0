// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP ports, TLS,
// logging level, CORS, body limits). AppConfig is everything specific to
// SchedHub itself.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// DefaultCandidateLimit is how many ranked dates a candidates query
	// returns when the caller does not pass ?limit. The ranking core never
	// supplies a default of its own.
	DefaultCandidateLimit int

	// LockWait bounds how long a join/cancel waits for its event's lock
	// before failing with a retryable busy error.
	LockWait time.Duration

	// Join/cancel rate limiting, per client IP.
	JoinRateLimit  int
	JoinRateWindow time.Duration

	// ArchiveSweepInterval is how often the background sweep archives
	// confirmed events whose date has passed. Zero disables the sweep.
	ArchiveSweepInterval time.Duration
}
