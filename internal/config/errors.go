package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and ApplyEnv; callers
// test for them with errors.Is().
var (
	// ErrInvalidTimeout is returned when the analysis timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid analysis timeout: must be positive")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidQueueSize is returned when the queue size is negative.
	ErrInvalidQueueSize = errors.New("invalid queue size: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidCacheTTL is returned when the report cache TTL is negative.
	ErrInvalidCacheTTL = errors.New("invalid report cache ttl: must be non-negative")

	// ErrInvalidRateLimit is returned when the rate limit or burst is not positive.
	ErrInvalidRateLimit = errors.New("invalid rate limit: rate and burst must be positive")

	// ErrInvalidThresholds is returned for out-of-range analysis thresholds.
	ErrInvalidThresholds = errors.New("invalid thresholds")

	// ErrInvalidEnv is returned when an environment variable cannot be parsed.
	ErrInvalidEnv = errors.New("invalid environment variable")
)
