package config

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/seoscan/internal/analysis"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "seoscan"

	// DefaultAnalysisTimeout bounds one analysis. Similarity clustering of
	// a large site is the slowest part and stays well below it.
	DefaultAnalysisTimeout = 30 * time.Second

	// DefaultListenAddress is the address of the HTTP API.
	DefaultListenAddress = ":8080"

	// DefaultQueueFactor sizes the waiting queue as a multiple of workers.
	DefaultQueueFactor = 4

	// DefaultReportCacheTTL is how long serialized reports stay cached.
	DefaultReportCacheTTL = 10 * time.Minute

	// DefaultRateLimit is the per-client request rate of the HTTP API.
	DefaultRateLimit = 5.0

	// DefaultRateBurst is the per-client token bucket size.
	DefaultRateBurst = 10
)

// Config holds all configuration options for seoscan.
// It is populated from defaults, the config file, environment variables
// and CLI flags, in that order, and passed down explicitly.
type Config struct {
	// Thresholds are the global analysis thresholds.
	Thresholds analysis.Thresholds

	// AnalysisTimeout bounds a single analysis. On expiry the scan is
	// treated as not analyzed.
	AnalysisTimeout time.Duration

	// Workers is the number of analyses that may run at once.
	Workers int

	// QueueSize is the number of analyses that may wait for a worker.
	// Further requests are rejected.
	QueueSize int

	// ListenAddress is the HTTP API address in "host:port" form.
	ListenAddress string

	// DBDir is the directory of the SQLite database.
	// Defaults to the XDG data directory (~/.local/share/seoscan on Linux).
	DBDir string

	// ReportCacheTTL is how long the HTTP API caches serialized reports.
	ReportCacheTTL time.Duration

	// RateLimit is the number of requests per second allowed per client.
	RateLimit float64

	// RateBurst is the number of requests a client may burst.
	RateBurst int

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches the log output to JSON.
	LogJSON bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .seoscan is searched in the current and home directories.
	ConfigFilePath string

	// ProjectConfigs holds the per-project settings of the config file.
	ProjectConfigs *File

	// JSONReport and MarkdownReport select the report format.
	// They are mutually exclusive; plain text is the default.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile is the output file path. Stdout when empty.
	ReportFile string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	workers := runtime.NumCPU()
	return &Config{
		Thresholds:      analysis.DefaultThresholds(),
		AnalysisTimeout: DefaultAnalysisTimeout,
		Workers:         workers,
		QueueSize:       workers * DefaultQueueFactor,
		ListenAddress:   DefaultListenAddress,
		DBDir:           XDGDataDir(),
		ReportCacheTTL:  DefaultReportCacheTTL,
		RateLimit:       DefaultRateLimit,
		RateBurst:       DefaultRateBurst,
	}
}

// XDGDataDir returns the XDG data directory for seoscan.
// On Linux: ~/.local/share/seoscan
// On macOS: ~/Library/Application Support/seoscan
// On Windows: %LOCALAPPDATA%\seoscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for seoscan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ThresholdsFor returns the thresholds of a project: the global
// thresholds overridden by the config file's defaults and then by the
// project's own entry.
func (c *Config) ThresholdsFor(projectID string) analysis.Thresholds {
	t := c.Thresholds.WithDefaults()
	if c.ProjectConfigs == nil {
		return t
	}
	return t.Merge(c.ProjectConfigs.GetProjectConfig(projectID).Thresholds)
}

// ApplyEnv overrides settings from environment variables:
// PORT, SEOSCAN_DB_DIR, SEOSCAN_WORKERS, SEOSCAN_QUEUE_SIZE and
// SEOSCAN_ANALYSIS_TIMEOUT. Unset variables are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if port := strings.TrimSpace(getenv("PORT")); port != "" {
		c.ListenAddress = ":" + port
	}
	if dir := strings.TrimSpace(getenv("SEOSCAN_DB_DIR")); dir != "" {
		c.DBDir = dir
	}
	if v := strings.TrimSpace(getenv("SEOSCAN_WORKERS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: SEOSCAN_WORKERS=%q", ErrInvalidEnv, v)
		}
		c.Workers = n
	}
	if v := strings.TrimSpace(getenv("SEOSCAN_QUEUE_SIZE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: SEOSCAN_QUEUE_SIZE=%q", ErrInvalidEnv, v)
		}
		c.QueueSize = n
	}
	if v := strings.TrimSpace(getenv("SEOSCAN_ANALYSIS_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: SEOSCAN_ANALYSIS_TIMEOUT=%q", ErrInvalidEnv, v)
		}
		c.AnalysisTimeout = d
	}
	return nil
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the sentinel errors.
func (c *Config) Validate() error {
	if c.AnalysisTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.QueueSize < 0 {
		return ErrInvalidQueueSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.ReportCacheTTL < 0 {
		return ErrInvalidCacheTTL
	}

	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return ErrInvalidRateLimit
	}

	if err := ValidateThresholds(c.Thresholds); err != nil {
		return err
	}

	if c.ProjectConfigs != nil {
		if err := ValidateThresholds(c.ProjectConfigs.Defaults.Thresholds); err != nil {
			return fmt.Errorf("defaults: %w", err)
		}
		for id, p := range c.ProjectConfigs.Projects {
			if err := ValidateThresholds(p.Thresholds); err != nil {
				return fmt.Errorf("project %s: %w", id, err)
			}
		}
	}

	return nil
}

// ValidateThresholds checks the ranges of the set threshold fields.
// Unset (zero) fields are valid because they fall back to defaults.
func ValidateThresholds(t analysis.Thresholds) error {
	if t.SlowPageMs < 0 || t.LargePageBytes < 0 || t.ThinContentWords < 0 ||
		t.CriticalThinContentWords < 0 || t.DeepPageThreshold < 0 ||
		t.LinkRankLimit < 0 || t.ImageHeavyLimit < 0 || t.SimilarityBucketKeywords < 0 {
		return fmt.Errorf("%w: values must be non-negative", ErrInvalidThresholds)
	}
	if t.SimilarityThreshold < 0 || t.SimilarityThreshold > 100 {
		return fmt.Errorf("%w: similarityThreshold must be between 1 and 100", ErrInvalidThresholds)
	}
	if t.ThinContentWords > 0 && t.CriticalThinContentWords > t.ThinContentWords {
		return fmt.Errorf("%w: criticalThinContentWords exceeds thinContentWords", ErrInvalidThresholds)
	}
	return nil
}
