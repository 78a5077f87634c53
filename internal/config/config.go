package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	// BreachThreshold is the adjusted-score value below which a line counts
	// as a breach. Must be negative.
	BreachThreshold float64 `json:"breach_threshold"`

	// AlertLimit is the breach count that must be exceeded (strictly) since
	// the last acknowledgment before a guardian alert fires.
	AlertLimit int `json:"alert_limit"`

	// GuardianEmail is the recipient for alert notifications.
	GuardianEmail string `json:"guardian_email,omitempty"`

	// SMTP settings for the alert notifier.
	SMTPHost     string `json:"smtp_host,omitempty"`
	SMTPPort     int    `json:"smtp_port,omitempty"`
	SMTPFrom     string `json:"smtp_from,omitempty"`
	SMTPPassword string `json:"smtp_password,omitempty"`

	// HistoryMaxEntries caps the mood history; oldest entries are evicted
	// first when the cap is exceeded.
	HistoryMaxEntries int `json:"history_max_entries"`

	// AttentionLogMaxEntries caps the needs-attention log (privacy bound).
	AttentionLogMaxEntries int `json:"attention_log_max_entries"`

	// PollIntervalSeconds is the cadence of the background monitor loop.
	PollIntervalSeconds int `json:"poll_interval_seconds"`

	// SourcePath is the append-only line log to monitor. Defaults to
	// baseDir/keystrokes.log when empty.
	SourcePath string `json:"source_path,omitempty"`

	// EnrichmentModel selects the OpenAI model for optional enrichment.
	// Enrichment is enabled only when OPENAI_API_KEY is set in the
	// environment; this file never holds the key.
	EnrichmentModel string `json:"enrichment_model,omitempty"`

	// EnrichmentMaxDailyCalls bounds remote enrichment calls per calendar day.
	EnrichmentMaxDailyCalls int `json:"enrichment_max_daily_calls"`

	// EnrichmentTimeoutSeconds bounds a single remote enrichment call.
	// The deterministic path never waits on it; this only limits how long
	// the side channel may run.
	EnrichmentTimeoutSeconds int `json:"enrichment_timeout_seconds"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is
	// locked" errors). 0 means use sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BreachThreshold:          -0.5,
		AlertLimit:               5,
		SMTPHost:                 "smtp.gmail.com",
		SMTPPort:                 465,
		HistoryMaxEntries:        10000,
		AttentionLogMaxEntries:   50,
		PollIntervalSeconds:      30,
		EnrichmentModel:          "gpt-4o-mini",
		EnrichmentMaxDailyCalls:  200,
		EnrichmentTimeoutSeconds: 10,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.sentiguard.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.BreachThreshold = overlay.BreachThreshold
	if result.BreachThreshold == 0 {
		result.BreachThreshold = base.BreachThreshold
	}

	result.AlertLimit = overlay.AlertLimit
	if result.AlertLimit == 0 {
		result.AlertLimit = base.AlertLimit
	}

	result.GuardianEmail = overlayString(base.GuardianEmail, overlay.GuardianEmail)
	result.SMTPHost = overlayString(base.SMTPHost, overlay.SMTPHost)
	result.SMTPFrom = overlayString(base.SMTPFrom, overlay.SMTPFrom)
	result.SMTPPassword = overlayString(base.SMTPPassword, overlay.SMTPPassword)
	result.SourcePath = overlayString(base.SourcePath, overlay.SourcePath)
	result.EnrichmentModel = overlayString(base.EnrichmentModel, overlay.EnrichmentModel)

	result.SMTPPort = overlayInt(base.SMTPPort, overlay.SMTPPort)
	result.HistoryMaxEntries = overlayInt(base.HistoryMaxEntries, overlay.HistoryMaxEntries)
	result.AttentionLogMaxEntries = overlayInt(base.AttentionLogMaxEntries, overlay.AttentionLogMaxEntries)
	result.PollIntervalSeconds = overlayInt(base.PollIntervalSeconds, overlay.PollIntervalSeconds)
	result.EnrichmentMaxDailyCalls = overlayInt(base.EnrichmentMaxDailyCalls, overlay.EnrichmentMaxDailyCalls)
	result.EnrichmentTimeoutSeconds = overlayInt(base.EnrichmentTimeoutSeconds, overlay.EnrichmentTimeoutSeconds)
	result.DBMaxOpenConns = overlayInt(base.DBMaxOpenConns, overlay.DBMaxOpenConns)
	result.DBMaxIdleConns = overlayInt(base.DBMaxIdleConns, overlay.DBMaxIdleConns)

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// PollInterval returns the monitor cadence as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// EnrichmentTimeout returns the remote enrichment bound as a duration.
func (c *Config) EnrichmentTimeout() time.Duration {
	return time.Duration(c.EnrichmentTimeoutSeconds) * time.Second
}

func overlayString(base, overlay string) string {
	if strings.TrimSpace(overlay) != "" {
		return overlay
	}
	return base
}

func overlayInt(base, overlay int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
