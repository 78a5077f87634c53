package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig_RetentionCaps(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.HistoryMaxEntries != 10000 {
		t.Fatalf("HistoryMaxEntries = %d, want 10000", cfg.HistoryMaxEntries)
	}
	if cfg.AttentionLogMaxEntries != 50 {
		t.Fatalf("AttentionLogMaxEntries = %d, want 50", cfg.AttentionLogMaxEntries)
	}
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BreachThreshold != -0.5 {
		t.Fatalf("BreachThreshold = %v, want -0.5", cfg.BreachThreshold)
	}
	if cfg.AlertLimit != 5 {
		t.Fatalf("AlertLimit = %d, want 5", cfg.AlertLimit)
	}
	if cfg.HistoryMaxEntries != 10000 {
		t.Fatalf("HistoryMaxEntries = %d, want 10000", cfg.HistoryMaxEntries)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	raw := `{"breach_threshold": -0.3, "alert_limit": 3, "guardian_email": "guardian@example.com"}`
	if err := os.WriteFile(configPath, []byte(raw), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BreachThreshold != -0.3 {
		t.Fatalf("BreachThreshold = %v, want -0.3", cfg.BreachThreshold)
	}
	if cfg.AlertLimit != 3 {
		t.Fatalf("AlertLimit = %d, want 3", cfg.AlertLimit)
	}
	if cfg.GuardianEmail != "guardian@example.com" {
		t.Fatalf("GuardianEmail = %q, want guardian@example.com", cfg.GuardianEmail)
	}
	// Unspecified fields keep defaults
	if cfg.AttentionLogMaxEntries != 50 {
		t.Fatalf("AttentionLogMaxEntries = %d, want 50", cfg.AttentionLogMaxEntries)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{not json}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestMerge_OverlayWins(t *testing.T) {
	base := DefaultConfig()
	overlay := &Config{SMTPPort: 587, SMTPHost: "smtp.example.com"}

	merged := Merge(base, overlay)
	if merged.SMTPPort != 587 {
		t.Fatalf("SMTPPort = %d, want 587", merged.SMTPPort)
	}
	if merged.SMTPHost != "smtp.example.com" {
		t.Fatalf("SMTPHost = %q, want smtp.example.com", merged.SMTPHost)
	}
	if merged.AlertLimit != base.AlertLimit {
		t.Fatalf("AlertLimit = %d, want %d", merged.AlertLimit, base.AlertLimit)
	}
}

func TestMerge_DisabledToolsDeduplicated(t *testing.T) {
	base := &Config{DisabledTools: []string{"mood_clear", "mood_reset"}}
	overlay := &Config{DisabledTools: []string{"mood_reset", " mood_alerts "}}

	merged := Merge(base, overlay)
	want := []string{"mood_clear", "mood_reset", "mood_alerts"}
	if len(merged.DisabledTools) != len(want) {
		t.Fatalf("DisabledTools = %v, want %v", merged.DisabledTools, want)
	}
	for i, tool := range want {
		if merged.DisabledTools[i] != tool {
			t.Fatalf("DisabledTools[%d] = %q, want %q", i, merged.DisabledTools[i], tool)
		}
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.PollInterval() != 30*time.Second {
		t.Fatalf("PollInterval() = %v, want 30s", cfg.PollInterval())
	}
	if cfg.EnrichmentTimeout() != 10*time.Second {
		t.Fatalf("EnrichmentTimeout() = %v, want 10s", cfg.EnrichmentTimeout())
	}
}
