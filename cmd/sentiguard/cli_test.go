package main

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/RAVBLACK/sentiguard/internal/config"
	"github.com/RAVBLACK/sentiguard/internal/db"
)

// setupTestApp wires an app over a temporary data directory.
func setupTestApp(t *testing.T) *app {
	t.Helper()

	t.Setenv("OPENAI_API_KEY", "")

	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	return newApp(database, cfg, tmpDir)
}

// runCommand runs the CLI app with args and returns captured stdout.
func runCommand(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := newCLIApp(a).Run(append([]string{"sentiguard"}, args...))

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout

	return buf.String(), err
}

func TestCLIAnalyze(t *testing.T) {
	a := setupTestApp(t)

	out, err := runCommand(t, a, "analyze", "I love this beautiful sunny day")
	if err != nil {
		t.Fatalf("analyze command failed: %v", err)
	}

	var output struct {
		Result struct {
			AdjustedScore float64 `json:"adjusted_score"`
			Category      string  `json:"category"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if output.Result.AdjustedScore <= 0.1 {
		t.Errorf("adjusted_score = %v, want > 0.1", output.Result.AdjustedScore)
	}
}

func TestCLIAnalyzeEnrich(t *testing.T) {
	a := setupTestApp(t)

	out, err := runCommand(t, a, "analyze", "--enrich", "what a wonderful afternoon")
	if err != nil {
		t.Fatalf("analyze command failed: %v", err)
	}

	var output struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if output.Message == "" {
		t.Error("expected a supportive message")
	}
}

func TestCLIAnalyzeNoText(t *testing.T) {
	a := setupTestApp(t)

	_, err := runCommand(t, a, "analyze")
	if err == nil {
		t.Fatal("expected error for missing text")
	}
}

func TestCLICheckAndSummary(t *testing.T) {
	a := setupTestApp(t)

	if err := a.lineLog.Append("today went really well"); err != nil {
		t.Fatalf("append: %v", err)
	}

	out, err := runCommand(t, a, "check")
	if err != nil {
		t.Fatalf("check command failed: %v", err)
	}

	var check struct {
		SourceOK bool `json:"source_ok"`
		NewLines int  `json:"new_lines"`
	}
	if err := json.Unmarshal([]byte(out), &check); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if !check.SourceOK || check.NewLines != 1 {
		t.Errorf("check = %+v, want source_ok and one new line", check)
	}

	out, err = runCommand(t, a, "summary")
	if err != nil {
		t.Fatalf("summary command failed: %v", err)
	}

	var summary struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if summary.Total != 1 {
		t.Errorf("total = %d, want 1", summary.Total)
	}
}

func TestCLIHistory(t *testing.T) {
	a := setupTestApp(t)

	out, err := runCommand(t, a, "history", "--period=monthly")
	if err != nil {
		t.Fatalf("history command failed: %v", err)
	}

	var output struct {
		Period  string `json:"period"`
		Buckets []struct {
			Label string `json:"label"`
		} `json:"buckets"`
	}
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if output.Period != "monthly" {
		t.Errorf("period = %q, want monthly", output.Period)
	}
	if len(output.Buckets) != 12 {
		t.Errorf("buckets = %d, want 12", len(output.Buckets))
	}
}

func TestCLIHistoryBadPeriod(t *testing.T) {
	a := setupTestApp(t)

	_, err := runCommand(t, a, "history", "--period=hourly")
	if err == nil {
		t.Fatal("expected error for unknown period")
	}
}

func TestCLIClearRequiresConfirmation(t *testing.T) {
	a := setupTestApp(t)

	if _, err := runCommand(t, a, "clear"); err == nil {
		t.Fatal("expected error without --yes")
	}

	if err := a.lineLog.Append("something personal"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := runCommand(t, a, "check"); err != nil {
		t.Fatalf("check: %v", err)
	}

	if _, err := runCommand(t, a, "clear", "--yes"); err != nil {
		t.Fatalf("clear command failed: %v", err)
	}
	if n := a.lineLog.Count(); n != 0 {
		t.Errorf("line log after clear = %d lines, want 0", n)
	}
	n, err := a.store.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("history after clear = %d entries, want 0", n)
	}
}

func TestCLIReset(t *testing.T) {
	a := setupTestApp(t)

	out, err := runCommand(t, a, "reset")
	if err != nil {
		t.Fatalf("reset command failed: %v", err)
	}

	var output struct {
		Reset bool `json:"reset"`
	}
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if !output.Reset {
		t.Error("expected reset=true")
	}
}

func TestCLIAlertsEmpty(t *testing.T) {
	a := setupTestApp(t)

	out, err := runCommand(t, a, "alerts")
	if err != nil {
		t.Fatalf("alerts command failed: %v", err)
	}

	var output struct {
		Alerts    []any `json:"alerts"`
		Attention []any `json:"attention"`
	}
	if err := json.Unmarshal([]byte(out), &output); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if len(output.Alerts) != 0 {
		t.Errorf("alerts = %v, want none", output.Alerts)
	}

	if _, err := runCommand(t, a, "alerts", "--report"); err == nil {
		t.Error("expected error rendering a report with no alerts")
	}
}

func TestCLICommandsRegistered(t *testing.T) {
	a := setupTestApp(t)
	cliApp := newCLIApp(a)

	registered := make(map[string]bool)
	for _, cmd := range cliApp.Commands {
		registered[cmd.Name] = true
	}

	for name := range cliCommands {
		if name == "help" {
			continue
		}
		if !registered[name] {
			t.Errorf("command %q dispatches to CLI mode but is not registered", name)
		}
	}
}
