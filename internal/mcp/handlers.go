package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/RAVBLACK/sentiguard/internal/alert"
	"github.com/RAVBLACK/sentiguard/internal/db"
	"github.com/RAVBLACK/sentiguard/internal/enrich"
	"github.com/RAVBLACK/sentiguard/internal/errors"
	"github.com/RAVBLACK/sentiguard/internal/history"
	"github.com/RAVBLACK/sentiguard/internal/monitor"
	"github.com/RAVBLACK/sentiguard/internal/sentiment"
	"github.com/RAVBLACK/sentiguard/internal/source"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db        *sql.DB
	pipeline  *sentiment.Pipeline
	lineLog   *source.LineLog
	store     *history.Store
	attention *history.AttentionLog
	agg       *alert.Aggregator
	monitor   *monitor.Monitor
	enricher  enrich.Enricher
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(
	database *sql.DB,
	pipeline *sentiment.Pipeline,
	lineLog *source.LineLog,
	store *history.Store,
	attention *history.AttentionLog,
	agg *alert.Aggregator,
	mon *monitor.Monitor,
	enricher enrich.Enricher,
) *Handlers {
	return &Handlers{
		db:        database,
		pipeline:  pipeline,
		lineLog:   lineLog,
		store:     store,
		attention: attention,
		agg:       agg,
		monitor:   mon,
		enricher:  enricher,
	}
}

// Request types for each tool

// AnalyzeRequest represents the arguments for mood_analyze.
type AnalyzeRequest struct {
	Text   string `json:"text"`
	Enrich bool   `json:"enrich,omitempty"`
}

// HistoryRequest represents the arguments for mood_history.
type HistoryRequest struct {
	Period string `json:"period,omitempty"`
}

// AlertsRequest represents the arguments for mood_alerts.
type AlertsRequest struct {
	Limit int `json:"limit,omitempty"`
}

// ClearRequest represents the arguments for mood_clear.
type ClearRequest struct {
	Confirm bool `json:"confirm"`
}

// Handler implementations

// HandleAnalyze handles the mood_analyze tool call.
func (h *Handlers) HandleAnalyze(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AnalyzeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result := h.pipeline.Analyze(input.Text)

	payload := map[string]any{"result": result}
	if input.Enrich && h.enricher != nil {
		msg, err := h.enricher.Enrich(ctx, result, "")
		if err == nil {
			payload["message"] = msg
		}
	}

	return successResult(payload)
}

// HandleCheck handles the mood_check tool call.
func (h *Handlers) HandleCheck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := h.monitor.Check()
	if err != nil {
		return errorResult(err), nil
	}

	payload := map[string]any{
		"source_ok":    report.SourceOK,
		"new_lines":    report.NewLines,
		"breach_count": report.Observation.BreachCount,
		"total_lines":  report.Observation.TotalLines,
	}
	if report.Fired != nil {
		payload["alert"] = report.Fired
		payload["delivered"] = report.Delivered
	}
	if latest, err := h.store.Latest(); err == nil {
		payload["latest"] = map[string]any{
			"ts":    latest.Timestamp.Format(time.RFC3339),
			"score": latest.Score,
		}
	}

	return successResult(payload)
}

// HandleHistory handles the mood_history tool call.
func (h *Handlers) HandleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[HistoryRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	period := history.Period(input.Period)
	if input.Period == "" {
		period = history.PeriodDaily
	}

	buckets, err := h.store.Aggregate(period)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{
		"period":  period,
		"buckets": buckets,
	})
}

// HandleSummary handles the mood_summary tool call.
func (h *Handlers) HandleSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := h.store.Summarize()
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(summary)
}

// HandleAlerts handles the mood_alerts tool call.
func (h *Handlers) HandleAlerts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AlertsRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Limit < 0 {
		return errorResult(errors.NewInvalidRequest("limit must be >= 0")), nil
	}

	alerts, err := db.ListAlerts(h.db, input.Limit)
	if err != nil {
		return errorResult(err), nil
	}
	attention, err := h.attention.List(input.Limit)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{
		"alerts":    alertRows(alerts),
		"attention": attentionRows(attention),
	})
}

// HandleClear handles the mood_clear tool call.
func (h *Handlers) HandleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ClearRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if !input.Confirm {
		return errorResult(errors.NewInvalidRequest("confirm must be true to wipe all data")), nil
	}

	if err := h.store.Clear(); err != nil {
		return errorResult(err), nil
	}
	if err := h.attention.Clear(); err != nil {
		return errorResult(err), nil
	}
	if err := db.ClearAlerts(h.db); err != nil {
		return errorResult(err), nil
	}
	if err := h.agg.Reset(); err != nil {
		return errorResult(err), nil
	}
	if err := h.lineLog.Clear(); err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{"cleared": true})
}

// HandleReset handles the mood_reset tool call.
func (h *Handlers) HandleReset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.agg.Reset(); err != nil {
		return errorResult(err), nil
	}

	return successResult(map[string]any{"reset": true})
}

// Wire shapes

type alertPayload struct {
	ID          string   `json:"id"`
	Timestamp   string   `json:"ts"`
	BreachCount int      `json:"breach_count"`
	Status      string   `json:"status"`
	SampleLines []string `json:"sample_lines,omitempty"`
}

type attentionPayload struct {
	Timestamp     string  `json:"ts"`
	Preview       string  `json:"preview"`
	RawScore      float64 `json:"raw_score"`
	AdjustedScore float64 `json:"adjusted_score"`
	Sarcastic     bool    `json:"sarcastic"`
	Concern       bool    `json:"concern"`
	Explanation   string  `json:"explanation"`
}

func alertRows(rows []db.AlertRow) []alertPayload {
	out := make([]alertPayload, len(rows))
	for i, r := range rows {
		out[i] = alertPayload{
			ID:          r.ID,
			Timestamp:   r.Timestamp.Format(time.RFC3339),
			BreachCount: r.BreachCount,
			Status:      r.Status,
			SampleLines: r.SampleLines,
		}
	}
	return out
}

func attentionRows(rows []db.AttentionRow) []attentionPayload {
	out := make([]attentionPayload, len(rows))
	for i, r := range rows {
		out[i] = attentionPayload{
			Timestamp:     r.Timestamp.Format(time.RFC3339),
			Preview:       r.Preview,
			RawScore:      r.RawScore,
			AdjustedScore: r.AdjustedScore,
			Sarcastic:     r.Sarcastic,
			Concern:       r.Concern,
			Explanation:   r.Explanation,
		}
	}
	return out
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if sErr, ok := err.(*errors.SentiError); ok {
		errorObj := map[string]any{
			"code":    sErr.Code,
			"message": sErr.Message,
			"status":  sErr.Status,
		}
		if sErr.Code != errors.ErrInternal && sErr.Details != nil {
			errorObj["details"] = sErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
