package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool definitions

var analyzeToolDef = mcp.NewTool("mood_analyze",
	mcp.WithDescription("Analyze one text sample: VADER score plus sarcasm and mental-health context correction. Optionally include a short supportive message."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("The text sample to analyze"),
	),
	mcp.WithBoolean("enrich",
		mcp.Description("Also generate a supportive message for the result"),
	),
)

var checkToolDef = mcp.NewTool("mood_check",
	mcp.WithDescription("Run one monitoring cycle: score new lines from the collected text log, update mood history, and fire a guardian alert if the breach limit is exceeded."),
)

var historyToolDef = mcp.NewTool("mood_history",
	mcp.WithDescription("Aggregate the mood history into calendar buckets, oldest first."),
	mcp.WithString("period",
		mcp.Description("Bucket granularity: daily (30 buckets), weekly (12), or monthly (12). Defaults to daily."),
		mcp.Enum("daily", "weekly", "monthly"),
	),
)

var summaryToolDef = mcp.NewTool("mood_summary",
	mcp.WithDescription("Whole-history mood summary: totals, average score, and positive/negative/neutral counts."),
)

var alertsToolDef = mcp.NewTool("mood_alerts",
	mcp.WithDescription("List fired guardian alerts (newest first) and the recent needs-attention entries."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum alerts to return (0 = all)"),
	),
)

var clearToolDef = mcp.NewTool("mood_clear",
	mcp.WithDescription("Privacy wipe: delete the mood history, attention log, alert log, alert state, and the collected text log. Irreversible."),
	mcp.WithBoolean("confirm",
		mcp.Required(),
		mcp.Description("Must be true; guards against accidental wipes"),
	),
)

var resetToolDef = mcp.NewTool("mood_reset",
	mcp.WithDescription("Reset the alert acknowledgment pointer, e.g. at a session boundary. The next cycle recounts the whole log."),
)
