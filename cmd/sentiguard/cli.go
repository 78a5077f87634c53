package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/RAVBLACK/sentiguard/internal/alert"
	"github.com/RAVBLACK/sentiguard/internal/db"
	"github.com/RAVBLACK/sentiguard/internal/errors"
	"github.com/RAVBLACK/sentiguard/internal/history"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(a *app) *cli.App {
	cliApp := &cli.App{
		Name:    "sentiguard",
		Usage:   "Context-aware mood monitoring",
		Version: Version,
		Commands: []*cli.Command{
			analyzeCmd(a),
			checkCmd(a),
			watchCmd(a),
			historyCmd(a),
			summaryCmd(a),
			alertsCmd(a),
			clearCmd(a),
			resetCmd(a),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	cliApp.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return cliApp
}

// analyzeCmd creates the analyze command.
func analyzeCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Analyze a text sample (argument or stdin)",
		ArgsUsage: "[text]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "enrich", Aliases: []string{"e"}, Usage: "Include a supportive message"},
		},
		Action: func(c *cli.Context) error {
			text := strings.Join(c.Args().Slice(), " ")
			if text == "" && stdinHasData() {
				var err error
				text, err = readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
			}
			if text == "" {
				return outputError(errors.NewInvalidRequest("text is required (argument or stdin)"))
			}

			result := a.pipeline.Analyze(text)

			out := map[string]any{"result": result}
			if c.Bool("enrich") {
				msg, err := a.enricher.Enrich(context.Background(), result, "")
				if err == nil {
					out["message"] = msg
				}
			}
			return outputJSON(out)
		},
	}
}

// checkCmd creates the check command.
func checkCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Run one monitoring cycle against the collected text log",
		Action: func(c *cli.Context) error {
			report, err := a.monitor.Check()
			if err != nil {
				return outputError(err)
			}

			out := map[string]any{
				"source_ok":    report.SourceOK,
				"new_lines":    report.NewLines,
				"breach_count": report.Observation.BreachCount,
				"total_lines":  report.Observation.TotalLines,
			}
			if report.Fired != nil {
				out["alert"] = report.Fired
				out["delivered"] = report.Delivered
			}
			if latest, err := a.store.Latest(); err == nil {
				out["latest_score"] = latest.Score
				out["latest_ts"] = latest.Timestamp
			}
			return outputJSON(out)
		},
	}
}

// watchCmd creates the watch command.
func watchCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Run the background monitor until interrupted",
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			interval := a.cfg.PollInterval()
			fmt.Fprintf(os.Stderr, "watching %s every %s\n", a.lineLog.Path(), interval)
			a.monitor.Watch(ctx, interval)
			return nil
		},
	}
}

// historyCmd creates the history command.
func historyCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show the aggregated mood history",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "period", Aliases: []string{"p"}, Value: "daily", Usage: "Bucket granularity: daily|weekly|monthly"},
		},
		Action: func(c *cli.Context) error {
			buckets, err := a.store.Aggregate(history.Period(c.String("period")))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{
				"period":  c.String("period"),
				"buckets": buckets,
			})
		},
	}
}

// summaryCmd creates the summary command.
func summaryCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "summary",
		Usage: "Show whole-history mood statistics",
		Action: func(c *cli.Context) error {
			summary, err := a.store.Summarize()
			if err != nil {
				return outputError(err)
			}
			return outputJSON(summary)
		},
	}
}

// alertsCmd creates the alerts command.
func alertsCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "alerts",
		Usage: "List fired alerts and recent needs-attention entries",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum entries to show (0 = all)"},
			&cli.BoolFlag{Name: "report", Aliases: []string{"r"}, Usage: "Render the newest alert as a mood report"},
		},
		Action: func(c *cli.Context) error {
			limit := c.Int("limit")
			if limit < 0 {
				return outputError(errors.NewInvalidRequest("limit must be >= 0"))
			}

			alerts, err := db.ListAlerts(a.db, limit)
			if err != nil {
				return outputError(err)
			}

			if c.Bool("report") {
				if len(alerts) == 0 {
					return outputError(errors.NewNotFound("alert"))
				}
				summary, err := a.store.Summarize()
				if err != nil {
					return outputError(err)
				}
				trend, err := a.store.Aggregate(history.PeriodDaily)
				if err != nil {
					return outputError(err)
				}
				report := alert.BuildReport(alerts[0], summary, trend)
				fmt.Println(report.Markdown)
				return nil
			}
			attention, err := a.attention.List(limit)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{
				"alerts":    alerts,
				"attention": attention,
			})
		},
	}
}

// clearCmd creates the clear command.
func clearCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Wipe all collected data (history, logs, alerts). Irreversible.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm the wipe"},
		},
		Action: func(c *cli.Context) error {
			if !c.Bool("yes") {
				return outputError(errors.NewInvalidRequest("pass --yes to confirm wiping all data"))
			}

			if err := a.store.Clear(); err != nil {
				return outputError(err)
			}
			if err := a.attention.Clear(); err != nil {
				return outputError(err)
			}
			if err := db.ClearAlerts(a.db); err != nil {
				return outputError(err)
			}
			if err := a.agg.Reset(); err != nil {
				return outputError(err)
			}
			if err := a.lineLog.Clear(); err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"cleared": true})
		},
	}
}

// resetCmd creates the reset command.
func resetCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Reset the alert acknowledgment pointer (session boundary)",
		Action: func(c *cli.Context) error {
			if err := a.agg.Reset(); err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"reset": true})
		},
	}
}

// Output helpers

// outputJSON prints v as indented JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats an error for the CLI and exits non-zero.
func outputError(err error) error {
	if sErr, ok := err.(*errors.SentiError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", sErr.Code, sErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData reports whether stdin is piped (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all of stdin, trimmed.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
