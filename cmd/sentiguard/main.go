package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RAVBLACK/sentiguard/internal/alert"
	"github.com/RAVBLACK/sentiguard/internal/config"
	"github.com/RAVBLACK/sentiguard/internal/db"
	"github.com/RAVBLACK/sentiguard/internal/enrich"
	"github.com/RAVBLACK/sentiguard/internal/history"
	"github.com/RAVBLACK/sentiguard/internal/mcp"
	"github.com/RAVBLACK/sentiguard/internal/monitor"
	"github.com/RAVBLACK/sentiguard/internal/sentiment"
	"github.com/RAVBLACK/sentiguard/internal/source"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"analyze": true, "check": true, "watch": true,
	"history": true, "summary": true, "alerts": true,
	"clear": true, "reset": true,
	"help": true,
}

// app bundles everything the commands and the tool server share.
type app struct {
	db        *sql.DB
	cfg       *config.Config
	baseDir   string
	lineLog   *source.LineLog
	store     *history.Store
	attention *history.AttentionLog
	pipeline  *sentiment.Pipeline
	agg       *alert.Aggregator
	monitor   *monitor.Monitor
	enricher  enrich.Enricher
}

// newApp wires the application over an initialized database.
func newApp(database *sql.DB, cfg *config.Config, baseDir string) *app {
	sourcePath := cfg.SourcePath
	if sourcePath == "" {
		sourcePath = source.DefaultPath(baseDir)
	}

	lineLog := source.NewLineLog(sourcePath)
	store := history.NewStore(database, cfg.HistoryMaxEntries)
	attention := history.NewAttentionLog(database, cfg.AttentionLogMaxEntries)
	pipeline := sentiment.NewPipeline(attention)

	// The aggregator rescans the unacknowledged tail every cycle, so it
	// runs without the attention sink; only fresh lines get logged.
	agg := alert.NewAggregator(database, sentiment.NewPipeline(nil), cfg.BreachThreshold)

	var notifier alert.Notifier
	if cfg.GuardianEmail != "" && cfg.SMTPFrom != "" {
		notifier = alert.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPPassword)
	}
	mon := monitor.NewMonitor(lineLog, pipeline, store, agg, notifier, cfg.GuardianEmail, cfg.AlertLimit)

	var enricher enrich.Enricher = enrich.NewLocal()
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		quota := enrich.NewQuota(baseDir, cfg.EnrichmentMaxDailyCalls)
		enricher = enrich.NewOpenAI(key, cfg.EnrichmentModel, cfg.EnrichmentTimeout(), quota)
	}

	return &app{
		db:        database,
		cfg:       cfg,
		baseDir:   baseDir,
		lineLog:   lineLog,
		store:     store,
		attention: attention,
		pipeline:  pipeline,
		agg:       agg,
		monitor:   mon,
		enricher:  enricher,
	}
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false // Default → MCP server
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   ___          _   _  ___                  _
  / __| ___ _ _| |_(_)/ __|_  _ __ _ _ _ __| |
  \__ \/ -_) ' \  _| | (_ | || / _' | '_/ _' |
  |___/\___|_||_\__|_|\___|\_,_\__,_|_| \__,_|

  Context-aware mood monitoring

  Usage: sentiguard <command> [options]
         sentiguard --help

  MCP server mode requires piped input.`)
}

func main() {
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		cliApp := newCLIApp(nil)
		if err := cliApp.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}

	baseDir := filepath.Join(homeDir, ".sentiguard")

	database, err := db.Init(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	cfg, err := config.Load(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	db.ConfigurePool(database, cfg)

	a := newApp(database, cfg, baseDir)

	if isCLIMode() {
		cliApp := newCLIApp(a)
		if err := cliApp.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'sentiguard --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	h := mcp.NewHandlers(a.db, a.pipeline, a.lineLog, a.store, a.attention, a.agg, a.monitor, a.enricher)
	if err := mcp.Run(h, Version, cfg.DisabledTools); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
