package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	corecfg "github.com/aevon-lab/rollbar-metrics/internal/core/config"
	"github.com/aevon-lab/rollbar-metrics/internal/core/storage"
	"github.com/aevon-lab/rollbar-metrics/internal/core/storage/postgres"
	"github.com/aevon-lab/rollbar-metrics/internal/logging"
	"github.com/aevon-lab/rollbar-metrics/internal/migrations"
	"github.com/aevon-lab/rollbar-metrics/internal/report"
	"github.com/aevon-lab/rollbar-metrics/internal/resolver"
	"github.com/aevon-lab/rollbar-metrics/internal/rollbar"
	"github.com/aevon-lab/rollbar-metrics/internal/sink"
	"github.com/google/uuid"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one invocation and returns the process exit code. Failed
// queries and sink writes are partial failures and still exit 0.
func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("rollbar-metrics", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "rollbar-metrics.yaml", "Path to configuration file")
	envPath := flags.String("env", ".env", "Path to an optional dotenv file")
	reports := flags.String("report", "", "Comma-separated report names (default: all)")
	list := flags.Bool("list", false, "List the available reports and exit")
	startFlag := flags.String("start", "", "Window start, RFC3339 (default: end minus the report window)")
	endFlag := flags.String("end", "", "Window end, RFC3339 (default: now)")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	// 0. Bootstrap logger until the configured one exists
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, nil)))

	// 1. Load Configuration
	cfg, err := corecfg.Load(optionalFile(*configPath), *envPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		return 1
	}

	logger, logCloser, err := logging.New(cfg.Log, stderr)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		return 1
	}
	defer logCloser.Close()
	slog.SetDefault(logger)
	slog.Info("Loaded config", "config", cfg)

	// 2. Report definitions
	repo, err := report.NewRepository(cfg.Reports.Dir)
	if err != nil {
		slog.Error("Failed to load report definitions", "dir", cfg.Reports.Dir, "error", err)
		return 1
	}
	if *list {
		for _, def := range repo.List() {
			fmt.Fprintf(stdout, "%-24s window=%-4s %s\n", def.Name, def.Window, def.Description)
		}
		return 0
	}
	defs, err := repo.Select(splitNames(*reports))
	if err != nil {
		slog.Error("Failed to select reports", "error", err)
		return 1
	}

	start, end, err := parseBounds(*startFlag, *endFlag)
	if err != nil {
		slog.Error("Invalid time bounds", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Optional storage (PostgreSQL)
	var store storage.ItemMetricsStore
	if cfg.Database.Enabled {
		db, err := postgres.Open(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
		if err != nil {
			slog.Error("Failed to initialize database", "error", err)
			return 1
		}
		defer db.Close()

		if err := migrations.Run(db, cfg.Database.AutoMigrate); err != nil {
			slog.Error("Failed to run database migrations", "error", err)
			return 1
		}
		adapter, err := postgres.NewAdapter(ctx, db)
		if err != nil {
			slog.Error("Failed to initialize storage", "error", err)
			return 1
		}
		store = adapter
	}

	// 4. Projects
	client := rollbar.NewClient(cfg.Rollbar.BaseURL, cfg.Rollbar.Timeout)
	projects, err := resolveProjects(ctx, cfg, client)
	if err != nil {
		slog.Error("Failed to resolve projects", "error", err)
		return 1
	}
	if len(projects) == 0 {
		slog.Warn("No project has a usable read token, nothing to query")
	}

	// 5. Run reports
	runID := uuid.New()
	open := func(spec sink.Spec) (sink.Sink, error) {
		return sink.New(spec, sink.Deps{
			Out:       stdout,
			OutputDir: cfg.Reports.OutputDir,
			Store:     store,
		})
	}
	runner := report.NewRunner(client, runID.String(), open)

	slog.Info("Starting run", "run_id", runID, "mode", cfg.Mode(), "reports", len(defs), "projects", len(projects))
	var failures int
	for _, def := range defs {
		defStart := start
		if defStart.IsZero() {
			defStart = end.Add(-def.WindowSize())
		}

		stats, err := runner.Run(ctx, def, projects, defStart.Unix(), end.Unix())
		if err != nil {
			if ctx.Err() != nil {
				slog.Warn("Run interrupted", "report", def.Name, "error", err)
				break
			}
			slog.Error("Report aborted", "report", def.Name, "error", err)
			failures++
			continue
		}
		failures += stats.Failures + stats.SinkFailures
	}

	if store != nil {
		count, err := store.CountRun(context.Background(), runID)
		if err != nil {
			slog.Warn("Failed to count stored records", "run_id", runID, "error", err)
		} else {
			slog.Info("Stored records", "run_id", runID, "count", count)
		}
	}

	slog.Info("Run complete", "run_id", runID, "failures", failures)
	return 0
}

// resolveProjects discovers projects with the account token, or falls back
// to the single project named in the config when only a project token is set.
func resolveProjects(ctx context.Context, cfg *corecfg.Config, client *rollbar.Client) ([]rollbar.Project, error) {
	if cfg.Mode() == corecfg.ModeAccount {
		return resolver.New(client).Resolve(ctx, cfg.Rollbar.AccountToken, cfg.Rollbar.AllowedTokenNames)
	}
	return []rollbar.Project{resolver.SingleProject(cfg.Rollbar.ProjectName, cfg.Rollbar.ProjectToken)}, nil
}

// optionalFile returns path when it exists so a missing default config file
// is not an error.
func optionalFile(path string) string {
	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		slog.Info("Config file not found, using defaults and environment", "path", path)
		return ""
	}
	return path
}

func splitNames(s string) []string {
	var names []string
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// parseBounds returns a zero start when none was given; the report window
// decides it then.
func parseBounds(startFlag, endFlag string) (time.Time, time.Time, error) {
	end := time.Now().UTC()
	if endFlag != "" {
		t, err := time.Parse(time.RFC3339, endFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -end: %w", err)
		}
		end = t
	}

	var start time.Time
	if startFlag != "" {
		t, err := time.Parse(time.RFC3339, startFlag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -start: %w", err)
		}
		if !t.Before(end) {
			return time.Time{}, time.Time{}, fmt.Errorf("-start %s is not before -end %s", startFlag, end.Format(time.RFC3339))
		}
		start = t
	}
	return start, end, nil
}
