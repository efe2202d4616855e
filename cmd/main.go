package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/burnup/internal/adapters/report"
	"github.com/okian/burnup/internal/adapters/trello"
	"github.com/okian/burnup/internal/app"
	"github.com/okian/burnup/internal/config"
	"github.com/okian/burnup/internal/domain/classify"
	"github.com/okian/burnup/pkg/logger"
	"github.com/okian/burnup/pkg/metrics"
)

// Metrics listener timeout constants.
const (
	metricsReadHeaderTimeout = 5 * time.Second
)

func main() {
	var (
		board  = flag.String("board", "", "Board name prefix (overrides BURNUP_BOARD)")
		output = flag.String("output", "", "Report destination: path, file:// or s3:// (overrides BURNUP_OUTPUT)")
		help   = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *board != "" {
		cfg.Board = *board
	}
	if *output != "" {
		cfg.Output = *output
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	runID := uuid.NewString()
	log = log.Named("burnup")
	log.Debug(ctx, "starting run", logger.String("run_id", runID))

	// Serve metrics while the run is in flight, when configured.
	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, log, cfg.MetricsAddr)
	}

	client := trello.New(cfg.APIKey, cfg.APIToken,
		trello.WithBaseURL(cfg.BaseURL),
		trello.WithTimeout(time.Duration(cfg.HTTPTimeoutSeconds)*time.Second),
		trello.WithPageLimit(cfg.PageLimit),
	)
	rules := classify.New(
		classify.WithRejectLists(cfg.RejectLists()),
		classify.WithFinishLists(cfg.FinishedLists()),
	)
	svc := app.New(
		app.WithSource(client),
		app.WithRules(rules),
		app.WithBoard(cfg.Board),
		app.WithDelimiter([]rune(cfg.Delimiter)[0]),
		app.WithLogger(log),
	)

	if err := run(ctx, svc, cfg, flag.Arg(0)); err != nil {
		log.Error(ctx, "run failed", logger.String("run_id", runID), logger.Error(err))
		os.Exit(1)
	}
}

// run dispatches the subcommand. The default is the velocity report.
func run(ctx context.Context, svc *app.Service, cfg *config.Config, command string) error {
	switch command {
	case "", "velocity":
		w, closer, err := report.CreateWriter(ctx, cfg.Output)
		if err != nil {
			return err
		}
		if err := svc.Velocity(ctx, w); err != nil {
			_ = closer.Close()
			return err
		}
		return closer.Close()
	case "boards":
		boards, err := svc.Boards(ctx)
		if err != nil {
			return err
		}
		for _, b := range boards {
			os.Stdout.WriteString(b.Name + "\n")
		}
		return nil
	case "lists":
		lists, err := svc.Lists(ctx)
		if err != nil {
			return err
		}
		for _, l := range lists {
			os.Stdout.WriteString(l.Name + "\n")
		}
		return nil
	default:
		showHelp()
		return nil
	}
}

// serveMetrics exposes the Prometheus registry until the run finishes.
func serveMetrics(ctx context.Context, log logger.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	log.Debug(ctx, "serving metrics", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warn(ctx, "metrics listener failed", logger.Error(err))
	}
}

// showHelp prints usage information.
func showHelp() {
	os.Stdout.WriteString(`burnup - board velocity counts
==============================

Counts cards created, removed and finished per day on one board and writes
cumulative totals as one delimited row per date.

Usage:
  burnup [options] [command]

Commands:
  velocity   Write the burn-up report (default)
  boards     Print all boards visible to the credentials
  lists      Print all lists on the configured board

Options:
  -board string
        Board name prefix (overrides BURNUP_BOARD)
  -output string
        Report destination: path, file:// or s3:// (overrides BURNUP_OUTPUT)
  -help
        Show help

Configuration is read from BURNUP_* environment variables, optionally
layered over a YAML file named by BURNUP_CONFIG. Keys: api_key, api_token,
board, reject, finished, output, delimiter, base_url, log_level,
http_timeout_seconds, page_limit, metrics_addr. The reject and finished
values are "|"-separated list names.
`)
}
