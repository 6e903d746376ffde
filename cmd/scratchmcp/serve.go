package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/config"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/content"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/lifecycle"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/mcp"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/metrics"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/scheduler"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/search"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/shutdown"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/store"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/tenant"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/tools"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/validate"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/workerpool"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scratchpad MCP server (default if no subcommand given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*configPath)
		},
	}
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	version := cfg.Server.Version
	if Version != "dev" {
		version = Version
	}
	logger.Info("starting scratchmcp", "version", version, "storage_dir", cfg.Storage.Dir)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := os.MkdirAll(cfg.Storage.Dir, 0o755); err != nil {
		return fmt.Errorf("creating storage dir: %w", err)
	}
	dbPath := cfg.Storage.Dir + "/scratchpad.db"

	reg := prometheus.NewRegistry()
	var metricsRegistry *metrics.Registry
	if cfg.Transport.EnableMetrics {
		metricsRegistry = metrics.New(reg)
	}

	st, err := store.Open(dbPath, store.Limits{
		MaxScratchpads: cfg.Storage.MaxScratchpads,
		MaxCellsPerPad: cfg.Storage.MaxCellsPerPad,
		MaxCellBytes:   cfg.Storage.MaxCellBytes,
		Policy:         store.EvictionPolicy(cfg.Storage.EvictionPolicy),
	})
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer st.Close()
	if metricsRegistry != nil {
		st.SetMetrics(metricsRegistry)
	}

	var searchEngine *search.Engine
	if cfg.Search.Enable {
		embedder, err := search.NewEmbedder(cfg.Search)
		if err != nil {
			return fmt.Errorf("loading embedding model: %w", err)
		}
		index, err := search.NewIndex(embedder.Dimension())
		if err != nil {
			return fmt.Errorf("creating search index: %w", err)
		}
		existing, err := st.AllEmbeddings(ctx)
		if err != nil {
			return fmt.Errorf("loading existing embeddings: %w", err)
		}
		if err := index.Rebuild(existing); err != nil {
			return fmt.Errorf("rebuilding search index: %w", err)
		}
		logger.Info("semantic search enabled", "model", cfg.Search.EmbeddingModel, "vectors", len(existing))
		st.SetEmbedder(embedder, index)
		searchEngine = search.NewEngine(embedder, index)
		if metricsRegistry != nil {
			searchEngine.SetMetrics(metricsRegistry)
		}
	}

	tenants := tenant.New(cfg)
	if err := lifecycle.RunFirstEnableMigration(ctx, cfg, st, logger); err != nil {
		return fmt.Errorf("first-enable migration: %w", err)
	}

	pool := workerpool.New(runtime.NumCPU())
	pipeline := validate.New(pool, cfg.Server.ValidationTimeoutDuration())
	if metricsRegistry != nil {
		pipeline.SetMetrics(metricsRegistry)
	}

	registry := mcp.NewRegistry()
	tools.Register(registry, tools.Deps{
		Store:               st,
		Pipeline:            pipeline,
		Search:              searchEngine,
		SemanticSearchLimit: cfg.Search.SemanticSearchLimit,
	})
	registry.RegisterPrompt(&content.GuidePrompt{})
	registry.RegisterResource(&content.DataModelResource{})
	registry.RegisterResource(&content.ToolReferenceResource{})

	gate := shutdown.New()

	server := mcp.NewServer(registry, mcp.ServerInfo{
		Name:    cfg.Server.Name,
		Version: version,
	}, logger, tenants, gate, metricsRegistry)

	if cfg.Storage.EvictionPolicy == string(config.PolicyPreempt) && cfg.Storage.PreemptAgeDuration() > 0 {
		sched := scheduler.NewScheduler(logger)
		sched.AddJob(lifecycle.NewPreemptSweeper(st, cfg.Storage.PreemptAgeDuration(), logger), cfg.Storage.PreemptIntervalDuration())
		sched.Start(ctx)
		defer sched.Stop()
	}

	errCh := make(chan error, 2)
	running := 0

	if cfg.Transport.EnableHTTP {
		running++
		go func() {
			httpServer := mcp.NewHTTPServer(server, tenants, "*", sseePathOrEmpty(cfg), logger)
			mux := httpServer.Handler(cfg.Transport.HTTPPath).(*http.ServeMux)
			if cfg.Transport.EnableMetrics {
				mux.Handle(cfg.Transport.MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			}
			addr := fmt.Sprintf("%s:%d", cfg.Transport.HTTPHost, cfg.Transport.HTTPPort)
			logger.Info("http transport listening", "addr", addr, "mcp_path", cfg.Transport.HTTPPath)
			httpSrv := &http.Server{Addr: addr, Handler: mux}
			go func() {
				<-ctx.Done()
				_ = httpSrv.Close()
			}()
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- fmt.Errorf("http transport: %w", err)
				return
			}
			errCh <- nil
		}()
	}

	if cfg.Transport.EnableStdio {
		running++
		go func() {
			errCh <- server.Run(ctx)
		}()
	}

	var firstErr error
	for i := 0; i < running; i++ {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}

	gate.BeginDraining()
	gate.WaitDrained(context.Background(), cfg.Server.ShutdownTimeoutDuration())
	logger.Info("scratchmcp server stopped")
	return firstErr
}

func sseePathOrEmpty(cfg *config.Config) string {
	if cfg.Transport.EnableSSE {
		return cfg.Transport.SSEPath
	}
	return ""
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
