// Package main is the entrypoint for the causa diagnostics agent. It loads
// configuration, wires the collector, reasoner backend, and pipeline, and
// serves the analysis API alongside health and metrics endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/shreyabiradar07/causa/internal/api"
	"github.com/shreyabiradar07/causa/internal/auth"
	"github.com/shreyabiradar07/causa/internal/collector"
	"github.com/shreyabiradar07/causa/internal/config"
	"github.com/shreyabiradar07/causa/internal/health"
	"github.com/shreyabiradar07/causa/internal/knowledge"
	"github.com/shreyabiradar07/causa/internal/metrics"
	"github.com/shreyabiradar07/causa/internal/pipeline"
	"github.com/shreyabiradar07/causa/internal/profiling"
	"github.com/shreyabiradar07/causa/internal/promql"
	"github.com/shreyabiradar07/causa/internal/reasoner"
	"github.com/shreyabiradar07/causa/internal/reasoner/prompt"
	"github.com/shreyabiradar07/causa/internal/redact"
	"github.com/shreyabiradar07/causa/internal/scanner"
)

// heartbeatInterval is how often the main loop refreshes the liveness
// heartbeat. Must stay well under health.HeartbeatTimeout.
const heartbeatInterval = 10 * time.Second

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "path to the agent configuration file")
	flag.Parse()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("invalid configuration", "path", *configPath, "error", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		slog.Error("building logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	logger.Info("starting causa agent", "backend", cfg.Reasoner.Backend)

	if err := run(cfg, logger); err != nil {
		logger.Error("agent exited with error", "error", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger from the logging configuration.
func newLogger(cfg config.LoggingConfig) (*slog.Logger, error) {
	level, err := config.ParseLogLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		return nil, fmt.Errorf("invalid log format %q: must be json or text", cfg.Format)
	}
	return slog.New(handler), nil
}

// ownNamespace resolves the namespace the agent runs in, for defaulting
// secret references. The POD_NAMESPACE env var is set via the downward API.
func ownNamespace() string {
	if ns := os.Getenv("POD_NAMESPACE"); ns != "" {
		return ns
	}
	return "default"
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// Kubernetes client.
	restConfig, err := rest.InClusterConfig()
	if err != nil {
		return fmt.Errorf("building in-cluster config: %w", err)
	}
	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return fmt.Errorf("creating kubernetes clientset: %w", err)
	}
	kubeClient, err := collector.NewClient(clientset)
	if err != nil {
		return fmt.Errorf("creating collector client: %w", err)
	}

	// Prometheus metrics.
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	registry.MustRegister(prometheus.NewGoCollector())
	m := metrics.NewMetrics(registry)

	// Health probes.
	healthHandler := health.NewHandler(health.WithLogger(logger))
	healthSrv, err := health.NewServer(healthHandler, cfg.Health.Port)
	if err != nil {
		return fmt.Errorf("creating health server: %w", err)
	}
	go func() {
		if serveErr := healthSrv.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			logger.Error("health server failed", "error", serveErr)
		}
	}()

	if _, err := clientset.Discovery().ServerVersion(); err != nil {
		logger.Warn("API server not reachable at startup", "error", err)
	} else {
		healthHandler.SetAPIServerReachable(true)
	}

	// Collector wiring.
	tokenProvider := auth.NewTokenProvider(
		auth.WithPath(cfg.Prometheus.TokenPath),
		auth.WithLogger(logger))
	promClient, err := promql.NewClient(cfg.Prometheus.URL,
		promql.WithAuthHeader(tokenProvider.AuthorizationHeader),
		promql.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("creating prometheus client: %w", err)
	}
	summarizer, err := collector.NewMetricSummarizer(kubeClient, promClient, logger)
	if err != nil {
		return fmt.Errorf("creating metric summarizer: %w", err)
	}
	redactor, err := redact.New(cfg.Collection.RedactPatterns, redact.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("compiling redact patterns: %w", err)
	}

	collectorOpts := []collector.Option{
		collector.WithRedactor(redactor),
		collector.WithTailLines(cfg.Collection.TailLines),
		collector.WithLogger(logger),
	}
	if cfg.Cryostat.Enabled {
		cryostat, err := profiling.NewCryostatClient(cfg.Cryostat.URL,
			profiling.WithAuthHeader(tokenProvider.AuthorizationHeader),
			profiling.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("creating cryostat client: %w", err)
		}
		collectorOpts = append(collectorOpts, collector.WithProfiling(cryostat))
	}
	coll, err := collector.New(kubeClient, summarizer, collectorOpts...)
	if err != nil {
		return fmt.Errorf("creating collector: %w", err)
	}

	// Prompt builder, optionally enriched with runbook snippets.
	var promptOpts []prompt.Option
	if cfg.Knowledge.Enabled {
		store, err := knowledge.NewStore(cfg.Knowledge.Dir, knowledge.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("loading knowledge store: %w", err)
		}
		promptOpts = append(promptOpts, prompt.WithSnippets(store, cfg.Knowledge.SnippetLimit))
	}
	prompter := prompt.NewBuilder(promptOpts...)

	backend, err := buildBackend(ctx, cfg.Reasoner, clientset, prompter, logger)
	if err != nil {
		return fmt.Errorf("building reasoner backend: %w", err)
	}
	healthHandler.SetReasonerReady(true)
	logger.Info("reasoner backend ready", "backend", backend.Name())

	pipe, err := pipeline.New(coll, backend, backend, backend,
		pipeline.WithMetrics(m),
		pipeline.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("creating pipeline: %w", err)
	}

	// Analysis API.
	apiSrv, err := api.NewServer(pipe, cfg.Server.Port,
		api.WithMetrics(m),
		api.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("creating api server: %w", err)
	}
	go func() {
		if serveErr := apiSrv.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			logger.Error("api server failed", "error", serveErr)
		}
	}()

	// Metrics endpoint.
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler:           metricsMux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if serveErr := metricsSrv.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
				logger.Error("metrics server failed", "error", serveErr)
			}
		}()
	}

	// Fleet scanner.
	if cfg.Scanner.Enabled {
		sc, err := scanner.New(kubeClient, pipe, cfg.Scanner.LabelSelector, cfg.Scanner.Interval,
			scanner.WithInitialDelay(cfg.Scanner.InitialDelay),
			scanner.WithConcurrency(cfg.Scanner.Concurrency),
			scanner.WithMetrics(m),
			scanner.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("creating scanner: %w", err)
		}
		go func() {
			if runErr := sc.Run(ctx); runErr != nil && runErr != context.Canceled {
				logger.Error("scanner stopped", "error", runErr)
			}
		}()
	}

	logger.Info("agent initialized",
		"apiPort", cfg.Server.Port,
		"healthPort", cfg.Health.Port,
		"metricsEnabled", cfg.Metrics.Enabled,
		"scannerEnabled", cfg.Scanner.Enabled)

	// Heartbeat until shutdown.
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			healthHandler.UpdateHeartbeat()
		case <-ctx.Done():
			logger.Info("shutdown signal received, draining")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer shutdownCancel()

			if err := apiSrv.Shutdown(shutdownCtx); err != nil {
				logger.Error("api server shutdown error", "error", err)
			}
			if metricsSrv != nil {
				if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
					logger.Error("metrics server shutdown error", "error", err)
				}
			}
			if err := healthSrv.Shutdown(shutdownCtx); err != nil {
				logger.Error("health server shutdown error", "error", err)
			}

			logger.Info("agent stopped")
			return nil
		}
	}
}

// buildBackend constructs the configured reasoner backend.
func buildBackend(ctx context.Context, cfg config.ReasonerConfig, clientset kubernetes.Interface, prompter *prompt.Builder, logger *slog.Logger) (reasoner.Backend, error) {
	switch cfg.Backend {
	case "claude":
		secretReader, err := reasoner.NewKubeSecretReader(clientset)
		if err != nil {
			return nil, err
		}
		namespace := cfg.Claude.APIKeySecret.Namespace
		if namespace == "" {
			namespace = ownNamespace()
		}
		return reasoner.NewClaudeBackend(reasoner.ClaudeConfig{
			Model:          cfg.Claude.Model,
			DetectorModel:  cfg.Claude.DetectorModel,
			AnalystModel:   cfg.Claude.AnalystModel,
			ValidatorModel: cfg.Claude.ValidatorModel,
			MaxTokens:      cfg.Claude.MaxTokens,
			Temperature:    cfg.Claude.Temperature,
			APIKeyRef: reasoner.SecretRef{
				Namespace: namespace,
				Name:      cfg.Claude.APIKeySecret.Name,
				Key:       cfg.Claude.APIKeySecret.Key,
			},
		}, secretReader, prompter, logger)
	case "bedrock":
		return reasoner.NewBedrockBackend(ctx, reasoner.BedrockConfig{
			Region:      cfg.Bedrock.Region,
			ModelID:     cfg.Bedrock.ModelID,
			MaxTokens:   cfg.Bedrock.MaxTokens,
			Temperature: cfg.Bedrock.Temperature,
		}, prompter, logger)
	case "static":
		return reasoner.NewStaticBackend(cfg.Static.Anomaly), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
