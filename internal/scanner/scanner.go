// Package scanner periodically sweeps the fleet for labeled workloads and
// runs the diagnostic pipeline against each of them.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/shreyabiradar07/causa/internal/metrics"
	"github.com/shreyabiradar07/causa/internal/model"
)

const (
	// DefaultInitialDelay gives informal startup dependencies (Prometheus,
	// the API server) a moment before the first sweep.
	DefaultInitialDelay = 10 * time.Second

	// DefaultConcurrency bounds parallel analyses per sweep.
	DefaultConcurrency = 2
)

// PodLister lists pods matching a label selector across namespaces.
type PodLister interface {
	ListPods(ctx context.Context, namespace string, opts metav1.ListOptions) (*corev1.PodList, error)
}

// Analyzer runs one diagnostic run for a pod. Implemented by the pipeline.
type Analyzer interface {
	Run(ctx context.Context, namespace, pod string) (*model.RcaReport, error)
}

// Scanner sweeps all namespaces for pods carrying the opt-in label and
// analyzes each one. Per-pod failures are logged and counted but never stop
// the sweep or the scan loop.
type Scanner struct {
	lister        PodLister
	analyzer      Analyzer
	labelSelector string
	interval      time.Duration
	initialDelay  time.Duration
	concurrency   int
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithInitialDelay overrides the delay before the first sweep.
func WithInitialDelay(d time.Duration) Option {
	return func(s *Scanner) {
		if d >= 0 {
			s.initialDelay = d
		}
	}
}

// WithConcurrency bounds the number of pods analyzed in parallel per sweep.
func WithConcurrency(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithMetrics enables per-target instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scanner) {
		s.metrics = m
	}
}

// WithLogger sets the logger for the Scanner.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Scanner sweeping at the given interval for pods matching
// labelSelector, e.g. "rca.enabled=true".
func New(lister PodLister, analyzer Analyzer, labelSelector string, interval time.Duration, opts ...Option) (*Scanner, error) {
	if lister == nil {
		return nil, fmt.Errorf("scanner: pod lister must not be nil")
	}
	if analyzer == nil {
		return nil, fmt.Errorf("scanner: analyzer must not be nil")
	}
	if labelSelector == "" {
		return nil, fmt.Errorf("scanner: label selector must not be empty")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("scanner: interval must be positive, got %s", interval)
	}

	s := &Scanner{
		lister:        lister,
		analyzer:      analyzer,
		labelSelector: labelSelector,
		interval:      interval,
		initialDelay:  DefaultInitialDelay,
		concurrency:   DefaultConcurrency,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run blocks, sweeping the fleet on every tick until the context is
// cancelled. It always returns the context's error.
func (s *Scanner) Run(ctx context.Context) error {
	s.logger.Info("fleet scanner starting",
		"label_selector", s.labelSelector,
		"interval", s.interval,
		"initial_delay", s.initialDelay)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.initialDelay):
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.Sweep(ctx)
		select {
		case <-ctx.Done():
			s.logger.Info("fleet scanner stopping")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Sweep runs one pass: list labeled pods in all namespaces and analyze each
// with bounded concurrency. Target failures are isolated per pod.
func (s *Scanner) Sweep(ctx context.Context) {
	s.logger.Info("starting workload sweep", "label_selector", s.labelSelector)

	pods, err := s.lister.ListPods(ctx, metav1.NamespaceAll, metav1.ListOptions{
		LabelSelector: s.labelSelector,
	})
	if err != nil {
		s.logger.Error("workload sweep failed to list pods", "error", err)
		return
	}
	if len(pods.Items) == 0 {
		s.logger.Info("no pods matched the scan label", "label_selector", s.labelSelector)
		return
	}
	s.logger.Info("sweeping matched pods", "count", len(pods.Items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, pod := range pods.Items {
		namespace, name := pod.Namespace, pod.Name
		g.Go(func() error {
			s.analyzeTarget(gctx, namespace, name)
			// Target errors are handled in analyzeTarget; never fail the group.
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("workload sweep complete", "count", len(pods.Items))
}

func (s *Scanner) analyzeTarget(ctx context.Context, namespace, name string) {
	report, err := s.analyzer.Run(ctx, namespace, name)
	if err != nil {
		s.logger.Error("analysis failed for pod", "namespace", namespace, "pod", name, "error", err)
		s.countTarget("error")
		return
	}

	result := "anomaly"
	if report.Title == model.HealthyReport().Title {
		result = "healthy"
	}
	s.logger.Info("analysis completed for pod",
		"namespace", namespace, "pod", name,
		"title", report.Title, "confidence", report.ValidationConfidence)
	s.countTarget(result)
}

func (s *Scanner) countTarget(result string) {
	if s.metrics != nil {
		s.metrics.ScanTargetsTotal.WithLabelValues(result).Inc()
	}
}
