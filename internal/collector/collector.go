package collector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shreyabiradar07/causa/internal/model"
	"github.com/shreyabiradar07/causa/internal/redact"
)

// DefaultTailLines is the log tail length collected per pod.
const DefaultTailLines int64 = 500

// Collector builds the diagnostic context for one pod. Each section fetch is
// independently fault tolerant: a failure is captured as an inline error
// string in that section while the remaining sections still collect, so a
// context is always produced.
type Collector struct {
	kube             KubeClient
	metrics          *MetricSummarizer
	profiling        ProfilingSource
	profilingEnabled bool
	redactor         *redact.Redactor
	logger           *slog.Logger
	tailLines        int64
}

// Option configures a Collector.
type Option func(*Collector)

// WithProfiling enables profiling collection through the given source.
func WithProfiling(src ProfilingSource) Option {
	return func(c *Collector) {
		c.profiling = src
		c.profilingEnabled = src != nil
	}
}

// WithRedactor scrubs collected logs through the given redactor.
func WithRedactor(r *redact.Redactor) Option {
	return func(c *Collector) {
		c.redactor = r
	}
}

// WithTailLines overrides the number of log lines collected.
func WithTailLines(n int64) Option {
	return func(c *Collector) {
		if n > 0 {
			c.tailLines = n
		}
	}
}

// WithLogger sets the logger for the Collector.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Collector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Collector over the given Kubernetes client and metric
// summarizer. Profiling is disabled unless WithProfiling is supplied.
func New(kube KubeClient, metrics *MetricSummarizer, opts ...Option) (*Collector, error) {
	if kube == nil {
		return nil, fmt.Errorf("collector: kube client must not be nil")
	}
	if metrics == nil {
		return nil, fmt.Errorf("collector: metric summarizer must not be nil")
	}

	c := &Collector{
		kube:      kube,
		metrics:   metrics,
		logger:    slog.Default(),
		tailLines: DefaultTailLines,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Collect gathers all five sections sequentially and returns the assembled
// context. It never fails; the worst case is a context in which every section
// is an error line.
func (c *Collector) Collect(ctx context.Context, namespace, pod string) model.DiagnosticContext {
	c.logger.Info("starting data collection", "namespace", namespace, "pod", pod)

	dc := model.DiagnosticContext{
		PodStatusText: c.fetchPodStatus(ctx, namespace, pod),
		EventsText:    c.fetchEvents(ctx, namespace, pod),
		MetricsText:   c.metrics.Summarize(ctx, namespace, pod),
		LogsText:      c.fetchLogs(ctx, namespace, pod),
		ProfilingText: c.fetchProfiling(ctx, pod),
	}

	c.logger.Info("data collection complete", "namespace", namespace, "pod", pod,
		"context_bytes", len(dc.FullContext()))
	return dc
}
