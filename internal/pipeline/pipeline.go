// Package pipeline orchestrates one diagnostic run: collect the context,
// detect an anomaly, and either short-circuit on a healthy workload or carry
// the run through analysis and validation.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shreyabiradar07/causa/internal/metrics"
	"github.com/shreyabiradar07/causa/internal/model"
	"github.com/shreyabiradar07/causa/internal/reasoner"
)

// Collector produces the diagnostic context for a pod. Collection never
// fails as a whole; broken sections arrive as inline error text.
type Collector interface {
	Collect(ctx context.Context, namespace, pod string) model.DiagnosticContext
}

// Pipeline runs the collect, detect, analyze, validate sequence. Runs are
// stateless: nothing is shared between invocations, so a Pipeline is safe
// for concurrent use by the API server and the fleet scanner.
type Pipeline struct {
	collector Collector
	detector  reasoner.Detector
	analyst   reasoner.Analyst
	validator reasoner.Validator
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMetrics enables per-stage instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithLogger sets the logger for the Pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Pipeline. All four collaborators are required; the three
// reasoning capabilities may be a single backend or distinct ones.
func New(collector Collector, detector reasoner.Detector, analyst reasoner.Analyst, validator reasoner.Validator, opts ...Option) (*Pipeline, error) {
	if collector == nil {
		return nil, fmt.Errorf("pipeline: collector must not be nil")
	}
	if detector == nil {
		return nil, fmt.Errorf("pipeline: detector must not be nil")
	}
	if analyst == nil {
		return nil, fmt.Errorf("pipeline: analyst must not be nil")
	}
	if validator == nil {
		return nil, fmt.Errorf("pipeline: validator must not be nil")
	}

	p := &Pipeline{
		collector: collector,
		detector:  detector,
		analyst:   analyst,
		validator: validator,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Run executes one diagnostic run for the pod and returns its report.
//
// Detection output is sanitized to its first line with trailing comments
// stripped; an empty token or one containing HEALTHY (case-insensitive)
// short-circuits the run with the canned healthy report, and neither the
// analyst nor the validator is called. Failures in any reasoning step abort
// the run with an error; there are no internal retries.
func (p *Pipeline) Run(ctx context.Context, namespace, pod string) (*model.RcaReport, error) {
	p.logger.Info("starting analysis run", "namespace", namespace, "pod", pod)

	dc := p.timedCollect(ctx, namespace, pod)
	fullContext := dc.FullContext()

	start := time.Now()
	rawAnomaly, err := p.detector.DetectAnomaly(ctx, fullContext)
	p.observeStage("detect", start)
	p.countReasonerRequest(p.detector, err)
	if err != nil {
		p.countOutcome("error")
		return nil, fmt.Errorf("pipeline: detecting anomaly for %s/%s: %w", namespace, pod, err)
	}

	token := model.SanitizeAnomalyToken(rawAnomaly)
	p.logger.Info("anomaly detection complete",
		"namespace", namespace, "pod", pod,
		"raw_length", len(rawAnomaly), "token", string(token))

	if token.IsHealthy() {
		p.logger.Info("workload healthy, skipping analysis and validation",
			"namespace", namespace, "pod", pod)
		p.countOutcome("healthy")
		return model.HealthyReport(), nil
	}

	start = time.Now()
	rcaOutput, err := p.analyst.AnalyzeRootCause(ctx, string(token), fullContext)
	p.observeStage("analyze", start)
	p.countReasonerRequest(p.analyst, err)
	if err != nil {
		p.countOutcome("error")
		return nil, fmt.Errorf("pipeline: analyzing root cause for %s/%s: %w", namespace, pod, err)
	}

	start = time.Now()
	report, err := p.validator.ValidateAndFormat(ctx, rcaOutput, fullContext)
	p.observeStage("validate", start)
	p.countReasonerRequest(p.validator, err)
	if err != nil {
		p.countOutcome("error")
		return nil, fmt.Errorf("pipeline: validating report for %s/%s: %w", namespace, pod, err)
	}

	p.logger.Info("analysis run complete",
		"namespace", namespace, "pod", pod,
		"token", string(token), "confidence", report.ValidationConfidence)
	p.countOutcome("anomaly")
	return report, nil
}

func (p *Pipeline) timedCollect(ctx context.Context, namespace, pod string) model.DiagnosticContext {
	start := time.Now()
	dc := p.collector.Collect(ctx, namespace, pod)
	p.observeStage("collect", start)
	return dc
}

func (p *Pipeline) observeStage(stage string, start time.Time) {
	if p.metrics != nil {
		p.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}

func (p *Pipeline) countOutcome(outcome string) {
	if p.metrics != nil {
		p.metrics.AnalysesTotal.WithLabelValues(outcome).Inc()
	}
}

// countReasonerRequest counts one reasoning capability call, labeled by the
// backend's self-reported name and whether the call succeeded.
func (p *Pipeline) countReasonerRequest(backend any, err error) {
	if p.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	p.metrics.ReasonerRequestsTotal.WithLabelValues(backendName(backend), status).Inc()
}

// backendName resolves the metric label for a reasoning capability. All
// shipped backends implement Name(); a bare capability counts as unknown.
func backendName(v any) string {
	if named, ok := v.(interface{ Name() string }); ok {
		return named.Name()
	}
	return "unknown"
}
