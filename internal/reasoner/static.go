// static.go provides an offline backend for development clusters and tests:
// no network calls, deterministic replies.
package reasoner

import (
	"context"
	"fmt"

	"github.com/shreyabiradar07/causa/internal/model"
)

// StaticBackend answers every capability call with fixed content. The
// detection reply is configurable so both pipeline paths can be exercised.
type StaticBackend struct {
	anomaly string
}

// NewStaticBackend creates a static reasoner that reports the given anomaly
// token. An empty token means every workload looks healthy.
func NewStaticBackend(anomaly string) *StaticBackend {
	if anomaly == "" {
		anomaly = string(model.TokenHealthy)
	}
	return &StaticBackend{anomaly: anomaly}
}

// Name returns the backend identifier.
func (s *StaticBackend) Name() string { return "static" }

func (s *StaticBackend) DetectAnomaly(ctx context.Context, fullContext string) (string, error) {
	return s.anomaly, nil
}

func (s *StaticBackend) AnalyzeRootCause(ctx context.Context, anomalyType, fullContext string) (string, error) {
	return fmt.Sprintf("Static analysis for anomaly %s. No live model is configured; "+
		"inspect the collected context manually.", anomalyType), nil
}

func (s *StaticBackend) ValidateAndFormat(ctx context.Context, rcaOutput, fullContext string) (*model.RcaReport, error) {
	return &model.RcaReport{
		Title:                fmt.Sprintf("Static Report: %s", s.anomaly),
		Issue:                rcaOutput,
		Evidence:             "Static backend, no model evidence available",
		ProposedSolution:     "Configure a live reasoning backend for actionable analysis",
		ValidationConfidence: 0.0,
	}, nil
}

var _ Backend = (*StaticBackend)(nil)
