// Package reasoner provides the three LLM-backed capabilities of the
// analysis pipeline: anomaly detection, root cause analysis, and report
// validation. Each capability is a one-method interface so callers depend
// only on the step they use; the concrete backends implement all three.
package reasoner

import (
	"context"

	"github.com/shreyabiradar07/causa/internal/model"
)

// Detector classifies a diagnostic context into a raw anomaly string.
// The output is unsanitized model text; the pipeline reduces it to a token.
type Detector interface {
	DetectAnomaly(ctx context.Context, fullContext string) (string, error)
}

// Analyst produces a free-form root cause analysis for a detected anomaly.
type Analyst interface {
	AnalyzeRootCause(ctx context.Context, anomalyType, fullContext string) (string, error)
}

// Validator critiques an analysis and structures it into the final report.
type Validator interface {
	ValidateAndFormat(ctx context.Context, rcaOutput, fullContext string) (*model.RcaReport, error)
}

// Backend bundles all three capabilities behind one implementation.
type Backend interface {
	Detector
	Analyst
	Validator

	// Name returns the backend identifier used in logs and metrics.
	Name() string
}
