// Package model defines the core data types that flow through the Causa
// analysis pipeline: DiagnosticContext, AnomalyToken, and RcaReport.
package model

import "strings"

// DiagnosticContext is the aggregated diagnostic data for one analysis run.
// It is a value object: built once by the collector, owned by a single
// pipeline run, and never shared or cached across runs.
type DiagnosticContext struct {
	// PodStatusText is the formatted pod phase and per-container state.
	PodStatusText string
	// EventsText is the formatted Kubernetes events related to the pod.
	EventsText string
	// MetricsText is the metric summarizer output (or its error line).
	MetricsText string
	// LogsText is the tail of the pod logs, current or previous container.
	LogsText string
	// ProfilingText is the profiling report, a disabled notice, or an
	// inline error message.
	ProfilingText string
}

// FullContext returns the canonical concatenation of the five sections under
// fixed headers, in fixed order: STATUS, EVENTS, METRICS, LOGS, PROFILING.
// It is derived deterministically from the section fields, so the same
// context always yields the same text.
func (c DiagnosticContext) FullContext() string {
	var b strings.Builder
	b.WriteString("--- POD STATUS ---\n")
	b.WriteString(c.PodStatusText)
	b.WriteString("\n\n--- K8S EVENTS ---\n")
	b.WriteString(c.EventsText)
	b.WriteString("\n\n--- METRICS ---\n")
	b.WriteString(c.MetricsText)
	b.WriteString("\n\n--- LOGS (Tail) ---\n")
	b.WriteString(c.LogsText)
	b.WriteString("\n\n--- PROFILING ---\n")
	b.WriteString(c.ProfilingText)
	b.WriteString("\n")
	return b.String()
}

// AnomalyToken is a short classification string produced by sanitizing raw
// detector output. The reserved value HEALTHY denotes no issue.
type AnomalyToken string

// TokenHealthy is the reserved token denoting a healthy workload.
const TokenHealthy AnomalyToken = "HEALTHY"

// SanitizeAnomalyToken reduces raw detector output to a canonical token:
// text up to the first line break, then up to the first '#' comment marker,
// trimmed of surrounding whitespace.
func SanitizeAnomalyToken(raw string) AnomalyToken {
	s := raw
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	return AnomalyToken(strings.TrimSpace(s))
}

// IsHealthy reports whether the token denotes a healthy workload. The match
// is deliberately permissive: an empty token, the exact HEALTHY value, or any
// token containing HEALTHY (case-insensitive) all count. This tolerates
// verbose detector phrasing at the cost of some false-negative risk.
func (t AnomalyToken) IsHealthy() bool {
	if t == "" {
		return true
	}
	return strings.Contains(strings.ToUpper(string(t)), string(TokenHealthy))
}

// RcaReport is the terminal artifact of one analysis run: a structured root
// cause analysis. It is constructed exactly once per run — either as the
// canned healthy instance or by the validation capability — and never
// mutated afterwards.
type RcaReport struct {
	// Title is a concise summary of the issue.
	Title string `json:"title"`
	// Issue describes what went wrong and its impact.
	Issue string `json:"issue"`
	// Evidence lists the metrics and observations supporting the diagnosis.
	Evidence string `json:"evidence"`
	// SupportedLogs holds relevant log entries, in order. May be empty.
	SupportedLogs []string `json:"supportedLogs,omitempty"`
	// ProposedSolution contains actionable remediation steps.
	ProposedSolution string `json:"proposedSolution"`
	// ValidationConfidence is the validator's confidence in [0.0, 1.0].
	// Zero when absent.
	ValidationConfidence float64 `json:"validationConfidence"`
}

// HealthyReport returns the canned report produced when the detection stage
// short-circuits on a healthy workload.
func HealthyReport() *RcaReport {
	return &RcaReport{
		Title:                "System Healthy",
		Issue:                "No anomaly detected",
		Evidence:             "Metrics within normal range",
		ProposedSolution:     "No action needed",
		ValidationConfidence: 1.0,
	}
}
