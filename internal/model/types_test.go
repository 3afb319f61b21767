package model

import (
	"strings"
	"testing"
)

func TestSanitizeAnomalyToken(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want AnomalyToken
	}{
		{
			name: "plain token",
			raw:  "OOM_KILLED",
			want: "OOM_KILLED",
		},
		{
			name: "healthy with trailing comment line",
			raw:  "HEALTHY\n# note",
			want: "HEALTHY",
		},
		{
			name: "inline comment stripped",
			raw:  "CPU_THROTTLING # high confidence",
			want: "CPU_THROTTLING",
		},
		{
			name: "only first line kept",
			raw:  "CRASH_LOOP\nThe container restarts every 30s.",
			want: "CRASH_LOOP",
		},
		{
			name: "surrounding whitespace trimmed",
			raw:  "  OOM_KILLED  \nmore",
			want: "OOM_KILLED",
		},
		{
			name: "empty input",
			raw:  "",
			want: "",
		},
		{
			name: "comment only",
			raw:  "# just a comment",
			want: "",
		},
		{
			name: "windows line ending",
			raw:  "OOM_KILLED\r\nrest",
			want: "OOM_KILLED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeAnomalyToken(tt.raw)
			if got != tt.want {
				t.Errorf("SanitizeAnomalyToken(%q) = %q, want %q", tt.raw, got, tt.want)
			}
			if strings.ContainsAny(string(got), "\n#") {
				t.Errorf("sanitized token %q still contains a line break or comment marker", got)
			}
		})
	}
}

func TestAnomalyTokenIsHealthy(t *testing.T) {
	tests := []struct {
		token AnomalyToken
		want  bool
	}{
		{"", true},
		{"HEALTHY", true},
		{"healthy", true},
		{"Healthy", true},
		{"The system appears HEALTHY overall", true},
		{"previously healthy, now OOM", true}, // permissive matching by design
		{"OOM_KILLED", false},
		{"CPU_THROTTLING", false},
		{"HEALTH_CHECK_FAILING", false},
	}

	for _, tt := range tests {
		if got := tt.token.IsHealthy(); got != tt.want {
			t.Errorf("AnomalyToken(%q).IsHealthy() = %v, want %v", tt.token, got, tt.want)
		}
	}
}

func TestFullContextOrderAndHeaders(t *testing.T) {
	ctx := DiagnosticContext{
		PodStatusText: "Phase: Running",
		EventsText:    "No events found for this pod.",
		MetricsText:   "metrics block",
		LogsText:      "log line",
		ProfilingText: "Profiling is disabled.",
	}

	full := ctx.FullContext()

	headers := []string{
		"--- POD STATUS ---",
		"--- K8S EVENTS ---",
		"--- METRICS ---",
		"--- LOGS (Tail) ---",
		"--- PROFILING ---",
	}
	last := -1
	for _, h := range headers {
		idx := strings.Index(full, h)
		if idx < 0 {
			t.Fatalf("FullContext missing header %q:\n%s", h, full)
		}
		if idx <= last {
			t.Errorf("header %q out of order (index %d, previous %d)", h, idx, last)
		}
		last = idx
	}

	for _, section := range []string{ctx.PodStatusText, ctx.EventsText, ctx.MetricsText, ctx.LogsText, ctx.ProfilingText} {
		if !strings.Contains(full, section) {
			t.Errorf("FullContext missing section content %q", section)
		}
	}
}

func TestFullContextDeterministic(t *testing.T) {
	ctx := DiagnosticContext{
		PodStatusText: "a",
		EventsText:    "b",
		MetricsText:   "c",
		LogsText:      "d",
		ProfilingText: "e",
	}
	if ctx.FullContext() != ctx.FullContext() {
		t.Error("FullContext is not deterministic for an identical context")
	}
}

func TestHealthyReport(t *testing.T) {
	r := HealthyReport()

	if r.Title != "System Healthy" {
		t.Errorf("Title = %q, want %q", r.Title, "System Healthy")
	}
	if r.Issue != "No anomaly detected" {
		t.Errorf("Issue = %q, want %q", r.Issue, "No anomaly detected")
	}
	if r.Evidence != "Metrics within normal range" {
		t.Errorf("Evidence = %q, want %q", r.Evidence, "Metrics within normal range")
	}
	if r.ProposedSolution != "No action needed" {
		t.Errorf("ProposedSolution = %q, want %q", r.ProposedSolution, "No action needed")
	}
	if len(r.SupportedLogs) != 0 {
		t.Errorf("SupportedLogs = %v, want empty", r.SupportedLogs)
	}
	if r.ValidationConfidence != 1.0 {
		t.Errorf("ValidationConfidence = %v, want 1.0", r.ValidationConfidence)
	}
}
