package reasoner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shreyabiradar07/causa/internal/reasoner/prompt"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubSecretReader implements SecretReader with a fixed value.
type stubSecretReader struct {
	value string
	err   error
}

func (s *stubSecretReader) ReadSecret(ctx context.Context, namespace, name, key string) (string, error) {
	return s.value, s.err
}

func claudeReply(text string) string {
	resp := map[string]any{
		"id": "msg_test",
		"content": []map[string]string{
			{"type": "text", "text": text},
		},
		"usage": map[string]int{"input_tokens": 10, "output_tokens": 5},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func newClaudeTestBackend(t *testing.T, url string) *ClaudeBackend {
	t.Helper()
	b, err := NewClaudeBackend(ClaudeConfig{
		Model:         "claude-sonnet-4-20250514",
		DetectorModel: "claude-3-5-haiku-20241022",
		MaxTokens:     1024,
		APIKeyRef:     SecretRef{Namespace: "causa", Name: "anthropic", Key: "api-key"},
		APIURL:        url,
	}, &stubSecretReader{value: "sk-test"}, prompt.NewBuilder(), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestClaudeDetectAnomaly(t *testing.T) {
	var gotReq claudeRequest
	var gotKey, gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		io.WriteString(w, claudeReply("OOM_KILLED"))
	}))
	defer srv.Close()

	b := newClaudeTestBackend(t, srv.URL)
	got, err := b.DetectAnomaly(context.Background(), "context-body")
	if err != nil {
		t.Fatalf("DetectAnomaly() error = %v", err)
	}
	if got != "OOM_KILLED" {
		t.Errorf("DetectAnomaly() = %q", got)
	}
	if gotKey != "sk-test" {
		t.Errorf("x-api-key = %q", gotKey)
	}
	if gotVersion != anthropicVersion {
		t.Errorf("anthropic-version = %q", gotVersion)
	}
	if gotReq.Model != "claude-3-5-haiku-20241022" {
		t.Errorf("detector call used model %q, want the detector override", gotReq.Model)
	}
	if !strings.Contains(gotReq.System, "anomaly detection") {
		t.Errorf("detector system prompt missing: %q", gotReq.System)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "context-body" {
		t.Errorf("detector user message = %+v", gotReq.Messages)
	}
}

func TestClaudeAnalyzeRootCause(t *testing.T) {
	var gotReq claudeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		io.WriteString(w, claudeReply("The container was OOM killed because..."))
	}))
	defer srv.Close()

	b := newClaudeTestBackend(t, srv.URL)
	got, err := b.AnalyzeRootCause(context.Background(), "OOM_KILLED", "ctx")
	if err != nil {
		t.Fatalf("AnalyzeRootCause() error = %v", err)
	}
	if !strings.Contains(got, "OOM killed") {
		t.Errorf("AnalyzeRootCause() = %q", got)
	}
	if gotReq.Model != "claude-sonnet-4-20250514" {
		t.Errorf("analyst call used model %q, want the default model", gotReq.Model)
	}
	if !strings.Contains(gotReq.Messages[0].Content, "ANOMALY TYPE: OOM_KILLED") {
		t.Errorf("analyst prompt missing anomaly type:\n%s", gotReq.Messages[0].Content)
	}
}

func TestClaudeValidateAndFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, claudeReply("```json\n"+validReportJSON+"\n```"))
	}))
	defer srv.Close()

	b := newClaudeTestBackend(t, srv.URL)
	report, err := b.ValidateAndFormat(context.Background(), "analysis", "ctx")
	if err != nil {
		t.Fatalf("ValidateAndFormat() error = %v", err)
	}
	if report.Title != "OOM Killed - Memory Limit Exceeded" {
		t.Errorf("Title = %q", report.Title)
	}
}

func TestClaudeValidateAndFormatMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, claudeReply("I cannot produce JSON today."))
	}))
	defer srv.Close()

	b := newClaudeTestBackend(t, srv.URL)
	if _, err := b.ValidateAndFormat(context.Background(), "analysis", "ctx"); err == nil {
		t.Error("ValidateAndFormat() expected an error for a non-JSON reply")
	}
}

func TestClaudeAPIErrors(t *testing.T) {
	t.Run("http status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			io.WriteString(w, `{"error":{"type":"rate_limit_error","message":"slow down"}}`)
		}))
		defer srv.Close()

		b := newClaudeTestBackend(t, srv.URL)
		if _, err := b.DetectAnomaly(context.Background(), "ctx"); err == nil {
			t.Error("expected an error for status 429")
		}
	})

	t.Run("secret read failure", func(t *testing.T) {
		b, err := NewClaudeBackend(ClaudeConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 1024,
			APIKeyRef: SecretRef{Name: "anthropic", Key: "api-key"},
			APIURL:    "http://unused",
		}, &stubSecretReader{err: fmt.Errorf("secret missing")}, prompt.NewBuilder(), testLogger())
		if err != nil {
			t.Fatal(err)
		}
		if _, err := b.DetectAnomaly(context.Background(), "ctx"); err == nil {
			t.Error("expected an error when the API key cannot be read")
		}
	})
}

func TestNewClaudeBackendValidation(t *testing.T) {
	valid := ClaudeConfig{
		Model:     "claude-sonnet-4-20250514",
		MaxTokens: 1024,
		APIKeyRef: SecretRef{Name: "anthropic", Key: "api-key"},
	}
	reader := &stubSecretReader{value: "k"}
	prompter := prompt.NewBuilder()

	tests := []struct {
		name   string
		mutate func(*ClaudeConfig)
	}{
		{"empty model", func(c *ClaudeConfig) { c.Model = "" }},
		{"zero max tokens", func(c *ClaudeConfig) { c.MaxTokens = 0 }},
		{"missing secret name", func(c *ClaudeConfig) { c.APIKeyRef.Name = "" }},
		{"missing secret key", func(c *ClaudeConfig) { c.APIKeyRef.Key = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if _, err := NewClaudeBackend(cfg, reader, prompter, testLogger()); err == nil {
				t.Error("expected a constructor error")
			}
		})
	}

	if _, err := NewClaudeBackend(valid, nil, prompter, testLogger()); err == nil {
		t.Error("expected an error for a nil secret reader")
	}
	if _, err := NewClaudeBackend(valid, reader, nil, testLogger()); err == nil {
		t.Error("expected an error for a nil prompter")
	}
}
