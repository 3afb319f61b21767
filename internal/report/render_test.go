package report

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/shreyabiradar07/causa/internal/model"
)

func sampleReport() *model.RcaReport {
	return &model.RcaReport{
		Title:    "Container OOM Killed",
		Issue:    "The payment-service container was terminated by the kernel OOM killer after exceeding its memory limit during a traffic spike.",
		Evidence: "Memory usage reached 512.00 MB against a 512.00 MB limit. Exit code 137 recorded on the last restart.",
		SupportedLogs: []string{
			"level=error msg=\"allocation failed\" bytes=1048576",
			"Killed process 1 (java) total-vm:2097152kB",
		},
		ProposedSolution:     "Raise the memory limit to 768Mi and review the cache eviction settings.",
		ValidationConfidence: 0.92,
	}
}

func TestRenderDeterministic(t *testing.T) {
	r := sampleReport()
	first := Render(r)
	second := Render(r)
	if first != second {
		t.Error("Render is not byte-identical across calls for the same report")
	}
}

func TestRenderLineWidths(t *testing.T) {
	tests := []struct {
		name   string
		report *model.RcaReport
	}{
		{"full report", sampleReport()},
		{"nil report", nil},
		{"empty report", &model.RcaReport{}},
		{
			"unicode content",
			&model.RcaReport{
				Title: "Pötentiell überlastete Knoten",
				Issue: "Der Knoten wies über längere Zeiträume erhöhte Speicherauslastung auf.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, line := range Lines(tt.report) {
				if n := utf8.RuneCountInString(line); n != totalWidth {
					t.Errorf("line %d is %d runes wide, want %d: %q", i, n, totalWidth, line)
				}
				if !strings.HasSuffix(line, "║") && !strings.HasSuffix(line, "╗") &&
					!strings.HasSuffix(line, "╣") && !strings.HasSuffix(line, "╝") {
					t.Errorf("line %d has no closing border glyph: %q", i, line)
				}
			}
		})
	}
}

func TestRenderDocumentFraming(t *testing.T) {
	out := Render(sampleReport())
	if !strings.HasPrefix(out, "\n") || !strings.HasSuffix(out, "\n") {
		t.Error("rendered document must start and end with a newline")
	}
	lines := Lines(sampleReport())
	if lines[0] != "╔"+strings.Repeat("═", contentWidth)+"╗" {
		t.Errorf("bad top border: %q", lines[0])
	}
	if last := lines[len(lines)-1]; last != "╚"+strings.Repeat("═", contentWidth)+"╝" {
		t.Errorf("bad bottom border: %q", last)
	}
}

func TestRenderNilReport(t *testing.T) {
	out := Render(nil)
	if got := strings.Count(out, "║ N/A"); got != 3 {
		t.Errorf("nil report rendered %d N/A sections, want 3:\n%s", got, out)
	}
	if !strings.Contains(out, "Validation Confidence: 0.00") {
		t.Errorf("nil report missing zero confidence:\n%s", out)
	}
	if strings.Contains(out, "Supported Logs:") {
		t.Errorf("nil report must not contain a Supported Logs section:\n%s", out)
	}
}

func TestRenderTitleTruncation(t *testing.T) {
	long := strings.Repeat("x", 100)
	out := Render(&model.RcaReport{Title: long})
	want := "║ Title: " + strings.Repeat("x", titleMaxLength-3) + "...║"
	if !strings.Contains(out, want) {
		t.Errorf("truncated title line %q not found in:\n%s", want, out)
	}

	exact := strings.Repeat("y", titleMaxLength)
	out = Render(&model.RcaReport{Title: exact})
	if strings.Contains(out, "...") {
		t.Error("a title of exactly the maximum length must not be truncated")
	}
}

func TestRenderHardWrapsLongTokens(t *testing.T) {
	token := strings.Repeat("a", 200)
	out := Render(&model.RcaReport{Issue: token})

	// 200 characters split into chunks of 82: 82 + 82 + 36.
	chunks := []string{
		"║ " + strings.Repeat("a", maxWordLength),
		"║ " + strings.Repeat("a", maxWordLength),
		"║ " + strings.Repeat("a", 200-2*maxWordLength),
	}
	rest := out
	for i, chunk := range chunks {
		idx := strings.Index(rest, chunk)
		if idx < 0 {
			t.Fatalf("hard-wrap chunk %d not found:\n%s", i, out)
		}
		rest = rest[idx+len(chunk):]
	}
	if got := strings.Count(out, "aa"); got < 3 {
		t.Fatalf("expected wrapped token content, got %d runs", got)
	}
}

func TestRenderWordWrapBoundary(t *testing.T) {
	// 12 ten-character words: each line fits seven words plus margin before
	// the boundary forces a wrap.
	words := make([]string, 12)
	for i := range words {
		words[i] = "abcdefghij"
	}
	out := Render(&model.RcaReport{Issue: strings.Join(words, " ")})

	var wrapped []string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "abcdefghij") {
			wrapped = append(wrapped, line)
		}
	}
	if len(wrapped) != 2 {
		t.Fatalf("expected the issue to wrap onto 2 lines, got %d:\n%s", len(wrapped), out)
	}
	if got := strings.Count(wrapped[0], "abcdefghij"); got != 7 {
		t.Errorf("first wrapped line carries %d words, want 7: %q", got, wrapped[0])
	}
	if got := strings.Count(wrapped[1], "abcdefghij"); got != 5 {
		t.Errorf("second wrapped line carries %d words, want 5: %q", got, wrapped[1])
	}
}

func TestRenderSupportedLogs(t *testing.T) {
	out := Render(sampleReport())
	if !strings.Contains(out, "║ Supported Logs:") {
		t.Fatalf("missing Supported Logs section:\n%s", out)
	}
	if got := strings.Count(out, "• "); got != 2 {
		t.Errorf("expected 2 log bullets, got %d:\n%s", got, out)
	}

	noLogs := sampleReport()
	noLogs.SupportedLogs = nil
	noLogs.ValidationConfidence = 0.95
	out = Render(noLogs)
	if strings.Contains(out, "Supported Logs:") {
		t.Errorf("Supported Logs section rendered for an empty list:\n%s", out)
	}
	if !strings.Contains(out, "Validation Confidence: 0.95") {
		t.Errorf("missing formatted confidence:\n%s", out)
	}
}

func TestRenderConfidenceFormatting(t *testing.T) {
	tests := []struct {
		confidence float64
		want       string
	}{
		{1.0, "Validation Confidence: 1.00"},
		{0.5, "Validation Confidence: 0.50"},
		{0.876, "Validation Confidence: 0.88"},
		{0.0, "Validation Confidence: 0.00"},
	}
	for _, tt := range tests {
		out := Render(&model.RcaReport{ValidationConfidence: tt.confidence})
		if !strings.Contains(out, tt.want) {
			t.Errorf("confidence %v: %q not found", tt.confidence, tt.want)
		}
	}
}

func TestRenderHealthyReportGolden(t *testing.T) {
	out := Render(model.HealthyReport())
	for _, want := range []string{
		"RCA REPORT",
		"║ Title: System Healthy",
		"║ No anomaly detected",
		"║ Metrics within normal range",
		"║ No action needed",
		"Validation Confidence: 1.00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("healthy report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Supported Logs:") {
		t.Error("healthy report must not carry a Supported Logs section")
	}
}
