package reasoner

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shreyabiradar07/causa/internal/model"
)

// codeFenceRegex matches a JSON object inside markdown code fences, with or
// without a json language tag.
var codeFenceRegex = regexp.MustCompile("(?s)```(?:json)?\\s*\n?(\\{.*?\\})\\s*\n?```")

// ParseValidatorResponse turns raw validator output into a report. It tries
// the text as JSON directly, then looks inside markdown code fences. A
// response that is valid JSON neither way is an error: the pipeline treats a
// malformed validation as a failed run rather than inventing a report.
// Confidence is clamped to [0.0, 1.0].
func ParseValidatorResponse(raw string) (*model.RcaReport, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("validator: empty response")
	}

	report, directErr := decodeReport(trimmed)
	if directErr == nil {
		return report, nil
	}

	if extracted := extractJSONFromCodeFence(trimmed); extracted != "" {
		report, fenceErr := decodeReport(extracted)
		if fenceErr == nil {
			return report, nil
		}
		return nil, fmt.Errorf("validator: fenced JSON invalid: %w", fenceErr)
	}

	return nil, fmt.Errorf("validator: response is not valid JSON: %w", directErr)
}

func decodeReport(jsonText string) (*model.RcaReport, error) {
	var report model.RcaReport
	if err := json.Unmarshal([]byte(jsonText), &report); err != nil {
		return nil, err
	}

	if report.ValidationConfidence < 0.0 {
		report.ValidationConfidence = 0.0
	}
	if report.ValidationConfidence > 1.0 {
		report.ValidationConfidence = 1.0
	}
	return &report, nil
}

// extractJSONFromCodeFence returns the first fenced JSON object, or "".
func extractJSONFromCodeFence(text string) string {
	matches := codeFenceRegex.FindStringSubmatch(text)
	if len(matches) >= 2 {
		return strings.TrimSpace(matches[1])
	}
	return ""
}
