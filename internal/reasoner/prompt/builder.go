// Package prompt builds the prompts for the three analysis capabilities.
// Prompt text is assembled deterministically from the inputs so identical
// contexts produce identical prompts.
package prompt

import (
	"fmt"
	"strings"
)

// detectorSystemPrompt constrains the detection model to a bare token reply.
const detectorSystemPrompt = "You are a specialized anomaly detection model. " +
	"Analyze the METRICS and POD STATUS data. " +
	"Output ONLY the anomaly type or 'HEALTHY'. Example: 'OOM_KILLED'."

// validatorTemplate instructs the model to return the report as bare JSON.
const validatorTemplate = `You are the Validation Agent. Your task is to validate the RCA output and format it into a structured report JSON object.

You MUST return a valid JSON object with these EXACT fields:
{
  "title": "Brief title summarizing the issue (e.g., 'OOM Killed - Memory Limit Exceeded')",
  "issue": "Detailed description of what went wrong and why",
  "evidence": "Key metrics, observations, and data points supporting the diagnosis",
  "supportedLogs": ["Array of relevant log entries or patterns"],
  "proposedSolution": "Concrete, actionable steps to fix the issue",
  "validationConfidence": 0.00
}

IMPORTANT:
- Extract the issue description from the RCA output
- Include specific metrics and values in the evidence field
- Provide actionable solutions, not generic advice
- Set validationConfidence between 0.0 and 1.0 based on how confident you are
- If any field is missing from RCA output, infer it from the context

RCA Output to Validate:
%s

Original Context:
%s

Return ONLY the JSON object, no other text.`

// SnippetProvider retrieves knowledge base excerpts relevant to a query.
// Implemented by the runbook store; nil disables enrichment.
type SnippetProvider interface {
	Retrieve(query string, limit int) []string
}

// Builder assembles capability prompts, optionally enriched with runbook
// snippets for the root cause step.
type Builder struct {
	snippets     SnippetProvider
	snippetLimit int
}

// Option configures a Builder.
type Option func(*Builder)

// WithSnippets enables runbook enrichment of the analyst prompt.
func WithSnippets(p SnippetProvider, limit int) Option {
	return func(b *Builder) {
		b.snippets = p
		if limit > 0 {
			b.snippetLimit = limit
		}
	}
}

// NewBuilder creates a prompt Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{snippetLimit: 3}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// DetectorSystem returns the system prompt for the detection capability.
// The user message is the full diagnostic context, unmodified.
func (b *Builder) DetectorSystem() string {
	return detectorSystemPrompt
}

// Analyst builds the root cause analysis prompt for a detected anomaly.
// When a snippet provider is configured, runbook excerpts matching the
// anomaly type are appended under a REFERENCE RUNBOOKS section.
func (b *Builder) Analyst(anomalyType, fullContext string) string {
	var sb strings.Builder
	sb.WriteString("You are the Root Cause Analyst. Use all provided context to provide a detailed, reasoned RCA and proposed fix. Focus heavily on the profiling data.\n\n")
	fmt.Fprintf(&sb, "ANOMALY TYPE: %s\n", anomalyType)
	fmt.Fprintf(&sb, "FULL CONTEXT: %s\n", fullContext)

	if b.snippets != nil {
		if excerpts := b.snippets.Retrieve(anomalyType, b.snippetLimit); len(excerpts) > 0 {
			sb.WriteString("\nREFERENCE RUNBOOKS:\n")
			for _, e := range excerpts {
				sb.WriteString(e)
				sb.WriteString("\n---\n")
			}
		}
	}

	sb.WriteString("\nYour task: Determine the root cause and propose a solution. Output only the detailed analysis and fix.")
	return sb.String()
}

// Validator builds the validation prompt from the raw analysis and the
// original context.
func (b *Builder) Validator(rcaOutput, fullContext string) string {
	return fmt.Sprintf(validatorTemplate, rcaOutput, fullContext)
}
