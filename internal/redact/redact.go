// Package redact scrubs secret-looking material from collected pod logs
// before the logs enter a diagnostic context or leave the cluster in an
// analysis prompt. Patterns are compiled once at construction time.
package redact

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Placeholder replaces matched sensitive data.
const Placeholder = "[REDACTED]"

// builtinPatterns match common secret formats seen in application logs.
// More specific patterns (Bearer, Basic) come before the general
// Authorization pattern so they are applied first.
var builtinPatterns = []string{
	`(?i)Bearer\s+[A-Za-z0-9._\-]+`,
	`(?i)Basic\s+[A-Za-z0-9+/=]+`,
	`AKIA[A-Za-z0-9]{16}`,
	`(?i)Authorization\s*[:=]\s*\S+`,
	`(?i)password\s*"?\s*[=:]\s*"?\s*\S+`,
	`(?i)(?:api[_-]?key|secret[_-]?key|access[_-]?key|token)\s*[=:]\s*[A-Za-z0-9._\-/+=]+`,
}

// Redactor applies a fixed set of compiled patterns to text. Immutable after
// construction, safe for concurrent use.
type Redactor struct {
	patterns []*regexp.Regexp
	logger   *slog.Logger
}

// Option configures a Redactor.
type Option func(*Redactor)

// WithLogger sets the logger for the Redactor.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Redactor) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Redactor with the builtin patterns plus any extra
// operator-supplied patterns from configuration. Invalid extra patterns fail
// construction with all offenders listed.
func New(extraPatterns []string, opts ...Option) (*Redactor, error) {
	r := &Redactor{logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}

	compiled := make([]*regexp.Regexp, 0, len(builtinPatterns)+len(extraPatterns))
	for _, pat := range builtinPatterns {
		compiled = append(compiled, regexp.MustCompile(pat))
	}

	var errs []string
	for i, pat := range extraPatterns {
		if pat == "" {
			errs = append(errs, fmt.Sprintf("pattern %d: empty", i))
			continue
		}
		re, err := regexp.Compile(pat)
		if err != nil {
			errs = append(errs, fmt.Sprintf("pattern %d (%q): %v", i, pat, err))
			continue
		}
		compiled = append(compiled, re)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("redact: invalid patterns: %s", strings.Join(errs, "; "))
	}

	r.patterns = compiled
	r.logger.Debug("redactor initialized",
		"builtin_patterns", len(builtinPatterns),
		"extra_patterns", len(extraPatterns),
	)
	return r, nil
}

// Scrub replaces every match of every configured pattern with the
// placeholder. Patterns are applied sequentially in a fixed order.
func (r *Redactor) Scrub(text string) string {
	if text == "" {
		return text
	}
	for _, re := range r.patterns {
		text = re.ReplaceAllString(text, Placeholder)
	}
	return text
}

// PatternCount returns the number of active patterns.
func (r *Redactor) PatternCount() int {
	return len(r.patterns)
}
