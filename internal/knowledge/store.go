// Package knowledge loads operator runbooks from a directory and retrieves
// the excerpts most relevant to a detected anomaly. Retrieval is a simple
// term-overlap ranking: no external index, deterministic results.
package knowledge

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// maxExcerptLength bounds each returned excerpt so a long runbook cannot
// crowd out the diagnostic context in the prompt.
const maxExcerptLength = 1200

type document struct {
	name    string
	content string
	terms   map[string]bool
}

// Store holds the loaded runbooks. Immutable after construction, safe for
// concurrent use.
type Store struct {
	docs   []document
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for the Store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore loads every .md and .txt file in dir, non-recursively. A missing
// or unreadable directory is an error; an empty directory is a valid empty
// store.
func NewStore(dir string, opts ...Option) (*Store, error) {
	s := &Store{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("knowledge: reading runbook directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".md" && ext != ".txt" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("knowledge: reading runbook %s: %w", entry.Name(), err)
		}
		content := string(data)
		s.docs = append(s.docs, document{
			name:    entry.Name(),
			content: content,
			terms:   tokenize(content),
		})
	}

	// Directory order is platform-dependent; fix it for deterministic ties.
	sort.Slice(s.docs, func(i, j int) bool { return s.docs[i].name < s.docs[j].name })

	s.logger.Info("runbook store loaded", "dir", dir, "documents", len(s.docs))
	return s, nil
}

// Len returns the number of loaded runbooks.
func (s *Store) Len() int {
	return len(s.docs)
}

// Retrieve returns excerpts of up to limit runbooks ranked by how many query
// terms they contain. Runbooks sharing no term with the query are excluded,
// so an unknown anomaly yields no excerpts rather than arbitrary ones.
func (s *Store) Retrieve(query string, limit int) []string {
	if limit <= 0 || len(s.docs) == 0 {
		return nil
	}
	queryTerms := tokenize(query)
	if len(queryTerms) == 0 {
		return nil
	}

	type scored struct {
		doc   document
		score int
	}
	var ranked []scored
	for _, doc := range s.docs {
		score := 0
		for term := range queryTerms {
			if doc.terms[term] {
				score++
			}
		}
		if score > 0 {
			ranked = append(ranked, scored{doc: doc, score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	excerpts := make([]string, 0, len(ranked))
	for _, r := range ranked {
		excerpts = append(excerpts, excerpt(r.doc))
	}
	return excerpts
}

func excerpt(doc document) string {
	content := strings.TrimSpace(doc.content)
	if len(content) > maxExcerptLength {
		content = content[:maxExcerptLength] + "..."
	}
	return fmt.Sprintf("[%s]\n%s", doc.name, content)
}

// tokenize lowercases the text and splits it into alphanumeric terms.
func tokenize(text string) map[string]bool {
	terms := make(map[string]bool)
	for _, field := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if len(field) > 1 {
			terms[field] = true
		}
	}
	return terms
}
