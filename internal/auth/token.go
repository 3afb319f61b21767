// Package auth supplies the bearer token used when calling in-cluster
// collaborators such as Prometheus and Cryostat through authenticating
// proxies.
package auth

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

// DefaultTokenPath is the mounted service-account token location inside a pod.
const DefaultTokenPath = "/var/run/secrets/kubernetes.io/serviceaccount/token"

// TokenProvider reads the service-account token from disk exactly once and
// serves the cached value for the lifetime of the process. The first read
// wins, including a failed read: a missing token file yields an empty header
// for every subsequent call, it is never retried. Safe for concurrent use.
type TokenProvider struct {
	path   string
	logger *slog.Logger

	once  sync.Once
	token string
}

// Option configures a TokenProvider.
type Option func(*TokenProvider)

// WithPath overrides the token file location. Intended for tests and for
// running outside a cluster.
func WithPath(path string) Option {
	return func(p *TokenProvider) {
		if path != "" {
			p.path = path
		}
	}
}

// WithLogger sets the logger for the TokenProvider.
func WithLogger(logger *slog.Logger) Option {
	return func(p *TokenProvider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewTokenProvider creates a TokenProvider reading from the default
// service-account token path unless overridden.
func NewTokenProvider(opts ...Option) *TokenProvider {
	p := &TokenProvider{
		path:   DefaultTokenPath,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AuthorizationHeader returns "Bearer <token>" for the cached token, or the
// empty string when no token could be read. Callers send the header only when
// it is non-empty.
func (p *TokenProvider) AuthorizationHeader() string {
	p.once.Do(p.load)
	if p.token == "" {
		return ""
	}
	return "Bearer " + p.token
}

func (p *TokenProvider) load() {
	data, err := os.ReadFile(p.path)
	if err != nil {
		p.logger.Warn("service account token unavailable, requests will be unauthenticated",
			"path", p.path, "error", err)
		return
	}
	p.token = strings.TrimSpace(string(data))
	p.logger.Info("service account token loaded", "path", p.path)
}
