// Package config defines the agent configuration schema, loading, defaults,
// and validation. Configuration is a single YAML file mounted into the pod.
package config

import "time"

// DefaultConfigPath is where the agent looks for its configuration when no
// path is given on the command line.
const DefaultConfigPath = "/etc/causa/config.yaml"

// Config is the root configuration for the diagnostics agent.
type Config struct {
	// Logging controls log level and output format.
	Logging LoggingConfig `yaml:"logging"`

	// Server configures the REST API surface.
	Server ServerConfig `yaml:"server"`

	// Metrics configures the Prometheus metrics endpoint.
	Metrics MetricsConfig `yaml:"metrics"`

	// Health configures the liveness/readiness endpoint.
	Health HealthConfig `yaml:"health"`

	// Prometheus configures the metrics source queried during collection.
	Prometheus PrometheusConfig `yaml:"prometheus"`

	// Cryostat configures the optional JVM profiling source.
	Cryostat CryostatConfig `yaml:"cryostat"`

	// Collection tunes diagnostic context gathering.
	Collection CollectionConfig `yaml:"collection"`

	// Reasoner selects and configures the model backend.
	Reasoner ReasonerConfig `yaml:"reasoner"`

	// Scanner configures the periodic fleet sweep.
	Scanner ScannerConfig `yaml:"scanner"`

	// Knowledge configures the runbook snippet store used to enrich
	// analysis prompts.
	Knowledge KnowledgeConfig `yaml:"knowledge"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig configures the REST API listener.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// MetricsConfig configures the Prometheus scrape endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// HealthConfig configures the health probe listener.
type HealthConfig struct {
	Port int `yaml:"port"`
}

// PrometheusConfig points the collector at a Prometheus query API.
type PrometheusConfig struct {
	URL string `yaml:"url"`

	// TokenPath is the service account token presented to Prometheus as a
	// bearer token. Empty disables authentication.
	TokenPath string `yaml:"tokenPath"`
}

// CryostatConfig points the collector at a Cryostat instance for JVM
// profiling reports.
type CryostatConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

// CollectionConfig tunes diagnostic context gathering.
type CollectionConfig struct {
	// TailLines bounds how many log lines are fetched per container.
	TailLines int64 `yaml:"tailLines"`

	// RedactPatterns are extra regexes scrubbed from collected logs on
	// top of the built-in credential patterns.
	RedactPatterns []string `yaml:"redactPatterns"`
}

// ReasonerConfig selects the model backend and its settings.
type ReasonerConfig struct {
	// Backend is one of claude, bedrock, or static.
	Backend string `yaml:"backend"`

	Claude  ClaudeConfig  `yaml:"claude"`
	Bedrock BedrockConfig `yaml:"bedrock"`
	Static  StaticConfig  `yaml:"static"`
}

// SecretKeyRef identifies a key in a Kubernetes Secret. Namespace defaults
// to the agent's own namespace when empty.
type SecretKeyRef struct {
	Namespace string `yaml:"namespace,omitempty"`
	Name      string `yaml:"name"`
	Key       string `yaml:"key"`
}

// ClaudeConfig configures the Anthropic API backend.
type ClaudeConfig struct {
	// Model is the default model for all three capabilities.
	Model string `yaml:"model"`

	// DetectorModel, AnalystModel, and ValidatorModel override Model for
	// their capability when set. Detection typically runs on a smaller,
	// cheaper model.
	DetectorModel  string `yaml:"detectorModel,omitempty"`
	AnalystModel   string `yaml:"analystModel,omitempty"`
	ValidatorModel string `yaml:"validatorModel,omitempty"`

	MaxTokens    int          `yaml:"maxTokens"`
	Temperature  float64      `yaml:"temperature"`
	APIKeySecret SecretKeyRef `yaml:"apiKeySecret"`
}

// BedrockConfig configures the AWS Bedrock backend. Credentials come from
// the default AWS chain (IRSA in-cluster).
type BedrockConfig struct {
	Region      string  `yaml:"region"`
	ModelID     string  `yaml:"modelId"`
	MaxTokens   int     `yaml:"maxTokens"`
	Temperature float64 `yaml:"temperature"`
}

// StaticConfig configures the deterministic backend used in tests and
// air-gapped environments. An empty anomaly means every run reports healthy.
type StaticConfig struct {
	Anomaly string `yaml:"anomaly"`
}

// ScannerConfig configures the periodic fleet sweep.
type ScannerConfig struct {
	Enabled       bool          `yaml:"enabled"`
	LabelSelector string        `yaml:"labelSelector"`
	Interval      time.Duration `yaml:"interval"`
	InitialDelay  time.Duration `yaml:"initialDelay"`
	Concurrency   int           `yaml:"concurrency"`
}

// KnowledgeConfig configures the local runbook store.
type KnowledgeConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Dir          string `yaml:"dir"`
	SnippetLimit int    `yaml:"snippetLimit"`
}
