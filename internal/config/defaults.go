package config

import "time"

// Default returns a Config populated with production defaults.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},

		Server: ServerConfig{
			Port: 8080,
		},

		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},

		Health: HealthConfig{
			Port: 8081,
		},

		Prometheus: PrometheusConfig{
			URL:       "http://prometheus-operated.monitoring.svc:9090",
			TokenPath: "/var/run/secrets/kubernetes.io/serviceaccount/token",
		},

		Cryostat: CryostatConfig{
			Enabled: false,
			URL:     "http://cryostat.cryostat.svc:8181",
		},

		Collection: CollectionConfig{
			TailLines: 500,
		},

		Reasoner: ReasonerConfig{
			Backend: "claude",
			Claude: ClaudeConfig{
				Model:     "claude-sonnet-4-20250514",
				MaxTokens: 4096,
				APIKeySecret: SecretKeyRef{
					Name: "causa-api-keys",
					Key:  "anthropic-api-key",
				},
			},
			Bedrock: BedrockConfig{
				Region:    "us-east-1",
				ModelID:   "anthropic.claude-sonnet-4-20250514-v1:0",
				MaxTokens: 4096,
			},
		},

		Scanner: ScannerConfig{
			Enabled:       false,
			LabelSelector: "rca.enabled=true",
			Interval:      5 * time.Minute,
			InitialDelay:  10 * time.Second,
			Concurrency:   2,
		},

		Knowledge: KnowledgeConfig{
			Enabled:      false,
			Dir:          "/etc/causa/knowledge",
			SnippetLimit: 3,
		},
	}
}

// ApplyDefaults fills in zero-valued fields with production defaults.
// It should be called after loading configuration from a file so every
// field carries a sensible value before validation.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Logging
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}

	// Listeners
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Metrics.Port == 0 {
		c.Metrics.Port = d.Metrics.Port
	}
	if c.Health.Port == 0 {
		c.Health.Port = d.Health.Port
	}

	// Prometheus
	if c.Prometheus.URL == "" {
		c.Prometheus.URL = d.Prometheus.URL
	}
	if c.Prometheus.TokenPath == "" {
		c.Prometheus.TokenPath = d.Prometheus.TokenPath
	}

	// Cryostat URL defaults only when the source is enabled but unset.
	if c.Cryostat.Enabled && c.Cryostat.URL == "" {
		c.Cryostat.URL = d.Cryostat.URL
	}

	// Collection
	if c.Collection.TailLines == 0 {
		c.Collection.TailLines = d.Collection.TailLines
	}

	// Reasoner
	if c.Reasoner.Backend == "" {
		c.Reasoner.Backend = d.Reasoner.Backend
	}
	if c.Reasoner.Claude.Model == "" {
		c.Reasoner.Claude.Model = d.Reasoner.Claude.Model
	}
	if c.Reasoner.Claude.MaxTokens == 0 {
		c.Reasoner.Claude.MaxTokens = d.Reasoner.Claude.MaxTokens
	}
	if c.Reasoner.Claude.APIKeySecret.Name == "" {
		c.Reasoner.Claude.APIKeySecret = d.Reasoner.Claude.APIKeySecret
	}
	if c.Reasoner.Bedrock.Region == "" {
		c.Reasoner.Bedrock.Region = d.Reasoner.Bedrock.Region
	}
	if c.Reasoner.Bedrock.ModelID == "" {
		c.Reasoner.Bedrock.ModelID = d.Reasoner.Bedrock.ModelID
	}
	if c.Reasoner.Bedrock.MaxTokens == 0 {
		c.Reasoner.Bedrock.MaxTokens = d.Reasoner.Bedrock.MaxTokens
	}

	// Scanner
	if c.Scanner.LabelSelector == "" {
		c.Scanner.LabelSelector = d.Scanner.LabelSelector
	}
	if c.Scanner.Interval == 0 {
		c.Scanner.Interval = d.Scanner.Interval
	}
	if c.Scanner.InitialDelay == 0 {
		c.Scanner.InitialDelay = d.Scanner.InitialDelay
	}
	if c.Scanner.Concurrency == 0 {
		c.Scanner.Concurrency = d.Scanner.Concurrency
	}

	// Knowledge
	if c.Knowledge.Dir == "" {
		c.Knowledge.Dir = d.Knowledge.Dir
	}
	if c.Knowledge.SnippetLimit == 0 {
		c.Knowledge.SnippetLimit = d.Knowledge.SnippetLimit
	}
}
