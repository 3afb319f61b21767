package config

import (
	"fmt"
	"regexp"
	"strings"
)

// validReasonerBackends is the set of recognized backend names.
var validReasonerBackends = map[string]bool{
	"claude":  true,
	"bedrock": true,
	"static":  true,
}

// Validate checks the config for invalid or contradictory settings.
// It should be called after ApplyDefaults and returns a descriptive error
// for the first problem it finds.
func (c *Config) Validate() error {
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateListeners(); err != nil {
		return err
	}
	if err := c.validateSources(); err != nil {
		return err
	}
	if err := c.validateCollection(); err != nil {
		return err
	}
	if err := c.validateReasoner(); err != nil {
		return err
	}
	if err := c.validateScanner(); err != nil {
		return err
	}
	if err := c.validateKnowledge(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	if _, err := ParseLogLevel(c.Logging.Level); err != nil {
		return err
	}
	format := strings.ToLower(c.Logging.Format)
	if format != "json" && format != "text" {
		return fmt.Errorf("invalid log format %q: must be json or text", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateListeners() error {
	ports := map[string]int{
		"server.port":  c.Server.Port,
		"metrics.port": c.Metrics.Port,
		"health.port":  c.Health.Port,
	}
	seen := map[int]string{}
	for field, port := range ports {
		if port < 1 || port > 65535 {
			return fmt.Errorf("%s must be between 1 and 65535, got %d", field, port)
		}
	}
	// Deterministic order for the duplicate check.
	for _, field := range []string{"server.port", "metrics.port", "health.port"} {
		port := ports[field]
		if other, dup := seen[port]; dup {
			return fmt.Errorf("%s (%d) must not equal %s", field, port, other)
		}
		seen[port] = field
	}
	return nil
}

func (c *Config) validateSources() error {
	if c.Prometheus.URL == "" {
		return fmt.Errorf("prometheus.url must not be empty")
	}
	if c.Cryostat.Enabled && c.Cryostat.URL == "" {
		return fmt.Errorf("cryostat.url must be set when cryostat is enabled")
	}
	return nil
}

func (c *Config) validateCollection() error {
	if c.Collection.TailLines < 1 {
		return fmt.Errorf("collection.tailLines must be >= 1, got %d", c.Collection.TailLines)
	}
	for i, pattern := range c.Collection.RedactPatterns {
		if pattern == "" {
			return fmt.Errorf("collection.redactPatterns[%d]: pattern must not be empty", i)
		}
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("collection.redactPatterns[%d]: invalid regex %q: %w", i, pattern, err)
		}
	}
	return nil
}

func (c *Config) validateReasoner() error {
	if !validReasonerBackends[c.Reasoner.Backend] {
		return fmt.Errorf("reasoner.backend %q is not valid: must be one of claude, bedrock, static",
			c.Reasoner.Backend)
	}

	switch c.Reasoner.Backend {
	case "claude":
		if c.Reasoner.Claude.Model == "" {
			return fmt.Errorf("reasoner.claude.model must be set when backend is claude")
		}
		if c.Reasoner.Claude.MaxTokens < 1 {
			return fmt.Errorf("reasoner.claude.maxTokens must be >= 1, got %d", c.Reasoner.Claude.MaxTokens)
		}
		if c.Reasoner.Claude.Temperature < 0 || c.Reasoner.Claude.Temperature > 1 {
			return fmt.Errorf("reasoner.claude.temperature must be between 0 and 1, got %f", c.Reasoner.Claude.Temperature)
		}
		if c.Reasoner.Claude.APIKeySecret.Name == "" {
			return fmt.Errorf("reasoner.claude.apiKeySecret.name must be set when backend is claude")
		}
		if c.Reasoner.Claude.APIKeySecret.Key == "" {
			return fmt.Errorf("reasoner.claude.apiKeySecret.key must be set when backend is claude")
		}
	case "bedrock":
		if c.Reasoner.Bedrock.Region == "" {
			return fmt.Errorf("reasoner.bedrock.region must be set when backend is bedrock")
		}
		if c.Reasoner.Bedrock.ModelID == "" {
			return fmt.Errorf("reasoner.bedrock.modelId must be set when backend is bedrock")
		}
		if c.Reasoner.Bedrock.MaxTokens < 1 {
			return fmt.Errorf("reasoner.bedrock.maxTokens must be >= 1, got %d", c.Reasoner.Bedrock.MaxTokens)
		}
		if c.Reasoner.Bedrock.Temperature < 0 || c.Reasoner.Bedrock.Temperature > 1 {
			return fmt.Errorf("reasoner.bedrock.temperature must be between 0 and 1, got %f", c.Reasoner.Bedrock.Temperature)
		}
	case "static":
		// The static backend has no required settings.
	}

	return nil
}

func (c *Config) validateScanner() error {
	if !c.Scanner.Enabled {
		return nil
	}
	if c.Scanner.LabelSelector == "" {
		return fmt.Errorf("scanner.labelSelector must be set when the scanner is enabled")
	}
	if c.Scanner.Interval <= 0 {
		return fmt.Errorf("scanner.interval must be positive, got %s", c.Scanner.Interval)
	}
	if c.Scanner.InitialDelay < 0 {
		return fmt.Errorf("scanner.initialDelay must not be negative, got %s", c.Scanner.InitialDelay)
	}
	if c.Scanner.Concurrency < 1 {
		return fmt.Errorf("scanner.concurrency must be >= 1, got %d", c.Scanner.Concurrency)
	}
	return nil
}

func (c *Config) validateKnowledge() error {
	if !c.Knowledge.Enabled {
		return nil
	}
	if c.Knowledge.Dir == "" {
		return fmt.Errorf("knowledge.dir must be set when the knowledge store is enabled")
	}
	if c.Knowledge.SnippetLimit < 1 {
		return fmt.Errorf("knowledge.snippetLimit must be >= 1, got %d", c.Knowledge.SnippetLimit)
	}
	return nil
}
