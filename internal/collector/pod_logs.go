package collector

import (
	"context"
	"fmt"
	"strings"
)

// fetchLogs returns the log tail for the pod's default container. When the
// current container has no log output, typically right after a restart, the
// previous terminated instance is consulted. Collected logs pass through the
// redactor before entering the context. Failures degrade to an inline error
// line.
func (c *Collector) fetchLogs(ctx context.Context, namespace, name string) string {
	tail := c.tailLines
	logs, err := c.kube.GetPodLogs(ctx, namespace, name, &tail, false)
	if err != nil {
		c.logger.Error("failed to fetch pod logs", "namespace", namespace, "pod", name, "error", err)
		return fmt.Sprintf("Error fetching logs: %v", err)
	}

	if strings.TrimSpace(logs) == "" {
		c.logger.Info("current logs empty, fetching previous container logs",
			"namespace", namespace, "pod", name)
		logs, err = c.kube.GetPodLogs(ctx, namespace, name, &tail, true)
		if err != nil {
			c.logger.Error("failed to fetch previous pod logs", "namespace", namespace, "pod", name, "error", err)
			return fmt.Sprintf("Error fetching logs: %v", err)
		}
	}

	if logs == "" {
		return "No logs available (even from terminated container)"
	}
	if c.redactor != nil {
		logs = c.redactor.Scrub(logs)
	}
	return logs
}
