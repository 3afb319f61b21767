package collector

import (
	"context"
	"fmt"
)

// ProfilingSource fetches a profiling analysis report for a target workload.
// Implemented by the Cryostat client.
type ProfilingSource interface {
	Report(ctx context.Context, target string) (string, error)
}

// fetchProfiling returns the profiling report for the pod, a fixed notice
// when profiling is disabled, or an inline error line on failure.
func (c *Collector) fetchProfiling(ctx context.Context, pod string) string {
	if !c.profilingEnabled || c.profiling == nil {
		c.logger.Debug("profiling disabled, skipping report fetch")
		return "Profiling is disabled."
	}

	report, err := c.profiling.Report(ctx, pod)
	if err != nil {
		c.logger.Error("failed to fetch profiling report", "pod", pod, "error", err)
		return fmt.Sprintf("Error fetching profiling report: %v", err)
	}
	c.logger.Info("gathered profiling report", "pod", pod, "length", len(report))
	return report
}
