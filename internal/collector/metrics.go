package collector

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/shreyabiradar07/causa/internal/promql"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// PromQuerier is the slice of the Prometheus client the summarizer needs.
type PromQuerier interface {
	Query(ctx context.Context, query string) (*promql.QueryResponse, error)
	ExtractValue(resp *promql.QueryResponse) float64
}

// MetricSummarizer turns raw Prometheus data for one pod into a fixed-format
// text summary for the analysis prompt. Summarize never returns an error
// value: any failure collapses into a single-line error string so the summary
// can always stand in for the METRICS section of a context.
type MetricSummarizer struct {
	kube   KubeClient
	prom   PromQuerier
	logger *slog.Logger
}

// NewMetricSummarizer creates a summarizer. Both clients are required.
func NewMetricSummarizer(kube KubeClient, prom PromQuerier, logger *slog.Logger) (*MetricSummarizer, error) {
	if kube == nil {
		return nil, fmt.Errorf("collector: kube client must not be nil")
	}
	if prom == nil {
		return nil, fmt.Errorf("collector: prometheus client must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MetricSummarizer{kube: kube, prom: prom, logger: logger}, nil
}

// Summarize collects memory and CPU usage against limits for the pod.
//
// Four instant queries run against application containers (container!="",
// image!="" excludes pause and init containers). When the container memory
// query extracts to exactly 0.0, the summarizer falls back to JVM heap
// metrics, which covers workloads whose cgroup metrics are not scraped.
// Percentages are computed only against positive limits.
func (s *MetricSummarizer) Summarize(ctx context.Context, namespace, pod string) string {
	s.logger.Info("fetching detailed metrics", "namespace", namespace, "pod", pod)

	limits, requests, err := s.resourceConfig(ctx, namespace, pod)
	if err != nil {
		s.logger.Error("metric collection failed", "namespace", namespace, "pod", pod, "error", err)
		return fmt.Sprintf("Error fetching detailed metrics: %v", err)
	}

	memUsageQuery := fmt.Sprintf(
		`sum(container_memory_usage_bytes{pod=%q, namespace=%q, container!="", image!=""})`, pod, namespace)
	memLimitQuery := fmt.Sprintf(
		`sum(container_spec_memory_limit_bytes{pod=%q, namespace=%q, container!="", image!=""})`, pod, namespace)
	cpuUsageQuery := fmt.Sprintf(
		`sum(rate(container_cpu_usage_seconds_total{pod=%q, namespace=%q, container!="", image!=""}[5m]))`, pod, namespace)
	cpuLimitQuery := fmt.Sprintf(
		`sum(container_spec_cpu_quota{pod=%q, namespace=%q, container!="", image!=""}) / `+
			`sum(container_spec_cpu_period{pod=%q, namespace=%q, container!="", image!=""})`,
		pod, namespace, pod, namespace)

	memUsageBytes, err := s.scalar(ctx, memUsageQuery)
	if err != nil {
		return fmt.Sprintf("Error fetching detailed metrics: %v", err)
	}
	memLimitBytes, err := s.scalar(ctx, memLimitQuery)
	if err != nil {
		return fmt.Sprintf("Error fetching detailed metrics: %v", err)
	}
	cpuUsageCores, err := s.scalar(ctx, cpuUsageQuery)
	if err != nil {
		return fmt.Sprintf("Error fetching detailed metrics: %v", err)
	}
	cpuLimitCores, err := s.scalar(ctx, cpuLimitQuery)
	if err != nil {
		return fmt.Sprintf("Error fetching detailed metrics: %v", err)
	}

	if memUsageBytes == 0.0 {
		s.logger.Info("container memory metrics returned 0, attempting JVM heap fallback",
			"namespace", namespace, "pod", pod)
		jvmQuery := fmt.Sprintf(
			`sum(jvm_memory_used_bytes{pod=%q, namespace=%q, area="heap"})`, pod, namespace)
		memUsageBytes, err = s.scalar(ctx, jvmQuery)
		if err != nil {
			return fmt.Sprintf("Error fetching detailed metrics: %v", err)
		}
	}

	var memPercent, cpuPercent float64
	if memLimitBytes > 0 {
		memPercent = memUsageBytes / memLimitBytes * 100
	}
	if cpuLimitCores > 0 {
		cpuPercent = cpuUsageCores / cpuLimitCores * 100
	}

	s.logger.Info("metric collection complete",
		"namespace", namespace, "pod", pod,
		"mem_usage_bytes", memUsageBytes, "mem_limit_bytes", memLimitBytes,
		"cpu_usage_cores", cpuUsageCores, "cpu_limit_cores", cpuLimitCores)

	return fmt.Sprintf(`--- DETAILED RESOURCE METRICS ---
TARGET: %s/%s

K8S RESOURCE CONFIG:
  Limits:   %s
  Requests: %s

PROMETHEUS REAL-TIME DATA:
  Memory Usage: %.2f MB (%.2f%% of limit)
  Memory Limit: %.2f MB
  CPU Usage:    %.3f Cores (%.2f%% of limit)
  CPU Limit:    %.3f Cores
---
`, namespace, pod,
		limits, requests,
		memUsageBytes/(1024*1024), memPercent, memLimitBytes/(1024*1024),
		cpuUsageCores, cpuPercent, cpuLimitCores)
}

// scalar runs one instant query and extracts its value. Extraction itself
// never fails; only the query round trip can.
func (s *MetricSummarizer) scalar(ctx context.Context, query string) (float64, error) {
	resp, err := s.prom.Query(ctx, query)
	if err != nil {
		return 0, err
	}
	return s.prom.ExtractValue(resp), nil
}

// resourceConfig formats the limits and requests of the pod's first
// container. A missing pod or an empty container list yields "N/A" for both;
// only API errors propagate.
func (s *MetricSummarizer) resourceConfig(ctx context.Context, namespace, pod string) (limits, requests string, err error) {
	p, err := s.kube.GetPod(ctx, namespace, pod)
	if apierrors.IsNotFound(err) {
		return "N/A", "N/A", nil
	}
	if err != nil {
		return "", "", err
	}
	if p == nil || len(p.Spec.Containers) == 0 {
		return "N/A", "N/A", nil
	}
	res := p.Spec.Containers[0].Resources
	return formatResourceList(res.Limits), formatResourceList(res.Requests), nil
}

// formatResourceList renders a resource list as a deterministic bracketed
// key=value string, sorted by resource name.
func formatResourceList(rl corev1.ResourceList) string {
	names := make([]string, 0, len(rl))
	for name := range rl {
		names = append(names, string(name))
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		q := rl[corev1.ResourceName(name)]
		parts = append(parts, fmt.Sprintf("%s=%s", name, q.String()))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
