package collector

import (
	"context"
	"fmt"
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// fetchPodStatus formats the pod phase and per-container state: readiness,
// restart count, a waiting reason when present, and the last termination with
// exit code. Failures degrade to an inline error line so one broken fetch
// cannot abort the whole collection.
func (c *Collector) fetchPodStatus(ctx context.Context, namespace, name string) string {
	pod, err := c.kube.GetPod(ctx, namespace, name)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return "Pod not found"
		}
		c.logger.Error("failed to fetch pod status", "namespace", namespace, "pod", name, "error", err)
		return fmt.Sprintf("Error fetching pod status: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Phase: %s\n", pod.Status.Phase)

	for _, cs := range pod.Status.ContainerStatuses {
		fmt.Fprintf(&b, "Container: %s\n", cs.Name)
		fmt.Fprintf(&b, "  Ready: %t\n", cs.Ready)
		fmt.Fprintf(&b, "  Restart Count: %d\n", cs.RestartCount)

		if w := cs.State.Waiting; w != nil {
			fmt.Fprintf(&b, "  Current State: Waiting (%s)\n", w.Reason)
			fmt.Fprintf(&b, "  Message: %s\n", w.Message)
		}
		if t := cs.LastTerminationState.Terminated; t != nil {
			fmt.Fprintf(&b, "  Last State: Terminated (%s)\n", t.Reason)
			fmt.Fprintf(&b, "  Exit Code: %d\n", t.ExitCode)
			fmt.Fprintf(&b, "  Finished At: %s\n", t.FinishedAt.Format("2006-01-02T15:04:05Z"))
		}
	}
	return b.String()
}
