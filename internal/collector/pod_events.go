package collector

import (
	"context"
	"fmt"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// fetchEvents formats the Kubernetes events involving the pod, one line per
// event with timestamp, type, reason, and message. Failures degrade to an
// inline error line.
func (c *Collector) fetchEvents(ctx context.Context, namespace, name string) string {
	opts := metav1.ListOptions{
		FieldSelector: fmt.Sprintf("involvedObject.name=%s,involvedObject.kind=Pod", name),
	}
	events, err := c.kube.ListEvents(ctx, namespace, opts)
	if err != nil {
		c.logger.Error("failed to fetch events", "namespace", namespace, "pod", name, "error", err)
		return fmt.Sprintf("Error fetching events: %v", err)
	}

	if len(events.Items) == 0 {
		return "No events found for this pod."
	}

	var b strings.Builder
	for _, e := range events.Items {
		ts := e.LastTimestamp.Time
		if ts.IsZero() {
			ts = e.EventTime.Time
		}
		fmt.Fprintf(&b, "[%s] Type: %s, Reason: %s, Message: %s\n",
			ts.Format("2006-01-02T15:04:05Z"), e.Type, e.Reason, e.Message)
	}
	c.logger.Debug("gathered events", "pod", name, "count", len(events.Items))
	return b.String()
}
