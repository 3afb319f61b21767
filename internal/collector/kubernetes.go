// Package collector assembles the diagnostic context for a workload: pod
// status, events, metrics, logs, and profiling data.
//
// kubernetes.go defines the KubeClient interface the collectors use to talk
// to the API server, plus the clientset-backed implementation. The interface
// is intentionally narrow so tests can substitute fakes.
package collector

import (
	"context"
	"fmt"
	"io"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// KubeClient abstracts the Kubernetes API operations the collectors need.
type KubeClient interface {
	// GetPod fetches a pod by namespace and name.
	GetPod(ctx context.Context, namespace, name string) (*corev1.Pod, error)

	// ListPods lists pods matching the given options. An empty namespace
	// lists across all namespaces.
	ListPods(ctx context.Context, namespace string, opts metav1.ListOptions) (*corev1.PodList, error)

	// ListEvents lists events matching the given options in a namespace.
	ListEvents(ctx context.Context, namespace string, opts metav1.ListOptions) (*corev1.EventList, error)

	// GetPodLogs returns the log output of the pod's default container,
	// optionally from the previous terminated instance.
	GetPodLogs(ctx context.Context, namespace, name string, tailLines *int64, previous bool) (string, error)
}

// Client implements KubeClient on top of a client-go clientset.
type Client struct {
	clientset kubernetes.Interface
}

// NewClient wraps a clientset. The clientset must not be nil.
func NewClient(clientset kubernetes.Interface) (*Client, error) {
	if clientset == nil {
		return nil, fmt.Errorf("collector: clientset must not be nil")
	}
	return &Client{clientset: clientset}, nil
}

func (c *Client) GetPod(ctx context.Context, namespace, name string) (*corev1.Pod, error) {
	return c.clientset.CoreV1().Pods(namespace).Get(ctx, name, metav1.GetOptions{})
}

func (c *Client) ListPods(ctx context.Context, namespace string, opts metav1.ListOptions) (*corev1.PodList, error) {
	return c.clientset.CoreV1().Pods(namespace).List(ctx, opts)
}

func (c *Client) ListEvents(ctx context.Context, namespace string, opts metav1.ListOptions) (*corev1.EventList, error) {
	return c.clientset.CoreV1().Events(namespace).List(ctx, opts)
}

func (c *Client) GetPodLogs(ctx context.Context, namespace, name string, tailLines *int64, previous bool) (string, error) {
	req := c.clientset.CoreV1().Pods(namespace).GetLogs(name, &corev1.PodLogOptions{
		TailLines: tailLines,
		Previous:  previous,
	})
	stream, err := req.Stream(ctx)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

var _ KubeClient = (*Client)(nil)
