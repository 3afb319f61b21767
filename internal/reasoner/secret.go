package reasoner

import (
	"context"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// SecretReader reads a value from a Kubernetes Secret by namespace, name,
// and key. Backends that need API keys use this interface so tests can
// inject a stub.
type SecretReader interface {
	ReadSecret(ctx context.Context, namespace, name, key string) (string, error)
}

// SecretRef identifies a Kubernetes Secret and a key within it.
type SecretRef struct {
	Namespace string `yaml:"namespace"`
	Name      string `yaml:"name"`
	Key       string `yaml:"key"`
}

// Validate checks that the SecretRef has all required fields populated.
func (s SecretRef) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("secret name must not be empty")
	}
	if s.Key == "" {
		return fmt.Errorf("secret key must not be empty")
	}
	return nil
}

// KubeSecretReader implements SecretReader against the Kubernetes API.
type KubeSecretReader struct {
	clientset kubernetes.Interface
}

// NewKubeSecretReader wraps a clientset. The clientset must not be nil.
func NewKubeSecretReader(clientset kubernetes.Interface) (*KubeSecretReader, error) {
	if clientset == nil {
		return nil, fmt.Errorf("reasoner: clientset must not be nil")
	}
	return &KubeSecretReader{clientset: clientset}, nil
}

func (r *KubeSecretReader) ReadSecret(ctx context.Context, namespace, name, key string) (string, error) {
	secret, err := r.clientset.CoreV1().Secrets(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return "", fmt.Errorf("reading secret %s/%s: %w", namespace, name, err)
	}
	value, ok := secret.Data[key]
	if !ok {
		return "", fmt.Errorf("secret %s/%s has no key %q", namespace, name, key)
	}
	return string(value), nil
}

var _ SecretReader = (*KubeSecretReader)(nil)
