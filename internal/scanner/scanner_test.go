package scanner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/shreyabiradar07/causa/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeLister returns a fixed pod list and records the requested selector.
type fakeLister struct {
	pods     []corev1.Pod
	err      error
	selector string
}

func (f *fakeLister) ListPods(ctx context.Context, namespace string, opts metav1.ListOptions) (*corev1.PodList, error) {
	f.selector = opts.LabelSelector
	if f.err != nil {
		return nil, f.err
	}
	return &corev1.PodList{Items: f.pods}, nil
}

// fakeAnalyzer records analyzed targets and fails the configured ones.
type fakeAnalyzer struct {
	mu      sync.Mutex
	targets []string
	failFor map[string]bool
	running int
	peak    int
}

func (f *fakeAnalyzer) Run(ctx context.Context, namespace, pod string) (*model.RcaReport, error) {
	key := namespace + "/" + pod

	f.mu.Lock()
	f.targets = append(f.targets, key)
	f.running++
	if f.running > f.peak {
		f.peak = f.running
	}
	f.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	f.running--
	fail := f.failFor[key]
	f.mu.Unlock()

	if fail {
		return nil, fmt.Errorf("analysis blew up for %s", key)
	}
	return model.HealthyReport(), nil
}

func labeledPod(namespace, name string) corev1.Pod {
	return corev1.Pod{ObjectMeta: metav1.ObjectMeta{
		Namespace: namespace,
		Name:      name,
		Labels:    map[string]string{"rca.enabled": "true"},
	}}
}

func TestSweepAnalyzesAllMatches(t *testing.T) {
	lister := &fakeLister{pods: []corev1.Pod{
		labeledPod("prod", "web-0"),
		labeledPod("prod", "web-1"),
		labeledPod("staging", "api-0"),
	}}
	analyzer := &fakeAnalyzer{}

	s, err := New(lister, analyzer, "rca.enabled=true", time.Minute, WithLogger(testLogger()))
	if err != nil {
		t.Fatal(err)
	}
	s.Sweep(context.Background())

	if lister.selector != "rca.enabled=true" {
		t.Errorf("list used selector %q", lister.selector)
	}
	if len(analyzer.targets) != 3 {
		t.Errorf("analyzed %d targets, want 3: %v", len(analyzer.targets), analyzer.targets)
	}
}

func TestSweepIsolatesTargetFailures(t *testing.T) {
	lister := &fakeLister{pods: []corev1.Pod{
		labeledPod("prod", "broken-0"),
		labeledPod("prod", "web-0"),
		labeledPod("prod", "web-1"),
	}}
	analyzer := &fakeAnalyzer{failFor: map[string]bool{"prod/broken-0": true}}

	s, err := New(lister, analyzer, "rca.enabled=true", time.Minute,
		WithLogger(testLogger()), WithConcurrency(1))
	if err != nil {
		t.Fatal(err)
	}
	s.Sweep(context.Background())

	if len(analyzer.targets) != 3 {
		t.Errorf("a failing target stopped the sweep: analyzed %v", analyzer.targets)
	}
}

func TestSweepBoundsConcurrency(t *testing.T) {
	var pods []corev1.Pod
	for i := 0; i < 8; i++ {
		pods = append(pods, labeledPod("prod", fmt.Sprintf("web-%d", i)))
	}
	lister := &fakeLister{pods: pods}
	analyzer := &fakeAnalyzer{}

	s, err := New(lister, analyzer, "rca.enabled=true", time.Minute,
		WithLogger(testLogger()), WithConcurrency(2))
	if err != nil {
		t.Fatal(err)
	}
	s.Sweep(context.Background())

	if analyzer.peak > 2 {
		t.Errorf("peak concurrency = %d, want at most 2", analyzer.peak)
	}
}

func TestSweepListFailure(t *testing.T) {
	lister := &fakeLister{err: fmt.Errorf("api server down")}
	analyzer := &fakeAnalyzer{}

	s, err := New(lister, analyzer, "rca.enabled=true", time.Minute, WithLogger(testLogger()))
	if err != nil {
		t.Fatal(err)
	}
	s.Sweep(context.Background())

	if len(analyzer.targets) != 0 {
		t.Errorf("no targets should be analyzed when listing fails, got %v", analyzer.targets)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	lister := &fakeLister{}
	analyzer := &fakeAnalyzer{}

	s, err := New(lister, analyzer, "rca.enabled=true", time.Minute,
		WithLogger(testLogger()), WithInitialDelay(time.Hour))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not stop after cancellation")
	}
}

func TestNewValidation(t *testing.T) {
	lister := &fakeLister{}
	analyzer := &fakeAnalyzer{}

	if _, err := New(nil, analyzer, "l=v", time.Minute); err == nil {
		t.Error("New(nil lister) expected an error")
	}
	if _, err := New(lister, nil, "l=v", time.Minute); err == nil {
		t.Error("New(nil analyzer) expected an error")
	}
	if _, err := New(lister, analyzer, "", time.Minute); err == nil {
		t.Error("New(empty selector) expected an error")
	}
	if _, err := New(lister, analyzer, "l=v", 0); err == nil {
		t.Error("New(zero interval) expected an error")
	}
}
