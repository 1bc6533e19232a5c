// Package monitoring installs and inspects the Prometheus/Grafana stack on a
// target cluster. Installs go through the Helm action API; namespaces,
// ConfigMaps, and service lookups go through client-go.
package monitoring

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/kubeprov/kubeprov/internal/invoke"
)

// Chart sources. The monitoring stack is pinned to well-known community
// repositories; versions float to the latest published chart.
const (
	prometheusRepoURL = "https://prometheus-community.github.io/helm-charts"
	grafanaRepoURL    = "https://grafana.github.io/helm-charts"

	prometheusRelease = "prometheus"
	grafanaRelease    = "grafana"

	// DefaultNamespace is where the monitoring stack is installed.
	DefaultNamespace = "monitoring"
)

// Error reports a failed monitoring operation and the step it failed at.
type Error struct {
	Step string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("monitoring %s failed: %v", e.Step, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// newKubeClient builds a client-go clientset from a kubeconfig path.
// Swappable in tests.
var newKubeClient = func(kubeconfigPath string) (kubernetes.Interface, error) {
	restCfg, err := clientcmd.BuildConfigFromFlags("", kubeconfigPath)
	if err != nil {
		return nil, err
	}
	return kubernetes.NewForConfig(restCfg)
}

// Manager installs and queries the monitoring stack of one cluster. The
// runner carries the kubectl invocations of the autoscaling step.
type Manager struct {
	kubeconfig string
	namespace  string
	runner     invoke.Runner
}

// NewManager returns a Manager for the given kubeconfig. An empty namespace
// selects DefaultNamespace.
func NewManager(kubeconfigPath, namespace string, runner invoke.Runner) *Manager {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Manager{kubeconfig: kubeconfigPath, namespace: namespace, runner: runner}
}

// Setup installs or upgrades the monitoring stack: the Prometheus and
// Grafana releases, the Grafana datasource ConfigMap, the default alert
// rules, and the autoscaling baseline (metrics-server plus a sample HPA).
// Fails fast on the first error; already-applied steps are not rolled back.
func (m *Manager) Setup(ctx context.Context) error {
	if _, err := os.Stat(m.kubeconfig); err != nil {
		return &Error{Step: "setup", Err: fmt.Errorf("kubeconfig not readable: %w", err)}
	}

	clientset, err := newKubeClient(m.kubeconfig)
	if err != nil {
		return &Error{Step: "setup", Err: err}
	}

	if err := m.ensureNamespace(ctx, clientset); err != nil {
		return &Error{Step: "namespace", Err: err}
	}

	helm, err := newHelmClient(m.kubeconfig, m.namespace)
	if err != nil {
		return &Error{Step: "helm", Err: err}
	}

	log.WithField("namespace", m.namespace).Info("Installing Prometheus")
	if err := helm.InstallOrUpgrade(ctx, prometheusRelease, prometheusRepoURL, "prometheus", nil); err != nil {
		return &Error{Step: "prometheus", Err: err}
	}

	log.WithField("namespace", m.namespace).Info("Installing Grafana")
	grafanaValues := map[string]interface{}{
		"service": map[string]interface{}{"type": "LoadBalancer"},
	}
	if err := helm.InstallOrUpgrade(ctx, grafanaRelease, grafanaRepoURL, "grafana", grafanaValues); err != nil {
		return &Error{Step: "grafana", Err: err}
	}

	if err := m.applyGrafanaDatasource(ctx, clientset); err != nil {
		return &Error{Step: "grafana-datasource", Err: err}
	}

	if err := m.applyAlertRules(ctx, clientset); err != nil {
		return &Error{Step: "alert-rules", Err: err}
	}

	if err := m.setupAutoscaling(ctx); err != nil {
		return &Error{Step: "autoscaling", Err: err}
	}

	log.Info("Monitoring stack installed")
	return nil
}

// ensureNamespace creates the monitoring namespace if it does not exist.
func (m *Manager) ensureNamespace(ctx context.Context, clientset kubernetes.Interface) error {
	ns := &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: m.namespace}}
	_, err := clientset.CoreV1().Namespaces().Create(ctx, ns, metav1.CreateOptions{})
	if apierrors.IsAlreadyExists(err) {
		return nil
	}
	return err
}
