package monitoring

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
	"sigs.k8s.io/yaml"
)

// alertRulesConfigMap holds the default Prometheus alerting rules.
const alertRulesConfigMap = "prometheus-alerts"

// ruleGroups mirrors the Prometheus rule file format.
type ruleGroups struct {
	Groups []ruleGroup `json:"groups"`
}

type ruleGroup struct {
	Name  string      `json:"name"`
	Rules []alertRule `json:"rules"`
}

type alertRule struct {
	Alert       string            `json:"alert"`
	Expr        string            `json:"expr"`
	For         string            `json:"for"`
	Labels      map[string]string `json:"labels"`
	Annotations map[string]string `json:"annotations"`
}

// defaultAlertRules returns the baseline rule set installed by setup: CPU
// and memory pressure on nodes, and crash-looping pods.
func defaultAlertRules() ruleGroups {
	warning := map[string]string{"severity": "warning"}
	return ruleGroups{Groups: []ruleGroup{{
		Name: "kubernetes-alerts",
		Rules: []alertRule{
			{
				Alert:  "HighCPUUsage",
				Expr:   "100 - (avg by(instance) (irate(node_cpu_seconds_total{mode='idle'}[5m])) * 100) > 80",
				For:    "5m",
				Labels: warning,
				Annotations: map[string]string{
					"summary":     "High CPU usage detected",
					"description": "CPU usage is above 80% for 5 minutes on {{ $labels.instance }}",
				},
			},
			{
				Alert:  "HighMemoryUsage",
				Expr:   "(node_memory_MemTotal_bytes - node_memory_MemAvailable_bytes) / node_memory_MemTotal_bytes * 100 > 80",
				For:    "5m",
				Labels: warning,
				Annotations: map[string]string{
					"summary":     "High memory usage detected",
					"description": "Memory usage is above 80% for 5 minutes on {{ $labels.instance }}",
				},
			},
			{
				Alert:  "KubernetesPodCrashLooping",
				Expr:   "increase(kube_pod_container_status_restarts_total[1h]) > 5",
				For:    "10m",
				Labels: warning,
				Annotations: map[string]string{
					"summary":     "Pod is crash looping",
					"description": "Pod {{ $labels.pod }} in namespace {{ $labels.namespace }} is crash looping",
				},
			},
		},
	}}}
}

// applyAlertRules writes the rule ConfigMap and restarts prometheus-server
// so it picks up the new rules.
func (m *Manager) applyAlertRules(ctx context.Context, clientset kubernetes.Interface) error {
	data, err := yaml.Marshal(defaultAlertRules())
	if err != nil {
		return fmt.Errorf("failed to render alert rules: %w", err)
	}

	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      alertRulesConfigMap,
			Namespace: m.namespace,
		},
		Data: map[string]string{"alerts.yaml": string(data)},
	}
	if err := createOrUpdateConfigMap(ctx, clientset, cm); err != nil {
		return err
	}

	return restartDeployment(ctx, clientset, m.namespace, "prometheus-server")
}

// restartDeployment triggers a rolling restart the same way kubectl rollout
// restart does: by stamping the pod template with a restartedAt annotation.
func restartDeployment(ctx context.Context, clientset kubernetes.Interface, namespace, name string) error {
	patch := fmt.Sprintf(
		`{"spec":{"template":{"metadata":{"annotations":{"kubectl.kubernetes.io/restartedAt":%q}}}}}`,
		time.Now().UTC().Format(time.RFC3339),
	)
	_, err := clientset.AppsV1().Deployments(namespace).Patch(
		ctx, name, types.StrategicMergePatchType, []byte(patch), metav1.PatchOptions{})
	if err != nil {
		return fmt.Errorf("failed to restart deployment %s: %w", name, err)
	}
	return nil
}
