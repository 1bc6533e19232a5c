package monitoring

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	autoscalingv2 "k8s.io/api/autoscaling/v2"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"
)

const (
	// metricsServerManifestURL is the upstream metrics-server release
	// manifest applied when the deployment is absent.
	metricsServerManifestURL = "https://github.com/kubernetes-sigs/metrics-server/releases/latest/download/components.yaml"

	// metricsServerNamespace is where metrics-server runs.
	metricsServerNamespace = "kube-system"

	// sampleHPAPath is where the sample autoscaler manifest is written for
	// the user to adapt.
	sampleHPAPath = "deployments/autoscaling/sample-hpa.yaml"
)

// setupAutoscaling deploys metrics-server when it is not already running and
// writes a sample HorizontalPodAutoscaler manifest for the user to adapt.
// metrics-server comes from the upstream release manifest, applied with
// kubectl.
func (m *Manager) setupAutoscaling(ctx context.Context) error {
	log.Info("Setting up cluster autoscaling")

	_, err := m.runner.Run(ctx, "", "kubectl",
		"get", "deployment", "metrics-server",
		"--namespace", metricsServerNamespace,
		"--kubeconfig", m.kubeconfig)
	if err != nil {
		if _, err := m.runner.Run(ctx, "", "kubectl",
			"apply", "-f", metricsServerManifestURL,
			"--kubeconfig", m.kubeconfig); err != nil {
			return fmt.Errorf("failed to deploy metrics-server: %w", err)
		}
		log.Info("Metrics Server deployed")
	}

	data, err := renderSampleHPA()
	if err != nil {
		return fmt.Errorf("failed to render sample HPA: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(sampleHPAPath), 0o750); err != nil {
		return fmt.Errorf("failed to create autoscaling directory: %w", err)
	}
	if err := os.WriteFile(sampleHPAPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write sample HPA: %w", err)
	}

	log.WithField("path", sampleHPAPath).Info("Sample HPA configuration created")
	return nil
}

// renderSampleHPA renders a starter autoscaler targeting a placeholder
// deployment, scaling 1..10 replicas at 50% CPU.
func renderSampleHPA() ([]byte, error) {
	minReplicas := int32(1)
	averageUtilization := int32(50)

	hpa := autoscalingv2.HorizontalPodAutoscaler{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "autoscaling/v2",
			Kind:       "HorizontalPodAutoscaler",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      "sample-hpa",
			Namespace: "default",
		},
		Spec: autoscalingv2.HorizontalPodAutoscalerSpec{
			ScaleTargetRef: autoscalingv2.CrossVersionObjectReference{
				APIVersion: "apps/v1",
				Kind:       "Deployment",
				Name:       "sample-deployment",
			},
			MinReplicas: &minReplicas,
			MaxReplicas: 10,
			Metrics: []autoscalingv2.MetricSpec{{
				Type: autoscalingv2.ResourceMetricSourceType,
				Resource: &autoscalingv2.ResourceMetricSource{
					Name: "cpu",
					Target: autoscalingv2.MetricTarget{
						Type:               autoscalingv2.UtilizationMetricType,
						AverageUtilization: &averageUtilization,
					},
				},
			}},
		},
	}
	return yaml.Marshal(hpa)
}
