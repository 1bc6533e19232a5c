package monitoring

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"sigs.k8s.io/yaml"
)

// grafanaDatasourceConfigMap holds the provisioned Prometheus datasource.
const grafanaDatasourceConfigMap = "grafana-datasource"

// datasourceProvisioning mirrors Grafana's datasource provisioning file
// format.
type datasourceProvisioning struct {
	APIVersion  int          `json:"apiVersion"`
	Datasources []datasource `json:"datasources"`
}

type datasource struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Access    string `json:"access"`
	URL       string `json:"url"`
	IsDefault bool   `json:"isDefault"`
	Editable  bool   `json:"editable"`
}

// renderGrafanaDatasource renders the provisioning YAML pointing Grafana at
// the in-cluster Prometheus service.
func renderGrafanaDatasource(namespace string) ([]byte, error) {
	cfg := datasourceProvisioning{
		APIVersion: 1,
		Datasources: []datasource{{
			Name:      "Prometheus",
			Type:      "prometheus",
			Access:    "proxy",
			URL:       fmt.Sprintf("http://prometheus-server.%s.svc.cluster.local", namespace),
			IsDefault: true,
			Editable:  false,
		}},
	}
	return yaml.Marshal(cfg)
}

// applyGrafanaDatasource creates or updates the datasource ConfigMap.
func (m *Manager) applyGrafanaDatasource(ctx context.Context, clientset kubernetes.Interface) error {
	data, err := renderGrafanaDatasource(m.namespace)
	if err != nil {
		return fmt.Errorf("failed to render datasource: %w", err)
	}

	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      grafanaDatasourceConfigMap,
			Namespace: m.namespace,
		},
		Data: map[string]string{"datasource.yaml": string(data)},
	}

	return createOrUpdateConfigMap(ctx, clientset, cm)
}

func createOrUpdateConfigMap(ctx context.Context, clientset kubernetes.Interface, cm *corev1.ConfigMap) error {
	cms := clientset.CoreV1().ConfigMaps(cm.Namespace)
	_, err := cms.Create(ctx, cm, metav1.CreateOptions{})
	if apierrors.IsAlreadyExists(err) {
		_, err = cms.Update(ctx, cm, metav1.UpdateOptions{})
	}
	return err
}
