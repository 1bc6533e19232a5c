package monitoring

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// URLs returns the externally reachable endpoints of the monitoring
// services, keyed by service. Services without a LoadBalancer ingress yet
// are omitted.
func (m *Manager) URLs(ctx context.Context) (map[string]string, error) {
	clientset, err := newKubeClient(m.kubeconfig)
	if err != nil {
		return nil, &Error{Step: "urls", Err: err}
	}

	urls := map[string]string{}
	for svc, port := range map[string]int{
		"prometheus-server": 9090,
		"grafana":           3000,
	} {
		host, err := loadBalancerHost(ctx, clientset, m.namespace, svc)
		if err != nil {
			return nil, &Error{Step: "urls", Err: err}
		}
		if host != "" {
			urls[svc] = fmt.Sprintf("http://%s:%d", host, port)
		}
	}
	return urls, nil
}

// loadBalancerHost returns the first LoadBalancer ingress IP or hostname of
// the service, or empty when none is provisioned yet.
func loadBalancerHost(ctx context.Context, clientset kubernetes.Interface, namespace, name string) (string, error) {
	svc, err := clientset.CoreV1().Services(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to get service %s: %w", name, err)
	}
	return firstIngressHost(svc.Status.LoadBalancer.Ingress), nil
}

func firstIngressHost(ingress []corev1.LoadBalancerIngress) string {
	for _, ing := range ingress {
		if ing.IP != "" {
			return ing.IP
		}
		if ing.Hostname != "" {
			return ing.Hostname
		}
	}
	return ""
}
