package handlers

import (
	"context"
	"fmt"

	"github.com/kubeprov/kubeprov/internal/monitoring"
)

// MonitoringManager interface for testing - matches monitoring.Manager.
type MonitoringManager interface {
	Setup(ctx context.Context) error
	URLs(ctx context.Context) (map[string]string, error)
	Health(ctx context.Context) (*monitoring.HealthStatus, error)
}

// newMonitoringManager creates a monitoring manager. Swappable in tests.
var newMonitoringManager = func(kubeconfig, namespace string) MonitoringManager {
	return monitoring.NewManager(kubeconfig, namespace, newRunner())
}

// MonitoringSetup installs the Prometheus/Grafana stack and prints the
// service URLs that are already provisioned.
func MonitoringSetup(ctx context.Context, kubeconfig, namespace string) error {
	mgr := newMonitoringManager(kubeconfig, namespace)
	if err := mgr.Setup(ctx); err != nil {
		return err
	}

	fmt.Println("\nMonitoring stack installed.")

	urls, err := mgr.URLs(ctx)
	if err != nil {
		fmt.Printf("Warning: could not look up service URLs: %v\n", err)
		fmt.Println("Run 'kubeprov monitoring urls' to retry.")
		return nil
	}
	if len(urls) == 0 {
		fmt.Println("LoadBalancer addresses are still being provisioned; run 'kubeprov monitoring urls' in a few minutes.")
		return nil
	}
	printMonitoringURLs(urls)
	return nil
}

// MonitoringURLs prints the external endpoints of the monitoring services.
func MonitoringURLs(ctx context.Context, kubeconfig, namespace string) error {
	urls, err := newMonitoringManager(kubeconfig, namespace).URLs(ctx)
	if err != nil {
		return err
	}

	if len(urls) == 0 {
		fmt.Println("No LoadBalancer addresses yet; the services may still be provisioning.")
		return nil
	}
	printMonitoringURLs(urls)
	return nil
}

// MonitoringStatus probes the Prometheus API and prints the result as JSON.
func MonitoringStatus(ctx context.Context, kubeconfig, namespace string) error {
	health, err := newMonitoringManager(kubeconfig, namespace).Health(ctx)
	if err != nil {
		return err
	}
	return printJSON(health)
}

func printMonitoringURLs(urls map[string]string) {
	if url, ok := urls["prometheus-server"]; ok {
		fmt.Printf("  Prometheus: %s\n", url)
	}
	if url, ok := urls["grafana"]; ok {
		fmt.Printf("  Grafana:    %s\n", url)
	}
}
