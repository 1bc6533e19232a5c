package monitoring

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/api"
	apiv1 "github.com/prometheus/client_golang/api/prometheus/v1"
)

// HealthStatus reports the reachability of the installed Prometheus.
type HealthStatus struct {
	PrometheusURL string `json:"prometheusUrl,omitempty"`
	Reachable     bool   `json:"reachable"`
	Version       string `json:"version,omitempty"`
	Error         string `json:"error,omitempty"`
}

// probePrometheus queries the Prometheus build info endpoint. Swappable in
// tests.
var probePrometheus = func(ctx context.Context, url string) (string, error) {
	client, err := api.NewClient(api.Config{Address: url})
	if err != nil {
		return "", fmt.Errorf("failed to create prometheus client: %w", err)
	}

	info, err := apiv1.NewAPI(client).Buildinfo(ctx)
	if err != nil {
		return "", fmt.Errorf("prometheus not reachable: %w", err)
	}
	return info.Version, nil
}

// Health checks whether the Prometheus service answers its API. The probe is
// skipped (Reachable=false, no error) while the LoadBalancer has no ingress
// yet.
func (m *Manager) Health(ctx context.Context) (*HealthStatus, error) {
	urls, err := m.URLs(ctx)
	if err != nil {
		return nil, err
	}

	status := &HealthStatus{PrometheusURL: urls["prometheus-server"]}
	if status.PrometheusURL == "" {
		status.Error = "prometheus-server has no LoadBalancer ingress yet"
		return status, nil
	}

	version, err := probePrometheus(ctx, status.PrometheusURL)
	if err != nil {
		status.Error = err.Error()
		return status, nil
	}

	status.Reachable = true
	status.Version = version
	return status, nil
}
