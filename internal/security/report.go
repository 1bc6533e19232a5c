package security

import (
	"context"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Report aggregates the security posture of a cluster.
type Report struct {
	Timestamp        string        `json:"timestamp"`
	ClusterInfo      ClusterInfo   `json:"cluster_info"`
	BenchmarkResults *BenchResults `json:"benchmark_results"`
	Recommendations  []string      `json:"recommendations"`
}

// ClusterInfo is the cluster snapshot included in a Report.
type ClusterInfo struct {
	Version   string `json:"version"`
	NodeCount int    `json:"node_count"`
}

// recommendations is the static baseline advice attached to every report.
var recommendations = []string{
	"Enable Pod Security Standards for all namespaces",
	"Implement network policies to restrict pod-to-pod communication",
	"Regularly scan container images for vulnerabilities",
	"Implement least-privilege RBAC policies",
	"Enable audit logging for all API server requests",
}

// GenerateReport collects cluster version, node count, and CIS benchmark
// results. Read-only apart from the kube-bench Job it runs.
func (m *Manager) GenerateReport(ctx context.Context) (*Report, error) {
	log.Info("Generating security report")

	report := &Report{
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		Recommendations: recommendations,
	}

	version, err := m.kubectl(ctx, "", "version")
	if err != nil {
		return nil, &StepError{Step: "report", Err: err}
	}
	report.ClusterInfo.Version = strings.TrimSpace(version.Stdout)

	nodes, err := m.kubectl(ctx, "", "get", "nodes", "--no-headers")
	if err != nil {
		return nil, &StepError{Step: "report", Err: err}
	}
	report.ClusterInfo.NodeCount = countLines(nodes.Stdout)

	dir, err := os.MkdirTemp("", "kubeprov-security-")
	if err != nil {
		return nil, &StepError{Step: "report", Err: err}
	}
	defer func() { _ = os.RemoveAll(dir) }()

	bench, err := m.runKubeBench(ctx, dir)
	if err != nil {
		return nil, err
	}
	report.BenchmarkResults = bench

	return report, nil
}

func countLines(s string) int {
	count := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}
