package security

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// BenchResults holds the parsed output of a kube-bench run. Raw carries the
// job output verbatim when it could not be parsed as JSON.
type BenchResults struct {
	Controls []BenchControl `json:"Controls,omitempty"`
	Totals   BenchTotals    `json:"Totals"`
	Raw      string         `json:"raw_output,omitempty"`
}

// BenchControl is one CIS control section of the benchmark.
type BenchControl struct {
	ID       string `json:"id"`
	Version  string `json:"version"`
	Text     string `json:"text"`
	NodeType string `json:"node_type"`
}

// BenchTotals aggregates check outcomes across controls.
type BenchTotals struct {
	Pass int `json:"total_pass"`
	Fail int `json:"total_fail"`
	Warn int `json:"total_warn"`
	Info int `json:"total_info"`
}

// Scan deploys the trivy-operator and runs the CIS benchmark via kube-bench,
// returning the benchmark results.
func (m *Manager) Scan(ctx context.Context) (*BenchResults, error) {
	dir, err := os.MkdirTemp("", "kubeprov-security-")
	if err != nil {
		return nil, &StepError{Step: "scan", Err: err}
	}
	defer func() { _ = os.RemoveAll(dir) }()

	log.WithField("namespace", scanNamespace).Info("Setting up trivy container scanning")
	if _, err := m.kubectl(ctx, "", "get", "namespace", scanNamespace); err != nil {
		if _, err := m.kubectl(ctx, "", "create", "namespace", scanNamespace); err != nil {
			return nil, &StepError{Step: "trivy-operator", Err: err}
		}
	}

	data := struct{ Namespace string }{scanNamespace}
	if err := m.applyManifest(ctx, dir, "scan/trivy-operator.yaml", data, ""); err != nil {
		return nil, &StepError{Step: "trivy-operator", Manifest: "trivy-operator.yaml", Err: err}
	}

	return m.runKubeBench(ctx, dir)
}

// runKubeBench runs the CIS benchmark as a Job: apply, wait for completion,
// collect and parse the logs.
func (m *Manager) runKubeBench(ctx context.Context, dir string) (*BenchResults, error) {
	log.Info("Running kube-bench CIS benchmark checks")
	if err := m.applyManifest(ctx, dir, "scan/kube-bench-job.yaml", nil, ""); err != nil {
		return nil, &StepError{Step: "kube-bench", Manifest: "kube-bench-job.yaml", Err: err}
	}

	if _, err := m.kubectl(ctx, "", "wait", "--for=condition=complete", "job/kube-bench", "--timeout=300s"); err != nil {
		return nil, &StepError{Step: "kube-bench", Err: err}
	}

	res, err := m.kubectl(ctx, "", "logs", "job/kube-bench")
	if err != nil {
		return nil, &StepError{Step: "kube-bench", Err: err}
	}

	var results BenchResults
	if err := json.Unmarshal([]byte(res.Stdout), &results); err != nil {
		log.WithError(err).Warn("Failed to parse kube-bench output as JSON")
		return &BenchResults{Raw: strings.TrimSpace(res.Stdout)}, nil
	}
	return &results, nil
}
