package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubeprov/kubeprov/internal/invoke"
)

func TestHarden_AppliesStepsInOrder(t *testing.T) {
	t.Parallel()
	fake := invoke.NewFake()
	m := NewManager("kc", "", fake)

	require.NoError(t, m.Harden(context.Background()))

	assert.Equal(t, []string{
		"kubectl label namespace default name=default --overwrite --kubeconfig kc",
		"kubectl apply -f default-deny-ingress.yaml --namespace default --kubeconfig kc",
		"kubectl apply -f allow-namespace-internal.yaml --namespace default --kubeconfig kc",
		"kubectl get namespace restricted-pods --kubeconfig kc",
		"kubectl label --overwrite namespace restricted-pods" +
			" pod-security.kubernetes.io/enforce=restricted" +
			" pod-security.kubernetes.io/audit=restricted" +
			" pod-security.kubernetes.io/warn=restricted --kubeconfig kc",
		"kubectl apply -f readonly-rbac.yaml --kubeconfig kc",
	}, fake.CommandLines())
}

func TestHarden_FailFastNamesFailingManifest(t *testing.T) {
	t.Parallel()
	fake := invoke.NewFake()
	fake.Fail("kubectl apply -f allow-namespace-internal.yaml", "admission denied", 1)
	m := NewManager("kc", "", fake)

	err := m.Harden(context.Background())
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "allow-namespace-internal", stepErr.Step)
	assert.Equal(t, "allow-namespace-internal.yaml", stepErr.Manifest)
	assert.Contains(t, err.Error(), "allow-namespace-internal.yaml")

	// Later steps never ran.
	lines := fake.CommandLines()
	assert.Len(t, lines, 3)
	for _, line := range lines {
		assert.NotContains(t, line, "restricted-pods")
		assert.NotContains(t, line, "readonly-rbac.yaml")
	}
}

func TestHarden_CreatesRestrictedNamespaceWhenMissing(t *testing.T) {
	t.Parallel()
	fake := invoke.NewFake()
	fake.Fail("kubectl get namespace restricted-pods", `namespaces "restricted-pods" not found`, 1)
	m := NewManager("kc", "", fake)

	require.NoError(t, m.Harden(context.Background()))
	assert.Contains(t, fake.CommandLines(), "kubectl create namespace restricted-pods --kubeconfig kc")
}

func TestHarden_CustomNamespace(t *testing.T) {
	t.Parallel()
	fake := invoke.NewFake()
	m := NewManager("kc", "workloads", fake)

	require.NoError(t, m.Harden(context.Background()))
	lines := fake.CommandLines()
	assert.Equal(t, "kubectl label namespace workloads name=workloads --overwrite --kubeconfig kc", lines[0])
	assert.Contains(t, lines[1], "--namespace workloads")
}

func TestScan_ParsesBenchResults(t *testing.T) {
	t.Parallel()
	fake := invoke.NewFake()
	fake.Succeed("kubectl logs job/kube-bench",
		`{"Controls":[{"id":"1","version":"cis-1.6","text":"Master Node Security","node_type":"master"}],`+
			`"Totals":{"total_pass":41,"total_fail":3,"total_warn":12,"total_info":0}}`)
	m := NewManager("kc", "", fake)

	results, err := m.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 41, results.Totals.Pass)
	assert.Equal(t, 3, results.Totals.Fail)
	require.Len(t, results.Controls, 1)
	assert.Equal(t, "Master Node Security", results.Controls[0].Text)
	assert.Empty(t, results.Raw)

	lines := fake.CommandLines()
	assert.Contains(t, lines, "kubectl apply -f trivy-operator.yaml --kubeconfig kc")
	assert.Contains(t, lines, "kubectl apply -f kube-bench-job.yaml --kubeconfig kc")
	assert.Contains(t, lines, "kubectl wait --for=condition=complete job/kube-bench --timeout=300s --kubeconfig kc")
}

func TestScan_KeepsUnparsableOutputRaw(t *testing.T) {
	t.Parallel()
	fake := invoke.NewFake()
	fake.Succeed("kubectl logs job/kube-bench", "plain text output\n")
	m := NewManager("kc", "", fake)

	results, err := m.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "plain text output", results.Raw)
	assert.Empty(t, results.Controls)
}

func TestScan_WaitFailure(t *testing.T) {
	t.Parallel()
	fake := invoke.NewFake()
	fake.Fail("kubectl wait", "timed out waiting for the condition", 1)
	m := NewManager("kc", "", fake)

	_, err := m.Scan(context.Background())
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "kube-bench", stepErr.Step)
}

func TestGenerateReport(t *testing.T) {
	t.Parallel()
	fake := invoke.NewFake()
	fake.Succeed("kubectl version", "Server Version: v1.24.17\n")
	fake.Succeed("kubectl get nodes --no-headers", "node-1 Ready\nnode-2 Ready\nnode-3 Ready\n")
	fake.Succeed("kubectl logs job/kube-bench", `{"Totals":{"total_pass":10,"total_fail":1}}`)
	m := NewManager("kc", "", fake)

	report, err := m.GenerateReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Server Version: v1.24.17", report.ClusterInfo.Version)
	assert.Equal(t, 3, report.ClusterInfo.NodeCount)
	assert.Equal(t, 10, report.BenchmarkResults.Totals.Pass)
	assert.NotEmpty(t, report.Timestamp)
	assert.Len(t, report.Recommendations, 5)
}

func TestGenerateReport_VersionFailure(t *testing.T) {
	t.Parallel()
	fake := invoke.NewFake()
	fake.Fail("kubectl version", "connection refused", 1)
	m := NewManager("kc", "", fake)

	_, err := m.GenerateReport(context.Background())
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "report", stepErr.Step)
}

func TestRenderManifest_TemplatesNamespace(t *testing.T) {
	t.Parallel()
	data := struct{ Namespace string }{"workloads"}
	out, err := renderManifest("network-policies/allow-namespace-internal.yaml", data)
	require.NoError(t, err)
	assert.Contains(t, string(out), "name: workloads")
}
