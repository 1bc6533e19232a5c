package monitoring

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	k8sfake "k8s.io/client-go/kubernetes/fake"

	"github.com/kubeprov/kubeprov/internal/invoke"
)

type fakeHelm struct {
	installs []string
	failOn   string
}

func (f *fakeHelm) InstallOrUpgrade(_ context.Context, releaseName, repoURL, chartName string, _ map[string]interface{}) error {
	f.installs = append(f.installs, fmt.Sprintf("%s %s %s", releaseName, repoURL, chartName))
	if releaseName == f.failOn {
		return errors.New("chart pull failed")
	}
	return nil
}

func writeKubeconfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kubeconfig")
	require.NoError(t, os.WriteFile(path, []byte("apiVersion: v1\nkind: Config\n"), 0o600))
	return path
}

func swapClients(t *testing.T, clientset kubernetes.Interface, helm helmInstaller) {
	t.Helper()
	origKube := newKubeClient
	origHelm := newHelmClient
	newKubeClient = func(string) (kubernetes.Interface, error) { return clientset, nil }
	newHelmClient = func(string, string) (helmInstaller, error) { return helm, nil }
	t.Cleanup(func() {
		newKubeClient = origKube
		newHelmClient = origHelm
	})
}

func prometheusServerDeployment(namespace string) *appsv1.Deployment {
	return &appsv1.Deployment{ObjectMeta: metav1.ObjectMeta{
		Name:      "prometheus-server",
		Namespace: namespace,
	}}
}

func TestSetup_InstallsStackInOrder(t *testing.T) {
	t.Chdir(t.TempDir())
	kubeconfig := writeKubeconfig(t)
	clientset := k8sfake.NewSimpleClientset(prometheusServerDeployment("monitoring"))
	helm := &fakeHelm{}
	swapClients(t, clientset, helm)
	fake := invoke.NewFake()

	m := NewManager(kubeconfig, "", fake)
	require.NoError(t, m.Setup(context.Background()))

	require.Len(t, helm.installs, 2)
	assert.Equal(t, "prometheus https://prometheus-community.github.io/helm-charts prometheus", helm.installs[0])
	assert.Equal(t, "grafana https://grafana.github.io/helm-charts grafana", helm.installs[1])

	ctx := context.Background()
	_, err := clientset.CoreV1().Namespaces().Get(ctx, "monitoring", metav1.GetOptions{})
	require.NoError(t, err)

	ds, err := clientset.CoreV1().ConfigMaps("monitoring").Get(ctx, grafanaDatasourceConfigMap, metav1.GetOptions{})
	require.NoError(t, err)
	assert.Contains(t, ds.Data["datasource.yaml"], "prometheus-server.monitoring.svc.cluster.local")

	alerts, err := clientset.CoreV1().ConfigMaps("monitoring").Get(ctx, alertRulesConfigMap, metav1.GetOptions{})
	require.NoError(t, err)
	assert.Contains(t, alerts.Data["alerts.yaml"], "HighCPUUsage")
	assert.Contains(t, alerts.Data["alerts.yaml"], "KubernetesPodCrashLooping")

	// metrics-server already present, so only the existence check ran.
	assert.Equal(t, []string{
		"kubectl get deployment metrics-server --namespace kube-system --kubeconfig " + kubeconfig,
	}, fake.CommandLines())

	hpa, err := os.ReadFile(sampleHPAPath)
	require.NoError(t, err)
	assert.Contains(t, string(hpa), "HorizontalPodAutoscaler")
	assert.Contains(t, string(hpa), "maxReplicas: 10")
}

func TestSetup_DeploysMetricsServerWhenMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	kubeconfig := writeKubeconfig(t)
	clientset := k8sfake.NewSimpleClientset(prometheusServerDeployment("monitoring"))
	swapClients(t, clientset, &fakeHelm{})
	fake := invoke.NewFake()
	fake.Fail("kubectl get deployment metrics-server", `deployments.apps "metrics-server" not found`, 1)

	m := NewManager(kubeconfig, "", fake)
	require.NoError(t, m.Setup(context.Background()))

	assert.Contains(t, fake.CommandLines(),
		"kubectl apply -f "+metricsServerManifestURL+" --kubeconfig "+kubeconfig)
}

func TestSetup_MetricsServerApplyFailure(t *testing.T) {
	t.Chdir(t.TempDir())
	kubeconfig := writeKubeconfig(t)
	clientset := k8sfake.NewSimpleClientset(prometheusServerDeployment("monitoring"))
	swapClients(t, clientset, &fakeHelm{})
	fake := invoke.NewFake()
	fake.Fail("kubectl get deployment metrics-server", "not found", 1)
	fake.Fail("kubectl apply", "connection refused", 1)

	err := NewManager(kubeconfig, "", fake).Setup(context.Background())
	var monErr *Error
	require.ErrorAs(t, err, &monErr)
	assert.Equal(t, "autoscaling", monErr.Step)
}

func TestSetup_UnreadableKubeconfig(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "missing"), "", invoke.NewFake())

	err := m.Setup(context.Background())
	var monErr *Error
	require.ErrorAs(t, err, &monErr)
	assert.Equal(t, "setup", monErr.Step)
}

func TestSetup_HelmFailureAborts(t *testing.T) {
	kubeconfig := writeKubeconfig(t)
	clientset := k8sfake.NewSimpleClientset()
	helm := &fakeHelm{failOn: "prometheus"}
	swapClients(t, clientset, helm)

	err := NewManager(kubeconfig, "", invoke.NewFake()).Setup(context.Background())
	var monErr *Error
	require.ErrorAs(t, err, &monErr)
	assert.Equal(t, "prometheus", monErr.Step)

	// Fail-fast: grafana was never attempted, no ConfigMaps written.
	require.Len(t, helm.installs, 1)
	_, err = clientset.CoreV1().ConfigMaps("monitoring").Get(context.Background(), grafanaDatasourceConfigMap, metav1.GetOptions{})
	require.Error(t, err)
}

func TestSetup_RepeatUpdatesConfigMaps(t *testing.T) {
	t.Chdir(t.TempDir())
	kubeconfig := writeKubeconfig(t)
	clientset := k8sfake.NewSimpleClientset(prometheusServerDeployment("monitoring"))
	helm := &fakeHelm{}
	swapClients(t, clientset, helm)

	m := NewManager(kubeconfig, "", invoke.NewFake())
	require.NoError(t, m.Setup(context.Background()))
	require.NoError(t, m.Setup(context.Background()))

	assert.Len(t, helm.installs, 4)
}

func TestURLs(t *testing.T) {
	kubeconfig := writeKubeconfig(t)
	clientset := k8sfake.NewSimpleClientset(
		&corev1.Service{
			ObjectMeta: metav1.ObjectMeta{Name: "prometheus-server", Namespace: "monitoring"},
			Status: corev1.ServiceStatus{LoadBalancer: corev1.LoadBalancerStatus{
				Ingress: []corev1.LoadBalancerIngress{{IP: "203.0.113.10"}},
			}},
		},
		&corev1.Service{
			ObjectMeta: metav1.ObjectMeta{Name: "grafana", Namespace: "monitoring"},
			Status: corev1.ServiceStatus{LoadBalancer: corev1.LoadBalancerStatus{
				Ingress: []corev1.LoadBalancerIngress{{Hostname: "grafana.example.com"}},
			}},
		},
	)
	swapClients(t, clientset, &fakeHelm{})

	urls, err := NewManager(kubeconfig, "", invoke.NewFake()).URLs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://203.0.113.10:9090", urls["prometheus-server"])
	assert.Equal(t, "http://grafana.example.com:3000", urls["grafana"])
}

func TestHealth_Reachable(t *testing.T) {
	kubeconfig := writeKubeconfig(t)
	clientset := k8sfake.NewSimpleClientset(
		&corev1.Service{
			ObjectMeta: metav1.ObjectMeta{Name: "prometheus-server", Namespace: "monitoring"},
			Status: corev1.ServiceStatus{LoadBalancer: corev1.LoadBalancerStatus{
				Ingress: []corev1.LoadBalancerIngress{{IP: "203.0.113.10"}},
			}},
		},
		&corev1.Service{ObjectMeta: metav1.ObjectMeta{Name: "grafana", Namespace: "monitoring"}},
	)
	swapClients(t, clientset, &fakeHelm{})

	origProbe := probePrometheus
	probePrometheus = func(_ context.Context, url string) (string, error) {
		assert.Equal(t, "http://203.0.113.10:9090", url)
		return "2.48.0", nil
	}
	t.Cleanup(func() { probePrometheus = origProbe })

	health, err := NewManager(kubeconfig, "", invoke.NewFake()).Health(context.Background())
	require.NoError(t, err)
	assert.True(t, health.Reachable)
	assert.Equal(t, "2.48.0", health.Version)
}

func TestHealth_NoIngressYet(t *testing.T) {
	kubeconfig := writeKubeconfig(t)
	clientset := k8sfake.NewSimpleClientset(
		&corev1.Service{ObjectMeta: metav1.ObjectMeta{Name: "prometheus-server", Namespace: "monitoring"}},
		&corev1.Service{ObjectMeta: metav1.ObjectMeta{Name: "grafana", Namespace: "monitoring"}},
	)
	swapClients(t, clientset, &fakeHelm{})

	health, err := NewManager(kubeconfig, "", invoke.NewFake()).Health(context.Background())
	require.NoError(t, err)
	assert.False(t, health.Reachable)
	assert.Contains(t, health.Error, "no LoadBalancer ingress")
}
