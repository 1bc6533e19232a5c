package cluster

import (
	"context"
	"os"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
)

// Status summarizes the cluster's current state. Infrastructure comes from
// terraform show; node count and version come from the cluster itself when
// the kubeconfig exists.
type Status struct {
	Status            string `json:"status"`
	Provider          string `json:"provider"`
	ClusterName       string `json:"clusterName"`
	Region            string `json:"region"`
	NodeCount         int    `json:"nodeCount,omitempty"`
	KubernetesVersion string `json:"kubernetesVersion,omitempty"`
	Infrastructure    string `json:"infrastructure,omitempty"`
	Error             string `json:"error,omitempty"`
}

// kubeProbe reads node count and server version from a kubeconfig.
// Swappable in tests.
var kubeProbe = probeCluster

// Status reports the cluster state without mutating infrastructure.
func (m *Manager) Status(ctx context.Context) (*Status, error) {
	s := m.settings
	status := &Status{
		Provider:    s.Provider.String(),
		ClusterName: s.ClusterName,
		Region:      s.Region,
	}

	infra, err := m.tf.Show(ctx)
	if err != nil {
		return nil, provisioningErr("show", err)
	}
	status.Infrastructure = strings.TrimSpace(infra)

	if _, err := os.Stat(m.Kubeconfig()); err != nil {
		status.Status = "unknown"
		status.Error = "kubeconfig not found; has the cluster been created?"
		return status, nil
	}

	nodes, version, err := kubeProbe(ctx, m.Kubeconfig())
	if err != nil {
		status.Status = "unreachable"
		status.Error = err.Error()
		return status, nil
	}

	status.Status = "running"
	status.NodeCount = nodes
	status.KubernetesVersion = version
	return status, nil
}

func probeCluster(ctx context.Context, kubeconfigPath string) (int, string, error) {
	restCfg, err := clientcmd.BuildConfigFromFlags("", kubeconfigPath)
	if err != nil {
		return 0, "", err
	}

	clientset, err := kubernetes.NewForConfig(restCfg)
	if err != nil {
		return 0, "", err
	}

	nodes, err := clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return 0, "", err
	}

	version := "unknown"
	if info, err := clientset.Discovery().ServerVersion(); err == nil {
		version = info.GitVersion
	}

	return len(nodes.Items), version, nil
}
