// Package security applies baseline hardening to a cluster and runs CIS and
// vulnerability scans. All cluster access goes through kubectl via the
// invoke.Runner so the subprocess layer stays mockable.
package security

import (
	"context"
	"fmt"

	"github.com/kubeprov/kubeprov/internal/invoke"
)

const (
	// DefaultNamespace is the namespace hardening targets when none is given.
	DefaultNamespace = "default"

	// restrictedNamespace carries the Pod Security admission labels.
	restrictedNamespace = "restricted-pods"

	// scanNamespace hosts the trivy-operator deployment.
	scanNamespace = "security"
)

// StepError reports a failed hardening or scan step. Manifest names the
// manifest file being applied when the step was a kubectl apply.
type StepError struct {
	Step     string
	Manifest string
	Err      error
}

func (e *StepError) Error() string {
	if e.Manifest != "" {
		return fmt.Sprintf("security step %s failed applying %s: %v", e.Step, e.Manifest, e.Err)
	}
	return fmt.Sprintf("security step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Manager runs hardening and scans against one cluster.
type Manager struct {
	kubeconfig string
	namespace  string
	runner     invoke.Runner
}

// NewManager returns a Manager for the given kubeconfig. An empty namespace
// selects DefaultNamespace.
func NewManager(kubeconfigPath, namespace string, runner invoke.Runner) *Manager {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Manager{kubeconfig: kubeconfigPath, namespace: namespace, runner: runner}
}

// kubectl runs kubectl with the manager's kubeconfig appended.
func (m *Manager) kubectl(ctx context.Context, dir string, args ...string) (invoke.Result, error) {
	args = append(args, "--kubeconfig", m.kubeconfig)
	return m.runner.Run(ctx, dir, "kubectl", args...)
}
