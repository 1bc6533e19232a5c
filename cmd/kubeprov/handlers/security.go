package handlers

import (
	"context"
	"fmt"

	"github.com/kubeprov/kubeprov/internal/invoke"
	"github.com/kubeprov/kubeprov/internal/security"
)

// SecurityManager interface for testing - matches security.Manager.
type SecurityManager interface {
	Harden(ctx context.Context) error
	Scan(ctx context.Context) (*security.BenchResults, error)
	GenerateReport(ctx context.Context) (*security.Report, error)
}

// newSecurityManager creates a security manager. Swappable in tests.
var newSecurityManager = func(kubeconfig, namespace string, runner invoke.Runner) SecurityManager {
	return security.NewManager(kubeconfig, namespace, runner)
}

// SecurityHarden applies the hardening sequence to the cluster.
func SecurityHarden(ctx context.Context, kubeconfig, namespace string) error {
	mgr := newSecurityManager(kubeconfig, namespace, newRunner())
	if err := mgr.Harden(ctx); err != nil {
		return err
	}

	fmt.Println("Security hardening applied.")
	return nil
}

// SecurityScan runs the vulnerability scan and CIS benchmark, printing the
// benchmark results as JSON.
func SecurityScan(ctx context.Context, kubeconfig string) error {
	results, err := newSecurityManager(kubeconfig, "", newRunner()).Scan(ctx)
	if err != nil {
		return err
	}
	return printJSON(results)
}

// SecurityReport prints the aggregated security report as JSON.
func SecurityReport(ctx context.Context, kubeconfig string) error {
	report, err := newSecurityManager(kubeconfig, "", newRunner()).GenerateReport(ctx)
	if err != nil {
		return err
	}
	return printJSON(report)
}
