package commands

import (
	"github.com/spf13/cobra"

	"github.com/kubeprov/kubeprov/cmd/kubeprov/handlers"
)

// Security returns the parent command for hardening and scanning.
func Security() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "security",
		Short: "Harden and scan a cluster",
	}

	cmd.AddCommand(securityHarden())
	cmd.AddCommand(securityScan())
	cmd.AddCommand(securityReport())

	return cmd
}

func securityHarden() *cobra.Command {
	var kubeconfig string
	var namespace string

	cmd := &cobra.Command{
		Use:   "harden",
		Short: "Apply baseline security hardening",
		Long: `Apply the hardening sequence to a cluster.

Applies NetworkPolicies restricting ingress, Pod Security admission labels,
and a read-only RBAC role. Steps run in a fixed order; the first failure
aborts the remainder and names the failing manifest. Applied steps are not
rolled back.

Examples:
  kubeprov security harden --kubeconfig infra/aws/kubeconfig_my-cluster`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.SecurityHarden(cmd.Context(), kubeconfig, namespace)
		},
	}

	cmd.Flags().StringVarP(&kubeconfig, "kubeconfig", "k", "", "Path to the cluster kubeconfig")
	cmd.Flags().StringVar(&namespace, "namespace", "", "Namespace hardening targets (default: default)")
	_ = cmd.MarkFlagRequired("kubeconfig")

	return cmd
}

func securityScan() *cobra.Command {
	var kubeconfig string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run vulnerability scanning and the CIS benchmark",
		Long: `Deploy the trivy-operator and run the CIS Kubernetes Benchmark.

kube-bench runs as a Job on the cluster; its JSON results are printed when
the Job completes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.SecurityScan(cmd.Context(), kubeconfig)
		},
	}

	cmd.Flags().StringVarP(&kubeconfig, "kubeconfig", "k", "", "Path to the cluster kubeconfig")
	_ = cmd.MarkFlagRequired("kubeconfig")

	return cmd
}

func securityReport() *cobra.Command {
	var kubeconfig string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a security posture report as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.SecurityReport(cmd.Context(), kubeconfig)
		},
	}

	cmd.Flags().StringVarP(&kubeconfig, "kubeconfig", "k", "", "Path to the cluster kubeconfig")
	_ = cmd.MarkFlagRequired("kubeconfig")

	return cmd
}
