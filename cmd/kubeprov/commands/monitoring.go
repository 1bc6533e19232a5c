package commands

import (
	"github.com/spf13/cobra"

	"github.com/kubeprov/kubeprov/cmd/kubeprov/handlers"
)

// Monitoring returns the parent command for the monitoring stack.
func Monitoring() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitoring",
		Short: "Install and inspect the Prometheus/Grafana stack",
	}

	cmd.AddCommand(monitoringSetup())
	cmd.AddCommand(monitoringURLs())
	cmd.AddCommand(monitoringStatus())

	return cmd
}

func monitoringSetup() *cobra.Command {
	var kubeconfig string
	var namespace string

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Install Prometheus and Grafana via Helm",
		Long: `Install the monitoring stack on a cluster.

Installs the Prometheus and Grafana Helm charts, provisions the Grafana
datasource, and loads a default set of alert rules. Re-running upgrades the
releases in place.

Examples:
  kubeprov monitoring setup --kubeconfig infra/aws/kubeconfig_my-cluster`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.MonitoringSetup(cmd.Context(), kubeconfig, namespace)
		},
	}

	cmd.Flags().StringVarP(&kubeconfig, "kubeconfig", "k", "", "Path to the cluster kubeconfig")
	cmd.Flags().StringVar(&namespace, "namespace", "", "Namespace for the monitoring stack (default: monitoring)")
	_ = cmd.MarkFlagRequired("kubeconfig")

	return cmd
}

func monitoringURLs() *cobra.Command {
	var kubeconfig string
	var namespace string

	cmd := &cobra.Command{
		Use:   "urls",
		Short: "Show the external URLs of Prometheus and Grafana",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.MonitoringURLs(cmd.Context(), kubeconfig, namespace)
		},
	}

	cmd.Flags().StringVarP(&kubeconfig, "kubeconfig", "k", "", "Path to the cluster kubeconfig")
	cmd.Flags().StringVar(&namespace, "namespace", "", "Namespace of the monitoring stack (default: monitoring)")
	_ = cmd.MarkFlagRequired("kubeconfig")

	return cmd
}

func monitoringStatus() *cobra.Command {
	var kubeconfig string
	var namespace string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Probe the Prometheus API and report reachability",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.MonitoringStatus(cmd.Context(), kubeconfig, namespace)
		},
	}

	cmd.Flags().StringVarP(&kubeconfig, "kubeconfig", "k", "", "Path to the cluster kubeconfig")
	cmd.Flags().StringVar(&namespace, "namespace", "", "Namespace of the monitoring stack (default: monitoring)")
	_ = cmd.MarkFlagRequired("kubeconfig")

	return cmd
}
