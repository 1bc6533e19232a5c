package commands

import (
	"github.com/spf13/cobra"

	"github.com/kubeprov/kubeprov/cmd/kubeprov/handlers"
	"github.com/kubeprov/kubeprov/internal/config"
)

// clusterFlags binds the shared cluster flags. Worker counts are resolved
// through Changed so an explicit zero still counts as set.
type clusterFlags struct {
	configPath   string
	provider     string
	clusterName  string
	region       string
	environment  string
	terraformDir string
	workerMin    int
	workerMax    int
}

func (f *clusterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().StringVarP(&f.provider, "provider", "p", "", "Cloud provider (aws or azure)")
	cmd.Flags().StringVarP(&f.clusterName, "cluster-name", "n", "", "Cluster name")
	cmd.Flags().StringVarP(&f.region, "region", "r", "", "Cloud region")
	cmd.Flags().StringVarP(&f.environment, "environment", "e", "", "Deployment environment (dev, staging, prod)")
	cmd.Flags().StringVar(&f.terraformDir, "terraform-dir", "", "Base directory holding the per-provider Terraform configurations")
	cmd.Flags().IntVar(&f.workerMin, "worker-min-count", 0, "Minimum worker node count")
	cmd.Flags().IntVar(&f.workerMax, "worker-max-count", 0, "Maximum worker node count")
}

func (f *clusterFlags) overrides(cmd *cobra.Command) config.Overrides {
	o := config.Overrides{
		Provider:     f.provider,
		ClusterName:  f.clusterName,
		Region:       f.region,
		Environment:  f.environment,
		TerraformDir: f.terraformDir,
	}
	if cmd.Flags().Changed("worker-min-count") {
		o.WorkerMinCount = &f.workerMin
	}
	if cmd.Flags().Changed("worker-max-count") {
		o.WorkerMaxCount = &f.workerMax
	}
	return o
}

// Cluster returns the parent command for cluster lifecycle operations.
func Cluster() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Create, inspect, and delete Kubernetes clusters",
	}

	cmd.AddCommand(clusterCreate())
	cmd.AddCommand(clusterStatus())
	cmd.AddCommand(clusterDelete())

	return cmd
}

func clusterCreate() *cobra.Command {
	var flags clusterFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Provision a cluster with Terraform",
		Long: `Provision a managed Kubernetes cluster.

Settings are merged from built-in defaults, the optional configuration file,
and command-line flags, in that order of precedence. The provider selects
the Terraform configuration directory: aws provisions EKS, azure provisions
AKS.

Examples:
  # Create a cluster from a config file
  kubeprov cluster create -c cluster.yaml

  # Override the region and worker pool bounds on the command line
  kubeprov cluster create -c cluster.yaml -r eu-west-1 --worker-min-count 2 --worker-max-count 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.ClusterCreate(cmd.Context(), flags.configPath, flags.overrides(cmd))
		},
	}

	flags.register(cmd)
	return cmd
}

func clusterStatus() *cobra.Command {
	var flags clusterFlags

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show cluster status as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.ClusterStatus(cmd.Context(), flags.configPath, flags.overrides(cmd))
		},
	}

	flags.register(cmd)
	return cmd
}

func clusterDelete() *cobra.Command {
	var flags clusterFlags

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Destroy a cluster and its infrastructure",
		Long: `Destroy the cluster's infrastructure with terraform destroy.

Deleting a cluster that was never created succeeds: Terraform treats an
empty state as nothing to destroy.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.ClusterDelete(cmd.Context(), flags.configPath, flags.overrides(cmd))
		},
	}

	flags.register(cmd)
	return cmd
}
