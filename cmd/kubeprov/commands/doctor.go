package commands

import (
	"github.com/spf13/cobra"

	"github.com/kubeprov/kubeprov/cmd/kubeprov/handlers"
)

// Doctor returns the command for diagnosing the local environment.
func Doctor() *cobra.Command {
	var configPath string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check required tools and cloud credentials",
		Long: `Check the local environment for everything cluster operations need.

Verifies that terraform and kubectl are on PATH and probes the cloud
credential chains. With a configuration file, only the configured provider
is probed and the kubeconfig location is checked.

Examples:
  kubeprov doctor
  kubeprov doctor -c cluster.yaml --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), configPath, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}
