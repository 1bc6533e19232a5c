// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing, flag binding, and validation. Command execution is delegated to
// handler functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the kubeprov CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kubeprov",
		Short: "Provision Kubernetes clusters on AWS and Azure with monitoring and hardening",
	}

	// Core commands
	cmd.AddCommand(Init())
	cmd.AddCommand(Cluster())
	cmd.AddCommand(Monitoring())
	cmd.AddCommand(Security())

	// Utility commands
	cmd.AddCommand(Doctor())
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
