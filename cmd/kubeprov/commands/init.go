package commands

import (
	"github.com/spf13/cobra"

	"github.com/kubeprov/kubeprov/cmd/kubeprov/handlers"
)

// Init returns the command that writes a starter configuration file.
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a cluster configuration file",
		Long: `Create a kubeprov configuration file.

On an interactive terminal this runs a short wizard; otherwise it writes a
starter file with the built-in defaults.

Examples:
  # Interactive wizard
  kubeprov init

  # Write to a custom path
  kubeprov init -o clusters/prod.yaml`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.Init(outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "kubeprov.yaml", "Path of the configuration file to write")

	return cmd
}
