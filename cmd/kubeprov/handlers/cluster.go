// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic and
// can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kubeprov/kubeprov/internal/cluster"
	"github.com/kubeprov/kubeprov/internal/config"
	"github.com/kubeprov/kubeprov/internal/invoke"
)

// ClusterManager interface for testing - matches cluster.Manager.
type ClusterManager interface {
	Create(ctx context.Context) error
	Status(ctx context.Context) (*cluster.Status, error)
	Delete(ctx context.Context) error
	Kubeconfig() string
}

// Factory function variables - can be replaced in tests for dependency
// injection.
var (
	// newRunner creates the subprocess runner.
	newRunner = invoke.NewRunner

	// newClusterManager creates a cluster manager from resolved settings.
	newClusterManager = func(settings config.Settings, runner invoke.Runner) ClusterManager {
		return cluster.NewManager(settings, runner)
	}

	// resolveConfig merges defaults, config file, and flag overrides.
	resolveConfig = config.Resolve
)

// ClusterCreate provisions a cluster: renders terraform.tfvars from the
// resolved settings, then runs terraform init and apply in the provider's
// configuration directory.
func ClusterCreate(ctx context.Context, configPath string, overrides config.Overrides) error {
	settings, err := resolveConfig(configPath, overrides)
	if err != nil {
		return err
	}

	mgr := newClusterManager(settings, newRunner())
	if err := mgr.Create(ctx); err != nil {
		return err
	}

	fmt.Printf("\nCluster %s created on %s.\n", settings.ClusterName, settings.Provider)
	fmt.Printf("Kubeconfig: %s\n", mgr.Kubeconfig())
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  kubeprov monitoring setup --kubeconfig %s\n", mgr.Kubeconfig())
	fmt.Printf("  kubeprov security harden --kubeconfig %s\n", mgr.Kubeconfig())
	return nil
}

// ClusterStatus prints the cluster status as JSON without touching
// infrastructure.
func ClusterStatus(ctx context.Context, configPath string, overrides config.Overrides) error {
	settings, err := resolveConfig(configPath, overrides)
	if err != nil {
		return err
	}

	status, err := newClusterManager(settings, newRunner()).Status(ctx)
	if err != nil {
		return err
	}

	return printJSON(status)
}

// ClusterDelete destroys the cluster's infrastructure. Deleting a cluster
// that was never created is a no-op that succeeds.
func ClusterDelete(ctx context.Context, configPath string, overrides config.Overrides) error {
	settings, err := resolveConfig(configPath, overrides)
	if err != nil {
		return err
	}

	if err := newClusterManager(settings, newRunner()).Delete(ctx); err != nil {
		return err
	}

	fmt.Printf("Cluster %s deleted.\n", settings.ClusterName)
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
