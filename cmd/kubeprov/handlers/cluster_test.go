package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubeprov/kubeprov/internal/cluster"
	"github.com/kubeprov/kubeprov/internal/config"
	"github.com/kubeprov/kubeprov/internal/invoke"
	"github.com/kubeprov/kubeprov/internal/provider"
)

// fakeClusterManager records lifecycle calls.
type fakeClusterManager struct {
	created bool
	deleted bool
	err     error
}

func (f *fakeClusterManager) Create(context.Context) error { f.created = true; return f.err }
func (f *fakeClusterManager) Delete(context.Context) error { f.deleted = true; return f.err }
func (f *fakeClusterManager) Status(context.Context) (*cluster.Status, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &cluster.Status{Status: "running", ClusterName: "test"}, nil
}
func (f *fakeClusterManager) Kubeconfig() string { return "infra/aws/kubeconfig_test" }

// saveAndRestoreClusterFactories saves and restores cluster factory
// functions.
func saveAndRestoreClusterFactories(t *testing.T) {
	origRunner := newRunner
	origManager := newClusterManager
	origResolve := resolveConfig
	t.Cleanup(func() {
		newRunner = origRunner
		newClusterManager = origManager
		resolveConfig = origResolve
	})
}

func stubSettings() config.Settings {
	return config.Settings{
		Provider:       provider.AWS,
		ClusterName:    "test",
		Region:         "eu-west-1",
		WorkerMinCount: 2,
		WorkerMaxCount: 5,
		TerraformDir:   "infra",
	}
}

func TestClusterCreate(t *testing.T) {
	saveAndRestoreClusterFactories(t)

	mgr := &fakeClusterManager{}
	resolveConfig = func(string, config.Overrides) (config.Settings, error) { return stubSettings(), nil }
	newRunner = func() invoke.Runner { return invoke.NewFake() }
	newClusterManager = func(config.Settings, invoke.Runner) ClusterManager { return mgr }

	require.NoError(t, ClusterCreate(context.Background(), "cluster.yaml", config.Overrides{}))
	assert.True(t, mgr.created)
}

func TestClusterCreate_ConfigErrorBeforeAnySubprocess(t *testing.T) {
	saveAndRestoreClusterFactories(t)

	managerBuilt := false
	newClusterManager = func(config.Settings, invoke.Runner) ClusterManager {
		managerBuilt = true
		return &fakeClusterManager{}
	}

	err := ClusterCreate(context.Background(), "", config.Overrides{
		Provider:    "gcp",
		ClusterName: "test",
		Region:      "europe-west1",
	})

	var cfgErr *config.Error
	require.ErrorAs(t, err, &cfgErr)
	assert.False(t, managerBuilt, "no manager (and no subprocess) before config validation")
}

func TestClusterCreate_ProvisioningErrorPropagates(t *testing.T) {
	saveAndRestoreClusterFactories(t)

	mgr := &fakeClusterManager{err: &cluster.ProvisioningError{Op: "apply", Stderr: "quota exceeded"}}
	resolveConfig = func(string, config.Overrides) (config.Settings, error) { return stubSettings(), nil }
	newRunner = func() invoke.Runner { return invoke.NewFake() }
	newClusterManager = func(config.Settings, invoke.Runner) ClusterManager { return mgr }

	err := ClusterCreate(context.Background(), "cluster.yaml", config.Overrides{})
	var provErr *cluster.ProvisioningError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "apply", provErr.Op)
}

func TestClusterStatus(t *testing.T) {
	saveAndRestoreClusterFactories(t)

	mgr := &fakeClusterManager{}
	resolveConfig = func(string, config.Overrides) (config.Settings, error) { return stubSettings(), nil }
	newRunner = func() invoke.Runner { return invoke.NewFake() }
	newClusterManager = func(config.Settings, invoke.Runner) ClusterManager { return mgr }

	require.NoError(t, ClusterStatus(context.Background(), "cluster.yaml", config.Overrides{}))
}

func TestClusterDelete(t *testing.T) {
	saveAndRestoreClusterFactories(t)

	mgr := &fakeClusterManager{}
	resolveConfig = func(string, config.Overrides) (config.Settings, error) { return stubSettings(), nil }
	newRunner = func() invoke.Runner { return invoke.NewFake() }
	newClusterManager = func(config.Settings, invoke.Runner) ClusterManager { return mgr }

	require.NoError(t, ClusterDelete(context.Background(), "cluster.yaml", config.Overrides{}))
	assert.True(t, mgr.deleted)
}

func TestClusterDelete_ResolveFailure(t *testing.T) {
	saveAndRestoreClusterFactories(t)

	resolveConfig = func(string, config.Overrides) (config.Settings, error) {
		return config.Settings{}, errors.New("boom")
	}

	require.Error(t, ClusterDelete(context.Background(), "cluster.yaml", config.Overrides{}))
}
