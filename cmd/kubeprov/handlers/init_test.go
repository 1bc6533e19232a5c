package handlers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubeprov/kubeprov/internal/config"
)

// saveAndRestoreInitFactories saves and restores init factory functions.
func saveAndRestoreInitFactories(t *testing.T) {
	origExists := fileExists
	origWizard := runWizard
	origTTY := stdinIsTTY
	origWrite := writeConfigFile
	t.Cleanup(func() {
		fileExists = origExists
		runWizard = origWizard
		stdinIsTTY = origTTY
		writeConfigFile = origWrite
	})
}

func TestInit_NonInteractiveWritesStarterFile(t *testing.T) {
	saveAndRestoreInitFactories(t)

	fileExists = func(string) bool { return false }
	stdinIsTTY = func() bool { return false }
	runWizard = func() (*config.File, error) {
		t.Fatal("wizard must not run without a TTY")
		return nil, nil
	}

	var written *config.File
	var writtenPath string
	writeConfigFile = func(f *config.File, path string) error {
		written = f
		writtenPath = path
		return nil
	}

	require.NoError(t, Init("kubeprov.yaml"))
	assert.Equal(t, "kubeprov.yaml", writtenPath)
	require.NotNil(t, written)
	assert.Equal(t, "aws", written.Provider)
	assert.Equal(t, config.DefaultEnvironment, written.Environment)
	require.NotNil(t, written.WorkerMinCount)
	assert.Equal(t, config.DefaultWorkerMinCount, *written.WorkerMinCount)
}

func TestInit_InteractiveUsesWizard(t *testing.T) {
	saveAndRestoreInitFactories(t)

	fileExists = func(string) bool { return true }
	stdinIsTTY = func() bool { return true }
	runWizard = func() (*config.File, error) {
		return &config.File{Provider: "azure", ClusterName: "wizard-made", Region: "westeurope"}, nil
	}

	var written *config.File
	writeConfigFile = func(f *config.File, _ string) error {
		written = f
		return nil
	}

	require.NoError(t, Init("out.yaml"))
	require.NotNil(t, written)
	assert.Equal(t, "wizard-made", written.ClusterName)
}

func TestInit_WizardAborted(t *testing.T) {
	saveAndRestoreInitFactories(t)

	fileExists = func(string) bool { return false }
	stdinIsTTY = func() bool { return true }
	runWizard = func() (*config.File, error) { return nil, errors.New("aborted") }
	writeConfigFile = func(*config.File, string) error {
		t.Fatal("nothing should be written after an aborted wizard")
		return nil
	}

	require.Error(t, Init("out.yaml"))
}
