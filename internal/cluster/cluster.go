// Package cluster orchestrates cluster create, status, and delete by
// delegating to Terraform through the process invoker. The Terraform state
// file is the only durable record of cluster topology; the manager holds no
// state beyond the current invocation.
package cluster

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kubeprov/kubeprov/internal/config"
	"github.com/kubeprov/kubeprov/internal/invoke"
	"github.com/kubeprov/kubeprov/internal/terraform"
)

// ProvisioningError reports a failed Terraform operation with the captured
// stderr of the failing command.
type ProvisioningError struct {
	Op     string
	Stderr string
	Err    error
}

func (e *ProvisioningError) Error() string {
	msg := fmt.Sprintf("provisioning failed during %s", e.Op)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

func provisioningErr(op string, err error) *ProvisioningError {
	pErr := &ProvisioningError{Op: op, Err: err}
	var cmdErr *invoke.CommandError
	if errors.As(err, &cmdErr) {
		pErr.Stderr = cmdErr.Result.Stderr
	}
	return pErr
}

// Manager runs cluster lifecycle operations for one resolved Settings value.
type Manager struct {
	settings config.Settings
	runner   invoke.Runner
	tf       *terraform.Terraform
}

// NewManager returns a Manager bound to the settings' provider directory.
func NewManager(settings config.Settings, runner invoke.Runner) *Manager {
	return &Manager{
		settings: settings,
		runner:   runner,
		tf:       terraform.New(runner, settings.TerraformWorkDir()),
	}
}

// Kubeconfig returns the path of the kubeconfig written by a successful
// create.
func (m *Manager) Kubeconfig() string {
	return m.settings.KubeconfigPath()
}
