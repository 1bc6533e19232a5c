// Package terraform drives the terraform binary for one provider working
// directory. All infrastructure state is owned by Terraform; this package
// only constructs invocations and surfaces their results.
package terraform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kubeprov/kubeprov/internal/config"
	"github.com/kubeprov/kubeprov/internal/invoke"
)

// VarFileName is the variable file rendered before terraform apply.
const VarFileName = "terraform.tfvars"

// Terraform wraps terraform invocations in a fixed working directory.
type Terraform struct {
	runner invoke.Runner
	dir    string
}

// New returns a Terraform bound to the given working directory.
func New(runner invoke.Runner, dir string) *Terraform {
	return &Terraform{runner: runner, dir: dir}
}

// Dir returns the working directory terraform runs in.
func (t *Terraform) Dir() string { return t.dir }

// Init runs terraform init. Safe to repeat.
func (t *Terraform) Init(ctx context.Context) error {
	if _, err := t.runner.Run(ctx, t.dir, "terraform", "init", "-input=false"); err != nil {
		return fmt.Errorf("terraform init failed: %w", err)
	}
	return nil
}

// Apply runs terraform apply against the named var file.
func (t *Terraform) Apply(ctx context.Context, varFile string) error {
	args := []string{"apply", "-auto-approve", "-input=false", "-var-file=" + varFile}
	if _, err := t.runner.Run(ctx, t.dir, "terraform", args...); err != nil {
		return fmt.Errorf("terraform apply failed: %w", err)
	}
	return nil
}

// Destroy runs terraform destroy. Destroying with no matching state is a
// successful no-op, which makes delete idempotent.
func (t *Terraform) Destroy(ctx context.Context) error {
	if _, err := t.runner.Run(ctx, t.dir, "terraform", "destroy", "-auto-approve", "-input=false"); err != nil {
		return fmt.Errorf("terraform destroy failed: %w", err)
	}
	return nil
}

// Show returns the human-readable state listing. Read-only.
func (t *Terraform) Show(ctx context.Context) (string, error) {
	res, err := t.runner.Run(ctx, t.dir, "terraform", "show", "-no-color")
	if err != nil {
		return "", fmt.Errorf("terraform show failed: %w", err)
	}
	return res.Stdout, nil
}

// RenderVars renders the terraform.tfvars content for the resolved settings.
// The region variable name differs per provider.
func RenderVars(s config.Settings) string {
	var b strings.Builder
	fmt.Fprintf(&b, "cluster_name = %q\n", s.ClusterName)
	fmt.Fprintf(&b, "%s = %q\n", s.Provider.RegionVar(), s.Region)
	fmt.Fprintf(&b, "environment = %q\n", s.Environment)
	fmt.Fprintf(&b, "kubernetes_version = %q\n", s.KubernetesVersion)
	fmt.Fprintf(&b, "worker_min_count = %d\n", s.WorkerMinCount)
	fmt.Fprintf(&b, "worker_max_count = %d\n", s.WorkerMaxCount)
	fmt.Fprintf(&b, "worker_instance_type = %q\n", s.WorkerInstanceType)
	return b.String()
}

// WriteVars writes the rendered var file into the working directory and
// returns its name for use with Apply.
func (t *Terraform) WriteVars(s config.Settings) (string, error) {
	path := filepath.Join(t.dir, VarFileName)
	if err := os.WriteFile(path, []byte(RenderVars(s)), 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return VarFileName, nil
}
