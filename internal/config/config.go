package config

import (
	"fmt"
	"path/filepath"

	"github.com/kubeprov/kubeprov/internal/provider"
)

// Defaults applied before file and flag values.
const (
	DefaultEnvironment       = "dev"
	DefaultKubernetesVersion = "1.24"
	DefaultWorkerMinCount    = 2
	DefaultWorkerMaxCount    = 5
	DefaultTerraformDir      = "infra"
)

// Settings is the fully resolved tool configuration.
type Settings struct {
	Provider           provider.Provider
	ClusterName        string
	Region             string
	Environment        string
	KubernetesVersion  string
	WorkerMinCount     int
	WorkerMaxCount     int
	WorkerInstanceType string

	// TerraformDir is the base directory holding one Terraform module per
	// provider.
	TerraformDir string

	// State describes the optional S3 remote-state bucket. When set for the
	// aws provider, delete cleans up the cluster's state objects after
	// terraform destroy.
	State StateConfig
}

// StateConfig describes an S3-compatible bucket holding Terraform remote
// state. Endpoint and the key pair are only needed for non-AWS S3 stores;
// when empty the default AWS credential chain is used.
type StateConfig struct {
	Bucket    string `yaml:"bucket"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
}

// TerraformWorkDir returns the Terraform working directory for the resolved
// provider.
func (s Settings) TerraformWorkDir() string {
	return s.Provider.Dir(s.TerraformDir)
}

// KubeconfigPath returns the path of the kubeconfig the provider's Terraform
// module writes on a successful apply.
func (s Settings) KubeconfigPath() string {
	return filepath.Join(s.TerraformWorkDir(), "kubeconfig_"+s.ClusterName)
}

// Error reports invalid or missing configuration. Resolution fails with an
// *Error before any subprocess is started.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid configuration: %s: %v", e.Reason, e.Err)
	}
	return "invalid configuration: " + e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

func errorf(format string, args ...any) *Error {
	return &Error{Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the resolved settings for completeness and consistency.
func (s Settings) Validate() error {
	if s.Provider == "" {
		return errorf("provider is required")
	}
	if s.ClusterName == "" {
		return errorf("cluster_name is required")
	}
	if s.Region == "" {
		return errorf("region is required")
	}
	if s.WorkerMinCount < 0 {
		return errorf("worker_min_count must not be negative")
	}
	if s.WorkerMaxCount < s.WorkerMinCount {
		return errorf("worker_max_count (%d) must be >= worker_min_count (%d)", s.WorkerMaxCount, s.WorkerMinCount)
	}
	return nil
}
