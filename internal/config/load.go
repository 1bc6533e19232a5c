package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kubeprov/kubeprov/internal/provider"
)

// File mirrors the YAML configuration file. Pointer fields distinguish
// "absent" from zero values so the merge only overrides what the file
// actually sets.
type File struct {
	Provider           string      `yaml:"provider,omitempty"`
	ClusterName        string      `yaml:"cluster_name,omitempty"`
	Region             string      `yaml:"region,omitempty"`
	Environment        string      `yaml:"environment,omitempty"`
	KubernetesVersion  string      `yaml:"kubernetes_version,omitempty"`
	WorkerMinCount     *int        `yaml:"worker_min_count,omitempty"`
	WorkerMaxCount     *int        `yaml:"worker_max_count,omitempty"`
	WorkerInstanceType string      `yaml:"worker_instance_type,omitempty"`
	TerraformDir       string      `yaml:"terraform_dir,omitempty"`
	State              StateConfig `yaml:"state,omitempty"`
}

// Overrides carries explicit CLI flag values. Empty strings and nil pointers
// mean the flag was not given.
type Overrides struct {
	Provider       string
	ClusterName    string
	Region         string
	Environment    string
	TerraformDir   string
	WorkerMinCount *int
	WorkerMaxCount *int
}

// ReadFile parses a YAML configuration file.
func ReadFile(path string) (*File, error) {
	// #nosec G304 - path comes from the --config flag
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Reason: fmt.Sprintf("failed to read config file %s", path), Err: err}
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &Error{Reason: fmt.Sprintf("failed to parse config file %s", path), Err: err}
	}
	return &f, nil
}

// Resolve merges built-in defaults, an optional config file, and CLI flags
// into one validated Settings value. Later sources win per key.
func Resolve(configPath string, overrides Overrides) (Settings, error) {
	s := Settings{
		Environment:       DefaultEnvironment,
		KubernetesVersion: DefaultKubernetesVersion,
		WorkerMinCount:    DefaultWorkerMinCount,
		WorkerMaxCount:    DefaultWorkerMaxCount,
		TerraformDir:      DefaultTerraformDir,
	}

	providerName := ""
	if configPath != "" {
		f, err := ReadFile(configPath)
		if err != nil {
			return Settings{}, err
		}
		applyFile(&s, f)
		providerName = f.Provider
	}

	applyOverrides(&s, overrides)
	if overrides.Provider != "" {
		providerName = overrides.Provider
	}

	if providerName != "" {
		p, err := provider.Parse(providerName)
		if err != nil {
			return Settings{}, &Error{Reason: "invalid provider", Err: err}
		}
		s.Provider = p
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}

	// Instance-type default depends on the provider, so it is applied after
	// the merge settles.
	if s.WorkerInstanceType == "" {
		s.WorkerInstanceType = s.Provider.DefaultInstanceType()
	}

	return s, nil
}

func applyFile(s *Settings, f *File) {
	if f.ClusterName != "" {
		s.ClusterName = f.ClusterName
	}
	if f.Region != "" {
		s.Region = f.Region
	}
	if f.Environment != "" {
		s.Environment = f.Environment
	}
	if f.KubernetesVersion != "" {
		s.KubernetesVersion = f.KubernetesVersion
	}
	if f.WorkerMinCount != nil {
		s.WorkerMinCount = *f.WorkerMinCount
	}
	if f.WorkerMaxCount != nil {
		s.WorkerMaxCount = *f.WorkerMaxCount
	}
	if f.WorkerInstanceType != "" {
		s.WorkerInstanceType = f.WorkerInstanceType
	}
	if f.TerraformDir != "" {
		s.TerraformDir = f.TerraformDir
	}
	s.State = f.State
}

func applyOverrides(s *Settings, o Overrides) {
	if o.ClusterName != "" {
		s.ClusterName = o.ClusterName
	}
	if o.Region != "" {
		s.Region = o.Region
	}
	if o.Environment != "" {
		s.Environment = o.Environment
	}
	if o.TerraformDir != "" {
		s.TerraformDir = o.TerraformDir
	}
	if o.WorkerMinCount != nil {
		s.WorkerMinCount = *o.WorkerMinCount
	}
	if o.WorkerMaxCount != nil {
		s.WorkerMaxCount = *o.WorkerMaxCount
	}
}

// Write marshals the file config as YAML to path. Used by the init wizard.
func (f *File) Write(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}
