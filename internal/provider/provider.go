// Package provider maps a cloud provider name to its Terraform working
// directory and variable conventions.
package provider

import (
	"fmt"
	"path/filepath"
)

// Provider identifies a supported cloud provider.
type Provider string

const (
	// AWS provisions EKS clusters.
	AWS Provider = "aws"
	// Azure provisions AKS clusters.
	Azure Provider = "azure"
)

// All lists the supported providers.
func All() []Provider { return []Provider{AWS, Azure} }

// Parse validates a provider name. Matching is exact and lowercase.
func Parse(name string) (Provider, error) {
	switch Provider(name) {
	case AWS:
		return AWS, nil
	case Azure:
		return Azure, nil
	default:
		return "", fmt.Errorf("unsupported provider %q: use %q or %q", name, AWS, Azure)
	}
}

// Dir returns the Terraform working directory for the provider under the
// given base directory.
func (p Provider) Dir(baseDir string) string {
	return filepath.Join(baseDir, string(p))
}

// RegionVar returns the Terraform variable name carrying the region.
// The AWS and Azure modules name it differently.
func (p Provider) RegionVar() string {
	if p == Azure {
		return "location"
	}
	return "aws_region"
}

// DefaultInstanceType returns the provider's default worker instance type.
func (p Provider) DefaultInstanceType() string {
	if p == Azure {
		return "Standard_D2_v2"
	}
	return "t3.medium"
}

func (p Provider) String() string { return string(p) }
