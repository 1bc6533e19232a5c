package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/kubeprov/kubeprov/internal/provider"
)

// RunWizard collects a starter configuration interactively and returns it as
// a File ready to be written. Only called from a TTY.
func RunWizard() (*File, error) {
	var (
		clusterName  string
		providerName provider.Provider = provider.AWS
		region       string
		environment  = DefaultEnvironment
		k8sVersion   = DefaultKubernetesVersion
		minCount     = strconv.Itoa(DefaultWorkerMinCount)
		maxCount     = strconv.Itoa(DefaultWorkerMaxCount)
		instanceType string
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Cluster name").
				Description("Used for resource naming and the kubeconfig file").
				Validate(validateName).
				Value(&clusterName),
			huh.NewSelect[provider.Provider]().
				Title("Cloud provider").
				Options(
					huh.NewOption("AWS (EKS)", provider.AWS),
					huh.NewOption("Azure (AKS)", provider.Azure),
				).
				Value(&providerName),
			huh.NewInput().
				Title("Region").
				Placeholder("eu-central-1 / westeurope").
				Validate(validateName).
				Value(&region),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Environment").
				Options(
					huh.NewOption("dev", "dev"),
					huh.NewOption("staging", "staging"),
					huh.NewOption("prod", "prod"),
				).
				Value(&environment),
			huh.NewInput().
				Title("Kubernetes version").
				Value(&k8sVersion),
			huh.NewInput().
				Title("Worker pool minimum size").
				Validate(validateCount).
				Value(&minCount),
			huh.NewInput().
				Title("Worker pool maximum size").
				Validate(validateCount).
				Value(&maxCount),
			huh.NewInput().
				Title("Worker instance type").
				Description("Leave empty for the provider default").
				Value(&instanceType),
		),
	)

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard aborted: %w", err)
	}

	minVal, maxVal, err := parseWorkerBounds(minCount, maxCount)
	if err != nil {
		return nil, err
	}

	return &File{
		Provider:           providerName.String(),
		ClusterName:        strings.TrimSpace(clusterName),
		Region:             strings.TrimSpace(region),
		Environment:        environment,
		KubernetesVersion:  strings.TrimSpace(k8sVersion),
		WorkerMinCount:     &minVal,
		WorkerMaxCount:     &maxVal,
		WorkerInstanceType: strings.TrimSpace(instanceType),
	}, nil
}

// parseWorkerBounds parses the worker pool sizes and checks their ordering.
func parseWorkerBounds(minCount, maxCount string) (int, int, error) {
	minVal, err := strconv.Atoi(strings.TrimSpace(minCount))
	if err != nil {
		return 0, 0, errorf("worker_min_count %q is not a number", strings.TrimSpace(minCount))
	}
	maxVal, err := strconv.Atoi(strings.TrimSpace(maxCount))
	if err != nil {
		return 0, 0, errorf("worker_max_count %q is not a number", strings.TrimSpace(maxCount))
	}
	if maxVal < minVal {
		return 0, 0, errorf("worker_max_count (%d) must be >= worker_min_count (%d)", maxVal, minVal)
	}
	return minVal, maxVal, nil
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("value is required")
	}
	return nil
}

func validateCount(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("enter a number")
	}
	if n < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}
