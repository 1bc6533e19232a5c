package handlers

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/kubeprov/kubeprov/internal/config"
)

// Factory function variables for init - can be replaced in tests.
var (
	// fileExists checks if a file exists.
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	// runWizard runs the interactive configuration wizard.
	runWizard = config.RunWizard

	// stdinIsTTY reports whether stdin is an interactive terminal.
	stdinIsTTY = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	// writeConfigFile writes the config file. Swappable in tests.
	writeConfigFile = (*config.File).Write
)

// Init writes a cluster configuration file. On an interactive terminal the
// values are collected by a wizard; otherwise a starter file with the
// built-in defaults is written for editing.
func Init(outputPath string) error {
	if fileExists(outputPath) {
		fmt.Printf("Warning: %s already exists and will be overwritten.\n\n", outputPath)
	}

	var (
		f   *config.File
		err error
	)
	if stdinIsTTY() {
		printWelcome()
		f, err = runWizard()
		if err != nil {
			return err
		}
	} else {
		f = starterFile()
	}

	if err := writeConfigFile(f, outputPath); err != nil {
		return err
	}

	printInitSuccess(outputPath, f)
	return nil
}

// starterFile is the non-interactive template: built-in defaults plus
// placeholder identity fields the user has to edit anyway.
func starterFile() *config.File {
	minCount := config.DefaultWorkerMinCount
	maxCount := config.DefaultWorkerMaxCount
	return &config.File{
		Provider:          "aws",
		ClusterName:       "my-cluster",
		Region:            "eu-west-1",
		Environment:       config.DefaultEnvironment,
		KubernetesVersion: config.DefaultKubernetesVersion,
		WorkerMinCount:    &minCount,
		WorkerMaxCount:    &maxCount,
	}
}

func printWelcome() {
	fmt.Println()
	fmt.Println("kubeprov - Kubernetes on AWS and Azure")
	fmt.Println("======================================")
	fmt.Println()
	fmt.Println("This wizard creates a cluster configuration with sensible defaults.")
	fmt.Println()
}

func printInitSuccess(outputPath string, f *config.File) {
	fmt.Println()
	fmt.Println("Configuration saved!")
	fmt.Println()
	fmt.Printf("  File: %s\n", outputPath)
	fmt.Println()

	fmt.Println("Cluster Summary")
	fmt.Println("---------------")
	fmt.Printf("  Name:       %s\n", f.ClusterName)
	fmt.Printf("  Provider:   %s\n", f.Provider)
	fmt.Printf("  Region:     %s\n", f.Region)
	fmt.Printf("  Kubernetes: %s\n", f.KubernetesVersion)
	if f.WorkerMinCount != nil && f.WorkerMaxCount != nil {
		fmt.Printf("  Workers:    %d-%d\n", *f.WorkerMinCount, *f.WorkerMaxCount)
	}
	fmt.Println()

	fmt.Println("Next Steps")
	fmt.Println("----------")
	fmt.Printf("  1. Review %s\n", outputPath)
	fmt.Println("  2. Check your environment:")
	fmt.Println("     kubeprov doctor")
	fmt.Println("  3. Create your cluster:")
	fmt.Printf("     kubeprov cluster create -c %s\n", outputPath)
	fmt.Println()
}
