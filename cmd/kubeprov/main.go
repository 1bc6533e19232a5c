// Package main is the entry point for the kubeprov CLI.
//
// kubeprov provisions managed Kubernetes clusters on AWS (EKS) and Azure
// (AKS) through Terraform, installs a Prometheus/Grafana monitoring stack,
// and applies baseline security hardening.
//
// Commands: init, cluster, monitoring, security, doctor.
//
// For detailed usage information, run:
//
//	kubeprov --help
package main

import (
	"fmt"
	"os"

	"github.com/kubeprov/kubeprov/cmd/kubeprov/commands"
	"github.com/kubeprov/kubeprov/internal/invoke"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(invoke.ExitCode(err))
	}
}
