package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/kubeprov/kubeprov/internal/config"
	"github.com/kubeprov/kubeprov/internal/invoke"
	"github.com/kubeprov/kubeprov/internal/provider"
)

// DoctorCheck is one environment check result.
type DoctorCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Detail  string `json:"detail,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
}

// Factory function variables for doctor - can be replaced in tests.
var (
	// lookPath reports whether a binary is on PATH.
	lookPath = invoke.LookPath

	// probeAWSCredentials resolves the AWS default credential chain.
	probeAWSCredentials = func(ctx context.Context) (string, error) {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return "", err
		}
		creds, err := cfg.Credentials.Retrieve(ctx)
		if err != nil {
			return "", err
		}
		return creds.Source, nil
	}

	// probeAzureCredentials requests a management token through the Azure
	// default credential chain.
	probeAzureCredentials = func(ctx context.Context) error {
		cred, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return err
		}
		_, err = cred.GetToken(ctx, policy.TokenRequestOptions{
			Scopes: []string{"https://management.azure.com/.default"},
		})
		return err
	}

	// stdoutIsTTY reports whether stdout is an interactive terminal.
	stdoutIsTTY = func() bool {
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}
)

// Doctor checks the local environment: required binaries and cloud
// credentials. With a config file, only the configured provider is probed
// and the kubeconfig location is reported.
func Doctor(ctx context.Context, configPath string, jsonOutput bool) error {
	checks := []DoctorCheck{
		binaryCheck("terraform"),
		binaryCheck("kubectl"),
	}

	probeAWS, probeAzure := true, true
	if configPath != "" {
		settings, err := resolveConfig(configPath, config.Overrides{})
		if err != nil {
			checks = append(checks, DoctorCheck{Name: "configuration", Detail: err.Error()})
			probeAWS, probeAzure = false, false
		} else {
			checks = append(checks, DoctorCheck{
				Name:   "configuration",
				OK:     true,
				Detail: fmt.Sprintf("cluster %s on %s (%s)", settings.ClusterName, settings.Provider, settings.Region),
			})
			probeAWS = settings.Provider == provider.AWS
			probeAzure = settings.Provider == provider.Azure
			checks = append(checks, kubeconfigCheck(settings.KubeconfigPath()))
		}
	}

	if probeAWS {
		checks = append(checks, awsCheck(ctx))
	}
	if probeAzure {
		checks = append(checks, azureCheck(ctx))
	}

	if jsonOutput {
		return printJSON(checks)
	}

	printDoctorChecks(checks)

	for _, c := range checks {
		if !c.OK && !c.Skipped {
			return fmt.Errorf("doctor found problems; fix the failing checks above")
		}
	}
	return nil
}

func binaryCheck(name string) DoctorCheck {
	c := DoctorCheck{Name: name + " binary"}
	if lookPath(name) {
		c.OK = true
		c.Detail = "found on PATH"
	} else {
		c.Detail = "not found on PATH"
	}
	return c
}

func kubeconfigCheck(path string) DoctorCheck {
	c := DoctorCheck{Name: "kubeconfig"}
	if _, err := os.Stat(path); err == nil {
		c.OK = true
		c.Detail = path
	} else {
		c.Skipped = true
		c.Detail = fmt.Sprintf("%s not found (cluster not created yet)", path)
	}
	return c
}

func awsCheck(ctx context.Context) DoctorCheck {
	c := DoctorCheck{Name: "aws credentials"}
	source, err := probeAWSCredentials(ctx)
	if err != nil {
		c.Detail = err.Error()
		return c
	}
	c.OK = true
	c.Detail = source
	return c
}

func azureCheck(ctx context.Context) DoctorCheck {
	c := DoctorCheck{Name: "azure credentials"}
	if err := probeAzureCredentials(ctx); err != nil {
		c.Detail = err.Error()
		return c
	}
	c.OK = true
	c.Detail = "default credential chain"
	return c
}

// printDoctorChecks renders the checks, styled when stdout is a terminal.
func printDoctorChecks(checks []DoctorCheck) {
	titleStyle := lipgloss.NewStyle().Bold(true)
	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	failStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))

	styled := stdoutIsTTY()
	render := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	fmt.Println()
	fmt.Println(render(titleStyle, "kubeprov doctor"))
	fmt.Println()

	for _, c := range checks {
		mark, style := "ok", okStyle
		switch {
		case c.Skipped:
			mark, style = "--", dimStyle
		case !c.OK:
			mark, style = "!!", failStyle
		}
		fmt.Printf("  [%s] %-18s %s\n", render(style, mark), c.Name, render(dimStyle, c.Detail))
	}
	fmt.Println()
}
