package monitoring

import (
	"context"
	"fmt"
	"os"
	"time"

	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/getter"
	"helm.sh/helm/v3/pkg/kube"
	"helm.sh/helm/v3/pkg/repo"
)

// helmTimeout bounds a single install or upgrade.
const helmTimeout = 10 * time.Minute

// helmInstaller is the Helm surface the setup flow needs. Swappable in
// tests.
type helmInstaller interface {
	InstallOrUpgrade(ctx context.Context, releaseName, repoURL, chartName string, values map[string]interface{}) error
}

// helmClient drives Helm through its action API against one namespace.
type helmClient struct {
	namespace    string
	actionConfig *action.Configuration
}

// newHelmClient builds a helm client for the kubeconfig and namespace.
// Swappable in tests.
var newHelmClient = func(kubeconfigPath, namespace string) (helmInstaller, error) {
	actionConfig := new(action.Configuration)
	restGetter := kube.GetConfig(kubeconfigPath, "", namespace)

	// Suppress helm's debug chatter.
	if err := actionConfig.Init(restGetter, namespace, "secret", func(string, ...interface{}) {}); err != nil {
		return nil, fmt.Errorf("failed to initialize helm: %w", err)
	}

	return &helmClient{namespace: namespace, actionConfig: actionConfig}, nil
}

// InstallOrUpgrade installs the chart or upgrades the release if it already
// exists, making setup safe to repeat.
func (c *helmClient) InstallOrUpgrade(ctx context.Context, releaseName, repoURL, chartName string, values map[string]interface{}) error {
	histClient := action.NewHistory(c.actionConfig)
	histClient.Max = 1
	if _, err := histClient.Run(releaseName); err != nil {
		return c.install(ctx, releaseName, repoURL, chartName, values)
	}
	return c.upgrade(ctx, releaseName, repoURL, chartName, values)
}

func (c *helmClient) install(ctx context.Context, releaseName, repoURL, chartName string, values map[string]interface{}) error {
	installClient := action.NewInstall(c.actionConfig)
	installClient.ReleaseName = releaseName
	installClient.Namespace = c.namespace
	installClient.CreateNamespace = true
	installClient.Wait = false
	installClient.Timeout = helmTimeout

	ch, err := c.loadChart(repoURL, chartName)
	if err != nil {
		return err
	}

	if _, err := installClient.RunWithContext(ctx, ch, values); err != nil {
		return fmt.Errorf("failed to install release %s: %w", releaseName, err)
	}
	return nil
}

func (c *helmClient) upgrade(ctx context.Context, releaseName, repoURL, chartName string, values map[string]interface{}) error {
	upgradeClient := action.NewUpgrade(c.actionConfig)
	upgradeClient.Namespace = c.namespace
	upgradeClient.Wait = false
	upgradeClient.Timeout = helmTimeout
	upgradeClient.ReuseValues = false

	ch, err := c.loadChart(repoURL, chartName)
	if err != nil {
		return err
	}

	if _, err := upgradeClient.RunWithContext(ctx, releaseName, ch, values); err != nil {
		return fmt.Errorf("failed to upgrade release %s: %w", releaseName, err)
	}
	return nil
}

// loadChart resolves the latest chart from the repository URL. Resolving per
// call stands in for `helm repo add` and keeps repeated setups idempotent.
func (c *helmClient) loadChart(repoURL, chartName string) (*chart.Chart, error) {
	settings := cli.New()

	chartPath, err := repo.FindChartInRepoURL(repoURL, chartName, "", "", "", "", getter.All(settings))
	if err != nil {
		return nil, fmt.Errorf("failed to find chart %s in repo %s: %w", chartName, repoURL, err)
	}
	defer func() { _ = os.Remove(chartPath) }()

	ch, err := loader.Load(chartPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load chart %s: %w", chartName, err)
	}
	return ch, nil
}
