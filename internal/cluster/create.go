package cluster

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Create provisions the cluster: render the provider's variable file, then
// terraform init and apply. Any Terraform failure is fatal and reported with
// its stderr; no retries, no cleanup of partially provisioned resources.
func (m *Manager) Create(ctx context.Context) error {
	s := m.settings
	log.WithFields(log.Fields{
		"provider": s.Provider,
		"cluster":  s.ClusterName,
		"region":   s.Region,
	}).Info("Creating cluster")

	varFile, err := m.tf.WriteVars(s)
	if err != nil {
		return provisioningErr("vars", err)
	}

	if err := m.tf.Init(ctx); err != nil {
		return provisioningErr("init", err)
	}

	if err := m.tf.Apply(ctx, varFile); err != nil {
		return provisioningErr("apply", err)
	}

	log.WithField("kubeconfig", m.Kubeconfig()).Infof("Cluster %s created", s.ClusterName)
	return nil
}
