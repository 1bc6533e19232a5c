package cluster

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/kubeprov/kubeprov/internal/provider"
)

// Delete destroys the cluster. terraform destroy on empty state succeeds as
// a no-op, so deleting a never-created cluster is not an error. When an S3
// remote-state bucket is configured for AWS, the cluster's state objects are
// removed afterwards; cleanup failures are logged but never fail the delete.
func (m *Manager) Delete(ctx context.Context) error {
	s := m.settings
	log.WithFields(log.Fields{
		"provider": s.Provider,
		"cluster":  s.ClusterName,
	}).Info("Deleting cluster")

	if err := m.tf.Destroy(ctx); err != nil {
		return provisioningErr("destroy", err)
	}

	if s.Provider == provider.AWS && s.State.Bucket != "" {
		if err := cleanupStateObjects(ctx, s.State, s.ClusterName); err != nil {
			log.WithError(err).Warn("Remote-state cleanup failed; objects may need manual removal")
		}
	}

	log.Infof("Cluster %s deleted", s.ClusterName)
	return nil
}
