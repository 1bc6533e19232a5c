package security

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"
)

// hardenStep is one named step of the hardening sequence. Manifest is set
// for steps that apply an embedded manifest.
type hardenStep struct {
	Name     string
	Manifest string
	run      func(ctx context.Context, dir string) error
}

// Harden applies the fixed hardening sequence: namespace label, the two
// NetworkPolicies, Pod Security admission labels on the restricted-pods
// namespace, and the read-only RBAC set. The first failure aborts the
// remaining steps; already-applied steps are not rolled back.
func (m *Manager) Harden(ctx context.Context) error {
	dir, err := os.MkdirTemp("", "kubeprov-security-")
	if err != nil {
		return &StepError{Step: "harden", Err: err}
	}
	defer func() { _ = os.RemoveAll(dir) }()

	for _, step := range m.hardenSteps() {
		log.WithField("step", step.Name).Info("Applying hardening step")
		if err := step.run(ctx, dir); err != nil {
			return &StepError{Step: step.Name, Manifest: step.Manifest, Err: err}
		}
	}

	log.WithField("namespace", m.namespace).Info("Security hardening applied")
	return nil
}

func (m *Manager) hardenSteps() []hardenStep {
	return []hardenStep{
		{
			Name: "label-namespace",
			run:  m.labelTargetNamespace,
		},
		{
			Name:     "default-deny-ingress",
			Manifest: "default-deny-ingress.yaml",
			run: func(ctx context.Context, dir string) error {
				return m.applyManifest(ctx, dir, "network-policies/default-deny-ingress.yaml", nil, m.namespace)
			},
		},
		{
			Name:     "allow-namespace-internal",
			Manifest: "allow-namespace-internal.yaml",
			run: func(ctx context.Context, dir string) error {
				data := struct{ Namespace string }{m.namespace}
				return m.applyManifest(ctx, dir, "network-policies/allow-namespace-internal.yaml", data, m.namespace)
			},
		},
		{
			Name: "pod-security-labels",
			run:  m.applyPodSecurityLabels,
		},
		{
			Name:     "rbac-readonly",
			Manifest: "readonly-rbac.yaml",
			run: func(ctx context.Context, dir string) error {
				return m.applyManifest(ctx, dir, "rbac/readonly-rbac.yaml", nil, "")
			},
		},
	}
}

// labelTargetNamespace labels the target namespace so the
// allow-namespace-internal policy selector matches it.
func (m *Manager) labelTargetNamespace(ctx context.Context, _ string) error {
	_, err := m.kubectl(ctx, "", "label", "namespace", m.namespace, "name="+m.namespace, "--overwrite")
	return err
}

// applyPodSecurityLabels enforces the restricted Pod Security profile on the
// restricted-pods namespace, creating it first when absent.
func (m *Manager) applyPodSecurityLabels(ctx context.Context, _ string) error {
	if _, err := m.kubectl(ctx, "", "get", "namespace", restrictedNamespace); err != nil {
		if _, err := m.kubectl(ctx, "", "create", "namespace", restrictedNamespace); err != nil {
			return err
		}
	}

	_, err := m.kubectl(ctx, "", "label", "--overwrite", "namespace", restrictedNamespace,
		"pod-security.kubernetes.io/enforce=restricted",
		"pod-security.kubernetes.io/audit=restricted",
		"pod-security.kubernetes.io/warn=restricted")
	return err
}
