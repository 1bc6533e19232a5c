package security

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"text/template"
)

//go:embed manifests
var manifestsFS embed.FS

// renderManifest reads a manifest from the embedded filesystem and executes
// it as a Go template with the provided data.
func renderManifest(name string, data any) ([]byte, error) {
	content, err := manifestsFS.ReadFile(path.Join("manifests", name))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", name, err)
	}

	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render manifest %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// applyManifest renders a manifest into dir under its base name and applies
// it with kubectl. The rendered file keeps its name so failures point at a
// recognizable manifest.
func (m *Manager) applyManifest(ctx context.Context, dir, name string, data any, namespace string) error {
	content, err := renderManifest(name, data)
	if err != nil {
		return err
	}

	base := path.Base(name)
	if err := os.WriteFile(filepath.Join(dir, base), content, 0o600); err != nil {
		return fmt.Errorf("failed to write manifest %s: %w", base, err)
	}

	args := []string{"apply", "-f", base}
	if namespace != "" {
		args = append(args, "--namespace", namespace)
	}
	_, err = m.kubectl(ctx, dir, args...)
	return err
}
