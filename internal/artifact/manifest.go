// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/coursegen/pkg/types"
)

// WriteManifest marshals m to course.yaml at the course root.
func (s *Store) WriteManifest(ctx context.Context, courseRoot string, m types.Manifest) (types.Artifact, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return types.Artifact{}, fmt.Errorf("marshaling manifest: %w", err)
	}
	return s.Write(ctx, courseRoot, types.ManifestFile, string(data))
}

// LoadManifest reads course.yaml from a course root.
func LoadManifest(courseRoot string) (*types.Manifest, error) {
	data, err := os.ReadFile(filepath.Join(courseRoot, types.ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m types.Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}
