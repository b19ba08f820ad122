// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"context"
	"fmt"
	"path"

	"cloud.google.com/go/storage"
)

// GCSMirror copies artifacts into a Google Cloud Storage bucket.
// Credentials come from the environment (Application Default Credentials).
type GCSMirror struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSMirror opens a storage client for bucket. Objects are written under prefix.
func NewGCSMirror(ctx context.Context, bucket, prefix string) (*GCSMirror, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs bucket is empty")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return &GCSMirror{client: client, bucket: bucket, prefix: prefix}, nil
}

// Upload writes content to gs://bucket/prefix/name, replacing any existing object.
func (m *GCSMirror) Upload(ctx context.Context, name string, content []byte) error {
	obj := m.client.Bucket(m.bucket).Object(path.Join(m.prefix, name))
	w := obj.NewWriter(ctx)
	w.ContentType = contentType(name)
	if _, err := w.Write(content); err != nil {
		_ = w.Close()
		return fmt.Errorf("uploading %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalizing %s: %w", name, err)
	}
	return nil
}

// Close releases the storage client.
func (m *GCSMirror) Close() error {
	return m.client.Close()
}

func contentType(name string) string {
	switch path.Ext(name) {
	case ".md":
		return "text/markdown; charset=utf-8"
	case ".yaml", ".yml":
		return "application/yaml"
	default:
		return "text/plain; charset=utf-8"
	}
}
