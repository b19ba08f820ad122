// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package artifact maps (course, module, filename) triples onto the filesystem.
// Directory creation is idempotent and writes overwrite: re-running a topic
// replaces the previous output.
package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pdiddy/coursegen/internal/logging"
	"github.com/pdiddy/coursegen/pkg/types"
)

// DefaultBaseDir is the directory that holds every generated course.
const DefaultBaseDir = "course_outputs"

// MaxModuleDirLen bounds module directory names.
const MaxModuleDirLen = 50

const (
	untitledCourse = "Untitled_Course"
	untitledModule = "Untitled_Module"
)

// Mirror receives a copy of every written artifact. name is the artifact path
// relative to the store's base directory, slash separated.
type Mirror interface {
	Upload(ctx context.Context, name string, content []byte) error
}

// Store writes course artifacts under a base directory.
type Store struct {
	baseDir string
	mirror  Mirror
	log     *logging.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithMirror uploads every written artifact to m as well.
func WithMirror(m Mirror) Option {
	return func(s *Store) { s.mirror = m }
}

// WithLogger sets the store's logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// NewStore returns a Store rooted at baseDir (DefaultBaseDir when empty).
func NewStore(baseDir string, opts ...Option) *Store {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	s := &Store{baseDir: baseDir, log: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BaseDir returns the directory that contains all course roots.
func (s *Store) BaseDir() string { return s.baseDir }

// CoursePath returns the course root for topic without touching the filesystem.
func (s *Store) CoursePath(topic string) string {
	name := Sanitize(topic)
	if name == "" {
		name = untitledCourse
	}
	return filepath.Join(s.baseDir, name)
}

// EnsureCourseRoot creates the course root directory for topic and returns its path.
func (s *Store) EnsureCourseRoot(topic string) (string, error) {
	root := s.CoursePath(topic)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("creating course root %s: %w", root, err)
	}
	return root, nil
}

// EnsureModuleDir creates the directory for one module under courseRoot.
func (s *Store) EnsureModuleDir(courseRoot, moduleTitle string) (string, error) {
	name := SanitizeModule(moduleTitle)
	if name == "" {
		name = untitledModule
	}
	dir := filepath.Join(courseRoot, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating module directory %s: %w", dir, err)
	}
	return dir, nil
}

// Write stores content as dir/filename, replacing any existing file.
// A configured mirror failure is logged but does not fail the write.
func (s *Store) Write(ctx context.Context, dir, filename, content string) (types.Artifact, error) {
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return types.Artifact{}, fmt.Errorf("writing %s: %w", path, err)
	}
	a := types.Artifact{Name: filename, Path: path, Bytes: len(content)}

	if s.mirror != nil {
		if err := s.mirror.Upload(ctx, s.relName(path), []byte(content)); err != nil {
			s.log.Warn("mirror upload failed", "path", path, "error", err)
		}
	}
	return a, nil
}

// relName converts path to a slash-separated name relative to the base directory.
func (s *Store) relName(path string) string {
	rel, err := filepath.Rel(s.baseDir, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}

// Sanitize keeps letters, digits, spaces, underscores and hyphens, drops
// trailing whitespace, and turns spaces into underscores. It is idempotent.
func Sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		if isSafe(r) {
			b.WriteRune(r)
		}
	}
	return strings.ReplaceAll(strings.TrimRight(b.String(), " "), " ", "_")
}

// SanitizeModule is Sanitize truncated to MaxModuleDirLen runes.
func SanitizeModule(name string) string {
	safe := []rune(Sanitize(name))
	if len(safe) > MaxModuleDirLen {
		safe = safe[:MaxModuleDirLen]
	}
	return string(safe)
}

func isSafe(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' || r == '-'
}
