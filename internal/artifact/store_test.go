// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/coursegen/pkg/types"
)

type recordingMirror struct {
	uploads map[string]string
	err     error
}

func (m *recordingMirror) Upload(_ context.Context, name string, content []byte) error {
	if m.err != nil {
		return m.err
	}
	if m.uploads == nil {
		m.uploads = map[string]string{}
	}
	m.uploads[name] = string(content)
	return nil
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Python Basics", "Python_Basics"},
		{"C++ / Rust: a comparison", "C__Rust_a_comparison"},
		{"  leading spaces", "__leading_spaces"},
		{"trailing spaces   ", "trailing_spaces"},
		{"../../etc/passwd", "etcpasswd"},
		{"snake_case-and-kebab", "snake_case-and-kebab"},
		{"Café Über", "Café_Über"},
		{"???", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitizeProperties(t *testing.T) {
	inputs := []string{
		"Module 1: Introduction to **Go** concurrency patterns and the memory model",
		"a/b\\c:d*e?f\"g<h>i|j",
		"tabs\tand\nnewlines",
		"Module_1_Fundamentals",
		strings.Repeat("long title ", 20),
		"",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "Sanitize must be idempotent for %q", in)

		mod := SanitizeModule(in)
		assert.Equal(t, mod, SanitizeModule(mod), "SanitizeModule must be idempotent for %q", in)
		assert.LessOrEqual(t, len([]rune(mod)), MaxModuleDirLen)

		for _, r := range once + mod {
			ok := unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-'
			assert.True(t, ok, "unexpected rune %q in %q", r, once)
		}
		assert.NotContains(t, once, string(filepath.Separator))
	}
}

func TestSanitizeModuleTruncates(t *testing.T) {
	title := "Module 1: " + strings.Repeat("x", 80)
	got := SanitizeModule(title)
	assert.Len(t, got, MaxModuleDirLen)
	assert.True(t, strings.HasPrefix(got, "Module_1_"))
}

func TestEnsureDirs(t *testing.T) {
	base := filepath.Join(t.TempDir(), DefaultBaseDir)
	s := NewStore(base)

	root, err := s.EnsureCourseRoot("Python Basics")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "Python_Basics"), root)
	assert.DirExists(t, root)

	// Idempotent.
	again, err := s.EnsureCourseRoot("Python Basics")
	require.NoError(t, err)
	assert.Equal(t, root, again)

	dir, err := s.EnsureModuleDir(root, "Module 1: Intro")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "Module_1_Intro"), dir)
	assert.DirExists(t, dir)

	_, err = s.EnsureModuleDir(root, "Module 1: Intro")
	require.NoError(t, err)
}

func TestEnsureDirsUnsanitizableNames(t *testing.T) {
	s := NewStore(t.TempDir())

	root, err := s.EnsureCourseRoot("???")
	require.NoError(t, err)
	assert.Equal(t, "Untitled_Course", filepath.Base(root))

	dir, err := s.EnsureModuleDir(root, "***")
	require.NoError(t, err)
	assert.Equal(t, "Untitled_Module", filepath.Base(dir))
}

func TestWriteOverwrites(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	ctx := context.Background()

	a, err := s.Write(ctx, dir, "lesson.md", "first draft")
	require.NoError(t, err)
	assert.Equal(t, types.Artifact{Name: "lesson.md", Path: filepath.Join(dir, "lesson.md"), Bytes: 11}, a)

	_, err = s.Write(ctx, dir, "lesson.md", "final")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "lesson.md"))
	require.NoError(t, err)
	assert.Equal(t, "final", string(data))
}

func TestWriteEmptyContent(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	_, err := s.Write(context.Background(), dir, types.OverviewFile, "")
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, types.OverviewFile))
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestWriteMissingDir(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.Write(context.Background(), filepath.Join(t.TempDir(), "nope"), "quiz.md", "x")
	assert.Error(t, err)
}

func TestWriteMirrors(t *testing.T) {
	base := t.TempDir()
	m := &recordingMirror{}
	s := NewStore(base, WithMirror(m))

	root, err := s.EnsureCourseRoot("Go")
	require.NoError(t, err)
	dir, err := s.EnsureModuleDir(root, "Module 1: Intro")
	require.NoError(t, err)

	_, err = s.Write(context.Background(), dir, "quiz.md", "Q1?")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Go/Module_1_Intro/quiz.md": "Q1?"}, m.uploads)
}

func TestWriteMirrorFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, WithMirror(&recordingMirror{err: errors.New("bucket gone")}))

	_, err := s.Write(context.Background(), dir, "lesson.md", "content")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "lesson.md"))
}

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	started := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	m := types.Manifest{
		Topic:     "Python Basics",
		Audience:  "beginners",
		SessionID: "abc",
		Model:     "gemini-2.0-flash-lite",
		Modules: []types.Module{
			{Index: 0, Title: "Module 1: Intro", Dir: "Module_1_Intro"},
		},
		Turns:      4,
		StartedAt:  started,
		FinishedAt: started.Add(time.Minute),
	}
	_, err := s.WriteManifest(context.Background(), dir, m)
	require.NoError(t, err)

	got, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, m.Topic, got.Topic)
	assert.Equal(t, m.Modules, got.Modules)
	assert.True(t, m.FinishedAt.Equal(got.FinishedAt))
}

func TestLoadManifestMissing(t *testing.T) {
	_, err := LoadManifest(t.TempDir())
	assert.Error(t, err)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/markdown; charset=utf-8", contentType("a/lesson.md"))
	assert.Equal(t, "application/yaml", contentType("course.yaml"))
	assert.Equal(t, "text/plain; charset=utf-8", contentType("notes.txt"))
}
