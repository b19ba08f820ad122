// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/coursegen/internal/artifact"
	"github.com/pdiddy/coursegen/pkg/types"
)

// buildCourse writes a two-module course where only the first module has a quiz.
func buildCourse(t *testing.T) (string, string) {
	t.Helper()
	ctx := context.Background()
	base := t.TempDir()
	store := artifact.NewStore(base)

	root, err := store.EnsureCourseRoot("Go Testing")
	require.NoError(t, err)
	_, err = store.Write(ctx, root, types.OverviewFile, "# Syllabus")
	require.NoError(t, err)

	var modules []types.Module
	for i, title := range []string{"Module 1: Table Tests", "Module 2: Fakes"} {
		dir, err := store.EnsureModuleDir(root, title)
		require.NoError(t, err)
		_, err = store.Write(ctx, dir, types.LessonFile, "lesson")
		require.NoError(t, err)
		if i == 0 {
			_, err = store.Write(ctx, dir, types.QuizFile, "quiz")
			require.NoError(t, err)
		}
		modules = append(modules, types.Module{Index: i, Title: title, Dir: dir})
	}
	_, err = store.WriteManifest(ctx, root, types.Manifest{Topic: "Go Testing", Modules: modules})
	require.NoError(t, err)
	return base, root
}

func TestPreviewFiles(t *testing.T) {
	_, root := buildCourse(t)

	tests := []struct {
		name   string
		module string
		want   []string
		errMsg string
	}{
		{name: "overview", want: []string{filepath.Join(root, types.OverviewFile)}},
		{name: "by number", module: "1", want: []string{
			filepath.Join(root, "Module_1_Table_Tests", types.LessonFile),
			filepath.Join(root, "Module_1_Table_Tests", types.QuizFile),
		}},
		{name: "by title skips missing quiz", module: "Module 2: Fakes", want: []string{
			filepath.Join(root, "Module_2_Fakes", types.LessonFile),
		}},
		{name: "out of range", module: "3", errMsg: "out of range"},
		{name: "unknown title", module: "Module 9", errMsg: "no lesson or quiz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := previewFiles(root, tt.module)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPreviewFilesNoCourse(t *testing.T) {
	_, err := previewFiles(filepath.Join(t.TempDir(), "missing"), "")
	assert.ErrorContains(t, err, "no course at")
}

func TestResolveCourseRoot(t *testing.T) {
	base, root := buildCourse(t)

	assert.Equal(t, root, resolveCourseRoot(root, "ignored"))
	assert.Equal(t, root, resolveCourseRoot("Go Testing", base))
}

func TestAsk(t *testing.T) {
	var out bytes.Buffer
	in := bufio.NewReader(strings.NewReader("  Python Basics \nbeginners"))

	topic, err := ask(in, &out, "Enter Course Topic: ", false)
	require.NoError(t, err)
	assert.Equal(t, "Python Basics", topic)

	audience, err := ask(in, &out, "Enter Target Audience: ", false)
	require.NoError(t, err)
	assert.Equal(t, "beginners", audience)

	empty, err := ask(in, &out, "again: ", false)
	require.NoError(t, err)
	assert.Equal(t, "", empty)
	assert.Contains(t, out.String(), "Enter Course Topic: ")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "a b", truncate("a\nb", 10))
}

func TestPrintRunsEmpty(t *testing.T) {
	var out bytes.Buffer
	printRuns(&out, nil)
	assert.Equal(t, "No runs recorded.\n", out.String())
}
