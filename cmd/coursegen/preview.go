// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pdiddy/coursegen/internal/artifact"
	"github.com/pdiddy/coursegen/pkg/types"
)

var previewCmd = &cobra.Command{
	Use:   "preview <course-dir|topic> [module]",
	Short: "Render a generated course in the terminal",
	Long: `Preview renders generated Markdown with terminal styling. With only a
course it shows the syllabus overview. With a module (1-based number or title)
it shows that module's lesson and quiz.

The course may be given as a directory or as the original topic, which is
resolved under the configured output directory.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().Bool("raw", false, "print Markdown without styling")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	root := resolveCourseRoot(args[0], settings.Course.OutputDir)
	module := ""
	if len(args) == 2 {
		module = args[1]
	}
	files, err := previewFiles(root, module)
	if err != nil {
		return err
	}

	raw, _ := cmd.Flags().GetBool("raw")
	render := func(md string) (string, error) { return md, nil }
	if !raw && term.IsTerminal(int(os.Stdout.Fd())) {
		width := 100
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
			width = w - 4
		}
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
		if err != nil {
			return fmt.Errorf("creating renderer: %w", err)
		}
		render = r.Render
	}

	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("reading %s: %w", f, err)
		}
		out, err := render(string(data))
		if err != nil {
			return fmt.Errorf("rendering %s: %w", f, err)
		}
		fmt.Fprintf(os.Stdout, "==> %s\n%s\n", f, out)
	}
	return nil
}

// resolveCourseRoot accepts an existing directory or a topic.
func resolveCourseRoot(arg, outputDir string) string {
	if info, err := os.Stat(arg); err == nil && info.IsDir() {
		return arg
	}
	return artifact.NewStore(outputDir).CoursePath(arg)
}

// previewFiles lists the Markdown files to show for root and an optional
// module selector. Missing lesson or quiz files are skipped; a module with
// neither is an error.
func previewFiles(root, module string) ([]string, error) {
	if module == "" {
		path := filepath.Join(root, types.OverviewFile)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("no course at %s: %w", root, err)
		}
		return []string{path}, nil
	}

	dir := filepath.Join(root, artifact.SanitizeModule(module))
	if n, err := strconv.Atoi(module); err == nil {
		m, err := artifact.LoadManifest(root)
		if err != nil {
			return nil, err
		}
		if n < 1 || n > len(m.Modules) {
			return nil, fmt.Errorf("module %d out of range (course has %d)", n, len(m.Modules))
		}
		dir = m.Modules[n-1].Dir
	}

	var files []string
	for _, name := range []string{types.LessonFile, types.QuizFile} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			files = append(files, path)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no lesson or quiz in %s", dir)
	}
	return files, nil
}
