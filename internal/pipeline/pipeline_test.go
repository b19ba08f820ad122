// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/coursegen/internal/artifact"
	"github.com/pdiddy/coursegen/internal/llm/llmtest"
	"github.com/pdiddy/coursegen/internal/pacing"
	"github.com/pdiddy/coursegen/internal/research"
	"github.com/pdiddy/coursegen/internal/syllabus"
	"github.com/pdiddy/coursegen/pkg/types"
)

// --- fakes ---

type recordingPacer struct {
	points []pacing.Point
	err    error
}

func (p *recordingPacer) Wait(_ context.Context, pt pacing.Point) error {
	p.points = append(p.points, pt)
	return p.err
}

type memHistory struct {
	started  []types.Run
	finished []types.Run
	messages int
}

func (h *memHistory) Record(context.Context, string, int, types.Message) error {
	h.messages++
	return nil
}

func (h *memHistory) StartRun(_ context.Context, run types.Run) error {
	h.started = append(h.started, run)
	return nil
}

func (h *memHistory) FinishRun(_ context.Context, run types.Run) error {
	h.finished = append(h.finished, run)
	return nil
}

type nopSearcher struct{}

func (nopSearcher) Name() string { return "nop" }

func (nopSearcher) Search(context.Context, string, int) ([]types.ResearchResult, error) {
	return nil, nil
}

// --- helpers ---

// script returns the syllabus step followed by draft, lesson and quiz
// steps for n modules.
func script(syllabusText string, n int) []llmtest.Step {
	steps := []llmtest.Step{llmtest.Text(syllabusText)}
	for i := 1; i <= n; i++ {
		steps = append(steps,
			llmtest.Text(fmt.Sprintf("draft %d", i)),
			llmtest.Text(fmt.Sprintf("lesson %d", i)),
			llmtest.Text(fmt.Sprintf("quiz %d", i)),
		)
	}
	return steps
}

func newRunner(t *testing.T, model *llmtest.Scripted, pacer pacing.Pacer, opts ...Option) (*Runner, string) {
	t.Helper()
	base := filepath.Join(t.TempDir(), artifact.DefaultBaseDir)
	store := artifact.NewStore(base)
	clock := func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	opts = append([]Option{WithClock(clock)}, opts...)
	return New(types.CourseConfig{}, model, store, pacer, opts...), base
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func moduleDirs(t *testing.T, root string) []string {
	t.Helper()
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	return dirs
}

// --- tests ---

func TestRunPythonBasics(t *testing.T) {
	syllabusText := `Here is the plan.
Module 1: Variables and Types
Learn how Python stores data.
Module 2: Control Flow
Module 3: Functions
Module 4: Collections
Module 5: Files and Errors`
	model := &llmtest.Scripted{Steps: script(syllabusText, 5)}
	pacer := &recordingPacer{}
	var out bytes.Buffer
	r, base := newRunner(t, model, pacer, WithOutput(&out))

	res, err := r.Run(context.Background(), "Python Basics", "beginners")
	require.NoError(t, err)
	assert.Equal(t, Done, r.State())

	root := filepath.Join(base, "Python_Basics")
	assert.Equal(t, root, res.Course.Root)
	assert.Equal(t, "Python_Basics", res.Course.Name)
	assert.Equal(t, syllabusText, readFile(t, filepath.Join(root, types.OverviewFile)))

	dirs := moduleDirs(t, root)
	assert.Len(t, dirs, 5)
	assert.Contains(t, dirs, "Module_1_Variables_and_Types")

	// The reviewed text, not the draft, becomes the lesson.
	modDir := filepath.Join(root, "Module_2_Control_Flow")
	assert.Equal(t, "lesson 2", readFile(t, filepath.Join(modDir, types.LessonFile)))
	assert.Equal(t, "quiz 2", readFile(t, filepath.Join(modDir, types.QuizFile)))
	entries, err := os.ReadDir(modDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	wantPoints := []pacing.Point{pacing.AfterSyllabus}
	for i := 0; i < 5; i++ {
		wantPoints = append(wantPoints, pacing.BetweenStages, pacing.BetweenStages)
		if i < 4 {
			wantPoints = append(wantPoints, pacing.AfterModule)
		}
	}
	assert.Equal(t, wantPoints, pacer.points)

	assert.Equal(t, 16, model.Calls())
	assert.Contains(t, out.String(), "Found 5 modules to generate.")
	assert.Contains(t, out.String(), "Generating: Module 3: Functions...")
	assert.Contains(t, out.String(), "Course generated in: "+root)

	m, err := artifact.LoadManifest(root)
	require.NoError(t, err)
	assert.Equal(t, "Python Basics", m.Topic)
	assert.Equal(t, "beginners", m.Audience)
	assert.Equal(t, "scripted", m.Model)
	assert.False(t, m.Fallback)
	assert.Equal(t, 32, m.Turns)
	require.Len(t, m.Modules, 5)
	assert.Len(t, m.Modules[4].Artifacts, 2)
}

func TestRunThreeModulesIgnoresProse(t *testing.T) {
	syllabusText := "Here is your syllabus:\nModule 1: A\nrandom text\n**Module 2: B**\n3. C"
	model := &llmtest.Scripted{Steps: script(syllabusText, 3)}
	r, base := newRunner(t, model, &recordingPacer{})

	res, err := r.Run(context.Background(), "Letters", "kids")
	require.NoError(t, err)

	titles := make([]string, 0, len(res.Course.Modules))
	for _, m := range res.Course.Modules {
		titles = append(titles, m.Title)
	}
	assert.Equal(t, []string{"Module 1: A", "Module 2: B", "3. C"}, titles)
	assert.ElementsMatch(t, []string{"Module_1_A", "Module_2_B", "3_C"}, moduleDirs(t, filepath.Join(base, "Letters")))
}

func TestRunFallbackModules(t *testing.T) {
	model := &llmtest.Scripted{Steps: script("I would rather talk about something else.", 5)}
	r, base := newRunner(t, model, &recordingPacer{})

	res, err := r.Run(context.Background(), "Mystery", "everyone")
	require.NoError(t, err)
	assert.True(t, res.Manifest.Fallback)
	assert.ElementsMatch(t, syllabus.Fallback, moduleDirs(t, filepath.Join(base, "Mystery")))
}

func TestRunEmptyTurnsSkipArtifacts(t *testing.T) {
	empty := llmtest.Empty()
	model := &llmtest.Scripted{Default: &empty}
	r, base := newRunner(t, model, &recordingPacer{})

	res, err := r.Run(context.Background(), "Silence", "monks")
	require.NoError(t, err)

	root := filepath.Join(base, "Silence")
	assert.Equal(t, "", readFile(t, filepath.Join(root, types.OverviewFile)))
	assert.True(t, res.Manifest.Fallback)

	for _, dir := range moduleDirs(t, root) {
		entries, err := os.ReadDir(filepath.Join(root, dir))
		require.NoError(t, err)
		assert.Empty(t, entries, "module %s should have no files", dir)
	}
	for _, m := range res.Course.Modules {
		assert.Empty(t, m.Artifacts)
	}
}

func TestRunBackendErrorKeepsWrittenArtifacts(t *testing.T) {
	boom := errors.New("503 service unavailable")
	steps := script("Module 1: A\nModule 2: B", 1)
	steps = append(steps, llmtest.Fail(boom))
	model := &llmtest.Scripted{Steps: steps}
	hist := &memHistory{}
	r, base := newRunner(t, model, &recordingPacer{}, WithHistory(hist))

	res, err := r.Run(context.Background(), "Partial", "testers")
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `content stage for "Module 2: B"`)
	assert.Equal(t, ModuleContentRequested, r.State())
	require.NotNil(t, res)

	root := filepath.Join(base, "Partial")
	assert.Equal(t, "lesson 1", readFile(t, filepath.Join(root, "Module_1_A", types.LessonFile)))
	assert.NoFileExists(t, filepath.Join(root, types.ManifestFile))

	require.Len(t, hist.finished, 1)
	assert.Equal(t, types.RunFailed, hist.finished[0].Status)
	assert.Contains(t, hist.finished[0].Error, "503")
}

func TestRunEmptyTopic(t *testing.T) {
	model := &llmtest.Scripted{}
	r, base := newRunner(t, model, &recordingPacer{})

	for _, topic := range []string{"", "   ", "\t\n"} {
		res, err := r.Run(context.Background(), topic, "anyone")
		assert.ErrorIs(t, err, ErrEmptyTopic)
		assert.Nil(t, res)
	}
	assert.NoDirExists(t, base)
	assert.Zero(t, model.Calls())
	assert.Equal(t, Init, r.State())
}

func TestRunPauseCancelled(t *testing.T) {
	model := &llmtest.Scripted{Steps: script("Module 1: A", 1)}
	pacer := &recordingPacer{err: context.Canceled}
	r, _ := newRunner(t, model, pacer)

	_, err := r.Run(context.Background(), "Cancelled", "nobody")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, SyllabusParsed, r.State())
	assert.Equal(t, 1, model.Calls())
}

func TestRunSharesSessionAcrossStages(t *testing.T) {
	model := &llmtest.Scripted{Steps: script("Module 1: A", 1)}
	r, _ := newRunner(t, model, nil, WithResearch(research.New(nopSearcher{})))

	_, err := r.Run(context.Background(), "Shared", "")
	require.NoError(t, err)

	reqs := model.Requests()
	require.Len(t, reqs, 4)

	assert.Len(t, reqs[0].Tools, 1, "curriculum stage carries the research tool")
	assert.Contains(t, reqs[0].Contents[0].Parts[0].Text, "for "+DefaultAudience)
	for _, req := range reqs[1:] {
		assert.Empty(t, req.Tools)
	}

	review := reqs[2].Contents
	require.Len(t, review, 5)
	assert.Equal(t, "draft 1", review[3].Parts[0].Text)
	assert.Equal(t, ReviewPrompt(), review[4].Parts[0].Text)

	quiz := reqs[3].Contents
	assert.Equal(t, "lesson 1", quiz[len(quiz)-2].Parts[0].Text)
}

func TestRunRecordsHistory(t *testing.T) {
	model := &llmtest.Scripted{Steps: script("Module 1: A\nModule 2: B", 2)}
	hist := &memHistory{}
	r, _ := newRunner(t, model, nil, WithHistory(hist))

	res, err := r.Run(context.Background(), "Logged", "auditors")
	require.NoError(t, err)

	require.Len(t, hist.started, 1)
	assert.Equal(t, res.RunID, hist.started[0].ID)
	assert.Equal(t, types.RunRunning, hist.started[0].Status)
	assert.Equal(t, res.Manifest.SessionID, hist.started[0].SessionID)

	require.Len(t, hist.finished, 1)
	assert.Equal(t, types.RunSucceeded, hist.finished[0].Status)
	assert.Equal(t, 2, hist.finished[0].Modules)
	assert.Equal(t, 14, hist.finished[0].Turns)
	assert.Equal(t, 14, hist.messages)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "init", Init.String())
	assert.Equal(t, "module-review-requested", ModuleReviewRequested.String())
	assert.Equal(t, "done", Done.String())
	assert.True(t, strings.HasPrefix(State(42).String(), "state("))
}

func TestPrompts(t *testing.T) {
	assert.Equal(t,
		"Create a syllabus for 'Python Basics' for beginners. List exactly 5 modules. Format as 'Module X: Title'.",
		SyllabusPrompt("Python Basics", "beginners", 5))

	lesson := LessonPrompt("Module 1: Intro", 500)
	assert.Contains(t, lesson, "'Module 1: Intro'")
	assert.Contains(t, lesson, "Common Pitfalls")
	assert.Contains(t, lesson, "at least 500 words")

	assert.Equal(t,
		"Create a short 5-question quiz specifically for 'Module 1: Intro' based on the lesson above.",
		QuizPrompt("Module 1: Intro", 5))
}
