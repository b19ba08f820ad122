// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one course generation end to end: syllabus, then
// lesson, review, and quiz for every module, all through a single shared
// session. Stages run strictly in sequence; a pacer sits between them.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/coursegen/internal/agent"
	"github.com/pdiddy/coursegen/internal/artifact"
	"github.com/pdiddy/coursegen/internal/llm"
	"github.com/pdiddy/coursegen/internal/logging"
	"github.com/pdiddy/coursegen/internal/pacing"
	"github.com/pdiddy/coursegen/internal/research"
	"github.com/pdiddy/coursegen/internal/session"
	"github.com/pdiddy/coursegen/internal/syllabus"
	"github.com/pdiddy/coursegen/pkg/types"
)

// ErrEmptyTopic is returned when the topic is blank. Nothing is written.
var ErrEmptyTopic = errors.New("empty topic")

// DefaultUserID scopes sessions started from the command line.
const DefaultUserID = "cli_user"

// DefaultAudience is used when the audience prompt is left blank.
const DefaultAudience = "a general audience"

// State is the orchestrator's position in the run.
type State int

const (
	Init State = iota
	SyllabusRequested
	SyllabusParsed
	ModuleContentRequested
	ModuleReviewRequested
	ModuleQuizRequested
	Done
)

func (s State) String() string {
	switch s {
	case Init:
		return "init"
	case SyllabusRequested:
		return "syllabus-requested"
	case SyllabusParsed:
		return "syllabus-parsed"
	case ModuleContentRequested:
		return "module-content-requested"
	case ModuleReviewRequested:
		return "module-review-requested"
	case ModuleQuizRequested:
		return "module-quiz-requested"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// History receives the run record and every transcript message.
// internal/runlog implements it.
type History interface {
	session.Recorder
	StartRun(ctx context.Context, run types.Run) error
	FinishRun(ctx context.Context, run types.Run) error
}

// Result is what a run produced. On failure it holds whatever was written
// before the error.
type Result struct {
	RunID    string
	Course   types.Course
	Manifest types.Manifest
}

// Runner drives one course generation at a time.
type Runner struct {
	cfg      types.CourseConfig
	model    llm.Model
	store    *artifact.Store
	pacer    pacing.Pacer
	research *research.Capability
	history  History
	userID   string
	out      io.Writer
	log      *logging.Logger
	now      func() time.Time

	state State
}

// Option configures a Runner.
type Option func(*Runner)

// WithResearch gives the curriculum stage the research tool.
func WithResearch(rc *research.Capability) Option {
	return func(r *Runner) { r.research = rc }
}

// WithHistory records runs and turns.
func WithHistory(h History) Option {
	return func(r *Runner) { r.history = h }
}

// WithOutput sets where progress lines are written.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// WithLogger sets the structured logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithUserID overrides DefaultUserID.
func WithUserID(id string) Option {
	return func(r *Runner) { r.userID = id }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// New returns a Runner. A nil pacer means no pauses.
func New(cfg types.CourseConfig, model llm.Model, store *artifact.Store, pacer pacing.Pacer, opts ...Option) *Runner {
	if cfg.Modules <= 0 {
		cfg.Modules = syllabus.MaxModules
	}
	if cfg.MinWords <= 0 {
		cfg.MinWords = agent.DefaultMinWords
	}
	if cfg.QuizQuestions <= 0 {
		cfg.QuizQuestions = agent.DefaultQuizQuestions
	}
	if pacer == nil {
		pacer = pacing.None{}
	}
	r := &Runner{
		cfg:    cfg,
		model:  model,
		store:  store,
		pacer:  pacer,
		userID: DefaultUserID,
		out:    io.Discard,
		log:    logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current position of the state machine.
func (r *Runner) State() State { return r.state }

// stages groups the agents of one run.
type stages struct {
	curriculum *agent.Agent
	content    *agent.Agent
	review     *agent.Agent
	quiz       *agent.Agent
}

// Run generates a course for topic. Backend and filesystem errors end the
// run; files already written stay on disk.
func (r *Runner) Run(ctx context.Context, topic, audience string) (*Result, error) {
	r.state = Init
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	audience = strings.TrimSpace(audience)
	if audience == "" {
		audience = DefaultAudience
	}

	root, err := r.store.EnsureCourseRoot(topic)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(r.out, "\nCourse root: %s\n", root)

	res := &Result{
		RunID: uuid.NewString(),
		Course: types.Course{
			Topic:    topic,
			Audience: audience,
			Name:     filepath.Base(root),
			Root:     root,
		},
	}

	opts := []session.Option{
		session.WithLogger(r.log),
		session.WithMaxToolRounds(r.cfg.AI.MaxToolRounds),
	}
	if r.history != nil {
		opts = append(opts, session.WithRecorder(r.history))
	}
	sess := session.New(res.RunID, r.userID, r.model, opts...)

	res.Manifest = types.Manifest{
		Topic:     topic,
		Audience:  audience,
		SessionID: sess.ID(),
		Model:     r.model.Name(),
		StartedAt: r.now().UTC(),
	}
	log := r.log.With("run", res.RunID, "topic", topic)
	r.startHistory(ctx, res, log)

	err = r.generate(ctx, sess, res, log)
	res.Manifest.Modules = res.Course.Modules
	res.Manifest.Turns = sess.Len()
	res.Manifest.FinishedAt = r.now().UTC()
	r.finishHistory(ctx, res, err, log)
	if err != nil {
		log.Error("run failed", "state", r.state.String(), "error", err)
		return res, err
	}

	if _, err := r.store.WriteManifest(ctx, root, res.Manifest); err != nil {
		return res, err
	}
	fmt.Fprintf(r.out, "\nSUCCESS! Course generated in: %s\n", root)
	return res, nil
}

func (r *Runner) generate(ctx context.Context, sess *session.Session, res *Result, log *logging.Logger) error {
	st := stages{
		curriculum: agent.Curriculum(r.cfg.Modules, r.research),
		content:    agent.Content(r.cfg.MinWords),
		review:     agent.Review(),
		quiz:       agent.Quiz(r.cfg.QuizQuestions),
	}
	course := &res.Course

	r.state = SyllabusRequested
	fmt.Fprintln(r.out, "\n1. Designing syllabus...")
	text, err := st.curriculum.RunTurn(ctx, sess, SyllabusPrompt(course.Topic, course.Audience, r.cfg.Modules))
	if err != nil {
		return fmt.Errorf("curriculum stage for %q: %w", course.Topic, err)
	}
	if text == "" {
		log.Warn("curriculum stage produced no text")
	}
	overview, err := r.store.Write(ctx, course.Root, types.OverviewFile, text)
	if err != nil {
		return err
	}
	res.Manifest.Overview = overview
	fmt.Fprintf(r.out, "   ├── %s\n", overview.Name)

	titles := syllabus.ParseN(text, r.cfg.Modules)
	if syllabus.IsFallback(titles) {
		res.Manifest.Fallback = true
		log.Info("no module headers in syllabus, using fallback modules")
	}
	for i, title := range titles {
		course.Modules = append(course.Modules, types.Module{Index: i, Title: title})
	}
	r.state = SyllabusParsed
	fmt.Fprintf(r.out, "   └── Found %d modules to generate.\n", len(titles))

	if err := r.pause(ctx, pacing.AfterSyllabus); err != nil {
		return err
	}

	for i := range course.Modules {
		if err := r.module(ctx, sess, st, course, &course.Modules[i], log); err != nil {
			return err
		}
		if i == len(course.Modules)-1 {
			break
		}
		fmt.Fprintln(r.out, "      Cooling down API...")
		if err := r.pause(ctx, pacing.AfterModule); err != nil {
			return err
		}
	}

	r.state = Done
	return nil
}

func (r *Runner) module(ctx context.Context, sess *session.Session, st stages, course *types.Course, m *types.Module, log *logging.Logger) error {
	log = log.With("module", m.Title)
	fmt.Fprintf(r.out, "\n   Generating: %s...\n", m.Title)

	dir, err := r.store.EnsureModuleDir(course.Root, m.Title)
	if err != nil {
		return err
	}
	m.Dir = dir

	r.state = ModuleContentRequested
	if _, err := st.content.RunTurn(ctx, sess, LessonPrompt(m.Title, r.cfg.MinWords)); err != nil {
		return fmt.Errorf("content stage for %q: %w", m.Title, err)
	}
	if err := r.pause(ctx, pacing.BetweenStages); err != nil {
		return err
	}

	r.state = ModuleReviewRequested
	lesson, err := st.review.RunTurn(ctx, sess, ReviewPrompt())
	if err != nil {
		return fmt.Errorf("review stage for %q: %w", m.Title, err)
	}
	if err := r.save(ctx, m, types.LessonFile, lesson, log); err != nil {
		return err
	}
	if err := r.pause(ctx, pacing.BetweenStages); err != nil {
		return err
	}

	r.state = ModuleQuizRequested
	quiz, err := st.quiz.RunTurn(ctx, sess, QuizPrompt(m.Title, r.cfg.QuizQuestions))
	if err != nil {
		return fmt.Errorf("quiz stage for %q: %w", m.Title, err)
	}
	return r.save(ctx, m, types.QuizFile, quiz, log)
}

// save writes a stage result, skipping empty ones.
func (r *Runner) save(ctx context.Context, m *types.Module, name, content string, log *logging.Logger) error {
	if content == "" {
		log.Warn("stage produced no text, skipping artifact", "file", name)
		return nil
	}
	a, err := r.store.Write(ctx, m.Dir, name, content)
	if err != nil {
		return err
	}
	m.Artifacts = append(m.Artifacts, a)
	fmt.Fprintf(r.out, "      ├── %s\n", a.Name)
	return nil
}

func (r *Runner) pause(ctx context.Context, p pacing.Point) error {
	if err := r.pacer.Wait(ctx, p); err != nil {
		return fmt.Errorf("pausing %s: %w", p, err)
	}
	return nil
}

func (r *Runner) startHistory(ctx context.Context, res *Result, log *logging.Logger) {
	if r.history == nil {
		return
	}
	run := types.Run{
		ID:         res.RunID,
		SessionID:  res.Manifest.SessionID,
		Topic:      res.Course.Topic,
		Audience:   res.Course.Audience,
		Model:      res.Manifest.Model,
		CourseRoot: res.Course.Root,
		Status:     types.RunRunning,
		StartedAt:  res.Manifest.StartedAt,
	}
	if err := r.history.StartRun(ctx, run); err != nil {
		log.Warn("recording run start failed", "error", err)
	}
}

func (r *Runner) finishHistory(ctx context.Context, res *Result, runErr error, log *logging.Logger) {
	if r.history == nil {
		return
	}
	run := types.Run{
		ID:         res.RunID,
		Status:     types.RunSucceeded,
		Modules:    len(res.Course.Modules),
		Turns:      res.Manifest.Turns,
		FinishedAt: res.Manifest.FinishedAt,
	}
	if runErr != nil {
		run.Status = types.RunFailed
		run.Error = runErr.Error()
	}
	// The run context may already be cancelled; the record should still land.
	if err := r.history.FinishRun(context.WithoutCancel(ctx), run); err != nil {
		log.Warn("recording run finish failed", "error", err)
	}
}
