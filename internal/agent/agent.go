// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package agent defines the four stage personas that drive course
// generation. An agent is an instruction plus an optional capability; all
// agents of one run speak through the same session so later stages can
// refer to what earlier stages wrote.
package agent

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"github.com/pdiddy/coursegen/internal/research"
	"github.com/pdiddy/coursegen/internal/session"
)

// Agent names as they appear in the transcript.
const (
	CurriculumName = "curriculum_architect"
	ContentName    = "course_professor"
	ReviewName     = "course_reviewer"
	QuizName       = "quiz_master"
)

// Defaults for the templated instructions.
const (
	DefaultModules       = 5
	DefaultMinWords      = 500
	DefaultQuizQuestions = 5
)

// CapabilityKind tags which capability an agent carries.
type CapabilityKind int

const (
	// NoCapability agents only produce text.
	NoCapability CapabilityKind = iota
	// ResearchCapability agents may call the research tool.
	ResearchCapability
)

// String returns the kind name.
func (k CapabilityKind) String() string {
	switch k {
	case ResearchCapability:
		return "research"
	default:
		return "none"
	}
}

// Capability is a tagged variant. Research is set only when Kind is
// ResearchCapability.
type Capability struct {
	Kind     CapabilityKind
	Research *research.Capability
}

// Agent is one stage persona.
type Agent struct {
	Name        string
	Instruction string
	Capability  Capability
}

// Persona returns the session persona for this agent.
func (a *Agent) Persona() session.Persona {
	return session.Persona{Name: a.Name, Instruction: a.Instruction}
}

// Tools returns the tools offered to the model on this agent's turns.
func (a *Agent) Tools() []session.Tool {
	if a.Capability.Kind == ResearchCapability && a.Capability.Research != nil {
		return []session.Tool{a.Capability.Research}
	}
	return nil
}

// RunTurn submits prompt to sess as this agent and returns the final text.
// An empty string with a nil error means the model produced no text.
func (a *Agent) RunTurn(ctx context.Context, sess *session.Session, prompt string) (string, error) {
	return sess.Submit(ctx, a.Persona(), a.Tools(), prompt)
}

// Curriculum returns the syllabus designer. A nil rc yields an agent with
// no capability.
func Curriculum(moduleCount int, rc *research.Capability) *Agent {
	if moduleCount <= 0 {
		moduleCount = DefaultModules
	}
	a := &Agent{
		Name:        CurriculumName,
		Instruction: mustRender(curriculumTmpl, map[string]any{"Modules": moduleCount, "Tool": research.ToolName}),
	}
	if rc != nil {
		a.Capability = Capability{Kind: ResearchCapability, Research: rc}
	}
	return a
}

// Content returns the lesson writer.
func Content(minWords int) *Agent {
	if minWords <= 0 {
		minWords = DefaultMinWords
	}
	return &Agent{
		Name:        ContentName,
		Instruction: mustRender(contentTmpl, map[string]any{"MinWords": minWords}),
	}
}

// Review returns the editor that polishes the preceding lesson.
func Review() *Agent {
	return &Agent{Name: ReviewName, Instruction: mustRender(reviewTmpl, nil)}
}

// Quiz returns the assessment writer.
func Quiz(questions int) *Agent {
	if questions <= 0 {
		questions = DefaultQuizQuestions
	}
	return &Agent{
		Name:        QuizName,
		Instruction: mustRender(quizTmpl, map[string]any{"Questions": questions}),
	}
}

func mustRender(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		panic(fmt.Sprintf("rendering %s instruction: %v", t.Name(), err))
	}
	return buf.String()
}
