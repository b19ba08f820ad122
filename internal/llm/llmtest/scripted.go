// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llmtest provides a scripted llm.Model for tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/pdiddy/coursegen/internal/llm"
)

// Step is one scripted reply. Err takes precedence over Response.
type Step struct {
	Response llm.Response
	Err      error
}

// Text is a Step that answers with a single text part.
func Text(s string) Step {
	return Step{Response: llm.Response{Parts: []llm.Part{{Text: s}}, FinishReason: "STOP"}}
}

// Empty is a Step whose final response carries no text.
func Empty() Step {
	return Step{Response: llm.Response{FinishReason: "STOP"}}
}

// Call is a Step that requests a function call.
func Call(name string, args map[string]any) Step {
	return Step{Response: llm.Response{Parts: []llm.Part{{FunctionCall: &llm.FunctionCall{Name: name, Args: args}}}}}
}

// Fail is a Step that returns err.
func Fail(err error) Step {
	return Step{Err: err}
}

// Scripted replays Steps in order and records every request it receives.
// When the script is exhausted, Default is used if set, otherwise an error.
type Scripted struct {
	Steps   []Step
	Default *Step

	mu       sync.Mutex
	requests []llm.Request
}

// Name returns a fixed model name.
func (s *Scripted) Name() string { return "scripted" }

// Generate returns the next scripted step.
func (s *Scripted) Generate(_ context.Context, req llm.Request) (llm.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.requests)
	s.requests = append(s.requests, cloneRequest(req))

	var step Step
	switch {
	case n < len(s.Steps):
		step = s.Steps[n]
	case s.Default != nil:
		step = *s.Default
	default:
		return llm.Response{}, fmt.Errorf("scripted model: no step for call %d", n+1)
	}
	if step.Err != nil {
		return llm.Response{}, step.Err
	}
	return step.Response, nil
}

// Requests returns every request received so far.
func (s *Scripted) Requests() []llm.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]llm.Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Calls returns the number of Generate calls.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func cloneRequest(req llm.Request) llm.Request {
	out := req
	out.Contents = append([]llm.Content(nil), req.Contents...)
	out.Tools = append([]llm.FunctionDeclaration(nil), req.Tools...)
	return out
}
