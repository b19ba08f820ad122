// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session holds the shared, append-only transcript of one course
// generation run. Every stage submits its turn through the same Session, so
// later stages see everything earlier stages said.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/coursegen/internal/llm"
	"github.com/pdiddy/coursegen/internal/logging"
	"github.com/pdiddy/coursegen/pkg/types"
)

// DefaultMaxToolRounds bounds the function-call loop within one turn.
const DefaultMaxToolRounds = 4

// Persona is the fixed instruction a stage speaks with.
type Persona struct {
	Name        string
	Instruction string
}

// Tool is a capability the model may call during a turn.
type Tool interface {
	Declaration() llm.FunctionDeclaration
	Invoke(ctx context.Context, args map[string]any) string
}

// Recorder observes every message appended to a session.
type Recorder interface {
	Record(ctx context.Context, sessionID string, seq int, msg types.Message) error
}

// Session is one run's transcript bound to a model.
type Session struct {
	id        string
	runID     string
	userID    string
	model     llm.Model
	messages  []types.Message
	maxRounds int
	recorder  Recorder
	log       *logging.Logger
	now       func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithRecorder forwards appended messages to r.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// WithLogger sets the session logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithMaxToolRounds overrides DefaultMaxToolRounds.
func WithMaxToolRounds(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxRounds = n
		}
	}
}

// New creates an empty transcript with a fresh id, scoped to (runID, userID).
func New(runID, userID string, model llm.Model, opts ...Option) *Session {
	s := &Session{
		id:        uuid.NewString(),
		runID:     runID,
		userID:    userID,
		model:     model,
		maxRounds: DefaultMaxToolRounds,
		log:       logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("session", s.id)
	return s
}

func (s *Session) ID() string     { return s.id }
func (s *Session) RunID() string  { return s.runID }
func (s *Session) UserID() string { return s.userID }
func (s *Session) Len() int       { return len(s.messages) }

// Messages returns a copy of the transcript.
func (s *Session) Messages() []types.Message {
	out := make([]types.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Submit appends text as a user turn and runs the model until it produces a
// response without function calls. That final response's first text part is
// appended and returned. A final response without text yields "" and no error.
// Model errors are wrapped with the persona name; the transcript keeps what
// was appended.
func (s *Session) Submit(ctx context.Context, persona Persona, tools []Tool, text string) (string, error) {
	s.append(ctx, types.Message{Role: types.RoleUser, Agent: persona.Name, Text: text})

	byName := make(map[string]Tool, len(tools))
	var decls []llm.FunctionDeclaration
	for _, t := range tools {
		d := t.Declaration()
		byName[d.Name] = t
		decls = append(decls, d)
	}

	for round := 0; ; round++ {
		req := llm.Request{
			SystemInstruction: persona.Instruction,
			Contents:          toContents(s.messages),
		}
		// On the last permitted round the tools are withheld so the model must answer.
		if round < s.maxRounds {
			req.Tools = decls
		}

		resp, err := s.model.Generate(ctx, req)
		if err != nil {
			return "", fmt.Errorf("%s turn: %w", persona.Name, err)
		}

		calls := resp.FunctionCalls()
		if len(calls) == 0 || round >= s.maxRounds {
			final := resp.Text()
			if final == "" {
				s.log.Warn("final response carried no text", "agent", persona.Name, "finish_reason", resp.FinishReason)
				return "", nil
			}
			s.append(ctx, types.Message{Role: types.RoleModel, Agent: persona.Name, Text: final})
			return final, nil
		}

		for _, call := range calls {
			s.append(ctx, types.Message{
				Role:     types.RoleModel,
				Agent:    persona.Name,
				ToolCall: &types.ToolCall{Name: call.Name, Args: call.Args},
			})
			output := s.invoke(ctx, byName, call)
			s.append(ctx, types.Message{
				Role:       types.RoleTool,
				Agent:      persona.Name,
				ToolResult: &types.ToolResult{Name: call.Name, Output: output},
			})
		}
	}
}

func (s *Session) invoke(ctx context.Context, tools map[string]Tool, call llm.FunctionCall) string {
	t, ok := tools[call.Name]
	if !ok {
		s.log.Warn("model called an unbound tool", "tool", call.Name)
		return fmt.Sprintf("Error: tool %q is not available", call.Name)
	}
	s.log.Info("tool call", "tool", call.Name)
	return t.Invoke(ctx, call.Args)
}

// append adds msg to the transcript. A recorder failure is logged only:
// the history is an audit trail, not part of the run.
func (s *Session) append(ctx context.Context, msg types.Message) {
	msg.CreatedAt = s.now()
	s.messages = append(s.messages, msg)
	if s.recorder != nil {
		if err := s.recorder.Record(ctx, s.id, len(s.messages)-1, msg); err != nil {
			s.log.Warn("recording message failed", "error", err)
		}
	}
}

// toContents maps the transcript onto the model's wire roles. Tool results
// travel back as user-role function responses.
func toContents(msgs []types.Message) []llm.Content {
	contents := make([]llm.Content, 0, len(msgs))
	for _, m := range msgs {
		switch {
		case m.ToolCall != nil:
			contents = append(contents, llm.Content{
				Role:  llm.RoleModel,
				Parts: []llm.Part{{FunctionCall: &llm.FunctionCall{Name: m.ToolCall.Name, Args: m.ToolCall.Args}}},
			})
		case m.ToolResult != nil:
			contents = append(contents, llm.Content{
				Role: llm.RoleUser,
				Parts: []llm.Part{{FunctionResponse: &llm.FunctionResponse{
					Name:     m.ToolResult.Name,
					Response: map[string]any{"result": m.ToolResult.Output},
				}}},
			})
		case m.Role == types.RoleModel:
			contents = append(contents, llm.Content{Role: llm.RoleModel, Parts: []llm.Part{{Text: m.Text}}})
		default:
			contents = append(contents, llm.Content{Role: llm.RoleUser, Parts: []llm.Part{{Text: m.Text}}})
		}
	}
	return contents
}
