// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm abstracts the generative model behind a single request/response
// call. A Request carries the persona instruction, the whole transcript and
// the tools the model may call; a Response is the model's next turn.
package llm

import "context"

// Role names used on the wire.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Model generates the next turn of a conversation.
type Model interface {
	Name() string
	Generate(ctx context.Context, req Request) (Response, error)
}

// Request is one generation call.
type Request struct {
	// SystemInstruction is the persona text. It is not part of the transcript.
	SystemInstruction string

	// Contents is the full transcript in chronological order.
	Contents []Content

	// Tools lists the functions the model may call this turn.
	Tools []FunctionDeclaration
}

// Content is one role-tagged turn.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is a single piece of a turn: text, a function call, or a function result.
type Part struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *FunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *FunctionResponse `json:"functionResponse,omitempty"`
}

// FunctionCall is a tool invocation requested by the model.
type FunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// FunctionResponse carries a tool's output back to the model.
type FunctionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// FunctionDeclaration describes a callable tool.
type FunctionDeclaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Parameters  *Schema `json:"parameters,omitempty"`
}

// Schema is the subset of OpenAPI schema the model API accepts.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
}

// Response is the model's next turn.
type Response struct {
	Parts        []Part
	FinishReason string
}

// Text returns the first text part, or "" when there is none.
func (r Response) Text() string {
	for _, p := range r.Parts {
		if p.Text != "" {
			return p.Text
		}
	}
	return ""
}

// FunctionCalls returns every function call in the response, in order.
func (r Response) FunctionCalls() []FunctionCall {
	var calls []FunctionCall
	for _, p := range r.Parts {
		if p.FunctionCall != nil {
			calls = append(calls, *p.FunctionCall)
		}
	}
	return calls
}
