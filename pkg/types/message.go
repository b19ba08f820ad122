// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Role tags a transcript turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
	RoleTool  Role = "tool"
)

// ToolCall is a function call requested by the model.
type ToolCall struct {
	Name string         `json:"name" yaml:"name"`
	Args map[string]any `json:"args,omitempty" yaml:"args,omitempty"`
}

// ToolResult is the output of a tool invocation handed back to the model.
type ToolResult struct {
	Name   string `json:"name" yaml:"name"`
	Output string `json:"output" yaml:"output"`
}

// Message is one turn of the shared conversational transcript.
type Message struct {
	// Role is who produced the turn.
	Role Role `json:"role" yaml:"role"`

	// Agent is the persona that was active when the turn was appended.
	Agent string `json:"agent,omitempty" yaml:"agent,omitempty"`

	// Text is the turn's text payload. Empty for pure tool-call turns.
	Text string `json:"text" yaml:"text"`

	// ToolCall is set on model turns that request a function call.
	ToolCall *ToolCall `json:"tool_call,omitempty" yaml:"tool_call,omitempty"`

	// ToolResult is set on tool turns.
	ToolResult *ToolResult `json:"tool_result,omitempty" yaml:"tool_result,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
