// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RunStatus records how a generation run ended.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run is one row of the generation history. It is an audit record only;
// runs are never resumed from it.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	SessionID  string    `json:"session_id" yaml:"session_id"`
	Topic      string    `json:"topic" yaml:"topic"`
	Audience   string    `json:"audience" yaml:"audience"`
	Model      string    `json:"model" yaml:"model"`
	CourseRoot string    `json:"course_root" yaml:"course_root"`
	Status     RunStatus `json:"status" yaml:"status"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
	Modules    int       `json:"modules" yaml:"modules"`
	Turns      int       `json:"turns" yaml:"turns"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
}
