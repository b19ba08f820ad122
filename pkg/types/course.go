// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the coursegen pipeline.
// Implements: course data model (Course, Module, Artifact, Manifest),
//
//	conversational transcript (Message, Role),
//	research snippets (ResearchResult).
package types

import "time"

// Fixed artifact names written by the pipeline.
const (
	OverviewFile = "Syllabus_Overview.md"
	LessonFile   = "lesson.md"
	QuizFile     = "quiz.md"
	ManifestFile = "course.yaml"
)

// Course is one generated course. It is created once per run and its module
// list is fixed after the syllabus stage.
type Course struct {
	// Topic is the raw topic string supplied by the user.
	Topic string `json:"topic" yaml:"topic"`

	// Audience describes who the course is written for.
	Audience string `json:"audience" yaml:"audience"`

	// Name is the sanitized topic used as the course root directory name.
	Name string `json:"name" yaml:"name"`

	// Root is the course root directory (e.g. "course_outputs/Python_Basics").
	Root string `json:"root" yaml:"root"`

	// Modules lists the parsed modules in syllabus order.
	Modules []Module `json:"modules" yaml:"modules"`
}

// Module is one unit of the course. Title never changes after parsing.
type Module struct {
	// Index is the zero-based position in the syllabus.
	Index int `json:"index" yaml:"index"`

	// Title is the module header as parsed from the syllabus.
	Title string `json:"title" yaml:"title"`

	// Dir is the module directory path.
	Dir string `json:"dir" yaml:"dir"`

	// Artifacts lists the files written for this module.
	Artifacts []Artifact `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
}

// Artifact is one file materialized from a stage result.
type Artifact struct {
	Name  string `json:"name" yaml:"name"`
	Path  string `json:"path" yaml:"path"`
	Bytes int    `json:"bytes" yaml:"bytes"`
}

// Manifest summarizes one run and is written as course.yaml at the course root.
type Manifest struct {
	Topic      string    `json:"topic" yaml:"topic"`
	Audience   string    `json:"audience" yaml:"audience"`
	SessionID  string    `json:"session_id" yaml:"session_id"`
	Model      string    `json:"model" yaml:"model"`
	Overview   Artifact  `json:"overview" yaml:"overview"`
	Modules    []Module  `json:"modules" yaml:"modules"`
	Fallback   bool      `json:"fallback" yaml:"fallback"`
	Turns      int       `json:"turns" yaml:"turns"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
}
