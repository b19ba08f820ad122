// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "coursegen/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// AIConfig holds settings for the generative model backend.
type AIConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Model is the model identifier (e.g. "gemini-2.0-flash-lite").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the model API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the API endpoint root.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// MaxRetries is the number of retries on HTTP 429 responses (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// MaxToolRounds bounds the function-call loop inside a single turn (default 4).
	MaxToolRounds int `json:"max_tool_rounds" yaml:"max_tool_rounds" mapstructure:"max_tool_rounds"`
}

// PacingMode selects the backpressure strategy between model calls.
type PacingMode string

const (
	PacingFixed       PacingMode = "fixed"
	PacingTokenBucket PacingMode = "token_bucket"
)

// PacingConfig holds the delays applied between stages.
type PacingConfig struct {
	// Mode selects fixed delays or a token bucket limiter.
	Mode PacingMode `json:"mode" yaml:"mode" mapstructure:"mode"`

	// SyllabusDelay is the pause after the syllabus stage (default 10s).
	SyllabusDelay time.Duration `json:"syllabus_delay" yaml:"syllabus_delay" mapstructure:"syllabus_delay"`

	// StageDelay is the pause between stages of one module (default 10s).
	StageDelay time.Duration `json:"stage_delay" yaml:"stage_delay" mapstructure:"stage_delay"`

	// ModuleCooldown is the pause before the next module (default 30s).
	ModuleCooldown time.Duration `json:"module_cooldown" yaml:"module_cooldown" mapstructure:"module_cooldown"`

	// RequestsPerMinute sets the token bucket rate (default 6).
	RequestsPerMinute float64 `json:"rpm" yaml:"rpm" mapstructure:"rpm"`
}

// ResearchConfig holds settings for the research capability.
type ResearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Provider selects the search backend: duckduckgo or arxiv.
	Provider string `json:"provider" yaml:"provider" mapstructure:"provider"`

	// MaxResults is the default number of snippets per query (default 3).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// RedisURL enables the result cache when set (e.g. "redis://localhost:6379/0").
	RedisURL string `json:"redis_url,omitempty" yaml:"redis_url,omitempty" mapstructure:"redis_url"`

	// CacheTTL is how long cached results stay valid (default 24h).
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// CourseConfig holds everything one generation run needs.
type CourseConfig struct {
	AI       AIConfig       `json:"ai" yaml:"ai" mapstructure:"ai"`
	Pacing   PacingConfig   `json:"pacing" yaml:"pacing" mapstructure:"pacing"`
	Research ResearchConfig `json:"research" yaml:"research" mapstructure:"research"`

	// OutputDir is the base directory for all courses (default "course_outputs").
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// Modules is the number of modules requested from the curriculum stage (default 5).
	Modules int `json:"modules" yaml:"modules" mapstructure:"modules"`

	// MinWords is the minimum lesson length requested from the content stage (default 500).
	MinWords int `json:"min_words" yaml:"min_words" mapstructure:"min_words"`

	// QuizQuestions is the number of quiz questions per module (default 5).
	QuizQuestions int `json:"quiz_questions" yaml:"quiz_questions" mapstructure:"quiz_questions"`

	// HistoryDB is the SQLite run history path. Empty disables history.
	HistoryDB string `json:"history_db" yaml:"history_db" mapstructure:"history_db"`

	// GCSBucket mirrors artifacts to Google Cloud Storage when set.
	GCSBucket string `json:"gcs_bucket,omitempty" yaml:"gcs_bucket,omitempty" mapstructure:"gcs_bucket"`
}
