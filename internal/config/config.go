// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config assembles run settings from a YAML config file, the
// environment, a local .env file and the .secrets/ directory.
//
// Precedence, highest first: explicit Set calls (CLI flags), COURSEGEN_*
// environment variables, the config file, .env, .secrets/, defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/coursegen/internal/llm"
	"github.com/pdiddy/coursegen/internal/secrets"
	"github.com/pdiddy/coursegen/pkg/types"
)

// ErrMissingAPIKey means no Google API key was found in any source.
var ErrMissingAPIKey = errors.New("missing Google API key: set GOOGLE_API_KEY, add it to .env, or write .secrets/google-api-key")

const (
	// EnvPrefix prefixes every environment override (COURSEGEN_MODULES, ...).
	EnvPrefix = "COURSEGEN"

	// ConfigName is the config file base name searched in . and ~/.config/coursegen.
	ConfigName = "coursegen"

	// DotEnvFile is read from the working directory when present.
	DotEnvFile = ".env"

	// DefaultHistoryDB is the run history location.
	DefaultHistoryDB = "course_outputs/.history/coursegen.db"
)

// Settings is everything the CLI needs for one invocation.
type Settings struct {
	Course   types.CourseConfig
	Audience string
	LogMode  string
	LogLevel string
}

// Validate checks the settings required to call the model.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.Course.AI.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("model", llm.DefaultModel)
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", "")
	v.SetDefault("output_dir", "course_outputs")
	v.SetDefault("modules", 5)
	v.SetDefault("min_words", 500)
	v.SetDefault("quiz_questions", 5)
	v.SetDefault("audience", "")

	v.SetDefault("ai.max_retries", 5)
	v.SetDefault("ai.timeout", 180*time.Second)
	v.SetDefault("ai.max_tool_rounds", 4)

	v.SetDefault("pacing.mode", string(types.PacingFixed))
	v.SetDefault("pacing.syllabus_delay", 10*time.Second)
	v.SetDefault("pacing.stage_delay", 10*time.Second)
	v.SetDefault("pacing.module_cooldown", 30*time.Second)
	v.SetDefault("pacing.rpm", 6.0)

	v.SetDefault("research.provider", "duckduckgo")
	v.SetDefault("research.max_results", 3)
	v.SetDefault("research.redis_url", "")
	v.SetDefault("research.cache_ttl", 24*time.Hour)
	v.SetDefault("research.timeout", 30*time.Second)

	v.SetDefault("history.db", DefaultHistoryDB)
	v.SetDefault("storage.gcs_bucket", "")

	v.SetDefault("log.mode", "dev")
	v.SetDefault("log.level", "info")
}

// Init wires config file lookup and environment binding into v and reads
// the config file if one exists. It returns the file used, or "".
func Init(v *viper.Viper, cfgFile string) (string, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", ConfigName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api_key", EnvPrefix+"_API_KEY", "GOOGLE_API_KEY"); err != nil {
		return "", fmt.Errorf("binding api key env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// dotEnvKeys maps .env variable names (lowercased by viper) to config keys.
var dotEnvKeys = map[string]string{
	"google_api_key": "api_key",
	"model_name":     "model",
	"redis_url":      "research.redis_url",
}

// ReadDotEnv loads path as a dotenv file and installs the recognized
// variables as defaults, below the environment and the config file.
// A missing file is not an error.
func ReadDotEnv(v *viper.Viper, path string) error {
	dv := viper.New()
	dv.SetConfigFile(path)
	dv.SetConfigType("env")
	if err := dv.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	for envKey, key := range dotEnvKeys {
		if val := dv.GetString(envKey); val != "" {
			v.SetDefault(key, val)
		}
	}
	return nil
}

// ApplySecrets installs secret files as defaults. Values already set by
// .env take precedence.
func ApplySecrets(v *viper.Viper, s secrets.Secrets) {
	applyDefault := func(key, val string) {
		if val != "" && v.GetString(key) == "" {
			v.SetDefault(key, val)
		}
	}
	applyDefault("api_key", s.Get(secrets.GoogleAPIKey))
	applyDefault("research.redis_url", s.Get(secrets.RedisURL))
}

// Load reads the effective settings from v.
func Load(v *viper.Viper) (Settings, error) {
	mode := types.PacingMode(v.GetString("pacing.mode"))
	switch mode {
	case types.PacingFixed, types.PacingTokenBucket:
	default:
		return Settings{}, fmt.Errorf("pacing.mode %q: want %q or %q", mode, types.PacingFixed, types.PacingTokenBucket)
	}
	modules := v.GetInt("modules")
	if modules <= 0 {
		return Settings{}, fmt.Errorf("modules must be positive, got %d", modules)
	}

	return Settings{
		Course: types.CourseConfig{
			AI: types.AIConfig{
				HTTPConfig:    types.HTTPConfig{Timeout: v.GetDuration("ai.timeout")},
				Model:         v.GetString("model"),
				APIKey:        strings.TrimSpace(v.GetString("api_key")),
				BaseURL:       v.GetString("base_url"),
				MaxRetries:    v.GetInt("ai.max_retries"),
				MaxToolRounds: v.GetInt("ai.max_tool_rounds"),
			},
			Pacing: types.PacingConfig{
				Mode:              mode,
				SyllabusDelay:     v.GetDuration("pacing.syllabus_delay"),
				StageDelay:        v.GetDuration("pacing.stage_delay"),
				ModuleCooldown:    v.GetDuration("pacing.module_cooldown"),
				RequestsPerMinute: v.GetFloat64("pacing.rpm"),
			},
			Research: types.ResearchConfig{
				HTTPConfig: types.HTTPConfig{Timeout: v.GetDuration("research.timeout")},
				Provider:   v.GetString("research.provider"),
				MaxResults: v.GetInt("research.max_results"),
				RedisURL:   v.GetString("research.redis_url"),
				CacheTTL:   v.GetDuration("research.cache_ttl"),
			},
			OutputDir:     v.GetString("output_dir"),
			Modules:       modules,
			MinWords:      v.GetInt("min_words"),
			QuizQuestions: v.GetInt("quiz_questions"),
			HistoryDB:     v.GetString("history.db"),
			GCSBucket:     v.GetString("storage.gcs_bucket"),
		},
		Audience: v.GetString("audience"),
		LogMode:  v.GetString("log.mode"),
		LogLevel: v.GetString("log.level"),
	}, nil
}
