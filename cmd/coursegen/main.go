// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the coursegen CLI.
// Subcommands: generate (build a course), history (list past runs),
// preview (render generated Markdown), version.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/coursegen/internal/config"
	"github.com/pdiddy/coursegen/internal/logging"
	"github.com/pdiddy/coursegen/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// Loaded in PersistentPreRunE and shared by every subcommand.
var (
	settings config.Settings
	logger   = logging.NewNop()
)

// rootCmd is the base command for the coursegen CLI.
var rootCmd = &cobra.Command{
	Use:   "coursegen",
	Short: "Generate multi-module courses with a language model",
	Long: `coursegen turns a topic into a complete course: a syllabus, then a
reviewed lesson and a quiz for every module, written as Markdown files under
course_outputs/<Topic>/.

The Google API key is read from GOOGLE_API_KEY, a local .env file, or
.secrets/google-api-key.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := viper.GetViper()
		if err := config.ReadDotEnv(v, config.DotEnvFile); err != nil {
			return err
		}

		s, err := secrets.Load(secrets.DefaultDir, nil)
		if err != nil {
			return err
		}
		config.ApplySecrets(v, s)

		settings, err = config.Load(v)
		if err != nil {
			return err
		}
		settings.Course.AI.UserAgent = "coursegen/" + version
		settings.Course.Research.UserAgent = "coursegen/" + version

		logger, err = logging.New(settings.LogMode, settings.LogLevel)
		if err != nil {
			return err
		}
		if keys := s.Keys(); len(keys) > 0 {
			logger.Debug("loaded secrets", "keys", keys)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./coursegen.yaml or ~/.config/coursegen/coursegen.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	used, err := config.Init(viper.GetViper(), cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
		return
	}
	if used != "" {
		fmt.Fprintln(os.Stderr, "Using config file:", used)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
