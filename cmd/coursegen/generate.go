// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/pdiddy/coursegen/internal/artifact"
	"github.com/pdiddy/coursegen/internal/llm"
	"github.com/pdiddy/coursegen/internal/pacing"
	"github.com/pdiddy/coursegen/internal/pipeline"
	"github.com/pdiddy/coursegen/internal/research"
	"github.com/pdiddy/coursegen/internal/runlog"
	"github.com/pdiddy/coursegen/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a course for a topic",
	Long: `Generate asks for a course topic and a target audience, then drives the
model through the syllabus and, for every module, a lesson, a review pass, and
a quiz. Output goes to <output-dir>/<Topic>/.

Stages are paced to stay under the model's rate limit (10s between stages,
30s between modules by default). Interrupting the command stops the run at the
next stage or pause; files already written are kept.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("topic", "", "course topic (prompted when empty)")
	generateCmd.Flags().String("audience", "", "target audience (prompted when empty)")
	generateCmd.Flags().Int("modules", 0, "number of modules to request (default 5)")
	generateCmd.Flags().String("model", "", "Gemini model identifier")
	generateCmd.Flags().String("output-dir", "", "base directory for courses (default course_outputs)")
	generateCmd.Flags().String("pacing", "", "pacing mode: fixed or token_bucket")
	generateCmd.Flags().Bool("no-history", false, "do not record the run in the history database")

	_ = viper.BindPFlag("modules", generateCmd.Flags().Lookup("modules"))
	_ = viper.BindPFlag("model", generateCmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("output_dir", generateCmd.Flags().Lookup("output-dir"))
	_ = viper.BindPFlag("pacing.mode", generateCmd.Flags().Lookup("pacing"))

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	cfg := settings.Course

	topic, _ := cmd.Flags().GetString("topic")
	audience, _ := cmd.Flags().GetString("audience")
	if audience == "" {
		audience = settings.Audience
	}

	fmt.Fprintln(os.Stdout, "\n=== AI COURSE CREATOR ===")
	in := bufio.NewReader(os.Stdin)
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	var err error
	if topic == "" {
		if topic, err = ask(in, os.Stdout, "Enter Course Topic: ", interactive); err != nil {
			return err
		}
	}
	if audience == "" {
		if audience, err = ask(in, os.Stdout, "Enter Target Audience: ", interactive); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pacer, err := pacing.New(cfg.Pacing)
	if err != nil {
		return err
	}

	storeOpts := []artifact.Option{artifact.WithLogger(logger)}
	if cfg.GCSBucket != "" {
		mirror, err := artifact.NewGCSMirror(ctx, cfg.GCSBucket, "")
		if err != nil {
			return err
		}
		defer mirror.Close()
		storeOpts = append(storeOpts, artifact.WithMirror(mirror))
	}
	store := artifact.NewStore(cfg.OutputDir, storeOpts...)

	rc, closeResearch, err := buildResearch(cfg.Research)
	if err != nil {
		return err
	}
	defer closeResearch()

	opts := []pipeline.Option{
		pipeline.WithResearch(rc),
		pipeline.WithOutput(os.Stdout),
		pipeline.WithLogger(logger),
	}
	if noHistory, _ := cmd.Flags().GetBool("no-history"); !noHistory && cfg.HistoryDB != "" {
		hist, err := runlog.Open(cfg.HistoryDB)
		if err != nil {
			return err
		}
		defer hist.Close()
		opts = append(opts, pipeline.WithHistory(hist))
	}

	model := llm.NewGemini(cfg.AI, logger)
	runner := pipeline.New(cfg, model, store, pacer, opts...)

	_, err = runner.Run(ctx, topic, audience)
	if errors.Is(err, pipeline.ErrEmptyTopic) {
		fmt.Fprintln(os.Stdout, "No topic entered; nothing to generate.")
		return nil
	}
	return err
}

// buildResearch wires the configured searcher and the optional Redis cache.
func buildResearch(cfg types.ResearchConfig) (*research.Capability, func(), error) {
	searcher, err := research.NewSearcher(cfg)
	if err != nil {
		return nil, nil, err
	}
	opts := []research.Option{
		research.WithLogger(logger),
		research.WithMaxResults(cfg.MaxResults),
	}
	closer := func() {}
	if cfg.RedisURL != "" {
		cache, err := research.NewRedisCache(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, research.WithCache(cache, cfg.CacheTTL))
		closer = func() { cache.Close() }
	}
	return research.New(searcher, opts...), closer, nil
}

// ask prints prompt and reads one line. When stdin is not a terminal the
// prompt is still printed so piped input lines up with the questions.
func ask(in *bufio.Reader, out io.Writer, prompt string, interactive bool) (string, error) {
	fmt.Fprint(out, prompt)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading input: %w", err)
	}
	if !interactive {
		fmt.Fprintln(out)
	}
	return strings.TrimSpace(line), nil
}
