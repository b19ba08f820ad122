// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/coursegen/internal/httputil"
	"github.com/pdiddy/coursegen/internal/logging"
	"github.com/pdiddy/coursegen/pkg/types"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-2.0-flash-lite"

// geminiAPIBase is the Generative Language API root. Package-level var for
// test substitution.
var geminiAPIBase = "https://generativelanguage.googleapis.com/v1beta"

// GeminiBackend calls the Gemini generateContent endpoint.
type GeminiBackend struct {
	APIKey     string
	Model      string
	BaseURL    string
	MaxRetries int
	UserAgent  string
	Client     *http.Client
	Log        *logging.Logger
}

// NewGemini builds a backend from configuration.
func NewGemini(cfg types.AIConfig, log *logging.Logger) *GeminiBackend {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	if log == nil {
		log = logging.NewNop()
	}
	return &GeminiBackend{
		APIKey:     cfg.APIKey,
		Model:      model,
		BaseURL:    cfg.BaseURL,
		MaxRetries: cfg.MaxRetries,
		UserAgent:  cfg.UserAgent,
		Client:     &http.Client{Timeout: timeout},
		Log:        log.With("service", "gemini", "model", model),
	}
}

// Name returns the model identifier.
func (g *GeminiBackend) Name() string { return g.Model }

// geminiRequest is the request body for generateContent.
type geminiRequest struct {
	SystemInstruction *Content     `json:"systemInstruction,omitempty"`
	Contents          []Content    `json:"contents"`
	Tools             []geminiTool `json:"tools,omitempty"`
}

type geminiTool struct {
	FunctionDeclarations []FunctionDeclaration `json:"functionDeclarations"`
}

// geminiResponse is the response body from generateContent.
type geminiResponse struct {
	Candidates     []geminiCandidate `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

type geminiCandidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

// Generate sends one generateContent call. HTTP 429 responses are retried
// with backoff; other failures are returned. A response with no candidates
// is not an error: it yields an empty Response.
func (g *GeminiBackend) Generate(ctx context.Context, req Request) (Response, error) {
	body := geminiRequest{Contents: req.Contents}
	if req.SystemInstruction != "" {
		body.SystemInstruction = &Content{Parts: []Part{{Text: req.SystemInstruction}}}
	}
	if len(req.Tools) > 0 {
		body.Tools = []geminiTool{{FunctionDeclarations: req.Tools}}
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return Response{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), bytes.NewReader(bodyBytes))
	if err != nil {
		return Response{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.APIKey)
	if g.UserAgent != "" {
		httpReq.Header.Set("User-Agent", g.UserAgent)
	}

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, httpReq, g.MaxRetries, func(attempt int, wait time.Duration) {
		g.logger().Warn("rate limited, backing off", "attempt", attempt, "wait", wait)
	})
	if err != nil {
		return Response{}, fmt.Errorf("calling Gemini API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Response{}, fmt.Errorf("Gemini API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var gResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return Response{}, fmt.Errorf("decoding Gemini response: %w", err)
	}

	if len(gResp.Candidates) == 0 {
		out := Response{}
		if gResp.PromptFeedback != nil {
			out.FinishReason = gResp.PromptFeedback.BlockReason
		}
		g.logger().Warn("response has no candidates", "reason", out.FinishReason)
		return out, nil
	}

	c := gResp.Candidates[0]
	return Response{Parts: c.Content.Parts, FinishReason: c.FinishReason}, nil
}

func (g *GeminiBackend) endpoint() string {
	base := g.BaseURL
	if base == "" {
		base = geminiAPIBase
	}
	return fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(base, "/"), g.Model)
}

func (g *GeminiBackend) logger() *logging.Logger {
	if g.Log == nil {
		return logging.NewNop()
	}
	return g.Log
}
