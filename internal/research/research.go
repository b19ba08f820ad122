// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research gives the curriculum stage a web-search tool. The
// Capability never fails from the caller's point of view: every error is
// turned into a readable string that the model sees as the tool result.
package research

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/coursegen/internal/llm"
	"github.com/pdiddy/coursegen/internal/logging"
	"github.com/pdiddy/coursegen/pkg/types"
)

const (
	// ToolName is the function name the model calls.
	ToolName = "perform_research"

	// DefaultMaxResults is the number of snippets returned per query.
	DefaultMaxResults = 3

	// ErrorPrefix starts every failure string handed back to the model.
	ErrorPrefix = "Search Error: "

	// NoResults is returned when the provider found nothing.
	NoResults = "No results found."
)

// Searcher queries one search provider.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]types.ResearchResult, error)
}

// Cache stores formatted results by key.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Capability is the research tool bound to the curriculum stage.
type Capability struct {
	searcher   Searcher
	cache      Cache
	ttl        time.Duration
	maxResults int
	log        *logging.Logger
}

// Option configures a Capability.
type Option func(*Capability)

// WithCache stores successful lookups in c for ttl.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(cp *Capability) {
		cp.cache = c
		cp.ttl = ttl
	}
}

// WithLogger sets the capability logger.
func WithLogger(l *logging.Logger) Option {
	return func(cp *Capability) { cp.log = l }
}

// WithMaxResults sets the default result count.
func WithMaxResults(n int) Option {
	return func(cp *Capability) {
		if n > 0 {
			cp.maxResults = n
		}
	}
}

// New wraps a searcher as a model tool.
func New(s Searcher, opts ...Option) *Capability {
	c := &Capability{
		searcher:   s,
		maxResults: DefaultMaxResults,
		ttl:        24 * time.Hour,
		log:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Perform runs one search and formats the results for the model.
// It never returns an error and never panics past its boundary.
func (c *Capability) Perform(ctx context.Context, query string, maxResults int) (out string) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error("search panicked", "query", query, "panic", r)
			out = fmt.Sprintf("%s%v", ErrorPrefix, r)
		}
	}()

	if maxResults <= 0 {
		maxResults = c.maxResults
	}
	query = strings.TrimSpace(query)
	c.log.Info("researching", "query", query, "provider", c.searcher.Name())
	if query == "" {
		return ErrorPrefix + "empty query"
	}

	key := c.cacheKey(query, maxResults)
	if c.cache != nil {
		if cached, ok, err := c.cache.Get(ctx, key); err != nil {
			c.log.Warn("research cache read failed", "error", err)
		} else if ok {
			c.log.Debug("research cache hit", "query", query)
			return cached
		}
	}

	results, err := c.searcher.Search(ctx, query, maxResults)
	if err != nil {
		c.log.Error("search failed", "query", query, "error", err)
		return ErrorPrefix + err.Error()
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	out = Format(results)
	if c.cache != nil && len(results) > 0 {
		if err := c.cache.Set(ctx, key, out, c.ttl); err != nil {
			c.log.Warn("research cache write failed", "error", err)
		}
	}
	return out
}

// Declaration describes the tool to the model.
func (c *Capability) Declaration() llm.FunctionDeclaration {
	return llm.FunctionDeclaration{
		Name:        ToolName,
		Description: "Performs a real web search to find the latest information on a topic. Returns titled, linked summaries.",
		Parameters: &llm.Schema{
			Type: "OBJECT",
			Properties: map[string]*llm.Schema{
				"query":       {Type: "STRING", Description: "The search query."},
				"max_results": {Type: "INTEGER", Description: "Maximum number of results (default 3)."},
			},
			Required: []string{"query"},
		},
	}
}

// Invoke adapts a model function call to Perform.
func (c *Capability) Invoke(ctx context.Context, args map[string]any) string {
	query, _ := args["query"].(string)
	return c.Perform(ctx, query, intArg(args["max_results"]))
}

// Format renders results as numbered source blocks.
func Format(results []types.ResearchResult) string {
	if len(results) == 0 {
		return NoResults
	}
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "\n--- Source %d ---\n", i+1)
		fmt.Fprintf(&b, "Title: %s\n", r.Title)
		fmt.Fprintf(&b, "URL: %s\n", r.URL)
		fmt.Fprintf(&b, "Summary: %s\n", r.Summary)
	}
	return b.String()
}

func (c *Capability) cacheKey(query string, maxResults int) string {
	sum := sha256.Sum256([]byte(strings.ToLower(query)))
	return fmt.Sprintf("coursegen:research:%s:%d:%x", c.searcher.Name(), maxResults, sum[:8])
}

// intArg accepts the number types a JSON decoder may produce.
func intArg(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	default:
		return 0
	}
}
