// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/coursegen/internal/httputil"
	"github.com/pdiddy/coursegen/pkg/types"
)

// duckDuckGoAPIBase is the Instant Answer endpoint. Declared as a var so
// tests can substitute an httptest server.
var duckDuckGoAPIBase = "https://api.duckduckgo.com/"

// DuckDuckGoSearcher queries the DuckDuckGo Instant Answer API.
type DuckDuckGoSearcher struct {
	Client    *http.Client
	UserAgent string
}

// Name returns the provider identifier.
func (d *DuckDuckGoSearcher) Name() string { return "duckduckgo" }

// Search returns the abstract, direct results and related topics for query.
func (d *DuckDuckGoSearcher) Search(ctx context.Context, query string, maxResults int) ([]types.ResearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, duckDuckGoAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if d.UserAgent != "" {
		req.Header.Set("User-Agent", d.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, d.client(), req, 2, nil)
	if err != nil {
		return nil, fmt.Errorf("DuckDuckGo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DuckDuckGo returned HTTP %d", resp.StatusCode)
	}

	var ia ddgResponse
	if err := json.NewDecoder(resp.Body).Decode(&ia); err != nil {
		return nil, fmt.Errorf("parsing DuckDuckGo response: %w", err)
	}

	var results []types.ResearchResult
	add := func(r types.ResearchResult) bool {
		if maxResults > 0 && len(results) >= maxResults {
			return false
		}
		results = append(results, r)
		return true
	}

	if ia.AbstractText != "" {
		add(types.ResearchResult{
			Title:   ia.Heading,
			URL:     ia.AbstractURL,
			Summary: ia.AbstractText,
			Source:  "duckduckgo",
		})
	}
	for _, t := range append(ia.Results, flattenTopics(ia.RelatedTopics)...) {
		if t.Text == "" || t.FirstURL == "" {
			continue
		}
		if !add(topicResult(t)) {
			break
		}
	}
	return results, nil
}

func (d *DuckDuckGoSearcher) client() *http.Client {
	if d.Client == nil {
		return http.DefaultClient
	}
	return d.Client
}

// Instant Answer JSON structures.
type ddgResponse struct {
	Heading       string     `json:"Heading"`
	AbstractText  string     `json:"AbstractText"`
	AbstractURL   string     `json:"AbstractURL"`
	Results       []ddgTopic `json:"Results"`
	RelatedTopics []ddgTopic `json:"RelatedTopics"`
}

// ddgTopic is either a leaf (Text, FirstURL) or a named group of Topics.
type ddgTopic struct {
	Text     string     `json:"Text"`
	FirstURL string     `json:"FirstURL"`
	Name     string     `json:"Name"`
	Topics   []ddgTopic `json:"Topics"`
}

func flattenTopics(topics []ddgTopic) []ddgTopic {
	var out []ddgTopic
	for _, t := range topics {
		if len(t.Topics) > 0 {
			out = append(out, flattenTopics(t.Topics)...)
			continue
		}
		out = append(out, t)
	}
	return out
}

// topicResult splits "Title - summary" topic text into its parts.
func topicResult(t ddgTopic) types.ResearchResult {
	title, summary := t.Text, t.Text
	if i := strings.Index(t.Text, " - "); i > 0 {
		title = t.Text[:i]
		summary = strings.TrimSpace(t.Text[i+3:])
	}
	return types.ResearchResult{
		Title:   title,
		URL:     t.FirstURL,
		Summary: summary,
		Source:  "duckduckgo",
	}
}
